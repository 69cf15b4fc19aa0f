package effects

import (
	"github.com/cursorfx/cursorfx/common"
	"github.com/cursorfx/cursorfx/engine/effect"
	"github.com/cursorfx/cursorfx/engine/renderer/bind_group_provider"
	"github.com/cursorfx/cursorfx/engine/settings"
	"github.com/cursorfx/cursorfx/engine/simulation"
	"github.com/cogentcore/webgpu/wgpu"
)

// scalarRangeFromConfig reads a min/max key pair into a ScalarRange, clamping
// both ends into [lo, hi] and swapping them if the user inverted the pair.
func scalarRangeFromConfig(cfg settings.Config, minKey, maxKey string, defMin, defMax, lo, hi float32) simulation.ScalarRange {
	r := simulation.ScalarRange{
		Min: cfg.FloatClamped(minKey, defMin, lo, hi),
		Max: cfg.FloatClamped(maxKey, defMax, lo, hi),
	}
	if r.Max < r.Min {
		r.Min, r.Max = r.Max, r.Min
	}
	return r
}

// packInstances serializes the packed instance slice for upload.
func packInstances(instances []particleInstance) []byte {
	return common.SliceToBytes(instances)
}

// rebindScreen points the provider's texture binding at the capture
// provider's current view, rebuilding the bind group when the view has been
// swapped by a resolution change. No-op while the bound view is current.
func rebindScreen(ctx *effect.Context, group bind_group_provider.BindGroupProvider, boundView **wgpu.TextureView) error {
	view := ctx.Capture.TextureView()
	if view == nil || view == *boundView {
		return nil
	}
	group.SetTextureView(textureBinding, view)
	if err := ctx.Renderer.InitBindGroup(group, screenBindGroupLayout(), nil, nil); err != nil {
		return err
	}
	*boundView = view
	return nil
}
