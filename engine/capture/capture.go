package capture

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/cursorfx/cursorfx/common"
	"github.com/cogentcore/webgpu/wgpu"
)

// Strategy identifies how acquired frames reach the sampled screen texture.
type Strategy int

const (
	// StrategyDirect uploads frame pixels straight into the screen texture.
	// Used when the duplicated output and the renderer share a GPU adapter.
	StrategyDirect Strategy = iota

	// StrategyStaged uploads frame pixels into an intermediate staging texture
	// and copies GPU-side into the screen texture. Used when the output is
	// duplicated on a different adapter than the renderer's device, where a
	// direct upload would race the duplicator's frame reuse.
	StrategyStaged
)

// AcquireMode controls how long CaptureFrame waits for new screen content.
type AcquireMode int

const (
	// AcquireBestEffort polls for a frame without blocking. Used when no
	// enabled effect needs fresh screen content every frame; a stale texture
	// is acceptable.
	AcquireBestEffort AcquireMode = iota

	// AcquireContinuous blocks up to roughly one display refresh for a new
	// frame. Used when at least one enabled effect samples the screen texture
	// every frame (lenses, color filters).
	AcquireContinuous
)

// defaultContinuousTimeout approximates one refresh interval at 60 Hz.
const defaultContinuousTimeout = 16 * time.Millisecond

// provider is the implementation of the Provider interface.
type provider struct {
	duplicator OutputDuplicator
	gpu        Uploader
	logger     *slog.Logger

	strategy       Strategy
	forcedStrategy *Strategy

	continuousTimeout time.Duration

	width, height uint32

	screenTexture  *wgpu.Texture
	screenView     *wgpu.TextureView
	stagingTexture *wgpu.Texture
	stagingView    *wgpu.TextureView

	hasContent  bool
	failures    int
	initialized bool
	disposed    bool
}

// Uploader is the subset of the renderer the capture provider needs to move
// frame pixels onto the GPU.
type Uploader interface {
	// CreateScreenTexture creates an uninitialized RGBA texture usable as a
	// sample source and copy target.
	//
	// Parameters:
	//   - width: texture width in pixels
	//   - height: texture height in pixels
	//
	// Returns:
	//   - *wgpu.Texture: the created texture
	//   - *wgpu.TextureView: a view over the full texture
	//   - error: an error if texture creation fails
	CreateScreenTexture(width, height int) (*wgpu.Texture, *wgpu.TextureView, error)

	// UpdateTexture writes pixel data into an existing GPU texture.
	//
	// Parameters:
	//   - tex: the destination texture
	//   - stagingData: the pixel data and dimensions to upload
	//
	// Returns:
	//   - error: an error if the upload is malformed
	UpdateTexture(tex *wgpu.Texture, stagingData common.TextureStagingData) error

	// CopyTexture performs a GPU-side texture-to-texture copy.
	//
	// Parameters:
	//   - src: the source texture
	//   - dst: the destination texture
	//   - width: copy width in pixels
	//   - height: copy height in pixels
	//
	// Returns:
	//   - error: an error if command encoding fails
	CopyTexture(src, dst *wgpu.Texture, width, height uint32) error

	// ReleaseTexture releases a texture and its view. Either argument may be nil.
	//
	// Parameters:
	//   - tex: the texture to release
	//   - view: the view to release
	ReleaseTexture(tex *wgpu.Texture, view *wgpu.TextureView)
}

// Provider owns the screen content texture that screen-sampling effects bind.
// It pulls frames from an OutputDuplicator, uploads them via the renderer, and
// keeps the last successfully captured frame available across transient
// capture failures.
type Provider interface {
	// Initialize selects the capture strategy from the duplicated output's
	// adapter topology and creates the screen texture (plus the staging
	// texture for the staged strategy). Must be called before CaptureFrame.
	//
	// Returns:
	//   - error: an error if texture creation fails; fatal for the provider
	Initialize() error

	// CaptureFrame attempts to pull one frame from the duplicator and upload
	// it into the screen texture.
	//
	// A false return does not invalidate the texture: after at least one
	// successful capture the texture always holds the most recent good frame,
	// so effects keep rendering slightly stale screen content through
	// transient failures instead of flickering.
	//
	// Parameters:
	//   - mode: how long to wait for new content
	//
	// Returns:
	//   - bool: true if the screen texture now holds new content
	CaptureFrame(mode AcquireMode) bool

	// TextureView returns the view over the screen content texture, or nil
	// before Initialize.
	//
	// Returns:
	//   - *wgpu.TextureView: the screen texture view or nil
	TextureView() *wgpu.TextureView

	// Texture returns the screen content texture, or nil before Initialize.
	//
	// Returns:
	//   - *wgpu.Texture: the screen texture or nil
	Texture() *wgpu.Texture

	// Width returns the current capture width in pixels.
	//
	// Returns:
	//   - uint32: the width
	Width() uint32

	// Height returns the current capture height in pixels.
	//
	// Returns:
	//   - uint32: the height
	Height() uint32

	// Strategy returns the upload strategy selected at Initialize.
	//
	// Returns:
	//   - Strategy: StrategyDirect or StrategyStaged
	Strategy() Strategy

	// HasContent reports whether at least one frame has been captured since
	// Initialize, meaning the screen texture holds valid content.
	//
	// Returns:
	//   - bool: true once a frame has been captured
	HasContent() bool

	// ConsecutiveFailures returns the number of CaptureFrame calls that have
	// failed (excluding plain timeouts) since the last successful capture.
	//
	// Returns:
	//   - int: the consecutive failure count
	ConsecutiveFailures() int

	// Dispose releases the screen and staging textures and closes the
	// duplicator. Safe to call more than once.
	Dispose()
}

var _ Provider = &provider{}

// NewProvider creates a capture Provider over the given duplicator and GPU uploader.
//
// Parameters:
//   - duplicator: the OS screen-duplication boundary to pull frames from
//   - gpu: the renderer subset used to upload frames
//   - options: variadic list of ProviderBuilderOption functions to configure the provider
//
// Returns:
//   - Provider: a new Provider; call Initialize before use
func NewProvider(duplicator OutputDuplicator, gpu Uploader, options ...ProviderBuilderOption) Provider {
	p := &provider{
		duplicator:        duplicator,
		gpu:               gpu,
		logger:            slog.Default(),
		continuousTimeout: defaultContinuousTimeout,
	}
	for _, opt := range options {
		opt(p)
	}
	return p
}

func (p *provider) Initialize() error {
	out := p.duplicator.Output()
	if out.Width == 0 || out.Height == 0 {
		return fmt.Errorf("capture: output %d reports zero size", out.Index)
	}
	p.width, p.height = out.Width, out.Height

	if p.forcedStrategy != nil {
		p.strategy = *p.forcedStrategy
	} else if out.SharedAdapter {
		p.strategy = StrategyDirect
	} else {
		p.strategy = StrategyStaged
	}

	if err := p.createTextures(); err != nil {
		return err
	}

	p.initialized = true
	p.logger.Info("capture provider initialized",
		"output", out.Index,
		"width", p.width,
		"height", p.height,
		"strategy", p.strategy,
	)
	return nil
}

func (p *provider) createTextures() error {
	tex, view, err := p.gpu.CreateScreenTexture(int(p.width), int(p.height))
	if err != nil {
		return fmt.Errorf("capture: screen texture: %w", err)
	}
	p.screenTexture = tex
	p.screenView = view

	if p.strategy == StrategyStaged {
		stex, sview, serr := p.gpu.CreateScreenTexture(int(p.width), int(p.height))
		if serr != nil {
			return fmt.Errorf("capture: staging texture: %w", serr)
		}
		p.stagingTexture = stex
		p.stagingView = sview
	}
	return nil
}

func (p *provider) releaseTextures() {
	p.gpu.ReleaseTexture(p.screenTexture, p.screenView)
	p.screenTexture, p.screenView = nil, nil
	p.gpu.ReleaseTexture(p.stagingTexture, p.stagingView)
	p.stagingTexture, p.stagingView = nil, nil
}

func (p *provider) CaptureFrame(mode AcquireMode) bool {
	if !p.initialized || p.disposed {
		return false
	}

	timeout := time.Duration(0)
	if mode == AcquireContinuous {
		timeout = p.continuousTimeout
	}

	frame, err := p.duplicator.AcquireFrame(timeout)
	switch {
	case err == nil:
	case err == ErrTimeout:
		// Screen unchanged; the existing texture content stays valid.
		return false
	case err == ErrAccessLost:
		p.failures++
		p.logger.Warn("capture access lost, resetting duplication", "failures", p.failures)
		if rerr := p.duplicator.Reset(); rerr != nil {
			p.logger.Warn("capture reset failed", "error", rerr)
		}
		return false
	default:
		p.failures++
		p.logger.Warn("capture acquire failed", "error", err, "failures", p.failures)
		return false
	}
	defer frame.Release()

	if frame.Width() != p.width || frame.Height() != p.height {
		// Output resolution changed under us; rebuild textures at the new size.
		p.logger.Info("capture resolution changed",
			"old_width", p.width, "old_height", p.height,
			"new_width", frame.Width(), "new_height", frame.Height(),
		)
		p.width, p.height = frame.Width(), frame.Height()
		p.releaseTextures()
		if err := p.createTextures(); err != nil {
			p.failures++
			p.hasContent = false
			p.logger.Error("capture texture rebuild failed", "error", err)
			return false
		}
		p.hasContent = false
	}

	if frame.DirtyCount() == 0 && p.hasContent {
		// Metadata-only frame; pixel content matches what we already hold.
		return false
	}

	staging := common.TextureStagingData{
		Pixels: frame.Pixels(),
		Width:  p.width,
		Height: p.height,
	}

	switch p.strategy {
	case StrategyStaged:
		if err := p.gpu.UpdateTexture(p.stagingTexture, staging); err != nil {
			p.failures++
			p.logger.Warn("capture staging upload failed", "error", err)
			return false
		}
		if err := p.gpu.CopyTexture(p.stagingTexture, p.screenTexture, p.width, p.height); err != nil {
			p.failures++
			p.logger.Warn("capture staged copy failed", "error", err)
			return false
		}
	case StrategyDirect:
		fallthrough
	default:
		if err := p.gpu.UpdateTexture(p.screenTexture, staging); err != nil {
			p.failures++
			p.logger.Warn("capture upload failed", "error", err)
			return false
		}
	}

	p.hasContent = true
	p.failures = 0
	return true
}

func (p *provider) TextureView() *wgpu.TextureView {
	return p.screenView
}

func (p *provider) Texture() *wgpu.Texture {
	return p.screenTexture
}

func (p *provider) Width() uint32 {
	return p.width
}

func (p *provider) Height() uint32 {
	return p.height
}

func (p *provider) Strategy() Strategy {
	return p.strategy
}

func (p *provider) HasContent() bool {
	return p.hasContent
}

func (p *provider) ConsecutiveFailures() int {
	return p.failures
}

func (p *provider) Dispose() {
	if p.disposed {
		return
	}
	p.disposed = true
	p.releaseTextures()
	p.duplicator.Close()
	p.hasContent = false
	p.initialized = false
}
