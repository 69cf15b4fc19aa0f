package capture

import (
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/cursorfx/cursorfx/common"
	"github.com/cogentcore/webgpu/wgpu"
)

type fakeFrame struct {
	pixels        []byte
	width, height uint32
	dirty         int
	released      bool
}

func (f *fakeFrame) Pixels() []byte  { return f.pixels }
func (f *fakeFrame) Width() uint32   { return f.width }
func (f *fakeFrame) Height() uint32  { return f.height }
func (f *fakeFrame) DirtyCount() int { return f.dirty }
func (f *fakeFrame) Release()        { f.released = true }

// fakeDuplicator returns queued results in order, repeating the last one.
type fakeDuplicator struct {
	output      Output
	frames      []*fakeFrame
	errs        []error
	calls       int
	resets      int
	closed      bool
	lastTimeout time.Duration
}

func (d *fakeDuplicator) Output() Output { return d.output }

func (d *fakeDuplicator) AcquireFrame(timeout time.Duration) (Frame, error) {
	d.lastTimeout = timeout
	i := d.calls
	if i >= len(d.errs) {
		i = len(d.errs) - 1
	}
	d.calls++
	if err := d.errs[i]; err != nil {
		return nil, err
	}
	return d.frames[i], nil
}

func (d *fakeDuplicator) Reset() error { d.resets++; return nil }
func (d *fakeDuplicator) Close()       { d.closed = true }

type fakeUploader struct {
	created  int
	updates  int
	copies   int
	releases int
	failNext error
}

func (u *fakeUploader) CreateScreenTexture(width, height int) (*wgpu.Texture, *wgpu.TextureView, error) {
	u.created++
	return &wgpu.Texture{}, &wgpu.TextureView{}, nil
}

func (u *fakeUploader) UpdateTexture(tex *wgpu.Texture, stagingData common.TextureStagingData) error {
	if u.failNext != nil {
		err := u.failNext
		u.failNext = nil
		return err
	}
	u.updates++
	return nil
}

func (u *fakeUploader) CopyTexture(src, dst *wgpu.Texture, width, height uint32) error {
	u.copies++
	return nil
}

func (u *fakeUploader) ReleaseTexture(tex *wgpu.Texture, view *wgpu.TextureView) {
	if tex != nil {
		u.releases++
	}
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newFrame(w, h uint32, dirty int) *fakeFrame {
	return &fakeFrame{pixels: make([]byte, w*h*4), width: w, height: h, dirty: dirty}
}

func TestStrategySelection(t *testing.T) {
	tests := []struct {
		name   string
		shared bool
		want   Strategy
	}{
		{"shared adapter uses direct upload", true, StrategyDirect},
		{"cross adapter uses staged copy", false, StrategyStaged},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dup := &fakeDuplicator{
				output: Output{Width: 64, Height: 64, SharedAdapter: tt.shared},
				frames: []*fakeFrame{newFrame(64, 64, 1)},
				errs:   []error{nil},
			}
			gpu := &fakeUploader{}
			p := NewProvider(dup, gpu, WithLogger(quietLogger()))
			if err := p.Initialize(); err != nil {
				t.Fatalf("Initialize: %v", err)
			}
			if p.Strategy() != tt.want {
				t.Fatalf("Strategy() = %v, want %v", p.Strategy(), tt.want)
			}
		})
	}
}

func TestStagedUploadCopiesThroughStaging(t *testing.T) {
	dup := &fakeDuplicator{
		output: Output{Width: 32, Height: 32, SharedAdapter: false},
		frames: []*fakeFrame{newFrame(32, 32, 1)},
		errs:   []error{nil},
	}
	gpu := &fakeUploader{}
	p := NewProvider(dup, gpu, WithLogger(quietLogger()))
	if err := p.Initialize(); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	if gpu.created != 2 {
		t.Fatalf("staged strategy should create screen + staging textures, created %d", gpu.created)
	}
	if !p.CaptureFrame(AcquireBestEffort) {
		t.Fatal("CaptureFrame should report new content")
	}
	if gpu.updates != 1 || gpu.copies != 1 {
		t.Fatalf("staged path: updates=%d copies=%d, want 1 and 1", gpu.updates, gpu.copies)
	}
}

func TestDirectUploadSkipsStaging(t *testing.T) {
	dup := &fakeDuplicator{
		output: Output{Width: 32, Height: 32, SharedAdapter: true},
		frames: []*fakeFrame{newFrame(32, 32, 1)},
		errs:   []error{nil},
	}
	gpu := &fakeUploader{}
	p := NewProvider(dup, gpu, WithLogger(quietLogger()))
	if err := p.Initialize(); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	if gpu.created != 1 {
		t.Fatalf("direct strategy should create only the screen texture, created %d", gpu.created)
	}
	p.CaptureFrame(AcquireBestEffort)
	if gpu.updates != 1 || gpu.copies != 0 {
		t.Fatalf("direct path: updates=%d copies=%d, want 1 and 0", gpu.updates, gpu.copies)
	}
}

func TestLastGoodFrameSurvivesFailures(t *testing.T) {
	boom := errors.New("device hung")
	dup := &fakeDuplicator{
		output: Output{Width: 16, Height: 16, SharedAdapter: true},
		frames: []*fakeFrame{newFrame(16, 16, 1), nil, nil, nil},
		errs:   []error{nil, boom, boom, boom},
	}
	gpu := &fakeUploader{}
	p := NewProvider(dup, gpu, WithLogger(quietLogger()))
	if err := p.Initialize(); err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	if !p.CaptureFrame(AcquireBestEffort) {
		t.Fatal("first capture should succeed")
	}
	view := p.TextureView()
	if view == nil {
		t.Fatal("texture view should exist after a successful capture")
	}

	for i := 0; i < 3; i++ {
		if p.CaptureFrame(AcquireBestEffort) {
			t.Fatalf("capture %d should fail", i+2)
		}
	}
	if !p.HasContent() {
		t.Fatal("provider should keep reporting content through failures")
	}
	if p.TextureView() != view {
		t.Fatal("texture view must stay the last-good texture across failures")
	}
	if p.ConsecutiveFailures() != 3 {
		t.Fatalf("ConsecutiveFailures() = %d, want 3", p.ConsecutiveFailures())
	}
}

func TestTimeoutIsNotAFailure(t *testing.T) {
	dup := &fakeDuplicator{
		output: Output{Width: 16, Height: 16, SharedAdapter: true},
		frames: []*fakeFrame{newFrame(16, 16, 1), nil},
		errs:   []error{nil, ErrTimeout},
	}
	gpu := &fakeUploader{}
	p := NewProvider(dup, gpu, WithLogger(quietLogger()))
	if err := p.Initialize(); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	p.CaptureFrame(AcquireBestEffort)
	if p.CaptureFrame(AcquireBestEffort) {
		t.Fatal("timeout should not report new content")
	}
	if p.ConsecutiveFailures() != 0 {
		t.Fatalf("timeouts must not count as failures, got %d", p.ConsecutiveFailures())
	}
	if !p.HasContent() {
		t.Fatal("content remains valid through timeouts")
	}
}

func TestAccessLostTriggersReset(t *testing.T) {
	dup := &fakeDuplicator{
		output: Output{Width: 16, Height: 16, SharedAdapter: true},
		frames: []*fakeFrame{nil, newFrame(16, 16, 1)},
		errs:   []error{ErrAccessLost, nil},
	}
	gpu := &fakeUploader{}
	p := NewProvider(dup, gpu, WithLogger(quietLogger()))
	if err := p.Initialize(); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	if p.CaptureFrame(AcquireBestEffort) {
		t.Fatal("access-lost capture should fail")
	}
	if dup.resets != 1 {
		t.Fatalf("duplicator resets = %d, want 1", dup.resets)
	}
	if !p.CaptureFrame(AcquireBestEffort) {
		t.Fatal("capture should recover after reset")
	}
	if p.ConsecutiveFailures() != 0 {
		t.Fatal("failure count should reset on success")
	}
}

func TestAcquireModeTimeouts(t *testing.T) {
	dup := &fakeDuplicator{
		output: Output{Width: 16, Height: 16, SharedAdapter: true},
		frames: []*fakeFrame{newFrame(16, 16, 1)},
		errs:   []error{nil},
	}
	gpu := &fakeUploader{}
	p := NewProvider(dup, gpu, WithLogger(quietLogger()), WithContinuousTimeout(8*time.Millisecond))
	if err := p.Initialize(); err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	p.CaptureFrame(AcquireBestEffort)
	if dup.lastTimeout != 0 {
		t.Fatalf("best-effort timeout = %v, want 0", dup.lastTimeout)
	}
	p.CaptureFrame(AcquireContinuous)
	if dup.lastTimeout != 8*time.Millisecond {
		t.Fatalf("continuous timeout = %v, want 8ms", dup.lastTimeout)
	}
}

func TestZeroDirtySkipsUpload(t *testing.T) {
	dup := &fakeDuplicator{
		output: Output{Width: 16, Height: 16, SharedAdapter: true},
		frames: []*fakeFrame{newFrame(16, 16, 1), newFrame(16, 16, 0)},
		errs:   []error{nil, nil},
	}
	gpu := &fakeUploader{}
	p := NewProvider(dup, gpu, WithLogger(quietLogger()))
	if err := p.Initialize(); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	p.CaptureFrame(AcquireBestEffort)
	if p.CaptureFrame(AcquireBestEffort) {
		t.Fatal("metadata-only frame should not report new content")
	}
	if gpu.updates != 1 {
		t.Fatalf("metadata-only frame must not upload, updates=%d", gpu.updates)
	}
	if !dup.frames[1].released {
		t.Fatal("skipped frame must still be released")
	}
}

func TestResolutionChangeRebuildsTextures(t *testing.T) {
	dup := &fakeDuplicator{
		output: Output{Width: 16, Height: 16, SharedAdapter: true},
		frames: []*fakeFrame{newFrame(16, 16, 1), newFrame(32, 24, 1)},
		errs:   []error{nil, nil},
	}
	gpu := &fakeUploader{}
	p := NewProvider(dup, gpu, WithLogger(quietLogger()))
	if err := p.Initialize(); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	p.CaptureFrame(AcquireBestEffort)
	oldView := p.TextureView()

	if !p.CaptureFrame(AcquireBestEffort) {
		t.Fatal("capture after resolution change should succeed")
	}
	if p.Width() != 32 || p.Height() != 24 {
		t.Fatalf("dimensions = %dx%d, want 32x24", p.Width(), p.Height())
	}
	if p.TextureView() == oldView {
		t.Fatal("texture view should be rebuilt at the new size")
	}
	if gpu.releases == 0 {
		t.Fatal("old textures should be released on rebuild")
	}
}

func TestFramesAlwaysReleased(t *testing.T) {
	f := newFrame(16, 16, 1)
	dup := &fakeDuplicator{
		output: Output{Width: 16, Height: 16, SharedAdapter: true},
		frames: []*fakeFrame{f},
		errs:   []error{nil},
	}
	gpu := &fakeUploader{failNext: errors.New("upload rejected")}
	p := NewProvider(dup, gpu, WithLogger(quietLogger()))
	if err := p.Initialize(); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	if p.CaptureFrame(AcquireBestEffort) {
		t.Fatal("capture should fail when the upload fails")
	}
	if !f.released {
		t.Fatal("frame must be released even when the upload fails")
	}
}

func TestDisposeIdempotent(t *testing.T) {
	dup := &fakeDuplicator{
		output: Output{Width: 16, Height: 16, SharedAdapter: true},
		frames: []*fakeFrame{newFrame(16, 16, 1)},
		errs:   []error{nil},
	}
	gpu := &fakeUploader{}
	p := NewProvider(dup, gpu, WithLogger(quietLogger()))
	if err := p.Initialize(); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	p.Dispose()
	releases := gpu.releases
	p.Dispose()
	if gpu.releases != releases {
		t.Fatal("second Dispose must not release again")
	}
	if !dup.closed {
		t.Fatal("Dispose should close the duplicator")
	}
	if p.CaptureFrame(AcquireBestEffort) {
		t.Fatal("capture after Dispose must fail")
	}
}
