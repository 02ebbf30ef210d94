package wgpu

import (
	"errors"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"github.com/gogpu/wgpu/hal/noop"

	"github.com/gogpu/acrylic/render"
)

// createNoopDevice creates a noop hal device and queue for testing.
func createNoopDevice(t *testing.T) (hal.Device, hal.Queue, func()) {
	t.Helper()
	api := noop.API{}
	instance, err := api.CreateInstance(nil)
	if err != nil {
		t.Fatalf("CreateInstance failed: %v", err)
	}
	adapters := instance.EnumerateAdapters(nil)
	openDev, err := adapters[0].Adapter.Open(0, gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		t.Fatalf("Open failed: %v", err)
	}
	cleanup := func() {
		openDev.Device.Destroy()
		instance.Destroy()
	}
	return openDev.Device, openDev.Queue, cleanup
}

func newTestBackend(t *testing.T) (*Device, *Allocator, *Blitter) {
	t.Helper()
	device, queue, cleanup := createNoopDevice(t)
	t.Cleanup(cleanup)

	dev := NewDeviceFromHAL(device, queue, nil)
	t.Cleanup(dev.Close)

	blitter, err := NewBlitter(dev)
	if err != nil {
		t.Fatalf("NewBlitter: %v", err)
	}
	t.Cleanup(blitter.Destroy)
	return dev, NewAllocator(dev), blitter
}

func TestAllocatorAllocRelease(t *testing.T) {
	_, alloc, _ := newTestBackend(t)

	tgt, err := alloc.Alloc(64, 32)
	if err != nil {
		t.Fatalf("Alloc: %v", err)
	}
	if tgt.Width() != 64 || tgt.Height() != 32 {
		t.Fatalf("target %dx%d, want 64x32", tgt.Width(), tgt.Height())
	}
	if tgt.Pixels() != nil || tgt.Stride() != 0 {
		t.Fatal("GPU target must not expose CPU pixels")
	}
	if tgt.Format() != gputypes.TextureFormatRGBA8Unorm {
		t.Fatalf("format = %v, want RGBA8Unorm", tgt.Format())
	}
	alloc.Release(tgt)
	alloc.Release(tgt) // releasing twice is safe
	alloc.Release(nil)
}

func TestAllocatorInvalidSize(t *testing.T) {
	_, alloc, _ := newTestBackend(t)
	for _, dims := range [][2]int{{0, 4}, {4, 0}, {-1, 4}} {
		_, err := alloc.Alloc(dims[0], dims[1])
		if !errors.Is(err, render.ErrAllocFailed) {
			t.Errorf("Alloc(%d, %d): err = %v, want ErrAllocFailed", dims[0], dims[1], err)
		}
	}
}

func TestBlitterRunsEveryPass(t *testing.T) {
	_, alloc, blitter := newTestBackend(t)

	src, err := alloc.Alloc(16, 16)
	if err != nil {
		t.Fatal(err)
	}
	defer alloc.Release(src)
	dst, err := alloc.Alloc(16, 16)
	if err != nil {
		t.Fatal(err)
	}
	defer alloc.Release(dst)

	params := render.BlitParams{
		Offset:    mgl32.Vec2{1.0 / 16, 1.0 / 16},
		HalfPixel: mgl32.Vec2{0.5 / 16, 0.5 / 16},
	}
	for _, pass := range []render.Pass{
		render.PassCopy,
		render.PassDownsample,
		render.PassUpsample,
		render.PassKawase,
	} {
		if err := blitter.Blit(src, dst, pass, params); err != nil {
			t.Errorf("Blit(%v): %v", pass, err)
		}
	}

	params.Blend = 0.5
	params.Source2 = src
	if err := blitter.Blit(src, dst, render.PassBlend, params); err != nil {
		t.Errorf("Blit(blend): %v", err)
	}
}

func TestBlitterRejectsForeignTargets(t *testing.T) {
	_, alloc, blitter := newTestBackend(t)

	gpu, err := alloc.Alloc(8, 8)
	if err != nil {
		t.Fatal(err)
	}
	defer alloc.Release(gpu)
	cpu := render.NewPixmapTarget(8, 8)

	if err := blitter.Blit(cpu, gpu, render.PassCopy, render.BlitParams{}); err == nil {
		t.Error("want error for CPU source on GPU blitter")
	}
	if err := blitter.Blit(gpu, cpu, render.PassCopy, render.BlitParams{}); err == nil {
		t.Error("want error for CPU destination on GPU blitter")
	}
}

func TestBlitterNilAndUnknown(t *testing.T) {
	_, alloc, blitter := newTestBackend(t)

	tgt, err := alloc.Alloc(8, 8)
	if err != nil {
		t.Fatal(err)
	}
	defer alloc.Release(tgt)

	if err := blitter.Blit(nil, tgt, render.PassCopy, render.BlitParams{}); !errors.Is(err, render.ErrNilTarget) {
		t.Errorf("nil src: err = %v, want ErrNilTarget", err)
	}
	if err := blitter.Blit(tgt, tgt, render.Pass(99), render.BlitParams{}); !errors.Is(err, render.ErrUnknownPass) {
		t.Errorf("unknown pass: err = %v, want ErrUnknownPass", err)
	}
	if err := blitter.Blit(tgt, tgt, render.PassBlend, render.BlitParams{Blend: 0.5}); !errors.Is(err, render.ErrNilTarget) {
		t.Errorf("blend without Source2: err = %v, want ErrNilTarget", err)
	}
}

func TestDeviceFromProvider(t *testing.T) {
	device, queue, cleanup := createNoopDevice(t)
	defer cleanup()

	// A provider without HAL access cannot drive this backend.
	if _, err := NewDeviceFromProvider(&baseProvider{}, nil); !errors.Is(err, ErrNoProvider) {
		t.Errorf("err = %v, want ErrNoProvider", err)
	}

	dev, err := NewDeviceFromProvider(&halProvider{device: device, queue: queue}, nil)
	if err != nil {
		t.Fatalf("NewDeviceFromProvider: %v", err)
	}
	defer dev.Close()
	d, q := dev.HAL()
	if d != device || q != queue {
		t.Fatal("provider device/queue not adopted")
	}
}

// baseProvider implements gpucontext.DeviceProvider without HAL access.
type baseProvider struct{}

func (p *baseProvider) Device() gpucontext.Device   { return nil }
func (p *baseProvider) Queue() gpucontext.Queue     { return nil }
func (p *baseProvider) Adapter() gpucontext.Adapter { return nil }
func (p *baseProvider) SurfaceFormat() gputypes.TextureFormat {
	return gputypes.TextureFormatBGRA8Unorm
}
func (p *baseProvider) AdapterInfo() gpucontext.AdapterInfo { return gpucontext.AdapterInfo{} }

var _ gpucontext.DeviceProvider = (*baseProvider)(nil)

// halProvider adds the HAL accessors a shared-device host exposes.
type halProvider struct {
	baseProvider
	device hal.Device
	queue  hal.Queue
}

func (p *halProvider) HalDevice() any { return p.device }
func (p *halProvider) HalQueue() any  { return p.queue }
