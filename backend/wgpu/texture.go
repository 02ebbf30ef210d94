package wgpu

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/acrylic/render"
)

// Texture is a GPU-resident render target. Pixels returns nil; use
// Device.ReadTexture for debugging readback.
type Texture struct {
	tex    hal.Texture
	view   hal.TextureView
	width  int
	height int
}

// Width returns the texture width in pixels.
func (t *Texture) Width() int { return t.width }

// Height returns the texture height in pixels.
func (t *Texture) Height() int { return t.height }

// Format returns the pixel format.
func (t *Texture) Format() gputypes.TextureFormat {
	return gputypes.TextureFormatRGBA8Unorm
}

// Pixels returns nil: the data lives on the GPU.
func (t *Texture) Pixels() []byte { return nil }

// Stride returns 0: the data lives on the GPU.
func (t *Texture) Stride() int { return 0 }

// View returns the hal texture view, for hosts that render into the
// target directly.
func (t *Texture) View() hal.TextureView { return t.view }

// Handle returns the hal texture.
func (t *Texture) Handle() hal.Texture { return t.tex }

var _ render.Target = (*Texture)(nil)

// Allocator creates GPU textures usable as both render attachment and
// sampled input, which is what every kernel pass needs.
type Allocator struct {
	dev *Device
}

// NewAllocator creates an allocator on dev.
func NewAllocator(dev *Device) *Allocator {
	return &Allocator{dev: dev}
}

// Alloc creates a texture target. Failures wrap render.ErrAllocFailed
// so layers park and retry instead of giving up.
func (a *Allocator) Alloc(width, height int) (render.Target, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", render.ErrAllocFailed, width, height)
	}
	w, h := uint32(width), uint32(height)

	tex, err := a.dev.device.CreateTexture(&hal.TextureDescriptor{
		Label:         "acrylic_target",
		Size:          hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        gputypes.TextureFormatRGBA8Unorm,
		Usage: gputypes.TextureUsageRenderAttachment |
			gputypes.TextureUsageTextureBinding |
			gputypes.TextureUsageCopySrc |
			gputypes.TextureUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %dx%d: %v", render.ErrAllocFailed, width, height, err)
	}

	view, err := a.dev.device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label:         "acrylic_target_view",
		Format:        gputypes.TextureFormatRGBA8Unorm,
		Dimension:     gputypes.TextureViewDimension2D,
		Aspect:        gputypes.TextureAspectAll,
		MipLevelCount: 1,
	})
	if err != nil {
		a.dev.device.DestroyTexture(tex)
		return nil, fmt.Errorf("%w: %dx%d view: %v", render.ErrAllocFailed, width, height, err)
	}

	return &Texture{tex: tex, view: view, width: width, height: height}, nil
}

// Release destroys a texture target. Foreign or nil targets are
// ignored.
func (a *Allocator) Release(t render.Target) {
	tex, ok := t.(*Texture)
	if !ok || tex == nil {
		return
	}
	if tex.view != nil {
		a.dev.device.DestroyTextureView(tex.view)
		tex.view = nil
	}
	if tex.tex != nil {
		a.dev.device.DestroyTexture(tex.tex)
		tex.tex = nil
	}
}

var _ render.Allocator = (*Allocator)(nil)

// WriteTexture uploads RGBA pixels into a texture target.
func (d *Device) WriteTexture(t *Texture, pixels []byte) error {
	w, h := uint32(t.width), uint32(t.height)
	if uint64(len(pixels)) < uint64(w)*uint64(h)*4 {
		return fmt.Errorf("wgpu: pixel data too short: %d bytes for %dx%d", len(pixels), w, h)
	}
	d.queue.WriteTexture(
		&hal.ImageCopyTexture{Texture: t.tex, MipLevel: 0},
		pixels,
		&hal.ImageDataLayout{Offset: 0, BytesPerRow: w * 4, RowsPerImage: h},
		&hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
	)
	return nil
}

// ReadTexture copies a texture target back to CPU memory as RGBA
// pixels. It stalls the queue; meant for golden-image debugging, not
// the frame loop.
func (d *Device) ReadTexture(t *Texture) ([]byte, error) {
	w, h := uint32(t.width), uint32(t.height)
	size := uint64(w) * uint64(h) * 4

	staging, err := d.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "acrylic_readback",
		Size:  size,
		Usage: gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("wgpu: create staging buffer: %w", err)
	}
	defer d.device.DestroyBuffer(staging)

	encoder, err := d.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{
		Label: "acrylic_readback_encoder",
	})
	if err != nil {
		return nil, fmt.Errorf("wgpu: create encoder: %w", err)
	}
	if err := encoder.BeginEncoding("acrylic_readback"); err != nil {
		return nil, fmt.Errorf("wgpu: begin encoding: %w", err)
	}
	encoder.TransitionTextures([]hal.TextureBarrier{{
		Texture: t.tex,
		Usage: hal.TextureUsageTransition{
			OldUsage: gputypes.TextureUsageRenderAttachment,
			NewUsage: gputypes.TextureUsageCopySrc,
		},
	}})
	encoder.CopyTextureToBuffer(t.tex, staging, []hal.BufferTextureCopy{{
		BufferLayout: hal.ImageDataLayout{Offset: 0, BytesPerRow: w * 4, RowsPerImage: h},
		TextureBase:  hal.ImageCopyTexture{Texture: t.tex, MipLevel: 0},
		Size:         hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
	}})
	if err := d.submit(encoder); err != nil {
		return nil, err
	}

	out := make([]byte, size)
	if err := d.queue.ReadBuffer(staging, 0, out); err != nil {
		return nil, fmt.Errorf("wgpu: readback: %w", err)
	}
	return out, nil
}
