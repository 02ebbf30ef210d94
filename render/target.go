package render

import (
	"errors"
	"fmt"
	"image"

	"github.com/gogpu/gputypes"
)

// ErrAllocFailed is returned by Allocator implementations when a render
// target cannot be created (out of GPU memory, device lost, ...).
// Layers treat this as recoverable: the layer is parked and allocation
// is retried on a backoff schedule.
var ErrAllocFailed = errors.New("render: target allocation failed")

// Target is an offscreen image a blur layer renders into.
//
// A Target is an abstraction over different storage backends:
//   - backend/soft: CPU-backed *image.RGBA for deterministic reference
//     rendering and tests
//   - backend/wgpu: GPU texture for real-time use
//
// Targets may support CPU access (Pixels), GPU access, or both. The
// Blitter implementation paired with the allocator knows how to read
// and write its own targets; acrylic itself only tracks dimensions and
// ownership.
type Target interface {
	// Width returns the target width in pixels.
	Width() int

	// Height returns the target height in pixels.
	Height() int

	// Format returns the pixel format of the target.
	Format() gputypes.TextureFormat

	// Pixels returns direct access to pixel data.
	// Returns nil for GPU-only targets.
	// For RGBA format, each pixel is 4 bytes: R, G, B, A.
	Pixels() []byte

	// Stride returns the number of bytes per row.
	// Returns 0 for GPU-only targets.
	Stride() int
}

// Allocator creates and releases Targets.
//
// Every target a layer or filter owns comes from exactly one Allocator
// and is returned to the same Allocator when resized or when the owner
// is released. Targets are never shared or aliased across layers.
type Allocator interface {
	// Alloc creates a target with the given dimensions.
	// Returns an error wrapping ErrAllocFailed if the target cannot be
	// created.
	Alloc(width, height int) (Target, error)

	// Release frees a target previously returned by Alloc.
	// Releasing nil is a no-op.
	Release(t Target)
}

// PixmapTarget is a CPU-backed target using *image.RGBA.
//
// It is the default target for tests and for the soft backend. GPU
// backends provide their own Target implementations with Pixels
// returning nil.
type PixmapTarget struct {
	img *image.RGBA
}

// NewPixmapTarget creates a new CPU-backed target.
func NewPixmapTarget(width, height int) *PixmapTarget {
	return &PixmapTarget{
		img: image.NewRGBA(image.Rect(0, 0, width, height)),
	}
}

// NewPixmapTargetFromImage wraps an existing *image.RGBA as a target.
// The image is used directly without copying.
func NewPixmapTargetFromImage(img *image.RGBA) *PixmapTarget {
	return &PixmapTarget{img: img}
}

// Width returns the target width in pixels.
func (t *PixmapTarget) Width() int {
	return t.img.Bounds().Dx()
}

// Height returns the target height in pixels.
func (t *PixmapTarget) Height() int {
	return t.img.Bounds().Dy()
}

// Format returns the pixel format (RGBA8).
func (t *PixmapTarget) Format() gputypes.TextureFormat {
	return gputypes.TextureFormatRGBA8Unorm
}

// Pixels returns direct access to the pixel data.
func (t *PixmapTarget) Pixels() []byte {
	return t.img.Pix
}

// Stride returns the number of bytes per row.
func (t *PixmapTarget) Stride() int {
	return t.img.Stride
}

// Image returns the underlying *image.RGBA.
// The returned image shares memory with the target.
func (t *PixmapTarget) Image() *image.RGBA {
	return t.img
}

// Ensure PixmapTarget implements Target.
var _ Target = (*PixmapTarget)(nil)

// PixmapAllocator allocates PixmapTargets. The zero value is ready to
// use. Release is a no-op: pixmap memory is garbage collected.
type PixmapAllocator struct{}

// Alloc creates a CPU-backed target.
func (PixmapAllocator) Alloc(width, height int) (Target, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrAllocFailed, width, height)
	}
	return NewPixmapTarget(width, height), nil
}

// Release frees the target. Nothing to do for pixmaps.
func (PixmapAllocator) Release(Target) {}

// Ensure PixmapAllocator implements Allocator.
var _ Allocator = PixmapAllocator{}
