package render

import (
	"errors"

	"github.com/go-gl/mathgl/mgl32"
)

// Blit errors.
var (
	// ErrNilTarget is returned when Blit is called with a nil source or
	// destination.
	ErrNilTarget = errors.New("render: blit target is nil")

	// ErrUnknownPass is returned for a Pass value the blitter does not
	// implement.
	ErrUnknownPass = errors.New("render: unknown blit pass")
)

// Pass selects the kernel a Blit invocation runs. The pass set is fixed:
// these five kernels are the only GPU programs the blur pipeline needs.
type Pass uint8

const (
	// PassCopy copies src into dst, scaling if dimensions differ.
	PassCopy Pass = iota

	// PassDownsample runs the dual-filter downsample kernel: one center
	// tap weighted 4x plus four diagonal taps, normalized by 8.
	PassDownsample

	// PassUpsample runs the dual-filter upsample kernel: four edge taps
	// plus four diagonal taps weighted 2x, normalized by 12.
	PassUpsample

	// PassKawase runs the iterative Kawase kernel: four diagonal taps
	// averaged, with the tap distance growing per iteration.
	PassKawase

	// PassBlend linearly interpolates between src and Source2 by the
	// Blend factor (0 selects src, 1 selects Source2).
	PassBlend
)

// String returns the pass name for logging.
func (p Pass) String() string {
	switch p {
	case PassCopy:
		return "copy"
	case PassDownsample:
		return "downsample"
	case PassUpsample:
		return "upsample"
	case PassKawase:
		return "kawase"
	case PassBlend:
		return "blend"
	default:
		return "unknown"
	}
}

// BlitParams carries the per-draw uniforms for a Blit invocation.
// Offset and HalfPixel are in UV units (texels divided by the
// destination dimensions), matching what the kernel shaders expect.
type BlitParams struct {
	// Offset is the kernel sample offset.
	Offset mgl32.Vec2

	// HalfPixel is half the destination texel size.
	HalfPixel mgl32.Vec2

	// Blend is the interpolation factor for PassBlend. Ignored by other
	// passes.
	Blend float32

	// Source2 is the second input for PassBlend. Ignored by other
	// passes.
	Source2 Target
}

// Blitter executes full-screen kernel passes between targets.
//
// This is the single drawing primitive the blur algorithms require from
// a backend: sample src (and Source2 for blends) with the kernel
// selected by pass, write dst. Implementations must accept src and dst
// of different sizes for PassCopy, PassDownsample and PassUpsample; the
// remaining passes always see equal dimensions.
//
// Blit is called from the render thread only and must not retain the
// targets after returning.
type Blitter interface {
	Blit(src, dst Target, pass Pass, params BlitParams) error
}
