package filter

import (
	"fmt"
	"log/slog"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/gogpu/acrylic/render"
)

// Dual applies a hierarchical dual-filter blur: a chain of progressively
// half-sized buffers is rendered top-down with the downsample kernel,
// then bottom-up with the upsample kernel, finishing back in the input
// image.
//
// The buffer chain is cached between calls and rebuilt only when the
// requested width, height, or pass count changes. Chain buffers are
// owned exclusively by this instance and freed on Release.
type Dual struct {
	blitter render.Blitter
	alloc   render.Allocator
	log     *slog.Logger

	chain []render.Target

	// Cache key for the current chain.
	width, height, passes int
}

// NewDual creates a dual-filter blur issuing work through blitter and
// allocating chain buffers from alloc. A nil log disables diagnostics.
func NewDual(blitter render.Blitter, alloc render.Allocator, log *slog.Logger) *Dual {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Dual{
		blitter: blitter,
		alloc:   alloc,
		log:     log,
	}
}

// Apply blurs img in place with the given number of downsample/upsample
// pass pairs. Images smaller than 3x3 cannot be downsampled and are
// returned unchanged.
func (d *Dual) Apply(img render.Target, passes int) error {
	if img == nil {
		return render.ErrNilTarget
	}
	if passes <= 0 {
		return nil
	}

	w, h := img.Width(), img.Height()
	if err := d.ensureChain(w, h, passes); err != nil {
		return err
	}
	if len(d.chain) == 0 {
		// Too small to downsample; blur is a no-op.
		return nil
	}

	// Downsample: image -> chain[0] -> chain[1] -> ...
	src := img
	for _, dst := range d.chain {
		texel := texelSize(dst)
		err := d.blitter.Blit(src, dst, render.PassDownsample, render.BlitParams{
			Offset:    texel,
			HalfPixel: texel.Mul(0.5),
		})
		if err != nil {
			return fmt.Errorf("downsample blit: %w", err)
		}
		src = dst
	}

	// Upsample in reverse: ... -> chain[1] -> chain[0] -> image.
	for i := len(d.chain) - 1; i >= 0; i-- {
		dst := img
		if i > 0 {
			dst = d.chain[i-1]
		}
		texel := texelSize(dst)
		err := d.blitter.Blit(d.chain[i], dst, render.PassUpsample, render.BlitParams{
			Offset:    texel.Mul(0.5),
			HalfPixel: texel.Mul(0.5),
		})
		if err != nil {
			return fmt.Errorf("upsample blit: %w", err)
		}
	}
	return nil
}

// Release frees the cached buffer chain.
func (d *Dual) Release() {
	for _, t := range d.chain {
		d.alloc.Release(t)
	}
	d.chain = nil
	d.width, d.height, d.passes = 0, 0, 0
}

// ChainLen returns the current chain length. Zero means the last Apply
// was a no-op (image too small) or no Apply has run yet.
func (d *Dual) ChainLen() int {
	return len(d.chain)
}

// ensureChain rebuilds the buffer chain when the cache key changes.
// Levels are sized ceil(w/2), ceil(h/2), ... and the chain stops early
// once a dimension would fall below 2 pixels.
func (d *Dual) ensureChain(w, h, passes int) error {
	if w == d.width && h == d.height && passes == d.passes {
		return nil
	}
	d.Release()

	cw, ch := w, h
	for i := 0; i < passes; i++ {
		cw, ch = (cw+1)/2, (ch+1)/2
		if cw < 2 || ch < 2 {
			break
		}
		buf, err := d.alloc.Alloc(cw, ch)
		if err != nil {
			d.Release()
			return fmt.Errorf("chain level %d (%dx%d): %w", i, cw, ch, err)
		}
		d.chain = append(d.chain, buf)
	}

	d.width, d.height, d.passes = w, h, passes
	d.log.Debug("dual filter chain rebuilt",
		"width", w, "height", h, "passes", passes, "levels", len(d.chain))
	return nil
}

// texelSize returns (1/w, 1/h) for a target.
func texelSize(t render.Target) mgl32.Vec2 {
	return mgl32.Vec2{
		1 / float32(t.Width()),
		1 / float32(t.Height()),
	}
}

// Ensure Dual implements Filter.
var _ Filter = (*Dual)(nil)
