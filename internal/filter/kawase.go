package filter

import (
	"fmt"
	"log/slog"

	"github.com/gogpu/acrylic/render"
)

// Kawase applies an iterative Kawase blur: the image ping-pongs with a
// single full-resolution scratch buffer, sampling four diagonal taps
// whose distance grows by one texel each pass (0.5, 1.5, 2.5, ...).
//
// Cheaper in memory than Dual (one scratch buffer instead of a chain)
// but touches every pixel every pass, so it scales worse with pass
// count. The scratch buffer is cached between calls and resized when
// the image size changes.
type Kawase struct {
	blitter render.Blitter
	alloc   render.Allocator
	log     *slog.Logger

	scratch       render.Target
	width, height int
}

// NewKawase creates an iterative Kawase blur. A nil log disables
// diagnostics.
func NewKawase(blitter render.Blitter, alloc render.Allocator, log *slog.Logger) *Kawase {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Kawase{
		blitter: blitter,
		alloc:   alloc,
		log:     log,
	}
}

// Apply blurs img in place with the given number of passes.
func (k *Kawase) Apply(img render.Target, passes int) error {
	if img == nil {
		return render.ErrNilTarget
	}
	if passes <= 0 {
		return nil
	}

	w, h := img.Width(), img.Height()
	if w < 2 || h < 2 {
		return nil
	}
	if err := k.ensureScratch(w, h); err != nil {
		return err
	}

	texel := texelSize(img)
	cur, other := render.Target(img), k.scratch
	for i := 0; i < passes; i++ {
		dist := float32(i) + 0.5
		err := k.blitter.Blit(cur, other, render.PassKawase, render.BlitParams{
			Offset:    texel.Mul(dist),
			HalfPixel: texel.Mul(0.5),
		})
		if err != nil {
			return fmt.Errorf("kawase pass %d: %w", i, err)
		}
		cur, other = other, cur
	}

	// An odd pass count leaves the result in the scratch buffer.
	if cur != render.Target(img) {
		if err := k.blitter.Blit(cur, img, render.PassCopy, render.BlitParams{}); err != nil {
			return fmt.Errorf("kawase resolve copy: %w", err)
		}
	}
	return nil
}

// Release frees the scratch buffer.
func (k *Kawase) Release() {
	if k.scratch != nil {
		k.alloc.Release(k.scratch)
		k.scratch = nil
	}
	k.width, k.height = 0, 0
}

func (k *Kawase) ensureScratch(w, h int) error {
	if k.scratch != nil && w == k.width && h == k.height {
		return nil
	}
	k.Release()

	buf, err := k.alloc.Alloc(w, h)
	if err != nil {
		return fmt.Errorf("kawase scratch (%dx%d): %w", w, h, err)
	}
	k.scratch = buf
	k.width, k.height = w, h
	k.log.Debug("kawase scratch rebuilt", "width", w, "height", h)
	return nil
}

// Ensure Kawase implements Filter.
var _ Filter = (*Kawase)(nil)
