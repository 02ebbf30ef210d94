package filter

import (
	"fmt"

	"github.com/gogpu/acrylic/render"
)

// recordedBlit captures one Blit invocation for assertions.
type recordedBlit struct {
	src, dst render.Target
	pass     render.Pass
	params   render.BlitParams
}

// recordingBlitter records every Blit without touching pixels.
type recordingBlitter struct {
	blits []recordedBlit
	err   error // returned from every Blit when set
}

func (b *recordingBlitter) Blit(src, dst render.Target, pass render.Pass, params render.BlitParams) error {
	if b.err != nil {
		return b.err
	}
	b.blits = append(b.blits, recordedBlit{src: src, dst: dst, pass: pass, params: params})
	return nil
}

func (b *recordingBlitter) reset() { b.blits = nil }

// countingAllocator wraps PixmapAllocator and counts allocations and
// releases, optionally failing after a given number of allocations.
type countingAllocator struct {
	inner     render.PixmapAllocator
	allocs    int
	releases  int
	failAfter int // fail when allocs reaches this count; 0 disables
}

func (a *countingAllocator) Alloc(w, h int) (render.Target, error) {
	if a.failAfter > 0 && a.allocs >= a.failAfter {
		return nil, fmt.Errorf("forced failure: %w", render.ErrAllocFailed)
	}
	a.allocs++
	return a.inner.Alloc(w, h)
}

func (a *countingAllocator) Release(t render.Target) {
	if t != nil {
		a.releases++
	}
	a.inner.Release(t)
}
