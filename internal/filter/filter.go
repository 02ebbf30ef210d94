package filter

import "github.com/gogpu/acrylic/render"

// Filter blurs a render target in place.
//
// Implementations own whatever intermediate buffers they need and cache
// them across calls; buffers are freed only by Release, never
// implicitly. A Filter instance belongs to exactly one layer and is
// driven from the render thread only.
type Filter interface {
	// Apply blurs img in place with the given number of passes.
	// Images too small to blur are left untouched and no error is
	// returned. A nil img is an error.
	Apply(img render.Target, passes int) error

	// Release frees all cached buffers. The filter remains usable;
	// buffers are reallocated on the next Apply.
	Release()
}
