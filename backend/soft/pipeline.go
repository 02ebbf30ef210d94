package soft

import (
	"image"

	"github.com/gogpu/acrylic/render"
)

// Pipeline is a minimal offscreen host. It holds the current frame as a
// plain image and serves captures by scaling it into the destination
// target. Renderable masks are ignored: a flat image has no renderable
// classification, so every capture sees the whole frame.
//
// Real hosts implement render.Pipeline against their own renderer; this
// one exists for examples, tools and tests.
type Pipeline struct {
	features render.PassList
	blitter  Blitter
	alloc    render.PixmapAllocator
	frame    *render.PixmapTarget
}

// NewPipeline creates a pipeline with the given frame content.
func NewPipeline(frame *image.RGBA) *Pipeline {
	return &Pipeline{frame: render.NewPixmapTargetFromImage(frame)}
}

// SetFrame replaces the current frame content.
func (p *Pipeline) SetFrame(frame *image.RGBA) {
	p.frame = render.NewPixmapTargetFromImage(frame)
}

// Features returns the host feature list.
func (p *Pipeline) Features() render.FeatureList { return &p.features }

// Blitter returns the CPU blitter.
func (p *Pipeline) Blitter() render.Blitter { return p.blitter }

// Targets returns the pixmap allocator.
func (p *Pipeline) Targets() render.Allocator { return p.alloc }

// FrameSize returns the dimensions of the current frame.
func (p *Pipeline) FrameSize() (int, int) {
	return p.frame.Width(), p.frame.Height()
}

// Capture scales the current frame into dst.
func (p *Pipeline) Capture(dst render.Target, _ render.Mask, _ render.CaptureEvent) error {
	return p.blitter.Blit(p.frame, dst, render.PassCopy, render.BlitParams{})
}

var _ render.Pipeline = (*Pipeline)(nil)
