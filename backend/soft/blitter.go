package soft

import (
	"errors"
	"fmt"
	"image"
	"math"

	xdraw "golang.org/x/image/draw"

	"github.com/gogpu/acrylic/render"
)

// ErrNoCPUAccess is returned when a target has no CPU-visible pixels.
var ErrNoCPUAccess = errors.New("soft: target has no CPU pixels")

// Blitter runs the kernel passes on the CPU. The zero value is ready to
// use. Sources and destinations must not alias except for PassCopy with
// identical bounds, which is then a no-op.
type Blitter struct{}

// Blit executes one kernel pass from src into dst.
func (Blitter) Blit(src, dst render.Target, pass render.Pass, params render.BlitParams) error {
	if src == nil || dst == nil {
		return render.ErrNilTarget
	}
	switch pass {
	case render.PassCopy:
		return blitCopy(src, dst)
	case render.PassDownsample:
		hx, hy := params.HalfPixel.X(), params.HalfPixel.Y()
		return blitKernel(src, dst, []tap{
			{0, 0, 4},
			{-hx, -hy, 1}, {hx, -hy, 1},
			{-hx, hy, 1}, {hx, hy, 1},
		}, 8)
	case render.PassUpsample:
		ox, oy := params.Offset.X(), params.Offset.Y()
		return blitKernel(src, dst, []tap{
			{-2 * ox, 0, 1}, {2 * ox, 0, 1},
			{0, -2 * oy, 1}, {0, 2 * oy, 1},
			{-ox, -oy, 2}, {ox, -oy, 2},
			{-ox, oy, 2}, {ox, oy, 2},
		}, 12)
	case render.PassKawase:
		ox, oy := params.Offset.X(), params.Offset.Y()
		return blitKernel(src, dst, []tap{
			{-ox, -oy, 1}, {ox, -oy, 1},
			{-ox, oy, 1}, {ox, oy, 1},
		}, 4)
	case render.PassBlend:
		return blitBlend(src, params.Source2, dst, params.Blend)
	default:
		return fmt.Errorf("%w: %v", render.ErrUnknownPass, pass)
	}
}

var _ render.Blitter = Blitter{}

// rgba exposes a target's pixels as an *image.RGBA without copying.
func rgba(t render.Target) (*image.RGBA, error) {
	pix := t.Pixels()
	if pix == nil {
		return nil, fmt.Errorf("%w: %dx%d", ErrNoCPUAccess, t.Width(), t.Height())
	}
	return &image.RGBA{
		Pix:    pix,
		Stride: t.Stride(),
		Rect:   image.Rect(0, 0, t.Width(), t.Height()),
	}, nil
}

func blitCopy(src, dst render.Target) error {
	s, err := rgba(src)
	if err != nil {
		return err
	}
	d, err := rgba(dst)
	if err != nil {
		return err
	}
	if s.Rect == d.Rect {
		if &s.Pix[0] == &d.Pix[0] {
			return nil
		}
		for y := 0; y < d.Rect.Dy(); y++ {
			copy(d.Pix[y*d.Stride:y*d.Stride+d.Rect.Dx()*4],
				s.Pix[y*s.Stride:])
		}
		return nil
	}
	xdraw.ApproxBiLinear.Scale(d, d.Rect, s, s.Rect, xdraw.Src, nil)
	return nil
}

// tap is one kernel sample: a UV-space offset and its weight.
type tap struct {
	du, dv float32
	w      float32
}

// blitKernel evaluates a tap kernel for every destination pixel,
// sampling the source bilinearly with clamp-to-edge addressing.
func blitKernel(src, dst render.Target, taps []tap, norm float32) error {
	s, err := rgba(src)
	if err != nil {
		return err
	}
	d, err := rgba(dst)
	if err != nil {
		return err
	}

	sw, sh := float32(s.Rect.Dx()), float32(s.Rect.Dy())
	dw, dh := d.Rect.Dx(), d.Rect.Dy()
	inv := 1 / norm
	for y := 0; y < dh; y++ {
		v := (float32(y) + 0.5) / float32(dh)
		row := d.Pix[y*d.Stride:]
		for x := 0; x < dw; x++ {
			u := (float32(x) + 0.5) / float32(dw)
			var acc [4]float32
			for _, t := range taps {
				px := sampleBilinear(s, (u+t.du)*sw-0.5, (v+t.dv)*sh-0.5)
				acc[0] += px[0] * t.w
				acc[1] += px[1] * t.w
				acc[2] += px[2] * t.w
				acc[3] += px[3] * t.w
			}
			o := x * 4
			row[o+0] = clampUint8(acc[0]*inv + 0.5)
			row[o+1] = clampUint8(acc[1]*inv + 0.5)
			row[o+2] = clampUint8(acc[2]*inv + 0.5)
			row[o+3] = clampUint8(acc[3]*inv + 0.5)
		}
	}
	return nil
}

func blitBlend(src, src2, dst render.Target, blend float32) error {
	if src2 == nil {
		return render.ErrNilTarget
	}
	a, err := rgba(src)
	if err != nil {
		return err
	}
	b, err := rgba(src2)
	if err != nil {
		return err
	}
	d, err := rgba(dst)
	if err != nil {
		return err
	}
	if a.Rect != d.Rect || b.Rect != d.Rect {
		return fmt.Errorf("soft: blend size mismatch: %v, %v -> %v",
			a.Rect, b.Rect, d.Rect)
	}
	if blend < 0 {
		blend = 0
	} else if blend > 1 {
		blend = 1
	}

	w4 := d.Rect.Dx() * 4
	for y := 0; y < d.Rect.Dy(); y++ {
		ra := a.Pix[y*a.Stride : y*a.Stride+w4]
		rb := b.Pix[y*b.Stride : y*b.Stride+w4]
		rd := d.Pix[y*d.Stride : y*d.Stride+w4]
		for i := 0; i < w4; i++ {
			va := float32(ra[i])
			vb := float32(rb[i])
			rd[i] = clampUint8(va + (vb-va)*blend + 0.5)
		}
	}
	return nil
}

// sampleBilinear reads the source at a fractional pixel position with
// clamp-to-edge addressing.
func sampleBilinear(img *image.RGBA, x, y float32) [4]float32 {
	fx := float32(math.Floor(float64(x)))
	fy := float32(math.Floor(float64(y)))
	tx := x - fx
	ty := y - fy

	w, h := img.Rect.Dx(), img.Rect.Dy()
	x0 := clampInt(int(fx), 0, w-1)
	x1 := clampInt(int(fx)+1, 0, w-1)
	y0 := clampInt(int(fy), 0, h-1)
	y1 := clampInt(int(fy)+1, 0, h-1)

	p00 := texel(img, x0, y0)
	p10 := texel(img, x1, y0)
	p01 := texel(img, x0, y1)
	p11 := texel(img, x1, y1)

	var out [4]float32
	for c := 0; c < 4; c++ {
		top := p00[c] + (p10[c]-p00[c])*tx
		bot := p01[c] + (p11[c]-p01[c])*tx
		out[c] = top + (bot-top)*ty
	}
	return out
}

func texel(img *image.RGBA, x, y int) [4]float32 {
	o := y*img.Stride + x*4
	return [4]float32{
		float32(img.Pix[o+0]),
		float32(img.Pix[o+1]),
		float32(img.Pix[o+2]),
		float32(img.Pix[o+3]),
	}
}

func clampUint8(v float32) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
