package render

// Mask is a render-layer bitmask selecting which scene content a
// capture includes. Bit assignment is host-defined; acrylic only
// composes masks with bitwise OR.
type Mask uint32

// MaskAll captures everything.
const MaskAll Mask = 0xFFFFFFFF

// CaptureEvent is the point in the host frame at which a layer's scene
// capture runs.
type CaptureEvent uint8

const (
	// CaptureAfterOpaques captures after the opaque queue has rendered.
	CaptureAfterOpaques CaptureEvent = iota

	// CaptureAfterTransparents captures after the transparent queue has
	// rendered.
	CaptureAfterTransparents

	// CaptureRenderToTexture issues a dedicated offscreen render at
	// frame begin, before the main view renders.
	CaptureRenderToTexture
)

// String returns the event name for logging and config files.
func (e CaptureEvent) String() string {
	switch e {
	case CaptureAfterOpaques:
		return "after-opaques"
	case CaptureAfterTransparents:
		return "after-transparents"
	case CaptureRenderToTexture:
		return "render-to-texture"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler so config files carry
// event names instead of magic numbers.
func (e CaptureEvent) MarshalText() ([]byte, error) {
	return []byte(e.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. Unknown names
// default to after-transparents, the least surprising capture point.
func (e *CaptureEvent) UnmarshalText(text []byte) error {
	switch string(text) {
	case "after-opaques":
		*e = CaptureAfterOpaques
	case "render-to-texture":
		*e = CaptureRenderToTexture
	default:
		*e = CaptureAfterTransparents
	}
	return nil
}

// Pipeline is the host renderer binding the scheduler acquires once at
// initialization.
//
// The host implements Pipeline and drives the scheduler by calling
// Scheduler.Tick from its frame-begin callback, once per rendered frame.
type Pipeline interface {
	// Features returns the pipeline's mutable pass list.
	Features() FeatureList

	// Blitter returns the full-screen pass primitive.
	Blitter() Blitter

	// Targets returns the allocator layer targets come from.
	Targets() Allocator

	// FrameSize returns the current frame dimensions in pixels. Layer
	// targets are sized from this, divided by each layer's downsample
	// factor.
	FrameSize() (width, height int)

	// Capture renders the current scene into dst at the given event,
	// restricted to content matched by mask. Returns an error if the
	// scene cannot be rendered this frame; the layer then skips its
	// update and retries on its next due frame.
	Capture(dst Target, mask Mask, event CaptureEvent) error
}
