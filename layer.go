package acrylic

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/gogpu/acrylic/internal/filter"
	"github.com/gogpu/acrylic/render"
)

// errRetryLater is returned by ensureTargets while an allocation retry
// window is open. The scheduler treats it as a silent skip.
var errRetryLater = errors.New("acrylic: allocation retry pending")

// Layer is one blur layer: a capture point in the host pipeline, a blur
// filter, and a pair of blurred history targets that are cross-faded
// into the published result.
//
// A layer is reference counted. It participates in the frame only while
// at least one consumer holds it enabled. All methods must be called
// from the render thread.
type Layer struct {
	cfg      LayerConfig
	pipe     render.Pipeline
	bindings *render.Bindings
	filter   filter.Filter
	log      *slog.Logger

	// history holds the two most recent blurred results. historyIdx is
	// the slot with the newest one; the other slot is the fade source.
	history    [2]render.Target
	historyIdx int
	blendOut   render.Target
	width      int
	height     int

	activeCount int

	// frameCount is the number of frames since the last capture. Frame
	// zero is the capture frame.
	frameCount         int
	firstFrameRendered bool
	blurred            bool

	boff    *backoff.ExponentialBackOff
	retryAt time.Time
}

func newLayer(cfg LayerConfig, pipe render.Pipeline, bindings *render.Bindings, f filter.Filter, log *slog.Logger) *Layer {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Layer{
		cfg:      cfg,
		pipe:     pipe,
		bindings: bindings,
		filter:   f,
		log:      log,
	}
}

// Name returns the binding name the blurred texture is published under.
func (l *Layer) Name() string { return l.cfg.Name }

// Config returns the layer's configuration.
func (l *Layer) Config() LayerConfig { return l.cfg }

// Active reports whether any consumer holds the layer enabled.
func (l *Layer) Active() bool { return l.activeCount > 0 }

func (l *Layer) enable() { l.activeCount++ }

func (l *Layer) disable() {
	if l.activeCount > 0 {
		l.activeCount--
	}
}

// RequestUpdate schedules a re-blur on the next frame. This is how
// layers with AutoUpdate disabled are refreshed.
func (l *Layer) RequestUpdate() { l.frameCount = 0 }

// NeedsUpdate reports whether the layer has work left to do: a pending
// capture, an unfinished cross-fade, or a standing auto-update schedule.
func (l *Layer) NeedsUpdate() bool {
	if l.cfg.AutoUpdate || !l.firstFrameRendered {
		return true
	}
	// frameCount zero (a pending RequestUpdate) is covered here too,
	// since BlendFrames is never negative after clamping.
	return l.frameCount <= l.cfg.BlendFrames
}

// CaptureNextFrame reports whether the next frame is a capture frame.
func (l *Layer) CaptureNextFrame() bool {
	return l.frameCount == 0 || !l.firstFrameRendered
}

// tick runs one frame: capture if due, then advance the blur and blend
// state machine. cumMask is the cumulative renderable mask for the
// capture.
func (l *Layer) tick(cumMask render.Mask) error {
	captured := false
	if l.CaptureNextFrame() {
		if err := l.ensureTargets(); err != nil {
			if errors.Is(err, errRetryLater) {
				return nil
			}
			return err
		}
		if err := l.pipe.Capture(l.captureSlot(), cumMask, l.cfg.Event); err != nil {
			return fmt.Errorf("acrylic: layer %q: capture: %w", l.cfg.Name, err)
		}
		captured = true
	}
	return l.updateFrame(captured)
}

// captureSlot returns the history slot a new capture lands in. The
// newest-slot index only moves once the capture has been blurred.
func (l *Layer) captureSlot() render.Target {
	return l.history[1-l.historyIdx]
}

// updateFrame advances the state machine by one frame. captured tells
// it whether a fresh capture is sitting in the spare history slot.
func (l *Layer) updateFrame(captured bool) error {
	if captured {
		l.blurred = false
	}

	// First frame: blur immediately and seed both history slots so the
	// cross-fade below never reads an unwritten target.
	if !l.firstFrameRendered {
		if !captured {
			return nil
		}
		newIdx := 1 - l.historyIdx
		if err := l.filter.Apply(l.history[newIdx], l.cfg.BlurPasses); err != nil {
			return fmt.Errorf("acrylic: layer %q: blur: %w", l.cfg.Name, err)
		}
		if err := l.copyTarget(l.history[newIdx], l.history[l.historyIdx]); err != nil {
			return err
		}
		l.historyIdx = newIdx
		l.firstFrameRendered = true
		l.blurred = true
		l.publish(l.history[newIdx])
		l.advance()
		return nil
	}

	// Every-frame mode: re-blur each capture, no temporal blending.
	if l.cfg.UpdatePeriod <= 1 {
		if captured {
			newIdx := 1 - l.historyIdx
			if err := l.filter.Apply(l.history[newIdx], l.cfg.BlurPasses); err != nil {
				return fmt.Errorf("acrylic: layer %q: blur: %w", l.cfg.Name, err)
			}
			l.historyIdx = newIdx
			l.blurred = true
		}
		l.publish(l.history[l.historyIdx])
		l.advance()
		return nil
	}

	// Amortized mode: blur the capture once, then fade from the
	// previous result to the new one over BlendFrames frames.
	if captured && !l.blurred {
		newIdx := 1 - l.historyIdx
		if err := l.filter.Apply(l.history[newIdx], l.cfg.BlurPasses); err != nil {
			return fmt.Errorf("acrylic: layer %q: blur: %w", l.cfg.Name, err)
		}
		l.historyIdx = newIdx
		l.blurred = true
	}

	newest := l.history[l.historyIdx]
	previous := l.history[1-l.historyIdx]
	f := l.blendFactor()
	switch {
	case f <= 0:
		l.publish(previous)
	case f >= 1:
		l.publish(newest)
	default:
		params := render.BlitParams{Blend: f, Source2: newest}
		if err := l.pipe.Blitter().Blit(previous, l.blendOut, render.PassBlend, params); err != nil {
			return fmt.Errorf("acrylic: layer %q: blend: %w", l.cfg.Name, err)
		}
		l.publish(l.blendOut)
	}
	l.advance()
	return nil
}

// blendFactor maps frames-since-capture to the cross-fade weight.
// BlendFrames of zero means no fade: the newest result wins outright.
func (l *Layer) blendFactor() float32 {
	if l.cfg.BlendFrames <= 0 {
		return 1
	}
	return float32(l.frameCount) / float32(l.cfg.BlendFrames)
}

func (l *Layer) advance() {
	l.frameCount++
	if l.cfg.AutoUpdate && l.frameCount >= l.cfg.UpdatePeriod {
		l.frameCount = 0
	}
}

func (l *Layer) publish(t render.Target) {
	l.bindings.Set(l.cfg.Name, t)
}

func (l *Layer) copyTarget(src, dst render.Target) error {
	if err := l.pipe.Blitter().Blit(src, dst, render.PassCopy, render.BlitParams{}); err != nil {
		return fmt.Errorf("acrylic: layer %q: copy: %w", l.cfg.Name, err)
	}
	return nil
}

// targetSize is the frame size shifted down by the downsample factor,
// never below one pixel per axis.
func (l *Layer) targetSize() (int, int) {
	fw, fh := l.pipe.FrameSize()
	w := fw >> l.cfg.Downsample
	h := fh >> l.cfg.Downsample
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	return w, h
}

// ensureTargets allocates or reallocates the history and blend targets
// to match the current frame size. Allocation failures park the layer
// behind an exponential retry window instead of failing every frame.
func (l *Layer) ensureTargets() error {
	w, h := l.targetSize()
	if l.history[0] != nil && w == l.width && h == l.height {
		return nil
	}
	if !l.retryAt.IsZero() && time.Now().Before(l.retryAt) {
		return errRetryLater
	}

	l.releaseTargets()
	alloc := l.pipe.Targets()
	targets := make([]render.Target, 0, 3)
	fail := func(err error) error {
		for _, t := range targets {
			alloc.Release(t)
		}
		l.park()
		return fmt.Errorf("acrylic: layer %q: alloc %dx%d: %w", l.cfg.Name, w, h, err)
	}
	for i := 0; i < 3; i++ {
		t, err := alloc.Alloc(w, h)
		if err != nil {
			return fail(err)
		}
		targets = append(targets, t)
	}
	l.history[0], l.history[1], l.blendOut = targets[0], targets[1], targets[2]
	l.width, l.height = w, h
	l.retryAt = time.Time{}
	if l.boff != nil {
		l.boff.Reset()
	}

	// A resize invalidates all blurred content.
	l.historyIdx = 0
	l.frameCount = 0
	l.firstFrameRendered = false
	l.blurred = false
	return nil
}

func (l *Layer) park() {
	if l.boff == nil {
		l.boff = backoff.NewExponentialBackOff()
		l.boff.InitialInterval = 100 * time.Millisecond
		l.boff.MaxInterval = 5 * time.Second
		l.boff.MaxElapsedTime = 0
	}
	l.retryAt = time.Now().Add(l.boff.NextBackOff())
	l.log.Warn("layer parked after allocation failure",
		slog.String("layer", l.cfg.Name),
		slog.Time("retryAt", l.retryAt))
}

func (l *Layer) releaseTargets() {
	alloc := l.pipe.Targets()
	for i, t := range l.history {
		if t != nil {
			alloc.Release(t)
			l.history[i] = nil
		}
	}
	if l.blendOut != nil {
		alloc.Release(l.blendOut)
		l.blendOut = nil
	}
	l.width, l.height = 0, 0
}

// release frees the layer's targets and filter and withdraws its
// published binding.
func (l *Layer) release() {
	l.releaseTargets()
	if l.filter != nil {
		l.filter.Release()
	}
	l.bindings.Set(l.cfg.Name, nil)
	l.frameCount = 0
	l.firstFrameRendered = false
	l.blurred = false
}
