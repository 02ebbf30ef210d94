package acrylic

import (
	"errors"
	"log/slog"

	"github.com/gogpu/acrylic/internal/filter"
	"github.com/gogpu/acrylic/render"
)

// ErrNotInitialized is returned by operations that need a working
// pipeline before Initialize has succeeded.
var ErrNotInitialized = errors.New("acrylic: scheduler not initialized")

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithLogger sets the logger used by the scheduler and its layers.
// A nil logger silences them.
func WithLogger(log *slog.Logger) Option {
	return func(s *Scheduler) {
		if log == nil {
			log = slog.New(slog.DiscardHandler)
		}
		s.log = log
	}
}

// WithBindings publishes blurred textures into an existing binding set
// instead of a private one. Useful when the host already routes shader
// inputs through a shared set.
func WithBindings(b *render.Bindings) Option {
	return func(s *Scheduler) {
		if b != nil {
			s.bindings = b
		}
	}
}

// captureFeature marks a capture point in the host's feature list. The
// host uses the list to know which events it must retain frame content
// for; the scheduler performs the actual captures during Tick.
type captureFeature struct {
	name  string
	event render.CaptureEvent
}

func (f *captureFeature) Name() string               { return f.name }
func (f *captureFeature) Event() render.CaptureEvent { return f.event }

var _ render.Feature = (*captureFeature)(nil)

// Scheduler owns a set of blur layers and drives them one frame at a
// time. The host calls Tick once per rendered frame; everything else is
// bookkeeping around which layers are live.
//
// All methods must be called from the render thread.
type Scheduler struct {
	cfg      Config
	pipe     render.Pipeline
	bindings *render.Bindings
	log      *slog.Logger

	layers      []*Layer
	features    []*captureFeature
	active      bool
	initialized bool
}

// NewScheduler builds a scheduler for the given pipeline. The config is
// clamped into valid ranges first. Call Initialize before the first
// Tick.
func NewScheduler(cfg Config, pipe render.Pipeline, opts ...Option) *Scheduler {
	s := &Scheduler{
		cfg:      cfg.normalized(),
		pipe:     pipe,
		bindings: render.NewBindings(),
		log:      Logger(),
		active:   true,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Initialize builds the layers and their filters. It is idempotent. A
// nil pipeline logs a warning and leaves the scheduler degraded: every
// operation becomes a no-op rather than a crash.
func (s *Scheduler) Initialize() error {
	if s.initialized {
		return nil
	}
	if s.pipe == nil {
		s.log.Warn("no pipeline provided, blur layers disabled")
		return ErrNotInitialized
	}
	s.layers = make([]*Layer, len(s.cfg.Layers))
	s.features = make([]*captureFeature, len(s.cfg.Layers))
	for i, lc := range s.cfg.Layers {
		s.layers[i] = newLayer(lc, s.pipe, s.bindings, s.newFilter(), s.log)
		s.features[i] = &captureFeature{name: lc.Name, event: lc.Event}
	}
	s.initialized = true
	s.log.Info("scheduler initialized",
		slog.Int("layers", len(s.layers)),
		slog.String("filter", s.cfg.Filter.String()))
	return nil
}

func (s *Scheduler) newFilter() filter.Filter {
	switch s.cfg.Filter {
	case FilterKawase:
		return filter.NewKawase(s.pipe.Blitter(), s.pipe.Targets(), s.log)
	default:
		return filter.NewDual(s.pipe.Blitter(), s.pipe.Targets(), s.log)
	}
}

// Bindings returns the set the blurred textures are published into.
func (s *Scheduler) Bindings() *render.Bindings { return s.bindings }

// Layer returns the layer at index i, or nil when out of range.
func (s *Scheduler) Layer(i int) *Layer {
	if i < 0 || i >= len(s.layers) {
		return nil
	}
	return s.layers[i]
}

// LayerCount returns the number of configured layers.
func (s *Scheduler) LayerCount() int { return len(s.layers) }

// EnableLayer adds one consumer reference to layer i. Out-of-range
// indices are ignored.
func (s *Scheduler) EnableLayer(i int) {
	l := s.Layer(i)
	if l == nil {
		return
	}
	l.enable()
	s.refreshFeatures(false)
}

// DisableLayer drops one consumer reference from layer i. The count
// never goes below zero. Out-of-range indices are ignored.
func (s *Scheduler) DisableLayer(i int) {
	l := s.Layer(i)
	if l == nil {
		return
	}
	l.disable()
	s.refreshFeatures(false)
}

// SetActive flips the global kill switch. While inactive every capture
// feature is withdrawn and Tick does nothing; published bindings keep
// their last content. Re-activating restores the features of all
// enabled layers.
func (s *Scheduler) SetActive(active bool) {
	s.active = active
	s.refreshFeatures(false)
}

// Active reports the global kill switch.
func (s *Scheduler) Active() bool { return s.active }

// CumulativeMask returns the union of the masks of layer i and every
// layer after it. A capture for layer i must include everything any
// later layer also wants to see blurred.
func (s *Scheduler) CumulativeMask(i int) render.Mask {
	var m render.Mask
	for j := i; j < len(s.cfg.Layers); j++ {
		m |= s.cfg.Layers[j].Mask
	}
	return m
}

// Tick runs one frame. Feature membership is recomputed first: all our
// features are withdrawn and only the ones due to capture next frame
// are re-added. Then every enabled layer advances its blur and blend
// state. Returns the joined errors of failed layers; a failed layer
// does not stop the others.
func (s *Scheduler) Tick() error {
	if !s.initialized || !s.active {
		return nil
	}

	s.refreshFeatures(true)

	work := false
	for _, l := range s.layers {
		if l.Active() && l.NeedsUpdate() {
			work = true
			break
		}
	}
	if !work {
		return nil
	}

	var errs []error
	for i, l := range s.layers {
		if !l.Active() {
			continue
		}
		if err := l.tick(s.CumulativeMask(i)); err != nil {
			s.log.Warn("layer frame failed",
				slog.String("layer", l.Name()),
				slog.Any("error", err))
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// refreshFeatures rebuilds our slice of the host's feature list:
// remove everything, then re-add the features of enabled layers.
// dueOnly restricts the re-add to layers capturing next frame.
func (s *Scheduler) refreshFeatures(dueOnly bool) {
	if !s.initialized {
		return
	}
	fl := s.pipe.Features()
	for _, f := range s.features {
		fl.Remove(f)
	}
	if !s.active {
		return
	}
	for i, l := range s.layers {
		if !l.Active() {
			continue
		}
		if dueOnly && !l.CaptureNextFrame() {
			continue
		}
		idx := l.cfg.RenderIndex
		if idx < 0 {
			idx = fl.Len()
		}
		fl.Insert(s.features[i], idx)
	}
}

// Close releases every layer's targets and filter, withdraws all
// capture features and published bindings, and returns the scheduler
// to its pre-Initialize state.
func (s *Scheduler) Close() error {
	if !s.initialized {
		return nil
	}
	fl := s.pipe.Features()
	for _, f := range s.features {
		fl.Remove(f)
	}
	for _, l := range s.layers {
		l.release()
	}
	s.layers = nil
	s.features = nil
	s.initialized = false
	return nil
}
