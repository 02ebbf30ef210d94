package acrylic

import (
	"github.com/google/uuid"

	"github.com/gogpu/acrylic/render"
)

// FilterMethod selects the blur kernel used by every layer.
type FilterMethod uint8

const (
	// FilterDual is the hierarchical dual-filter blur. Cheapest for
	// large radii and the default.
	FilterDual FilterMethod = iota
	// FilterKawase is the classic iterative Kawase blur on a single
	// scratch buffer. Useful when buffer memory is tight.
	FilterKawase
)

// String returns the method name for logging and config files.
func (m FilterMethod) String() string {
	switch m {
	case FilterKawase:
		return "kawase"
	default:
		return "dual"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (m FilterMethod) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. Unknown names
// fall back to the dual filter.
func (m *FilterMethod) UnmarshalText(text []byte) error {
	if string(text) == "kawase" {
		*m = FilterKawase
	} else {
		*m = FilterDual
	}
	return nil
}

// Valid ranges for layer parameters. Values outside these ranges are
// clamped when a config is loaded, never rejected.
const (
	MinBlurPasses = 2
	MaxBlurPasses = 7

	MinDownsample = 0
	MaxDownsample = 2

	MinBlendFrames = 0
	MaxBlendFrames = 60

	MinUpdatePeriod = 1
	MaxUpdatePeriod = 60
)

// LayerConfig describes one blur layer.
//
// Name is the binding name the blurred texture is published under; an
// empty name gets a generated unique one. Mask selects which renderables
// the capture includes. UpdatePeriod is the number of frames between
// re-blurs, BlendFrames the length of the cross-fade between the
// previous and the freshly blurred result.
type LayerConfig struct {
	Name         string              `json:"name"`
	Event        render.CaptureEvent `json:"event"`
	Mask         render.Mask         `json:"mask"`
	BlurPasses   int                 `json:"blurPasses"`
	Downsample   int                 `json:"downsample"`
	BlendFrames  int                 `json:"blendFrames"`
	UpdatePeriod int                 `json:"updatePeriod"`
	AutoUpdate   bool                `json:"autoUpdate"`
	RenderIndex  int                 `json:"renderIndex"`
}

// DefaultLayerConfig returns a layer that re-blurs every frame at half
// resolution with no cross-fade.
func DefaultLayerConfig() LayerConfig {
	return LayerConfig{
		Event:        render.CaptureAfterTransparents,
		Mask:         render.MaskAll,
		BlurPasses:   5,
		Downsample:   1,
		BlendFrames:  0,
		UpdatePeriod: 1,
		AutoUpdate:   true,
		RenderIndex:  -1,
	}
}

// clamped returns the config with every parameter forced into its valid
// range and an empty Name replaced by a generated unique binding name.
func (c LayerConfig) clamped() LayerConfig {
	c.BlurPasses = clampInt(c.BlurPasses, MinBlurPasses, MaxBlurPasses)
	c.Downsample = clampInt(c.Downsample, MinDownsample, MaxDownsample)
	c.BlendFrames = clampInt(c.BlendFrames, MinBlendFrames, MaxBlendFrames)
	c.UpdatePeriod = clampInt(c.UpdatePeriod, MinUpdatePeriod, MaxUpdatePeriod)
	if c.Name == "" {
		c.Name = "AcrylicBlur-" + uuid.NewString()
	}
	return c
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

// Config is the full scheduler configuration.
type Config struct {
	Filter FilterMethod  `json:"filter"`
	Layers []LayerConfig `json:"layers"`
}

// DefaultConfig returns a config with a single default layer.
func DefaultConfig() Config {
	return Config{
		Filter: FilterDual,
		Layers: []LayerConfig{DefaultLayerConfig()},
	}
}

// normalized clamps every layer in place and returns the config.
func (c Config) normalized() Config {
	layers := make([]LayerConfig, len(c.Layers))
	for i, l := range c.Layers {
		layers[i] = l.clamped()
	}
	c.Layers = layers
	return c
}
