package acrylic

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gogpu/acrylic/render"
)

func TestLayerConfigClamping(t *testing.T) {
	tests := []struct {
		name string
		in   LayerConfig
		want LayerConfig
	}{
		{
			name: "below range",
			in: LayerConfig{
				Name:         "x",
				BlurPasses:   0,
				Downsample:   -3,
				BlendFrames:  -1,
				UpdatePeriod: 0,
			},
			want: LayerConfig{
				Name:         "x",
				BlurPasses:   MinBlurPasses,
				Downsample:   MinDownsample,
				BlendFrames:  MinBlendFrames,
				UpdatePeriod: MinUpdatePeriod,
			},
		},
		{
			name: "above range",
			in: LayerConfig{
				Name:         "x",
				BlurPasses:   99,
				Downsample:   9,
				BlendFrames:  500,
				UpdatePeriod: 1000,
			},
			want: LayerConfig{
				Name:         "x",
				BlurPasses:   MaxBlurPasses,
				Downsample:   MaxDownsample,
				BlendFrames:  MaxBlendFrames,
				UpdatePeriod: MaxUpdatePeriod,
			},
		},
		{
			name: "in range untouched",
			in: LayerConfig{
				Name:         "x",
				BlurPasses:   4,
				Downsample:   1,
				BlendFrames:  12,
				UpdatePeriod: 15,
			},
			want: LayerConfig{
				Name:         "x",
				BlurPasses:   4,
				Downsample:   1,
				BlendFrames:  12,
				UpdatePeriod: 15,
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.in.clamped(); got != tt.want {
				t.Errorf("clamped() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestLayerConfigGeneratedNames(t *testing.T) {
	a := LayerConfig{}.clamped()
	b := LayerConfig{}.clamped()
	if a.Name == "" || b.Name == "" {
		t.Fatal("empty names not replaced")
	}
	if !strings.HasPrefix(a.Name, "AcrylicBlur-") {
		t.Fatalf("generated name %q missing prefix", a.Name)
	}
	if a.Name == b.Name {
		t.Fatalf("generated names collide: %q", a.Name)
	}
}

func TestFilterMethodText(t *testing.T) {
	var m FilterMethod
	if err := m.UnmarshalText([]byte("kawase")); err != nil || m != FilterKawase {
		t.Fatalf("UnmarshalText(kawase) = %v, %v", m, err)
	}
	if err := m.UnmarshalText([]byte("nonsense")); err != nil || m != FilterDual {
		t.Fatalf("UnmarshalText(nonsense) = %v, want dual fallback", m)
	}
}

func TestLoadConfig(t *testing.T) {
	const doc = `{
		"filter": "kawase",
		"layers": [
			{
				"name": "menu",
				"event": "after-opaques",
				"mask": 7,
				"blurPasses": 99,
				"downsample": 1,
				"blendFrames": 8,
				"updatePeriod": 12,
				"autoUpdate": true
			},
			{}
		]
	}`
	path := filepath.Join(t.TempDir(), "acrylic.json")
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Filter != FilterKawase {
		t.Errorf("Filter = %v, want kawase", cfg.Filter)
	}
	if len(cfg.Layers) != 2 {
		t.Fatalf("layers = %d, want 2", len(cfg.Layers))
	}
	menu := cfg.Layers[0]
	if menu.Event != render.CaptureAfterOpaques {
		t.Errorf("Event = %v, want after-opaques", menu.Event)
	}
	if menu.BlurPasses != MaxBlurPasses {
		t.Errorf("BlurPasses = %d, want clamped to %d", menu.BlurPasses, MaxBlurPasses)
	}
	if menu.Mask != 7 || menu.UpdatePeriod != 12 || menu.BlendFrames != 8 {
		t.Errorf("unexpected layer values: %+v", menu)
	}
	// The empty second layer gets a generated name and valid ranges.
	if cfg.Layers[1].Name == "" {
		t.Error("empty layer name not generated")
	}
	if cfg.Layers[1].UpdatePeriod < MinUpdatePeriod {
		t.Errorf("UpdatePeriod = %d below minimum", cfg.Layers[1].UpdatePeriod)
	}
}

func TestLoadConfigErrors(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatal("want error for missing file")
	}

	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := LoadConfig(path)
	if !errors.Is(err, ErrConfigInvalid) {
		t.Fatalf("err = %v, want ErrConfigInvalid", err)
	}
}

func TestWatchConfigReloads(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "acrylic.json")
	if err := os.WriteFile(path, []byte(`{"layers":[{"name":"a"}]}`), 0o644); err != nil {
		t.Fatal(err)
	}

	reloaded := make(chan Config, 4)
	w, err := WatchConfig(path, func(cfg Config) { reloaded <- cfg })
	if err != nil {
		t.Fatalf("WatchConfig: %v", err)
	}
	defer w.Close()

	if err := os.WriteFile(path, []byte(`{"layers":[{"name":"b"}]}`), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case cfg := <-reloaded:
		if len(cfg.Layers) != 1 || cfg.Layers[0].Name != "b" {
			t.Fatalf("reloaded config = %+v", cfg)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for reload")
	}
}
