// Package config loads the viewer configuration from YAML.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/nicky-ayoub/ebitreveal/internal/reveal"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid config")

// Config holds all viewer configuration.
type Config struct {
	Window  WindowConfig  `yaml:"window"`
	Slider  SliderConfig  `yaml:"slider"`
	Catalog CatalogConfig `yaml:"catalog"`
	Strip   StripConfig   `yaml:"strip"`
	Logging LoggingConfig `yaml:"logging"`
}

// WindowConfig configures the OS window.
type WindowConfig struct {
	Width      int    `yaml:"width"`
	Height     int    `yaml:"height"`
	Title      string `yaml:"title"`
	Fullscreen bool   `yaml:"fullscreen"`
}

// SliderConfig configures the comparison widget.
type SliderConfig struct {
	Breakpoint      int     `yaml:"breakpoint"`       // viewport width below which the mobile layout is used
	ContainerHeight int     `yaml:"container_height"` // 0 fills the window
	Margin          int     `yaml:"margin"`
	HandleRadius    float64 `yaml:"handle_radius"`
	DividerWidth    float64 `yaml:"divider_width"`
	TrackHeight     int     `yaml:"track_height"`
	Step            float64 `yaml:"step"`
}

// CatalogConfig configures the project store.
type CatalogConfig struct {
	Path     string `yaml:"path"`
	Watch    bool   `yaml:"watch"`
	Debounce string `yaml:"debounce"`
}

// StripConfig configures the project thumbnail strip.
type StripConfig struct {
	Visible bool `yaml:"visible"`
	Workers int  `yaml:"workers"`
}

// LoggingConfig configures zap.
type LoggingConfig struct {
	Level       string `yaml:"level"` // debug, info, warn, error
	Development bool   `yaml:"development"`
}

// Default returns the stock configuration.
func Default() Config {
	st := reveal.DefaultStyle()
	return Config{
		Window: WindowConfig{
			Width:  1280,
			Height: 800,
			Title:  "ebitreveal",
		},
		Slider: SliderConfig{
			Breakpoint:      st.Breakpoint,
			ContainerHeight: st.ContainerHeight,
			Margin:          st.Margin,
			HandleRadius:    st.HandleRadius,
			DividerWidth:    st.DividerWidth,
			TrackHeight:     st.TrackHeight,
			Step:            reveal.DefaultRange().Step,
		},
		Catalog: CatalogConfig{
			Path:     "catalog.yaml",
			Watch:    true,
			Debounce: "250ms",
		},
		Strip: StripConfig{
			Visible: true,
			Workers: 2,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load reads path over the defaults. A missing file yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks value ranges.
func (c Config) Validate() error {
	switch {
	case c.Window.Width <= 0 || c.Window.Height <= 0:
		return fmt.Errorf("%w: window size must be positive", ErrInvalid)
	case c.Slider.Breakpoint < 0:
		return fmt.Errorf("%w: slider.breakpoint must not be negative", ErrInvalid)
	case c.Slider.Margin < 0:
		return fmt.Errorf("%w: slider.margin must not be negative", ErrInvalid)
	case c.Slider.DividerWidth < 0:
		return fmt.Errorf("%w: slider.divider_width must not be negative", ErrInvalid)
	case c.Slider.ContainerHeight < 0:
		return fmt.Errorf("%w: slider.container_height must not be negative", ErrInvalid)
	case c.Slider.HandleRadius <= 0:
		return fmt.Errorf("%w: slider.handle_radius must be positive", ErrInvalid)
	case c.Slider.TrackHeight <= 0:
		return fmt.Errorf("%w: slider.track_height must be positive", ErrInvalid)
	case c.Slider.Step <= 0 || c.Slider.Step > 100:
		return fmt.Errorf("%w: slider.step must be in (0, 100]", ErrInvalid)
	case c.Strip.Workers < 1:
		return fmt.Errorf("%w: strip.workers must be at least 1", ErrInvalid)
	}
	if _, err := c.Catalog.DebounceDuration(); err != nil {
		return err
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: unknown log level %q", ErrInvalid, c.Logging.Level)
	}
	return nil
}

// DebounceDuration parses the watcher debounce.
func (c CatalogConfig) DebounceDuration() (time.Duration, error) {
	if c.Debounce == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Debounce)
	if err != nil || d < 0 {
		return 0, fmt.Errorf("%w: catalog.debounce %q", ErrInvalid, c.Debounce)
	}
	return d, nil
}

// Style converts the slider section into layout constants.
func (c SliderConfig) Style() reveal.Style {
	return reveal.Style{
		Breakpoint:      c.Breakpoint,
		ContainerHeight: c.ContainerHeight,
		Margin:          c.Margin,
		HandleRadius:    c.HandleRadius,
		DividerWidth:    c.DividerWidth,
		TrackHeight:     c.TrackHeight,
	}
}

// Range returns the range control settings.
func (c SliderConfig) Range() reveal.RangeInput {
	r := reveal.DefaultRange()
	r.Step = c.Step
	return r
}
