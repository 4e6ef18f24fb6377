// Package config holds the settings of the marbles tool.
// A configuration file may be written in YAML, TOML or JSON; the
// format is chosen from the file extension. Settings absent from the
// file keep their default value.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/benoitkugler/marbles/shape"
	"github.com/benoitkugler/marbles/shapedoc"
	"github.com/benoitkugler/marbles/shaperaster"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// ErrUnknownFormat is returned for a file extension without decoder.
var ErrUnknownFormat = errors.New("unknown configuration format")

// Config is the root configuration.
type Config struct {
	Selector   string          `yaml:"selector" toml:"selector" json:"selector"`
	ErrorMode  shape.ErrorMode `yaml:"error_mode" toml:"error_mode" json:"error_mode"`
	Attributes Attributes      `yaml:"attributes" toml:"attributes" json:"attributes"`
	Preview    Preview         `yaml:"preview" toml:"preview" json:"preview"`
	Browser    Browser         `yaml:"browser" toml:"browser" json:"browser"`
}

// Attributes names the markup attributes read on shapes.
type Attributes struct {
	Size      string `yaml:"size" toml:"size" json:"size"`
	PositionX string `yaml:"position_x" toml:"position_x" json:"position_x"`
	PositionY string `yaml:"position_y" toml:"position_y" json:"position_y"`
	Opacity   string `yaml:"opacity" toml:"opacity" json:"opacity"`
}

// Preview configures the raster preview.
type Preview struct {
	Width      int     `yaml:"width" toml:"width" json:"width"`   // 0 to fit the shapes
	Height     int     `yaml:"height" toml:"height" json:"height"` // 0 to fit the shapes
	Padding    float64 `yaml:"padding" toml:"padding" json:"padding"`
	Fill       string  `yaml:"fill" toml:"fill" json:"fill"`
	Background string  `yaml:"background" toml:"background" json:"background"` // empty for transparent
	MaxSize    int     `yaml:"max_size" toml:"max_size" json:"max_size"`       // largest canvas side
}

// Browser configures the connection to Chrome for live pages.
type Browser struct {
	DebuggerURL string `yaml:"debugger_url" toml:"debugger_url" json:"debugger_url"` // existing instance
	Bin         string `yaml:"bin" toml:"bin" json:"bin"`                            // binary to launch
	Headless    bool   `yaml:"headless" toml:"headless" json:"headless"`
	Timeout     string `yaml:"timeout" toml:"timeout" json:"timeout"` // Go duration, like "30s"
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Selector:  shapedoc.DefaultSelector,
		ErrorMode: shape.WarnErrorMode,
		Attributes: Attributes{
			Size:      shape.DefaultNames.Size,
			PositionX: shape.DefaultNames.PositionX,
			PositionY: shape.DefaultNames.PositionY,
			Opacity:   shape.DefaultNames.Opacity,
		},
		Preview: Preview{
			Padding: 10,
			Fill:    "#3c78d8",
			MaxSize: shaperaster.DefaultMaxSize,
		},
		Browser: Browser{
			Headless: true,
			Timeout:  "30s",
		},
	}
}

// Load reads the configuration file at path. An empty path
// returns the default configuration.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, cfg)
	case ".toml":
		err = toml.Unmarshal(data, cfg)
	case ".json":
		err = json.Unmarshal(data, cfg)
	default:
		return nil, fmt.Errorf("%s: %w %q", path, ErrUnknownFormat, ext)
	}
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err = cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the values which can't be fixed by a default.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Selector) == "" {
		return errors.New("empty selector")
	}
	if c.ErrorMode > shape.StrictErrorMode {
		return fmt.Errorf("invalid error mode %d", c.ErrorMode)
	}
	if c.Preview.Width < 0 || c.Preview.Height < 0 || c.Preview.MaxSize < 0 {
		return errors.New("negative preview size")
	}
	maxSize := c.Preview.MaxSize
	if maxSize == 0 {
		maxSize = shaperaster.DefaultMaxSize
	}
	if c.Preview.Width > maxSize || c.Preview.Height > maxSize {
		return fmt.Errorf("preview size larger than max_size (%d)", maxSize)
	}
	if _, err := time.ParseDuration(c.Browser.Timeout); c.Browser.Timeout != "" && err != nil {
		return fmt.Errorf("invalid browser timeout: %w", err)
	}
	return nil
}

// Names returns the attribute names for package shape.
func (a Attributes) Names() shape.Names {
	return shape.Names{
		Size:      a.Size,
		PositionX: a.PositionX,
		PositionY: a.PositionY,
		Opacity:   a.Opacity,
	}
}

// NavigationTimeout returns the parsed timeout, 30 seconds if unset or invalid.
func (b Browser) NavigationTimeout() time.Duration {
	if d, err := time.ParseDuration(b.Timeout); err == nil && d > 0 {
		return d
	}
	return 30 * time.Second
}
