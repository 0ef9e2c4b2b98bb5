package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is the prefix of every environment variable read by LoadEnv.
const EnvPrefix = "CIP"

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid configuration")

// Config holds the options shared by every operation of a run.
type Config struct {
	// Depth is the number of directory levels searched below each seed.
	Depth int `yaml:"depth" envconfig:"DEPTH"`
	// Resize halves eligible images.
	Resize bool `yaml:"resize" envconfig:"RESIZE"`
	// Convert turns PNG images into JPEG.
	Convert bool `yaml:"convert" envconfig:"CONVERT"`
	// Compress re-encodes JPEG images. Ignored when Resize is set.
	Compress bool `yaml:"compress" envconfig:"COMPRESS"`
	// Update prefixes file names with their parent directory name.
	Update bool `yaml:"update" envconfig:"UPDATE"`
	// Side is the shorter-dimension threshold, in pixels, for resizing.
	Side int `yaml:"side" envconfig:"SIDE"`
	// Erase removes the PNG once its JPEG conversion exists.
	Erase bool `yaml:"erase" envconfig:"ERASE"`
	// Quality is the JPEG encoder quality.
	Quality int `yaml:"quality" envconfig:"QUALITY"`
	// KeepExif copies the EXIF segment of a JPEG into its re-encoded output.
	KeepExif bool `yaml:"keep_exif" envconfig:"KEEP_EXIF"`
	// Paths is the raw path specification.
	Paths string `yaml:"paths" envconfig:"PATHS"`
}

// Default returns the configuration used when nothing is overridden.
func Default() Config {
	return Config{
		Side:    2160,
		Quality: 100,
	}
}

// LoadFile overlays the YAML document at path onto cfg.
// Keys missing from the document keep their current value.
func LoadFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

// LoadEnv overlays CIP_* environment variables onto cfg.
func LoadEnv(cfg *Config) error {
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return fmt.Errorf("read environment: %w", err)
	}
	return nil
}

// Validate reports the first option outside its allowed range.
func (c Config) Validate() error {
	if c.Depth < 0 {
		return fmt.Errorf("%w: depth must be >= 0, got %d", ErrInvalid, c.Depth)
	}
	if c.Side < 0 {
		return fmt.Errorf("%w: side must be >= 0, got %d", ErrInvalid, c.Side)
	}
	if c.Quality != 95 && c.Quality != 100 {
		return fmt.Errorf("%w: quality must be 95 or 100, got %d", ErrInvalid, c.Quality)
	}
	if c.Paths == "" {
		return fmt.Errorf("%w: no paths given", ErrInvalid)
	}
	return nil
}
