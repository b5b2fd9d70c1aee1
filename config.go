package pageblocks

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/tsawler/pageblocks/images"
	"github.com/tsawler/pageblocks/layout"
	"github.com/tsawler/pageblocks/pdfsource"
	"github.com/tsawler/pageblocks/tables"
	"github.com/tsawler/pageblocks/text"
)

// Config holds the configuration of every pipeline stage. Fields missing
// from a YAML file keep their default values.
type Config struct {
	// RotationThreshold is the largest |b| + |c| of a run's text matrix
	// that still counts as horizontal text (default: 0.45)
	RotationThreshold float64 `yaml:"rotation_threshold"`

	// Layout configures line building, columns, paragraphs and reading order
	Layout layout.AnalyzerConfig `yaml:"layout"`

	// Images configures operator-based and caption-based image detection
	Images images.Config `yaml:"images"`

	// Tables configures table promotion
	Tables tables.Config `yaml:"tables"`

	// PromoteTables re-types tabular TEXT blocks as TABLE in ExtractPage
	// (default: false)
	PromoteTables bool `yaml:"promote_tables"`

	// Noise configures the filter that drops stray text blocks
	Noise NoiseConfig `yaml:"noise"`

	// Source configures how PDF pages are read by pdfsource
	Source pdfsource.Config `yaml:"source"`
}

// NoiseConfig holds the thresholds of the noise filter
type NoiseConfig struct {
	// HeightFactor times the font size is the smallest height a
	// single-word TEXT block may have (default: 1.1)
	HeightFactor float64 `yaml:"height_factor"`

	// DefaultFontSize is assumed for blocks without a font size (default: 12)
	DefaultFontSize float64 `yaml:"default_font_size"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	return Config{
		RotationThreshold: text.DefaultRotationThreshold,
		Layout:            layout.DefaultAnalyzerConfig(),
		Images:            images.DefaultConfig(),
		Tables:            tables.DefaultConfig(),
		PromoteTables:     false,
		Noise: NoiseConfig{
			HeightFactor:    1.1,
			DefaultFontSize: 12,
		},
		Source: pdfsource.DefaultConfig(),
	}
}

// ParseConfig decodes YAML over the default configuration
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

// LoadConfigFile reads a YAML config file
func LoadConfigFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config: %w", err)
	}
	return ParseConfig(data)
}

// Marshal encodes the configuration as YAML
func (c Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}
