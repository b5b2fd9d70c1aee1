package pdfsource

// Config holds the tunables of a Document
type Config struct {
	// MaxFormDepth bounds nested Form XObject expansion
	MaxFormDepth int `yaml:"max_form_depth"`

	// GapFactor is the largest horizontal gap between two glyphs, as a
	// fraction of the font size, that still joins them into one run
	GapFactor float64 `yaml:"gap_factor"`

	// BaselineTolerance is the largest baseline difference, in points,
	// between glyphs of one run
	BaselineTolerance float64 `yaml:"baseline_tolerance"`

	// FallbackGlyphWidth is the advance, as a fraction of the font size,
	// assumed for glyphs whose font carries no width
	FallbackGlyphWidth float64 `yaml:"fallback_glyph_width"`
}

// DefaultConfig returns the default document configuration
func DefaultConfig() Config {
	return Config{
		MaxFormDepth:       8,
		GapFactor:          0.3,
		BaselineTolerance:  0.5,
		FallbackGlyphWidth: 0.5,
	}
}

// withDefaults replaces non-positive fields with their defaults
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.MaxFormDepth <= 0 {
		c.MaxFormDepth = d.MaxFormDepth
	}
	if c.GapFactor <= 0 {
		c.GapFactor = d.GapFactor
	}
	if c.BaselineTolerance <= 0 {
		c.BaselineTolerance = d.BaselineTolerance
	}
	if c.FallbackGlyphWidth <= 0 {
		c.FallbackGlyphWidth = d.FallbackGlyphWidth
	}
	return c
}
