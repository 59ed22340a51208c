// Package config loads process configuration from defaults, an optional
// YAML file, and environment variables.
package config

// Config holds settings shared by the training and serving commands.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr is the HTTP listen address for the serve command.
	Addr string `koanf:"addr"`

	// DataPath is the default corpus database path.
	DataPath string `koanf:"data_path"`

	// Iterations is the number of training passes over the corpus.
	Iterations int `koanf:"iterations"`

	// NumClasses fixes the class count; 0 infers it from the corpus.
	NumClasses int `koanf:"num_classes"`

	// MaxCells bounds the weight arena; 0 means unbounded.
	MaxCells int `koanf:"max_cells"`

	// Averaged finalizes trained models with averaged weights.
	Averaged bool `koanf:"averaged"`

	// Conjunctions expands instances with pairwise conjunction features.
	Conjunctions bool `koanf:"conjunctions"`
}

// New returns a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:     "info",
		Addr:         ":9090",
		DataPath:     "percept.db",
		Iterations:   5,
		MaxCells:     0,
		Averaged:     true,
		Conjunctions: false,
	}
}
