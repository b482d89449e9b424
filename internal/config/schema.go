package config

// Driver holds the settings a termsheet driver may hot-reload without
// restarting the process. Sheet dimensions are deliberately absent: the
// engine fixes rows/cols for the life of a sheet at startup, so they are
// read once from CLI args, never from this file.
type Driver struct {
	Viewport    ViewportConfig `yaml:"viewport"`
	Metrics     MetricsConfig  `yaml:"metrics"`
	NoColor     bool           `yaml:"no_color"`
	HistoryPath string         `yaml:"history_path"`
}

// ViewportConfig controls how much of the grid the terminal renders at
// once.
type ViewportConfig struct {
	Rows int `yaml:"rows"`
	Cols int `yaml:"cols"`
}

// MetricsConfig controls the Prometheus exposition endpoint.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}
