// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() initializer to build a Config with defaults.
// - Load layers defaults, an optional YAML file and environment variables.
// - External errors must be wrapped via this package's error kinds.
package config

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`
	// LogFormat selects the log encoding: text or json.
	LogFormat string `koanf:"log_format" validate:"oneof=text json"`
	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// Source selects where the ranking inputs are read from: csv or sqlite.
	Source string `koanf:"source" validate:"oneof=csv sqlite"`
	// RatingsPath, BooksPath and UsersPath locate the CSV inputs.
	RatingsPath string `koanf:"ratings_path" validate:"required_if=Source csv"`
	BooksPath   string `koanf:"books_path" validate:"required_if=Source csv"`
	UsersPath   string `koanf:"users_path" validate:"required_if=Source csv"`
	// CSVDelimiter is the single-character field separator of the CSV inputs.
	CSVDelimiter string `koanf:"csv_delimiter" validate:"len=1"`
	// SQLitePath locates the SQLite database for source=sqlite and import.
	SQLitePath string `koanf:"sqlite_path" validate:"required_if=Source sqlite"`

	// MMin is the number of virtual ratings at the global mean per book.
	MMin float64 `koanf:"m_min" validate:"gte=0"`
	// TieBreak orders equal scores: first_seen or item_id.
	TieBreak string `koanf:"tie_break" validate:"oneof=first_seen item_id"`

	// DefaultDisplayLimit is the row count served when a request names none.
	DefaultDisplayLimit int `koanf:"default_display_limit" validate:"gtefield=MinDisplayLimit,ltefield=MaxDisplayLimit"`
	// MinDisplayLimit and MaxDisplayLimit bound the dashboard limit control.
	MinDisplayLimit int `koanf:"min_display_limit" validate:"gte=1"`
	// MaxDisplayLimit also caps ?limit= on the API.
	MaxDisplayLimit int `koanf:"max_display_limit" validate:"gtefield=MinDisplayLimit"`
}

// New creates a Config populated with defaults.
func New() *Config {
	c := &Config{
		LogLevel:            "info",
		LogFormat:           "text",
		Addr:                ":9080",
		Source:              "csv",
		RatingsPath:         "data/Ratings.csv",
		BooksPath:           "clustered_outputs/clustered_books_metadata.csv",
		UsersPath:           "data/Users.csv",
		CSVDelimiter:        ",",
		SQLitePath:          "data/bookpop.db",
		MMin:                50,
		TieBreak:            "first_seen",
		DefaultDisplayLimit: 20,
		MinDisplayLimit:     5,
		MaxDisplayLimit:     50,
	}
	return c
}

// Delimiter returns CSVDelimiter as a rune.
func (c *Config) Delimiter() rune {
	for _, r := range c.CSVDelimiter {
		return r
	}
	return ','
}
