package parser

// Opt configures a Parser, following the functional-options pattern.
type Opt func(*Config)

// Config holds parser configuration. Zero value matches the documented
// defaults: style diagnostics off, a 1000-error cap.
type Config struct {
	RecordStyleLint bool
	MaxErrors       int
}

// WithRecordStyleLint turns on whitespace-style diagnostics.
func WithRecordStyleLint() Opt {
	return func(c *Config) { c.RecordStyleLint = true }
}

// WithMaxErrors overrides the error cap (default 1000 when unset or <= 0).
func WithMaxErrors(n int) Opt {
	return func(c *Config) { c.MaxErrors = n }
}

func newConfig(opts []Opt) *Config {
	c := &Config{MaxErrors: 1000}
	for _, opt := range opts {
		opt(c)
	}
	return c
}
