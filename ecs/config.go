package ecs

import "log"

// Default page lengths, chosen the same way the reference does: the sparse
// page length fits one common 4KiB page of sparse elements, and the dense
// page length is a round, cache-friendly batch size.
const (
	DefaultPageLenSparse = 4096 / 4 // 1024 sparseElement entries per page
	DefaultPageLenDense  = 512
	DefaultMaxQueryArgs  = 15
)

// Config holds the run-time equivalents of the reference's compile-time
// options (spec.md §6).
type Config struct {
	PageLenSparse int
	PageLenDense  int
	MaxQueryArgs  int
	Logger        *log.Logger
}

func defaultConfig() Config {
	return Config{
		PageLenSparse: DefaultPageLenSparse,
		PageLenDense:  DefaultPageLenDense,
		MaxQueryArgs:  DefaultMaxQueryArgs,
		Logger:        log.Default(),
	}
}

// Option configures a Registry at construction time.
type Option func(*Config)

// WithPageLenSparse overrides the number of sparse elements held per
// sparse page.
func WithPageLenSparse(n int) Option {
	return func(c *Config) { c.PageLenSparse = n }
}

// WithPageLenDense overrides the number of dense entities/components held
// per dense page.
func WithPageLenDense(n int) Option {
	return func(c *Config) { c.PageLenDense = n }
}

// WithMaxQueryArgs overrides the maximum number of with/without/optional
// constraints a single query may carry.
func WithMaxQueryArgs(n int) Option {
	return func(c *Config) { c.MaxQueryArgs = n }
}

// WithLogger overrides the logger used for the registry's rare diagnostic
// output. Hot paths (add/remove/has/get/query) never log.
func WithLogger(l *log.Logger) Option {
	return func(c *Config) { c.Logger = l }
}
