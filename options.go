package flashonata

import (
	"log/slog"
)

// Option configures an Evaluator.
type Option func(*Options)

// Options holds all configuration for the evaluator.
type Options struct {
	// MaxRecursionDepth records a recursion bound. The flash evaluator does
	// not read it; recursion is not limited by this setting.
	MaxRecursionDepth int

	// StrictDateTruncation controls how a date value longer than 10
	// characters is handled: when false it is truncated to its first 10
	// characters (YYYY-MM-DD); when true it is left as supplied for the
	// regex check. dateTime and instant values are never truncated.
	StrictDateTruncation bool

	// RegexCacheSize bounds the compiled-regex GET/SET cache.
	RegexCacheSize int

	// DecimalPrecision records a fractional-digit bound for decimal/integer64
	// coercions. The flash evaluator does not read it.
	DecimalPrecision int32

	// Logger receives one Debug line per failed virtual-rule synthesis and
	// one Warn line per discarded slice error. Nil disables logging.
	Logger *slog.Logger

	// DisableReordering skips the final key-reordering post-processing pass
	// (useful for tests that want to compare maps rather than JSON text).
	DisableReordering bool
}

// DefaultOptions returns the default configuration.
func DefaultOptions() *Options {
	return &Options{
		MaxRecursionDepth:    0,
		StrictDateTruncation: false,
		RegexCacheSize:       256,
		DecimalPrecision:     0,
		Logger:               nil,
		DisableReordering:    false,
	}
}

// WithMaxRecursionDepth sets Options.MaxRecursionDepth, which the flash
// evaluator does not read.
func WithMaxRecursionDepth(depth int) Option {
	return func(o *Options) {
		o.MaxRecursionDepth = depth
	}
}

// WithStrictDateTruncation leaves over-precise date literals as supplied
// instead of truncating them to 10 characters.
func WithStrictDateTruncation(enable bool) Option {
	return func(o *Options) {
		o.StrictDateTruncation = enable
	}
}

// WithRegexCacheSize sets the compiled-regex cache capacity.
func WithRegexCacheSize(size int) Option {
	return func(o *Options) {
		if size > 0 {
			o.RegexCacheSize = size
		}
	}
}

// WithDecimalPrecision sets Options.DecimalPrecision, which the flash
// evaluator does not read.
func WithDecimalPrecision(digits int32) Option {
	return func(o *Options) {
		o.DecimalPrecision = digits
	}
}

// WithVerboseLogger binds a logger for virtual-rule and slice-error
// diagnostics (spec's __verbose_logger environment key).
func WithVerboseLogger(logger *slog.Logger) Option {
	return func(o *Options) {
		o.Logger = logger
	}
}

// WithReorderingDisabled skips the final canonical-key-order pass.
func WithReorderingDisabled(disable bool) Option {
	return func(o *Options) {
		o.DisableReordering = disable
	}
}
