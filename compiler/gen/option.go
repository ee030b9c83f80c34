package gen

import (
	"errors"
	"strings"
	"unicode"

	"go.uber.org/zap"
)

// Option configures code generation.
type Option func(*Config) error

// WithPrefix sets the directive prefix.
// The prefix must be a valid identifier, e.g. "veneer" for //veneer:Get.
func WithPrefix(prefix string) Option {
	return func(c *Config) error {
		if prefix == "" {
			return NewConfigError("Prefix", nil, "prefix cannot be empty")
		}
		for i, r := range prefix {
			if !unicode.IsLetter(r) && r != '_' && (i == 0 || !unicode.IsDigit(r)) {
				return NewConfigError("Prefix", prefix, "prefix must be an identifier")
			}
		}
		c.Prefix = prefix
		return nil
	}
}

// WithHeader sets the file header comment.
// The header is added at the top of each generated file.
func WithHeader(header string) Option {
	return func(c *Config) error {
		c.Header = header
		return nil
	}
}

// WithSuffix sets the generated file name suffix.
func WithSuffix(suffix string) Option {
	return func(c *Config) error {
		if !strings.HasSuffix(suffix, ".go") || strings.HasSuffix(suffix, "_test.go") {
			return NewConfigError("Suffix", suffix, "suffix must end in .go and must not name a test file")
		}
		c.Suffix = suffix
		return nil
	}
}

// WithWorkers bounds the number of types generated concurrently.
// Zero selects GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(c *Config) error {
		if n < 0 {
			return NewConfigError("Workers", n, "must not be negative")
		}
		c.Workers = n
		return nil
	}
}

// WithDisabled disables components by name.
func WithDisabled(names ...string) Option {
	return func(c *Config) error {
		c.Disabled = append(c.Disabled, names...)
		return nil
	}
}

// WithRuntimePackage sets the import path of the runtime support package.
func WithRuntimePackage(path string) Option {
	return func(c *Config) error {
		if path == "" {
			return NewConfigError("RuntimePackage", nil, "runtime package cannot be empty")
		}
		c.RuntimePackage = path
		return nil
	}
}

// WithFeatures enables specific features.
// Features control optional code generation capabilities.
func WithFeatures(features ...Feature) Option {
	return func(c *Config) error {
		c.Features = append(c.Features, features...)
		return nil
	}
}

// WithDisabledFeatures turns off features that are enabled by default.
func WithDisabledFeatures(names ...string) Option {
	return func(c *Config) error {
		for _, name := range names {
			if _, ok := FeatureByName(name); !ok {
				return NewConfigError("DisabledFeatures", name, "unknown feature")
			}
		}
		c.DisabledFeatures = append(c.DisabledFeatures, names...)
		return nil
	}
}

// WithBuildFlags sets custom build flags for loading packages.
func WithBuildFlags(flags ...string) Option {
	return func(c *Config) error {
		c.BuildFlags = append(c.BuildFlags, flags...)
		return nil
	}
}

// WithLogger sets the logger used by the pipeline.
func WithLogger(l *zap.Logger) Option {
	return func(c *Config) error {
		if l == nil {
			return NewConfigError("Logger", nil, "logger cannot be nil")
		}
		c.Logger = l
		return nil
	}
}

// Apply applies options to the config.
// It returns the first error encountered.
func (c *Config) Apply(opts ...Option) error {
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return err
		}
	}
	return nil
}

// ApplyAll applies options and collects all errors.
// Returns a joined error if any options failed.
func (c *Config) ApplyAll(opts ...Option) error {
	var errs []error
	for _, opt := range opts {
		if err := opt(c); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// NewConfig creates a new Config with the given options.
func NewConfig(opts ...Option) (*Config, error) {
	c := &Config{}
	if err := c.Apply(opts...); err != nil {
		return nil, err
	}
	return c, nil
}

// MustNewConfig creates a new Config with the given options.
// It panics if any option fails.
func MustNewConfig(opts ...Option) *Config {
	c, err := NewConfig(opts...)
	if err != nil {
		panic(err)
	}
	return c
}
