package gen

import (
	"fmt"
	"os"
	"runtime"
	"slices"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/syssam/veneer/compiler/load"
)

// Defaults.
const (
	// DefaultHeader is the header comment of generated files. It satisfies
	// the "Code generated ... DO NOT EDIT." convention recognised by tools.
	DefaultHeader = "Code generated by veneer. DO NOT EDIT."
	// DefaultRuntimePackage is the import path of the runtime support package
	// referenced by generated code.
	DefaultRuntimePackage = "github.com/syssam/veneer"
)

// Config holds the global codegen configuration shared by all generated
// types. A zero Config is usable; unset fields take their defaults.
type Config struct {
	// Prefix is the directive prefix, "veneer" for //veneer:Get.
	Prefix string `yaml:"prefix,omitempty"`

	// Suffix is appended to the lowercased type name to form the name of
	// the generated file.
	Suffix string `yaml:"suffix,omitempty"`

	// Header is the comment written at the top of generated files.
	Header string `yaml:"header,omitempty"`

	// Workers bounds the number of types generated concurrently.
	Workers int `yaml:"workers,omitempty"`

	// Disabled lists component names that are not run.
	Disabled []string `yaml:"disabled,omitempty"`

	// RuntimePackage is the import path of the runtime support package.
	RuntimePackage string `yaml:"runtime,omitempty"`

	// BuildFlags are passed to the package loader.
	BuildFlags []string `yaml:"build_flags,omitempty"`

	// Features are the feature flags enabled explicitly.
	Features []Feature `yaml:"-"`

	// DisabledFeatures names default-on features to turn off.
	DisabledFeatures []string `yaml:"-"`

	// Logger receives pipeline logs. Nil discards them.
	Logger *zap.Logger `yaml:"-"`
}

// fileConfig is the on-disk form of Config.
type fileConfig struct {
	Config   `yaml:",inline"`
	Features []string `yaml:"features,omitempty"`
	Disable  []string `yaml:"disable_features,omitempty"`
}

// LoadConfig reads a YAML configuration file:
//
//	prefix: veneer
//	workers: 4
//	disabled: [tostring]
//	features: [assertions]
//	disable_features: [doc-comments]
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("veneer: reading config: %w", err)
	}
	return ParseConfig(data)
}

// ParseConfig parses a YAML configuration.
func ParseConfig(data []byte) (*Config, error) {
	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("veneer: parsing config: %w", err)
	}
	c := fc.Config
	opts := []Option{WithDisabledFeatures(fc.Disable...)}
	for _, name := range fc.Features {
		f, ok := FeatureByName(name)
		if !ok {
			return nil, NewConfigError("Features", name, "unknown feature")
		}
		opts = append(opts, WithFeatures(f))
	}
	if c.Workers < 0 {
		return nil, NewConfigError("Workers", c.Workers, "must not be negative")
	}
	if err := c.Apply(opts...); err != nil {
		return nil, err
	}
	return &c, nil
}

// FeatureEnabled reports if the given feature name is enabled.
func (c *Config) FeatureEnabled(name string) bool {
	if slices.Contains(c.DisabledFeatures, name) {
		return false
	}
	for _, f := range c.Features {
		if f.Name == name {
			return true
		}
	}
	f, ok := FeatureByName(name)
	return ok && f.Default
}

// ComponentEnabled reports whether the named component runs.
func (c *Config) ComponentEnabled(name string) bool {
	return !slices.Contains(c.Disabled, name)
}

// Log returns the configured logger.
func (c *Config) Log() *zap.Logger {
	if c.Logger == nil {
		return zap.NewNop()
	}
	return c.Logger
}

// DirectivePrefix returns the directive prefix.
func (c *Config) DirectivePrefix() string {
	if c.Prefix == "" {
		return load.DefaultPrefix
	}
	return c.Prefix
}

// FileSuffix returns the generated file suffix.
func (c *Config) FileSuffix() string {
	if c.Suffix == "" {
		return load.DefaultSuffix
	}
	return c.Suffix
}

// HeaderComment returns the generated file header.
func (c *Config) HeaderComment() string {
	if c.Header == "" {
		return DefaultHeader
	}
	return c.Header
}

// Runtime returns the runtime package import path.
func (c *Config) Runtime() string {
	if c.RuntimePackage == "" {
		return DefaultRuntimePackage
	}
	return c.RuntimePackage
}

// Concurrency returns the worker bound.
func (c *Config) Concurrency() int {
	if c.Workers <= 0 {
		return runtime.GOMAXPROCS(0)
	}
	return c.Workers
}

// Loader returns the loader configuration matching c.
func (c *Config) Loader(dir string) load.Config {
	return load.Config{
		Prefix:     c.DirectivePrefix(),
		Suffix:     c.FileSuffix(),
		Dir:        dir,
		BuildFlags: c.BuildFlags,
	}
}
