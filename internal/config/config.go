package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/danieljhkim/layerorder/internal/regstore"
)

// Backend names.
const (
	BackendRegistry = "registry"
	BackendFile     = "file"
)

var (
	// ErrInvalid indicates a configuration that fails validation.
	ErrInvalid = errors.New("invalid configuration")

	// ErrUnknownTarget indicates a target name that is not configured.
	ErrUnknownTarget = errors.New("unknown target")
)

// Target is one namespace whose first entry must be our layer.
type Target struct {
	// Name identifies the target on the command line, e.g. "x64"
	Name string `mapstructure:"name" yaml:"name" json:"name"`

	// Hive is the registry root key, "HKLM" or "HKCU"
	Hive string `mapstructure:"hive" yaml:"hive" json:"hive"`

	// Path is the subkey that lists the layers
	Path string `mapstructure:"path" yaml:"path" json:"path"`

	// Manifest is the layer manifest file name; the value name is <install dir>\<Manifest>
	Manifest string `mapstructure:"manifest" yaml:"manifest" json:"manifest"`

	// Value is the DWORD written for the layer (0 enables an implicit layer)
	Value uint32 `mapstructure:"value" yaml:"value" json:"value"`
}

// Namespace returns the store namespace of the target.
func (t Target) Namespace() regstore.Namespace {
	return regstore.Namespace{Hive: t.Hive, Path: t.Path}
}

// Config holds all configuration options for layerorder.
type Config struct {
	// Backend selects the store implementation: "registry" or "file"
	Backend string `mapstructure:"backend" json:"backend"`

	// Backup saves a snapshot of each namespace before it is rewritten
	Backup bool `mapstructure:"backup" json:"backup"`

	// RollbackOnError rewrites the snapshot when a reconcile fails partway
	RollbackOnError bool `mapstructure:"rollback_on_error" json:"rollbackOnError"`

	// KeepBackups is how many backups are retained per target; 0 keeps all
	KeepBackups int `mapstructure:"keep_backups" json:"keepBackups"`

	// Parallelism bounds how many targets are processed at once
	Parallelism int `mapstructure:"parallelism" json:"parallelism"`

	// LockTimeout bounds the wait for another process holding a namespace
	LockTimeout time.Duration `mapstructure:"lock_timeout" json:"lockTimeout"`

	// Targets are processed independently of each other
	Targets []Target `mapstructure:"targets" json:"targets"`

	// Source is the config file that was read, if any
	Source string `mapstructure:"-" json:"source,omitempty"`
}

// DefaultTargets are the OpenXR implicit layer keys for the 64-bit and
// 32-bit runtimes.
func DefaultTargets() []Target {
	return []Target{
		{
			Name:     "x64",
			Hive:     "HKLM",
			Path:     `SOFTWARE\Khronos\OpenXR\1\ApiLayers\Implicit`,
			Manifest: "XR_APILAYER_MBUCCHIA_vulkan_d3d12_interop.json",
			Value:    0,
		},
		{
			Name:     "x86",
			Hive:     "HKLM",
			Path:     `SOFTWARE\WOW6432Node\Khronos\OpenXR\1\ApiLayers\Implicit`,
			Manifest: "XR_APILAYER_MBUCCHIA_vulkan_d3d12_interop-32.json",
			Value:    0,
		},
	}
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		Backend:         BackendRegistry,
		Backup:          true,
		RollbackOnError: true,
		KeepBackups:     10,
		Parallelism:     2,
		LockTimeout:     30 * time.Second,
		Targets:         DefaultTargets(),
	}
}

func setDefaults(v *viper.Viper) {
	d := Defaults()
	v.SetDefault("backend", d.Backend)
	v.SetDefault("backup", d.Backup)
	v.SetDefault("rollback_on_error", d.RollbackOnError)
	v.SetDefault("keep_backups", d.KeepBackups)
	v.SetDefault("parallelism", d.Parallelism)
	v.SetDefault("lock_timeout", d.LockTimeout)

	targets := make([]map[string]any, 0, len(d.Targets))
	for _, t := range d.Targets {
		targets = append(targets, map[string]any{
			"name":     t.Name,
			"hive":     t.Hive,
			"path":     t.Path,
			"manifest": t.Manifest,
			"value":    t.Value,
		})
	}
	v.SetDefault("targets", targets)
}

// Load reads configuration into v and returns the validated result.
//
// Lookup order for the file: file if set (must exist), else defaultFile if
// it exists, else built-in defaults only. Environment variables prefixed with
// LAYERORDER_ override file values; flags bound to v by the caller override both.
func Load(v *viper.Viper, file, defaultFile string) (*Config, error) {
	setDefaults(v)
	v.SetEnvPrefix("LAYERORDER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	switch {
	case file != "":
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", file, err)
		}
	case defaultFile != "":
		if _, err := os.Stat(defaultFile); err == nil {
			v.SetConfigFile(defaultFile)
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("failed to read config %s: %w", defaultFile, err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	cfg.Source = v.ConfigFileUsed()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Backend != BackendRegistry && c.Backend != BackendFile {
		return fmt.Errorf("%w: backend must be %q or %q, got %q", ErrInvalid, BackendRegistry, BackendFile, c.Backend)
	}
	if c.KeepBackups < 0 {
		return fmt.Errorf("%w: keep_backups must not be negative", ErrInvalid)
	}
	if c.Parallelism < 1 {
		return fmt.Errorf("%w: parallelism must be at least 1", ErrInvalid)
	}
	if c.LockTimeout <= 0 {
		return fmt.Errorf("%w: lock_timeout must be positive", ErrInvalid)
	}
	if len(c.Targets) == 0 {
		return fmt.Errorf("%w: no targets configured", ErrInvalid)
	}

	names := make(map[string]bool)
	namespaces := make(map[string]string)
	for i, t := range c.Targets {
		if t.Name == "" || strings.ContainsAny(t.Name, `/\:*?"<>| `) || strings.HasPrefix(t.Name, ".") {
			return fmt.Errorf("%w: target %d has invalid name %q", ErrInvalid, i, t.Name)
		}
		if names[t.Name] {
			return fmt.Errorf("%w: duplicate target %q", ErrInvalid, t.Name)
		}
		names[t.Name] = true

		if err := t.Namespace().Validate(); err != nil {
			return fmt.Errorf("%w: target %q: %v", ErrInvalid, t.Name, err)
		}
		key := strings.ToLower(t.Namespace().String())
		if other, ok := namespaces[key]; ok {
			return fmt.Errorf("%w: targets %q and %q share namespace %s", ErrInvalid, other, t.Name, t.Namespace())
		}
		namespaces[key] = t.Name

		if t.Manifest == "" || strings.ContainsAny(t.Manifest, `/\`) {
			return fmt.Errorf("%w: target %q: manifest must be a bare file name, got %q", ErrInvalid, t.Name, t.Manifest)
		}
	}

	return nil
}

// Select returns the targets with the given names, in configuration order.
// No names selects every target.
func (c *Config) Select(names []string) ([]Target, error) {
	if len(names) == 0 {
		return append([]Target(nil), c.Targets...), nil
	}

	want := make(map[string]bool, len(names))
	for _, n := range names {
		if _, ok := c.Target(n); !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownTarget, n)
		}
		want[n] = true
	}

	var out []Target
	for _, t := range c.Targets {
		if want[t.Name] {
			out = append(out, t)
		}
	}
	return out, nil
}

// Target returns the target with the given name.
func (c *Config) Target(name string) (Target, bool) {
	for _, t := range c.Targets {
		if t.Name == name {
			return t, true
		}
	}
	return Target{}, false
}

// fileDoc is the YAML layout written by Marshal; durations are written as text.
type fileDoc struct {
	Backend         string   `yaml:"backend"`
	Backup          bool     `yaml:"backup"`
	RollbackOnError bool     `yaml:"rollback_on_error"`
	KeepBackups     int      `yaml:"keep_backups"`
	Parallelism     int      `yaml:"parallelism"`
	LockTimeout     string   `yaml:"lock_timeout"`
	Targets         []Target `yaml:"targets"`
}

// Marshal renders c as a YAML config file.
func (c *Config) Marshal() ([]byte, error) {
	doc := fileDoc{
		Backend:         c.Backend,
		Backup:          c.Backup,
		RollbackOnError: c.RollbackOnError,
		KeepBackups:     c.KeepBackups,
		Parallelism:     c.Parallelism,
		LockTimeout:     c.LockTimeout.String(),
		Targets:         c.Targets,
	}
	data, err := yaml.Marshal(&doc)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}
	return data, nil
}
