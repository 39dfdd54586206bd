// Package config holds the pipeline's settings (spec §6.1's CLI flags)
// and the optional YAML file that can pre-populate their defaults. The
// teacher takes every setting from flag.FlagSet with no file layer; this
// module generalizes that one step, the way joeblew999-plat-geo's geo
// CLI layers cobra flags over structured options, while keeping the
// teacher's rule that explicit flags always win.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config mirrors the CLI flag set of spec §6.1. Zero values are not
// meaningful defaults on their own — cmd/pointtiler's cobra command owns
// the actual defaults (min=15, max=18, max-memory-mb=4096, threads=2×cores);
// this struct is the shape a --config YAML file and the parsed flags are
// merged into.
type Config struct {
	Input        []string `yaml:"input"`
	Output       string   `yaml:"output"`
	InputEPSG    int      `yaml:"input_epsg"`
	OutputEPSG   int      `yaml:"output_epsg"`
	Min          int      `yaml:"min"`
	Max          int      `yaml:"max"`
	MaxMemoryMB  int      `yaml:"max_memory_mb"`
	Threads      int      `yaml:"threads"`
	Quantize     bool     `yaml:"quantize"`
	GzipCompress bool     `yaml:"gzip_compress"`
	Verbose      bool     `yaml:"verbose"`
}

// LoadFile reads a YAML config file. A missing or empty field in the file
// stays at its zero value in the returned Config; callers decide how to
// merge it with flag-supplied values.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	var c Config
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return &c, nil
}

// MergeOverrides copies each field of override onto base, in place, whose
// flag name is set in changed, zero value or not. This is how cmd/pointtiler
// applies "CLI flags always win over the file" when --config is given: base
// is the file config, and only the flags the user actually typed
// (changed[name] == true) overwrite it.
func MergeOverrides(base, override *Config, changed map[string]bool) {
	if changed["input"] {
		base.Input = override.Input
	}
	if changed["output"] {
		base.Output = override.Output
	}
	if changed["input-epsg"] {
		base.InputEPSG = override.InputEPSG
	}
	if changed["output-epsg"] {
		base.OutputEPSG = override.OutputEPSG
	}
	if changed["min"] {
		base.Min = override.Min
	}
	if changed["max"] {
		base.Max = override.Max
	}
	if changed["max-memory-mb"] {
		base.MaxMemoryMB = override.MaxMemoryMB
	}
	if changed["threads"] {
		base.Threads = override.Threads
	}
	if changed["quantize"] {
		base.Quantize = override.Quantize
	}
	if changed["gzip-compress"] {
		base.GzipCompress = override.GzipCompress
	}
	if changed["verbose"] {
		base.Verbose = override.Verbose
	}
}

// Validate checks the invariants spec §6.1 and §4.1 require of a fully
// resolved Config, before the driver touches the filesystem.
func (c *Config) Validate() error {
	if len(c.Input) == 0 {
		return fmt.Errorf("config: at least one --input glob is required")
	}
	if c.Output == "" {
		return fmt.Errorf("config: --output is required")
	}
	if c.InputEPSG <= 0 {
		return fmt.Errorf("config: --input-epsg is required")
	}
	if c.OutputEPSG <= 0 {
		return fmt.Errorf("config: --output-epsg is required")
	}
	if c.Min < 0 || c.Max < 0 || c.Min > c.Max {
		return fmt.Errorf("config: --min (%d) must be <= --max (%d)", c.Min, c.Max)
	}
	if c.MaxMemoryMB <= 0 {
		return fmt.Errorf("config: --max-memory-mb must be positive")
	}
	if c.Threads <= 0 {
		return fmt.Errorf("config: --threads must be positive")
	}
	return nil
}
