package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/kilianp07/robsolve/core/backend/compiled"
	"github.com/kilianp07/robsolve/core/metrics"
	"github.com/kilianp07/robsolve/core/simulate"
)

// EnvPrefix marks environment variables that override file settings.
// ROBSOLVE_SOLVE__WORK_DIR overrides solve.work_dir.
const EnvPrefix = "ROBSOLVE_"

type Config struct {
	Solve      SolveConfig     `json:"solve"`
	Compiled   compiled.Config `json:"compiled"`
	Simulation simulate.Config `json:"simulation"`
	Metrics    metrics.Config  `json:"metrics"`
}

// Load reads path and applies environment overrides. An empty path loads
// defaults and environment only.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	if path != "" {
		ext := strings.ToLower(filepath.Ext(path))
		var parser koanf.Parser
		switch ext {
		case ".yaml", ".yml":
			parser = yaml.Parser()
		case ".json":
			parser = json.Parser()
		default:
			return nil, fmt.Errorf("unsupported config format: %s", ext)
		}
		if err := k.Load(file.Provider(path), parser); err != nil {
			return nil, err
		}
	}
	// Optional environment overrides
	if err := k.Load(env.Provider(EnvPrefix, "__", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), strings.ToLower(EnvPrefix))
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SetDefaults fills unset fields. Relative paths are resolved against the
// solve working directory.
func (c *Config) SetDefaults() {
	c.Solve.SetDefaults()
	if c.Compiled.WorkDir == "" {
		c.Compiled.WorkDir = c.Solve.WorkDir
	}
	if c.Simulation.Format == "" {
		c.Simulation.Format = "csv"
	}
	if c.Simulation.Output == "" {
		c.Simulation.Output = "simulation." + string(c.Simulation.Format)
	}
	c.Simulation.Output = c.Solve.Resolve(c.Simulation.Output)
}

// Validate checks every section.
func (c Config) Validate() error {
	if err := c.Solve.Validate(); err != nil {
		return fmt.Errorf("solve: %w", err)
	}
	switch c.Simulation.Format {
	case "csv", "json":
	default:
		return fmt.Errorf("simulation: unsupported format %s", c.Simulation.Format)
	}
	return nil
}
