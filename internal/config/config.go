// Package config loads the psitool configuration file.
//
// Pool definitions under target_pools are decoded with yaml.v3 so pool names
// keep their exact spelling. The flat settings (cache_path, ledger_path,
// log.level) are resolved through viper; see LoadSettings.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"psitool/internal/core"
	"psitool/internal/fsutil"
	"psitool/internal/logger"
)

// ErrConfig marks every failure to load or validate configuration.
var ErrConfig = errors.New("config error")

// Config is the parsed configuration file.
type Config struct {
	CachePath   string                     `yaml:"cache_path"`
	LedgerPath  string                     `yaml:"ledger_path"`
	Log         logger.Config              `yaml:"log"`
	TargetPools map[string]core.TargetPool `yaml:"target_pools"`

	path string
}

// Load reads the config file at path. "~" is expanded. A missing or
// unreadable file and malformed content are errors; configuration is never
// guessed.
//
// Relative pool paths are resolved against the directory holding the file.
func Load(path string) (*Config, error) {
	expanded, err := fsutil.ExpandHome(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfig, core.IOError("expand config path", path, err))
	}
	data, err := os.ReadFile(expanded)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfig, core.IOError("read config", expanded, err))
	}
	return Parse(data, expanded)
}

// Parse decodes config bytes. path locates the file for resolving relative
// pool paths; it may be empty.
func Parse(data []byte, path string) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfig, core.FormatError("parse config", path, err))
	}
	cfg.path = path
	if err := cfg.resolve(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfig, core.FormatError("validate config", path, err))
	}
	return &cfg, nil
}

func (c *Config) resolve() error {
	base := ""
	if c.path != "" {
		base = filepath.Dir(c.path)
	}

	var errs []error
	for name, p := range c.TargetPools {
		p.Name = name
		if strings.TrimSpace(name) == "" {
			errs = append(errs, errors.New("target_pools: pool name must not be empty"))
		}
		if strings.TrimSpace(p.Path) == "" {
			errs = append(errs, fmt.Errorf("target_pools.%s.path is required", name))
		} else {
			resolved, err := fsutil.ExpandHome(p.Path)
			if err != nil {
				errs = append(errs, fmt.Errorf("target_pools.%s.path: %w", name, err))
			} else {
				if !filepath.IsAbs(resolved) && base != "" {
					resolved = filepath.Join(base, resolved)
				}
				p.Path = filepath.Clean(resolved)
			}
		}
		if p.Wiki != nil {
			for i, q := range p.Wiki.Queries {
				if strings.TrimSpace(q.Query) == "" {
					errs = append(errs, fmt.Errorf("target_pools.%s.wiki.queries[%d].query is required", name, i))
				}
				if q.Limit != nil && *q.Limit < 0 {
					errs = append(errs, fmt.Errorf("target_pools.%s.wiki.queries[%d].limit must be >= 0", name, i))
				}
			}
		}
		c.TargetPools[name] = p
	}
	sort.Slice(errs, func(i, j int) bool { return errs[i].Error() < errs[j].Error() })
	return errors.Join(errs...)
}

// Path returns the file the config was read from.
func (c *Config) Path() string { return c.path }

// HasPool reports whether name is configured.
func (c *Config) HasPool(name string) bool {
	_, ok := c.TargetPools[name]
	return ok
}

// Pool returns the named pool.
func (c *Config) Pool(name string) (core.TargetPool, bool) {
	p, ok := c.TargetPools[name]
	return p, ok
}

// PoolNames returns every pool name, sorted.
func (c *Config) PoolNames() []string {
	names := make([]string, 0, len(c.TargetPools))
	for name := range c.TargetPools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Pools returns every pool, sorted by name.
func (c *Config) Pools() []core.TargetPool {
	out := make([]core.TargetPool, 0, len(c.TargetPools))
	for _, name := range c.PoolNames() {
		out = append(out, c.TargetPools[name])
	}
	return out
}
