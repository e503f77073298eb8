package config

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"psitool/internal/fsutil"
)

// EnvPrefix namespaces environment overrides, e.g. PSITOOL_LEDGER_PATH.
const EnvPrefix = "PSITOOL"

const (
	DefaultConfigPath = "~/.psitool.yaml"
	DefaultCachePath  = "~/.psitool_cache.yaml"
	DefaultLedgerPath = "~/.psitool_completed.yaml"
	DefaultLogLevel   = "info"
)

// Flag names bound to settings keys.
const (
	FlagConfig = "config"
	FlagCache  = "cache"
	FlagLedger = "ledger"
)

// Settings are the resolved ambient options for one invocation.
type Settings struct {
	ConfigPath string
	CachePath  string
	LedgerPath string
	LogLevel   string
}

// LoadDotEnv loads environment variables from .env files without overriding
// variables already set. Missing files are ignored.
func LoadDotEnv(files ...string) {
	_ = godotenv.Load(files...)
}

// LoadSettings resolves the settings and loads the config file they point
// to. Each value is taken from, in order: a changed flag, a PSITOOL_*
// environment variable, the config file, the default.
func LoadSettings(flags *pflag.FlagSet) (Settings, *Config, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	v.SetDefault("config", DefaultConfigPath)
	v.SetDefault("cache_path", DefaultCachePath)
	v.SetDefault("ledger_path", DefaultLedgerPath)
	v.SetDefault("log.level", DefaultLogLevel)

	if flags != nil {
		for key, flag := range map[string]string{
			"config":      FlagConfig,
			"cache_path":  FlagCache,
			"ledger_path": FlagLedger,
		} {
			if f := flags.Lookup(flag); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return Settings{}, nil, fmt.Errorf("bind --%s: %w", flag, err)
				}
			}
		}
	}

	cfgPath, err := fsutil.ExpandHome(v.GetString("config"))
	if err != nil {
		return Settings{}, nil, fmt.Errorf("%w: expand config path: %w", ErrConfig, err)
	}
	cfg, err := Load(cfgPath)
	if err != nil {
		return Settings{}, nil, err
	}

	v.SetConfigFile(cfgPath)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return Settings{}, nil, fmt.Errorf("%w: read %s: %w", ErrConfig, cfgPath, err)
	}

	s := Settings{ConfigPath: cfgPath, LogLevel: v.GetString("log.level")}
	if s.CachePath, err = fsutil.ExpandHome(v.GetString("cache_path")); err != nil {
		return Settings{}, nil, fmt.Errorf("%w: expand cache path: %w", ErrConfig, err)
	}
	if s.LedgerPath, err = fsutil.ExpandHome(v.GetString("ledger_path")); err != nil {
		return Settings{}, nil, fmt.Errorf("%w: expand ledger path: %w", ErrConfig, err)
	}
	return s, cfg, nil
}
