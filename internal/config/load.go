package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/Makepad-fr/tada-remote/internal/store/jsonstore"
)

// Paths lists the files Load looks at. Empty entries are skipped.
type Paths struct {
	UserFile    string
	ProjectFile string
	DotEnv      string
}

// DefaultPaths uses the OS config dir for the user file and the working
// directory for the project file and .env.
func DefaultPaths() Paths {
	var p Paths
	if dir, err := os.UserConfigDir(); err == nil {
		p.UserFile = filepath.Join(dir, "tada", ConfigFileName)
	}
	p.ProjectFile = ConfigFileName
	p.DotEnv = ".env"
	return p
}

// Load loads configuration with DefaultPaths.
func Load(fs *flag.FlagSet, args []string) (*Config, error) {
	return LoadFrom(DefaultPaths(), fs, args)
}

// LoadFrom loads configuration in priority order:
// 1. Defaults
// 2. User config file
// 3. Project config file
// 4. .env (never overrides variables already set)
// 5. Environment variables
// 6. Flags on fs
func LoadFrom(paths Paths, fs *flag.FlagSet, args []string) (*Config, error) {
	cfg := &Config{}
	setDefaults(cfg)

	for _, p := range []string{paths.UserFile, paths.ProjectFile} {
		if err := loadConfigFile(cfg, p); err != nil {
			return nil, fmt.Errorf("loading config file %s: %w", p, err)
		}
	}

	if paths.DotEnv != "" {
		if err := godotenv.Load(paths.DotEnv); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("loading %s: %w", paths.DotEnv, err)
		}
	}
	loadFromEnv(cfg)

	if fs != nil {
		bindFlags(cfg, fs)
		if err := fs.Parse(args); err != nil {
			return nil, fmt.Errorf("parsing flags: %w", err)
		}
	}

	if err := finalize(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadConfigFile(cfg *Config, path string) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	_, err := toml.DecodeFile(path, cfg)
	return err
}

// loadFromEnv overrides config from TADA_* environment variables.
func loadFromEnv(cfg *Config) {
	set := func(dst *string, name string) {
		if v := strings.TrimSpace(os.Getenv(name)); v != "" {
			*dst = v
		}
	}
	set(&cfg.APIURL, "TADA_API_URL")
	set(&cfg.StorePath, "TADA_STORE")
	set(&cfg.LogLevel, "TADA_LOG_LEVEL")
	set(&cfg.LogFormat, "TADA_LOG_FORMAT")
	set(&cfg.LogFile, "TADA_LOG_FILE")
	set(&cfg.Theme, "TADA_THEME")
	set(&cfg.Listen, "TADA_LISTEN")
	set(&cfg.Database, "TADA_DATABASE")
}

func bindFlags(cfg *Config, fs *flag.FlagSet) {
	fs.StringVar(&cfg.APIURL, "api", cfg.APIURL, "todo backend base URL")
	fs.StringVar(&cfg.StorePath, "store", cfg.StorePath, "checklist store file")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "debug|info|warn|error")
	fs.StringVar(&cfg.LogFile, "log-file", cfg.LogFile, "log file used while the TUI runs")
	fs.StringVar(&cfg.Theme, "theme", cfg.Theme, "classic|neon|mono")
}

func finalize(cfg *Config) error {
	cfg.APIURL = strings.TrimRight(strings.TrimSpace(cfg.APIURL), "/")
	cfg.StorePath = expandHome(cfg.StorePath)
	cfg.LogFile = expandHome(cfg.LogFile)
	cfg.Database = expandHome(cfg.Database)
	if cfg.StorePath == "" {
		p, err := jsonstore.DefaultPath()
		if err != nil {
			return fmt.Errorf("store path: %w", err)
		}
		cfg.StorePath = p
	}
	return nil
}

// expandHome expands a leading ~/ to the user's home directory.
func expandHome(p string) string {
	if p == "~" || strings.HasPrefix(p, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return p
		}
		return filepath.Join(home, strings.TrimPrefix(p[1:], "/"))
	}
	return p
}
