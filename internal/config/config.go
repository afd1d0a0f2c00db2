// Package config loads tada settings from defaults, TOML files, .env,
// the environment and root flags, in that order.
package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/Makepad-fr/tada-remote/internal/model"
)

const (
	DefaultAPIURL    = "http://localhost:8000"
	DefaultLogLevel  = "info"
	DefaultLogFormat = "text"
	DefaultLogFile   = "tada.log"
	DefaultTheme     = "classic"
	DefaultListen    = "127.0.0.1:8000"

	ConfigFileName = "tada.toml"
)

// Config holds every setting the CLI needs.
type Config struct {
	APIURL    string `toml:"api_url"`
	StorePath string `toml:"store_path"`
	LogLevel  string `toml:"log_level"`
	LogFormat string `toml:"log_format"`
	LogFile   string `toml:"log_file"`
	Theme     string `toml:"theme"`

	// dev backend
	Listen   string `toml:"listen"`
	Database string `toml:"database"`

	Checklist []model.ChecklistItem `toml:"checklist"`
}

// DefaultChecklist mirrors the tutorial site's sections.
func DefaultChecklist() []model.ChecklistItem {
	return []model.ChecklistItem{
		{ID: "guides-intro", Label: "はじめに"},
		{ID: "next", Label: "Next.js チュートリアル"},
		{ID: "fast-api", Label: "FastAPI チュートリアル"},
		{ID: "full-stack", Label: "フルスタックWebアプリ超入門"},
	}
}

func setDefaults(cfg *Config) {
	cfg.APIURL = DefaultAPIURL
	cfg.LogLevel = DefaultLogLevel
	cfg.LogFormat = DefaultLogFormat
	cfg.LogFile = DefaultLogFile
	cfg.Theme = DefaultTheme
	cfg.Listen = DefaultListen
	cfg.Checklist = DefaultChecklist()
}

// Validate checks values that would otherwise fail late.
func (c *Config) Validate() error {
	u, err := url.Parse(c.APIURL)
	if err != nil {
		return fmt.Errorf("api_url: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("api_url: want absolute http(s) url, got %q", c.APIURL)
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json", "logfmt":
	default:
		return fmt.Errorf("log_format: unknown formatter %q", c.LogFormat)
	}
	seen := make(map[string]bool, len(c.Checklist))
	for _, it := range c.Checklist {
		if it.ID == "" {
			return fmt.Errorf("checklist: item %q has no id", it.Label)
		}
		if seen[it.ID] {
			return fmt.Errorf("checklist: duplicate id %q", it.ID)
		}
		seen[it.ID] = true
	}
	return nil
}
