package config

import (
	"os"
	"path/filepath"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	LibrarySources []string `koanf:"library_sources"` // paths to scan for music
	DefaultSource  string   `koanf:"default_source"`  // used when library_sources is empty

	RestoreOnStart *bool `koanf:"restore_on_start"` // reload the saved queue on startup (default: true)
	WatchSources   *bool `koanf:"watch_sources"`    // rescan when files change (default: true)
	Notifications  *bool `koanf:"notifications"`    // desktop notifications on track change (default: true)
	Mpris          *bool `koanf:"mpris"`            // expose the MPRIS control surface (default: true)
}

func Load() (*Config, error) {
	k := koanf.New(".")

	// Try config files in order of priority (last wins)
	for _, path := range getConfigPaths() {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
				return nil, err
			}
		}
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}

	cfg.DefaultSource = expandPath(cfg.DefaultSource)
	for i, src := range cfg.LibrarySources {
		cfg.LibrarySources[i] = expandPath(src)
	}

	return cfg, nil
}

func getConfigPaths() []string {
	paths := []string{}

	// 1. ~/.config/quaver/config.toml
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "quaver", "config.toml"))
	}

	// 2. ./config.toml (pwd, highest priority)
	paths = append(paths, "config.toml")

	return paths
}

func expandPath(path string) string {
	if path != "" && path[0] == '~' {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}

// Sources returns the directories to index: library_sources when set,
// otherwise default_source, otherwise the user's music directory.
func (c *Config) Sources() []string {
	if len(c.LibrarySources) > 0 {
		return c.LibrarySources
	}
	if c.DefaultSource != "" {
		return []string{c.DefaultSource}
	}
	if home, err := os.UserHomeDir(); err == nil {
		return []string{filepath.Join(home, "Music")}
	}
	return nil
}

func (c *Config) ShouldRestoreOnStart() bool {
	return c.RestoreOnStart == nil || *c.RestoreOnStart
}

func (c *Config) ShouldWatchSources() bool {
	return c.WatchSources == nil || *c.WatchSources
}

func (c *Config) NotificationsEnabled() bool {
	return c.Notifications == nil || *c.Notifications
}

func (c *Config) MprisEnabled() bool {
	return c.Mpris == nil || *c.Mpris
}
