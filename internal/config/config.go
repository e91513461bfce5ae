// Package config handles TOML configuration loading with environment
// variable substitution.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"

	"github.com/BurntSushi/toml"

	"github.com/vmunix/binge/internal/provider"
)

// Config is the root configuration structure.
type Config struct {
	Server    ServerConfig     `toml:"server"`
	Database  DatabaseConfig   `toml:"database"`
	Storage   StorageConfig    `toml:"storage"`
	Download  DownloadConfig   `toml:"download"`
	Providers []ProviderConfig `toml:"providers"`
}

type ServerConfig struct {
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	LogLevel string `toml:"log_level"`
}

type DatabaseConfig struct {
	Path string `toml:"path"`
}

type StorageConfig struct {
	Root string `toml:"root"`
}

type DownloadConfig struct {
	Workers    int `toml:"workers"`
	QueueDepth int `toml:"queue_depth"`
}

// ProviderConfig declares one remote media provider.
type ProviderConfig struct {
	ID                string          `toml:"id"`
	Name              string          `toml:"name"`
	Type              string          `toml:"type"`
	URL               string          `toml:"url"`
	ExcludeLibraryIDs []string        `toml:"exclude_library_ids"`
	Profiles          []ProfileConfig `toml:"profiles"`
}

// ProfileConfig is one named transcode profile. PlaybackSettings is the
// provider's playback-info body, carried opaquely as JSON text.
type ProfileConfig struct {
	Name             string `toml:"name"`
	Description      string `toml:"description"`
	PlaybackSettings string `toml:"playback_settings"`
}

// Load reads and parses the configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	content := substituteEnvVars(string(data))

	var cfg Config
	if _, err := toml.Decode(content, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	// Apply defaults
	if cfg.Server.Host == "" {
		cfg.Server.Host = "0.0.0.0"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8787
	}
	if cfg.Server.LogLevel == "" {
		cfg.Server.LogLevel = "info"
	}
	if cfg.Database.Path == "" {
		cfg.Database.Path = "./data/binge.db"
	}
	if cfg.Storage.Root == "" {
		cfg.Storage.Root = "./data/blobs"
	}
	if cfg.Download.Workers == 0 {
		cfg.Download.Workers = 2
	}
	if cfg.Download.QueueDepth == 0 {
		cfg.Download.QueueDepth = 16
	}

	return &cfg, nil
}

// Descriptor converts a provider block into the registry's form.
func (p ProviderConfig) Descriptor() provider.Descriptor {
	d := provider.Descriptor{
		ID:                p.ID,
		Name:              p.Name,
		Type:              p.Type,
		URL:               p.URL,
		ExcludeLibraryIDs: p.ExcludeLibraryIDs,
	}
	for _, profile := range p.Profiles {
		d.Profiles = append(d.Profiles, provider.Profile{
			Name:             profile.Name,
			Description:      profile.Description,
			PlaybackSettings: json.RawMessage(profile.PlaybackSettings),
		})
	}
	return d
}

// substituteEnvVars replaces ${VAR_NAME} with environment variable values.
var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

func substituteEnvVars(content string) string {
	return envVarPattern.ReplaceAllStringFunc(content, func(match string) string {
		varName := match[2 : len(match)-1]
		if value, ok := os.LookupEnv(varName); ok {
			return value
		}
		return match
	})
}
