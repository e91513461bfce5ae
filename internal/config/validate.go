package config

import (
	"encoding/json"
	"fmt"
)

var validLogLevels = map[string]bool{
	"debug": true, "info": true, "warn": true, "error": true, "": true,
}

var validProviderTypes = map[string]bool{
	"jellyfin": true,
}

// Validate checks the configuration for errors.
// Returns a slice of error messages (empty if valid).
func (c *Config) Validate() []string {
	var errs []string

	if c.Server.Port != 0 && (c.Server.Port < 1 || c.Server.Port > 65535) {
		errs = append(errs, fmt.Sprintf("server.port: must be between 1 and 65535, got %d", c.Server.Port))
	}
	if !validLogLevels[c.Server.LogLevel] {
		errs = append(errs, fmt.Sprintf("server.log_level: must be one of debug, info, warn, error; got %q", c.Server.LogLevel))
	}

	if len(c.Providers) == 0 {
		errs = append(errs, "providers: at least one provider must be configured")
	}
	seen := make(map[string]bool)
	for i, p := range c.Providers {
		prefix := fmt.Sprintf("providers[%d]", i)
		if p.ID == "" {
			errs = append(errs, prefix+".id: required")
		} else if seen[p.ID] {
			errs = append(errs, fmt.Sprintf("%s.id: duplicate provider id %q", prefix, p.ID))
		}
		seen[p.ID] = true

		if p.URL == "" {
			errs = append(errs, prefix+".url: required")
		}
		if !validProviderTypes[p.Type] {
			errs = append(errs, fmt.Sprintf("%s.type: unsupported provider type %q", prefix, p.Type))
		}
		for j, profile := range p.Profiles {
			if profile.Name == "" {
				errs = append(errs, fmt.Sprintf("%s.profiles[%d].name: required", prefix, j))
			}
			if profile.PlaybackSettings != "" && !json.Valid([]byte(profile.PlaybackSettings)) {
				errs = append(errs, fmt.Sprintf("%s.profiles[%d].playback_settings: not valid JSON", prefix, j))
			}
		}
	}

	if c.Download.Workers < 0 {
		errs = append(errs, fmt.Sprintf("download.workers: must be positive, got %d", c.Download.Workers))
	}
	if c.Download.QueueDepth < 0 {
		errs = append(errs, fmt.Sprintf("download.queue_depth: must be positive, got %d", c.Download.QueueDepth))
	}

	return errs
}
