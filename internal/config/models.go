package config

import (
	"os"
	"strings"
)

// CurrentVersion is the settings file format version written by Save.
const CurrentVersion = 1

// ServerEnvVar overrides the saved agent URL.
const ServerEnvVar = "PROXYCFG_SERVER"

// Settings represents the entire settings file.
type Settings struct {
	Version     int          `yaml:"version"`
	Server      string       `yaml:"server,omitempty"`       // Agent base URL (e.g., "http://10.0.0.2:8080")
	AccessToken string       `yaml:"access_token,omitempty"` // Bearer token from the last login
	Preferences *Preferences `yaml:"preferences,omitempty"`

	path string
}

// Preferences represents application-wide user preferences.
type Preferences struct {
	SortBy          string `yaml:"sort_by"`          // Initial proxy sort key
	LogBufferLimit  int    `yaml:"log_buffer_limit"` // Max live log lines kept (0 = unbounded)
	DiscoverTimeout int    `yaml:"discover_timeout"` // mDNS discovery timeout in seconds
}

// NewSettings creates settings with default values, bound to no file.
func NewSettings() *Settings {
	return &Settings{
		Version:     CurrentVersion,
		Preferences: defaultPreferences(),
	}
}

func defaultPreferences() *Preferences {
	return &Preferences{
		SortBy:          "location",
		LogBufferLimit:  0,
		DiscoverTimeout: 5,
	}
}

// Path returns the file the settings were loaded from and will be saved to.
func (s *Settings) Path() string {
	return s.path
}

// ResolveServer picks the agent URL: an explicit flag value wins, then
// PROXYCFG_SERVER, then the saved server. The result may be empty.
func (s *Settings) ResolveServer(flagValue string) string {
	if v := strings.TrimSpace(flagValue); v != "" {
		return v
	}
	if v := strings.TrimSpace(os.Getenv(ServerEnvVar)); v != "" {
		return v
	}
	return s.Server
}

// HasToken reports whether a login token is stored.
func (s *Settings) HasToken() bool {
	return s.AccessToken != ""
}
