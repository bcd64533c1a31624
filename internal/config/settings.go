package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"gopkg.in/yaml.v3"
)

const (
	appName      = "proxycfg"
	settingsFile = "settings.yaml"

	// ConfigDirEnvVar overrides the settings directory
	ConfigDirEnvVar = "PROXYCFG_CONFIG_DIR"
)

// Mutex for thread-safe file operations
var fileMutex sync.Mutex

// GetConfigDir returns the OS-appropriate configuration directory for the application.
// This follows platform conventions:
//   - Linux: $XDG_CONFIG_HOME/proxycfg or $HOME/.config/proxycfg
//   - macOS: $HOME/.config/proxycfg (following XDG convention on macOS)
//   - Windows: %LOCALAPPDATA%\proxycfg
func GetConfigDir() (string, error) {
	if dir := os.Getenv(ConfigDirEnvVar); dir != "" {
		return dir, nil
	}

	switch runtime.GOOS {
	case "windows":
		localAppData := os.Getenv("LOCALAPPDATA")
		if localAppData != "" {
			return filepath.Join(localAppData, appName), nil
		}
		userProfile := os.Getenv("USERPROFILE")
		if userProfile == "" {
			return "", fmt.Errorf("cannot determine user profile directory (LOCALAPPDATA and USERPROFILE not set)")
		}
		return filepath.Join(userProfile, "AppData", "Local", appName), nil

	case "darwin":
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("cannot determine home directory: %w", err)
		}
		return filepath.Join(homeDir, ".config", appName), nil

	default:
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, appName), nil
		}
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("cannot determine home directory: %w", err)
		}
		return filepath.Join(homeDir, ".config", appName), nil
	}
}

// GetSettingsPath returns the full path to the settings file.
func GetSettingsPath() (string, error) {
	dir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, settingsFile), nil
}

// Load reads the settings file from its default location. A missing file
// yields default settings bound to that location.
func Load() (*Settings, error) {
	path, err := GetSettingsPath()
	if err != nil {
		return nil, fmt.Errorf("failed to get settings path: %w", err)
	}
	return LoadFrom(path)
}

// LoadFrom reads the settings file at path. A missing file yields default
// settings bound to path.
func LoadFrom(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		s := NewSettings()
		s.path = path
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read settings file: %w", err)
	}

	s, err := parse(data)
	if err != nil {
		return nil, err
	}
	s.path = path
	return s, nil
}

func parse(data []byte) (*Settings, error) {
	var s Settings
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse settings file: %w", err)
	}

	// An empty file decodes to version 0.
	if s.Version == 0 {
		s.Version = CurrentVersion
	}
	if s.Version != CurrentVersion {
		return nil, fmt.Errorf("unsupported settings version: %d (expected %d)", s.Version, CurrentVersion)
	}

	if s.Preferences == nil {
		s.Preferences = defaultPreferences()
	}
	return &s, nil
}

// Reload re-reads the file the settings are bound to, replacing the
// in-memory values. It is used when another process changed the file.
func (s *Settings) Reload() error {
	fileMutex.Lock()
	defer fileMutex.Unlock()

	fresh, err := LoadFrom(s.path)
	if err != nil {
		return err
	}
	*s = *fresh
	return nil
}

// Save writes the settings to their file.
// Performs an atomic write to prevent corruption on crash.
func (s *Settings) Save() error {
	fileMutex.Lock()
	defer fileMutex.Unlock()

	if s.path == "" {
		path, err := GetSettingsPath()
		if err != nil {
			return fmt.Errorf("failed to get settings path: %w", err)
		}
		s.path = path
	}

	// Create directory with user-only permissions (0700)
	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	s.Version = CurrentVersion
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}

	header := []byte(`# proxycfg settings
# Holds the agent address and the token from your last login.
# Delete access_token (or run 'proxycfg logout') to sign out.
#
# Location: ` + s.path + `

`)
	data = append(header, data...)

	tmpPath := s.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write temporary settings file: %w", err)
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to save settings file: %w", err)
	}

	return nil
}
