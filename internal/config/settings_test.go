package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

func TestGetConfigDir(t *testing.T) {
	t.Setenv(ConfigDirEnvVar, "")

	configDir, err := GetConfigDir()
	if err != nil {
		t.Fatalf("GetConfigDir() error = %v", err)
	}

	if !strings.Contains(configDir, "proxycfg") {
		t.Errorf("GetConfigDir() = %v, should contain 'proxycfg'", configDir)
	}

	switch runtime.GOOS {
	case "darwin":
		if !strings.Contains(configDir, ".config") {
			t.Errorf("macOS config dir should contain '.config', got: %v", configDir)
		}
	case "linux":
		t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
		dir, _ := GetConfigDir()
		if dir != filepath.Join("/tmp/xdg", "proxycfg") {
			t.Errorf("GetConfigDir() with XDG_CONFIG_HOME = %v", dir)
		}
	}
}

func TestGetConfigDirOverride(t *testing.T) {
	t.Setenv(ConfigDirEnvVar, "/opt/proxycfg")

	dir, err := GetConfigDir()
	if err != nil {
		t.Fatalf("GetConfigDir() error = %v", err)
	}
	if dir != "/opt/proxycfg" {
		t.Errorf("GetConfigDir() = %v, want /opt/proxycfg", dir)
	}

	path, _ := GetSettingsPath()
	if filepath.Base(path) != "settings.yaml" {
		t.Errorf("GetSettingsPath() should end with 'settings.yaml', got: %v", path)
	}
}

func TestNewSettings(t *testing.T) {
	s := NewSettings()

	if s.Version != 1 {
		t.Errorf("NewSettings().Version = %v, want 1", s.Version)
	}
	if s.Preferences == nil {
		t.Fatal("NewSettings().Preferences should not be nil")
	}
	if s.Preferences.SortBy != "location" {
		t.Errorf("Preferences.SortBy = %v, want location", s.Preferences.SortBy)
	}
	if s.HasToken() {
		t.Error("new settings should have no token")
	}
}

func TestLoadMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "settings.yaml")

	s, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	if s.Path() != path {
		t.Errorf("Path() = %v, want %v", s.Path(), path)
	}
	if s.Server != "" || s.AccessToken != "" {
		t.Errorf("missing file should give defaults, got %+v", s)
	}
}

func TestSaveAndLoad(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(ConfigDirEnvVar, filepath.Join(dir, "proxycfg"))

	s, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	s.Server = "http://10.0.0.2:8080"
	s.AccessToken = "tok123"
	s.Preferences.LogBufferLimit = 500

	if err := s.Save(); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	info, err := os.Stat(s.Path())
	if err != nil {
		t.Fatalf("Stat() error = %v", err)
	}
	if runtime.GOOS != "windows" && info.Mode().Perm() != 0600 {
		t.Errorf("settings file mode = %v, want 0600", info.Mode().Perm())
	}
	if _, err := os.Stat(s.Path() + ".tmp"); !os.IsNotExist(err) {
		t.Error("temporary file left behind")
	}

	data, _ := os.ReadFile(s.Path())
	if !strings.Contains(string(data), "access_token: tok123") {
		t.Errorf("token not stored under access_token:\n%s", data)
	}

	loaded, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded.Server != s.Server || loaded.AccessToken != "tok123" {
		t.Errorf("loaded = %+v", loaded)
	}
	if loaded.Preferences.LogBufferLimit != 500 {
		t.Errorf("LogBufferLimit = %d, want 500", loaded.Preferences.LogBufferLimit)
	}
}

func TestReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")

	a, _ := LoadFrom(path)
	a.AccessToken = "first"
	if err := a.Save(); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	b, _ := LoadFrom(path)
	b.AccessToken = ""
	if err := b.Save(); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	if err := a.Reload(); err != nil {
		t.Fatalf("Reload() error = %v", err)
	}
	if a.HasToken() {
		t.Error("Reload() should pick up the cleared token")
	}
	if a.Path() != path {
		t.Errorf("Path() after Reload = %v", a.Path())
	}
}

func TestUnsupportedVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	if err := os.WriteFile(path, []byte("version: 7\n"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFrom(path); err == nil {
		t.Error("LoadFrom() should reject an unknown version")
	}
}

func TestResolveServer(t *testing.T) {
	s := NewSettings()
	s.Server = "http://saved:1"

	t.Setenv(ServerEnvVar, "")
	if got := s.ResolveServer(""); got != "http://saved:1" {
		t.Errorf("ResolveServer() = %v, want saved", got)
	}

	t.Setenv(ServerEnvVar, "http://env:2")
	if got := s.ResolveServer(""); got != "http://env:2" {
		t.Errorf("ResolveServer() = %v, want env", got)
	}
	if got := s.ResolveServer("http://flag:3"); got != "http://flag:3" {
		t.Errorf("ResolveServer(flag) = %v, want flag", got)
	}
}
