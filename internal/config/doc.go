// Package config manages the proxycfg settings file.
//
// The settings file is YAML and stores the agent base URL, the bearer token
// issued at login (under the key "access_token") and a few display
// preferences. It follows OS-specific conventions for its location:
//   - Linux: $XDG_CONFIG_HOME/proxycfg/settings.yaml or $HOME/.config/proxycfg/settings.yaml
//   - macOS: $HOME/.config/proxycfg/settings.yaml
//   - Windows: %LOCALAPPDATA%\proxycfg\settings.yaml
//
// PROXYCFG_CONFIG_DIR overrides the directory on every platform.
//
// # Security
//
// The token grants full access to the agent configuration. The file is
// written with 0600 permissions inside a 0700 directory, and passwords are
// never stored.
//
// # Usage Example
//
//	settings, err := config.Load()
//	if err != nil {
//	    return err
//	}
//	settings.AccessToken = tok.AccessToken
//	if err := settings.Save(); err != nil {
//	    return err
//	}
//
// # Thread Safety
//
// Saves are serialised by a package mutex and are atomic (write to a
// temporary file, then rename), so a concurrent reader sees either the old
// or the new file.
package config
