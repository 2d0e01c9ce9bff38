package config

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
)

const appName = "cursor-meter"

func ConfigDir() string {
	if v := os.Getenv("CURSOR_METER_CONFIG_DIR"); v != "" {
		return v
	}
	return filepath.Join(xdg.ConfigHome, appName)
}

func CacheDir() string {
	if v := os.Getenv("CURSOR_METER_CACHE_DIR"); v != "" {
		return v
	}
	return filepath.Join(xdg.CacheHome, appName)
}

func CredentialsDir() string { return filepath.Join(ConfigDir(), "credentials") }
func ConfigFile() string     { return filepath.Join(ConfigDir(), "config.toml") }

// SessionCredentialFile is the single credential this tool stores: the
// Cursor dashboard session token.
func SessionCredentialFile() string {
	return filepath.Join(CredentialsDir(), "session.json")
}
