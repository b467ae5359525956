// Package config holds the user-level settings of gqld.
//
// Values are resolved in viper's usual order: explicit Set, environment
// (GQLD_ prefix, dashes become underscores), the user config file, then
// defaults. The config file is optional and lives at
// $XDG_CONFIG_HOME/gqld/config.yaml (or the platform equivalent).
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	KeyAPIEndpoint   = "api-endpoint"
	KeyToken         = "token"
	KeyUpdateURL     = "update-url"
	KeyNoUpdateCheck = "no-update-check"
	KeyHTTPTimeout   = "http-timeout"
	KeyProbeTimeout  = "probe-timeout"
	KeyJSON          = "json"
	KeyTelemetry     = "telemetry"
)

var v *viper.Viper

// Initialize sets up the viper singleton. It is safe to call more than once;
// every call starts from a clean instance.
func Initialize() error {
	v = viper.New()
	v.SetConfigType("yaml")

	v.SetEnvPrefix("GQLD")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault(KeyAPIEndpoint, "https://api.gqld.dev/")
	v.SetDefault(KeyToken, "")
	v.SetDefault(KeyUpdateURL, "https://releases.gqld.dev/cli/manifest.json")
	v.SetDefault(KeyNoUpdateCheck, false)
	v.SetDefault(KeyHTTPTimeout, 30*time.Second)
	v.SetDefault(KeyProbeTimeout, 5*time.Second)
	v.SetDefault(KeyJSON, false)
	v.SetDefault(KeyTelemetry, false)

	path := FilePath()
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("error reading config file %s: %w", path, err)
	}
	return nil
}

// FilePath returns where the user config file is expected. GQLD_CONFIG
// overrides the location.
func FilePath() string {
	if p := os.Getenv("GQLD_CONFIG"); p != "" {
		return p
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "gqld", "config.yaml")
}

// ConfigFileUsed returns the file that was read, or "" when none was.
func ConfigFileUsed() string {
	if v == nil {
		return ""
	}
	return v.ConfigFileUsed()
}

// ResetForTesting drops all state so the next Initialize starts fresh.
func ResetForTesting() {
	v = nil
}

func GetString(key string) string {
	if v == nil {
		return ""
	}
	return v.GetString(key)
}

func GetBool(key string) bool {
	if v == nil {
		return false
	}
	return v.GetBool(key)
}

func GetDuration(key string) time.Duration {
	if v == nil {
		return 0
	}
	return v.GetDuration(key)
}

// Set overrides a value for the rest of the process, typically from a flag.
func Set(key string, value interface{}) {
	if v != nil {
		v.Set(key, value)
	}
}
