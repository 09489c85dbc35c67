// Package config implements the installer's configuration cascade (spec
// §6): a system-wide YAML file, then a user YAML file that overrides it,
// both parsed with go.yaml.in/yaml/v3 the way the teacher's main.go loads
// apt-repo-config.yaml. Unknown keys are preserved in Raw but ignored by
// the core.
package config

import (
	"os"

	"go.yaml.in/yaml/v3"

	"github.com/pkgforge/debpm/dpkgerr"
)

const (
	// EnvDebug is the debug switch environment variable (spec §6, "a debug
	// switch (any non-empty value) enables extra diagnostic output in the
	// Sibling Finder").
	EnvDebug = "DEBPM_DEBUG"

	// EnvInstallRoot overrides the system install root (spec §6, "an
	// install-root override selects the directory under which payloads
	// are materialized").
	EnvInstallRoot = "DEBPM_INSTALL_ROOT"

	defaultSystemConfigPath = "/etc/debpm/config.yaml"
)

// Config holds the three paths the core recognizes, plus any unrecognized
// keys preserved verbatim for round-tripping.
type Config struct {
	// StoreRoot is the Persistent Store root (spec §4.3).
	StoreRoot string `yaml:"store_root"`
	// StagingRoot is where the Archive Reader extracts .deb contents.
	StagingRoot string `yaml:"staging_root"`
	// InstallRoot is the system install root the File Materializer writes
	// under.
	InstallRoot string `yaml:"install_root"`

	// Raw holds every key present in the cascade that none of the fields
	// above recognizes, so that `debpm config` can print (and a future
	// writer could persist) fields this version of the core doesn't
	// understand.
	Raw map[string]interface{} `yaml:",inline"`
}

// defaults returns a Config with conservative, always-writable paths; used
// when no cascade file is present at all.
func defaults() Config {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "/root"
	}
	return Config{
		StoreRoot:   home + "/.local/share/debpm/store",
		StagingRoot: home + "/.cache/debpm/staging",
		InstallRoot: "/",
	}
}

// UserConfigPath returns the per-user config file path, honoring
// XDG_CONFIG_HOME if set.
func UserConfigPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return xdg + "/debpm/config.yaml"
	}
	home, err := os.UserHomeDir()
	if err != nil {
		home = "/root"
	}
	return home + "/.config/debpm/config.yaml"
}

// SystemConfigPath returns the system-wide config file path.
func SystemConfigPath() string { return defaultSystemConfigPath }

// Load runs the cascade: defaults, then the system file (if present), then
// the user file (if present) overriding it, then environment overrides.
// A missing file at either cascade stage is not an error; a malformed one
// is.
func Load() (Config, error) {
	cfg := defaults()

	if err := mergeFile(&cfg, SystemConfigPath()); err != nil {
		return cfg, err
	}
	if err := mergeFile(&cfg, UserConfigPath()); err != nil {
		return cfg, err
	}

	if v := os.Getenv(EnvInstallRoot); v != "" {
		cfg.InstallRoot = v
	}
	return cfg, nil
}

// Debug reports whether the debug environment switch is set.
func Debug() bool {
	return os.Getenv(EnvDebug) != ""
}

func mergeFile(cfg *Config, path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return &dpkgerr.IoError{Op: "read", Path: path, Err: err}
	}

	var file Config
	if err := yaml.Unmarshal(content, &file); err != nil {
		return &dpkgerr.FormatError{Context: path, Reason: "invalid config YAML", Err: err}
	}

	if file.StoreRoot != "" {
		cfg.StoreRoot = file.StoreRoot
	}
	if file.StagingRoot != "" {
		cfg.StagingRoot = file.StagingRoot
	}
	if file.InstallRoot != "" {
		cfg.InstallRoot = file.InstallRoot
	}
	if cfg.Raw == nil {
		cfg.Raw = map[string]interface{}{}
	}
	for k, v := range file.Raw {
		cfg.Raw[k] = v
	}
	return nil
}

// Marshal renders cfg back to YAML, for `debpm config`.
func Marshal(cfg Config) ([]byte, error) {
	return yaml.Marshal(cfg)
}
