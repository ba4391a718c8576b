// Package appconfig manages application settings and runtime file paths.
package appconfig

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/treykane/sshh/internal/util"
	"gopkg.in/yaml.v3"
)

// LaunchMode selects how the ssh process is started.
type LaunchMode string

const (
	// LaunchSpawn runs ssh as a child with the terminal's stdio attached.
	LaunchSpawn LaunchMode = "spawn"
	// LaunchPTY runs ssh inside a pseudo-terminal and copies io both ways.
	LaunchPTY LaunchMode = "pty"
	// LaunchExec replaces the sshh process with ssh.
	LaunchExec LaunchMode = "exec"
)

// Config holds application-level settings.
type Config struct {
	DefaultUser   string     `yaml:"default_user"`
	PemExtensions []string   `yaml:"pem_extensions"`
	SSHBinary     string     `yaml:"ssh_binary"`
	LaunchMode    LaunchMode `yaml:"launch_mode"`
	HostsFile     string     `yaml:"hosts_file"`
	LogLevel      string     `yaml:"log_level"`
}

// Default returns the default configuration.
func Default() Config {
	return Config{
		DefaultUser:   util.DefaultUser,
		PemExtensions: []string{util.DefaultPemExtension},
		SSHBinary:     util.DefaultSSHBinary,
		LaunchMode:    LaunchSpawn,
		LogLevel:      "warn",
	}
}

// ConfigDir returns the application config directory path.
// Uses XDG_CONFIG_HOME if set, otherwise ~/.config/sshh.
func ConfigDir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, util.AppName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home: %w", err)
	}
	return filepath.Join(home, ".config", util.AppName), nil
}

// HostsFilePath returns the record file location: the configured hosts_file
// when set, otherwise hosts.json in the config directory.
func (c Config) HostsFilePath() (string, error) {
	if p := strings.TrimSpace(c.HostsFile); p != "" {
		return expandHome(p), nil
	}
	d, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(d, util.HostsFileName), nil
}

// SlogLevel maps log_level onto a slog level. Unknown values fall back to warn.
func (c Config) SlogLevel() slog.Level {
	switch strings.ToLower(strings.TrimSpace(c.LogLevel)) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}

// Load reads config.yaml from the config directory.
// If the file doesn't exist, creates it with defaults.
func Load() (Config, error) {
	d, err := ConfigDir()
	if err != nil {
		return Config{}, err
	}
	if err := os.MkdirAll(d, 0o700); err != nil {
		return Config{}, err
	}
	path := filepath.Join(d, "config.yaml")
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg := Default()
			if err := Save(cfg); err != nil {
				return cfg, err
			}
			return cfg, nil
		}
		return Config{}, err
	}
	cfg := Default()
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse %s: %w", path, err)
	}
	return normalize(cfg), nil
}

// Save writes config to config.yaml.
func Save(cfg Config) error {
	d, err := ConfigDir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(d, 0o700); err != nil {
		return err
	}
	path := filepath.Join(d, "config.yaml")
	b, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o600)
}

func normalize(cfg Config) Config {
	if strings.TrimSpace(cfg.DefaultUser) == "" {
		cfg.DefaultUser = util.DefaultUser
	}
	if strings.TrimSpace(cfg.SSHBinary) == "" {
		cfg.SSHBinary = util.DefaultSSHBinary
	}
	exts := cfg.PemExtensions[:0]
	for _, e := range cfg.PemExtensions {
		e = strings.TrimSpace(e)
		if e == "" {
			continue
		}
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		exts = append(exts, e)
	}
	if len(exts) == 0 {
		exts = []string{util.DefaultPemExtension}
	}
	cfg.PemExtensions = exts
	switch cfg.LaunchMode {
	case LaunchSpawn, LaunchPTY, LaunchExec:
	default:
		cfg.LaunchMode = LaunchSpawn
	}
	return cfg
}

func expandHome(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}
