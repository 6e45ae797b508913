package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Config captures the logview settings.
type Config struct {
	LogPath        string
	Debug          bool
	RulesPath      string
	TailLines      int
	PollInterval   time.Duration
	Encoding       string
	Palette        string
	MaxBufferBytes int
}

const (
	defaultConfigPath     = "~/.config/logview/config.toml"
	defaultRulesPath      = "~/.config/logview/rules.toml"
	defaultTailLines      = 5000
	defaultPollInterval   = time.Second
	defaultEncoding       = "utf-8"
	defaultPalette        = "dracula"
	defaultMaxBufferBytes = 8 << 20
)

// DefaultPath returns the default configuration file path.
func DefaultPath() string {
	return defaultConfigPath
}

func defaults() Config {
	return Config{
		RulesPath:      mustExpand(defaultRulesPath),
		TailLines:      defaultTailLines,
		PollInterval:   defaultPollInterval,
		Encoding:       defaultEncoding,
		Palette:        defaultPalette,
		MaxBufferBytes: defaultMaxBufferBytes,
	}
}

// Load reads the configuration at path, falling back to defaults when the
// file is missing.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := defaults()

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var raw struct {
		LogPath        string `toml:"log_path"`
		Debug          bool   `toml:"debug"`
		RulesPath      string `toml:"rules_path"`
		TailLines      *int   `toml:"tail_lines"`
		PollSeconds    *int   `toml:"poll_seconds"`
		Encoding       string `toml:"encoding"`
		Palette        string `toml:"palette"`
		MaxBufferBytes *int   `toml:"max_buffer_bytes"`
	}
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	cfg.Debug = raw.Debug
	if logPath := strings.TrimSpace(raw.LogPath); logPath != "" {
		cfg.LogPath = mustExpand(logPath)
	}
	if rulesPath := strings.TrimSpace(raw.RulesPath); rulesPath != "" {
		cfg.RulesPath = mustExpand(rulesPath)
	}

	if raw.TailLines != nil {
		if *raw.TailLines < 0 {
			return Config{}, fmt.Errorf("tail_lines must not be negative, got %d", *raw.TailLines)
		}
		cfg.TailLines = *raw.TailLines
	}
	if raw.PollSeconds != nil {
		if *raw.PollSeconds <= 0 {
			return Config{}, fmt.Errorf("poll_seconds must be positive, got %d", *raw.PollSeconds)
		}
		cfg.PollInterval = time.Duration(*raw.PollSeconds) * time.Second
	}
	if raw.MaxBufferBytes != nil {
		cfg.MaxBufferBytes = max(*raw.MaxBufferBytes, 0)
	}

	if encoding := strings.TrimSpace(raw.Encoding); encoding != "" {
		cfg.Encoding = encoding
	}
	if palette := strings.TrimSpace(raw.Palette); palette != "" {
		cfg.Palette = strings.ToLower(palette)
	}

	return cfg, nil
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
