package rules

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
)

const defaultRulesPath = "~/.config/logview/rules.toml"

// DefaultPath returns the default rules file path.
func DefaultPath() string {
	return defaultRulesPath
}

type rulesFile struct {
	Rules []Rule `toml:"rule"`
}

// Load reads the rules file at path, falling back to DefaultSet when it does
// not exist. Unlike preferences, a broken rules file is reported.
func Load(path string, palette Palette) (*Set, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return nil, err
	}

	bytes, err := os.ReadFile(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return DefaultSet(palette), nil
		}
		return nil, fmt.Errorf("read rules: %w", err)
	}

	var file rulesFile
	if err := toml.Unmarshal(bytes, &file); err != nil {
		return nil, fmt.Errorf("parse rules: %w", err)
	}
	set, err := NewSet(palette, file.Rules)
	if err != nil {
		return nil, fmt.Errorf("load rules %s: %w", resolved, err)
	}
	return set, nil
}

// Save writes the rules of set in priority order.
func Save(path string, set *Set) error {
	resolved, err := resolvePath(path)
	if err != nil {
		return fmt.Errorf("resolve path: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(resolved), 0o755); err != nil {
		return fmt.Errorf("create rules dir: %w", err)
	}

	bytes, err := toml.Marshal(rulesFile{Rules: set.Rules()})
	if err != nil {
		return fmt.Errorf("marshal rules: %w", err)
	}

	if err := os.WriteFile(resolved, bytes, 0o644); err != nil {
		return fmt.Errorf("write rules: %w", err)
	}
	return nil
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		path = defaultRulesPath
	}
	trimmed := strings.TrimSpace(path)
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
