package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ilyakaznacheev/cleanenv"
)

// PathEnv names the environment variable that overrides the config file path.
const PathEnv = "KBRAG_CONFIG"

// DefaultPath returns ~/.kbrag/config.toml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".kbrag", "config.toml"), nil
}

// Load reads settings from path and environment variables.
// An empty path falls back to $KBRAG_CONFIG, then ~/.kbrag/config.toml.
// A missing file is fine unless the path was given explicitly; settings
// then come from ENV + defaults only.
func Load(path string) (*Settings, error) {
	var s Settings

	explicit := path != ""
	if !explicit {
		path = os.Getenv(PathEnv)
		explicit = path != ""
	}
	if !explicit {
		var err error
		if path, err = DefaultPath(); err != nil {
			path = ""
		}
	}

	switch _, statErr := os.Stat(path); {
	case path != "" && statErr == nil:
		if err := cleanenv.ReadConfig(path, &s); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	case explicit:
		return nil, fmt.Errorf("config: file %s: %w", path, statErr)
	default:
		if err := cleanenv.ReadEnv(&s); err != nil {
			return nil, fmt.Errorf("config: read env: %w", err)
		}
	}

	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("config: validate: %w", err)
	}

	return &s, nil
}

// Usage returns the environment variable help text.
func Usage() string {
	var s Settings
	text, err := cleanenv.GetDescription(&s, nil)
	if err != nil {
		return ""
	}
	return text
}
