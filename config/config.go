// Package config loads and persists savestate settings.
//
// Sources are merged with priority: Env > .env file > YAML file > Default.
// Environment variables use the SAVESTATE_ prefix; a double underscore
// separates sections, a single underscore stays part of the key:
//
//	SAVESTATE_ROOT_PATH=/var/lib/game   -> root_path
//	SAVESTATE_ENCRYPTION__KEY=secret    -> encryption.key
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/AndrewDonelson/savestate"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// DefaultEnvPrefix is the environment variable prefix.
const DefaultEnvPrefix = "SAVESTATE_"

// Settings is the persisted, human-editable form of savestate.Config.
type Settings struct {
	RootPath    string `koanf:"root_path"`
	Layout      string `koanf:"layout"`
	Format      string `koanf:"format"`
	Compression bool   `koanf:"compression"`

	Encryption struct {
		Enabled bool   `koanf:"enabled"`
		Key     string `koanf:"key"`
	} `koanf:"encryption"`

	Log struct {
		Level string `koanf:"level"`
	} `koanf:"log"`

	Cache struct {
		MaxEntries int `koanf:"max_entries"`
	} `koanf:"cache"`
}

// Default returns the settings used when no source overrides them.
func Default() Settings {
	var s Settings
	s.Layout = savestate.SingleFile.String()
	s.Format = savestate.FormatJSON.String()
	s.Log.Level = "info"
	s.Cache.MaxEntries = 4096
	return s
}

// Map returns s as a nested map keyed like the YAML file.
func (s Settings) Map() map[string]any {
	return map[string]any{
		"root_path":   s.RootPath,
		"layout":      s.Layout,
		"format":      s.Format,
		"compression": s.Compression,
		"encryption": map[string]any{
			"enabled": s.Encryption.Enabled,
			"key":     s.Encryption.Key,
		},
		"log":   map[string]any{"level": s.Log.Level},
		"cache": map[string]any{"max_entries": s.Cache.MaxEntries},
	}
}

// Option configures Load.
type Option func(*loader)

type loader struct {
	filePath   string
	dotenvPath string
	envPrefix  string
	skipEnv    bool
}

// WithConfigFile sets the YAML file to read. A missing file is an error.
func WithConfigFile(path string) Option {
	return func(l *loader) { l.filePath = path }
}

// WithDotEnv sets a .env file to read. A missing file is ignored.
func WithDotEnv(path string) Option {
	return func(l *loader) { l.dotenvPath = path }
}

// WithEnvPrefix overrides DefaultEnvPrefix.
func WithEnvPrefix(prefix string) Option {
	return func(l *loader) { l.envPrefix = prefix }
}

// WithoutEnv skips the process environment.
func WithoutEnv() Option {
	return func(l *loader) { l.skipEnv = true }
}

// Load merges defaults, the YAML file, the .env file and the environment.
func Load(opts ...Option) (Settings, error) {
	l := &loader{envPrefix: DefaultEnvPrefix}
	for _, opt := range opts {
		opt(l)
	}

	k := koanf.New(".")
	if err := k.Load(mapProvider(Default().Map()), nil); err != nil {
		return Settings{}, fmt.Errorf("load defaults: %w", err)
	}

	if l.filePath != "" {
		if err := k.Load(file.Provider(l.filePath), yaml.Parser()); err != nil {
			return Settings{}, fmt.Errorf("load file %s: %w", l.filePath, err)
		}
	}

	if l.dotenvPath != "" {
		vars, err := godotenv.Read(l.dotenvPath)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return Settings{}, fmt.Errorf("load dotenv %s: %w", l.dotenvPath, err)
		default:
			if err := k.Load(mapProvider(l.dotenvMap(vars)), nil); err != nil {
				return Settings{}, fmt.Errorf("load dotenv: %w", err)
			}
		}
	}

	if !l.skipEnv {
		if err := k.Load(env.Provider(l.envPrefix, ".", l.envKey), nil); err != nil {
			return Settings{}, fmt.Errorf("load env: %w", err)
		}
	}

	var s Settings
	if err := k.Unmarshal("", &s); err != nil {
		return Settings{}, fmt.Errorf("unmarshal config: %w", err)
	}
	return s, nil
}

// envKey maps SAVESTATE_ENCRYPTION__KEY to encryption.key.
func (l *loader) envKey(s string) string {
	s = strings.TrimPrefix(s, l.envPrefix)
	return strings.ReplaceAll(strings.ToLower(s), "__", ".")
}

// dotenvMap turns prefixed .env entries into a nested koanf map.
func (l *loader) dotenvMap(vars map[string]string) map[string]any {
	out := make(map[string]any)
	for name, value := range vars {
		if !strings.HasPrefix(name, l.envPrefix) {
			continue
		}
		parts := strings.Split(l.envKey(name), ".")
		m := out
		for _, p := range parts[:len(parts)-1] {
			next, ok := m[p].(map[string]any)
			if !ok {
				next = make(map[string]any)
				m[p] = next
			}
			m = next
		}
		m[parts[len(parts)-1]] = value
	}
	return out
}

// StoreConfig converts s into a savestate.Config.
func (s Settings) StoreConfig() (savestate.Config, error) {
	layout, err := savestate.ParseLayout(s.Layout)
	if err != nil {
		return savestate.Config{}, fmt.Errorf("%w: %w", savestate.ErrInvalidConfig, err)
	}
	format, err := savestate.ParseFormat(s.Format)
	if err != nil {
		return savestate.Config{}, fmt.Errorf("%w: %w", savestate.ErrInvalidConfig, err)
	}
	return savestate.Config{
		RootPath:    s.RootPath,
		Layout:      layout,
		Format:      format,
		Compression: s.Compression,
		Encryption: savestate.EncryptionConfig{
			Enabled: s.Encryption.Enabled,
			Key:     s.Encryption.Key,
		},
		CacheMaxEntries: s.Cache.MaxEntries,
	}, nil
}

// FromStore captures the live configuration of st.
func FromStore(st *savestate.Store) Settings {
	cfg := st.Config()
	s := Default()
	s.RootPath = cfg.RootPath
	s.Layout = cfg.Layout.String()
	s.Format = cfg.Format.String()
	s.Compression = cfg.Compression
	s.Encryption.Enabled = cfg.Encryption.Enabled
	s.Encryption.Key = cfg.Encryption.Key
	s.Cache.MaxEntries = cfg.CacheMaxEntries
	return s
}

// Redacted returns a copy of s with the passphrase masked.
func (s Settings) Redacted() Settings {
	if s.Encryption.Key != "" {
		s.Encryption.Key = "********"
	}
	return s
}

// YAML renders s in the file format read by Load.
func (s Settings) YAML() ([]byte, error) {
	b, err := yaml.Parser().Marshal(s.Map())
	if err != nil {
		return nil, fmt.Errorf("marshal config: %w", err)
	}
	return b, nil
}

// Write persists s as YAML at path, creating parent directories. The file
// is readable by the owner only because it may hold the passphrase.
func (s Settings) Write(path string) error {
	b, err := s.YAML()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o600)
}
