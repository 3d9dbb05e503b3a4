package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	kConfigFileMode = 0o600
	kConfigDirMode  = 0o700

	// DefaultTimeout bounds each portal call when the config does not say otherwise.
	DefaultTimeout = 30 * time.Second
)

// Config is the user-level configuration, stored as YAML.
type Config struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`

	// PanelCode is the PIN used to arm and disarm.
	PanelCode string `yaml:"panel_code"`

	// PanelID selects a panel; empty means the first panel on the account.
	PanelID string `yaml:"panel_id,omitempty"`

	BaseURL string        `yaml:"base_url,omitempty"`
	Timeout time.Duration `yaml:"timeout,omitempty"`

	Log LogConfig `yaml:"log,omitempty"`
}

type LogConfig struct {
	Level  string `yaml:"level,omitempty"`  // debug|info|warn|error
	Format string `yaml:"format,omitempty"` // text|json
}

// Store loads and saves config. Implementations must protect secrets at rest
// (file mode 0600) and must not log/print secret values.
type Store interface {
	Load(ctx context.Context) (Config, error)
	Save(ctx context.Context, cfg Config) error
}

// FileStore is a filesystem-backed config store (e.g. ~/.config/sectorctl/config.yaml).
type FileStore struct {
	Path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{Path: path}
}

// Load reads the config file. Files readable by group or others are rejected since they
// hold the portal password and panel PIN.
func (s *FileStore) Load(ctx context.Context) (Config, error) {
	if err := ctx.Err(); err != nil {
		return Config{}, err
	}

	fi, err := os.Stat(s.Path)
	if err != nil {
		return Config{}, fmt.Errorf("stat config %s: %w", s.Path, err)
	}
	if perm := fi.Mode().Perm(); perm&0o077 != 0 {
		return Config{}, fmt.Errorf("config %s has insecure permissions %#o (want %#o)", s.Path, perm, kConfigFileMode)
	}

	b, err := os.ReadFile(s.Path)
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", s.Path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", s.Path, err)
	}
	return cfg, nil
}

// Save writes the config atomically with mode 0600, creating the parent directory.
func (s *FileStore) Save(ctx context.Context, cfg Config) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	b, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}

	dir := filepath.Dir(s.Path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, kConfigDirMode); err != nil {
			return fmt.Errorf("mkdir %s: %w", dir, err)
		}
	}

	tmp, err := os.CreateTemp(dir, ".config-*.yaml")
	if err != nil {
		return fmt.Errorf("create temp config: %w", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if err := tmp.Chmod(kConfigFileMode); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("chmod temp config: %w", err)
	}
	if _, err := tmp.Write(b); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write temp config: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp config: %w", err)
	}
	if err := os.Rename(tmpName, s.Path); err != nil {
		return fmt.Errorf("rename config into place: %w", err)
	}
	return nil
}

// WithDefaults fills unset optional fields.
func (c Config) WithDefaults() Config {
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
	return c
}

// ErrMissingCredentials is returned by ValidateLogin when username or password is unset.
var ErrMissingCredentials = errors.New("portal credentials are not configured")

// ValidateLogin checks that the config carries what a login needs.
func (c Config) ValidateLogin() error {
	switch {
	case c.Username == "" && c.Password == "":
		return fmt.Errorf("%w: username and password are empty", ErrMissingCredentials)
	case c.Username == "":
		return fmt.Errorf("%w: username is empty", ErrMissingCredentials)
	case c.Password == "":
		return fmt.Errorf("%w: password is empty", ErrMissingCredentials)
	}
	return nil
}
