package internal

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// ConfigDirName is the directory under the user config dir holding the
// config file and the tag caches.
const ConfigDirName = "magic-documents"

// Config represents the application configuration. Directory names other
// than Vault and CacheDir are relative to the vault.
type Config struct {
	Vault        string            `toml:"vault" yaml:"vault"`
	Date         string            `toml:"date" yaml:"date"`
	NotesDir     string            `toml:"notes_dir" yaml:"notes_dir"`
	TagRoot      string            `toml:"tag_root" yaml:"tag_root"`
	TemplatesDir string            `toml:"templates_dir" yaml:"templates_dir"`
	BackupDir    string            `toml:"backup_dir" yaml:"backup_dir"`
	CacheDir     string            `toml:"cache_dir" yaml:"cache_dir"`
	DirMappings  map[string]string `toml:"dir_mappings" yaml:"dir_mappings"`
	App          ApplicationConfig `toml:"app" yaml:"app"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Vault, validation.Required),
		validation.Field(&c.Date, validation.Required),
		validation.Field(&c.NotesDir, validation.Required, validation.By(relativeDir)),
		validation.Field(&c.TagRoot, validation.Required, validation.By(relativeDir)),
		validation.Field(&c.TemplatesDir, validation.Required, validation.By(relativeDir)),
		validation.Field(&c.BackupDir, validation.Required),
		validation.Field(&c.DirMappings, validation.By(absoluteKeys)),
	); err != nil {
		return err
	}
	return c.App.Validate()
}

func relativeDir(value any) error {
	s, _ := value.(string)
	if filepath.IsAbs(s) {
		return fmt.Errorf("must be relative to the vault, got %q", s)
	}
	return nil
}

func absoluteKeys(value any) error {
	m, _ := value.(map[string]string)
	for work := range m {
		if !filepath.IsAbs(work) {
			return fmt.Errorf("work directory %q must be an absolute path", work)
		}
	}
	return nil
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `toml:"log_level" yaml:"log_level"`
	// WatchDebounce is how long `cache watch` waits for changes to settle.
	WatchDebounce string `toml:"watch_debounce" yaml:"watch_debounce"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.WatchDebounce, validation.By(duration)),
	)
}

func duration(value any) error {
	s, _ := value.(string)
	if s == "" {
		return nil
	}
	if _, err := time.ParseDuration(s); err != nil {
		return err
	}
	return nil
}

// Debounce returns the parsed WatchDebounce, or zero when unset.
func (c *ApplicationConfig) Debounce() time.Duration {
	d, _ := time.ParseDuration(c.WatchDebounce)
	return d
}

// TagRootPath returns the directory tags are derived from.
func (c *Config) TagRootPath() string {
	return filepath.Join(c.Vault, c.TagRoot)
}

// NotesPath returns the directory redir moves notes under.
func (c *Config) NotesPath() string {
	return filepath.Join(c.Vault, c.NotesDir)
}

// TemplatesPath returns the directory excluded from every walk.
func (c *Config) TemplatesPath() string {
	return filepath.Join(c.Vault, c.TemplatesDir)
}

// CachePath returns the directory holding the tag caches.
func (c *Config) CachePath() (string, error) {
	if c.CacheDir != "" {
		return c.CacheDir, nil
	}
	return DefaultConfigDir()
}

// DefaultConfigDir returns $XDG_CONFIG_HOME/magic-documents, falling back
// to ~/.config/magic-documents.
func DefaultConfigDir() (string, error) {
	if base := os.Getenv("XDG_CONFIG_HOME"); base != "" {
		return filepath.Join(base, ConfigDirName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("config: home dir: %w", err)
	}
	return filepath.Join(home, ".config", ConfigDirName), nil
}

// DefaultConfigPath returns the config.toml inside DefaultConfigDir.
func DefaultConfigPath() string {
	dir, err := DefaultConfigDir()
	if err != nil {
		return "config.toml"
	}
	return filepath.Join(dir, "config.toml")
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		Date:         "%Y-%m-%d",
		NotesDir:     "Notas",
		TagRoot:      "Notas",
		TemplatesDir: "Templates",
		BackupDir:    filepath.Join(".arc", "backups"),
		DirMappings:  map[string]string{},
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
		},
	}
}
