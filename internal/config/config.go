package config

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Default remote locations for the firmware project.
const (
	DefaultMetadataURL = "https://zmk.dev/hardware-metadata.json"
	DefaultTemplateURL = "https://github.com/zmkfirmware/unified-zmk-config-template.git"
	DefaultFilesURL    = "https://raw.githubusercontent.com/zmkfirmware/zmk/main"
)

// Config represents ~/.kbsetup/config.toml.
type Config struct {
	// MetadataURL is where the hardware metadata JSON list is fetched from.
	MetadataURL string `toml:"metadata_url"`
	// TemplateURL is the user config template repository.
	TemplateURL string `toml:"template_url"`
	// FilesURL is the base URL for per-keyboard config and keymap files.
	FilesURL string `toml:"files_url"`
	// RepoPath, when set, skips repo selection and uses this path.
	RepoPath string `toml:"repo_path"`
}

// Default returns a config with the standard remote locations.
func Default() *Config {
	return &Config{
		MetadataURL: DefaultMetadataURL,
		TemplateURL: DefaultTemplateURL,
		FilesURL:    DefaultFilesURL,
	}
}

// Load reads config from the given path. Returns an error if the file is
// missing or malformed.
func Load(path string) (*Config, error) {
	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadOrDefault reads the config file and fills unset values with defaults.
// A missing or unreadable file yields the defaults.
func LoadOrDefault(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		return Default()
	}
	if cfg.MetadataURL == "" {
		cfg.MetadataURL = DefaultMetadataURL
	}
	if cfg.TemplateURL == "" {
		cfg.TemplateURL = DefaultTemplateURL
	}
	if cfg.FilesURL == "" {
		cfg.FilesURL = DefaultFilesURL
	}
	return cfg
}

// Save writes config to the given path, creating parent dirs as needed.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	encErr := toml.NewEncoder(f).Encode(cfg)
	if closeErr := f.Close(); closeErr != nil && encErr == nil {
		return closeErr
	}
	return encErr
}
