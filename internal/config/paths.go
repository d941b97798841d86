package config

import (
	"os"
	"path/filepath"
)

// BaseDir returns ~/.kbsetup.
func BaseDir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".kbsetup")
}

// Path returns the config file path.
func Path() string {
	return filepath.Join(BaseDir(), "config.toml")
}

// LogDir returns the log directory.
func LogDir() string {
	return filepath.Join(BaseDir(), "logs")
}

// LogPath returns the wizard log file path.
func LogPath() string {
	return filepath.Join(LogDir(), "kbsetup.log")
}

// EnsureDirs creates the kbsetup directory tree with proper permissions.
func EnsureDirs() error {
	for _, d := range []string{BaseDir(), LogDir()} {
		if err := os.MkdirAll(d, 0700); err != nil {
			return err
		}
	}
	return nil
}
