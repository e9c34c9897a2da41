// Package config provides configuration management for lookout.
package config

import (
	"os"
	"path/filepath"
	"runtime"
)

// Paths holds the directories lookout reads from and writes to.
type Paths struct {
	// ConfigDir is the directory for configuration files (~/.config/lookout)
	ConfigDir string

	// DataDir is the directory for data files (~/.local/share/lookout)
	DataDir string

	// CacheDir is the directory for cache and log files (~/.cache/lookout)
	CacheDir string
}

// DefaultPaths returns the default paths following the XDG base directory layout.
// On Windows, it uses %APPDATA% instead.
func DefaultPaths() *Paths {
	home := homeDir()

	if runtime.GOOS == "windows" {
		appData := os.Getenv("APPDATA")
		if appData == "" {
			appData = filepath.Join(home, "AppData", "Roaming")
		}
		localAppData := os.Getenv("LOCALAPPDATA")
		if localAppData == "" {
			localAppData = filepath.Join(home, "AppData", "Local")
		}

		return &Paths{
			ConfigDir: filepath.Join(appData, "lookout"),
			DataDir:   filepath.Join(localAppData, "lookout"),
			CacheDir:  filepath.Join(localAppData, "lookout", "cache"),
		}
	}

	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		configHome = filepath.Join(home, ".config")
	}

	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		dataHome = filepath.Join(home, ".local", "share")
	}

	cacheHome := os.Getenv("XDG_CACHE_HOME")
	if cacheHome == "" {
		cacheHome = filepath.Join(home, ".cache")
	}

	return &Paths{
		ConfigDir: filepath.Join(configHome, "lookout"),
		DataDir:   filepath.Join(dataHome, "lookout"),
		CacheDir:  filepath.Join(cacheHome, "lookout"),
	}
}

// ConfigFile returns the path to the main configuration file.
func (p *Paths) ConfigFile() string {
	return filepath.Join(p.ConfigDir, "config.yaml")
}

// DatabaseFile returns the path to the selection history database.
func (p *Paths) DatabaseFile() string {
	return filepath.Join(p.DataDir, "history.db")
}

// LogFile returns the default log file path.
func (p *Paths) LogFile() string {
	return filepath.Join(p.CacheDir, "lookout.log")
}

// EnsureDirectories creates all necessary directories.
func (p *Paths) EnsureDirectories() error {
	for _, dir := range []string{p.ConfigDir, p.DataDir, p.CacheDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return nil
}

func homeDir() string {
	if home, err := os.UserHomeDir(); err == nil {
		return home
	}
	return os.TempDir()
}
