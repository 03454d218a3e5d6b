package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// SourceConfig describes a single data source feeding the calendar.
type SourceConfig struct {
	// ID is an internal identifier used for logging and holiday precedence.
	ID string `yaml:"id"`
	// Kind is one of SourceKindSnapshot, SourceKindVCard or SourceKindICS.
	Kind string `yaml:"kind"`
	// Mode is SourceModeLocal or SourceModeWeb.
	Mode string `yaml:"mode"`
	Path string `yaml:"path,omitempty"`
	URL  string `yaml:"url,omitempty"`
	// User enables HTTP Basic Auth; the password lives in the OS keyring.
	User string `yaml:"user,omitempty"`
}

// CapsConfig overrides the per-category display caps.
type CapsConfig struct {
	Entries   int `yaml:"entries"`
	Songs     int `yaml:"songs"`
	Birthdays int `yaml:"birthdays"`
}

// File is the on-disk application configuration.
type File struct {
	Listen   string         `yaml:"listen"`
	Language string         `yaml:"language"`
	Refresh  string         `yaml:"refresh"`
	CacheDir string         `yaml:"cache_dir,omitempty"`
	Caps     CapsConfig     `yaml:"caps"`
	Sources  []SourceConfig `yaml:"sources"`
}

// DefaultFile returns an in-memory default configuration.
func DefaultFile() *File {
	return &File{
		Listen:   DefaultListen,
		Language: DefaultLanguage,
		Refresh:  DefaultRefreshCron,
		Caps: CapsConfig{
			Entries:   CapEntries,
			Songs:     CapSongs,
			Birthdays: CapBirthdays,
		},
		Sources: []SourceConfig{},
	}
}

// Normalize fills in missing/zero values with defaults so that partially
// filled files still behave correctly.
func (f *File) Normalize() {
	if f.Listen == "" {
		f.Listen = DefaultListen
	}
	if f.Language == "" {
		f.Language = DefaultLanguage
	}
	if f.Refresh == "" {
		f.Refresh = DefaultRefreshCron
	}
	if f.Caps.Entries <= 0 {
		f.Caps.Entries = CapEntries
	}
	if f.Caps.Songs <= 0 {
		f.Caps.Songs = CapSongs
	}
	if f.Caps.Birthdays <= 0 {
		f.Caps.Birthdays = CapBirthdays
	}
	if f.Sources == nil {
		f.Sources = []SourceConfig{}
	}
	for i := range f.Sources {
		if f.Sources[i].Mode == "" {
			if f.Sources[i].URL != "" {
				f.Sources[i].Mode = SourceModeWeb
			} else {
				f.Sources[i].Mode = SourceModeLocal
			}
		}
		if f.Sources[i].Kind == "" {
			f.Sources[i].Kind = SourceKindSnapshot
		}
	}
}

// Load reads the YAML configuration at path.
//
// On first run (file missing) a default file is written with 0600
// permissions and returned.
func Load(path string) (*File, error) {
	if path == "" {
		return nil, errors.New(ErrConfigPathEmpty)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg := DefaultFile()
			if err := Save(path, cfg); err != nil {
				return cfg, err
			}
			return cfg, nil
		}
		return nil, err
	}

	var cfg File
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.Normalize()

	return &cfg, nil
}

// Save writes cfg to path atomically (temp file + rename) with 0600 perms.
func Save(path string, cfg *File) error {
	if path == "" {
		return errors.New(ErrConfigPathEmpty)
	}
	if cfg == nil {
		return errors.New(ErrConfigNil)
	}

	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, DirPermUserRWX); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".famcal-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	if err := os.Chmod(tmpName, FilePermUserRW); err != nil {
		return err
	}

	return os.Rename(tmpName, path)
}

// DefaultPath returns the config file location inside the user config dir.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, AppID, ConfigFileName), nil
}

// Save is a convenience method delegating to the package-level Save.
func (f *File) Save(path string) error {
	return Save(path, f)
}
