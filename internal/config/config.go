package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	DataDir string `toml:"data_dir"`
	LogDir  string `toml:"log_dir"`
}

// Environment describes where the tool is running and which environments
// require confirmation before destructive commands proceed.
type Environment struct {
	Name      string   `toml:"name"`
	Protected []string `toml:"protected"`
}

// Store selects and configures the media record backend.
type Store struct {
	Driver      string `toml:"driver"`
	SQLitePath  string `toml:"sqlite_path"`
	PostgresDSN string `toml:"postgres_dsn"`
}

// LocalDisk configures the filesystem disk.
type LocalDisk struct {
	Root string `toml:"root"`
}

// S3Disk configures the S3 disk.
type S3Disk struct {
	Bucket       string `toml:"bucket"`
	Region       string `toml:"region"`
	Endpoint     string `toml:"endpoint"`
	Prefix       string `toml:"prefix"`
	UsePathStyle bool   `toml:"use_path_style"`
}

// Disks contains storage disk configuration.
type Disks struct {
	// Default is the disk new media is written to.
	Default string `toml:"default"`
	// Conversions is the disk derived files are written to. Empty means the
	// media's own disk.
	Conversions string    `toml:"conversions"`
	Local       LocalDisk `toml:"local"`
	S3          S3Disk    `toml:"s3"`
}

// Conversion describes one derived rendition generated for matching media.
type Conversion struct {
	Name      string  `toml:"name"`
	Width     int     `toml:"width"`
	Height    int     `toml:"height"`
	Fit       string  `toml:"fit"`
	Format    string  `toml:"format"`
	Quality   int     `toml:"quality"`
	Sharpen   float64 `toml:"sharpen"`
	Blur      float64 `toml:"blur"`
	Grayscale bool    `toml:"grayscale"`
	// ModelTypes restricts the conversion to media owned by these model
	// types. Empty applies to every model type.
	ModelTypes []string `toml:"model_types"`
	// Collections restricts the conversion to these collections. Empty
	// applies to every collection.
	Collections []string `toml:"collections"`
}

// AppliesTo reports whether the conversion should run for media with the
// given owner model type and collection.
func (c Conversion) AppliesTo(modelType, collection string) bool {
	if len(c.ModelTypes) > 0 && !slices.Contains(c.ModelTypes, modelType) {
		return false
	}
	if len(c.Collections) > 0 && !slices.Contains(c.Collections, collection) {
		return false
	}
	return true
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for medialib.
//
// Configuration sections by subsystem:
//   - Paths: data and log directories
//   - Environment: environment name and protected environments
//   - Store: media record backend (sqlite or postgres)
//   - Disks: where originals and derived files live
//   - Conversions: derived renditions to generate
//   - Logging: log format and level
type Config struct {
	Paths       Paths        `toml:"paths"`
	Environment Environment  `toml:"environment"`
	Store       Store        `toml:"store"`
	Disks       Disks        `toml:"disks"`
	Conversions []Conversion `toml:"conversions"`
	Logging     Logging      `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		// Conversions declared in the file replace the defaults rather than
		// extending them.
		cfg.Conversions = nil

		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("medialib.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the data and log directories, plus the local
// disk root when the local disk is in use.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.DataDir, c.Paths.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	if c.usesDisk(DiskLocal) && strings.TrimSpace(c.Disks.Local.Root) != "" {
		if err := os.MkdirAll(c.Disks.Local.Root, 0o755); err != nil {
			return fmt.Errorf("create local disk root %q: %w", c.Disks.Local.Root, err)
		}
	}
	return nil
}

// IsProtectedEnvironment reports whether the configured environment requires
// confirmation before destructive commands run.
func (c *Config) IsProtectedEnvironment() bool {
	return slices.Contains(c.Environment.Protected, c.Environment.Name)
}

// ConversionNames lists configured conversion names in declaration order.
func (c *Config) ConversionNames() []string {
	names := make([]string, 0, len(c.Conversions))
	for _, conv := range c.Conversions {
		names = append(names, conv.Name)
	}
	return names
}

func (c *Config) usesDisk(name string) bool {
	return c.Disks.Default == name || c.Disks.Conversions == name
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
