package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeEnvironment()
	if err := c.normalizeStore(); err != nil {
		return err
	}
	if err := c.normalizeDisks(); err != nil {
		return err
	}
	c.normalizeConversions()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = filepath.Join(c.Paths.DataDir, "logs")
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeEnvironment() {
	if value, ok := os.LookupEnv("MEDIALIB_ENV"); ok && strings.TrimSpace(value) != "" {
		c.Environment.Name = value
	}
	c.Environment.Name = strings.ToLower(strings.TrimSpace(c.Environment.Name))
	if c.Environment.Name == "" {
		c.Environment.Name = defaultEnvironment
	}
	protected := make([]string, 0, len(c.Environment.Protected))
	seen := make(map[string]struct{}, len(c.Environment.Protected))
	for _, name := range c.Environment.Protected {
		normalized := strings.ToLower(strings.TrimSpace(name))
		if normalized == "" {
			continue
		}
		if _, exists := seen[normalized]; exists {
			continue
		}
		seen[normalized] = struct{}{}
		protected = append(protected, normalized)
	}
	c.Environment.Protected = protected
}

func (c *Config) normalizeStore() error {
	c.Store.Driver = strings.ToLower(strings.TrimSpace(c.Store.Driver))
	if c.Store.Driver == "" {
		c.Store.Driver = defaultStoreDriver
	}
	var err error
	if strings.TrimSpace(c.Store.SQLitePath) == "" {
		c.Store.SQLitePath = filepath.Join(c.Paths.DataDir, defaultSQLiteName)
	}
	if c.Store.SQLitePath, err = expandPath(c.Store.SQLitePath); err != nil {
		return fmt.Errorf("store.sqlite_path: %w", err)
	}
	c.Store.PostgresDSN = strings.TrimSpace(c.Store.PostgresDSN)
	if c.Store.PostgresDSN == "" {
		if value, ok := os.LookupEnv("DATABASE_URL"); ok {
			c.Store.PostgresDSN = strings.TrimSpace(value)
		}
	}
	return nil
}

func (c *Config) normalizeDisks() error {
	c.Disks.Default = strings.ToLower(strings.TrimSpace(c.Disks.Default))
	if c.Disks.Default == "" {
		c.Disks.Default = defaultDisk
	}
	c.Disks.Conversions = strings.ToLower(strings.TrimSpace(c.Disks.Conversions))
	var err error
	if strings.TrimSpace(c.Disks.Local.Root) == "" {
		c.Disks.Local.Root = filepath.Join(c.Paths.DataDir, "disks", DiskLocal)
	}
	if c.Disks.Local.Root, err = expandPath(c.Disks.Local.Root); err != nil {
		return fmt.Errorf("disks.local.root: %w", err)
	}
	c.Disks.S3.Bucket = strings.TrimSpace(c.Disks.S3.Bucket)
	c.Disks.S3.Endpoint = strings.TrimSpace(c.Disks.S3.Endpoint)
	c.Disks.S3.Prefix = strings.Trim(strings.TrimSpace(c.Disks.S3.Prefix), "/")
	c.Disks.S3.Region = strings.TrimSpace(c.Disks.S3.Region)
	if c.Disks.S3.Region == "" {
		if value, ok := os.LookupEnv("AWS_REGION"); ok && strings.TrimSpace(value) != "" {
			c.Disks.S3.Region = strings.TrimSpace(value)
		} else {
			c.Disks.S3.Region = defaultS3Region
		}
	}
	return nil
}

func (c *Config) normalizeConversions() {
	if len(c.Conversions) == 0 {
		c.Conversions = Default().Conversions
	}
	for i := range c.Conversions {
		conv := &c.Conversions[i]
		conv.Name = strings.TrimSpace(conv.Name)
		conv.Fit = strings.ToLower(strings.TrimSpace(conv.Fit))
		if conv.Fit == "" {
			conv.Fit = defaultConversionFit
		}
		conv.Format = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(conv.Format), "."))
		if conv.Format == "jpeg" {
			conv.Format = "jpg"
		}
		if conv.Quality <= 0 {
			conv.Quality = defaultJPEGQuality
		}
		conv.ModelTypes = trimAll(conv.ModelTypes)
		conv.Collections = trimAll(conv.Collections)
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

func trimAll(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	out := make([]string, 0, len(values))
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
