package config

import (
	"errors"
	"fmt"
	"strings"
)

var supportedFormats = map[string]struct{}{
	"":     {},
	"jpg":  {},
	"png":  {},
	"gif":  {},
	"tiff": {},
	"bmp":  {},
}

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateStore(); err != nil {
		return err
	}
	if err := c.validateDisks(); err != nil {
		return err
	}
	if err := c.validateConversions(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateStore() error {
	switch c.Store.Driver {
	case StoreSQLite:
		if strings.TrimSpace(c.Store.SQLitePath) == "" {
			return errors.New("store.sqlite_path must be set when store.driver is sqlite")
		}
	case StorePostgres:
		if c.Store.PostgresDSN == "" {
			return errors.New("store.postgres_dsn must be set when store.driver is postgres (or set DATABASE_URL)")
		}
	default:
		return fmt.Errorf("store.driver: unsupported value %q (expected sqlite or postgres)", c.Store.Driver)
	}
	return nil
}

func (c *Config) validateDisks() error {
	for key, name := range map[string]string{
		"disks.default":     c.Disks.Default,
		"disks.conversions": c.Disks.Conversions,
	} {
		switch name {
		case DiskLocal, DiskS3:
		case "":
			if key == "disks.default" {
				return errors.New("disks.default must be set")
			}
		default:
			return fmt.Errorf("%s: unknown disk %q (expected local or s3)", key, name)
		}
	}
	if c.usesDisk(DiskS3) && c.Disks.S3.Bucket == "" {
		return errors.New("disks.s3.bucket must be set when the s3 disk is in use")
	}
	return nil
}

func (c *Config) validateConversions() error {
	seen := make(map[string]struct{}, len(c.Conversions))
	for i, conv := range c.Conversions {
		if conv.Name == "" {
			return fmt.Errorf("conversions[%d].name must be set", i)
		}
		if _, exists := seen[conv.Name]; exists {
			return fmt.Errorf("conversions: duplicate name %q", conv.Name)
		}
		seen[conv.Name] = struct{}{}
		if conv.Width < 0 || conv.Height < 0 {
			return fmt.Errorf("conversions.%s: width and height must be >= 0", conv.Name)
		}
		switch conv.Fit {
		case FitResize:
			if conv.Width == 0 && conv.Height == 0 {
				return fmt.Errorf("conversions.%s: resize needs width or height", conv.Name)
			}
		case FitFit, FitFill, FitCrop:
			if conv.Width == 0 || conv.Height == 0 {
				return fmt.Errorf("conversions.%s: %s needs both width and height", conv.Name, conv.Fit)
			}
		default:
			return fmt.Errorf("conversions.%s: unsupported fit %q", conv.Name, conv.Fit)
		}
		if _, ok := supportedFormats[conv.Format]; !ok {
			return fmt.Errorf("conversions.%s: unsupported format %q", conv.Name, conv.Format)
		}
		if conv.Quality > 100 {
			return fmt.Errorf("conversions.%s: quality must be between 1 and 100", conv.Name)
		}
		if conv.Sharpen < 0 || conv.Blur < 0 {
			return fmt.Errorf("conversions.%s: sharpen and blur must be >= 0", conv.Name)
		}
	}
	return nil
}
