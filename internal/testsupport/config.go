package testsupport

import (
	"path/filepath"
	"testing"

	"medialib/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.DataDir = filepath.Join(base, "data")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Store.SQLitePath = filepath.Join(base, "data", "media.db")
	cfgVal.Disks.Local.Root = filepath.Join(base, "disk")

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithEnvironment sets the environment name on the test config.
func WithEnvironment(name string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Environment.Name = name
	}
}

// WithConversions replaces the configured conversions.
func WithConversions(conversions ...config.Conversion) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Conversions = conversions
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.DataDir)
}
