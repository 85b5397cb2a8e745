package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"medialib/internal/config"
)

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("MEDIALIB_ENV", "")
	chdirForTest(t, t.TempDir())

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantData := filepath.Join(tempHome, ".local", "share", "medialib")
	if cfg.Paths.DataDir != wantData {
		t.Fatalf("unexpected data dir: got %q want %q", cfg.Paths.DataDir, wantData)
	}
	if cfg.Store.Driver != config.StoreSQLite {
		t.Fatalf("expected sqlite driver by default, got %q", cfg.Store.Driver)
	}
	if cfg.Store.SQLitePath != filepath.Join(wantData, "media.db") {
		t.Fatalf("unexpected sqlite path: %q", cfg.Store.SQLitePath)
	}
	if cfg.Disks.Default != config.DiskLocal {
		t.Fatalf("expected local disk by default, got %q", cfg.Disks.Default)
	}
	if cfg.Environment.Name != "local" {
		t.Fatalf("expected local environment, got %q", cfg.Environment.Name)
	}
	if cfg.IsProtectedEnvironment() {
		t.Fatal("local environment should not be protected")
	}
	if len(cfg.Conversions) != 1 || cfg.Conversions[0].Name != "thumb" {
		t.Fatalf("unexpected default conversions: %#v", cfg.Conversions)
	}

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	for _, dir := range []string{cfg.Paths.DataDir, cfg.Paths.LogDir, cfg.Disks.Local.Root} {
		info, err := os.Stat(dir)
		if err != nil {
			t.Fatalf("expected directory %q to exist: %v", dir, err)
		}
		if !info.IsDir() {
			t.Fatalf("expected %q to be directory", dir)
		}
	}
}

func TestLoadCustomPath(t *testing.T) {
	tempDir := t.TempDir()
	t.Setenv("MEDIALIB_ENV", "")
	configPath := filepath.Join(tempDir, "medialib.toml")

	type conversion struct {
		Name       string   `toml:"name"`
		Width      int      `toml:"width"`
		Height     int      `toml:"height"`
		Fit        string   `toml:"fit"`
		Format     string   `toml:"format"`
		ModelTypes []string `toml:"model_types"`
	}
	type payload struct {
		Paths struct {
			DataDir string `toml:"data_dir"`
		} `toml:"paths"`
		Environment struct {
			Name string `toml:"name"`
		} `toml:"environment"`
		Conversions []conversion `toml:"conversions"`
	}
	custom := payload{}
	custom.Paths.DataDir = filepath.Join(tempDir, "data")
	custom.Environment.Name = " Production "
	custom.Conversions = []conversion{
		{Name: "small", Width: 100, Height: 100, Format: "JPEG", ModelTypes: []string{" Post "}},
		{Name: "wide", Width: 800, Fit: "RESIZE"},
	}
	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != configPath {
		t.Fatalf("expected custom config to be used, got %q exists=%v", resolved, exists)
	}
	if cfg.Environment.Name != "production" || !cfg.IsProtectedEnvironment() {
		t.Fatalf("expected protected production environment, got %q", cfg.Environment.Name)
	}
	if cfg.Paths.LogDir != filepath.Join(tempDir, "data", "logs") {
		t.Fatalf("expected log dir under data dir, got %q", cfg.Paths.LogDir)
	}
	if got := cfg.ConversionNames(); strings.Join(got, ",") != "small,wide" {
		t.Fatalf("unexpected conversion names: %v", got)
	}
	small := cfg.Conversions[0]
	if small.Format != "jpg" || small.Fit != config.FitFit || small.Quality != 90 {
		t.Fatalf("unexpected normalized conversion: %#v", small)
	}
	if !small.AppliesTo("Post", "default") || small.AppliesTo("User", "default") {
		t.Fatalf("model type filter not applied: %#v", small.ModelTypes)
	}
	if cfg.Conversions[1].Fit != config.FitResize {
		t.Fatalf("expected resize fit, got %q", cfg.Conversions[1].Fit)
	}
}

func TestEnvironmentOverride(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("MEDIALIB_ENV", "production")
	chdirForTest(t, t.TempDir())

	cfg, _, _, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !cfg.IsProtectedEnvironment() {
		t.Fatal("expected MEDIALIB_ENV=production to be protected")
	}
}

func TestPostgresDSNFallsBackToDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/media")
	cfg := config.Default()
	cfg.Store.Driver = "postgres"
	path := writeConfig(t, cfg)

	loaded, _, _, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if loaded.Store.PostgresDSN != "postgres://localhost/media" {
		t.Fatalf("expected DSN from DATABASE_URL, got %q", loaded.Store.PostgresDSN)
	}
}

func TestValidateRejectsBadSettings(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{
			name:   "unknown driver",
			mutate: func(c *config.Config) { c.Store.Driver = "mysql" },
			want:   "store.driver",
		},
		{
			name: "postgres without dsn",
			mutate: func(c *config.Config) {
				c.Store.Driver = config.StorePostgres
				c.Store.PostgresDSN = ""
			},
			want: "store.postgres_dsn",
		},
		{
			name:   "s3 without bucket",
			mutate: func(c *config.Config) { c.Disks.Conversions = config.DiskS3 },
			want:   "disks.s3.bucket",
		},
		{
			name:   "unknown disk",
			mutate: func(c *config.Config) { c.Disks.Default = "ftp" },
			want:   "unknown disk",
		},
		{
			name: "duplicate conversion",
			mutate: func(c *config.Config) {
				c.Conversions = append(c.Conversions, c.Conversions[0])
			},
			want: "duplicate name",
		},
		{
			name: "fill without height",
			mutate: func(c *config.Config) {
				c.Conversions[0].Height = 0
			},
			want: "needs both width and height",
		},
		{
			name: "unsupported format",
			mutate: func(c *config.Config) {
				c.Conversions[0].Format = "webp"
			},
			want: "unsupported format",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.Default()
			cfg.Store.SQLitePath = "/tmp/media.db"
			tc.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatalf("expected validation error containing %q", tc.want)
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error containing %q, got %v", tc.want, err)
			}
		})
	}
}

func TestCreateSampleIsLoadable(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("MEDIALIB_ENV", "")
	target := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(target); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}
	cfg, _, exists, err := config.Load(target)
	if err != nil {
		t.Fatalf("sample config failed to load: %v", err)
	}
	if !exists {
		t.Fatal("expected sample config to exist")
	}
	if got := cfg.ConversionNames(); len(got) != 2 || got[0] != "thumb" || got[1] != "preview" {
		t.Fatalf("unexpected sample conversions: %v", got)
	}
}

func writeConfig(t *testing.T, cfg config.Config) string {
	t.Helper()
	data, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	path := filepath.Join(t.TempDir(), "medialib.toml")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

// chdirForTest mirrors testing.T.Chdir (Go 1.24+) for older toolchains.
func chdirForTest(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Chdir: %v", err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(prev); err != nil {
			t.Fatalf("restore working directory: %v", err)
		}
	})
}
