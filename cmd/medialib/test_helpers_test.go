package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"medialib/internal/testsupport"
)

type cliTestEnv struct {
	baseDir    string
	configPath string
	dataDir    string
	diskRoot   string
}

func setupCLITestEnv(t *testing.T, environment string) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	homeDir := filepath.Join(base, "home")
	if err := os.MkdirAll(homeDir, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", homeDir)
	t.Setenv("MEDIALIB_ENV", "")

	env := &cliTestEnv{
		baseDir:    base,
		configPath: filepath.Join(base, "medialib.toml"),
		dataDir:    filepath.Join(base, "data"),
		diskRoot:   filepath.Join(base, "disk"),
	}
	content := fmt.Sprintf(`[paths]
data_dir = %q
log_dir = %q

[environment]
name = %q

[disks.local]
root = %q

[[conversions]]
name = "thumb"
width = 40
height = 30
fit = "fill"
`, env.dataDir, filepath.Join(base, "logs"), environment, env.diskRoot)
	if err := os.WriteFile(env.configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return env
}

// addImage writes a source image and adds it without generating conversions.
func (e *cliTestEnv) addImage(t *testing.T, modelType, name string) {
	t.Helper()
	source := filepath.Join(e.baseDir, "incoming", name)
	testsupport.WriteImage(t, source, 120, 80)
	if _, _, err := runCLI(t, []string{"media", "add", source, "--model-type", modelType, "--no-conversions"}, e.configPath); err != nil {
		t.Fatalf("media add %s: %v", name, err)
	}
}

func (e *cliTestEnv) thumbPath(id, fileName string) string {
	base := strings.TrimSuffix(fileName, filepath.Ext(fileName))
	return filepath.Join(e.diskRoot, id, "conversions", base+"-thumb"+filepath.Ext(fileName))
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	return runCLIWithInput(t, args, configPath, "")
}

func runCLIWithInput(t *testing.T, args []string, configPath, input string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetIn(strings.NewReader(input))
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}

func requireFile(t *testing.T, path string, want bool) {
	t.Helper()
	_, err := os.Stat(path)
	switch {
	case want && err != nil:
		t.Fatalf("expected %s to exist: %v", path, err)
	case !want && err == nil:
		t.Fatalf("expected %s to be absent", path)
	}
}
