package main

import (
	"path/filepath"
	"testing"

	"medialib/internal/testsupport"
)

func TestMediaAddListShow(t *testing.T) {
	env := setupCLITestEnv(t, "local")
	source := filepath.Join(env.baseDir, "incoming", "summer beach.jpg")
	testsupport.WriteImage(t, source, 120, 80)

	out, stderr, err := runCLI(t, []string{"media", "add", source, "--model-type", "post", "--model-id", "42"}, env.configPath)
	if err != nil {
		t.Fatalf("media add: %v (%s)", err, stderr)
	}
	requireContains(t, out, "Added media 1 (summer-beach.jpg")
	requireContains(t, out, "Generated conversions: thumb")
	requireFile(t, filepath.Join(env.diskRoot, "1", "summer-beach.jpg"), true)
	requireFile(t, env.thumbPath("1", "summer-beach.jpg"), true)

	out, _, err = runCLI(t, []string{"media", "list"}, env.configPath)
	if err != nil {
		t.Fatalf("media list: %v", err)
	}
	requireContains(t, out, "summer-beach.jpg")
	requireContains(t, out, "post #42")
	requireContains(t, out, "thumb")

	out, _, err = runCLI(t, []string{"media", "show", "1"}, env.configPath)
	if err != nil {
		t.Fatalf("media show: %v", err)
	}
	requireContains(t, out, "Media 1\n-------\n")
	requireContains(t, out, "Summer Beach")
	requireContains(t, out, "[done] 1/conversions/summer-beach-thumb.jpg")
}

func TestMediaListFilters(t *testing.T) {
	env := setupCLITestEnv(t, "local")
	env.addImage(t, "post", "one.jpg")
	env.addImage(t, "user", "two.jpg")

	out, _, err := runCLI(t, []string{"media", "list", "--model-type", "user"}, env.configPath)
	if err != nil {
		t.Fatalf("media list: %v", err)
	}
	requireContains(t, out, "two.jpg")
	requireContains(t, out, "1 media")
	if contains(out, "one.jpg") {
		t.Fatalf("expected post media to be filtered out: %s", out)
	}

	out, _, err = runCLI(t, []string{"media", "list", "--ids", "404"}, env.configPath)
	if err != nil {
		t.Fatalf("media list ids: %v", err)
	}
	requireContains(t, out, "No media found")
}

func TestMediaShowMissing(t *testing.T) {
	env := setupCLITestEnv(t, "local")
	_, _, err := runCLI(t, []string{"media", "show", "9"}, env.configPath)
	if err == nil {
		t.Fatal("expected error for missing media")
	}
	requireContains(t, err.Error(), "media 9 not found")
}

func TestMediaShowMissingConversion(t *testing.T) {
	env := setupCLITestEnv(t, "local")
	env.addImage(t, "post", "one.jpg")

	out, _, err := runCLI(t, []string{"media", "show", "1"}, env.configPath)
	if err != nil {
		t.Fatalf("media show: %v", err)
	}
	requireContains(t, out, "[missing]")
}
