package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestVersionCommand(t *testing.T) {
	out, _, err := runCLI(t, []string{"version"}, "")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	requireContains(t, out, "sitevault")
}

func TestConfigInitWritesSample(t *testing.T) {
	target := filepath.Join(t.TempDir(), "config.toml")
	out, _, err := runCLI(t, []string{"config", "init", "--path", target}, "")
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}

	// A second init without --overwrite refuses to clobber the file.
	if _, _, err := runCLI(t, []string{"config", "init", "--path", target}, ""); err == nil {
		t.Fatal("expected error for existing config file")
	}
}

func TestStatusOnEmptyCatalog(t *testing.T) {
	configPath := writeTestConfig(t)
	out, _, err := runCLI(t, []string{"status"}, configPath)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	requireContains(t, out, "Catalog:")
	requireContains(t, out, "locations")
}

func TestLocationsListEmpty(t *testing.T) {
	configPath := writeTestConfig(t)
	out, _, err := runCLI(t, []string{"locations", "list"}, configPath)
	if err != nil {
		t.Fatalf("locations list: %v", err)
	}
	requireContains(t, out, "Name")
}

func TestConfigShowPrintsResolvedConfig(t *testing.T) {
	configPath := writeTestConfig(t)
	out, _, err := runCLI(t, []string{"config", "show"}, configPath)
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	requireContains(t, out, "archive_root")
	requireContains(t, out, "[ingest]")
}

func TestVerifyUnknownLocation(t *testing.T) {
	configPath := writeTestConfig(t)
	if _, _, err := runCLI(t, []string{"verify", "no-such-location"}, configPath); err == nil {
		t.Fatal("expected error for unknown location")
	}
}

func TestImportRequiresLocationFlag(t *testing.T) {
	configPath := writeTestConfig(t)
	source := t.TempDir()
	if _, _, err := runCLI(t, []string{"import", source}, configPath); err == nil {
		t.Fatal("expected error when --location is missing")
	}
}
