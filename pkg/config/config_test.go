package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

type testConfig struct {
	Root string `yaml:"root"`
	Port int    `yaml:"port"`
}

func (c *testConfig) Validate() error {
	if c.Port <= 0 {
		return errors.New("port must be positive")
	}
	return nil
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadExpandsEnv(t *testing.T) {
	t.Setenv("TEST_TREE_ROOT", "/srv/tree")
	path := writeConfig(t, "root: ${TEST_TREE_ROOT}\nport: 9090\n")

	var cfg testConfig
	if err := Load(path, &cfg); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Root != "/srv/tree" {
		t.Errorf("root = %q", cfg.Root)
	}
	if cfg.Port != 9090 {
		t.Errorf("port = %d", cfg.Port)
	}
}

func TestLoadRunsValidation(t *testing.T) {
	path := writeConfig(t, "root: /srv/tree\nport: -1\n")
	var cfg testConfig
	if err := Load(path, &cfg); err == nil {
		t.Error("expected validation error")
	}
}

func TestLoadMissingFile(t *testing.T) {
	var cfg testConfig
	if err := Load(filepath.Join(t.TempDir(), "nope.yaml"), &cfg); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoadOptionalMissingFile(t *testing.T) {
	cfg := testConfig{Root: "default", Port: 8080}
	if err := LoadOptional(filepath.Join(t.TempDir(), "nope.yaml"), &cfg); err != nil {
		t.Fatalf("LoadOptional: %v", err)
	}
	if cfg.Root != "default" || cfg.Port != 8080 {
		t.Errorf("defaults clobbered: %+v", cfg)
	}
}
