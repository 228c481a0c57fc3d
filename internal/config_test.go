package internal

import "testing"

func TestDefaultConfigValid(t *testing.T) {
	cfg := NewDefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if cfg.Preview.Address() != ":8080" {
		t.Errorf("Address = %q", cfg.Preview.Address())
	}
}

func TestConfigRejectsBadPort(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Preview.Port = 0
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for port 0")
	}
	cfg.Preview.Port = 70000
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for port 70000")
	}
}

func TestConfigRequiresTreeRoot(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Tree.Root = ""
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for empty tree root")
	}
}
