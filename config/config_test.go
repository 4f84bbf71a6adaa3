package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadCreatesDefaultFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "creekbot.toml")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Endpoint == "" {
		t.Fatalf("default config has no endpoint")
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("default file not persisted: %v", err)
	}
	// loading again reads the persisted file
	again, err := Load(path)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if again.Endpoint != cfg.Endpoint {
		t.Fatalf("reload endpoint = %q, want %q", again.Endpoint, cfg.Endpoint)
	}
}

func TestLoadAppliesDefaults(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "creekbot.toml")
	if err := os.WriteFile(path, []byte("Endpoint = \"https://node.example\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.AccountsFile != filepath.Join(dir, "pk.txt") {
		t.Fatalf("accounts file = %q", cfg.AccountsFile)
	}
	if cfg.ProxyFile != filepath.Join(dir, "proxy.txt") {
		t.Fatalf("proxy file = %q", cfg.ProxyFile)
	}
	if cfg.RequestsPerSecond <= 0 {
		t.Fatalf("rps default not applied")
	}
}

func TestLoadRequiresEndpoint(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "creekbot.toml")
	if err := os.WriteFile(path, []byte("Debug = true\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("expected error for missing endpoint")
	}
}
