package cli

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Server.URL != "http://localhost:8080" {
		t.Errorf("default url = %q", cfg.Server.URL)
	}
}

func TestSaveAndLoadConfig(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	want := Config{Server: ServerConfig{URL: "https://budget.example.com", Token: "secret"}}
	if err := SaveConfig(want); err != nil {
		t.Fatalf("SaveConfig: %v", err)
	}

	got, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if got.Server.URL != want.Server.URL || got.Server.Token != want.Server.Token {
		t.Errorf("round trip = %+v, want %+v", got.Server, want.Server)
	}
}

func TestLoadConfig_Malformed(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	path := filepath.Join(dir, "budgetly", "config.toml")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("server = not toml"), 0o600); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadConfig(); err == nil {
		t.Error("expected parse error for malformed config")
	}
}

func TestTokenEnvOverride(t *testing.T) {
	t.Setenv("BUDGETLY_TOKEN", "env-token")
	cfg := Config{Server: ServerConfig{Token: "file-token"}}
	if got := Token(cfg); got != "env-token" {
		t.Errorf("Token = %q, want env-token", got)
	}

	t.Setenv("BUDGETLY_TOKEN", "")
	if got := Token(cfg); got != "file-token" {
		t.Errorf("Token = %q, want file-token", got)
	}
}
