package backend

import (
	"testing"

	"budgetly/internal/config"
)

func TestBackendType_IsValid(t *testing.T) {
	tests := []struct {
		backendType BackendType
		want        bool
	}{
		{MemoryBackend, true},
		{SQLiteBackend, true},
		{PostgresBackend, true},
		{BackendType("sheets"), false},
		{BackendType(""), false},
	}

	for _, tt := range tests {
		t.Run(tt.backendType.String(), func(t *testing.T) {
			if got := tt.backendType.IsValid(); got != tt.want {
				t.Errorf("IsValid(%q) = %v, want %v", tt.backendType, got, tt.want)
			}
		})
	}
}

func TestFromAppConfig(t *testing.T) {
	t.Run("nil config", func(t *testing.T) {
		if _, err := FromAppConfig(nil); err == nil {
			t.Error("FromAppConfig(nil) should fail")
		}
	})

	t.Run("invalid backend type", func(t *testing.T) {
		appCfg := &config.Config{DataBackend: "mongodb"}
		if _, err := FromAppConfig(appCfg); err == nil {
			t.Error("FromAppConfig should reject an unknown backend type")
		}
	})

	t.Run("fields are carried over", func(t *testing.T) {
		appCfg := &config.Config{
			DataBackend:  "sqlite",
			SQLiteDBPath: "/tmp/test.db",
			PostgresURL:  "postgres://localhost/budgetly",
		}

		cfg, err := FromAppConfig(appCfg)
		if err != nil {
			t.Fatalf("FromAppConfig() error = %v", err)
		}
		if cfg.Type != SQLiteBackend {
			t.Errorf("Type = %v, want sqlite", cfg.Type)
		}
		if cfg.SQLiteDBPath != "/tmp/test.db" {
			t.Errorf("SQLiteDBPath = %q", cfg.SQLiteDBPath)
		}
		if cfg.PostgresURL != "postgres://localhost/budgetly" {
			t.Errorf("PostgresURL = %q", cfg.PostgresURL)
		}
	})
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"memory needs nothing", Config{Type: MemoryBackend}, false},
		{"sqlite needs path", Config{Type: SQLiteBackend}, true},
		{"sqlite with path", Config{Type: SQLiteBackend, SQLiteDBPath: "x.db"}, false},
		{"postgres needs url", Config{Type: PostgresBackend}, true},
		{"postgres with url", Config{Type: PostgresBackend, PostgresURL: "postgres://x"}, false},
		{"invalid type", Config{Type: "sheets"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
