package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestParseYAML(t *testing.T) {
	t.Parallel()
	path := writeConfig(t, "config.yaml", `
telegram:
  token: "123:abc"
  poll_timeout: "15s"
  admin_user_ids: [1, 2]
logging:
  level: debug
  console: true
storage:
  driver: file
  path: ./data
fetch:
  timeout: "20s"
`)
	cfg, err := NewManager(path).Parse()
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.Telegram.Token != "123:abc" {
		t.Fatalf("Token = %q", cfg.Telegram.Token)
	}
	if got := cfg.PollTimeout().String(); got != "15s" {
		t.Fatalf("PollTimeout = %s", got)
	}
	if got := cfg.FetchTimeout().String(); got != "20s" {
		t.Fatalf("FetchTimeout = %s", got)
	}
	if !cfg.IsAdmin(2) || cfg.IsAdmin(3) {
		t.Fatal("admin list mismatch")
	}
}

func TestParseJSON(t *testing.T) {
	t.Parallel()
	path := writeConfig(t, "config.json", `{
		"telegram": {"token": "123:abc"},
		"logging": {"console": true},
		"storage": {"path": "./data"},
		"fetch": {}
	}`)
	cfg, err := NewManager(path).Parse()
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.Storage.Path != "./data" {
		t.Fatalf("Path = %q", cfg.Storage.Path)
	}
}

func TestParseRejects(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		content string
	}{
		{
			name:    "unknown field",
			content: `{"telegram": {"token": "x", "typo_field": 1}, "storage": {"path": "./d"}}`,
		},
		{
			name:    "missing token",
			content: `{"telegram": {}, "storage": {"path": "./d"}}`,
		},
		{
			name:    "missing storage path",
			content: `{"telegram": {"token": "x"}, "storage": {}}`,
		},
		{
			name:    "bad duration",
			content: `{"telegram": {"token": "x", "poll_timeout": "soon"}, "storage": {"path": "./d"}}`,
		},
		{
			name:    "trailing data",
			content: `{"telegram": {"token": "x"}, "storage": {"path": "./d"}}{}`,
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, "config.json", tt.content)
			if _, err := NewManager(path).Parse(); err == nil {
				t.Fatal("expected parse to fail")
			}
		})
	}
}

func TestConfigStringHidesSecrets(t *testing.T) {
	t.Parallel()
	cfg := &Config{}
	cfg.Telegram.Token = "123:topsecret"
	cfg.Telegram.AdminUserIDs = []int64{1, 2}
	cfg.Fetch.TwitterBearer = "bearer-secret"
	cfg.Storage.Driver = "file"

	// This rendering is what reload logging emits; it must stay
	// secret-free.
	s := cfg.String()
	if strings.Contains(s, "topsecret") || strings.Contains(s, "bearer-secret") {
		t.Fatalf("secrets leaked into %q", s)
	}
	if !strings.Contains(s, "driver=file") || !strings.Contains(s, "admins=2") {
		t.Fatalf("expected summary fields in %q", s)
	}
}
