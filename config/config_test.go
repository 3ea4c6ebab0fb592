package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"smartthingies/config"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("THINGIES_API_URL", "")

	cfg, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}

	if cfg.API.BaseURL != "http://localhost:8000" {
		t.Errorf("base url: got %s, want http://localhost:8000", cfg.API.BaseURL)
	}
	if cfg.API.MaxAttempts != 1 {
		t.Errorf("max attempts: got %d, want 1", cfg.API.MaxAttempts)
	}
	if cfg.RequestTimeout() != 15*time.Second {
		t.Errorf("timeout: got %s, want 15s", cfg.RequestTimeout())
	}
	if cfg.Log.Level != "info" || cfg.Log.Format != "text" || cfg.Log.Output != "stderr" {
		t.Errorf("log: got %s/%s/%s, want info/text/stderr", cfg.Log.Level, cfg.Log.Format, cfg.Log.Output)
	}
	if cfg.Storage.Path == "" {
		t.Error("storage path should default")
	}
}

func TestLoad_ExpandsEnv(t *testing.T) {
	t.Setenv("TEST_THINGIES_HOST", "http://146.190.130.85:8000")

	path := writeConfig(t, `
api:
  base_url: "${TEST_THINGIES_HOST}"
  timeout: "3s"
storage:
  path: "/tmp/thingies.db"
log:
  level: debug
  format: json
`)

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}

	if cfg.API.BaseURL != "http://146.190.130.85:8000" {
		t.Errorf("base url: got %s", cfg.API.BaseURL)
	}
	if cfg.RequestTimeout() != 3*time.Second {
		t.Errorf("timeout: got %s, want 3s", cfg.RequestTimeout())
	}
	if cfg.Log.Format != "json" {
		t.Errorf("log format: got %s, want json", cfg.Log.Format)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := map[string]string{
		"bad log level": `
log:
  level: loud
`,
		"bad log output": `
log:
  output: syslog
`,
		"bad url": `
api:
  base_url: "not a url"
`,
		"bad timeout": `
api:
  timeout: "soon"
`,
		"pushover without token": `
pushover:
  enabled: true
`,
	}

	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := config.Load(writeConfig(t, body)); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}
