package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const baseYAML = `environment: test
backend:
  type: clickhouse
stream:
  token: %q
  channels: ["signals"]
`

func writeConfig(t *testing.T, token string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := fmt.Sprintf(baseYAML, token)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadWithEnvSuppliesToken(t *testing.T) {
	path := writeConfig(t, "")
	t.Setenv("STREAM_TOKEN", "tok-123")

	c, err := LoadWithEnv(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.Stream.Token != "tok-123" {
		t.Fatalf("expected env token, got %q", c.Stream.Token)
	}
}

func TestLoadWithEnvRequiresToken(t *testing.T) {
	path := writeConfig(t, "")
	t.Setenv("STREAM_TOKEN", "")

	if _, err := LoadWithEnv(path); err == nil {
		t.Fatalf("expected validation error for missing token")
	}
}

func TestValidateRejectsPlaceholderToken(t *testing.T) {
	path := writeConfig(t, "${STREAM_TOKEN}")
	t.Setenv("STREAM_TOKEN", "")

	_, err := LoadWithEnv(path)
	if err == nil {
		t.Fatalf("expected validation error for unexpanded placeholder")
	}
	if !strings.Contains(err.Error(), "placeholder") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateRejectsUnknownBackend(t *testing.T) {
	c := &Config{Environment: "test"}
	c.Backend.Type = "postgres"
	c.Stream.Token = "tok"
	c.Stream.Channels = []string{"signals"}
	if err := c.Validate(); err == nil {
		t.Fatalf("expected validation error for unknown backend")
	}
}
