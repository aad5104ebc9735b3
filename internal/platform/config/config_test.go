package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	return path
}

func TestLoad_Success(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `server:
  listen_addr: ":8080"
  allowed_origins:
    - "http://localhost:3000"

database:
  host: localhost
  port: 15432
  user: user
  password: pass
  name: hr
  ssl_mode: disable
  max_open_conns: 10
  max_idle_conns: 5
  conn_max_lifetime: "15m"
  conn_max_idle_time: "5m"

token:
  rotation_interval: "90s"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Server.ListenAddr != ":8080" {
		t.Errorf("unexpected listen addr: %s", cfg.Server.ListenAddr)
	}
	if len(cfg.Server.AllowedOrigins) != 1 {
		t.Errorf("unexpected allowed origins: %v", cfg.Server.AllowedOrigins)
	}
	if cfg.Database.ConnMaxLifetime != 15*time.Minute {
		t.Errorf("expected ConnMaxLifetime 15m, got %v", cfg.Database.ConnMaxLifetime)
	}
	if cfg.Token.RotationInterval != 90*time.Second {
		t.Errorf("expected rotation interval 90s, got %v", cfg.Token.RotationInterval)
	}
}

func TestLoad_RotationIntervalDefault(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `server:
  listen_addr: ":8080"

database:
  host: localhost
  port: 5432
  user: user
  password: pass
  name: hr
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Token.RotationInterval != 3*time.Minute {
		t.Errorf("expected default rotation interval 3m, got %v", cfg.Token.RotationInterval)
	}
	if cfg.Database.SSLMode != "disable" {
		t.Errorf("expected ssl_mode to default to disable, got %s", cfg.Database.SSLMode)
	}
}

func TestLoad_MissingField(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, "{}")

	if _, err := Load(path); err == nil {
		t.Fatal("expected error when required fields are missing")
	}
}

func TestLoad_InvalidRotationInterval(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `server:
  listen_addr: ":8080"

database:
  host: localhost
  port: 5432
  user: user
  password: pass
  name: hr

token:
  rotation_interval: "soon"
`)

	if _, err := Load(path); err == nil {
		t.Fatal("expected error for unparsable rotation interval")
	}
}

func TestDatabaseConfigDSN(t *testing.T) {
	t.Parallel()

	d := DatabaseConfig{Host: "db", Port: 5432, User: "app", Password: "secret", Name: "hr", SSLMode: "require"}
	want := "postgres://app:secret@db:5432/hr?sslmode=require"
	if got := d.DSN(); got != want {
		t.Errorf("unexpected DSN: %s", got)
	}
}
