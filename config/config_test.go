package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	path := writeConfig(t, `
storage:
  postgres:
    host: localhost
    dbname: quotemill
`)
	cfg := LoadConfig(path)

	if cfg.General.DataDir != "data" {
		t.Errorf("data_dir = %q", cfg.General.DataDir)
	}
	if cfg.General.SourceBudget != time.Hour {
		t.Errorf("source_budget = %s", cfg.General.SourceBudget)
	}
	src, ok := cfg.Harvest.Sources["goodreads"]
	if !ok || !src.Enabled || src.Delay != 10*time.Second {
		t.Errorf("goodreads source = %+v", src)
	}
	if cfg.Storage.Redis.Enabled() {
		t.Error("redis should be disabled without a host")
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	path := writeConfig(t, `
general:
  data_dir: /tmp/slots
storage:
  postgres:
    url: postgres://u:p@db:5432/q?sslmode=disable
  redis:
    host: cache
harvest:
  sources:
    wikiquote:
      enabled: true
      authors: ["Oscar Wilde"]
      language: en
    goodreads:
      enabled: false
`)
	cfg := LoadConfig(path)

	if cfg.General.DataDir != "/tmp/slots" {
		t.Errorf("data_dir = %q", cfg.General.DataDir)
	}
	if got := cfg.Storage.Postgres.DSN(); got != "postgres://u:p@db:5432/q?sslmode=disable" {
		t.Errorf("dsn = %q", got)
	}
	if !cfg.Storage.Redis.Enabled() || cfg.Storage.Redis.Addr() != "cache:6379" {
		t.Errorf("redis = %+v", cfg.Storage.Redis)
	}
	wq := cfg.Harvest.Sources["wikiquote"]
	if len(wq.Authors) != 1 || wq.Authors[0] != "Oscar Wilde" {
		t.Errorf("wikiquote authors = %v", wq.Authors)
	}
	if cfg.Harvest.Sources["goodreads"].Enabled {
		t.Error("goodreads should be disabled")
	}
}

func TestLoadConfigRequiresPostgres(t *testing.T) {
	path := writeConfig(t, `
general:
  data_dir: data
`)
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic without postgres settings")
		}
	}()
	LoadConfig(path)
}

func TestLoadConfigRejectsBadLanguage(t *testing.T) {
	path := writeConfig(t, `
storage:
  postgres:
    host: localhost
    dbname: quotemill
harvest:
  sources:
    citaty:
      language: "not a tag"
`)
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for invalid language tag")
		}
	}()
	LoadConfig(path)
}

func TestPostgresDSNFromParts(t *testing.T) {
	p := PostgresConfig{Host: "db", User: "u", Password: "p", DBName: "q"}
	want := "postgres://u:p@db:5432/q?sslmode=disable"
	if got := p.DSN(); got != want {
		t.Errorf("dsn = %q, want %q", got, want)
	}
}
