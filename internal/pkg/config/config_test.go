package config

import (
	"context"
	"strings"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Directory.BaseURL != "http://localhost:8080" {
		t.Errorf("unexpected base url: %s", cfg.Directory.BaseURL)
	}
	if cfg.Directory.Timeout != 10*time.Second {
		t.Errorf("unexpected timeout: %s", cfg.Directory.Timeout)
	}
	if cfg.Web.SessionBackend != SessionBackendCookie {
		t.Errorf("unexpected backend: %s", cfg.Web.SessionBackend)
	}
	if cfg.Web.LoginRoute != "/login" || cfg.Web.DefaultRoute != "/" {
		t.Errorf("unexpected routes: %s %s", cfg.Web.LoginRoute, cfg.Web.DefaultRoute)
	}
	if !strings.HasSuffix(cfg.CLI.CredentialsPath, "credentials.yaml") {
		t.Errorf("unexpected credentials path: %s", cfg.CLI.CredentialsPath)
	}
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("ADMIN_API_URL", "https://directory.internal")
	t.Setenv("ADMIN_API_TIMEOUT", "3s")
	t.Setenv("SESSION_BACKEND", "redis")
	t.Setenv("ADMINCTL_CREDENTIALS", "/tmp/creds.yaml")
	t.Setenv("REPORT_WORKERS", "4")

	cfg, err := Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Directory.BaseURL != "https://directory.internal" || cfg.Directory.Timeout != 3*time.Second {
		t.Errorf("unexpected directory config: %+v", cfg.Directory)
	}
	if cfg.Web.SessionBackend != SessionBackendRedis {
		t.Errorf("unexpected backend: %s", cfg.Web.SessionBackend)
	}
	if cfg.CLI.CredentialsPath != "/tmp/creds.yaml" {
		t.Errorf("unexpected credentials path: %s", cfg.CLI.CredentialsPath)
	}
	if cfg.ReportWorkers != 4 {
		t.Errorf("unexpected workers: %d", cfg.ReportWorkers)
	}
}

func TestValidateWeb(t *testing.T) {
	cfg := &Config{Web: WebConfig{SessionKey: "short", SessionBackend: SessionBackendCookie}}
	if err := cfg.ValidateWeb(); err == nil {
		t.Fatalf("expected error for short session key")
	}

	cfg.Web.SessionKey = strings.Repeat("k", 32)
	if err := cfg.ValidateWeb(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cfg.Web.SessionBackend = "memcached"
	if err := cfg.ValidateWeb(); err == nil {
		t.Fatalf("expected error for unknown backend")
	}
}
