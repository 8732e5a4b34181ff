package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("SERVER_BASE_PATH", "api/")
	t.Setenv("CONFIG_FILE", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Fatalf("port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.Server.BasePath != "/api" {
		t.Fatalf("base path = %q, want /api", cfg.Server.BasePath)
	}
	if cfg.Auth.TokenTTLSeconds != 86400 {
		t.Fatalf("token ttl = %d, want default 86400", cfg.Auth.TokenTTLSeconds)
	}
	if cfg.Database.Driver != "postgres" {
		t.Fatalf("driver = %q, want postgres", cfg.Database.Driver)
	}
}

func TestLoadRequiresJWTSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	t.Setenv("CONFIG_FILE", "")

	if _, err := Load(); err == nil {
		t.Fatal("expected error when JWT_SECRET is missing")
	}
}

func TestLoadFromPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := []byte(`
server:
  host: 127.0.0.1
  port: 8081
  base_path: /
auth:
  jwt_secret: file-secret
  token_ttl_seconds: 3600
`)
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load from path: %v", err)
	}
	if cfg.Server.Host != "127.0.0.1" || cfg.Server.Port != 8081 {
		t.Fatalf("unexpected server config: %+v", cfg.Server)
	}
	if cfg.Server.BasePath != "" {
		t.Fatalf("base path %q should normalize to empty", cfg.Server.BasePath)
	}
	if cfg.Auth.JWTSecret != "file-secret" {
		t.Fatalf("jwt secret = %q", cfg.Auth.JWTSecret)
	}
}

func TestAllowedOrigins(t *testing.T) {
	cfg := ServerConfig{CORSAllowedOrigins: "http://localhost:3000, http://localhost:5173 ,"}
	origins := cfg.AllowedOrigins()
	if len(origins) != 2 {
		t.Fatalf("origins = %v, want 2 entries", origins)
	}
}
