package config

import (
	"log/slog"
	"strings"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{
		"PORT", "DB_DRIVER", "SESSION_TTL", "SESSION_STORE",
		"SESSION_SWEEP_INTERVAL", "SESSION_SECRET", "ENV",
	} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != "5000" {
		t.Errorf("Server.Port = %q, want 5000", cfg.Server.Port)
	}
	if cfg.Database.Driver != DriverCouchDB {
		t.Errorf("Database.Driver = %q, want %q", cfg.Database.Driver, DriverCouchDB)
	}
	if cfg.Session.TTL != 24*time.Hour {
		t.Errorf("Session.TTL = %v, want 24h", cfg.Session.TTL)
	}
	if cfg.Session.Store != StoreMemory {
		t.Errorf("Session.Store = %q, want %q", cfg.Session.Store, StoreMemory)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("HOST", "127.0.0.1")
	t.Setenv("DB_DRIVER", "SQLite")
	t.Setenv("SESSION_TTL", "30m")
	t.Setenv("SESSION_STORE", "database")
	t.Setenv("WS_MAX_CONN_PER_USER", "2")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if got := cfg.Server.Addr(); got != "127.0.0.1:9000" {
		t.Errorf("Server.Addr() = %q", got)
	}
	if cfg.Database.Driver != DriverSQLite {
		t.Errorf("Database.Driver = %q, want %q", cfg.Database.Driver, DriverSQLite)
	}
	if cfg.Session.TTL != 30*time.Minute {
		t.Errorf("Session.TTL = %v, want 30m", cfg.Session.TTL)
	}
	if cfg.Session.Store != StoreDatabase {
		t.Errorf("Session.Store = %q", cfg.Session.Store)
	}
	if cfg.WebSocket.MaxConnPerUser != 2 {
		t.Errorf("WebSocket.MaxConnPerUser = %d, want 2", cfg.WebSocket.MaxConnPerUser)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{
			name:    "bad ttl",
			env:     map[string]string{"SESSION_TTL": "forever"},
			wantErr: "SESSION_TTL",
		},
		{
			name:    "negative ttl",
			env:     map[string]string{"SESSION_TTL": "-1h"},
			wantErr: "SESSION_TTL",
		},
		{
			name:    "bad sweep interval",
			env:     map[string]string{"SESSION_SWEEP_INTERVAL": "often"},
			wantErr: "SESSION_SWEEP_INTERVAL",
		},
		{
			name:    "unknown driver",
			env:     map[string]string{"DB_DRIVER": "mongo"},
			wantErr: "DB_DRIVER",
		},
		{
			name:    "unknown session store",
			env:     map[string]string{"SESSION_STORE": "redis"},
			wantErr: "SESSION_STORE",
		},
		{
			name:    "default secret in production",
			env:     map[string]string{"ENV": "production", "SESSION_SECRET": ""},
			wantErr: "SESSION_SECRET",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := Load()
			if err == nil {
				t.Fatal("Load() expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Load() error = %v, want mention of %s", err, tt.wantErr)
			}
		})
	}
}

func TestLoggingConfig_SlogLevel(t *testing.T) {
	tests := []struct {
		level string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			if got := (LoggingConfig{Level: tt.level}).SlogLevel(); got != tt.want {
				t.Errorf("SlogLevel() = %v, want %v", got, tt.want)
			}
		})
	}
}
