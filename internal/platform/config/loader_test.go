package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoader_Load(t *testing.T) {
	tempDir := t.TempDir()
	configFile := filepath.Join(tempDir, "config.yaml")

	configContent := `
server:
  ip: "127.0.0.1"
  port: 8099
log:
  log_level: "DEBUG"
  log_dir: "/tmp/logs"
  log_file: "test.log"
vision:
  default_deck_style: "thoth"
  match:
    top_k: 3
    min_confidence: 0.3
  proof:
    ttl: 2m
`

	if err := os.WriteFile(configFile, []byte(configContent), 0o644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	t.Setenv("VISION_PROOF_SECRET", "test-secret")

	result, err := NewLoader().WithPath(configFile).WithDotEnv(false).Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	cfg := result.Config

	if cfg.Server.IP != "127.0.0.1" {
		t.Errorf("expected server IP 127.0.0.1, got %s", cfg.Server.IP)
	}
	if cfg.Server.Port != 8099 {
		t.Errorf("expected server port 8099, got %d", cfg.Server.Port)
	}
	if cfg.Log.Level != "DEBUG" {
		t.Errorf("expected log level DEBUG, got %s", cfg.Log.Level)
	}
	if cfg.Vision.DefaultDeckStyle != "thoth" {
		t.Errorf("expected deck style thoth, got %s", cfg.Vision.DefaultDeckStyle)
	}
	if cfg.Vision.Match.TopK != 3 {
		t.Errorf("expected top_k 3, got %d", cfg.Vision.Match.TopK)
	}
	if cfg.Vision.Proof.TTL.Std() != 2*time.Minute {
		t.Errorf("expected proof ttl 2m, got %s", cfg.Vision.Proof.TTL)
	}
	// Untouched sections keep their defaults.
	if cfg.Vision.Model.Dimensions != 512 {
		t.Errorf("expected default dimensions 512, got %d", cfg.Vision.Model.Dimensions)
	}
	if cfg.Vision.Proof.Secret != "test-secret" {
		t.Errorf("secret not taken from environment: %q", cfg.Vision.Proof.Secret)
	}
}

func TestLoader_LoadMissingFile(t *testing.T) {
	t.Setenv("VISION_PROOF_SECRET", "test-secret")

	result, err := NewLoader().
		WithPath(filepath.Join(t.TempDir(), "nope.yaml")).
		WithDotEnv(false).
		Load()
	if err != nil {
		t.Fatalf("missing file should fall back to defaults: %v", err)
	}
	if result.Path != "" {
		t.Errorf("expected empty origin path, got %q", result.Path)
	}
	if result.Config.Vision.Match.MaxImages != 5 {
		t.Errorf("expected default max_images 5, got %d", result.Config.Vision.Match.MaxImages)
	}
}

func TestLoader_PortOverride(t *testing.T) {
	t.Setenv("VISION_PROOF_SECRET", "test-secret")
	t.Setenv("TAROTVISION_PORT", "9191")

	result, err := NewLoader().
		WithPath(filepath.Join(t.TempDir(), "nope.yaml")).
		WithDotEnv(false).
		Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if result.Config.Server.Port != 9191 {
		t.Errorf("expected port override 9191, got %d", result.Config.Server.Port)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name:    "valid config",
			mutate:  func(cfg *Config) { cfg.Vision.Proof.Secret = "s3cret" },
			wantErr: false,
		},
		{
			name:    "missing secret",
			mutate:  func(cfg *Config) {},
			wantErr: true,
		},
		{
			name: "non-positive ttl",
			mutate: func(cfg *Config) {
				cfg.Vision.Proof.Secret = "s3cret"
				cfg.Vision.Proof.TTL = 0
			},
			wantErr: true,
		},
		{
			name: "non-positive dimensions",
			mutate: func(cfg *Config) {
				cfg.Vision.Proof.Secret = "s3cret"
				cfg.Vision.Model.Dimensions = 0
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
