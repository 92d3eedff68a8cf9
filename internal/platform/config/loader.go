package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	envConfigPath = "TAROTVISION_CONFIG"
	envProofSecret = "VISION_PROOF_SECRET"
	envServerPort  = "TAROTVISION_PORT"

	defaultConfigPath = "config.yaml"
)

// Loader reads configuration from defaults, an optional yaml file, and
// environment overrides, in that order.
type Loader struct {
	path      string
	useDotEnv bool
}

// NewLoader creates a loader resolving the config path from the
// environment when not set explicitly.
func NewLoader() *Loader {
	return &Loader{useDotEnv: true}
}

// WithPath pins the configuration file path.
func (l *Loader) WithPath(path string) *Loader {
	l.path = path
	return l
}

// WithDotEnv toggles loading variables from a .env file first.
func (l *Loader) WithDotEnv(enabled bool) *Loader {
	l.useDotEnv = enabled
	return l
}

// Result captures the loaded configuration and its origin path.
type Result struct {
	Config *Config
	Path   string
}

// Load builds the effective configuration. A missing file is not an
// error; the defaults plus environment overrides are used instead.
func (l *Loader) Load() (*Result, error) {
	if l.useDotEnv {
		_ = godotenv.Load()
	}

	path := l.path
	if path == "" {
		path = os.Getenv(envConfigPath)
	}
	if path == "" {
		path = defaultConfigPath
	}

	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
	case os.IsNotExist(err):
		path = ""
	default:
		return nil, fmt.Errorf("read config file %s: %w", path, err)
	}

	applyEnvOverrides(cfg)

	return &Result{
		Config: cfg,
		Path:   path,
	}, nil
}

func applyEnvOverrides(cfg *Config) {
	if secret := os.Getenv(envProofSecret); secret != "" {
		cfg.Vision.Proof.Secret = secret
	}
	if port := os.Getenv(envServerPort); port != "" {
		if p, err := strconv.Atoi(port); err == nil && p > 0 {
			cfg.Server.Port = p
		}
	}
}

// Validate checks the invariants the server cannot start without.
func (cfg *Config) Validate() error {
	if cfg.Vision.Proof.Secret == "" {
		return fmt.Errorf("proof signing secret missing: set %s", envProofSecret)
	}
	if cfg.Vision.Proof.TTL <= 0 {
		return fmt.Errorf("proof ttl must be positive, got %s", cfg.Vision.Proof.TTL)
	}
	if cfg.Vision.Model.Dimensions <= 0 {
		return fmt.Errorf("model dimensions must be positive, got %d", cfg.Vision.Model.Dimensions)
	}
	if cfg.Vision.Match.MaxImages <= 0 {
		return fmt.Errorf("match max_images must be positive, got %d", cfg.Vision.Match.MaxImages)
	}
	return nil
}
