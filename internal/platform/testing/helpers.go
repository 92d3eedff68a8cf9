package testing

import (
	"testing"

	"tarotvision-server-go/internal/platform/config"
	"tarotvision-server-go/internal/platform/logging"
)

// SetupTestConfig returns a config suitable for unit tests: defaults
// plus a throwaway secret and temp paths.
func SetupTestConfig(t *testing.T) *config.Config {
	t.Helper()

	cfg := config.DefaultConfig()
	cfg.Server.IP = "127.0.0.1"
	cfg.Server.Port = 0
	cfg.Log.Level = "DEBUG"
	cfg.Log.Dir = ""
	cfg.Vision.Proof.Secret = "unit-test-secret"
	cfg.Vision.PrototypesPath = t.TempDir() + "/prototypes.json"
	cfg.Vision.Audit.Enabled = false

	return cfg
}

// SetupTestLogger builds a console-only debug logger.
func SetupTestLogger(t *testing.T) *logging.Logger {
	t.Helper()
	return logging.NewConsole("debug")
}

func AssertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func AssertError(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("expected error but got nil")
	}
}

func AssertEqual(t *testing.T, expected, actual interface{}) {
	t.Helper()
	if expected != actual {
		t.Fatalf("expected %v, got %v", expected, actual)
	}
}
