package replay

import (
	"fmt"
	"strings"

	"tarotvision-server-go/internal/platform/config"
)

// New selects a replay store from configuration. Returns nil when
// replay tracking is disabled; the verifier treats a nil store as
// TTL-only protection.
func New(cfg config.ReplayConfig) (Store, error) {
	if !cfg.Enabled {
		return nil, nil
	}
	switch strings.ToLower(cfg.Driver) {
	case "", "memory":
		return NewMemory(cfg.GCInterval.Std()), nil
	case "redis":
		return NewRedis(cfg.Redis)
	default:
		return nil, fmt.Errorf("unsupported replay store driver: %s", cfg.Driver)
	}
}
