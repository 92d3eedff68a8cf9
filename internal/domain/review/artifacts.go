package review

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/bytedance/sonic"
)

// WriteSnapshot writes the per-sample candidate rankings as JSON.
func WriteSnapshot(path string, entries []SnapshotEntry) error {
	return writeJSON(path, entries)
}

// WriteMetrics writes the run's metrics summary as JSON.
func WriteMetrics(path string, metrics Metrics) error {
	return writeJSON(path, metrics)
}

func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create artifact directory: %w", err)
	}
	data, err := sonic.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal artifact %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write artifact %s: %w", path, err)
	}
	return nil
}
