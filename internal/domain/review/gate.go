package review

import (
	"fmt"

	"tarotvision-server-go/internal/platform/config"
)

// GateResult says whether a run clears the release bar and, when it
// does not, which minima were missed.
type GateResult struct {
	Passed  bool     `json:"passed"`
	Reasons []string `json:"reasons,omitempty"`
}

// CheckGate compares a run's metrics against the configured release
// minima. Overall accuracy and accuracy restricted to above-threshold
// samples must both clear their lines.
func CheckGate(metrics Metrics, cfg config.EvaluationConfig) GateResult {
	var reasons []string
	if metrics.Samples == 0 {
		reasons = append(reasons, "no samples evaluated")
	}
	if metrics.Accuracy < cfg.MinAccuracy {
		reasons = append(reasons, fmt.Sprintf(
			"accuracy %.3f below minimum %.3f", metrics.Accuracy, cfg.MinAccuracy))
	}
	if metrics.HighConfidenceAccuracy < cfg.MinHighConfidenceAccuracy {
		reasons = append(reasons, fmt.Sprintf(
			"high-confidence accuracy %.3f below minimum %.3f",
			metrics.HighConfidenceAccuracy, cfg.MinHighConfidenceAccuracy))
	}
	return GateResult{
		Passed:  len(reasons) == 0,
		Reasons: reasons,
	}
}
