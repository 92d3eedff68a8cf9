// Package review runs the offline evaluation loop: the matcher over a
// labeled corpus, micro-averaged metrics, a human review queue that
// survives re-runs, and the release gate built on top of both.
package review

import "tarotvision-server-go/internal/domain/match"

// Sample is one labeled corpus image. SampleID is the path relative
// to the corpus root, which keeps it stable across runs.
type Sample struct {
	SampleID    string
	GroundTruth string
	Path        string
}

// Record is the evaluation outcome for one sample.
type Record struct {
	SampleID      string  `json:"sample_id"`
	PredictedCard string  `json:"predicted_card"`
	GroundTruth   string  `json:"ground_truth_card"`
	Confidence    float32 `json:"confidence"`
	Correct       bool    `json:"correct"`
}

// SnapshotEntry is one sample's full candidate ranking, written to
// the confidence snapshot for offline threshold tuning.
type SnapshotEntry struct {
	SampleID    string            `json:"sample_id"`
	GroundTruth string            `json:"ground_truth_card"`
	Candidates  []match.Candidate `json:"candidates"`
	Confidence  float32           `json:"confidence"`
	Correct     bool              `json:"correct"`
}

// QueueEntry is a mismatch awaiting or carrying human adjudication.
type QueueEntry struct {
	Record
	HumanVerdict string `json:"human_verdict,omitempty"`
	HumanNotes   string `json:"human_notes,omitempty"`
}

// Metrics summarizes one evaluation run. Micro-averaged over all
// records; coverage counts samples at or above the confidence
// threshold.
type Metrics struct {
	Samples                int     `json:"samples"`
	Correct                int     `json:"correct"`
	Precision              float64 `json:"precision"`
	Recall                 float64 `json:"recall"`
	F1                     float64 `json:"f1"`
	Accuracy               float64 `json:"accuracy"`
	ConfidenceThreshold    float64 `json:"confidence_threshold"`
	Coverage               float64 `json:"coverage"`
	HighConfidenceAccuracy float64 `json:"high_confidence_accuracy"`
}

// Report bundles everything one evaluation run produces.
type Report struct {
	Metrics  Metrics         `json:"metrics"`
	Records  []Record        `json:"records"`
	Snapshot []SnapshotEntry `json:"snapshot"`
}
