package review

import (
	"context"
	"fmt"
	"os"

	"tarotvision-server-go/internal/domain/match"
	"tarotvision-server-go/internal/platform/logging"
)

// Evaluator drives the matcher over labeled samples. It shares the
// serving matcher implementation, so offline numbers describe exactly
// what production would do.
type Evaluator struct {
	matcher *match.Matcher
	logger  *logging.Logger
}

func NewEvaluator(matcher *match.Matcher, logger *logging.Logger) *Evaluator {
	return &Evaluator{
		matcher: matcher,
		logger:  logger,
	}
}

// Evaluate matches every sample and aggregates metrics. threshold is
// the confidence line used for the coverage and high-confidence stats.
func (e *Evaluator) Evaluate(ctx context.Context, samples []Sample, scope match.Scope, threshold float64) (*Report, error) {
	report := &Report{
		Records:  make([]Record, 0, len(samples)),
		Snapshot: make([]SnapshotEntry, 0, len(samples)),
	}

	for _, sample := range samples {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		raw, err := os.ReadFile(sample.Path)
		if err != nil {
			return nil, fmt.Errorf("read sample %s: %w", sample.SampleID, err)
		}

		results, err := e.matcher.Match(ctx,
			[]match.UploadedImage{{PositionIndex: 0, Bytes: raw}}, scope)
		if err != nil {
			return nil, fmt.Errorf("match sample %s: %w", sample.SampleID, err)
		}
		res := results[0]

		record := Record{
			SampleID:      sample.SampleID,
			PredictedCard: res.TopCandidate,
			GroundTruth:   sample.GroundTruth,
			Confidence:    res.Confidence,
			Correct:       res.TopCandidate == sample.GroundTruth,
		}
		report.Records = append(report.Records, record)
		report.Snapshot = append(report.Snapshot, SnapshotEntry{
			SampleID:    sample.SampleID,
			GroundTruth: sample.GroundTruth,
			Candidates:  res.Candidates,
			Confidence:  res.Confidence,
			Correct:     record.Correct,
		})
	}

	report.Metrics = computeMetrics(report.Records, threshold)
	e.logger.InfoTag("EVAL", "evaluated %d samples: accuracy=%.3f f1=%.3f coverage=%.3f",
		report.Metrics.Samples, report.Metrics.Accuracy,
		report.Metrics.F1, report.Metrics.Coverage)
	return report, nil
}

// computeMetrics micro-averages over all records. With exactly one
// prediction and one label per sample, micro precision and recall
// coincide with accuracy; they are reported separately anyway so the
// summary stays comparable if multi-label sampling ever lands.
func computeMetrics(records []Record, threshold float64) Metrics {
	m := Metrics{
		Samples:             len(records),
		ConfidenceThreshold: threshold,
	}
	if len(records) == 0 {
		return m
	}

	covered := 0
	coveredCorrect := 0
	for _, rec := range records {
		if rec.Correct {
			m.Correct++
		}
		if float64(rec.Confidence) >= threshold {
			covered++
			if rec.Correct {
				coveredCorrect++
			}
		}
	}

	m.Accuracy = float64(m.Correct) / float64(m.Samples)
	m.Precision = m.Accuracy
	m.Recall = m.Accuracy
	if m.Precision+m.Recall > 0 {
		m.F1 = 2 * m.Precision * m.Recall / (m.Precision + m.Recall)
	}
	m.Coverage = float64(covered) / float64(m.Samples)
	if covered > 0 {
		m.HighConfidenceAccuracy = float64(coveredCorrect) / float64(covered)
	}
	return m
}
