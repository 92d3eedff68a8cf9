package review

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
)

var queueHeader = []string{
	"sample_id", "predicted_card", "ground_truth_card",
	"confidence", "human_verdict", "human_notes",
}

// LoadQueue reads a review queue CSV. A missing file is an empty
// queue, not an error, so first runs need no setup.
func LoadQueue(path string) ([]QueueEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("open review queue %s: %w", path, err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse review queue %s: %w", path, err)
	}
	if len(rows) <= 1 {
		return nil, nil
	}

	entries := make([]QueueEntry, 0, len(rows)-1)
	for i, row := range rows[1:] {
		if len(row) != len(queueHeader) {
			return nil, fmt.Errorf("review queue %s: row %d has %d columns, want %d",
				path, i+2, len(row), len(queueHeader))
		}
		confidence, err := strconv.ParseFloat(row[3], 32)
		if err != nil {
			return nil, fmt.Errorf("review queue %s: row %d confidence: %w", path, i+2, err)
		}
		entries = append(entries, QueueEntry{
			Record: Record{
				SampleID:      row[0],
				PredictedCard: row[1],
				GroundTruth:   row[2],
				Confidence:    float32(confidence),
			},
			HumanVerdict: row[4],
			HumanNotes:   row[5],
		})
	}
	return entries, nil
}

// MergeQueue folds a fresh run's records into an existing queue.
// Current mismatches get their latest prediction and confidence, but
// any human verdict and notes already attached to the same sample id
// survive untouched. Entries that stopped mismatching are dropped
// unless a human verdict is still attached; those are retained until
// explicitly cleared.
func MergeQueue(existing []QueueEntry, records []Record) []QueueEntry {
	prior := make(map[string]QueueEntry, len(existing))
	for _, entry := range existing {
		prior[entry.SampleID] = entry
	}

	merged := make(map[string]QueueEntry)
	for _, rec := range records {
		if rec.Correct {
			continue
		}
		entry := QueueEntry{Record: rec}
		if old, ok := prior[rec.SampleID]; ok {
			entry.HumanVerdict = old.HumanVerdict
			entry.HumanNotes = old.HumanNotes
		}
		merged[rec.SampleID] = entry
	}

	evaluated := make(map[string]bool, len(records))
	for _, rec := range records {
		evaluated[rec.SampleID] = true
	}
	for id, entry := range prior {
		if _, present := merged[id]; present {
			continue
		}
		if entry.HumanVerdict != "" {
			// Adjudicated history outlives the mismatch that caused it.
			merged[id] = entry
		} else if !evaluated[id] {
			// Sample left the corpus without a verdict; keep it queued
			// rather than losing track of it silently.
			merged[id] = entry
		}
	}

	out := make([]QueueEntry, 0, len(merged))
	for _, entry := range merged {
		out = append(out, entry)
	}
	sort.Slice(out, func(a, b int) bool {
		return out[a].SampleID < out[b].SampleID
	})
	return out
}

// SaveQueue writes the queue CSV, creating parent directories.
func SaveQueue(path string, entries []QueueEntry) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create review queue directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create review queue %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(queueHeader); err != nil {
		return fmt.Errorf("write review queue header: %w", err)
	}
	for _, entry := range entries {
		row := []string{
			entry.SampleID,
			entry.PredictedCard,
			entry.GroundTruth,
			strconv.FormatFloat(float64(entry.Confidence), 'f', 6, 32),
			entry.HumanVerdict,
			entry.HumanNotes,
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("write review queue row %s: %w", entry.SampleID, err)
		}
	}
	w.Flush()
	return w.Error()
}
