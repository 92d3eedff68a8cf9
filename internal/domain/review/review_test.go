package review

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"tarotvision-server-go/internal/domain/embedding/embeddingtest"
	"tarotvision-server-go/internal/domain/match"
	"tarotvision-server-go/internal/domain/prototype"
	"tarotvision-server-go/internal/platform/config"
	"tarotvision-server-go/internal/platform/logging"
)

const testDims = 4

func writeSample(t *testing.T, root, card, name string, content []byte) {
	t.Helper()
	dir := filepath.Join(root, card)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", dir, err)
	}
	if err := os.WriteFile(filepath.Join(dir, name), content, 0o644); err != nil {
		t.Fatalf("write sample: %v", err)
	}
}

func testEvaluator(t *testing.T) *Evaluator {
	t.Helper()
	lib := prototype.NewLibrary("stub", testDims)
	for i, card := range []string{"The Fool", "The Magician", "The High Priestess"} {
		if err := lib.Add(prototype.DeckRWS, prototype.CardPrototype{
			CardName:  card,
			Embedding: embeddingtest.Unit(testDims, i),
		}); err != nil {
			t.Fatalf("add %s: %v", card, err)
		}
	}
	engine := embeddingtest.NewStubEngine(testDims)
	engine.SetImage([]byte("clear fool photo"), embeddingtest.Unit(testDims, 0))
	engine.SetImage([]byte("confusing fool photo"), embeddingtest.Unit(testDims, 1))
	engine.SetImage([]byte("clear magician photo"), embeddingtest.Unit(testDims, 1))

	matcher := match.NewMatcher(engine, lib, config.MatchConfig{
		TopK:          3,
		MinConfidence: 0.22,
		EmbedWorkers:  2,
	}, logging.NewConsole("error"))
	return NewEvaluator(matcher, logging.NewConsole("error"))
}

func buildCorpus(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	writeSample(t, root, "The_Fool", "clear.png", []byte("clear fool photo"))
	writeSample(t, root, "The_Fool", "confusing.png", []byte("confusing fool photo"))
	writeSample(t, root, "The_Magician", "clear.png", []byte("clear magician photo"))
	return root
}

func TestLoadCorpus(t *testing.T) {
	samples, err := LoadCorpus(buildCorpus(t))
	if err != nil {
		t.Fatalf("load corpus: %v", err)
	}
	if len(samples) != 3 {
		t.Fatalf("expected 3 samples, got %d", len(samples))
	}
	if samples[0].SampleID != "The_Fool/clear.png" {
		t.Fatalf("samples not sorted: first is %s", samples[0].SampleID)
	}
	if samples[0].GroundTruth != "The Fool" {
		t.Fatalf("label not decoded: %s", samples[0].GroundTruth)
	}
}

func TestLoadCorpusRejectsEmpty(t *testing.T) {
	if _, err := LoadCorpus(t.TempDir()); err == nil {
		t.Fatal("empty corpus must error")
	}
}

func TestEvaluateMetrics(t *testing.T) {
	samples, err := LoadCorpus(buildCorpus(t))
	if err != nil {
		t.Fatalf("load corpus: %v", err)
	}

	report, err := testEvaluator(t).Evaluate(context.Background(), samples,
		match.Scope{DeckStyle: prototype.DeckRWS}, 0.25)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}

	m := report.Metrics
	if m.Samples != 3 || m.Correct != 2 {
		t.Fatalf("counts: %+v", m)
	}
	if m.Accuracy < 0.66 || m.Accuracy > 0.67 {
		t.Fatalf("accuracy: %f", m.Accuracy)
	}
	if m.Precision != m.Accuracy || m.Recall != m.Accuracy {
		t.Fatalf("micro averages should equal accuracy: %+v", m)
	}
	// All three stub embeddings score 1.0 against their axis, so every
	// sample clears the 0.25 line.
	if m.Coverage != 1.0 {
		t.Fatalf("coverage: %f", m.Coverage)
	}
	if len(report.Snapshot) != 3 || len(report.Snapshot[0].Candidates) == 0 {
		t.Fatalf("snapshot incomplete: %d entries", len(report.Snapshot))
	}

	var wrong *Record
	for i := range report.Records {
		if !report.Records[i].Correct {
			wrong = &report.Records[i]
		}
	}
	if wrong == nil || wrong.SampleID != "The_Fool/confusing.png" || wrong.PredictedCard != "The Magician" {
		t.Fatalf("mismatch record: %+v", wrong)
	}
}

func TestMergeQueuePreservesVerdicts(t *testing.T) {
	existing := []QueueEntry{
		{
			Record:       Record{SampleID: "a.png", PredictedCard: "Death", GroundTruth: "The Fool", Confidence: 0.2},
			HumanVerdict: "model_wrong",
			HumanNotes:   "card was upside down",
		},
		{
			Record: Record{SampleID: "b.png", PredictedCard: "The Sun", GroundTruth: "The Moon", Confidence: 0.3},
		},
	}
	fresh := []Record{
		// a.png still mismatches, with a new prediction.
		{SampleID: "a.png", PredictedCard: "The Tower", GroundTruth: "The Fool", Confidence: 0.25},
		// b.png is now correct.
		{SampleID: "b.png", PredictedCard: "The Moon", GroundTruth: "The Moon", Confidence: 0.5, Correct: true},
		// c.png is a new mismatch.
		{SampleID: "c.png", PredictedCard: "Justice", GroundTruth: "Strength", Confidence: 0.28},
	}

	merged := MergeQueue(existing, fresh)
	if len(merged) != 2 {
		t.Fatalf("expected 2 entries, got %d: %+v", len(merged), merged)
	}

	byID := map[string]QueueEntry{}
	for _, entry := range merged {
		byID[entry.SampleID] = entry
	}
	a := byID["a.png"]
	if a.HumanVerdict != "model_wrong" || a.HumanNotes != "card was upside down" {
		t.Fatalf("verdict lost on still-mismatched sample: %+v", a)
	}
	if a.PredictedCard != "The Tower" || a.Confidence != 0.25 {
		t.Fatalf("prediction not refreshed: %+v", a)
	}
	if _, present := byID["b.png"]; present {
		t.Fatal("corrected sample without verdict should drop out")
	}
	if _, present := byID["c.png"]; !present {
		t.Fatal("new mismatch missing from queue")
	}
}

func TestMergeQueueRetainsAdjudicatedCorrections(t *testing.T) {
	existing := []QueueEntry{{
		Record:       Record{SampleID: "a.png", PredictedCard: "Death", GroundTruth: "The Fool", Confidence: 0.2},
		HumanVerdict: "label_wrong",
	}}
	fresh := []Record{
		{SampleID: "a.png", PredictedCard: "The Fool", GroundTruth: "The Fool", Confidence: 0.4, Correct: true},
	}

	merged := MergeQueue(existing, fresh)
	if len(merged) != 1 || merged[0].HumanVerdict != "label_wrong" {
		t.Fatalf("adjudicated entry must survive until cleared: %+v", merged)
	}
}

func TestQueueRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "eval", "review_queue.csv")
	entries := []QueueEntry{
		{
			Record:       Record{SampleID: "a.png", PredictedCard: "Death", GroundTruth: "The Fool", Confidence: 0.21},
			HumanVerdict: "model_wrong",
			HumanNotes:   "glare on the card face",
		},
		{
			Record: Record{SampleID: "b.png", PredictedCard: "The Sun", GroundTruth: "The Moon", Confidence: 0.19},
		},
	}
	if err := SaveQueue(path, entries); err != nil {
		t.Fatalf("save queue: %v", err)
	}

	loaded, err := LoadQueue(path)
	if err != nil {
		t.Fatalf("load queue: %v", err)
	}
	if len(loaded) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(loaded))
	}
	if loaded[0].HumanNotes != "glare on the card face" {
		t.Fatalf("notes lost: %+v", loaded[0])
	}
	if loaded[1].Confidence < 0.18 || loaded[1].Confidence > 0.20 {
		t.Fatalf("confidence drifted: %f", loaded[1].Confidence)
	}
}

func TestLoadQueueMissingFile(t *testing.T) {
	entries, err := LoadQueue(filepath.Join(t.TempDir(), "absent.csv"))
	if err != nil || entries != nil {
		t.Fatalf("missing file should be an empty queue: %v/%v", entries, err)
	}
}

func TestCheckGate(t *testing.T) {
	cfg := config.EvaluationConfig{
		MinAccuracy:               0.85,
		MinHighConfidenceAccuracy: 0.95,
		ConfidenceThreshold:       0.25,
	}

	pass := CheckGate(Metrics{
		Samples:                100,
		Accuracy:               0.9,
		HighConfidenceAccuracy: 0.97,
	}, cfg)
	if !pass.Passed {
		t.Fatalf("expected pass, got %+v", pass)
	}

	fail := CheckGate(Metrics{
		Samples:                100,
		Accuracy:               0.8,
		HighConfidenceAccuracy: 0.9,
	}, cfg)
	if fail.Passed || len(fail.Reasons) != 2 {
		t.Fatalf("expected both minima flagged: %+v", fail)
	}

	empty := CheckGate(Metrics{}, cfg)
	if empty.Passed {
		t.Fatal("empty run must not pass the gate")
	}
}
