package audit

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"tarotvision-server-go/internal/domain/eventbus"
	"tarotvision-server-go/internal/platform/config"
	"tarotvision-server-go/internal/platform/logging"
)

func openTestRecorder(t *testing.T) *Recorder {
	t.Helper()
	rec, err := Open(config.AuditConfig{
		Enabled: true,
		DSN:     filepath.Join(t.TempDir(), "audit.db"),
	}, logging.NewConsole("error"))
	if err != nil {
		t.Fatalf("open recorder: %v", err)
	}
	t.Cleanup(func() { _ = rec.Close() })
	return rec
}

func TestRecorderWritesLifecycleEvents(t *testing.T) {
	rec := openTestRecorder(t)
	bus := eventbus.New()
	if err := rec.Attach(bus); err != nil {
		t.Fatalf("attach: %v", err)
	}

	now := time.Now()
	bus.Publish(eventbus.EventProofIssued, eventbus.ProofEvent{
		ProofID:   "proof-1",
		DeckStyle: "rws-1909",
		IssuedAt:  now,
		ExpiresAt: now.Add(5 * time.Minute),
	})
	bus.Publish(eventbus.EventProofRejected, eventbus.ProofEvent{
		ProofID:   "proof-2",
		DeckStyle: "thoth",
		Reason:    "proof_expired",
	})
	bus.WaitAsync()

	rows, err := rec.Recent(context.Background(), 10)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}

	byEvent := map[string]ProofRecord{}
	for _, row := range rows {
		byEvent[row.Event] = row
	}
	if byEvent["issued"].ProofID != "proof-1" {
		t.Fatalf("issued row: %+v", byEvent["issued"])
	}
	rejected := byEvent["rejected"]
	if rejected.ProofID != "proof-2" || len(rejected.Detail) == 0 {
		t.Fatalf("rejected row missing reason detail: %+v", rejected)
	}
}

func TestRecentHonorsLimit(t *testing.T) {
	rec := openTestRecorder(t)
	for i := 0; i < 5; i++ {
		rec.record("issued", eventbus.ProofEvent{ProofID: "p", DeckStyle: "rws-1909"})
	}

	rows, err := rec.Recent(context.Background(), 3)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
}

func TestOpenRequiresDSN(t *testing.T) {
	if _, err := Open(config.AuditConfig{Enabled: true}, logging.NewConsole("error")); err == nil {
		t.Fatal("expected error for empty dsn")
	}
}
