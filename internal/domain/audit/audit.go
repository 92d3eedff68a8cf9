// Package audit persists a correlation trail of proof lifecycle
// events. Records carry identifiers and timestamps only: raw images
// and the signing secret never reach storage.
package audit

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/bytedance/sonic"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"tarotvision-server-go/internal/domain/eventbus"
	"tarotvision-server-go/internal/platform/config"
	"tarotvision-server-go/internal/platform/logging"
)

// ProofRecord is one audit row.
type ProofRecord struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	ProofID   string         `gorm:"index;not null" json:"proof_id"`
	DeckStyle string         `gorm:"index" json:"deck_style"`
	Event     string         `gorm:"index;not null" json:"event"`
	Detail    datatypes.JSON `json:"detail,omitempty"`
	IssuedAt  time.Time      `json:"issued_at"`
	ExpiresAt time.Time      `json:"expires_at"`
	CreatedAt time.Time      `json:"created_at"`
}

func (ProofRecord) TableName() string {
	return "proof_audit"
}

// Recorder subscribes to the event bus and writes one row per proof
// lifecycle event.
type Recorder struct {
	db     *gorm.DB
	bus    *eventbus.Bus
	logger *logging.Logger

	onIssued   func(eventbus.ProofEvent)
	onConsumed func(eventbus.ProofEvent)
	onRejected func(eventbus.ProofEvent)
}

// Open initializes the audit database and migrates the schema.
func Open(cfg config.AuditConfig, logger *logging.Logger) (*Recorder, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("audit dsn is required")
	}
	if dir := filepath.Dir(cfg.DSN); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create audit directory: %w", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(cfg.DSN), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open audit database: %w", err)
	}
	if err := db.AutoMigrate(&ProofRecord{}); err != nil {
		return nil, fmt.Errorf("migrate audit schema: %w", err)
	}

	return &Recorder{
		db:     db,
		logger: logger,
	}, nil
}

// Attach subscribes the recorder to the proof topics. Handlers run
// async so issuance latency never includes the database write.
func (r *Recorder) Attach(bus *eventbus.Bus) error {
	r.bus = bus
	r.onIssued = func(ev eventbus.ProofEvent) { r.record("issued", ev) }
	r.onConsumed = func(ev eventbus.ProofEvent) { r.record("consumed", ev) }
	r.onRejected = func(ev eventbus.ProofEvent) { r.record("rejected", ev) }

	if err := bus.SubscribeAsync(eventbus.EventProofIssued, r.onIssued); err != nil {
		return err
	}
	if err := bus.SubscribeAsync(eventbus.EventProofConsumed, r.onConsumed); err != nil {
		return err
	}
	return bus.SubscribeAsync(eventbus.EventProofRejected, r.onRejected)
}

func (r *Recorder) record(event string, ev eventbus.ProofEvent) {
	row := ProofRecord{
		ProofID:   ev.ProofID,
		DeckStyle: ev.DeckStyle,
		Event:     event,
		IssuedAt:  ev.IssuedAt,
		ExpiresAt: ev.ExpiresAt,
	}
	if ev.Reason != "" {
		detail, err := sonic.Marshal(map[string]string{"reason": ev.Reason})
		if err == nil {
			row.Detail = datatypes.JSON(detail)
		}
	}
	if err := r.db.Create(&row).Error; err != nil {
		r.logger.ErrorTag("AUDIT", "write %s record for %s: %v", event, ev.ProofID, err)
	}
}

// Recent returns the newest audit rows, newest first.
func (r *Recorder) Recent(ctx context.Context, limit int) ([]ProofRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	var rows []ProofRecord
	err := r.db.WithContext(ctx).
		Order("created_at desc, id desc").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("query audit records: %w", err)
	}
	return rows, nil
}

// Close detaches from the bus and closes the database.
func (r *Recorder) Close() error {
	if r.bus != nil {
		r.bus.WaitAsync()
		_ = r.bus.Unsubscribe(eventbus.EventProofIssued, r.onIssued)
		_ = r.bus.Unsubscribe(eventbus.EventProofConsumed, r.onConsumed)
		_ = r.bus.Unsubscribe(eventbus.EventProofRejected, r.onRejected)
	}
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
