package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/MCarmody17/ReadyTraderGo/internal/event"
)

// EventRecord is one dispatched event, journalled before it is applied so a
// session can be reconstructed post-mortem.
type EventRecord struct {
	Seq     uint64 `gorm:"primaryKey" json:"seq"`
	Type    uint16 `gorm:"index" json:"type"`
	Ts      int64  `json:"ts"`
	Payload []byte `json:"payload"`
}

// FillRecord is one quote or hedge fill.
type FillRecord struct {
	ID            uint  `gorm:"primaryKey;autoIncrement" json:"id"`
	ClientOrderID int64 `gorm:"index" json:"client_order_id"`
	Price         int64 `json:"price"`
	Volume        int64 `json:"volume"`
	Hedge         bool  `json:"hedge"`
	Ts            int64 `json:"ts"`
}

// Journal is the SQLite session journal.
type Journal struct {
	db *gorm.DB
}

// NewJournal opens (or creates) the journal file and migrates its schema.
func NewJournal(path string) (*Journal, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create journal directory: %w", err)
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}

	// WAL keeps journal writes off the dispatch hotpath's critical latency.
	if err := db.Exec("PRAGMA journal_mode=WAL;").Error; err != nil {
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}

	if err := db.AutoMigrate(&EventRecord{}, &FillRecord{}); err != nil {
		return nil, fmt.Errorf("failed to migrate journal: %w", err)
	}

	return &Journal{db: db}, nil
}

// SaveEvent journals a dispatched event as JSON.
func (j *Journal) SaveEvent(ev event.Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	rec := EventRecord{
		Seq:     ev.GetSeq(),
		Type:    uint16(ev.GetType()),
		Ts:      int64(ev.GetTs()),
		Payload: payload,
	}
	if err := j.db.Create(&rec).Error; err != nil {
		return fmt.Errorf("failed to journal event: %w", err)
	}
	return nil
}

// SaveFill journals a quote or hedge fill.
func (j *Journal) SaveFill(clientOrderID int64, price, volume int64, hedge bool, ts int64) error {
	rec := FillRecord{
		ClientOrderID: clientOrderID,
		Price:         price,
		Volume:        volume,
		Hedge:         hedge,
		Ts:            ts,
	}
	return j.db.Create(&rec).Error
}

// Events returns all journalled events in dispatch order.
func (j *Journal) Events() ([]EventRecord, error) {
	var recs []EventRecord
	err := j.db.Order("seq").Find(&recs).Error
	return recs, err
}

// Fills returns all journalled fills in insertion order.
func (j *Journal) Fills() ([]FillRecord, error) {
	var recs []FillRecord
	err := j.db.Order("id").Find(&recs).Error
	return recs, err
}
