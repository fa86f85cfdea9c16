package repository

import (
	"time"

	"gorm.io/gorm"

	"github.com/codeladder/dashboard/internal/domain"
)

// ledgerMirrorRepository implements domain.LedgerMirror using GORM. The
// mirror is a read-only fallback for when the remote ledger is down; it is
// replaced wholesale after each successful fetch.
type ledgerMirrorRepository struct {
	db *gorm.DB
}

// NewLedgerMirrorRepository creates a new ledger mirror repository
func NewLedgerMirrorRepository(db *gorm.DB) domain.LedgerMirror {
	return &ledgerMirrorRepository{db: db}
}

// ReplaceAll swaps the mirrored problemset in a single transaction
func (r *ledgerMirrorRepository) ReplaceAll(entries []domain.LedgerEntry, fetchedAt time.Time) error {
	rows := make([]domain.LedgerCacheEntry, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, domain.LedgerCacheEntry{
			QuestionID: e.QuestionID,
			Title:      e.Title,
			Link:       e.Link,
			Tags:       e.Tags,
			SolvedBy:   e.SolvedBy,
			FetchedAt:  fetchedAt,
		})
	}

	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&domain.LedgerCacheEntry{}).Error; err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		return tx.CreateInBatches(rows, 200).Error
	})
}

// FindAll returns the mirrored problemset
func (r *ledgerMirrorRepository) FindAll() ([]domain.LedgerEntry, error) {
	var rows []domain.LedgerCacheEntry
	result := r.db.Find(&rows)
	if result.Error != nil {
		return nil, result.Error
	}

	entries := make([]domain.LedgerEntry, 0, len(rows))
	for i := range rows {
		entries = append(entries, rows[i].ToEntry())
	}
	return entries, nil
}
