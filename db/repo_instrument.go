// db/repo_instrument.go
package db

import (
	"context"

	"musicschool_backend/models"

	"gorm.io/gorm/clause"
)

// SaveInstrument upserts the full instrument row. The registry calls this
// before committing a mutation in memory, so a failed write rejects the
// operation instead of leaving the two copies diverged.
func (r *Repo) SaveInstrument(ctx context.Context, inst models.Instrument) error {
	return r.DB.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).
		Create(&inst).Error
}

// LoadInstruments returns every instrument in registration order, for the
// registry's startup Restore.
func (r *Repo) LoadInstruments(ctx context.Context) ([]models.Instrument, error) {
	var insts []models.Instrument
	err := r.DB.WithContext(ctx).Order("created_at ASC, id ASC").Find(&insts).Error
	return insts, err
}

func (r *Repo) CountInstruments(ctx context.Context) (int64, error) {
	var n int64
	err := r.DB.WithContext(ctx).Model(&models.Instrument{}).Count(&n).Error
	return n, err
}

// Loan-history ledger. Append-only: rows are created here and nowhere
// updated or deleted.

func (r *Repo) AppendLoanEvent(ctx context.Context, ev *models.LoanEvent) error {
	return r.DB.WithContext(ctx).Create(ev).Error
}

type LoanEventsQuery struct {
	InstrumentID string
	StudentID    string
	Action       string // "", "borrow", "loan", "return", "renew"
	Page         int
	Size         int
}

type PagedLoanEvents struct {
	Total  int64              `json:"total"`
	Events []models.LoanEvent `json:"events"`
}

func (r *Repo) ListLoanEvents(ctx context.Context, q LoanEventsQuery) (*PagedLoanEvents, error) {
	if q.Page <= 0 {
		q.Page = 1
	}
	if q.Size <= 0 || q.Size > 200 {
		q.Size = 50
	}

	tx := r.DB.WithContext(ctx).Model(&models.LoanEvent{})
	if q.InstrumentID != "" {
		tx = tx.Where("instrument_id = ?", q.InstrumentID)
	}
	if q.StudentID != "" {
		tx = tx.Where("student_id = ?", q.StudentID)
	}
	if q.Action != "" && q.Action != "all" {
		tx = tx.Where("action = ?", q.Action)
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, err
	}

	var events []models.LoanEvent
	if err := tx.
		Order("created_at DESC").
		Offset((q.Page - 1) * q.Size).
		Limit(q.Size).
		Find(&events).Error; err != nil {
		return nil, err
	}
	return &PagedLoanEvents{Total: total, Events: events}, nil
}
