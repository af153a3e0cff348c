package repository

import (
	"context"

	"github.com/BAHUBALISID/smj/internal/numbering"

	"gorm.io/gorm"
)

// CounterRepository backs numbering.Numberer with the document_counters table.
type CounterRepository interface {
	numbering.Counter
}

type counterRepo struct{ db *gorm.DB }

func NewCounterRepository(db *gorm.DB) CounterRepository { return &counterRepo{db: db} }

// Next upserts the counter row and returns the incremented value. The row
// lock taken by the upsert is held until tx commits or rolls back.
func (r *counterRepo) Next(ctx context.Context, tx *gorm.DB, kind numbering.Kind, period string) (int64, error) {
	var v int64
	err := conn(ctx, r.db, tx).Raw(`
INSERT INTO document_counters (doc_type, period, last_value, updated_at)
VALUES (?, ?, 1, NOW())
ON CONFLICT (doc_type, period)
DO UPDATE SET last_value = document_counters.last_value + 1, updated_at = NOW()
RETURNING last_value`, string(kind), period).Scan(&v).Error
	return v, err
}
