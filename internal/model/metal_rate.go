package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MetalRate is one version of the per-gram rate of a (metal, purity) pair.
// Rows are never updated except to clear IsActive; a rate change inserts a
// new row. At most one row per pair is active (partial unique index).
type MetalRate struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	MetalType     string          `gorm:"type:varchar(32);not null;index:idx_metal_rates_pair"`
	Purity        string          `gorm:"type:varchar(16);not null;index:idx_metal_rates_pair"`
	RatePerGram   decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	IsDerived     bool            `gorm:"not null"`
	BaseMetal     *string         `gorm:"type:varchar(32)"`
	BasePurity    *string         `gorm:"type:varchar(16)"`
	EffectiveFrom time.Time       `gorm:"not null;index"`
	IsActive      bool            `gorm:"not null"`
	CreatedBy     *uuid.UUID      `gorm:"type:uuid"`
	CreatedAt     time.Time
}

func (MetalRate) TableName() string { return "metal_rates" }
