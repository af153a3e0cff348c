package model

import "time"

// DocumentCounter holds the last serial issued for a document kind in a period.
type DocumentCounter struct {
	DocType   string `gorm:"type:varchar(16);primaryKey"`
	Period    string `gorm:"type:varchar(8);primaryKey"`
	LastValue int64  `gorm:"not null"`
	UpdatedAt time.Time
}

func (DocumentCounter) TableName() string { return "document_counters" }
