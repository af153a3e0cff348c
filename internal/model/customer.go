package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Customer is deduplicated by phone. Bills reference it weakly through
// CustomerID and keep their own snapshot of the customer fields.
type Customer struct {
	ID               uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name             string          `gorm:"type:varchar(120);not null"`
	Phone            string          `gorm:"type:varchar(20);uniqueIndex;not null"`
	PhoneAlt         *string         `gorm:"type:varchar(20)"`
	Aadhaar          *string         `gorm:"type:varchar(20)"`
	PAN              *string         `gorm:"column:pan;type:varchar(20)"`
	GSTNumber        *string         `gorm:"column:gst_number;type:varchar(20)"`
	Address          *string         `gorm:"type:text"`
	TotalPurchases   decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	LastPurchaseDate *time.Time      `gorm:"type:date"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func (Customer) TableName() string { return "customers" }
