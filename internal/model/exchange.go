package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	SettlementCash    = "cash"
	SettlementNewItem = "new_item"
)

// Exchange records an old-item trade-in settled in cash or against new items.
type Exchange struct {
	ID                 uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ExchangeNumber     string     `gorm:"type:varchar(32);uniqueIndex;not null"`
	CustomerID         *uuid.UUID `gorm:"type:uuid;index"`
	CustomerName       string     `gorm:"type:varchar(120);not null"`
	CustomerPhone      string     `gorm:"type:varchar(20);not null"`
	OldBillNumber      *string    `gorm:"type:varchar(32)"`
	OldItemDescription *string    `gorm:"type:text"`

	SettlementType   string          `gorm:"type:varchar(16);not null"`
	CashAmount       decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	CashPaymentMode  *string         `gorm:"type:varchar(32)"`
	TotalOldValue    decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	TotalNewValue    decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	DifferenceAmount decimal.Decimal `gorm:"type:decimal(12,2);not null"`

	Notes         *string    `gorm:"type:text"`
	QRToken       string     `gorm:"column:qr_token;type:varchar(64);uniqueIndex;not null"`
	CreatedBy     *uuid.UUID `gorm:"type:uuid"`
	CreatedByRole string     `gorm:"type:varchar(32)"`
	CreatedAt     time.Time

	Items  []ExchangeItem  `gorm:"foreignKey:ExchangeID"`
	Photos []ExchangePhoto `gorm:"foreignKey:ExchangeID"`
}

func (Exchange) TableName() string { return "exchanges" }

// ExchangeItem is a new item handed over in an exchange. No tax applies.
type ExchangeItem struct {
	ID                 uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ExchangeID         uuid.UUID       `gorm:"type:uuid;not null;index"`
	ItemIndex          int             `gorm:"not null"`
	Description        string          `gorm:"type:varchar(255);not null"`
	MetalType          string          `gorm:"type:varchar(32);not null"`
	Purity             string          `gorm:"type:varchar(16);not null"`
	Unit               string          `gorm:"type:varchar(8);not null"`
	Quantity           int             `gorm:"not null"`
	GrossWeight        decimal.Decimal `gorm:"type:decimal(10,3);not null"`
	LessWeight         decimal.Decimal `gorm:"type:decimal(10,3);not null"`
	NetWeight          decimal.Decimal `gorm:"type:decimal(10,3);not null"`
	MakingType         *string         `gorm:"type:varchar(16)"`
	MakingCharges      decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	DiscountPercent    decimal.Decimal `gorm:"type:decimal(5,2);not null"`
	MakingNet          decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	StoneCharge        decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	HUIDCharge         decimal.Decimal `gorm:"column:huid_charge;type:decimal(12,2);not null"`
	HUIDNumber         *string         `gorm:"column:huid_number;type:varchar(16)"`
	DiamondCertificate *string         `gorm:"type:varchar(64)"`
	MetalRate          decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	MetalValue         decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	ItemTotal          decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Notes              *string         `gorm:"type:text"`
	CreatedAt          time.Time
}

func (ExchangeItem) TableName() string { return "exchange_items" }

// ExchangePhoto is a flat, ordered list per exchange.
type ExchangePhoto struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ExchangeID  uuid.UUID `gorm:"type:uuid;not null;index"`
	Position    int       `gorm:"not null"`
	PhotoPath   string    `gorm:"type:varchar(512);not null"`
	PhotoType   *string   `gorm:"type:varchar(32)"`
	Description *string   `gorm:"type:text"`
	CreatedAt   time.Time
}

func (ExchangePhoto) TableName() string { return "exchange_photos" }
