package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	BillTypeNormal  = "normal"
	BillTypeAdvance = "advance"

	BillStatusPending = "pending"
	BillStatusPartial = "partial"
	BillStatusPaid    = "paid"
)

// Bill is an issued sales invoice. PaidAmount + RemainingAmount always equals
// TotalAmount, and BillStatus follows from those two.
type Bill struct {
	ID              uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	BillNumber      string     `gorm:"type:varchar(32);uniqueIndex;not null"`
	CustomerID      *uuid.UUID `gorm:"type:uuid;index"`
	CustomerName    string     `gorm:"type:varchar(120);not null"`
	CustomerPhone   string     `gorm:"type:varchar(20);not null;index"`
	CustomerAadhaar *string    `gorm:"type:varchar(20)"`
	CustomerPAN     *string    `gorm:"column:customer_pan;type:varchar(20)"`
	CustomerGST     *string    `gorm:"column:customer_gst;type:varchar(20)"`
	CustomerAddress *string    `gorm:"type:text"`

	BillType        string  `gorm:"type:varchar(16);not null"`
	BillStatus      string  `gorm:"type:varchar(16);not null;index"`
	GSTType         string  `gorm:"column:gst_type;type:varchar(16);not null"`
	GSTNumber       *string `gorm:"column:gst_number;type:varchar(20)"`
	BusinessName    *string `gorm:"type:varchar(160)"`
	BusinessAddress *string `gorm:"type:text"`

	TotalGrossWeight decimal.Decimal `gorm:"type:decimal(12,3);not null"`
	TotalNetWeight   decimal.Decimal `gorm:"type:decimal(12,3);not null"`
	MetalValue       decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	MakingCharges    decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Discount         decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	StoneCharge      decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	HUIDCharge       decimal.Decimal `gorm:"column:huid_charge;type:decimal(12,2);not null"`
	TaxableValue     decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	CGST             decimal.Decimal `gorm:"column:cgst;type:decimal(12,2);not null"`
	SGST             decimal.Decimal `gorm:"column:sgst;type:decimal(12,2);not null"`
	IGST             decimal.Decimal `gorm:"column:igst;type:decimal(12,2);not null"`
	TotalAmount      decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	PaidAmount       decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	RemainingAmount  decimal.Decimal `gorm:"type:decimal(12,2);not null"`

	AdvanceLockDate *time.Time `gorm:"type:date"`
	Notes           *string    `gorm:"type:text"`
	QRToken         string     `gorm:"column:qr_token;type:varchar(64);uniqueIndex;not null"`
	CreatedBy       *uuid.UUID `gorm:"type:uuid"`
	CreatedByRole   string     `gorm:"type:varchar(32)"`
	CreatedAt       time.Time
	UpdatedAt       time.Time

	Items    []BillItem    `gorm:"foreignKey:BillID"`
	Payments []BillPayment `gorm:"foreignKey:BillID"`
}

func (Bill) TableName() string { return "bills" }

// BillItem is a priced line. ItemIndex preserves the order the caller sent.
type BillItem struct {
	ID                 uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	BillID             uuid.UUID       `gorm:"type:uuid;not null;index"`
	ItemIndex          int             `gorm:"not null"`
	Description        string          `gorm:"type:varchar(255);not null"`
	MetalType          string          `gorm:"type:varchar(32);not null"`
	Purity             string          `gorm:"type:varchar(16);not null"`
	Unit               string          `gorm:"type:varchar(8);not null"`
	Quantity           int             `gorm:"not null"`
	GrossWeight        decimal.Decimal `gorm:"type:decimal(10,3);not null"`
	LessWeight         decimal.Decimal `gorm:"type:decimal(10,3);not null"`
	NetWeight          decimal.Decimal `gorm:"type:decimal(10,3);not null"`
	LossReason         string          `gorm:"type:varchar(16);not null"`
	LossNote           *string         `gorm:"type:text"`
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
	GSTPercent         decimal.Decimal `gorm:"column:gst_percent;type:decimal(5,2);not null"`
	MakingGSTPercent   decimal.Decimal `gorm:"column:making_gst_percent;type:decimal(5,2);not null"`
	TaxableValue       decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	CGST               decimal.Decimal `gorm:"column:cgst;type:decimal(12,2);not null"`
	SGST               decimal.Decimal `gorm:"column:sgst;type:decimal(12,2);not null"`
	IGST               decimal.Decimal `gorm:"column:igst;type:decimal(12,2);not null"`
	ItemTotal          decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Notes              *string         `gorm:"type:text"`
	CreatedAt          time.Time

	Photos []BillItemPhoto `gorm:"foreignKey:BillItemID"`
}

func (BillItem) TableName() string { return "bill_items" }

// BillItemPhoto is a stored reference to an uploaded photo.
type BillItemPhoto struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	BillItemID uuid.UUID `gorm:"type:uuid;not null;index"`
	Position   int       `gorm:"not null"`
	PhotoPath  string    `gorm:"type:varchar(512);not null"`
	CreatedAt  time.Time
}

func (BillItemPhoto) TableName() string { return "bill_item_photos" }

// BillPayment is append-only.
type BillPayment struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	BillID        uuid.UUID       `gorm:"type:uuid;not null;index"`
	PaymentNumber string          `gorm:"type:varchar(32);uniqueIndex;not null"`
	Amount        decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	PaymentMode   string          `gorm:"type:varchar(32);not null"`
	TransactionID *string         `gorm:"type:varchar(64)"`
	ChequeNumber  *string         `gorm:"type:varchar(32)"`
	BankName      *string         `gorm:"type:varchar(120)"`
	Notes         *string         `gorm:"type:text"`
	CreatedBy     *uuid.UUID      `gorm:"type:uuid"`
	CreatedAt     time.Time
}

func (BillPayment) TableName() string { return "bill_payments" }
