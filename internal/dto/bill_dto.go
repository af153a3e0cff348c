package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CustomerInfo struct {
	Name      string  `json:"name"       validate:"required,max=120"`
	Phone     string  `json:"phone"      validate:"required,max=20"`
	PhoneAlt  *string `json:"phone_alt"  validate:"omitempty,max=20"`
	Aadhaar   *string `json:"aadhaar"    validate:"omitempty,max=20"`
	PAN       *string `json:"pan"        validate:"omitempty,max=20"`
	GSTNumber *string `json:"gst_number" validate:"omitempty,max=20"`
	Address   *string `json:"address"`
}

type BillItemRequest struct {
	Description        string          `json:"description"         validate:"required,max=255"`
	MetalType          string          `json:"metal_type"          validate:"required,max=32"`
	Purity             string          `json:"purity"              validate:"required,max=16"`
	Unit               string          `json:"unit"                validate:"omitempty,oneof=GM PCS"`
	Quantity           int             `json:"quantity"            validate:"min=0"`
	GrossWeight        decimal.Decimal `json:"gross_weight"        validate:"min=0"`
	LessWeight         decimal.Decimal `json:"less_weight"         validate:"min=0"`
	LossReason         string          `json:"loss_reason"         validate:"omitempty,oneof=NONE DIAMOND STONE POLISH DUST REFINING OTHER"`
	LossNote           *string         `json:"loss_note"`
	MakingType         *string         `json:"making_type"         validate:"omitempty,oneof=Handmade Machine Casting Polished"`
	MakingCharges      decimal.Decimal `json:"making_charges"      validate:"min=0"`
	DiscountPercent    decimal.Decimal `json:"discount_percent"    validate:"min=0,max=100"`
	StoneCharge        decimal.Decimal `json:"stone_charge"        validate:"min=0"`
	HUIDCharge         decimal.Decimal `json:"huid_charge"         validate:"min=0"`
	HUIDNumber         *string         `json:"huid_number"         validate:"omitempty,max=16"`
	DiamondCertificate *string         `json:"diamond_certificate" validate:"omitempty,max=64"`
	GSTPercent         decimal.Decimal `json:"gst_percent"         validate:"min=0"`
	MakingGSTPercent   decimal.Decimal `json:"making_gst_percent"  validate:"min=0"`
	Notes              *string         `json:"notes"`
	Photos             []string        `json:"photos"              validate:"dive,required,max=512"`
}

type CreateBillRequest struct {
	Customer        CustomerInfo      `json:"customer"`
	BillType        string            `json:"bill_type"         validate:"omitempty,oneof=normal advance"`
	GSTType         string            `json:"gst_type"          validate:"omitempty,oneof=none intra_state inter_state"`
	GSTNumber       *string           `json:"gst_number"        validate:"omitempty,max=20"`
	BusinessName    *string           `json:"business_name"     validate:"omitempty,max=160"`
	BusinessAddress *string           `json:"business_address"`
	AdvanceLockDate *string           `json:"advance_lock_date" validate:"omitempty,datetime=2006-01-02"`
	Notes           *string           `json:"notes"`
	Items           []BillItemRequest `json:"items"             validate:"required,min=1,dive"`
	PaidAmount      decimal.Decimal   `json:"paid_amount"       validate:"min=0"`
	PaymentMode     string            `json:"payment_mode"      validate:"omitempty,max=32"`
	// ExpectedTotal is the total the caller displayed; a mismatch rejects the bill.
	ExpectedTotal *decimal.Decimal `json:"expected_total,omitempty"`
}

type AddPaymentRequest struct {
	Amount        decimal.Decimal `json:"amount"         validate:"required"`
	PaymentMode   string          `json:"payment_mode"   validate:"required,max=32"`
	TransactionID *string         `json:"transaction_id" validate:"omitempty,max=64"`
	ChequeNumber  *string         `json:"cheque_number"  validate:"omitempty,max=32"`
	BankName      *string         `json:"bank_name"      validate:"omitempty,max=120"`
	Notes         *string         `json:"notes"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type CreateBillResponse struct {
	BillID          string          `json:"bill_id"`
	BillNumber      string          `json:"bill_number"`
	QRToken         string          `json:"qr_token"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	PaidAmount      decimal.Decimal `json:"paid_amount"`
	RemainingAmount decimal.Decimal `json:"remaining_amount"`
	BillStatus      string          `json:"bill_status"`
	PaymentNumber   *string         `json:"payment_number,omitempty"`
}

type PaymentResponse struct {
	PaymentNumber string          `json:"payment_number"`
	BillID        string          `json:"bill_id"`
	Amount        decimal.Decimal `json:"amount"`
	NewPaid       decimal.Decimal `json:"new_paid"`
	NewRemaining  decimal.Decimal `json:"new_remaining"`
	NewStatus     string          `json:"new_status"`
}

type BillItemResponse struct {
	ItemIndex          int             `json:"item_index"`
	Description        string          `json:"description"`
	MetalType          string          `json:"metal_type"`
	Purity             string          `json:"purity"`
	Unit               string          `json:"unit"`
	Quantity           int             `json:"quantity"`
	GrossWeight        decimal.Decimal `json:"gross_weight"`
	LessWeight         decimal.Decimal `json:"less_weight"`
	NetWeight          decimal.Decimal `json:"net_weight"`
	LossReason         string          `json:"loss_reason"`
	LossNote           *string         `json:"loss_note,omitempty"`
	MakingType         *string         `json:"making_type,omitempty"`
	MakingCharges      decimal.Decimal `json:"making_charges"`
	DiscountPercent    decimal.Decimal `json:"discount_percent"`
	MakingNet          decimal.Decimal `json:"making_net"`
	StoneCharge        decimal.Decimal `json:"stone_charge"`
	HUIDCharge         decimal.Decimal `json:"huid_charge"`
	HUIDNumber         *string         `json:"huid_number,omitempty"`
	DiamondCertificate *string         `json:"diamond_certificate,omitempty"`
	MetalRate          decimal.Decimal `json:"metal_rate"`
	MetalValue         decimal.Decimal `json:"metal_value"`
	GSTPercent         decimal.Decimal `json:"gst_percent"`
	MakingGSTPercent   decimal.Decimal `json:"making_gst_percent"`
	TaxableValue       decimal.Decimal `json:"taxable_value"`
	CGST               decimal.Decimal `json:"cgst"`
	SGST               decimal.Decimal `json:"sgst"`
	IGST               decimal.Decimal `json:"igst"`
	ItemTotal          decimal.Decimal `json:"item_total"`
	Notes              *string         `json:"notes,omitempty"`
	Photos             []string        `json:"photos"`
}

type BillPaymentResponse struct {
	PaymentNumber string          `json:"payment_number"`
	Amount        decimal.Decimal `json:"amount"`
	PaymentMode   string          `json:"payment_mode"`
	TransactionID *string         `json:"transaction_id,omitempty"`
	ChequeNumber  *string         `json:"cheque_number,omitempty"`
	BankName      *string         `json:"bank_name,omitempty"`
	Notes         *string         `json:"notes,omitempty"`
	CreatedAt     string          `json:"created_at"`
}

type BillResponse struct {
	ID               string                `json:"id"`
	BillNumber       string                `json:"bill_number"`
	BillType         string                `json:"bill_type"`
	BillStatus       string                `json:"bill_status"`
	GSTType          string                `json:"gst_type"`
	GSTNumber        *string               `json:"gst_number,omitempty"`
	BusinessName     *string               `json:"business_name,omitempty"`
	BusinessAddress  *string               `json:"business_address,omitempty"`
	CustomerName     string                `json:"customer_name"`
	CustomerPhone    string                `json:"customer_phone"`
	CustomerAddress  *string               `json:"customer_address,omitempty"`
	TotalGrossWeight decimal.Decimal       `json:"total_gross_weight"`
	TotalNetWeight   decimal.Decimal       `json:"total_net_weight"`
	MetalValue       decimal.Decimal       `json:"metal_value"`
	MakingCharges    decimal.Decimal       `json:"making_charges"`
	Discount         decimal.Decimal       `json:"discount"`
	StoneCharge      decimal.Decimal       `json:"stone_charge"`
	HUIDCharge       decimal.Decimal       `json:"huid_charge"`
	TaxableValue     decimal.Decimal       `json:"taxable_value"`
	CGST             decimal.Decimal       `json:"cgst"`
	SGST             decimal.Decimal       `json:"sgst"`
	IGST             decimal.Decimal       `json:"igst"`
	TotalAmount      decimal.Decimal       `json:"total_amount"`
	PaidAmount       decimal.Decimal       `json:"paid_amount"`
	RemainingAmount  decimal.Decimal       `json:"remaining_amount"`
	AdvanceLockDate  *string               `json:"advance_lock_date,omitempty"`
	Notes            *string               `json:"notes,omitempty"`
	CreatedAt        string                `json:"created_at"`
	Items            []BillItemResponse    `json:"items"`
	Payments         []BillPaymentResponse `json:"payments"`
}
