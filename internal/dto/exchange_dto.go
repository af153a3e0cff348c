package dto

import "github.com/shopspring/decimal"

type ExchangeItemRequest struct {
	Description        string          `json:"description"         validate:"required,max=255"`
	MetalType          string          `json:"metal_type"          validate:"required,max=32"`
	Purity             string          `json:"purity"              validate:"required,max=16"`
	Unit               string          `json:"unit"                validate:"omitempty,oneof=GM PCS"`
	Quantity           int             `json:"quantity"            validate:"min=0"`
	GrossWeight        decimal.Decimal `json:"gross_weight"        validate:"min=0"`
	LessWeight         decimal.Decimal `json:"less_weight"         validate:"min=0"`
	MakingType         *string         `json:"making_type"         validate:"omitempty,oneof=Handmade Machine Casting Polished"`
	MakingCharges      decimal.Decimal `json:"making_charges"      validate:"min=0"`
	DiscountPercent    decimal.Decimal `json:"discount_percent"    validate:"min=0,max=100"`
	StoneCharge        decimal.Decimal `json:"stone_charge"        validate:"min=0"`
	HUIDCharge         decimal.Decimal `json:"huid_charge"         validate:"min=0"`
	HUIDNumber         *string         `json:"huid_number"         validate:"omitempty,max=16"`
	DiamondCertificate *string         `json:"diamond_certificate" validate:"omitempty,max=64"`
	Notes              *string         `json:"notes"`
}

type ExchangePhotoRequest struct {
	Path        string  `json:"path"        validate:"required,max=512"`
	PhotoType   *string `json:"photo_type"  validate:"omitempty,max=32"`
	Description *string `json:"description"`
}

type CreateExchangeRequest struct {
	Customer           CustomerInfo           `json:"customer"`
	OldBillNumber      *string                `json:"old_bill_number"      validate:"omitempty,max=32"`
	OldItemDescription *string                `json:"old_item_description"`
	TotalOldValue      decimal.Decimal        `json:"total_old_value"      validate:"min=0"`
	SettlementType     string                 `json:"settlement_type"      validate:"required,oneof=cash new_item"`
	CashAmount         decimal.Decimal        `json:"cash_amount"          validate:"min=0"`
	CashPaymentMode    *string                `json:"cash_payment_mode"    validate:"omitempty,max=32"`
	Items              []ExchangeItemRequest  `json:"items"                validate:"dive"`
	Photos             []ExchangePhotoRequest `json:"photos"               validate:"dive"`
	Notes              *string                `json:"notes"`
}

type CreateExchangeResponse struct {
	ExchangeID       string          `json:"exchange_id"`
	ExchangeNumber   string          `json:"exchange_number"`
	QRToken          string          `json:"qr_token"`
	TotalNewValue    decimal.Decimal `json:"total_new_value"`
	DifferenceAmount decimal.Decimal `json:"difference_amount"`
}

type ExchangeItemResponse struct {
	ItemIndex       int             `json:"item_index"`
	Description     string          `json:"description"`
	MetalType       string          `json:"metal_type"`
	Purity          string          `json:"purity"`
	Unit            string          `json:"unit"`
	Quantity        int             `json:"quantity"`
	GrossWeight     decimal.Decimal `json:"gross_weight"`
	LessWeight      decimal.Decimal `json:"less_weight"`
	NetWeight       decimal.Decimal `json:"net_weight"`
	MakingCharges   decimal.Decimal `json:"making_charges"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
	MakingNet       decimal.Decimal `json:"making_net"`
	StoneCharge     decimal.Decimal `json:"stone_charge"`
	HUIDCharge      decimal.Decimal `json:"huid_charge"`
	MetalRate       decimal.Decimal `json:"metal_rate"`
	MetalValue      decimal.Decimal `json:"metal_value"`
	ItemTotal       decimal.Decimal `json:"item_total"`
}

type ExchangePhotoResponse struct {
	Path        string  `json:"path"`
	PhotoType   *string `json:"photo_type,omitempty"`
	Description *string `json:"description,omitempty"`
}

type ExchangeResponse struct {
	ID                 string                  `json:"id"`
	ExchangeNumber     string                  `json:"exchange_number"`
	CustomerName       string                  `json:"customer_name"`
	CustomerPhone      string                  `json:"customer_phone"`
	OldBillNumber      *string                 `json:"old_bill_number,omitempty"`
	OldItemDescription *string                 `json:"old_item_description,omitempty"`
	SettlementType     string                  `json:"settlement_type"`
	CashAmount         decimal.Decimal         `json:"cash_amount"`
	CashPaymentMode    *string                 `json:"cash_payment_mode,omitempty"`
	TotalOldValue      decimal.Decimal         `json:"total_old_value"`
	TotalNewValue      decimal.Decimal         `json:"total_new_value"`
	DifferenceAmount   decimal.Decimal         `json:"difference_amount"`
	Notes              *string                 `json:"notes,omitempty"`
	CreatedAt          string                  `json:"created_at"`
	Items              []ExchangeItemResponse  `json:"items"`
	Photos             []ExchangePhotoResponse `json:"photos"`
}
