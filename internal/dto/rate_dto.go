package dto

import "github.com/shopspring/decimal"

type SetRateRequest struct {
	MetalType string          `json:"metal_type" validate:"required,max=32"`
	Purity    string          `json:"purity"     validate:"required,max=16"`
	Rate      decimal.Decimal `json:"rate"       validate:"required"`
}

// RateQuery is bound from the query string of the resolve and history endpoints.
type RateQuery struct {
	MetalType string `form:"metal_type" validate:"required,max=32"`
	Purity    string `form:"purity"     validate:"required,max=16"`
	Limit     int    `form:"limit,default=10" validate:"min=1,max=100"`
}

type RateResponse struct {
	ID            string          `json:"id"`
	MetalType     string          `json:"metal_type"`
	Purity        string          `json:"purity"`
	RatePerGram   decimal.Decimal `json:"rate_per_gram"`
	IsDerived     bool            `json:"is_derived"`
	BaseMetal     *string         `json:"base_metal,omitempty"`
	BasePurity    *string         `json:"base_purity,omitempty"`
	EffectiveFrom string          `json:"effective_from"`
	IsActive      bool            `json:"is_active"`
}

type SetRateResponse struct {
	Rate       RateResponse   `json:"rate"`
	Dependents []RateResponse `json:"dependents"`
}

type ResolvedRateResponse struct {
	MetalType   string          `json:"metal_type"`
	Purity      string          `json:"purity"`
	RatePerGram decimal.Decimal `json:"rate_per_gram"`
	Cached      bool            `json:"cached"`
}
