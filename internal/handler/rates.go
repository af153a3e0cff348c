package handler

import (
	"net/http"

	"github.com/BAHUBALISID/smj/internal/dto"
	"github.com/BAHUBALISID/smj/internal/service"

	"github.com/gin-gonic/gin"
)

type RatesHandler struct{ svc service.RateService }

func NewRatesHandler(svc service.RateService) *RatesHandler { return &RatesHandler{svc: svc} }

// List returns every active rate.
// GET /v1/rates
func (h *RatesHandler) List(c *gin.Context) {
	rates, err := h.svc.ListActiveRates(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rates)
}

// Set replaces a rate and recomputes the rates derived from it.
// PUT /v1/rates
func (h *RatesHandler) Set(c *gin.Context) {
	var req dto.SetRateRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.SetRate(c.Request.Context(), actorFrom(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// AddCustom registers a direct rate for a metal outside the built-in families.
// POST /v1/rates/custom
func (h *RatesHandler) AddCustom(c *gin.Context) {
	var req dto.SetRateRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.AddCustomMetal(c.Request.Context(), actorFrom(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Resolve returns the effective per-gram rate of a grade.
// GET /v1/rates/resolve?metal_type=GOLD&purity=22K
func (h *RatesHandler) Resolve(c *gin.Context) {
	var q dto.RateQuery
	if !bindQuery(c, &q) {
		return
	}
	resp, err := h.svc.ResolveRate(c.Request.Context(), q.MetalType, q.Purity)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// History lists past rates of a grade, newest first.
// GET /v1/rates/history?metal_type=GOLD&purity=24K&limit=10
func (h *RatesHandler) History(c *gin.Context) {
	var q dto.RateQuery
	if !bindQuery(c, &q) {
		return
	}
	rates, err := h.svc.RateHistory(c.Request.Context(), q.MetalType, q.Purity, q.Limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rates)
}
