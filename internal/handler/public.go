package handler

import (
	"net/http"

	"github.com/BAHUBALISID/smj/internal/service"

	"github.com/gin-gonic/gin"
)

// PublicHandler serves the unauthenticated verification lookups behind the
// QR code printed on each receipt.
type PublicHandler struct {
	bills     service.BillService
	exchanges service.ExchangeService
}

func NewPublicHandler(bills service.BillService, exchanges service.ExchangeService) *PublicHandler {
	return &PublicHandler{bills: bills, exchanges: exchanges}
}

// GET /v1/public/bills/:token
func (h *PublicHandler) Bill(c *gin.Context) {
	resp, err := h.bills.GetInvoiceByToken(c.Request.Context(), c.Param("token"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GET /v1/public/exchanges/:token
func (h *PublicHandler) Exchange(c *gin.Context) {
	resp, err := h.exchanges.GetExchangeByToken(c.Request.Context(), c.Param("token"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
