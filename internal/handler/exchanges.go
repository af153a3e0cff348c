package handler

import (
	"net/http"

	"github.com/BAHUBALISID/smj/internal/dto"
	"github.com/BAHUBALISID/smj/internal/service"

	"github.com/gin-gonic/gin"
)

type ExchangesHandler struct{ svc service.ExchangeService }

func NewExchangesHandler(svc service.ExchangeService) *ExchangesHandler {
	return &ExchangesHandler{svc: svc}
}

// CreateExchange records an old-item trade-in.
// POST /v1/exchanges
func (h *ExchangesHandler) CreateExchange(c *gin.Context) {
	var req dto.CreateExchangeRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.CreateExchange(c.Request.Context(), actorFrom(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}
