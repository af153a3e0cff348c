package handler

import (
	"net/http"

	"github.com/BAHUBALISID/smj/internal/apierror"
	"github.com/BAHUBALISID/smj/internal/dto"
	"github.com/BAHUBALISID/smj/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type BillsHandler struct {
	bills    service.BillService
	payments service.PaymentService
}

func NewBillsHandler(bills service.BillService, payments service.PaymentService) *BillsHandler {
	return &BillsHandler{bills: bills, payments: payments}
}

// CreateBill prices, numbers and stores an invoice in one transaction.
// POST /v1/bills
func (h *BillsHandler) CreateBill(c *gin.Context) {
	var req dto.CreateBillRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.bills.CreateInvoice(c.Request.Context(), actorFrom(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// AddPayment appends a payment to an existing bill.
// POST /v1/bills/:id/payments
func (h *BillsHandler) AddPayment(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		apierror.JSON(c, http.StatusBadRequest, apierror.New(apierror.CodeBadRequest, "invalid bill id"))
		return
	}
	var req dto.AddPaymentRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.payments.AddPayment(c.Request.Context(), actorFrom(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}
