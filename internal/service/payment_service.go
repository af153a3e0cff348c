package service

import (
	"context"
	"errors"
	"strings"

	"github.com/BAHUBALISID/smj/internal/dto"
	"github.com/BAHUBALISID/smj/internal/model"
	"github.com/BAHUBALISID/smj/internal/numbering"
	"github.com/BAHUBALISID/smj/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

type PaymentService interface {
	AddPayment(ctx context.Context, actor Actor, billID uuid.UUID, req dto.AddPaymentRequest) (*dto.PaymentResponse, error)
}

type paymentService struct {
	tx      repository.Transactor
	bills   repository.BillRepository
	numbers *numbering.Numberer
	cfg     CoordinatorConfig
}

func NewPaymentService(tx repository.Transactor, bills repository.BillRepository, numbers *numbering.Numberer, cfg CoordinatorConfig) PaymentService {
	if cfg.NumberRetryAttempts <= 0 {
		cfg.NumberRetryAttempts = 3
	}
	return &paymentService{tx: tx, bills: bills, numbers: numbers, cfg: cfg}
}

// AddPayment appends a payment and moves the bill's settlement forward under
// a row lock. Overpayment is accepted and leaves a negative remainder.
func (s *paymentService) AddPayment(ctx context.Context, actor Actor, billID uuid.UUID, req dto.AddPaymentRequest) (*dto.PaymentResponse, error) {
	f := fieldErrors{}
	amount := req.Amount.Round(2)
	if !amount.IsPositive() {
		f.add("amount", "must be greater than zero")
	}
	mode := strings.TrimSpace(req.PaymentMode)
	if mode == "" {
		f.add("payment_mode", "required")
	}
	if err := f.err(); err != nil {
		return nil, err
	}

	var resp *dto.PaymentResponse
	err := withNumberRetry(ctx, "add payment", s.cfg.NumberRetryAttempts, s.numbers, func() error {
		return txErr("add payment", s.tx.Transaction(ctx, func(tx *gorm.DB) error {
			bill, err := s.bills.FindForUpdate(ctx, tx, billID)
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrInvoiceNotFound
			}
			if err != nil {
				return persist("lock bill", err)
			}

			number, err := s.numbers.Next(ctx, tx, numbering.Payment)
			if err != nil {
				return persist("issue payment number", err)
			}
			pay := &model.BillPayment{
				BillID:        bill.ID,
				PaymentNumber: number,
				Amount:        amount,
				PaymentMode:   mode,
				TransactionID: req.TransactionID,
				ChequeNumber:  req.ChequeNumber,
				BankName:      req.BankName,
				Notes:         req.Notes,
				CreatedBy:     actor.idPtr(),
			}
			if err := s.bills.CreatePayment(ctx, tx, pay); err != nil {
				return persistDoc(numbering.Payment, number, err)
			}

			paid := bill.PaidAmount.Add(amount)
			remaining := bill.TotalAmount.Sub(paid)
			status := SettlementStatus(paid, remaining)
			if err := s.bills.UpdateSettlement(ctx, tx, bill.ID, paid, remaining, status); err != nil {
				return persist("update bill settlement", err)
			}

			resp = &dto.PaymentResponse{
				PaymentNumber: number,
				BillID:        bill.ID.String(),
				Amount:        amount,
				NewPaid:       paid,
				NewRemaining:  remaining,
				NewStatus:     status,
			}
			return nil
		}))
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("payment_number", resp.PaymentNumber).
		Str("bill_id", resp.BillID).
		Str("status", resp.NewStatus).
		Msg("payment recorded")
	return resp, nil
}
