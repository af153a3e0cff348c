package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/BAHUBALISID/smj/internal/clock"
	"github.com/BAHUBALISID/smj/internal/dto"
	"github.com/BAHUBALISID/smj/internal/model"
	"github.com/BAHUBALISID/smj/internal/numbering"
	"github.com/BAHUBALISID/smj/internal/pricing"
	"github.com/BAHUBALISID/smj/internal/purity"
	"github.com/BAHUBALISID/smj/internal/repository"
	"github.com/BAHUBALISID/smj/internal/tax"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type BillService interface {
	CreateInvoice(ctx context.Context, actor Actor, req dto.CreateBillRequest) (*dto.CreateBillResponse, error)
	GetInvoiceByToken(ctx context.Context, token string) (*dto.BillResponse, error)
}

// CoordinatorConfig tunes invoice and exchange creation.
type CoordinatorConfig struct {
	// NumberRetryAttempts bounds whole-transaction retries on number collisions.
	NumberRetryAttempts int
}

type billService struct {
	tx        repository.Transactor
	bills     repository.BillRepository
	customers repository.CustomerRepository
	rates     RateService
	numbers   *numbering.Numberer
	clock     clock.Clock
	queue     ReceiptQueue
	cfg       CoordinatorConfig
}

func NewBillService(
	tx repository.Transactor,
	bills repository.BillRepository,
	customers repository.CustomerRepository,
	rates RateService,
	numbers *numbering.Numberer,
	clk clock.Clock,
	queue ReceiptQueue,
	cfg CoordinatorConfig,
) BillService {
	if cfg.NumberRetryAttempts <= 0 {
		cfg.NumberRetryAttempts = 3
	}
	return &billService{
		tx:        tx,
		bills:     bills,
		customers: customers,
		rates:     rates,
		numbers:   numbers,
		clock:     clk,
		queue:     queue,
		cfg:       cfg,
	}
}

// ── Validation ────────────────────────────────────────────────────────────────

type billLine struct {
	req   dto.BillItemRequest
	grade purity.Purity
}

type billInput struct {
	regime   tax.Regime
	billType string
	lockDate *time.Time
	lines    []billLine
	paid     decimal.Decimal
}

func validateCustomer(f fieldErrors, c dto.CustomerInfo) {
	if strings.TrimSpace(c.Name) == "" {
		f.add("customer.name", "required")
	}
	if strings.TrimSpace(c.Phone) == "" {
		f.add("customer.phone", "required")
	}
}

// validateWeights checks the measurements shared by bill and exchange lines.
func validateWeights(f fieldErrors, prefix string, gross, less, making, discount, stone, huid decimal.Decimal) {
	if gross.IsNegative() {
		f.add(prefix+".gross_weight", "must not be negative")
	}
	if less.IsNegative() {
		f.add(prefix+".less_weight", "must not be negative")
	}
	if making.IsNegative() {
		f.add(prefix+".making_charges", "must not be negative")
	}
	if discount.IsNegative() || discount.GreaterThan(decimal.NewFromInt(100)) {
		f.add(prefix+".discount_percent", "must be between 0 and 100")
	}
	if stone.IsNegative() {
		f.add(prefix+".stone_charge", "must not be negative")
	}
	if huid.IsNegative() {
		f.add(prefix+".huid_charge", "must not be negative")
	}
}

// roundPercent matches the decimal(5,2) percent columns, so a stored item
// reproduces its own tax.
func roundPercent(d decimal.Decimal) decimal.Decimal { return d.Round(2) }

func validateGrade(f fieldErrors, prefix, metal, token string) purity.Purity {
	p, err := parseGrade(metal, token)
	if err != nil {
		var ve *ValidationError
		if errors.As(err, &ve) {
			for k, v := range ve.Fields {
				f.add(prefix+"."+k, v)
			}
		}
	}
	return p
}

func validateBill(req dto.CreateBillRequest) (*billInput, error) {
	f := fieldErrors{}
	validateCustomer(f, req.Customer)

	in := &billInput{billType: model.BillTypeNormal, paid: req.PaidAmount.Round(2)}

	regime, err := tax.ParseRegime(req.GSTType)
	if err != nil {
		f.add("gst_type", err.Error())
	}
	in.regime = regime

	switch req.BillType {
	case "", model.BillTypeNormal:
	case model.BillTypeAdvance:
		in.billType = model.BillTypeAdvance
	default:
		f.add("bill_type", "must be normal or advance")
	}

	if req.AdvanceLockDate != nil && *req.AdvanceLockDate != "" {
		d, err := time.Parse("2006-01-02", *req.AdvanceLockDate)
		if err != nil {
			f.add("advance_lock_date", "must be YYYY-MM-DD")
		} else {
			in.lockDate = &d
		}
	}

	if len(req.Items) == 0 {
		f.add("items", "at least one item is required")
	}
	for i, it := range req.Items {
		prefix := fmt.Sprintf("items[%d]", i)
		if strings.TrimSpace(it.Description) == "" {
			f.add(prefix+".description", "required")
		}
		grade := validateGrade(f, prefix, it.MetalType, it.Purity)
		validateWeights(f, prefix, it.GrossWeight, it.LessWeight, it.MakingCharges, it.DiscountPercent, it.StoneCharge, it.HUIDCharge)
		if it.GSTPercent.IsNegative() {
			f.add(prefix+".gst_percent", "must not be negative")
		}
		if it.MakingGSTPercent.IsNegative() {
			f.add(prefix+".making_gst_percent", "must not be negative")
		}
		if it.Quantity < 0 {
			f.add(prefix+".quantity", "must not be negative")
		}
		for j, ph := range it.Photos {
			if strings.TrimSpace(ph) == "" {
				f.add(fmt.Sprintf("%s.photos[%d]", prefix, j), "required")
			}
		}
		it.DiscountPercent = roundPercent(it.DiscountPercent)
		it.GSTPercent = roundPercent(it.GSTPercent)
		it.MakingGSTPercent = roundPercent(it.MakingGSTPercent)
		in.lines = append(in.lines, billLine{req: it, grade: grade})
	}

	if in.paid.IsNegative() {
		f.add("paid_amount", "must not be negative")
	}
	if in.paid.IsPositive() && strings.TrimSpace(req.PaymentMode) == "" {
		f.add("payment_mode", "required when paid_amount is set")
	}

	if err := f.err(); err != nil {
		return nil, err
	}
	return in, nil
}

// ── CreateInvoice ─────────────────────────────────────────────────────────────
// Single transaction per attempt:
//   1. Resolve rates and price every line; header totals come from the lines
//   2. Upsert the customer by phone and add the bill total to its purchases
//   3. Issue the bill number and verification token, insert the header
//   4. Insert lines in caller order, then their photo references
//   5. Initial payment, if any, with its own number
//   6. COMMIT, then enqueue the receipt job

func (s *billService) CreateInvoice(ctx context.Context, actor Actor, req dto.CreateBillRequest) (*dto.CreateBillResponse, error) {
	in, err := validateBill(req)
	if err != nil {
		return nil, err
	}

	var (
		resp   *dto.CreateBillResponse
		billID uuid.UUID
	)
	err = withNumberRetry(ctx, "create invoice", s.cfg.NumberRetryAttempts, s.numbers, func() error {
		r, id, err := s.createOnce(ctx, actor, req, in)
		if err != nil {
			return err
		}
		resp, billID = r, id
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("bill_number", resp.BillNumber).
		Str("total", resp.TotalAmount.StringFixed(2)).
		Str("status", resp.BillStatus).
		Msg("invoice created")
	enqueueReceipt(ctx, s.queue, ReceiptBill, billID)
	return resp, nil
}

func (s *billService) createOnce(ctx context.Context, actor Actor, req dto.CreateBillRequest, in *billInput) (*dto.CreateBillResponse, uuid.UUID, error) {
	var (
		resp *dto.CreateBillResponse
		bill *model.Bill
	)
	err := s.tx.Transaction(ctx, func(tx *gorm.DB) error {
		lines := make([]pricing.Breakdown, len(in.lines))
		for i, l := range in.lines {
			rate, err := s.rates.ResolveTx(ctx, tx, string(l.grade.Metal()), l.grade.Token())
			if err != nil {
				return fmt.Errorf("items[%d]: %w", i, err)
			}
			lines[i] = pricing.Price(pricing.Line{
				GrossWeight:     l.req.GrossWeight,
				LessWeight:      l.req.LessWeight,
				Rate:            rate,
				MakingCharges:   l.req.MakingCharges,
				DiscountPercent: l.req.DiscountPercent,
				StoneCharge:     l.req.StoneCharge,
				HUIDCharge:      l.req.HUIDCharge,
				GSTPercent:      l.req.GSTPercent,
				Regime:          in.regime,
			})
		}
		sum := pricing.Summarize(lines)

		if req.ExpectedTotal != nil && !req.ExpectedTotal.Round(2).Equal(sum.Total) {
			return &ValidationError{Fields: map[string]string{
				"expected_total": "does not match computed total " + sum.Total.StringFixed(2),
			}}
		}

		now := s.clock.Now()
		cust, err := s.customers.UpsertPurchase(ctx, tx, &model.Customer{
			Name:      strings.TrimSpace(req.Customer.Name),
			Phone:     strings.TrimSpace(req.Customer.Phone),
			PhoneAlt:  req.Customer.PhoneAlt,
			Aadhaar:   req.Customer.Aadhaar,
			PAN:       req.Customer.PAN,
			GSTNumber: req.Customer.GSTNumber,
			Address:   req.Customer.Address,
		}, sum.Total, clock.Date(now))
		if err != nil {
			return persist("upsert customer", err)
		}

		number, err := s.numbers.Next(ctx, tx, numbering.Bill)
		if err != nil {
			return persist("issue bill number", err)
		}
		token, err := newToken()
		if err != nil {
			return fmt.Errorf("generate token: %w", err)
		}

		remaining := sum.Total.Sub(in.paid)
		bill = &model.Bill{
			BillNumber:       number,
			CustomerID:       &cust.ID,
			CustomerName:     cust.Name,
			CustomerPhone:    cust.Phone,
			CustomerAadhaar:  req.Customer.Aadhaar,
			CustomerPAN:      req.Customer.PAN,
			CustomerGST:      req.Customer.GSTNumber,
			CustomerAddress:  req.Customer.Address,
			BillType:         in.billType,
			BillStatus:       SettlementStatus(in.paid, remaining),
			GSTType:          string(in.regime),
			GSTNumber:        req.GSTNumber,
			BusinessName:     req.BusinessName,
			BusinessAddress:  req.BusinessAddress,
			TotalGrossWeight: sum.GrossWeight,
			TotalNetWeight:   sum.NetWeight,
			MetalValue:       sum.MetalValue,
			MakingCharges:    sum.MakingCharges,
			Discount:         sum.Discount,
			StoneCharge:      sum.StoneCharge,
			HUIDCharge:       sum.HUIDCharge,
			TaxableValue:     sum.TaxableValue,
			CGST:             sum.CGST,
			SGST:             sum.SGST,
			IGST:             sum.IGST,
			TotalAmount:      sum.Total,
			PaidAmount:       in.paid,
			RemainingAmount:  remaining,
			AdvanceLockDate:  in.lockDate,
			Notes:            req.Notes,
			QRToken:          token,
			CreatedBy:        actor.idPtr(),
			CreatedByRole:    actor.Role,
		}
		if err := s.bills.Create(ctx, tx, bill); err != nil {
			return persistDoc(numbering.Bill, number, err)
		}

		for i, l := range in.lines {
			item := billItemFromLine(bill.ID, i, l, lines[i])
			if err := s.bills.CreateItem(ctx, tx, item); err != nil {
				return persist("insert bill item", err)
			}
			if len(l.req.Photos) == 0 {
				continue
			}
			photos := make([]model.BillItemPhoto, 0, len(l.req.Photos))
			for pos, path := range l.req.Photos {
				photos = append(photos, model.BillItemPhoto{BillItemID: item.ID, Position: pos, PhotoPath: path})
			}
			if err := s.bills.CreatePhotos(ctx, tx, photos); err != nil {
				return persist("insert bill item photos", err)
			}
		}

		resp = &dto.CreateBillResponse{
			BillID:          bill.ID.String(),
			BillNumber:      bill.BillNumber,
			QRToken:         bill.QRToken,
			TotalAmount:     bill.TotalAmount,
			PaidAmount:      bill.PaidAmount,
			RemainingAmount: bill.RemainingAmount,
			BillStatus:      bill.BillStatus,
		}

		if !in.paid.IsPositive() {
			return nil
		}
		payNumber, err := s.numbers.Next(ctx, tx, numbering.Payment)
		if err != nil {
			return persist("issue payment number", err)
		}
		pay := &model.BillPayment{
			BillID:        bill.ID,
			PaymentNumber: payNumber,
			Amount:        in.paid,
			PaymentMode:   strings.TrimSpace(req.PaymentMode),
			CreatedBy:     actor.idPtr(),
		}
		if err := s.bills.CreatePayment(ctx, tx, pay); err != nil {
			return persistDoc(numbering.Payment, payNumber, err)
		}
		resp.PaymentNumber = &payNumber
		return nil
	})
	if err != nil {
		return nil, uuid.Nil, txErr("create invoice", err)
	}
	return resp, bill.ID, nil
}

func billItemFromLine(billID uuid.UUID, index int, l billLine, b pricing.Breakdown) *model.BillItem {
	unit := l.req.Unit
	if unit == "" {
		unit = "GM"
	}
	qty := l.req.Quantity
	if qty == 0 {
		qty = 1
	}
	loss := l.req.LossReason
	if loss == "" {
		loss = "NONE"
	}
	return &model.BillItem{
		BillID:             billID,
		ItemIndex:          index,
		Description:        strings.TrimSpace(l.req.Description),
		MetalType:          string(l.grade.Metal()),
		Purity:             l.grade.Token(),
		Unit:               unit,
		Quantity:           qty,
		GrossWeight:        b.GrossWeight,
		LessWeight:         l.req.LessWeight.Round(pricing.WeightPlaces),
		NetWeight:          b.NetWeight,
		LossReason:         loss,
		LossNote:           l.req.LossNote,
		MakingType:         l.req.MakingType,
		MakingCharges:      b.MakingCharges,
		DiscountPercent:    l.req.DiscountPercent,
		MakingNet:          b.MakingNet,
		StoneCharge:        b.StoneCharge,
		HUIDCharge:         b.HUIDCharge,
		HUIDNumber:         l.req.HUIDNumber,
		DiamondCertificate: l.req.DiamondCertificate,
		MetalRate:          b.Rate,
		MetalValue:         b.MetalValue,
		GSTPercent:         l.req.GSTPercent,
		MakingGSTPercent:   l.req.MakingGSTPercent,
		TaxableValue:       b.TaxableValue,
		CGST:               b.Tax.CGST,
		SGST:               b.Tax.SGST,
		IGST:               b.Tax.IGST,
		ItemTotal:          b.Total,
		Notes:              l.req.Notes,
	}
}

// ── GetInvoiceByToken ─────────────────────────────────────────────────────────

func (s *billService) GetInvoiceByToken(ctx context.Context, token string) (*dto.BillResponse, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrInvoiceNotFound
	}
	b, err := s.bills.FindByToken(ctx, token)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvoiceNotFound
	}
	if err != nil {
		return nil, persist("find bill by token", err)
	}
	return billToResponse(b), nil
}

func billToResponse(b *model.Bill) *dto.BillResponse {
	resp := &dto.BillResponse{
		ID:               b.ID.String(),
		BillNumber:       b.BillNumber,
		BillType:         b.BillType,
		BillStatus:       b.BillStatus,
		GSTType:          b.GSTType,
		GSTNumber:        b.GSTNumber,
		BusinessName:     b.BusinessName,
		BusinessAddress:  b.BusinessAddress,
		CustomerName:     b.CustomerName,
		CustomerPhone:    b.CustomerPhone,
		CustomerAddress:  b.CustomerAddress,
		TotalGrossWeight: b.TotalGrossWeight,
		TotalNetWeight:   b.TotalNetWeight,
		MetalValue:       b.MetalValue,
		MakingCharges:    b.MakingCharges,
		Discount:         b.Discount,
		StoneCharge:      b.StoneCharge,
		HUIDCharge:       b.HUIDCharge,
		TaxableValue:     b.TaxableValue,
		CGST:             b.CGST,
		SGST:             b.SGST,
		IGST:             b.IGST,
		TotalAmount:      b.TotalAmount,
		PaidAmount:       b.PaidAmount,
		RemainingAmount:  b.RemainingAmount,
		Notes:            b.Notes,
		CreatedAt:        b.CreatedAt.Format(time.RFC3339),
		Items:            make([]dto.BillItemResponse, 0, len(b.Items)),
		Payments:         make([]dto.BillPaymentResponse, 0, len(b.Payments)),
	}
	if b.AdvanceLockDate != nil {
		d := b.AdvanceLockDate.Format("2006-01-02")
		resp.AdvanceLockDate = &d
	}
	for _, it := range b.Items {
		photos := make([]string, 0, len(it.Photos))
		for _, ph := range it.Photos {
			photos = append(photos, ph.PhotoPath)
		}
		resp.Items = append(resp.Items, dto.BillItemResponse{
			ItemIndex:          it.ItemIndex,
			Description:        it.Description,
			MetalType:          it.MetalType,
			Purity:             it.Purity,
			Unit:               it.Unit,
			Quantity:           it.Quantity,
			GrossWeight:        it.GrossWeight,
			LessWeight:         it.LessWeight,
			NetWeight:          it.NetWeight,
			LossReason:         it.LossReason,
			LossNote:           it.LossNote,
			MakingType:         it.MakingType,
			MakingCharges:      it.MakingCharges,
			DiscountPercent:    it.DiscountPercent,
			MakingNet:          it.MakingNet,
			StoneCharge:        it.StoneCharge,
			HUIDCharge:         it.HUIDCharge,
			HUIDNumber:         it.HUIDNumber,
			DiamondCertificate: it.DiamondCertificate,
			MetalRate:          it.MetalRate,
			MetalValue:         it.MetalValue,
			GSTPercent:         it.GSTPercent,
			MakingGSTPercent:   it.MakingGSTPercent,
			TaxableValue:       it.TaxableValue,
			CGST:               it.CGST,
			SGST:               it.SGST,
			IGST:               it.IGST,
			ItemTotal:          it.ItemTotal,
			Notes:              it.Notes,
			Photos:             photos,
		})
	}
	for _, p := range b.Payments {
		resp.Payments = append(resp.Payments, dto.BillPaymentResponse{
			PaymentNumber: p.PaymentNumber,
			Amount:        p.Amount,
			PaymentMode:   p.PaymentMode,
			TransactionID: p.TransactionID,
			ChequeNumber:  p.ChequeNumber,
			BankName:      p.BankName,
			Notes:         p.Notes,
			CreatedAt:     p.CreatedAt.Format(time.RFC3339),
		})
	}
	return resp
}
