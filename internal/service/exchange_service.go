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

type ExchangeService interface {
	CreateExchange(ctx context.Context, actor Actor, req dto.CreateExchangeRequest) (*dto.CreateExchangeResponse, error)
	GetExchangeByToken(ctx context.Context, token string) (*dto.ExchangeResponse, error)
}

type exchangeService struct {
	tx        repository.Transactor
	exchanges repository.ExchangeRepository
	customers repository.CustomerRepository
	rates     RateService
	numbers   *numbering.Numberer
	clock     clock.Clock
	queue     ReceiptQueue
	cfg       CoordinatorConfig
}

func NewExchangeService(
	tx repository.Transactor,
	exchanges repository.ExchangeRepository,
	customers repository.CustomerRepository,
	rates RateService,
	numbers *numbering.Numberer,
	clk clock.Clock,
	queue ReceiptQueue,
	cfg CoordinatorConfig,
) ExchangeService {
	if cfg.NumberRetryAttempts <= 0 {
		cfg.NumberRetryAttempts = 3
	}
	return &exchangeService{
		tx:        tx,
		exchanges: exchanges,
		customers: customers,
		rates:     rates,
		numbers:   numbers,
		clock:     clk,
		queue:     queue,
		cfg:       cfg,
	}
}

type exchangeLine struct {
	req   dto.ExchangeItemRequest
	grade purity.Purity
}

func validateExchange(req dto.CreateExchangeRequest) ([]exchangeLine, error) {
	f := fieldErrors{}
	validateCustomer(f, req.Customer)

	if req.TotalOldValue.IsNegative() {
		f.add("total_old_value", "must not be negative")
	}
	if req.CashAmount.IsNegative() {
		f.add("cash_amount", "must not be negative")
	}
	switch req.SettlementType {
	case model.SettlementCash:
		if !req.CashAmount.IsPositive() {
			f.add("cash_amount", "required for cash settlement")
		}
	case model.SettlementNewItem:
		if len(req.Items) == 0 {
			f.add("items", "at least one item is required for new_item settlement")
		}
	default:
		f.add("settlement_type", "must be cash or new_item")
	}

	lines := make([]exchangeLine, 0, len(req.Items))
	for i, it := range req.Items {
		prefix := fmt.Sprintf("items[%d]", i)
		if strings.TrimSpace(it.Description) == "" {
			f.add(prefix+".description", "required")
		}
		grade := validateGrade(f, prefix, it.MetalType, it.Purity)
		validateWeights(f, prefix, it.GrossWeight, it.LessWeight, it.MakingCharges, it.DiscountPercent, it.StoneCharge, it.HUIDCharge)
		if it.Quantity < 0 {
			f.add(prefix+".quantity", "must not be negative")
		}
		it.DiscountPercent = roundPercent(it.DiscountPercent)
		lines = append(lines, exchangeLine{req: it, grade: grade})
	}
	for i, ph := range req.Photos {
		if strings.TrimSpace(ph.Path) == "" {
			f.add(fmt.Sprintf("photos[%d].path", i), "required")
		}
	}

	if err := f.err(); err != nil {
		return nil, err
	}
	return lines, nil
}

// ExchangeDifference is cash minus old value for cash settlements and new
// value minus old value otherwise.
func ExchangeDifference(settlement string, cash, oldValue, newValue decimal.Decimal) decimal.Decimal {
	if settlement == model.SettlementCash {
		return cash.Sub(oldValue).Round(2)
	}
	return newValue.Sub(oldValue).Round(2)
}

// ── CreateExchange ────────────────────────────────────────────────────────────
// New items are priced like bill lines but carry no tax. The customer is
// created when unknown; exchanges do not count as purchases.

func (s *exchangeService) CreateExchange(ctx context.Context, actor Actor, req dto.CreateExchangeRequest) (*dto.CreateExchangeResponse, error) {
	lines, err := validateExchange(req)
	if err != nil {
		return nil, err
	}

	var (
		resp *dto.CreateExchangeResponse
		id   uuid.UUID
	)
	err = withNumberRetry(ctx, "create exchange", s.cfg.NumberRetryAttempts, s.numbers, func() error {
		r, eid, err := s.createOnce(ctx, actor, req, lines)
		if err != nil {
			return err
		}
		resp, id = r, eid
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("exchange_number", resp.ExchangeNumber).
		Str("difference", resp.DifferenceAmount.StringFixed(2)).
		Msg("exchange created")
	enqueueReceipt(ctx, s.queue, ReceiptExchange, id)
	return resp, nil
}

func (s *exchangeService) createOnce(ctx context.Context, actor Actor, req dto.CreateExchangeRequest, lines []exchangeLine) (*dto.CreateExchangeResponse, uuid.UUID, error) {
	var (
		resp *dto.CreateExchangeResponse
		ex   *model.Exchange
	)
	err := s.tx.Transaction(ctx, func(tx *gorm.DB) error {
		priced := make([]pricing.Breakdown, len(lines))
		newValue := decimal.Zero
		for i, l := range lines {
			rate, err := s.rates.ResolveTx(ctx, tx, string(l.grade.Metal()), l.grade.Token())
			if err != nil {
				return fmt.Errorf("items[%d]: %w", i, err)
			}
			priced[i] = pricing.Price(pricing.Line{
				GrossWeight:     l.req.GrossWeight,
				LessWeight:      l.req.LessWeight,
				Rate:            rate,
				MakingCharges:   l.req.MakingCharges,
				DiscountPercent: l.req.DiscountPercent,
				StoneCharge:     l.req.StoneCharge,
				HUIDCharge:      l.req.HUIDCharge,
				Regime:          tax.None,
			})
			newValue = newValue.Add(priced[i].Total)
		}

		cust, err := s.customers.FirstOrCreateByPhone(ctx, tx, &model.Customer{
			Name:  strings.TrimSpace(req.Customer.Name),
			Phone: strings.TrimSpace(req.Customer.Phone),
		})
		if err != nil {
			return persist("find or create customer", err)
		}

		number, err := s.numbers.Next(ctx, tx, numbering.Exchange)
		if err != nil {
			return persist("issue exchange number", err)
		}
		token, err := newToken()
		if err != nil {
			return fmt.Errorf("generate token: %w", err)
		}

		oldValue := req.TotalOldValue.Round(2)
		cash := req.CashAmount.Round(2)
		ex = &model.Exchange{
			ExchangeNumber:     number,
			CustomerID:         &cust.ID,
			CustomerName:       cust.Name,
			CustomerPhone:      cust.Phone,
			OldBillNumber:      req.OldBillNumber,
			OldItemDescription: req.OldItemDescription,
			SettlementType:     req.SettlementType,
			CashAmount:         cash,
			CashPaymentMode:    req.CashPaymentMode,
			TotalOldValue:      oldValue,
			TotalNewValue:      newValue.Round(2),
			DifferenceAmount:   ExchangeDifference(req.SettlementType, cash, oldValue, newValue),
			Notes:              req.Notes,
			QRToken:            token,
			CreatedBy:          actor.idPtr(),
			CreatedByRole:      actor.Role,
		}
		if err := s.exchanges.Create(ctx, tx, ex); err != nil {
			return persistDoc(numbering.Exchange, number, err)
		}

		for i, l := range lines {
			if err := s.exchanges.CreateItem(ctx, tx, exchangeItemFromLine(ex.ID, i, l, priced[i])); err != nil {
				return persist("insert exchange item", err)
			}
		}
		if len(req.Photos) > 0 {
			photos := make([]model.ExchangePhoto, 0, len(req.Photos))
			for pos, ph := range req.Photos {
				photos = append(photos, model.ExchangePhoto{
					ExchangeID:  ex.ID,
					Position:    pos,
					PhotoPath:   ph.Path,
					PhotoType:   ph.PhotoType,
					Description: ph.Description,
				})
			}
			if err := s.exchanges.CreatePhotos(ctx, tx, photos); err != nil {
				return persist("insert exchange photos", err)
			}
		}

		resp = &dto.CreateExchangeResponse{
			ExchangeID:       ex.ID.String(),
			ExchangeNumber:   ex.ExchangeNumber,
			QRToken:          ex.QRToken,
			TotalNewValue:    ex.TotalNewValue,
			DifferenceAmount: ex.DifferenceAmount,
		}
		return nil
	})
	if err != nil {
		return nil, uuid.Nil, txErr("create exchange", err)
	}
	return resp, ex.ID, nil
}

func exchangeItemFromLine(exchangeID uuid.UUID, index int, l exchangeLine, b pricing.Breakdown) *model.ExchangeItem {
	unit := l.req.Unit
	if unit == "" {
		unit = "GM"
	}
	qty := l.req.Quantity
	if qty == 0 {
		qty = 1
	}
	return &model.ExchangeItem{
		ExchangeID:         exchangeID,
		ItemIndex:          index,
		Description:        strings.TrimSpace(l.req.Description),
		MetalType:          string(l.grade.Metal()),
		Purity:             l.grade.Token(),
		Unit:               unit,
		Quantity:           qty,
		GrossWeight:        b.GrossWeight,
		LessWeight:         l.req.LessWeight.Round(pricing.WeightPlaces),
		NetWeight:          b.NetWeight,
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
		ItemTotal:          b.Total,
		Notes:              l.req.Notes,
	}
}

func (s *exchangeService) GetExchangeByToken(ctx context.Context, token string) (*dto.ExchangeResponse, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrExchangeNotFound
	}
	e, err := s.exchanges.FindByToken(ctx, token)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrExchangeNotFound
	}
	if err != nil {
		return nil, persist("find exchange by token", err)
	}
	return exchangeToResponse(e), nil
}

func exchangeToResponse(e *model.Exchange) *dto.ExchangeResponse {
	resp := &dto.ExchangeResponse{
		ID:                 e.ID.String(),
		ExchangeNumber:     e.ExchangeNumber,
		CustomerName:       e.CustomerName,
		CustomerPhone:      e.CustomerPhone,
		OldBillNumber:      e.OldBillNumber,
		OldItemDescription: e.OldItemDescription,
		SettlementType:     e.SettlementType,
		CashAmount:         e.CashAmount,
		CashPaymentMode:    e.CashPaymentMode,
		TotalOldValue:      e.TotalOldValue,
		TotalNewValue:      e.TotalNewValue,
		DifferenceAmount:   e.DifferenceAmount,
		Notes:              e.Notes,
		CreatedAt:          e.CreatedAt.Format(time.RFC3339),
		Items:              make([]dto.ExchangeItemResponse, 0, len(e.Items)),
		Photos:             make([]dto.ExchangePhotoResponse, 0, len(e.Photos)),
	}
	for _, it := range e.Items {
		resp.Items = append(resp.Items, dto.ExchangeItemResponse{
			ItemIndex:       it.ItemIndex,
			Description:     it.Description,
			MetalType:       it.MetalType,
			Purity:          it.Purity,
			Unit:            it.Unit,
			Quantity:        it.Quantity,
			GrossWeight:     it.GrossWeight,
			LessWeight:      it.LessWeight,
			NetWeight:       it.NetWeight,
			MakingCharges:   it.MakingCharges,
			DiscountPercent: it.DiscountPercent,
			MakingNet:       it.MakingNet,
			StoneCharge:     it.StoneCharge,
			HUIDCharge:      it.HUIDCharge,
			MetalRate:       it.MetalRate,
			MetalValue:      it.MetalValue,
			ItemTotal:       it.ItemTotal,
		})
	}
	for _, ph := range e.Photos {
		resp.Photos = append(resp.Photos, dto.ExchangePhotoResponse{
			Path:        ph.PhotoPath,
			PhotoType:   ph.PhotoType,
			Description: ph.Description,
		})
	}
	return resp
}
