package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/BAHUBALISID/smj/internal/clock"
	"github.com/BAHUBALISID/smj/internal/dto"
	"github.com/BAHUBALISID/smj/internal/numbering"
	"github.com/BAHUBALISID/smj/internal/service"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

var (
	ist, _  = time.LoadLocation("Asia/Kolkata")
	testNow = time.Date(2026, time.October, 14, 11, 30, 0, 0, ist)
	admin   = service.Actor{ID: uuid.MustParse("6f1c2b3a-0000-4000-8000-000000000001"), Role: "admin"}
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

type fixture struct {
	store     *memStore
	clock     *clock.Fixed
	cache     *memCache
	queue     *memQueue
	numbers   *numbering.Numberer
	rates     service.RateService
	bills     service.BillService
	exchanges service.ExchangeService
	payments  service.PaymentService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	clk := clock.NewFixed(testNow)
	store := newMemStore(clk.Now)
	f := &fixture{
		store: store,
		clock: clk,
		cache: newMemCache(),
		queue: &memQueue{},
	}
	f.numbers = numbering.New(memCounter{store}, clk, numbering.DefaultConfig())
	cfg := service.CoordinatorConfig{NumberRetryAttempts: 3}
	f.rates = service.NewRateService(memRates{store}, store, f.cache, clk)
	f.bills = service.NewBillService(store, memBills{store}, memCustomers{store}, f.rates, f.numbers, clk, f.queue, cfg)
	f.exchanges = service.NewExchangeService(store, memExchanges{store}, memCustomers{store}, f.rates, f.numbers, clk, f.queue, cfg)
	f.payments = service.NewPaymentService(store, memBills{store}, f.numbers, cfg)
	return f
}

func (f *fixture) setRate(t *testing.T, metal, purity, rate string) *dto.SetRateResponse {
	t.Helper()
	resp, err := f.rates.SetRate(context.Background(), admin, dto.SetRateRequest{MetalType: metal, Purity: purity, Rate: d(rate)})
	require.NoError(t, err)
	return resp
}

// ringItem is the reference line: 10 g gross, 0.5 g less, 1000 making at 10 %
// discount, 200 stone charge and 3 % GST.
func ringItem() dto.BillItemRequest {
	return dto.BillItemRequest{
		Description:     "Gold ring",
		MetalType:       "GOLD",
		Purity:          "22K",
		GrossWeight:     d("10.000"),
		LessWeight:      d("0.500"),
		MakingCharges:   d("1000"),
		DiscountPercent: d("10"),
		StoneCharge:     d("200"),
		GSTPercent:      d("3"),
	}
}

func billRequest(phone string, items ...dto.BillItemRequest) dto.CreateBillRequest {
	return dto.CreateBillRequest{
		Customer: dto.CustomerInfo{Name: "Asha Verma", Phone: phone},
		GSTType:  "intra_state",
		Items:    items,
	}
}
