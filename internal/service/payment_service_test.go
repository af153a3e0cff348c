package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/BAHUBALISID/smj/internal/dto"
	"github.com/BAHUBALISID/smj/internal/model"
	"github.com/BAHUBALISID/smj/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPendingBill(t *testing.T, f *fixture) uuid.UUID {
	t.Helper()
	f.setRate(t, "GOLD", "22K", "6000")
	resp, err := f.bills.CreateInvoice(context.Background(), admin, billRequest("9800000001", ringItem()))
	require.NoError(t, err)
	return uuid.MustParse(resp.BillID)
}

func TestAddPayment_ProgressesStatus(t *testing.T) {
	f := newFixture(t)
	id := newPendingBill(t, f)
	ctx := context.Background()

	steps := []struct {
		amount, paid, remaining, status, number string
	}{
		{"20000", "20000.00", "39843.00", model.BillStatusPartial, "PAY/2610/0001"},
		{"19843", "39843.00", "20000.00", model.BillStatusPartial, "PAY/2610/0002"},
		{"20000", "59843.00", "0.00", model.BillStatusPaid, "PAY/2610/0003"},
	}
	for _, s := range steps {
		resp, err := f.payments.AddPayment(ctx, admin, id, dto.AddPaymentRequest{Amount: d(s.amount), PaymentMode: "CASH"})
		require.NoError(t, err)
		assert.Equal(t, s.number, resp.PaymentNumber)
		assert.Equal(t, s.paid, resp.NewPaid.StringFixed(2))
		assert.Equal(t, s.remaining, resp.NewRemaining.StringFixed(2))
		assert.Equal(t, s.status, resp.NewStatus)
	}

	bill, err := f.store.memBillsFind(id)
	require.NoError(t, err)
	assert.True(t, bill.PaidAmount.Add(bill.RemainingAmount).Equal(bill.TotalAmount))
	assert.Len(t, bill.Payments, 3)
}

func TestAddPayment_OverpaymentStaysPaid(t *testing.T) {
	f := newFixture(t)
	id := newPendingBill(t, f)

	resp, err := f.payments.AddPayment(context.Background(), admin, id, dto.AddPaymentRequest{Amount: d("60000"), PaymentMode: "CARD"})
	require.NoError(t, err)
	assert.Equal(t, model.BillStatusPaid, resp.NewStatus)
	assert.Equal(t, "-157.00", resp.NewRemaining.StringFixed(2))
}

func TestAddPayment_Validation(t *testing.T) {
	f := newFixture(t)
	id := newPendingBill(t, f)

	for _, req := range []dto.AddPaymentRequest{
		{Amount: d("0"), PaymentMode: "CASH"},
		{Amount: d("-10"), PaymentMode: "CASH"},
		{Amount: d("10"), PaymentMode: " "},
	} {
		_, err := f.payments.AddPayment(context.Background(), admin, id, req)
		assert.True(t, errors.Is(err, service.ErrValidation), "%+v", req)
	}
}

func TestAddPayment_UnknownBill(t *testing.T) {
	f := newFixture(t)
	_, err := f.payments.AddPayment(context.Background(), admin, uuid.New(), dto.AddPaymentRequest{Amount: d("10"), PaymentMode: "CASH"})
	assert.True(t, errors.Is(err, service.ErrInvoiceNotFound))
}

func TestAddPayment_ConcurrentPaymentsAllCounted(t *testing.T) {
	f := newFixture(t)
	id := newPendingBill(t, f)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.payments.AddPayment(context.Background(), admin, id, dto.AddPaymentRequest{Amount: d("1000"), PaymentMode: "UPI"})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	bill, err := f.store.memBillsFind(id)
	require.NoError(t, err)
	assert.Equal(t, "10000.00", bill.PaidAmount.StringFixed(2))
	assert.Equal(t, "49843.00", bill.RemainingAmount.StringFixed(2))
	assert.Equal(t, model.BillStatusPartial, bill.BillStatus)
}

func (m *memStore) memBillsFind(id uuid.UUID) (*model.Bill, error) {
	return memBills{m}.FindByID(context.Background(), id)
}
