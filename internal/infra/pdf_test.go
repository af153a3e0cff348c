package infra

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/BAHUBALISID/smj/internal/model"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReceiptPath(t *testing.T) {
	assert.Equal(t, filepath.Join("/r", "bill_SMJ-2610-0001.pdf"), receiptPath("/r", "bill", "SMJ/2610/0001"))
}

func TestVerifyURL(t *testing.T) {
	o := ReceiptOptions{VerifyBaseURL: "https://shop.example/v1/public/"}
	assert.Equal(t, "https://shop.example/v1/public/bills/tok", o.verifyURL("bill", "tok"))
	assert.Equal(t, "https://shop.example/v1/public/exchanges/tok", o.verifyURL("exchange", "tok"))
}

func TestGenerateBillReceiptPDF_Valid(t *testing.T) {
	lock := time.Date(2026, 11, 14, 0, 0, 0, 0, time.UTC)
	gst := "27AAAAA0000A1Z5"
	b := &model.Bill{
		BillNumber:      "SMJ/2610/0007",
		CustomerName:    "Ravi Kumar",
		CustomerPhone:   "9000000001",
		BillType:        model.BillTypeAdvance,
		GSTNumber:       &gst,
		MetalValue:      decimal.RequireFromString("20000.00"),
		TaxableValue:    decimal.RequireFromString("20000.00"),
		IGST:            decimal.RequireFromString("600.00"),
		TotalAmount:     decimal.RequireFromString("20600.00"),
		RemainingAmount: decimal.RequireFromString("20600.00"),
		AdvanceLockDate: &lock,
		QRToken:         "tok",
		CreatedAt:       time.Date(2026, 10, 14, 9, 0, 0, 0, time.UTC),
		Items: []model.BillItem{
			{Description: "Chain with a fairly long description that must wrap", Purity: "18K",
				NetWeight: decimal.RequireFromString("4.000"), ItemTotal: decimal.RequireFromString("20600.00")},
		},
	}

	path, err := GenerateBillReceiptPDF(b, ReceiptOptions{StoragePath: t.TempDir(), BusinessName: "Test", VerifyBaseURL: "http://x/verify"})
	require.NoError(t, err)
	assert.NoError(t, api.ValidateFile(path, nil))
}

func TestGenerateExchangeReceiptPDF_Valid(t *testing.T) {
	e := &model.Exchange{
		ExchangeNumber:   "EX/2610/0002",
		CustomerName:     "Ravi Kumar",
		CustomerPhone:    "9000000001",
		SettlementType:   model.SettlementNewItem,
		TotalOldValue:    decimal.RequireFromString("10000.00"),
		TotalNewValue:    decimal.RequireFromString("30500.00"),
		DifferenceAmount: decimal.RequireFromString("20500.00"),
		QRToken:          "tok2",
		Items: []model.ExchangeItem{
			{Description: "Bangle", Purity: "22K", NetWeight: decimal.RequireFromString("5.000"), ItemTotal: decimal.RequireFromString("30500.00")},
		},
	}

	path, err := GenerateExchangeReceiptPDF(e, ReceiptOptions{StoragePath: t.TempDir(), BusinessName: "Test"})
	require.NoError(t, err)
	assert.NoError(t, api.ValidateFile(path, nil))
}
