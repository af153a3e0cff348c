package infra

// pdf.go: receipt generation with go-pdf/fpdf.
// Renders 80 mm roll-style receipts for bills and exchanges with:
//   - Business name header
//   - Document number and timestamp
//   - Item table (description, grade, net weight, line total)
//   - Tax split and bold total
//   - Payment lines (bills) or settlement summary (exchanges)
//   - Verification URL for the public lookup
//
// The output file is saved to storagePath/<kind>_<number>.pdf with the
// slashes of the document number replaced by dashes.

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BAHUBALISID/smj/internal/model"

	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"
)

// ReceiptOptions controls where a receipt goes and what it shows.
type ReceiptOptions struct {
	StoragePath  string
	BusinessName string
	// VerifyBaseURL is the public lookup root, e.g. https://shop.example/v1/public.
	// Receipts link to <root>/bills/<token> or <root>/exchanges/<token>.
	VerifyBaseURL string
}

func (o ReceiptOptions) verifyURL(kind, token string) string {
	return strings.TrimRight(o.VerifyBaseURL, "/") + "/" + kind + "s/" + token
}

func receiptPath(dir, kind, number string) string {
	return filepath.Join(dir, fmt.Sprintf("%s_%s.pdf", kind, strings.ReplaceAll(number, "/", "-")))
}

func rs(d decimal.Decimal) string { return "Rs." + d.StringFixed(2) }

type receipt struct {
	pdf      *fpdf.Fpdf
	pageW    float64
	contentW float64
}

func newReceipt(business, title string) *receipt {
	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           fpdf.SizeType{Wd: 80, Ht: 200},
	})
	pdf.SetMargins(4, 4, 4)
	pdf.SetAutoPageBreak(true, 6)
	pdf.AddPage()

	pageW, _ := pdf.GetPageSize()
	r := &receipt{pdf: pdf, pageW: pageW, contentW: pageW - 8}

	// ── Header ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(r.contentW, 7, business, "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 8)
	pdf.CellFormat(r.contentW, 5, title, "", 1, "C", false, 0, "")
	pdf.Ln(2)
	return r
}

func (r *receipt) separator() {
	r.pdf.Ln(1)
	r.pdf.Line(4, r.pdf.GetY(), r.pageW-4, r.pdf.GetY())
	r.pdf.Ln(2)
}

func (r *receipt) kv(label, value string, bold bool) {
	style := ""
	if bold {
		style = "B"
	}
	r.pdf.SetFont("Helvetica", style, 7)
	r.pdf.CellFormat(r.contentW*0.6, 4.5, label, "", 0, "L", false, 0, "")
	r.pdf.CellFormat(r.contentW*0.4, 4.5, value, "", 1, "R", false, 0, "")
}

type receiptLine struct {
	description string
	grade       string
	net         decimal.Decimal
	total       decimal.Decimal
}

func (r *receipt) items(lines []receiptLine) {
	col1 := r.contentW * 0.40
	col2 := r.contentW * 0.18
	col3 := r.contentW * 0.16
	col4 := r.contentW * 0.26

	r.pdf.SetFont("Helvetica", "B", 7)
	r.pdf.CellFormat(col1, 5, "Item", "B", 0, "L", false, 0, "")
	r.pdf.CellFormat(col2, 5, "Grade", "B", 0, "C", false, 0, "")
	r.pdf.CellFormat(col3, 5, "Net g", "B", 0, "R", false, 0, "")
	r.pdf.CellFormat(col4, 5, "Amount", "B", 1, "R", false, 0, "")

	r.pdf.SetFont("Helvetica", "", 7)
	for _, l := range lines {
		name := l.description
		if len(name) > 20 {
			name = name[:19] + "."
		}
		r.pdf.CellFormat(col1, 5, name, "", 0, "L", false, 0, "")
		r.pdf.CellFormat(col2, 5, l.grade, "", 0, "C", false, 0, "")
		r.pdf.CellFormat(col3, 5, l.net.StringFixed(3), "", 0, "R", false, 0, "")
		r.pdf.CellFormat(col4, 5, l.total.StringFixed(2), "", 1, "R", false, 0, "")
	}
}

func (r *receipt) footer(url string) {
	r.pdf.Ln(3)
	r.pdf.SetFont("Helvetica", "", 6)
	r.pdf.MultiCell(r.contentW, 3, "Verify: "+url, "", "C", false)
	r.pdf.Ln(1)
	r.pdf.SetFont("Helvetica", "I", 7)
	r.pdf.CellFormat(r.contentW, 4, "Thank you for your purchase", "", 1, "C", false, 0, "")
}

func (r *receipt) write(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("pdf: create storage dir: %w", err)
	}
	if err := r.pdf.OutputFileAndClose(path); err != nil {
		return fmt.Errorf("pdf: write file: %w", err)
	}
	return nil
}

// GenerateBillReceiptPDF renders the receipt of a bill loaded with its items
// and payments. Returns the path of the written file.
func GenerateBillReceiptPDF(b *model.Bill, opts ReceiptOptions) (string, error) {
	business := opts.BusinessName
	if b.BusinessName != nil && *b.BusinessName != "" {
		business = *b.BusinessName
	}
	title := "Tax Invoice"
	if b.BillType == model.BillTypeAdvance {
		title = "Advance Bill"
	}
	r := newReceipt(business, title)

	// ── Bill info ─────────────────────────────────────────────────────────────
	r.pdf.SetFont("Helvetica", "B", 8)
	r.pdf.CellFormat(r.contentW, 5, "Bill No "+b.BillNumber, "", 1, "L", false, 0, "")
	r.pdf.SetFont("Helvetica", "", 7)
	r.pdf.CellFormat(r.contentW, 4, b.CreatedAt.Format("02/01/2006  15:04"), "", 1, "L", false, 0, "")
	r.pdf.CellFormat(r.contentW, 4, b.CustomerName+"  "+b.CustomerPhone, "", 1, "L", false, 0, "")
	if b.GSTNumber != nil && *b.GSTNumber != "" {
		r.pdf.CellFormat(r.contentW, 4, "GSTIN "+*b.GSTNumber, "", 1, "L", false, 0, "")
	}
	r.separator()

	lines := make([]receiptLine, 0, len(b.Items))
	for _, it := range b.Items {
		lines = append(lines, receiptLine{
			description: it.Description,
			grade:       it.Purity,
			net:         it.NetWeight,
			total:       it.ItemTotal,
		})
	}
	r.items(lines)
	r.separator()

	// ── Totals ────────────────────────────────────────────────────────────────
	r.kv("Metal value", rs(b.MetalValue), false)
	r.kv("Making (net)", rs(b.MakingCharges.Sub(b.Discount)), false)
	if b.StoneCharge.IsPositive() {
		r.kv("Stone", rs(b.StoneCharge), false)
	}
	if b.HUIDCharge.IsPositive() {
		r.kv("HUID", rs(b.HUIDCharge), false)
	}
	r.kv("Taxable value", rs(b.TaxableValue), false)
	if b.IGST.IsPositive() {
		r.kv("IGST", rs(b.IGST), false)
	} else if b.CGST.IsPositive() || b.SGST.IsPositive() {
		r.kv("CGST", rs(b.CGST), false)
		r.kv("SGST", rs(b.SGST), false)
	}
	r.pdf.Ln(1)
	r.kv("TOTAL", rs(b.TotalAmount), true)

	// ── Payments ──────────────────────────────────────────────────────────────
	r.pdf.Ln(2)
	for _, p := range b.Payments {
		r.kv(p.PaymentNumber+" ("+p.PaymentMode+")", rs(p.Amount), false)
	}
	r.kv("Paid", rs(b.PaidAmount), false)
	r.kv("Balance", rs(b.RemainingAmount), true)
	if b.AdvanceLockDate != nil {
		r.kv("Rate locked until", b.AdvanceLockDate.Format("02/01/2006"), false)
	}

	r.footer(opts.verifyURL("bill", b.QRToken))

	path := receiptPath(opts.StoragePath, "bill", b.BillNumber)
	if err := r.write(path); err != nil {
		return "", err
	}
	return path, nil
}

// GenerateExchangeReceiptPDF renders the receipt of an exchange loaded with
// its items.
func GenerateExchangeReceiptPDF(e *model.Exchange, opts ReceiptOptions) (string, error) {
	r := newReceipt(opts.BusinessName, "Exchange Receipt")

	r.pdf.SetFont("Helvetica", "B", 8)
	r.pdf.CellFormat(r.contentW, 5, "Exchange No "+e.ExchangeNumber, "", 1, "L", false, 0, "")
	r.pdf.SetFont("Helvetica", "", 7)
	r.pdf.CellFormat(r.contentW, 4, e.CreatedAt.Format("02/01/2006  15:04"), "", 1, "L", false, 0, "")
	r.pdf.CellFormat(r.contentW, 4, e.CustomerName+"  "+e.CustomerPhone, "", 1, "L", false, 0, "")
	if e.OldBillNumber != nil && *e.OldBillNumber != "" {
		r.pdf.CellFormat(r.contentW, 4, "Against bill "+*e.OldBillNumber, "", 1, "L", false, 0, "")
	}
	r.separator()

	if len(e.Items) > 0 {
		lines := make([]receiptLine, 0, len(e.Items))
		for _, it := range e.Items {
			lines = append(lines, receiptLine{
				description: it.Description,
				grade:       it.Purity,
				net:         it.NetWeight,
				total:       it.ItemTotal,
			})
		}
		r.items(lines)
		r.separator()
	}

	r.kv("Old item value", rs(e.TotalOldValue), false)
	if e.SettlementType == model.SettlementCash {
		r.kv("Cash paid out", rs(e.CashAmount), false)
	} else {
		r.kv("New item value", rs(e.TotalNewValue), false)
	}
	r.pdf.Ln(1)
	r.kv("DIFFERENCE", rs(e.DifferenceAmount), true)

	r.footer(opts.verifyURL("exchange", e.QRToken))

	path := receiptPath(opts.StoragePath, "exchange", e.ExchangeNumber)
	if err := r.write(path); err != nil {
		return "", err
	}
	return path, nil
}
