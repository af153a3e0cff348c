// Package pricing turns raw jewellery line measurements and a resolved metal
// rate into the monetary fields of an invoice line.
//
// Every step rounds on its own: weights to 3 places, money to 2. Totals are
// sums of already-rounded components, so a line total can differ from the
// rounded sum of the unrounded parts. Stored amounts depend on that.
package pricing

import (
	"github.com/BAHUBALISID/smj/internal/tax"

	"github.com/shopspring/decimal"
)

const (
	WeightPlaces = 3
	MoneyPlaces  = 2
)

var hundred = decimal.NewFromInt(100)

// NetWeight is gross − less rounded to 3 places, never negative.
func NetWeight(gross, less decimal.Decimal) decimal.Decimal {
	nw := gross.Sub(less).Round(WeightPlaces)
	if nw.IsNegative() {
		return decimal.Zero
	}
	return nw
}

// MetalValue is netWeight × rate rounded to 2 places.
func MetalValue(netWeight, rate decimal.Decimal) decimal.Decimal {
	return netWeight.Mul(rate).Round(MoneyPlaces)
}

// NetMakingCharges applies discountPercent to making.
func NetMakingCharges(making, discountPercent decimal.Decimal) decimal.Decimal {
	return making.Mul(hundred.Sub(discountPercent)).Div(hundred).Round(MoneyPlaces)
}

// TaxableValue is the pre-tax line amount.
func TaxableValue(metalValue, netMaking, stone, huid decimal.Decimal) decimal.Decimal {
	return metalValue.Add(netMaking).Add(stone).Add(huid).Round(MoneyPlaces)
}

// ItemTotal adds the tax components to the taxable value.
func ItemTotal(taxable decimal.Decimal, s tax.Split) decimal.Decimal {
	return taxable.Add(s.Total()).Round(MoneyPlaces)
}

// Line is the priced input of a single item.
type Line struct {
	GrossWeight     decimal.Decimal
	LessWeight      decimal.Decimal
	Rate            decimal.Decimal
	MakingCharges   decimal.Decimal
	DiscountPercent decimal.Decimal
	StoneCharge     decimal.Decimal
	HUIDCharge      decimal.Decimal
	GSTPercent      decimal.Decimal
	Regime          tax.Regime
}

// Breakdown is every computed field of a line.
type Breakdown struct {
	GrossWeight   decimal.Decimal
	NetWeight     decimal.Decimal
	Rate          decimal.Decimal
	MetalValue    decimal.Decimal
	MakingCharges decimal.Decimal // gross
	MakingNet     decimal.Decimal
	Discount      decimal.Decimal
	StoneCharge   decimal.Decimal
	HUIDCharge    decimal.Decimal
	TaxableValue  decimal.Decimal
	Tax           tax.Split
	Total         decimal.Decimal
}

// Price computes the full breakdown of l.
func Price(l Line) Breakdown {
	gross := l.GrossWeight.Round(WeightPlaces)
	making := l.MakingCharges.Round(MoneyPlaces)
	stone := l.StoneCharge.Round(MoneyPlaces)
	huid := l.HUIDCharge.Round(MoneyPlaces)

	nw := NetWeight(gross, l.LessWeight.Round(WeightPlaces))
	mv := MetalValue(nw, l.Rate)
	mn := NetMakingCharges(making, l.DiscountPercent)
	taxable := TaxableValue(mv, mn, stone, huid)
	split := tax.Compute(taxable, l.GSTPercent, l.Regime)

	return Breakdown{
		GrossWeight:   gross,
		NetWeight:     nw,
		Rate:          l.Rate,
		MetalValue:    mv,
		MakingCharges: making,
		MakingNet:     mn,
		Discount:      making.Sub(mn),
		StoneCharge:   stone,
		HUIDCharge:    huid,
		TaxableValue:  taxable,
		Tax:           split,
		Total:         ItemTotal(taxable, split),
	}
}

// Summary aggregates a set of priced lines for an invoice header.
type Summary struct {
	GrossWeight   decimal.Decimal
	NetWeight     decimal.Decimal
	MetalValue    decimal.Decimal
	MakingCharges decimal.Decimal
	Discount      decimal.Decimal
	StoneCharge   decimal.Decimal
	HUIDCharge    decimal.Decimal
	TaxableValue  decimal.Decimal
	CGST          decimal.Decimal
	SGST          decimal.Decimal
	IGST          decimal.Decimal
	Total         decimal.Decimal
}

// Summarize sums the rounded components of lines.
func Summarize(lines []Breakdown) Summary {
	s := Summary{
		GrossWeight: decimal.Zero, NetWeight: decimal.Zero, MetalValue: decimal.Zero,
		MakingCharges: decimal.Zero, Discount: decimal.Zero, StoneCharge: decimal.Zero,
		HUIDCharge: decimal.Zero, TaxableValue: decimal.Zero, CGST: decimal.Zero,
		SGST: decimal.Zero, IGST: decimal.Zero, Total: decimal.Zero,
	}
	for _, b := range lines {
		s.GrossWeight = s.GrossWeight.Add(b.GrossWeight)
		s.NetWeight = s.NetWeight.Add(b.NetWeight)
		s.MetalValue = s.MetalValue.Add(b.MetalValue)
		s.MakingCharges = s.MakingCharges.Add(b.MakingCharges)
		s.Discount = s.Discount.Add(b.Discount)
		s.StoneCharge = s.StoneCharge.Add(b.StoneCharge)
		s.HUIDCharge = s.HUIDCharge.Add(b.HUIDCharge)
		s.TaxableValue = s.TaxableValue.Add(b.TaxableValue)
		s.CGST = s.CGST.Add(b.Tax.CGST)
		s.SGST = s.SGST.Add(b.Tax.SGST)
		s.IGST = s.IGST.Add(b.Tax.IGST)
		s.Total = s.Total.Add(b.Total)
	}
	return s
}
