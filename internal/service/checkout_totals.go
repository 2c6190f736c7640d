package service

import (
	"github.com/shopspring/decimal"
)

// CheckoutLine 结算输入行
type CheckoutLine struct {
	UnitPriceCents int64
	Quantity       int
}

// CheckoutTotals 结算金额汇总（单位：分）
type CheckoutTotals struct {
	SubtotalCents int64 `json:"subtotal_cents"`
	DiscountCents int64 `json:"discount_cents"`
	TaxCents      int64 `json:"tax_cents"`
	TotalCents    int64 `json:"total_cents"`
}

var percentBase = decimal.NewFromInt(100)

// CalculateTotals 计算结算金额。
// 小计为各行 单价×数量 之和；折扣 = round(小计 × pctOff/100)；
// 税额 = round((小计 - 折扣) × 税率)；实付 = 小计 - 折扣 + 税额。
// 每步四舍五入到分（round half up）。
func CalculateTotals(lines []CheckoutLine, pctOff int, taxRate decimal.Decimal) CheckoutTotals {
	var subtotal int64
	for _, line := range lines {
		if line.Quantity <= 0 || line.UnitPriceCents < 0 {
			continue
		}
		subtotal += line.UnitPriceCents * int64(line.Quantity)
	}

	var discount int64
	if pctOff > 0 {
		if pctOff > 100 {
			pctOff = 100
		}
		discount = decimal.NewFromInt(subtotal).
			Mul(decimal.NewFromInt(int64(pctOff))).
			Div(percentBase).
			Round(0).
			IntPart()
	}

	taxable := subtotal - discount
	tax := decimal.NewFromInt(taxable).
		Mul(taxRate).
		Round(0).
		IntPart()

	return CheckoutTotals{
		SubtotalCents: subtotal,
		DiscountCents: discount,
		TaxCents:      tax,
		TotalCents:    taxable + tax,
	}
}
