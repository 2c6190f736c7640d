package service

import (
	"testing"

	"github.com/shopspring/decimal"
)

var testTaxRate = decimal.RequireFromString("0.0825")

func TestCalculateTotalsNoDiscount(t *testing.T) {
	lines := []CheckoutLine{
		{UnitPriceCents: 1999, Quantity: 2},
		{UnitPriceCents: 2000, Quantity: 1},
	}
	totals := CalculateTotals(lines, 0, testTaxRate)
	if totals.SubtotalCents != 5998 {
		t.Fatalf("expected subtotal 5998, got %d", totals.SubtotalCents)
	}
	if totals.DiscountCents != 0 {
		t.Fatalf("expected discount 0, got %d", totals.DiscountCents)
	}
	// 5998 * 0.0825 = 494.835 -> 495
	if totals.TaxCents != 495 {
		t.Fatalf("expected tax 495, got %d", totals.TaxCents)
	}
	if totals.TotalCents != 6493 {
		t.Fatalf("expected total 6493, got %d", totals.TotalCents)
	}
}

func TestCalculateTotalsWithDiscount(t *testing.T) {
	lines := []CheckoutLine{
		{UnitPriceCents: 1999, Quantity: 2},
		{UnitPriceCents: 2000, Quantity: 1},
	}
	totals := CalculateTotals(lines, 10, testTaxRate)
	// 5998 * 10% = 599.8 -> 600
	if totals.DiscountCents != 600 {
		t.Fatalf("expected discount 600, got %d", totals.DiscountCents)
	}
	// (5998 - 600) * 0.0825 = 445.335 -> 445
	if totals.TaxCents != 445 {
		t.Fatalf("expected tax 445, got %d", totals.TaxCents)
	}
	if totals.TotalCents != 5843 {
		t.Fatalf("expected total 5843, got %d", totals.TotalCents)
	}
}

func TestCalculateTotalsRoundHalfUp(t *testing.T) {
	// 50 * 0.0825 = 4.125 -> 4
	totals := CalculateTotals([]CheckoutLine{{UnitPriceCents: 50, Quantity: 1}}, 0, testTaxRate)
	if totals.TaxCents != 4 {
		t.Fatalf("expected tax 4, got %d", totals.TaxCents)
	}
	// 折扣 0.5 分向上取整：101 * 50% = 50.5 -> 51
	totals = CalculateTotals([]CheckoutLine{{UnitPriceCents: 101, Quantity: 1}}, 50, testTaxRate)
	if totals.DiscountCents != 51 {
		t.Fatalf("expected discount 51, got %d", totals.DiscountCents)
	}
}

func TestCalculateTotalsFullDiscount(t *testing.T) {
	totals := CalculateTotals([]CheckoutLine{{UnitPriceCents: 1000, Quantity: 3}}, 100, testTaxRate)
	if totals.DiscountCents != 3000 {
		t.Fatalf("expected discount 3000, got %d", totals.DiscountCents)
	}
	if totals.TaxCents != 0 || totals.TotalCents != 0 {
		t.Fatalf("expected zero tax and total, got tax=%d total=%d", totals.TaxCents, totals.TotalCents)
	}
}

func TestCalculateTotalsClampsExcessPercent(t *testing.T) {
	totals := CalculateTotals([]CheckoutLine{{UnitPriceCents: 1000, Quantity: 1}}, 150, testTaxRate)
	if totals.DiscountCents != 1000 {
		t.Fatalf("expected discount clamped to 1000, got %d", totals.DiscountCents)
	}
	if totals.TotalCents != 0 {
		t.Fatalf("expected total 0, got %d", totals.TotalCents)
	}
}

func TestCalculateTotalsSkipsInvalidLines(t *testing.T) {
	lines := []CheckoutLine{
		{UnitPriceCents: 1000, Quantity: 0},
		{UnitPriceCents: -100, Quantity: 2},
		{UnitPriceCents: 500, Quantity: 2},
	}
	totals := CalculateTotals(lines, 0, testTaxRate)
	if totals.SubtotalCents != 1000 {
		t.Fatalf("expected subtotal 1000, got %d", totals.SubtotalCents)
	}
}

func TestCalculateTotalsEmpty(t *testing.T) {
	totals := CalculateTotals(nil, 10, testTaxRate)
	if totals.SubtotalCents != 0 || totals.DiscountCents != 0 || totals.TaxCents != 0 || totals.TotalCents != 0 {
		t.Fatalf("expected all-zero totals, got %+v", totals)
	}
}

func TestCalculateTotalsZeroTaxRate(t *testing.T) {
	totals := CalculateTotals([]CheckoutLine{{UnitPriceCents: 1999, Quantity: 1}}, 0, decimal.Zero)
	if totals.TaxCents != 0 {
		t.Fatalf("expected tax 0, got %d", totals.TaxCents)
	}
	if totals.TotalCents != 1999 {
		t.Fatalf("expected total 1999, got %d", totals.TotalCents)
	}
}
