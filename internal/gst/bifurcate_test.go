package gst_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"tallybridge/internal/domain"
	"tallybridge/internal/gst"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestBifurcate(t *testing.T) {
	t.Run("interstate_full_igst", func(t *testing.T) {
		b := gst.Bifurcate(d("1000"), d("18"), true)
		assert.True(t, b.IGST.Equal(d("180")), "igst = %s", b.IGST)
		assert.True(t, b.CGST.IsZero())
		assert.True(t, b.SGST.IsZero())
		assert.True(t, b.Total().Equal(d("180")))
	})

	t.Run("intrastate_even_split", func(t *testing.T) {
		b := gst.Bifurcate(d("1000"), d("18"), false)
		assert.True(t, b.IGST.IsZero())
		assert.True(t, b.CGST.Equal(d("90")), "cgst = %s", b.CGST)
		assert.True(t, b.SGST.Equal(d("90")), "sgst = %s", b.SGST)
	})

	t.Run("zero_rate", func(t *testing.T) {
		b := gst.Bifurcate(d("1000"), d("0"), true)
		assert.True(t, b.Total().IsZero())
	})

	t.Run("round_half_to_even", func(t *testing.T) {
		// 1001.25 * 5 / 200 = 25.03125 → banker's rounding gives 25.03
		b := gst.Bifurcate(d("1001.25"), d("5"), false)
		assert.True(t, b.CGST.Equal(d("25.03")), "cgst = %s", b.CGST)

		// 100.50 * 5 / 100 = 5.025 → rounds to the even neighbour 5.02
		b = gst.Bifurcate(d("100.50"), d("5"), true)
		assert.True(t, b.IGST.Equal(d("5.02")), "igst = %s", b.IGST)
	})

	t.Run("compound_rate", func(t *testing.T) {
		b := gst.Bifurcate(d("10000"), d("0.25"), true)
		assert.True(t, b.IGST.Equal(d("25")), "igst = %s", b.IGST)
	})
}

func TestTaxLedgerName(t *testing.T) {
	assert.Equal(t, "Input IGST 18%", gst.TaxLedgerName(domain.DirectionPurchase, domain.TaxTypeIGST, d("18")))
	assert.Equal(t, "Input CGST 9%", gst.TaxLedgerName(domain.DirectionPurchase, domain.TaxTypeCGST, d("9")))
	assert.Equal(t, "Output SGST 2.5%", gst.TaxLedgerName(domain.DirectionSales, domain.TaxTypeSGST, d("2.5")))
}

func TestValueLedgerName(t *testing.T) {
	assert.Equal(t, "Local Purchase 18%", gst.ValueLedgerName(domain.DirectionPurchase, false, d("18")))
	assert.Equal(t, "Interstate Purchase 28%", gst.ValueLedgerName(domain.DirectionPurchase, true, d("28")))
	assert.Equal(t, "Local Sale 5%", gst.ValueLedgerName(domain.DirectionSales, false, d("5")))
	assert.Equal(t, "Interstate Sale 0.25%", gst.ValueLedgerName(domain.DirectionSales, true, d("0.25")))
}
