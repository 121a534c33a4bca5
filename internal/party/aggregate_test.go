package party_test

import (
	"math/rand"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tallybridge/internal/domain"
	"tallybridge/internal/party"
)

func txn(gstin, name, inum string, taxable, tax int64) domain.NormalizedTransaction {
	taxableD := decimal.NewFromInt(taxable)
	taxD := decimal.NewFromInt(tax)
	return domain.NormalizedTransaction{
		PartyGSTIN:    gstin,
		PartyName:     name,
		InvoiceNumber: inum,
		TaxableValue:  taxableD,
		TotalTax:      taxD,
		InvoiceValue:  taxableD.Add(taxD),
	}
}

func TestAggregate(t *testing.T) {
	txns := []domain.NormalizedTransaction{
		txn("27AAACR5055K1Z7", "Reliance Traders", "P-1", 1000, 180),
		txn("27AAACR5055K1Z7", "", "P-2", 2000, 360),
		txn("07FGHIJ5678K2Z3", "Delhi Mart", "S-1", 500, 25),
	}

	m := party.Aggregate(txns)
	require.Len(t, m, 2)

	rel := m["27AAACR5055K1Z7"]
	require.NotNil(t, rel)
	assert.Equal(t, "Reliance Traders", rel.DisplayName)
	assert.Equal(t, "27", rel.StateCode)
	assert.Equal(t, 2, rel.InvoiceCount)
	assert.True(t, rel.TotalTaxableValue.Equal(decimal.NewFromInt(3000)))
	assert.True(t, rel.TotalTax.Equal(decimal.NewFromInt(540)))
	assert.True(t, rel.TotalInvoiceValue.Equal(decimal.NewFromInt(3540)))
}

func TestAggregate_NameFallbacks(t *testing.T) {
	t.Run("gstin_only_then_named", func(t *testing.T) {
		m := party.Aggregate([]domain.NormalizedTransaction{
			txn("27AAACR5055K1Z7", "", "P-1", 100, 18),
			txn("27AAACR5055K1Z7", "Reliance Traders", "P-2", 100, 18),
		})
		assert.Equal(t, "Reliance Traders", m["27AAACR5055K1Z7"].DisplayName)
	})

	t.Run("no_gstin_keyed_by_name", func(t *testing.T) {
		m := party.Aggregate([]domain.NormalizedTransaction{
			txn("", "Corner Shop", "C-1", 100, 5),
		})
		require.Len(t, m, 1)
		assert.Equal(t, "Corner Shop", m["CORNER SHOP"].DisplayName)
	})

	t.Run("b2c_bucket", func(t *testing.T) {
		m := party.Aggregate([]domain.NormalizedTransaction{
			txn("", "", "", 100, 5),
		})
		require.Len(t, m, 1)
		assert.Equal(t, party.UnregisteredDisplayName, m[party.UnregisteredDisplayName].DisplayName)
	})
}

func TestAggregate_OrderIndependence(t *testing.T) {
	base := []domain.NormalizedTransaction{
		txn("27AAACR5055K1Z7", "A", "1", 100, 18),
		txn("07FGHIJ5678K2Z3", "B", "2", 200, 10),
		txn("27AAACR5055K1Z7", "A", "3", 300, 54),
		txn("29KLMNO9012P3Z1", "C", "4", 400, 48),
		txn("", "", "5", 50, 0),
	}

	want := party.Aggregate(base)

	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 10; i++ {
		shuffled := make([]domain.NormalizedTransaction, len(base))
		copy(shuffled, base)
		rng.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })

		got := party.Aggregate(shuffled)
		require.Len(t, got, len(want))
		for key, w := range want {
			g := got[key]
			require.NotNil(t, g, "missing key %s", key)
			assert.Equal(t, w.InvoiceCount, g.InvoiceCount)
			assert.True(t, w.TotalInvoiceValue.Equal(g.TotalInvoiceValue))
		}
	}
}

func TestMerge_MatchesSingleFold(t *testing.T) {
	a := []domain.NormalizedTransaction{
		txn("27AAACR5055K1Z7", "A", "1", 100, 18),
		txn("07FGHIJ5678K2Z3", "B", "2", 200, 10),
	}
	b := []domain.NormalizedTransaction{
		txn("27AAACR5055K1Z7", "A", "3", 300, 54),
	}

	merged := party.Aggregate(a)
	party.Merge(merged, party.Aggregate(b))

	whole := party.Aggregate(append(append([]domain.NormalizedTransaction{}, a...), b...))
	require.Len(t, merged, len(whole))
	for key, w := range whole {
		g := merged[key]
		require.NotNil(t, g)
		assert.Equal(t, w.InvoiceCount, g.InvoiceCount)
		assert.True(t, w.TotalTaxableValue.Equal(g.TotalTaxableValue))
		assert.True(t, w.TotalTax.Equal(g.TotalTax))
	}
}

func TestSorted(t *testing.T) {
	m := party.Aggregate([]domain.NormalizedTransaction{
		txn("29KLMNO9012P3Z1", "Zeta Supplies", "1", 1, 0),
		txn("27AAACR5055K1Z7", "Alpha Traders", "2", 1, 0),
		txn("07FGHIJ5678K2Z3", "Midway Stores", "3", 1, 0),
	})
	sorted := party.Sorted(m)
	require.Len(t, sorted, 3)
	assert.Equal(t, "Alpha Traders", sorted[0].DisplayName)
	assert.Equal(t, "Midway Stores", sorted[1].DisplayName)
	assert.Equal(t, "Zeta Supplies", sorted[2].DisplayName)
}

func TestTotals(t *testing.T) {
	m := party.Aggregate([]domain.NormalizedTransaction{
		txn("27AAACR5055K1Z7", "A", "1", 1000, 180),
		txn("07FGHIJ5678K2Z3", "B", "2", 500, 25),
	})
	taxable, tax, value, invoices := party.Totals(m)
	assert.True(t, taxable.Equal(decimal.NewFromInt(1500)))
	assert.True(t, tax.Equal(decimal.NewFromInt(205)))
	assert.True(t, value.Equal(decimal.NewFromInt(1705)))
	assert.Equal(t, 2, invoices)
}
