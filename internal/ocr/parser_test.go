package ocr

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseHebrewInvoice(t *testing.T) {
	text := "חברת הדפסות בע\"מ\n" +
		"ח.פ 514455667\n" +
		"חשבונית מס' 2024-117\n" +
		"תאריך: 05/03/24\n" +
		"סה״כ: 1,234.50\n" +
		"מע״מ: 179.30\n"

	result := Parse(text)

	require.NotNil(t, result.Supplier)
	assert.Equal(t, "חברת הדפסות בע\"מ", result.Supplier.Name)
	assert.Equal(t, "514455667", result.Supplier.TaxID)
	assert.Equal(t, supplierNameConfidence, result.Supplier.Confidence)

	assert.Equal(t, "2024-117", result.InvoiceNumber)

	require.NotNil(t, result.IssueDate)
	assert.Equal(t, time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC), *result.IssueDate)

	require.NotNil(t, result.TotalAmount)
	assert.True(t, result.TotalAmount.Equal(decimal.RequireFromString("1234.50")))

	require.NotNil(t, result.VATAmount)
	assert.True(t, result.VATAmount.Equal(decimal.RequireFromString("179.30")))
}

func TestParseEnglishInvoice(t *testing.T) {
	text := "Acme Hosting Ltd\n" +
		"Invoice #INV-4401\n" +
		"Date: 12.01.2023\n" +
		"VAT 41.99\n" +
		"Total: 289.99\n"

	result := Parse(text)

	require.NotNil(t, result.Supplier)
	assert.Equal(t, "Acme Hosting Ltd", result.Supplier.Name)
	assert.Empty(t, result.Supplier.TaxID)

	assert.Equal(t, "INV-4401", result.InvoiceNumber)

	require.NotNil(t, result.IssueDate)
	assert.Equal(t, time.Date(2023, time.January, 12, 0, 0, 0, 0, time.UTC), *result.IssueDate)

	require.NotNil(t, result.TotalAmount)
	assert.True(t, result.TotalAmount.Equal(decimal.RequireFromString("289.99")))
	require.NotNil(t, result.VATAmount)
	assert.True(t, result.VATAmount.Equal(decimal.RequireFromString("41.99")))
}

func TestParsePaymentDueLabel(t *testing.T) {
	result := Parse("ספקים בע\"מ\nלתשלום: ₪ 512.00\n")

	require.NotNil(t, result.TotalAmount)
	assert.True(t, result.TotalAmount.Equal(decimal.RequireFromString("512.00")))
}

func TestParseEmptyText(t *testing.T) {
	result := Parse("   \n\n  ")

	assert.Nil(t, result.Supplier)
	assert.Empty(t, result.InvoiceNumber)
	assert.Nil(t, result.IssueDate)
	assert.Nil(t, result.TotalAmount)
	assert.Nil(t, result.VATAmount)
	assert.NotNil(t, result.LineItems)
}

func TestFindTaxIDOnlyScansHeader(t *testing.T) {
	text := "Supplier\nsecond line\nthird line\nfourth 123456789\n"

	result := Parse(text)

	require.NotNil(t, result.Supplier)
	assert.Empty(t, result.Supplier.TaxID)
}

func TestFindDateCenturyPivot(t *testing.T) {
	tests := []struct {
		name string
		text string
		want time.Time
	}{
		{"two digit year in 2000s", "01/02/24", time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC)},
		{"two digit year in 1900s", "01/02/99", time.Date(1999, time.February, 1, 0, 0, 0, 0, time.UTC)},
		{"pivot year maps forward", "01/02/50", time.Date(2050, time.February, 1, 0, 0, 0, 0, time.UTC)},
		{"four digit year", "15-06-2022", time.Date(2022, time.June, 15, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := findDate(tt.text)
			require.NotNil(t, got)
			assert.Equal(t, tt.want, *got)
		})
	}
}

func TestFindDateRejectsImpossibleDates(t *testing.T) {
	assert.Nil(t, findDate("31/02/2024"))
	assert.Nil(t, findDate("00/10/2024"))
	assert.Nil(t, findDate("no dates here"))
}

func TestFindAmountStripsThousandsSeparators(t *testing.T) {
	amount := findAmount("Total: 12,345.67", totalPatterns...)

	require.NotNil(t, amount)
	assert.True(t, amount.Equal(decimal.RequireFromString("12345.67")))
}

func TestResultToMap(t *testing.T) {
	total := decimal.RequireFromString("100.00")
	issue := time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC)
	result := &Result{
		Supplier:      &SupplierCandidate{Name: "Acme", TaxID: "514455667", Confidence: 0.7},
		InvoiceNumber: "INV-1",
		IssueDate:     &issue,
		TotalAmount:   &total,
		LineItems:     []LineItem{},
		Confidence:    0.91,
		ProcessedAt:   time.Now().UTC(),
	}

	m := result.ToMap()

	assert.Equal(t, "INV-1", m["invoice_number"])
	assert.Equal(t, "2024-03-05", m["issue_date"])
	assert.Equal(t, "100", m["total_amount"])
	assert.Equal(t, 0.91, m["confidence"])
	assert.NotContains(t, m, "vat_amount")

	sup, ok := m["supplier"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "Acme", sup["name"])
}
