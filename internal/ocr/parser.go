package ocr

import (
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Heuristic field extraction over recognized invoice text. Targets
// bilingual Hebrew/English invoices; everything here is best effort and
// the caller treats empty fields as "not found".

// supplierNameConfidence is fixed: "first non-empty line is the issuer"
// is a naive heuristic, not a learned field.
const supplierNameConfidence = 0.7

// taxIDScanLines bounds the free-standing 9-digit search to the invoice
// header.
const taxIDScanLines = 3

var (
	taxIDPattern = regexp.MustCompile(`\b(\d{9})\b`)

	invoiceNumberPattern = regexp.MustCompile(`(?i)(?:invoice|חשבונית|מס['׳]|מספר)[\s:#]*([A-Za-z0-9\-/]+)`)

	datePattern = regexp.MustCompile(`(\d{1,2})[/.\-](\d{1,2})[/.\-](\d{2,4})`)

	totalPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(?:total|סה["״׳]כ|סך הכל)[\s:]*₪?\s*([\d,]+(?:\.\d{1,2})?)`),
		regexp.MustCompile(`(?:לתשלום|לשלם)[\s:]*₪?\s*([\d,]+(?:\.\d{1,2})?)`),
	}

	vatPattern = regexp.MustCompile(`(?i)(?:vat|מע["״׳]מ)[\s:]*₪?\s*([\d,]+(?:\.\d{1,2})?)`)
)

// Parse runs the extraction heuristics over recognized text.
func Parse(fullText string) *Result {
	result := &Result{
		LineItems:   []LineItem{},
		ProcessedAt: time.Now().UTC(),
	}

	lines := nonEmptyLines(fullText)
	if len(lines) == 0 {
		return result
	}

	result.Supplier = &SupplierCandidate{
		Name:       lines[0],
		TaxID:      findTaxID(lines),
		Confidence: supplierNameConfidence,
	}

	if m := invoiceNumberPattern.FindStringSubmatch(fullText); m != nil {
		result.InvoiceNumber = m[1]
	}

	result.IssueDate = findDate(fullText)
	result.TotalAmount = findAmount(fullText, totalPatterns...)
	result.VATAmount = findAmount(fullText, vatPattern)

	return result
}

func nonEmptyLines(text string) []string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// findTaxID scans the first few lines for a free-standing 9-digit token
// (Israeli company-id format).
func findTaxID(lines []string) string {
	limit := taxIDScanLines
	if len(lines) < limit {
		limit = len(lines)
	}
	for _, line := range lines[:limit] {
		if m := taxIDPattern.FindStringSubmatch(line); m != nil {
			return m[1]
		}
	}
	return ""
}

// findDate returns the first date-like token. Two-digit years pivot at
// 50: 51-99 resolve to the 1900s, everything else to the 2000s.
func findDate(text string) *time.Time {
	m := datePattern.FindStringSubmatch(text)
	if m == nil {
		return nil
	}

	day := atoi(m[1])
	month := atoi(m[2])
	year := atoi(m[3])

	if len(m[3]) <= 2 {
		if year > 50 {
			year += 1900
		} else {
			year += 2000
		}
	}

	if month < 1 || month > 12 || day < 1 || day > 31 {
		return nil
	}

	date := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	// Reject dates the calendar normalized away, e.g. 31/2.
	if date.Day() != day || date.Month() != time.Month(month) || date.Year() != year {
		return nil
	}
	return &date
}

// findAmount returns the first labeled amount, with thousands
// separators stripped. Patterns are tried in order.
func findAmount(text string, patterns ...*regexp.Regexp) *decimal.Decimal {
	for _, pattern := range patterns {
		m := pattern.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		raw := strings.ReplaceAll(m[1], ",", "")
		amount, err := decimal.NewFromString(raw)
		if err != nil {
			continue
		}
		return &amount
	}
	return nil
}

func atoi(s string) int {
	n := 0
	for _, r := range s {
		n = n*10 + int(r-'0')
	}
	return n
}
