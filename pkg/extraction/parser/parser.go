package parser

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/davidchanit/receipt-scanner-backend/domain"
)

const (
	UnknownVendor = "Unknown Vendor"
	SentinelItem  = "General Items"

	// Flat tax heuristic applied to the item subtotal. The parser never
	// reads literal tax/total lines from the text.
	taxRate = 0.10
)

var headerKeywords = []string{
	"receipt", "invoice", "bill", "date", "time", "table",
	"quittung", "rechnung", "beleg", "datum", "uhrzeit", "tisch",
}

var aggregateKeywords = []string{
	"total", "tax", "subtotal", "balance", "mwst", "vat",
}

// Ordered date patterns: numeric day-first, numeric year-first, then
// English month names (abbreviated and full). The first match of the
// first matching pattern wins.
var datePatterns = []*regexp.Regexp{
	regexp.MustCompile(`\b\d{1,2}[/-]\d{1,2}[/-]\d{2,4}\b`),
	regexp.MustCompile(`\b\d{4}[/-]\d{1,2}[/-]\d{1,2}\b`),
	regexp.MustCompile(`\b\d{1,2}\s+(?:Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)\.?\s+\d{2,4}\b`),
	regexp.MustCompile(`\b\d{1,2}\s+(?:January|February|March|April|May|June|July|August|September|October|November|December)\s+\d{2,4}\b`),
}

// Currency signatures in priority order; the first signature found
// anywhere in the text decides the currency.
var currencySignatures = []struct {
	code   string
	tokens []string
}{
	{"CHF", []string{"CHF", "Swiss", "Schweiz"}},
	{"USD", []string{"$", "USD", "US$"}},
	{"EUR", []string{"€", "EUR"}},
	{"GBP", []string{"£", "GBP"}},
	{"CAD", []string{"CAD"}},
	{"AUD", []string{"AUD"}},
}

var (
	priceTokenRegex      = regexp.MustCompile(`(?:CHF|USD|EUR|GBP|CAD|AUD|US\$|[$€£])?\s*(\d+[.,]\d{2})\s*$`)
	whitespaceRegex      = regexp.MustCompile(`\s+`)
	corporateSuffixRegex = regexp.MustCompile(`(?i)\s+(gmbh|ag|ltd|inc|corp|llc|restaurant|hotel|cafe|bar)\.?$`)
)

// Parse turns raw OCR text into a best-effort receipt. It never fails:
// every field falls back to a documented default when the text gives
// nothing usable.
func Parse(text string) domain.ParsedReceipt {
	lines := splitLines(text)

	items := extractItems(lines)

	var subtotal float64
	for _, item := range items {
		subtotal += item.Cost
	}
	tax := round2(subtotal * taxRate)
	total := round2(subtotal + tax)

	return domain.ParsedReceipt{
		VendorName: extractVendorName(lines),
		Date:       extractDate(text),
		Currency:   extractCurrency(text),
		Items:      items,
		Tax:        tax,
		Total:      total,
	}
}

func splitLines(text string) []string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(strings.TrimSuffix(line, "\r"))
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// extractVendorName scans at most the first five lines for something that
// looks like a store name rather than a header, address or number.
func extractVendorName(lines []string) string {
	limit := 5
	if len(lines) < limit {
		limit = len(lines)
	}

	for _, line := range lines[:limit] {
		if len(line) <= 3 {
			continue
		}
		if startsWithDigit(line) {
			continue
		}
		if isAllUpper(line) {
			continue
		}
		if containsHeaderKeyword(line) {
			continue
		}

		name := whitespaceRegex.ReplaceAllString(line, " ")
		for {
			stripped := corporateSuffixRegex.ReplaceAllString(name, "")
			if stripped == name {
				break
			}
			name = stripped
		}
		name = strings.TrimSpace(name)
		if name != "" {
			return name
		}
	}

	return UnknownVendor
}

func startsWithDigit(line string) bool {
	for _, r := range line {
		return unicode.IsDigit(r)
	}
	return false
}

// isAllUpper reports whether the line consists entirely of upper-case
// letters and spaces, which on receipts is usually a banner, not a name.
func isAllUpper(line string) bool {
	for _, r := range line {
		if r == ' ' {
			continue
		}
		if !unicode.IsUpper(r) {
			return false
		}
	}
	return true
}

func containsHeaderKeyword(line string) bool {
	lower := strings.ToLower(line)
	for _, keyword := range headerKeywords {
		if strings.Contains(lower, keyword) {
			return true
		}
	}
	return false
}

func extractDate(text string) string {
	for _, pattern := range datePatterns {
		if match := pattern.FindString(text); match != "" {
			return match
		}
	}
	return time.Now().Format("1/2/2006")
}

func extractCurrency(text string) string {
	for _, sig := range currencySignatures {
		for _, token := range sig.tokens {
			if strings.Contains(text, token) {
				return sig.code
			}
		}
	}
	return "USD"
}

// extractItems pulls "<name> <price>" lines. Lines whose remaining name is
// too short or starts with an aggregate keyword (TOTAL, TAX, ...) are not
// items. A single sentinel item is substituted when nothing qualifies.
func extractItems(lines []string) []domain.ParsedItem {
	var items []domain.ParsedItem

	for _, line := range lines {
		loc := priceTokenRegex.FindStringSubmatchIndex(line)
		if loc == nil {
			continue
		}

		costText := strings.Replace(line[loc[2]:loc[3]], ",", ".", 1)
		cost, err := strconv.ParseFloat(costText, 64)
		if err != nil {
			continue
		}

		name := strings.TrimSpace(line[:loc[0]])
		if len([]rune(name)) <= 2 {
			continue
		}
		if isAggregateLine(name) {
			continue
		}

		items = append(items, domain.ParsedItem{Name: name, Cost: cost})
	}

	if len(items) == 0 {
		items = []domain.ParsedItem{{Name: SentinelItem, Cost: 0}}
	}
	return items
}

func isAggregateLine(name string) bool {
	lower := strings.ToLower(name)
	for _, keyword := range aggregateKeywords {
		if strings.HasPrefix(lower, keyword) {
			return true
		}
	}
	return false
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
