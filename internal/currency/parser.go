package currency

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// Quote is a parsed rate for a currency code
type Quote struct {
	Code  string
	Value decimal.Decimal
}

// Fixed-width layout of a quote line: "USDEUR=X",0.8512
const (
	quoteCodeOffset  = 4
	quoteCodeLength  = 3
	quoteValueOffset = 11
	quoteValueLength = 6
)

// Quote formats accepted by NewQuoteParser
const (
	QuoteFormatFixed = "fixed"
	QuoteFormatCSV   = "csv"
)

var leadingNumber = regexp.MustCompile(`^\s*[+-]?(\d+(\.\d+)?|\.\d+)([eE][+-]?\d+)?`)

// NewQuoteParser returns the parser for a configured format
func NewQuoteParser(format string) (QuoteParser, error) {
	switch strings.ToLower(format) {
	case "", QuoteFormatFixed:
		return FixedWidthParser{}, nil
	case QuoteFormatCSV:
		return CSVParser{}, nil
	default:
		return nil, fmt.Errorf("unknown quote format %q", format)
	}
}

// FixedWidthParser reads quotes by character position
type FixedWidthParser struct{}

// Parse returns the non-zero quotes in body
func (FixedWidthParser) Parse(body []byte) []Quote {
	var quotes []Quote
	for _, line := range strings.Split(strings.TrimSpace(string(body)), "\n") {
		code := normalizeCode(window(line, quoteCodeOffset, quoteCodeLength))
		value, ok := parseLeadingDecimal(window(line, quoteValueOffset, quoteValueLength))
		if code == "" || !ok || value.IsZero() {
			continue
		}
		quotes = append(quotes, Quote{Code: code, Value: value})
	}
	return quotes
}

// CSVParser reads "PAIR=X",value records
type CSVParser struct{}

// Parse returns the non-zero quotes in body. Malformed records are skipped.
func (CSVParser) Parse(body []byte) []Quote {
	r := csv.NewReader(bytes.NewReader(body))
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	var quotes []Quote
	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil || len(record) < 2 {
			continue
		}

		pair := strings.TrimSuffix(strings.ToUpper(strings.TrimSpace(record[0])), "=X")
		if len(pair) < 2*quoteCodeLength {
			continue
		}

		value, err := decimal.NewFromString(strings.TrimSpace(record[1]))
		if err != nil || value.IsZero() {
			continue
		}

		quotes = append(quotes, Quote{
			Code:  normalizeCode(pair[len(pair)-quoteCodeLength:]),
			Value: value,
		})
	}
	return quotes
}

// window returns up to length runes of s starting at offset
func window(s string, offset, length int) string {
	runes := []rune(s)
	if offset >= len(runes) {
		return ""
	}
	end := offset + length
	if end > len(runes) {
		end = len(runes)
	}
	return string(runes[offset:end])
}

// parseLeadingDecimal reads the numeric prefix of s, ignoring trailing text
func parseLeadingDecimal(s string) (decimal.Decimal, bool) {
	match := strings.TrimPrefix(strings.TrimSpace(leadingNumber.FindString(s)), "+")
	if match == "" {
		return decimal.Zero, false
	}
	value, err := decimal.NewFromString(match)
	if err != nil {
		return decimal.Zero, false
	}
	return value, true
}
