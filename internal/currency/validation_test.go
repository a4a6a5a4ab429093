package currency

import (
	"errors"
	"testing"

	"github.com/richxcame/currencies/pkg/validation"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validData() CurrencyData {
	return CurrencyData{
		Code:          "eur",
		Title:         "Euro",
		SymbolRight:   "€",
		DecimalPlace:  2,
		DecimalPoint:  ",",
		ThousandPoint: " ",
		Value:         decimal.RequireFromString("0.85"),
		Enabled:       true,
	}
}

func TestValidateData(t *testing.T) {
	tests := []struct {
		name           string
		modify         func(d *CurrencyData)
		withCode       bool
		expectedFields []string
	}{
		{"valid", func(d *CurrencyData) {}, true, nil},
		{"left symbol alone is enough", func(d *CurrencyData) { d.SymbolRight = ""; d.SymbolLeft = "€" }, true, nil},
		{"missing code", func(d *CurrencyData) { d.Code = "" }, true, []string{"code"}},
		{"code too long", func(d *CurrencyData) { d.Code = "euro" }, true, []string{"code"}},
		{"code with digits", func(d *CurrencyData) { d.Code = "e1r" }, true, []string{"code"}},
		{"code ignored on update", func(d *CurrencyData) { d.Code = "" }, false, nil},
		{"missing title", func(d *CurrencyData) { d.Title = "" }, true, []string{"title"}},
		{"missing both symbols", func(d *CurrencyData) { d.SymbolRight = "" }, true, []string{"symbol_left", "symbol_right"}},
		{"negative decimal place", func(d *CurrencyData) { d.DecimalPlace = -1 }, true, []string{"decimal_place"}},
		{"multi-character separator", func(d *CurrencyData) { d.DecimalPoint = "::" }, true, []string{"decimal_point"}},
		{"multi-byte separator is one character", func(d *CurrencyData) { d.ThousandPoint = "’" }, true, nil},
		{"zero value", func(d *CurrencyData) { d.Value = decimal.Zero }, true, []string{"value"}},
		{"negative value", func(d *CurrencyData) { d.Value = decimal.NewFromInt(-1) }, true, []string{"value"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := validData()
			tt.modify(&data)

			err := validateData(data, tt.withCode)
			if tt.expectedFields == nil {
				assert.NoError(t, err)
				return
			}

			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidParameter))

			var verr *validation.ValidationError
			require.True(t, errors.As(err, &verr))
			for _, field := range tt.expectedFields {
				assert.Contains(t, verr.Errors, field)
			}
			assert.Len(t, verr.Errors, len(tt.expectedFields))
		})
	}
}

func TestValidateData_Messages(t *testing.T) {
	data := validData()
	data.SymbolRight = ""

	err := validateData(data, true)
	details := detailsOf(err)

	assert.Equal(t, "symbol_left is required when symbol_right is not present", details["symbol_left"])
	assert.Equal(t, "symbol_right is required when symbol_left is not present", details["symbol_right"])
}
