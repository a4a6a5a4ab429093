package currency

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Defaults applied when a currency is added without explicit formatting rules
const (
	DefaultDecimalPlace  = 2
	DefaultDecimalPoint  = "."
	DefaultThousandPoint = " "
)

// Currency represents a registered currency
type Currency struct {
	Code          string          `json:"code" db:"code"`
	Title         string          `json:"title" db:"title"`
	SymbolLeft    string          `json:"symbol_left" db:"symbol_left"`
	SymbolRight   string          `json:"symbol_right" db:"symbol_right"`
	DecimalPlace  int             `json:"decimal_place" db:"decimal_place"`
	DecimalPoint  string          `json:"decimal_point" db:"decimal_point"`
	ThousandPoint string          `json:"thousand_point" db:"thousand_point"`
	Value         decimal.Decimal `json:"value" db:"value"`
	Enabled       bool            `json:"enabled" db:"enabled"`
	CreatedAt     time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at" db:"updated_at"`
}

// data returns the persisted shape of the currency
func (c Currency) data() CurrencyData {
	return CurrencyData{
		Code:          c.Code,
		Title:         c.Title,
		SymbolLeft:    c.SymbolLeft,
		SymbolRight:   c.SymbolRight,
		DecimalPlace:  c.DecimalPlace,
		DecimalPoint:  c.DecimalPoint,
		ThousandPoint: c.ThousandPoint,
		Value:         c.Value,
		Enabled:       c.Enabled,
	}
}

// CurrencyData is the shape handed to a Store on create and update
type CurrencyData struct {
	Code          string          `json:"code" validate:"required,len=3,alpha"`
	Title         string          `json:"title" validate:"required,max=255"`
	SymbolLeft    string          `json:"symbol_left" validate:"required_without=SymbolRight,max=12"`
	SymbolRight   string          `json:"symbol_right" validate:"required_without=SymbolLeft,max=12"`
	DecimalPlace  int             `json:"decimal_place" validate:"gte=0"`
	DecimalPoint  string          `json:"decimal_point" validate:"max=1"`
	ThousandPoint string          `json:"thousand_point" validate:"max=1"`
	Value         decimal.Decimal `json:"value"`
	Enabled       bool            `json:"enabled"`
}

// Value is a currency rate input: either a fixed amount or Auto, meaning
// the rate is fetched from the quote service.
type Value struct {
	Amount decimal.Decimal
	Auto   bool
}

const autoValue = "auto"

// AutoValue returns the Auto sentinel
func AutoValue() Value {
	return Value{Auto: true}
}

// FixedValue returns a fixed rate
func FixedValue(amount decimal.Decimal) Value {
	return Value{Amount: amount}
}

// ParseValue parses "auto" (any case) or a decimal number
func ParseValue(s string) (Value, error) {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, autoValue) {
		return AutoValue(), nil
	}

	amount, err := decimal.NewFromString(s)
	if err != nil {
		return Value{}, fmt.Errorf("invalid value %q: %w", s, err)
	}
	return FixedValue(amount), nil
}

// String returns "auto" or the decimal representation
func (v Value) String() string {
	if v.Auto {
		return autoValue
	}
	return v.Amount.String()
}

// MarshalJSON encodes Auto as "auto" and fixed values as numbers
func (v Value) MarshalJSON() ([]byte, error) {
	if v.Auto {
		return json.Marshal(autoValue)
	}
	return []byte(v.Amount.String()), nil
}

// UnmarshalJSON accepts a number, a numeric string or "auto"
func (v *Value) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		s = string(b)
	}

	parsed, err := ParseValue(s)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// Symbols holds the display symbols of a currency
type Symbols struct {
	Left  string `json:"left"`
	Right string `json:"right"`
}

// Points holds the separators of a currency
type Points struct {
	Decimal  string `json:"decimal"`
	Thousand string `json:"thousand"`
}

// AddInput is the request to register a new currency
type AddInput struct {
	Code         string  `json:"code" binding:"required"`
	Title        string  `json:"title"`
	Symbols      Symbols `json:"symbols"`
	Value        *Value  `json:"value,omitempty"`
	Points       Points  `json:"points"`
	DecimalPlace *int    `json:"decimal_place,omitempty"`
	Enabled      *bool   `json:"enabled,omitempty"`
}

// value returns the requested value, Auto when none was given
func (in AddInput) value() Value {
	if in.Value == nil {
		return AutoValue()
	}
	return *in.Value
}

// data builds the persisted record, filling in defaults
func (in AddInput) data(code string) CurrencyData {
	data := CurrencyData{
		Code:          code,
		Title:         in.Title,
		SymbolLeft:    in.Symbols.Left,
		SymbolRight:   in.Symbols.Right,
		DecimalPlace:  DefaultDecimalPlace,
		DecimalPoint:  in.Points.Decimal,
		ThousandPoint: in.Points.Thousand,
		Value:         decimal.NewFromInt(1),
		Enabled:       true,
	}

	if data.DecimalPoint == "" {
		data.DecimalPoint = DefaultDecimalPoint
	}
	if data.ThousandPoint == "" {
		data.ThousandPoint = DefaultThousandPoint
	}
	if in.DecimalPlace != nil {
		data.DecimalPlace = *in.DecimalPlace
	}
	if in.Enabled != nil {
		data.Enabled = *in.Enabled
	}
	if v := in.value(); !v.Auto {
		data.Value = v.Amount
	}
	return data
}

// SymbolsPatch carries optional symbol changes
type SymbolsPatch struct {
	Left  *string `json:"left,omitempty"`
	Right *string `json:"right,omitempty"`
}

// PointsPatch carries optional separator changes
type PointsPatch struct {
	Decimal  *string `json:"decimal,omitempty"`
	Thousand *string `json:"thousand,omitempty"`
}

// UpdateInput is a partial update; nil fields keep their current value
type UpdateInput struct {
	Title        *string       `json:"title,omitempty"`
	Symbols      *SymbolsPatch `json:"symbols,omitempty"`
	DecimalPlace *int          `json:"decimal_place,omitempty"`
	Points       *PointsPatch  `json:"points,omitempty"`
	Value        *Value        `json:"value,omitempty"`
	Enabled      *bool         `json:"enabled,omitempty"`
}

// autoRefresh reports whether the update asks for a quote refresh
func (in UpdateInput) autoRefresh() bool {
	return in.Value != nil && in.Value.Auto
}

// merge applies the present fields over the current record.
// An Auto value is not merged; the refresh sets it afterwards.
func (in UpdateInput) merge(current Currency) CurrencyData {
	data := current.data()

	if in.Title != nil {
		data.Title = *in.Title
	}
	if in.Symbols != nil {
		if in.Symbols.Left != nil {
			data.SymbolLeft = *in.Symbols.Left
		}
		if in.Symbols.Right != nil {
			data.SymbolRight = *in.Symbols.Right
		}
	}
	if in.DecimalPlace != nil {
		data.DecimalPlace = *in.DecimalPlace
	}
	if in.Points != nil {
		if in.Points.Decimal != nil {
			data.DecimalPoint = *in.Points.Decimal
		}
		if in.Points.Thousand != nil {
			data.ThousandPoint = *in.Points.Thousand
		}
	}
	if in.Value != nil && !in.Value.Auto {
		data.Value = in.Value.Amount
	}
	if in.Enabled != nil {
		data.Enabled = *in.Enabled
	}
	return data
}

// normalizeCode trims and lower-cases a currency code
func normalizeCode(code string) string {
	return strings.ToLower(strings.TrimSpace(code))
}
