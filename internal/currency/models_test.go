package currency

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseValue(t *testing.T) {
	tests := []struct {
		input    string
		auto     bool
		amount   string
		hasError bool
	}{
		{"auto", true, "0", false},
		{" AUTO ", true, "0", false},
		{"0.85", false, "0.85", false},
		{"12", false, "12", false},
		{"abc", false, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			v, err := ParseValue(tt.input)
			if tt.hasError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.auto, v.Auto)
			assert.True(t, decimal.RequireFromString(tt.amount).Equal(v.Amount))
		})
	}
}

func TestValue_JSON(t *testing.T) {
	var in AddInput
	require.NoError(t, json.Unmarshal([]byte(`{"code":"eur","value":0.85}`), &in))
	require.NotNil(t, in.Value)
	assert.Equal(t, "0.85", in.Value.String())

	require.NoError(t, json.Unmarshal([]byte(`{"code":"eur","value":"auto"}`), &in))
	assert.True(t, in.Value.Auto)

	require.NoError(t, json.Unmarshal([]byte(`{"code":"eur","value":"1.5"}`), &in))
	assert.Equal(t, "1.5", in.Value.String())

	assert.Error(t, json.Unmarshal([]byte(`{"value":"soon"}`), &in))

	out, err := json.Marshal(AutoValue())
	require.NoError(t, err)
	assert.JSONEq(t, `"auto"`, string(out))

	out, err = json.Marshal(FixedValue(decimal.RequireFromString("0.85")))
	require.NoError(t, err)
	assert.JSONEq(t, `0.85`, string(out))
}

func TestAddInput_Defaults(t *testing.T) {
	data := AddInput{Code: "eur", Title: "Euro"}.data("eur")

	assert.Equal(t, DefaultDecimalPlace, data.DecimalPlace)
	assert.Equal(t, DefaultDecimalPoint, data.DecimalPoint)
	assert.Equal(t, DefaultThousandPoint, data.ThousandPoint)
	assert.True(t, data.Enabled)
	assert.True(t, data.Value.Equal(decimal.NewFromInt(1)))
}

func TestUpdateInput_Merge(t *testing.T) {
	auto := AutoValue()
	in := UpdateInput{
		Symbols: &SymbolsPatch{Left: ptr("€")},
		Value:   &auto,
	}

	data := in.merge(eur())

	assert.Equal(t, "€", data.SymbolLeft)
	assert.Equal(t, " €", data.SymbolRight)
	assert.True(t, data.Value.Equal(decimal.RequireFromString("0.85")))
	assert.True(t, in.autoRefresh())
	assert.False(t, UpdateInput{}.autoRefresh())
}
