package usecase

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestParsePrice(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"12500", "12500"},
		{"Rp 12.500", "12.5"},
		{"Rp12500", "12500"},
		{"12,500", "12500"},
		{"1.234.567", "1.234"},
		{"3.", "3"},
		{".5", "0.5"},
		{"-200", "200"},
		{"  7000  ", "7000"},
		{"abc", "0"},
		{"", "0"},
		{".", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result := ParsePrice(tt.input)
			assert.True(t, decimal.RequireFromString(tt.expected).Equal(result),
				"ParsePrice(%q) = %s, want %s", tt.input, result, tt.expected)
		})
	}
}

func TestParsePrice_NeverNegative(t *testing.T) {
	for _, input := range []string{"-1", "--5", "Rp -3.000", "-.5"} {
		assert.False(t, ParsePrice(input).IsNegative(), "ParsePrice(%q)", input)
	}
}

func TestFormatPrice(t *testing.T) {
	tests := []struct {
		name     string
		input    decimal.Decimal
		expected string
	}{
		{"zero", decimal.Zero, "0"},
		{"integer", decimal.NewFromInt(12500), "12500"},
		{"fraction", decimal.RequireFromString("12.50"), "12.5"},
		{"small", decimal.RequireFromString("0.25"), "0.25"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatPrice(tt.input))
		})
	}
}
