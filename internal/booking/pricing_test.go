package booking

import (
	"testing"
	"time"

	"carrent/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func money(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func parseTestDate(s string) (time.Time, error) {
	return models.ParseDate(s)
}

func TestPrice(t *testing.T) {
	tests := []struct {
		name         string
		start, end   string
		dayPrice     string
		wantDuration int64
		wantTotal    string
	}{
		{"five days at 50.00", "2024-01-10", "2024-01-15", "50.00", 5, "250.00"},
		{"same day is free", "2024-04-01", "2024-04-01", "50.00", 0, "0.00"},
		{"one day", "2024-01-10", "2024-01-11", "99.99", 1, "99.99"},
		{"long rental", "2024-01-01", "2024-02-01", "10.50", 31, "325.50"},
		{"fractional rate truncates", "2024-01-10", "2024-01-13", "33.33", 3, "99.99"},
		{"zero rate", "2024-01-10", "2024-01-15", "0.00", 5, "0.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, err := parseTestDate(tt.start)
			assert.NoError(t, err)
			end, err := parseTestDate(tt.end)
			assert.NoError(t, err)

			duration, total := Price(start, end, money(tt.dayPrice))
			assert.Equal(t, tt.wantDuration, duration)
			assert.Equal(t, tt.wantTotal, total.StringFixed(2))
		})
	}
}

func TestPrice_ExactArithmetic(t *testing.T) {
	// 0.1 is not representable in binary floating point; the decimal path
	// must still produce an exact result.
	start, _ := parseTestDate("2024-01-01")
	end, _ := parseTestDate("2024-01-04")

	duration, total := Price(start, end, money("0.10"))
	assert.Equal(t, int64(3), duration)
	assert.True(t, total.Equal(money("0.30")), "got %s", total)
}
