package booking

import (
	"time"

	"github.com/shopspring/decimal"
)

// Price derives the booking duration in whole calendar days and the total
// rental price from a validated interval and the car's daily rate.
//
// The total is duration × dayPrice truncated to 2 decimal places. Truncation
// (not banker's rounding) matches the fixed-point semantics of the stored
// price fields.
func Price(start, end time.Time, dayPrice decimal.Decimal) (int64, decimal.Decimal) {
	duration := int64(end.Sub(start).Hours() / 24)
	total := dayPrice.Mul(decimal.NewFromInt(duration)).Truncate(2)
	return duration, total
}
