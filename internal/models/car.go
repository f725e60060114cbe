package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Car condition values.
const (
	ConditionNew  = "new"
	ConditionUsed = "used"
)

// Car represents a rentable vehicle.
type Car struct {
	ID        int64           `json:"id"`
	Brand     string          `json:"brand"`
	Model     string          `json:"model"`
	Engine    string          `json:"engine"`
	Year      string          `json:"year"`
	Mileage   int64           `json:"mileage"`
	Location  string          `json:"location"`
	Condition string          `json:"condition"` // new, used
	DayPrice  decimal.Decimal `json:"day_price"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// CarPhoto is a stored photo of a car.
type CarPhoto struct {
	ID        int64     `json:"id"`
	CarID     int64     `json:"car_id"`
	Path      string    `json:"path"`
	ThumbPath string    `json:"thumb_path"`
	CreatedAt time.Time `json:"created_at"`
}
