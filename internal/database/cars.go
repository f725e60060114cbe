package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"carrent/internal/booking"
	"carrent/internal/models"

	"github.com/shopspring/decimal"
)

const carsCacheTTL = 5 * time.Minute

// LoadCars refreshes the in-memory car cache from the database.
func (db *DB) LoadCars(ctx context.Context) error {
	cars, err := db.listCars(ctx)
	if err != nil {
		return err
	}

	db.mu.Lock()
	defer db.mu.Unlock()
	db.carsCache = make(map[int64]models.Car, len(cars))
	for _, c := range cars {
		db.carsCache[c.ID] = c
	}
	db.cacheTime = time.Now()
	return nil
}

// GetCars returns all cars, served from cache when fresh.
func (db *DB) GetCars(ctx context.Context) ([]models.Car, error) {
	db.mu.RLock()
	fresh := time.Since(db.cacheTime) < carsCacheTTL
	cached := make([]models.Car, 0, len(db.carsCache))
	for _, c := range db.carsCache {
		cached = append(cached, c)
	}
	db.mu.RUnlock()

	if fresh {
		return cached, nil
	}
	if err := db.LoadCars(ctx); err != nil {
		return nil, err
	}

	db.mu.RLock()
	defer db.mu.RUnlock()
	cars := make([]models.Car, 0, len(db.carsCache))
	for _, c := range db.carsCache {
		cars = append(cars, c)
	}
	return cars, nil
}

func (db *DB) listCars(ctx context.Context) ([]models.Car, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, brand, model, engine, year, mileage, location, condition,
		       day_price, created_at, updated_at
		FROM cars ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list cars: %w", err)
	}
	defer rows.Close()

	var cars []models.Car
	for rows.Next() {
		c, err := scanCar(rows)
		if err != nil {
			return nil, err
		}
		cars = append(cars, *c)
	}
	return cars, rows.Err()
}

// GetCar returns a car by id. The read is authoritative (not cached) because
// the booking pipeline prices from it.
func (db *DB) GetCar(ctx context.Context, id int64) (*models.Car, error) {
	row := db.QueryRowContext(ctx, `
		SELECT id, brand, model, engine, year, mileage, location, condition,
		       day_price, created_at, updated_at
		FROM cars WHERE id = ?`, id)

	c, err := scanCar(row)
	if err == sql.ErrNoRows {
		return nil, booking.ErrCarNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get car %d: %w", id, err)
	}
	return c, nil
}

// CreateCar inserts a new car and refreshes the cache.
func (db *DB) CreateCar(ctx context.Context, c *models.Car) error {
	now := time.Now()
	c.CreatedAt = now
	c.UpdatedAt = now

	result, err := db.ExecContext(ctx, `
		INSERT INTO cars (brand, model, engine, year, mileage, location, condition,
		                  day_price, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.Brand, c.Model, c.Engine, c.Year, c.Mileage, c.Location, c.Condition,
		c.DayPrice.StringFixed(2), now, now,
	)
	if err != nil {
		return fmt.Errorf("insert car: %w", err)
	}

	c.ID, err = result.LastInsertId()
	if err != nil {
		return fmt.Errorf("get last id: %w", err)
	}

	_ = db.LoadCars(ctx)
	return nil
}

// UpdateCar rewrites a car record and refreshes the cache.
func (db *DB) UpdateCar(ctx context.Context, c *models.Car) error {
	c.UpdatedAt = time.Now()

	result, err := db.ExecContext(ctx, `
		UPDATE cars SET brand = ?, model = ?, engine = ?, year = ?, mileage = ?,
		                location = ?, condition = ?, day_price = ?, updated_at = ?
		WHERE id = ?`,
		c.Brand, c.Model, c.Engine, c.Year, c.Mileage, c.Location, c.Condition,
		c.DayPrice.StringFixed(2), c.UpdatedAt, c.ID,
	)
	if err != nil {
		return fmt.Errorf("update car %d: %w", c.ID, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return booking.ErrCarNotFound
	}

	_ = db.LoadCars(ctx)
	return nil
}

// DeleteCar removes a car; its bookings and photos cascade at the schema
// level.
func (db *DB) DeleteCar(ctx context.Context, id int64) error {
	result, err := db.ExecContext(ctx, `DELETE FROM cars WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete car %d: %w", id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return booking.ErrCarNotFound
	}

	_ = db.LoadCars(ctx)
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCar(row rowScanner) (*models.Car, error) {
	var c models.Car
	var dayPrice string
	err := row.Scan(
		&c.ID, &c.Brand, &c.Model, &c.Engine, &c.Year, &c.Mileage,
		&c.Location, &c.Condition, &dayPrice, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	c.DayPrice, err = decimal.NewFromString(dayPrice)
	if err != nil {
		return nil, fmt.Errorf("parse day_price %q: %w", dayPrice, err)
	}
	return &c, nil
}
