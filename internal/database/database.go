package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"carrent/internal/models"

	_ "github.com/mattn/go-sqlite3" // sqlite3 driver
	"github.com/rs/zerolog"
)

// DB represents the database connection and its car cache.
type DB struct {
	*sql.DB
	carsCache map[int64]models.Car
	cacheTime time.Time
	mu        sync.RWMutex
	logger    *zerolog.Logger
}

var (
	// ErrUserNotFound is returned when no user matches the lookup.
	ErrUserNotFound = errors.New("user not found")
	// ErrPhotoNotFound is returned when no photo matches the lookup.
	ErrPhotoNotFound = errors.New("photo not found")
)

// NewDB initializes a new database connection and creates tables if they
// don't exist. Transactions begin immediate (_txlock) so the overlap
// re-check inside booking writes is serialized against concurrent writers.
func NewDB(path string, logger *zerolog.Logger) (*DB, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	dsn := path + "?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000&_txlock=immediate&_foreign_keys=on"
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	instance := &DB{
		DB:        db,
		carsCache: make(map[int64]models.Car),
		logger:    logger,
	}

	if err := instance.createTables(); err != nil {
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	if err := instance.LoadCars(context.Background()); err != nil {
		logger.Error().Err(err).Msg("Failed to load cars into cache")
		// The app can start with an empty fleet; the cache refreshes on writes.
	}

	logger.Info().Str("path", path).Msg("Database initialized")
	return instance, nil
}

func (db *DB) createTables() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			username TEXT NOT NULL UNIQUE,
			email TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			first_name TEXT NOT NULL DEFAULT '',
			last_name TEXT NOT NULL DEFAULT '',
			country TEXT NOT NULL DEFAULT '',
			city TEXT NOT NULL DEFAULT '',
			phone TEXT NOT NULL DEFAULT '',
			is_staff INTEGER NOT NULL DEFAULT 0,
			is_active INTEGER NOT NULL DEFAULT 1,
			created_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS cars (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			brand TEXT NOT NULL,
			model TEXT NOT NULL,
			engine TEXT NOT NULL DEFAULT '',
			year TEXT NOT NULL DEFAULT '',
			mileage INTEGER NOT NULL DEFAULT 0,
			location TEXT NOT NULL DEFAULT '',
			condition TEXT NOT NULL DEFAULT 'used',
			day_price TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS car_photos (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			car_id INTEGER NOT NULL REFERENCES cars(id) ON DELETE CASCADE,
			path TEXT NOT NULL,
			thumb_path TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS bookings (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id INTEGER NOT NULL REFERENCES users(id),
			car_id INTEGER NOT NULL REFERENCES cars(id) ON DELETE CASCADE,
			booking_start TIMESTAMP NOT NULL,
			booking_end TIMESTAMP NOT NULL,
			duration INTEGER NOT NULL,
			total_price TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_bookings_car_dates
			ON bookings(car_id, booking_start, booking_end)`,
		`CREATE INDEX IF NOT EXISTS idx_bookings_user ON bookings(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_car_photos_car ON car_photos(car_id)`,
	}

	for _, stmt := range statements {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("exec schema statement: %w", err)
		}
	}
	return nil
}
