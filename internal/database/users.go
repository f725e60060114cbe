package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"carrent/internal/models"
)

const userColumns = `id, username, email, password_hash, first_name, last_name,
	country, city, phone, is_staff, is_active, created_at`

// CreateUser inserts a new account.
func (db *DB) CreateUser(ctx context.Context, u *models.User) error {
	u.CreatedAt = time.Now()
	u.IsActive = true

	result, err := db.ExecContext(ctx, `
		INSERT INTO users (username, email, password_hash, first_name, last_name,
		                   country, city, phone, is_staff, is_active, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		u.Username, u.Email, u.PasswordHash, u.FirstName, u.LastName,
		u.Country, u.City, u.Phone, u.IsStaff, u.IsActive, u.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}

	u.ID, err = result.LastInsertId()
	if err != nil {
		return fmt.Errorf("get last id: %w", err)
	}
	return nil
}

// GetUserByID returns an active user by id.
func (db *DB) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	row := db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ? AND is_active = 1`, id)
	return scanUser(row)
}

// GetUserByUsername returns an active user by username.
func (db *DB) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	row := db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE username = ? AND is_active = 1`, username)
	return scanUser(row)
}

// DeactivateUser soft-deletes an account.
func (db *DB) DeactivateUser(ctx context.Context, id int64) error {
	result, err := db.ExecContext(ctx,
		`UPDATE users SET is_active = 0 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deactivate user %d: %w", id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrUserNotFound
	}
	return nil
}

func scanUser(row rowScanner) (*models.User, error) {
	var u models.User
	err := row.Scan(
		&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.FirstName, &u.LastName,
		&u.Country, &u.City, &u.Phone, &u.IsStaff, &u.IsActive, &u.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan user: %w", err)
	}
	return &u, nil
}
