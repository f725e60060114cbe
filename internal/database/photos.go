package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"carrent/internal/models"
)

// CreateCarPhoto records an uploaded photo for a car.
func (db *DB) CreateCarPhoto(ctx context.Context, p *models.CarPhoto) error {
	p.CreatedAt = time.Now()

	result, err := db.ExecContext(ctx, `
		INSERT INTO car_photos (car_id, path, thumb_path, created_at)
		VALUES (?, ?, ?, ?)`,
		p.CarID, p.Path, p.ThumbPath, p.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert car photo: %w", err)
	}

	p.ID, err = result.LastInsertId()
	if err != nil {
		return fmt.Errorf("get last id: %w", err)
	}
	return nil
}

// ListCarPhotos returns the photos stored for a car.
func (db *DB) ListCarPhotos(ctx context.Context, carID int64) ([]models.CarPhoto, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, car_id, path, thumb_path, created_at
		FROM car_photos WHERE car_id = ? ORDER BY id`, carID)
	if err != nil {
		return nil, fmt.Errorf("list photos for car %d: %w", carID, err)
	}
	defer rows.Close()

	var photos []models.CarPhoto
	for rows.Next() {
		var p models.CarPhoto
		if err := rows.Scan(&p.ID, &p.CarID, &p.Path, &p.ThumbPath, &p.CreatedAt); err != nil {
			return nil, err
		}
		photos = append(photos, p)
	}
	return photos, rows.Err()
}

// GetCarPhoto returns a photo by id.
func (db *DB) GetCarPhoto(ctx context.Context, id int64) (*models.CarPhoto, error) {
	var p models.CarPhoto
	err := db.QueryRowContext(ctx, `
		SELECT id, car_id, path, thumb_path, created_at
		FROM car_photos WHERE id = ?`, id).
		Scan(&p.ID, &p.CarID, &p.Path, &p.ThumbPath, &p.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrPhotoNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get photo %d: %w", id, err)
	}
	return &p, nil
}

// DeleteCarPhoto removes a photo record.
func (db *DB) DeleteCarPhoto(ctx context.Context, id int64) error {
	result, err := db.ExecContext(ctx, `DELETE FROM car_photos WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete photo %d: %w", id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrPhotoNotFound
	}
	return nil
}
