package api

import (
	"errors"
	"net/http"

	"carrent/internal/booking"
	"carrent/internal/database"
	"carrent/internal/metrics"
	"carrent/internal/models"

	"github.com/julienschmidt/httprouter"
)

const maxPhotoUploadBytes = 10 << 20 // 10 MiB

// handleListCarPhotos returns the photos stored for a car.
// GET /api/cars/:id/photos
func (s *HTTPServer) handleListCarPhotos(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	metrics.IncHTTP("photos_list")

	carID, err := pathID(ps)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid car id")
		return
	}
	if _, err := s.db.GetCar(r.Context(), carID); err != nil {
		if errors.Is(err, booking.ErrCarNotFound) {
			writeError(w, http.StatusNotFound, "car not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to load car")
		return
	}

	photos, err := s.db.ListCarPhotos(r.Context(), carID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list photos")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"photos": photos})
}

// handleUploadCarPhoto accepts a multipart upload for a car.
// POST /api/cars/:id/photos (staff)
func (s *HTTPServer) handleUploadCarPhoto(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	metrics.IncHTTP("photos_upload")

	carID, err := pathID(ps)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid car id")
		return
	}
	if _, err := s.db.GetCar(r.Context(), carID); err != nil {
		if errors.Is(err, booking.ErrCarNotFound) {
			writeError(w, http.StatusNotFound, "car not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to load car")
		return
	}

	if err := r.ParseMultipartForm(maxPhotoUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	file, _, err := r.FormFile("photo")
	if err != nil {
		writeError(w, http.StatusBadRequest, "photo file is required")
		return
	}
	defer file.Close()

	path, thumbPath, err := s.files.SavePhoto(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "unsupported or corrupt image")
		return
	}

	photo := &models.CarPhoto{CarID: carID, Path: path, ThumbPath: thumbPath}
	if err := s.db.CreateCarPhoto(r.Context(), photo); err != nil {
		s.files.Remove(path, thumbPath)
		writeError(w, http.StatusInternalServerError, "failed to store photo")
		return
	}

	s.log.Info().Int64("car_id", carID).Int64("photo_id", photo.ID).Msg("car photo uploaded")
	writeJSON(w, http.StatusCreated, photo)
}

// handleDeletePhoto removes a photo record and its files.
// DELETE /api/photos/:id (staff)
func (s *HTTPServer) handleDeletePhoto(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	metrics.IncHTTP("photos_delete")

	id, err := pathID(ps)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid photo id")
		return
	}

	photo, err := s.db.GetCarPhoto(r.Context(), id)
	if err != nil {
		if errors.Is(err, database.ErrPhotoNotFound) {
			writeError(w, http.StatusNotFound, "photo not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to load photo")
		return
	}

	if err := s.db.DeleteCarPhoto(r.Context(), id); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to delete photo")
		return
	}
	s.files.Remove(photo.Path, photo.ThumbPath)
	w.WriteHeader(http.StatusNoContent)
}
