package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"carrent/internal/booking"
	"carrent/internal/metrics"
	"carrent/internal/models"

	"github.com/julienschmidt/httprouter"
)

// BookingRequest is the request body for creating a booking. Derived fields
// (duration, total price) are never part of the payload; unknown fields are
// rejected, so a client cannot smuggle them in.
type BookingRequest struct {
	CarID int64  `json:"car_id"`
	Start string `json:"booking_start"` // Format: YYYY-MM-DD
	End   string `json:"booking_end"`   // Format: YYYY-MM-DD
}

// BookingUpdateRequest is the request body for updating a booking. The car
// cannot be reassigned.
type BookingUpdateRequest struct {
	Start string `json:"booking_start,omitempty"`
	End   string `json:"booking_end,omitempty"`
}

// BookingResponse represents a booking in API responses.
type BookingResponse struct {
	ID         int64  `json:"id"`
	UserID     int64  `json:"user_id"`
	CarID      int64  `json:"car_id"`
	Start      string `json:"booking_start"`
	End        string `json:"booking_end"`
	Duration   int64  `json:"booking_duration"`
	TotalPrice string `json:"total_price"`
	CreatedAt  string `json:"created_at"`
	UpdatedAt  string `json:"updated_at"`
}

func bookingResponse(b *models.Booking) BookingResponse {
	return BookingResponse{
		ID:         b.ID,
		UserID:     b.UserID,
		CarID:      b.CarID,
		Start:      b.Start.Format(models.DateLayout),
		End:        b.End.Format(models.DateLayout),
		Duration:   b.Duration,
		TotalPrice: b.TotalPrice.StringFixed(2),
		CreatedAt:  b.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:  b.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func parseBookingDates(startStr, endStr string) (start, end time.Time, err error) {
	if startStr == "" || endStr == "" {
		return time.Time{}, time.Time{}, errors.New("booking_start and booking_end are required")
	}
	start, err = models.ParseDate(startStr)
	if err != nil {
		return time.Time{}, time.Time{}, errors.New("invalid booking_start format; expected YYYY-MM-DD")
	}
	end, err = models.ParseDate(endStr)
	if err != nil {
		return time.Time{}, time.Time{}, errors.New("invalid booking_end format; expected YYYY-MM-DD")
	}
	return start, end, nil
}

// writeBookingError maps pipeline errors onto the HTTP surface.
func writeBookingError(w http.ResponseWriter, err error) {
	var conflict *booking.ConflictError
	switch {
	case errors.Is(err, booking.ErrPastStart), errors.Is(err, booking.ErrInvertedInterval):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &conflict):
		writeError(w, http.StatusConflict, conflict.Error())
	case errors.Is(err, booking.ErrCarNotFound):
		writeError(w, http.StatusNotFound, "car not found")
	case errors.Is(err, booking.ErrNotFound):
		writeError(w, http.StatusNotFound, "booking not found")
	default:
		writeError(w, http.StatusInternalServerError, "booking operation failed")
	}
}

// loadAuthorizedBooking fetches a booking and enforces owner-or-staff access.
func (s *HTTPServer) loadAuthorizedBooking(w http.ResponseWriter, r *http.Request, ps httprouter.Params) *models.Booking {
	id, err := pathID(ps)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid booking id")
		return nil
	}

	b, err := s.svc.Get(r.Context(), id)
	if err != nil {
		writeBookingError(w, err)
		return nil
	}

	claims := claimsFrom(r.Context())
	if !claims.IsStaff && b.UserID != claims.UserID {
		// Hide other users' bookings entirely.
		writeError(w, http.StatusNotFound, "booking not found")
		return nil
	}
	return b
}

// handleListBookings lists bookings: all of them for staff, own otherwise.
// GET /api/bookings
func (s *HTTPServer) handleListBookings(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	metrics.IncHTTP("bookings_list")

	claims := claimsFrom(r.Context())
	var (
		bookings []models.Booking
		err      error
	)
	if claims.IsStaff {
		bookings, err = s.svc.List(r.Context())
	} else {
		bookings, err = s.svc.ListForUser(r.Context(), claims.UserID)
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list bookings")
		return
	}

	resp := make([]BookingResponse, 0, len(bookings))
	for i := range bookings {
		resp = append(resp, bookingResponse(&bookings[i]))
	}
	writeJSON(w, http.StatusOK, map[string]any{"bookings": resp})
}

// handleCreateBooking books a car for the authenticated user.
// POST /api/bookings
func (s *HTTPServer) handleCreateBooking(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	metrics.IncHTTP("bookings_create")

	var req BookingRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.CarID == 0 {
		writeError(w, http.StatusBadRequest, "car_id is required")
		return
	}
	start, end, err := parseBookingDates(req.Start, req.End)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	claims := claimsFrom(r.Context())
	b, err := s.svc.Create(r.Context(), claims.UserID, req.CarID, start, end)
	if err != nil {
		writeBookingError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, bookingResponse(b))
}

// handleGetBooking returns one booking.
// GET /api/bookings/:id
func (s *HTTPServer) handleGetBooking(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	metrics.IncHTTP("bookings_get")

	b := s.loadAuthorizedBooking(w, r, ps)
	if b == nil {
		return
	}
	writeJSON(w, http.StatusOK, bookingResponse(b))
}

// handleUpdateBooking re-runs the booking pipeline over a new interval.
// PUT /api/bookings/:id
func (s *HTTPServer) handleUpdateBooking(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	metrics.IncHTTP("bookings_update")

	b := s.loadAuthorizedBooking(w, r, ps)
	if b == nil {
		return
	}

	var req BookingUpdateRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	// Omitted dates keep their stored values.
	startStr := req.Start
	if startStr == "" {
		startStr = b.Start.Format(models.DateLayout)
	}
	endStr := req.End
	if endStr == "" {
		endStr = b.End.Format(models.DateLayout)
	}
	start, end, err := parseBookingDates(startStr, endStr)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	updated, err := s.svc.Update(r.Context(), b.ID, start, end)
	if err != nil {
		writeBookingError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, bookingResponse(updated))
}

// handleDeleteBooking removes a booking.
// DELETE /api/bookings/:id
func (s *HTTPServer) handleDeleteBooking(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	metrics.IncHTTP("bookings_delete")

	b := s.loadAuthorizedBooking(w, r, ps)
	if b == nil {
		return
	}

	if err := s.svc.Delete(r.Context(), b.ID); err != nil {
		writeBookingError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
