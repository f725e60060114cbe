package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"carrent/internal/booking"
	"carrent/internal/metrics"
	"carrent/internal/models"

	"github.com/julienschmidt/httprouter"
	"github.com/shopspring/decimal"
)

// CarRequest is the request body for creating or updating a car.
type CarRequest struct {
	Brand     string `json:"brand"`
	Model     string `json:"model"`
	Engine    string `json:"engine,omitempty"`
	Year      string `json:"year,omitempty"`
	Mileage   int64  `json:"mileage,omitempty"`
	Location  string `json:"location,omitempty"`
	Condition string `json:"condition,omitempty"`
	DayPrice  string `json:"day_price"`
}

// CarResponse represents a car in API responses. Money is rendered as a
// fixed 2-decimal string.
type CarResponse struct {
	ID        int64             `json:"id"`
	Brand     string            `json:"brand"`
	Model     string            `json:"model"`
	Engine    string            `json:"engine,omitempty"`
	Year      string            `json:"year,omitempty"`
	Mileage   int64             `json:"mileage"`
	Location  string            `json:"location,omitempty"`
	Condition string            `json:"condition"`
	DayPrice  string            `json:"day_price"`
	Photos    []models.CarPhoto `json:"photos,omitempty"`
}

func carResponse(c *models.Car, photos []models.CarPhoto) CarResponse {
	return CarResponse{
		ID:        c.ID,
		Brand:     c.Brand,
		Model:     c.Model,
		Engine:    c.Engine,
		Year:      c.Year,
		Mileage:   c.Mileage,
		Location:  c.Location,
		Condition: c.Condition,
		DayPrice:  c.DayPrice.StringFixed(2),
		Photos:    photos,
	}
}

func (s *HTTPServer) parseCarRequest(r *http.Request) (*models.Car, error) {
	var req CarRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		return nil, errors.New("invalid JSON body")
	}

	if req.Brand == "" || req.Model == "" {
		return nil, errors.New("brand and model are required")
	}
	if req.DayPrice == "" {
		return nil, errors.New("day_price is required")
	}
	dayPrice, err := decimal.NewFromString(req.DayPrice)
	if err != nil || dayPrice.IsNegative() {
		return nil, errors.New("day_price must be a non-negative decimal")
	}

	condition := req.Condition
	if condition == "" {
		condition = models.ConditionUsed
	}
	if condition != models.ConditionNew && condition != models.ConditionUsed {
		return nil, errors.New("condition must be new or used")
	}

	return &models.Car{
		Brand:     req.Brand,
		Model:     req.Model,
		Engine:    req.Engine,
		Year:      req.Year,
		Mileage:   req.Mileage,
		Location:  req.Location,
		Condition: condition,
		DayPrice:  dayPrice.Truncate(2),
	}, nil
}

func pathID(ps httprouter.Params) (int64, error) {
	return strconv.ParseInt(ps.ByName("id"), 10, 64)
}

// handleListCars returns the fleet.
// GET /api/cars
func (s *HTTPServer) handleListCars(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	metrics.IncHTTP("cars_list")

	cars, err := s.db.GetCars(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list cars")
		return
	}

	resp := make([]CarResponse, 0, len(cars))
	for i := range cars {
		resp = append(resp, carResponse(&cars[i], nil))
	}
	writeJSON(w, http.StatusOK, map[string]any{"cars": resp})
}

// handleGetCar returns one car with its photos.
// GET /api/cars/:id
func (s *HTTPServer) handleGetCar(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	metrics.IncHTTP("cars_get")

	id, err := pathID(ps)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid car id")
		return
	}

	car, err := s.db.GetCar(r.Context(), id)
	if err != nil {
		if errors.Is(err, booking.ErrCarNotFound) {
			writeError(w, http.StatusNotFound, "car not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to load car")
		return
	}

	photos, err := s.db.ListCarPhotos(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load photos")
		return
	}
	writeJSON(w, http.StatusOK, carResponse(car, photos))
}

// handleCreateCar adds a car to the fleet.
// POST /api/cars (staff)
func (s *HTTPServer) handleCreateCar(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	metrics.IncHTTP("cars_create")

	car, err := s.parseCarRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.db.CreateCar(r.Context(), car); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create car")
		return
	}

	s.log.Info().Int64("car_id", car.ID).Str("brand", car.Brand).Str("model", car.Model).Msg("car created")
	writeJSON(w, http.StatusCreated, carResponse(car, nil))
}

// handleUpdateCar rewrites a car record.
// PUT /api/cars/:id (staff)
func (s *HTTPServer) handleUpdateCar(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	metrics.IncHTTP("cars_update")

	id, err := pathID(ps)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid car id")
		return
	}

	car, err := s.parseCarRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	car.ID = id

	if err := s.db.UpdateCar(r.Context(), car); err != nil {
		if errors.Is(err, booking.ErrCarNotFound) {
			writeError(w, http.StatusNotFound, "car not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to update car")
		return
	}
	writeJSON(w, http.StatusOK, carResponse(car, nil))
}

// handleDeleteCar removes a car and its photos.
// DELETE /api/cars/:id (staff)
func (s *HTTPServer) handleDeleteCar(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	metrics.IncHTTP("cars_delete")

	id, err := pathID(ps)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid car id")
		return
	}

	if err := s.db.DeleteCar(r.Context(), id); err != nil {
		if errors.Is(err, booking.ErrCarNotFound) {
			writeError(w, http.StatusNotFound, "car not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to delete car")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
