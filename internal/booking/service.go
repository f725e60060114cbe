package booking

import (
	"context"
	"errors"
	"time"

	"carrent/internal/events"
	"carrent/internal/metrics"
	"carrent/internal/models"

	"github.com/rs/zerolog"
)

// Repository is the persistence surface the booking service needs. The
// SQLite implementation re-checks conflicts inside the write transaction and
// returns *ConflictError from CreateBooking/UpdateBooking when a concurrent
// writer got there first.
type Repository interface {
	GetCar(ctx context.Context, id int64) (*models.Car, error)
	GetBooking(ctx context.Context, id int64) (*models.Booking, error)
	ListBookingsByCar(ctx context.Context, carID, excludeID int64) ([]models.Booking, error)
	CreateBooking(ctx context.Context, b *models.Booking) error
	UpdateBooking(ctx context.Context, b *models.Booking) error
	DeleteBooking(ctx context.Context, id int64) error
	ListBookings(ctx context.Context) ([]models.Booking, error)
	ListBookingsByUser(ctx context.Context, userID int64) ([]models.Booking, error)
}

// Publisher emits booking lifecycle events.
type Publisher interface {
	Publish(event events.Event)
}

// Service orchestrates the booking pipeline: resolve car, validate the
// interval, detect conflicts, price, persist. Authorization (owner-vs-staff)
// is enforced by the API layer before calls reach the service.
type Service struct {
	repo Repository
	bus  Publisher
	log  *zerolog.Logger
	now  func() time.Time
}

// NewService creates a booking service.
func NewService(repo Repository, bus Publisher, logger *zerolog.Logger) *Service {
	return &Service{
		repo: repo,
		bus:  bus,
		log:  logger,
		now:  time.Now,
	}
}

// Create books a car for a user over [start, end]. Both dates are inclusive
// calendar dates at midnight UTC. Duration and total price are always
// derived server-side; nothing from the client is trusted for them.
func (s *Service) Create(ctx context.Context, userID, carID int64, start, end time.Time) (*models.Booking, error) {
	car, err := s.repo.GetCar(ctx, carID)
	if err != nil {
		return nil, err
	}

	today := models.NormalizeDate(s.now())
	if err := ValidateInterval(start, end, today); err != nil {
		return nil, err
	}

	existing, err := s.repo.ListBookingsByCar(ctx, carID, 0)
	if err != nil {
		return nil, err
	}
	if conflict := FindConflict(start, end, existing, 0); conflict != nil {
		metrics.IncBookingConflict(conflict.Case.String())
		return nil, conflict
	}

	duration, total := Price(start, end, car.DayPrice)
	now := s.now()
	b := &models.Booking{
		UserID:     userID,
		CarID:      carID,
		Start:      start,
		End:        end,
		Duration:   duration,
		TotalPrice: total,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.repo.CreateBooking(ctx, b); err != nil {
		var conflict *ConflictError
		if errors.As(err, &conflict) {
			// Lost the race to a concurrent writer; same surface as the
			// early check.
			metrics.IncBookingConflict(conflict.Case.String())
			return nil, conflict
		}
		return nil, err
	}

	metrics.IncBookingCreated()
	s.log.Info().
		Int64("booking_id", b.ID).
		Int64("user_id", userID).
		Int64("car_id", carID).
		Str("start", start.Format(models.DateLayout)).
		Str("end", end.Format(models.DateLayout)).
		Str("total_price", total.StringFixed(2)).
		Msg("booking created")

	s.bus.Publish(events.Event{Type: events.BookingCreated, BookingID: b.ID, UserID: userID, CarID: carID})
	return b, nil
}

// Update re-runs the whole pipeline for an existing booking. The car is read
// from the stored booking (no car reassignment); the booking's own row is
// excluded from conflict checking so an unchanged interval always succeeds.
func (s *Service) Update(ctx context.Context, bookingID int64, start, end time.Time) (*models.Booking, error) {
	b, err := s.repo.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	car, err := s.repo.GetCar(ctx, b.CarID)
	if err != nil {
		return nil, err
	}

	today := models.NormalizeDate(s.now())
	if err := ValidateInterval(start, end, today); err != nil {
		return nil, err
	}

	existing, err := s.repo.ListBookingsByCar(ctx, b.CarID, bookingID)
	if err != nil {
		return nil, err
	}
	if conflict := FindConflict(start, end, existing, bookingID); conflict != nil {
		metrics.IncBookingConflict(conflict.Case.String())
		return nil, conflict
	}

	duration, total := Price(start, end, car.DayPrice)
	b.Start = start
	b.End = end
	b.Duration = duration
	b.TotalPrice = total
	b.UpdatedAt = s.now()

	if err := s.repo.UpdateBooking(ctx, b); err != nil {
		var conflict *ConflictError
		if errors.As(err, &conflict) {
			metrics.IncBookingConflict(conflict.Case.String())
			return nil, conflict
		}
		return nil, err
	}

	s.log.Info().
		Int64("booking_id", b.ID).
		Str("start", start.Format(models.DateLayout)).
		Str("end", end.Format(models.DateLayout)).
		Str("total_price", total.StringFixed(2)).
		Msg("booking updated")

	s.bus.Publish(events.Event{Type: events.BookingUpdated, BookingID: b.ID, UserID: b.UserID, CarID: b.CarID})
	return b, nil
}

// Delete removes a booking.
func (s *Service) Delete(ctx context.Context, bookingID int64) error {
	b, err := s.repo.GetBooking(ctx, bookingID)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteBooking(ctx, bookingID); err != nil {
		return err
	}

	s.log.Info().Int64("booking_id", bookingID).Msg("booking deleted")
	s.bus.Publish(events.Event{Type: events.BookingDeleted, BookingID: bookingID, UserID: b.UserID, CarID: b.CarID})
	return nil
}

// Get returns a single booking.
func (s *Service) Get(ctx context.Context, bookingID int64) (*models.Booking, error) {
	return s.repo.GetBooking(ctx, bookingID)
}

// List returns all bookings (staff view).
func (s *Service) List(ctx context.Context) ([]models.Booking, error) {
	return s.repo.ListBookings(ctx)
}

// ListForUser returns the bookings owned by a user.
func (s *Service) ListForUser(ctx context.Context, userID int64) ([]models.Booking, error) {
	return s.repo.ListBookingsByUser(ctx, userID)
}
