package booking

import (
	"context"
	"io"
	"testing"
	"time"

	"carrent/internal/events"
	"carrent/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockRepo struct {
	mock.Mock
}

func (m *mockRepo) GetCar(ctx context.Context, id int64) (*models.Car, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Car), args.Error(1)
}

func (m *mockRepo) GetBooking(ctx context.Context, id int64) (*models.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Booking), args.Error(1)
}

func (m *mockRepo) ListBookingsByCar(ctx context.Context, carID, excludeID int64) ([]models.Booking, error) {
	args := m.Called(ctx, carID, excludeID)
	return args.Get(0).([]models.Booking), args.Error(1)
}

func (m *mockRepo) CreateBooking(ctx context.Context, b *models.Booking) error {
	return m.Called(ctx, b).Error(0)
}

func (m *mockRepo) UpdateBooking(ctx context.Context, b *models.Booking) error {
	return m.Called(ctx, b).Error(0)
}

func (m *mockRepo) DeleteBooking(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockRepo) ListBookings(ctx context.Context) ([]models.Booking, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.Booking), args.Error(1)
}

func (m *mockRepo) ListBookingsByUser(ctx context.Context, userID int64) ([]models.Booking, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]models.Booking), args.Error(1)
}

type mockBus struct {
	published []events.Event
}

func (m *mockBus) Publish(event events.Event) {
	m.published = append(m.published, event)
}

func newTestService(repo *mockRepo, bus *mockBus, today time.Time) *Service {
	logger := zerolog.New(io.Discard)
	svc := NewService(repo, bus, &logger)
	svc.now = func() time.Time { return today }
	return svc
}

func testCar(id int64, dayPrice string) *models.Car {
	return &models.Car{ID: id, Brand: "Skoda", Model: "Octavia", DayPrice: money(dayPrice)}
}

func TestService_Create(t *testing.T) {
	ctx := context.Background()
	today := date(2024, 1, 1)

	t.Run("derives duration and price", func(t *testing.T) {
		repo := new(mockRepo)
		bus := new(mockBus)
		svc := newTestService(repo, bus, today)

		repo.On("GetCar", ctx, int64(1)).Return(testCar(1, "50.00"), nil).Once()
		repo.On("ListBookingsByCar", ctx, int64(1), int64(0)).Return([]models.Booking{}, nil).Once()
		repo.On("CreateBooking", ctx, mock.Anything).Return(nil).Once()

		b, err := svc.Create(ctx, 42, 1, date(2024, 1, 10), date(2024, 1, 15))
		require.NoError(t, err)
		assert.Equal(t, int64(5), b.Duration)
		assert.Equal(t, "250.00", b.TotalPrice.StringFixed(2))
		assert.Equal(t, int64(42), b.UserID)
		repo.AssertExpectations(t)

		require.Len(t, bus.published, 1)
		assert.Equal(t, events.BookingCreated, bus.published[0].Type)
	})

	t.Run("same-day booking is free", func(t *testing.T) {
		repo := new(mockRepo)
		bus := new(mockBus)
		svc := newTestService(repo, bus, today)

		repo.On("GetCar", ctx, int64(1)).Return(testCar(1, "50.00"), nil).Once()
		repo.On("ListBookingsByCar", ctx, int64(1), int64(0)).Return([]models.Booking{}, nil).Once()
		repo.On("CreateBooking", ctx, mock.Anything).Return(nil).Once()

		b, err := svc.Create(ctx, 42, 1, date(2024, 4, 1), date(2024, 4, 1))
		require.NoError(t, err)
		assert.Equal(t, int64(0), b.Duration)
		assert.Equal(t, "0.00", b.TotalPrice.StringFixed(2))
	})

	t.Run("unknown car", func(t *testing.T) {
		repo := new(mockRepo)
		svc := newTestService(repo, new(mockBus), today)

		repo.On("GetCar", ctx, int64(99)).Return(nil, ErrCarNotFound).Once()

		_, err := svc.Create(ctx, 42, 99, date(2024, 1, 10), date(2024, 1, 15))
		assert.ErrorIs(t, err, ErrCarNotFound)
	})

	t.Run("past start date", func(t *testing.T) {
		repo := new(mockRepo)
		svc := newTestService(repo, new(mockBus), today)

		repo.On("GetCar", ctx, int64(1)).Return(testCar(1, "50.00"), nil).Once()

		_, err := svc.Create(ctx, 42, 1, date(2023, 12, 31), date(2024, 1, 5))
		assert.ErrorIs(t, err, ErrPastStart)
		repo.AssertNotCalled(t, "CreateBooking", mock.Anything, mock.Anything)
	})

	t.Run("inverted interval", func(t *testing.T) {
		repo := new(mockRepo)
		svc := newTestService(repo, new(mockBus), today)

		repo.On("GetCar", ctx, int64(1)).Return(testCar(1, "50.00"), nil).Once()

		_, err := svc.Create(ctx, 42, 1, date(2024, 1, 10), date(2024, 1, 9))
		assert.ErrorIs(t, err, ErrInvertedInterval)
	})

	t.Run("overlap with existing booking", func(t *testing.T) {
		repo := new(mockRepo)
		bus := new(mockBus)
		svc := newTestService(repo, bus, today)

		repo.On("GetCar", ctx, int64(1)).Return(testCar(1, "50.00"), nil).Once()
		repo.On("ListBookingsByCar", ctx, int64(1), int64(0)).Return([]models.Booking{
			{ID: 5, CarID: 1, Start: date(2024, 2, 1), End: date(2024, 2, 10)},
		}, nil).Once()

		_, err := svc.Create(ctx, 42, 1, date(2024, 2, 5), date(2024, 2, 20))
		var conflict *ConflictError
		require.ErrorAs(t, err, &conflict)
		assert.Equal(t, CaseStartsInside, conflict.Case)
		assert.Empty(t, bus.published)
		repo.AssertNotCalled(t, "CreateBooking", mock.Anything, mock.Anything)
	})

	t.Run("write-time conflict from concurrent writer", func(t *testing.T) {
		repo := new(mockRepo)
		svc := newTestService(repo, new(mockBus), today)

		repo.On("GetCar", ctx, int64(1)).Return(testCar(1, "50.00"), nil).Once()
		repo.On("ListBookingsByCar", ctx, int64(1), int64(0)).Return([]models.Booking{}, nil).Once()
		repo.On("CreateBooking", ctx, mock.Anything).
			Return(&ConflictError{Case: CaseStartsInside, BookingID: 9}).Once()

		_, err := svc.Create(ctx, 42, 1, date(2024, 2, 5), date(2024, 2, 20))
		var conflict *ConflictError
		require.ErrorAs(t, err, &conflict)
		assert.Equal(t, int64(9), conflict.BookingID)
	})
}

func TestService_Update(t *testing.T) {
	ctx := context.Background()
	today := date(2024, 1, 1)

	stored := func() *models.Booking {
		return &models.Booking{
			ID:        7,
			UserID:    42,
			CarID:     1,
			Start:     date(2024, 2, 1),
			End:       date(2024, 2, 10),
			CreatedAt: date(2023, 12, 1),
		}
	}

	t.Run("unchanged interval succeeds", func(t *testing.T) {
		repo := new(mockRepo)
		bus := new(mockBus)
		svc := newTestService(repo, bus, today)

		repo.On("GetBooking", ctx, int64(7)).Return(stored(), nil).Once()
		repo.On("GetCar", ctx, int64(1)).Return(testCar(1, "50.00"), nil).Once()
		repo.On("ListBookingsByCar", ctx, int64(1), int64(7)).Return([]models.Booking{}, nil).Once()
		repo.On("UpdateBooking", ctx, mock.Anything).Return(nil).Once()

		b, err := svc.Update(ctx, 7, date(2024, 2, 1), date(2024, 2, 10))
		require.NoError(t, err)
		assert.Equal(t, int64(9), b.Duration)
		assert.Equal(t, "450.00", b.TotalPrice.StringFixed(2))
		assert.Equal(t, date(2023, 12, 1), b.CreatedAt, "created timestamp must not change")
		assert.Equal(t, today, b.UpdatedAt)

		require.Len(t, bus.published, 1)
		assert.Equal(t, events.BookingUpdated, bus.published[0].Type)
	})

	t.Run("reprices new interval", func(t *testing.T) {
		repo := new(mockRepo)
		svc := newTestService(repo, new(mockBus), today)

		repo.On("GetBooking", ctx, int64(7)).Return(stored(), nil).Once()
		repo.On("GetCar", ctx, int64(1)).Return(testCar(1, "50.00"), nil).Once()
		repo.On("ListBookingsByCar", ctx, int64(1), int64(7)).Return([]models.Booking{}, nil).Once()
		repo.On("UpdateBooking", ctx, mock.Anything).Return(nil).Once()

		b, err := svc.Update(ctx, 7, date(2024, 3, 1), date(2024, 3, 3))
		require.NoError(t, err)
		assert.Equal(t, int64(2), b.Duration)
		assert.Equal(t, "100.00", b.TotalPrice.StringFixed(2))
	})

	t.Run("conflict with another booking", func(t *testing.T) {
		repo := new(mockRepo)
		svc := newTestService(repo, new(mockBus), today)

		repo.On("GetBooking", ctx, int64(7)).Return(stored(), nil).Once()
		repo.On("GetCar", ctx, int64(1)).Return(testCar(1, "50.00"), nil).Once()
		repo.On("ListBookingsByCar", ctx, int64(1), int64(7)).Return([]models.Booking{
			{ID: 8, CarID: 1, Start: date(2024, 2, 12), End: date(2024, 2, 15)},
		}, nil).Once()

		_, err := svc.Update(ctx, 7, date(2024, 2, 1), date(2024, 2, 14))
		var conflict *ConflictError
		require.ErrorAs(t, err, &conflict)
		assert.Equal(t, int64(8), conflict.BookingID)
		repo.AssertNotCalled(t, "UpdateBooking", mock.Anything, mock.Anything)
	})

	t.Run("unknown booking", func(t *testing.T) {
		repo := new(mockRepo)
		svc := newTestService(repo, new(mockBus), today)

		repo.On("GetBooking", ctx, int64(404)).Return(nil, ErrNotFound).Once()

		_, err := svc.Update(ctx, 404, date(2024, 2, 1), date(2024, 2, 10))
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestService_Delete(t *testing.T) {
	ctx := context.Background()
	today := date(2024, 1, 1)

	t.Run("ok", func(t *testing.T) {
		repo := new(mockRepo)
		bus := new(mockBus)
		svc := newTestService(repo, bus, today)

		repo.On("GetBooking", ctx, int64(7)).Return(&models.Booking{ID: 7, UserID: 42, CarID: 1}, nil).Once()
		repo.On("DeleteBooking", ctx, int64(7)).Return(nil).Once()

		require.NoError(t, svc.Delete(ctx, 7))
		require.Len(t, bus.published, 1)
		assert.Equal(t, events.BookingDeleted, bus.published[0].Type)
	})

	t.Run("unknown booking", func(t *testing.T) {
		repo := new(mockRepo)
		svc := newTestService(repo, new(mockBus), today)

		repo.On("GetBooking", ctx, int64(404)).Return(nil, ErrNotFound).Once()

		assert.ErrorIs(t, svc.Delete(ctx, 404), ErrNotFound)
	})
}
