package ledger

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/Domenick1991/flightbooking/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// Mock структуры

type MockBookingRepository struct {
	mock.Mock
}

func (m *MockBookingRepository) Create(ctx context.Context, booking *domain.Booking, seatIDs []int64) error {
	args := m.Called(ctx, booking, seatIDs)
	return args.Error(0)
}

func (m *MockBookingRepository) GetByNumber(ctx context.Context, number string) (*domain.Booking, error) {
	args := m.Called(ctx, number)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingRepository) ListByUser(ctx context.Context, userID int64) ([]domain.Booking, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]domain.Booking), args.Error(1)
}

func (m *MockBookingRepository) ListByFlight(ctx context.Context, flightID int64) ([]domain.Booking, error) {
	args := m.Called(ctx, flightID)
	return args.Get(0).([]domain.Booking), args.Error(1)
}

func (m *MockBookingRepository) ListByStatus(ctx context.Context, status domain.BookingStatus) ([]domain.Booking, error) {
	args := m.Called(ctx, status)
	return args.Get(0).([]domain.Booking), args.Error(1)
}

func (m *MockBookingRepository) ListByBookingDateRange(ctx context.Context, from, to time.Time) ([]domain.Booking, error) {
	args := m.Called(ctx, from, to)
	return args.Get(0).([]domain.Booking), args.Error(1)
}

func (m *MockBookingRepository) ListExpiredPending(ctx context.Context, deadline time.Time) ([]domain.Booking, error) {
	args := m.Called(ctx, deadline)
	return args.Get(0).([]domain.Booking), args.Error(1)
}

func (m *MockBookingRepository) ConfirmPending(ctx context.Context, number string) (*domain.Booking, error) {
	args := m.Called(ctx, number)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingRepository) CancelAndRelease(ctx context.Context, number string, from []domain.BookingStatus, payment domain.PaymentStatus) (*domain.Booking, error) {
	args := m.Called(ctx, number, from, payment)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingRepository) CompleteConfirmed(ctx context.Context, number string) (*domain.Booking, error) {
	args := m.Called(ctx, number)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingRepository) RefundPaid(ctx context.Context, number string) (*domain.Booking, error) {
	args := m.Called(ctx, number)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

// Тест 1: Формат номера бронирования
func TestGenerateBookingNumber_Format(t *testing.T) {
	pattern := regexp.MustCompile(`^BK\d{13}[A-Z0-9]{6}$`)

	for i := 0; i < 20; i++ {
		number := GenerateBookingNumber()
		assert.Regexp(t, pattern, number)
	}
}

// Тест 2: Создание бронирования - успешный сценарий
func TestLedgerService_CreateBooking_Success(t *testing.T) {
	mockRepo := &MockBookingRepository{}
	service := NewService(mockRepo)

	ctx := context.Background()
	holdUntil := time.Now().Add(15 * time.Minute)
	input := CreateBookingInput{
		UserID:          7,
		FlightID:        4,
		Passengers:      2,
		SeatIDs:         []int64{101, 102},
		TotalPriceCents: 25000,
		HoldExpiresAt:   holdUntil,
	}

	mockRepo.On("Create", ctx, mock.AnythingOfType("*domain.Booking"), []int64{101, 102}).Return(nil).Once()

	booking, err := service.CreateBooking(ctx, input)

	assert.NoError(t, err)
	assert.NotNil(t, booking)
	assert.Equal(t, int64(7), booking.UserID)
	assert.Equal(t, int64(4), booking.FlightID)
	assert.Equal(t, 2, booking.Passengers)
	assert.Equal(t, int64(25000), booking.TotalPriceCents)
	assert.Equal(t, holdUntil, booking.HoldExpiresAt)
	assert.Regexp(t, `^BK`, booking.BookingNumber)

	mockRepo.AssertExpectations(t)
}

// Тест 3: Создание бронирования - ошибки валидации
func TestLedgerService_CreateBooking_ValidationErrors(t *testing.T) {
	service := NewService(&MockBookingRepository{})
	ctx := context.Background()

	testCases := []struct {
		name  string
		input CreateBookingInput
	}{
		{
			name:  "Zero passengers",
			input: CreateBookingInput{UserID: 7, FlightID: 4, Passengers: 0},
		},
		{
			name:  "Negative passengers",
			input: CreateBookingInput{UserID: 7, FlightID: 4, Passengers: -1},
		},
		{
			name:  "Seat count mismatch",
			input: CreateBookingInput{UserID: 7, FlightID: 4, Passengers: 2, SeatIDs: []int64{101}},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			booking, err := service.CreateBooking(ctx, tc.input)
			assert.ErrorIs(t, err, domain.ErrValidation)
			assert.Nil(t, booking)
		})
	}
}

// Тест 4: Создание бронирования - повтор при коллизии номера
func TestLedgerService_CreateBooking_RetriesOnNumberConflict(t *testing.T) {
	mockRepo := &MockBookingRepository{}
	service := NewService(mockRepo)

	ctx := context.Background()
	input := CreateBookingInput{
		UserID:     7,
		FlightID:   4,
		Passengers: 1,
		SeatIDs:    []int64{101},
	}

	mockRepo.On("Create", ctx, mock.AnythingOfType("*domain.Booking"), []int64{101}).
		Return(domain.ErrBookingNumberConflict).Once()
	mockRepo.On("Create", ctx, mock.AnythingOfType("*domain.Booking"), []int64{101}).
		Return(nil).Once()

	booking, err := service.CreateBooking(ctx, input)

	assert.NoError(t, err)
	assert.NotNil(t, booking)
	mockRepo.AssertNumberOfCalls(t, "Create", 2)
}

// Тест 5: Создание бронирования - попытки исчерпаны
func TestLedgerService_CreateBooking_GivesUpAfterAttempts(t *testing.T) {
	mockRepo := &MockBookingRepository{}
	service := NewService(mockRepo, WithNumberAttempts(2))

	ctx := context.Background()
	input := CreateBookingInput{
		UserID:     7,
		FlightID:   4,
		Passengers: 1,
		SeatIDs:    []int64{101},
	}

	mockRepo.On("Create", ctx, mock.AnythingOfType("*domain.Booking"), []int64{101}).
		Return(domain.ErrBookingNumberConflict).Twice()

	booking, err := service.CreateBooking(ctx, input)

	assert.ErrorIs(t, err, domain.ErrBookingNumberConflict)
	assert.Nil(t, booking)
	mockRepo.AssertNumberOfCalls(t, "Create", 2)
}

// Тест 6: Отмена - бронирование уже в терминальном статусе
func TestLedgerService_Cancel_TerminalBooking(t *testing.T) {
	mockRepo := &MockBookingRepository{}
	service := NewService(mockRepo)

	ctx := context.Background()
	mockRepo.On("GetByNumber", ctx, "BK1").Return(&domain.Booking{
		BookingNumber: "BK1",
		Status:        domain.BookingStatusCancelled,
	}, nil).Once()

	booking, err := service.Cancel(ctx, "BK1")

	assert.ErrorIs(t, err, domain.ErrBookingTerminal)
	assert.Nil(t, booking)
	mockRepo.AssertNotCalled(t, "CancelAndRelease", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

// Тест 7: Отмена - проигрыш гонки другому финализатору
func TestLedgerService_Cancel_LostRace(t *testing.T) {
	mockRepo := &MockBookingRepository{}
	service := NewService(mockRepo)

	ctx := context.Background()
	mockRepo.On("GetByNumber", ctx, "BK1").Return(&domain.Booking{
		BookingNumber: "BK1",
		Status:        domain.BookingStatusPending,
	}, nil).Once()
	mockRepo.On("CancelAndRelease", ctx, "BK1",
		[]domain.BookingStatus{domain.BookingStatusPending, domain.BookingStatusConfirmed},
		domain.PaymentStatus("")).
		Return(nil, domain.ErrAlreadyFinalized).Once()

	booking, err := service.Cancel(ctx, "BK1")

	assert.ErrorIs(t, err, domain.ErrBookingTerminal)
	assert.Nil(t, booking)
	mockRepo.AssertExpectations(t)
}

// Тест 8: Переход CONFIRMED требует оплаты
func TestLedgerService_Transition_ConfirmRequiresPayment(t *testing.T) {
	mockRepo := &MockBookingRepository{}
	service := NewService(mockRepo)

	ctx := context.Background()
	mockRepo.On("GetByNumber", ctx, "BK1").Return(&domain.Booking{
		BookingNumber: "BK1",
		Status:        domain.BookingStatusPending,
		PaymentStatus: domain.PaymentStatusPending,
	}, nil).Once()

	booking, err := service.Transition(ctx, "BK1", domain.BookingStatusConfirmed)

	assert.ErrorIs(t, err, domain.ErrInvalidPaymentState)
	assert.Nil(t, booking)
	mockRepo.AssertNotCalled(t, "ConfirmPending", mock.Anything, mock.Anything)
}

// Тест 9: Переход по недопустимому ребру
func TestLedgerService_Transition_InvalidEdge(t *testing.T) {
	mockRepo := &MockBookingRepository{}
	service := NewService(mockRepo)

	ctx := context.Background()
	mockRepo.On("GetByNumber", ctx, "BK1").Return(&domain.Booking{
		BookingNumber: "BK1",
		Status:        domain.BookingStatusPending,
	}, nil).Once()

	booking, err := service.Transition(ctx, "BK1", domain.BookingStatusCompleted)

	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	assert.Nil(t, booking)
}

// Тест 10: Истечение срока - условное ребро только из PENDING
func TestLedgerService_Expire(t *testing.T) {
	mockRepo := &MockBookingRepository{}
	service := NewService(mockRepo)

	ctx := context.Background()
	expired := &domain.Booking{
		BookingNumber: "BK1",
		Status:        domain.BookingStatusCancelled,
	}
	mockRepo.On("CancelAndRelease", ctx, "BK1",
		[]domain.BookingStatus{domain.BookingStatusPending},
		domain.PaymentStatus("")).
		Return(expired, nil).Once()

	booking, err := service.Expire(ctx, "BK1")

	assert.NoError(t, err)
	assert.Equal(t, domain.BookingStatusCancelled, booking.Status)
	mockRepo.AssertExpectations(t)
}

// Тест 11: Отказ оплаты переводит в CANCELLED/FAILED
func TestLedgerService_FailPayment(t *testing.T) {
	mockRepo := &MockBookingRepository{}
	service := NewService(mockRepo)

	ctx := context.Background()
	cancelled := &domain.Booking{
		BookingNumber: "BK1",
		Status:        domain.BookingStatusCancelled,
		PaymentStatus: domain.PaymentStatusFailed,
	}
	mockRepo.On("CancelAndRelease", ctx, "BK1",
		[]domain.BookingStatus{domain.BookingStatusPending},
		domain.PaymentStatusFailed).
		Return(cancelled, nil).Once()

	booking, err := service.FailPayment(ctx, "BK1")

	assert.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusFailed, booking.PaymentStatus)
	mockRepo.AssertExpectations(t)
}
