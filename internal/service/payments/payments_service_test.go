package payments

import (
	"context"
	"testing"

	"github.com/Domenick1991/flightbooking/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockPaymentRepository struct {
	mock.Mock
}

func (m *MockPaymentRepository) Create(ctx context.Context, payment *domain.Payment) error {
	args := m.Called(ctx, payment)
	return args.Error(0)
}

func (m *MockPaymentRepository) ListByBooking(ctx context.Context, bookingID int64) ([]domain.Payment, error) {
	args := m.Called(ctx, bookingID)
	return args.Get(0).([]domain.Payment), args.Error(1)
}

// Тест 1: Запись попытки оплаты - успешный сценарий
func TestPaymentService_RecordAttempt_Success(t *testing.T) {
	mockRepo := &MockPaymentRepository{}
	service := NewService(mockRepo)

	ctx := context.Background()
	booking := &domain.Booking{
		ID:            9,
		BookingNumber: "BK1",
		Status:        domain.BookingStatusPending,
		PaymentStatus: domain.PaymentStatusPending,
	}

	mockRepo.On("Create", ctx, mock.AnythingOfType("*domain.Payment")).Return(nil).Once()

	payment, err := service.RecordAttempt(ctx, booking, "txn-001", domain.PaymentStatusPaid)

	assert.NoError(t, err)
	assert.NotNil(t, payment)
	assert.Equal(t, int64(9), payment.BookingID)
	assert.Equal(t, "txn-001", payment.TransactionID)
	assert.Equal(t, domain.PaymentStatusPaid, payment.Status)
	mockRepo.AssertExpectations(t)
}

// Тест 2: Запись попытки оплаты - пустой идентификатор транзакции
func TestPaymentService_RecordAttempt_MissingTransactionID(t *testing.T) {
	service := NewService(&MockPaymentRepository{})
	ctx := context.Background()
	booking := &domain.Booking{ID: 9, BookingNumber: "BK1"}

	payment, err := service.RecordAttempt(ctx, booking, "", domain.PaymentStatusPaid)

	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Nil(t, payment)
}

// Тест 3: Возврат средств допустим только для оплаченного бронирования
func TestPaymentService_RecordAttempt_RefundRequiresPaid(t *testing.T) {
	mockRepo := &MockPaymentRepository{}
	service := NewService(mockRepo)

	ctx := context.Background()
	booking := &domain.Booking{
		ID:            9,
		BookingNumber: "BK1",
		PaymentStatus: domain.PaymentStatusPending,
	}

	payment, err := service.RecordAttempt(ctx, booking, "txn-002", domain.PaymentStatusRefunded)

	assert.ErrorIs(t, err, domain.ErrInvalidPaymentState)
	assert.Nil(t, payment)
	mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

// Тест 4: Повторный PAID с новым идентификатором транзакции не записывается
func TestPaymentService_RecordAttempt_SecondPaidRejected(t *testing.T) {
	mockRepo := &MockPaymentRepository{}
	service := NewService(mockRepo)

	ctx := context.Background()

	testCases := []struct {
		name          string
		paymentStatus domain.PaymentStatus
	}{
		{"Already paid", domain.PaymentStatusPaid},
		{"Already failed", domain.PaymentStatusFailed},
		{"Already refunded", domain.PaymentStatusRefunded},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			booking := &domain.Booking{
				ID:            9,
				BookingNumber: "BK1",
				PaymentStatus: tc.paymentStatus,
			}

			payment, err := service.RecordAttempt(ctx, booking, "txn-fresh", domain.PaymentStatusPaid)

			assert.ErrorIs(t, err, domain.ErrAlreadyFinalized)
			assert.Nil(t, payment)
		})
	}

	mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

// Тест 5: Дубликат транзакции отклоняется репозиторием
func TestPaymentService_RecordAttempt_DuplicateTransaction(t *testing.T) {
	mockRepo := &MockPaymentRepository{}
	service := NewService(mockRepo)

	ctx := context.Background()
	booking := &domain.Booking{ID: 9, BookingNumber: "BK1", PaymentStatus: domain.PaymentStatusPending}

	mockRepo.On("Create", ctx, mock.AnythingOfType("*domain.Payment")).
		Return(domain.ErrDuplicateTransaction).Once()

	payment, err := service.RecordAttempt(ctx, booking, "txn-001", domain.PaymentStatusPaid)

	assert.ErrorIs(t, err, domain.ErrDuplicateTransaction)
	assert.Nil(t, payment)
	mockRepo.AssertExpectations(t)
}
