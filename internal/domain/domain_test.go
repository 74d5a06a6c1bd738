package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// Таблица переходов статусов рейса
func TestFlightStatus_CanTransition(t *testing.T) {
	testCases := []struct {
		from    FlightStatus
		to      FlightStatus
		allowed bool
	}{
		{FlightStatusScheduled, FlightStatusBoarding, true},
		{FlightStatusScheduled, FlightStatusDelayed, true},
		{FlightStatusScheduled, FlightStatusCancelled, true},
		{FlightStatusScheduled, FlightStatusArrived, false},
		{FlightStatusBoarding, FlightStatusDeparted, true},
		{FlightStatusBoarding, FlightStatusScheduled, false},
		{FlightStatusDeparted, FlightStatusArrived, true},
		{FlightStatusDelayed, FlightStatusBoarding, true},
		{FlightStatusDelayed, FlightStatusDeparted, true},
		{FlightStatusArrived, FlightStatusCancelled, false},
		{FlightStatusCancelled, FlightStatusScheduled, false},
	}

	for _, tc := range testCases {
		t.Run(string(tc.from)+"_to_"+string(tc.to), func(t *testing.T) {
			assert.Equal(t, tc.allowed, tc.from.CanTransition(tc.to))
		})
	}
}

func TestFlightStatus_Terminal(t *testing.T) {
	assert.True(t, FlightStatusArrived.Terminal())
	assert.True(t, FlightStatusCancelled.Terminal())
	assert.False(t, FlightStatusScheduled.Terminal())
	assert.False(t, FlightStatusDelayed.Terminal())
}

func TestFlight_Bookable(t *testing.T) {
	flight := &Flight{Status: FlightStatusScheduled}
	assert.True(t, flight.Bookable())

	for _, status := range []FlightStatus{FlightStatusBoarding, FlightStatusDeparted, FlightStatusArrived, FlightStatusDelayed, FlightStatusCancelled} {
		flight.Status = status
		assert.False(t, flight.Bookable(), string(status))
	}
}

func TestFlight_TransitionTo(t *testing.T) {
	flight := &Flight{Status: FlightStatusScheduled}

	err := flight.TransitionTo(FlightStatusBoarding)
	assert.NoError(t, err)
	assert.Equal(t, FlightStatusBoarding, flight.Status)

	err = flight.TransitionTo(FlightStatusScheduled)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, FlightStatusBoarding, flight.Status)
}

// Таблица переходов статусов бронирования
func TestBookingStatus_CanTransition(t *testing.T) {
	testCases := []struct {
		from    BookingStatus
		to      BookingStatus
		allowed bool
	}{
		{BookingStatusPending, BookingStatusConfirmed, true},
		{BookingStatusPending, BookingStatusCancelled, true},
		{BookingStatusPending, BookingStatusCompleted, false},
		{BookingStatusConfirmed, BookingStatusCancelled, true},
		{BookingStatusConfirmed, BookingStatusCompleted, true},
		{BookingStatusConfirmed, BookingStatusPending, false},
		{BookingStatusCancelled, BookingStatusPending, false},
		{BookingStatusCancelled, BookingStatusConfirmed, false},
		{BookingStatusCompleted, BookingStatusCancelled, false},
	}

	for _, tc := range testCases {
		t.Run(string(tc.from)+"_to_"+string(tc.to), func(t *testing.T) {
			assert.Equal(t, tc.allowed, tc.from.CanTransition(tc.to))
		})
	}
}

func TestBookingStatus_Terminal(t *testing.T) {
	assert.False(t, BookingStatusPending.Terminal())
	assert.False(t, BookingStatusConfirmed.Terminal())
	assert.True(t, BookingStatusCancelled.Terminal())
	assert.True(t, BookingStatusCompleted.Terminal())
}

func TestPaymentStatus_CanTransition(t *testing.T) {
	assert.True(t, PaymentStatusPending.CanTransition(PaymentStatusPaid))
	assert.True(t, PaymentStatusPending.CanTransition(PaymentStatusFailed))
	assert.True(t, PaymentStatusPaid.CanTransition(PaymentStatusRefunded))
	assert.False(t, PaymentStatusPaid.CanTransition(PaymentStatusPending))
	assert.False(t, PaymentStatusFailed.CanTransition(PaymentStatusPaid))
	assert.False(t, PaymentStatusRefunded.CanTransition(PaymentStatusPaid))
}

func TestSeatStatus_CanTransition(t *testing.T) {
	assert.True(t, SeatStatusAvailable.CanTransition(SeatStatusOccupied))
	assert.True(t, SeatStatusAvailable.CanTransition(SeatStatusMaintenance))
	assert.True(t, SeatStatusOccupied.CanTransition(SeatStatusAvailable))
	assert.False(t, SeatStatusOccupied.CanTransition(SeatStatusMaintenance))
	assert.False(t, SeatStatusMaintenance.CanTransition(SeatStatusAvailable))
}

func TestParseSeatClass(t *testing.T) {
	for _, valid := range []string{"ECONOMY", "BUSINESS", "FIRST"} {
		class, err := ParseSeatClass(valid)
		assert.NoError(t, err)
		assert.Equal(t, SeatClass(valid), class)
	}

	_, err := ParseSeatClass("economy")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = ParseSeatClass("")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestParseFlightStatus(t *testing.T) {
	for _, valid := range []string{"SCHEDULED", "BOARDING", "DEPARTED", "ARRIVED", "DELAYED", "CANCELLED"} {
		status, err := ParseFlightStatus(valid)
		assert.NoError(t, err)
		assert.Equal(t, FlightStatus(valid), status)
	}

	_, err := ParseFlightStatus("GROUNDED")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = ParseFlightStatus("scheduled")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestParseBookingStatus(t *testing.T) {
	for _, valid := range []string{"PENDING", "CONFIRMED", "CANCELLED", "COMPLETED"} {
		status, err := ParseBookingStatus(valid)
		assert.NoError(t, err)
		assert.Equal(t, BookingStatus(valid), status)
	}

	_, err := ParseBookingStatus("EXPIRED")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = ParseBookingStatus("")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestParsePaymentOutcome(t *testing.T) {
	for _, valid := range []string{"PAID", "FAILED", "REFUNDED"} {
		outcome, err := ParsePaymentOutcome(valid)
		assert.NoError(t, err)
		assert.Equal(t, PaymentStatus(valid), outcome)
	}

	// PENDING - начальное состояние, не результат оплаты
	_, err := ParsePaymentOutcome("PENDING")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = ParsePaymentOutcome("paid")
	assert.ErrorIs(t, err, ErrValidation)
}
