package email

import (
	"context"
	"log"

	"github.com/Domenick1991/flightbooking/internal/kafka"
)

// Sender turns consumed booking events into user notifications. Delivery
// itself is handled outside the core; this logs what would be sent.
type Sender struct{}

func NewSender() *Sender {
	return &Sender{}
}

func (s *Sender) Send(ctx context.Context, event kafka.BookingEvent) error {
	log.Printf("notify user %d: booking %s %s (flight %d, %d passengers)",
		event.UserID, event.BookingNumber, event.Type, event.FlightID, event.Passengers)
	return nil
}
