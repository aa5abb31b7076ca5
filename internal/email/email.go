package email

import (
	"context"
	"fmt"

	"github.com/Veronika2030/supperspot/internal/kafka"
)

type Sender struct{}

func NewSender() *Sender {
	return &Sender{}
}

func (s *Sender) Send(ctx context.Context, event kafka.BookingEvent) error {
	fmt.Printf("send email to %s about %s for booking %s (%d seats)\n", event.ContactEmail, event.Type, event.BookingCode, event.People)
	return nil
}
