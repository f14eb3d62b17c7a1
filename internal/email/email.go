package email

import (
	"context"
	"fmt"

	"github.com/Domenick1991/stayescrow/internal/kafka"
)

type Sender struct{}

func NewSender() *Sender {
	return &Sender{}
}

func (s *Sender) Send(ctx context.Context, event kafka.EscrowEvent) error {
	fmt.Printf("notify host %s and guest %s about %s for slot %d booking %d (%d cents)\n",
		event.Host, event.Guest, event.Type, event.SlotID, event.BookingID, event.AmountCents)
	return nil
}
