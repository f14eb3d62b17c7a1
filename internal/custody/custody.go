package custody

import (
	"context"
	"fmt"
	"sync"

	"github.com/Domenick1991/stayescrow/internal/domain"
)

// Transferor is the external value-transfer channel: move amountCents to
// recipient, all or nothing.
type Transferor interface {
	Credit(ctx context.Context, recipient domain.Identity, amountCents int64) error
}

// Custody tracks the total value the engine is holding in escrow. Holds are
// accounting only; the funds arrived with the booking payment. Release hands
// the amount to the transfer channel and keeps the books if it succeeds.
type Custody struct {
	mu        sync.Mutex
	transfers Transferor
	heldCents int64
}

func New(transfers Transferor) *Custody {
	return &Custody{transfers: transfers}
}

func (c *Custody) Hold(amountCents int64) error {
	if amountCents <= 0 {
		return domain.ErrInvalidValue
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	c.heldCents += amountCents
	return nil
}

func (c *Custody) Release(ctx context.Context, recipient domain.Identity, amountCents int64) error {
	if amountCents <= 0 {
		return domain.ErrInvalidValue
	}
	if err := c.transfers.Credit(ctx, recipient, amountCents); err != nil {
		return fmt.Errorf("transfer to %s: %w", recipient, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.heldCents -= amountCents
	return nil
}

// Held reports the total currently escrowed, for diagnostics.
func (c *Custody) Held() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.heldCents
}
