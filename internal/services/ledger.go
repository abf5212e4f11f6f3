package services

import (
	"context"
	"fmt"

	"github.com/sharearide/sharearide-backend/internal/domain"
	"github.com/sharearide/sharearide-backend/internal/models"
	"github.com/sharearide/sharearide-backend/internal/store"
)

// CapacityLedger guards the seat and luggage counters of ride offers.
type CapacityLedger struct{}

// TryReserve checks and decrements an offer's capacity as one unit. It must run
// inside a transaction and while the caller holds the offer's lock. The
// returned offer carries the decremented counters.
func (CapacityLedger) TryReserve(ctx context.Context, tx store.Store, offerID uint, seatsNeeded, luggageNeeded int) (*models.RideOffer, error) {
	if seatsNeeded < 1 {
		return nil, domain.Invalid("seatsNeeded", "must be at least 1")
	}
	if luggageNeeded < 0 {
		return nil, domain.Invalid("luggageNeeded", "must not be negative")
	}

	offer, err := tx.LockOffer(ctx, offerID)
	if err != nil {
		return nil, err
	}
	if !offer.HasCapacity(seatsNeeded, luggageNeeded) {
		return nil, fmt.Errorf("offer %d has %d seats and %d luggage left: %w",
			offerID, offer.SeatsAvailable, offer.LuggageCount, domain.ErrInsufficientCapacity)
	}
	if err := tx.DecrementCapacity(ctx, offerID, seatsNeeded, luggageNeeded); err != nil {
		return nil, err
	}

	offer.SeatsAvailable -= seatsNeeded
	offer.LuggageCount -= luggageNeeded
	return offer, nil
}
