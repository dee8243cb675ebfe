package engine

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"

	"parking-backend/internal/model"
	"parking-backend/internal/plate"
	"parking-backend/internal/store"
)

// Business-rule violations surfaced by the engine. Storage-level failure
// classes (not-found, conflicts, no active rate) come from the store package;
// both sets are matched with errors.Is.
var (
	ErrSpotOccupied = errors.New("spot is already occupied")
	ErrInvalidPlate = errors.New("invalid vehicle plate")
)

// Engine drives the occupancy lifecycle: it owns the transactional boundary
// around the paired spot-flag and ledger writes, so the two never drift apart.
// The clock is injected to keep fee computation deterministic in tests.
type Engine struct {
	store store.Store
	now   func() time.Time
}

// New creates an engine on the wall clock.
func New(s store.Store) *Engine {
	return NewWithClock(s, time.Now)
}

// NewWithClock creates an engine with a caller-supplied clock.
func NewWithClock(s store.Store, now func() time.Time) *Engine {
	return &Engine{store: s, now: now}
}

// OpenOccupancy parks a vehicle on a spot. The availability check, the ledger
// insert and the spot-flag update run in one transaction; a concurrent open on
// the same spot loses either on the re-read of the flag or on the active-spot
// unique index, never by producing a second active record.
func (e *Engine) OpenOccupancy(ctx context.Context, spotID int64, rawPlate string) (model.Occupancy, error) {
	normalized, err := plate.Validate(rawPlate)
	if err != nil {
		return model.Occupancy{}, fmt.Errorf("%w: %v", ErrInvalidPlate, err)
	}

	now := e.now().UTC()
	var opened model.Occupancy
	err = e.store.Transaction(ctx, func(tx store.Store) error {
		spot, err := tx.SpotByID(ctx, spotID)
		if err != nil {
			return err
		}
		if spot.Occupied {
			return fmt.Errorf("spot %q: %w", spot.Number, ErrSpotOccupied)
		}

		// The flag and the ledger are updated together below, but a manual
		// edit could still leave a stray active record. Refuse to stack a
		// second one on top of it.
		if _, err := tx.ActiveOccupancyForSpot(ctx, spotID); err == nil {
			return fmt.Errorf("spot %q: %w", spot.Number, store.ErrActiveOccupancyExists)
		} else if !errors.Is(err, store.ErrOccupancyNotFound) {
			return err
		}

		opened, err = tx.OpenOccupancy(ctx, spotID, normalized, now)
		if err != nil {
			return err
		}
		return tx.MarkSpotOccupied(ctx, spotID, now)
	})
	if err != nil {
		return model.Occupancy{}, err
	}
	return opened, nil
}

// CloseOccupancy ends a session: computes the fee at the current instant,
// stamps exit time and fee, and frees the spot, all in one transaction. If
// fee computation fails (no active rate) nothing is written and the spot
// stays occupied.
func (e *Engine) CloseOccupancy(ctx context.Context, occupancyID int64) (model.Occupancy, error) {
	now := e.now().UTC()
	var closed model.Occupancy
	err := e.store.Transaction(ctx, func(tx store.Store) error {
		occ, err := tx.OccupancyByID(ctx, occupancyID)
		if err != nil {
			return err
		}
		if occ.ExitTime != nil {
			return fmt.Errorf("occupancy %d: %w", occupancyID, store.ErrOccupancyClosed)
		}

		fee, err := e.fee(ctx, tx, occ, now)
		if err != nil {
			return err
		}

		closed, err = tx.CloseOccupancy(ctx, occupancyID, now, fee)
		if err != nil {
			return err
		}
		return tx.MarkSpotFree(ctx, occ.SpotID)
	})
	if err != nil {
		return model.Occupancy{}, err
	}
	return closed, nil
}

// ComputeFee quotes the fee for an occupancy without persisting anything.
// For a still-open occupancy the quote is priced up to the current instant.
func (e *Engine) ComputeFee(ctx context.Context, occupancyID int64) (decimal.Decimal, error) {
	occ, err := e.store.OccupancyByID(ctx, occupancyID)
	if err != nil {
		return decimal.Zero, err
	}
	return e.fee(ctx, e.store, occ, e.now().UTC())
}

// fee bills ceil(elapsed minutes) at the per-minute rate in force at the exit
// instant, with a minimum of one minute. The floor also applies when exit
// precedes entry (clock skew or manual edits): the duration is forced to one
// minute instead of failing.
func (e *Engine) fee(ctx context.Context, s store.Store, occ model.Occupancy, now time.Time) (decimal.Decimal, error) {
	exit := now
	if occ.ExitTime != nil {
		exit = *occ.ExitTime
	}

	rate, err := s.EffectiveRate(ctx, exit)
	if err != nil {
		return decimal.Zero, err
	}

	minutes := int64(math.Ceil(exit.Sub(occ.EntryTime).Minutes()))
	if minutes < 1 {
		minutes = 1
	}
	return rate.PerMinute.Mul(decimal.NewFromInt(minutes)), nil
}
