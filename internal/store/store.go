package store

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"parking-backend/internal/model"
)

// Sentinel errors for the business failure classes. Callers distinguish them
// from infrastructure errors (wrapped gorm/driver errors) with errors.Is.
var (
	ErrSpotNotFound          = errors.New("spot not found")
	ErrOccupancyNotFound     = errors.New("occupancy not found")
	ErrAdminNotFound         = errors.New("admin not found")
	ErrNoActiveRate          = errors.New("no active price rate")
	ErrDuplicateSpotNumber   = errors.New("a spot with this number already exists")
	ErrActiveOccupancyExists = errors.New("an active occupancy already exists for this spot")
	ErrOccupancyClosed       = errors.New("occupancy is already closed")
	ErrInvalidRate           = errors.New("rate values must be greater than zero")
)

// Store defines the persistence operations for spots, occupancies and price
// rates. Spot and occupancy methods are pure record manipulation; cross-entity
// rules (availability checks, fee computation) belong to the engine, which
// brackets its paired writes with Transaction.
type Store interface {
	DB() *gorm.DB

	// Transaction runs fn against a store bound to a single database
	// transaction. Returning an error rolls every write back.
	Transaction(ctx context.Context, fn func(Store) error) error

	// Spot registry
	CreateSpot(ctx context.Context, number string) (model.Spot, error)
	SpotByID(ctx context.Context, id int64) (model.Spot, error)
	SpotByNumber(ctx context.Context, number string) (model.Spot, error)
	ListSpots(ctx context.Context) ([]model.Spot, error)
	MarkSpotOccupied(ctx context.Context, id int64, at time.Time) error
	MarkSpotFree(ctx context.Context, id int64) error

	// Occupancy ledger
	ActiveOccupancyForSpot(ctx context.Context, spotID int64) (model.Occupancy, error)
	OccupancyByID(ctx context.Context, id int64) (model.Occupancy, error)
	ListActiveOccupancies(ctx context.Context) ([]model.Occupancy, error)
	ListOccupancies(ctx context.Context) ([]model.Occupancy, error)
	ListOccupanciesByPlate(ctx context.Context, plate string) ([]model.Occupancy, error)
	OpenOccupancy(ctx context.Context, spotID int64, plate string, at time.Time) (model.Occupancy, error)
	CloseOccupancy(ctx context.Context, id int64, at time.Time, fee decimal.Decimal) (model.Occupancy, error)

	// Price catalog
	EffectiveRate(ctx context.Context, at time.Time) (model.PriceRate, error)
	IntroduceRate(ctx context.Context, perHour, perMinute decimal.Decimal, effectiveFrom time.Time) (model.PriceRate, error)
	ListRates(ctx context.Context) ([]model.PriceRate, error)

	// Admin accounts
	AdminByUsername(ctx context.Context, username string) (model.Admin, error)
}

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) DB() *gorm.DB {
	return s.db
}

func (s *gormStore) Transaction(ctx context.Context, fn func(Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormStore{db: tx})
	})
}
