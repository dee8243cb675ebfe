package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"parking-backend/internal/model"
)

func (s *gormStore) ActiveOccupancyForSpot(ctx context.Context, spotID int64) (model.Occupancy, error) {
	var occ model.Occupancy
	err := s.db.WithContext(ctx).Where("spot_id = ? AND active = ?", spotID, true).First(&occ).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return model.Occupancy{}, fmt.Errorf("no active occupancy for spot %d: %w", spotID, ErrOccupancyNotFound)
		}
		return model.Occupancy{}, fmt.Errorf("failed to fetch active occupancy for spot %d: %w", spotID, err)
	}
	return occ, nil
}

func (s *gormStore) OccupancyByID(ctx context.Context, id int64) (model.Occupancy, error) {
	var occ model.Occupancy
	if err := s.db.WithContext(ctx).Preload("Spot").First(&occ, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return model.Occupancy{}, fmt.Errorf("occupancy %d: %w", id, ErrOccupancyNotFound)
		}
		return model.Occupancy{}, fmt.Errorf("failed to fetch occupancy %d: %w", id, err)
	}
	return occ, nil
}

func (s *gormStore) ListActiveOccupancies(ctx context.Context) ([]model.Occupancy, error) {
	var occs []model.Occupancy
	err := s.db.WithContext(ctx).Preload("Spot").
		Where("active = ?", true).
		Order("entry_time DESC").
		Find(&occs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list active occupancies: %w", err)
	}
	return occs, nil
}

func (s *gormStore) ListOccupancies(ctx context.Context) ([]model.Occupancy, error) {
	var occs []model.Occupancy
	err := s.db.WithContext(ctx).Preload("Spot").
		Order("entry_time DESC").
		Find(&occs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list occupancies: %w", err)
	}
	return occs, nil
}

func (s *gormStore) ListOccupanciesByPlate(ctx context.Context, plate string) ([]model.Occupancy, error) {
	var occs []model.Occupancy
	err := s.db.WithContext(ctx).Preload("Spot").
		Where("vehicle_plate = ?", plate).
		Order("entry_time DESC").
		Find(&occs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list occupancies for plate %q: %w", plate, err)
	}
	return occs, nil
}

// OpenOccupancy inserts a new active record. Spot availability is not checked
// here; the unique index on (spot_id) where active is the last line of defense
// against two concurrent opens slipping past the engine's checks, and losing
// on it surfaces as ErrActiveOccupancyExists rather than a raw driver error.
func (s *gormStore) OpenOccupancy(ctx context.Context, spotID int64, plate string, at time.Time) (model.Occupancy, error) {
	occ := model.Occupancy{
		SpotID:       spotID,
		VehiclePlate: plate,
		EntryTime:    at,
		Active:       true,
	}
	if err := s.db.WithContext(ctx).Omit(clause.Associations).Create(&occ).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return model.Occupancy{}, fmt.Errorf("spot %d: %w", spotID, ErrActiveOccupancyExists)
		}
		return model.Occupancy{}, fmt.Errorf("failed to open occupancy on spot %d: %w", spotID, err)
	}
	return occ, nil
}

// CloseOccupancy stamps the exit time and fee and deactivates the record.
// A record that already has an exit time is never mutated again.
func (s *gormStore) CloseOccupancy(ctx context.Context, id int64, at time.Time, fee decimal.Decimal) (model.Occupancy, error) {
	var occ model.Occupancy
	if err := s.db.WithContext(ctx).First(&occ, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return model.Occupancy{}, fmt.Errorf("occupancy %d: %w", id, ErrOccupancyNotFound)
		}
		return model.Occupancy{}, fmt.Errorf("failed to fetch occupancy %d: %w", id, err)
	}
	if occ.ExitTime != nil {
		return model.Occupancy{}, fmt.Errorf("occupancy %d: %w", id, ErrOccupancyClosed)
	}

	occ.ExitTime = &at
	occ.FeePaid = &fee
	occ.Active = false
	if err := s.db.WithContext(ctx).Omit(clause.Associations).Save(&occ).Error; err != nil {
		return model.Occupancy{}, fmt.Errorf("failed to close occupancy %d: %w", id, err)
	}
	return occ, nil
}
