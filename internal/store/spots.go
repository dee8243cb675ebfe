package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"parking-backend/internal/model"
)

// CreateSpot registers a new free spot. Number uniqueness (case-sensitive
// exact match) is enforced by the unique index, so of two concurrent creates
// with the same number exactly one succeeds and the other sees the duplicate
// error.
func (s *gormStore) CreateSpot(ctx context.Context, number string) (model.Spot, error) {
	spot := model.Spot{Number: number, Occupied: false}
	if err := s.db.WithContext(ctx).Create(&spot).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return model.Spot{}, fmt.Errorf("number %q: %w", number, ErrDuplicateSpotNumber)
		}
		return model.Spot{}, fmt.Errorf("failed to create spot %q: %w", number, err)
	}
	return spot, nil
}

func (s *gormStore) SpotByID(ctx context.Context, id int64) (model.Spot, error) {
	var spot model.Spot
	if err := s.db.WithContext(ctx).First(&spot, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return model.Spot{}, fmt.Errorf("spot %d: %w", id, ErrSpotNotFound)
		}
		return model.Spot{}, fmt.Errorf("failed to fetch spot %d: %w", id, err)
	}
	return spot, nil
}

func (s *gormStore) SpotByNumber(ctx context.Context, number string) (model.Spot, error) {
	var spot model.Spot
	if err := s.db.WithContext(ctx).Where("number = ?", number).First(&spot).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return model.Spot{}, fmt.Errorf("spot %q: %w", number, ErrSpotNotFound)
		}
		return model.Spot{}, fmt.Errorf("failed to fetch spot %q: %w", number, err)
	}
	return spot, nil
}

func (s *gormStore) ListSpots(ctx context.Context) ([]model.Spot, error) {
	var spots []model.Spot
	if err := s.db.WithContext(ctx).Order("number").Find(&spots).Error; err != nil {
		return nil, fmt.Errorf("failed to list spots: %w", err)
	}
	return spots, nil
}

// MarkSpotOccupied flips the occupied flag and records the occupation time.
// No availability check happens here; the engine performs it under its
// transaction before calling.
func (s *gormStore) MarkSpotOccupied(ctx context.Context, id int64, at time.Time) error {
	res := s.db.WithContext(ctx).Model(&model.Spot{}).Where("id = ?", id).
		Updates(map[string]any{"occupied": true, "last_occupied_at": at})
	if res.Error != nil {
		return fmt.Errorf("failed to mark spot %d occupied: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("spot %d: %w", id, ErrSpotNotFound)
	}
	return nil
}

func (s *gormStore) MarkSpotFree(ctx context.Context, id int64) error {
	res := s.db.WithContext(ctx).Model(&model.Spot{}).Where("id = ?", id).
		Update("occupied", false)
	if res.Error != nil {
		return fmt.Errorf("failed to mark spot %d free: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("spot %d: %w", id, ErrSpotNotFound)
	}
	return nil
}
