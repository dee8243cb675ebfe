package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"parking-backend/internal/model"
)

// EffectiveRate returns the rate in force at the given instant. If manual
// edits ever leave more than one candidate, the most recently started rate
// wins.
func (s *gormStore) EffectiveRate(ctx context.Context, at time.Time) (model.PriceRate, error) {
	var rate model.PriceRate
	err := s.db.WithContext(ctx).
		Where("active = ? AND effective_from <= ? AND (effective_until IS NULL OR effective_until >= ?)", true, at, at).
		Order("effective_from DESC").
		First(&rate).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return model.PriceRate{}, ErrNoActiveRate
		}
		return model.PriceRate{}, fmt.Errorf("failed to fetch effective rate: %w", err)
	}
	return rate, nil
}

// IntroduceRate supersedes the current rate set and inserts the new rate as
// one transaction, so no reader ever observes zero or two effective rates.
// Open-ended predecessors get their effective_until closed at the new rate's
// effective_from.
func (s *gormStore) IntroduceRate(ctx context.Context, perHour, perMinute decimal.Decimal, effectiveFrom time.Time) (model.PriceRate, error) {
	if perHour.LessThanOrEqual(decimal.Zero) || perMinute.LessThanOrEqual(decimal.Zero) {
		return model.PriceRate{}, ErrInvalidRate
	}

	rate := model.PriceRate{
		PerHour:       perHour,
		PerMinute:     perMinute,
		EffectiveFrom: effectiveFrom,
		Active:        true,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.PriceRate{}).
			Where("active = ? AND effective_until IS NULL", true).
			Update("effective_until", effectiveFrom).Error; err != nil {
			return fmt.Errorf("failed to close open-ended rates: %w", err)
		}
		if err := tx.Model(&model.PriceRate{}).
			Where("active = ?", true).
			Update("active", false).Error; err != nil {
			return fmt.Errorf("failed to deactivate prior rates: %w", err)
		}
		if err := tx.Create(&rate).Error; err != nil {
			return fmt.Errorf("failed to create rate: %w", err)
		}
		return nil
	})
	if err != nil {
		return model.PriceRate{}, err
	}
	return rate, nil
}

func (s *gormStore) ListRates(ctx context.Context) ([]model.PriceRate, error) {
	var rates []model.PriceRate
	if err := s.db.WithContext(ctx).Order("effective_from DESC").Find(&rates).Error; err != nil {
		return nil, fmt.Errorf("failed to list rates: %w", err)
	}
	return rates, nil
}
