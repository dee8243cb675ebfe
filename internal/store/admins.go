package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"parking-backend/internal/model"
)

// AdminByUsername returns the active admin account with the given username.
// Deactivated accounts are treated as absent.
func (s *gormStore) AdminByUsername(ctx context.Context, username string) (model.Admin, error) {
	var admin model.Admin
	err := s.db.WithContext(ctx).
		Where("username = ? AND active = ?", username, true).
		First(&admin).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return model.Admin{}, fmt.Errorf("admin %q: %w", username, ErrAdminNotFound)
		}
		return model.Admin{}, fmt.Errorf("failed to fetch admin %q: %w", username, err)
	}
	return admin, nil
}
