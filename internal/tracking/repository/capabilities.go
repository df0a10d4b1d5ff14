package repository

import (
	"context"

	"fleet-tracker/internal/database"
	"fleet-tracker/internal/tracking/model"
	apperrors "fleet-tracker/pkg/errors"
)

type CapabilityRepository struct {
	db *database.Database
}

func NewCapabilityRepository(db *database.Database) *CapabilityRepository {
	return &CapabilityRepository{db: db}
}

// ByDeviceIDs returns capability rows for the given devices. Devices with no
// row are absent from the result; callers default them to minimal capability.
func (r *CapabilityRepository) ByDeviceIDs(ctx context.Context, deviceIDs []string) ([]model.DeviceCapability, error) {
	if len(deviceIDs) == 0 {
		return nil, nil
	}

	var capabilities []model.DeviceCapability
	err := r.db.DB.WithContext(ctx).
		Where("device_id IN ?", deviceIDs).
		Find(&capabilities).Error
	if err != nil {
		return nil, apperrors.QueryError("CAPABILITY_QUERY_FAILED", apperrors.ErrCapabilityQueryFailed, err)
	}

	return capabilities, nil
}
