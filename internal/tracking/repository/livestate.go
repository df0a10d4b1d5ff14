package repository

import (
	"context"

	"fleet-tracker/internal/database"
	"fleet-tracker/internal/tracking/model"
	apperrors "fleet-tracker/pkg/errors"

	"github.com/google/uuid"
)

type LiveStateRepository struct {
	db *database.Database
}

func NewLiveStateRepository(db *database.Database) *LiveStateRepository {
	return &LiveStateRepository{db: db}
}

// ByDeviceIDs returns the latest telemetry row per device. Devices that have
// never reported simply have no row; absence is not an error.
func (r *LiveStateRepository) ByDeviceIDs(ctx context.Context, orgID uuid.UUID, deviceIDs []string) ([]model.LiveState, error) {
	if len(deviceIDs) == 0 {
		return nil, nil
	}

	var states []model.LiveState
	err := r.db.DB.WithContext(ctx).
		Where("org_id = ? AND device_id IN ?", orgID, deviceIDs).
		Find(&states).Error
	if err != nil {
		return nil, apperrors.QueryError("LIVE_STATE_QUERY_FAILED", apperrors.ErrLiveStateQueryFailed, err)
	}

	return states, nil
}
