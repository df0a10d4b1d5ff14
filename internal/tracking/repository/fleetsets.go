package repository

import (
	"context"

	"fleet-tracker/internal/database"
	"fleet-tracker/internal/tracking/model"
	apperrors "fleet-tracker/pkg/errors"

	"github.com/google/uuid"
)

type FleetSetRepository struct {
	db *database.Database
}

func NewFleetSetRepository(db *database.Database) *FleetSetRepository {
	return &FleetSetRepository{db: db}
}

// ListActive returns the organization's currently-active fleet sets: the
// open-ended assignments linking tractor, trailer, driver and carrier.
func (r *FleetSetRepository) ListActive(ctx context.Context, orgID uuid.UUID) ([]model.FleetSet, error) {
	var sets []model.FleetSet
	err := r.db.DB.WithContext(ctx).
		Where("org_id = ? AND is_active = true AND ends_at IS NULL", orgID).
		Order("updated_at ASC").
		Find(&sets).Error
	if err != nil {
		return nil, apperrors.QueryError("FLEET_SET_QUERY_FAILED", apperrors.ErrFleetSetQueryFailed, err)
	}

	return sets, nil
}
