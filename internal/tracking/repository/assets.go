package repository

import (
	"context"

	"fleet-tracker/internal/database"
	"fleet-tracker/internal/tracking/model"
	apperrors "fleet-tracker/pkg/errors"

	"github.com/google/uuid"
)

type AssetRepository struct {
	db *database.Database
}

func NewAssetRepository(db *database.Database) *AssetRepository {
	return &AssetRepository{db: db}
}

// ListTractors returns the organization's tractors that carry a telemetry
// device. Assets without a device id never appear in tracking.
func (r *AssetRepository) ListTractors(ctx context.Context, orgID uuid.UUID) ([]model.Tractor, error) {
	var tractors []model.Tractor
	err := r.db.DB.WithContext(ctx).
		Where("org_id = ? AND device_id IS NOT NULL AND device_id <> ''", orgID).
		Order("code ASC").
		Find(&tractors).Error
	if err != nil {
		return nil, apperrors.QueryError("TRACTOR_QUERY_FAILED", apperrors.ErrTractorQueryFailed, err)
	}

	return tractors, nil
}

func (r *AssetRepository) ListTrailers(ctx context.Context, orgID uuid.UUID) ([]model.Trailer, error) {
	var trailers []model.Trailer
	err := r.db.DB.WithContext(ctx).
		Where("org_id = ? AND device_id IS NOT NULL AND device_id <> ''", orgID).
		Order("code ASC").
		Find(&trailers).Error
	if err != nil {
		return nil, apperrors.QueryError("TRAILER_QUERY_FAILED", apperrors.ErrTrailerQueryFailed, err)
	}

	return trailers, nil
}
