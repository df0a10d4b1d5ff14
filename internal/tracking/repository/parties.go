package repository

import (
	"context"

	"fleet-tracker/internal/database"
	"fleet-tracker/internal/tracking/model"
	apperrors "fleet-tracker/pkg/errors"

	"github.com/google/uuid"
)

// PartyRepository resolves carrier and driver names for reconciled units.
type PartyRepository struct {
	db *database.Database
}

func NewPartyRepository(db *database.Database) *PartyRepository {
	return &PartyRepository{db: db}
}

func (r *PartyRepository) CarriersByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Carrier, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var carriers []model.Carrier
	err := r.db.DB.WithContext(ctx).
		Where("id IN ?", ids).
		Find(&carriers).Error
	if err != nil {
		return nil, apperrors.QueryError("PARTY_QUERY_FAILED", apperrors.ErrPartyQueryFailed, err)
	}

	return carriers, nil
}

func (r *PartyRepository) DriversByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Driver, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var drivers []model.Driver
	err := r.db.DB.WithContext(ctx).
		Where("id IN ?", ids).
		Find(&drivers).Error
	if err != nil {
		return nil, apperrors.QueryError("PARTY_QUERY_FAILED", apperrors.ErrPartyQueryFailed, err)
	}

	return drivers, nil
}
