package repository

import (
	"context"

	"fleet-tracker/internal/database"
	"fleet-tracker/internal/tracking/model"
	apperrors "fleet-tracker/pkg/errors"

	"github.com/google/uuid"
)

type ExecutionRepository struct {
	db *database.Database
}

func NewExecutionRepository(db *database.Database) *ExecutionRepository {
	return &ExecutionRepository{db: db}
}

// LatestOpenByFleetSets returns, per fleet set, the most-recently-updated
// open dispatch-order substatus. At most one row per fleet set.
func (r *ExecutionRepository) LatestOpenByFleetSets(ctx context.Context, fleetSetIDs []uuid.UUID) ([]model.ExecutionStatus, error) {
	if len(fleetSetIDs) == 0 {
		return nil, nil
	}

	var statuses []model.ExecutionStatus
	err := r.db.DB.WithContext(ctx).Raw(`
        SELECT DISTINCT ON (fleet_set_id)
            fleet_set_id, substatus, updated_at
        FROM dispatch_orders
        WHERE fleet_set_id IN ? AND closed_at IS NULL
        ORDER BY fleet_set_id, updated_at DESC
    `, fleetSetIDs).Scan(&statuses).Error
	if err != nil {
		return nil, apperrors.QueryError("EXECUTION_QUERY_FAILED", apperrors.ErrExecutionQueryFailed, err)
	}

	return statuses, nil
}
