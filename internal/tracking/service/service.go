package service

import (
	"context"
	"strings"
	"time"

	"fleet-tracker/internal/logger"
	"fleet-tracker/internal/tracking/model"
	apperrors "fleet-tracker/pkg/errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Data sources consumed by a reconciliation pass. All are read-only; the
// gorm implementations live in the repository package, tests supply fakes.

type AssetSource interface {
	ListTractors(ctx context.Context, orgID uuid.UUID) ([]model.Tractor, error)
	ListTrailers(ctx context.Context, orgID uuid.UUID) ([]model.Trailer, error)
}

type FleetSetSource interface {
	ListActive(ctx context.Context, orgID uuid.UUID) ([]model.FleetSet, error)
}

type LiveStateSource interface {
	ByDeviceIDs(ctx context.Context, orgID uuid.UUID, deviceIDs []string) ([]model.LiveState, error)
}

type CapabilitySource interface {
	ByDeviceIDs(ctx context.Context, deviceIDs []string) ([]model.DeviceCapability, error)
}

type ExecutionSource interface {
	LatestOpenByFleetSets(ctx context.Context, fleetSetIDs []uuid.UUID) ([]model.ExecutionStatus, error)
}

type PartySource interface {
	CarriersByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Carrier, error)
	DriversByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Driver, error)
}

type Sources struct {
	Assets       AssetSource
	FleetSets    FleetSetSource
	LiveStates   LiveStateSource
	Capabilities CapabilitySource
	Executions   ExecutionSource
	Parties      PartySource
}

// TrackingService owns the reconciliation pipeline and the snapshot store.
type TrackingService struct {
	src   Sources
	store *Store
	now   func() time.Time
}

func NewTrackingService(src Sources, store *Store) *TrackingService {
	return &TrackingService{
		src:   src,
		store: store,
		now:   time.Now,
	}
}

// Refresh runs one reconciliation pass for the organization, or returns the
// cached snapshot when one is loaded and force is false. Overlapping forced
// passes are resolved last-completer-wins; a superseded pass is discarded,
// not cancelled. On a fetch error the loaded marker is cleared (so the next
// attempt is not skipped) while the previous snapshot stays visible.
func (s *TrackingService) Refresh(ctx context.Context, orgID uuid.UUID, force bool) ([]model.TrackingUnit, error) {
	if orgID == uuid.Nil {
		return nil, apperrors.ErrOrganizationRequired
	}

	if !force && s.store.Loaded(orgID) {
		units, _ := s.store.Units(orgID)
		return units, nil
	}

	sequence := s.store.NextSequence()

	units, err := s.runPass(ctx, orgID)
	if err != nil {
		s.store.Invalidate(orgID)
		return nil, err
	}

	if !s.store.Commit(orgID, units, sequence, s.now()) {
		logger.WithOrg(orgID.String()).Debug("reconciliation pass superseded, result discarded",
			zap.Uint64("sequence", sequence),
		)
		current, _ := s.store.Units(orgID)
		return current, nil
	}

	logger.WithOrg(orgID.String()).Info("tracking snapshot replaced",
		zap.Uint64("sequence", sequence),
		zap.Int("units", len(units)),
	)

	return units, nil
}

// Units returns the organization's current snapshot without triggering a pass.
func (s *TrackingService) Units(orgID uuid.UUID) ([]model.TrackingUnit, bool) {
	return s.store.Units(orgID)
}

// Search filters units by case-insensitive substring over unit code, trailer
// code, driver name, location text and carrier name, and by execution
// substatus tab. Empty query and empty substatus match everything.
func (s *TrackingService) Search(units []model.TrackingUnit, query string, substatus model.ExecutionSubstatus) []model.TrackingUnit {
	query = strings.ToLower(strings.TrimSpace(query))

	matched := make([]model.TrackingUnit, 0, len(units))
	for _, unit := range units {
		if substatus != "" {
			if unit.ExecutionSubstatus == nil || *unit.ExecutionSubstatus != substatus {
				continue
			}
		}
		if query != "" && !unitMatches(&unit, query) {
			continue
		}
		matched = append(matched, unit)
	}

	return matched
}

func unitMatches(unit *model.TrackingUnit, query string) bool {
	for _, field := range []string{
		unit.UnitCode,
		unit.TrailerCode,
		unit.DriverName,
		unit.AddressText,
		unit.CarrierName,
	} {
		if strings.Contains(strings.ToLower(field), query) {
			return true
		}
	}
	return false
}

// Summarize derives the count summary. Counts are per-device: a fully paired
// fleet set contributes two units.
func (s *TrackingService) Summarize(units []model.TrackingUnit) model.TrackingSummary {
	summary := model.TrackingSummary{
		Total:       len(units),
		BySubstatus: make(map[model.ExecutionSubstatus]int),
	}

	for _, unit := range units {
		if unit.HasActiveTrip {
			summary.ActiveTrips++
		}
		if unit.ExecutionSubstatus != nil {
			summary.BySubstatus[*unit.ExecutionSubstatus]++
		}
	}

	return summary
}
