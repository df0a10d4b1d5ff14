package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"fleet-tracker/internal/tracking/model"
	apperrors "fleet-tracker/pkg/errors"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSources struct {
	tractors  []model.Tractor
	trailers  []model.Trailer
	fleetSets []model.FleetSet
	states    []model.LiveState
	caps      []model.DeviceCapability
	execs     []model.ExecutionStatus
	carriers  []model.Carrier
	drivers   []model.Driver

	tractorErr   error
	liveStateErr error

	tractorCalls int
}

func (f *fakeSources) ListTractors(ctx context.Context, orgID uuid.UUID) ([]model.Tractor, error) {
	f.tractorCalls++
	if f.tractorErr != nil {
		return nil, f.tractorErr
	}
	return f.tractors, nil
}

func (f *fakeSources) ListTrailers(ctx context.Context, orgID uuid.UUID) ([]model.Trailer, error) {
	return f.trailers, nil
}

func (f *fakeSources) ListActive(ctx context.Context, orgID uuid.UUID) ([]model.FleetSet, error) {
	return f.fleetSets, nil
}

func (f *fakeSources) ByDeviceIDs(ctx context.Context, orgID uuid.UUID, deviceIDs []string) ([]model.LiveState, error) {
	if f.liveStateErr != nil {
		return nil, f.liveStateErr
	}
	return f.states, nil
}

type fakeCapabilities struct {
	caps []model.DeviceCapability
}

func (f *fakeCapabilities) ByDeviceIDs(ctx context.Context, deviceIDs []string) ([]model.DeviceCapability, error) {
	return f.caps, nil
}

func (f *fakeSources) LatestOpenByFleetSets(ctx context.Context, fleetSetIDs []uuid.UUID) ([]model.ExecutionStatus, error) {
	return f.execs, nil
}

func (f *fakeSources) CarriersByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Carrier, error) {
	return f.carriers, nil
}

func (f *fakeSources) DriversByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Driver, error) {
	return f.drivers, nil
}

func newTestService(f *fakeSources) *TrackingService {
	svc := NewTrackingService(Sources{
		Assets:       f,
		FleetSets:    f,
		LiveStates:   f,
		Capabilities: &fakeCapabilities{caps: f.caps},
		Executions:   f,
		Parties:      f,
	}, NewStore())
	svc.now = func() time.Time {
		return time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	}
	return svc
}

type fixture struct {
	orgID     uuid.UUID
	tractorID uuid.UUID
	trailerID uuid.UUID
	setID     uuid.UUID
	carrierID uuid.UUID
	driverID  uuid.UUID
	sources   *fakeSources
}

// pairedFixture builds one tractor and one trailer, both with devices,
// joined by an active fleet set with driver and carrier.
func pairedFixture() *fixture {
	fx := &fixture{
		orgID:     uuid.New(),
		tractorID: uuid.New(),
		trailerID: uuid.New(),
		setID:     uuid.New(),
		carrierID: uuid.New(),
		driverID:  uuid.New(),
	}

	tractorDevice := "dev-tractor"
	trailerDevice := "dev-trailer"
	phone := "+34600111222"
	messageTS := time.Date(2026, 3, 14, 11, 59, 30, 0, time.UTC)

	fx.sources = &fakeSources{
		tractors: []model.Tractor{{
			ID:       fx.tractorID,
			OrgID:    fx.orgID,
			Code:     "TR-101",
			DeviceID: &tractorDevice,
		}},
		trailers: []model.Trailer{{
			ID:                fx.trailerID,
			OrgID:             fx.orgID,
			Code:              "SR-880",
			SupportsMultiZone: true,
			DeviceID:          &trailerDevice,
		}},
		fleetSets: []model.FleetSet{{
			ID:        fx.setID,
			OrgID:     fx.orgID,
			CarrierID: &fx.carrierID,
			DriverID:  &fx.driverID,
			TractorID: &fx.tractorID,
			TrailerID: &fx.trailerID,
			IsActive:  true,
			StartsAt:  messageTS.Add(-24 * time.Hour),
		}},
		states: []model.LiveState{{
			OrgID:     fx.orgID,
			DeviceID:  tractorDevice,
			MessageTS: &messageTS,
			SpeedKph:  float64Ptr(40),
			IsMoving:  true,
		}},
		caps: []model.DeviceCapability{{
			DeviceID: trailerDevice,
			HasCAN:   true,
			TempMode: model.TempModeMulti,
		}},
		execs: []model.ExecutionStatus{{
			FleetSetID: fx.setID,
			Substatus:  model.SubstatusInTransit,
			UpdatedAt:  messageTS,
		}},
		carriers: []model.Carrier{{ID: fx.carrierID, OrgID: fx.orgID, Name: "Transportes Norte"}},
		drivers:  []model.Driver{{ID: fx.driverID, OrgID: fx.orgID, FullName: "Ana Ruiz", Phone: &phone}},
	}

	return fx
}

func unitByDevice(t *testing.T, units []model.TrackingUnit, deviceID string) *model.TrackingUnit {
	t.Helper()
	for i := range units {
		if units[i].DeviceID == deviceID {
			return &units[i]
		}
	}
	t.Fatalf("no unit for device %s", deviceID)
	return nil
}

func TestRefresh_TwoUnitsPerPairedFleetSet(t *testing.T) {
	fx := pairedFixture()
	svc := newTestService(fx.sources)

	units, err := svc.Refresh(context.Background(), fx.orgID, true)
	require.NoError(t, err)
	require.Len(t, units, 2)

	vehicle := unitByDevice(t, units, "dev-tractor")
	trailer := unitByDevice(t, units, "dev-trailer")

	// Both units share assignment context but reflect their own device.
	assert.Equal(t, model.SourceVehicle, vehicle.SourceDeviceType)
	assert.Equal(t, model.SourceTrailer, trailer.SourceDeviceType)
	assert.Equal(t, fx.setID.String(), vehicle.ID)
	assert.Equal(t, fx.setID.String(), trailer.ID)
	assert.Equal(t, "TR-101", vehicle.UnitCode)
	assert.Equal(t, "SR-880", vehicle.TrailerCode)
	assert.Equal(t, "TR-101", trailer.UnitCode)
	assert.Equal(t, "SR-880", trailer.TrailerCode)
	assert.Equal(t, "Transportes Norte", vehicle.CarrierName)
	assert.Equal(t, "Ana Ruiz", vehicle.DriverName)
	assert.Equal(t, "+34600111222", vehicle.DriverPhone)
	assert.Equal(t, "Transportes Norte", trailer.CarrierName)

	// Hybrid flag sourced from the paired trailer for both.
	assert.True(t, vehicle.HybridTrailer)
	assert.True(t, trailer.HybridTrailer)

	// Tractor device reported 30s ago at 40 km/h.
	assert.True(t, vehicle.HasKnownMessage)
	assert.Equal(t, model.SignalOnline, vehicle.SignalStatus)
	assert.Equal(t, model.StatusDriving, vehicle.Status)
	require.NotNil(t, vehicle.SignalAgeSec)
	assert.Equal(t, int64(30), *vehicle.SignalAgeSec)
	assert.Equal(t, "40 km/h", vehicle.SpeedDisplay)

	// Trailer device has no snapshot at all.
	assert.False(t, trailer.HasKnownMessage)
	assert.Equal(t, model.SignalOffline, trailer.SignalStatus)
	assert.Equal(t, model.StatusOffline, trailer.Status)
	assert.Nil(t, trailer.SignalAgeSec)
	assert.Equal(t, "No signal", trailer.SpeedDisplay)
	assert.Equal(t, model.TemperatureReading{Display: "-"}, trailer.Temperature1)

	// Execution phase joined through the fleet set.
	require.NotNil(t, vehicle.ExecutionSubstatus)
	assert.Equal(t, model.SubstatusInTransit, *vehicle.ExecutionSubstatus)
	assert.True(t, vehicle.HasActiveTrip)
	assert.True(t, trailer.HasActiveTrip)
}

func TestRefresh_CardinalityWithoutFleetSets(t *testing.T) {
	fx := pairedFixture()
	fx.sources.fleetSets = nil
	svc := newTestService(fx.sources)

	units, err := svc.Refresh(context.Background(), fx.orgID, true)
	require.NoError(t, err)

	// One unit per tractor-with-device plus one per trailer-with-device,
	// even with zero fleet sets.
	require.Len(t, units, 2)

	vehicle := unitByDevice(t, units, "dev-tractor")
	trailer := unitByDevice(t, units, "dev-trailer")

	assert.Equal(t, "VEHICLE:dev-tractor", vehicle.ID)
	assert.Equal(t, "TRAILER:dev-trailer", trailer.ID)
	assert.Nil(t, vehicle.FleetSetID)
	assert.Empty(t, vehicle.TrailerCode)
	assert.Empty(t, trailer.UnitCode)
	assert.Empty(t, vehicle.DriverName)
	assert.False(t, vehicle.HasActiveTrip)

	// With no paired trailer the tractor's own flag is used.
	assert.False(t, vehicle.HybridTrailer)
	assert.True(t, trailer.HybridTrailer)
}

func TestRefresh_FleetSetDisappearanceRevertsToAssetFields(t *testing.T) {
	fx := pairedFixture()
	assetCarrier := uuid.New()
	fx.sources.tractors[0].CarrierID = &assetCarrier
	fx.sources.carriers = append(fx.sources.carriers, model.Carrier{
		ID: assetCarrier, OrgID: fx.orgID, Name: "Flota Propia",
	})
	svc := newTestService(fx.sources)

	units, err := svc.Refresh(context.Background(), fx.orgID, true)
	require.NoError(t, err)
	assert.Equal(t, "Transportes Norte", unitByDevice(t, units, "dev-tractor").CarrierName)

	// The assignment ends between passes.
	fx.sources.fleetSets = nil

	units, err = svc.Refresh(context.Background(), fx.orgID, true)
	require.NoError(t, err)
	vehicle := unitByDevice(t, units, "dev-tractor")
	assert.Equal(t, "Flota Propia", vehicle.CarrierName)
	assert.Empty(t, vehicle.DriverName)
}

func TestRefresh_UnknownCapabilityFailsOpen(t *testing.T) {
	fx := pairedFixture()
	fx.sources.caps = nil
	svc := newTestService(fx.sources)

	units, err := svc.Refresh(context.Background(), fx.orgID, true)
	require.NoError(t, err)

	vehicle := unitByDevice(t, units, "dev-tractor")
	assert.Equal(t, model.TempModeNone, vehicle.TempMode)
	assert.Equal(t, model.TemperatureReading{Display: "-"}, vehicle.Temperature1)
	assert.False(t, vehicle.TempHasError)
	assert.Empty(t, vehicle.ReeferMode)
}

func TestRefresh_DeliveredSubstatusIsNotAnActiveTrip(t *testing.T) {
	fx := pairedFixture()
	fx.sources.execs = []model.ExecutionStatus{{
		FleetSetID: fx.setID,
		Substatus:  model.SubstatusDelivered,
	}}
	svc := newTestService(fx.sources)

	units, err := svc.Refresh(context.Background(), fx.orgID, true)
	require.NoError(t, err)

	vehicle := unitByDevice(t, units, "dev-tractor")
	require.NotNil(t, vehicle.ExecutionSubstatus)
	assert.Equal(t, model.SubstatusDelivered, *vehicle.ExecutionSubstatus)
	assert.False(t, vehicle.HasActiveTrip)
}

func TestRefresh_IsIdempotentOverUnchangedSources(t *testing.T) {
	fx := pairedFixture()
	svc := newTestService(fx.sources)

	first, err := svc.Refresh(context.Background(), fx.orgID, true)
	require.NoError(t, err)
	second, err := svc.Refresh(context.Background(), fx.orgID, true)
	require.NoError(t, err)

	// Structurally equal, freshly built lists.
	assert.Equal(t, first, second)
	assert.NotSame(t, &first[0], &second[0])
}

func TestRefresh_CachedSnapshotSkipsPass(t *testing.T) {
	fx := pairedFixture()
	svc := newTestService(fx.sources)

	_, err := svc.Refresh(context.Background(), fx.orgID, false)
	require.NoError(t, err)
	assert.Equal(t, 1, fx.sources.tractorCalls)

	// A remount-style read must not refetch.
	_, err = svc.Refresh(context.Background(), fx.orgID, false)
	require.NoError(t, err)
	assert.Equal(t, 1, fx.sources.tractorCalls)

	// A forced refresh always bypasses the cache.
	_, err = svc.Refresh(context.Background(), fx.orgID, true)
	require.NoError(t, err)
	assert.Equal(t, 2, fx.sources.tractorCalls)
}

func TestRefresh_FetchErrorAbortsPassAndClearsMarker(t *testing.T) {
	fx := pairedFixture()
	svc := newTestService(fx.sources)

	units, err := svc.Refresh(context.Background(), fx.orgID, true)
	require.NoError(t, err)
	require.Len(t, units, 2)

	fx.sources.tractorErr = errors.New("connection reset")

	_, err = svc.Refresh(context.Background(), fx.orgID, true)
	require.Error(t, err)

	// The stale snapshot is still serveable...
	stale, ok := svc.Units(fx.orgID)
	assert.True(t, ok)
	assert.Len(t, stale, 2)

	// ...and the next plain read is not skipped by the cache.
	fx.sources.tractorErr = nil
	calls := fx.sources.tractorCalls
	_, err = svc.Refresh(context.Background(), fx.orgID, false)
	require.NoError(t, err)
	assert.Equal(t, calls+1, fx.sources.tractorCalls)
}

func TestRefresh_LiveStateErrorAbortsWholePass(t *testing.T) {
	fx := pairedFixture()
	fx.sources.liveStateErr = errors.New("timeout")
	svc := newTestService(fx.sources)

	_, err := svc.Refresh(context.Background(), fx.orgID, true)
	require.Error(t, err)

	_, ok := svc.Units(fx.orgID)
	assert.False(t, ok, "partial results must never be committed")
}

func TestRefresh_RequiresOrganization(t *testing.T) {
	svc := newTestService(pairedFixture().sources)

	_, err := svc.Refresh(context.Background(), uuid.Nil, true)
	assert.ErrorIs(t, err, apperrors.ErrOrganizationRequired)
}

func TestRefresh_DuplicateActiveFleetSetsLastWriteWins(t *testing.T) {
	fx := pairedFixture()
	second := fx.sources.fleetSets[0]
	second.ID = uuid.New()
	second.DriverID = nil
	fx.sources.fleetSets = append(fx.sources.fleetSets, second)
	svc := newTestService(fx.sources)

	units, err := svc.Refresh(context.Background(), fx.orgID, true)
	require.NoError(t, err)

	// Fail-open: the later row wins, nothing is rejected.
	vehicle := unitByDevice(t, units, "dev-tractor")
	assert.Equal(t, second.ID.String(), vehicle.ID)
	assert.Empty(t, vehicle.DriverName)
}

func TestRefresh_SkipsAssetsWithoutDevices(t *testing.T) {
	fx := pairedFixture()
	fx.sources.tractors = append(fx.sources.tractors, model.Tractor{
		ID:    uuid.New(),
		OrgID: fx.orgID,
		Code:  "TR-102",
	})
	emptyDevice := ""
	fx.sources.trailers = append(fx.sources.trailers, model.Trailer{
		ID:       uuid.New(),
		OrgID:    fx.orgID,
		Code:     "SR-881",
		DeviceID: &emptyDevice,
	})
	svc := newTestService(fx.sources)

	units, err := svc.Refresh(context.Background(), fx.orgID, true)
	require.NoError(t, err)

	// Only the paired, device-carrying assets survive the pass.
	require.Len(t, units, 2)
	for i := range units {
		assert.NotEmpty(t, units[i].DeviceID)
	}
}
