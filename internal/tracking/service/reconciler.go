package service

import (
	"context"
	"fmt"

	"fleet-tracker/internal/logger"
	"fleet-tracker/internal/tracking/model"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// passInputs holds everything one reconciliation pass fetched before fusion.
type passInputs struct {
	tractors  []model.Tractor
	trailers  []model.Trailer
	fleetSets []model.FleetSet
	states    map[string]*model.LiveState
	caps      map[string]model.DeviceCapability
}

// partyRefs carries the carrier/driver ids a unit resolved through its fleet
// set (or its asset fallback) until the name lookups of phase three land.
type partyRefs struct {
	carrierID *uuid.UUID
	driverID  *uuid.UUID
}

// runPass executes one full reconciliation: fan out the org-scoped fetches,
// join, fuse assets with assignments and telemetry, then attach execution
// phase and party names. Any fetch error aborts the whole pass; partial
// results are never used.
func (s *TrackingService) runPass(ctx context.Context, orgID uuid.UUID) ([]model.TrackingUnit, error) {
	inputs, err := s.fetchInputs(ctx, orgID)
	if err != nil {
		return nil, err
	}

	units, refs := s.reconcile(orgID, inputs)

	if err := s.attachContext(ctx, units, refs); err != nil {
		return nil, err
	}

	return units, nil
}

func (s *TrackingService) fetchInputs(ctx context.Context, orgID uuid.UUID) (*passInputs, error) {
	inputs := &passInputs{}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		tractors, err := s.src.Assets.ListTractors(gctx, orgID)
		if err != nil {
			return err
		}
		inputs.tractors = tractors
		return nil
	})
	g.Go(func() error {
		trailers, err := s.src.Assets.ListTrailers(gctx, orgID)
		if err != nil {
			return err
		}
		inputs.trailers = trailers
		return nil
	})
	g.Go(func() error {
		sets, err := s.src.FleetSets.ListActive(gctx, orgID)
		if err != nil {
			return err
		}
		inputs.fleetSets = sets
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("asset/assignment fetch failed: %w", err)
	}

	// Assets without a device never appear in tracking. The gorm
	// repositories already exclude them in SQL; other sources may not.
	tractors := inputs.tractors[:0]
	for i := range inputs.tractors {
		if inputs.tractors[i].HasDevice() {
			tractors = append(tractors, inputs.tractors[i])
		}
	}
	inputs.tractors = tractors

	trailers := inputs.trailers[:0]
	for i := range inputs.trailers {
		if inputs.trailers[i].HasDevice() {
			trailers = append(trailers, inputs.trailers[i])
		}
	}
	inputs.trailers = trailers

	deviceIDs := make([]string, 0, len(inputs.tractors)+len(inputs.trailers))
	for i := range inputs.tractors {
		deviceIDs = append(deviceIDs, *inputs.tractors[i].DeviceID)
	}
	for i := range inputs.trailers {
		deviceIDs = append(deviceIDs, *inputs.trailers[i].DeviceID)
	}

	g, gctx = errgroup.WithContext(ctx)
	g.Go(func() error {
		states, err := s.src.LiveStates.ByDeviceIDs(gctx, orgID, deviceIDs)
		if err != nil {
			return err
		}
		inputs.states = make(map[string]*model.LiveState, len(states))
		for i := range states {
			inputs.states[states[i].DeviceID] = &states[i]
		}
		return nil
	})
	g.Go(func() error {
		caps, err := s.src.Capabilities.ByDeviceIDs(gctx, deviceIDs)
		if err != nil {
			return err
		}
		inputs.caps = make(map[string]model.DeviceCapability, len(caps))
		for _, c := range caps {
			inputs.caps[c.DeviceID] = c
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("live state/capability fetch failed: %w", err)
	}

	return inputs, nil
}

// reconcile fuses the fetched inputs into one TrackingUnit per device:
// every tractor with a device and every trailer with a device yields exactly
// one unit, deliberately producing two units per fully-paired fleet set so
// an operator sees both devices' telemetry independently.
func (s *TrackingService) reconcile(orgID uuid.UUID, inputs *passInputs) ([]model.TrackingUnit, []partyRefs) {
	log := logger.WithOrg(orgID.String())

	tractorsByID := make(map[uuid.UUID]*model.Tractor, len(inputs.tractors))
	for i := range inputs.tractors {
		tractorsByID[inputs.tractors[i].ID] = &inputs.tractors[i]
	}
	trailersByID := make(map[uuid.UUID]*model.Trailer, len(inputs.trailers))
	for i := range inputs.trailers {
		trailersByID[inputs.trailers[i].ID] = &inputs.trailers[i]
	}

	// The active-uniqueness invariant is assumed upstream; on violation we
	// keep last-write-wins and log rather than reject the pass.
	setsByTractor := make(map[uuid.UUID]*model.FleetSet)
	setsByTrailer := make(map[uuid.UUID]*model.FleetSet)
	for i := range inputs.fleetSets {
		set := &inputs.fleetSets[i]
		if set.TractorID != nil {
			if _, dup := setsByTractor[*set.TractorID]; dup {
				log.Warn("multiple active fleet sets reference one tractor",
					zap.String("tractor_id", set.TractorID.String()),
					zap.String("fleet_set_id", set.ID.String()),
				)
			}
			setsByTractor[*set.TractorID] = set
		}
		if set.TrailerID != nil {
			if _, dup := setsByTrailer[*set.TrailerID]; dup {
				log.Warn("multiple active fleet sets reference one trailer",
					zap.String("trailer_id", set.TrailerID.String()),
					zap.String("fleet_set_id", set.ID.String()),
				)
			}
			setsByTrailer[*set.TrailerID] = set
		}
	}

	units := make([]model.TrackingUnit, 0, len(inputs.tractors)+len(inputs.trailers))
	refs := make([]partyRefs, 0, cap(units))

	for i := range inputs.tractors {
		tractor := &inputs.tractors[i]
		set := setsByTractor[tractor.ID]

		var trailer *model.Trailer
		if set != nil && set.TrailerID != nil {
			trailer = trailersByID[*set.TrailerID]
		}

		trailerCode := ""
		hybrid := tractor.SupportsMultiZone
		if trailer != nil {
			trailerCode = trailer.Code
			hybrid = trailer.SupportsMultiZone
		}

		unit, ref := s.buildUnit(unitSeed{
			orgID:       orgID,
			source:      model.SourceVehicle,
			deviceID:    *tractor.DeviceID,
			set:         set,
			unitCode:    tractor.Code,
			trailerCode: trailerCode,
			hybrid:      hybrid,
			carrierID:   tractor.CarrierID,
		}, inputs)
		units = append(units, unit)
		refs = append(refs, ref)
	}

	for i := range inputs.trailers {
		trailer := &inputs.trailers[i]
		set := setsByTrailer[trailer.ID]

		unitCode := ""
		if set != nil && set.TractorID != nil {
			if tractor := tractorsByID[*set.TractorID]; tractor != nil {
				unitCode = tractor.Code
			}
		}

		unit, ref := s.buildUnit(unitSeed{
			orgID:       orgID,
			source:      model.SourceTrailer,
			deviceID:    *trailer.DeviceID,
			set:         set,
			unitCode:    unitCode,
			trailerCode: trailer.Code,
			hybrid:      trailer.SupportsMultiZone,
			carrierID:   trailer.CarrierID,
		}, inputs)
		units = append(units, unit)
		refs = append(refs, ref)
	}

	return units, refs
}

type unitSeed struct {
	orgID       uuid.UUID
	source      model.SourceDeviceType
	deviceID    string
	set         *model.FleetSet
	unitCode    string
	trailerCode string
	hybrid      bool
	carrierID   *uuid.UUID // the asset's own static carrier, the fallback
}

// buildUnit assembles one TrackingUnit from its seed, classifying signal and
// motion and resolving temperatures along the way. Fleet-set carrier/driver
// reflect the current operational assignment and win over the asset's static
// carrier; the asset field is the fallback for unassigned equipment.
func (s *TrackingService) buildUnit(seed unitSeed, inputs *passInputs) (model.TrackingUnit, partyRefs) {
	now := s.now()

	state := inputs.states[seed.deviceID]
	capability, ok := inputs.caps[seed.deviceID]
	if !ok {
		capability = model.DefaultCapability(seed.deviceID)
	}

	id := string(seed.source) + ":" + seed.deviceID
	var fleetSetID *uuid.UUID
	if seed.set != nil {
		id = seed.set.ID.String()
		setID := seed.set.ID
		fleetSetID = &setID
	}

	ref := partyRefs{carrierID: seed.carrierID}
	if seed.set != nil {
		ref = partyRefs{carrierID: seed.set.CarrierID, driverID: seed.set.DriverID}
	}

	hasMessage := state.HasKnownMessage()
	ageSec := SignalAge(state, now)
	signal := ClassifySignal(ageSec, hasMessage)
	status := ClassifyMotion(state, signal)
	temp1, temp2, tempErr := ResolveTemperatures(capability, state)
	reeferMode, reeferSetpoint := ResolveReefer(capability, state)

	unit := model.TrackingUnit{
		ID:               id,
		SourceDeviceType: seed.source,
		DeviceID:         seed.deviceID,
		OrgID:            seed.orgID,
		FleetSetID:       fleetSetID,

		UnitCode:      seed.unitCode,
		TrailerCode:   seed.trailerCode,
		HybridTrailer: seed.hybrid,

		Status:          status,
		SignalStatus:    signal,
		HasKnownMessage: hasMessage,

		SignalAgeSec:          ageSec,
		SignalAgeCapturedAtMs: now.UnixMilli(),

		SpeedDisplay: SpeedDisplay(state),

		TempMode:     capability.TempMode,
		Temperature1: temp1,
		Temperature2: temp2,
		TempHasError: tempErr,

		ReeferMode:     reeferMode,
		ReeferSetpoint: reeferSetpoint,
	}

	if state != nil {
		if state.Lat != nil && state.Lng != nil {
			unit.Lat = state.Lat
			unit.Lng = state.Lng
		}
		if state.AddressText != nil {
			unit.AddressText = *state.AddressText
		}
		unit.Telematics = state.Telematics
	}

	return unit, ref
}

// attachContext runs phase three: execution substatus per fleet set plus
// carrier and driver name lookups, fetched concurrently, then written onto
// the already-reconciled units.
func (s *TrackingService) attachContext(ctx context.Context, units []model.TrackingUnit, refs []partyRefs) error {
	fleetSetIDs := make([]uuid.UUID, 0, len(units))
	seenSets := make(map[uuid.UUID]struct{})
	carrierIDs := make([]uuid.UUID, 0, len(refs))
	seenCarriers := make(map[uuid.UUID]struct{})
	driverIDs := make([]uuid.UUID, 0, len(refs))
	seenDrivers := make(map[uuid.UUID]struct{})

	for i := range units {
		if units[i].FleetSetID != nil {
			if _, ok := seenSets[*units[i].FleetSetID]; !ok {
				seenSets[*units[i].FleetSetID] = struct{}{}
				fleetSetIDs = append(fleetSetIDs, *units[i].FleetSetID)
			}
		}
	}
	for _, ref := range refs {
		if ref.carrierID != nil {
			if _, ok := seenCarriers[*ref.carrierID]; !ok {
				seenCarriers[*ref.carrierID] = struct{}{}
				carrierIDs = append(carrierIDs, *ref.carrierID)
			}
		}
		if ref.driverID != nil {
			if _, ok := seenDrivers[*ref.driverID]; !ok {
				seenDrivers[*ref.driverID] = struct{}{}
				driverIDs = append(driverIDs, *ref.driverID)
			}
		}
	}

	var (
		executions []model.ExecutionStatus
		carriers   []model.Carrier
		drivers    []model.Driver
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		executions, err = s.src.Executions.LatestOpenByFleetSets(gctx, fleetSetIDs)
		return err
	})
	g.Go(func() error {
		var err error
		carriers, err = s.src.Parties.CarriersByIDs(gctx, carrierIDs)
		return err
	})
	g.Go(func() error {
		var err error
		drivers, err = s.src.Parties.DriversByIDs(gctx, driverIDs)
		return err
	})
	if err := g.Wait(); err != nil {
		return fmt.Errorf("execution/party fetch failed: %w", err)
	}

	execBySet := make(map[uuid.UUID]model.ExecutionStatus, len(executions))
	for _, e := range executions {
		execBySet[e.FleetSetID] = e
	}
	carrierNames := make(map[uuid.UUID]string, len(carriers))
	for _, c := range carriers {
		carrierNames[c.ID] = c.Name
	}
	driversByID := make(map[uuid.UUID]model.Driver, len(drivers))
	for _, d := range drivers {
		driversByID[d.ID] = d
	}

	for i := range units {
		if refs[i].carrierID != nil {
			units[i].CarrierName = carrierNames[*refs[i].carrierID]
		}
		if refs[i].driverID != nil {
			if driver, ok := driversByID[*refs[i].driverID]; ok {
				units[i].DriverName = driver.FullName
				if driver.Phone != nil {
					units[i].DriverPhone = *driver.Phone
				}
			}
		}
		if units[i].FleetSetID != nil {
			if execution, ok := execBySet[*units[i].FleetSetID]; ok {
				substatus := execution.Substatus
				units[i].ExecutionSubstatus = &substatus
				units[i].HasActiveTrip = substatus != model.SubstatusDelivered
			}
		}
	}

	return nil
}
