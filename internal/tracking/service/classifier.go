package service

import (
	"fmt"
	"math"
	"time"

	"fleet-tracker/internal/tracking/model"
	"fleet-tracker/internal/tracking/telematics"
)

// Signal freshness thresholds, in seconds. Fixed by contract with the
// dispatch UI, not configurable.
const (
	onlineMaxAgeSec = 120
	staleMaxAgeSec  = 900
)

// drivingSpeedKph is the speed above which a unit counts as driving even
// when the device does not set its moving flag.
const drivingSpeedKph = 2.0

const speedNoSignal = "No signal"

// SignalAge returns seconds since the device last reported, or nil when it
// never has. Prefers the message timestamp; falls back to the server-computed
// age carried on the snapshot.
func SignalAge(state *model.LiveState, now time.Time) *int64 {
	if state == nil {
		return nil
	}

	if state.MessageTS != nil {
		age := int64(math.Floor(now.Sub(*state.MessageTS).Seconds()))
		if age < 0 {
			age = 0
		}
		return &age
	}

	if state.SignalAgeSec != nil {
		age := *state.SignalAgeSec
		if age < 0 {
			age = 0
		}
		return &age
	}

	return nil
}

// ClassifySignal maps a signal age onto ONLINE/STALE/OFFLINE. A device that
// has never reported is OFFLINE regardless of any cached age.
func ClassifySignal(ageSec *int64, hasKnownMessage bool) model.SignalStatus {
	if !hasKnownMessage || ageSec == nil {
		return model.SignalOffline
	}

	switch {
	case *ageSec <= onlineMaxAgeSec:
		return model.SignalOnline
	case *ageSec <= staleMaxAgeSec:
		return model.SignalStale
	default:
		return model.SignalOffline
	}
}

// ClassifyMotion derives the unit's motion state. Precedence, first match
// wins: never reported, signal offline, signal stale, moving, ignition on,
// stopped.
func ClassifyMotion(state *model.LiveState, signal model.SignalStatus) model.UnitStatus {
	if !state.HasKnownMessage() {
		return model.StatusOffline
	}

	switch signal {
	case model.SignalOffline:
		return model.StatusOffline
	case model.SignalStale:
		return model.StatusStale
	}

	if state.IsMoving || (state.SpeedKph != nil && *state.SpeedKph > drivingSpeedKph) {
		return model.StatusDriving
	}

	if ignitionOn(state) {
		return model.StatusIdle
	}

	return model.StatusStopped
}

// ignitionOn reads ignition from the telematics bag, accepting boolean,
// numeric and string truthy encodings, before trusting the structured column.
func ignitionOn(state *model.LiveState) bool {
	if on, ok := telematics.Truthy(state.Telematics, telematics.FieldIgnition); ok {
		return on
	}

	return state.Ignition != nil && *state.Ignition
}

// SpeedDisplay renders speed as a non-negative integer km/h. A device that
// has never reported shows "No signal" rather than a misleading zero.
func SpeedDisplay(state *model.LiveState) string {
	if !state.HasKnownMessage() {
		return speedNoSignal
	}

	speed := 0.0
	if state.SpeedKph != nil && *state.SpeedKph > 0 {
		speed = *state.SpeedKph
	}

	return fmt.Sprintf("%d km/h", int(math.Floor(speed)))
}
