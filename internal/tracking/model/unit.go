package model

import (
	"github.com/google/uuid"
)

type SourceDeviceType string

const (
	SourceVehicle SourceDeviceType = "VEHICLE"
	SourceTrailer SourceDeviceType = "TRAILER"
)

type SignalStatus string

const (
	SignalOnline  SignalStatus = "ONLINE"
	SignalStale   SignalStatus = "STALE"
	SignalOffline SignalStatus = "OFFLINE"
)

type UnitStatus string

const (
	StatusDriving UnitStatus = "DRIVING"
	StatusIdle    UnitStatus = "IDLE"
	StatusStopped UnitStatus = "STOPPED"
	StatusStale   UnitStatus = "STALE"
	StatusOffline UnitStatus = "OFFLINE"
)

// TemperatureReading is one display-ready temperature channel.
type TemperatureReading struct {
	Display string `json:"display"`
	Error   bool   `json:"error"`
}

// TrackingUnit is the reconciliation engine's sole output entity: one
// telemetry-emitting device's current state plus its resolved operational
// context. Built fresh on every pass and never mutated in place.
//
// A fully paired fleet set produces two units, one per device; callers
// aggregating totals must treat counts as per-device, not per-truck.
type TrackingUnit struct {
	ID               string           `json:"id"`
	SourceDeviceType SourceDeviceType `json:"source_device_type"`
	DeviceID         string           `json:"device_id"`
	OrgID            uuid.UUID        `json:"org_id"`
	FleetSetID       *uuid.UUID       `json:"fleet_set_id,omitempty"`

	UnitCode      string `json:"unit_code"`
	TrailerCode   string `json:"trailer_code"`
	HybridTrailer bool   `json:"hybrid_trailer"`
	DriverName    string `json:"driver_name"`
	DriverPhone   string `json:"driver_phone,omitempty"`
	CarrierName   string `json:"carrier_name"`

	Lat *float64 `json:"lat,omitempty"`
	Lng *float64 `json:"lng,omitempty"`

	Status          UnitStatus   `json:"status"`
	SignalStatus    SignalStatus `json:"signal_status"`
	HasKnownMessage bool         `json:"has_known_message"`

	SignalAgeSec          *int64 `json:"signal_age_sec,omitempty"`
	SignalAgeCapturedAtMs int64  `json:"signal_age_captured_at_ms"`

	SpeedDisplay string `json:"speed_display"`
	AddressText  string `json:"address_text,omitempty"`

	TempMode     TempMode            `json:"temp_mode"`
	Temperature1 TemperatureReading  `json:"temperature_1"`
	Temperature2 *TemperatureReading `json:"temperature_2,omitempty"`
	TempHasError bool                `json:"temp_has_error"`

	ReeferMode     string `json:"reefer_mode,omitempty"`
	ReeferSetpoint string `json:"reefer_setpoint,omitempty"`

	HasActiveTrip      bool                `json:"has_active_trip"`
	ExecutionSubstatus *ExecutionSubstatus `json:"execution_substatus,omitempty"`

	// Raw bag passed through for detail views.
	Telematics Telematics `json:"telematics,omitempty"`
}

// TrackingSummary is the derived count summary. All counts are per-device.
type TrackingSummary struct {
	Total       int                        `json:"total"`
	ActiveTrips int                        `json:"active_trips"`
	BySubstatus map[ExecutionSubstatus]int `json:"by_substatus"`
}
