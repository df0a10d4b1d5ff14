package model

import (
	"time"

	"github.com/google/uuid"
)

// Tractor is a powered unit owned by fleet management; read-only here.
// Tractors without a device id never appear in tracking.
type Tractor struct {
	ID                uuid.UUID  `json:"id"`
	OrgID             uuid.UUID  `json:"org_id"`
	CarrierID         *uuid.UUID `json:"carrier_id,omitempty"`
	Code              string     `json:"code"`
	SupportsMultiZone bool       `json:"supports_multi_zone"`
	DeviceID          *string    `json:"device_id,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

func (Tractor) TableName() string {
	return "tractors"
}

type Trailer struct {
	ID                uuid.UUID  `json:"id"`
	OrgID             uuid.UUID  `json:"org_id"`
	CarrierID         *uuid.UUID `json:"carrier_id,omitempty"`
	Code              string     `json:"code"`
	SupportsMultiZone bool       `json:"supports_multi_zone"`
	DeviceID          *string    `json:"device_id,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

func (Trailer) TableName() string {
	return "trailers"
}

// HasDevice reports whether the asset carries a telemetry-emitting device.
func (t *Tractor) HasDevice() bool {
	return t.DeviceID != nil && *t.DeviceID != ""
}

func (t *Trailer) HasDevice() bool {
	return t.DeviceID != nil && *t.DeviceID != ""
}
