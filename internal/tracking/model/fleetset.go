package model

import (
	"time"

	"github.com/google/uuid"
)

// FleetSet is an active, time-bounded pairing of a tractor, a trailer and a
// driver under a carrier. At most one active fleet set is expected per
// tractor and per trailer at any instant; this is assumed upstream and not
// re-validated here.
type FleetSet struct {
	ID        uuid.UUID  `json:"id"`
	OrgID     uuid.UUID  `json:"org_id"`
	CarrierID *uuid.UUID `json:"carrier_id,omitempty"`
	DriverID  *uuid.UUID `json:"driver_id,omitempty"`
	TractorID *uuid.UUID `json:"tractor_id,omitempty"`
	TrailerID *uuid.UUID `json:"trailer_id,omitempty"`
	IsActive  bool       `json:"is_active"`
	StartsAt  time.Time  `json:"starts_at"`
	EndsAt    *time.Time `json:"ends_at,omitempty"`
	UpdatedAt time.Time  `json:"updated_at"`
}

func (FleetSet) TableName() string {
	return "fleet_sets"
}

type Carrier struct {
	ID    uuid.UUID `json:"id"`
	OrgID uuid.UUID `json:"org_id"`
	Name  string    `json:"name"`
}

func (Carrier) TableName() string {
	return "carriers"
}

type Driver struct {
	ID       uuid.UUID `json:"id"`
	OrgID    uuid.UUID `json:"org_id"`
	FullName string    `json:"full_name"`
	Phone    *string   `json:"phone,omitempty"`
}

func (Driver) TableName() string {
	return "drivers"
}
