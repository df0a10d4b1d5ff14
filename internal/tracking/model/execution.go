package model

import (
	"time"

	"github.com/google/uuid"
)

type ExecutionSubstatus string

const (
	SubstatusInTransit     ExecutionSubstatus = "IN_TRANSIT"
	SubstatusAtDestination ExecutionSubstatus = "AT_DESTINATION"
	SubstatusDelivered     ExecutionSubstatus = "DELIVERED"
)

// ExecutionStatus is the latest open dispatch-order phase for a fleet set.
type ExecutionStatus struct {
	FleetSetID uuid.UUID          `json:"fleet_set_id"`
	Substatus  ExecutionSubstatus `json:"substatus"`
	UpdatedAt  time.Time          `json:"updated_at"`
}

func (ExecutionStatus) TableName() string {
	return "dispatch_orders"
}
