package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Telematics is the open key/value bag a device reports alongside the
// structured columns. Field names vary per device vendor; resolution through
// key aliases lives in the telematics package.
type Telematics map[string]any

func (t *Telematics) Scan(value any) error {
	if value == nil {
		*t = nil
		return nil
	}

	var raw []byte
	switch v := value.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("unsupported telematics column type %T", value)
	}

	return json.Unmarshal(raw, t)
}

func (t Telematics) Value() (driver.Value, error) {
	if t == nil {
		return nil, nil
	}
	return json.Marshal(t)
}

// LiveState is the latest telemetry row per (org, device). A nil MessageTS
// means the device has never reported.
type LiveState struct {
	OrgID        uuid.UUID  `json:"org_id"`
	DeviceID     string     `json:"device_id"`
	MessageTS    *time.Time `json:"message_ts,omitempty"`
	ServerTS     time.Time  `json:"server_ts"`
	Lat          *float64   `json:"lat,omitempty"`
	Lng          *float64   `json:"lng,omitempty"`
	SpeedKph     *float64   `json:"speed_kph,omitempty"`
	Heading      *float64   `json:"heading,omitempty"`
	Ignition     *bool      `json:"ignition,omitempty"`
	IsOnline     bool       `json:"is_online"`
	SignalAgeSec *int64     `json:"signal_age_sec,omitempty"`
	IsMoving     bool       `json:"is_moving"`
	AddressText  *string    `json:"address_text,omitempty"`
	Temp1C       *float64   `json:"temp_1_c,omitempty"`
	Temp2C       *float64   `json:"temp_2_c,omitempty"`
	TemperatureC *float64   `json:"temperature_c,omitempty"`
	Telematics   Telematics `json:"telematics,omitempty"`
}

func (LiveState) TableName() string {
	return "live_states"
}

// HasKnownMessage reports whether the device has ever reported.
func (s *LiveState) HasKnownMessage() bool {
	return s != nil && s.MessageTS != nil
}
