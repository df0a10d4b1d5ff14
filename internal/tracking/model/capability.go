package model

type TempMode string

const (
	TempModeNone   TempMode = "NONE"
	TempModeSingle TempMode = "SINGLE"
	TempModeMulti  TempMode = "MULTI"
)

// DeviceCapability is the static description of what a device can report.
type DeviceCapability struct {
	DeviceID string   `json:"device_id"`
	HasCAN   bool     `json:"has_can" gorm:"column:has_can"`
	TempMode TempMode `json:"temp_mode"`
}

func (DeviceCapability) TableName() string {
	return "device_capabilities"
}

// DefaultCapability is the fail-open default for devices with no capability
// row: the unit still renders, minimally.
func DefaultCapability(deviceID string) DeviceCapability {
	return DeviceCapability{
		DeviceID: deviceID,
		HasCAN:   false,
		TempMode: TempModeNone,
	}
}
