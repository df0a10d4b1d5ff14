package service

import (
	"fmt"
	"strings"

	"fleet-tracker/internal/tracking/model"
	"fleet-tracker/internal/tracking/telematics"
)

// Physically plausible range for any single reading, inclusive. Values
// outside are sensor errors, not real temperatures.
const (
	tempMinC = -60.0
	tempMaxC = 130.0
)

const (
	tempDisplayNone  = "-"
	tempDisplayError = "--"
)

// sensorOKCodes are error-code values that mean "no error".
var sensorOKCodes = map[string]struct{}{
	"0":        {},
	"ok":       {},
	"none":     {},
	"no_error": {},
}

// ResolveTemperatures derives display-ready temperature text and per-channel
// error flags for a unit. Single-channel devices resolve one channel; MULTI
// devices resolve two independently plus an aggregate error. Devices with no
// temperature capability, or that have never reported, display "-" with no
// error regardless of any cached reading.
func ResolveTemperatures(capability model.DeviceCapability, state *model.LiveState) (model.TemperatureReading, *model.TemperatureReading, bool) {
	none := model.TemperatureReading{Display: tempDisplayNone}

	if capability.TempMode == model.TempModeNone || !state.HasKnownMessage() {
		return none, nil, false
	}

	bag := state.Telematics

	if capability.TempMode == model.TempModeMulti {
		ch1 := resolveChannel(bag, state.Temp1C, telematics.FieldTemp1, telematics.FieldTempError1)
		ch2 := resolveChannel(bag, state.Temp2C, telematics.FieldTemp2, telematics.FieldTempError2)
		return ch1, &ch2, ch1.Error || ch2.Error
	}

	structured := state.TemperatureC
	if structured == nil {
		structured = state.Temp1C
	}
	ch1 := resolveChannel(bag, structured, telematics.FieldTemp1, telematics.FieldTempError1)
	return ch1, nil, ch1.Error
}

// resolveChannel resolves one channel: a structured column wins over the raw
// bag; within the bag the first present alias wins. A channel with a value
// outside the plausible range, a non-ok sensor error code, or literally
// nothing reported is an error, not an unknown.
func resolveChannel(bag model.Telematics, structured *float64, valueField, errorField telematics.Field) model.TemperatureReading {
	value := structured
	if value == nil {
		if v, ok := telematics.Float64(bag, valueField); ok {
			value = &v
		}
	}

	if value != nil {
		if *value < tempMinC || *value > tempMaxC {
			return model.TemperatureReading{Display: tempDisplayError, Error: true}
		}
		return model.TemperatureReading{Display: formatTemperature(*value)}
	}

	if code, ok := telematics.String(bag, errorField); ok {
		if _, clean := sensorOKCodes[strings.ToLower(code)]; clean {
			return model.TemperatureReading{Display: tempDisplayError}
		}
		return model.TemperatureReading{Display: tempDisplayError, Error: true}
	}

	// Nothing reported at all: a dead probe, not an unknown.
	return model.TemperatureReading{Display: tempDisplayError, Error: true}
}

func formatTemperature(v float64) string {
	return fmt.Sprintf("%.1f°C", v)
}

// ResolveReefer extracts display strings for reefer mode and setpoint from
// the raw bag. Only meaningful for CAN-equipped devices.
func ResolveReefer(capability model.DeviceCapability, state *model.LiveState) (mode, setpoint string) {
	if !capability.HasCAN || !state.HasKnownMessage() {
		return "", ""
	}

	mode, _ = telematics.String(state.Telematics, telematics.FieldReeferMode)
	if v, ok := telematics.Float64(state.Telematics, telematics.FieldReeferSetpoint); ok {
		setpoint = formatTemperature(v)
	}

	return mode, setpoint
}
