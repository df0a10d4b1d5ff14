package telematics

import (
	"encoding/json"
	"strconv"
	"strings"

	"fleet-tracker/internal/tracking/model"
)

// Field is a logical telemetry field resolved out of a device's raw bag.
type Field string

const (
	FieldIgnition       Field = "ignition"
	FieldTemp1          Field = "temp_1"
	FieldTemp2          Field = "temp_2"
	FieldTempError1     Field = "temp_error_1"
	FieldTempError2     Field = "temp_error_2"
	FieldReeferMode     Field = "reefer_mode"
	FieldReeferSetpoint Field = "reefer_setpoint"
	FieldFuelLevel      Field = "fuel_level"
	FieldBatteryVoltage Field = "battery_voltage"
)

// aliases maps each logical field to the raw keys vendors report it under,
// in resolution order. First present, non-nil value wins. Supporting a new
// vendor's key names is a change to this table, not to code.
var aliases = map[Field][]string{
	FieldIgnition:       {"ignition", "ign", "io_ignition", "din1"},
	FieldTemp1:          {"temp1", "temperature1", "sensor_temp_1", "ble_temp_1", "reefer_temp_1"},
	FieldTemp2:          {"temp2", "temperature2", "sensor_temp_2", "ble_temp_2", "reefer_temp_2"},
	FieldTempError1:     {"temp1_error", "sensor_error_1", "ble_temp_1_error", "reefer_alarm_1"},
	FieldTempError2:     {"temp2_error", "sensor_error_2", "ble_temp_2_error", "reefer_alarm_2"},
	FieldReeferMode:     {"reefer_mode", "thermo_mode", "carrier_mode"},
	FieldReeferSetpoint: {"reefer_setpoint", "setpoint", "thermo_setpoint"},
	FieldFuelLevel:      {"fuel_level", "fuel", "fuel_percent"},
	FieldBatteryVoltage: {"battery_voltage", "battery", "ext_voltage"},
}

// Lookup returns the first present, non-nil raw value for the field.
func Lookup(bag model.Telematics, field Field) (any, bool) {
	if bag == nil {
		return nil, false
	}
	for _, key := range aliases[field] {
		if v, ok := bag[key]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

// Float64 resolves the field as a number, coercing numeric strings.
func Float64(bag model.Telematics, field Field) (float64, bool) {
	raw, ok := Lookup(bag, field)
	if !ok {
		return 0, false
	}

	switch v := raw.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

// String resolves the field as display text.
func String(bag model.Telematics, field Field) (string, bool) {
	raw, ok := Lookup(bag, field)
	if !ok {
		return "", false
	}

	switch v := raw.(type) {
	case string:
		s := strings.TrimSpace(v)
		return s, s != ""
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case bool:
		return strconv.FormatBool(v), true
	case json.Number:
		return v.String(), true
	default:
		return "", false
	}
}

// Truthy resolves the field as a boolean, accepting boolean, numeric and
// string encodings ("1", "true", "on", "yes").
func Truthy(bag model.Telematics, field Field) (bool, bool) {
	raw, ok := Lookup(bag, field)
	if !ok {
		return false, false
	}

	switch v := raw.(type) {
	case bool:
		return v, true
	case float64:
		return v != 0, true
	case int:
		return v != 0, true
	case json.Number:
		f, err := v.Float64()
		return f != 0, err == nil
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "true", "on", "yes":
			return true, true
		case "0", "false", "off", "no", "":
			return false, true
		default:
			return false, false
		}
	default:
		return false, false
	}
}
