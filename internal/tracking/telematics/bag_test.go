package telematics

import (
	"testing"

	"fleet-tracker/internal/tracking/model"

	"github.com/stretchr/testify/assert"
)

func TestLookup_FirstPresentAliasWins(t *testing.T) {
	bag := model.Telematics{
		"temperature1": 4.5,
		"sensor_temp_1": 99.0, // later alias, must lose
	}

	raw, ok := Lookup(bag, FieldTemp1)
	assert.True(t, ok)
	assert.Equal(t, 4.5, raw)
}

func TestLookup_SkipsNilValues(t *testing.T) {
	bag := model.Telematics{
		"temp1":        nil,
		"temperature1": -18.0,
	}

	raw, ok := Lookup(bag, FieldTemp1)
	assert.True(t, ok)
	assert.Equal(t, -18.0, raw)
}

func TestLookup_NilBag(t *testing.T) {
	_, ok := Lookup(nil, FieldTemp1)
	assert.False(t, ok)
}

func TestFloat64_Coercions(t *testing.T) {
	tests := []struct {
		name string
		bag  model.Telematics
		want float64
		ok   bool
	}{
		{"float", model.Telematics{"temp1": -18.5}, -18.5, true},
		{"int", model.Telematics{"temp1": 7}, 7, true},
		{"numeric string", model.Telematics{"temp1": " -18 "}, -18, true},
		{"garbage string", model.Telematics{"temp1": "cold"}, 0, false},
		{"absent", model.Telematics{}, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Float64(tt.bag, FieldTemp1)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestTruthy_Encodings(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  bool
		known bool
	}{
		{"bool true", true, true, true},
		{"bool false", false, false, true},
		{"number one", float64(1), true, true},
		{"number zero", float64(0), false, true},
		{"string one", "1", true, true},
		{"string true", "TRUE", true, true},
		{"string on", "on", true, true},
		{"string yes", "yes", true, true},
		{"string off", "off", false, true},
		{"string garbage", "maybe", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Truthy(model.Telematics{"ignition": tt.value}, FieldIgnition)
			assert.Equal(t, tt.known, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestString_FormatsScalars(t *testing.T) {
	mode, ok := String(model.Telematics{"reefer_mode": "continuous"}, FieldReeferMode)
	assert.True(t, ok)
	assert.Equal(t, "continuous", mode)

	setpoint, ok := String(model.Telematics{"setpoint": -20.0}, FieldReeferSetpoint)
	assert.True(t, ok)
	assert.Equal(t, "-20", setpoint)

	_, ok = String(model.Telematics{"reefer_mode": "   "}, FieldReeferMode)
	assert.False(t, ok)
}
