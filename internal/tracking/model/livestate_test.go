package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTelematicsScan(t *testing.T) {
	var bag Telematics
	require.NoError(t, bag.Scan([]byte(`{"ignition":1,"temp1":"-18.5"}`)))
	assert.Equal(t, float64(1), bag["ignition"])
	assert.Equal(t, "-18.5", bag["temp1"])

	var fromString Telematics
	require.NoError(t, fromString.Scan(`{"fuel_level":80}`))
	assert.Equal(t, float64(80), fromString["fuel_level"])

	var fromNil Telematics
	require.NoError(t, fromNil.Scan(nil))
	assert.Nil(t, fromNil)

	var bad Telematics
	assert.Error(t, bad.Scan(42))
}

func TestLiveStateHasKnownMessage(t *testing.T) {
	var absent *LiveState
	assert.False(t, absent.HasKnownMessage())

	assert.False(t, (&LiveState{}).HasKnownMessage())

	ts := time.Now()
	assert.True(t, (&LiveState{MessageTS: &ts}).HasKnownMessage())
}
