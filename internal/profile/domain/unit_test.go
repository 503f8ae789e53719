package profile

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectUnit(t *testing.T) {
	cases := []struct {
		token string
		want  Unit
	}{
		{"kWh", UnitKWh},
		{"Energy (kWh)", UnitKWh},
		{"consumption", UnitKWh},
		{"kW", UnitKW},
		{"Demand kW", UnitKW},
		{"MWh", UnitMWh},
		{"MW", UnitMW},
		{"kVAh", UnitKVAh},
		{"kVA", UnitKVA},
		{"Wh", UnitWh},
		{"w", UnitW},
		{"Watts", UnitW},
		{"Amps", UnitAmp},
		{"a", UnitAmp},
		{"Current (A)", UnitAmp},
		{"Reading", UnitKWh},
		{"", UnitKWh},
	}
	for _, tc := range cases {
		t.Run(tc.token, func(t *testing.T) {
			assert.Equal(t, tc.want, DetectUnit(tc.token))
		})
	}
}

func TestUnitKind(t *testing.T) {
	assert.Equal(t, KindPower, UnitKW.Kind())
	assert.Equal(t, KindPower, UnitMW.Kind())
	assert.Equal(t, KindPower, UnitKVA.Kind())
	assert.Equal(t, KindPower, UnitAmp.Kind())
	assert.Equal(t, KindEnergy, UnitKWh.Kind())
	assert.Equal(t, KindEnergy, UnitMWh.Kind())
	assert.Equal(t, KindEnergy, UnitKVAh.Kind())
	assert.Equal(t, KindEnergy, UnitWh.Kind())
}

func TestUnitConvert(t *testing.T) {
	assert.InDelta(t, 1.5, UnitKWh.Convert(1.5, DefaultVoltageV, DefaultPowerFactor), 1e-9)
	assert.InDelta(t, 1.5, UnitW.Convert(1500, DefaultVoltageV, DefaultPowerFactor), 1e-9)
	assert.InDelta(t, 1500, UnitMW.Convert(1.5, DefaultVoltageV, DefaultPowerFactor), 1e-9)
	assert.InDelta(t, 90, UnitKVA.Convert(100, DefaultVoltageV, DefaultPowerFactor), 1e-9)
	assert.InDelta(t, 0.002, UnitWh.Convert(2, DefaultVoltageV, DefaultPowerFactor), 1e-9)
}

func TestUnitConvertAmps(t *testing.T) {
	// Balanced three-phase: sqrt(3) * V * I * pf / 1000.
	want := math.Sqrt(3) * 400 * 10 * 0.9 / 1000
	assert.InDelta(t, want, UnitAmp.Convert(10, 400, 0.9), 1e-9)
}
