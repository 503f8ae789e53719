package profile

import (
	"math"
	"strings"
)

// UnitKind separates power readings (averaged per bucket) from energy
// readings (summed per bucket, divided by days) during aggregation.
type UnitKind string

const (
	KindPower  UnitKind = "power"
	KindEnergy UnitKind = "energy"
)

// Unit is a recognized meter unit.
type Unit string

const (
	UnitKW   Unit = "kW"
	UnitW    Unit = "W"
	UnitMW   Unit = "MW"
	UnitKVA  Unit = "kVA"
	UnitKWh  Unit = "kWh"
	UnitWh   Unit = "Wh"
	UnitMWh  Unit = "MWh"
	UnitKVAh Unit = "kVAh"
	UnitAmp  Unit = "A"
)

// Defaults for the electrical conversion tunables.
const (
	DefaultVoltageV    = 400.0
	DefaultPowerFactor = 0.9
)

// unitRule is one stage of the unit-detection priority list. Order matters:
// mwh must win over mw, kvah over kva, kwh over kw.
type unitRule struct {
	unit  Unit
	match func(token string) bool
}

var unitRules = []unitRule{
	{UnitMWh, func(t string) bool { return strings.Contains(t, "mwh") }},
	{UnitMW, func(t string) bool { return strings.Contains(t, "mw") }},
	{UnitKVAh, func(t string) bool { return strings.Contains(t, "kvah") }},
	{UnitKVA, func(t string) bool { return strings.Contains(t, "kva") }},
	{UnitKWh, func(t string) bool { return containsAny(t, "kwh", "energy", "consumption") }},
	{UnitKW, func(t string) bool { return strings.Contains(t, "kw") }},
	{UnitWh, func(t string) bool { return strings.Contains(t, "wh") }},
	{UnitW, func(t string) bool { return t == "w" || strings.Contains(t, "watt") }},
	{UnitAmp, func(t string) bool { return t == "a" || containsAny(t, "amp", "current") }},
}

func containsAny(token string, subs ...string) bool {
	for _, s := range subs {
		if strings.Contains(token, s) {
			return true
		}
	}
	return false
}

// DetectUnit infers the unit from a header token or an explicit config
// string. Unrecognized tokens default to kWh.
func DetectUnit(token string) Unit {
	t := strings.ToLower(strings.TrimSpace(token))
	for _, rule := range unitRules {
		if rule.match(t) {
			return rule.unit
		}
	}
	return UnitKWh
}

// Kind reports whether the unit measures power or energy.
func (u Unit) Kind() UnitKind {
	switch u {
	case UnitKW, UnitW, UnitMW, UnitKVA, UnitAmp:
		return KindPower
	default:
		return KindEnergy
	}
}

// Convert maps a raw reading to canonical kW or kWh. Amp readings assume a
// balanced three-phase load at the given line voltage.
func (u Unit) Convert(value, voltageV, powerFactor float64) float64 {
	switch u {
	case UnitW, UnitWh:
		return value / 1000
	case UnitMW, UnitMWh:
		return value * 1000
	case UnitKVA, UnitKVAh:
		return value * powerFactor
	case UnitAmp:
		return math.Sqrt(3) * voltageV * value * powerFactor / 1000
	default:
		return value
	}
}
