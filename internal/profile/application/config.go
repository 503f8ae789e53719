package application

import (
	profile "meterprofile/internal/profile/domain"
)

// Config mirrors the user-facing extraction settings. Every field is
// optional: zero values trigger auto-detection, explicit values win over
// every detection rule.
type Config struct {
	Separator        string                 `json:"separator,omitempty"`
	HeaderRowNumber  *int                   `json:"header_row_number,omitempty"`
	DateColumn       *int                   `json:"date_column,omitempty"`
	TimeColumn       *int                   `json:"time_column,omitempty"`
	ValueColumn      *int                   `json:"value_column,omitempty"`
	MeterIDColumn    *int                   `json:"meter_id_column,omitempty"`
	KVAColumn        *int                   `json:"kva_column,omitempty"`
	AutoDetect       *bool                  `json:"auto_detect,omitempty"`
	HandleNegatives  profile.NegativePolicy `json:"handle_negatives,omitempty"`
	HandleCumulative *bool                  `json:"handle_cumulative,omitempty"`
	DateFormat       profile.DateOrder      `json:"date_format,omitempty"`
	ValueUnit        string                 `json:"value_unit,omitempty"`
	VoltageV         float64                `json:"voltage_v,omitempty"`
	PowerFactor      float64                `json:"power_factor,omitempty"`
}

func (c Config) withDefaults() Config {
	if c.HandleNegatives == "" {
		c.HandleNegatives = profile.NegativeFilter
	}
	if c.VoltageV == 0 {
		c.VoltageV = profile.DefaultVoltageV
	}
	if c.PowerFactor == 0 {
		c.PowerFactor = profile.DefaultPowerFactor
	}
	return c
}

func (c Config) autoDetect() bool {
	return c.AutoDetect == nil || *c.AutoDetect
}

// overrides maps the explicit column settings onto the locator. A kVA
// column selects the reading column when no value column is given.
func (c Config) overrides() profile.Overrides {
	ov := profile.Overrides{
		Date:    c.DateColumn,
		Time:    c.TimeColumn,
		Value:   c.ValueColumn,
		MeterID: c.MeterIDColumn,
	}
	if ov.Value == nil && c.KVAColumn != nil {
		ov.Value = c.KVAColumn
	}
	return ov
}
