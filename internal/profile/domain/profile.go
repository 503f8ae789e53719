package profile

import (
	"fmt"
	"time"
)

// Rejection reasons for degenerate output.
const (
	RejectAllZeros       = "all_zeros"
	RejectFlatLine       = "flat_line"
	RejectExtremeOutlier = "extreme_outlier"
	RejectTooFewPoints   = "too_few_points"
)

const (
	// Above this many kW the value is near-certainly a unit conversion
	// error, not a real load.
	extremeOutlierKW = 10_000_000.0
	// Two days of hourly-equivalent data.
	minDataPoints = 48
	// maxParseErrors caps the error log. Hitting the cap means "100 or
	// more" errors, not exactly 100.
	maxParseErrors = 100
	// SampleLimit bounds how many parsed points are retained for display.
	SampleLimit = 5000
)

// DataPoint is one fully parsed, unit-converted, delta-reconstructed row.
type DataPoint struct {
	Timestamp  time.Time `json:"timestamp"`
	Value      float64   `json:"value"`
	MeterID    string    `json:"meter_id,omitempty"`
	SourceLine int       `json:"source_line"`
}

// ProcessingStats counts what happened during one pass. It is local to one
// invocation and never shared across runs.
type ProcessingStats struct {
	TotalRows          int      `json:"total_rows"`
	ProcessedRows      int      `json:"processed_rows"`
	SkippedRows        int      `json:"skipped_rows"`
	NegativeValueCount int      `json:"negative_value_count"`
	ParseErrors        []string `json:"parse_errors,omitempty"`
}

// RecordError appends to the bounded error log, silently dropping entries
// past the cap.
func (s *ProcessingStats) RecordError(format string, args ...any) {
	if len(s.ParseErrors) >= maxParseErrors {
		return
	}
	s.ParseErrors = append(s.ParseErrors, fmt.Sprintf(format, args...))
}

// LoadProfile is the normalized 24-hour output for one meter: average power
// per hour of day, split by weekday and weekend. Constructed once at the
// end of a run and not modified afterwards.
type LoadProfile struct {
	WeekdayProfile  [24]float64 `json:"weekday_profile"`
	WeekendProfile  [24]float64 `json:"weekend_profile"`
	WeekdayDayCount int         `json:"weekday_day_count"`
	WeekendDayCount int         `json:"weekend_day_count"`
	TotalEnergyKWh  float64     `json:"total_energy_kwh"`
	RangeStart      time.Time   `json:"date_range_start"`
	RangeEnd        time.Time   `json:"date_range_end"`
	DataPointCount  int         `json:"data_point_count"`
	PeakKW          float64     `json:"peak_kw"`
	AvgKW           float64     `json:"avg_kw"`
	IntervalMinutes int         `json:"detected_interval_minutes"`
	Valid           bool        `json:"is_valid"`
	RejectionReason string      `json:"rejection_reason,omitempty"`
}

// Validate applies the hard rejection criteria in order; the first match
// wins. A rejected profile carries its reason and is still returned to the
// caller, never dropped.
func (p *LoadProfile) Validate() {
	allZero := true
	flat := true
	extreme := false
	var nonZero float64
	seenNonZero := false

	check := func(entries [24]float64) {
		for _, v := range entries {
			if v != 0 {
				allZero = false
				if !seenNonZero {
					nonZero, seenNonZero = v, true
				} else if v != nonZero {
					flat = false
				}
			}
			if v > extremeOutlierKW {
				extreme = true
			}
		}
	}
	check(p.WeekdayProfile)
	check(p.WeekendProfile)

	switch {
	case allZero:
		p.reject(RejectAllZeros)
	case flat:
		p.reject(RejectFlatLine)
	case extreme:
		p.reject(RejectExtremeOutlier)
	case p.DataPointCount < minDataPoints:
		p.reject(RejectTooFewPoints)
	default:
		p.Valid = true
		p.RejectionReason = ""
	}
}

func (p *LoadProfile) reject(reason string) {
	p.Valid = false
	p.RejectionReason = reason
}
