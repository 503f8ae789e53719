package application

import (
	"time"

	profile "meterprofile/internal/profile/domain"
)

// DetectedColumns reports the resolved mapping plus the header cells, for
// display and for column-override UIs. Absent roles are -1.
type DetectedColumns struct {
	DateColumn    int      `json:"date_column"`
	TimeColumn    int      `json:"time_column"`
	ValueColumn   int      `json:"value_column"`
	MeterIDColumn int      `json:"meter_id_column"`
	Headers       []string `json:"headers"`
}

// Result is the full outcome of one extraction run. Success mirrors the
// top-level profile's validity; a degenerate profile is still carried here
// together with its rejection reason. For multi-meter files the top-level
// profile aggregates all meters and MeterData holds the per-meter split.
type Result struct {
	Success         bool                            `json:"success"`
	DataPointCount  int                             `json:"data_point_count"`
	RangeStart      time.Time                       `json:"date_range_start"`
	RangeEnd        time.Time                       `json:"date_range_end"`
	WeekdayDayCount int                             `json:"weekday_day_count"`
	WeekendDayCount int                             `json:"weekend_day_count"`
	WeekdayProfile  [24]float64                     `json:"weekday_profile"`
	WeekendProfile  [24]float64                     `json:"weekend_profile"`
	DetectedColumns DetectedColumns                 `json:"detected_columns"`
	Format          profile.FormatDetection         `json:"format"`
	Stats           profile.ProcessingStats         `json:"stats"`
	Profile         profile.LoadProfile             `json:"profile"`
	MeterData       map[string]*profile.LoadProfile `json:"meter_data,omitempty"`
	Sample          []profile.DataPoint             `json:"sample,omitempty"`
}

// Preview is the detect-only response: enough to drive a column-override UI
// without running the full pipeline.
type Preview struct {
	Format     profile.FormatDetection `json:"format"`
	Columns    profile.ColumnMapping   `json:"columns"`
	Headers    []string                `json:"headers"`
	SampleRows [][]string              `json:"sample_rows"`
	TotalRows  int                     `json:"total_rows"`
}
