package profile

import (
	"math"
	"strings"
)

// Bounds for the locator's data sample.
const (
	columnSampleRows = 20
	minNumericCells  = 10
)

// Cascade rule names, recorded in a Resolution.
const (
	RuleOverride = "override"
	RuleHeader   = "header"
	RuleData     = "data"
	RuleFallback = "fallback"
)

// ColumnMapping maps column indexes to semantic roles. Optional roles are
// -1 when absent.
type ColumnMapping struct {
	DateCol    int `json:"date_column"`
	TimeCol    int `json:"time_column"`
	ValueCol   int `json:"value_column"`
	MeterIDCol int `json:"meter_id_column"`
}

// Resolution records which cascade rule decided each role; empty means the
// role stayed absent.
type Resolution struct {
	Date    string
	Time    string
	Value   string
	MeterID string
}

// Overrides are caller-supplied column indexes. They win over every
// detection rule; nil means not supplied.
type Overrides struct {
	Date    *int
	Time    *int
	Value   *int
	MeterID *int
}

var (
	dateKeywords  = []string{"rdate", "date", "datetime", "timestamp", "day", "datum"}
	timeKeywords  = []string{"rtime", "time", "hour", "zeit"}
	valueKeywords = []string{"kwh+", "kwh-", "kwh", "kw", "energy", "consumption", "reading", "value", "power", "load", "demand", "active"}
	meterKeywords = []string{"meter", "meter_id", "meterid", "device", "channel", "point", "site"}
)

// columnRule is one stage of the locator cascade: it yields a column index
// or reports no opinion.
type columnRule struct {
	name  string
	apply func(header []string, sample [][]string, taken map[int]bool) (int, bool)
}

func overrideRule(idx *int) columnRule {
	return columnRule{name: RuleOverride, apply: func(_ []string, _ [][]string, _ map[int]bool) (int, bool) {
		if idx == nil {
			return 0, false
		}
		return *idx, true
	}}
}

// headerRule matches role keywords against header cells, keyword priority
// first, skipping columns already assigned to another role.
func headerRule(keywords []string) columnRule {
	return columnRule{name: RuleHeader, apply: func(header []string, _ [][]string, taken map[int]bool) (int, bool) {
		for _, kw := range keywords {
			for i, cell := range header {
				if taken[i] {
					continue
				}
				if strings.Contains(strings.ToLower(strings.TrimSpace(cell)), kw) {
					return i, true
				}
			}
		}
		return 0, false
	}}
}

// dataRule scores unassigned columns on how reading-like their cells look.
// It only forms an opinion when a column has enough parseable numbers.
var dataRule = columnRule{name: RuleData, apply: func(header []string, sample [][]string, taken map[int]bool) (int, bool) {
	best, bestScore := -1, 0.0
	for col := 0; col < rowWidth(header, sample); col++ {
		if taken[col] {
			continue
		}
		score, ok := scoreValueColumn(sample, col)
		if !ok {
			continue
		}
		if best < 0 || score > bestScore {
			best, bestScore = col, score
		}
	}
	if best < 0 {
		return 0, false
	}
	return best, true
}}

func scoreValueColumn(sample [][]string, col int) (float64, bool) {
	numeric := 0
	sumAbs := 0.0
	distinct := make(map[float64]struct{})
	for _, row := range sample {
		if col >= len(row) {
			continue
		}
		v, ok := ParseNumeric(row[col])
		if !ok {
			continue
		}
		numeric++
		sumAbs += math.Abs(v)
		distinct[v] = struct{}{}
	}
	if numeric < minNumericCells {
		return 0, false
	}
	score := float64(numeric)
	if len(distinct) > 1 {
		score += 10
	}
	if sumAbs > 0 {
		score += 5
	}
	return score, true
}

func rowWidth(header []string, sample [][]string) int {
	w := len(header)
	for _, row := range sample {
		if len(row) > w {
			w = len(row)
		}
	}
	return w
}

// LocateColumns resolves semantic roles for a header row and a data sample
// (capped at 20 rows). Deterministic and total: it always returns a mapping,
// possibly a poor one, which is an accepted limitation of the cascade.
func LocateColumns(header []string, sample [][]string, ov Overrides) (ColumnMapping, Resolution) {
	if len(sample) > columnSampleRows {
		sample = sample[:columnSampleRows]
	}
	taken := make(map[int]bool)
	m := ColumnMapping{DateCol: -1, TimeCol: -1, ValueCol: -1, MeterIDCol: -1}
	var res Resolution

	run := func(rules ...columnRule) (int, string) {
		for _, r := range rules {
			if idx, ok := r.apply(header, sample, taken); ok {
				return idx, r.name
			}
		}
		return -1, ""
	}
	claim := func(idx int) {
		if idx >= 0 {
			taken[idx] = true
		}
	}

	m.DateCol, res.Date = run(overrideRule(ov.Date), headerRule(dateKeywords))
	claim(m.DateCol)
	m.TimeCol, res.Time = run(overrideRule(ov.Time), headerRule(timeKeywords))
	claim(m.TimeCol)
	m.MeterIDCol, res.MeterID = run(overrideRule(ov.MeterID), headerRule(meterKeywords))
	claim(m.MeterIDCol)
	m.ValueCol, res.Value = run(overrideRule(ov.Value), headerRule(valueKeywords), dataRule)
	claim(m.ValueCol)

	// Hard fallbacks keep the mapping total.
	if m.DateCol < 0 {
		m.DateCol, res.Date = 0, RuleFallback
		taken[0] = true
	}
	if m.ValueCol < 0 {
		idx := 1
		if rowWidth(header, sample) <= 1 {
			idx = 0
		}
		m.ValueCol, res.Value = idx, RuleFallback
	}
	return m, res
}

// MappingFromOverrides builds a mapping from explicit indexes only, with the
// hard fallbacks for unset roles. Used when auto-detection is disabled.
func MappingFromOverrides(ov Overrides, width int) (ColumnMapping, Resolution) {
	m := ColumnMapping{DateCol: 0, TimeCol: -1, ValueCol: 1, MeterIDCol: -1}
	res := Resolution{Date: RuleFallback, Value: RuleFallback}
	if width <= 1 {
		m.ValueCol = 0
	}
	if ov.Date != nil {
		m.DateCol, res.Date = *ov.Date, RuleOverride
	}
	if ov.Time != nil {
		m.TimeCol, res.Time = *ov.Time, RuleOverride
	}
	if ov.Value != nil {
		m.ValueCol, res.Value = *ov.Value, RuleOverride
	}
	if ov.MeterID != nil {
		m.MeterIDCol, res.MeterID = *ov.MeterID, RuleOverride
	}
	return m, res
}
