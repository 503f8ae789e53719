package profile

import (
	"regexp"
	"sort"
	"strings"
)

// Layout classifies the overall shape of an export.
type Layout string

const (
	LayoutPnPSCADA   Layout = "pnp_scada"
	LayoutStandard   Layout = "standard"
	LayoutMultiMeter Layout = "multi_meter"
	LayoutCumulative Layout = "cumulative"
	LayoutUnknown    Layout = "unknown"
)

// Detection sample bounds.
const (
	delimiterSampleLines = 10
	layoutSampleRows     = 200
	headerScanLines      = 5
)

// FormatDetection describes the inferred dialect and layout of a raw export.
// Confidence is informational only; it never gates processing.
type FormatDetection struct {
	Layout            Layout   `json:"layout"`
	Delimiter         string   `json:"delimiter"`
	HeaderRowIndex    int      `json:"header_row_index"`
	HasNegativeValues bool     `json:"has_negative_values"`
	IsCumulative      bool     `json:"is_cumulative"`
	MeterIDs          []string `json:"meter_ids,omitempty"`
	Confidence        float64  `json:"confidence"`

	// PnP SCADA metadata from the first line, when present.
	MeterName  string `json:"meter_name,omitempty"`
	RangeStart string `json:"range_start,omitempty"`
	RangeEnd   string `json:"range_end,omitempty"`
}

// DelimiterRune returns the delimiter as a rune, defaulting to comma.
func (f FormatDetection) DelimiterRune() rune {
	if f.Delimiter == "" {
		return ','
	}
	return []rune(f.Delimiter)[0]
}

// PnP SCADA metadata line: optional leading comma, a quoted or bare meter
// name, then two ISO dates.
var pnpFirstLine = regexp.MustCompile(`^,?"?([^",]+)"?,(\d{4}-\d{2}-\d{2}),(\d{4}-\d{2}-\d{2})`)

// DetectFormat classifies normalized lines into a dialect and layout.
// forcedDelimiter overrides the histogram when non-zero. It never fails:
// an unknown layout is a valid result, not an error.
func DetectFormat(lines []string, forcedDelimiter rune) FormatDetection {
	det := FormatDetection{Layout: LayoutStandard, Delimiter: ",", Confidence: 0.3}
	if len(lines) == 0 {
		det.Layout = LayoutUnknown
		return det
	}
	delim := forcedDelimiter
	if delim == 0 {
		delim = detectDelimiter(lines)
	}
	det.Delimiter = string(delim)

	if name, start, end, ok := matchPnPSCADA(lines); ok {
		det.Layout = LayoutPnPSCADA
		det.HeaderRowIndex = 1
		det.Confidence = 0.95
		det.MeterName = name
		det.RangeStart = start
		det.RangeEnd = end
	} else {
		det.HeaderRowIndex = findHeaderRow(lines, delim)
	}

	var header []string
	if det.HeaderRowIndex < len(lines) {
		header = SplitCells(lines[det.HeaderRowIndex], delim)
	}
	rows := sampleRows(lines, delim, det.HeaderRowIndex, layoutSampleRows)
	mapping, resolution := LocateColumns(header, rows, Overrides{})

	if mapping.MeterIDCol >= 0 {
		if ids := distinctValues(rows, mapping.MeterIDCol); len(ids) > 1 {
			if det.Layout != LayoutPnPSCADA {
				det.Layout = LayoutMultiMeter
			}
			det.MeterIDs = ids
		}
	}

	values := sampleValues(rows, mapping.ValueCol)
	det.HasNegativeValues = hasNegative(values)
	det.IsCumulative = isCumulative(values)
	if det.Layout == LayoutStandard && det.IsCumulative {
		det.Layout = LayoutCumulative
	}

	if det.Layout != LayoutPnPSCADA {
		det.Confidence = confidenceFor(resolution)
		// No column evidence at all: report the layout as unknown rather
		// than guessing silently.
		if resolution.Value == RuleFallback && resolution.Date == RuleFallback &&
			(det.Layout == LayoutStandard || det.Layout == LayoutCumulative) {
			det.Layout = LayoutUnknown
		}
	}
	return det
}

func detectDelimiter(lines []string) rune {
	candidates := []rune{'\t', ';', ',', '|'}
	counts := make(map[rune]int, len(candidates))
	limit := len(lines)
	if limit > delimiterSampleLines {
		limit = delimiterSampleLines
	}
	for _, line := range lines[:limit] {
		for _, c := range candidates {
			counts[c] += strings.Count(line, string(c))
		}
	}
	best, bestCount := ',', 0
	for _, c := range candidates {
		if counts[c] > bestCount {
			best, bestCount = c, counts[c]
		}
	}
	return best
}

func matchPnPSCADA(lines []string) (name, start, end string, ok bool) {
	if len(lines) < 2 {
		return "", "", "", false
	}
	m := pnpFirstLine.FindStringSubmatch(lines[0])
	if m == nil {
		return "", "", "", false
	}
	second := strings.ToLower(lines[1])
	for _, required := range []string{"rdate", "rtime", "kwh"} {
		if !strings.Contains(second, required) {
			return "", "", "", false
		}
	}
	return m[1], m[2], m[3], true
}

// findHeaderRow picks the first of the first 5 lines whose first cell does
// not start with a digit, defaulting to row 0.
func findHeaderRow(lines []string, delim rune) int {
	limit := len(lines)
	if limit > headerScanLines {
		limit = headerScanLines
	}
	for i := 0; i < limit; i++ {
		cells := SplitCells(lines[i], delim)
		if len(cells) == 0 || cells[0] == "" {
			continue
		}
		if first := cells[0][0]; first < '0' || first > '9' {
			return i
		}
	}
	return 0
}

func sampleRows(lines []string, delim rune, headerIdx, limit int) [][]string {
	start := headerIdx + 1
	if start >= len(lines) {
		return nil
	}
	end := len(lines)
	if end > start+limit {
		end = start + limit
	}
	rows := make([][]string, 0, end-start)
	for _, line := range lines[start:end] {
		rows = append(rows, SplitCells(line, delim))
	}
	return rows
}

func distinctValues(rows [][]string, col int) []string {
	seen := make(map[string]struct{})
	var ids []string
	for _, row := range rows {
		if col < 0 || col >= len(row) {
			continue
		}
		v := strings.TrimSpace(row[col])
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		ids = append(ids, v)
	}
	sort.Strings(ids)
	return ids
}

func sampleValues(rows [][]string, col int) []float64 {
	if col < 0 {
		return nil
	}
	var values []float64
	for _, row := range rows {
		if col >= len(row) {
			continue
		}
		if v, ok := ParseNumeric(row[col]); ok {
			values = append(values, v)
		}
	}
	return values
}

func hasNegative(values []float64) bool {
	for _, v := range values {
		if v < 0 {
			return true
		}
	}
	return false
}

// isCumulative reports whether at least 90% of consecutive pairs are
// strictly increasing.
func isCumulative(values []float64) bool {
	if len(values) < 3 {
		return false
	}
	increasing := 0
	pairs := len(values) - 1
	for i := 1; i < len(values); i++ {
		if values[i] > values[i-1] {
			increasing++
		}
	}
	return float64(increasing) >= 0.9*float64(pairs)
}

func confidenceFor(res Resolution) float64 {
	switch res.Value {
	case RuleHeader, RuleOverride:
		return 0.8
	case RuleData:
		return 0.5
	default:
		return 0.3
	}
}
