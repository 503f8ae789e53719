package application

import (
	"fmt"
	"log"
	"strings"

	profile "meterprofile/internal/profile/domain"
)

const previewSampleRows = 10

// Extractor runs the load-profile pipeline: one streaming pass over the
// rows of a raw export, in file order, because cumulative-delta
// reconstruction carries per-meter state between rows. An Extractor holds
// no per-run state and is safe for concurrent use.
type Extractor struct {
	logger *log.Logger
}

// NewExtractor constructs an Extractor.
func NewExtractor(logger *log.Logger) *Extractor {
	return &Extractor{logger: logger}
}

// Extract converts raw meter export text into normalized load profiles.
// Row-level problems are counted in the stats, never fatal; the only errors
// returned are empty input and explicit config the input cannot satisfy.
func (e *Extractor) Extract(csvText string, cfg Config) (*Result, error) {
	cfg = cfg.withDefaults()
	pre, err := prepare(csvText, cfg)
	if err != nil {
		return nil, err
	}

	unit := resolveUnit(cfg, pre)
	cumulative := pre.det.IsCumulative
	if cfg.HandleCumulative != nil {
		cumulative = *cfg.HandleCumulative
	}
	rec := profile.NewReconstructor(cumulative, cfg.HandleNegatives)

	combined := profile.NewAccumulator()
	perMeter := make(map[string]*profile.Accumulator)
	var stats profile.ProcessingStats
	var sample []profile.DataPoint

	for i, row := range pre.dataRows() {
		lineNo := pre.lineFor(i)
		stats.TotalRows++

		if !rowWideEnough(row, pre.mapping) {
			stats.SkippedRows++
			continue
		}
		timeCell := ""
		if pre.mapping.TimeCol >= 0 {
			timeCell = row[pre.mapping.TimeCol]
		}
		ts, ok := profile.ParseTimestamp(row[pre.mapping.DateCol], timeCell, cfg.DateFormat)
		if !ok {
			stats.SkippedRows++
			stats.RecordError("line %d: unparseable date %q", lineNo, row[pre.mapping.DateCol])
			continue
		}
		raw, ok := profile.ParseNumeric(row[pre.mapping.ValueCol])
		if !ok {
			stats.SkippedRows++
			continue
		}
		meterID := ""
		if pre.mapping.MeterIDCol >= 0 && pre.mapping.MeterIDCol < len(row) {
			meterID = strings.TrimSpace(row[pre.mapping.MeterIDCol])
		}

		v, negative, keep := rec.Apply(meterID, unit.Convert(raw, cfg.VoltageV, cfg.PowerFactor))
		if negative {
			stats.NegativeValueCount++
		}
		if !keep {
			stats.SkippedRows++
			continue
		}

		combined.Add(ts, v)
		if pre.mapping.MeterIDCol >= 0 && meterID != "" {
			acc := perMeter[meterID]
			if acc == nil {
				acc = profile.NewAccumulator()
				perMeter[meterID] = acc
			}
			acc.Add(ts, v)
		}
		if len(sample) < profile.SampleLimit {
			sample = append(sample, profile.DataPoint{Timestamp: ts, Value: v, MeterID: meterID, SourceLine: lineNo})
		}
		stats.ProcessedRows++
	}

	kind := unit.Kind()
	top := combined.Profile(kind)
	res := &Result{
		Success:         top.Valid,
		DataPointCount:  top.DataPointCount,
		RangeStart:      top.RangeStart,
		RangeEnd:        top.RangeEnd,
		WeekdayDayCount: top.WeekdayDayCount,
		WeekendDayCount: top.WeekendDayCount,
		WeekdayProfile:  top.WeekdayProfile,
		WeekendProfile:  top.WeekendProfile,
		DetectedColumns: detectedColumns(pre),
		Format:          pre.det,
		Stats:           stats,
		Profile:         top,
		Sample:          sample,
	}
	if len(perMeter) >= 2 {
		res.MeterData = make(map[string]*profile.LoadProfile, len(perMeter))
		for id, acc := range perMeter {
			p := acc.Profile(kind)
			res.MeterData[id] = &p
		}
	}
	if e.logger != nil {
		e.logger.Printf("extract done: layout=%s unit=%s rows=%d processed=%d skipped=%d meters=%d valid=%t",
			pre.det.Layout, unit, stats.TotalRows, stats.ProcessedRows, stats.SkippedRows, len(perMeter), top.Valid)
	}
	return res, nil
}

// Detect runs format and column detection only, for UI preview before
// committing to full processing.
func (e *Extractor) Detect(csvText string, cfg Config) (*Preview, error) {
	cfg = cfg.withDefaults()
	pre, err := prepare(csvText, cfg)
	if err != nil {
		return nil, err
	}
	data := pre.dataRows()
	n := len(data)
	if n > previewSampleRows {
		n = previewSampleRows
	}
	return &Preview{
		Format:     pre.det,
		Columns:    pre.mapping,
		Headers:    pre.header,
		SampleRows: data[:n],
		TotalRows:  len(data),
	}, nil
}

// prepared is the shared front half of both modes: normalized lines,
// detected format, tokenized rows and a resolved column mapping.
type prepared struct {
	lines   []string
	numbers []int
	det     profile.FormatDetection
	rows    [][]string
	header  []string
	mapping profile.ColumnMapping
	res     profile.Resolution
}

func (p *prepared) dataRows() [][]string {
	start := p.det.HeaderRowIndex + 1
	if start >= len(p.rows) {
		return nil
	}
	return p.rows[start:]
}

// lineFor maps a data-row index back to its 1-based line in the original
// text, accounting for lines dropped during normalization.
func (p *prepared) lineFor(i int) int {
	idx := p.det.HeaderRowIndex + 1 + i
	if idx < len(p.numbers) {
		return p.numbers[idx]
	}
	return idx + 1
}

func prepare(csvText string, cfg Config) (*prepared, error) {
	lines, numbers := profile.NormalizeLines(csvText)
	if len(lines) == 0 {
		return nil, profile.ErrEmptyInput
	}

	var forced rune
	if cfg.Separator != "" {
		forced = []rune(cfg.Separator)[0]
	}
	det := profile.DetectFormat(lines, forced)
	if cfg.HeaderRowNumber != nil {
		if *cfg.HeaderRowNumber < 0 || *cfg.HeaderRowNumber >= len(lines) {
			return nil, fmt.Errorf("header row %d: %w", *cfg.HeaderRowNumber, profile.ErrHeaderOutOfRange)
		}
		det.HeaderRowIndex = *cfg.HeaderRowNumber
	}

	rows := profile.Tokenize(lines, det.DelimiterRune())
	header := rows[det.HeaderRowIndex]
	data := rows[det.HeaderRowIndex+1:]

	if err := checkColumnBounds(cfg, data); err != nil {
		return nil, err
	}

	var mapping profile.ColumnMapping
	var res profile.Resolution
	if cfg.autoDetect() {
		mapping, res = profile.LocateColumns(header, data, cfg.overrides())
	} else {
		mapping, res = profile.MappingFromOverrides(cfg.overrides(), maxWidth(data))
	}

	return &prepared{
		lines:   lines,
		numbers: numbers,
		det:     det,
		rows:    rows,
		header:  header,
		mapping: mapping,
		res:     res,
	}, nil
}

// checkColumnBounds rejects explicit column indexes that no observed row
// can satisfy - the one config error worth failing the whole run for.
func checkColumnBounds(cfg Config, data [][]string) error {
	width := maxWidth(data)
	for _, c := range []struct {
		name string
		idx  *int
	}{
		{"date_column", cfg.DateColumn},
		{"time_column", cfg.TimeColumn},
		{"value_column", cfg.ValueColumn},
		{"meter_id_column", cfg.MeterIDColumn},
		{"kva_column", cfg.KVAColumn},
	} {
		if c.idx == nil {
			continue
		}
		if *c.idx < 0 || *c.idx >= width {
			return fmt.Errorf("%s %d: %w", c.name, *c.idx, profile.ErrColumnOutOfRange)
		}
	}
	return nil
}

func maxWidth(rows [][]string) int {
	w := 0
	for _, row := range rows {
		if len(row) > w {
			w = len(row)
		}
	}
	return w
}

// resolveUnit picks the reading unit: explicit config first, then the kVA
// column convention, then the value column's header text, then kWh.
func resolveUnit(cfg Config, pre *prepared) profile.Unit {
	if cfg.ValueUnit != "" {
		return profile.DetectUnit(cfg.ValueUnit)
	}
	if cfg.KVAColumn != nil && cfg.ValueColumn == nil {
		return profile.UnitKVA
	}
	if pre.mapping.ValueCol >= 0 && pre.mapping.ValueCol < len(pre.header) {
		if h := strings.TrimSpace(pre.header[pre.mapping.ValueCol]); h != "" {
			return profile.DetectUnit(h)
		}
	}
	return profile.UnitKWh
}

// rowWideEnough checks the row covers the date, time and value columns. A
// short meter-id column only blanks the meter id.
func rowWideEnough(row []string, m profile.ColumnMapping) bool {
	need := m.DateCol
	if m.ValueCol > need {
		need = m.ValueCol
	}
	if m.TimeCol > need {
		need = m.TimeCol
	}
	return need < len(row)
}

func detectedColumns(pre *prepared) DetectedColumns {
	return DetectedColumns{
		DateColumn:    pre.mapping.DateCol,
		TimeColumn:    pre.mapping.TimeCol,
		ValueColumn:   pre.mapping.ValueCol,
		MeterIDColumn: pre.mapping.MeterIDCol,
		Headers:       pre.header,
	}
}
