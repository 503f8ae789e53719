package profile

import (
	"encoding/csv"
	"strconv"
	"strings"
)

// NormalizeLines applies the text preprocessing contract: strip a UTF-8
// byte-order mark, drop `sep=` metadata lines, trim every line. Blank lines
// are dropped. The second slice carries each kept line's 1-based position
// in the original text, so diagnostics keep pointing at the user's file
// after dropped lines shift the indexes.
func NormalizeLines(raw string) ([]string, []int) {
	raw = strings.TrimPrefix(raw, "\ufeff")
	var lines []string
	var numbers []int
	for i, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if strings.HasPrefix(strings.ToLower(line), "sep=") {
			continue
		}
		lines = append(lines, line)
		numbers = append(numbers, i+1)
	}
	return lines, numbers
}

// SplitCells tokenizes a single line with the given delimiter, honoring
// quoted cells. Cells are trimmed.
func SplitCells(line string, delimiter rune) []string {
	r := csv.NewReader(strings.NewReader(line))
	r.Comma = delimiter
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	cells, err := r.Read()
	if err != nil {
		cells = strings.Split(line, string(delimiter))
	}
	for i := range cells {
		cells[i] = strings.TrimSpace(cells[i])
	}
	return cells
}

// Tokenize splits every line into cells. Row i corresponds to source line
// i+1; quoted fields never span lines in the exports this handles.
func Tokenize(lines []string, delimiter rune) [][]string {
	rows := make([][]string, 0, len(lines))
	for _, line := range lines {
		rows = append(rows, SplitCells(line, delimiter))
	}
	return rows
}

// ParseNumeric parses a meter reading cell. Cells using a decimal comma are
// accepted when no dot is present, which covers European exports.
func ParseNumeric(cell string) (float64, bool) {
	s := strings.TrimSpace(cell)
	if s == "" {
		return 0, false
	}
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		return v, true
	}
	if strings.Count(s, ",") == 1 && !strings.Contains(s, ".") {
		if v, err := strconv.ParseFloat(strings.Replace(s, ",", ".", 1), 64); err == nil {
			return v, true
		}
	}
	return 0, false
}
