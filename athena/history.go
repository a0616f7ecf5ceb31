package athena

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"
)

var columnName = regexp.MustCompile(`\[\d+\]=(\S+)`)

// History is a time series of volume-integrated quantities keyed by column name
type History map[string][]float64

// ReadHistory reads an Athena .hst file
func ReadHistory(path string) (History, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	h, err := ParseHistory(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return h, nil
}

// ParseHistory reads history data. The first line identifies the format and
// the second names the columns as [n]=name. Rows superseded by a restart,
// those whose time is not below every later time, are dropped
func ParseHistory(r io.Reader) (History, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	if !sc.Scan() || !isHistoryBanner(sc.Text()) {
		return nil, fmt.Errorf("%w: not history data", ErrFormat)
	}
	if !sc.Scan() {
		return nil, fmt.Errorf("%w: missing column header", ErrFormat)
	}
	var names []string
	for _, m := range columnName.FindAllStringSubmatch(sc.Text(), -1) {
		names = append(names, m[1])
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("%w: could not parse column header", ErrFormat)
	}

	var rows [][]float64
	for line := 3; sc.Scan(); line++ {
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		fields := strings.Fields(text)
		if len(fields) < len(names) {
			return nil, fmt.Errorf("%w: line %d has %d columns, want %d", ErrFormat, line, len(fields), len(names))
		}
		row := make([]float64, len(names))
		for c := range row {
			v, err := strconv.ParseFloat(fields[c], 64)
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: %v", ErrFormat, line, err)
			}
			row[c] = v
		}
		rows = append(rows, row)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}

	keep := monotonic(rows)
	h := make(History, len(names))
	for c, name := range names {
		col := make([]float64, 0, len(rows))
		for n, row := range rows {
			if keep[n] {
				col = append(col, row[c])
			}
		}
		h[name] = col
	}
	return h, nil
}

func isHistoryBanner(s string) bool {
	s = strings.TrimSpace(s)
	return strings.HasPrefix(s, "# Athena") && strings.HasSuffix(s, "history data")
}

// monotonic marks the rows to keep so the first column strictly increases:
// a row survives when its time is below the minimum of all later times
func monotonic(rows [][]float64) []bool {
	keep := make([]bool, len(rows))
	if len(rows) == 0 {
		return keep
	}
	mono := make([]float64, len(rows))
	mono[len(rows)-1] = rows[len(rows)-1][0]
	for n := len(rows) - 2; n >= 0; n-- {
		mono[n] = min(rows[n][0], mono[n+1])
	}
	for n := 0; n < len(rows)-1; n++ {
		keep[n] = mono[n] < mono[n+1]
	}
	keep[len(rows)-1] = true
	return keep
}
