// Package csvexport renders admin reports as comma separated text.
//
// Values are never quoted. Commas inside a value are replaced with ';' and
// line breaks with a space so that every record stays on one line.
package csvexport

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"
)

// Row maps column names to values.
type Row map[string]any

// Report is a named table with a fixed column order.
type Report struct {
	Name    string
	Columns []string
	Rows    []Row
}

// Filename returns "<name>_report.csv".
func (r Report) Filename() string {
	return r.Name + "_report.csv"
}

// Encode returns the whole report as a string.
func (r Report) Encode() string {
	var b strings.Builder
	_ = r.Write(&b)
	return b.String()
}

// Write writes the header line followed by one line per row, separated by
// '\n' without a trailing newline. An empty report writes nothing.
func (r Report) Write(w io.Writer) error {
	if len(r.Columns) == 0 {
		return nil
	}

	lines := make([]string, 0, len(r.Rows)+1)
	lines = append(lines, strings.Join(r.Columns, ","))
	for _, row := range r.Rows {
		cells := make([]string, len(r.Columns))
		for i, col := range r.Columns {
			cells[i] = FormatValue(row[col])
		}
		lines = append(lines, strings.Join(cells, ","))
	}

	_, err := io.WriteString(w, strings.Join(lines, "\n"))
	return err
}

// FormatValue renders a single cell. Only nil is blank: zero numbers and
// false render as 0 and false. Nested values are JSON encoded and get the
// same comma replacement as text.
func FormatValue(v any) string {
	var s string
	switch val := v.(type) {
	case nil:
		s = ""
	case string:
		s = val
	case *string:
		if val != nil {
			s = *val
		}
	case time.Time:
		s = val.UTC().Format(time.RFC3339)
	case *time.Time:
		if val != nil {
			s = val.UTC().Format(time.RFC3339)
		}
	case fmt.Stringer:
		s = val.String()
	case bool, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		s = fmt.Sprint(val)
	case *int:
		if val != nil {
			s = fmt.Sprint(*val)
		}
	case json.RawMessage:
		s = string(val)
	default:
		raw, err := json.Marshal(val)
		if err != nil {
			s = fmt.Sprint(val)
		} else {
			s = string(raw)
		}
	}

	s = strings.ReplaceAll(s, ",", ";")
	s = strings.ReplaceAll(s, "\r\n", " ")
	return strings.ReplaceAll(s, "\n", " ")
}
