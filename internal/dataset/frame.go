// Package dataset holds the tabular data passed between pipeline stages: a
// frame of string cells with named columns, its CSV encoding and the
// train/test split.
package dataset

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Frame is a rectangular table of string cells. Every row has exactly
// len(Columns) cells.
type Frame struct {
	Columns []string
	Rows    [][]string
}

// Field is one key/value pair of a source document.
type Field struct {
	Key   string
	Value any
}

// Record is an ordered source document.
type Record []Field

var missingValues = map[string]bool{
	"":     true,
	"nan":  true,
	"na":   true,
	"n/a":  true,
	"null": true,
	"none": true,
}

// IsMissing reports whether a cell holds no value.
func IsMissing(v string) bool {
	return missingValues[strings.ToLower(strings.TrimSpace(v))]
}

// New returns an empty frame with the given columns.
func New(columns ...string) *Frame {
	return &Frame{Columns: append([]string(nil), columns...)}
}

// FromRecords builds a frame from documents. Columns appear in order of first
// occurrence across all documents; absent fields become missing cells.
func FromRecords(records []Record) *Frame {
	index := map[string]int{}
	var columns []string
	for _, rec := range records {
		for _, f := range rec {
			if _, ok := index[f.Key]; !ok {
				index[f.Key] = len(columns)
				columns = append(columns, f.Key)
			}
		}
	}

	rows := make([][]string, 0, len(records))
	for _, rec := range records {
		row := make([]string, len(columns))
		for _, f := range rec {
			row[index[f.Key]] = FormatValue(f.Value)
		}
		rows = append(rows, row)
	}
	return &Frame{Columns: columns, Rows: rows}
}

// FormatValue renders a document value as a cell.
func FormatValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		if math.IsNaN(t) {
			return ""
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return FormatValue(float64(t))
	case int:
		return strconv.Itoa(t)
	case int32:
		return strconv.FormatInt(int64(t), 10)
	case int64:
		return strconv.FormatInt(t, 10)
	case bool:
		if t {
			return "True"
		}
		return "False"
	default:
		return fmt.Sprint(t)
	}
}

// Len returns the number of rows.
func (f *Frame) Len() int {
	return len(f.Rows)
}

// ColumnIndex returns the position of name, or -1.
func (f *Frame) ColumnIndex(name string) int {
	for i, c := range f.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// HasColumn reports whether the frame has a column called name.
func (f *Frame) HasColumn(name string) bool {
	return f.ColumnIndex(name) >= 0
}

// Column returns a copy of the named column's cells.
func (f *Frame) Column(name string) ([]string, error) {
	idx := f.ColumnIndex(name)
	if idx < 0 {
		return nil, fmt.Errorf("%w: %s", errMissingColumn, name)
	}
	out := make([]string, len(f.Rows))
	for i, row := range f.Rows {
		out[i] = row[idx]
	}
	return out, nil
}

// FloatColumn parses the named column as float64 values.
func (f *Frame) FloatColumn(name string) ([]float64, error) {
	cells, err := f.Column(name)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(cells))
	for i, c := range cells {
		v, err := strconv.ParseFloat(strings.TrimSpace(c), 64)
		if err != nil {
			return nil, fmt.Errorf("column %q row %d: %w", name, i, err)
		}
		out[i] = v
	}
	return out, nil
}

// Drop returns a new frame without the named columns. Every name must exist.
func (f *Frame) Drop(columns ...string) (*Frame, error) {
	drop := make(map[int]bool, len(columns))
	for _, c := range columns {
		idx := f.ColumnIndex(c)
		if idx < 0 {
			return nil, fmt.Errorf("%w: %s", errMissingColumn, c)
		}
		drop[idx] = true
	}

	keep := make([]int, 0, len(f.Columns)-len(drop))
	for i := range f.Columns {
		if !drop[i] {
			keep = append(keep, i)
		}
	}
	return f.project(keep), nil
}

// DropIfPresent removes the named columns that exist and ignores the rest.
func (f *Frame) DropIfPresent(columns ...string) *Frame {
	present := make([]string, 0, len(columns))
	for _, c := range columns {
		if f.HasColumn(c) {
			present = append(present, c)
		}
	}
	out, _ := f.Drop(present...)
	return out
}

// DropMissing returns a new frame without the rows that hold any missing cell.
func (f *Frame) DropMissing() *Frame {
	out := &Frame{Columns: append([]string(nil), f.Columns...)}
	for _, row := range f.Rows {
		complete := true
		for _, v := range row {
			if IsMissing(v) {
				complete = false
				break
			}
		}
		if complete {
			out.Rows = append(out.Rows, append([]string(nil), row...))
		}
	}
	return out
}

// Subset returns the rows at the given positions, in that order.
func (f *Frame) Subset(indexes []int) *Frame {
	out := &Frame{
		Columns: append([]string(nil), f.Columns...),
		Rows:    make([][]string, 0, len(indexes)),
	}
	for _, i := range indexes {
		out.Rows = append(out.Rows, append([]string(nil), f.Rows[i]...))
	}
	return out
}

// Records converts the frame back to documents. Cells that parse as numbers
// become float64 and missing cells become nil.
func (f *Frame) Records() []Record {
	out := make([]Record, 0, len(f.Rows))
	for _, row := range f.Rows {
		rec := make(Record, len(f.Columns))
		for i, c := range f.Columns {
			rec[i] = Field{Key: c, Value: parseCell(row[i])}
		}
		out = append(out, rec)
	}
	return out
}

func parseCell(v string) any {
	if IsMissing(v) {
		return nil
	}
	if n, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
		return n
	}
	return v
}

func (f *Frame) project(keep []int) *Frame {
	out := &Frame{
		Columns: make([]string, len(keep)),
		Rows:    make([][]string, len(f.Rows)),
	}
	for j, idx := range keep {
		out.Columns[j] = f.Columns[idx]
	}
	for i, row := range f.Rows {
		nr := make([]string, len(keep))
		for j, idx := range keep {
			nr[j] = row[idx]
		}
		out.Rows[i] = nr
	}
	return out
}
