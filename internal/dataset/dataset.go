// Package dataset holds the survey records every dashboard view is built from:
// loading, the derived depression label and the gender filter.
package dataset

import (
	"fmt"
	"strconv"
	"strings"
)

// Required column names.
const (
	ColGender     = "gender"
	ColDepression = "depression"
)

// Depression display labels.
const (
	LabelNo      = "Não"
	LabelYes     = "Sim"
	LabelUnknown = "unknown"
)

// MissingGenderLabel is how a blank gender is shown in the filter.
const MissingGenderLabel = "(não informado)"

// Record is one survey response.
type Record struct {
	// Line is the 1-based data row in the source file (header excluded).
	Line       int
	Gender     string
	Depression string
	// DepressionLabel is set by Prepare; empty before that.
	DepressionLabel string
	// Values holds every source column, aligned with Dataset.Columns.
	Values []string
}

// Dataset is an ordered, read-only sequence of records sharing one schema.
type Dataset struct {
	name     string
	columns  []string
	index    map[string]int
	records  []Record
	domain   Domain
	unmapped []int
	prepared bool
}

// New builds an unprepared dataset from a header and raw rows.
// The gender and depression columns must be present.
func New(name string, header []string, rows [][]string) (*Dataset, error) {
	d := &Dataset{name: name, columns: append([]string(nil), header...), index: make(map[string]int, len(header))}
	for i, h := range header {
		key := strings.ToLower(strings.TrimSpace(h))
		if _, dup := d.index[key]; !dup {
			d.index[key] = i
		}
	}
	for _, col := range []string{ColGender, ColDepression} {
		if _, ok := d.index[col]; !ok {
			return nil, &MissingColumnError{Column: col}
		}
	}
	gi, di := d.index[ColGender], d.index[ColDepression]
	d.records = make([]Record, 0, len(rows))
	for i, row := range rows {
		vals := make([]string, len(header))
		copy(vals, row)
		d.records = append(d.records, Record{
			Line:       i + 1,
			Gender:     strings.TrimSpace(vals[gi]),
			Depression: strings.TrimSpace(vals[di]),
			Values:     vals,
		})
	}
	return d, nil
}

// Name is the source file name.
func (d *Dataset) Name() string { return d.name }

// Columns returns the source column names in file order.
func (d *Dataset) Columns() []string { return append([]string(nil), d.columns...) }

// HasColumn reports whether the named column exists (case-insensitive).
func (d *Dataset) HasColumn(col string) bool {
	_, ok := d.index[strings.ToLower(col)]
	return ok
}

// Len is the number of records.
func (d *Dataset) Len() int { return len(d.records) }

// Each calls fn for every record in order.
func (d *Dataset) Each(fn func(Record)) {
	for _, r := range d.records {
		fn(r)
	}
}

// Domain is the gender domain computed at preparation time.
func (d *Dataset) Domain() Domain { return append(Domain(nil), d.domain...) }

// Unmapped returns the source lines whose depression value was neither 0 nor 1.
func (d *Dataset) Unmapped() []int { return append([]int(nil), d.unmapped...) }

// Value returns the raw value of col for r, or "" when the column does not exist.
// The derived column depression_label is also addressable.
func (d *Dataset) Value(r Record, col string) string {
	key := strings.ToLower(strings.TrimSpace(col))
	if key == "depression_label" {
		return r.DepressionLabel
	}
	i, ok := d.index[key]
	if !ok || i >= len(r.Values) {
		return ""
	}
	return strings.TrimSpace(r.Values[i])
}

// Prepare returns a copy of d with DepressionLabel populated on every record and the
// gender domain computed. Values outside {0, 1} get LabelUnknown and are listed by Unmapped.
// showMissing controls whether a blank gender is part of the domain.
func Prepare(d *Dataset, showMissing bool) *Dataset {
	out := &Dataset{
		name:     d.name,
		columns:  d.columns,
		index:    d.index,
		records:  make([]Record, len(d.records)),
		prepared: true,
	}
	for i, r := range d.records {
		r.DepressionLabel = DepressionLabel(r.Depression)
		if r.DepressionLabel == LabelUnknown {
			out.unmapped = append(out.unmapped, r.Line)
		}
		out.records[i] = r
	}
	out.domain = discoverDomain(out.records, showMissing)
	return out
}

// DepressionLabel maps a raw depression indicator to its display label.
func DepressionLabel(raw string) string {
	v := strings.TrimSpace(raw)
	if v == "" {
		return LabelUnknown
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return LabelUnknown
	}
	switch f {
	case 0:
		return LabelNo
	case 1:
		return LabelYes
	default:
		return LabelUnknown
	}
}

// FilterByGender returns the records of d whose gender is in sel, in original order.
// An empty selection yields an empty dataset. The result keeps d's domain.
func FilterByGender(d *Dataset, sel Selection) *Dataset {
	out := &Dataset{
		name:     d.name,
		columns:  d.columns,
		index:    d.index,
		domain:   d.domain,
		prepared: d.prepared,
	}
	if len(sel) == 0 {
		out.records = []Record{}
		return out
	}
	out.records = make([]Record, 0, len(d.records))
	for _, r := range d.records {
		if sel.Has(r.Gender) {
			out.records = append(out.records, r)
			if r.DepressionLabel == LabelUnknown && d.prepared {
				out.unmapped = append(out.unmapped, r.Line)
			}
		}
	}
	return out
}

// Where returns the records of d that satisfy keep, in original order.
func Where(d *Dataset, keep func(Record) bool) *Dataset {
	out := &Dataset{
		name:     d.name,
		columns:  d.columns,
		index:    d.index,
		domain:   d.domain,
		prepared: d.prepared,
		records:  []Record{},
	}
	for _, r := range d.records {
		if keep(r) {
			out.records = append(out.records, r)
			if r.DepressionLabel == LabelUnknown && d.prepared {
				out.unmapped = append(out.unmapped, r.Line)
			}
		}
	}
	return out
}

// String summarizes the dataset for logs.
func (d *Dataset) String() string {
	return fmt.Sprintf("%s (%d records, %d columns)", d.name, len(d.records), len(d.columns))
}
