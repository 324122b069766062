package models

// Dataset is a delimited table held in memory. Records are raw string cells;
// the empty string is the null value.
type Dataset struct {
	Columns []string
	Records [][]string
	index   map[string]int
}

// NewDataset builds a Dataset and its column index. Duplicate header names
// resolve to the first occurrence.
func NewDataset(columns []string, records [][]string) *Dataset {
	idx := make(map[string]int, len(columns))
	for i, c := range columns {
		if _, dup := idx[c]; !dup {
			idx[c] = i
		}
	}
	return &Dataset{Columns: columns, Records: records, index: idx}
}

// Len returns the number of records.
func (d *Dataset) Len() int {
	return len(d.Records)
}

// HasColumn reports whether the header contains name.
func (d *Dataset) HasColumn(name string) bool {
	_, ok := d.index[name]
	return ok
}

// ColumnIndex returns the position of name in every record.
func (d *Dataset) ColumnIndex(name string) (int, bool) {
	i, ok := d.index[name]
	return i, ok
}

// Cell returns the value at (row, col), or "" when the record is short.
func (d *Dataset) Cell(row, col int) string {
	rec := d.Records[row]
	if col < 0 || col >= len(rec) {
		return ""
	}
	return rec[col]
}

// Filter returns a new Dataset sharing the header and holding only the
// records keep accepts. Record slices are shared, not copied.
func (d *Dataset) Filter(keep func(rec []string) bool) *Dataset {
	out := make([][]string, 0, len(d.Records))
	for _, rec := range d.Records {
		if keep(rec) {
			out = append(out, rec)
		}
	}
	return &Dataset{Columns: d.Columns, Records: out, index: d.index}
}
