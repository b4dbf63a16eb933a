package table

import (
	"encoding/json"
	"strings"

	"profitpulse/domain/core"
)

// Role is the cleaning rule a column was classified under
type Role string

const (
	RoleText       Role = "text"
	RoleMonetary   Role = "monetary"
	RolePercentage Role = "percentage"
	RoleDate       Role = "date"
	RoleDerived    Role = "derived"
)

// Column is a named, ordered slice of cells
type Column struct {
	Name  string  `json:"name"`
	Role  Role    `json:"role"`
	Cells []Value `json:"-"`
}

// IsTextual reports whether any present cell still holds text
func (c *Column) IsTextual() bool {
	for _, cell := range c.Cells {
		if cell.IsString() {
			return true
		}
	}
	return false
}

// Table is a row-oriented view over ordered columns of equal length.
// Tables handed to views are never mutated; narrowing returns a copy.
type Table struct {
	columns []*Column
	index   map[string]int
	rows    int
}

// New creates a table with the given row count and no columns
func New(rows int) *Table {
	return &Table{index: make(map[string]int), rows: rows}
}

// Empty returns a table with zero rows and zero columns
func Empty() *Table {
	return New(0)
}

// SetColumn appends a column or replaces one of the same name in place.
// Cells are padded with missing values or truncated to the row count.
func (t *Table) SetColumn(name string, role Role, cells []Value) {
	fitted := make([]Value, t.rows)
	for i := range fitted {
		if i < len(cells) {
			fitted[i] = cells[i]
		} else {
			fitted[i] = NewMissingValue()
		}
	}

	col := &Column{Name: name, Role: role, Cells: fitted}
	if idx, ok := t.index[name]; ok {
		t.columns[idx] = col
		return
	}
	t.index[name] = len(t.columns)
	t.columns = append(t.columns, col)
}

// SetRole changes the role of an existing column
func (t *Table) SetRole(name string, role Role) {
	if idx, ok := t.index[name]; ok {
		t.columns[idx].Role = role
	}
}

// NumRows returns the row count
func (t *Table) NumRows() int { return t.rows }

// NumCols returns the column count
func (t *Table) NumCols() int { return len(t.columns) }

// IsEmpty reports whether the table has no rows
func (t *Table) IsEmpty() bool { return t == nil || t.rows == 0 }

// Has reports whether a column exists
func (t *Table) Has(name string) bool {
	_, ok := t.index[name]
	return ok
}

// Column returns the named column
func (t *Table) Column(name string) (*Column, bool) {
	idx, ok := t.index[name]
	if !ok {
		return nil, false
	}
	return t.columns[idx], true
}

// Columns returns the columns in order
func (t *Table) Columns() []*Column {
	out := make([]*Column, len(t.columns))
	copy(out, t.columns)
	return out
}

// Names returns the column names in order
func (t *Table) Names() []string {
	names := make([]string, len(t.columns))
	for i, c := range t.columns {
		names[i] = c.Name
	}
	return names
}

// Roles returns the column-role map
func (t *Table) Roles() map[string]Role {
	roles := make(map[string]Role, len(t.columns))
	for _, c := range t.columns {
		roles[c.Name] = c.Role
	}
	return roles
}

// Value returns one cell; unknown columns or rows read as missing
func (t *Table) Value(name string, row int) Value {
	col, ok := t.Column(name)
	if !ok || row < 0 || row >= t.rows {
		return NewMissingValue()
	}
	return col.Cells[row]
}

// Float returns a numeric cell
func (t *Table) Float(name string, row int) (float64, bool) {
	return t.Value(name, row).Float64()
}

// Row returns one row keyed by column name
func (t *Table) Row(row int) map[string]Value {
	out := make(map[string]Value, len(t.columns))
	for _, c := range t.columns {
		out[c.Name] = c.Cells[row]
	}
	return out
}

// Filter returns a copy holding the rows for which keep returns true
func (t *Table) Filter(keep func(row int) bool) *Table {
	var kept []int
	for i := 0; i < t.rows; i++ {
		if keep(i) {
			kept = append(kept, i)
		}
	}
	return t.take(kept)
}

// Head returns a copy of the first n rows
func (t *Table) Head(n int) *Table {
	if n > t.rows {
		n = t.rows
	}
	if n < 0 {
		n = 0
	}
	rows := make([]int, n)
	for i := range rows {
		rows[i] = i
	}
	return t.take(rows)
}

// Select returns a copy with only the named columns that exist, in the given order
func (t *Table) Select(names ...string) *Table {
	out := New(t.rows)
	for _, name := range names {
		if col, ok := t.Column(name); ok {
			out.SetColumn(col.Name, col.Role, col.Cells)
		}
	}
	return out
}

// Clone returns a deep copy of the column structure
func (t *Table) Clone() *Table {
	return t.Select(t.Names()...)
}

func (t *Table) take(rows []int) *Table {
	out := New(len(rows))
	for _, c := range t.columns {
		cells := make([]Value, len(rows))
		for i, r := range rows {
			cells[i] = c.Cells[r]
		}
		out.SetColumn(c.Name, c.Role, cells)
	}
	return out
}

// Fingerprint hashes names, roles and cell contents; identical loads hash equally
func (t *Table) Fingerprint() core.Hash {
	var b strings.Builder
	for _, c := range t.columns {
		b.WriteString(c.Name)
		b.WriteByte('\x1f')
		b.WriteString(string(c.Role))
		b.WriteByte('\x1e')
		for _, cell := range c.Cells {
			b.WriteString(string(cell.Type))
			b.WriteByte(':')
			b.WriteString(cell.String())
			b.WriteByte('\x1f')
		}
		b.WriteByte('\x1d')
	}
	return core.NewHash([]byte(b.String()))
}

type tableJSON struct {
	Columns []*Column          `json:"columns"`
	Rows    []map[string]Value `json:"rows"`
}

// MarshalJSON renders column metadata plus one object per row
func (t *Table) MarshalJSON() ([]byte, error) {
	payload := tableJSON{Columns: t.columns, Rows: make([]map[string]Value, t.rows)}
	if payload.Columns == nil {
		payload.Columns = []*Column{}
	}
	for i := 0; i < t.rows; i++ {
		payload.Rows[i] = t.Row(i)
	}
	return json.Marshal(payload)
}
