package dataprocessing

import (
	"fmt"

	"mechprop/pkg/contracts/domain"
)

// Table is an ordered set of instrument samples with named-column access.
// Tables are never mutated once built; every stage returns a new one.
type Table struct {
	rows []domain.RawRecord
}

// NewTable builds a table from rows. The slice is copied.
func NewTable(rows []domain.RawRecord) *Table {
	out := make([]domain.RawRecord, len(rows))
	copy(out, rows)
	return &Table{rows: out}
}

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.rows) }

// Row returns the i-th row.
func (t *Table) Row(i int) domain.RawRecord { return t.rows[i] }

// Rows returns a copy of all rows.
func (t *Table) Rows() []domain.RawRecord {
	out := make([]domain.RawRecord, len(t.rows))
	copy(out, t.rows)
	return out
}

// Column returns a copy of the named column.
func (t *Table) Column(name string) ([]float64, error) {
	get, err := accessor(name)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(t.rows))
	for i := range t.rows {
		out[i] = get(&t.rows[i])
	}
	return out, nil
}

// Series returns an aligned x/y column pair.
func (t *Table) Series(xCol, yCol string) (domain.Series, error) {
	x, err := t.Column(xCol)
	if err != nil {
		return domain.Series{}, err
	}
	y, err := t.Column(yCol)
	if err != nil {
		return domain.Series{}, err
	}
	return domain.Series{XColumn: xCol, YColumn: yCol, X: x, Y: y}, nil
}

// Head returns a table with the first n rows.
func (t *Table) Head(n int) *Table {
	if n > len(t.rows) {
		n = len(t.rows)
	}
	return NewTable(t.rows[:n])
}

// WithColumn returns a copy of the table with the named column replaced.
func (t *Table) WithColumn(name string, values []float64) (*Table, error) {
	if len(values) != len(t.rows) {
		return nil, fmt.Errorf("column %q: got %d values for %d rows", name, len(values), len(t.rows))
	}
	set, err := mutator(name)
	if err != nil {
		return nil, err
	}
	out := NewTable(t.rows)
	for i := range out.rows {
		set(&out.rows[i], values[i])
	}
	return out, nil
}

// ValidColumn reports whether name is a known column.
func ValidColumn(name string) bool {
	_, err := accessor(name)
	return err == nil
}

func accessor(name string) (func(*domain.RawRecord) float64, error) {
	switch name {
	case domain.ColumnElapsedTime:
		return func(r *domain.RawRecord) float64 { return r.ElapsedTime }, nil
	case domain.ColumnScanTime:
		return func(r *domain.RawRecord) float64 { return r.ScanTime }, nil
	case domain.ColumnDisplay1:
		return func(r *domain.RawRecord) float64 { return r.Display1 }, nil
	case domain.ColumnLoad1:
		return func(r *domain.RawRecord) float64 { return r.Load1 }, nil
	case domain.ColumnLoad2:
		return func(r *domain.RawRecord) float64 { return r.Load2 }, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownColumn, name)
}

func mutator(name string) (func(*domain.RawRecord, float64), error) {
	switch name {
	case domain.ColumnElapsedTime:
		return func(r *domain.RawRecord, v float64) { r.ElapsedTime = v }, nil
	case domain.ColumnScanTime:
		return func(r *domain.RawRecord, v float64) { r.ScanTime = v }, nil
	case domain.ColumnDisplay1:
		return func(r *domain.RawRecord, v float64) { r.Display1 = v }, nil
	case domain.ColumnLoad1:
		return func(r *domain.RawRecord, v float64) { r.Load1 = v }, nil
	case domain.ColumnLoad2:
		return func(r *domain.RawRecord, v float64) { r.Load2 = v }, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownColumn, name)
}
