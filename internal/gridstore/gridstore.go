// Package gridstore is the cell store: a dense value grid plus sparse
// formula metadata, indexed by the packed key from internal/cellref.
package gridstore

import (
	"github.com/arjunmenon/termsheet/internal/cellref"
	"github.com/arjunmenon/termsheet/internal/opcode"
)

// Value is a cell's tagged value: either a signed 32-bit integer or the
// distinguished error marker.
type Value struct {
	Err bool
	N   int32
}

// OK constructs a non-error integer value.
func OK(n int32) Value { return Value{N: n} }

// ErrValue is the distinguished error marker.
var ErrValue = Value{Err: true}

// Metadata describes a formula cell: its opcode and up to two parents.
// When a parent slot is a literal rather than a cell reference (signaled
// by the opcode's arithmetic offset), the slot holds the literal value
// directly rather than a key, avoiding a parallel literal-storage table.
type Metadata struct {
	Opcode  opcode.Code
	Parent1 int32
	Parent2 int32
}

// Store is the cell store for a fixed-size rows x cols sheet.
type Store struct {
	rows, cols int32
	grid       []Value
	meta       map[cellref.Key]Metadata
}

// New allocates a store for a rows x cols sheet, every cell defaulting to
// Integer(0).
func New(rows, cols int32) *Store {
	return &Store{
		rows: rows,
		cols: cols,
		grid: make([]Value, rows*cols),
		meta: make(map[cellref.Key]Metadata),
	}
}

// Rows and Cols report the sheet's fixed dimensions.
func (s *Store) Rows() int32 { return s.rows }
func (s *Store) Cols() int32 { return s.cols }

// Get returns the current value at (row, col).
func (s *Store) Get(row, col int32) Value {
	return s.grid[cellref.Pack(row, col, s.cols)]
}

// GetKey is Get addressed directly by packed key.
func (s *Store) GetKey(k cellref.Key) Value {
	return s.grid[k]
}

// Set writes the grid entry at (row, col); it never touches metadata.
func (s *Store) Set(row, col int32, v Value) {
	s.grid[cellref.Pack(row, col, s.cols)] = v
}

// SetKey is Set addressed directly by packed key.
func (s *Store) SetKey(k cellref.Key, v Value) {
	s.grid[k] = v
}

// Meta returns the metadata record for (row, col) and whether one exists.
// Pure-constant cells have no entry.
func (s *Store) Meta(row, col int32) (Metadata, bool) {
	m, ok := s.meta[cellref.Pack(row, col, s.cols)]
	return m, ok
}

// MetaKey is Meta addressed directly by packed key.
func (s *Store) MetaKey(k cellref.Key) (Metadata, bool) {
	m, ok := s.meta[k]
	return m, ok
}

// SetMeta installs or replaces the metadata record for (row, col).
func (s *Store) SetMeta(row, col int32, m Metadata) {
	s.meta[cellref.Pack(row, col, s.cols)] = m
}

// SetMetaKey is SetMeta addressed directly by packed key.
func (s *Store) SetMetaKey(k cellref.Key, m Metadata) {
	s.meta[k] = m
}

// DropMeta removes the metadata record for (row, col), if any, turning
// the cell into a pure constant.
func (s *Store) DropMeta(row, col int32) {
	delete(s.meta, cellref.Pack(row, col, s.cols))
}

// DropMetaKey is DropMeta addressed directly by packed key.
func (s *Store) DropMetaKey(k cellref.Key) {
	delete(s.meta, k)
}

// Key packs (row, col) using this store's column count.
func (s *Store) Key(row, col int32) cellref.Key {
	return cellref.Pack(row, col, s.cols)
}

// RowCol unpacks a key using this store's column count.
func (s *Store) RowCol(k cellref.Key) (row, col int32) {
	return cellref.Unpack(k, s.cols)
}
