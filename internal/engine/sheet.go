// Package engine is the command dispatcher: it owns a cell store, a
// dependency graph, and a formula parser/evaluator, and orchestrates the
// parse -> graph update -> eval -> propagate -> (rollback) sequence for
// one "<cell>=<expr>" command at a time.
package engine

import (
	"strings"

	"github.com/pkg/errors"

	"github.com/arjunmenon/termsheet/internal/cellref"
	"github.com/arjunmenon/termsheet/internal/depgraph"
	"github.com/arjunmenon/termsheet/internal/formula"
	"github.com/arjunmenon/termsheet/internal/gridstore"
	"github.com/arjunmenon/termsheet/internal/status"
)

// Sheet is the dependency-tracked evaluation core for a fixed-size grid.
// It is not safe for concurrent use; callers running it behind a driver
// that fans out across goroutines must serialize commands themselves.
type Sheet struct {
	store  *gridstore.Store
	graph  *depgraph.Graph
	parser *formula.Parser
	eval   *formula.Evaluator
}

// New allocates a rows x cols sheet, every cell defaulting to Integer(0).
// Both dimensions must be in [1, cellref.MaxDim].
func New(rows, cols int32) (*Sheet, error) {
	if rows < 1 || rows > cellref.MaxDim {
		return nil, errors.Errorf("engine: rows %d out of range [1,%d]", rows, cellref.MaxDim)
	}
	if cols < 1 || cols > cellref.MaxDim {
		return nil, errors.Errorf("engine: cols %d out of range [1,%d]", cols, cellref.MaxDim)
	}
	store := gridstore.New(rows, cols)
	return &Sheet{
		store:  store,
		graph:  depgraph.New(cols),
		parser: formula.NewParser(rows, cols),
		eval:   formula.NewEvaluator(store),
	}, nil
}

// Rows and Cols report the sheet's fixed dimensions.
func (s *Sheet) Rows() int32 { return s.store.Rows() }
func (s *Sheet) Cols() int32 { return s.store.Cols() }

// Value returns the current value at a 0-based (row, col).
func (s *Sheet) Value(row, col int32) gridstore.Value {
	return s.store.Get(row, col)
}

// SetSleeper overrides the wall-clock sleeper used by SLEEP formulas, for
// tests that must not actually block.
func (s *Sheet) SetSleeper(sl formula.Sleeper) {
	s.parser.Sleeper = sl
	s.eval.Sleeper = sl
}

// Submit accepts one "<cell>=<expr>" command and returns its outcome.
// On anything but Ok, the sheet is byte-identical to its pre-command
// state.
func (s *Sheet) Submit(cmd string) status.Status {
	cmd = strings.TrimSpace(cmd)
	eq := strings.IndexByte(cmd, '=')
	if eq < 0 {
		return status.Unrecognized
	}
	left, right := cmd[:eq], cmd[eq+1:]

	row, col, ok := cellref.ParseReference(left, s.Rows(), s.Cols())
	if !ok {
		return status.InvalidCell
	}
	target := s.store.Key(row, col)

	oldMeta, hadMeta := s.store.MetaKey(target)
	oldValue := s.store.GetKey(target)
	oldParents := singleParentsOf(oldMeta)
	if !hadMeta {
		oldParents = nil
	}
	snap := s.graph.SnapshotFor(target, oldParents)

	if hadMeta {
		if oldMeta.Opcode.IsRangeAggregate() {
			s.graph.RemoveRangeEdgeForChild(target)
		} else {
			s.graph.RemoveAllParentsOf(target, oldParents...)
		}
	}

	result, st := s.parser.Parse(right)
	if st != status.Ok {
		s.graph.Restore(target, snap)
		return st
	}

	if result.Constant {
		s.store.DropMetaKey(target)
		s.store.SetKey(target, result.Value)
	} else {
		s.store.SetMetaKey(target, result.Meta)
		if result.Meta.Opcode.IsRangeAggregate() {
			start, end := rangeCorners(result.Meta)
			s.graph.AddRangeEdge(start, end, target)
		} else {
			for _, p := range result.Parents {
				s.graph.AddSingleEdge(p, target)
			}
		}
		s.store.SetKey(target, s.eval.Evaluate(result.Meta))
	}

	if s.propagate(target) {
		s.rollback(target, oldMeta, hadMeta, oldValue, result, snap)
		s.propagate(target)
		return status.CircularRef
	}

	return status.Ok
}

// rollback undoes the edges and metadata a failed command installed and
// restores the cell's pre-command snapshot.
func (s *Sheet) rollback(target cellref.Key, oldMeta gridstore.Metadata, hadMeta bool, oldValue gridstore.Value, result formula.Result, snap depgraph.Snapshot) {
	if !result.Constant {
		if result.Meta.Opcode.IsRangeAggregate() {
			s.graph.RemoveRangeEdgeForChild(target)
		} else {
			for _, p := range result.Parents {
				s.graph.RemoveSingleEdge(p, target)
			}
		}
	}
	if hadMeta {
		s.store.SetMetaKey(target, oldMeta)
	} else {
		s.store.DropMetaKey(target)
	}
	s.store.SetKey(target, oldValue)
	s.graph.Restore(target, snap)
}
