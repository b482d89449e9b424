package engine

import (
	"github.com/arjunmenon/termsheet/internal/cellref"
	"github.com/arjunmenon/termsheet/internal/gridstore"
	"github.com/arjunmenon/termsheet/internal/opcode"
)

// singleParentsOf returns the single-edge parent keys a formula cell's
// metadata records, per the opcode's Rem(): both slots (0), Parent1 only
// (2 -- this also covers Ref and SleepRef, which share Rem()==2 with a
// left-ref arithmetic cell), or Parent2 only (3). Range aggregates have
// no single-edge parents; see rangeCorners.
func singleParentsOf(m gridstore.Metadata) []cellref.Key {
	switch m.Opcode.Rem() {
	case opcode.OffsetBothRefs:
		return []cellref.Key{cellref.Key(m.Parent1), cellref.Key(m.Parent2)}
	case opcode.OffsetLeftRef:
		return []cellref.Key{cellref.Key(m.Parent1)}
	case opcode.OffsetRightRef:
		return []cellref.Key{cellref.Key(m.Parent2)}
	}
	return nil
}

// rangeCorners returns a range aggregate's inclusive corners.
func rangeCorners(m gridstore.Metadata) (start, end cellref.Key) {
	return cellref.Key(m.Parent1), cellref.Key(m.Parent2)
}

// expandedParents returns every cell a formula cell directly reads from:
// its single-edge parents, or every cell in its range for an aggregate.
func expandedParents(m gridstore.Metadata, cols int32) []cellref.Key {
	if m.Opcode.IsRangeAggregate() {
		start, end := rangeCorners(m)
		sr, sc := cellref.Unpack(start, cols)
		er, ec := cellref.Unpack(end, cols)
		out := make([]cellref.Key, 0, (er-sr+1)*(ec-sc+1))
		for r := sr; r <= er; r++ {
			for c := sc; c <= ec; c++ {
				out = append(out, cellref.Pack(r, c, cols))
			}
		}
		return out
	}
	return singleParentsOf(m)
}
