// Package depgraph is the dependency graph: single-cell edges kept in a
// sparse children map, range edges kept as an append-only triple list,
// resolved against rectangle containment at traversal time.
package depgraph

import (
	"github.com/arjunmenon/termsheet/internal/cellref"
)

// RangeEdge is one (start, end, child) triple: child depends on every
// cell in the inclusive rectangle [start, end].
type RangeEdge struct {
	Start, End, Child cellref.Key
}

// Graph is the dependency graph for a fixed-size rows x cols sheet. The
// column count is needed to decompose a key back into (row, col) for
// rectangle-containment tests.
type Graph struct {
	cols int32

	children map[cellref.Key]map[cellref.Key]struct{}
	ranges   []RangeEdge
}

// New allocates an empty graph for a rows x cols sheet.
func New(cols int32) *Graph {
	return &Graph{
		cols:     cols,
		children: make(map[cellref.Key]map[cellref.Key]struct{}),
	}
}

// AddSingleEdge records that child depends on parent. Idempotent.
func (g *Graph) AddSingleEdge(parent, child cellref.Key) {
	set, ok := g.children[parent]
	if !ok {
		set = make(map[cellref.Key]struct{})
		g.children[parent] = set
	}
	set[child] = struct{}{}
}

// RemoveSingleEdge undoes AddSingleEdge, deleting the parent's entry
// entirely once its child set becomes empty, so an absent key and a
// present-but-empty key never both mean "no children".
func (g *Graph) RemoveSingleEdge(parent, child cellref.Key) {
	set, ok := g.children[parent]
	if !ok {
		return
	}
	delete(set, child)
	if len(set) == 0 {
		delete(g.children, parent)
	}
}

// AddRangeEdge appends a new range dependency. One entry per
// range-dependent child; a child with two range formulas in its history
// only ever has at most one live entry at a time because
// RemoveRangeEdgeForChild is always called first.
func (g *Graph) AddRangeEdge(start, end, child cellref.Key) {
	g.ranges = append(g.ranges, RangeEdge{Start: start, End: end, Child: child})
}

// RemoveRangeEdgeForChild removes the single range entry whose child
// matches, if any.
func (g *Graph) RemoveRangeEdgeForChild(child cellref.Key) {
	for i, e := range g.ranges {
		if e.Child == child {
			g.ranges = append(g.ranges[:i], g.ranges[i+1:]...)
			return
		}
	}
}

// RemoveAllParentsOf removes child from the child set of every given
// single-edge parent. It does not touch range entries. The caller supplies
// the classification (single-parent keys, or nothing for a range formula
// whose removal goes through RemoveRangeEdgeForChild directly) because the graph package does not
// know about opcodes; see internal/engine, which is the sole caller and
// owns that decision using internal/opcode.
func (g *Graph) RemoveAllParentsOf(child cellref.Key, parents ...cellref.Key) {
	for _, p := range parents {
		g.RemoveSingleEdge(p, child)
	}
}

// directChildren iterates direct single-edge children of parent into dst.
func (g *Graph) directChildren(parent cellref.Key, dst map[cellref.Key]struct{}) {
	for c := range g.children[parent] {
		dst[c] = struct{}{}
	}
}

// inRange reports whether key falls within the inclusive rectangle
// [start, end], decomposed into rows/cols rather than compared linearly.
func (g *Graph) inRange(start, end, key cellref.Key) bool {
	sr, sc := cellref.Unpack(start, g.cols)
	er, ec := cellref.Unpack(end, g.cols)
	pr, pc := cellref.Unpack(key, g.cols)
	return sr <= pr && pr <= er && sc <= pc && pc <= ec
}

// ChildrenOf returns every direct child of parent: single-edge children
// plus any range-dependent child whose range contains parent.
func (g *Graph) ChildrenOf(parent cellref.Key) []cellref.Key {
	seen := make(map[cellref.Key]struct{}, len(g.children[parent]))
	g.directChildren(parent, seen)
	for _, e := range g.ranges {
		if g.inRange(e.Start, e.End, parent) {
			seen[e.Child] = struct{}{}
		}
	}
	out := make([]cellref.Key, 0, len(seen))
	for k := range seen {
		out = append(out, k)
	}
	return out
}

// Snapshot captures enough of a single cell's edge state to restore it
// after a rollback: the parent keys it depended on (single-edge form) and
// its range edge, if any.
type Snapshot struct {
	Parents   []cellref.Key
	HadRange  bool
	RangeEdge RangeEdge
}

// SnapshotFor captures child's current edges without mutating the graph.
func (g *Graph) SnapshotFor(child cellref.Key, parents []cellref.Key) Snapshot {
	snap := Snapshot{Parents: append([]cellref.Key(nil), parents...)}
	for _, e := range g.ranges {
		if e.Child == child {
			snap.HadRange = true
			snap.RangeEdge = e
			break
		}
	}
	return snap
}

// Restore reinstates the edges captured by SnapshotFor, assuming the
// caller has already removed whatever edges the failed command installed.
func (g *Graph) Restore(child cellref.Key, snap Snapshot) {
	for _, p := range snap.Parents {
		g.AddSingleEdge(p, child)
	}
	if snap.HadRange {
		g.ranges = append(g.ranges, snap.RangeEdge)
	}
}
