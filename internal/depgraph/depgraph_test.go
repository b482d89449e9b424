package depgraph

import (
	"sort"
	"testing"

	"github.com/arjunmenon/termsheet/internal/cellref"
)

func TestSingleEdgeAddAndChildren(t *testing.T) {
	g := New(5)
	parent := cellref.Pack(0, 0, 5)
	child := cellref.Pack(1, 1, 5)
	g.AddSingleEdge(parent, child)
	got := g.ChildrenOf(parent)
	if len(got) != 1 || got[0] != child {
		t.Fatalf("ChildrenOf(parent) = %v, want [%v]", got, child)
	}
}

func TestSingleEdgeRemovalDropsEmptyEntry(t *testing.T) {
	g := New(5)
	parent := cellref.Pack(0, 0, 5)
	child := cellref.Pack(1, 1, 5)
	g.AddSingleEdge(parent, child)
	g.RemoveSingleEdge(parent, child)
	if _, ok := g.children[parent]; ok {
		t.Fatalf("expected empty child set to be removed from the map")
	}
}

func TestRangeEdgeContainment(t *testing.T) {
	g := New(5)
	start := cellref.Pack(0, 0, 5)
	end := cellref.Pack(2, 0, 5)
	child := cellref.Pack(3, 3, 5)
	g.AddRangeEdge(start, end, child)

	middle := cellref.Pack(1, 0, 5)
	got := g.ChildrenOf(middle)
	if len(got) != 1 || got[0] != child {
		t.Fatalf("ChildrenOf(middle of range) = %v, want [%v]", got, child)
	}

	outside := cellref.Pack(1, 1, 5)
	if got := g.ChildrenOf(outside); len(got) != 0 {
		t.Fatalf("ChildrenOf(outside range) = %v, want none", got)
	}
}

func TestRemoveRangeEdgeForChild(t *testing.T) {
	g := New(5)
	start := cellref.Pack(0, 0, 5)
	end := cellref.Pack(2, 0, 5)
	child := cellref.Pack(3, 3, 5)
	g.AddRangeEdge(start, end, child)
	g.RemoveRangeEdgeForChild(child)
	if len(g.ranges) != 0 {
		t.Fatalf("ranges = %v, want empty after removal", g.ranges)
	}
}

func TestSnapshotRestore(t *testing.T) {
	g := New(5)
	p1 := cellref.Pack(0, 0, 5)
	p2 := cellref.Pack(0, 1, 5)
	child := cellref.Pack(1, 1, 5)
	g.AddSingleEdge(p1, child)
	g.AddSingleEdge(p2, child)

	snap := g.SnapshotFor(child, []cellref.Key{p1, p2})
	g.RemoveAllParentsOf(child, p1, p2)
	if got := g.ChildrenOf(p1); len(got) != 0 {
		t.Fatalf("ChildrenOf(p1) after removal = %v, want none", got)
	}

	g.Restore(child, snap)
	got1 := g.ChildrenOf(p1)
	got2 := g.ChildrenOf(p2)
	sort.Slice(got1, func(i, j int) bool { return got1[i] < got1[j] })
	if len(got1) != 1 || got1[0] != child {
		t.Fatalf("ChildrenOf(p1) after restore = %v, want [%v]", got1, child)
	}
	if len(got2) != 1 || got2[0] != child {
		t.Fatalf("ChildrenOf(p2) after restore = %v, want [%v]", got2, child)
	}
}
