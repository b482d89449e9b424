package engine

import (
	"sort"

	"github.com/arjunmenon/termsheet/internal/cellref"
)

// propagate recomputes every transitive descendant of changed exactly
// once, in dependency order, via Kahn's algorithm restricted to the
// affected set. It reports whether a cycle was detected; on a cycle,
// some nodes in the affected set were never popped (positive in-degree
// forever) and the dispatcher is responsible for rollback.
func (s *Sheet) propagate(changed cellref.Key) bool {
	affected := s.descendantsOf(changed)
	if len(affected) == 0 {
		return false
	}

	inDegree := make(map[cellref.Key]int, len(affected))
	for node := range affected {
		inDegree[node] = 0
	}
	for node := range affected {
		meta, ok := s.store.MetaKey(node)
		if !ok {
			continue
		}
		// count each distinct parent once: ChildrenOf yields node once per
		// parent, so a repeated operand (A1+A1) must not add two in-degrees.
		counted := make(map[cellref.Key]struct{})
		for _, p := range expandedParents(meta, s.store.Cols()) {
			if _, inA := affected[p]; !inA {
				continue
			}
			if _, dup := counted[p]; dup {
				continue
			}
			counted[p] = struct{}{}
			inDegree[node]++
		}
	}

	ready := make([]cellref.Key, 0, len(affected))
	for node, d := range inDegree {
		if d == 0 {
			ready = append(ready, node)
		}
	}
	sort.Slice(ready, func(i, j int) bool { return ready[i] < ready[j] })

	processed := 0
	for len(ready) > 0 {
		n := ready[0]
		ready = ready[1:]

		meta, ok := s.store.MetaKey(n)
		if ok {
			s.store.SetKey(n, s.eval.Evaluate(meta))
		}
		processed++

		newlyReady := false
		for _, c := range s.graph.ChildrenOf(n) {
			if _, inA := affected[c]; !inA {
				continue
			}
			inDegree[c]--
			if inDegree[c] == 0 {
				ready = append(ready, c)
				newlyReady = true
			}
		}
		if newlyReady {
			sort.Slice(ready, func(i, j int) bool { return ready[i] < ready[j] })
		}
	}

	return processed != len(affected)
}

// descendantsOf computes the transitive closure of ChildrenOf starting
// from changed. changed itself is included only when it is reachable from
// itself, i.e. when it sits on a cycle.
func (s *Sheet) descendantsOf(changed cellref.Key) map[cellref.Key]struct{} {
	affected := make(map[cellref.Key]struct{})
	queue := []cellref.Key{changed}
	for len(queue) > 0 {
		k := queue[0]
		queue = queue[1:]
		for _, c := range s.graph.ChildrenOf(k) {
			if _, seen := affected[c]; !seen {
				affected[c] = struct{}{}
				queue = append(queue, c)
			}
		}
	}
	return affected
}
