package usage

import "nmlc/report"

/*
Reference Cycle Checking
------------------------

Sprite groups may reference other sprite groups, so the reference graph can
contain cycles which would make the generated action chains loop forever.  The
check is a three-color depth-first search:

Every node starts White.  When a node is visited it is colored Grey, all of its
references are visited, and then it is colored Black.  Reaching a Grey node
means that the node is on the current search path: a cycle has been found.
Black nodes have been fully searched and are skipped.

The search is started from every node in declaration order so that the
reported node is deterministic.
*/

// Enumeration of search colors.
const (
	colorWhite = iota
	colorGrey
	colorBlack
)

// CheckCycles checks that the reference graph is acyclic.  The error is raised
// at the declaration of the first node found on a cycle.
func (t *Tracker) CheckCycles() error {
	t.m.Lock()
	defer t.m.Unlock()

	colors := make(map[Node]int, len(t.order))
	for _, n := range t.order {
		if colors[n] == colorWhite {
			if cyc := t.searchFrom(n, colors); cyc != nil {
				name := cyc.DeclName()
				return report.Raise(report.KindSelfInclusion, name.Pos, "%s '%s' references itself", cyc.DeclKind(), name.Value)
			}
		}
	}

	return nil
}

// searchFrom runs the search from a white node.  It returns the node that
// closes a cycle or nil if no cycle is reachable.
func (t *Tracker) searchFrom(n Node, colors map[Node]int) Node {
	colors[n] = colorGrey

	for _, ref := range t.edges[n] {
		switch colors[ref] {
		case colorGrey:
			return ref
		case colorWhite:
			if cyc := t.searchFrom(ref, colors); cyc != nil {
				return cyc
			}
		}
	}

	colors[n] = colorBlack
	return nil
}
