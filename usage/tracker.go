package usage

import (
	"errors"
	"sync"

	"nmlc/ast"
	"nmlc/feature"
	"nmlc/report"
)

// Node is a declaration in the sprite group namespace whose usage is tracked.
type Node interface {
	// DeclName returns the name the node is declared under.
	DeclName() *ast.Identifier

	// DeclKind returns a human readable name for the kind of declaration (eg.
	// `spriteset`).  It is used in diagnostics.
	DeclKind() string

	// AllocatesIDs indicates whether the node needs an action ID for every
	// feature it is used with.
	AllocatesIDs() bool
}

// errFrozen is returned when the reference graph is modified after usage has
// been propagated.
var errFrozen = errors.New("reference graph modified after usage propagation")

// Tracker is the usage tracker for one compilation unit.  It owns the sprite
// group namespace, the reference graph between declarations and the set of
// roots: nodes used directly with some feature.  Once the graph is complete,
// Propagate computes which nodes are reachable from the roots and with which
// features.  Afterwards, PrepareOutput decides per node whether output should
// be generated.  The tracker is synchronized so that output can be generated
// concurrently.
type Tracker struct {
	m   sync.Mutex
	rep *report.Reporter

	warnUnused bool
	maxIDs     int

	// lookupTable maps names to the declared nodes; order lists the nodes in
	// declaration order.
	lookupTable map[string]Node
	order       []Node

	// edges holds the outgoing references of every node.  Multiplicity is
	// kept: a node referenced twice has two edges.
	edges map[Node][]Node

	// roots maps every directly used node to the features it is used with.
	roots     map[Node]feature.Set
	rootOrder []Node

	// features holds the propagated feature set of every reachable node.
	features   map[Node]feature.Set
	propagated bool

	// prepared memoizes the outcome of PrepareOutput.
	prepared map[Node]bool

	// ids holds the action IDs allocated for a node per feature; nextID is the
	// next free ID of every feature.
	ids    map[Node]map[feature.Feature]int
	nextID map[feature.Feature]int
}

// NewTracker creates a new usage tracker.  Unused nodes are reported to rep if
// warnUnused is set.  maxIDs is the number of action IDs per feature.
func NewTracker(rep *report.Reporter, warnUnused bool, maxIDs int) *Tracker {
	return &Tracker{
		rep:         rep,
		warnUnused:  warnUnused,
		maxIDs:      maxIDs,
		lookupTable: make(map[string]Node),
		edges:       make(map[Node][]Node),
		roots:       make(map[Node]feature.Set),
		features:    make(map[Node]feature.Set),
		prepared:    make(map[Node]bool),
		ids:         make(map[Node]map[feature.Feature]int),
		nextID:      make(map[feature.Feature]int),
	}
}

// -----------------------------------------------------------------------------

// Define adds a node to the namespace.  It fails if the name is already taken
// by any other node.
func (t *Tracker) Define(n Node) error {
	t.m.Lock()
	defer t.m.Unlock()

	if t.propagated {
		return errFrozen
	}

	name := n.DeclName()
	if prev, ok := t.lookupTable[name.Value]; ok {
		return report.RaiseDuplicate(
			name.Pos,
			prev.DeclName().Pos,
			"Block with name '%s' has already been defined",
			name.Value,
		)
	}

	t.lookupTable[name.Value] = n
	t.order = append(t.order, n)
	return nil
}

// Lookup retrieves the node declared under name.
func (t *Tracker) Lookup(name string) (Node, bool) {
	t.m.Lock()
	defer t.m.Unlock()

	n, ok := t.lookupTable[name]
	return n, ok
}

// Nodes returns all defined nodes in declaration order.
func (t *Tracker) Nodes() []Node {
	t.m.Lock()
	defer t.m.Unlock()

	nodes := make([]Node, len(t.order))
	copy(nodes, t.order)
	return nodes
}

// Link adds a reference edge from one node to another.
func (t *Tracker) Link(from, to Node) error {
	t.m.Lock()
	defer t.m.Unlock()

	if t.propagated {
		return errFrozen
	}

	t.edges[from] = append(t.edges[from], to)
	return nil
}

// References returns the outgoing references of n in the order they were
// linked.
func (t *Tracker) References(n Node) []Node {
	t.m.Lock()
	defer t.m.Unlock()

	refs := make([]Node, len(t.edges[n]))
	copy(refs, t.edges[n])
	return refs
}

// Use marks n as used directly with feature f: n becomes a root of the
// reference graph.
func (t *Tracker) Use(n Node, f feature.Feature) error {
	t.m.Lock()
	defer t.m.Unlock()

	if t.propagated {
		return errFrozen
	}

	if _, ok := t.roots[n]; !ok {
		t.roots[n] = feature.NewSet()
		t.rootOrder = append(t.rootOrder, n)
	}

	t.roots[n].Add(f)
	return nil
}

// -----------------------------------------------------------------------------

// Propagate pushes the features of every root along the reference graph to
// every reachable node.  It must be called exactly once after the graph is
// complete and before any output is prepared.
func (t *Tracker) Propagate() error {
	t.m.Lock()
	defer t.m.Unlock()

	if t.propagated {
		return errors.New("usage propagated more than once")
	}

	for _, root := range t.rootOrder {
		for _, f := range t.roots[root].Sorted() {
			t.propagateFrom(root, f)
		}
	}

	t.propagated = true
	return nil
}

// propagateFrom adds f to n and all nodes reachable from it.  Nodes which
// already carry f are not visited again, so cycles terminate.
func (t *Tracker) propagateFrom(n Node, f feature.Feature) {
	fs, ok := t.features[n]
	if !ok {
		fs = feature.NewSet()
		t.features[n] = fs
	}

	if !fs.Add(f) {
		return
	}

	for _, ref := range t.edges[n] {
		t.propagateFrom(ref, f)
	}
}

// Features returns the features n is used with in ascending order.  It is
// empty for unused nodes.
func (t *Tracker) Features(n Node) []feature.Feature {
	t.m.Lock()
	defer t.m.Unlock()

	if fs, ok := t.features[n]; ok {
		return fs.Sorted()
	}

	return nil
}

// IsUsed reports whether n is reachable from any root.
func (t *Tracker) IsUsed(n Node) bool {
	t.m.Lock()
	defer t.m.Unlock()

	return len(t.features[n]) > 0
}

// PrepareOutput determines whether output should be generated for n.  The
// first call for a node allocates its action IDs if it is used or reports it
// as unused otherwise; later calls return the same answer without any side
// effects.
func (t *Tracker) PrepareOutput(n Node) (bool, error) {
	t.m.Lock()
	defer t.m.Unlock()

	if !t.propagated {
		return false, errors.New("output prepared before usage propagation")
	}

	if used, ok := t.prepared[n]; ok {
		return used, nil
	}

	fs := t.features[n]
	if len(fs) == 0 {
		t.prepared[n] = false

		if t.warnUnused {
			name := n.DeclName()
			t.rep.Warn("Usage", name.Pos, "%s '%s' is not referenced, ignoring.", n.DeclKind(), name.Value)
		}

		return false, nil
	}

	if n.AllocatesIDs() {
		features := fs.Sorted()

		// check every pool first so that a failure leaves no IDs consumed
		for _, f := range features {
			if t.nextID[f] >= t.maxIDs {
				return false, report.Raise(
					report.KindCapacity,
					n.DeclName().Pos,
					"Unable to allocate ID for %s '%s' (%s), try reducing the number of used blocks",
					n.DeclKind(),
					n.DeclName().Value,
					f,
				)
			}
		}

		ids := make(map[feature.Feature]int, len(features))
		for _, f := range features {
			ids[f] = t.nextID[f]
			t.nextID[f]++
		}

		t.ids[n] = ids
	}

	t.prepared[n] = true
	return true, nil
}

// ID returns the action ID allocated for n and feature f.
func (t *Tracker) ID(n Node, f feature.Feature) (int, bool) {
	t.m.Lock()
	defer t.m.Unlock()

	id, ok := t.ids[n][f]
	return id, ok
}
