package spriteblock

import (
	"fmt"
	"sync"
	"sync/atomic"

	"nmlc/action"
	"nmlc/feature"
	"nmlc/usage"
)

// State is the position of a declaration in its lifecycle.
type State int32

// Enumeration of declaration states.  A declaration moves from Unvalidated to
// Validated during the validation pass and from Validated to either Unused or
// Emitted on its first action list request.
const (
	Unvalidated State = iota
	Validated
	Unused
	Emitted
)

var stateNames = map[State]string{
	Unvalidated: "unvalidated",
	Validated:   "validated",
	Unused:      "unused",
	Emitted:     "emitted",
}

func (s State) String() string {
	return stateNames[s]
}

// emission is the lifecycle record shared by all sprite group declarations.
// It memoizes the outcome of action generation so that the encoders run at
// most once per declaration, no matter how often or from how many goroutines
// the action list is requested.
type emission struct {
	state atomic.Int32

	once    sync.Once
	actions []action.Action
	err     error
}

// State returns the current lifecycle state.
func (e *emission) State() State {
	return State(e.state.Load())
}

// markValidated moves the record from Unvalidated to Validated.
func (e *emission) markValidated() {
	e.state.CompareAndSwap(int32(Unvalidated), int32(Validated))
}

// emit runs generate for the node the first time it is called, provided the
// usage tracker deems the node used.  generate receives the features of the
// node in ascending order.  All calls return the same result.
func (e *emission) emit(ctx *Context, n usage.Node, generate func([]feature.Feature) ([]action.Action, error)) ([]action.Action, error) {
	if e.State() == Unvalidated {
		return nil, fmt.Errorf("actions requested for unvalidated %s '%s'", n.DeclKind(), n.DeclName().Value)
	}

	e.once.Do(func() {
		used, err := ctx.usage.PrepareOutput(n)
		if err != nil {
			e.err = err
			return
		}

		if !used {
			e.state.Store(int32(Unused))
			return
		}

		e.actions, e.err = generate(ctx.usage.Features(n))
		if e.err == nil {
			e.state.Store(int32(Emitted))
		}
	})

	return e.actions, e.err
}

// perFeature builds a generate function that calls encode for every feature
// and concatenates the results in feature order.
func perFeature(encode func(feature.Feature) ([]action.Action, error)) func([]feature.Feature) ([]action.Action, error) {
	return func(features []feature.Feature) ([]action.Action, error) {
		var actions []action.Action
		for _, f := range features {
			acts, err := encode(f)
			if err != nil {
				return nil, err
			}

			actions = append(actions, acts...)
		}

		return actions, nil
	}
}
