package generate

import (
	"io"
	"sync"

	"nmlc/action"
	"nmlc/config"
	"nmlc/report"
	"nmlc/spriteblock"
)

// Generator produces the action stream of a compilation unit whose
// declarations have been validated, linked and whose usage has been
// propagated.
type Generator struct {
	ctx  *spriteblock.Context
	rep  *report.Reporter
	jobs int
}

// NewGenerator creates a new generator for the given context.
func NewGenerator(ctx *spriteblock.Context, prof *config.Profile) *Generator {
	jobs := prof.Jobs
	if jobs < 1 {
		jobs = 1
	}

	return &Generator{ctx: ctx, rep: ctx.Reporter(), jobs: jobs}
}

// Generate returns the actions of every declaration in declaration order.
// Output is prepared for all declarations first, in order, so that action IDs
// and unused warnings do not depend on scheduling.  The actions themselves are
// then generated, concurrently if the generator has more than one job.
func (g *Generator) Generate() ([]action.Action, error) {
	decls := g.ctx.Declarations()

	g.rep.BeginPhase("Preparing")
	for _, decl := range decls {
		if _, err := g.ctx.PrepareOutput(decl); err != nil {
			g.rep.EndPhase(false)
			return nil, err
		}
	}
	g.rep.EndPhase(true)

	g.rep.BeginPhase("Generating")
	results := make([][]action.Action, len(decls))
	errs := make([]error, len(decls))

	if g.jobs == 1 {
		for i, decl := range decls {
			results[i], errs[i] = decl.ActionList(g.ctx)
		}
	} else {
		g.generateConcurrently(decls, results, errs)
	}

	// report the first error in declaration order, not the first to occur
	var actions []action.Action
	for i, err := range errs {
		if err != nil {
			g.rep.EndPhase(false)
			return nil, err
		}

		actions = append(actions, results[i]...)
	}
	g.rep.EndPhase(true)

	return actions, nil
}

// generateConcurrently generates the action lists of all declarations using
// a fixed number of workers.  Every result is stored at the index of its
// declaration.
func (g *Generator) generateConcurrently(decls []spriteblock.Declaration, results [][]action.Action, errs []error) {
	indices := make(chan int)
	wg := &sync.WaitGroup{}

	for w := 0; w < g.jobs; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			for i := range indices {
				results[i], errs[i] = decls[i].ActionList(g.ctx)
			}
		}()
	}

	for i := range decls {
		indices <- i
	}
	close(indices)

	wg.Wait()
}

// WriteTo generates the actions and writes them to w.
func (g *Generator) WriteTo(w io.Writer) (int64, error) {
	actions, err := g.Generate()
	if err != nil {
		return 0, err
	}

	if err := action.WriteAll(w, actions); err != nil {
		return 0, err
	}

	return int64(action.TotalSize(actions)), nil
}
