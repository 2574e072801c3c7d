package spriteblock

import (
	"bytes"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"nmlc/action"
	"nmlc/ast"
	"nmlc/config"
	"nmlc/feature"
	"nmlc/report"
)

// fakeEncoder records every encoder call.  It is safe for concurrent use.
type fakeEncoder struct {
	m        sync.Mutex
	calls    map[string]int
	sets     []string
	nextSet  int
	failWith error
}

func newFakeEncoder() *fakeEncoder {
	return &fakeEncoder{calls: make(map[string]int)}
}

func (fe *fakeEncoder) record(name string, f feature.Feature) action.Action {
	fe.m.Lock()
	defer fe.m.Unlock()

	fe.calls[fmt.Sprintf("%s/%s", name, f)]++
	return action.Raw(append([]byte{byte(f)}, name...))
}

func (fe *fakeEncoder) GroupActions(sg *SpriteGroup, f feature.Feature) ([]action.Action, error) {
	if fe.failWith != nil {
		return nil, fe.failWith
	}

	return []action.Action{fe.record(sg.Name.Value, f)}, nil
}

func (fe *fakeEncoder) LayoutActions(sl *SpriteLayout, f feature.Feature) ([]action.Action, error) {
	return []action.Action{fe.record(sl.Name.Value, f)}, nil
}

func (fe *fakeEncoder) AddSpriteSet(ss *SpriteSet) error {
	fe.m.Lock()
	defer fe.m.Unlock()

	fe.sets = append(fe.sets, ss.Name.Value)
	ss.SetBlockNumber(fe.nextSet)
	fe.nextSet++
	return nil
}

func (fe *fakeEncoder) callCount(name string, f feature.Feature) int {
	fe.m.Lock()
	defer fe.m.Unlock()

	return fe.calls[fmt.Sprintf("%s/%s", name, f)]
}

func (fe *fakeEncoder) encoders() Encoders {
	return Encoders{Groups: fe, Layouts: fe, Sets: fe}
}

// -----------------------------------------------------------------------------

func at(line int) *report.TextPosition {
	return report.NewPosition("test.nml", line, 0, 1)
}

func id(name string, line int) *ast.Identifier {
	return ast.NewIdentifier(name, at(line))
}

func num(v int64, line int) *ast.ConstantNumber {
	return &ast.ConstantNumber{Value: v, Pos: at(line)}
}

func str(v string, line int) *ast.StringLiteral {
	return &ast.StringLiteral{Value: v, Pos: at(line)}
}

// sprite creates a real sprite with the given labels.
func sprite(line int, labels ...string) *ast.RealSprite {
	rs := &ast.RealSprite{Params: []ast.Expr{num(0, line), num(0, line), num(8, line), num(8, line)}, Pos: at(line)}
	for _, lbl := range labels {
		rs.Labels = append(rs.Labels, id(lbl, line))
	}

	return rs
}

func use(name string, line int) *ast.TemplateUsage {
	return &ast.TemplateUsage{Name: id(name, line), Pos: at(line)}
}

type testUnit struct {
	ctx *Context
	rep *report.Reporter
	enc *fakeEncoder
}

func newTestUnit(t *testing.T, consts ast.Constants) *testUnit {
	t.Helper()
	rep := report.NewReporter(&bytes.Buffer{}, report.LogLevelSilent)
	enc := newFakeEncoder()
	return &testUnit{
		ctx: NewContext(config.DefaultProfile(), rep, consts, enc.encoders()),
		rep: rep,
		enc: enc,
	}
}

// add adds all declarations and fails the test on error.
func (tu *testUnit) add(t *testing.T, decls ...Declaration) {
	t.Helper()
	for _, decl := range decls {
		require.NoError(t, tu.ctx.Add(decl))
	}
}

// finish validates, links, marks the roots and propagates usage.
func (tu *testUnit) finish(t *testing.T, roots map[string][]feature.Feature) {
	t.Helper()
	require.NoError(t, tu.ctx.Validate())
	require.NoError(t, tu.ctx.Link())
	for name, features := range roots {
		for _, f := range features {
			require.NoError(t, tu.ctx.Use(id(name, 100), f))
		}
	}
	require.NoError(t, tu.ctx.Propagate())
}

func newSet(t *testing.T, env ast.Env, name string, line int, sprites ...ast.SpriteElement) *SpriteSet {
	t.Helper()
	ss, err := NewSpriteSet(env, []ast.Expr{id(name, line)}, sprites, at(line))
	require.NoError(t, err)
	return ss
}

func requireKind(t *testing.T, err error, kind report.ErrorKind) *report.CompileError {
	t.Helper()
	var cerr *report.CompileError
	require.ErrorAs(t, err, &cerr)
	require.Equal(t, kind, cerr.Kind, cerr.Message)
	return cerr
}
