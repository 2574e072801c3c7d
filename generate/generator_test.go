package generate

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
	"nmlc/spriteblock"
)

// idEncoder encodes every declaration as its feature, action ID and name.
type idEncoder struct {
	ctx *spriteblock.Context

	m     sync.Mutex
	calls int
	sets  []string
}

func (ie *idEncoder) encode(decl spriteblock.Declaration, name string, f feature.Feature) ([]action.Action, error) {
	ie.m.Lock()
	ie.calls++
	ie.m.Unlock()

	actID, ok := ie.ctx.ActionID(decl, f)
	if !ok {
		return nil, fmt.Errorf("no action ID for %s", name)
	}

	return []action.Action{action.Raw(append([]byte{byte(f), byte(actID)}, name...))}, nil
}

func (ie *idEncoder) GroupActions(sg *spriteblock.SpriteGroup, f feature.Feature) ([]action.Action, error) {
	return ie.encode(sg, sg.Name.Value, f)
}

func (ie *idEncoder) LayoutActions(sl *spriteblock.SpriteLayout, f feature.Feature) ([]action.Action, error) {
	return ie.encode(sl, sl.Name.Value, f)
}

func (ie *idEncoder) AddSpriteSet(ss *spriteblock.SpriteSet) error {
	ie.m.Lock()
	defer ie.m.Unlock()

	ie.sets = append(ie.sets, ss.Name.Value)
	return nil
}

func at(line int) *report.TextPosition {
	return report.NewPosition("gen.nml", line, 0, 1)
}

func id(name string, line int) *ast.Identifier {
	return ast.NewIdentifier(name, at(line))
}

// buildUnit declares nSets sprite sets, one group per set and a layout using
// every set, uses every group and the layout, and returns the prepared
// context.
func buildUnit(t *testing.T, prof *config.Profile, nSets int) (*spriteblock.Context, *idEncoder, *report.Reporter) {
	t.Helper()

	rep := report.NewReporter(&bytes.Buffer{}, report.LogLevelSilent)
	enc := &idEncoder{}
	ctx := spriteblock.NewContext(prof, rep, nil, spriteblock.Encoders{Groups: enc, Layouts: enc, Sets: enc})
	enc.ctx = ctx

	var layoutSprites []*spriteblock.LayoutSprite
	for i := 0; i < nSets; i++ {
		line := i * 10
		setName := fmt.Sprintf("set%d", i)

		ss, err := spriteblock.NewSpriteSet(ctx, []ast.Expr{id(setName, line)}, []ast.SpriteElement{
			&ast.RealSprite{Pos: at(line + 1)},
		}, at(line))
		require.NoError(t, err)
		require.NoError(t, ctx.Add(ss))

		group := spriteblock.NewSpriteGroup(id(fmt.Sprintf("group%d", i), line+2), []*spriteblock.SpriteView{
			spriteblock.NewSpriteView(id("loading", line+3), []ast.Expr{id(setName, line+3)}, at(line+3)),
		}, at(line+2))
		require.NoError(t, ctx.Add(group))

		layoutSprites = append(layoutSprites, spriteblock.NewLayoutSprite(id("building", line+4), []*spriteblock.LayoutParam{
			{Name: id("sprite", line+4), Value: id(setName, line+4)},
		}, at(line+4)))
	}

	require.NoError(t, ctx.Add(spriteblock.NewSpriteLayout(id("layout", 1000), nil, layoutSprites, at(1000))))
	require.NoError(t, ctx.Add(spriteblock.NewSpriteGroup(id("orphan", 1001), nil, at(1001))))

	require.NoError(t, ctx.Validate())
	require.NoError(t, ctx.Link())

	for i := 0; i < nSets; i++ {
		f := []feature.Feature{feature.Trains, feature.Houses, feature.Objects}[i%3]
		require.NoError(t, ctx.Use(id(fmt.Sprintf("group%d", i), 2000), f))
	}
	require.NoError(t, ctx.Use(id("layout", 2001), feature.Objects))
	require.NoError(t, ctx.Use(id("layout", 2001), feature.Houses))
	require.NoError(t, ctx.Propagate())

	return ctx, enc, rep
}

func TestGenerator_ParallelMatchesSequential(t *testing.T) {
	seqProf := config.DefaultProfile()
	seqCtx, seqEnc, seqRep := buildUnit(t, seqProf, 12)
	seqActions, err := NewGenerator(seqCtx, seqProf).Generate()
	require.NoError(t, err)

	parProf := config.DefaultProfile()
	parProf.Jobs = 8
	parCtx, parEnc, parRep := buildUnit(t, parProf, 12)
	parActions, err := NewGenerator(parCtx, parProf).Generate()
	require.NoError(t, err)

	require.Equal(t, seqActions, parActions)
	require.Len(t, seqActions, 12+2)
	require.Equal(t, seqEnc.calls, parEnc.calls)
	require.ElementsMatch(t, seqEnc.sets, parEnc.sets)
	require.Len(t, seqEnc.sets, 12)

	require.Len(t, seqRep.Warnings(), 1)
	require.Equal(t, "spritegroup 'orphan' is not referenced, ignoring.", seqRep.Warnings()[0].Message)
	require.Equal(t, seqRep.Warnings()[0].Message, parRep.Warnings()[0].Message)
}

func TestGenerator_LayoutFeaturesAreSorted(t *testing.T) {
	prof := config.DefaultProfile()
	ctx, _, _ := buildUnit(t, prof, 1)

	actions, err := NewGenerator(ctx, prof).Generate()
	require.NoError(t, err)

	// group0 is used with trains; the layout with houses and objects
	require.Equal(t, []action.Action{
		action.Raw(append([]byte{byte(feature.Trains), 0}, "group0"...)),
		action.Raw(append([]byte{byte(feature.Houses), 0}, "layout"...)),
		action.Raw(append([]byte{byte(feature.Objects), 0}, "layout"...)),
	}, actions)
}

func TestGenerator_IsIdempotent(t *testing.T) {
	prof := config.DefaultProfile()
	prof.Jobs = 4
	ctx, enc, rep := buildUnit(t, prof, 5)
	gen := NewGenerator(ctx, prof)

	first, err := gen.Generate()
	require.NoError(t, err)
	calls := enc.calls

	second, err := gen.Generate()
	require.NoError(t, err)

	require.Equal(t, first, second)
	require.Equal(t, calls, enc.calls)
	require.Len(t, enc.sets, 5)
	require.Len(t, rep.Warnings(), 1)
}

func TestGenerator_IDPoolExhausted(t *testing.T) {
	prof := config.DefaultProfile()
	prof.MaxIDs = 1
	ctx, enc, _ := buildUnit(t, prof, 4)

	_, err := NewGenerator(ctx, prof).Generate()
	kind, ok := report.KindOf(err)
	require.True(t, ok)
	require.Equal(t, report.KindCapacity, kind)
	require.Zero(t, enc.calls)
}

func TestGenerator_WriteTo(t *testing.T) {
	prof := config.DefaultProfile()
	ctx, _, _ := buildUnit(t, prof, 1)

	var buf bytes.Buffer
	n, err := NewGenerator(ctx, prof).WriteTo(&buf)
	require.NoError(t, err)
	require.Equal(t, int64(buf.Len()), n)
	require.Equal(t, append(append(append([]byte{byte(feature.Trains), 0}, "group0"...), byte(feature.Houses), 0), "layout"...), buf.Bytes()[:16])
}
