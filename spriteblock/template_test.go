package spriteblock

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"nmlc/ast"
	"nmlc/report"
)

func TestTemplateRegistry_SelfInclusion(t *testing.T) {
	reg := NewTemplateRegistry()
	td := NewTemplateDeclaration(id("loop", 1), nil, []ast.SpriteElement{sprite(2), use("loop", 3)}, at(1))

	cerr := requireKind(t, reg.Register(td), report.KindSelfInclusion)
	require.Equal(t, "Sprite template 'loop' includes itself.", cerr.Message)
	require.Equal(t, 1, cerr.Position.StartLn)

	_, ok := reg.Lookup("loop")
	require.False(t, ok)
}

func TestTemplateRegistry_Duplicate(t *testing.T) {
	reg := NewTemplateRegistry()
	require.NoError(t, reg.Register(NewTemplateDeclaration(id("t", 1), nil, nil, at(1))))

	cerr := requireKind(t, reg.Register(NewTemplateDeclaration(id("t", 8), nil, nil, at(8))), report.KindDuplicateDefinition)
	require.Equal(t, 1, cerr.Original.StartLn)
	require.Equal(t, 8, cerr.Position.StartLn)
	require.Contains(t, cerr.Message, "first definition at test.nml:1:1")
}

func TestTemplateRegistry_DependencyOrder(t *testing.T) {
	a := NewTemplateDeclaration(id("a", 1), nil, []ast.SpriteElement{use("b", 2)}, at(1))
	b := NewTemplateDeclaration(id("b", 5), nil, []ast.SpriteElement{sprite(6)}, at(5))

	t.Run("dependency first", func(t *testing.T) {
		reg := NewTemplateRegistry()
		require.NoError(t, reg.Register(b))
		require.NoError(t, reg.Register(a))
	})

	t.Run("forward reference", func(t *testing.T) {
		reg := NewTemplateRegistry()
		cerr := requireKind(t, reg.Register(a), report.KindUnknownReference)
		require.Equal(t, "Encountered unknown template identifier: b", cerr.Message)
		require.Equal(t, 2, cerr.Position.StartLn)
	})
}

func TestTemplateDeclaration_Declaration(t *testing.T) {
	tu := newTestUnit(t, nil)
	td := NewTemplateDeclaration(id("tmpl", 1), []*ast.Identifier{id("x", 1), id("y", 1)}, []ast.SpriteElement{sprite(2, "a")}, at(1))
	tu.add(t, td)
	tu.finish(t, nil)

	actions, err := td.ActionList(tu.ctx)
	require.NoError(t, err)
	require.Empty(t, actions)
	require.Empty(t, td.CollectReferences())

	registered, ok := tu.ctx.Templates().Lookup("tmpl")
	require.True(t, ok)
	require.Same(t, td, registered)

	require.Equal(t, "template tmpl(x, y) {\n\ta: [0, 0, 8, 8]\n}\n", td.String())

	var buf bytes.Buffer
	td.DebugPrint(&buf, 0)
	require.Equal(t, "Template declaration: tmpl\n  Parameters:\n    x\n    y\n  Sprites:\n    a: [0, 0, 8, 8]\n", buf.String())
}

func TestTemplateDeclaration_DuplicateLabelWithoutUsage(t *testing.T) {
	tu := newTestUnit(t, nil)
	td := NewTemplateDeclaration(id("t", 1), nil, []ast.SpriteElement{sprite(2, "a"), sprite(3, "a")}, at(1))
	tu.add(t, td)

	cerr := requireKind(t, tu.ctx.Validate(), report.KindDuplicateDefinition)
	require.Equal(t, 3, cerr.Position.StartLn)
	require.Equal(t, 2, cerr.Original.StartLn)

	_, ok := tu.ctx.Templates().Lookup("t")
	require.False(t, ok)
}

func TestTemplateDeclaration_DuplicateLabelThroughUsage(t *testing.T) {
	reg := NewTemplateRegistry()
	require.NoError(t, reg.Register(NewTemplateDeclaration(id("inner", 1), nil, []ast.SpriteElement{sprite(2, "a")}, at(1))))

	outer := NewTemplateDeclaration(id("outer", 3), nil, []ast.SpriteElement{sprite(4, "a"), use("inner", 5)}, at(3))
	requireKind(t, reg.Register(outer), report.KindDuplicateDefinition)
}

func TestTemplateDeclaration_LabelsResolvedOnce(t *testing.T) {
	tu := newTestUnit(t, nil)

	// every template uses the previous one twice: the expanded sprite count
	// doubles per level while registration stays linear
	const depth = 40
	prev := NewTemplateDeclaration(id("t0", 1), nil, []ast.SpriteElement{sprite(1)}, at(1))
	tu.add(t, prev)
	for i := 1; i <= depth; i++ {
		name := prev.Name.Value
		next := NewTemplateDeclaration(id(fmt.Sprintf("t%d", i), i+1), nil, []ast.SpriteElement{use(name, i+1), use(name, i+1)}, at(i+1))
		tu.add(t, next)
		prev = next
	}

	set := newSet(t, tu.ctx, "s", 100, use(prev.Name.Value, 101), sprite(102, "after"))
	tu.add(t, set)
	require.NoError(t, tu.ctx.Validate())

	_, count, err := prev.Labels(tu.ctx)
	require.NoError(t, err)
	require.Equal(t, 1<<depth, count)
	require.Equal(t, 1<<depth+1, set.NumSprites)
	require.Equal(t, LabelTable{"after": 1 << depth}, set.Labels)
}

func TestTemplateDeclaration_LabelsBeforeRegistration(t *testing.T) {
	tu := newTestUnit(t, nil)
	td := NewTemplateDeclaration(id("t", 1), nil, []ast.SpriteElement{sprite(2)}, at(1))

	_, _, err := td.Labels(tu.ctx)
	require.Error(t, err)
}
