package spriteblock

import (
	"fmt"
	"io"
	"strings"

	"nmlc/action"
	"nmlc/ast"
	"nmlc/config"
	"nmlc/feature"
	"nmlc/report"
	"nmlc/usage"
)

// Declaration is a top level sprite block declaration.
type Declaration interface {
	Position() *report.TextPosition

	// RegisterNames adds the names the declaration defines to the
	// namespaces of the context.
	RegisterNames(ctx *Context) error

	// Validate checks the declaration and resolves everything that can be
	// resolved without knowing which declarations are used.
	Validate(ctx *Context) error

	// CollectReferences returns every reference the declaration makes to
	// other declarations in the sprite group namespace.
	CollectReferences() []*ast.SpriteGroupRef

	// ActionList returns the actions generated for the declaration.  It is
	// only valid once usage has been propagated and always returns the same
	// result.
	ActionList(ctx *Context) ([]action.Action, error)

	// DebugPrint writes a tree representation of the declaration.
	DebugPrint(w io.Writer, indent int)

	String() string
}

// GroupEncoder generates the actions of a sprite group for one feature.
type GroupEncoder interface {
	GroupActions(sg *SpriteGroup, f feature.Feature) ([]action.Action, error)
}

// LayoutEncoder generates the actions of a sprite layout for one feature.
type LayoutEncoder interface {
	LayoutActions(sl *SpriteLayout, f feature.Feature) ([]action.Action, error)
}

// SpriteSetSink receives every used sprite set exactly once.  It is
// responsible for emitting the real sprites of the set and for assigning the
// set its block number.
type SpriteSetSink interface {
	AddSpriteSet(ss *SpriteSet) error
}

// Encoders bundles the collaborators that produce the binary output.
type Encoders struct {
	Groups  GroupEncoder
	Layouts LayoutEncoder
	Sets    SpriteSetSink
}

// -----------------------------------------------------------------------------

// Context is the state of one compilation unit: its constants, template
// registry, sprite group namespace and usage tracker.  It implements ast.Env
// so that expressions can be reduced in it.
type Context struct {
	consts    ast.Constants
	templates *TemplateRegistry
	usage     *usage.Tracker
	rep       *report.Reporter
	enc       Encoders

	decls []Declaration
}

// NewContext creates the context for a new compilation unit.
func NewContext(prof *config.Profile, rep *report.Reporter, consts ast.Constants, enc Encoders) *Context {
	if consts == nil {
		consts = ast.Constants{}
	}

	return &Context{
		consts:    consts,
		templates: NewTemplateRegistry(),
		usage:     usage.NewTracker(rep, prof.WarnUnused, prof.MaxIDs),
		rep:       rep,
		enc:       enc,
	}
}

// LookupConstant retrieves a named constant of the compilation unit.
func (ctx *Context) LookupConstant(name string) (ast.Expr, bool) {
	expr, ok := ctx.consts[name]
	return expr, ok
}

// IsSpriteGroup reports whether name is declared in the sprite group
// namespace.
func (ctx *Context) IsSpriteGroup(name string) bool {
	_, ok := ctx.usage.Lookup(name)
	return ok
}

// Templates returns the template registry.
func (ctx *Context) Templates() *TemplateRegistry {
	return ctx.templates
}

// Reporter returns the reporter of the compilation unit.
func (ctx *Context) Reporter() *report.Reporter {
	return ctx.rep
}

// Declarations returns every added declaration in source order.
func (ctx *Context) Declarations() []Declaration {
	return ctx.decls
}

// -----------------------------------------------------------------------------

// Add adds a declaration to the compilation unit and registers its names.
// Declarations must be added in source order.
func (ctx *Context) Add(decl Declaration) error {
	if err := decl.RegisterNames(ctx); err != nil {
		return err
	}

	ctx.decls = append(ctx.decls, decl)
	return nil
}

// Validate validates every declaration in source order.
func (ctx *Context) Validate() error {
	for _, decl := range ctx.decls {
		if err := decl.Validate(ctx); err != nil {
			return err
		}
	}

	return nil
}

// Link builds the reference graph from the references collected from every
// declaration and checks it for cycles.
func (ctx *Context) Link() error {
	for _, decl := range ctx.decls {
		// templates are not part of the sprite group namespace
		from, ok := decl.(usage.Node)
		if !ok {
			continue
		}

		for _, ref := range decl.CollectReferences() {
			target, err := ctx.Resolve(ref)
			if err != nil {
				return err
			}

			// layouts can be used directly but never referenced
			switch target.(type) {
			case *SpriteSet, *SpriteGroup:
			default:
				return report.Raise(
					report.KindReferenceKind,
					ref.Pos,
					"'%s' is a %s: only spritesets and spritegroups can be referenced here",
					ref.Name.Value,
					target.(usage.Node).DeclKind(),
				)
			}

			if err := ctx.usage.Link(from, target.(usage.Node)); err != nil {
				return err
			}
		}
	}

	// groups may reference groups so the graph has to be checked
	return ctx.usage.CheckCycles()
}

// Use marks the declaration with the given name as used directly with a
// feature.  This is how the blocks that consume sprite groups (items,
// switches, ...) enter the reference graph.
func (ctx *Context) Use(name *ast.Identifier, f feature.Feature) error {
	if !f.Valid() {
		return report.Raise(report.KindStructural, name.Pos, "Unknown feature: %s", f)
	}

	n, ok := ctx.usage.Lookup(name.Value)
	if !ok {
		return report.Raise(report.KindUnknownReference, name.Pos, "Unknown spritegroup '%s'", name.Value)
	}

	return ctx.usage.Use(n, f)
}

// Propagate computes which declarations are used and with which features.
// It must be called once after every root has been marked used.
func (ctx *Context) Propagate() error {
	return ctx.usage.Propagate()
}

// PrepareOutput decides whether output is generated for decl.  Declarations
// outside the sprite group namespace never produce output of their own and
// are always prepared.
func (ctx *Context) PrepareOutput(decl Declaration) (bool, error) {
	n, ok := decl.(usage.Node)
	if !ok {
		return true, nil
	}

	return ctx.usage.PrepareOutput(n)
}

// -----------------------------------------------------------------------------

// Resolve finds the declaration a reference points to.
func (ctx *Context) Resolve(ref *ast.SpriteGroupRef) (Declaration, error) {
	n, ok := ctx.usage.Lookup(ref.Name.Value)
	if !ok {
		return nil, report.Raise(report.KindUnknownReference, ref.Pos, "Unknown spritegroup '%s'", ref.Name.Value)
	}

	decl, ok := n.(Declaration)
	if !ok {
		return nil, fmt.Errorf("spritegroup '%s' is not a declaration", ref.Name.Value)
	}

	return decl, nil
}

// Features returns the features decl is used with in ascending order.
func (ctx *Context) Features(decl Declaration) []feature.Feature {
	if n, ok := decl.(usage.Node); ok {
		return ctx.usage.Features(n)
	}

	return nil
}

// ActionID returns the action ID allocated to decl for feature f.
func (ctx *Context) ActionID(decl Declaration, f feature.Feature) (int, bool) {
	if n, ok := decl.(usage.Node); ok {
		return ctx.usage.ID(n, f)
	}

	return 0, false
}

// DebugPrint writes the tree representation of every declaration.
func (ctx *Context) DebugPrint(w io.Writer) {
	for _, decl := range ctx.decls {
		decl.DebugPrint(w, 0)
	}
}

// -----------------------------------------------------------------------------

// register defines n in the sprite group namespace.
func (ctx *Context) register(n usage.Node) error {
	return ctx.usage.Define(n)
}

func pad(indent int) string {
	return strings.Repeat(" ", indent)
}
