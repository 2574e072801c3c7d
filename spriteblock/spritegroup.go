package spriteblock

import (
	"fmt"
	"io"
	"strings"

	"nmlc/action"
	"nmlc/ast"
	"nmlc/feature"
	"nmlc/report"
)

// SpriteView is one named variant of a sprite group (eg. `loading` or
// `loaded`): an ordered list of references to sprite sets or groups.
type SpriteView struct {
	Name *ast.Identifier
	Sets []ast.Expr
	Pos  *report.TextPosition
}

// NewSpriteView creates a new sprite view.
func NewSpriteView(name *ast.Identifier, sets []ast.Expr, pos *report.TextPosition) *SpriteView {
	return &SpriteView{Name: name, Sets: sets, Pos: pos}
}

// validate reduces every element of the view.  Every element must reduce to a
// sprite group reference.
func (sv *SpriteView) validate(env ast.Env) error {
	reduced := make([]ast.Expr, len(sv.Sets))
	for i, set := range sv.Sets {
		expr, err := set.Reduce(env)
		if err != nil {
			return err
		}

		if _, ok := expr.(*ast.SpriteGroupRef); !ok {
			return report.Raise(report.KindReferenceKind, set.Position(), "All items in a spritegroup must be spritegroup references")
		}

		reduced[i] = expr
	}

	sv.Sets = reduced
	return nil
}

// References returns the references of a validated view.
func (sv *SpriteView) References() []*ast.SpriteGroupRef {
	refs := make([]*ast.SpriteGroupRef, 0, len(sv.Sets))
	for _, set := range sv.Sets {
		if ref, ok := set.(*ast.SpriteGroupRef); ok {
			refs = append(refs, ref)
		}
	}

	return refs
}

func (sv *SpriteView) String() string {
	sets := make([]string, len(sv.Sets))
	for i, set := range sv.Sets {
		sets[i] = set.String()
	}

	return fmt.Sprintf("%s: [%s];", sv.Name.Value, strings.Join(sets, ", "))
}

// -----------------------------------------------------------------------------

// SpriteGroup is a named collection of sprite views.
type SpriteGroup struct {
	emission

	Name  *ast.Identifier
	Views []*SpriteView
	Pos   *report.TextPosition
}

// NewSpriteGroup creates a new sprite group.
func NewSpriteGroup(name *ast.Identifier, views []*SpriteView, pos *report.TextPosition) *SpriteGroup {
	return &SpriteGroup{Name: name, Views: views, Pos: pos}
}

// DeclName returns the name of the group.
func (sg *SpriteGroup) DeclName() *ast.Identifier {
	return sg.Name
}

// DeclKind returns `spritegroup`.
func (sg *SpriteGroup) DeclKind() string {
	return "spritegroup"
}

// AllocatesIDs is true: every used group gets one action ID per feature.
func (sg *SpriteGroup) AllocatesIDs() bool {
	return true
}

// Position returns the position of the group declaration.
func (sg *SpriteGroup) Position() *report.TextPosition {
	return sg.Pos
}

// RegisterNames declares the group in the sprite group namespace.
func (sg *SpriteGroup) RegisterNames(ctx *Context) error {
	return ctx.register(sg)
}

// Validate validates every view and then checks that no view is defined
// twice.
func (sg *SpriteGroup) Validate(ctx *Context) error {
	for _, view := range sg.Views {
		if err := view.validate(ctx); err != nil {
			return err
		}
	}

	seen := make(map[string]*SpriteView, len(sg.Views))
	for _, view := range sg.Views {
		if prev, ok := seen[view.Name.Value]; ok {
			return report.RaiseDuplicate(view.Pos, prev.Pos, "Sprite view '%s' is defined more than once in spritegroup '%s'", view.Name.Value, sg.Name.Value)
		}

		seen[view.Name.Value] = view
	}

	sg.markValidated()
	return nil
}

// CollectReferences returns the references of all views in order.  A set
// referenced multiple times appears multiple times.
func (sg *SpriteGroup) CollectReferences() []*ast.SpriteGroupRef {
	var refs []*ast.SpriteGroupRef
	for _, view := range sg.Views {
		refs = append(refs, view.References()...)
	}

	return refs
}

// View returns the view with the given name.
func (sg *SpriteGroup) View(name string) (*SpriteView, bool) {
	for _, view := range sg.Views {
		if view.Name.Value == name {
			return view, true
		}
	}

	return nil, false
}

// ActionList generates the actions of the group for every feature it is used
// with, in ascending feature order.
func (sg *SpriteGroup) ActionList(ctx *Context) ([]action.Action, error) {
	return sg.emit(ctx, sg, perFeature(func(f feature.Feature) ([]action.Action, error) {
		if ctx.enc.Groups == nil {
			return nil, fmt.Errorf("no encoder for spritegroup '%s'", sg.Name.Value)
		}

		return ctx.enc.Groups.GroupActions(sg, f)
	}))
}

// DebugPrint writes the views of the group and their sprite sets.
func (sg *SpriteGroup) DebugPrint(w io.Writer, indent int) {
	fmt.Fprintf(w, "%sSprite group: %s\n", pad(indent), sg.Name.Value)
	for _, view := range sg.Views {
		fmt.Fprintf(w, "%sSprite view: %s\n", pad(indent+2), view.Name.Value)
		fmt.Fprintf(w, "%sSprite sets:\n", pad(indent+4))
		for _, set := range view.Sets {
			fmt.Fprintf(w, "%s%s\n", pad(indent+6), set)
		}
	}
}

// String renders the group as script source.
func (sg *SpriteGroup) String() string {
	sb := strings.Builder{}
	fmt.Fprintf(&sb, "spritegroup %s {\n", sg.Name.Value)
	for _, view := range sg.Views {
		fmt.Fprintf(&sb, "\t%s\n", view)
	}
	sb.WriteString("}\n")

	return sb.String()
}
