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

// LayoutParam is a single `name: value` parameter of a layout sprite.
type LayoutParam struct {
	Name  *ast.Identifier
	Value ast.Expr
}

func (lp *LayoutParam) String() string {
	return fmt.Sprintf("%s: %s;", lp.Name.Value, lp.Value)
}

// LayoutSprite is one typed element of a sprite layout (eg. `ground` or
// `building`).
type LayoutSprite struct {
	Type   *ast.Identifier
	Params []*LayoutParam
	Pos    *report.TextPosition
}

// NewLayoutSprite creates a new layout sprite.
func NewLayoutSprite(lsType *ast.Identifier, params []*LayoutParam, pos *report.TextPosition) *LayoutSprite {
	return &LayoutSprite{Type: lsType, Params: params, Pos: pos}
}

// reduceParams reduces every parameter that can be reduced.  Parameters that
// fail to reduce are kept as they are: they may depend on values that are
// only known when the layout is encoded.
func (ls *LayoutSprite) reduceParams(env ast.Env) {
	for _, param := range ls.Params {
		value, err := param.Value.Reduce(env)
		if err != nil {
			continue
		}

		param.Value = value
	}
}

// References returns the parameter values that are sprite group references.
func (ls *LayoutSprite) References() []*ast.SpriteGroupRef {
	var refs []*ast.SpriteGroupRef
	for _, param := range ls.Params {
		if ref, ok := param.Value.(*ast.SpriteGroupRef); ok {
			refs = append(refs, ref)
		}
	}

	return refs
}

// Param returns the value of the parameter with the given name.
func (ls *LayoutSprite) Param(name string) (ast.Expr, bool) {
	for _, param := range ls.Params {
		if param.Name.Value == name {
			return param.Value, true
		}
	}

	return nil, false
}

func (ls *LayoutSprite) String() string {
	params := make([]string, len(ls.Params))
	for i, param := range ls.Params {
		params[i] = param.String()
	}

	return fmt.Sprintf("\t%s {\n\t\t%s\n\t}", ls.Type.Value, strings.Join(params, "\n\t\t"))
}

// -----------------------------------------------------------------------------

// SpriteLayout is a named composition of layout sprites.
type SpriteLayout struct {
	emission

	Name    *ast.Identifier
	Params  []*ast.Identifier
	Sprites []*LayoutSprite
	Pos     *report.TextPosition
}

// NewSpriteLayout creates a new sprite layout.
func NewSpriteLayout(name *ast.Identifier, params []*ast.Identifier, sprites []*LayoutSprite, pos *report.TextPosition) *SpriteLayout {
	return &SpriteLayout{Name: name, Params: params, Sprites: sprites, Pos: pos}
}

// DeclName returns the name of the layout.
func (sl *SpriteLayout) DeclName() *ast.Identifier {
	return sl.Name
}

// DeclKind returns `spritelayout`.
func (sl *SpriteLayout) DeclKind() string {
	return "spritelayout"
}

// AllocatesIDs is true: every used layout gets one action ID per feature.
func (sl *SpriteLayout) AllocatesIDs() bool {
	return true
}

// Position returns the position of the layout declaration.
func (sl *SpriteLayout) Position() *report.TextPosition {
	return sl.Pos
}

// RegisterNames declares the layout in the sprite group namespace.
func (sl *SpriteLayout) RegisterNames(ctx *Context) error {
	return ctx.register(sl)
}

// Validate reduces the parameters of every layout sprite as far as possible.
// Layout parameters are not supported: they are reported and ignored.
func (sl *SpriteLayout) Validate(ctx *Context) error {
	if len(sl.Params) != 0 {
		ctx.rep.Warn("Unsupported", sl.Pos, "spritelayout parameters are not (yet) supported, ignoring.")
	}

	for _, ls := range sl.Sprites {
		ls.reduceParams(ctx)
	}

	sl.markValidated()
	return nil
}

// CollectReferences returns the references of all layout sprites in order.
func (sl *SpriteLayout) CollectReferences() []*ast.SpriteGroupRef {
	var refs []*ast.SpriteGroupRef
	for _, ls := range sl.Sprites {
		refs = append(refs, ls.References()...)
	}

	return refs
}

// ActionList generates the actions of the layout for every feature it is used
// with, in ascending feature order.
func (sl *SpriteLayout) ActionList(ctx *Context) ([]action.Action, error) {
	return sl.emit(ctx, sl, perFeature(func(f feature.Feature) ([]action.Action, error) {
		if ctx.enc.Layouts == nil {
			return nil, fmt.Errorf("no encoder for spritelayout '%s'", sl.Name.Value)
		}

		return ctx.enc.Layouts.LayoutActions(sl, f)
	}))
}

// DebugPrint writes the parameters and layout sprites of the layout.
func (sl *SpriteLayout) DebugPrint(w io.Writer, indent int) {
	fmt.Fprintf(w, "%sSprite layout: %s\n", pad(indent), sl.Name.Value)
	fmt.Fprintf(w, "%sParameters:\n", pad(indent+2))
	for _, param := range sl.Params {
		fmt.Fprintf(w, "%s%s\n", pad(indent+4), param.Value)
	}

	fmt.Fprintf(w, "%sSprites:\n", pad(indent+2))
	for _, ls := range sl.Sprites {
		fmt.Fprintf(w, "%sTile layout sprite of type: %s\n", pad(indent+4), ls.Type.Value)
		for _, param := range ls.Params {
			fmt.Fprintf(w, "%s%s: %s\n", pad(indent+6), param.Name.Value, param.Value)
		}
	}
}

func (sl *SpriteLayout) String() string {
	sprites := make([]string, len(sl.Sprites))
	for i, ls := range sl.Sprites {
		sprites[i] = ls.String()
	}

	return fmt.Sprintf("spritelayout %s {\n%s\n}\n", sl.Name.Value, strings.Join(sprites, "\n"))
}
