package spriteblock

import (
	"fmt"
	"io"
	"strings"
	"sync/atomic"

	"nmlc/action"
	"nmlc/ast"
	"nmlc/feature"
	"nmlc/report"
)

// SpriteSet is a named sequence of real sprites, optionally loaded from a
// graphics file.  A sprite set never references other declarations.
type SpriteSet struct {
	emission

	Name    *ast.Identifier
	File    *ast.StringLiteral
	Sprites []ast.SpriteElement
	Pos     *report.TextPosition

	// Labels maps the labels of the set to sprite offsets; NumSprites is the
	// number of sprites in the set.  Both are computed during validation.
	Labels     LabelTable
	NumSprites int

	// blockNumber is assigned by the sprite set sink; it is -1 until then.
	blockNumber atomic.Int64
}

// NewSpriteSet creates a sprite set from the parameters of its declaration:
// the name and an optional graphics file.  The file parameter is reduced in
// env and must be a string literal.
func NewSpriteSet(env ast.Env, params []ast.Expr, sprites []ast.SpriteElement, pos *report.TextPosition) (*SpriteSet, error) {
	if len(params) < 1 || len(params) > 2 {
		return nil, report.Raise(report.KindStructural, pos, "Spriteset requires 1 or 2 parameters, encountered %d", len(params))
	}

	name, ok := params[0].(*ast.Identifier)
	if !ok {
		return nil, report.Raise(report.KindStructural, params[0].Position(), "Spriteset parameter 1 'name' should be an identifier")
	}

	ss := &SpriteSet{Name: name, Sprites: sprites, Pos: pos}
	ss.blockNumber.Store(-1)

	if len(params) == 2 {
		file, err := params[1].Reduce(env)
		if err != nil {
			return nil, err
		}

		lit, ok := file.(*ast.StringLiteral)
		if !ok {
			return nil, report.Raise(report.KindStructural, params[1].Position(), "Spriteset-block parameter 2 'file' must be a string literal")
		}

		ss.File = lit
	}

	return ss, nil
}

// DeclName returns the name of the set.
func (ss *SpriteSet) DeclName() *ast.Identifier {
	return ss.Name
}

// DeclKind returns `spriteset`.
func (ss *SpriteSet) DeclKind() string {
	return "spriteset"
}

// Sprite sets are addressed by block number, not by action ID.
func (ss *SpriteSet) AllocatesIDs() bool {
	return false
}

// Position returns the position of the set declaration.
func (ss *SpriteSet) Position() *report.TextPosition {
	return ss.Pos
}

// RegisterNames declares the set in the sprite group namespace.
func (ss *SpriteSet) RegisterNames(ctx *Context) error {
	return ctx.register(ss)
}

// Validate computes the label table of the set.
func (ss *SpriteSet) Validate(ctx *Context) error {
	labels, count, err := ResolveLabels(ctx.templates, ss.Sprites)
	if err != nil {
		return err
	}

	ss.Labels = labels
	ss.NumSprites = count
	ss.markValidated()
	return nil
}

// CollectReferences is always empty: sets only contain sprites.
func (ss *SpriteSet) CollectReferences() []*ast.SpriteGroupRef {
	return nil
}

// ActionList hands the set to the sprite set sink the first time it is called
// for a used set.  The real sprites are emitted by the sink, so the set itself
// never produces actions.
func (ss *SpriteSet) ActionList(ctx *Context) ([]action.Action, error) {
	return ss.emit(ctx, ss, func([]feature.Feature) ([]action.Action, error) {
		if ctx.enc.Sets == nil {
			return nil, nil
		}

		return nil, ctx.enc.Sets.AddSpriteSet(ss)
	})
}

// SetBlockNumber records the block number assigned to the set.
func (ss *SpriteSet) SetBlockNumber(n int) {
	ss.blockNumber.Store(int64(n))
}

// BlockNumber returns the block number assigned to the set.  The boolean is
// false if no number has been assigned yet.
func (ss *SpriteSet) BlockNumber() (int, bool) {
	n := ss.blockNumber.Load()
	return int(n), n >= 0
}

// DebugPrint writes the source file and the sprites of the set.
func (ss *SpriteSet) DebugPrint(w io.Writer, indent int) {
	fmt.Fprintf(w, "%sSprite set: %s\n", pad(indent), ss.Name.Value)

	source := "None"
	if ss.File != nil {
		source = ss.File.Value
	}
	fmt.Fprintf(w, "%sSource:   %s\n", pad(indent+2), source)

	fmt.Fprintf(w, "%sSprites:\n", pad(indent+2))
	for _, sprite := range ss.Sprites {
		fmt.Fprintf(w, "%s%s\n", pad(indent+4), sprite)
	}
}

// String renders the set as script source.
func (ss *SpriteSet) String() string {
	var filename string
	if ss.File != nil {
		filename = ", " + ss.File.String()
	}

	sb := strings.Builder{}
	fmt.Fprintf(&sb, "spriteset(%s%s) {\n", ss.Name.Value, filename)
	for _, sprite := range ss.Sprites {
		fmt.Fprintf(&sb, "\t%s\n", sprite)
	}
	sb.WriteString("}\n")

	return sb.String()
}
