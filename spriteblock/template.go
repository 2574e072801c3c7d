package spriteblock

import (
	"fmt"
	"io"
	"strings"

	"nmlc/action"
	"nmlc/ast"
	"nmlc/report"
)

// TemplateDeclaration is a named, reusable sequence of sprites that can be
// expanded by name inside other sprite sequences.
type TemplateDeclaration struct {
	Name    *ast.Identifier
	Params  []*ast.Identifier
	Sprites []ast.SpriteElement
	Pos     *report.TextPosition

	// labels and numSprites are resolved when the template is registered.
	labels     *labelScope
	numSprites int
}

// NewTemplateDeclaration creates a new template declaration.
func NewTemplateDeclaration(name *ast.Identifier, params []*ast.Identifier, sprites []ast.SpriteElement, pos *report.TextPosition) *TemplateDeclaration {
	return &TemplateDeclaration{Name: name, Params: params, Sprites: sprites, Pos: pos}
}

// Position returns the position of the template declaration.
func (td *TemplateDeclaration) Position() *report.TextPosition {
	return td.Pos
}

// Templates live in their own namespace which is filled during validation.
func (td *TemplateDeclaration) RegisterNames(*Context) error {
	return nil
}

// Validate registers the template.  Templates must be declared after every
// template they use.
func (td *TemplateDeclaration) Validate(ctx *Context) error {
	return ctx.templates.Register(td)
}

// Labels returns the label table and sprite count of the template.  It fails
// if the template has not been registered.
func (td *TemplateDeclaration) Labels(ctx *Context) (LabelTable, int, error) {
	if td.labels == nil {
		return nil, 0, fmt.Errorf("labels requested for unregistered template '%s'", td.Name.Value)
	}

	return td.labels.table, td.numSprites, nil
}

// CollectReferences is always empty: templates are expanded where they are
// used and never reference sprite groups themselves.
func (td *TemplateDeclaration) CollectReferences() []*ast.SpriteGroupRef {
	return nil
}

// ActionList is always empty: templates only produce sprites where they are
// used.
func (td *TemplateDeclaration) ActionList(*Context) ([]action.Action, error) {
	return nil, nil
}

// DebugPrint writes the parameters and sprites of the template.
func (td *TemplateDeclaration) DebugPrint(w io.Writer, indent int) {
	fmt.Fprintf(w, "%sTemplate declaration: %s\n", pad(indent), td.Name.Value)
	fmt.Fprintf(w, "%sParameters:\n", pad(indent+2))
	for _, param := range td.Params {
		fmt.Fprintf(w, "%s%s\n", pad(indent+4), param.Value)
	}

	fmt.Fprintf(w, "%sSprites:\n", pad(indent+2))
	for _, sprite := range td.Sprites {
		fmt.Fprintf(w, "%s%s\n", pad(indent+4), sprite)
	}
}

func (td *TemplateDeclaration) String() string {
	params := make([]string, len(td.Params))
	for i, param := range td.Params {
		params[i] = param.Value
	}

	sb := strings.Builder{}
	fmt.Fprintf(&sb, "template %s(%s) {\n", td.Name.Value, strings.Join(params, ", "))
	for _, sprite := range td.Sprites {
		fmt.Fprintf(&sb, "\t%s\n", sprite)
	}
	sb.WriteString("}\n")

	return sb.String()
}

// -----------------------------------------------------------------------------

// TemplateRegistry is the table of all templates of a compilation unit.  A
// template can only be registered once all the templates it uses have been
// registered, and a registered template is never replaced.  Together these
// rules keep templates acyclic.
type TemplateRegistry struct {
	templates map[string]*TemplateDeclaration
}

// NewTemplateRegistry creates an empty registry.
func NewTemplateRegistry() *TemplateRegistry {
	return &TemplateRegistry{templates: make(map[string]*TemplateDeclaration)}
}

// Register adds a template to the registry.
func (tr *TemplateRegistry) Register(td *TemplateDeclaration) error {
	for _, sprite := range td.Sprites {
		tu, ok := sprite.(*ast.TemplateUsage)
		if !ok {
			continue
		}

		if tu.Name.Value == td.Name.Value {
			return report.Raise(report.KindSelfInclusion, td.Pos, "Sprite template '%s' includes itself.", tu.Name.Value)
		} else if _, ok := tr.templates[tu.Name.Value]; !ok {
			return report.Raise(report.KindUnknownReference, tu.Name.Pos, "Encountered unknown template identifier: %s", tu.Name.Value)
		}
	}

	if prev, ok := tr.templates[td.Name.Value]; ok {
		return report.RaiseDuplicate(
			td.Pos,
			prev.Pos,
			"Template named '%s' is already defined, first definition at %s",
			td.Name.Value,
			prev.Pos,
		)
	}

	// every template the sprites use is registered at this point, so the
	// labels can be resolved once and shared by all usages
	scope, count, err := resolveScope(tr, td.Sprites)
	if err != nil {
		return err
	}

	td.labels = scope
	td.numSprites = count
	tr.templates[td.Name.Value] = td
	return nil
}

// Lookup retrieves a registered template by name.
func (tr *TemplateRegistry) Lookup(name string) (*TemplateDeclaration, bool) {
	td, ok := tr.templates[name]
	return td, ok
}
