package spriteblock

import (
	"sort"

	"nmlc/ast"
	"nmlc/report"
)

// LabelTable maps label names to the absolute offset of the sprite they name
// within the sequence that owns them.
type LabelTable map[string]int

// Names returns the label names ordered by offset and then by name.
func (lt LabelTable) Names() []string {
	names := make([]string, 0, len(lt))
	for name := range lt {
		names = append(names, name)
	}

	sort.Slice(names, func(i, j int) bool {
		if lt[names[i]] != lt[names[j]] {
			return lt[names[i]] < lt[names[j]]
		}

		return names[i] < names[j]
	})

	return names
}

// labelScope is a label table under construction.  It remembers where every
// label was defined for duplicate label errors.
type labelScope struct {
	table LabelTable
	defs  map[string]*report.TextPosition
}

func newLabelScope() *labelScope {
	return &labelScope{
		table: make(LabelTable),
		defs:  make(map[string]*report.TextPosition),
	}
}

// clone returns a copy of the scope that can be extended without affecting
// the original.
func (ls *labelScope) clone() *labelScope {
	cl := &labelScope{
		table: make(LabelTable, len(ls.table)),
		defs:  make(map[string]*report.TextPosition, len(ls.defs)),
	}

	for name, offset := range ls.table {
		cl.table[name] = offset
	}
	for name, pos := range ls.defs {
		cl.defs[name] = pos
	}

	return cl
}

// add defines a label at the given offset.
func (ls *labelScope) add(name string, offset int, pos *report.TextPosition) error {
	if prev, ok := ls.defs[name]; ok {
		return report.RaiseDuplicate(pos, prev, "Duplicate label encountered; '%s' already exists.", name)
	}

	ls.table[name] = offset
	ls.defs[name] = pos
	return nil
}

// ResolveLabels computes the label table and the total number of sprites of a
// sprite sequence.  Every element's own labels are shifted by the number of
// sprites that precede the element.  Template usages are expanded through the
// registry: the referenced template must already be registered.
func ResolveLabels(templates *TemplateRegistry, sprites []ast.SpriteElement) (LabelTable, int, error) {
	scope, count, err := resolveScope(templates, sprites)
	if err != nil {
		return nil, 0, err
	}

	return scope.table, count, nil
}

func resolveScope(templates *TemplateRegistry, sprites []ast.SpriteElement) (*labelScope, int, error) {
	scope := newLabelScope()
	offset := 0

	for _, sprite := range sprites {
		// labels of the element relative to its own first sprite
		local, count, err := elementLabels(templates, sprite)
		if err != nil {
			return nil, 0, err
		}

		// shift them past all preceding sprites and merge
		for _, name := range local.table.Names() {
			if err := scope.add(name, local.table[name]+offset, local.defs[name]); err != nil {
				return nil, 0, err
			}
		}

		offset += count
	}

	return scope, offset, nil
}

// elementLabels returns the labels of a single element relative to the start
// of the element and the number of sprites the element accounts for.
func elementLabels(templates *TemplateRegistry, sprite ast.SpriteElement) (*labelScope, int, error) {
	switch v := sprite.(type) {
	case *ast.RealSprite:
		scope, err := fixedLabels(v.Labels)
		return scope, 1, err
	case *ast.RecolourSprite:
		scope, err := fixedLabels(v.Labels)
		return scope, 1, err
	case *ast.TemplateUsage:
		tmpl, ok := templates.Lookup(v.Name.Value)
		if !ok {
			return nil, 0, report.Raise(report.KindUnknownReference, v.Name.Pos, "Encountered unknown template identifier: %s", v.Name.Value)
		}

		scope := tmpl.labels.clone()
		count := tmpl.numSprites

		if v.Label != nil {
			if err := scope.add(v.Label.Value, 0, v.Label.Pos); err != nil {
				return nil, 0, err
			}
		}

		return scope, count, nil
	default:
		return nil, 0, report.Raise(report.KindStructural, sprite.Position(), "Unexpected element in sprite list: %s", sprite)
	}
}

// fixedLabels creates the scope of a single sprite: all its labels name the
// sprite itself.
func fixedLabels(labels []*ast.Identifier) (*labelScope, error) {
	scope := newLabelScope()
	for _, lbl := range labels {
		if err := scope.add(lbl.Value, 0, lbl.Pos); err != nil {
			return nil, err
		}
	}

	return scope, nil
}
