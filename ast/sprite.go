package ast

import (
	"fmt"
	"strings"

	"nmlc/report"
)

// SpriteElement is one element of a sprite sequence: a real sprite, a recolour
// sprite or the usage of a template.
type SpriteElement interface {
	Position() *report.TextPosition
	String() string
}

// RealSprite is a single piece of raw sprite data.  It accounts for exactly
// one sprite in its sequence and may carry labels naming its offset.
type RealSprite struct {
	Labels []*Identifier
	Params []Expr
	Pos    *report.TextPosition
}

func (rs *RealSprite) Position() *report.TextPosition {
	return rs.Pos
}

func (rs *RealSprite) String() string {
	return labelPrefix(rs.Labels) + "[" + joinExprs(rs.Params) + "]"
}

// RecolourSprite is a colour remapping table.  Like a real sprite, it accounts
// for exactly one sprite in its sequence.
type RecolourSprite struct {
	Labels  []*Identifier
	Mapping []Expr
	Pos     *report.TextPosition
}

func (rs *RecolourSprite) Position() *report.TextPosition {
	return rs.Pos
}

func (rs *RecolourSprite) String() string {
	return labelPrefix(rs.Labels) + "recolour_sprite {" + joinExprs(rs.Mapping) + "}"
}

// TemplateUsage expands a previously declared template in place.  The usage
// itself may carry a label naming the offset of the first expanded sprite.
type TemplateUsage struct {
	Name  *Identifier
	Args  []Expr
	Label *Identifier
	Pos   *report.TextPosition
}

func (tu *TemplateUsage) Position() *report.TextPosition {
	return tu.Pos
}

func (tu *TemplateUsage) String() string {
	var prefix string
	if tu.Label != nil {
		prefix = tu.Label.Value + ": "
	}

	return fmt.Sprintf("%s%s(%s)", prefix, tu.Name.Value, joinExprs(tu.Args))
}

func labelPrefix(labels []*Identifier) string {
	if len(labels) == 0 {
		return ""
	}

	names := make([]string, len(labels))
	for i, lbl := range labels {
		names[i] = lbl.Value
	}

	return strings.Join(names, ": ") + ": "
}
