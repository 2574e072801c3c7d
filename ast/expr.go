package ast

import (
	"fmt"
	"strconv"
	"strings"

	"nmlc/report"
)

// Expr is an expression as produced by the parser.  Expressions are opaque to
// the declaration layer until they are reduced.
type Expr interface {
	// Position returns the position of the expression in source text.
	Position() *report.TextPosition

	// Reduce folds the expression as far as possible in the given
	// environment.  It returns an error if the expression refers to
	// something that cannot be resolved at compile time.
	Reduce(env Env) (Expr, error)

	String() string
}

// Env is the environment expressions are reduced in: the named constants and
// the names declared in the sprite group namespace.
type Env interface {
	LookupConstant(name string) (Expr, bool)
	IsSpriteGroup(name string) bool
}

// Constants is an environment holding only named constants.
type Constants map[string]Expr

func (c Constants) LookupConstant(name string) (Expr, bool) {
	expr, ok := c[name]
	return expr, ok
}

func (c Constants) IsSpriteGroup(string) bool {
	return false
}

// expansionEnv is the environment the value of a constant is reduced in.  It
// records the chain of constants currently being expanded.
type expansionEnv struct {
	Env

	name  string
	outer *expansionEnv
}

// expanding reports whether the constant name is already being expanded.
func (ee *expansionEnv) expanding(name string) bool {
	for e := ee; e != nil; e = e.outer {
		if e.name == name {
			return true
		}
	}

	return false
}

// -----------------------------------------------------------------------------

// Identifier is a source-located name.  Two identifiers are equal if their
// values are equal: the position only serves diagnostics.
type Identifier struct {
	Value string
	Pos   *report.TextPosition
}

// NewIdentifier creates a new identifier.
func NewIdentifier(value string, pos *report.TextPosition) *Identifier {
	return &Identifier{Value: value, Pos: pos}
}

func (id *Identifier) Position() *report.TextPosition {
	return id.Pos
}

// Reduce replaces the identifier by the value of the constant it names or by
// a reference to the sprite group it names.  A constant whose value refers
// back to itself, directly or through other constants, is an error.
func (id *Identifier) Reduce(env Env) (Expr, error) {
	if value, ok := env.LookupConstant(id.Value); ok {
		outer, _ := env.(*expansionEnv)
		if outer.expanding(id.Value) {
			return nil, report.Raise(report.KindSelfInclusion, id.Pos, "Constant '%s' refers to itself", id.Value)
		}

		return value.Reduce(&expansionEnv{Env: env, name: id.Value, outer: outer})
	}

	if env.IsSpriteGroup(id.Value) {
		return &SpriteGroupRef{Name: id, Pos: id.Pos}, nil
	}

	return nil, report.Raise(report.KindUnknownReference, id.Pos, "Unrecognized identifier '%s' encountered", id.Value)
}

func (id *Identifier) String() string {
	return id.Value
}

// StringLiteral is a literal string.
type StringLiteral struct {
	Value string
	Pos   *report.TextPosition
}

func (sl *StringLiteral) Position() *report.TextPosition {
	return sl.Pos
}

func (sl *StringLiteral) Reduce(Env) (Expr, error) {
	return sl, nil
}

func (sl *StringLiteral) String() string {
	return strconv.Quote(sl.Value)
}

// ConstantNumber is an integer literal.
type ConstantNumber struct {
	Value int64
	Pos   *report.TextPosition
}

func (cn *ConstantNumber) Position() *report.TextPosition {
	return cn.Pos
}

func (cn *ConstantNumber) Reduce(Env) (Expr, error) {
	return cn, nil
}

func (cn *ConstantNumber) String() string {
	return strconv.FormatInt(cn.Value, 10)
}

// SpriteGroupRef is a resolved reference to a declaration in the sprite group
// namespace: a sprite set, sprite group or sprite layout.
type SpriteGroupRef struct {
	Name *Identifier
	Args []Expr
	Pos  *report.TextPosition
}

func (ref *SpriteGroupRef) Position() *report.TextPosition {
	return ref.Pos
}

func (ref *SpriteGroupRef) Reduce(env Env) (Expr, error) {
	if len(ref.Args) == 0 {
		return ref, nil
	}

	args := make([]Expr, len(ref.Args))
	for i, arg := range ref.Args {
		reduced, err := arg.Reduce(env)
		if err != nil {
			return nil, err
		}

		args[i] = reduced
	}

	return &SpriteGroupRef{Name: ref.Name, Args: args, Pos: ref.Pos}, nil
}

func (ref *SpriteGroupRef) String() string {
	if len(ref.Args) == 0 {
		return ref.Name.Value
	}

	return fmt.Sprintf("%s(%s)", ref.Name.Value, joinExprs(ref.Args))
}

// Enumeration of binary operators.
const (
	OpAdd = iota
	OpSub
	OpMul
)

var opSymbols = map[int]string{
	OpAdd: "+",
	OpSub: "-",
	OpMul: "*",
}

// BinOp is an arithmetic operation on two integer operands.
type BinOp struct {
	Op          int
	Left, Right Expr
	Pos         *report.TextPosition
}

func (bo *BinOp) Position() *report.TextPosition {
	return bo.Pos
}

// Reduce folds the operation if both operands reduce to numbers.  Anything
// else is not a compile-time constant.
func (bo *BinOp) Reduce(env Env) (Expr, error) {
	left, err := bo.Left.Reduce(env)
	if err != nil {
		return nil, err
	}

	right, err := bo.Right.Reduce(env)
	if err != nil {
		return nil, err
	}

	lnum, lok := left.(*ConstantNumber)
	rnum, rok := right.(*ConstantNumber)
	if !lok || !rok {
		return nil, report.Raise(report.KindStructural, bo.Pos, "Binary operator '%s' requires two compile-time constant numbers", opSymbols[bo.Op])
	}

	var value int64
	switch bo.Op {
	case OpAdd:
		value = lnum.Value + rnum.Value
	case OpSub:
		value = lnum.Value - rnum.Value
	case OpMul:
		value = lnum.Value * rnum.Value
	default:
		return nil, fmt.Errorf("unknown binary operator: %d", bo.Op)
	}

	return &ConstantNumber{Value: value, Pos: bo.Pos}, nil
}

func (bo *BinOp) String() string {
	return fmt.Sprintf("(%s %s %s)", bo.Left, opSymbols[bo.Op], bo.Right)
}

func joinExprs(exprs []Expr) string {
	strs := make([]string, len(exprs))
	for i, expr := range exprs {
		strs[i] = expr.String()
	}

	return strings.Join(strs, ", ")
}
