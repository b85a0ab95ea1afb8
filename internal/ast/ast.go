// Package ast defines the syntax tree the parser builds and the
// analyzer annotates in place: Items, Statements, Expressions, Patterns
// and Type annotations, following the teacher's node-per-struct shape
// with a mutate-after-construction Type field on every expression.
package ast

import "github.com/gmofishsauce/emberc/internal/token"

// File is the root of one compiled translation unit: a flat list of
// top-level items.
type File struct {
	Items []Item
}

// Item is a top-level declaration: a function, a struct, or a const.
type Item interface {
	itemNode()
	Position() token.Position
}

// Function declares a callable with typed parameters and a body block
// whose trailing expression (if any) is the return value.
type Function struct {
	Name       string
	Params     []Param
	ReturnType TypeNode // nil means the unit type "()"
	Body       *BlockExpr
	Pos        token.Position
}

func (*Function) itemNode()                 {}
func (f *Function) Position() token.Position { return f.Pos }

// Param is one function parameter.
type Param struct {
	Name string
	Type TypeNode
	Pos  token.Position
}

// StructShape distinguishes the three struct declaration forms.
type StructShape int

const (
	NamedStruct StructShape = iota
	TupleStructShape
	UnitStruct
)

// StructDecl declares a struct type: named fields, positional tuple
// fields, or a unit struct with none.
type StructDecl struct {
	Name       string
	Shape      StructShape
	Fields     []FieldDecl // NamedStruct
	TupleTypes []TypeNode  // TupleStructShape
	Pos        token.Position
}

func (*StructDecl) itemNode()                 {}
func (s *StructDecl) Position() token.Position { return s.Pos }

// FieldDecl is one named field of a NamedStruct.
type FieldDecl struct {
	Name string
	Type TypeNode
	Pos  token.Position
}

// ConstItem declares a compile-time constant with a mandatory type
// annotation and initializer.
type ConstItem struct {
	Name  string
	Type  TypeNode
	Value Expr
	Pos   token.Position
}

func (*ConstItem) itemNode()                 {}
func (c *ConstItem) Position() token.Position { return c.Pos }

// Stmt is a statement inside a block: a let-binding, an expression
// (with or without a trailing semicolon), or a bare semicolon.
type Stmt interface {
	stmtNode()
	Position() token.Position
}

// LetStmt binds a pattern to an optional initializer, with an optional
// type annotation to check the initializer against.
type LetStmt struct {
	Pattern Pattern
	Type    TypeNode // nil if elided
	Value   Expr     // nil if uninitialized
	Pos     token.Position
}

func (*LetStmt) stmtNode()                  {}
func (l *LetStmt) Position() token.Position { return l.Pos }

// ExprStmt wraps an expression used as a statement. HasSemi distinguishes
// "expr;" (discards the value, types as unit) from a final "expr" with no
// semicolon (the block's trailing value).
type ExprStmt struct {
	Expr    Expr
	HasSemi bool
	Pos     token.Position
}

func (*ExprStmt) stmtNode()                  {}
func (e *ExprStmt) Position() token.Position { return e.Pos }

// EmptyStmt is a bare ";" with no expression.
type EmptyStmt struct {
	Pos token.Position
}

func (*EmptyStmt) stmtNode()                  {}
func (e *EmptyStmt) Position() token.Position { return e.Pos }

// Expr is any expression node. Every expression carries a Type slot
// the analyzer fills in during Pass 3 (expression typing) via SetType,
// and a Scope back-pointer (opaque here to avoid an import cycle with
// package sema, which defines the concrete scope type) the analyzer
// fills in during the same pass via SetScope.
type Expr interface {
	exprNode()
	Position() token.Position
	GetType() interface{}
	SetType(interface{})
	GetScope() interface{}
	SetScope(interface{})
}

// base is embedded in every expression node to provide the shared
// Type/Scope mutator fields, the same "reserve a field, mutate after
// construction" technique the teacher's sem/ast.go uses.
type base struct {
	Pos   token.Position
	Type  interface{} // *types.Type, set by the analyzer
	Scope interface{} // *sema.Scope, set by the analyzer
}

func (b *base) Position() token.Position  { return b.Pos }
func (b *base) GetType() interface{}      { return b.Type }
func (b *base) SetType(t interface{})     { b.Type = t }
func (b *base) GetScope() interface{}     { return b.Scope }
func (b *base) SetScope(s interface{})    { b.Scope = s }

// Identifier is a bare name reference, resolved against the enclosing
// scope chain.
type Identifier struct {
	base
	Name string
}

func (*Identifier) exprNode() {}

// Literal is a scalar constant carrying its lexed token.Scalar payload.
type Literal struct {
	base
	Scalar *token.Scalar
}

func (*Literal) exprNode() {}

// UnaryOp enumerates prefix operators.
type UnaryOp int

const (
	UnaryNeg UnaryOp = iota
	UnaryNot
	UnaryRef
	UnaryRefMut
	UnaryDoubleRef
	UnaryDoubleRefMut
)

// UnaryExpr is a prefix operator applied to one operand: -, !, &, &mut,
// && (double-reference) and && mut.
type UnaryExpr struct {
	base
	Op      UnaryOp
	Operand Expr
}

func (*UnaryExpr) exprNode() {}

// BinaryOp enumerates infix operators, including compound assignment.
type BinaryOp int

const (
	BinAdd BinaryOp = iota
	BinSub
	BinMul
	BinDiv
	BinMod
	BinAnd // bitwise &
	BinOr  // bitwise |
	BinXor
	BinShl
	BinShr
	BinLogAnd // &&
	BinLogOr  // ||
	BinEq
	BinNe
	BinLt
	BinGt
	BinLe
	BinGe
	BinAssign
	BinAddAssign
	BinSubAssign
	BinMulAssign
	BinDivAssign
	BinModAssign
	BinAndAssign
	BinOrAssign
	BinXorAssign
	BinShlAssign
	BinShrAssign
)

// BinaryExpr is a left/right infix operator application, including plain
// and compound assignment (the target is carried in Left and must be a
// valid place expression).
type BinaryExpr struct {
	base
	Op    BinaryOp
	Left  Expr
	Right Expr
}

func (*BinaryExpr) exprNode() {}

// CallExpr applies Callee to Args.
type CallExpr struct {
	base
	Callee Expr
	Args   []Expr
}

func (*CallExpr) exprNode() {}

// FieldAccessExpr reads a named field off a struct value, or a numbered
// element off a tuple/tuple-struct value (Field is the literal text, so
// "0"/"1" for tuple indices).
type FieldAccessExpr struct {
	base
	Target Expr
	Field  string
}

func (*FieldAccessExpr) exprNode() {}

// IndexExpr reads Target[Index].
type IndexExpr struct {
	base
	Target Expr
	Index  Expr
}

func (*IndexExpr) exprNode() {}

// TupleExpr constructs a tuple value.
type TupleExpr struct {
	base
	Elems []Expr
}

func (*TupleExpr) exprNode() {}

// ArrayExpr constructs a fixed-size array either as an explicit element
// list or, if Repeat is non-nil, as Count copies of Repeat's value.
type ArrayExpr struct {
	base
	Elems  []Expr
	Repeat Expr
	Count  Expr
}

func (*ArrayExpr) exprNode() {}

// StructExprField is one "name: value" entry of a struct literal.
type StructExprField struct {
	Name  string
	Value Expr
}

// StructExpr constructs a struct value by name, either with named fields
// or, for a tuple struct, positional element values in Elems.
type StructExpr struct {
	base
	Name   string
	Fields []StructExprField
	Elems  []Expr
}

func (*StructExpr) exprNode() {}

// BlockExpr is a brace-delimited sequence of statements whose value is
// its Tail expression (nil means the block evaluates to unit).
type BlockExpr struct {
	base
	Stmts []Stmt
	Tail  Expr
}

func (*BlockExpr) exprNode() {}

// IfExpr is a conditional expression; Else is nil for a bodyless if, or
// another IfExpr for an "else if" chain.
type IfExpr struct {
	base
	Cond Expr
	Then *BlockExpr
	Else Expr // *BlockExpr or *IfExpr, or nil
}

func (*IfExpr) exprNode() {}

// WhileExpr loops Body while Cond holds; always types as unit.
type WhileExpr struct {
	base
	Cond Expr
	Body *BlockExpr
}

func (*WhileExpr) exprNode() {}

// LoopExpr loops Body unconditionally; types as the value of any break
// inside it, or unit if none breaks with a value.
type LoopExpr struct {
	base
	Body *BlockExpr
}

func (*LoopExpr) exprNode() {}

// ForExpr iterates Iterable, binding each element to Pattern for Body.
type ForExpr struct {
	base
	Pattern  Pattern
	Iterable Expr
	Body     *BlockExpr
}

func (*ForExpr) exprNode() {}

// BreakExpr exits the nearest enclosing loop, optionally with a value.
type BreakExpr struct {
	base
	Value Expr // nil if none
}

func (*BreakExpr) exprNode() {}

// ContinueExpr restarts the nearest enclosing loop.
type ContinueExpr struct {
	base
}

func (*ContinueExpr) exprNode() {}

// ReturnExpr exits the enclosing function, optionally with a value.
type ReturnExpr struct {
	base
	Value Expr // nil if none
}

func (*ReturnExpr) exprNode() {}

// CastExpr reinterprets Operand's value as TargetType ("as" expression).
type CastExpr struct {
	base
	Operand    Expr
	TargetType TypeNode
}

func (*CastExpr) exprNode() {}

// ParenExpr is an explicitly parenthesized expression, kept as its own
// node only to preserve the "no struct-expression in condition position"
// escape hatch ("if (S { x: 1 }) {}" is allowed, "if S { x: 1 } {}" is
// not); it types identically to Inner.
type ParenExpr struct {
	base
	Inner Expr
}

func (*ParenExpr) exprNode() {}

// Pattern is a destructuring pattern: identifier bindings, the wildcard
// "_", tuple patterns, and struct patterns.
type Pattern interface {
	patternNode()
	Position() token.Position
}

type patternBase struct {
	Pos token.Position
}

func (p patternBase) Position() token.Position { return p.Pos }

// IdentPattern binds Name, optionally as mutable.
type IdentPattern struct {
	patternBase
	Name    string
	Mutable bool
}

func (IdentPattern) patternNode() {}

// WildcardPattern is "_": matches anything, binds nothing.
type WildcardPattern struct {
	patternBase
}

func (WildcardPattern) patternNode() {}

// TuplePattern destructures a tuple value element-wise.
type TuplePattern struct {
	patternBase
	Elems []Pattern
}

func (TuplePattern) patternNode() {}

// StructPatternField is one "name: pattern" entry; Pattern is nil for
// field-name shorthand ("Point { x, y }").
type StructPatternField struct {
	Name    string
	Pattern Pattern
}

// StructPattern destructures a struct value by name. Rest marks a
// trailing ".." that allows unmatched fields to be ignored.
type StructPattern struct {
	patternBase
	Name   string
	Fields []StructPatternField
	Rest   bool
}

func (StructPattern) patternNode() {}

// TypeNode is a type annotation as written in source, resolved by the
// analyzer into a *types.Type.
type TypeNode interface {
	typeNode()
	Position() token.Position
}

type typeBase struct {
	Pos token.Position
}

func (t typeBase) Position() token.Position { return t.Pos }

// IdentifierType names a scalar, struct, or tuple-struct type by name.
type IdentifierType struct {
	typeBase
	Name string
}

func (IdentifierType) typeNode() {}

// TupleType is a parenthesized, comma-separated list of element types;
// an empty TupleType is the unit type "()".
type TupleType struct {
	typeBase
	Elems []TypeNode
}

func (TupleType) typeNode() {}

// ReferenceType is "&T" or "&mut T".
type ReferenceType struct {
	typeBase
	Mutable bool
	Inner   TypeNode
}

func (ReferenceType) typeNode() {}

// ArrayType is "[T; N]": a fixed-size array of Elem, Len elements long.
// Len is an expression (a const-evaluable literal) rather than a bare
// integer, per the grammar.
type ArrayType struct {
	typeBase
	Elem TypeNode
	Len  Expr
}

func (ArrayType) typeNode() {}

// Constructor functions below build nodes whose embedded base/
// patternBase/typeBase fields are unexported; callers outside this
// package (the parser) go through these rather than composite literals,
// the same constructor-function convention the teacher's ast package
// uses for every node kind.

func NewIdentifier(pos token.Position, name string) *Identifier {
	return &Identifier{base: base{Pos: pos}, Name: name}
}

func NewLiteral(pos token.Position, scalar *token.Scalar) *Literal {
	return &Literal{base: base{Pos: pos}, Scalar: scalar}
}

func NewUnaryExpr(pos token.Position, op UnaryOp, operand Expr) *UnaryExpr {
	return &UnaryExpr{base: base{Pos: pos}, Op: op, Operand: operand}
}

func NewBinaryExpr(pos token.Position, op BinaryOp, left, right Expr) *BinaryExpr {
	return &BinaryExpr{base: base{Pos: pos}, Op: op, Left: left, Right: right}
}

func NewCallExpr(pos token.Position, callee Expr, args []Expr) *CallExpr {
	return &CallExpr{base: base{Pos: pos}, Callee: callee, Args: args}
}

func NewFieldAccessExpr(pos token.Position, target Expr, field string) *FieldAccessExpr {
	return &FieldAccessExpr{base: base{Pos: pos}, Target: target, Field: field}
}

func NewIndexExpr(pos token.Position, target, index Expr) *IndexExpr {
	return &IndexExpr{base: base{Pos: pos}, Target: target, Index: index}
}

func NewTupleExpr(pos token.Position, elems []Expr) *TupleExpr {
	return &TupleExpr{base: base{Pos: pos}, Elems: elems}
}

func NewArrayExpr(pos token.Position, elems []Expr, repeat, count Expr) *ArrayExpr {
	return &ArrayExpr{base: base{Pos: pos}, Elems: elems, Repeat: repeat, Count: count}
}

func NewStructExpr(pos token.Position, name string, fields []StructExprField, elems []Expr) *StructExpr {
	return &StructExpr{base: base{Pos: pos}, Name: name, Fields: fields, Elems: elems}
}

func NewBlockExpr(pos token.Position, stmts []Stmt, tail Expr) *BlockExpr {
	return &BlockExpr{base: base{Pos: pos}, Stmts: stmts, Tail: tail}
}

func NewIfExpr(pos token.Position, cond Expr, then *BlockExpr, els Expr) *IfExpr {
	return &IfExpr{base: base{Pos: pos}, Cond: cond, Then: then, Else: els}
}

func NewWhileExpr(pos token.Position, cond Expr, body *BlockExpr) *WhileExpr {
	return &WhileExpr{base: base{Pos: pos}, Cond: cond, Body: body}
}

func NewLoopExpr(pos token.Position, body *BlockExpr) *LoopExpr {
	return &LoopExpr{base: base{Pos: pos}, Body: body}
}

func NewForExpr(pos token.Position, pattern Pattern, iterable Expr, body *BlockExpr) *ForExpr {
	return &ForExpr{base: base{Pos: pos}, Pattern: pattern, Iterable: iterable, Body: body}
}

func NewBreakExpr(pos token.Position, value Expr) *BreakExpr {
	return &BreakExpr{base: base{Pos: pos}, Value: value}
}

func NewContinueExpr(pos token.Position) *ContinueExpr {
	return &ContinueExpr{base: base{Pos: pos}}
}

func NewReturnExpr(pos token.Position, value Expr) *ReturnExpr {
	return &ReturnExpr{base: base{Pos: pos}, Value: value}
}

func NewCastExpr(pos token.Position, operand Expr, targetType TypeNode) *CastExpr {
	return &CastExpr{base: base{Pos: pos}, Operand: operand, TargetType: targetType}
}

func NewParenExpr(pos token.Position, inner Expr) *ParenExpr {
	return &ParenExpr{base: base{Pos: pos}, Inner: inner}
}

func NewIdentPattern(pos token.Position, name string, mutable bool) *IdentPattern {
	return &IdentPattern{patternBase: patternBase{Pos: pos}, Name: name, Mutable: mutable}
}

func NewWildcardPattern(pos token.Position) *WildcardPattern {
	return &WildcardPattern{patternBase: patternBase{Pos: pos}}
}

func NewTuplePattern(pos token.Position, elems []Pattern) *TuplePattern {
	return &TuplePattern{patternBase: patternBase{Pos: pos}, Elems: elems}
}

func NewStructPattern(pos token.Position, name string, fields []StructPatternField, rest bool) *StructPattern {
	return &StructPattern{patternBase: patternBase{Pos: pos}, Name: name, Fields: fields, Rest: rest}
}

func NewIdentifierType(pos token.Position, name string) *IdentifierType {
	return &IdentifierType{typeBase: typeBase{Pos: pos}, Name: name}
}

func NewTupleType(pos token.Position, elems []TypeNode) *TupleType {
	return &TupleType{typeBase: typeBase{Pos: pos}, Elems: elems}
}

func NewReferenceType(pos token.Position, mutable bool, inner TypeNode) *ReferenceType {
	return &ReferenceType{typeBase: typeBase{Pos: pos}, Mutable: mutable, Inner: inner}
}

func NewArrayType(pos token.Position, elem TypeNode, length Expr) *ArrayType {
	return &ArrayType{typeBase: typeBase{Pos: pos}, Elem: elem, Len: length}
}
