package ir

import "github.com/sunholo/actor-ir/internal/types"

// Decl is the interface every declaration variant implements. A BlockE
// (or a Program's top level) carries an ordered list of Decls that
// extend the surrounding scope for every later Decl and for the
// trailing result expression (spec §3.2, §6.1).
type Decl interface {
	declNode()
}

// LetDecl binds the value of Value by matching it against Pattern; every
// name Pattern binds becomes immutably visible to subsequent
// declarations.
type LetDecl struct {
	Pattern Pattern
	Value   Expr
}

func (*LetDecl) declNode() {}

// VarDecl introduces a fresh mutable cell named Name, initialized to
// Value; Name's type in scope is Mutable{Value.Typ()}.
type VarDecl struct {
	Name  string
	Value Expr
}

func (*VarDecl) declNode() {}

// TypeDecl brings a type constructor into scope under Name.
type TypeDecl struct {
	Name string
	Con  *types.Constructor
}

func (*TypeDecl) declNode() {}

// DeclareD announces Name at Type with no initializer yet. It never
// appears in the pipeline's input program; the await transform
// produces it when splitting a declaration's binding occurrence from its
// initializing expression so a continuation can close over the name
// before the value that defines it is available (spec §4.5, Block rule).
type DeclareD struct {
	Name string
	Type types.Type
}

func (*DeclareD) declNode() {}

// DefineD initializes a name previously introduced by a DeclareD (or, for
// a mutable cell, assigns its current value). Mut mirrors whether Name
// was declared as a var.
type DefineD struct {
	Name  string
	Mut   bool
	Value Expr
}

func (*DefineD) declNode() {}
