package ir

import (
	"github.com/sunholo/actor-ir/internal/types"
)

// LitKind tags the primitive kind a literal denotes; it always agrees
// with the Prim kind the literal's Base.Type carries.
type LitKind int

const (
	LitNull LitKind = iota
	LitBool
	LitNat
	LitInt
	LitNat8
	LitNat16
	LitNat32
	LitNat64
	LitFloat
	LitChar
	LitText
)

// Lit is a literal of a primitive type. Value holds the Go-native
// representation (bool, uint64, int64, float64, rune, string) matching
// Kind.
type Lit struct {
	Base
	Kind  LitKind
	Value interface{}
}

func (*Lit) exprNode() {}

// Var is a reference to an in-scope value binding.
type Var struct {
	Base
	Name string
}

func (*Var) exprNode() {}

// PrimOp is a reference to a built-in primitive operator or function
// (e.g. a numeric conversion or a runtime intrinsic), treated as an
// opaque callable value rather than expanded inline.
type PrimOp struct {
	Base
	Name string
}

func (*PrimOp) exprNode() {}

// UnOp applies a unary operator at a known operand type.
type UnOp struct {
	Base
	Op          string
	OperandType types.Type
	Arg         Expr
}

func (*UnOp) exprNode() {}

// BinOp applies a binary arithmetic/logical operator at a known operand
// type.
type BinOp struct {
	Base
	Op          string
	OperandType types.Type
	Left, Right Expr
}

func (*BinOp) exprNode() {}

// RelOp applies a relational comparison operator at a known operand
// type; its own Base.Type is always Bool.
type RelOp struct {
	Base
	Op          string
	OperandType types.Type
	Left, Right Expr
}

func (*RelOp) exprNode() {}

// ShowOp renders a value of OperandType to Text; legal only while
// Flavor.HasShow holds.
type ShowOp struct {
	Base
	OperandType types.Type
	Arg         Expr
}

func (*ShowOp) exprNode() {}

// TupleE constructs a tuple value from its element expressions.
type TupleE struct {
	Base
	Elems []Expr
}

func (*TupleE) exprNode() {}

// ProjE projects the Index-th component out of a tuple value.
type ProjE struct {
	Base
	Tuple Expr
	Index int
}

func (*ProjE) exprNode() {}

// OptE injects into an Option: Arg nil builds None, Arg non-nil builds
// Some(Arg).
type OptE struct {
	Base
	Arg Expr
}

func (*OptE) exprNode() {}

// VariantE injects Arg under constructor Ctor into a Variant value.
type VariantE struct {
	Base
	Ctor string
	Arg  Expr
}

func (*VariantE) exprNode() {}

// DotE reads a labeled field out of an object/module value.
type DotE struct {
	Base
	Record Expr
	Field  string
}

func (*DotE) exprNode() {}

// ActorDotE reads a labeled shared-function reference out of an actor
// value — distinguished from DotE because the result always has Shared
// call convention and the checker holds actor references to a narrower
// set of legal uses (spec §4.3, "send capability").
type ActorDotE struct {
	Base
	Actor Expr
	Field string
}

func (*ActorDotE) exprNode() {}

// ArrayE constructs an array value from its element expressions; Mut
// selects immutable vs. mutable array type.
type ArrayE struct {
	Base
	Mut   bool
	Elems []Expr
}

func (*ArrayE) exprNode() {}

// IdxE indexes into an array value.
type IdxE struct {
	Base
	Array Expr
	Index Expr
}

func (*IdxE) exprNode() {}

// AssignE stores Source into the mutable location denoted by Target
// (a Var, IdxE, or DotE of Mutable type); its own type is always unit.
type AssignE struct {
	Base
	Target Expr
	Source Expr
}

func (*AssignE) exprNode() {}

// Param is one function parameter: a bound name paired with its
// declared type.
type Param struct {
	Name string
	Type types.Type
}

// FuncE constructs a function value.
type FuncE struct {
	Base
	Sort     types.FuncSort
	Control  types.Control
	Binds    []types.Bound
	Params   []Param
	RetTypes []types.Type
	Body     Expr
}

func (*FuncE) exprNode() {}

// CallE applies Func, instantiated at TypeArgs, to Arg.
type CallE struct {
	Base
	Func     Expr
	TypeArgs []types.Type
	Arg      Expr
}

func (*CallE) exprNode() {}

// BlockE sequences a list of declarations, in order, before evaluating
// Result in the scope they introduce.
type BlockE struct {
	Base
	Decls  []Decl
	Result Expr
}

func (*BlockE) exprNode() {}

// IfE is a conditional; Else may be nil only when the block's own type
// is unit (the checker rejects a missing Else with a non-unit Then).
type IfE struct {
	Base
	Cond, Then, Else Expr
}

func (*IfE) exprNode() {}

// CaseArm is one arm of a SwitchE: a pattern guarding the scrutinee,
// paired with the expression to evaluate when it matches.
type CaseArm struct {
	Pattern Pattern
	Body    Expr
}

// SwitchE pattern-matches Scrutinee against Arms in order.
type SwitchE struct {
	Base
	Scrutinee Expr
	Arms      []CaseArm
}

func (*SwitchE) exprNode() {}

// LoopE evaluates Body forever (the checker requires Body to be
// unit-typed; control leaves only via a BreakE to an enclosing LabelE, or
// a RetE).
type LoopE struct {
	Base
	Body Expr
}

func (*LoopE) exprNode() {}

// LabelE introduces a break target named Label of type LabelType around
// Body.
type LabelE struct {
	Base
	Label     string
	LabelType types.Type
	Body      Expr
}

func (*LabelE) exprNode() {}

// BreakE transfers control to the enclosing LabelE named Label, yielding
// Arg as that label's value.
type BreakE struct {
	Base
	Label string
	Arg   Expr
}

func (*BreakE) exprNode() {}

// RetE returns Arg from the innermost enclosing function body.
type RetE struct {
	Base
	Arg Expr
}

func (*RetE) exprNode() {}

// AsyncE suspends Body as a promise; legal only while Flavor.HasAsyncTyp
// holds. An AsyncE may itself appear inside another async context.
type AsyncE struct {
	Base
	Body Expr
}

func (*AsyncE) exprNode() {}

// AwaitE blocks on Arg (an Async value), legal only inside an async
// context while Flavor.HasAwait holds.
type AwaitE struct {
	Base
	Arg Expr
}

func (*AwaitE) exprNode() {}

// AssertE fails the computation if Cond is false; its own type is unit.
type AssertE struct {
	Base
	Cond Expr
}

func (*AssertE) exprNode() {}

// ActorField is one exposed member of an actor value: a label paired
// with the shared-function expression implementing it.
type ActorField struct {
	Label string
	Value Expr
}

// ActorE constructs an actor value from a set of private declarations
// and its publicly exposed (always Shared) fields.
type ActorE struct {
	Base
	Decls  []Decl
	Fields []ActorField
}

func (*ActorE) exprNode() {}

// ObjField is one labeled member of an object-construction expression.
type ObjField struct {
	Label string
	Value Expr
}

// ObjE constructs an object/module value directly from field
// expressions (as opposed to ActorE, which always produces an actor).
type ObjE struct {
	Base
	Sort   types.ObjSort
	Fields []ObjField
}

func (*ObjE) exprNode() {}
