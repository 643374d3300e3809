package ir

import (
	"github.com/sunholo/actor-ir/internal/ast"
	"github.com/sunholo/actor-ir/internal/types"
)

// Smart constructors (spec §4.2): each builds a node with its NodeID
// minted from the given Counter and its Type/Effect annotations derived
// from its parts, so a transform that builds new IR doesn't have to
// re-derive typing and effect information the checker has already
// established for its inputs. These are convenience builders, not a
// second checker — a transform is responsible for passing already
// well-typed parts; the handful that destructure a type (Application,
// Project, Idx, AwaitExpr) return an error if that shape assumption
// fails, the same way the types package's As*Sub helpers do.

func newBase(c *Counter, pos ast.Pos, t types.Type, eff types.Effect) Base {
	return Base{NodeID: c.NextNode(), Span: pos, Type: t, Effect: eff}
}

// FreshVar mints a variable never before bound by this Counter, with
// hint used as the readable part of its name.
func FreshVar(c *Counter, pos ast.Pos, hint string, t types.Type) *Var {
	name := c.FreshName(hint)
	return &Var{Base: newBase(c, pos, t, types.Triv), Name: name}
}

// LetExpr builds `let pat = value; body` as a one-declaration block.
func LetExpr(c *Counter, pos ast.Pos, pat Pattern, value Expr, body Expr) *BlockE {
	eff := types.Lub(value.Eff(), body.Eff())
	return &BlockE{
		Base:   newBase(c, pos, body.Typ(), eff),
		Decls:  []Decl{&LetDecl{Pattern: pat, Value: value}},
		Result: body,
	}
}

// BlockExpr builds a block from an already-assembled declaration list.
// declEffects must list, in order, the effect of each Decl's own
// initializing expression (DeclareD contributes Triv, since it has none)
// so the block's effect can be computed without a type switch here.
func BlockExpr(c *Counter, pos ast.Pos, decls []Decl, declEffects []types.Effect, result Expr) *BlockE {
	eff := result.Eff()
	for _, e := range declEffects {
		eff = types.Lub(eff, e)
	}
	return &BlockE{Base: newBase(c, pos, result.Typ(), eff), Decls: decls, Result: result}
}

// IfExpr builds a conditional whose type is the (already-unified) branch
// type resultTyp.
func IfExpr(c *Counter, pos ast.Pos, cond, then, els Expr, resultTyp types.Type) *IfE {
	eff := types.LubAll(cond.Eff(), then.Eff(), els.Eff())
	return &IfE{Base: newBase(c, pos, resultTyp, eff), Cond: cond, Then: then, Else: els}
}

// FuncExpr builds a function literal. Constructing a closure has no
// effect of its own — only calling it does — so its Base.Effect is
// always Triv regardless of Body's effect.
func FuncExpr(c *Counter, pos ast.Pos, sort types.FuncSort, control types.Control, binds []types.Bound, params []Param, retTypes []types.Type, body Expr) *FuncE {
	domain := make([]types.Type, len(params))
	for i, p := range params {
		domain[i] = p.Type
	}
	ft := &types.Func{Sort: sort, Control: control, Binds: binds, Domain: domain, Codomain: retTypes}
	return &FuncE{
		Base:     newBase(c, pos, ft, types.Triv),
		Sort:     sort,
		Control:  control,
		Binds:    binds,
		Params:   params,
		RetTypes: retTypes,
		Body:     body,
	}
}

// TupleExpr builds a tuple value.
func TupleExpr(c *Counter, pos ast.Pos, elems []Expr) *TupleE {
	effs := make([]types.Effect, len(elems))
	ts := make([]types.Type, len(elems))
	for i, e := range elems {
		effs[i] = e.Eff()
		ts[i] = e.Typ()
	}
	return &TupleE{Base: newBase(c, pos, &types.Tuple{Elems: ts}, types.LubAll(effs...)), Elems: elems}
}

// BreakExpr builds a break to an enclosing LabelE. Its own type is Non:
// control never falls through a break to continue evaluating a
// surrounding expression.
func BreakExpr(c *Counter, pos ast.Pos, label string, arg Expr) *BreakE {
	return &BreakE{Base: newBase(c, pos, types.Non{}, arg.Eff()), Label: label, Arg: arg}
}

// RetExpr builds a return from the innermost enclosing function body.
// Its own type is Non for the same reason as BreakExpr.
func RetExpr(c *Counter, pos ast.Pos, arg Expr) *RetE {
	return &RetE{Base: newBase(c, pos, types.Non{}, arg.Eff()), Arg: arg}
}

// AssignExpr builds a store to a mutable location; always unit-typed.
func AssignExpr(c *Counter, pos ast.Pos, target, source Expr) *AssignE {
	eff := types.Lub(target.Eff(), source.Eff())
	return &AssignE{Base: newBase(c, pos, &types.Tuple{}, eff), Target: target, Source: source}
}

// Application builds a call, destructuring fn's type to determine the
// instantiated codomain.
func Application(c *Counter, pos ast.Pos, fn Expr, typeArgs []types.Type, arg Expr) (*CallE, error) {
	ft, err := types.AsFuncSub(fn.Typ())
	if err != nil {
		return nil, err
	}
	cod := types.Open(typeArgs, types.Seq(ft.Codomain))
	eff := types.Lub(fn.Eff(), arg.Eff())
	return &CallE{Base: newBase(c, pos, cod, eff), Func: fn, TypeArgs: typeArgs, Arg: arg}, nil
}

// Project builds a tuple projection, destructuring tuple's type to
// determine the projected element's type.
func Project(c *Counter, pos ast.Pos, tuple Expr, index int) (*ProjE, error) {
	elems, err := types.AsTupSub(tuple.Typ(), index+1)
	if err != nil {
		return nil, err
	}
	return &ProjE{Base: newBase(c, pos, elems[index], tuple.Eff()), Tuple: tuple, Index: index}, nil
}

// Idx builds an array index expression, destructuring arr's type to
// determine the element type.
func Idx(c *Counter, pos ast.Pos, arr, index Expr) (*IdxE, error) {
	elem, _, err := types.AsArraySub(arr.Typ())
	if err != nil {
		return nil, err
	}
	eff := types.Lub(arr.Eff(), index.Eff())
	return &IdxE{Base: newBase(c, pos, elem, eff), Array: arr, Index: index}, nil
}

// AsyncExpr suspends body as a promise. Its own effect is Triv: entering
// an async block defers body's effects rather than performing them —
// the async/await transform relies on exactly this boundary (spec §4.5).
func AsyncExpr(c *Counter, pos ast.Pos, body Expr) *AsyncE {
	return &AsyncE{Base: newBase(c, pos, &types.Async{Result: body.Typ()}, types.Triv), Body: body}
}

// AwaitExpr blocks on arg, destructuring its type to find the result.
// Awaiting always contributes Await to the surrounding effect.
func AwaitExpr(c *Counter, pos ast.Pos, arg Expr) (*AwaitE, error) {
	result, err := types.AsAsyncSub(arg.Typ())
	if err != nil {
		return nil, err
	}
	eff := types.Lub(arg.Eff(), types.Await)
	return &AwaitE{Base: newBase(c, pos, result, eff), Arg: arg}, nil
}

// SwitchExpr builds a pattern match over arms, resultTyp being the
// already-unified type of every arm's body.
func SwitchExpr(c *Counter, pos ast.Pos, scrutinee Expr, arms []CaseArm, resultTyp types.Type) *SwitchE {
	eff := scrutinee.Eff()
	for _, a := range arms {
		eff = types.Lub(eff, a.Body.Eff())
	}
	return &SwitchE{Base: newBase(c, pos, resultTyp, eff), Scrutinee: scrutinee, Arms: arms}
}

// LoopExpr builds an unconditional loop; its own type is Non (a loop
// never falls through — it only exits via a RetE or a BreakE to a label
// outside it).
func LoopExpr(c *Counter, pos ast.Pos, body Expr) *LoopE {
	return &LoopE{Base: newBase(c, pos, types.Non{}, body.Eff()), Body: body}
}

// LabelExpr introduces a break target around body.
func LabelExpr(c *Counter, pos ast.Pos, label string, labelType types.Type, body Expr) *LabelE {
	eff := types.Lub(body.Eff(), types.Triv)
	return &LabelE{Base: newBase(c, pos, labelType, eff), Label: label, LabelType: labelType, Body: body}
}

// DotExpr reads a field from a record/module value.
func DotExpr(c *Counter, pos ast.Pos, record Expr, field string) (*DotE, error) {
	_, fields, err := types.AsObjSub(record.Typ())
	if err != nil {
		return nil, err
	}
	ft, ok := types.LookupField(field, fields)
	if !ok {
		return nil, &types.MismatchError{Expected: "object with field " + field, Got: record.Typ()}
	}
	return &DotE{Base: newBase(c, pos, ft, record.Eff()), Record: record, Field: field}, nil
}

// ArrayExpr builds an array value.
func ArrayExpr(c *Counter, pos ast.Pos, mut bool, elemTyp types.Type, elems []Expr) *ArrayE {
	eff := types.Triv
	for _, e := range elems {
		eff = types.Lub(eff, e.Eff())
	}
	return &ArrayE{Base: newBase(c, pos, &types.Array{Elem: elemTyp, Mut: mut}, eff), Mut: mut, Elems: elems}
}

// OptExpr injects into an Option; arg nil builds None at elemTyp.
func OptExpr(c *Counter, pos ast.Pos, elemTyp types.Type, arg Expr) *OptE {
	eff := types.Triv
	if arg != nil {
		eff = arg.Eff()
	}
	return &OptE{Base: newBase(c, pos, &types.Option{Elem: elemTyp}, eff), Arg: arg}
}

// VariantExpr injects arg under ctor into a Variant value of type vt.
func VariantExpr(c *Counter, pos ast.Pos, vt *types.Variant, ctor string, arg Expr) *VariantE {
	return &VariantE{Base: newBase(c, pos, vt, arg.Eff()), Ctor: ctor, Arg: arg}
}

// AssertExpr builds an assertion; always unit-typed.
func AssertExpr(c *Counter, pos ast.Pos, cond Expr) *AssertE {
	return &AssertE{Base: newBase(c, pos, &types.Tuple{}, cond.Eff()), Cond: cond}
}

// ObjExpr builds an object/module value from its field expressions.
func ObjExpr(c *Counter, pos ast.Pos, sort types.ObjSort, fields []ObjField) *ObjE {
	tfields := make([]types.Field, len(fields))
	eff := types.Triv
	for i, f := range fields {
		tfields[i] = types.Field{Label: f.Label, Type: f.Value.Typ()}
		eff = types.Lub(eff, f.Value.Eff())
	}
	return &ObjE{Base: newBase(c, pos, &types.Object{Sort: sort, Fields: tfields}, eff), Sort: sort, Fields: fields}
}

// ActorExpr builds an actor value; its own effect is always Triv —
// instantiating an actor never itself awaits, regardless of what its
// private declarations compute, since every such computation runs to
// completion before the actor becomes callable.
func ActorExpr(c *Counter, pos ast.Pos, decls []Decl, fields []ActorField) *ActorE {
	tfields := make([]types.Field, len(fields))
	for i, f := range fields {
		tfields[i] = types.Field{Label: f.Label, Type: f.Value.Typ()}
	}
	return &ActorE{
		Base:   newBase(c, pos, &types.Object{Sort: types.SortActor, Fields: tfields}, types.Triv),
		Decls:  decls,
		Fields: fields,
	}
}
