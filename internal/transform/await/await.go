// Package await implements the async/await CPS transform (spec §4.5):
// every AsyncE/AwaitE node is rewritten into calls on two runtime
// primitives, prim_async and prim_await, so that after this pass no
// node in the program carries the Await effect and the Flavor.HasAwait
// flag can be cleared.
//
// Grounded on the teacher's internal/pipeline driver shape for the
// single Transform(*Program) entry point (same as internal/transform/
// tailcall), generalized here with the mutually recursive T/C
// translation spec §4.5 describes: T[e] structurally copies an
// expression whose own effect is Triv; C[e] k CPS-converts one whose
// effect is Await, eventually invoking the continuation k instead of
// letting control fall through in the ordinary way.
package await

import (
	"fmt"

	"github.com/sunholo/actor-ir/internal/ast"
	"github.com/sunholo/actor-ir/internal/ir"
	"github.com/sunholo/actor-ir/internal/types"
)

// Cont is a one-shot translation-time continuation (spec §4.5,
// "Continuations"): either syntactic — an IR variable already naming a
// function, invoked verbatim — or meta — a host-side Go closure that
// builds the next fragment of the translated tree around its argument,
// used exactly once.
type Cont interface {
	invoke(pos ast.Pos, value ir.Expr) ir.Expr
}

type syntaxCont struct {
	t  *Translator
	fn *ir.Var
}

func (s syntaxCont) invoke(pos ast.Pos, value ir.Expr) ir.Expr {
	call, err := ir.Application(s.t.c, pos, s.fn, nil, value)
	if err != nil {
		panic(err)
	}
	return call
}

type metaCont struct {
	build func(value ir.Expr) ir.Expr
}

func (m metaCont) invoke(_ ast.Pos, value ir.Expr) ir.Expr { return m.build(value) }

// MetaCont builds a meta continuation from build.
func MetaCont(build func(value ir.Expr) ir.Expr) Cont { return metaCont{build: build} }

// identityCont returns its argument unchanged; used where a sub-term is
// CPS-translated for sequencing purposes only (its own node is the
// terminus, nothing further consumes its value).
type identityCont struct{}

func (identityCont) invoke(_ ast.Pos, value ir.Expr) ir.Expr { return value }

// LabelEnv maps an in-scope label (the empty string denoting the
// implicit return point of the innermost enclosing async) to the
// continuation it has been rerouted through. A label with no entry
// passes through unchanged: it is still a literal break/return, not yet
// crossing any synthesized closure boundary (spec §4.5, "label
// environment... distinct from the checker's").
type LabelEnv struct {
	parent *LabelEnv
	label  string
	cont   Cont
}

func (e *LabelEnv) lookup(label string) (Cont, bool) {
	for cur := e; cur != nil; cur = cur.parent {
		if cur.label == label {
			return cur.cont, true
		}
	}
	return nil, false
}

func (e *LabelEnv) extend(label string, cont Cont) *LabelEnv {
	return &LabelEnv{parent: e, label: label, cont: cont}
}

// asyncReturnLabel is the distinguished label naming an async's implicit
// return point inside the label environment.
const asyncReturnLabel = ""

// Translator runs the CPS transform over one compilation unit.
type Translator struct {
	c *ir.Counter
}

// New returns a Translator that mints fresh names/node IDs from c.
func New(c *ir.Counter) *Translator {
	return &Translator{c: c}
}

// Transform rewrites every declaration and actor field, then clears
// Flavor.HasAwait: after this pass no AsyncE/AwaitE node remains
// anywhere in the program (spec §8, testable property 3).
func (t *Translator) Transform(prog *ir.Program) *ir.Program {
	groups := make([][]ir.Decl, len(prog.DeclGroups))
	for i, g := range prog.DeclGroups {
		decls := make([]ir.Decl, len(g))
		for j, d := range g {
			decls[j] = t.tDecl(nil, d)
		}
		groups[i] = decls
	}
	fields := make([]ir.ActorField, len(prog.ActorFields))
	for i, f := range prog.ActorFields {
		fields[i] = ir.ActorField{Label: f.Label, Value: t.T(nil, f.Value)}
	}
	flavor := prog.Flavor
	flavor.HasAwait = false
	return &ir.Program{Args: prog.Args, DeclGroups: groups, ActorFields: fields, Flavor: flavor}
}

// toTail dispatches on e's own effect: T when e cannot suspend, C when
// it can (spec §4.5's governing rule for both relations).
func (t *Translator) toTail(labels *LabelEnv, e ir.Expr, k Cont) ir.Expr {
	if e.Eff() == types.Triv {
		return k.invoke(e.Pos(), t.T(labels, e))
	}
	return t.C(labels, e, k)
}

// T is the trivial translation: e's own effect is Triv, so every
// sub-term bar AsyncE's body (a fresh effect scope) and a
// return/break's target label is Triv too, and plain structural
// recursion suffices.
func (t *Translator) T(labels *LabelEnv, e ir.Expr) ir.Expr {
	switch x := e.(type) {
	case *ir.Lit, *ir.Var, *ir.PrimOp:
		return e
	case *ir.UnOp:
		return &ir.UnOp{Base: x.Base, Op: x.Op, OperandType: x.OperandType, Arg: t.T(labels, x.Arg)}
	case *ir.BinOp:
		return &ir.BinOp{Base: x.Base, Op: x.Op, OperandType: x.OperandType, Left: t.T(labels, x.Left), Right: t.T(labels, x.Right)}
	case *ir.RelOp:
		return &ir.RelOp{Base: x.Base, Op: x.Op, OperandType: x.OperandType, Left: t.T(labels, x.Left), Right: t.T(labels, x.Right)}
	case *ir.ShowOp:
		return &ir.ShowOp{Base: x.Base, OperandType: x.OperandType, Arg: t.T(labels, x.Arg)}
	case *ir.TupleE:
		elems := make([]ir.Expr, len(x.Elems))
		for i, el := range x.Elems {
			elems[i] = t.T(labels, el)
		}
		return &ir.TupleE{Base: x.Base, Elems: elems}
	case *ir.ProjE:
		return &ir.ProjE{Base: x.Base, Tuple: t.T(labels, x.Tuple), Index: x.Index}
	case *ir.OptE:
		var arg ir.Expr
		if x.Arg != nil {
			arg = t.T(labels, x.Arg)
		}
		return &ir.OptE{Base: x.Base, Arg: arg}
	case *ir.VariantE:
		return &ir.VariantE{Base: x.Base, Ctor: x.Ctor, Arg: t.T(labels, x.Arg)}
	case *ir.DotE:
		return &ir.DotE{Base: x.Base, Record: t.T(labels, x.Record), Field: x.Field}
	case *ir.ActorDotE:
		return &ir.ActorDotE{Base: x.Base, Actor: t.T(labels, x.Actor), Field: x.Field}
	case *ir.ArrayE:
		elems := make([]ir.Expr, len(x.Elems))
		for i, el := range x.Elems {
			elems[i] = t.T(labels, el)
		}
		return &ir.ArrayE{Base: x.Base, Mut: x.Mut, Elems: elems}
	case *ir.IdxE:
		return &ir.IdxE{Base: x.Base, Array: t.T(labels, x.Array), Index: t.T(labels, x.Index)}
	case *ir.AssignE:
		return &ir.AssignE{Base: x.Base, Target: t.T(labels, x.Target), Source: t.T(labels, x.Source)}
	case *ir.FuncE:
		return &ir.FuncE{Base: x.Base, Sort: x.Sort, Control: x.Control, Binds: x.Binds, Params: x.Params, RetTypes: x.RetTypes, Body: t.T(nil, x.Body)}
	case *ir.CallE:
		return &ir.CallE{Base: x.Base, Func: t.T(labels, x.Func), TypeArgs: x.TypeArgs, Arg: t.T(labels, x.Arg)}
	case *ir.BlockE:
		decls := make([]ir.Decl, len(x.Decls))
		for i, d := range x.Decls {
			decls[i] = t.tDecl(labels, d)
		}
		return &ir.BlockE{Base: x.Base, Decls: decls, Result: t.T(labels, x.Result)}
	case *ir.IfE:
		var els ir.Expr
		if x.Else != nil {
			els = t.T(labels, x.Else)
		}
		return &ir.IfE{Base: x.Base, Cond: t.T(labels, x.Cond), Then: t.T(labels, x.Then), Else: els}
	case *ir.SwitchE:
		arms := make([]ir.CaseArm, len(x.Arms))
		for i, a := range x.Arms {
			arms[i] = ir.CaseArm{Pattern: a.Pattern, Body: t.T(labels, a.Body)}
		}
		return &ir.SwitchE{Base: x.Base, Scrutinee: t.T(labels, x.Scrutinee), Arms: arms}
	case *ir.LoopE:
		return &ir.LoopE{Base: x.Base, Body: t.T(labels, x.Body)}
	case *ir.LabelE:
		return &ir.LabelE{Base: x.Base, Label: x.Label, LabelType: x.LabelType, Body: t.T(labels, x.Body)}
	case *ir.BreakE:
		return t.translateBreak(labels, x)
	case *ir.RetE:
		return t.translateRet(labels, x)
	case *ir.AsyncE:
		return t.tAsync(labels, x)
	case *ir.AwaitE:
		panic("await transform: AwaitE node cannot have Triv effect")
	case *ir.AssertE:
		return &ir.AssertE{Base: x.Base, Cond: t.T(labels, x.Cond)}
	case *ir.ActorE:
		decls := make([]ir.Decl, len(x.Decls))
		for i, d := range x.Decls {
			decls[i] = t.tDecl(nil, d)
		}
		fields := make([]ir.ActorField, len(x.Fields))
		for i, f := range x.Fields {
			fields[i] = ir.ActorField{Label: f.Label, Value: t.T(nil, f.Value)}
		}
		return &ir.ActorE{Base: x.Base, Decls: decls, Fields: fields}
	case *ir.ObjE:
		fields := make([]ir.ObjField, len(x.Fields))
		for i, f := range x.Fields {
			fields[i] = ir.ObjField{Label: f.Label, Value: t.T(labels, f.Value)}
		}
		return &ir.ObjE{Base: x.Base, Sort: x.Sort, Fields: fields}
	default:
		panic(fmt.Sprintf("await transform: unhandled node %T", e))
	}
}

func (t *Translator) tDecl(labels *LabelEnv, d ir.Decl) ir.Decl {
	switch x := d.(type) {
	case *ir.LetDecl:
		return &ir.LetDecl{Pattern: x.Pattern, Value: t.T(labels, x.Value)}
	case *ir.VarDecl:
		return &ir.VarDecl{Name: x.Name, Value: t.T(labels, x.Value)}
	case *ir.TypeDecl:
		return x
	default:
		panic(fmt.Sprintf("await transform: unhandled decl %T", d))
	}
}

// sequence implements the composition rule for a compound node with N
// direct operands (spec §4.5, "Composition"): operands are visited
// left-to-right; a Triv one is translated directly, an Await one is
// CPS-converted and its result named via a fresh let so evaluation
// order is preserved; once every operand has a direct-style value,
// build assembles the result and hands it to k.
func (t *Translator) sequence(labels *LabelEnv, pos ast.Pos, operands []ir.Expr, k Cont, build func(vals []ir.Expr) ir.Expr) ir.Expr {
	vals := make([]ir.Expr, len(operands))
	var rec func(i int) ir.Expr
	rec = func(i int) ir.Expr {
		if i == len(operands) {
			return k.invoke(pos, build(vals))
		}
		op := operands[i]
		if op.Eff() == types.Triv {
			vals[i] = t.T(labels, op)
			return rec(i + 1)
		}
		return t.C(labels, op, MetaCont(func(v ir.Expr) ir.Expr {
			name := t.c.FreshName("v")
			vals[i] = &ir.Var{Base: ir.Base{NodeID: t.c.NextNode(), Span: pos, Type: v.Typ(), Effect: types.Triv}, Name: name}
			rest := rec(i + 1)
			return ir.LetExpr(t.c, pos, &ir.VarPat{Type: v.Typ(), Name: name}, v, rest)
		}))
	}
	return rec(0)
}

// C is the CPS translation: e's own effect is Await, so it cannot
// simply be copied — it must eventually invoke k instead of letting a
// value fall through in the usual way (spec §4.5).
func (t *Translator) C(labels *LabelEnv, e ir.Expr, k Cont) ir.Expr {
	pos := e.Pos()
	switch x := e.(type) {
	case *ir.UnOp:
		return t.sequence(labels, pos, []ir.Expr{x.Arg}, k, func(v []ir.Expr) ir.Expr {
			return &ir.UnOp{Base: ir.Base{NodeID: t.c.NextNode(), Span: pos, Type: x.Typ(), Effect: types.Triv}, Op: x.Op, OperandType: x.OperandType, Arg: v[0]}
		})
	case *ir.BinOp:
		return t.sequence(labels, pos, []ir.Expr{x.Left, x.Right}, k, func(v []ir.Expr) ir.Expr {
			return &ir.BinOp{Base: ir.Base{NodeID: t.c.NextNode(), Span: pos, Type: x.Typ(), Effect: types.Triv}, Op: x.Op, OperandType: x.OperandType, Left: v[0], Right: v[1]}
		})
	case *ir.RelOp:
		return t.sequence(labels, pos, []ir.Expr{x.Left, x.Right}, k, func(v []ir.Expr) ir.Expr {
			return &ir.RelOp{Base: ir.Base{NodeID: t.c.NextNode(), Span: pos, Type: x.Typ(), Effect: types.Triv}, Op: x.Op, OperandType: x.OperandType, Left: v[0], Right: v[1]}
		})
	case *ir.ShowOp:
		return t.sequence(labels, pos, []ir.Expr{x.Arg}, k, func(v []ir.Expr) ir.Expr {
			return &ir.ShowOp{Base: ir.Base{NodeID: t.c.NextNode(), Span: pos, Type: x.Typ(), Effect: types.Triv}, OperandType: x.OperandType, Arg: v[0]}
		})
	case *ir.TupleE:
		return t.sequence(labels, pos, x.Elems, k, func(v []ir.Expr) ir.Expr {
			return ir.TupleExpr(t.c, pos, v)
		})
	case *ir.ProjE:
		return t.sequence(labels, pos, []ir.Expr{x.Tuple}, k, func(v []ir.Expr) ir.Expr {
			p, err := ir.Project(t.c, pos, v[0], x.Index)
			if err != nil {
				panic(err)
			}
			return p
		})
	case *ir.OptE:
		return t.sequence(labels, pos, []ir.Expr{x.Arg}, k, func(v []ir.Expr) ir.Expr {
			opt, ok := x.Typ().(*types.Option)
			if !ok {
				panic("await transform: OptE not Option-typed")
			}
			return ir.OptExpr(t.c, pos, opt.Elem, v[0])
		})
	case *ir.VariantE:
		return t.sequence(labels, pos, []ir.Expr{x.Arg}, k, func(v []ir.Expr) ir.Expr {
			vt, ok := x.Typ().(*types.Variant)
			if !ok {
				panic("await transform: VariantE not Variant-typed")
			}
			return ir.VariantExpr(t.c, pos, vt, x.Ctor, v[0])
		})
	case *ir.DotE:
		return t.sequence(labels, pos, []ir.Expr{x.Record}, k, func(v []ir.Expr) ir.Expr {
			d, err := ir.DotExpr(t.c, pos, v[0], x.Field)
			if err != nil {
				panic(err)
			}
			return d
		})
	case *ir.ActorDotE:
		return t.sequence(labels, pos, []ir.Expr{x.Actor}, k, func(v []ir.Expr) ir.Expr {
			return &ir.ActorDotE{Base: ir.Base{NodeID: t.c.NextNode(), Span: pos, Type: x.Typ(), Effect: types.Triv}, Actor: v[0], Field: x.Field}
		})
	case *ir.ArrayE:
		return t.sequence(labels, pos, x.Elems, k, func(v []ir.Expr) ir.Expr {
			elem, _, err := types.AsArraySub(x.Typ())
			if err != nil {
				panic(err)
			}
			return ir.ArrayExpr(t.c, pos, x.Mut, elem, v)
		})
	case *ir.IdxE:
		return t.sequence(labels, pos, []ir.Expr{x.Array, x.Index}, k, func(v []ir.Expr) ir.Expr {
			idx, err := ir.Idx(t.c, pos, v[0], v[1])
			if err != nil {
				panic(err)
			}
			return idx
		})
	case *ir.AssignE:
		return t.sequence(labels, pos, []ir.Expr{x.Target, x.Source}, k, func(v []ir.Expr) ir.Expr {
			return ir.AssignExpr(t.c, pos, v[0], v[1])
		})
	case *ir.CallE:
		return t.sequence(labels, pos, []ir.Expr{x.Func, x.Arg}, k, func(v []ir.Expr) ir.Expr {
			call, err := ir.Application(t.c, pos, v[0], x.TypeArgs, v[1])
			if err != nil {
				panic(err)
			}
			return call
		})
	case *ir.ObjE:
		exprs := make([]ir.Expr, len(x.Fields))
		for i, f := range x.Fields {
			exprs[i] = f.Value
		}
		return t.sequence(labels, pos, exprs, k, func(v []ir.Expr) ir.Expr {
			fields := make([]ir.ObjField, len(x.Fields))
			for i, f := range x.Fields {
				fields[i] = ir.ObjField{Label: f.Label, Value: v[i]}
			}
			return ir.ObjExpr(t.c, pos, x.Sort, fields)
		})
	case *ir.AssertE:
		return t.sequence(labels, pos, []ir.Expr{x.Cond}, k, func(v []ir.Expr) ir.Expr {
			return ir.AssertExpr(t.c, pos, v[0])
		})
	case *ir.AwaitE:
		return t.cAwait(labels, x, k)
	case *ir.BlockE:
		return t.cBlock(labels, x, k)
	case *ir.IfE:
		return t.cIf(labels, x, k)
	case *ir.SwitchE:
		return t.cSwitch(labels, x, k)
	case *ir.LoopE:
		return t.cLoop(labels, x)
	case *ir.LabelE:
		return t.cLabel(labels, x, k)
	case *ir.BreakE:
		return t.translateBreak(labels, x)
	case *ir.RetE:
		return t.translateRet(labels, x)
	default:
		panic(fmt.Sprintf("await transform: node %T cannot carry an Await effect", e))
	}
}

// translateBreak handles both the T and C paths: if Label has been
// rerouted (an enclosing LabelE's continuation was reified because its
// own body could suspend), the break's argument is delivered to that
// continuation directly instead of performing a literal jump; otherwise
// the break is rebuilt around the (possibly further CPS-converted)
// argument.
func (t *Translator) translateBreak(labels *LabelEnv, x *ir.BreakE) ir.Expr {
	pos := x.Pos()
	if cont, ok := labels.lookup(x.Label); ok {
		return t.toTail(labels, x.Arg, cont)
	}
	return t.sequence(labels, pos, []ir.Expr{x.Arg}, identityCont{}, func(v []ir.Expr) ir.Expr {
		return &ir.BreakE{Base: ir.Base{NodeID: t.c.NextNode(), Span: pos, Type: types.Non{}, Effect: types.Triv}, Label: x.Label, Arg: v[0]}
	})
}

// translateRet mirrors translateBreak for the async's distinguished
// empty-label return point (spec §4.5).
func (t *Translator) translateRet(labels *LabelEnv, x *ir.RetE) ir.Expr {
	pos := x.Pos()
	if cont, ok := labels.lookup(asyncReturnLabel); ok {
		return t.toTail(labels, x.Arg, cont)
	}
	return t.sequence(labels, pos, []ir.Expr{x.Arg}, identityCont{}, func(v []ir.Expr) ir.Expr {
		return &ir.RetE{Base: ir.Base{NodeID: t.c.NextNode(), Span: pos, Type: types.Non{}, Effect: types.Triv}, Arg: v[0]}
	})
}

// reifyInline builds a function *value* usable directly as a single-use
// argument: an already-syntactic continuation is returned verbatim (its
// Var), a meta one is built as an inline FuncE literal with no extra
// let-binding (spec §4.5's "except when already syntactic").
func (t *Translator) reifyInline(pos ast.Pos, valTyp types.Type, k Cont) ir.Expr {
	if sc, ok := k.(syntaxCont); ok {
		return sc.fn
	}
	mc := k.(metaCont)
	paramName := t.c.FreshName("v")
	param := ir.Param{Name: paramName, Type: valTyp}
	paramVar := &ir.Var{Base: ir.Base{NodeID: t.c.NextNode(), Span: pos, Type: valTyp, Effect: types.Triv}, Name: paramName}
	body := mc.build(paramVar)
	return ir.FuncExpr(t.c, pos, types.Local, types.Returns, nil, []ir.Param{param}, []types.Type{types.Non{}}, body)
}

// reifyShared is letcont proper (spec §4.5): when a continuation will be
// invoked from more than one branch (If/Switch/Label), it is bound once
// to a fresh name so every branch calls the same closure instead of
// duplicating it. An already-syntactic k needs no rebinding.
func (t *Translator) reifyShared(pos ast.Pos, valTyp types.Type, k Cont) (ir.Decl, Cont) {
	if sc, ok := k.(syntaxCont); ok {
		return nil, sc
	}
	fnVal := t.reifyInline(pos, valTyp, k)
	name := t.c.FreshName("k")
	decl := &ir.LetDecl{Pattern: &ir.VarPat{Type: fnVal.Typ(), Name: name}, Value: fnVal}
	fnVar := &ir.Var{Base: ir.Base{NodeID: t.c.NextNode(), Span: pos, Type: fnVal.Typ(), Effect: types.Triv}, Name: name}
	return decl, syntaxCont{t: t, fn: fnVar}
}

func wrapBlock(c *ir.Counter, pos ast.Pos, decl ir.Decl, result ir.Expr) ir.Expr {
	return &ir.BlockE{Base: ir.Base{NodeID: c.NextNode(), Span: pos, Type: types.Non{}, Effect: types.Triv}, Decls: []ir.Decl{decl}, Result: result}
}

// primAsyncVar returns a reference to the prim_async runtime primitive,
// typed (λk_ret:(t -> Non) -> Non) -> Async t (spec §4.5, "Async e").
func (t *Translator) primAsyncVar(pos ast.Pos, resultTyp types.Type) *ir.PrimOp {
	kRetTyp := &types.Func{Sort: types.Local, Control: types.Returns, Domain: []types.Type{resultTyp}, Codomain: []types.Type{types.Non{}}}
	bodyFnTyp := &types.Func{Sort: types.Local, Control: types.Returns, Domain: []types.Type{kRetTyp}, Codomain: []types.Type{types.Non{}}}
	fnTyp := &types.Func{Sort: types.Local, Control: types.Returns, Domain: []types.Type{bodyFnTyp}, Codomain: []types.Type{&types.Async{Result: resultTyp}}}
	return &ir.PrimOp{Base: ir.Base{NodeID: t.c.NextNode(), Span: pos, Type: fnTyp, Effect: types.Triv}, Name: "prim_async"}
}

// primAwaitVar returns a reference to the prim_await runtime primitive,
// typed (Async t, t -> Non) -> Non (spec §4.5, "Await e").
func (t *Translator) primAwaitVar(pos ast.Pos, resultTyp types.Type) *ir.PrimOp {
	kTyp := &types.Func{Sort: types.Local, Control: types.Returns, Domain: []types.Type{resultTyp}, Codomain: []types.Type{types.Non{}}}
	asyncTyp := &types.Async{Result: resultTyp}
	fnTyp := &types.Func{Sort: types.Local, Control: types.Returns, Domain: []types.Type{asyncTyp, kTyp}, Codomain: []types.Type{types.Non{}}}
	return &ir.PrimOp{Base: ir.Base{NodeID: t.c.NextNode(), Span: pos, Type: fnTyp, Effect: types.Triv}, Name: "prim_await"}
}

// tAsync translates `async e`: e becomes the body of a fresh function
// taking the async's own completion continuation k_ret, wrapped in a
// call to prim_async (spec §4.5, "Async e"). Unlike the reference
// algorithm, e's bound variables are not alpha-renamed before the lift;
// see DESIGN.md's "Alpha-renaming omitted for Async/Block translation"
// entry for why that is sound for this IR rather than an oversight.
func (t *Translator) tAsync(labels *LabelEnv, x *ir.AsyncE) ir.Expr {
	pos := x.Pos()
	resultTyp := x.Body.Typ()
	kRetTyp := &types.Func{Sort: types.Local, Control: types.Returns, Domain: []types.Type{resultTyp}, Codomain: []types.Type{types.Non{}}}
	kRetName := t.c.FreshName("k_ret")
	kRetParam := ir.Param{Name: kRetName, Type: kRetTyp}
	kRetVar := &ir.Var{Base: ir.Base{NodeID: t.c.NextNode(), Span: pos, Type: kRetTyp, Effect: types.Triv}, Name: kRetName}
	retCont := syntaxCont{t: t, fn: kRetVar}

	newLabels := (*LabelEnv)(nil).extend(asyncReturnLabel, retCont)
	body := t.toTail(newLabels, x.Body, retCont)
	innerFn := ir.FuncExpr(t.c, pos, types.Local, types.Returns, nil, []ir.Param{kRetParam}, []types.Type{types.Non{}}, body)

	primAsync := t.primAsyncVar(pos, resultTyp)
	call, err := ir.Application(t.c, pos, primAsync, nil, innerFn)
	if err != nil {
		panic(err)
	}
	return call
}

// cAwait translates `await e`: e is first resolved to a promise value
// (direct-style or itself CPS-converted), then prim_await is called with
// that promise and a continuation reifying k (spec §4.5, "Await e").
func (t *Translator) cAwait(labels *LabelEnv, x *ir.AwaitE, k Cont) ir.Expr {
	pos := x.Pos()
	resultTyp := x.Typ()
	kFnExpr := t.reifyInline(pos, resultTyp, k)
	primAwait := t.primAwaitVar(pos, resultTyp)
	build := func(promiseVal ir.Expr) ir.Expr {
		argTuple := ir.TupleExpr(t.c, pos, []ir.Expr{promiseVal, kFnExpr})
		call, err := ir.Application(t.c, pos, primAwait, nil, argTuple)
		if err != nil {
			panic(err)
		}
		return call
	}
	return t.toTail(labels, x.Arg, MetaCont(build))
}

// cIf reifies the branches' shared continuation once, then translates
// the condition (sequencing it like any other operand), dispatching to
// whichever branch it selects (spec §4.5, "If/Switch/Loop").
func (t *Translator) cIf(labels *LabelEnv, x *ir.IfE, k Cont) ir.Expr {
	pos := x.Pos()
	decl, sharedK := t.reifyShared(pos, x.Typ(), k)
	build := func(condVal ir.Expr) ir.Expr {
		then := t.toTail(labels, x.Then, sharedK)
		var els ir.Expr
		if x.Else != nil {
			els = t.toTail(labels, x.Else, sharedK)
		} else {
			unit := &ir.TupleE{Base: ir.Base{NodeID: t.c.NextNode(), Span: pos, Type: &types.Tuple{}, Effect: types.Triv}}
			els = sharedK.invoke(pos, unit)
		}
		return &ir.IfE{Base: ir.Base{NodeID: t.c.NextNode(), Span: pos, Type: types.Non{}, Effect: types.Triv}, Cond: condVal, Then: then, Else: els}
	}
	result := t.toTail(labels, x.Cond, MetaCont(build))
	if decl != nil {
		return wrapBlock(t.c, pos, decl, result)
	}
	return result
}

func (t *Translator) cSwitch(labels *LabelEnv, x *ir.SwitchE, k Cont) ir.Expr {
	pos := x.Pos()
	decl, sharedK := t.reifyShared(pos, x.Typ(), k)
	build := func(scrutVal ir.Expr) ir.Expr {
		arms := make([]ir.CaseArm, len(x.Arms))
		for i, a := range x.Arms {
			arms[i] = ir.CaseArm{Pattern: a.Pattern, Body: t.toTail(labels, a.Body, sharedK)}
		}
		return &ir.SwitchE{Base: ir.Base{NodeID: t.c.NextNode(), Span: pos, Type: types.Non{}, Effect: types.Triv}, Scrutinee: scrutVal, Arms: arms}
	}
	result := t.toTail(labels, x.Scrutinee, MetaCont(build))
	if decl != nil {
		return wrapBlock(t.c, pos, decl, result)
	}
	return result
}

// cLoop rewrites a suspending loop into a self-recursive, Non-typed
// closure: each pass through the body either escapes via a break/return
// already tracked by labels, or falls through and calls the closure
// again in place of the ordinary repeat (spec §4.5, "Loop").
func (t *Translator) cLoop(labels *LabelEnv, x *ir.LoopE) ir.Expr {
	pos := x.Pos()
	fnName := t.c.FreshName("loop")
	fnTyp := &types.Func{Sort: types.Local, Control: types.Returns, Domain: []types.Type{}, Codomain: []types.Type{types.Non{}}}
	fnVar := &ir.Var{Base: ir.Base{NodeID: t.c.NextNode(), Span: pos, Type: fnTyp, Effect: types.Triv}, Name: fnName}
	unitArg := func() ir.Expr {
		return &ir.TupleE{Base: ir.Base{NodeID: t.c.NextNode(), Span: pos, Type: &types.Tuple{}, Effect: types.Triv}}
	}
	selfCall := func() ir.Expr {
		call, err := ir.Application(t.c, pos, fnVar, nil, unitArg())
		if err != nil {
			panic(err)
		}
		return call
	}
	repeatCont := MetaCont(func(ir.Expr) ir.Expr { return selfCall() })
	body := t.toTail(labels, x.Body, repeatCont)
	fn := ir.FuncExpr(t.c, pos, types.Local, types.Returns, nil, nil, []types.Type{types.Non{}}, body)
	decl := &ir.LetDecl{Pattern: &ir.VarPat{Type: fn.Typ(), Name: fnName}, Value: fn}
	return &ir.BlockE{Base: ir.Base{NodeID: t.c.NextNode(), Span: pos, Type: types.Non{}, Effect: types.Triv}, Decls: []ir.Decl{decl}, Result: selfCall()}
}

// cLabel reifies the label's own completion continuation once, extends
// labels so a nested break to this label reroutes through it, and
// translates the body so its own fallthrough feeds the same
// continuation (spec §4.5, "Loop" covers Label the same way).
func (t *Translator) cLabel(labels *LabelEnv, x *ir.LabelE, k Cont) ir.Expr {
	pos := x.Pos()
	decl, sharedK := t.reifyShared(pos, x.LabelType, k)
	newLabels := labels.extend(x.Label, sharedK)
	body := t.toTail(newLabels, x.Body, sharedK)
	if decl != nil {
		return wrapBlock(t.c, pos, decl, body)
	}
	return body
}

type declName struct {
	name string
	typ  types.Type
}

// declareNames enumerates the (name, type) pairs a let pattern
// introduces, for pre-announcing them via DeclareD ahead of a
// potentially suspending initializer (spec §4.5, "Block"). Supported
// patterns are variables, wildcards, tuples and objects — the shapes a
// plain value binding typically uses; a pattern that requires actual
// runtime matching (variant, option, literal, alternative) to destructure
// is out of scope for this split (see DESIGN.md). Unlike the reference
// algorithm, the pattern's own names are declared and defined directly
// rather than refreshed and redefined; see DESIGN.md's "Alpha-renaming
// omitted for Async/Block translation" entry for why.
func declareNames(pat ir.Pattern) []declName {
	switch p := pat.(type) {
	case *ir.VarPat:
		return []declName{{p.Name, p.Type}}
	case *ir.WildcardPat:
		return nil
	case *ir.TuplePat:
		var out []declName
		for _, e := range p.Elems {
			out = append(out, declareNames(e)...)
		}
		return out
	case *ir.ObjPat:
		var out []declName
		for _, f := range p.Fields {
			out = append(out, declareNames(f.Pat)...)
		}
		return out
	default:
		panic(fmt.Sprintf("await transform: unsupported let pattern %T across a suspending initializer", pat))
	}
}

// defineDecls builds the DefineD(s) binding value to pat's names, once
// value is known (spec §4.5, "Block": bindings defined after).
func defineDecls(c *ir.Counter, pos ast.Pos, pat ir.Pattern, value ir.Expr) []ir.Decl {
	switch p := pat.(type) {
	case *ir.VarPat:
		return []ir.Decl{&ir.DefineD{Name: p.Name, Mut: false, Value: value}}
	case *ir.WildcardPat:
		return nil
	case *ir.TuplePat:
		var out []ir.Decl
		for i, elem := range p.Elems {
			proj, err := ir.Project(c, pos, value, i)
			if err != nil {
				panic(err)
			}
			out = append(out, defineDecls(c, pos, elem, proj)...)
		}
		return out
	case *ir.ObjPat:
		var out []ir.Decl
		for _, f := range p.Fields {
			dot, err := ir.DotExpr(c, pos, value, f.Label)
			if err != nil {
				panic(err)
			}
			out = append(out, defineDecls(c, pos, f.Pat, dot)...)
		}
		return out
	default:
		panic(fmt.Sprintf("await transform: unsupported let pattern %T across a suspending initializer", pat))
	}
}

// cBlock implements spec §4.5's Block rule: every value decl's name is
// declared up front (so DeclareD in the output names every binding
// before any initializer runs), then initializers are CPS-sequenced in
// their original order, each followed immediately by the DefineD(s) that
// give its pattern's names their values.
func (t *Translator) cBlock(labels *LabelEnv, x *ir.BlockE, k Cont) ir.Expr {
	pos := x.Pos()
	declares := make([]ir.Decl, 0, len(x.Decls))
	for _, d := range x.Decls {
		switch dd := d.(type) {
		case *ir.TypeDecl:
			declares = append(declares, dd)
		case *ir.LetDecl:
			for _, n := range declareNames(dd.Pattern) {
				declares = append(declares, &ir.DeclareD{Name: n.name, Type: n.typ})
			}
		case *ir.VarDecl:
			declares = append(declares, &ir.DeclareD{Name: dd.Name, Type: types.AsMut(dd.Value.Typ())})
		default:
			panic(fmt.Sprintf("await transform: unexpected decl %T in checked input", d))
		}
	}
	body := t.sequenceValueDecls(labels, pos, x.Decls, 0, k, x.Result)
	return &ir.BlockE{Base: ir.Base{NodeID: t.c.NextNode(), Span: pos, Type: types.Non{}, Effect: types.Triv}, Decls: declares, Result: body}
}

func (t *Translator) sequenceValueDecls(labels *LabelEnv, pos ast.Pos, decls []ir.Decl, i int, k Cont, result ir.Expr) ir.Expr {
	for i < len(decls) {
		if _, ok := decls[i].(*ir.TypeDecl); ok {
			i++
			continue
		}
		break
	}
	if i == len(decls) {
		return t.toTail(labels, result, k)
	}
	switch dd := decls[i].(type) {
	case *ir.LetDecl:
		return t.toTail(labels, dd.Value, MetaCont(func(v ir.Expr) ir.Expr {
			rest := t.sequenceValueDecls(labels, pos, decls, i+1, k, result)
			defines := defineDecls(t.c, pos, dd.Pattern, v)
			if len(defines) == 0 {
				if _, isVar := v.(*ir.Var); isVar {
					return rest
				}
				defines = []ir.Decl{&ir.LetDecl{Pattern: &ir.WildcardPat{Type: v.Typ()}, Value: v}}
			}
			return &ir.BlockE{Base: ir.Base{NodeID: t.c.NextNode(), Span: pos, Type: types.Non{}, Effect: types.Triv}, Decls: defines, Result: rest}
		}))
	case *ir.VarDecl:
		return t.toTail(labels, dd.Value, MetaCont(func(v ir.Expr) ir.Expr {
			rest := t.sequenceValueDecls(labels, pos, decls, i+1, k, result)
			define := &ir.DefineD{Name: dd.Name, Mut: true, Value: v}
			return &ir.BlockE{Base: ir.Base{NodeID: t.c.NextNode(), Span: pos, Type: types.Non{}, Effect: types.Triv}, Decls: []ir.Decl{define}, Result: rest}
		}))
	default:
		panic(fmt.Sprintf("await transform: unexpected decl %T in checked input", decls[i]))
	}
}
