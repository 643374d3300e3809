// Package check implements the IR type and effect re-checker (spec
// §4.3): a bottom-up walk that verifies every node's type annotation is
// well-formed, every node's effect annotation is not exceeded by its
// inferred effect, and every expression variant obeys its typing rule.
//
// This generalizes the teacher's type-inference engine
// (internal/types/typechecker*.go, deleted) from an HM inference pass
// with dictionary-passing and defaulting into a much narrower
// *re*-checker: the input IR already carries type and effect
// annotations from an earlier elaboration phase (out of scope here, per
// spec.md §1); this package's only job is to verify those annotations
// are mutually consistent, not to invent them.
package check

import (
	"fmt"

	"github.com/sunholo/actor-ir/internal/ast"
	"github.com/sunholo/actor-ir/internal/errors"
	"github.com/sunholo/actor-ir/internal/ir"
	"github.com/sunholo/actor-ir/internal/types"
)

// Checker re-checks IR after a named phase (used only in diagnostics,
// spec §4.3 "Public contract").
type Checker struct {
	Phase string
}

// New returns a Checker that will tag every diagnostic it raises with
// phase.
func New(phase string) *Checker {
	return &Checker{Phase: phase}
}

func (c *Checker) fail(span ast.Span, reason errors.Reason, format string, args ...interface{}) error {
	return errors.WrapReport(errors.NewIllTyped(c.Phase, span, reason, fmt.Sprintf(format, args...)))
}

func spanOf(e ir.Expr) ast.Span {
	return ast.Span{Start: e.Pos(), End: e.Pos()}
}

// CheckProgram is the checker's top-level entry point (spec §4.3,
// "Public contract"): given a seed scope and a program, it either
// returns nil or a single *errors.ReportError describing the first
// invalid node found.
func (c *Checker) CheckProgram(topScope types.Scope, prog *ir.Program) error {
	scope := topScope
	for _, p := range prog.Args {
		scope.Vals = scope.Vals.Extend(p.Name, p.Type)
	}
	ctx := types.Context{Scope: scope, Flavor: prog.Flavor}

	for _, group := range prog.DeclGroups {
		newScope, err := gather(ctx.Scope, group)
		if err != nil {
			return c.fail(ast.Span{}, errors.ReasonDuplicate, "%s", err)
		}
		ctx = ctx.WithScope(newScope)
		if err := c.checkDecls(ctx, group); err != nil {
			return err
		}
	}

	actorCtx := ctx.WithActor()
	for _, f := range prog.ActorFields {
		if err := c.checkExpr(actorCtx, f.Value); err != nil {
			return err
		}
	}
	return nil
}

// checkDecls is declaration gathering's second phase (spec §4.3.1):
// each declaration's own initializer is re-walked in the fully extended
// scope, so mutually recursive let-bindings see each other.
func (c *Checker) checkDecls(ctx types.Context, decls []ir.Decl) error {
	for _, d := range decls {
		switch x := d.(type) {
		case *ir.LetDecl:
			if err := c.checkExpr(ctx, x.Value); err != nil {
				return err
			}
			if !types.Subtype(x.Value.Typ(), x.Pattern.Typ()) {
				return c.fail(spanOf(x.Value), errors.ReasonSubtypeViolation,
					"let binding's value type %s is not a subtype of its pattern's type %s", x.Value.Typ(), x.Pattern.Typ())
			}
		case *ir.VarDecl:
			if err := c.checkExpr(ctx, x.Value); err != nil {
				return err
			}
		case *ir.TypeDecl:
			// nothing further to check: registration happened in gather.
		case *ir.DeclareD:
			// no initializer to check.
		case *ir.DefineD:
			expected, ok := ctx.Vals.Lookup(x.Name)
			if !ok {
				return c.fail(spanOf(x.Value), errors.ReasonScopeViolation, "define of undeclared name %q", x.Name)
			}
			if err := c.checkExpr(ctx, x.Value); err != nil {
				return err
			}
			target := types.AsImmut(expected)
			if !types.Subtype(x.Value.Typ(), target) {
				return c.fail(spanOf(x.Value), errors.ReasonSubtypeViolation,
					"define of %q: value type %s is not a subtype of declared type %s", x.Name, x.Value.Typ(), target)
			}
		default:
			return c.fail(ast.Span{}, errors.ReasonInvariantBroken, "unrecognized declaration %T", d)
		}
	}
	return nil
}

// declEffect is the effect contributed by one declaration's own
// initializing expression, used by the BlockE rule to compute the
// block's overall effect; DeclareD/TypeDecl contribute Triv since they
// have no initializer.
func declEffect(d ir.Decl) types.Effect {
	switch x := d.(type) {
	case *ir.LetDecl:
		return x.Value.Eff()
	case *ir.VarDecl:
		return x.Value.Eff()
	case *ir.DefineD:
		return x.Value.Eff()
	default:
		return types.Triv
	}
}

// checkExpr is the bottom-up recursive walk (spec §4.3): it validates
// e's own type annotation, recurses into sub-expressions, checks that
// e's inferred effect does not exceed its declared one, and dispatches
// on e's variant to enforce its specific typing rule.
func (c *Checker) checkExpr(ctx types.Context, e ir.Expr) error {
	if err := checkTyp(e.Typ(), ctx.Cons, 0); err != nil {
		return c.fail(spanOf(e), errors.ReasonInvariantBroken, "%s", err)
	}

	inferred, err := c.checkVariant(ctx, e)
	if err != nil {
		return err
	}
	if !types.LE(inferred, e.Eff()) {
		return c.fail(spanOf(e), errors.ReasonEffectViolation,
			"inferred effect %s exceeds declared effect %s", inferred, e.Eff())
	}
	return nil
}

// checkVariant dispatches on e's concrete type, enforcing the rule from
// spec §4.3's table, and returns e's inferred effect (the lub of its
// immediate sub-effects, with the async-boundary and await-promotion
// exceptions spec §4.2 describes).
func (c *Checker) checkVariant(ctx types.Context, e ir.Expr) (types.Effect, error) {
	switch x := e.(type) {
	case *ir.Lit:
		return types.Triv, c.checkLit(x)
	case *ir.Var:
		return types.Triv, c.checkVar(ctx, x)
	case *ir.PrimOp:
		return types.Triv, nil
	case *ir.UnOp:
		return x.Arg.Eff(), c.checkOperandSub(ctx, x.Arg, x.OperandType)
	case *ir.BinOp:
		return c.checkBinLike(ctx, x.Left, x.Right, x.OperandType)
	case *ir.RelOp:
		return c.checkBinLike(ctx, x.Left, x.Right, x.OperandType)
	case *ir.ShowOp:
		if !ctx.Flavor.HasShow {
			return types.Triv, c.fail(spanOf(x), errors.ReasonPrecondition, "show operator used after has_show was cleared")
		}
		return x.Arg.Eff(), c.checkOperandSub(ctx, x.Arg, x.OperandType)
	case *ir.TupleE:
		return c.checkTuple(ctx, x)
	case *ir.ProjE:
		return c.checkProj(ctx, x)
	case *ir.OptE:
		return c.checkOpt(ctx, x)
	case *ir.VariantE:
		return c.checkVariantLit(ctx, x)
	case *ir.DotE:
		return c.checkDot(ctx, x)
	case *ir.ActorDotE:
		return c.checkActorDot(ctx, x)
	case *ir.ArrayE:
		return c.checkArray(ctx, x)
	case *ir.IdxE:
		return c.checkIdx(ctx, x)
	case *ir.AssignE:
		return c.checkAssign(ctx, x)
	case *ir.FuncE:
		return types.Triv, c.checkFunc(ctx, x)
	case *ir.CallE:
		return c.checkCall(ctx, x)
	case *ir.BlockE:
		return c.checkBlock(ctx, x)
	case *ir.IfE:
		return c.checkIf(ctx, x)
	case *ir.SwitchE:
		return c.checkSwitch(ctx, x)
	case *ir.LoopE:
		return c.checkLoop(ctx, x)
	case *ir.LabelE:
		return c.checkLabel(ctx, x)
	case *ir.BreakE:
		return c.checkBreak(ctx, x)
	case *ir.RetE:
		return c.checkRet(ctx, x)
	case *ir.AsyncE:
		return types.Triv, c.checkAsync(ctx, x)
	case *ir.AwaitE:
		return c.checkAwait(ctx, x)
	case *ir.AssertE:
		if err := c.checkExpr(ctx, x.Cond); err != nil {
			return types.Triv, err
		}
		if !types.Subtype(x.Cond.Typ(), &types.Prim{Kind: types.PBool}) {
			return types.Triv, c.fail(spanOf(x), errors.ReasonSubtypeViolation, "assert condition must be Bool")
		}
		return x.Cond.Eff(), nil
	case *ir.ActorE:
		return types.Triv, c.checkActor(ctx, x)
	case *ir.ObjE:
		return c.checkObj(ctx, x)
	default:
		return types.Triv, c.fail(spanOf(e), errors.ReasonInvariantBroken, "unrecognized expression %T", e)
	}
}

func litKindOf(k ir.LitKind) types.PrimKind {
	switch k {
	case ir.LitNull:
		return types.PNull
	case ir.LitBool:
		return types.PBool
	case ir.LitNat:
		return types.PNat
	case ir.LitInt:
		return types.PInt
	case ir.LitNat8:
		return types.PNat8
	case ir.LitNat16:
		return types.PNat16
	case ir.LitNat32:
		return types.PNat32
	case ir.LitNat64:
		return types.PNat64
	case ir.LitFloat:
		return types.PFloat
	case ir.LitChar:
		return types.PChar
	default:
		return types.PText
	}
}

func (c *Checker) checkLit(x *ir.Lit) error {
	want := &types.Prim{Kind: litKindOf(x.Kind)}
	if !types.Subtype(want, x.Typ()) {
		return c.fail(spanOf(x), errors.ReasonSubtypeViolation, "literal of kind %s is not a subtype of %s", want, x.Typ())
	}
	return nil
}

// checkVar accepts two shapes for a variable reference's own annotation:
// the raw binding type (for a mutable binding used as an assignment
// target, where the annotation is the Mutable cell itself) or its
// dereferenced form (for a mutable binding read as an ordinary value).
// An immutable binding only ever has the one shape, so both checks
// collapse to the same comparison for it.
func (c *Checker) checkVar(ctx types.Context, x *ir.Var) error {
	bound, ok := ctx.Vals.Lookup(x.Name)
	if !ok {
		return c.fail(spanOf(x), errors.ReasonScopeViolation, "variable %q is not in scope", x.Name)
	}
	if types.Subtype(bound, x.Typ()) || types.Subtype(types.AsImmut(bound), x.Typ()) {
		return nil
	}
	return c.fail(spanOf(x), errors.ReasonSubtypeViolation, "variable %q has type %s, not a subtype of annotation %s", x.Name, bound, x.Typ())
}

func (c *Checker) checkOperandSub(ctx types.Context, e ir.Expr, operand types.Type) error {
	if err := c.checkExpr(ctx, e); err != nil {
		return err
	}
	if !types.Subtype(e.Typ(), operand) {
		return c.fail(spanOf(e), errors.ReasonSubtypeViolation, "operand type %s is not a subtype of declared operand type %s", e.Typ(), operand)
	}
	return nil
}

func (c *Checker) checkBinLike(ctx types.Context, l, r ir.Expr, operand types.Type) (types.Effect, error) {
	if err := c.checkOperandSub(ctx, l, operand); err != nil {
		return types.Triv, err
	}
	if err := c.checkOperandSub(ctx, r, operand); err != nil {
		return types.Triv, err
	}
	return types.Lub(l.Eff(), r.Eff()), nil
}

func (c *Checker) checkTuple(ctx types.Context, x *ir.TupleE) (types.Effect, error) {
	elemTyps := make([]types.Type, len(x.Elems))
	eff := types.Triv
	for i, el := range x.Elems {
		if err := c.checkExpr(ctx, el); err != nil {
			return types.Triv, err
		}
		elemTyps[i] = el.Typ()
		eff = types.Lub(eff, el.Eff())
	}
	want := &types.Tuple{Elems: elemTyps}
	if !types.Subtype(want, x.Typ()) {
		return types.Triv, c.fail(spanOf(x), errors.ReasonSubtypeViolation, "tuple type %s is not a subtype of annotation %s", want, x.Typ())
	}
	return eff, nil
}

func (c *Checker) checkProj(ctx types.Context, x *ir.ProjE) (types.Effect, error) {
	if err := c.checkExpr(ctx, x.Tuple); err != nil {
		return types.Triv, err
	}
	elems, err := types.AsTupSub(x.Tuple.Typ(), x.Index+1)
	if err != nil {
		return types.Triv, c.fail(spanOf(x), errors.ReasonKindMismatch, "%s", err)
	}
	if !types.Subtype(elems[x.Index], x.Typ()) {
		return types.Triv, c.fail(spanOf(x), errors.ReasonSubtypeViolation, "projected type %s is not a subtype of annotation %s", elems[x.Index], x.Typ())
	}
	return x.Tuple.Eff(), nil
}

func (c *Checker) checkOpt(ctx types.Context, x *ir.OptE) (types.Effect, error) {
	opt, err := asOption(x.Typ())
	if err != nil {
		return types.Triv, c.fail(spanOf(x), errors.ReasonKindMismatch, "%s", err)
	}
	if x.Arg == nil {
		return types.Triv, nil
	}
	if err := c.checkExpr(ctx, x.Arg); err != nil {
		return types.Triv, err
	}
	if !types.Subtype(x.Arg.Typ(), opt.Elem) {
		return types.Triv, c.fail(spanOf(x), errors.ReasonSubtypeViolation, "option payload type %s is not a subtype of %s", x.Arg.Typ(), opt.Elem)
	}
	return x.Arg.Eff(), nil
}

func (c *Checker) checkVariantLit(ctx types.Context, x *ir.VariantE) (types.Effect, error) {
	v, err := asVariant(x.Typ())
	if err != nil {
		return types.Triv, c.fail(spanOf(x), errors.ReasonKindMismatch, "%s", err)
	}
	var armTyp types.Type
	found := false
	for _, a := range v.Arms {
		if a.Ctor == x.Ctor {
			armTyp, found = a.Type, true
			break
		}
	}
	if !found {
		return types.Triv, c.fail(spanOf(x), errors.ReasonKindMismatch, "variant annotation has no constructor %q", x.Ctor)
	}
	if err := c.checkExpr(ctx, x.Arg); err != nil {
		return types.Triv, err
	}
	if !types.Subtype(x.Arg.Typ(), armTyp) {
		return types.Triv, c.fail(spanOf(x), errors.ReasonSubtypeViolation, "variant payload type %s is not a subtype of %s", x.Arg.Typ(), armTyp)
	}
	return x.Arg.Eff(), nil
}

func (c *Checker) checkDot(ctx types.Context, x *ir.DotE) (types.Effect, error) {
	if err := c.checkExpr(ctx, x.Record); err != nil {
		return types.Triv, err
	}
	sort, fields, err := types.AsObjSub(x.Record.Typ())
	if err != nil {
		return types.Triv, c.fail(spanOf(x), errors.ReasonKindMismatch, "%s", err)
	}
	if sort == types.SortActor {
		return types.Triv, c.fail(spanOf(x), errors.ReasonSortMismatch, "DotE used on an actor value; use ActorDotE")
	}
	ft, ok := types.LookupField(x.Field, fields)
	if !ok {
		return types.Triv, c.fail(spanOf(x), errors.ReasonKindMismatch, "no field %q", x.Field)
	}
	if !types.Subtype(ft, x.Typ()) && !types.Subtype(types.AsImmut(ft), x.Typ()) {
		return types.Triv, c.fail(spanOf(x), errors.ReasonSubtypeViolation, "field type %s is not a subtype of annotation %s", ft, x.Typ())
	}
	return x.Record.Eff(), nil
}

func (c *Checker) checkActorDot(ctx types.Context, x *ir.ActorDotE) (types.Effect, error) {
	if err := c.checkExpr(ctx, x.Actor); err != nil {
		return types.Triv, err
	}
	sort, fields, err := types.AsObjSub(x.Actor.Typ())
	if err != nil {
		return types.Triv, c.fail(spanOf(x), errors.ReasonKindMismatch, "%s", err)
	}
	if sort != types.SortActor {
		return types.Triv, c.fail(spanOf(x), errors.ReasonSortMismatch, "ActorDotE used on a non-actor value; use DotE")
	}
	ft, ok := types.LookupField(x.Field, fields)
	if !ok {
		return types.Triv, c.fail(spanOf(x), errors.ReasonKindMismatch, "no field %q", x.Field)
	}
	if !types.Subtype(ft, x.Typ()) {
		return types.Triv, c.fail(spanOf(x), errors.ReasonSubtypeViolation, "field type %s is not a subtype of annotation %s", ft, x.Typ())
	}
	return x.Actor.Eff(), nil
}

func (c *Checker) checkArray(ctx types.Context, x *ir.ArrayE) (types.Effect, error) {
	elem, mut, err := types.AsArraySub(x.Typ())
	if err != nil {
		return types.Triv, c.fail(spanOf(x), errors.ReasonKindMismatch, "%s", err)
	}
	if mut != x.Mut {
		return types.Triv, c.fail(spanOf(x), errors.ReasonSortMismatch, "array mutability mismatch")
	}
	eff := types.Triv
	for _, el := range x.Elems {
		if err := c.checkExpr(ctx, el); err != nil {
			return types.Triv, err
		}
		if !types.Subtype(el.Typ(), elem) {
			return types.Triv, c.fail(spanOf(el), errors.ReasonSubtypeViolation, "array element type %s is not a subtype of %s", el.Typ(), elem)
		}
		eff = types.Lub(eff, el.Eff())
	}
	return eff, nil
}

func (c *Checker) checkIdx(ctx types.Context, x *ir.IdxE) (types.Effect, error) {
	if err := c.checkExpr(ctx, x.Array); err != nil {
		return types.Triv, err
	}
	if err := c.checkExpr(ctx, x.Index); err != nil {
		return types.Triv, err
	}
	if !types.Subtype(x.Index.Typ(), &types.Prim{Kind: types.PNat}) {
		return types.Triv, c.fail(spanOf(x), errors.ReasonSubtypeViolation, "array index must be Nat")
	}
	elem, _, err := types.AsArraySub(x.Array.Typ())
	if err != nil {
		return types.Triv, c.fail(spanOf(x), errors.ReasonKindMismatch, "%s", err)
	}
	if !types.Subtype(elem, x.Typ()) {
		return types.Triv, c.fail(spanOf(x), errors.ReasonSubtypeViolation, "indexed element type %s is not a subtype of annotation %s", elem, x.Typ())
	}
	return types.Lub(x.Array.Eff(), x.Index.Eff()), nil
}

// checkAssign validates a store to a mutable location. The three legal
// target shapes locate their mutability differently: a Var's own
// annotation is the Mutable cell itself; an IdxE's mutability lives on
// its array (Array.Mut), not on the element type; a DotE's mutability
// lives in the field's own Mutable-wrapped type (spec's Mutable doc:
// "the type of a mutable variable binding ... or a mutable object
// field").
func (c *Checker) checkAssign(ctx types.Context, x *ir.AssignE) (types.Effect, error) {
	if err := c.checkExpr(ctx, x.Target); err != nil {
		return types.Triv, err
	}
	if err := c.checkExpr(ctx, x.Source); err != nil {
		return types.Triv, err
	}
	var mutElem types.Type
	switch t := x.Target.(type) {
	case *ir.Var:
		m, ok := t.Typ().(*types.Mutable)
		if !ok {
			return types.Triv, c.fail(spanOf(x), errors.ReasonKindMismatch, "expected mutable assignment target")
		}
		mutElem = m.Elem
	case *ir.IdxE:
		_, mut, err := types.AsArraySub(t.Array.Typ())
		if err != nil || !mut {
			return types.Triv, c.fail(spanOf(x), errors.ReasonKindMismatch, "expected mutable assignment target")
		}
		mutElem = t.Typ()
	case *ir.DotE:
		m, ok := t.Typ().(*types.Mutable)
		if !ok {
			return types.Triv, c.fail(spanOf(x), errors.ReasonKindMismatch, "expected mutable assignment target")
		}
		mutElem = m.Elem
	default:
		return types.Triv, c.fail(spanOf(x), errors.ReasonKindMismatch, "expected mutable assignment target")
	}
	if !types.Subtype(x.Source.Typ(), mutElem) {
		return types.Triv, c.fail(spanOf(x), errors.ReasonSubtypeViolation, "assigned value type %s is not a subtype of %s", x.Source.Typ(), mutElem)
	}
	if !types.Subtype(&types.Tuple{}, x.Typ()) {
		return types.Triv, c.fail(spanOf(x), errors.ReasonInvariantBroken, "AssignE must be unit-typed")
	}
	return types.Lub(x.Target.Eff(), x.Source.Eff()), nil
}

func (c *Checker) checkFunc(ctx types.Context, x *ir.FuncE) error {
	bodyScope := ctx.Scope
	for _, p := range x.Params {
		bodyScope.Vals = bodyScope.Vals.Extend(p.Name, p.Type)
	}
	retTyp := types.Seq(x.RetTypes)
	bodyCtx := ctx.WithScope(bodyScope).WithReturn(retTyp)
	if err := c.checkExpr(bodyCtx, x.Body); err != nil {
		return err
	}
	if !types.Subtype(x.Body.Typ(), retTyp) {
		return c.fail(spanOf(x.Body), errors.ReasonSubtypeViolation, "function body type %s is not a subtype of declared codomain %s", x.Body.Typ(), retTyp)
	}
	if x.Sort == types.Shared {
		for _, p := range x.Params {
			if !types.IsConcrete(p.Type) {
				return c.fail(spanOf(x), errors.ReasonNotConcrete, "shared function parameter type %s is not concrete", p.Type)
			}
		}
		for _, r := range x.RetTypes {
			if !types.IsConcrete(r) {
				return c.fail(spanOf(x), errors.ReasonNotConcrete, "shared function result type %s is not concrete", r)
			}
		}
		if x.Control == types.Promises {
			async, ok := retTyp.(*types.Async)
			if !ok {
				return c.fail(spanOf(x), errors.ReasonKindMismatch, "shared function with Promises control must return Async")
			}
			if !types.IsShared(async.Result) {
				return c.fail(spanOf(x), errors.ReasonNotShared, "shared async function's result type %s is not shareable", async.Result)
			}
		}
	}
	return nil
}

func (c *Checker) checkCall(ctx types.Context, x *ir.CallE) (types.Effect, error) {
	if err := c.checkExpr(ctx, x.Func); err != nil {
		return types.Triv, err
	}
	if err := c.checkExpr(ctx, x.Arg); err != nil {
		return types.Triv, err
	}
	ft, err := types.AsFuncSub(x.Func.Typ())
	if err != nil {
		return types.Triv, c.fail(spanOf(x), errors.ReasonKindMismatch, "%s", err)
	}
	if len(ft.Binds) != len(x.TypeArgs) {
		return types.Triv, c.fail(spanOf(x), errors.ReasonKindMismatch, "call supplies %d type arguments, expected %d", len(x.TypeArgs), len(ft.Binds))
	}
	for i, ta := range x.TypeArgs {
		if !types.Subtype(ta, types.Open(x.TypeArgs, ft.Binds[i].Upper)) {
			return types.Triv, c.fail(spanOf(x), errors.ReasonSubtypeViolation, "type argument %d does not satisfy its bound", i)
		}
	}
	domain := types.Open(x.TypeArgs, types.Seq(ft.Domain))
	if !types.Subtype(x.Arg.Typ(), domain) {
		return types.Triv, c.fail(spanOf(x), errors.ReasonSubtypeViolation, "argument type %s is not a subtype of domain %s", x.Arg.Typ(), domain)
	}
	codomain := types.Open(x.TypeArgs, types.Seq(ft.Codomain))
	if !types.Subtype(codomain, x.Typ()) {
		return types.Triv, c.fail(spanOf(x), errors.ReasonSubtypeViolation, "call result type %s is not a subtype of annotation %s", codomain, x.Typ())
	}
	if ft.Sort == types.Shared {
		if !types.IsConcrete(domain) || !types.IsConcrete(codomain) {
			return types.Triv, c.fail(spanOf(x), errors.ReasonNotConcrete, "shared call's domain/codomain must be concrete")
		}
	}
	return types.Lub(x.Func.Eff(), x.Arg.Eff()), nil
}

func (c *Checker) checkBlock(ctx types.Context, x *ir.BlockE) (types.Effect, error) {
	newScope, err := gather(ctx.Scope, x.Decls)
	if err != nil {
		return types.Triv, c.fail(spanOf(x), errors.ReasonDuplicate, "%s", err)
	}
	blockCtx := ctx.WithScope(newScope)
	if err := c.checkDecls(blockCtx, x.Decls); err != nil {
		return types.Triv, err
	}
	if err := c.checkExpr(blockCtx, x.Result); err != nil {
		return types.Triv, err
	}
	if !types.Subtype(x.Result.Typ(), x.Typ()) {
		return types.Triv, c.fail(spanOf(x), errors.ReasonSubtypeViolation, "block result type %s is not a subtype of annotation %s", x.Result.Typ(), x.Typ())
	}
	eff := x.Result.Eff()
	for _, d := range x.Decls {
		eff = types.Lub(eff, declEffect(d))
	}
	return eff, nil
}

func (c *Checker) checkIf(ctx types.Context, x *ir.IfE) (types.Effect, error) {
	if err := c.checkExpr(ctx, x.Cond); err != nil {
		return types.Triv, err
	}
	if !types.Subtype(x.Cond.Typ(), &types.Prim{Kind: types.PBool}) {
		return types.Triv, c.fail(spanOf(x), errors.ReasonSubtypeViolation, "if condition must be Bool")
	}
	if err := c.checkExpr(ctx, x.Then); err != nil {
		return types.Triv, err
	}
	if !types.Subtype(x.Then.Typ(), x.Typ()) {
		return types.Triv, c.fail(spanOf(x), errors.ReasonSubtypeViolation, "if-then type %s is not a subtype of annotation %s", x.Then.Typ(), x.Typ())
	}
	eff := types.Lub(x.Cond.Eff(), x.Then.Eff())
	if x.Else != nil {
		if err := c.checkExpr(ctx, x.Else); err != nil {
			return types.Triv, err
		}
		if !types.Subtype(x.Else.Typ(), x.Typ()) {
			return types.Triv, c.fail(spanOf(x), errors.ReasonSubtypeViolation, "if-else type %s is not a subtype of annotation %s", x.Else.Typ(), x.Typ())
		}
		eff = types.Lub(eff, x.Else.Eff())
	} else if !types.Subtype(&types.Tuple{}, x.Typ()) {
		return types.Triv, c.fail(spanOf(x), errors.ReasonInvariantBroken, "if without else must be unit-typed")
	}
	return eff, nil
}

func (c *Checker) checkSwitch(ctx types.Context, x *ir.SwitchE) (types.Effect, error) {
	if err := c.checkExpr(ctx, x.Scrutinee); err != nil {
		return types.Triv, err
	}
	eff := x.Scrutinee.Eff()
	for _, arm := range x.Arms {
		if !types.Subtype(arm.Pattern.Typ(), x.Scrutinee.Typ()) {
			return types.Triv, c.fail(spanOf(x), errors.ReasonSubtypeViolation, "case pattern type %s is not a subtype of scrutinee type %s", arm.Pattern.Typ(), x.Scrutinee.Typ())
		}
		bindings, err := checkPattern(arm.Pattern)
		if err != nil {
			return types.Triv, c.fail(spanOf(x), errors.ReasonInvariantBroken, "%s", err)
		}
		armScope := ctx.Scope
		armScope.Vals = extendVals(armScope.Vals, bindings)
		armCtx := ctx.WithScope(armScope)
		if err := c.checkExpr(armCtx, arm.Body); err != nil {
			return types.Triv, err
		}
		if !types.Subtype(arm.Body.Typ(), x.Typ()) {
			return types.Triv, c.fail(spanOf(x), errors.ReasonSubtypeViolation, "case body type %s is not a subtype of annotation %s", arm.Body.Typ(), x.Typ())
		}
		eff = types.Lub(eff, arm.Body.Eff())
	}
	return eff, nil
}

func (c *Checker) checkLoop(ctx types.Context, x *ir.LoopE) (types.Effect, error) {
	if err := c.checkExpr(ctx, x.Body); err != nil {
		return types.Triv, err
	}
	if !types.Subtype(x.Body.Typ(), &types.Tuple{}) {
		return types.Triv, c.fail(spanOf(x), errors.ReasonSubtypeViolation, "loop body must have unit type")
	}
	if !types.Subtype(types.Non{}, x.Typ()) {
		return types.Triv, c.fail(spanOf(x), errors.ReasonInvariantBroken, "LoopE must be Non-typed")
	}
	return x.Body.Eff(), nil
}

func (c *Checker) checkLabel(ctx types.Context, x *ir.LabelE) (types.Effect, error) {
	labelCtx := ctx.WithLabel(x.Label, x.LabelType)
	if err := c.checkExpr(labelCtx, x.Body); err != nil {
		return types.Triv, err
	}
	if !types.Subtype(x.Body.Typ(), x.LabelType) {
		return types.Triv, c.fail(spanOf(x), errors.ReasonSubtypeViolation, "label body type %s is not a subtype of label type %s", x.Body.Typ(), x.LabelType)
	}
	if !types.Subtype(x.LabelType, x.Typ()) {
		return types.Triv, c.fail(spanOf(x), errors.ReasonSubtypeViolation, "label type %s is not a subtype of annotation %s", x.LabelType, x.Typ())
	}
	return x.Body.Eff(), nil
}

func (c *Checker) checkBreak(ctx types.Context, x *ir.BreakE) (types.Effect, error) {
	labelTyp, ok := ctx.Labels.Lookup(x.Label)
	if !ok {
		return types.Triv, c.fail(spanOf(x), errors.ReasonScopeViolation, "label %q is not in scope", x.Label)
	}
	if err := c.checkExpr(ctx, x.Arg); err != nil {
		return types.Triv, err
	}
	if !types.Subtype(x.Arg.Typ(), labelTyp) {
		return types.Triv, c.fail(spanOf(x), errors.ReasonSubtypeViolation, "break value type %s is not a subtype of label type %s", x.Arg.Typ(), labelTyp)
	}
	if !types.Subtype(types.Non{}, x.Typ()) {
		return types.Triv, c.fail(spanOf(x), errors.ReasonInvariantBroken, "BreakE must be Non-typed")
	}
	return x.Arg.Eff(), nil
}

func (c *Checker) checkRet(ctx types.Context, x *ir.RetE) (types.Effect, error) {
	if ctx.Return == nil {
		return types.Triv, c.fail(spanOf(x), errors.ReasonScopeViolation, "return outside a function body")
	}
	if err := c.checkExpr(ctx, x.Arg); err != nil {
		return types.Triv, err
	}
	if !types.Subtype(x.Arg.Typ(), *ctx.Return) {
		return types.Triv, c.fail(spanOf(x), errors.ReasonSubtypeViolation, "return value type %s is not a subtype of return slot %s", x.Arg.Typ(), *ctx.Return)
	}
	if !types.Subtype(types.Non{}, x.Typ()) {
		return types.Triv, c.fail(spanOf(x), errors.ReasonInvariantBroken, "RetE must be Non-typed")
	}
	return x.Arg.Eff(), nil
}

func (c *Checker) checkAsync(ctx types.Context, x *ir.AsyncE) error {
	if !ctx.Flavor.HasAsyncTyp {
		return c.fail(spanOf(x), errors.ReasonPrecondition, "async block used after has_async_typ was cleared")
	}
	bodyCtx := ctx.WithAsync(x.Body.Typ())
	if err := c.checkExpr(bodyCtx, x.Body); err != nil {
		return err
	}
	want := &types.Async{Result: x.Body.Typ()}
	if !types.Subtype(want, x.Typ()) {
		return c.fail(spanOf(x), errors.ReasonSubtypeViolation, "async type %s is not a subtype of annotation %s", want, x.Typ())
	}
	return nil
}

func (c *Checker) checkAwait(ctx types.Context, x *ir.AwaitE) (types.Effect, error) {
	if !ctx.Flavor.HasAwait {
		return types.Triv, c.fail(spanOf(x), errors.ReasonPrecondition, "await used after has_await was cleared")
	}
	if !ctx.Async {
		return types.Triv, c.fail(spanOf(x), errors.ReasonScopeViolation, "await outside an async block")
	}
	if err := c.checkExpr(ctx, x.Arg); err != nil {
		return types.Triv, err
	}
	result, err := types.AsAsyncSub(x.Arg.Typ())
	if err != nil {
		return types.Triv, c.fail(spanOf(x), errors.ReasonKindMismatch, "%s", err)
	}
	if !types.Subtype(result, x.Typ()) {
		return types.Triv, c.fail(spanOf(x), errors.ReasonSubtypeViolation, "await result type %s is not a subtype of annotation %s", result, x.Typ())
	}
	return types.Lub(x.Arg.Eff(), types.Await), nil
}

func (c *Checker) checkActor(ctx types.Context, x *ir.ActorE) error {
	actorCtx := ctx.WithActor()
	newScope, err := gather(actorCtx.Scope, x.Decls)
	if err != nil {
		return c.fail(spanOf(x), errors.ReasonDuplicate, "%s", err)
	}
	bodyCtx := actorCtx.WithScope(newScope)
	if err := c.checkDecls(bodyCtx, x.Decls); err != nil {
		return err
	}
	fields := make([]types.Field, len(x.Fields))
	for i, f := range x.Fields {
		if err := c.checkExpr(bodyCtx, f.Value); err != nil {
			return err
		}
		fields[i] = types.Field{Label: f.Label, Type: f.Value.Typ()}
	}
	want := &types.Object{Sort: types.SortActor, Fields: fields}
	if !types.Subtype(want, x.Typ()) {
		return c.fail(spanOf(x), errors.ReasonSubtypeViolation, "actor type %s is not a subtype of annotation %s", want, x.Typ())
	}
	return nil
}

func (c *Checker) checkObj(ctx types.Context, x *ir.ObjE) (types.Effect, error) {
	eff := types.Triv
	fields := make([]types.Field, len(x.Fields))
	for i, f := range x.Fields {
		if err := c.checkExpr(ctx, f.Value); err != nil {
			return types.Triv, err
		}
		fields[i] = types.Field{Label: f.Label, Type: f.Value.Typ()}
		eff = types.Lub(eff, f.Value.Eff())
	}
	want := &types.Object{Sort: x.Sort, Fields: fields}
	if !types.Subtype(want, x.Typ()) {
		return types.Triv, c.fail(spanOf(x), errors.ReasonSubtypeViolation, "object type %s is not a subtype of annotation %s", want, x.Typ())
	}
	return eff, nil
}
