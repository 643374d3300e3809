// Package coverage implements the optional switch-exhaustiveness pass
// (spec §9, "Open question": the source has a commented-out coverage
// check for switch; this spec leaves it as a separate pass that runs
// before the checker). Where a SwitchE's pattern set does not cover
// every constructor of its scrutinee's Variant type, and no arm already
// catches everything, Transform appends an explicit trap arm so the
// checker never has to special-case partiality itself.
//
// Grounded on the teacher's internal/pipeline driver shape for a single
// exported Transform(*Program) *Program entry point (matching
// internal/transform/tailcall and internal/transform/await), and on
// spec §9's own description of the trap arm's shape: a wildcard pattern
// whose body is an "assert false"-shaped node.
package coverage

import (
	"github.com/sunholo/actor-ir/internal/ast"
	"github.com/sunholo/actor-ir/internal/ir"
	"github.com/sunholo/actor-ir/internal/types"
)

// Transformer runs the coverage pass over one compilation unit.
type Transformer struct {
	c *ir.Counter
}

// New returns a Transformer that mints fresh node IDs from c.
func New(c *ir.Counter) *Transformer {
	return &Transformer{c: c}
}

// Transform rewrites every declaration and actor field, inserting a trap
// arm into any non-exhaustive SwitchE found anywhere in the tree.
func (tr *Transformer) Transform(prog *ir.Program) *ir.Program {
	groups := make([][]ir.Decl, len(prog.DeclGroups))
	for i, g := range prog.DeclGroups {
		decls := make([]ir.Decl, len(g))
		for j, d := range g {
			decls[j] = tr.rewriteDecl(d)
		}
		groups[i] = decls
	}
	fields := make([]ir.ActorField, len(prog.ActorFields))
	for i, f := range prog.ActorFields {
		fields[i] = ir.ActorField{Label: f.Label, Value: tr.rewrite(f.Value)}
	}
	return &ir.Program{Args: prog.Args, DeclGroups: groups, ActorFields: fields, Flavor: prog.Flavor}
}

func (tr *Transformer) rewriteDecl(d ir.Decl) ir.Decl {
	switch x := d.(type) {
	case *ir.LetDecl:
		return &ir.LetDecl{Pattern: x.Pattern, Value: tr.rewrite(x.Value)}
	case *ir.VarDecl:
		return &ir.VarDecl{Name: x.Name, Value: tr.rewrite(x.Value)}
	default:
		return d
	}
}

// rewrite structurally recurses through e, rewriting any SwitchE it
// finds in place; every other node kind is reconstructed unchanged
// around its (possibly rewritten) children.
func (tr *Transformer) rewrite(e ir.Expr) ir.Expr {
	switch x := e.(type) {
	case *ir.Lit, *ir.Var, *ir.PrimOp:
		return e
	case *ir.UnOp:
		return &ir.UnOp{Base: x.Base, Op: x.Op, OperandType: x.OperandType, Arg: tr.rewrite(x.Arg)}
	case *ir.BinOp:
		return &ir.BinOp{Base: x.Base, Op: x.Op, OperandType: x.OperandType, Left: tr.rewrite(x.Left), Right: tr.rewrite(x.Right)}
	case *ir.RelOp:
		return &ir.RelOp{Base: x.Base, Op: x.Op, OperandType: x.OperandType, Left: tr.rewrite(x.Left), Right: tr.rewrite(x.Right)}
	case *ir.ShowOp:
		return &ir.ShowOp{Base: x.Base, OperandType: x.OperandType, Arg: tr.rewrite(x.Arg)}
	case *ir.TupleE:
		elems := make([]ir.Expr, len(x.Elems))
		for i, el := range x.Elems {
			elems[i] = tr.rewrite(el)
		}
		return &ir.TupleE{Base: x.Base, Elems: elems}
	case *ir.ProjE:
		return &ir.ProjE{Base: x.Base, Tuple: tr.rewrite(x.Tuple), Index: x.Index}
	case *ir.OptE:
		var arg ir.Expr
		if x.Arg != nil {
			arg = tr.rewrite(x.Arg)
		}
		return &ir.OptE{Base: x.Base, Arg: arg}
	case *ir.VariantE:
		return &ir.VariantE{Base: x.Base, Ctor: x.Ctor, Arg: tr.rewrite(x.Arg)}
	case *ir.DotE:
		return &ir.DotE{Base: x.Base, Record: tr.rewrite(x.Record), Field: x.Field}
	case *ir.ActorDotE:
		return &ir.ActorDotE{Base: x.Base, Actor: tr.rewrite(x.Actor), Field: x.Field}
	case *ir.ArrayE:
		elems := make([]ir.Expr, len(x.Elems))
		for i, el := range x.Elems {
			elems[i] = tr.rewrite(el)
		}
		return &ir.ArrayE{Base: x.Base, Mut: x.Mut, Elems: elems}
	case *ir.IdxE:
		return &ir.IdxE{Base: x.Base, Array: tr.rewrite(x.Array), Index: tr.rewrite(x.Index)}
	case *ir.AssignE:
		return &ir.AssignE{Base: x.Base, Target: tr.rewrite(x.Target), Source: tr.rewrite(x.Source)}
	case *ir.FuncE:
		return &ir.FuncE{Base: x.Base, Sort: x.Sort, Control: x.Control, Binds: x.Binds, Params: x.Params, RetTypes: x.RetTypes, Body: tr.rewrite(x.Body)}
	case *ir.CallE:
		return &ir.CallE{Base: x.Base, Func: tr.rewrite(x.Func), TypeArgs: x.TypeArgs, Arg: tr.rewrite(x.Arg)}
	case *ir.BlockE:
		decls := make([]ir.Decl, len(x.Decls))
		for i, d := range x.Decls {
			decls[i] = tr.rewriteDecl(d)
		}
		return &ir.BlockE{Base: x.Base, Decls: decls, Result: tr.rewrite(x.Result)}
	case *ir.IfE:
		var els ir.Expr
		if x.Else != nil {
			els = tr.rewrite(x.Else)
		}
		return &ir.IfE{Base: x.Base, Cond: tr.rewrite(x.Cond), Then: tr.rewrite(x.Then), Else: els}
	case *ir.SwitchE:
		return tr.rewriteSwitch(x)
	case *ir.LoopE:
		return &ir.LoopE{Base: x.Base, Body: tr.rewrite(x.Body)}
	case *ir.LabelE:
		return &ir.LabelE{Base: x.Base, Label: x.Label, LabelType: x.LabelType, Body: tr.rewrite(x.Body)}
	case *ir.BreakE:
		return &ir.BreakE{Base: x.Base, Label: x.Label, Arg: tr.rewrite(x.Arg)}
	case *ir.RetE:
		return &ir.RetE{Base: x.Base, Arg: tr.rewrite(x.Arg)}
	case *ir.AsyncE:
		return &ir.AsyncE{Base: x.Base, Body: tr.rewrite(x.Body)}
	case *ir.AwaitE:
		return &ir.AwaitE{Base: x.Base, Arg: tr.rewrite(x.Arg)}
	case *ir.AssertE:
		return &ir.AssertE{Base: x.Base, Cond: tr.rewrite(x.Cond)}
	case *ir.ActorE:
		decls := make([]ir.Decl, len(x.Decls))
		for i, d := range x.Decls {
			decls[i] = tr.rewriteDecl(d)
		}
		fields := make([]ir.ActorField, len(x.Fields))
		for i, f := range x.Fields {
			fields[i] = ir.ActorField{Label: f.Label, Value: tr.rewrite(f.Value)}
		}
		return &ir.ActorE{Base: x.Base, Decls: decls, Fields: fields}
	case *ir.ObjE:
		fields := make([]ir.ObjField, len(x.Fields))
		for i, f := range x.Fields {
			fields[i] = ir.ObjField{Label: f.Label, Value: tr.rewrite(f.Value)}
		}
		return &ir.ObjE{Base: x.Base, Sort: x.Sort, Fields: fields}
	default:
		return e
	}
}

// rewriteSwitch recurses into every arm's body, then appends a trap arm
// if the pattern set covering a Variant scrutinee is not already
// exhaustive.
func (tr *Transformer) rewriteSwitch(x *ir.SwitchE) ir.Expr {
	arms := make([]ir.CaseArm, len(x.Arms))
	for i, a := range x.Arms {
		arms[i] = ir.CaseArm{Pattern: a.Pattern, Body: tr.rewrite(a.Body)}
	}
	scrutinee := tr.rewrite(x.Scrutinee)
	if !needsTrap(arms, scrutinee.Typ()) {
		return &ir.SwitchE{Base: x.Base, Scrutinee: scrutinee, Arms: arms}
	}
	pos := x.Pos()
	trapArm := ir.CaseArm{
		Pattern: &ir.WildcardPat{Type: scrutinee.Typ()},
		Body:    trapExpr(tr.c, pos),
	}
	return &ir.SwitchE{Base: x.Base, Scrutinee: scrutinee, Arms: append(arms, trapArm)}
}

// trapExpr builds the "assert false"-shaped node spec §9 describes: a
// failing assertion typed Non, since control never falls through it to
// whatever the switch's own result type expects (the same bottom-type
// convention BreakE/RetE already use).
func trapExpr(c *ir.Counter, pos ast.Pos) ir.Expr {
	cond := &ir.Lit{Base: ir.Base{NodeID: c.NextNode(), Span: pos, Type: &types.Prim{Kind: types.PBool}, Effect: types.Triv}, Kind: ir.LitBool, Value: false}
	return &ir.AssertE{Base: ir.Base{NodeID: c.NextNode(), Span: pos, Type: types.Non{}, Effect: types.Triv}, Cond: cond}
}

// needsTrap reports whether arms fails to cover every constructor of
// scrutTyp. A Variant scrutinee is checked constructor-by-constructor,
// widened through any AltPat; a VariantPat counts its constructor as
// covered whatever its argument pattern is. A wildcard or var arm is
// treated as catching everything; any other pattern shape covers no
// constructor.
// Scrutinees whose type isn't a Variant (Bool, Option, Tuple, ...) are
// left untouched: exhaustiveness for those shapes isn't named by the
// spec's coverage note, which speaks specifically to the source's
// Variant-typed switch.
func needsTrap(arms []ir.CaseArm, scrutTyp types.Type) bool {
	vt, ok := scrutTyp.(*types.Variant)
	if !ok {
		return false
	}
	covered := make(map[string]bool, len(vt.Arms))
	for _, a := range arms {
		if patternIsCatchAll(a.Pattern) {
			return false
		}
		collectCtors(a.Pattern, covered)
	}
	for _, arm := range vt.Arms {
		if !covered[arm.Ctor] {
			return true
		}
	}
	return false
}

func patternIsCatchAll(p ir.Pattern) bool {
	switch p.(type) {
	case *ir.WildcardPat, *ir.VarPat:
		return true
	default:
		return false
	}
}

func collectCtors(p ir.Pattern, covered map[string]bool) {
	switch x := p.(type) {
	case *ir.VariantPat:
		covered[x.Ctor] = true
	case *ir.AltPat:
		for _, alt := range x.Alts {
			collectCtors(alt, covered)
		}
	}
}
