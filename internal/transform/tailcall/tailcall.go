package tailcall

import (
	"github.com/sunholo/actor-ir/internal/ast"
	"github.com/sunholo/actor-ir/internal/ir"
	"github.com/sunholo/actor-ir/internal/types"
)

// funcInfo describes the innermost enclosing optimizable function (spec
// §4.4's traversal invariant): its name, its type-parameter binders (for
// the identity-instantiation check), a fresh mutable temporary per
// parameter, the back-edge label, and whether a qualifying self tail
// call was found in its body.
type funcInfo struct {
	name       string
	binds      []types.Bound
	paramTypes []types.Type
	tempNames  []string
	label      string
	detected   bool
}

// Transformer runs the optimizer over a single compilation unit, minting
// fresh names and node IDs from c.
type Transformer struct {
	c   *ir.Counter
	cfg Config
}

// New returns a Transformer using c for fresh names and node IDs.
func New(c *ir.Counter, cfg Config) *Transformer {
	return &Transformer{c: c, cfg: cfg}
}

// Transform rewrites prog, replacing every locally bound function with a
// qualifying self tail call by its loop form (spec §4.4's public
// contract): same type and effect annotations everywhere, same
// observable semantics.
func (t *Transformer) Transform(prog *ir.Program) *ir.Program {
	groups := make([][]ir.Decl, len(prog.DeclGroups))
	for i, g := range prog.DeclGroups {
		groups[i] = t.rewriteDecls(nil, g)
	}
	fields := prog.ActorFields
	if t.cfg.DescendActors {
		fields = t.rewriteFields(fields)
	}
	return &ir.Program{Args: prog.Args, DeclGroups: groups, ActorFields: fields, Flavor: prog.Flavor}
}

func (t *Transformer) rewriteFields(fields []ir.ActorField) []ir.ActorField {
	out := make([]ir.ActorField, len(fields))
	for i, f := range fields {
		out[i] = ir.ActorField{Label: f.Label, Value: t.rewriteExpr(true, nil, f.Value)}
	}
	return out
}

// patternNames collects every variable name p binds, used only to detect
// when a declaration shadows the currently tracked function name (spec
// §4.4: "any local binder ... that shadows info.name clears info").
func patternNames(p ir.Pattern) []string {
	switch x := p.(type) {
	case *ir.VarPat:
		return []string{x.Name}
	case *ir.TuplePat:
		var out []string
		for _, e := range x.Elems {
			out = append(out, patternNames(e)...)
		}
		return out
	case *ir.ObjPat:
		var out []string
		for _, f := range x.Fields {
			out = append(out, patternNames(f.Pat)...)
		}
		return out
	case *ir.OptPat:
		if x.Arg == nil {
			return nil
		}
		return patternNames(x.Arg)
	case *ir.VariantPat:
		return patternNames(x.Arg)
	case *ir.AltPat:
		// Alternatives bind nothing (the checker rejects any that do).
		return nil
	default:
		return nil
	}
}

func clearedByNames(info *funcInfo, names []string) *funcInfo {
	if info == nil {
		return nil
	}
	for _, n := range names {
		if n == info.name {
			return nil
		}
	}
	return info
}

// rewriteDecls processes one declaration list (a BlockE's Decls, an
// ActorE's Decls, or a top-level declaration group): each value
// expression is checked in non-tail position (spec §4.4: "block
// declarations" is listed among the non-tail-position contexts), and a
// `let f = func...` binding is offered to optimizeFunc. info is cleared
// for every later declaration once a sibling shadows its name.
func (t *Transformer) rewriteDecls(info *funcInfo, decls []ir.Decl) []ir.Decl {
	out := make([]ir.Decl, len(decls))
	for i, d := range decls {
		switch x := d.(type) {
		case *ir.LetDecl:
			if vp, ok := x.Pattern.(*ir.VarPat); ok {
				if fn, ok := x.Value.(*ir.FuncE); ok {
					out[i] = &ir.LetDecl{Pattern: x.Pattern, Value: t.optimizeFunc(vp.Name, fn)}
					info = clearedByNames(info, patternNames(x.Pattern))
					continue
				}
			}
			out[i] = &ir.LetDecl{Pattern: x.Pattern, Value: t.rewriteExpr(false, info, x.Value)}
			info = clearedByNames(info, patternNames(x.Pattern))
		case *ir.VarDecl:
			out[i] = &ir.VarDecl{Name: x.Name, Value: t.rewriteExpr(false, info, x.Value)}
			info = clearedByNames(info, []string{x.Name})
		case *ir.DeclareD:
			out[i] = x
			info = clearedByNames(info, []string{x.Name})
		case *ir.DefineD:
			out[i] = &ir.DefineD{Name: x.Name, Mut: x.Mut, Value: t.rewriteExpr(false, info, x.Value)}
		case *ir.TypeDecl:
			out[i] = x
		default:
			out[i] = x
		}
	}
	return out
}

// rewriteExpr is the tail_pos/info-threading recursive walk (spec §4.4).
// Every branch that is not syntactically a tail position recurses with
// tailPos=false; the branches spec §4.4 names as tail-preserving recurse
// with tailPos unchanged.
func (t *Transformer) rewriteExpr(tailPos bool, info *funcInfo, e ir.Expr) ir.Expr {
	switch x := e.(type) {
	case *ir.Lit, *ir.Var, *ir.PrimOp:
		return e
	case *ir.UnOp:
		return &ir.UnOp{Base: x.Base, Op: x.Op, OperandType: x.OperandType, Arg: t.rewriteExpr(false, info, x.Arg)}
	case *ir.BinOp:
		return &ir.BinOp{Base: x.Base, Op: x.Op, OperandType: x.OperandType, Left: t.rewriteExpr(false, info, x.Left), Right: t.rewriteExpr(false, info, x.Right)}
	case *ir.RelOp:
		return &ir.RelOp{Base: x.Base, Op: x.Op, OperandType: x.OperandType, Left: t.rewriteExpr(false, info, x.Left), Right: t.rewriteExpr(false, info, x.Right)}
	case *ir.ShowOp:
		return &ir.ShowOp{Base: x.Base, OperandType: x.OperandType, Arg: t.rewriteExpr(false, info, x.Arg)}
	case *ir.TupleE:
		elems := make([]ir.Expr, len(x.Elems))
		for i, el := range x.Elems {
			elems[i] = t.rewriteExpr(false, info, el)
		}
		return &ir.TupleE{Base: x.Base, Elems: elems}
	case *ir.ProjE:
		return &ir.ProjE{Base: x.Base, Tuple: t.rewriteExpr(false, info, x.Tuple), Index: x.Index}
	case *ir.OptE:
		if x.Arg == nil {
			return x
		}
		return &ir.OptE{Base: x.Base, Arg: t.rewriteExpr(false, info, x.Arg)}
	case *ir.VariantE:
		return &ir.VariantE{Base: x.Base, Ctor: x.Ctor, Arg: t.rewriteExpr(false, info, x.Arg)}
	case *ir.DotE:
		return &ir.DotE{Base: x.Base, Record: t.rewriteExpr(false, info, x.Record), Field: x.Field}
	case *ir.ActorDotE:
		return &ir.ActorDotE{Base: x.Base, Actor: t.rewriteExpr(false, info, x.Actor), Field: x.Field}
	case *ir.ArrayE:
		elems := make([]ir.Expr, len(x.Elems))
		for i, el := range x.Elems {
			elems[i] = t.rewriteExpr(false, info, el)
		}
		return &ir.ArrayE{Base: x.Base, Mut: x.Mut, Elems: elems}
	case *ir.IdxE:
		return &ir.IdxE{Base: x.Base, Array: t.rewriteExpr(false, info, x.Array), Index: t.rewriteExpr(false, info, x.Index)}
	case *ir.AssignE:
		return &ir.AssignE{Base: x.Base, Target: t.rewriteExpr(false, info, x.Target), Source: t.rewriteExpr(false, info, x.Source)}
	case *ir.FuncE:
		return t.optimizeFunc("", x)
	case *ir.CallE:
		if t.isSelfTailCall(tailPos, info, x) {
			return t.rewriteSelfCall(info, x)
		}
		return &ir.CallE{Base: x.Base, Func: t.rewriteExpr(false, info, x.Func), TypeArgs: x.TypeArgs, Arg: t.rewriteExpr(false, info, x.Arg)}
	case *ir.BlockE:
		newInfo := info
		decls := make([]ir.Decl, len(x.Decls))
		for i, d := range x.Decls {
			rewritten := t.rewriteDecls(newInfo, []ir.Decl{d})
			decls[i] = rewritten[0]
			newInfo = clearedByNames(newInfo, declaredNames(d))
		}
		return &ir.BlockE{Base: x.Base, Decls: decls, Result: t.rewriteExpr(tailPos, newInfo, x.Result)}
	case *ir.IfE:
		var els ir.Expr
		if x.Else != nil {
			els = t.rewriteExpr(tailPos, info, x.Else)
		}
		return &ir.IfE{Base: x.Base, Cond: t.rewriteExpr(false, info, x.Cond), Then: t.rewriteExpr(tailPos, info, x.Then), Else: els}
	case *ir.SwitchE:
		arms := make([]ir.CaseArm, len(x.Arms))
		for i, a := range x.Arms {
			armInfo := clearedByNames(info, patternNames(a.Pattern))
			arms[i] = ir.CaseArm{Pattern: a.Pattern, Body: t.rewriteExpr(tailPos, armInfo, a.Body)}
		}
		return &ir.SwitchE{Base: x.Base, Scrutinee: t.rewriteExpr(false, info, x.Scrutinee), Arms: arms}
	case *ir.LoopE:
		return &ir.LoopE{Base: x.Base, Body: t.rewriteExpr(false, info, x.Body)}
	case *ir.LabelE:
		bodyInfo := clearedByNames(info, []string{x.Label})
		return &ir.LabelE{Base: x.Base, Label: x.Label, LabelType: x.LabelType, Body: t.rewriteExpr(false, bodyInfo, x.Body)}
	case *ir.BreakE:
		return &ir.BreakE{Base: x.Base, Label: x.Label, Arg: t.rewriteExpr(false, info, x.Arg)}
	case *ir.RetE:
		return &ir.RetE{Base: x.Base, Arg: t.rewriteExpr(true, info, x.Arg)}
	case *ir.AsyncE:
		// Entering async suspends body's evaluation to a later
		// continuation; a self tail call from the enclosing function
		// could never be observed as a tail call once CPS-converted, so
		// this is treated as a function-body-like boundary: info clears,
		// and the body is its own (trivial) tail position.
		return &ir.AsyncE{Base: x.Base, Body: t.rewriteExpr(true, nil, x.Body)}
	case *ir.AwaitE:
		return &ir.AwaitE{Base: x.Base, Arg: t.rewriteExpr(false, info, x.Arg)}
	case *ir.AssertE:
		return &ir.AssertE{Base: x.Base, Cond: t.rewriteExpr(false, info, x.Cond)}
	case *ir.ActorE:
		if !t.cfg.DescendActors {
			return x
		}
		return &ir.ActorE{Base: x.Base, Decls: t.rewriteDecls(nil, x.Decls), Fields: t.rewriteFields(x.Fields)}
	case *ir.ObjE:
		fields := make([]ir.ObjField, len(x.Fields))
		for i, f := range x.Fields {
			fields[i] = ir.ObjField{Label: f.Label, Value: t.rewriteExpr(false, info, f.Value)}
		}
		return &ir.ObjE{Base: x.Base, Sort: x.Sort, Fields: fields}
	default:
		return e
	}
}

func declaredNames(d ir.Decl) []string {
	switch x := d.(type) {
	case *ir.LetDecl:
		return patternNames(x.Pattern)
	case *ir.VarDecl:
		return []string{x.Name}
	case *ir.DeclareD:
		return []string{x.Name}
	default:
		return nil
	}
}

// isSelfTailCall reports whether call is a qualifying self tail call
// under (tailPos, info): it must be in tail position, inside the body of
// the function it calls, referenced by a bare variable of that exact
// name, and instantiated at exactly the enclosing function's own
// type-parameter list (spec §4.4: "a conservative same-shape check is
// sufficient").
func (t *Transformer) isSelfTailCall(tailPos bool, info *funcInfo, call *ir.CallE) bool {
	if !tailPos || info == nil {
		return false
	}
	v, ok := call.Func.(*ir.Var)
	if !ok || v.Name != info.name {
		return false
	}
	if len(call.TypeArgs) != len(info.binds) {
		return false
	}
	for i, a := range call.TypeArgs {
		bv, ok := a.(*types.BoundVar)
		if !ok || bv.Index != i {
			return false
		}
	}
	return true
}

// rewriteSelfCall replaces a qualifying self tail call with the
// assign-then-break sequence spec §4.4 describes, and marks info as
// having found one.
func (t *Transformer) rewriteSelfCall(info *funcInfo, call *ir.CallE) ir.Expr {
	info.detected = true
	pos := call.Pos()
	arg := t.rewriteExpr(false, info, call.Arg)
	decls := t.assignEs(info, pos, arg)

	unit := &ir.TupleE{Base: ir.Base{NodeID: t.c.NextNode(), Span: pos, Type: &types.Tuple{}, Effect: types.Triv}}
	brk := &ir.BreakE{Base: ir.Base{NodeID: t.c.NextNode(), Span: pos, Type: types.Non{}, Effect: types.Triv}, Label: info.label, Arg: unit}

	eff := types.Lub(call.Func.Eff(), arg.Eff())
	return &ir.BlockE{
		Base:   ir.Base{NodeID: t.c.NextNode(), Span: pos, Type: types.Non{}, Effect: eff},
		Decls:  decls,
		Result: brk,
	}
}

func readVar(c *ir.Counter, pos ast.Pos, name string, t types.Type) *ir.Var {
	return &ir.Var{Base: ir.Base{NodeID: c.NextNode(), Span: pos, Type: t, Effect: types.Triv}, Name: name}
}

func mutTarget(c *ir.Counter, pos ast.Pos, name string, elem types.Type) *ir.Var {
	return &ir.Var{Base: ir.Base{NodeID: c.NextNode(), Span: pos, Type: &types.Mutable{Elem: elem}, Effect: types.Triv}, Name: name}
}

func wildcardLet(pat types.Type, value ir.Expr) ir.Decl {
	return &ir.LetDecl{Pattern: &ir.WildcardPat{Type: pat}, Value: value}
}

// assignEs builds the declaration list that stores argExpr's components
// into info's fresh temporaries (spec §4.4): a direct assignment for a
// single parameter, parallel component assignments when argExpr is
// syntactically a tuple literal, and otherwise a fresh whole-argument
// temporary projected component-by-component (avoiding an aliasing
// hazard where a later projection would otherwise re-read an already
// reassigned temp).
func (t *Transformer) assignEs(info *funcInfo, pos ast.Pos, argExpr ir.Expr) []ir.Decl {
	n := len(info.tempNames)
	if n == 1 {
		target := mutTarget(t.c, pos, info.tempNames[0], info.paramTypes[0])
		assign := ir.AssignExpr(t.c, pos, target, argExpr)
		return []ir.Decl{wildcardLet(assign.Typ(), assign)}
	}
	if tup, ok := argExpr.(*ir.TupleE); ok && len(tup.Elems) == n {
		decls := make([]ir.Decl, n)
		for i, el := range tup.Elems {
			target := mutTarget(t.c, pos, info.tempNames[i], info.paramTypes[i])
			assign := ir.AssignExpr(t.c, pos, target, el)
			decls[i] = wildcardLet(assign.Typ(), assign)
		}
		return decls
	}
	holder := t.c.FreshName("args")
	decls := []ir.Decl{&ir.LetDecl{Pattern: &ir.VarPat{Type: argExpr.Typ(), Name: holder}, Value: argExpr}}
	for i := 0; i < n; i++ {
		proj, err := ir.Project(t.c, pos, readVar(t.c, pos, holder, argExpr.Typ()), i)
		if err != nil {
			// The call's argument type is guaranteed (by the checker
			// that already accepted this program) to have at least n
			// components; a mismatch here is a bug in an earlier pass.
			panic(err)
		}
		target := mutTarget(t.c, pos, info.tempNames[i], info.paramTypes[i])
		assign := ir.AssignExpr(t.c, pos, target, proj)
		decls = append(decls, wildcardLet(assign.Typ(), assign))
	}
	return decls
}

// paramPattern builds the `let args = (immut temp1, ...)` pattern
// re-binding the original parameter names to fresh reads of the loop's
// temporaries (spec §4.4).
func paramPattern(params []ir.Param) ir.Pattern {
	if len(params) == 1 {
		return &ir.VarPat{Type: params[0].Type, Name: params[0].Name}
	}
	ts := make([]types.Type, len(params))
	elems := make([]ir.Pattern, len(params))
	for i, p := range params {
		ts[i] = p.Type
		elems[i] = &ir.VarPat{Type: p.Type, Name: p.Name}
	}
	return &ir.TuplePat{Type: &types.Tuple{Elems: ts}, Elems: elems}
}

func paramValue(c *ir.Counter, pos ast.Pos, params []ir.Param, tempNames []string) ir.Expr {
	if len(params) == 1 {
		return readVar(c, pos, tempNames[0], params[0].Type)
	}
	reads := make([]ir.Expr, len(params))
	for i, p := range params {
		reads[i] = readVar(c, pos, tempNames[i], p.Type)
	}
	return ir.TupleExpr(c, pos, reads)
}

// optimizeFunc processes fn's body under a fresh funcInfo named name
// (empty for an anonymous function literal, which can therefore never
// match a self tail call) and, if a qualifying self tail call was found,
// rewrites fn into the loop form (spec §4.4). Otherwise fn is returned
// with its body recursively processed (so nested locally bound functions
// still get a chance to optimize), unchanged in every other respect.
func (t *Transformer) optimizeFunc(name string, fn *ir.FuncE) *ir.FuncE {
	tempNames := make([]string, len(fn.Params))
	paramTypes := make([]types.Type, len(fn.Params))
	for i, p := range fn.Params {
		tempNames[i] = t.c.FreshName(p.Name + "$loop")
		paramTypes[i] = p.Type
	}
	info := &funcInfo{
		name:       name,
		binds:      fn.Binds,
		paramTypes: paramTypes,
		tempNames:  tempNames,
		label:      t.c.FreshName(name + "$tailcall"),
	}

	newBody := t.rewriteExpr(true, info, fn.Body)

	if !info.detected {
		return &ir.FuncE{Base: fn.Base, Sort: fn.Sort, Control: fn.Control, Binds: fn.Binds, Params: fn.Params, RetTypes: fn.RetTypes, Body: newBody}
	}

	pos := fn.Pos()
	freshParams := make([]ir.Param, len(fn.Params))
	for i, p := range fn.Params {
		freshParams[i] = ir.Param{Name: t.c.FreshName(p.Name), Type: p.Type}
	}

	var initDecls []ir.Decl
	for i, p := range freshParams {
		initDecls = append(initDecls, &ir.VarDecl{
			Name:  tempNames[i],
			Value: readVar(t.c, pos, p.Name, p.Type),
		})
	}

	retE := &ir.RetE{Base: ir.Base{NodeID: t.c.NextNode(), Span: pos, Type: types.Non{}, Effect: newBody.Eff()}, Arg: newBody}
	labelBody := &ir.BlockE{
		Base:  ir.Base{NodeID: t.c.NextNode(), Span: pos, Type: types.Non{}, Effect: retE.Eff()},
		Decls: []ir.Decl{&ir.LetDecl{Pattern: paramPattern(fn.Params), Value: paramValue(t.c, pos, fn.Params, tempNames)}},
		Result: retE,
	}
	label := &ir.LabelE{
		Base:      ir.Base{NodeID: t.c.NextNode(), Span: pos, Type: &types.Tuple{}, Effect: types.Triv},
		Label:     info.label,
		LabelType: &types.Tuple{},
		Body:      labelBody,
	}
	loop := &ir.LoopE{Base: ir.Base{NodeID: t.c.NextNode(), Span: pos, Type: types.Non{}, Effect: types.Triv}, Body: label}

	newBodyOuter := &ir.BlockE{
		Base:   ir.Base{NodeID: t.c.NextNode(), Span: pos, Type: types.Seq(fn.RetTypes), Effect: types.Triv},
		Decls:  initDecls,
		Result: loop,
	}

	return &ir.FuncE{
		Base:     fn.Base,
		Sort:     fn.Sort,
		Control:  fn.Control,
		Binds:    fn.Binds,
		Params:   freshParams,
		RetTypes: fn.RetTypes,
		Body:     newBodyOuter,
	}
}
