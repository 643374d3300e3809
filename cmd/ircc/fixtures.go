package main

import (
	"github.com/sunholo/actor-ir/internal/ast"
	"github.com/sunholo/actor-ir/internal/ir"
	"github.com/sunholo/actor-ir/internal/types"
)

// fixture bundles a fresh counter with the program it minted, since a
// program's node IDs are only meaningful alongside the counter that
// produced them (a second pass over the same program must keep minting
// from where the first left off).
type fixture struct {
	name  string
	doc   string
	build func() (*ir.Counter, *ir.Program)
}

var fixtures = []fixture{
	{"tail-recursion", "self tail-recursive loop(n), spec scenario S1", buildTailRecursionFixture},
	{"async-await", "async { await p; 1 + 2 }, spec scenario S3", buildAsyncAwaitFixture},
	{"partial-switch", "a two-constructor switch covering only one arm", buildPartialSwitchFixture},
}

func lookupFixture(name string) (fixture, bool) {
	for _, f := range fixtures {
		if f.name == name {
			return f, true
		}
	}
	return fixture{}, false
}

func natTyp() *types.Prim { return &types.Prim{Kind: types.PNat} }

func asyncNatTyp() *types.Async { return &types.Async{Result: natTyp()} }

func litNat(c *ir.Counter, n uint64) *ir.Lit {
	return &ir.Lit{Base: ir.Base{NodeID: c.NextNode(), Span: ast.NoPos, Type: natTyp(), Effect: types.Triv}, Kind: ir.LitNat, Value: n}
}

func varOf(c *ir.Counter, name string, t types.Type) *ir.Var {
	return &ir.Var{Base: ir.Base{NodeID: c.NextNode(), Span: ast.NoPos, Type: t, Effect: types.Triv}, Name: name}
}

func wrapLetProgram(decls ...ir.Decl) *ir.Program {
	return &ir.Program{Flavor: types.DefaultFlavor(), DeclGroups: [][]ir.Decl{decls}}
}

// buildTailRecursionFixture builds `func loop(n) { if n == 0 { 0 } else {
// loop(n) } }`.
func buildTailRecursionFixture() (*ir.Counter, *ir.Program) {
	c := ir.NewCounter()
	fnTyp := &types.Func{Sort: types.Local, Control: types.Returns, Domain: []types.Type{natTyp()}, Codomain: []types.Type{natTyp()}}
	selfVar := &ir.Var{Base: ir.Base{NodeID: c.NextNode(), Span: ast.NoPos, Type: fnTyp, Effect: types.Triv}, Name: "loop"}
	nRead := varOf(c, "n", natTyp())
	cond := &ir.RelOp{Base: ir.Base{NodeID: c.NextNode(), Span: ast.NoPos, Type: &types.Prim{Kind: types.PBool}, Effect: types.Triv}, Op: "==", OperandType: natTyp(), Left: nRead, Right: litNat(c, 0)}
	call := &ir.CallE{Base: ir.Base{NodeID: c.NextNode(), Span: ast.NoPos, Type: natTyp(), Effect: types.Triv}, Func: selfVar, TypeArgs: nil, Arg: nRead}
	ifE := &ir.IfE{Base: ir.Base{NodeID: c.NextNode(), Span: ast.NoPos, Type: natTyp(), Effect: types.Triv}, Cond: cond, Then: litNat(c, 0), Else: call}
	fn := &ir.FuncE{
		Base:     ir.Base{NodeID: c.NextNode(), Span: ast.NoPos, Type: fnTyp, Effect: types.Triv},
		Sort:     types.Local,
		Control:  types.Returns,
		Params:   []ir.Param{{Name: "n", Type: natTyp()}},
		RetTypes: []types.Type{natTyp()},
		Body:     ifE,
	}
	prog := wrapLetProgram(&ir.LetDecl{Pattern: &ir.VarPat{Type: fnTyp, Name: "loop"}, Value: fn})
	return c, prog
}

// buildAsyncAwaitFixture builds `func wait(p) { async { await p; 1 + 2 } }`.
func buildAsyncAwaitFixture() (*ir.Counter, *ir.Program) {
	c := ir.NewCounter()
	pParam := ir.Param{Name: "p", Type: asyncNatTyp()}
	pVar := varOf(c, "p", asyncNatTyp())
	awaitE, err := ir.AwaitExpr(c, ast.NoPos, pVar)
	if err != nil {
		panic(err)
	}
	sum := &ir.BinOp{Base: ir.Base{NodeID: c.NextNode(), Span: ast.NoPos, Type: natTyp(), Effect: types.Triv}, Op: "+", OperandType: natTyp(), Left: litNat(c, 1), Right: litNat(c, 2)}
	block := ir.LetExpr(c, ast.NoPos, &ir.WildcardPat{Type: natTyp()}, awaitE, sum)
	asyncE := ir.AsyncExpr(c, ast.NoPos, block)
	fn := ir.FuncExpr(c, ast.NoPos, types.Local, types.Returns, nil, []ir.Param{pParam}, []types.Type{asyncNatTyp()}, asyncE)
	prog := wrapLetProgram(&ir.LetDecl{Pattern: &ir.VarPat{Type: fn.Typ(), Name: "wait"}, Value: fn})
	return c, prog
}

// buildPartialSwitchFixture builds a switch over a two-constructor
// Variant that covers only one of its arms.
func buildPartialSwitchFixture() (*ir.Counter, *ir.Program) {
	c := ir.NewCounter()
	rTyp := &types.Variant{Arms: []types.VariantArm{
		{Ctor: "Err", Type: &types.Prim{Kind: types.PText}},
		{Ctor: "Ok", Type: natTyp()},
	}}
	rVar := varOf(c, "r", rTyp)
	arm := ir.CaseArm{
		Pattern: &ir.VariantPat{Type: rTyp, Ctor: "Ok", Arg: &ir.VarPat{Type: natTyp(), Name: "n"}},
		Body:    varOf(c, "n", natTyp()),
	}
	sw := &ir.SwitchE{Base: ir.Base{NodeID: c.NextNode(), Span: ast.NoPos, Type: natTyp(), Effect: types.Triv}, Scrutinee: rVar, Arms: []ir.CaseArm{arm}}
	fnTyp := &types.Func{Sort: types.Local, Control: types.Returns, Domain: []types.Type{rTyp}, Codomain: []types.Type{natTyp()}}
	fn := &ir.FuncE{
		Base:     ir.Base{NodeID: c.NextNode(), Span: ast.NoPos, Type: fnTyp, Effect: types.Triv},
		Sort:     types.Local,
		Control:  types.Returns,
		Params:   []ir.Param{{Name: "r", Type: rTyp}},
		RetTypes: []types.Type{natTyp()},
		Body:     sw,
	}
	prog := wrapLetProgram(&ir.LetDecl{Pattern: &ir.VarPat{Type: fnTyp, Name: "unwrap"}, Value: fn})
	return c, prog
}
