package await

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sunholo/actor-ir/internal/ast"
	"github.com/sunholo/actor-ir/internal/check"
	"github.com/sunholo/actor-ir/internal/ir"
	"github.com/sunholo/actor-ir/internal/types"
)

func natTyp() *types.Prim { return &types.Prim{Kind: types.PNat} }

func asyncNatTyp() *types.Async { return &types.Async{Result: natTyp()} }

func litNat(c *ir.Counter, n uint64) *ir.Lit {
	return &ir.Lit{Base: ir.Base{NodeID: c.NextNode(), Span: ast.NoPos, Type: natTyp(), Effect: types.Triv}, Kind: ir.LitNat, Value: n}
}

func varOf(c *ir.Counter, name string, t types.Type) *ir.Var {
	return &ir.Var{Base: ir.Base{NodeID: c.NextNode(), Span: ast.NoPos, Type: t, Effect: types.Triv}, Name: name}
}

// s3Func builds `func test(p) { async { await p; 1 + 2 } }` (spec's
// scenario S3), wrapped as a let-bound top-level declaration.
func s3Func(c *ir.Counter) (string, *ir.FuncE) {
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
	return "test", fn
}

// s4Func builds `func test(p, q) { async { let x = await p; let y = await
// q; x + y } }` (spec's scenario S4): two sequential awaits whose
// bindings must still be declared, in order, ahead of either initializer.
func s4Func(c *ir.Counter) (string, *ir.FuncE) {
	pParam := ir.Param{Name: "p", Type: asyncNatTyp()}
	qParam := ir.Param{Name: "q", Type: asyncNatTyp()}
	pVar := varOf(c, "p", asyncNatTyp())
	qVar := varOf(c, "q", asyncNatTyp())

	awaitP, err := ir.AwaitExpr(c, ast.NoPos, pVar)
	if err != nil {
		panic(err)
	}
	awaitQ, err := ir.AwaitExpr(c, ast.NoPos, qVar)
	if err != nil {
		panic(err)
	}

	xVar := varOf(c, "x", natTyp())
	yVar := varOf(c, "y", natTyp())
	sum := &ir.BinOp{Base: ir.Base{NodeID: c.NextNode(), Span: ast.NoPos, Type: natTyp(), Effect: types.Triv}, Op: "+", OperandType: natTyp(), Left: xVar, Right: yVar}

	block := ir.BlockExpr(c, ast.NoPos, []ir.Decl{
		&ir.LetDecl{Pattern: &ir.VarPat{Type: natTyp(), Name: "x"}, Value: awaitP},
		&ir.LetDecl{Pattern: &ir.VarPat{Type: natTyp(), Name: "y"}, Value: awaitQ},
	}, []types.Effect{awaitP.Eff(), awaitQ.Eff()}, sum)

	asyncE := ir.AsyncExpr(c, ast.NoPos, block)
	fn := ir.FuncExpr(c, ast.NoPos, types.Local, types.Returns, nil, []ir.Param{pParam, qParam}, []types.Type{asyncNatTyp()}, asyncE)
	return "test", fn
}

func wrapLetProgram(name string, fn *ir.FuncE) *ir.Program {
	group := []ir.Decl{&ir.LetDecl{Pattern: &ir.VarPat{Type: fn.Typ(), Name: name}, Value: fn}}
	return &ir.Program{Flavor: types.DefaultFlavor(), DeclGroups: [][]ir.Decl{group}}
}

// collect walks every expression reachable from e (through its own
// sub-expressions and any declarations a BlockE/ActorE carries),
// invoking visit on each node in pre-order.
func collect(e ir.Expr, visit func(ir.Expr)) {
	if e == nil {
		return
	}
	visit(e)
	switch x := e.(type) {
	case *ir.UnOp:
		collect(x.Arg, visit)
	case *ir.BinOp:
		collect(x.Left, visit)
		collect(x.Right, visit)
	case *ir.RelOp:
		collect(x.Left, visit)
		collect(x.Right, visit)
	case *ir.ShowOp:
		collect(x.Arg, visit)
	case *ir.TupleE:
		for _, el := range x.Elems {
			collect(el, visit)
		}
	case *ir.ProjE:
		collect(x.Tuple, visit)
	case *ir.OptE:
		collect(x.Arg, visit)
	case *ir.VariantE:
		collect(x.Arg, visit)
	case *ir.DotE:
		collect(x.Record, visit)
	case *ir.ActorDotE:
		collect(x.Actor, visit)
	case *ir.ArrayE:
		for _, el := range x.Elems {
			collect(el, visit)
		}
	case *ir.IdxE:
		collect(x.Array, visit)
		collect(x.Index, visit)
	case *ir.AssignE:
		collect(x.Target, visit)
		collect(x.Source, visit)
	case *ir.FuncE:
		collect(x.Body, visit)
	case *ir.CallE:
		collect(x.Func, visit)
		collect(x.Arg, visit)
	case *ir.BlockE:
		for _, d := range x.Decls {
			collectDecl(d, visit)
		}
		collect(x.Result, visit)
	case *ir.IfE:
		collect(x.Cond, visit)
		collect(x.Then, visit)
		collect(x.Else, visit)
	case *ir.SwitchE:
		collect(x.Scrutinee, visit)
		for _, a := range x.Arms {
			collect(a.Body, visit)
		}
	case *ir.LoopE:
		collect(x.Body, visit)
	case *ir.LabelE:
		collect(x.Body, visit)
	case *ir.BreakE:
		collect(x.Arg, visit)
	case *ir.RetE:
		collect(x.Arg, visit)
	case *ir.AsyncE:
		collect(x.Body, visit)
	case *ir.AwaitE:
		collect(x.Arg, visit)
	case *ir.AssertE:
		collect(x.Cond, visit)
	case *ir.ActorE:
		for _, d := range x.Decls {
			collectDecl(d, visit)
		}
		for _, f := range x.Fields {
			collect(f.Value, visit)
		}
	case *ir.ObjE:
		for _, f := range x.Fields {
			collect(f.Value, visit)
		}
	}
}

func collectDecl(d ir.Decl, visit func(ir.Expr)) {
	switch x := d.(type) {
	case *ir.LetDecl:
		collect(x.Value, visit)
	case *ir.VarDecl:
		collect(x.Value, visit)
	case *ir.DefineD:
		collect(x.Value, visit)
	}
}

func declareOrder(decls []ir.Decl) []string {
	var names []string
	for _, d := range decls {
		if dd, ok := d.(*ir.DeclareD); ok {
			names = append(names, dd.Name)
		}
	}
	return names
}

func TestTransformS3ErasesAwaitIntoPrimCalls(t *testing.T) {
	c := ir.NewCounter()
	name, fn := s3Func(c)
	prog := wrapLetProgram(name, fn)

	tr := New(c)
	out := tr.Transform(prog)
	assert.False(t, out.Flavor.HasAwait, "await erasure must clear Flavor.HasAwait")

	newFn := out.DeclGroups[0][0].(*ir.LetDecl).Value.(*ir.FuncE)
	var sawAsyncOrAwait bool
	collect(newFn.Body, func(e ir.Expr) {
		switch e.(type) {
		case *ir.AsyncE, *ir.AwaitE:
			sawAsyncOrAwait = true
		}
	})
	assert.False(t, sawAsyncOrAwait, "no AsyncE/AwaitE node may remain after the transform")

	call, ok := newFn.Body.(*ir.CallE)
	require.True(t, ok, "translated async body must be a call")
	primAsync, ok := call.Func.(*ir.PrimOp)
	require.True(t, ok)
	assert.Equal(t, "prim_async", primAsync.Name)

	innerFn, ok := call.Arg.(*ir.FuncE)
	require.True(t, ok, "prim_async's argument must be the reified k_ret closure")
	require.Len(t, innerFn.Params, 1)

	awaitCall, ok := innerFn.Body.(*ir.CallE)
	require.True(t, ok, "async body translates to a call on prim_await")
	primAwait, ok := awaitCall.Func.(*ir.PrimOp)
	require.True(t, ok)
	assert.Equal(t, "prim_await", primAwait.Name)

	argTuple, ok := awaitCall.Arg.(*ir.TupleE)
	require.True(t, ok)
	require.Len(t, argTuple.Elems, 2)
	promiseVar, ok := argTuple.Elems[0].(*ir.Var)
	require.True(t, ok)
	assert.Equal(t, "p", promiseVar.Name)

	kFn, ok := argTuple.Elems[1].(*ir.FuncE)
	require.True(t, ok, "await's continuation is reified inline, not let-bound, since it is used once")
	retCall, ok := kFn.Body.(*ir.CallE)
	require.True(t, ok)
	_, ok = retCall.Func.(*ir.Var)
	require.True(t, ok, "the inlined continuation calls k_ret with the block's trailing result")
	_, ok = retCall.Arg.(*ir.BinOp)
	assert.True(t, ok, "k_ret is invoked with 1 + 2")
}

func TestTransformS4DeclaresBeforeDefining(t *testing.T) {
	c := ir.NewCounter()
	name, fn := s4Func(c)
	prog := wrapLetProgram(name, fn)

	tr := New(c)
	out := tr.Transform(prog)

	newFn := out.DeclGroups[0][0].(*ir.LetDecl).Value.(*ir.FuncE)
	call := newFn.Body.(*ir.CallE)
	innerFn := call.Arg.(*ir.FuncE)

	block, ok := innerFn.Body.(*ir.BlockE)
	require.True(t, ok, "the async body is a block that declares x and y up front")
	assert.Equal(t, []string{"x", "y"}, declareOrder(block.Decls), "both bindings must be declared before either initializer runs")

	var promiseOrder []string
	collect(block.Result, func(e ir.Expr) {
		call, ok := e.(*ir.CallE)
		if !ok {
			return
		}
		prim, ok := call.Func.(*ir.PrimOp)
		if !ok || prim.Name != "prim_await" {
			return
		}
		tuple, ok := call.Arg.(*ir.TupleE)
		if !ok || len(tuple.Elems) != 2 {
			return
		}
		v, ok := tuple.Elems[0].(*ir.Var)
		if !ok {
			return
		}
		promiseOrder = append(promiseOrder, v.Name)
	})
	assert.Equal(t, []string{"p", "q"}, promiseOrder, "p must be awaited before q, preserving left-to-right evaluation order")
}

func TestTransformPreservesTypeCheckability(t *testing.T) {
	c := ir.NewCounter()
	name, fn := s3Func(c)
	prog := wrapLetProgram(name, fn)

	tr := New(c)
	out := tr.Transform(prog)

	checker := check.New("check")
	scope := types.NewScope()
	err := checker.CheckProgram(scope, out)
	assert.NoError(t, err, "the translated program must still type-check once Async/Await are no longer required")
}
