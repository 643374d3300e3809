package tailcall

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sunholo/actor-ir/internal/ast"
	"github.com/sunholo/actor-ir/internal/check"
	"github.com/sunholo/actor-ir/internal/ir"
	"github.com/sunholo/actor-ir/internal/types"
)

func natTyp() *types.Prim { return &types.Prim{Kind: types.PNat} }

func litNat(c *ir.Counter, n uint64) *ir.Lit {
	return &ir.Lit{Base: ir.Base{NodeID: c.NextNode(), Span: ast.NoPos, Type: natTyp(), Effect: types.Triv}, Kind: ir.LitNat, Value: n}
}

// selfCallFunc builds `func loop(n) { if n == 0 { 0 } else { loop(n) } }`: a
// single-parameter self-recursive function whose recursive call sits in
// tail position of the else branch (spec's scenario S1).
func selfCallFunc(c *ir.Counter) (string, *ir.FuncE) {
	name := "loop"
	param := ir.Param{Name: "n", Type: natTyp()}
	selfVar := &ir.Var{Base: ir.Base{NodeID: c.NextNode(), Span: ast.NoPos, Type: &types.Func{
		Sort: types.Local, Control: types.Returns, Domain: []types.Type{natTyp()}, Codomain: []types.Type{natTyp()},
	}, Effect: types.Triv}, Name: name}
	nRead := &ir.Var{Base: ir.Base{NodeID: c.NextNode(), Span: ast.NoPos, Type: natTyp(), Effect: types.Triv}, Name: "n"}
	cond := &ir.RelOp{Base: ir.Base{NodeID: c.NextNode(), Span: ast.NoPos, Type: &types.Prim{Kind: types.PBool}, Effect: types.Triv}, Op: "==", OperandType: natTyp(), Left: nRead, Right: litNat(c, 0)}
	call := &ir.CallE{Base: ir.Base{NodeID: c.NextNode(), Span: ast.NoPos, Type: natTyp(), Effect: types.Triv}, Func: selfVar, TypeArgs: nil, Arg: nRead}
	ifE := &ir.IfE{Base: ir.Base{NodeID: c.NextNode(), Span: ast.NoPos, Type: natTyp(), Effect: types.Triv}, Cond: cond, Then: litNat(c, 0), Else: call}
	fnTyp := &types.Func{Sort: types.Local, Control: types.Returns, Domain: []types.Type{natTyp()}, Codomain: []types.Type{natTyp()}}
	fn := &ir.FuncE{
		Base:     ir.Base{NodeID: c.NextNode(), Span: ast.NoPos, Type: fnTyp, Effect: types.Triv},
		Sort:     types.Local,
		Control:  types.Returns,
		Params:   []ir.Param{param},
		RetTypes: []types.Type{natTyp()},
		Body:     ifE,
	}
	return name, fn
}

func wrapLetProgram(name string, fn *ir.FuncE) *ir.Program {
	group := []ir.Decl{&ir.LetDecl{Pattern: &ir.VarPat{Type: fn.Typ(), Name: name}, Value: fn}}
	return &ir.Program{Flavor: types.DefaultFlavor(), DeclGroups: [][]ir.Decl{group}}
}

func TestTransformRewritesSelfTailCallIntoLoop(t *testing.T) {
	c := ir.NewCounter()
	name, fn := selfCallFunc(c)
	prog := wrapLetProgram(name, fn)

	tr := New(c, Config{})
	out := tr.Transform(prog)

	require.Len(t, out.DeclGroups, 1)
	require.Len(t, out.DeclGroups[0], 1)
	letDecl, ok := out.DeclGroups[0][0].(*ir.LetDecl)
	require.True(t, ok)
	newFn, ok := letDecl.Value.(*ir.FuncE)
	require.True(t, ok)

	block, ok := newFn.Body.(*ir.BlockE)
	require.True(t, ok, "optimized body must be a block initializing loop temporaries")
	require.Len(t, block.Decls, 1, "one VarDecl per parameter")
	_, ok = block.Decls[0].(*ir.VarDecl)
	assert.True(t, ok)

	loop, ok := block.Result.(*ir.LoopE)
	require.True(t, ok, "optimized body must end in a LoopE")
	label, ok := loop.Body.(*ir.LabelE)
	require.True(t, ok, "loop body must be a LabelE carrying the back-edge target")
	_ = label
}

func TestTransformPreservesTypeAndEffect(t *testing.T) {
	c := ir.NewCounter()
	name, fn := selfCallFunc(c)
	prog := wrapLetProgram(name, fn)

	tr := New(c, Config{})
	out := tr.Transform(prog)

	letDecl := out.DeclGroups[0][0].(*ir.LetDecl)
	newFn := letDecl.Value.(*ir.FuncE)
	assert.Equal(t, types.Triv, newFn.Eff(), "constructing a closure is never itself effectful")

	checker := check.New("check")
	scope := types.NewScope()
	err := checker.CheckProgram(scope, out)
	assert.NoError(t, err, "rewritten program must still type-check")
}

func TestTransformIsIdempotent(t *testing.T) {
	c := ir.NewCounter()
	name, fn := selfCallFunc(c)
	prog := wrapLetProgram(name, fn)

	tr := New(c, Config{})
	once := tr.Transform(prog)
	twice := tr.Transform(once)

	onceFn := once.DeclGroups[0][0].(*ir.LetDecl).Value.(*ir.FuncE)
	twiceFn := twice.DeclGroups[0][0].(*ir.LetDecl).Value.(*ir.FuncE)
	// No self tail call remains in the rewritten form (the recursive call
	// site became an assign-then-break), so a second pass must leave the
	// loop shape fully untouched; NodeIDs are left out of the comparison.
	diff := cmp.Diff(onceFn, twiceFn, cmpopts.IgnoreFields(ir.Base{}, "NodeID"))
	assert.Empty(t, diff, "a second pass over an already-optimized function must be a no-op")
}

// nonTailCallFunc builds `func f(n) { 1 + f(n) }`: the recursive call is an
// operand of +, not a tail call (spec's scenario S2), so the optimizer must
// leave it untouched.
func nonTailCallFunc(c *ir.Counter) (string, *ir.FuncE) {
	name := "f"
	param := ir.Param{Name: "n", Type: natTyp()}
	selfVar := &ir.Var{Base: ir.Base{NodeID: c.NextNode(), Span: ast.NoPos, Type: &types.Func{
		Sort: types.Local, Control: types.Returns, Domain: []types.Type{natTyp()}, Codomain: []types.Type{natTyp()},
	}, Effect: types.Triv}, Name: name}
	nRead := &ir.Var{Base: ir.Base{NodeID: c.NextNode(), Span: ast.NoPos, Type: natTyp(), Effect: types.Triv}, Name: "n"}
	call := &ir.CallE{Base: ir.Base{NodeID: c.NextNode(), Span: ast.NoPos, Type: natTyp(), Effect: types.Triv}, Func: selfVar, TypeArgs: nil, Arg: nRead}
	sum := &ir.BinOp{Base: ir.Base{NodeID: c.NextNode(), Span: ast.NoPos, Type: natTyp(), Effect: types.Triv}, Op: "+", OperandType: natTyp(), Left: litNat(c, 1), Right: call}
	fnTyp := &types.Func{Sort: types.Local, Control: types.Returns, Domain: []types.Type{natTyp()}, Codomain: []types.Type{natTyp()}}
	fn := &ir.FuncE{
		Base:     ir.Base{NodeID: c.NextNode(), Span: ast.NoPos, Type: fnTyp, Effect: types.Triv},
		Sort:     types.Local,
		Control:  types.Returns,
		Params:   []ir.Param{param},
		RetTypes: []types.Type{natTyp()},
		Body:     sum,
	}
	return name, fn
}

func TestTransformLeavesNonTailCallUnchanged(t *testing.T) {
	c := ir.NewCounter()
	name, fn := nonTailCallFunc(c)
	prog := wrapLetProgram(name, fn)

	tr := New(c, Config{})
	out := tr.Transform(prog)

	letDecl := out.DeclGroups[0][0].(*ir.LetDecl)
	newFn := letDecl.Value.(*ir.FuncE)
	// The body is still the `1 + f(n)` BinOp shape: no loop was introduced.
	_, isBinOp := newFn.Body.(*ir.BinOp)
	assert.True(t, isBinOp, "a non-tail self call must not trigger the loop rewrite")
}

func TestTransformOpaqueToActorsByDefault(t *testing.T) {
	c := ir.NewCounter()
	name, fn := selfCallFunc(c)
	prog := &ir.Program{
		Flavor: types.DefaultFlavor(),
		ActorFields: []ir.ActorField{
			{Label: name, Value: fn},
		},
	}
	tr := New(c, Config{})
	out := tr.Transform(prog)
	assert.Same(t, fn, out.ActorFields[0].Value, "actor fields are left untouched unless DescendActors is set")
}
