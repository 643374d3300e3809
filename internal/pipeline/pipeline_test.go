package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sunholo/actor-ir/internal/ast"
	"github.com/sunholo/actor-ir/internal/ir"
	"github.com/sunholo/actor-ir/internal/transform/tailcall"
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

// selfCallFunc builds `func loop(n) { if n == 0 { 0 } else { loop(n) } }`,
// a self tail-recursive function the tailcall phase turns into a loop.
func selfCallFunc(c *ir.Counter) (string, *ir.FuncE) {
	name := "loop"
	param := ir.Param{Name: "n", Type: natTyp()}
	fnTyp := &types.Func{Sort: types.Local, Control: types.Returns, Domain: []types.Type{natTyp()}, Codomain: []types.Type{natTyp()}}
	selfVar := &ir.Var{Base: ir.Base{NodeID: c.NextNode(), Span: ast.NoPos, Type: fnTyp, Effect: types.Triv}, Name: name}
	nRead := varOf(c, "n", natTyp())
	cond := &ir.RelOp{Base: ir.Base{NodeID: c.NextNode(), Span: ast.NoPos, Type: &types.Prim{Kind: types.PBool}, Effect: types.Triv}, Op: "==", OperandType: natTyp(), Left: nRead, Right: litNat(c, 0)}
	call := &ir.CallE{Base: ir.Base{NodeID: c.NextNode(), Span: ast.NoPos, Type: natTyp(), Effect: types.Triv}, Func: selfVar, TypeArgs: nil, Arg: nRead}
	ifE := &ir.IfE{Base: ir.Base{NodeID: c.NextNode(), Span: ast.NoPos, Type: natTyp(), Effect: types.Triv}, Cond: cond, Then: litNat(c, 0), Else: call}
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

// awaitFunc builds `func wait(p) { async { await p; 1 + 2 } }`, exercising
// the await phase.
func awaitFunc(c *ir.Counter) (string, *ir.FuncE) {
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
	return "wait", fn
}

func wrapLetProgram(decls ...ir.Decl) *ir.Program {
	return &ir.Program{Flavor: types.DefaultFlavor(), DeclGroups: [][]ir.Decl{decls}}
}

func TestRunAppliesTailCallThenAwaitAndTypeChecks(t *testing.T) {
	c := ir.NewCounter()
	loopName, loopFn := selfCallFunc(c)
	waitName, waitFn := awaitFunc(c)
	prog := wrapLetProgram(
		&ir.LetDecl{Pattern: &ir.VarPat{Type: loopFn.Typ(), Name: loopName}, Value: loopFn},
		&ir.LetDecl{Pattern: &ir.VarPat{Type: waitFn.Typ(), Name: waitName}, Value: waitFn},
	)

	result, err := Run(DefaultConfig(), types.NewScope(), c, prog)
	require.NoError(t, err)
	require.NotNil(t, result.Program)

	_, hasTailCall := result.PhaseTimings["tailcall"]
	_, hasAwait := result.PhaseTimings["await"]
	assert.True(t, hasTailCall)
	assert.True(t, hasAwait)
	_, hasCoverage := result.PhaseTimings["coverage"]
	assert.False(t, hasCoverage, "coverage is opt-in and off by default")

	assert.False(t, result.Program.Flavor.HasAwait, "await erases await/async from the flavor")
}

func TestRunSkipsPhasesDisabledInConfig(t *testing.T) {
	c := ir.NewCounter()
	_, loopFn := selfCallFunc(c)
	prog := wrapLetProgram(&ir.LetDecl{Pattern: &ir.VarPat{Type: loopFn.Typ(), Name: "loop"}, Value: loopFn})

	cfg := PipelineConfig{Phases: Phases{TailCall: false, Await: false}}
	result, err := Run(cfg, types.NewScope(), c, prog)
	require.NoError(t, err)

	assert.Empty(t, result.PhaseTimings)
	assert.Same(t, loopFn, result.Program.DeclGroups[0][0].(*ir.LetDecl).Value)
}

func TestRunAcceptsTailCallDescendActorsConfig(t *testing.T) {
	c := ir.NewCounter()
	_, loopFn := selfCallFunc(c)
	prog := wrapLetProgram(&ir.LetDecl{Pattern: &ir.VarPat{Type: loopFn.Typ(), Name: "loop"}, Value: loopFn})

	cfg := DefaultConfig()
	cfg.Phases.Await = false
	cfg.TailCall = tailcall.Config{DescendActors: true}

	result, err := Run(cfg, types.NewScope(), c, prog)
	require.NoError(t, err)
	assert.NotNil(t, result.Program)
}

func TestRunReturnsVerboseDumpOnCheckFailure(t *testing.T) {
	c := ir.NewCounter()
	badFn := &ir.FuncE{
		Base:     ir.Base{NodeID: c.NextNode(), Span: ast.NoPos, Type: &types.Func{Sort: types.Local, Control: types.Returns, Domain: nil, Codomain: []types.Type{natTyp()}}, Effect: types.Triv},
		Sort:     types.Local,
		Control:  types.Returns,
		RetTypes: []types.Type{natTyp()},
		Body:     &ir.Lit{Base: ir.Base{NodeID: c.NextNode(), Span: ast.NoPos, Type: &types.Prim{Kind: types.PBool}, Effect: types.Triv}, Kind: ir.LitBool, Value: true},
	}
	prog := wrapLetProgram(&ir.LetDecl{Pattern: &ir.VarPat{Type: badFn.Typ(), Name: "bad"}, Value: badFn})

	cfg := DefaultConfig()
	cfg.Phases.Await = false
	cfg.Verbose = true

	_, err := Run(cfg, types.NewScope(), c, prog)
	require.Error(t, err)
	perr, ok := err.(*Error)
	require.True(t, ok)
	assert.Equal(t, "tailcall", perr.Phase)
	assert.NotEmpty(t, perr.Dump, "verbose mode attaches the IR dump of the failing program")
}
