package check

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sunholo/actor-ir/internal/ast"
	"github.com/sunholo/actor-ir/internal/errors"
	"github.com/sunholo/actor-ir/internal/ir"
	"github.com/sunholo/actor-ir/internal/types"
)

func natTyp() *types.Prim { return &types.Prim{Kind: types.PNat} }

func reportReason(t *testing.T, err error) errors.Reason {
	t.Helper()
	rep, ok := errors.AsReport(err)
	require.True(t, ok, "expected a *errors.ReportError, got %v (%T)", err, err)
	return rep.Reason
}

func TestCheckProgramAcceptsWellTypedLiteralField(t *testing.T) {
	c := ir.NewCounter()
	lit := &ir.Lit{
		Base:  ir.Base{NodeID: c.NextNode(), Span: ast.NoPos, Type: natTyp(), Effect: types.Triv},
		Kind:  ir.LitNat,
		Value: uint64(7),
	}
	prog := &ir.Program{
		Flavor: types.DefaultFlavor(),
		ActorFields: []ir.ActorField{
			{Label: "answer", Value: lit},
		},
	}
	checker := New("check")
	err := checker.CheckProgram(types.NewScope(), prog)
	assert.NoError(t, err)
}

func TestCheckProgramRejectsAssignToImmutableTarget(t *testing.T) {
	c := ir.NewCounter()
	target := &ir.Var{Base: ir.Base{NodeID: c.NextNode(), Span: ast.NoPos, Type: natTyp(), Effect: types.Triv}, Name: "x"}
	source := &ir.Lit{Base: ir.Base{NodeID: c.NextNode(), Span: ast.NoPos, Type: natTyp(), Effect: types.Triv}, Kind: ir.LitNat, Value: uint64(1)}
	assign := ir.AssignExpr(c, ast.NoPos, target, source)

	scope := types.NewScope()
	scope.Vals = scope.Vals.Extend("x", natTyp())
	prog := &ir.Program{
		Flavor: types.DefaultFlavor(),
		ActorFields: []ir.ActorField{
			{Label: "f", Value: assign},
		},
	}
	checker := New("check")
	err := checker.CheckProgram(scope, prog)
	require.Error(t, err)
	assert.Equal(t, errors.ReasonKindMismatch, reportReason(t, err))
	assert.Contains(t, err.Error(), "expected mutable assignment target")
}

func TestCheckProgramRejectsUnsortedObjectFields(t *testing.T) {
	c := ir.NewCounter()
	fieldA := &ir.Lit{Base: ir.Base{NodeID: c.NextNode(), Span: ast.NoPos, Type: natTyp(), Effect: types.Triv}, Kind: ir.LitNat, Value: uint64(1)}
	fieldB := &ir.Lit{Base: ir.Base{NodeID: c.NextNode(), Span: ast.NoPos, Type: natTyp(), Effect: types.Triv}, Kind: ir.LitNat, Value: uint64(2)}

	// Build the ObjE by hand with an out-of-order annotation: spec's
	// scenario S6 wants "[b, a]" specifically.
	badTyp := &types.Object{Fields: []types.Field{
		{Label: "b", Type: natTyp()},
		{Label: "a", Type: natTyp()},
	}}
	obj := &ir.ObjE{
		Base: ir.Base{NodeID: c.NextNode(), Span: ast.NoPos, Type: badTyp, Effect: types.Triv},
		Sort: types.SortLocalObject,
		Fields: []ir.ObjField{
			{Label: "b", Value: fieldB},
			{Label: "a", Value: fieldA},
		},
	}

	prog := &ir.Program{
		Flavor: types.DefaultFlavor(),
		ActorFields: []ir.ActorField{
			{Label: "f", Value: obj},
		},
	}
	checker := New("check")
	err := checker.CheckProgram(types.NewScope(), prog)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "object type's fields are not distinct and sorted")
}

func TestCheckProgramRejectsUnboundVariable(t *testing.T) {
	c := ir.NewCounter()
	v := &ir.Var{Base: ir.Base{NodeID: c.NextNode(), Span: ast.NoPos, Type: natTyp(), Effect: types.Triv}, Name: "nope"}
	prog := &ir.Program{
		Flavor:      types.DefaultFlavor(),
		ActorFields: []ir.ActorField{{Label: "f", Value: v}},
	}
	checker := New("check")
	err := checker.CheckProgram(types.NewScope(), prog)
	require.Error(t, err)
	assert.Equal(t, errors.ReasonScopeViolation, reportReason(t, err))
}

func TestCheckProgramRejectsEffectExceedingAnnotation(t *testing.T) {
	c := ir.NewCounter()
	promiseTyp := &types.Async{Result: natTyp()}
	promise := &ir.Var{Base: ir.Base{NodeID: c.NextNode(), Span: ast.NoPos, Type: promiseTyp, Effect: types.Triv}, Name: "p"}
	awaited, err := ir.AwaitExpr(c, ast.NoPos, promise)
	require.NoError(t, err)
	// Tamper with the annotation after the fact: claim Triv where Await
	// was actually inferred.
	awaited.Effect = types.Triv

	scope := types.NewScope()
	scope.Vals = scope.Vals.Extend("p", promiseTyp)
	prog := &ir.Program{
		Flavor: types.DefaultFlavor(),
		ActorFields: []ir.ActorField{
			{Label: "f", Value: &ir.AsyncE{
				Base: ir.Base{NodeID: c.NextNode(), Span: ast.NoPos, Type: &types.Async{Result: natTyp()}, Effect: types.Triv},
				Body: awaited,
			}},
		},
	}
	checker := New("check")
	err = checker.CheckProgram(scope, prog)
	require.Error(t, err)
	assert.Equal(t, errors.ReasonEffectViolation, reportReason(t, err))
}

func TestCheckProgramRejectsAwaitOutsideAsync(t *testing.T) {
	c := ir.NewCounter()
	promiseTyp := &types.Async{Result: natTyp()}
	promise := &ir.Var{Base: ir.Base{NodeID: c.NextNode(), Span: ast.NoPos, Type: promiseTyp, Effect: types.Triv}, Name: "p"}
	awaited, err := ir.AwaitExpr(c, ast.NoPos, promise)
	require.NoError(t, err)

	scope := types.NewScope()
	scope.Vals = scope.Vals.Extend("p", promiseTyp)
	prog := &ir.Program{
		Flavor:      types.DefaultFlavor(),
		ActorFields: []ir.ActorField{{Label: "f", Value: awaited}},
	}
	checker := New("check")
	err = checker.CheckProgram(scope, prog)
	require.Error(t, err)
	assert.Equal(t, errors.ReasonScopeViolation, reportReason(t, err))
}

func TestCheckProgramAcceptsLetBlockWithBindingInScope(t *testing.T) {
	c := ir.NewCounter()
	one := &ir.Lit{Base: ir.Base{NodeID: c.NextNode(), Span: ast.NoPos, Type: natTyp(), Effect: types.Triv}, Kind: ir.LitNat, Value: uint64(1)}
	xVar := &ir.Var{Base: ir.Base{NodeID: c.NextNode(), Span: ast.NoPos, Type: natTyp(), Effect: types.Triv}, Name: "x"}
	block := ir.LetExpr(c, ast.NoPos, &ir.VarPat{Type: natTyp(), Name: "x"}, one, xVar)

	prog := &ir.Program{
		Flavor:      types.DefaultFlavor(),
		ActorFields: []ir.ActorField{{Label: "f", Value: block}},
	}
	checker := New("check")
	err := checker.CheckProgram(types.NewScope(), prog)
	assert.NoError(t, err)
}
