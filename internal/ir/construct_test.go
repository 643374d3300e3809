package ir

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sunholo/actor-ir/internal/ast"
	"github.com/sunholo/actor-ir/internal/types"
)

func litNat(c *Counter, n uint64) *Lit {
	return &Lit{Base: newBase(c, ast.NoPos, &types.Prim{Kind: types.PNat}, types.Triv), Kind: LitNat, Value: n}
}

func TestFreshVarDistinctNames(t *testing.T) {
	c := NewCounter()
	v1 := FreshVar(c, ast.NoPos, "x", &types.Prim{Kind: types.PNat})
	v2 := FreshVar(c, ast.NoPos, "x", &types.Prim{Kind: types.PNat})
	assert.NotEqual(t, v1.Name, v2.Name)
	assert.NotEqual(t, v1.ID(), v2.ID())
}

func TestFreshVarNormalizesHint(t *testing.T) {
	c := NewCounter()
	// "é" (combining acute) and "é" (precomposed é) should
	// normalize to the same NFC form before the counter suffix is
	// appended.
	v1 := FreshVar(c, ast.NoPos, "écart", &types.Prim{Kind: types.PNat})
	c2 := NewCounter()
	v2 := FreshVar(c2, ast.NoPos, "écart", &types.Prim{Kind: types.PNat})
	assert.Equal(t, v1.Name, v2.Name)
}

func TestLetExprEffectIsLubOfValueAndBody(t *testing.T) {
	c := NewCounter()
	value := litNat(c, 1)
	body := FreshVar(c, ast.NoPos, "y", &types.Prim{Kind: types.PNat})
	let := LetExpr(c, ast.NoPos, &VarPat{Type: value.Typ(), Name: "x"}, value, body)
	assert.Equal(t, types.Triv, let.Eff())
	assert.Equal(t, body.Typ(), let.Typ())
}

func TestAwaitExprPromotesEffectToAwait(t *testing.T) {
	c := NewCounter()
	result := &types.Prim{Kind: types.PNat}
	promise := &Var{Base: newBase(c, ast.NoPos, &types.Async{Result: result}, types.Triv), Name: "p"}
	awaited, err := AwaitExpr(c, ast.NoPos, promise)
	require.NoError(t, err)
	assert.Equal(t, types.Await, awaited.Eff())
	assert.Equal(t, result, awaited.Typ())
}

func TestAwaitExprRejectsNonAsync(t *testing.T) {
	c := NewCounter()
	notAsync := litNat(c, 1)
	_, err := AwaitExpr(c, ast.NoPos, notAsync)
	require.Error(t, err)
	var mismatch *types.MismatchError
	require.ErrorAs(t, err, &mismatch)
}

func TestAsyncExprClearsBodyEffect(t *testing.T) {
	c := NewCounter()
	result := &types.Prim{Kind: types.PNat}
	promise := &Var{Base: newBase(c, ast.NoPos, &types.Async{Result: result}, types.Triv), Name: "p"}
	awaited, err := AwaitExpr(c, ast.NoPos, promise)
	require.NoError(t, err)
	async := AsyncExpr(c, ast.NoPos, awaited)
	assert.Equal(t, types.Triv, async.Eff(), "entering async must defer its body's effect")
	assert.Equal(t, &types.Async{Result: result}, async.Typ())
}

func TestApplicationInstantiatesCodomain(t *testing.T) {
	c := NewCounter()
	bound := types.Bound{Name: "T", Upper: types.Any{}}
	fnType := &types.Func{
		Sort:     types.Local,
		Control:  types.Returns,
		Binds:    []types.Bound{bound},
		Domain:   []types.Type{&types.BoundVar{Index: 0}},
		Codomain: []types.Type{&types.BoundVar{Index: 0}},
	}
	fn := &Var{Base: newBase(c, ast.NoPos, fnType, types.Triv), Name: "id"}
	arg := litNat(c, 7)
	call, err := Application(c, ast.NoPos, fn, []types.Type{arg.Typ()}, arg)
	require.NoError(t, err)
	assert.Equal(t, arg.Typ(), call.Typ())
}

func TestProjectRejectsShortTuple(t *testing.T) {
	c := NewCounter()
	tup := TupleExpr(c, ast.NoPos, []Expr{litNat(c, 1)})
	_, err := Project(c, ast.NoPos, tup, 1)
	require.Error(t, err)
}

func TestBreakAndRetAreNonTyped(t *testing.T) {
	c := NewCounter()
	brk := BreakExpr(c, ast.NoPos, "L", litNat(c, 1))
	ret := RetExpr(c, ast.NoPos, litNat(c, 2))
	assert.Equal(t, types.Non{}, brk.Typ())
	assert.Equal(t, types.Non{}, ret.Typ())
}

func TestTupleExprRebuildsSameShapeFromTwoCounters(t *testing.T) {
	// Two independently-minted counters produce tuples that are
	// structurally identical apart from their NodeIDs; go-cmp's
	// IgnoreFields is the idiomatic way to assert that, rather than
	// hand-walking each element and comparing fields one at a time.
	c1 := NewCounter()
	tup1 := TupleExpr(c1, ast.NoPos, []Expr{litNat(c1, 1), litNat(c1, 2)})

	c2 := NewCounter()
	tup2 := TupleExpr(c2, ast.NoPos, []Expr{litNat(c2, 1), litNat(c2, 2)})

	diff := cmp.Diff(tup1, tup2, cmpopts.IgnoreFields(Base{}, "NodeID"))
	assert.Empty(t, diff, "tuples built from equal elements must be structurally identical modulo NodeID")
}
