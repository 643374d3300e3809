package coverage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sunholo/actor-ir/internal/ast"
	"github.com/sunholo/actor-ir/internal/check"
	"github.com/sunholo/actor-ir/internal/ir"
	"github.com/sunholo/actor-ir/internal/types"
)

func resultVariant() *types.Variant {
	return &types.Variant{Arms: []types.VariantArm{
		{Ctor: "Err", Type: &types.Prim{Kind: types.PText}},
		{Ctor: "Ok", Type: &types.Prim{Kind: types.PNat}},
	}}
}

func litNat(c *ir.Counter, n uint64) *ir.Lit {
	return &ir.Lit{Base: ir.Base{NodeID: c.NextNode(), Span: ast.NoPos, Type: &types.Prim{Kind: types.PNat}, Effect: types.Triv}, Kind: ir.LitNat, Value: n}
}

// partialSwitchFunc builds `func f(r) { switch r { case Ok(n) -> n } }`:
// a switch over a two-constructor Variant covering only one arm.
func partialSwitchFunc(c *ir.Counter) *ir.FuncE {
	rTyp := resultVariant()
	rVar := &ir.Var{Base: ir.Base{NodeID: c.NextNode(), Span: ast.NoPos, Type: rTyp, Effect: types.Triv}, Name: "r"}
	arm := ir.CaseArm{
		Pattern: &ir.VariantPat{Type: rTyp, Ctor: "Ok", Arg: &ir.VarPat{Type: &types.Prim{Kind: types.PNat}, Name: "n"}},
		Body:    &ir.Var{Base: ir.Base{NodeID: c.NextNode(), Span: ast.NoPos, Type: &types.Prim{Kind: types.PNat}, Effect: types.Triv}, Name: "n"},
	}
	sw := &ir.SwitchE{Base: ir.Base{NodeID: c.NextNode(), Span: ast.NoPos, Type: &types.Prim{Kind: types.PNat}, Effect: types.Triv}, Scrutinee: rVar, Arms: []ir.CaseArm{arm}}
	fnTyp := &types.Func{Sort: types.Local, Control: types.Returns, Domain: []types.Type{rTyp}, Codomain: []types.Type{&types.Prim{Kind: types.PNat}}}
	return &ir.FuncE{
		Base:     ir.Base{NodeID: c.NextNode(), Span: ast.NoPos, Type: fnTyp, Effect: types.Triv},
		Sort:     types.Local,
		Control:  types.Returns,
		Params:   []ir.Param{{Name: "r", Type: rTyp}},
		RetTypes: []types.Type{&types.Prim{Kind: types.PNat}},
		Body:     sw,
	}
}

func wrapLetProgram(name string, fn *ir.FuncE) *ir.Program {
	group := []ir.Decl{&ir.LetDecl{Pattern: &ir.VarPat{Type: fn.Typ(), Name: name}, Value: fn}}
	return &ir.Program{Flavor: types.DefaultFlavor(), DeclGroups: [][]ir.Decl{group}}
}

func TestTransformAppendsTrapArmToPartialSwitch(t *testing.T) {
	c := ir.NewCounter()
	fn := partialSwitchFunc(c)
	prog := wrapLetProgram("f", fn)

	tr := New(c)
	out := tr.Transform(prog)

	newFn := out.DeclGroups[0][0].(*ir.LetDecl).Value.(*ir.FuncE)
	sw, ok := newFn.Body.(*ir.SwitchE)
	require.True(t, ok)
	require.Len(t, sw.Arms, 2, "a trap arm must be appended for the uncovered Err constructor")

	last := sw.Arms[1]
	_, ok = last.Pattern.(*ir.WildcardPat)
	assert.True(t, ok, "the trap arm's pattern is a wildcard")
	assertE, ok := last.Body.(*ir.AssertE)
	require.True(t, ok, "the trap arm's body is an assert-false-shaped node")
	assert.Equal(t, types.Non{}, assertE.Typ())

	checker := check.New("coverage-check")
	scope := types.NewScope()
	assert.NoError(t, checker.CheckProgram(scope, out), "the trapped switch must still type-check")
}

// exhaustiveSwitchFunc builds a switch already covering both constructors.
func exhaustiveSwitchFunc(c *ir.Counter) *ir.FuncE {
	rTyp := resultVariant()
	rVar := &ir.Var{Base: ir.Base{NodeID: c.NextNode(), Span: ast.NoPos, Type: rTyp, Effect: types.Triv}, Name: "r"}
	okArm := ir.CaseArm{
		Pattern: &ir.VariantPat{Type: rTyp, Ctor: "Ok", Arg: &ir.VarPat{Type: &types.Prim{Kind: types.PNat}, Name: "n"}},
		Body:    &ir.Var{Base: ir.Base{NodeID: c.NextNode(), Span: ast.NoPos, Type: &types.Prim{Kind: types.PNat}, Effect: types.Triv}, Name: "n"},
	}
	errArm := ir.CaseArm{
		Pattern: &ir.VariantPat{Type: rTyp, Ctor: "Err", Arg: &ir.WildcardPat{Type: &types.Prim{Kind: types.PText}}},
		Body:    litNat(c, 0),
	}
	sw := &ir.SwitchE{Base: ir.Base{NodeID: c.NextNode(), Span: ast.NoPos, Type: &types.Prim{Kind: types.PNat}, Effect: types.Triv}, Scrutinee: rVar, Arms: []ir.CaseArm{okArm, errArm}}
	fnTyp := &types.Func{Sort: types.Local, Control: types.Returns, Domain: []types.Type{rTyp}, Codomain: []types.Type{&types.Prim{Kind: types.PNat}}}
	return &ir.FuncE{
		Base:     ir.Base{NodeID: c.NextNode(), Span: ast.NoPos, Type: fnTyp, Effect: types.Triv},
		Sort:     types.Local,
		Control:  types.Returns,
		Params:   []ir.Param{{Name: "r", Type: rTyp}},
		RetTypes: []types.Type{&types.Prim{Kind: types.PNat}},
		Body:     sw,
	}
}

func TestTransformLeavesExhaustiveSwitchUnchanged(t *testing.T) {
	c := ir.NewCounter()
	fn := exhaustiveSwitchFunc(c)
	prog := wrapLetProgram("f", fn)

	tr := New(c)
	out := tr.Transform(prog)

	newFn := out.DeclGroups[0][0].(*ir.LetDecl).Value.(*ir.FuncE)
	sw := newFn.Body.(*ir.SwitchE)
	assert.Len(t, sw.Arms, 2, "an already-exhaustive switch gets no trap arm")
}
