package check

import (
	"fmt"

	"github.com/sunholo/actor-ir/internal/ir"
	"github.com/sunholo/actor-ir/internal/types"
)

// Binding is one name a pattern introduces, in left-to-right binding
// order.
type Binding struct {
	Name string
	Type types.Type
}

// extendVals applies a list of bindings, in order, onto a value
// environment.
func extendVals(base *types.ValEnv, bindings []Binding) *types.ValEnv {
	for _, b := range bindings {
		base = base.Extend(b.Name, b.Type)
	}
	return base
}

// asOption destructures (a promotion of) t as an Option, the one
// as_*_sub-shaped helper spec §4.1's list omits — patterns need it even
// though expression checking never destructures an Option directly.
func asOption(t types.Type) (*types.Option, error) {
	cur := t
	for {
		next := types.Promote(cur)
		if next == cur {
			break
		}
		cur = next
	}
	opt, ok := cur.(*types.Option)
	if !ok {
		return nil, &types.MismatchError{Expected: "option type", Got: t}
	}
	return opt, nil
}

func asVariant(t types.Type) (*types.Variant, error) {
	cur := t
	for {
		next := types.Promote(cur)
		if next == cur {
			break
		}
		cur = next
	}
	v, ok := cur.(*types.Variant)
	if !ok {
		return nil, &types.MismatchError{Expected: "variant type", Got: t}
	}
	return v, nil
}

// mergeBindings appends add to base, failing if a name in add has
// already been seen — pattern variables must be unique within the
// whole pattern (spec §3.2).
func mergeBindings(base []Binding, add []Binding, seen map[string]bool) ([]Binding, error) {
	for _, b := range add {
		if seen[b.Name] {
			return nil, fmt.Errorf("pattern variable %q bound more than once", b.Name)
		}
		seen[b.Name] = true
		base = append(base, b)
	}
	return base, nil
}

// checkPattern validates pattern p (spec §4.3.2): every sub-pattern's
// own annotation must be a subtype of the type projected for it from
// p's annotation, and it returns the bindings p introduces, failing if
// the same name is bound twice or an AltPat binds any name at all.
func checkPattern(p ir.Pattern) ([]Binding, error) {
	switch x := p.(type) {
	case *ir.WildcardPat:
		return nil, nil
	case *ir.LitPat:
		return nil, nil
	case *ir.VarPat:
		return []Binding{{Name: x.Name, Type: x.Type}}, nil
	case *ir.TuplePat:
		elemTyps, err := types.AsTupSub(x.Type, len(x.Elems))
		if err != nil {
			return nil, err
		}
		var out []Binding
		seen := map[string]bool{}
		for i, sub := range x.Elems {
			if !types.Subtype(sub.Typ(), elemTyps[i]) {
				return nil, fmt.Errorf("tuple pattern component %d: %s is not a subtype of %s", i, sub.Typ(), elemTyps[i])
			}
			subBindings, err := checkPattern(sub)
			if err != nil {
				return nil, err
			}
			out, err = mergeBindings(out, subBindings, seen)
			if err != nil {
				return nil, err
			}
		}
		return out, nil
	case *ir.ObjPat:
		_, fields, err := types.AsObjSub(x.Type)
		if err != nil {
			return nil, err
		}
		var out []Binding
		seen := map[string]bool{}
		for _, fp := range x.Fields {
			ft, ok := types.LookupField(fp.Label, fields)
			if !ok {
				return nil, fmt.Errorf("object pattern: no field %q", fp.Label)
			}
			if !types.Subtype(fp.Pat.Typ(), ft) {
				return nil, fmt.Errorf("object pattern field %q: %s is not a subtype of %s", fp.Label, fp.Pat.Typ(), ft)
			}
			subBindings, err := checkPattern(fp.Pat)
			if err != nil {
				return nil, err
			}
			out, err = mergeBindings(out, subBindings, seen)
			if err != nil {
				return nil, err
			}
		}
		return out, nil
	case *ir.OptPat:
		opt, err := asOption(x.Type)
		if err != nil {
			return nil, err
		}
		if x.Arg == nil {
			return nil, nil
		}
		if !types.Subtype(x.Arg.Typ(), opt.Elem) {
			return nil, fmt.Errorf("option pattern: %s is not a subtype of %s", x.Arg.Typ(), opt.Elem)
		}
		return checkPattern(x.Arg)
	case *ir.VariantPat:
		v, err := asVariant(x.Type)
		if err != nil {
			return nil, err
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
			return nil, fmt.Errorf("variant pattern: no constructor %q", x.Ctor)
		}
		if !types.Subtype(x.Arg.Typ(), armTyp) {
			return nil, fmt.Errorf("variant pattern arm %q: %s is not a subtype of %s", x.Ctor, x.Arg.Typ(), armTyp)
		}
		return checkPattern(x.Arg)
	case *ir.AltPat:
		for _, alt := range x.Alts {
			bindings, err := checkPattern(alt)
			if err != nil {
				return nil, err
			}
			if len(bindings) != 0 {
				return nil, fmt.Errorf("alternative pattern binds a variable, which is not permitted")
			}
		}
		return nil, nil
	default:
		return nil, fmt.Errorf("unrecognized pattern %T", p)
	}
}
