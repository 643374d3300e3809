package check

import (
	"fmt"

	"github.com/sunholo/actor-ir/internal/ir"
	"github.com/sunholo/actor-ir/internal/types"
)

// gather performs declaration gathering's first phase (spec §4.3.1): it
// walks decls collecting every type constructor and variable binding
// into a fresh scope extending base, failing on any duplicate name or
// duplicate type constructor within this one list of declarations. The
// second phase — re-walking each declaration's own initializer in the
// resulting scope — is done by the caller (checkDecls), so mutually
// recursive let-bindings see each other.
//
// DeclareD introduces a binding the same way LetDecl/VarDecl do (it is
// itself a binding occurrence, just one without an initializer yet);
// DefineD introduces no new binding — it assigns a name gather already
// saw via an earlier DeclareD in the same list.
func gather(base types.Scope, decls []ir.Decl) (types.Scope, error) {
	vals := base.Vals
	localCons := types.NewConSet()
	seenNames := map[string]bool{}

	bindName := func(name string, t types.Type) error {
		if seenNames[name] {
			return fmt.Errorf("duplicate binding of %q within one declaration block", name)
		}
		seenNames[name] = true
		vals = vals.Extend(name, t)
		return nil
	}

	for _, d := range decls {
		switch x := d.(type) {
		case *ir.LetDecl:
			bindings, err := checkPattern(x.Pattern)
			if err != nil {
				return base, err
			}
			for _, b := range bindings {
				if err := bindName(b.Name, b.Type); err != nil {
					return base, err
				}
			}
		case *ir.VarDecl:
			if err := bindName(x.Name, types.AsMut(x.Value.Typ())); err != nil {
				return base, err
			}
		case *ir.DeclareD:
			if err := bindName(x.Name, x.Type); err != nil {
				return base, err
			}
		case *ir.DefineD:
			// no new binding; must already be in scope, verified in the
			// check phase.
		case *ir.TypeDecl:
			if err := localCons.Add(x.Con); err != nil {
				return base, fmt.Errorf("duplicate type constructor %q within one declaration block", x.Name)
			}
		default:
			return base, fmt.Errorf("unrecognized declaration %T", d)
		}
	}

	mergedCons, err := base.Cons.Extend(localCons)
	if err != nil {
		return base, err
	}
	return types.Scope{Vals: vals, Cons: mergedCons}, nil
}
