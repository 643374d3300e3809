package check

import (
	"fmt"

	"github.com/sunholo/actor-ir/internal/types"
)

// checkTyp validates a type annotation's own well-formedness (spec
// §4.3, step 1): closed (every BoundVar index is within the binder
// depth currently in scope), not Pre, object/variant fields sorted and
// distinct, and every constructor application's arity matching its
// constructor's declared parameter count. depth is the number of
// binders currently open (incremented when descending into a Func's
// Domain/Codomain under its own Binds).
func checkTyp(t types.Type, cons *types.ConSet, depth int) error {
	switch x := t.(type) {
	case *types.Prim, types.Any, types.Non, types.SharedMarker:
		return nil
	case types.Pre:
		return fmt.Errorf("Pre type illegal in checked IR")
	case *types.BoundVar:
		if x.Index < 0 || x.Index >= depth {
			return fmt.Errorf("de Bruijn index %d out of range (depth %d)", x.Index, depth)
		}
		return nil
	case *types.Tuple:
		for _, e := range x.Elems {
			if err := checkTyp(e, cons, depth); err != nil {
				return err
			}
		}
		return nil
	case *types.Option:
		return checkTyp(x.Elem, cons, depth)
	case *types.Array:
		return checkTyp(x.Elem, cons, depth)
	case *types.Mutable:
		return checkTyp(x.Elem, cons, depth)
	case *types.Async:
		return checkTyp(x.Result, cons, depth)
	case *types.Serialized:
		return checkTyp(x.Elem, cons, depth)
	case *types.Object:
		if !types.FieldsSortedDistinct(x.Fields) {
			return fmt.Errorf("object type's fields are not distinct and sorted")
		}
		for _, f := range x.Fields {
			if err := checkTyp(f.Type, cons, depth); err != nil {
				return err
			}
		}
		return nil
	case *types.Variant:
		if !types.ArmsSortedDistinct(x.Arms) {
			return fmt.Errorf("variant type's arms are not distinct and sorted")
		}
		for _, a := range x.Arms {
			if err := checkTyp(a.Type, cons, depth); err != nil {
				return err
			}
		}
		return nil
	case *types.Func:
		d2 := depth + len(x.Binds)
		for _, b := range x.Binds {
			if err := checkTyp(b.Upper, cons, d2); err != nil {
				return err
			}
		}
		for _, dom := range x.Domain {
			if err := checkTyp(dom, cons, d2); err != nil {
				return err
			}
		}
		for _, cod := range x.Codomain {
			if err := checkTyp(cod, cons, d2); err != nil {
				return err
			}
		}
		return nil
	case *types.ConApp:
		if cons != nil && !cons.Has(x.Con) {
			return fmt.Errorf("type constructor %s not in scope", x.Con)
		}
		var params []types.Bound
		switch k := x.Con.Kind.(type) {
		case types.KindDef:
			params = k.Params
		case types.KindAbs:
			params = k.Params
		}
		if len(params) != len(x.Args) {
			return fmt.Errorf("type constructor %s applied to %d arguments, expected %d", x.Con, len(x.Args), len(params))
		}
		for _, a := range x.Args {
			if err := checkTyp(a, cons, depth); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("unrecognized type %T", t)
	}
}
