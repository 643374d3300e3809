package types

import "strconv"

// IsShared reports whether every value of t may cross an actor boundary:
// shareable types exclude mutable state, functions (except Shared ones,
// which are themselves message references rather than closures over
// local state), and anything built from a non-shareable part.
func IsShared(t Type) bool {
	t = promoteFully(t)
	switch x := t.(type) {
	case *Prim, Any, SharedMarker:
		return true
	case Non:
		return true
	case *Option:
		return IsShared(x.Elem)
	case *Tuple:
		for _, e := range x.Elems {
			if !IsShared(e) {
				return false
			}
		}
		return true
	case *Array:
		return !x.Mut && IsShared(x.Elem)
	case *Mutable:
		return false
	case *Async:
		return false
	case *Object:
		if x.Sort == SortActor {
			return true
		}
		for _, f := range x.Fields {
			if !IsShared(f.Type) {
				return false
			}
		}
		return true
	case *Variant:
		for _, a := range x.Arms {
			if !IsShared(a.Type) {
				return false
			}
		}
		return true
	case *Func:
		return x.Sort == Shared
	case *Serialized:
		return true
	default:
		return false
	}
}

// IsConcrete reports that t contains no abstract type variable — i.e. no
// BoundVar and no application of an abstract (KindAbs) constructor,
// whatever its arguments. Shared-sort functions require concrete domain
// and codomain types (spec §4.3, "shared call").
func IsConcrete(t Type) bool {
	switch x := t.(type) {
	case *BoundVar:
		return false
	case Pre:
		return false
	case *Prim, Any, Non, SharedMarker:
		return true
	case *Tuple:
		return allConcrete(x.Elems)
	case *Option:
		return IsConcrete(x.Elem)
	case *Array:
		return IsConcrete(x.Elem)
	case *Mutable:
		return IsConcrete(x.Elem)
	case *Async:
		return IsConcrete(x.Result)
	case *Object:
		for _, f := range x.Fields {
			if !IsConcrete(f.Type) {
				return false
			}
		}
		return true
	case *Variant:
		for _, a := range x.Arms {
			if !IsConcrete(a.Type) {
				return false
			}
		}
		return true
	case *Func:
		return allConcrete(x.Domain) && allConcrete(x.Codomain)
	case *ConApp:
		if _, abs := x.Con.Kind.(KindAbs); abs {
			return false
		}
		return allConcrete(x.Args)
	case *Serialized:
		return IsConcrete(x.Elem)
	default:
		return false
	}
}

func allConcrete(ts []Type) bool {
	for _, t := range ts {
		if !IsConcrete(t) {
			return false
		}
	}
	return true
}

// IsMut reports whether t is a Mutable cell.
func IsMut(t Type) bool {
	_, ok := t.(*Mutable)
	return ok
}

// AsImmut returns the immutable view of t: if t is Mutable, its element
// type (reading a `var` binding's current value always yields an
// immutable view of its contents); otherwise t unchanged.
func AsImmut(t Type) Type {
	if m, ok := t.(*Mutable); ok {
		return m.Elem
	}
	return t
}

// AsMut wraps t as a mutable cell, unless it already is one.
func AsMut(t Type) Type {
	if IsMut(t) {
		return t
	}
	return &Mutable{Elem: t}
}

// AsTupSub destructures (a promotion of) t as a Tuple of at least n
// elements, returning its element types.
func AsTupSub(t Type, n int) ([]Type, error) {
	p := promoteFully(t)
	tup, ok := p.(*Tuple)
	if !ok || len(tup.Elems) < n {
		return nil, mismatch("tuple of arity >= "+strconv.Itoa(n), t)
	}
	return tup.Elems, nil
}

// AsObjSub destructures t as an Object, returning its sort and fields.
func AsObjSub(t Type) (ObjSort, []Field, error) {
	p := promoteFully(t)
	obj, ok := p.(*Object)
	if !ok {
		return 0, nil, mismatch("object type", t)
	}
	return obj.Sort, obj.Fields, nil
}

// AsArraySub destructures t as an Array, returning its element type and
// mutability.
func AsArraySub(t Type) (Type, bool, error) {
	p := promoteFully(t)
	arr, ok := p.(*Array)
	if !ok {
		return nil, false, mismatch("array type", t)
	}
	return arr.Elem, arr.Mut, nil
}

// AsFuncSub destructures t as a Function, returning its components.
func AsFuncSub(t Type) (*Func, error) {
	p := promoteFully(t)
	f, ok := p.(*Func)
	if !ok {
		return nil, mismatch("function type", t)
	}
	return f, nil
}

// AsAsyncSub destructures t as an Async, returning its result type.
func AsAsyncSub(t Type) (Type, error) {
	p := promoteFully(t)
	a, ok := p.(*Async)
	if !ok {
		return nil, mismatch("async type", t)
	}
	return a.Result, nil
}
