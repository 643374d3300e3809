package types

// Promote unfolds a type constructor application one step to its
// definition's body, leaving every other type unchanged (spec §4.1).
// Abstract constructors (KindAbs) have no body and are left as-is —
// promoting them would be unsound, since an abstract constructor stands
// for an unknown type that could be anything up to its bound.
func Promote(t Type) Type {
	app, ok := t.(*ConApp)
	if !ok {
		return t
	}
	def, ok := app.Con.Kind.(KindDef)
	if !ok {
		return t
	}
	return Open(app.Args, def.Body)
}

// promoteFully repeatedly promotes until the top-level constructor is no
// longer a resolvable alias, used internally by Subtype and the
// as_*_sub destructuring helpers so a chain of aliases (type A = B; type
// B = Tuple[...]) is transparent to them.
func promoteFully(t Type) Type {
	for {
		p := Promote(t)
		if p == t {
			return t
		}
		t = p
	}
}

// Open substitutes each BoundVar{i} appearing (free) in t with ts[i],
// recursing through every compound type. It is the de Bruijn analogue of
// instantiating a type constructor's body with concrete arguments.
func Open(ts []Type, t Type) Type {
	switch x := t.(type) {
	case *BoundVar:
		if x.Index >= 0 && x.Index < len(ts) {
			return ts[x.Index]
		}
		return x
	case *Prim, Any, Non, SharedMarker, Pre:
		return t
	case *Tuple:
		return &Tuple{Elems: openAll(ts, x.Elems)}
	case *Option:
		return &Option{Elem: Open(ts, x.Elem)}
	case *Array:
		return &Array{Elem: Open(ts, x.Elem), Mut: x.Mut}
	case *Mutable:
		return &Mutable{Elem: Open(ts, x.Elem)}
	case *Async:
		return &Async{Result: Open(ts, x.Result)}
	case *Object:
		fields := make([]Field, len(x.Fields))
		for i, f := range x.Fields {
			fields[i] = Field{Label: f.Label, Type: Open(ts, f.Type)}
		}
		return &Object{Sort: x.Sort, Fields: fields}
	case *Variant:
		arms := make([]VariantArm, len(x.Arms))
		for i, a := range x.Arms {
			arms[i] = VariantArm{Ctor: a.Ctor, Type: Open(ts, a.Type)}
		}
		return &Variant{Arms: arms}
	case *Func:
		return &Func{
			Sort:     x.Sort,
			Control:  x.Control,
			Binds:    x.Binds,
			Domain:   openAll(ts, x.Domain),
			Codomain: openAll(ts, x.Codomain),
		}
	case *ConApp:
		return &ConApp{Con: x.Con, Args: openAll(ts, x.Args)}
	case *Serialized:
		return &Serialized{Elem: Open(ts, x.Elem)}
	default:
		return t
	}
}

func openAll(ts []Type, elems []Type) []Type {
	out := make([]Type, len(elems))
	for i, e := range elems {
		out[i] = Open(ts, e)
	}
	return out
}

// Close abstracts concrete references to the constructors in cs back
// into de Bruijn BoundVar indices — the inverse of Open, used when a
// transform builds a generic type's body from a concrete instantiation
// it already has in hand.
func Close(cs []*Constructor, t Type) Type {
	switch x := t.(type) {
	case *ConApp:
		if len(x.Args) == 0 {
			for i, c := range cs {
				if c.Same(x.Con) {
					return &BoundVar{Index: i}
				}
			}
		}
		return &ConApp{Con: x.Con, Args: closeAll(cs, x.Args)}
	case *Tuple:
		return &Tuple{Elems: closeAll(cs, x.Elems)}
	case *Option:
		return &Option{Elem: Close(cs, x.Elem)}
	case *Array:
		return &Array{Elem: Close(cs, x.Elem), Mut: x.Mut}
	case *Mutable:
		return &Mutable{Elem: Close(cs, x.Elem)}
	case *Async:
		return &Async{Result: Close(cs, x.Result)}
	case *Object:
		fields := make([]Field, len(x.Fields))
		for i, f := range x.Fields {
			fields[i] = Field{Label: f.Label, Type: Close(cs, f.Type)}
		}
		return &Object{Sort: x.Sort, Fields: fields}
	case *Variant:
		arms := make([]VariantArm, len(x.Arms))
		for i, a := range x.Arms {
			arms[i] = VariantArm{Ctor: a.Ctor, Type: Close(cs, a.Type)}
		}
		return &Variant{Arms: arms}
	case *Func:
		return &Func{
			Sort:     x.Sort,
			Control:  x.Control,
			Binds:    x.Binds,
			Domain:   closeAll(cs, x.Domain),
			Codomain: closeAll(cs, x.Codomain),
		}
	case *Serialized:
		return &Serialized{Elem: Close(cs, x.Elem)}
	default:
		return t
	}
}

func closeAll(cs []*Constructor, elems []Type) []Type {
	out := make([]Type, len(elems))
	for i, e := range elems {
		out[i] = Close(cs, e)
	}
	return out
}

// Subtype implements the structural subtyping relation t1 <: t2 (spec
// §3.1): covariant in positive positions, contravariant in function
// parameters, invariant at mutable cells, with Non at the bottom and Any
// at the top. Constructor applications are promoted (possibly through a
// chain of aliases) before the structural comparison.
func Subtype(t1, t2 Type) bool {
	if _, ok := t2.(Any); ok {
		return true
	}
	if _, ok := t1.(Non); ok {
		return true
	}
	t1 = promoteFully(t1)
	t2 = promoteFully(t2)

	if _, ok := t2.(Any); ok {
		return true
	}
	if _, ok := t1.(Non); ok {
		return true
	}
	if _, ok := t2.(SharedMarker); ok {
		return IsShared(t1)
	}

	switch a := t1.(type) {
	case *Prim:
		b, ok := t2.(*Prim)
		return ok && a.Kind == b.Kind
	case SharedMarker:
		_, ok := t2.(SharedMarker)
		return ok
	case *Tuple:
		b, ok := t2.(*Tuple)
		if !ok || len(a.Elems) != len(b.Elems) {
			return false
		}
		for i := range a.Elems {
			if !Subtype(a.Elems[i], b.Elems[i]) {
				return false
			}
		}
		return true
	case *Option:
		b, ok := t2.(*Option)
		return ok && Subtype(a.Elem, b.Elem)
	case *Array:
		b, ok := t2.(*Array)
		if !ok || a.Mut != b.Mut {
			return false
		}
		if a.Mut {
			return typeEquals(a.Elem, b.Elem)
		}
		return Subtype(a.Elem, b.Elem)
	case *Mutable:
		b, ok := t2.(*Mutable)
		return ok && typeEquals(a.Elem, b.Elem)
	case *Async:
		b, ok := t2.(*Async)
		return ok && Subtype(a.Result, b.Result)
	case *Object:
		b, ok := t2.(*Object)
		if !ok || a.Sort != b.Sort {
			return false
		}
		// Width+depth: every field b wants must be present in a with a
		// subtype. a may have additional fields (width subtyping).
		for _, bf := range b.Fields {
			af, found := LookupField(bf.Label, a.Fields)
			if !found || !Subtype(af, bf.Type) {
				return false
			}
		}
		return true
	case *Variant:
		b, ok := t2.(*Variant)
		if !ok {
			return false
		}
		// Depth+width the other way: every arm a offers must be accepted
		// by some arm of b with a wider or equal type.
		for _, aa := range a.Arms {
			found := false
			for _, ba := range b.Arms {
				if aa.Ctor == ba.Ctor && Subtype(aa.Type, ba.Type) {
					found = true
					break
				}
			}
			if !found {
				return false
			}
		}
		return true
	case *Func:
		b, ok := t2.(*Func)
		if !ok || a.Sort != b.Sort || a.Control != b.Control || len(a.Binds) != len(b.Binds) || len(a.Domain) != len(b.Domain) || len(a.Codomain) != len(b.Codomain) {
			return false
		}
		// Contravariant in the domain, covariant in the codomain.
		for i := range a.Domain {
			if !Subtype(b.Domain[i], a.Domain[i]) {
				return false
			}
		}
		for i := range a.Codomain {
			if !Subtype(a.Codomain[i], b.Codomain[i]) {
				return false
			}
		}
		return true
	case *ConApp:
		b, ok := t2.(*ConApp)
		if !ok || !a.Con.Same(b.Con) || len(a.Args) != len(b.Args) {
			return false
		}
		for i := range a.Args {
			if !typeEquals(a.Args[i], b.Args[i]) {
				return false
			}
		}
		return true
	case *BoundVar:
		b, ok := t2.(*BoundVar)
		return ok && a.Index == b.Index
	case *Serialized:
		b, ok := t2.(*Serialized)
		return ok && Subtype(a.Elem, b.Elem)
	default:
		return false
	}
}

// typeEquals is structural type equality, used where subtyping must be
// invariant (mutable cells, constructor-application arguments).
func typeEquals(a, b Type) bool {
	return Subtype(a, b) && Subtype(b, a)
}
