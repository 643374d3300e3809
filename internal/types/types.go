// Package types implements the IR's structural type system: the type
// grammar (spec §3.1), subtyping, promotion, and the handful of
// destructuring helpers ("as_*_sub") the checker and transforms rely on
// to avoid repeating type-shape assertions at every call site.
//
// Type constructor identity is by pointer (a *Constructor token), never by
// name — two constructors named "List" are different types unless they
// are the same token. This mirrors the teacher's TCon/TApp split
// (internal/types/types.go) generalized with real constructor identity
// instead of name equality.
package types

import (
	"fmt"
	"sort"
	"strings"
)

// PrimKind enumerates the IR's primitive scalar types.
type PrimKind int

const (
	PNull PrimKind = iota
	PBool
	PNat
	PInt
	PNat8
	PNat16
	PNat32
	PNat64
	PFloat
	PChar
	PText
)

func (k PrimKind) String() string {
	switch k {
	case PNull:
		return "Null"
	case PBool:
		return "Bool"
	case PNat:
		return "Nat"
	case PInt:
		return "Int"
	case PNat8:
		return "Nat8"
	case PNat16:
		return "Nat16"
	case PNat32:
		return "Nat32"
	case PNat64:
		return "Nat64"
	case PFloat:
		return "Float"
	case PChar:
		return "Char"
	case PText:
		return "Text"
	default:
		return "<unknown-prim>"
	}
}

// ObjSort distinguishes the three flavors of Object type.
type ObjSort int

const (
	SortLocalObject ObjSort = iota
	SortModule
	SortActor
)

func (s ObjSort) String() string {
	switch s {
	case SortLocalObject:
		return "Object"
	case SortModule:
		return "Module"
	case SortActor:
		return "Actor"
	default:
		return "<unknown-sort>"
	}
}

// FuncSort is the call-convention dimension of a Function type: Local
// functions are ordinary closures, Shared functions cross actor
// boundaries and carry extra concreteness/shareability obligations.
type FuncSort int

const (
	Local FuncSort = iota
	Shared
)

func (s FuncSort) String() string {
	if s == Shared {
		return "shared"
	}
	return "local"
}

// Control is the second dimension of a Function type: whether calling it
// returns synchronously or hands back a promise (an Async value).
type Control int

const (
	Returns Control = iota
	Promises
)

func (c Control) String() string {
	if c == Promises {
		return "async"
	}
	return "returns"
}

// Type is the interface implemented by every member of the type grammar.
type Type interface {
	String() string
	isType()
}

// Prim is a primitive scalar type.
type Prim struct{ Kind PrimKind }

func (p *Prim) isType()        {}
func (p *Prim) String() string { return p.Kind.String() }

// Any is the top type.
type Any struct{}

func (Any) isType()        {}
func (Any) String() string { return "Any" }

// Non is the bottom type.
type Non struct{}

func (Non) isType()        {}
func (Non) String() string { return "Non" }

// SharedMarker is the supertype of every cross-actor-transmissible type.
type SharedMarker struct{}

func (SharedMarker) isType()        {}
func (SharedMarker) String() string { return "Shared" }

// Tuple is a fixed-arity product. A zero-element Tuple is the unit type;
// Seq (below) is the canonical way to build one from an argument list.
type Tuple struct{ Elems []Type }

func (t *Tuple) isType() {}
func (t *Tuple) String() string {
	parts := make([]string, len(t.Elems))
	for i, e := range t.Elems {
		parts[i] = e.String()
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// Option wraps a type in an optional slot (?t).
type Option struct{ Elem Type }

func (o *Option) isType()        {}
func (o *Option) String() string { return "?" + o.Elem.String() }

// Array is an immutable or mutable homogeneous sequence.
type Array struct {
	Elem Type
	Mut  bool
}

func (a *Array) isType() {}
func (a *Array) String() string {
	if a.Mut {
		return "[var " + a.Elem.String() + "]"
	}
	return "[" + a.Elem.String() + "]"
}

// Mutable is a second-class mutable-cell wrapper, used as the type of a
// mutable variable binding or of a mutable object field (array
// mutability is carried by Array.Mut instead). The type grammar allows
// Mutable anywhere, and the checker does not reject a Mutable in any
// other position (a function parameter or result, a tuple component, a
// type argument).
type Mutable struct{ Elem Type }

func (m *Mutable) isType()        {}
func (m *Mutable) String() string { return "var " + m.Elem.String() }

// Async is a suspended computation that eventually yields Result.
type Async struct{ Result Type }

func (a *Async) isType()        {}
func (a *Async) String() string { return "async " + a.Result.String() }

// Field is one labeled member of an Object type.
type Field struct {
	Label string
	Type  Type
}

// Object is a record/module/actor type: fields are carried in strict
// ascending label order with unique labels (an invariant the checker
// verifies in checkTyp, not one this constructor enforces — a type built
// directly by a transform must already satisfy it).
type Object struct {
	Sort   ObjSort
	Fields []Field
}

func (o *Object) isType() {}
func (o *Object) String() string {
	parts := make([]string, len(o.Fields))
	for i, f := range o.Fields {
		parts[i] = fmt.Sprintf("%s: %s", f.Label, f.Type)
	}
	return fmt.Sprintf("%s{%s}", o.Sort, strings.Join(parts, "; "))
}

// VariantArm is one labeled alternative of a Variant type.
type VariantArm struct {
	Ctor string
	Type Type
}

// Variant is a closed sum type: arms are carried in strict ascending
// constructor-name order with unique names.
type Variant struct{ Arms []VariantArm }

func (v *Variant) isType() {}
func (v *Variant) String() string {
	parts := make([]string, len(v.Arms))
	for i, a := range v.Arms {
		parts[i] = fmt.Sprintf("#%s %s", a.Ctor, a.Type)
	}
	return "{" + strings.Join(parts, " | ") + "}"
}

// Bound is one type-parameter binder: a name (referenced via BoundVar
// inside the body it scopes) paired with its upper bound (Any if
// unconstrained).
type Bound struct {
	Name  string
	Upper Type
}

// Func is a function type: sort and control are independent axes (a
// Shared function can Return or Promise; a Local function likewise).
type Func struct {
	Sort     FuncSort
	Control  Control
	Binds    []Bound
	Domain   []Type
	Codomain []Type
}

func (f *Func) isType() {}
func (f *Func) String() string {
	binds := ""
	if len(f.Binds) > 0 {
		names := make([]string, len(f.Binds))
		for i, b := range f.Binds {
			names[i] = b.Name
		}
		binds = "<" + strings.Join(names, ", ") + ">"
	}
	dom := Seq(f.Domain).String()
	cod := Seq(f.Codomain).String()
	arrow := "->"
	if f.Control == Promises {
		arrow = "~>"
	}
	prefix := ""
	if f.Sort == Shared {
		prefix = "shared "
	}
	return fmt.Sprintf("%s%s%s %s %s", prefix, binds, dom, arrow, cod)
}

// ConKind describes what a type Constructor stands for: Def constructors
// are aliases with a concrete Body; Abs constructors are abstract (no
// Body — an unapplied generic parameter or an external actor-class
// placeholder) and only ever appear applied, never promoted.
type ConKind interface {
	isConKind()
}

// KindDef is a type alias: `type C<params> = Body`.
type KindDef struct {
	Params []Bound
	Body   Type
}

func (KindDef) isConKind() {}

// KindAbs is an abstract constructor: bound type parameters, no body.
type KindAbs struct {
	Params []Bound
}

func (KindAbs) isConKind() {}

// Constructor is a globally unique type-constructor token. Equality is by
// pointer identity, never by Name — Name exists only for diagnostics.
type Constructor struct {
	id   uint64
	Name string
	Kind ConKind
}

var conCounter uint64

// NewConstructor mints a fresh, globally unique type constructor.
func NewConstructor(name string, kind ConKind) *Constructor {
	conCounter++
	return &Constructor{id: conCounter, Name: name, Kind: kind}
}

// Same reports whether two constructors are the identical token.
func (c *Constructor) Same(o *Constructor) bool { return c == o }

func (c *Constructor) String() string { return c.Name }

// ConApp is a type constructor applied to concrete type arguments.
type ConApp struct {
	Con  *Constructor
	Args []Type
}

func (c *ConApp) isType() {}
func (c *ConApp) String() string {
	if len(c.Args) == 0 {
		return c.Con.Name
	}
	parts := make([]string, len(c.Args))
	for i, a := range c.Args {
		parts[i] = a.String()
	}
	return fmt.Sprintf("%s<%s>", c.Con.Name, strings.Join(parts, ", "))
}

// BoundVar is a de Bruijn-indexed reference to an enclosing binder's type
// parameter. It is only valid inside a ConKind's Body or a Func's
// Domain/Codomain under that Func's own Binds — it must never appear in a
// type handed to the checker at the top of a CheckProgram call (§3.1).
type BoundVar struct{ Index int }

func (b *BoundVar) isType()        {}
func (b *BoundVar) String() string { return fmt.Sprintf("$%d", b.Index) }

// Serialized marks a type that appears only in the serialized compilation
// flavor, where message payloads are wrapped rather than passed raw.
type Serialized struct{ Elem Type }

func (s *Serialized) isType()        {}
func (s *Serialized) String() string { return "serialized " + s.Elem.String() }

// Pre is the "unresolved" sentinel. It is illegal in any type handed to
// the checker; an earlier pass that leaves a Pre behind has a bug.
type Pre struct{}

func (Pre) isType()        {}
func (Pre) String() string { return "Pre" }

// Seq canonicalizes an argument-type list into the type it denotes as a
// single value: empty becomes unit (the zero-element Tuple), a
// one-element list collapses to its element, otherwise it is a Tuple.
func Seq(ts []Type) Type {
	switch len(ts) {
	case 0:
		return &Tuple{}
	case 1:
		return ts[0]
	default:
		return &Tuple{Elems: ts}
	}
}

// LookupField returns the type of the named field, in the given
// (strictly sorted) field list, and whether it was found.
func LookupField(label string, fields []Field) (Type, bool) {
	for _, f := range fields {
		if f.Label == label {
			return f.Type, true
		}
	}
	return nil, false
}

// FieldsSortedDistinct reports whether fields are in strict ascending
// label order with no duplicate labels — the invariant §3.2 requires of
// every Object type handed to the checker.
func FieldsSortedDistinct(fields []Field) bool {
	for i := 1; i < len(fields); i++ {
		if fields[i-1].Label >= fields[i].Label {
			return false
		}
	}
	return true
}

// ArmsSortedDistinct is FieldsSortedDistinct's Variant-arm analogue.
func ArmsSortedDistinct(arms []VariantArm) bool {
	if !sort.SliceIsSorted(arms, func(i, j int) bool { return arms[i].Ctor < arms[j].Ctor }) {
		return false
	}
	for i := 1; i < len(arms); i++ {
		if arms[i-1].Ctor == arms[i].Ctor {
			return false
		}
	}
	return true
}
