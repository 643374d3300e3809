package ir

import "github.com/sunholo/actor-ir/internal/types"

// Pattern is the interface every pattern variant implements (spec §3.2).
// Every pattern carries its own expected type annotation, which the
// checker validates during pattern checking (§4.3.2), so later passes can
// read a pattern's type without re-deriving it from context.
type Pattern interface {
	Typ() types.Type
	patternNode()
}

// WildcardPat matches anything, binding nothing.
type WildcardPat struct{ Type types.Type }

func (p *WildcardPat) Typ() types.Type { return p.Type }
func (*WildcardPat) patternNode()      {}

// LitPat matches a literal value exactly.
type LitPat struct {
	Type  types.Type
	Kind  LitKind
	Value interface{}
}

func (p *LitPat) Typ() types.Type { return p.Type }
func (*LitPat) patternNode()      {}

// VarPat matches anything, binding it to Name.
type VarPat struct {
	Type types.Type
	Name string
}

func (p *VarPat) Typ() types.Type { return p.Type }
func (*VarPat) patternNode()      {}

// TuplePat matches a tuple component-wise.
type TuplePat struct {
	Type  types.Type
	Elems []Pattern
}

func (p *TuplePat) Typ() types.Type { return p.Type }
func (*TuplePat) patternNode()      {}

// ObjFieldPat is one labeled component of an ObjPat.
type ObjFieldPat struct {
	Label string
	Pat   Pattern
}

// ObjPat matches an object/module value field-by-field; fields not
// mentioned are ignored (width subtyping extends to pattern matching).
type ObjPat struct {
	Type   types.Type
	Fields []ObjFieldPat
}

func (p *ObjPat) Typ() types.Type { return p.Type }
func (*ObjPat) patternNode()      {}

// OptPat matches an Option value: Arg nil matches None, Arg non-nil
// matches Some(Arg).
type OptPat struct {
	Type types.Type
	Arg  Pattern
}

func (p *OptPat) Typ() types.Type { return p.Type }
func (*OptPat) patternNode()      {}

// VariantPat matches a Variant value injected under Ctor.
type VariantPat struct {
	Type types.Type
	Ctor string
	Arg  Pattern
}

func (p *VariantPat) Typ() types.Type { return p.Type }
func (*VariantPat) patternNode()      {}

// AltPat matches if any of Alts matches; every alternative must bind the
// same set of names at the same types, and in practice that forces each
// alternative to bind no names at all (spec §4.3.2).
type AltPat struct {
	Type types.Type
	Alts []Pattern
}

func (p *AltPat) Typ() types.Type { return p.Type }
func (*AltPat) patternNode()      {}
