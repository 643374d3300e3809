package types

// ValEnv is the value environment: name -> type (spec §3.3). It is an
// immutable overlay over a parent environment so sibling branches of the
// IR tree can share the outer scope without ever mutating it (spec §5).
type ValEnv struct {
	parent *ValEnv
	name   string
	typ    Type
}

// Lookup walks the overlay chain for name, returning its type if bound.
func (e *ValEnv) Lookup(name string) (Type, bool) {
	for cur := e; cur != nil; cur = cur.parent {
		if cur.name == name {
			return cur.typ, true
		}
	}
	return nil, false
}

// Extend returns a new environment with name bound to typ, shadowing any
// existing binding of the same name without mutating e.
func (e *ValEnv) Extend(name string, typ Type) *ValEnv {
	return &ValEnv{parent: e, name: name, typ: typ}
}

// LabelEnv maps an in-scope break-label to the type its break target
// expects (spec §3.3).
type LabelEnv struct {
	parent *LabelEnv
	label  string
	typ    Type
}

func (e *LabelEnv) Lookup(label string) (Type, bool) {
	for cur := e; cur != nil; cur = cur.parent {
		if cur.label == label {
			return cur.typ, true
		}
	}
	return nil, false
}

func (e *LabelEnv) Extend(label string, typ Type) *LabelEnv {
	return &LabelEnv{parent: e, label: label, typ: typ}
}

// Scope is the pair (value environment, constructor environment) that
// the checker's declaration gathering extends as it walks a block (spec
// §3.3).
type Scope struct {
	Vals *ValEnv
	Cons *ConSet
}

// NewScope returns an empty top-level scope.
func NewScope() Scope {
	return Scope{Vals: nil, Cons: NewConSet()}
}

// Flavor toggles feature availability across the pipeline's passes (spec
// §6.2). Each pass may clear a flag it has eliminated; the checker then
// refuses any node relying on a cleared feature.
type Flavor struct {
	HasAwait    bool // await/async not yet erased
	HasShow     bool // show operator present
	Serialized  bool // message payloads appear as Serialized t
	HasAsyncTyp bool // async types permitted
}

// DefaultFlavor is the flavor a freshly elaborated program starts in:
// every feature still available.
func DefaultFlavor() Flavor {
	return Flavor{HasAwait: true, HasShow: true, Serialized: false, HasAsyncTyp: true}
}

// Context extends a Scope with the checker's control-flow-sensitive
// state: in-scope break labels, the enclosing function's return type (if
// any), and whether an enclosing `async` block makes `await` legal here
// (spec §3.3).
type Context struct {
	Scope
	Labels *LabelEnv
	Return *Type // nil at top level, Some(t) inside a function body
	Async  bool
	Flavor Flavor
}

// WithScope returns a copy of c with its Scope replaced, carrying the
// rest of the context (labels, return slot, async flag, flavor)
// unchanged — used when descending into a BlockE whose declarations
// extend the value/constructor environment but not the control state.
func (c Context) WithScope(s Scope) Context {
	c.Scope = s
	return c
}

// WithLabel returns a copy of c with label bound to typ, for checking a
// LabelE's body (spec §4.3, LabelE rule).
func (c Context) WithLabel(label string, typ Type) Context {
	c.Labels = c.Labels.Extend(label, typ)
	return c
}

// WithReturn returns a copy of c entering a function body: labels reset
// (a function body starts with no in-scope break labels), return slot
// set to the declared codomain, async cleared.
func (c Context) WithReturn(ret Type) Context {
	c.Labels = nil
	c.Return = &ret
	c.Async = false
	return c
}

// WithAsync returns a copy of c entering an `async` block: labels reset,
// return slot set to the async body's own result type, async flag set.
func (c Context) WithAsync(result Type) Context {
	c.Labels = nil
	c.Return = &result
	c.Async = true
	return c
}

// WithActor returns a copy of c entering an actor body: async cleared
// (spec §4.3, ActorE rule — "async flag cleared for the scope").
func (c Context) WithActor() Context {
	c.Async = false
	return c
}
