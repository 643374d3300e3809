// Package errors provides the structured diagnostic type the IR checker
// and the two transforms raise when they detect invalid IR (spec §4.3.3,
// §7). There is no user-facing error-code catalogue here — spec.md
// places that out of scope, since every diagnostic this package carries
// signals a bug in an earlier pass, never a source-language mistake a
// user could fix. Reason trims the teacher's PAR/MOD/LDR/... catalogue
// (internal/errors/codes.go) down to the handful of internal-diagnostic
// reasons the checker and transforms actually raise.
package errors

// Reason enumerates the internal diagnostic reasons this repository's
// passes raise. Unlike the teacher's PAR###/MOD###/LDR### codes, these
// are not a stable, versioned, user-facing taxonomy — they exist so a
// Report can be matched on in tests without string-comparing Message.
type Reason string

const (
	// ReasonKindMismatch: a node's declared type does not have the shape
	// its variant requires (e.g. ProjE on a non-Tuple).
	ReasonKindMismatch Reason = "kind_mismatch"

	// ReasonSubtypeViolation: an inferred type failed `<:` against its
	// required supertype (e.g. an argument's type is not a subtype of
	// the declared domain).
	ReasonSubtypeViolation Reason = "subtype_violation"

	// ReasonEffectViolation: a node's inferred effect exceeds its
	// declared effect annotation.
	ReasonEffectViolation Reason = "effect_violation"

	// ReasonScopeViolation: a name, label, or return slot was used where
	// it is not in scope.
	ReasonScopeViolation Reason = "scope_violation"

	// ReasonSortMismatch: a function or object's sort (Local/Shared,
	// Object/Module/Actor) does not match what the rule requires.
	ReasonSortMismatch Reason = "sort_mismatch"

	// ReasonNotShared: a value required to be shareable (a Shared
	// function's domain/codomain, an actor field) is not.
	ReasonNotShared Reason = "not_shared"

	// ReasonNotConcrete: a value required to be concrete (no abstract
	// type variables) is not.
	ReasonNotConcrete Reason = "not_concrete"

	// ReasonDuplicate: a declaration-gathering pass found the same name
	// or type constructor bound twice within one block.
	ReasonDuplicate Reason = "duplicate_binding"

	// ReasonInvariantBroken: a structural invariant the IR itself is
	// supposed to maintain (sorted/distinct fields or arms, a closed
	// non-Pre type, unique pattern variables) does not hold.
	ReasonInvariantBroken Reason = "invariant_broken"

	// ReasonPrecondition: a transform's documented precondition (spec
	// §7) does not hold on its input — e.g. an AwaitE with Triv effect.
	ReasonPrecondition Reason = "precondition_violation"
)
