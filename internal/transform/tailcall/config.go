// Package tailcall implements the self tail-call optimizer (spec §4.4):
// a locally bound function with at least one self tail call, called with
// an identity generic instantiation, is rewritten into a loop-and-reassign
// form so its stack depth is bounded independent of the recursion depth
// a caller supplies.
//
// Grounded on the teacher's internal/pipeline driver's pass-sequencing
// idiom (internal/pipeline/pipeline.go) for how a transform is structured
// as a single exported entry point over an *ir.Program, and on
// internal/core/core.go's (deleted) recursive tree-walk style for the
// traversal itself — this package just carries a narrower, purpose-built
// environment (tail_pos, info) instead of a general substitution map.
package tailcall

// Config toggles optional behavior of the optimizer.
type Config struct {
	// DescendActors makes the optimizer look inside actor declarations
	// and fields instead of treating an actor body as opaque (spec §9,
	// "Open question": the source's tail-call pass has a TODO for this;
	// the spec leaves it to the implementation, requiring only that the
	// checker accept either choice). Default false matches the spec's
	// own described behavior (actor bodies untouched).
	DescendActors bool `yaml:"descend_actors"`
}
