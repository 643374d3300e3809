package ir

import (
	"fmt"

	"golang.org/x/text/unicode/norm"
)

// Counter mints the fresh node IDs and fresh variable names a single
// compilation unit's transforms need. Spec §5 calls out the fresh-name
// counter as the one piece of process-wide mutable state a conforming
// implementation must be able to isolate per compilation unit for
// deterministic, parallel-safe testing — so unlike types.NewConstructor's
// package-level counter, this one is an explicit value the pipeline
// constructs once per run and threads through every pass.
//
// This mirrors the teacher's lexer, which NFC-normalizes source
// identifiers before interning them (internal/lexer) — fresh hint text
// here gets the same treatment so a hint drawn from source text and one
// synthesized by a transform always collide correctly when they denote
// the same name.
type Counter struct {
	node  uint64
	fresh uint64
}

// NewCounter returns a counter starting from zero, the usual case: one
// fresh Counter per compilation unit.
func NewCounter() *Counter {
	return &Counter{}
}

// NextNode mints a fresh node ID.
func (c *Counter) NextNode() uint64 {
	c.node++
	return c.node
}

// FreshName mints a name guaranteed distinct from any other name this
// counter has minted, built from a human-readable hint (normalized to
// NFC so names differing only in combining-character representation
// don't collide with themselves under later text operations).
func (c *Counter) FreshName(hint string) string {
	c.fresh++
	return fmt.Sprintf("%s$%d", norm.NFC.String(hint), c.fresh)
}
