package ir

import "github.com/sunholo/actor-ir/internal/types"

// Program is the top-level unit the pipeline checks and transforms: an
// actor's (or plain module's) argument list, its body's declaration
// groups, and the fields it exposes (spec §6.1).
//
// DeclGroups is a list of groups rather than a flat declaration list:
// each inner slice is checked as one mutually-recursive unit (so
// forward references among its members are legal), while groups
// themselves are checked in order, each seeing every name the previous
// groups bound (spec §4.3.1, "declaration groups").
type Program struct {
	Args        []Param
	DeclGroups  [][]Decl
	ActorFields []ActorField
	Flavor      types.Flavor
}
