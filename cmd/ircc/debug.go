package main

import (
	"fmt"

	"github.com/sunholo/actor-ir/internal/check"
	"github.com/sunholo/actor-ir/internal/ir"
	"github.com/sunholo/actor-ir/internal/pipeline"
	"github.com/sunholo/actor-ir/internal/transform/await"
	"github.com/sunholo/actor-ir/internal/transform/coverage"
	"github.com/sunholo/actor-ir/internal/transform/tailcall"
	"github.com/sunholo/actor-ir/internal/types"
)

// debugStep is one phase the interactive stepper can advance through.
type debugStep struct {
	name string
	run  func(c *ir.Counter, prog *ir.Program) (*ir.Program, error)
}

// buildDebugSteps mirrors pipeline.Run's own phase order, broken into
// individually steppable units so :next advances exactly one pass at a
// time instead of running the whole pipeline at once.
func buildDebugSteps(cfg pipeline.PipelineConfig) []debugStep {
	var steps []debugStep

	if cfg.Phases.Coverage {
		steps = append(steps, debugStep{"coverage", func(c *ir.Counter, prog *ir.Program) (*ir.Program, error) {
			return coverage.New(c).Transform(prog), nil
		}})
	}

	if cfg.Phases.TailCall {
		steps = append(steps, debugStep{"tailcall", func(c *ir.Counter, prog *ir.Program) (*ir.Program, error) {
			return tailcall.New(c, cfg.TailCall).Transform(prog), nil
		}})
		steps = append(steps, debugStep{"check-after-tailcall", func(c *ir.Counter, prog *ir.Program) (*ir.Program, error) {
			return prog, checkAndWrap("tailcall", prog)
		}})
	}

	if cfg.Phases.Await {
		steps = append(steps, debugStep{"await", func(c *ir.Counter, prog *ir.Program) (*ir.Program, error) {
			return await.New(c).Transform(prog), nil
		}})
		steps = append(steps, debugStep{"check-after-await", func(c *ir.Counter, prog *ir.Program) (*ir.Program, error) {
			return prog, checkAndWrap("await", prog)
		}})
	}

	return steps
}

func checkAndWrap(phase string, prog *ir.Program) error {
	checker := check.New(phase)
	if err := checker.CheckProgram(types.NewScope(), prog); err != nil {
		return &pipeline.Error{Phase: phase, Err: err}
	}
	return nil
}

// dumpProgram renders every top-level declaration and actor field
// through internal/ir/print.go, for the CLI's phase-by-phase output.
func dumpProgram(prog *ir.Program) string {
	var out string
	for gi, group := range prog.DeclGroups {
		out += fmt.Sprintf("; decl group %d\n", gi)
		for _, d := range group {
			out += dumpDecl(d)
		}
	}
	for _, f := range prog.ActorFields {
		out += fmt.Sprintf("; actor field %s\n%s\n", f.Label, ir.Print(f.Value))
	}
	return out
}

func dumpDecl(d ir.Decl) string {
	switch x := d.(type) {
	case *ir.LetDecl:
		return ir.Print(x.Value) + "\n"
	case *ir.VarDecl:
		return ir.Print(x.Value) + "\n"
	default:
		return ""
	}
}
