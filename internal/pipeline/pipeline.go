package pipeline

import (
	"fmt"
	"time"

	"github.com/sunholo/actor-ir/internal/check"
	"github.com/sunholo/actor-ir/internal/ir"
	"github.com/sunholo/actor-ir/internal/transform/await"
	"github.com/sunholo/actor-ir/internal/transform/coverage"
	"github.com/sunholo/actor-ir/internal/transform/tailcall"
	"github.com/sunholo/actor-ir/internal/types"
)

// Result carries the pipeline's output program alongside per-phase
// timings, the same shape the teacher's own driver result reports
// (internal/pipeline.Result.PhaseTimings), scoped down to the phases
// this repository actually runs.
type Result struct {
	Program      *ir.Program
	PhaseTimings map[string]time.Duration
}

// Error wraps a checker failure with the IR dump of the program the
// checker was looking at when PipelineConfig.Verbose is set (spec §4.3.3: "the
// driver prints [the diagnostic] along with the IR dump in verbose
// mode").
type Error struct {
	Phase string
	Err   error
	Dump  string
}

func (e *Error) Error() string {
	if e.Dump == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s\n%s", e.Err.Error(), e.Dump)
}

func (e *Error) Unwrap() error { return e.Err }

// Run sequences the pipeline's passes over prog (spec §2): an optional
// coverage pass, the tail-call optimizer, a re-check, the await
// transform, and a final re-check. Each transform is skipped per
// cfg.Phases; each re-check runs immediately after its own transform and
// is skipped together with it, so with both transforms disabled no check
// runs at all — a transform's own correctness is only as good as the
// check that follows it.
func Run(cfg PipelineConfig, topScope types.Scope, c *ir.Counter, prog *ir.Program) (Result, error) {
	result := Result{PhaseTimings: make(map[string]time.Duration)}

	if cfg.Flavor != nil {
		prog.Flavor = *cfg.Flavor
	}

	if cfg.Phases.Coverage {
		start := time.Now()
		prog = coverage.New(c).Transform(prog)
		result.PhaseTimings["coverage"] = time.Since(start)
	}

	if cfg.Phases.TailCall {
		start := time.Now()
		prog = tailcall.New(c, cfg.TailCall).Transform(prog)
		result.PhaseTimings["tailcall"] = time.Since(start)

		if err := runCheck(cfg, "tailcall", topScope, prog); err != nil {
			return result, err
		}
	}

	if cfg.Phases.Await {
		start := time.Now()
		prog = await.New(c).Transform(prog)
		result.PhaseTimings["await"] = time.Since(start)

		if err := runCheck(cfg, "await", topScope, prog); err != nil {
			return result, err
		}
	}

	result.Program = prog
	return result, nil
}

func runCheck(cfg PipelineConfig, phase string, topScope types.Scope, prog *ir.Program) error {
	checker := check.New(phase)
	err := checker.CheckProgram(topScope, prog)
	if err == nil {
		return nil
	}
	perr := &Error{Phase: phase, Err: err}
	if cfg.Verbose {
		perr.Dump = dumpProgram(prog)
	}
	return perr
}

// dumpProgram renders every top-level declaration and actor field
// through internal/ir/print.go, for attaching to a verbose checker
// failure.
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
