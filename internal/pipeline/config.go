// Package pipeline sequences the three IR passes into the driver spec
// §2 describes: tail-call optimization, re-check, await/CPS conversion,
// re-check. It owns no transform logic of its own — internal/transform/*
// and internal/check do the actual work — only the sequencing, the
// per-phase diagnostics, and (optionally) the switch-coverage pass spec
// §9 describes as a separate, opt-in step run ahead of the first check.
package pipeline

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/sunholo/actor-ir/internal/transform/tailcall"
	"github.com/sunholo/actor-ir/internal/types"
)

// Phases selects which of the pipeline's optional steps run. TailCall
// and Await are spec §2's own two transforms and default on; Coverage is
// spec §9's opt-in exhaustiveness pass and defaults off.
type Phases struct {
	Coverage bool `yaml:"coverage"`
	TailCall bool `yaml:"tailcall"`
	Await    bool `yaml:"await"`
}

// DefaultPhases runs exactly the two passes spec §2 names, in order.
func DefaultPhases() Phases {
	return Phases{TailCall: true, Await: true}
}

// PipelineConfig is the driver's own configuration: which phases to run,
// optional flavor flags (spec §6.2) that, when non-nil, replace the
// program's own Flavor before any phase runs, tail-call's own opt-in actor
// descent (spec §9), and a verbose flag that prints the IR dump
// alongside a checker failure the way spec §4.3.3 describes.
type PipelineConfig struct {
	Phases   Phases          `yaml:"phases"`
	Flavor   *types.Flavor   `yaml:"flavor,omitempty"`
	TailCall tailcall.Config `yaml:"tailcall_config"`
	Verbose  bool            `yaml:"verbose"`
}

// DefaultConfig mirrors DefaultPhases with tail-call's default
// (actor bodies opaque) and no flavor override (the input program's own
// Flavor is used as-is).
func DefaultConfig() PipelineConfig {
	return PipelineConfig{Phases: DefaultPhases()}
}

// LoadConfig reads a PipelineConfig from a YAML file (spec.md's ambient
// "YAML-configured driver" stack), falling back to DefaultConfig for
// any field the file doesn't set.
func LoadConfig(path string) (PipelineConfig, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return PipelineConfig{}, err
	}
	return cfg, nil
}
