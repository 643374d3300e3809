package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/peterh/liner"

	"github.com/sunholo/actor-ir/internal/errors"
	"github.com/sunholo/actor-ir/internal/pipeline"
	"github.com/sunholo/actor-ir/internal/types"
)

var (
	// Version info, set by ldflags during build
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"

	green  = color.New(color.FgGreen).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	cyan   = color.New(color.FgCyan).SprintFunc()
	bold   = color.New(color.Bold).SprintFunc()
)

func main() {
	var (
		versionFlag   = flag.Bool("version", false, "Print version information")
		helpFlag      = flag.Bool("help", false, "Show help")
		verboseFlag   = flag.Bool("verbose", false, "Dump IR alongside a checker failure")
		configFlag    = flag.String("config", "", "Path to a pipeline config YAML file")
		coverage      = flag.Bool("coverage", false, "Run the switch-coverage pass ahead of the first check")
		descendActors = flag.Bool("descend-actors", false, "Let the tail-call pass look inside actor bodies")
	)

	flag.Parse()

	if *versionFlag {
		printVersion()
		return
	}

	if *helpFlag || flag.NArg() == 0 {
		printHelp()
		return
	}

	cfg, err := loadConfig(*configFlag, *verboseFlag, *coverage, *descendActors)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", red("Error"), err)
		os.Exit(1)
	}

	command := flag.Arg(0)

	switch command {
	case "run":
		if flag.NArg() < 2 {
			fmt.Fprintf(os.Stderr, "%s: missing fixture name\n", red("Error"))
			fmt.Println("Usage: ircc run <fixture>")
			listFixtures()
			os.Exit(1)
		}
		runFixture(flag.Arg(1), cfg)

	case "check":
		if flag.NArg() < 2 {
			fmt.Fprintf(os.Stderr, "%s: missing fixture name\n", red("Error"))
			fmt.Println("Usage: ircc check <fixture>")
			listFixtures()
			os.Exit(1)
		}
		checkFixture(flag.Arg(1))

	case "list":
		listFixtures()

	case "debug":
		name := "tail-recursion"
		if flag.NArg() >= 2 {
			name = flag.Arg(1)
		}
		runDebugStepper(name, cfg)

	default:
		fmt.Fprintf(os.Stderr, "%s: unknown command '%s'\n", red("Error"), command)
		printHelp()
		os.Exit(1)
	}
}

func loadConfig(path string, verbose, coverage, descendActors bool) (pipeline.PipelineConfig, error) {
	cfg := pipeline.DefaultConfig()
	if path != "" {
		loaded, err := pipeline.LoadConfig(path)
		if err != nil {
			return pipeline.PipelineConfig{}, fmt.Errorf("loading config %q: %w", path, err)
		}
		cfg = loaded
	}
	if verbose {
		cfg.Verbose = true
	}
	if coverage {
		cfg.Phases.Coverage = true
	}
	if descendActors {
		cfg.TailCall.DescendActors = true
	}
	return cfg, nil
}

func printVersion() {
	fmt.Printf("ircc %s\n", bold(Version))
	if Commit != "unknown" {
		fmt.Printf("Commit: %s\n", Commit)
	}
	if BuildTime != "unknown" {
		fmt.Printf("Built:  %s\n", BuildTime)
	}
	fmt.Println("\nactor-ir pipeline driver")
}

func printHelp() {
	fmt.Println(bold("ircc - actor-ir pipeline driver"))
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  ircc <command> [arguments]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Printf("  %s <fixture>   Run the pipeline over a built-in fixture\n", cyan("run"))
	fmt.Printf("  %s <fixture> Type-check a fixture without transforming it\n", cyan("check"))
	fmt.Printf("  %s              List the available built-in fixtures\n", cyan("list"))
	fmt.Printf("  %s [fixture] Step through the pipeline's phases interactively\n", cyan("debug"))
	fmt.Println()
	fmt.Println("Flags:")
	fmt.Println("  --version          Print version information")
	fmt.Println("  --help             Show this help message")
	fmt.Println("  --verbose          Dump IR alongside a checker failure")
	fmt.Println("  --config <path>    Load a pipeline config YAML file")
	fmt.Println("  --coverage         Run the switch-coverage pass")
	fmt.Println("  --descend-actors   Let the tail-call pass look inside actor bodies")
}

func listFixtures() {
	fmt.Println("Available fixtures:")
	for _, f := range fixtures {
		fmt.Printf("  %s  %s\n", cyan(f.name), f.doc)
	}
}

func runFixture(name string, cfg pipeline.PipelineConfig) {
	f, ok := lookupFixture(name)
	if !ok {
		fmt.Fprintf(os.Stderr, "%s: unknown fixture '%s'\n", red("Error"), name)
		listFixtures()
		os.Exit(1)
	}

	c, prog := f.build()

	fmt.Printf("%s Loaded fixture %s\n", cyan("→"), bold(name))
	printPhaseBanner("input")
	fmt.Println(dumpProgram(prog))

	result, err := pipeline.Run(cfg, types.NewScope(), c, prog)
	if err != nil {
		reportPipelineError(err)
		os.Exit(1)
	}

	for _, phase := range []string{"coverage", "tailcall", "await"} {
		if d, ok := result.PhaseTimings[phase]; ok {
			printPhaseBanner(phase)
			fmt.Printf("  %s %s took %s\n", green("✓"), phase, d)
		}
	}

	printPhaseBanner("output")
	fmt.Println(dumpProgram(result.Program))
	fmt.Printf("%s Pipeline completed\n", green("✓"))
}

func checkFixture(name string) {
	f, ok := lookupFixture(name)
	if !ok {
		fmt.Fprintf(os.Stderr, "%s: unknown fixture '%s'\n", red("Error"), name)
		listFixtures()
		os.Exit(1)
	}

	_, prog := f.build()
	if err := checkAndWrap("check", prog); err != nil {
		if perr, ok := err.(*pipeline.Error); ok {
			perr.Dump = dumpProgram(prog)
		}
		reportPipelineError(err)
		os.Exit(1)
	}
	fmt.Printf("%s No errors found\n", green("✓"))
}

func reportPipelineError(err error) {
	if perr, ok := err.(*pipeline.Error); ok {
		if report, ok := errors.AsReport(perr.Err); ok {
			fmt.Fprintf(os.Stderr, "%s [%s]: %s\n", red("Error"), yellow(string(report.Reason)), report.Message)
		} else {
			fmt.Fprintf(os.Stderr, "%s: %v\n", red("Error"), perr.Err)
		}
		if perr.Dump != "" {
			fmt.Fprintln(os.Stderr, perr.Dump)
		}
		return
	}
	fmt.Fprintf(os.Stderr, "%s: %v\n", red("Error"), err)
}

func printPhaseBanner(phase string) {
	fmt.Printf("\n%s %s\n", bold("=="), bold(strings.ToUpper(phase)))
}

// runDebugStepper steps an operator through the pipeline's phases one
// at a time against one of the built-in fixtures, printing the IR dump
// after each pass.
func runDebugStepper(name string, cfg pipeline.PipelineConfig) {
	f, ok := lookupFixture(name)
	if !ok {
		fmt.Fprintf(os.Stderr, "%s: unknown fixture '%s'\n", red("Error"), name)
		listFixtures()
		os.Exit(1)
	}

	line := liner.NewLiner()
	defer line.Close()
	line.SetCompleter(func(s string) (c []string) {
		for _, cmd := range []string{":next", ":dump", ":quit"} {
			if strings.HasPrefix(cmd, s) {
				c = append(c, cmd)
			}
		}
		return
	})

	c, prog := f.build()
	steps := buildDebugSteps(cfg)
	idx := 0

	fmt.Printf("%s Debugging fixture %s\n", cyan("→"), bold(name))
	fmt.Println(dim("Commands: :next (advance one phase), :dump (show current IR), :quit"))

	for {
		prompt := fmt.Sprintf("ircc[%d/%d]> ", idx, len(steps))
		input, err := line.Prompt(prompt)
		if err == io.EOF {
			fmt.Println(green("\nGoodbye!"))
			return
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", red("Error"), err)
			continue
		}
		line.AppendHistory(input)

		switch strings.TrimSpace(input) {
		case ":quit", ":q":
			return
		case ":dump":
			fmt.Println(dumpProgram(prog))
		case ":next", "":
			if idx >= len(steps) {
				fmt.Println(yellow("pipeline already complete"))
				continue
			}
			step := steps[idx]
			next, err := step.run(c, prog)
			if err != nil {
				reportPipelineError(err)
				continue
			}
			prog = next
			idx++
			printPhaseBanner(step.name)
			fmt.Println(dumpProgram(prog))
		default:
			fmt.Println(yellow("unknown command, try :next, :dump, or :quit"))
		}
	}
}

func dim(s string) string { return color.New(color.Faint).Sprint(s) }
