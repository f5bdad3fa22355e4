package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/preston-fay/kie-v3-sub001/internal/engine"
)

// registerCommands wires one cobra.Command per kie verb, each
// delegating to engine.Run for the actual pre-gate/handler/post-gate
// lifecycle. Command bodies stay thin on purpose — all policy lives in
// the engine, not in the CLI layer.
func registerCommands(root *cobra.Command, eng *engine.Engine, force *bool) {
	root.AddCommand(
		simpleCommand(eng, force, "bootstrap", "Initialize the workspace directory layout"),
		simpleCommand(eng, force, "doctor", "Diagnose workspace, spec, and toolchain health"),
		simpleCommand(eng, force, "status", "Show the current Rails stage and next suggested command"),
		interviewCommand(eng, force),
		specCommand(eng, force),
		themeCommand(eng, force),
		edaCommand(eng, force),
		simpleCommand(eng, force, "analyze", "Run the mapper, analyzer, triage, and planner stages"),
		buildCommand(eng, force),
		simpleCommand(eng, force, "preview", "Re-validate the latest build against the Brand Validator"),
		simpleCommand(eng, force, "validate", "Run a standalone Brand Validator pass"),
		goCommand(eng, force),
		infoCommand(),
	)
}

func simpleCommand(eng *engine.Engine, force *bool, verb, short string) *cobra.Command {
	return &cobra.Command{
		Use:   verb,
		Short: short,
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVerb(cmd.Context(), eng, verb, args, *force, "")
		},
	}
}

func interviewCommand(eng *engine.Engine, force *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "interview [key=value ...]",
		Short: "Answer the spec interview as key=value pairs",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVerb(cmd.Context(), eng, "interview", args, *force, "")
		},
	}
}

func specCommand(eng *engine.Engine, force *bool) *cobra.Command {
	var initFlag, repairFlag bool
	var setPairs []string

	cmd := &cobra.Command{
		Use:   "spec",
		Short: "Initialize, update, or repair the project spec",
		RunE: func(cmd *cobra.Command, args []string) error {
			verbArgs := append([]string{}, setPairs...)
			verbArgs = append(verbArgs, args...)
			if initFlag {
				verbArgs = append(verbArgs, "--init")
			}
			if repairFlag {
				verbArgs = append(verbArgs, "--repair")
			}
			if len(setPairs) > 0 {
				verbArgs = append(verbArgs, "--set")
			}
			return runVerb(cmd.Context(), eng, "spec", verbArgs, *force, "")
		},
	}
	cmd.Flags().BoolVar(&initFlag, "init", false, "initialize a new spec from key=value args")
	cmd.Flags().BoolVar(&repairFlag, "repair", false, "fill in missing required fields and reset rails to spec")
	cmd.Flags().StringArrayVar(&setPairs, "set", nil, "key=value spec field to set")
	return cmd
}

func themeCommand(eng *engine.Engine, force *bool) *cobra.Command {
	return &cobra.Command{
		Use:       "theme {dark|light}",
		Short:     "Set the KDS theme the build targets",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"dark", "light"},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVerb(cmd.Context(), eng, "theme", args, *force, "")
		},
	}
}

func edaCommand(eng *engine.Engine, force *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "eda [file]",
		Short: "Load and profile a data file (defaults to the first file under data/)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVerb(cmd.Context(), eng, "eda", args, *force, "")
		},
	}
}

func buildCommand(eng *engine.Engine, force *bool) *cobra.Command {
	return &cobra.Command{
		Use:       "build {presentation|dashboard|report}",
		Short:     "Assemble a deliverable from the visualization plan",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"presentation", "dashboard", "report"},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVerb(cmd.Context(), eng, "build", args, *force, args[0])
		},
	}
}

func goCommand(eng *engine.Engine, force *bool) *cobra.Command {
	var full bool
	cmd := &cobra.Command{
		Use:   "go",
		Short: "Advance through the Rails workflow automatically",
		RunE: func(cmd *cobra.Command, args []string) error {
			verbArgs := args
			if full {
				verbArgs = append(verbArgs, "--full")
			}
			return runVerb(cmd.Context(), eng, "go", verbArgs, *force, "")
		},
	}
	cmd.Flags().BoolVar(&full, "full", false, "run every remaining stage instead of just the next one")
	return cmd
}

// runVerb executes one command lifecycle through the engine and
// translates its Outcome into process output and, on non-ALLOW
// decisions, an *exitError carrying the spec's exit code.
func runVerb(ctx context.Context, eng *engine.Engine, verb string, args []string, force bool, buildTarget string) error {
	outcome, err := eng.Run(ctx, verb, args, force, buildTarget)
	if err != nil {
		return &exitError{code: 3, msg: err.Error()}
	}

	fmt.Println(outcome.Message)
	if outcome.RecoveryPlan != nil {
		fmt.Println()
		fmt.Println("Recovery plan:")
		for _, tier := range outcome.RecoveryPlan.Tiers {
			fmt.Printf("  %s: %s\n", tier.Title, strings.Join(tier.Commands, ", "))
		}
	}

	if code := outcome.ExitCode(); code != 0 {
		return &exitError{code: code, msg: outcome.Message}
	}
	return nil
}
