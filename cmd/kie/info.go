package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// infoCommand prints a general overview of the kie workflow, mirroring
// the general-info subcommand consultants reach for when they've
// forgotten what stage comes next.
func infoCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Print an overview of the kie workflow and command surface",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Print(generalInfo(Version))
			return nil
		},
	}
}

func generalInfo(version string) string {
	return fmt.Sprintf(`kie %s — Kearney Insight Engine

kie drives a consultant-facing deliverable through a fixed Rails
workflow, gated at every step:

  bootstrap → interview/spec → eda → analyze → build → preview

GATE ENGINE

  Every command runs a pre-gate (workspace bootstrapped? spec valid?
  theme set? required upstream artifact present?) before it does any
  work, and a post-gate (declared outputs actually on disk with matching
  hashes? no critical brand violation?) before Rails is allowed to
  advance. A BLOCK never mutates Rails state.

COMMANDS

  bootstrap            create the workspace directory layout
  doctor               diagnose workspace/spec/toolchain health
  status                show the current stage and suggested next command
  interview k=v ...    answer the spec interview
  spec --init|--set|--repair
                        initialize, update, or repair the spec
  theme {dark|light}   set the KDS theme a build targets
  eda [file]           load and profile a data file
  analyze              map columns, generate and triage insights, plan charts
  build {presentation|dashboard|report}
                        assemble a deliverable from the visualization plan
  preview              re-validate the latest build
  validate             run a standalone Brand Validator pass
  go [--full]          advance through Rails automatically

EVERY RUN IS RECORDED

  Each command writes one append-only Evidence Record and regenerates
  the Trust Bundle (project_state/trust_bundle.md and .json) in full.
  Any run that does not cleanly succeed also writes a four-tier Recovery
  Plan to project_state/recovery_plan.md.
`, version)
}
