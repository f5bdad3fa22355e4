// Command kie runs the Kearney Insight Engine CLI.
//
// kie drives consultants through a fixed Rails workflow — startkie →
// spec → eda → analyze → build → preview — gated at every step by the
// Gate Engine and the Brand Validator, with every run recorded in an
// append-only Evidence Ledger.
//
// Optional environment variables:
//
//	KIE_CONFIG            - Path to a kie.toml config file
//	KIE_LOG_LEVEL         - Log level: debug, info, warn, error (default: info)
//	KIE_BRAND_MODE        - Brand Validator strictness: strict, lenient (default: strict)
//	KIE_NODE_FLOOR        - Minimum Node.js version for dashboard builds
//	KIE_PYTHON_FLOOR      - Minimum Python version, stored in config; no gate check reads it
package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/preston-fay/kie-v3-sub001/internal/config"
	"github.com/preston-fay/kie-v3-sub001/internal/engine"
	"github.com/preston-fay/kie-v3-sub001/internal/workspace"
)

// Version is set via ldflags at build time.
var Version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "kie: %v\n", err)
		os.Exit(exitCodeFor(err))
	}
}

func run() error {
	var configPath string
	var workspaceRoot string
	var force bool

	root := &cobra.Command{
		Use:           "kie",
		Short:         "Kearney Insight Engine — gated, rails-driven client deliverable builder",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to kie.toml")
	root.PersistentFlags().StringVar(&workspaceRoot, "workspace", ".", "workspace root directory")
	root.PersistentFlags().BoolVar(&force, "force", false, "override soft-block gate findings")

	// Config and workspace are resolved once flags have been parsed, so
	// --config and --workspace take effect.
	eng := &engine.Engine{}
	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		*eng = *engine.New(workspace.New(workspaceRoot), cfg, newLogger(cfg.Log.Level))
		return nil
	}

	registerCommands(root, eng, &force)

	return root.Execute()
}

func newLogger(level string) zerolog.Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	l := zerolog.New(os.Stderr).With().Timestamp().Logger()
	switch strings.ToLower(level) {
	case "debug":
		return l.Level(zerolog.DebugLevel)
	case "warn", "warning":
		return l.Level(zerolog.WarnLevel)
	case "error":
		return l.Level(zerolog.ErrorLevel)
	default:
		return l.Level(zerolog.InfoLevel)
	}
}

// exitCodeFor maps a top-level run() error to a process exit code. Gate
// decisions are surfaced through *exitError (set by commands.go); any
// other error (config load failure, I/O error) is an unconditional
// CLI-usage-level failure.
func exitCodeFor(err error) int {
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	return 1
}

type exitError struct {
	code int
	msg  string
}

func (e *exitError) Error() string { return e.msg }
