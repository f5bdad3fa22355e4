package main

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/preston-fay/kie-v3-sub001/internal/config"
	"github.com/preston-fay/kie-v3-sub001/internal/engine"
	"github.com/preston-fay/kie-v3-sub001/internal/workspace"
)

func testEngine(t *testing.T) *engine.Engine {
	t.Helper()
	ws := workspace.New(t.TempDir())
	cfg, err := config.Load("")
	require.NoError(t, err)
	return engine.New(ws, cfg, zerolog.Nop())
}

func TestRegisterCommandsWiresEveryVerb(t *testing.T) {
	root := &cobra.Command{Use: "kie"}
	force := false
	registerCommands(root, testEngine(t), &force)

	want := []string{
		"bootstrap", "doctor", "status", "interview", "spec", "theme",
		"eda", "analyze", "build", "preview", "validate", "go", "info",
	}
	for _, name := range want {
		cmd, _, err := root.Find([]string{name})
		require.NoError(t, err, "command %q should be registered", name)
		require.Equal(t, name, cmd.Name())
	}
}

func TestBuildCommandListsValidTargets(t *testing.T) {
	root := &cobra.Command{Use: "kie"}
	force := false
	registerCommands(root, testEngine(t), &force)

	cmd, _, err := root.Find([]string{"build"})
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"presentation", "dashboard", "report"}, cmd.ValidArgs)
}

func TestSpecCommandHasInitRepairSetFlags(t *testing.T) {
	root := &cobra.Command{Use: "kie"}
	force := false
	registerCommands(root, testEngine(t), &force)

	cmd, _, err := root.Find([]string{"spec"})
	require.NoError(t, err)
	require.NotNil(t, cmd.Flags().Lookup("init"))
	require.NotNil(t, cmd.Flags().Lookup("repair"))
	require.NotNil(t, cmd.Flags().Lookup("set"))
}

func TestInfoCommandPrintsVersion(t *testing.T) {
	got := generalInfo("1.2.3")
	require.Contains(t, got, "kie 1.2.3")
	require.Contains(t, got, "bootstrap")
	require.Contains(t, got, "Recovery")
}
