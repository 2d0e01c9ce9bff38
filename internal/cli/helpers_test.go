package cli

import (
	"bytes"
	"context"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/wyilio/cursor-meter/internal/config"
	"github.com/wyilio/cursor-meter/internal/prompt"
	"github.com/wyilio/cursor-meter/internal/testenv"
)

// captureOutput redirects command output to a buffer for the duration of fn.
func captureOutput(t *testing.T, fn func()) string {
	t.Helper()
	var buf bytes.Buffer
	prev := outWriter
	outWriter = &buf
	defer func() { outWriter = prev }()
	fn()
	return buf.String()
}

// runCommand executes the root command with the given args in an isolated
// config dir, returning captured output and the command error.
func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	testenv.Apply(t.Setenv, t.TempDir())
	resetFlags(t)

	var err error
	stdout := captureOutput(t, func() {
		rootCmd.SetArgs(args)
		err = rootCmd.ExecuteContext(context.Background())
	})
	return stdout, err
}

// resetFlags restores flag globals and registered command flags so commands
// don't leak state across in-process executions.
func resetFlags(t *testing.T) {
	t.Helper()
	jsonOutput = false
	noColor = false
	verbose = false
	quiet = false
	resetCommandFlags()
	t.Cleanup(func() {
		jsonOutput = false
		noColor = false
		verbose = false
		quiet = false
		resetCommandFlags()
	})

	// Force a config reload from the test's isolated dir.
	t.Cleanup(func() { _, _ = config.Reload() })
}

// resetCommandFlags returns every changed flag on the package-level commands
// to its default. The commands are singletons, so a flag set by one test
// (token delete --force) would otherwise stick for the next.
func resetCommandFlags() {
	for _, cmd := range []*cobra.Command{rootCmd, watchCmd, tokenDeleteCmd, configResetCmd} {
		cmd.Flags().Visit(func(f *pflag.Flag) {
			_ = f.Value.Set(f.DefValue)
			f.Changed = false
		})
	}
}

// withMockPrompter installs a mock prompter for the duration of the test.
func withMockPrompter(t *testing.T, m *prompt.Mock) {
	t.Helper()
	prompt.SetDefault(m)
	t.Cleanup(func() { prompt.SetDefault(&prompt.Huh{}) })
}
