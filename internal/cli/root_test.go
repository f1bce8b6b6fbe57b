package cli

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

func TestMain(m *testing.M) {
	newLogger = func(bool) (*zap.Logger, error) { return zap.NewNop(), nil }
	os.Exit(m.Run())
}

// run executes the root command with fresh flag values and captures its output.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags()

	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
	})

	err := rootCmd.Execute()
	return buf.String(), err
}

// resetFlags clears values left behind by earlier executions of the shared command tree.
func resetFlags() {
	jsonOutput = false
	configFile = ""
	verbose = false
	backendFlag = ""
	installTargets = nil
	installDryRun = false
	installNoBackup = false
	statusTargets = nil
	backupLsTarget = ""
	restoreDryRun = false
	configInitForce = false
	resetCommandFlags(rootCmd)
}

// resetCommandFlags restores every flag of cmd and its subcommands to its
// default, including the help and version flags cobra adds.
func resetCommandFlags(cmd *cobra.Command) {
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace([]string{})
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	})
	for _, c := range cmd.Commands() {
		resetCommandFlags(c)
	}
}

func TestRootCommand_Help(t *testing.T) {
	output, err := run(t, "--help")
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	for _, want := range []string{"layerorder", "Layer Registration:", "Backups:", "install", "restore"} {
		if !strings.Contains(output, want) {
			t.Errorf("expected help to contain %q", want)
		}
	}
}

func TestRootCommand_Version(t *testing.T) {
	SetVersion("1.2.3")
	defer SetVersion("dev")

	output, err := run(t, "--version")
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !strings.Contains(output, "1.2.3") {
		t.Errorf("expected version output to contain version, got %q", output)
	}

	output, err = run(t, "version")
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if strings.TrimSpace(output) != "1.2.3" {
		t.Errorf("version = %q, want 1.2.3", output)
	}
}

func TestRootCommand_HelpThenVersion(t *testing.T) {
	SetVersion("1.2.3")
	defer SetVersion("dev")

	if _, err := run(t, "--help"); err != nil {
		t.Fatalf("help: Execute() error = %v", err)
	}
	if _, err := run(t, "install", "--help"); err != nil {
		t.Fatalf("install help: Execute() error = %v", err)
	}

	output, err := run(t, "--version")
	if err != nil {
		t.Fatalf("version: Execute() error = %v", err)
	}
	if strings.TrimSpace(output) != "1.2.3" {
		t.Errorf("version after help = %q, want 1.2.3", output)
	}

	output, err = run(t, "version")
	if err != nil {
		t.Fatalf("version command: Execute() error = %v", err)
	}
	if strings.TrimSpace(output) != "1.2.3" {
		t.Errorf("version command after help = %q, want 1.2.3", output)
	}
}

func TestRootCommand_BuildsLoggerWithVerbosity(t *testing.T) {
	orig := newLogger
	t.Cleanup(func() { newLogger = orig })

	var calls []bool
	newLogger = func(verbose bool) (*zap.Logger, error) {
		calls = append(calls, verbose)
		return zap.NewNop(), nil
	}

	if _, err := run(t, "version"); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if _, err := run(t, "--verbose", "version"); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if len(calls) != 2 || calls[0] || !calls[1] {
		t.Errorf("logger verbosity per run = %v, want [false true]", calls)
	}
}

func TestProductionLogger_Levels(t *testing.T) {
	quiet, err := productionLogger(false)
	if err != nil {
		t.Fatalf("productionLogger(false) error = %v", err)
	}
	if quiet.Core().Enabled(zap.InfoLevel) || !quiet.Core().Enabled(zap.WarnLevel) {
		t.Error("default logger should log warnings and above only")
	}

	loud, err := productionLogger(true)
	if err != nil {
		t.Fatalf("productionLogger(true) error = %v", err)
	}
	if !loud.Core().Enabled(zap.DebugLevel) {
		t.Error("verbose logger should log debug")
	}
}

func TestRootCommand_InvalidCommand(t *testing.T) {
	if _, err := run(t, "invalid-command"); err == nil {
		t.Error("expected error for invalid command")
	}
}

func TestSetVersion(t *testing.T) {
	tests := []struct {
		name    string
		version string
		want    string
	}{
		{"normal version", "1.2.3", "1.2.3"},
		{"empty version", "", "1.2.3"}, // Should not change if empty
		{"dev version", "dev", "dev"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			SetVersion(tt.version)
			if rootCmd.Version != tt.want {
				t.Errorf("SetVersion(%q) = %q, want %q", tt.version, rootCmd.Version, tt.want)
			}
		})
	}
}

func TestRootCommand_Subcommands(t *testing.T) {
	subcommands := [][]string{
		{"install"},
		{"status"},
		{"backup", "ls"},
		{"restore"},
		{"config", "init"},
		{"config", "show"},
		{"version"},
		{"completion", "bash"},
	}

	for _, path := range subcommands {
		t.Run(strings.Join(path, " "), func(t *testing.T) {
			subCmd, _, err := rootCmd.Find(path)
			if err != nil {
				t.Fatalf("Find(%q) error = %v", path, err)
			}
			if subCmd.Name() != path[len(path)-1] {
				t.Errorf("Find(%q) = %q", path, subCmd.Name())
			}
		})
	}
}

func TestCompletion(t *testing.T) {
	output, err := run(t, "completion", "bash")
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !strings.Contains(output, "layerorder") {
		t.Error("expected bash completion script for layerorder")
	}
}
