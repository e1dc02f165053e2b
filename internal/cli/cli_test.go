package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap"

	"github.com/temirov/psrun/internal/form"
	"github.com/temirov/psrun/internal/launcher"
	"github.com/temirov/psrun/internal/params"
	"github.com/temirov/psrun/internal/scripts"
	"github.com/temirov/psrun/internal/types"
	"github.com/temirov/psrun/internal/utils"
)

const (
	deployScriptText = `param(
    [string]$Target = "prod",
    [switch]$Force,
    [int]$Retries = 3, # DependsOn: Force
    [datetime]$When = "2024-01-15"
)
Write-Host "deploying $Target"
`
	backupScriptText = "Write-Host 'backup'\n"
	brokenScriptText = "param(\n    [bool]$Enabled\n)\n"

	testLocalConfiguration = "scripts:\n  directory: Scripts\nlauncher:\n  interpreter: pwsh\n  disable_wrapper: true\n  no_exit: true\n  execution_policy: Bypass\n"
)

type recordingCopier struct {
	texts []string
	err   error
}

func (copier *recordingCopier) Copy(text string) error {
	copier.texts = append(copier.texts, text)
	return copier.err
}

type recordingStarter struct {
	commands []launcher.Command
}

func (starter *recordingStarter) Start(_ context.Context, command launcher.Command) error {
	starter.commands = append(starter.commands, command)
	return nil
}

type cliFixture struct {
	workingDirectory string
	scriptsDirectory string
	copier           *recordingCopier
	starter          *recordingStarter
}

func newCLIFixture(t *testing.T) *cliFixture {
	t.Helper()
	workingDirectory := t.TempDir()
	scriptsDirectory := filepath.Join(workingDirectory, utils.DefaultScriptsDirectoryName)
	if err := os.MkdirAll(scriptsDirectory, 0o755); err != nil {
		t.Fatalf("create scripts dir: %v", err)
	}
	files := map[string]string{
		"deploy.ps1": deployScriptText,
		"backup.ps1": backupScriptText,
		"notes.txt":  "not a script",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(scriptsDirectory, name), []byte(content), 0o600); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	if err := os.WriteFile(filepath.Join(workingDirectory, utils.ConfigFileName), []byte(testLocalConfiguration), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return &cliFixture{
		workingDirectory: workingDirectory,
		scriptsDirectory: scriptsDirectory,
		copier:           &recordingCopier{},
		starter:          &recordingStarter{},
	}
}

func (fixture *cliFixture) addScript(t *testing.T, name string, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(fixture.scriptsDirectory, name), []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func (fixture *cliFixture) execute(t *testing.T, arguments ...string) (string, error) {
	t.Helper()
	rootCommand := createRootCommand(runtimeDependencies{
		logger:           zap.NewNop(),
		level:            zap.NewAtomicLevel(),
		copier:           fixture.copier,
		starter:          fixture.starter,
		administrator:    func() bool { return false },
		workingDirectory: fixture.workingDirectory,
		homeDirectory:    t.TempDir(),
	})
	var stdout bytes.Buffer
	rootCommand.SetOut(&stdout)
	rootCommand.SetErr(&bytes.Buffer{})
	rootCommand.SetArgs(normalizeToggleArguments(rootCommand, arguments))
	err := rootCommand.Execute()
	return stdout.String(), err
}

func (fixture *cliFixture) deployPath() string {
	return filepath.Join(fixture.scriptsDirectory, "deploy.ps1")
}

func TestListCommandPrintsSortedScripts(t *testing.T) {
	fixture := newCLIFixture(t)
	rendered, err := fixture.execute(t, "list", "--scripts-dir", fixture.scriptsDirectory)
	if err != nil {
		t.Fatalf("list error: %v", err)
	}
	if rendered != "backup.ps1\ndeploy.ps1\n" {
		t.Fatalf("unexpected listing %q", rendered)
	}

	aliased, err := fixture.execute(t, "ls")
	if err != nil {
		t.Fatalf("ls error: %v", err)
	}
	if aliased != rendered {
		t.Fatalf("default scripts folder listing differs: %q", aliased)
	}
}

func TestListCommandReportsUnparsableScripts(t *testing.T) {
	fixture := newCLIFixture(t)
	fixture.addScript(t, "broken.ps1", brokenScriptText)

	rendered, err := fixture.execute(t, "list", "--params", "yes", "--format", "json")
	if err != nil {
		t.Fatalf("list error: %v", err)
	}
	var listing []types.ScriptOutput
	if err := json.Unmarshal([]byte(rendered), &listing); err != nil {
		t.Fatalf("decode listing: %v\n%s", err, rendered)
	}
	if len(listing) != 3 {
		t.Fatalf("expected three scripts, got %d", len(listing))
	}
	if listing[1].Name != "broken.ps1" || !strings.Contains(listing[1].Error, "[switch]") {
		t.Fatalf("expected broken.ps1 error, got %+v", listing[1])
	}
	if listing[2].Name != "deploy.ps1" || len(listing[2].Parameters) != 4 {
		t.Fatalf("expected deploy.ps1 parameters, got %+v", listing[2])
	}
}

func TestParamsCommandReflectsAssignments(t *testing.T) {
	fixture := newCLIFixture(t)

	rendered, err := fixture.execute(t, "params", "deploy", "--format", "json")
	if err != nil {
		t.Fatalf("params error: %v", err)
	}
	var described types.ScriptOutput
	if err := json.Unmarshal([]byte(rendered), &described); err != nil {
		t.Fatalf("decode params: %v", err)
	}
	if described.Parameters[2].Name != "Retries" || described.Parameters[2].Enabled {
		t.Fatalf("expected Retries disabled, got %+v", described.Parameters[2])
	}

	rendered, err = fixture.execute(t, "p", "deploy", "--set", "force", "--format", "json")
	if err != nil {
		t.Fatalf("params error: %v", err)
	}
	var assigned types.ScriptOutput
	if err := json.Unmarshal([]byte(rendered), &assigned); err != nil {
		t.Fatalf("decode params: %v", err)
	}
	if !assigned.Parameters[2].Enabled || assigned.Parameters[1].Value != "true" {
		t.Fatalf("expected Force on and Retries enabled, got %+v", assigned.Parameters)
	}
}

func TestCommandCommandBuildsCommandLine(t *testing.T) {
	fixture := newCLIFixture(t)
	prefix := "pwsh -NoExit -ExecutionPolicy Bypass -File " + params.QuoteArgument(fixture.deployPath())

	testCases := []struct {
		name      string
		arguments []string
		expected  string
	}{
		{
			name:      "declared_defaults_for_unset_values",
			arguments: []string{"command", "deploy"},
			expected:  prefix + ` -Target "prod" -When "2024-01-15"`,
		},
		{
			name:      "assignments_override_defaults",
			arguments: []string{"cmd", "deploy.ps1", "--set", "Target=east west", "-s", "Force", "--set", "Retries=7"},
			expected:  prefix + ` -Target "east west" -Force -Retries "7" -When "2024-01-15"`,
		},
		{
			name:      "defaults_only",
			arguments: []string{"command", "deploy", "--defaults"},
			expected:  prefix + ` -Target "prod" -Retries "3" -When "2024-01-15"`,
		},
		{
			name:      "numeric_upper_bound",
			arguments: []string{"command", "deploy", "--set", "Force=true", "--set", "Retries=1000000"},
			expected:  prefix + ` -Target "prod" -Force -Retries "1000000" -When "2024-01-15"`,
		},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			rendered, err := fixture.execute(t, testCase.arguments...)
			if err != nil {
				t.Fatalf("command error: %v", err)
			}
			if rendered != testCase.expected+"\n" {
				t.Fatalf("command line mismatch\nwant: %s\n got: %s", testCase.expected, rendered)
			}
		})
	}
	if len(fixture.starter.commands) != 0 {
		t.Fatalf("command must not launch anything")
	}
}

func TestCommandCommandCopiesToClipboard(t *testing.T) {
	fixture := newCLIFixture(t)
	rendered, err := fixture.execute(t, "command", "deploy", "--copy")
	if err != nil {
		t.Fatalf("command error: %v", err)
	}
	if diff := cmp.Diff([]string{strings.TrimSuffix(rendered, "\n")}, fixture.copier.texts); diff != "" {
		t.Fatalf("clipboard mismatch (-want +got):\n%s", diff)
	}

	fixture.copier.err = errors.New("no clipboard")
	if _, err := fixture.execute(t, "command", "deploy", "--copy", "true"); err == nil {
		t.Fatalf("expected clipboard failure to surface")
	}
}

func TestCommandCommandRejectsBadInput(t *testing.T) {
	fixture := newCLIFixture(t)

	if _, err := fixture.execute(t, "command", "deploy", "--set", "Missing=1"); !errors.Is(err, form.ErrUnknownField) {
		t.Fatalf("expected ErrUnknownField, got %v", err)
	}
	if _, err := fixture.execute(t, "command", "deploy", "--set", "Retries=many"); !errors.Is(err, form.ErrInvalidValue) {
		t.Fatalf("expected ErrInvalidValue, got %v", err)
	}
	if _, err := fixture.execute(t, "command", "deploy", "--set", "Retries=5000000"); !errors.Is(err, form.ErrInvalidValue) {
		t.Fatalf("expected out of range value to be rejected, got %v", err)
	}
	if _, err := fixture.execute(t, "command", "absent"); !errors.Is(err, scripts.ErrScriptNotFound) {
		t.Fatalf("expected ErrScriptNotFound, got %v", err)
	}
	if _, err := fixture.execute(t, "command", "deploy", "--defaults", "--set", "Force"); err == nil {
		t.Fatalf("expected --defaults with --set to fail")
	}
	if _, err := fixture.execute(t, "command", "deploy", "--set", "=5"); err == nil || !strings.Contains(err.Error(), errMalformedAssignment.Error()) {
		t.Fatalf("expected malformed assignment error, got %v", err)
	}
	if _, err := fixture.execute(t, "list", "--format", "toml"); err == nil {
		t.Fatalf("expected unsupported format error")
	}
}

func TestRunCommandLaunchesScript(t *testing.T) {
	fixture := newCLIFixture(t)
	rendered, err := fixture.execute(t, "run", "deploy", "--set", "Target=staging", "--format", "json")
	if err != nil {
		t.Fatalf("run error: %v", err)
	}
	expectedCommand := launcher.Command{
		Program: "pwsh",
		Args: []string{
			"-NoExit", "-ExecutionPolicy", "Bypass", "-File", fixture.deployPath(),
			"-Target", "staging", "-When", "2024-01-15",
		},
	}
	if diff := cmp.Diff([]launcher.Command{expectedCommand}, fixture.starter.commands); diff != "" {
		t.Fatalf("launched command mismatch (-want +got):\n%s", diff)
	}
	var commandOutput types.CommandOutput
	if err := json.Unmarshal([]byte(rendered), &commandOutput); err != nil {
		t.Fatalf("decode run output: %v", err)
	}
	if !commandOutput.Launched || commandOutput.Script != "deploy.ps1" {
		t.Fatalf("unexpected run output %+v", commandOutput)
	}
}

func TestInitCommandWritesConfiguration(t *testing.T) {
	fixture := newCLIFixture(t)
	if err := os.Remove(filepath.Join(fixture.workingDirectory, utils.ConfigFileName)); err != nil {
		t.Fatalf("remove config: %v", err)
	}
	rendered, err := fixture.execute(t, "init")
	if err != nil {
		t.Fatalf("init error: %v", err)
	}
	expectedPath := filepath.Join(fixture.workingDirectory, utils.ConfigFileName)
	if rendered != "Configuration written to "+expectedPath+"\n" {
		t.Fatalf("unexpected init output %q", rendered)
	}
	if _, err := fixture.execute(t, "init"); err == nil {
		t.Fatalf("expected second init without --force to fail")
	}
	if _, err := fixture.execute(t, "init", "--force"); err != nil {
		t.Fatalf("forced init error: %v", err)
	}
}

func TestNormalizeToggleArguments(t *testing.T) {
	rootCommand := createRootCommand(runtimeDependencies{logger: zap.NewNop(), level: zap.NewAtomicLevel()})
	testCases := []struct {
		name      string
		arguments []string
		expected  []string
	}{
		{
			name:      "joins_literal",
			arguments: []string{"command", "deploy", "--copy", "no"},
			expected:  []string{"command", "deploy", "--copy=no"},
		},
		{
			name:      "keeps_positional",
			arguments: []string{"list", "--params", "--format", "json"},
			expected:  []string{"list", "--params", "--format", "json"},
		},
		{
			name:      "ignores_non_toggle_flags",
			arguments: []string{"command", "--set", "yes", "deploy"},
			expected:  []string{"command", "--set", "yes", "deploy"},
		},
		{
			name:      "stops_at_terminator",
			arguments: []string{"command", "--", "--copy", "yes"},
			expected:  []string{"command", "--", "--copy", "yes"},
		},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			normalized := normalizeToggleArguments(rootCommand, testCase.arguments)
			if diff := cmp.Diff(testCase.expected, normalized); diff != "" {
				t.Fatalf("normalized arguments mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestAssignmentFlagKeepsOrder(t *testing.T) {
	var assignments []assignment
	value := &assignmentFlagValue{target: &assignments}
	for _, input := range []string{"Target=a=b", "$Force", "-Retries = 2"} {
		if err := value.Set(input); err != nil {
			t.Fatalf("Set(%q) error: %v", input, err)
		}
	}
	expected := []assignment{
		{name: "Target", value: "a=b"},
		{name: "Force", value: "true"},
		{name: "Retries", value: " 2"},
	}
	if diff := cmp.Diff(expected, assignments, cmp.AllowUnexported(assignment{})); diff != "" {
		t.Fatalf("assignments mismatch (-want +got):\n%s", diff)
	}
	if value.String() != "Target=a=b,Force=true,Retries= 2" {
		t.Fatalf("unexpected String() %q", value.String())
	}
}
