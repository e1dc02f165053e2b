// Package launcher starts PowerShell scripts in a new terminal window.
package launcher

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/psrun/internal/params"
)

const (
	// WindowsInterpreter is the interpreter used on Windows.
	WindowsInterpreter = "powershell"
	// PortableInterpreter is the cross-platform PowerShell executable.
	PortableInterpreter = "pwsh"
	// DefaultExecutionPolicy bypasses script signing checks for the launched process.
	DefaultExecutionPolicy = "Bypass"

	noExitSwitch          = "-NoExit"
	executionPolicySwitch = "-ExecutionPolicy"
	fileSwitch            = "-File"
	commandLineSeparator  = " "

	errorLaunchFormat         = "launch %s: %w"
	errorUnsafeArgumentFormat = "%w: %s contains %q"
	wrapperUnsafeCharacters   = `"`
	scriptPathArgumentName    = "script path"
)

var (
	// ErrNoInterpreter reports a configuration without an interpreter.
	ErrNoInterpreter = errors.New("no interpreter configured")
	// ErrUnsafeArgument reports a value that cannot be passed through the
	// wrapper command line without ending its quoted region.
	ErrUnsafeArgument = errors.New("value cannot be passed through the wrapper")
)

// windowsWrapper opens the interpreter in a new console window.
var windowsWrapper = []string{"cmd.exe", "/C", "start"}

// Config describes how scripts are started.
type Config struct {
	Interpreter     string
	NoExit          bool
	ExecutionPolicy string
	Wrapper         []string
}

// DefaultConfig returns the configuration for the current platform.
func DefaultConfig() Config {
	if runtime.GOOS == "windows" {
		return Config{
			Interpreter:     WindowsInterpreter,
			NoExit:          true,
			ExecutionPolicy: DefaultExecutionPolicy,
			Wrapper:         append([]string(nil), windowsWrapper...),
		}
	}
	return Config{
		Interpreter:     PortableInterpreter,
		NoExit:          true,
		ExecutionPolicy: DefaultExecutionPolicy,
	}
}

// Command is a fully prepared process invocation.
type Command struct {
	Program string
	Args    []string
	// CommandLine is the verbatim command line handed to a wrapper. It is
	// empty when the interpreter is started directly.
	CommandLine string
}

// Starter spawns a prepared command.
type Starter interface {
	Start(ctx context.Context, command Command) error
}

// Launcher builds and spawns interpreter invocations.
type Launcher struct {
	config  Config
	starter Starter
	logger  *zap.Logger
}

// New constructs a Launcher. A nil starter uses ProcessStarter.
func New(config Config, starter Starter, logger *zap.Logger) *Launcher {
	if starter == nil {
		starter = ProcessStarter{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Launcher{config: config, starter: starter, logger: logger}
}

func (launcher *Launcher) interpreterSwitches(scriptPath string) []string {
	switches := make([]string, 0, 5)
	if launcher.config.NoExit {
		switches = append(switches, noExitSwitch)
	}
	if launcher.config.ExecutionPolicy != "" {
		switches = append(switches, executionPolicySwitch, launcher.config.ExecutionPolicy)
	}
	return append(switches, fileSwitch, scriptPath)
}

// CommandLine renders the interpreter command line for a script, for example
//
//	powershell -NoExit -ExecutionPolicy Bypass -File "C:\Scripts\deploy.ps1" -Target "prod" -Force
func (launcher *Launcher) CommandLine(scriptPath string, arguments params.Arguments) string {
	parts := []string{launcher.config.Interpreter}
	switches := launcher.interpreterSwitches(scriptPath)
	parts = append(parts, switches[:len(switches)-1]...)
	parts = append(parts, params.QuoteArgument(scriptPath))
	if serialized := params.Serialize(arguments); serialized != "" {
		parts = append(parts, serialized)
	}
	return strings.Join(parts, commandLineSeparator)
}

// Command prepares the process invocation for a script.
func (launcher *Launcher) Command(scriptPath string, arguments params.Arguments) Command {
	if len(launcher.config.Wrapper) > 0 {
		commandLine := launcher.CommandLine(scriptPath, arguments)
		wrapper := launcher.config.Wrapper
		return Command{
			Program:     wrapper[0],
			Args:        append(append([]string(nil), wrapper[1:]...), commandLine),
			CommandLine: strings.Join(append(append([]string(nil), wrapper...), commandLine), commandLineSeparator),
		}
	}
	args := launcher.interpreterSwitches(scriptPath)
	return Command{
		Program: launcher.config.Interpreter,
		Args:    append(args, arguments.Tokens()...),
	}
}

// Launch spawns the script once. Failures are returned as they occur.
func (launcher *Launcher) Launch(ctx context.Context, scriptPath string, arguments params.Arguments) error {
	if launcher.config.Interpreter == "" {
		return fmt.Errorf(errorLaunchFormat, scriptPath, ErrNoInterpreter)
	}
	if len(launcher.config.Wrapper) > 0 {
		if err := checkWrapperArguments(scriptPath, arguments); err != nil {
			return fmt.Errorf(errorLaunchFormat, scriptPath, err)
		}
	}
	command := launcher.Command(scriptPath, arguments)
	launcher.logger.Debug("launching script",
		zap.String("script", scriptPath),
		zap.String("program", command.Program),
		zap.Strings("args", command.Args),
	)
	if err := launcher.starter.Start(ctx, command); err != nil {
		return fmt.Errorf(errorLaunchFormat, scriptPath, err)
	}
	return nil
}

// checkWrapperArguments rejects values containing a double quote. cmd.exe
// does not honour backslash escapes, so such a value would close the quoted
// argument and expose the rest of the line to the shell.
func checkWrapperArguments(scriptPath string, arguments params.Arguments) error {
	if strings.ContainsAny(scriptPath, wrapperUnsafeCharacters) {
		return fmt.Errorf(errorUnsafeArgumentFormat, ErrUnsafeArgument, scriptPathArgumentName, wrapperUnsafeCharacters)
	}
	for _, entry := range arguments.Entries() {
		if strings.ContainsAny(params.FormatValue(entry.Value), wrapperUnsafeCharacters) {
			return fmt.Errorf(errorUnsafeArgumentFormat, ErrUnsafeArgument, entry.Name, wrapperUnsafeCharacters)
		}
	}
	return nil
}
