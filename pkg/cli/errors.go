package cli

import (
	"errors"
	"fmt"
)

// Process exit codes returned by ExitCode.
const (
	ExitOK      = 0
	ExitFailure = 1
	ExitConfig  = 2
)

// ConfigError wraps a failure to load or validate configuration. Path is
// empty when the configuration came from defaults and the environment.
type ConfigError struct {
	Path string
	Err  error
}

// NewConfigError wraps err with the config path it came from.
func NewConfigError(path string, err error) *ConfigError {
	return &ConfigError{Path: path, Err: err}
}

func (e *ConfigError) Error() string {
	where := ""
	if e.Path != "" {
		where = " in " + e.Path
	}
	return fmt.Sprintf("config error%s: %v", where, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// CommandError wraps a runtime failure of a subcommand.
type CommandError struct {
	Command string
	Err     error
}

// NewCommandError wraps err with the failing subcommand's name.
func NewCommandError(command string, err error) *CommandError {
	return &CommandError{Command: command, Err: err}
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("command %s failed: %v", e.Command, e.Err)
}

func (e *CommandError) Unwrap() error { return e.Err }

// ExitCode maps an error returned by a command to a process exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	var cfgErr *ConfigError
	if errors.As(err, &cfgErr) {
		return ExitConfig
	}
	return ExitFailure
}
