package compiler

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"

	"github.com/charmbracelet/log"
)

// Commander interface for testing
type Commander interface {
	SetOutput(stdout, stderr io.Writer)
	Run() error
}

type process struct {
	*exec.Cmd
}

func (p process) SetOutput(stdout, stderr io.Writer) {
	p.Stdout = stdout
	p.Stderr = stderr
}

// ExitError reports a command that ran and exited unsuccessfully
type ExitError struct {
	Command string
	Code    int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("%s exited with code %d", e.Command, e.Code)
}

// CommandBuilder handles running compiler commands
type CommandBuilder struct {
	execCommand func(ctx context.Context, dir, name string, args ...string) Commander
	logger      *log.Logger
}

// NewCommandBuilder creates a new command builder
func NewCommandBuilder(logger *log.Logger) *CommandBuilder {
	if logger == nil {
		logger = log.Default()
	}

	return &CommandBuilder{
		execCommand: func(ctx context.Context, dir, name string, args ...string) Commander {
			cmd := exec.CommandContext(ctx, name, args...)
			cmd.Dir = dir
			return process{cmd}
		},
		logger: logger,
	}
}

// Capture runs c and returns what it wrote to stdout and stderr. A
// non-zero exit is returned as an *ExitError alongside the output.
func (cb *CommandBuilder) Capture(ctx context.Context, c *ShellCommand) (stdout, stderr []byte, err error) {
	cb.logger.Debug("running", "command", c.String())

	var out, errOut bytes.Buffer
	cmd := cb.execCommand(ctx, c.Dir, c.Path, c.Args...)
	cmd.SetOutput(&out, &errOut)

	err = cb.wrap(c, cmd.Run())
	return out.Bytes(), errOut.Bytes(), err
}

// ExecuteCommand runs c with its output going to the terminal
func (cb *CommandBuilder) ExecuteCommand(ctx context.Context, c *ShellCommand) error {
	cb.logger.Debug("running", "command", c.String())

	cmd := cb.execCommand(ctx, c.Dir, c.Path, c.Args...)
	cmd.SetOutput(os.Stdout, os.Stderr)

	return cb.wrap(c, cmd.Run())
}

func (cb *CommandBuilder) wrap(c *ShellCommand, err error) error {
	if err == nil {
		return nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return &ExitError{Command: c.Path, Code: exitErr.ExitCode()}
	}

	return fmt.Errorf("failed to run %s: %w", c.Path, err)
}
