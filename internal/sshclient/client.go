// Package sshclient builds connection commands and launches the system ssh
// binary for a saved connection.
//
// The package does not implement the SSH protocol. It shells out to the ssh
// binary, so the user's agent, known_hosts and ~/.ssh/config apply as usual.
// Arguments are passed through exec's argv (never through a shell), so names
// and hosts containing shell metacharacters cannot inject commands.
//
// Three launch modes are supported:
//
//   - spawn: ssh runs as a child process with the terminal's stdin, stdout and
//     stderr attached. sshh resumes when ssh exits.
//   - pty:   ssh runs inside a pseudo-terminal allocated by creack/pty and io is
//     copied both ways.
//   - exec:  the sshh process is replaced by ssh via syscall.Exec.
package sshclient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"syscall"

	"github.com/creack/pty"
	"github.com/muesli/cancelreader"
	"github.com/treykane/sshh/internal/appconfig"
	"github.com/treykane/sshh/internal/model"
	"github.com/treykane/sshh/internal/util"
	"golang.org/x/term"
)

// Client launches ssh sessions.
//
// The zero value is not useful; use New() to create a Client instance.
type Client struct {
	binary string
	mode   appconfig.LaunchMode
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

// New creates a client that runs binary using the given launch mode.
// An empty binary falls back to "ssh".
func New(binary string, mode appconfig.LaunchMode) *Client {
	return &Client{
		binary: util.DefaultString(binary, util.DefaultSSHBinary),
		mode:   mode,
		stdin:  os.Stdin,
		stdout: os.Stdout,
		stderr: os.Stderr,
	}
}

// EnsureBinary checks that the configured ssh binary is on PATH.
func (c *Client) EnsureBinary() error {
	return ensureBinary(c.binary)
}

func ensureBinary(binary string) error {
	if _, err := exec.LookPath(binary); err != nil {
		return fmt.Errorf("%s binary not found in PATH", binary)
	}
	return nil
}

// ConnectCommand creates an exec.Cmd for an interactive session to conn.
// The process is not started and has no stdio attached. A raw command runs
// its own program instead of the configured binary.
func (c *Client) ConnectCommand(ctx context.Context, conn model.Connection) *exec.Cmd {
	return exec.CommandContext(ctx, Binary(conn, c.binary), Args(conn)...)
}

// Launch runs an interactive session and blocks until it ends.
//
// A non-zero exit status from ssh is logged and NOT returned: the helper's own
// exit code does not follow the remote session's. Failures to start ssh at all
// are returned.
func (c *Client) Launch(ctx context.Context, conn model.Connection) error {
	binary := Binary(conn, c.binary)
	if err := ensureBinary(binary); err != nil {
		return err
	}
	slog.Debug("launching ssh", "binary", binary, "mode", c.mode, "target", conn.Label())

	var err error
	switch c.mode {
	case appconfig.LaunchExec:
		return c.replace(conn)
	case appconfig.LaunchPTY:
		err = c.runPTY(ctx, conn)
	default:
		err = c.runAttached(ctx, conn)
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		slog.Debug("ssh exited with non-zero status", "code", exitErr.ExitCode(), "target", conn.Label())
		return nil
	}
	return err
}

func (c *Client) runAttached(ctx context.Context, conn model.Connection) error {
	cmd := c.ConnectCommand(ctx, conn)
	cmd.Stdin = c.stdin
	cmd.Stdout = c.stdout
	cmd.Stderr = c.stderr
	return cmd.Run()
}

// runPTY starts ssh in a pseudo-terminal and pumps the user's stdin into it
// and its output back to stdout until the session ends.
func (c *Client) runPTY(ctx context.Context, conn model.Connection) error {
	cmd := c.ConnectCommand(ctx, conn)

	f, err := pty.Start(cmd)
	if err != nil {
		return err
	}
	defer f.Close()

	if in, ok := c.stdin.(*os.File); ok && term.IsTerminal(int(in.Fd())) {
		if err := pty.InheritSize(in, f); err != nil {
			slog.Debug("inherit terminal size", "error", err)
		}
		state, err := term.MakeRaw(int(in.Fd()))
		if err != nil {
			return fmt.Errorf("raw terminal: %w", err)
		}
		defer func() { _ = term.Restore(int(in.Fd()), state) }()
	}

	// A plain read on stdin would stay blocked after ssh exits, so the copy
	// goes through a reader that can be cancelled once output ends.
	in, err := cancelreader.NewReader(c.stdin)
	if err != nil {
		_ = cmd.Process.Kill()
		_ = cmd.Wait()
		return fmt.Errorf("wrap stdin: %w", err)
	}
	defer in.Close()
	copied := make(chan struct{})
	go func() {
		defer close(copied)
		_, _ = io.Copy(f, in)
	}()

	_, _ = io.Copy(c.stdout, f)
	if in.Cancel() {
		<-copied
	}

	if ctx.Err() != nil {
		_ = cmd.Process.Kill()
	}
	return cmd.Wait()
}

func (c *Client) replace(conn model.Connection) error {
	binary := Binary(conn, c.binary)
	path, err := exec.LookPath(binary)
	if err != nil {
		return fmt.Errorf("command not found: %s", binary)
	}
	argv := append([]string{binary}, Args(conn)...)
	return syscall.Exec(path, argv, os.Environ())
}
