package terraform

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/rs/zerolog/log"
)

const DefaultBinary = "terraform"

// ErrOutputAbsent is returned when terraform could not provide the requested output.
var ErrOutputAbsent = errors.New("terraform output absent")

type OutputResolver interface {
	Output(ctx context.Context, name string) (string, error)
}

type OutputReader struct {
	Binary string
	Dir    string

	command func(ctx context.Context, name string, args ...string) *exec.Cmd
}

func NewOutputReader(binary, dir string) *OutputReader {
	if binary == "" {
		binary = DefaultBinary
	}
	return &OutputReader{
		Binary:  binary,
		Dir:     dir,
		command: exec.CommandContext,
	}
}

// Output runs `terraform output -raw <name>` and returns its trimmed stdout.
func (r *OutputReader) Output(ctx context.Context, name string) (string, error) {
	command := r.command
	if command == nil {
		command = exec.CommandContext
	}
	cmd := command(ctx, r.Binary, "output", "-raw", name)
	cmd.Dir = r.Dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		logger := log.Debug().Err(err).Str("output", name).Str("stderr", strings.TrimSpace(stderr.String()))
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			logger = logger.Int("exit_code", exitErr.ExitCode())
		}
		logger.Msg("terraform output failed")
		return "", fmt.Errorf("%w: %s: %v", ErrOutputAbsent, name, err)
	}
	return strings.TrimSpace(stdout.String()), nil
}
