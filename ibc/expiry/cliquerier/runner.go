package cliquerier

import (
	"bytes"
	"context"
	"os/exec"
	"strings"

	"github.com/cosmos/chainops/types"

	errorsmod "cosmossdk.io/errors"
)

//go:generate mockgen -source=runner.go -package testutil -destination testutil/mock_runner.go

// Runner executes an external command and returns its standard output.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

var _ Runner = ExecRunner{}

// ExecRunner runs commands as child processes.
type ExecRunner struct{}

// Run implements Runner. A non-zero exit status is returned as ErrSubprocess
// carrying the command's standard error.
func (ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		return nil, errorsmod.Wrapf(types.ErrSubprocess, "%s %s: %s", name, strings.Join(args, " "), msg)
	}
	return out, nil
}
