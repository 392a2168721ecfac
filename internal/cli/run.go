package cli

import (
	"context"

	"github.com/spf13/cobra"

	dferrors "github.com/matzehuels/devflow/pkg/errors"
	"github.com/matzehuels/devflow/pkg/service"
)

// withApp builds the service for one command invocation, runs fn and
// releases connections afterwards.
func (c *CLI) withApp(cmd *cobra.Command, opts serviceOptions, fn func(ctx context.Context, a *app) error) error {
	ctx := withLogger(cmd.Context(), c.Logger)
	a, err := c.newApp(ctx, opts)
	if err != nil {
		return err
	}
	defer a.close()
	return fn(ctx, a)
}

// emit writes result as JSON when --json is set and converts a failed
// envelope into an error. It reports whether styled output should follow.
func (c *CLI) emit(cmd *cobra.Command, env service.Envelope, result any) (bool, error) {
	if c.jsonOutput {
		if err := writeJSON(cmd.OutOrStdout(), result); err != nil {
			return false, err
		}
		return false, envelopeError(env)
	}
	if err := envelopeError(env); err != nil {
		return false, err
	}
	return true, nil
}

func envelopeError(env service.Envelope) error {
	if env.OK() {
		return nil
	}
	return dferrors.New(env.Code, "%s", env.Message)
}

// spin runs fn behind a spinner. The spinner is skipped in JSON mode so
// stdout stays machine-readable.
func (c *CLI) spin(ctx context.Context, message string, fn func()) {
	if c.jsonOutput {
		fn()
		return
	}
	s := newSpinnerWithContext(ctx, message)
	s.Start()
	defer s.Stop()
	fn()
}
