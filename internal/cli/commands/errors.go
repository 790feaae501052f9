package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/conduit-lang/enumtrait/internal/cli/ui"
	"github.com/conduit-lang/enumtrait/internal/enum"
)

// errInvalidRecords is returned by check when any record fails validation
var errInvalidRecords = errors.New("invalid records")

// configError marks a configuration failure
type configError struct {
	err error
}

func (e *configError) Error() string { return "config: " + e.err.Error() }
func (e *configError) Unwrap() error { return e.err }

// reportedError wraps an error whose details were already written
type reportedError struct {
	err error
}

func (e *reportedError) Error() string { return e.err.Error() }
func (e *reportedError) Unwrap() error { return e.err }

// report writes a formatted explanation of err to stderr. Errors without a
// dedicated format are returned untouched for Execute to print.
func report(cmd *cobra.Command, opts *globalOptions, err error) error {
	var text string
	var cfgErr *configError
	switch {
	case errors.As(err, &cfgErr):
		text = ui.ConfigError(cfgErr.err.Error(), opts.noColor)
	case errors.Is(err, enum.ErrDeclaration):
		text = ui.DeclarationError(err, opts.noColor)
	default:
		return err
	}
	fmt.Fprint(cmd.ErrOrStderr(), text)
	return &reportedError{err: err}
}

// reportText writes text to stderr and marks err as reported
func reportText(cmd *cobra.Command, text string, err error) error {
	fmt.Fprint(cmd.ErrOrStderr(), text)
	return &reportedError{err: err}
}
