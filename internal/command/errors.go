package command

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sadamiak/doodle/internal/api"
	"github.com/sadamiak/doodle/internal/core"
)

func writeCommandError(cmd *cobra.Command, err error) error {
	fmt.Fprintf(cmd.ErrOrStderr(), "Error: %s\n", err.Error())

	if isUnauthorized(err) {
		fmt.Fprintln(cmd.ErrOrStderr(), "Hint: the server rejected the token. Set --token or "+core.EnvToken+".")
	}

	return reportedError{err}
}

// reportedError marks an error already written to stderr.
type reportedError struct{ error }

func (e reportedError) Unwrap() error { return e.error }

// isUnauthorized reports a 401 from the messages API.
func isUnauthorized(err error) bool {
	var fetch *api.FetchFailure
	if errors.As(err, &fetch) && fetch.Status == 401 {
		return true
	}
	var send *api.SendFailure
	return errors.As(err, &send) && send.Status == 401
}
