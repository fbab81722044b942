package command

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/sadamiak/doodle/internal/core"
)

// NewPostCmd creates the post command.
func NewPostCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "post <message...>",
		Short: "Post a message to the room",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			author, _ := cmd.Flags().GetString("author")
			body := strings.TrimSpace(strings.Join(args, " "))
			if body == "" {
				return writeCommandError(cmd, fmt.Errorf("message is required"))
			}

			ctx, err := GetContext(cmd, cmd.ErrOrStderr())
			if err != nil {
				return writeCommandError(cmd, err)
			}
			defer ctx.Close()

			record, err := ctx.Client.SendRecord(cmd.Context(), sendInput(author, body))
			if err != nil {
				return writeCommandError(cmd, err)
			}
			msg := core.NewNormalizer(nil).Normalize(record)

			out := cmd.OutOrStdout()
			if ctx.JSONMode {
				return json.NewEncoder(out).Encode(msg)
			}
			fmt.Fprintln(out, FormatMessage(msg, time.Now()))
			return nil
		},
	}

	cmd.Flags().String("author", "", "display name (default: $USER)")

	return cmd
}
