package command

import (
	"fmt"
	"io"
	"net/url"

	"github.com/spf13/cobra"

	"github.com/sadamiak/doodle/internal/chat"
)

// NewChatCmd creates the chat command.
func NewChatCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Interactive chat mode",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if jsonMode, _ := cmd.Flags().GetBool("json"); jsonMode {
				return writeCommandError(cmd, fmt.Errorf("--json not supported for interactive chat"))
			}
			author, _ := cmd.Flags().GetString("author")

			// The TUI owns the terminal, so logs only go to --log-file.
			ctx, err := GetContext(cmd, io.Discard)
			if err != nil {
				return writeCommandError(cmd, err)
			}
			defer ctx.Close()

			options := chat.Options{
				Engine:       ctx.Engine,
				Author:       resolveAuthor(author),
				PollInterval: ctx.Config.PollInterval,
				Logger:       ctx.Logger.With().Str("component", "chat").Logger(),
				Title:        roomTitle(ctx.Client.BaseURL()),
			}
			if err := chat.Run(cmd.Context(), options); err != nil {
				return writeCommandError(cmd, err)
			}
			return nil
		},
	}

	cmd.Flags().String("author", "", "display name (default: $USER)")

	return cmd
}

func roomTitle(baseURL string) string {
	parsed, err := url.Parse(baseURL)
	if err != nil || parsed.Host == "" {
		return AppName
	}
	return AppName + " · " + parsed.Host
}
