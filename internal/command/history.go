package command

import (
	"fmt"
	"strings"
	"time"

	"github.com/gobwas/glob"
	"github.com/spf13/cobra"

	"github.com/sadamiak/doodle/internal/types"
)

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Print recent message history",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			pages, _ := cmd.Flags().GetInt("pages")
			pattern, _ := cmd.Flags().GetString("author-glob")
			if pages < 1 {
				return writeCommandError(cmd, fmt.Errorf("--pages must be at least 1"))
			}

			var matcher glob.Glob
			if pattern != "" {
				compiled, err := glob.Compile(strings.ToLower(pattern))
				if err != nil {
					return writeCommandError(cmd, fmt.Errorf("invalid --author-glob: %w", err))
				}
				matcher = compiled
			}

			ctx, err := GetContext(cmd, cmd.ErrOrStderr())
			if err != nil {
				return writeCommandError(cmd, err)
			}
			defer ctx.Close()

			engine := ctx.Engine
			if err := engine.LoadInitial(cmd.Context()); err != nil {
				return writeCommandError(cmd, err)
			}
			for loaded := 1; loaded < pages; loaded++ {
				fetched, err := engine.LoadOlder(cmd.Context())
				if err != nil {
					return writeCommandError(cmd, err)
				}
				if !fetched {
					break
				}
			}

			snap := engine.Snapshot()
			messages := filterByAuthor(snap.Messages, matcher)
			out := cmd.OutOrStdout()
			if err := writeMessages(out, messages, ctx.JSONMode, time.Now()); err != nil {
				return writeCommandError(cmd, err)
			}
			if !ctx.JSONMode {
				if len(snap.Messages) == 0 {
					fmt.Fprintln(out, "No messages yet")
				} else if snap.HasOlder {
					fmt.Fprintf(out, "%s--- older messages available (--pages %d) ---%s\n", dim, pages+1, reset)
				} else {
					fmt.Fprintf(out, "%s--- beginning of conversation ---%s\n", dim, reset)
				}
			}
			return nil
		},
	}

	cmd.Flags().Int("pages", 1, "number of pages to load")
	cmd.Flags().String("author-glob", "", "only show authors matching a glob, e.g. 'a*'")

	return cmd
}

func filterByAuthor(messages []types.Message, matcher glob.Glob) []types.Message {
	if matcher == nil {
		return messages
	}
	filtered := make([]types.Message, 0, len(messages))
	for _, msg := range messages {
		if matcher.Match(strings.ToLower(strings.TrimSpace(msg.Author))) {
			filtered = append(filtered, msg)
		}
	}
	return filtered
}
