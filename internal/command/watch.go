package command

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/sadamiak/doodle/internal/poller"
	"github.com/sadamiak/doodle/internal/timeline"
	"github.com/sadamiak/doodle/internal/types"
)

// NewWatchCmd creates the watch command.
func NewWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Stream messages as they arrive",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := GetContext(cmd, cmd.ErrOrStderr())
			if err != nil {
				return writeCommandError(cmd, err)
			}
			defer ctx.Close()

			interval := ctx.Config.PollInterval
			if interval <= 0 {
				return writeCommandError(cmd, fmt.Errorf("watch needs a positive --poll-interval"))
			}

			runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			printer := &watchPrinter{cmd: cmd, jsonMode: ctx.JSONMode, seen: make(map[string]struct{})}
			unsubscribe := ctx.Engine.Subscribe(printer.observe)
			defer unsubscribe()

			if err := ctx.Engine.LoadInitial(runCtx); err != nil {
				return writeCommandError(cmd, err)
			}
			if !ctx.JSONMode {
				fmt.Fprintln(cmd.OutOrStdout(), "--- watching (Ctrl+C to stop) ---")
			}

			sched := poller.New(interval, ctx.Engine.RefreshNewest, ctx.Logger)
			if err := sched.Run(runCtx); err != nil && !errors.Is(err, context.Canceled) {
				return writeCommandError(cmd, err)
			}
			return nil
		},
	}

	return cmd
}

// watchPrinter prints every message once, in timeline order.
type watchPrinter struct {
	cmd      *cobra.Command
	jsonMode bool

	mu   sync.Mutex
	seen map[string]struct{}
}

func (p *watchPrinter) observe(snap timeline.Snapshot, change timeline.Change) {
	if change == timeline.ChangeStatus {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	var fresh []types.Message
	for _, msg := range snap.Messages {
		if _, ok := p.seen[msg.ID]; ok {
			continue
		}
		p.seen[msg.ID] = struct{}{}
		fresh = append(fresh, msg)
	}
	if len(fresh) == 0 {
		return
	}
	out := p.cmd.OutOrStdout()
	if p.jsonMode {
		enc := json.NewEncoder(out)
		for _, msg := range fresh {
			_ = enc.Encode(msg)
		}
		return
	}
	for _, msg := range fresh {
		fmt.Fprintln(out, FormatMessage(msg, time.Now()))
	}
}
