package command

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/sadamiak/doodle/internal/db"
	"github.com/sadamiak/doodle/internal/server"
)

// NewServeCmd creates the serve command.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run a local messages server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			addr, _ := cmd.Flags().GetString("addr")
			dbPath, _ := cmd.Flags().GetString("db")

			cfg, err := resolveConfig(cmd)
			if err != nil {
				return writeCommandError(cmd, err)
			}
			logger, logFile, err := openLogger(cmd, cmd.ErrOrStderr())
			if err != nil {
				return writeCommandError(cmd, err)
			}
			if logFile != nil {
				defer logFile.Close()
			}

			token := cfg.Token
			if noAuth, _ := cmd.Flags().GetBool("no-auth"); noAuth {
				token = ""
			}

			dbConn, err := db.Open(dbPath)
			if err != nil {
				return writeCommandError(cmd, err)
			}
			defer dbConn.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			router := server.NewRouter(server.Options{DB: dbConn, Token: token, Logger: logger})
			err = server.ListenAndServe(ctx, addr, router, logger, nil)
			if err != nil && !errors.Is(err, context.Canceled) {
				return writeCommandError(cmd, err)
			}
			return nil
		},
	}

	cmd.Flags().String("addr", ":3000", "listen address")
	cmd.Flags().String("db", "doodle.db", "SQLite database path")
	cmd.Flags().Bool("no-auth", false, "accept requests without a bearer token")

	return cmd
}
