package command

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sadamiak/doodle/internal/core"
)

const AppName = "doodle"

// Version is overwritten at build time using -ldflags.
var Version = "dev"

func NewRootCmd(version string) *cobra.Command {
	cmd := &cobra.Command{
		Use:           AppName,
		Short:         "Doodle - terminal client for a shared chat room",
		Long:          "Doodle reads and posts messages to a chat room over its HTTP API.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.Version = version
	cmd.SetVersionTemplate(AppName + " version {{.Version}}\n")
	cmd.SetOut(os.Stdout)
	cmd.SetErr(os.Stderr)

	flags := cmd.PersistentFlags()
	flags.String("base-url", core.DefaultBaseURL, "messages API base URL (env "+core.EnvBaseURL+")")
	flags.String("token", "", "bearer token (env "+core.EnvToken+")")
	flags.Int("page-size", core.DefaultPageSize, "messages per page (env "+core.EnvPageSize+")")
	flags.Duration("poll-interval", core.DefaultPollInterval, "refresh interval, 0 disables (env "+core.EnvPollInterval+" in ms)")
	flags.String("log-level", "info", "log level: debug, info, warn, error")
	flags.String("log-file", "", "write logs to file")
	flags.Bool("json", false, "output in JSON format")

	cmd.AddCommand(
		NewChatCmd(),
		NewHistoryCmd(),
		NewPostCmd(),
		NewWatchCmd(),
		NewServeCmd(),
	)

	return cmd
}

func Execute() error {
	cmd := NewRootCmd(Version)
	err := cmd.Execute()
	var reported reportedError
	if err != nil && !errors.As(err, &reported) {
		fmt.Fprintf(cmd.ErrOrStderr(), "Error: %s\n", err.Error())
	}
	return err
}
