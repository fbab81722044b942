package command

import (
	"io"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/sadamiak/doodle/internal/api"
	"github.com/sadamiak/doodle/internal/core"
	"github.com/sadamiak/doodle/internal/timeline"
)

// CommandContext provides shared command resources.
type CommandContext struct {
	Config   core.Config
	Logger   zerolog.Logger
	Client   *api.Client
	Engine   *timeline.Engine
	JSONMode bool

	logFile io.Closer
}

// GetContext resolves configuration, logging and the API client for a
// command. Logs go to --log-file when set, otherwise to logOut.
func GetContext(cmd *cobra.Command, logOut io.Writer) (*CommandContext, error) {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return nil, err
	}

	logger, logFile, err := openLogger(cmd, logOut)
	if err != nil {
		return nil, err
	}

	client, err := api.NewClient(cfg)
	if err != nil {
		if logFile != nil {
			_ = logFile.Close()
		}
		return nil, err
	}

	jsonMode, _ := cmd.Flags().GetBool("json")
	engine := timeline.New(client,
		timeline.WithPageSize(cfg.PageSize),
		timeline.WithLogger(logger.With().Str("component", "timeline").Logger()),
	)

	return &CommandContext{
		Config:   cfg,
		Logger:   logger,
		Client:   client,
		Engine:   engine,
		JSONMode: jsonMode,
		logFile:  logFile,
	}, nil
}

// Close releases the log file, if any.
func (c *CommandContext) Close() error {
	if c.logFile == nil {
		return nil
	}
	return c.logFile.Close()
}

// resolveConfig reads the environment (and .env) and applies flags that were
// set explicitly on the command line.
func resolveConfig(cmd *cobra.Command) (core.Config, error) {
	cfg := core.LoadConfig()
	flags := cmd.Flags()

	if flags.Changed("base-url") {
		cfg.BaseURL, _ = flags.GetString("base-url")
	}
	if flags.Changed("token") {
		cfg.Token, _ = flags.GetString("token")
	}
	if flags.Changed("page-size") {
		cfg.PageSize, _ = flags.GetInt("page-size")
	}
	if flags.Changed("poll-interval") {
		cfg.PollInterval, _ = flags.GetDuration("poll-interval")
	}

	if err := cfg.Validate(); err != nil {
		return core.Config{}, err
	}
	return cfg, nil
}

func openLogger(cmd *cobra.Command, fallback io.Writer) (zerolog.Logger, io.Closer, error) {
	level, _ := cmd.Flags().GetString("log-level")
	path, _ := cmd.Flags().GetString("log-file")
	if path == "" {
		if fallback == nil {
			fallback = io.Discard
		}
		return core.NewLogger(fallback, level), nil, nil
	}
	f, err := core.OpenLogFile(path)
	if err != nil {
		return zerolog.Nop(), nil, err
	}
	return core.NewLogger(f, level), f, nil
}
