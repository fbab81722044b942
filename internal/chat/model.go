package chat

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	zone "github.com/lrstanley/bubblezone"
	"github.com/rs/zerolog"

	"github.com/sadamiak/doodle/internal/core"
	"github.com/sadamiak/doodle/internal/poller"
	"github.com/sadamiak/doodle/internal/scroll"
	"github.com/sadamiak/doodle/internal/timeline"
	"github.com/sadamiak/doodle/internal/types"
)

// Options configure chat.
type Options struct {
	Engine       *timeline.Engine
	Author       string
	PollInterval time.Duration
	Logger       zerolog.Logger
	// Title is shown in the header and the terminal window title.
	Title string
	// Notify raises a desktop notification; nil uses SendNotification.
	Notify func(title, body string) error
	Clock  core.Clock
}

// Run starts the chat UI and blocks until the user quits.
func Run(ctx context.Context, opts Options) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	model := NewModel(ctx, opts)
	fmt.Printf("\033]0;%s\007", model.title)

	sched := poller.New(opts.PollInterval, opts.Engine.RefreshNewest, opts.Logger)
	model.scheduler = sched

	program := tea.NewProgram(model,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithReportFocus(),
		tea.WithContext(ctx),
	)

	unsubscribe := opts.Engine.Subscribe(func(snap timeline.Snapshot, change timeline.Change) {
		program.Send(snapshotMsg{snap: snap, change: change})
	})
	defer unsubscribe()

	go func() {
		_ = sched.Run(ctx)
	}()

	_, err := program.Run()
	if err != nil && ctx.Err() != nil {
		return nil
	}
	return err
}

// Model implements the chat UI.
type Model struct {
	ctx         context.Context
	engine      *timeline.Engine
	scheduler   *poller.Scheduler
	logger      zerolog.Logger
	clock       core.Clock
	notify      func(title, body string) error
	author      string
	title       string
	viewport    viewport.Model
	input       textarea.Model
	zoneManager *zone.Manager
	thresholds  scroll.Thresholds

	snap          timeline.Snapshot
	seen          map[string]struct{}
	composerError string
	sending       bool
	status        string
	width         int
	height        int
	focused       bool
	// New message notification state (when user has scrolled up)
	newMessageAuthors []string
}

// NewModel creates a chat model. The initial page is requested by Init.
func NewModel(ctx context.Context, opts Options) *Model {
	clock := opts.Clock
	if clock == nil {
		clock = core.SystemClock
	}
	notify := opts.Notify
	if notify == nil {
		notify = SendNotification
	}
	title := strings.TrimSpace(opts.Title)
	if title == "" {
		title = "doodle"
	}
	author := strings.TrimSpace(opts.Author)
	if author == "" {
		author = types.AnonymousAuthor
	}
	return &Model{
		ctx:         ctx,
		engine:      opts.Engine,
		logger:      opts.Logger,
		clock:       clock,
		notify:      notify,
		author:      author,
		title:       title,
		viewport:    viewport.New(0, 0),
		input:       newInputModel(),
		zoneManager: zone.New(),
		thresholds:  scroll.TerminalThresholds,
		snap:        opts.Engine.Snapshot(),
		seen:        make(map[string]struct{}),
		focused:     true,
	}
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(textarea.Blink, m.loadInitialCmd())
}
