package timeline

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/sadamiak/doodle/internal/core"
	"github.com/sadamiak/doodle/internal/types"
)

// Transport is the engine's view of the messages API.
type Transport interface {
	FetchPage(ctx context.Context, params types.FetchParams) (types.Page, error)
	SendRecord(ctx context.Context, input types.SendInput) (types.RawRecord, error)
}

// Change tells observers what kind of mutation produced a snapshot.
type Change int

const (
	// ChangeStatus covers in-flight flags and errors; Messages is unchanged.
	ChangeStatus Change = iota
	ChangeInitial
	ChangeOlder
	ChangeRefresh
)

func (c Change) String() string {
	switch c {
	case ChangeInitial:
		return "initial"
	case ChangeOlder:
		return "older"
	case ChangeRefresh:
		return "refresh"
	default:
		return "status"
	}
}

// Observer receives every published snapshot. Observers run outside the
// engine lock and may call back into the engine.
type Observer func(Snapshot, Change)

// Engine owns the merged message timeline.
type Engine struct {
	transport  Transport
	normalizer *core.Normalizer
	pageSize   int
	logger     zerolog.Logger

	mu        sync.Mutex
	state     Snapshot
	observers map[int]Observer
	nextObs   int
}

// Option configures an Engine.
type Option func(*Engine)

// WithPageSize sets the limit requested for initial and older pages.
func WithPageSize(size int) Option {
	return func(e *Engine) {
		if size > 0 {
			e.pageSize = size
		}
	}
}

// WithNormalizer replaces the record normalizer.
func WithNormalizer(n *core.Normalizer) Option {
	return func(e *Engine) {
		if n != nil {
			e.normalizer = n
		}
	}
}

// WithLogger sets the engine logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// New constructs an empty timeline backed by transport.
func New(transport Transport, opts ...Option) *Engine {
	e := &Engine{
		transport:  transport,
		normalizer: core.NewNormalizer(nil),
		pageSize:   core.DefaultPageSize,
		logger:     zerolog.Nop(),
		observers:  make(map[int]Observer),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Snapshot returns the current state.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Subscribe registers fn for future changes.
func (e *Engine) Subscribe(fn Observer) (unsubscribe func()) {
	e.mu.Lock()
	id := e.nextObs
	e.nextObs++
	e.observers[id] = fn
	e.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			e.mu.Lock()
			delete(e.observers, id)
			e.mu.Unlock()
		})
	}
}

// LoadInitial fetches the newest page.
func (e *Engine) LoadInitial(ctx context.Context) error {
	e.update(ChangeStatus, func(s Snapshot) Snapshot {
		s.LoadingInitial = true
		return s
	})

	page, err := e.transport.FetchPage(ctx, types.FetchParams{Limit: e.pageSize})
	if err != nil {
		e.fetchFailed("initial", err, func(s Snapshot) Snapshot {
			s.LoadingInitial = false
			return s
		})
		return err
	}

	result := e.normalize(page, e.pageSize)
	snap := e.update(ChangeInitial, func(s Snapshot) Snapshot {
		s = applyInitialPage(s, result)
		s.LoadingInitial = false
		s.LastFetchError = nil
		return s
	})
	e.logger.Debug().
		Int("records", len(page)).
		Bool("has_older", snap.HasOlder).
		Msg("loaded initial page")
	return nil
}

// LoadOlder fetches the page before the older cursor. It reports false
// without calling the transport when no older page is known or one is
// already in flight.
func (e *Engine) LoadOlder(ctx context.Context) (bool, error) {
	e.mu.Lock()
	if e.state.OlderCursor == "" || !e.state.HasOlder || e.state.LoadingOlder {
		e.mu.Unlock()
		return false, nil
	}
	cursor := e.state.OlderCursor
	e.state.LoadingOlder = true
	e.state.Version++
	snap, observers := e.state, e.observerList()
	e.mu.Unlock()
	notify(observers, snap, ChangeStatus)

	page, err := e.transport.FetchPage(ctx, types.FetchParams{Before: cursor, Limit: e.pageSize})
	if err != nil {
		e.fetchFailed("older", err, func(s Snapshot) Snapshot {
			s.LoadingOlder = false
			return s
		})
		return false, err
	}

	result := e.normalize(page, e.pageSize)
	snap = e.update(ChangeOlder, func(s Snapshot) Snapshot {
		s = applyOlderPage(s, result)
		s.LoadingOlder = false
		s.LastFetchError = nil
		return s
	})
	e.logger.Debug().
		Str("before", cursor).
		Int("records", len(page)).
		Bool("has_older", snap.HasOlder).
		Msg("loaded older page")
	return true, nil
}

// RefreshNewest fetches messages newer than the newest merged message and
// merges them into the first page.
func (e *Engine) RefreshNewest(ctx context.Context) error {
	after := e.Snapshot().Newest()

	page, err := e.transport.FetchPage(ctx, types.FetchParams{After: after, Limit: e.pageSize})
	if err != nil {
		e.fetchFailed("refresh", err, nil)
		return err
	}

	result := e.normalize(page, e.pageSize)
	e.update(ChangeRefresh, func(s Snapshot) Snapshot {
		s = applyRefresh(s, result)
		s.LastFetchError = nil
		return s
	})
	if len(page) > 0 {
		e.logger.Debug().
			Str("after", after).
			Int("records", len(page)).
			Msg("refreshed newest messages")
	}
	return nil
}

// Send posts a message. The confirmed record enters the timeline through
// RefreshNewest; a failed send leaves the collection unchanged.
func (e *Engine) Send(ctx context.Context, author, body string) (types.Message, error) {
	e.update(ChangeStatus, func(s Snapshot) Snapshot {
		s.sendsInFlight++
		s.Sending = true
		return s
	})

	record, err := e.transport.SendRecord(ctx, types.SendInput{
		Author: strings.TrimSpace(author),
		Body:   strings.TrimSpace(body),
	})
	if err != nil {
		e.update(ChangeStatus, func(s Snapshot) Snapshot {
			s = finishSend(s)
			if !errors.Is(err, context.Canceled) {
				s.LastSendError = err
			}
			return s
		})
		e.logger.Warn().Err(err).Msg("send failed")
		return types.Message{}, err
	}

	msg := e.normalizer.Normalize(record)
	e.update(ChangeStatus, func(s Snapshot) Snapshot {
		s = finishSend(s)
		s.LastSendError = nil
		return s
	})
	e.logger.Debug().Str("id", msg.ID).Msg("sent message")

	if err := e.RefreshNewest(ctx); err != nil {
		return msg, err
	}
	return msg, nil
}

// finishSend releases one in-flight send. Sending stays set while any
// other send is pending.
func finishSend(s Snapshot) Snapshot {
	if s.sendsInFlight > 0 {
		s.sendsInFlight--
	}
	s.Sending = s.sendsInFlight > 0
	return s
}

func (e *Engine) normalize(page types.Page, limit int) fetched {
	return fetched{
		messages: e.normalizer.NormalizePage(page),
		rawCount: len(page),
		limit:    limit,
	}
}

// fetchFailed clears in-flight state. Cancellation is not recorded as an
// error.
func (e *Engine) fetchFailed(op string, err error, clear func(Snapshot) Snapshot) {
	cancelled := errors.Is(err, context.Canceled)
	e.update(ChangeStatus, func(s Snapshot) Snapshot {
		if clear != nil {
			s = clear(s)
		}
		if !cancelled {
			s.LastFetchError = err
		}
		return s
	})
	if cancelled {
		e.logger.Debug().Str("op", op).Msg("fetch cancelled")
		return
	}
	e.logger.Warn().Err(err).Str("op", op).Msg("fetch failed")
}

// update applies fn to the current state under the lock and publishes the
// result.
func (e *Engine) update(change Change, fn func(Snapshot) Snapshot) Snapshot {
	e.mu.Lock()
	next := fn(e.state)
	next.Version = e.state.Version + 1
	e.state = next
	observers := e.observerList()
	e.mu.Unlock()

	notify(observers, next, change)
	return next
}

func (e *Engine) observerList() []Observer {
	list := make([]Observer, 0, len(e.observers))
	for id := 0; id < e.nextObs; id++ {
		if fn, ok := e.observers[id]; ok {
			list = append(list, fn)
		}
	}
	return list
}

func notify(observers []Observer, snap Snapshot, change Change) {
	for _, fn := range observers {
		fn(snap, change)
	}
}
