package timeline

import (
	"slices"
	"time"

	"github.com/sadamiak/doodle/internal/core"
	"github.com/sadamiak/doodle/internal/types"
)

// Snapshot is an immutable view of the timeline. Messages is the merged
// collection: unique by ID and sorted ascending by CreatedAt.
type Snapshot struct {
	Messages       []types.Message
	Loaded         bool
	LoadingInitial bool
	LoadingOlder   bool
	HasOlder       bool
	Sending        bool
	LastFetchError error
	LastSendError  error
	// OlderCursor is the CreatedAt passed as `before` by the next LoadOlder.
	OlderCursor string
	// Version increases on every published change.
	Version uint64

	pages         [][]entry
	nextSeq       uint64
	sendsInFlight int
}

// PageCount is the number of pages fetched so far.
func (s Snapshot) PageCount() int {
	return len(s.pages)
}

// Newest returns the CreatedAt of the newest merged message.
func (s Snapshot) Newest() string {
	if len(s.Messages) == 0 {
		return ""
	}
	return s.Messages[len(s.Messages)-1].CreatedAt
}

type entry struct {
	msg  types.Message
	seq  uint64
	when time.Time
}

// fetched is the outcome of one page fetch, already normalized.
type fetched struct {
	messages []types.Message
	rawCount int
	limit    int
}

func (f fetched) short() bool {
	return f.rawCount < f.limit
}

func (s *Snapshot) tag(messages []types.Message) []entry {
	entries := make([]entry, 0, len(messages))
	for _, msg := range messages {
		when, _ := core.ParseTimestamp(msg.CreatedAt)
		entries = append(entries, entry{msg: msg, seq: s.nextSeq, when: when})
		s.nextSeq++
	}
	return entries
}

// applyInitialPage installs the newest page. If a refresh already created a
// first page, the initial page is merged in front of it.
func applyInitialPage(s Snapshot, f fetched) Snapshot {
	entries := s.tag(f.messages)
	pages := make([][]entry, 0, len(s.pages)+1)
	if len(s.pages) == 0 {
		pages = append(pages, entries)
	} else {
		first := make([]entry, 0, len(entries)+len(s.pages[0]))
		first = append(first, entries...)
		first = append(first, s.pages[0]...)
		pages = append(pages, first)
		pages = append(pages, s.pages[1:]...)
	}
	s.pages = pages

	if len(s.pages) == 1 {
		s.OlderCursor = oldest(s.pages[0])
		s.HasOlder = s.OlderCursor != "" && (!f.short() || (s.Loaded && s.HasOlder))
	}
	s.Loaded = true
	s.Messages = merge(s.pages)
	return s
}

// applyOlderPage appends a page of older history at the tail.
func applyOlderPage(s Snapshot, f fetched) Snapshot {
	entries := s.tag(f.messages)
	pages := make([][]entry, 0, len(s.pages)+1)
	pages = append(pages, s.pages...)
	s.pages = append(pages, entries)

	s.OlderCursor = oldest(entries)
	s.HasOlder = s.OlderCursor != "" && !f.short()
	s.Loaded = true
	s.Messages = merge(s.pages)
	return s
}

// applyRefresh merges newer records into the first page. On an empty
// timeline a non-empty refresh becomes the first page.
func applyRefresh(s Snapshot, f fetched) Snapshot {
	if len(f.messages) == 0 {
		return s
	}
	if len(s.pages) == 0 {
		return applyInitialPage(s, f)
	}

	entries := s.tag(f.messages)
	first := make([]entry, 0, len(s.pages[0])+len(entries))
	first = append(first, s.pages[0]...)
	first = append(first, entries...)

	pages := make([][]entry, 0, len(s.pages))
	pages = append(pages, first)
	s.pages = append(pages, s.pages[1:]...)
	s.Messages = merge(s.pages)
	return s
}

// merge dedupes by ID keeping the most recently fetched entry, then sorts
// ascending by time. Equal times keep fetch order. Unparseable timestamps
// sort as the zero time.
func merge(pages [][]entry) []types.Message {
	latest := make(map[string]entry)
	for _, page := range pages {
		for _, e := range page {
			if prev, ok := latest[e.msg.ID]; !ok || e.seq > prev.seq {
				latest[e.msg.ID] = e
			}
		}
	}

	winners := make([]entry, 0, len(latest))
	for _, e := range latest {
		winners = append(winners, e)
	}
	slices.SortFunc(winners, func(a, b entry) int {
		if c := a.when.Compare(b.when); c != 0 {
			return c
		}
		switch {
		case a.seq < b.seq:
			return -1
		case a.seq > b.seq:
			return 1
		}
		return 0
	})

	messages := make([]types.Message, 0, len(winners))
	for _, e := range winners {
		messages = append(messages, e.msg)
	}
	return messages
}

// oldest returns the CreatedAt of the oldest entry in page, or "" when the
// page is empty. Pages without parseable times fall back to the last entry.
func oldest(page []entry) string {
	if len(page) == 0 {
		return ""
	}
	best := page[len(page)-1]
	for _, e := range page {
		if !e.when.IsZero() && (best.when.IsZero() || e.when.Before(best.when)) {
			best = e
		}
	}
	return best.msg.CreatedAt
}
