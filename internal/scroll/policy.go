// Package scroll decides how a message viewport should move when the
// timeline changes.
package scroll

// Thresholds are fixed tuning constants in the collaborator's unit
// (pixels in a browser, rows in a terminal).
type Thresholds struct {
	// NearBottom is the distance from the bottom edge under which the
	// viewer counts as following the conversation.
	NearBottom int
	// LoadOlder is the distance from the top edge under which older
	// history is requested.
	LoadOlder int
	// Overflow is the minimum excess of content over viewport height;
	// anything less means the screen is not filled yet.
	Overflow int
}

var (
	DefaultThresholds  = Thresholds{NearBottom: 80, LoadOlder: 100, Overflow: 4}
	TerminalThresholds = Thresholds{NearBottom: 3, LoadOlder: 5, Overflow: 0}
)

// Action is what the viewport should do after a mutation.
type Action int

const (
	None Action = iota
	StickToBottom
	PreserveAnchor
)

func (a Action) String() string {
	switch a {
	case StickToBottom:
		return "stick-to-bottom"
	case PreserveAnchor:
		return "preserve-anchor"
	default:
		return "none"
	}
}

// Input describes one mutation of the rendered timeline.
type Input struct {
	InitialLoad        bool
	OlderPageLoaded    bool
	DistanceFromBottom int
	// PrevOffset is the scroll offset from the top before the mutation.
	PrevOffset int
	// HeightAdded is how much content grew, measured after the mutation.
	HeightAdded int
}

// Decision is the outcome of Decide. Offset is only meaningful for
// PreserveAnchor.
type Decision struct {
	Action Action
	Offset int
}

// Decide picks the viewport action. An older page always preserves the
// anchor, even during an initial load.
func Decide(in Input, t Thresholds) Decision {
	switch {
	case in.OlderPageLoaded:
		offset := in.PrevOffset + in.HeightAdded
		if offset < 0 {
			offset = 0
		}
		return Decision{Action: PreserveAnchor, Offset: offset}
	case in.InitialLoad:
		return Decision{Action: StickToBottom}
	case in.DistanceFromBottom < t.NearBottom:
		return Decision{Action: StickToBottom}
	default:
		return Decision{Action: None}
	}
}

// ShouldLoadOlder reports whether scrolling near the top should request
// older history.
func ShouldLoadOlder(distanceFromTop int, hasOlder, loadingOlder bool, t Thresholds) bool {
	return hasOlder && !loadingOlder && distanceFromTop < t.LoadOlder
}

// NeedsFill reports whether content is too short to scroll, in which case
// older history should be loaded to fill the viewport.
func NeedsFill(contentHeight, viewportHeight int, t Thresholds) bool {
	return contentHeight-viewportHeight <= t.Overflow
}
