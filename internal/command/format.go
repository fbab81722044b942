package command

import (
	"encoding/json"
	"fmt"
	"hash/fnv"
	"io"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/sadamiak/doodle/internal/core"
	"github.com/sadamiak/doodle/internal/types"
)

var (
	noColor = os.Getenv("NO_COLOR") != ""

	dim   = ansiCode("\x1b[2m")
	bold  = ansiCode("\x1b[1m")
	reset = ansiCode("\x1b[0m")
)

var authorColors = []string{
	ansiCode("\x1b[38;5;111m"),
	ansiCode("\x1b[38;5;157m"),
	ansiCode("\x1b[38;5;216m"),
	ansiCode("\x1b[38;5;36m"),
	ansiCode("\x1b[38;5;183m"),
	ansiCode("\x1b[38;5;230m"),
}

func ansiCode(code string) string {
	if noColor {
		return ""
	}
	return code
}

// FormatMessage formats a message for line-oriented output.
func FormatMessage(msg types.Message, now time.Time) string {
	color := authorColor(msg.Author)
	stamp := formatStamp(msg.CreatedAt, now)
	body := strings.ReplaceAll(msg.Body, "\n", "\n  ")
	return fmt.Sprintf("%s[%s]%s %s%s%s%s: %s", dim, stamp, reset, bold, color, msg.Author, reset, body)
}

func authorColor(author string) string {
	h := fnv.New32a()
	_, _ = h.Write([]byte(strings.ToLower(strings.TrimSpace(author))))
	return authorColors[int(h.Sum32()%uint32(len(authorColors)))]
}

// formatStamp shows the clock time plus a relative age for recent messages.
func formatStamp(createdAt string, now time.Time) string {
	ts, ok := core.ParseTimestamp(createdAt)
	if !ok {
		return createdAt
	}
	ts = ts.Local()
	if now.Sub(ts) < 24*time.Hour {
		return ts.Format("15:04:05") + " " + humanize.RelTime(ts, now, "ago", "from now")
	}
	return ts.Format("Jan 2 15:04")
}

// writeMessages prints messages as text or, in JSON mode, one object per line.
func writeMessages(out io.Writer, messages []types.Message, jsonMode bool, now time.Time) error {
	if jsonMode {
		enc := json.NewEncoder(out)
		for _, msg := range messages {
			if err := enc.Encode(msg); err != nil {
				return err
			}
		}
		return nil
	}
	for _, msg := range messages {
		fmt.Fprintln(out, FormatMessage(msg, now))
	}
	return nil
}
