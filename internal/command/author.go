package command

import (
	"os"
	"strings"

	"github.com/sadamiak/doodle/internal/types"
)

// resolveAuthor picks the display name: the flag, then $USER, then the
// anonymous fallback.
func resolveAuthor(flag string) string {
	if author := strings.TrimSpace(flag); author != "" {
		return author
	}
	if user := strings.TrimSpace(os.Getenv("USER")); user != "" {
		return user
	}
	return types.AnonymousAuthor
}

func sendInput(author, body string) types.SendInput {
	return types.SendInput{Author: resolveAuthor(author), Body: body}
}
