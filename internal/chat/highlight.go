package chat

import (
	"bytes"
	"os"
	"strings"

	"github.com/alecthomas/chroma"
	"github.com/alecthomas/chroma/formatters"
	"github.com/alecthomas/chroma/lexers"
	"github.com/alecthomas/chroma/styles"
)

const chromaStyleName = "dracula"

// codeBlock is a closed fenced block: the opening fence is lines[open] and
// the closing fence is lines[close].
type codeBlock struct {
	open, close int
	lang        string
}

// highlightCodeBlocks colors the contents of closed ``` or ~~~ fences.
// Fence lines are kept; NO_COLOR disables highlighting.
func highlightCodeBlocks(body string) string {
	if body == "" || os.Getenv("NO_COLOR") != "" {
		return body
	}
	lines := strings.Split(body, "\n")
	blocks := findCodeBlocks(lines)
	if len(blocks) == 0 {
		return body
	}

	out := make([]string, 0, len(lines))
	next := 0
	for _, block := range blocks {
		out = append(out, lines[next:block.open+1]...)
		code := strings.Join(lines[block.open+1:block.close], "\n")
		if code != "" {
			out = append(out, highlightCode(code, block.lang))
		}
		out = append(out, lines[block.close])
		next = block.close + 1
	}
	out = append(out, lines[next:]...)
	return strings.Join(out, "\n")
}

func findCodeBlocks(lines []string) []codeBlock {
	var blocks []codeBlock
	for i := 0; i < len(lines); i++ {
		fence, lang, ok := parseFence(lines[i])
		if !ok {
			continue
		}
		for j := i + 1; j < len(lines); j++ {
			if isClosingFence(lines[j], fence) {
				blocks = append(blocks, codeBlock{open: i, close: j, lang: lang})
				i = j
				break
			}
		}
	}
	return blocks
}

// parseFence reports the fence marker and info-string language of an
// opening fence line.
func parseFence(line string) (string, string, bool) {
	trimmed := strings.TrimLeft(line, " \t")
	if trimmed == "" || (trimmed[0] != '`' && trimmed[0] != '~') {
		return "", "", false
	}
	count := len(trimmed) - len(strings.TrimLeft(trimmed, trimmed[:1]))
	if count < 3 {
		return "", "", false
	}
	lang := ""
	if fields := strings.Fields(trimmed[count:]); len(fields) > 0 {
		lang = fields[0]
	}
	return trimmed[:count], lang, true
}

func isClosingFence(line, fence string) bool {
	trimmed := strings.TrimSpace(line)
	return len(trimmed) >= len(fence) && strings.Trim(trimmed, fence[:1]) == ""
}

func highlightCode(code, lang string) string {
	iterator, err := resolveLexer(code, lang).Tokenise(nil, code)
	if err != nil {
		return code
	}
	style := styles.Get(chromaStyleName)
	if style == nil {
		style = styles.Fallback
	}
	var buf bytes.Buffer
	if err := formatters.TTY256.Format(&buf, style, iterator); err != nil {
		return code
	}
	return strings.TrimSuffix(buf.String(), "\n")
}

func resolveLexer(code, lang string) chroma.Lexer {
	var lexer chroma.Lexer
	if lang = strings.ToLower(strings.TrimSpace(lang)); lang != "" {
		lexer = lexers.Get(lang)
	}
	if lexer == nil {
		lexer = lexers.Analyse(code)
	}
	if lexer == nil {
		lexer = lexers.Fallback
	}
	return chroma.Coalesce(lexer)
}
