package fetcher

import (
	"strings"

	"golang.org/x/net/html"
)

// StripTags flattens HTML or XML markup into plain text. The tokenizer is
// tolerant of broken markup, which DART filing sections frequently contain;
// entity references are decoded along the way. Script and style bodies are
// dropped.
func StripTags(markup string) string {
	if markup == "" {
		return ""
	}

	tok := html.NewTokenizer(strings.NewReader(markup))
	var b strings.Builder
	skipDepth := 0

	for {
		switch tok.Next() {
		case html.ErrorToken:
			return collapseSpace(b.String())
		case html.StartTagToken:
			name, _ := tok.TagName()
			if isSkippedTag(string(name)) {
				skipDepth++
			}
		case html.EndTagToken:
			name, _ := tok.TagName()
			if isSkippedTag(string(name)) && skipDepth > 0 {
				skipDepth--
			}
		case html.TextToken:
			if skipDepth > 0 {
				continue
			}
			b.Write(tok.Text())
			b.WriteByte(' ')
		}
	}
}

func isSkippedTag(name string) bool {
	return name == "script" || name == "style"
}

// collapseSpace squeezes runs of whitespace down to single spaces while
// preserving line breaks, so the label extractor can still work line by line.
func collapseSpace(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	lastSpace := false
	for _, r := range s {
		switch {
		case r == '\n':
			b.WriteByte('\n')
			lastSpace = false
		case r == ' ' || r == '\t' || r == '\r':
			if !lastSpace {
				b.WriteByte(' ')
			}
			lastSpace = true
		default:
			b.WriteRune(r)
			lastSpace = false
		}
	}

	return strings.TrimSpace(b.String())
}
