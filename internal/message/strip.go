package message

import (
	"strings"

	"golang.org/x/net/html"
)

// StripMarkup removes HTML tags from text and keeps its textual content with
// entities decoded. Whitespace is left as the tags left it.
func StripMarkup(text string) string {
	if text == "" {
		return ""
	}

	var b strings.Builder
	z := html.NewTokenizer(strings.NewReader(text))
	for {
		switch z.Next() {
		case html.ErrorToken:
			// io.EOF is the only error a strings.Reader produces.
			return b.String()
		case html.TextToken:
			b.Write(z.Text())
		}
	}
}
