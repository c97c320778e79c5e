package message

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf16"

	"github.com/automagictv/remy/internal/services/recipe"
)

// DefaultCharLimit is Telegram's sendMessage text limit.
const DefaultCharLimit = 4096

const (
	// TooLongPrefix precedes the link fallback. It is MarkdownV2, so "!" is escaped.
	TooLongPrefix = "This recipe was too long to send here\\! Here's the link instead: "

	// NoInstructionsPlaceholder replaces an empty instructions section.
	NoInstructionsPlaceholder = "Looks like this one didn't come with instructions. Improvise and make something delicious!"
)

// RenderMode selects how a formatted message is rendered by the transport.
type RenderMode int

const (
	RichBody RenderMode = iota
	LinkFallback
)

func (m RenderMode) String() string {
	switch m {
	case RichBody:
		return "rich_body"
	case LinkFallback:
		return "link_fallback"
	default:
		return fmt.Sprintf("RenderMode(%d)", int(m))
	}
}

// ParseMode is the Telegram parse mode for the render mode.
func (m RenderMode) ParseMode() string {
	if m == LinkFallback {
		return "MarkdownV2"
	}
	return "HTML"
}

// Formatted is one outbound message body and how to render it.
type Formatted struct {
	Body string
	Mode RenderMode
}

var (
	spaceRuns = regexp.MustCompile(` +`)

	htmlEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

	markdownEscaper = strings.NewReplacer(
		`\`, `\\`,
		"_", `\_`, "*", `\*`, "[", `\[`, "]", `\]`, "(", `\(`, ")", `\)`,
		"~", `\~`, "`", "\\`", ">", `\>`, "#", `\#`, "+", `\+`, "-", `\-`,
		"=", `\=`, "|", `\|`, "{", `\{`, "}", `\}`, ".", `\.`, "!", `\!`,
	)

	linkEscaper = strings.NewReplacer(`\`, `\\`, ")", `\)`)
)

// FormatRichBody renders a recipe as Telegram HTML.
func FormatRichBody(r recipe.Recipe) string {
	lines := make([]string, 0, len(r.ExtendedIngredients))
	for _, ing := range r.ExtendedIngredients {
		lines = append(lines, htmlEscaper.Replace(StripMarkup(ing.Text())))
	}

	instructions := strings.TrimSpace(spaceRuns.ReplaceAllString(StripMarkup(r.Instructions), " "))
	if instructions == "" {
		instructions = NoInstructionsPlaceholder
	}

	var b strings.Builder
	fmt.Fprintf(&b, "<b>%s</b>\n", htmlEscaper.Replace(StripMarkup(r.Title)))
	fmt.Fprintf(&b, "Cooktime: %d minutes\n\n", r.ReadyInMinutes)
	b.WriteString("<u>Ingredients</u>\n")
	b.WriteString(strings.Join(lines, "\n"))
	b.WriteString("\n\n<u>Instructions</u>\n")
	b.WriteString(htmlEscaper.Replace(instructions))
	return b.String()
}

// FormatLinkFallback renders the recipe title as a bold MarkdownV2 link to its source.
func FormatLinkFallback(r recipe.Recipe) string {
	title := markdownEscaper.Replace(StripMarkup(r.Title))
	return fmt.Sprintf("*[%s](%s)*", title, linkEscaper.Replace(r.SourceURL))
}

// Format picks the rich body when it fits within limit and the link
// fallback otherwise. A non-positive limit means DefaultCharLimit.
func Format(r recipe.Recipe, limit int) Formatted {
	if limit <= 0 {
		limit = DefaultCharLimit
	}

	body := FormatRichBody(r)
	if Length(body) <= limit {
		return Formatted{Body: body, Mode: RichBody}
	}

	return Formatted{Body: TooLongPrefix + FormatLinkFallback(r), Mode: LinkFallback}
}

// Length counts s in UTF-16 code units, the unit Telegram limits are expressed in.
func Length(s string) int {
	n := 0
	for _, r := range s {
		n += utf16.RuneLen(r)
	}
	return n
}
