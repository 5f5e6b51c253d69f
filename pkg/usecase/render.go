package usecase

import (
	"strings"
	"time"

	"github.com/m-mizutani/herald/pkg/domain/model"
)

// truncationMarker is appended when release notes had to be cut mid-line.
const truncationMarker = "…"

// RenderMessage assembles the webhook payload from a release event.
func RenderMessage(event *model.ReleaseEvent, opts model.MessageOptions) *model.WebhookMessage {
	description := event.Body
	if opts.ReduceHeadings {
		description = reduceHeadings(description)
	}
	description = truncate(description, opts.MaxDescription)

	embed := model.Embed{
		Title:       event.Name,
		URL:         event.URL,
		Description: description,
		Color:       opts.Color,
	}

	if opts.FooterTitle != "" || opts.FooterIconURL != "" {
		embed.Footer = &model.EmbedFooter{
			Text:    opts.FooterTitle,
			IconURL: opts.FooterIconURL,
		}
	}
	if opts.FooterTimestamp && !event.PublishedAt.IsZero() {
		embed.Timestamp = event.PublishedAt.UTC().Format(time.RFC3339)
	}

	return &model.WebhookMessage{
		Content:   opts.Content,
		Username:  opts.Username,
		AvatarURL: opts.AvatarURL,
		Embeds:    []model.Embed{embed},
	}
}

// reduceHeadings demotes Markdown headings so long-form release notes render
// legibly inside an embed: H1/H2 become H3 (the deepest level the chat
// client renders as a heading), H3 and deeper become bold lines.
func reduceHeadings(body string) string {
	lines := strings.Split(body, "\n")
	for i, line := range lines {
		marker, rest, ok := splitHeading(line)
		if !ok {
			continue
		}
		switch {
		case len(marker) <= 2:
			lines[i] = "### " + rest
		default:
			lines[i] = "**" + rest + "**"
		}
	}
	return strings.Join(lines, "\n")
}

// splitHeading returns the leading '#' run and the heading text of a
// Markdown heading line, or ok=false when the line is not a heading.
func splitHeading(line string) (marker, text string, ok bool) {
	trimmed := strings.TrimLeft(line, " ")
	n := 0
	for n < len(trimmed) && trimmed[n] == '#' {
		n++
	}
	if n == 0 || n > 6 || n >= len(trimmed) || trimmed[n] != ' ' {
		return "", "", false
	}
	return trimmed[:n], strings.TrimSpace(trimmed[n:]), true
}

// truncate bounds s to max runes. Counting runes guarantees multi-byte
// characters are never split. When a line break exists within the last 10%
// of the bounded prefix, the cut lands there so the output ends on a
// complete line; otherwise a truncation marker is appended.
func truncate(s string, max int) string {
	if max <= 0 {
		max = model.DefaultMaxDescription
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}

	window := max / 10
	cut := max - len([]rune(truncationMarker))
	for i := cut - 1; i >= cut-window && i >= 0; i-- {
		if runes[i] == '\n' {
			return strings.TrimRight(string(runes[:i]), "\n ")
		}
	}

	return string(runes[:cut]) + truncationMarker
}
