package model

// WebhookMessage is the JSON payload posted to the Discord webhook.
type WebhookMessage struct {
	Content   string  `json:"content,omitempty"`
	Username  string  `json:"username,omitempty"`
	AvatarURL string  `json:"avatar_url,omitempty"`
	Embeds    []Embed `json:"embeds"`
}

// Embed is a rich-content block within a webhook message.
type Embed struct {
	Title       string       `json:"title,omitempty"`
	URL         string       `json:"url,omitempty"`
	Description string       `json:"description,omitempty"`
	Color       int          `json:"color,omitempty"`
	Timestamp   string       `json:"timestamp,omitempty"` // ISO8601
	Footer      *EmbedFooter `json:"footer,omitempty"`
}

// EmbedFooter is the footer block of an embed.
type EmbedFooter struct {
	Text    string `json:"text,omitempty"`
	IconURL string `json:"icon_url,omitempty"`
}

// MessageOptions controls how a ReleaseEvent is rendered into a
// WebhookMessage.
type MessageOptions struct {
	Content         string // Literal prefix text, e.g. a mention tag
	Username        string // Sender name override
	AvatarURL       string // Sender avatar override
	Color           int    // Embed accent color
	FooterTitle     string
	FooterIconURL   string
	FooterTimestamp bool // Put the publication time into the footer timestamp
	MaxDescription  int  // Truncation bound in runes
	ReduceHeadings  bool // Demote Markdown headings for chat rendering
}

// DefaultMaxDescription is the embed description limit imposed by the
// receiver.
const DefaultMaxDescription = 4096
