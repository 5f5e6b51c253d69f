package config

import (
	"os"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/herald/pkg/domain/model"
	"github.com/m-mizutani/herald/pkg/domain/types"
	"github.com/pelletier/go-toml/v2"
	"github.com/urfave/cli/v3"
)

// Discord holds the webhook destination and message rendering options.
// WebhookURL is a secret: it is redacted from logs and must never be
// persisted.
type Discord struct {
	WebhookURL      string `masq:"secret" toml:"webhook_url"`
	Color           int    `toml:"color"`
	Username        string `toml:"username"`
	AvatarURL       string `toml:"avatar_url"`
	Content         string `toml:"content"`
	FooterTitle     string `toml:"footer_title"`
	FooterIconURL   string `toml:"footer_icon_url"`
	FooterTimestamp bool   `toml:"footer_timestamp"`
	MaxDescription  int    `toml:"max_description"`
	ReduceHeadings  bool   `toml:"reduce_headings"`

	MaxAttempts    int           `toml:"max_attempts"`
	AttemptTimeout time.Duration `toml:"attempt_timeout"`
	DeliveryBudget time.Duration `toml:"delivery_budget"`
}

// Flags returns CLI flags for webhook configuration
func (c *Discord) Flags() []cli.Flag {
	defaults := model.DefaultRetryPolicy()

	return []cli.Flag{
		&cli.StringFlag{
			Name:        "webhook-url",
			Usage:       "Discord webhook URL (secret)",
			Destination: &c.WebhookURL,
			Sources:     cli.EnvVars("HERALD_WEBHOOK_URL"),
		},
		&cli.IntFlag{
			Name:        "color",
			Usage:       "Embed accent color as decimal RGB",
			Value:       2105893,
			Destination: &c.Color,
			Sources:     cli.EnvVars("HERALD_COLOR"),
		},
		&cli.StringFlag{
			Name:        "username",
			Usage:       "Sender name override",
			Destination: &c.Username,
			Sources:     cli.EnvVars("HERALD_USERNAME"),
		},
		&cli.StringFlag{
			Name:        "avatar-url",
			Usage:       "Sender avatar override",
			Destination: &c.AvatarURL,
			Sources:     cli.EnvVars("HERALD_AVATAR_URL"),
		},
		&cli.StringFlag{
			Name:        "content",
			Usage:       "Literal message prefix, e.g. a mention tag",
			Destination: &c.Content,
			Sources:     cli.EnvVars("HERALD_CONTENT"),
		},
		&cli.StringFlag{
			Name:        "footer-title",
			Usage:       "Embed footer text",
			Destination: &c.FooterTitle,
			Sources:     cli.EnvVars("HERALD_FOOTER_TITLE"),
		},
		&cli.StringFlag{
			Name:        "footer-icon-url",
			Usage:       "Embed footer icon URL",
			Destination: &c.FooterIconURL,
			Sources:     cli.EnvVars("HERALD_FOOTER_ICON_URL"),
		},
		&cli.BoolFlag{
			Name:        "footer-timestamp",
			Usage:       "Put the publication time into the embed footer",
			Destination: &c.FooterTimestamp,
			Sources:     cli.EnvVars("HERALD_FOOTER_TIMESTAMP"),
		},
		&cli.IntFlag{
			Name:        "max-description",
			Usage:       "Truncation bound of the embed description in characters",
			Value:       model.DefaultMaxDescription,
			Destination: &c.MaxDescription,
			Sources:     cli.EnvVars("HERALD_MAX_DESCRIPTION"),
		},
		&cli.BoolFlag{
			Name:        "reduce-headings",
			Usage:       "Demote Markdown headings for chat rendering",
			Destination: &c.ReduceHeadings,
			Sources:     cli.EnvVars("HERALD_REDUCE_HEADINGS"),
		},
		&cli.IntFlag{
			Name:        "max-attempts",
			Usage:       "Delivery attempt budget including the first try",
			Value:       defaults.MaxAttempts,
			Destination: &c.MaxAttempts,
			Sources:     cli.EnvVars("HERALD_MAX_ATTEMPTS"),
		},
		&cli.DurationFlag{
			Name:        "attempt-timeout",
			Usage:       "Per-attempt timeout",
			Value:       defaults.AttemptTimeout,
			Destination: &c.AttemptTimeout,
			Sources:     cli.EnvVars("HERALD_ATTEMPT_TIMEOUT"),
		},
		&cli.DurationFlag{
			Name:        "delivery-budget",
			Usage:       "Overall wall-clock budget for one delivery",
			Value:       defaults.Budget,
			Destination: &c.DeliveryBudget,
			Sources:     cli.EnvVars("HERALD_DELIVERY_BUDGET"),
		},
	}
}

// LoadFile merges options from a TOML file into fields that are still at
// their zero value, so explicit flags and env vars win over the file.
func (c *Discord) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return goerr.Wrap(err, "failed to read config file",
			goerr.T(types.ErrTagInvalidConfig), goerr.V("path", path))
	}

	var file Discord
	if err := toml.Unmarshal(data, &file); err != nil {
		return goerr.Wrap(err, "failed to parse config file",
			goerr.T(types.ErrTagInvalidConfig), goerr.V("path", path))
	}

	if c.WebhookURL == "" {
		c.WebhookURL = file.WebhookURL
	}
	if file.Color != 0 {
		c.Color = file.Color
	}
	if c.Username == "" {
		c.Username = file.Username
	}
	if c.AvatarURL == "" {
		c.AvatarURL = file.AvatarURL
	}
	if c.Content == "" {
		c.Content = file.Content
	}
	if c.FooterTitle == "" {
		c.FooterTitle = file.FooterTitle
	}
	if c.FooterIconURL == "" {
		c.FooterIconURL = file.FooterIconURL
	}
	if file.FooterTimestamp {
		c.FooterTimestamp = true
	}
	if file.MaxDescription > 0 {
		c.MaxDescription = file.MaxDescription
	}
	if file.ReduceHeadings {
		c.ReduceHeadings = true
	}
	if file.MaxAttempts > 0 {
		c.MaxAttempts = file.MaxAttempts
	}
	if file.AttemptTimeout > 0 {
		c.AttemptTimeout = file.AttemptTimeout
	}
	if file.DeliveryBudget > 0 {
		c.DeliveryBudget = file.DeliveryBudget
	}

	return nil
}

// Validate checks the options that must hold before any delivery.
func (c *Discord) Validate() error {
	if c.WebhookURL == "" {
		return goerr.New("webhook URL is required", goerr.T(types.ErrTagInvalidConfig))
	}
	if c.MaxDescription <= 0 {
		return goerr.New("max-description must be positive",
			goerr.T(types.ErrTagInvalidConfig), goerr.V("max_description", c.MaxDescription))
	}
	if c.MaxAttempts <= 0 {
		return goerr.New("max-attempts must be positive",
			goerr.T(types.ErrTagInvalidConfig), goerr.V("max_attempts", c.MaxAttempts))
	}
	return nil
}

// MessageOptions builds rendering options from the configuration.
func (c *Discord) MessageOptions() model.MessageOptions {
	return model.MessageOptions{
		Content:         c.Content,
		Username:        c.Username,
		AvatarURL:       c.AvatarURL,
		Color:           c.Color,
		FooterTitle:     c.FooterTitle,
		FooterIconURL:   c.FooterIconURL,
		FooterTimestamp: c.FooterTimestamp,
		MaxDescription:  c.MaxDescription,
		ReduceHeadings:  c.ReduceHeadings,
	}
}

// RetryPolicy builds the retry policy from the configuration.
func (c *Discord) RetryPolicy() model.RetryPolicy {
	policy := model.DefaultRetryPolicy()
	if c.MaxAttempts > 0 {
		policy.MaxAttempts = c.MaxAttempts
	}
	if c.AttemptTimeout > 0 {
		policy.AttemptTimeout = c.AttemptTimeout
	}
	if c.DeliveryBudget > 0 {
		policy.Budget = c.DeliveryBudget
	}
	return policy
}
