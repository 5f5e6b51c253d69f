package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/fatih/color"
	"github.com/google/go-github/v75/github"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/herald/pkg/cli/config"
	"github.com/m-mizutani/herald/pkg/domain/model"
	"github.com/m-mizutani/herald/pkg/domain/types"
	"github.com/m-mizutani/herald/pkg/infra/discord"
	"github.com/m-mizutani/herald/pkg/usecase"
	"github.com/urfave/cli/v3"
)

func cmdPost() *cli.Command {
	var (
		discordCfg config.Discord
		eventPath  string
		configPath string
		dryRun     bool
	)

	flags := append(discordCfg.Flags(),
		&cli.StringFlag{
			Name:        "event",
			Usage:       "Path to the release event payload JSON",
			Destination: &eventPath,
			Sources:     cli.EnvVars("HERALD_EVENT_PATH", "GITHUB_EVENT_PATH"),
		},
		&cli.StringFlag{
			Name:        "config",
			Usage:       "Path to a TOML file supplying unset options",
			Destination: &configPath,
			Sources:     cli.EnvVars("HERALD_CONFIG"),
		},
		&cli.BoolFlag{
			Name:        "dry-run",
			Usage:       "Render the message and print it without posting",
			Destination: &dryRun,
		},
	)

	return &cli.Command{
		Name:    "post",
		Aliases: []string{"p"},
		Usage:   "Deliver one release event and exit",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := ctxlog.From(ctx)

			if configPath != "" {
				if err := discordCfg.LoadFile(configPath); err != nil {
					return err
				}
			}

			event, err := loadReleaseEvent(eventPath)
			if err != nil {
				return err
			}

			logger.Info("Relaying release",
				slog.String("tag", event.Tag),
				slog.String("name", event.Name),
				slog.String("author", event.Author),
				slog.Any("config", &discordCfg),
			)

			// Dry run needs no webhook URL: it never posts.
			if dryRun {
				printPreview(event, discordCfg.MessageOptions())
				return nil
			}

			if err := discordCfg.Validate(); err != nil {
				return err
			}

			client, err := discord.NewClient(discordCfg.WebhookURL)
			if err != nil {
				return err
			}

			notifier, err := usecase.NewNotifier(client, discordCfg.MessageOptions(), discordCfg.RetryPolicy())
			if err != nil {
				return err
			}

			return notifier.Deliver(ctx, event)
		},
	}
}

// loadReleaseEvent reads a GitHub release event payload, e.g. the file the
// CI runner points GITHUB_EVENT_PATH at.
func loadReleaseEvent(path string) (*model.ReleaseEvent, error) {
	if path == "" {
		return nil, goerr.New("event payload path is required", goerr.T(types.ErrTagInvalidConfig))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read event payload",
			goerr.T(types.ErrTagInvalidConfig), goerr.V("path", path))
	}

	var payload github.ReleaseEvent
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, goerr.Wrap(err, "failed to parse event payload",
			goerr.T(types.ErrTagInvalidConfig), goerr.V("path", path))
	}

	return model.NewReleaseEvent(&payload)
}

// printPreview writes the rendered message to stdout for --dry-run.
func printPreview(event *model.ReleaseEvent, opts model.MessageOptions) {
	msg := usecase.RenderMessage(event, opts)

	title := color.New(color.FgCyan, color.Bold)
	label := color.New(color.FgYellow)

	if msg.Content != "" {
		label.Print("content: ")
		fmt.Println(msg.Content)
	}
	for _, embed := range msg.Embeds {
		title.Println(embed.Title)
		if embed.URL != "" {
			label.Print("url: ")
			fmt.Println(embed.URL)
		}
		fmt.Println(embed.Description)
		if embed.Footer != nil {
			label.Print("footer: ")
			fmt.Println(embed.Footer.Text)
		}
	}
}
