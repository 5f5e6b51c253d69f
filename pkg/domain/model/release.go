package model

import (
	"time"

	"github.com/google/go-github/v75/github"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/herald/pkg/domain/types"
)

// ReleaseEvent represents a release-published event received from the
// trigger boundary. It is immutable for the duration of one relay run.
type ReleaseEvent struct {
	Tag         string    // Release tag name
	Name        string    // Release title (falls back to Tag)
	Body        string    // Release notes in Markdown
	Author      string    // Login of the user who published the release
	URL         string    // HTML URL of the release page
	PublishedAt time.Time // Publication time
}

// NewReleaseEvent converts a GitHub release event payload into the domain
// representation. The payload must carry a release with a tag name.
func NewReleaseEvent(ev *github.ReleaseEvent) (*ReleaseEvent, error) {
	release := ev.GetRelease()
	if release == nil {
		return nil, goerr.New("release event has no release payload", goerr.T(types.ErrTagInvalidConfig))
	}
	if release.GetTagName() == "" {
		return nil, goerr.New("release event has no tag name", goerr.T(types.ErrTagInvalidConfig))
	}

	event := &ReleaseEvent{
		Tag:         release.GetTagName(),
		Name:        release.GetName(),
		Body:        release.GetBody(),
		Author:      release.GetAuthor().GetLogin(),
		URL:         release.GetHTMLURL(),
		PublishedAt: release.GetPublishedAt().Time,
	}

	if event.Name == "" {
		event.Name = event.Tag
	}
	if event.Author == "" {
		event.Author = ev.GetSender().GetLogin()
	}

	return event, nil
}
