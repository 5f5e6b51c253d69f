package model_test

import (
	"testing"
	"time"

	"github.com/google/go-github/v75/github"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/herald/pkg/domain/model"
	"github.com/m-mizutani/herald/pkg/domain/types"
)

func TestNewReleaseEvent(t *testing.T) {
	publishedAt := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	t.Run("maps all fields", func(t *testing.T) {
		ev := &github.ReleaseEvent{
			Action: github.Ptr("published"),
			Release: &github.RepositoryRelease{
				TagName:     github.Ptr("v1.2.3"),
				Name:        github.Ptr("v1.2.3: fixes"),
				Body:        github.Ptr("release notes"),
				HTMLURL:     github.Ptr("https://github.com/test/repo/releases/tag/v1.2.3"),
				PublishedAt: &github.Timestamp{Time: publishedAt},
				Author:      &github.User{Login: github.Ptr("author")},
			},
			Sender: &github.User{Login: github.Ptr("sender")},
		}

		event, err := model.NewReleaseEvent(ev)
		gt.NoError(t, err)
		gt.Equal(t, event.Tag, "v1.2.3")
		gt.Equal(t, event.Name, "v1.2.3: fixes")
		gt.Equal(t, event.Body, "release notes")
		gt.Equal(t, event.Author, "author")
		gt.Equal(t, event.URL, "https://github.com/test/repo/releases/tag/v1.2.3")
		gt.Equal(t, event.PublishedAt, publishedAt)
	})

	t.Run("falls back to tag and sender", func(t *testing.T) {
		ev := &github.ReleaseEvent{
			Release: &github.RepositoryRelease{
				TagName: github.Ptr("v1.2.3"),
			},
			Sender: &github.User{Login: github.Ptr("sender")},
		}

		event, err := model.NewReleaseEvent(ev)
		gt.NoError(t, err)
		gt.Equal(t, event.Name, "v1.2.3")
		gt.Equal(t, event.Author, "sender")
	})

	t.Run("rejects payload without release", func(t *testing.T) {
		_, err := model.NewReleaseEvent(&github.ReleaseEvent{})
		gt.Error(t, err)
		gt.True(t, goerr.HasTag(err, types.ErrTagInvalidConfig))
	})

	t.Run("rejects release without tag", func(t *testing.T) {
		_, err := model.NewReleaseEvent(&github.ReleaseEvent{
			Release: &github.RepositoryRelease{},
		})
		gt.Error(t, err)
		gt.True(t, goerr.HasTag(err, types.ErrTagInvalidConfig))
	})
}
