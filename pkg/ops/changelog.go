package ops

import (
	"context"
	"strings"

	"github.com/wowpub/cfrelease/pkg/curse"
	"github.com/wowpub/cfrelease/pkg/markdown"
)

// ChangelogFetch collects the changelog of each build and merges them
// into a single release body.
type ChangelogFetch struct {
	common

	Client *curse.Client
	ModID  int
}

func (c *ChangelogFetch) Fetch(ctx context.Context, file curse.File) (string, error) {
	html, err := c.Client.Changelog(ctx, c.ModID, file.ID)
	if err != nil {
		return "", err
	}

	return markdown.FromHTML(html)
}

// Joined fetches every changelog in build order and separates them
// with a horizontal rule.
func (c *ChangelogFetch) Joined(ctx context.Context, files []curse.File) (string, error) {
	var parts []string

	for _, f := range files {
		md, err := c.Fetch(ctx, f)
		if err != nil {
			return "", err
		}

		parts = append(parts, md)
	}

	return strings.Join(parts, "\n\n---\n\n"), nil
}
