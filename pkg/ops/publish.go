package ops

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/wowpub/cfrelease/pkg/github"
	"github.com/wowpub/cfrelease/pkg/progress"
)

// ReleasePublish creates the tagged GitHub release when it does not
// exist yet and pushes the assets up.
type ReleasePublish struct {
	common

	Client *github.Client
	Owner  string
	Name   string
}

// Sync returns the release carrying tag, creating it first when the
// tag is new. Re-running against an existing tag reuses the release.
func (p *ReleasePublish) Sync(ctx context.Context, tag, body string) (*github.Release, error) {
	rel, err := p.Client.ReleaseByTag(ctx, p.Owner, p.Name, tag)
	if err != nil {
		return nil, err
	}

	if rel != nil {
		p.L().Info("release already exists", "tag", tag, "id", rel.ID)
		return rel, nil
	}

	rel, err = p.Client.CreateRelease(ctx, p.Owner, p.Name, tag, body)
	if err != nil {
		return nil, err
	}

	p.L().Debug("created release", "tag", tag, "id", rel.ID)

	return rel, nil
}

// UploadAll pushes each asset in order. Archives go up as zips, the
// manifest as json.
func (p *ReleasePublish) UploadAll(ctx context.Context, rel *github.Release, paths []string) error {
	target := rel.UploadTarget()

	ui := GetUI(ctx)

	for _, path := range paths {
		f, err := os.Open(path)
		if err != nil {
			return track(err)
		}

		fi, err := f.Stat()
		if err != nil {
			f.Close()
			return track(err)
		}

		name := filepath.Base(path)

		contentType := "application/zip"
		if filepath.Ext(name) == ".json" {
			contentType = "application/json"
		}

		ui.UploadAsset(name, fi.Size())

		bar := progress.Bytes(ctx, fi.Size(), name)

		err = p.Client.UploadAsset(ctx, target, name, fi.Size(), contentType, io.TeeReader(f, bar))

		bar.Close()
		f.Close()

		if err != nil {
			return err
		}

		p.L().Debug("uploaded asset", "name", name, "size", fi.Size())
	}

	return nil
}
