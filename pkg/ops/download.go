package ops

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/mr-tron/base58"
	"golang.org/x/crypto/blake2b"

	"github.com/wowpub/cfrelease/pkg/curse"
	"github.com/wowpub/cfrelease/pkg/flavor"
	"github.com/wowpub/cfrelease/pkg/progress"
)

// BuildDownload fetches one CurseForge build into a local directory,
// renaming the archive for the game flavor it targets.
type BuildDownload struct {
	common

	Client   *curse.Client
	Resolver *flavor.Resolver
}

type Download struct {
	File curse.File

	Name string
	Path string
	Slug string
	Size int64
}

func (d *BuildDownload) Download(ctx context.Context, dir string, file curse.File) (*Download, error) {
	slug, err := d.Resolver.Resolve(ctx, file)
	if err != nil {
		return nil, err
	}

	name := flavor.ArchiveName(file.FileName, slug)

	ui := GetUI(ctx)
	ui.DownloadBuild(name, file.FileLength)

	body, size, err := d.Client.File(ctx, file.DownloadURL)
	if err != nil {
		return nil, err
	}

	defer body.Close()

	path := filepath.Join(dir, name)

	f, err := os.Create(path)
	if err != nil {
		return nil, track(err)
	}

	defer f.Close()

	h, _ := blake2b.New256(nil)

	bar := progress.Bytes(ctx, size, name)
	defer bar.Close()

	n, err := io.Copy(io.MultiWriter(f, h, bar), body)
	if err != nil {
		return nil, track(err)
	}

	d.L().Debug("downloaded build",
		"file", name,
		"size", n,
		"digest", base58.Encode(h.Sum(nil)))

	return &Download{
		File: file,
		Name: name,
		Path: path,
		Slug: slug,
		Size: n,
	}, nil
}
