package ops

import (
	"context"
	"path/filepath"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/pkg/errors"

	"github.com/wowpub/cfrelease/pkg/config"
	"github.com/wowpub/cfrelease/pkg/curse"
	"github.com/wowpub/cfrelease/pkg/flavor"
	"github.com/wowpub/cfrelease/pkg/github"
	"github.com/wowpub/cfrelease/pkg/manifest"
)

// ErrNoBuilds reports that the mod has no release-quality builds to
// mirror. The pipeline does not retry it.
var ErrNoBuilds = errors.New("no release builds on curseforge")

// ReleaseTag formats the tag one run publishes under.
func ReleaseTag(t time.Time) string {
	return "v" + t.UTC().Format("2006.01.02.15.04")
}

// Release mirrors the latest release build of every game flavor from
// CurseForge into one tagged GitHub release.
type Release struct {
	common

	Config *config.Config

	// DryRun stages everything locally and stops before publishing.
	DryRun bool

	// Pause overrides the delay between attempts.
	Pause time.Duration

	// Optional overrides. Zero values select the real services.
	Curse    *curse.Client
	Github   *github.Client
	Resolver *flavor.Resolver
	Now      func() time.Time
}

func (r *Release) curseClient() *curse.Client {
	if r.Curse == nil {
		r.Curse = curse.NewClient(r.Config.CFToken, config.UserAgent())
	}

	return r.Curse
}

func (r *Release) githubClient() *github.Client {
	if r.Github == nil {
		r.Github = github.NewClient(r.Config.GHToken, config.UserAgent())
	}

	return r.Github
}

func (r *Release) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}

	return time.Now()
}

func (r *Release) pause() time.Duration {
	if r.Pause > 0 {
		return r.Pause
	}

	return time.Second
}

func (r *Release) resolver(ctx context.Context) (*flavor.Resolver, error) {
	if r.Resolver != nil {
		return r.Resolver, nil
	}

	return buildResolver(ctx, r.L(), scriptSource(r.L(), r.Config))
}

func (r *Release) repository() (string, string, error) {
	repo := r.Config.Repository

	if repo == "" {
		var rd github.RepoDetect
		rd.L = r.L()

		id, err := rd.Detect(r.Config.WorkDir)
		if err != nil {
			return "", "", err
		}

		repo = id
	}

	return config.SplitRepository(repo)
}

// Run drives the pipeline, re-running the whole attempt on transient
// failure. Three attempts with a fixed pause between them.
func (r *Release) Run(ctx context.Context) error {
	ui := GetUI(ctx)

	bo := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(r.pause()), 2), ctx)

	return backoff.RetryNotify(
		func() error {
			return r.runOnce(ctx)
		},
		bo,
		func(err error, wait time.Duration) {
			r.L().Error("attempt failed", "error", err, "wait", wait)
			ui.RetryWait(err, wait)
		},
	)
}

func (r *Release) runOnce(ctx context.Context) error {
	cfg := r.Config

	cc := r.curseClient()

	types, err := cc.VersionTypes(ctx)
	if err != nil {
		return err
	}

	resolver, err := r.resolver(ctx)
	if err != nil {
		return err
	}

	mod, err := cc.Mod(ctx, cfg.AddonID)
	if err != nil {
		return err
	}

	files := mod.LatestReleases()
	if len(files) == 0 {
		return backoff.Permanent(errors.Wrapf(ErrNoBuilds, "mod %d", cfg.AddonID))
	}

	ui := GetUI(ctx)
	ui.Start(mod.Name, len(files))

	dl := &BuildDownload{Client: cc, Resolver: resolver}
	dl.SetLogger(r.L())

	var (
		rels  []manifest.Release
		paths []string
	)

	for _, f := range files {
		d, err := dl.Download(ctx, cfg.WorkDir, f)
		if err != nil {
			return err
		}

		rels = append(rels, manifest.Release{
			Name:     mod.Name,
			Filename: d.Name,
			Versions: f.SortableGameVersions,
		})

		paths = append(paths, d.Path)
	}

	man, err := manifest.Build(rels, types)
	if err != nil {
		return err
	}

	manPath := filepath.Join(cfg.WorkDir, manifest.FileName)

	err = man.WriteFile(manPath)
	if err != nil {
		return err
	}

	paths = append(paths, manPath)

	cl := &ChangelogFetch{Client: cc, ModID: cfg.AddonID}
	cl.SetLogger(r.L())

	body, err := cl.Joined(ctx, files)
	if err != nil {
		return err
	}

	tag := ReleaseTag(r.now())

	if r.DryRun {
		r.L().Info("dry run, skipping publish", "tag", tag, "assets", len(paths))
		ui.DryRun(tag, len(paths))

		return nil
	}

	owner, name, err := r.repository()
	if err != nil {
		return backoff.Permanent(err)
	}

	pub := &ReleasePublish{Client: r.githubClient(), Owner: owner, Name: name}
	pub.SetLogger(r.L())

	rel, err := pub.Sync(ctx, tag, body)
	if err != nil {
		return err
	}

	err = pub.UploadAll(ctx, rel, paths)
	if err != nil {
		return err
	}

	ui.Published(tag, rel.HTMLURL)

	return nil
}
