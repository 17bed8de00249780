package ops

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/hashicorp/go-hclog"
	"github.com/pkg/errors"

	"github.com/wowpub/cfrelease/pkg/config"
	"github.com/wowpub/cfrelease/pkg/curse"
	"github.com/wowpub/cfrelease/pkg/flavor"
	"github.com/wowpub/cfrelease/pkg/humanize"
	"github.com/wowpub/cfrelease/pkg/packager"
)

// scriptSource is the cached packager script configured for cfg.
func scriptSource(l hclog.Logger, cfg *config.Config) *packager.Source {
	return &packager.Source{
		L:    l,
		Path: cfg.ScriptPath(),
	}
}

// buildResolver wires the external classifier up for one attempt. A
// failed script fetch aborts the attempt; a fetched script without a
// usable routine leaves the attempt on the builtin table.
func buildResolver(ctx context.Context, l hclog.Logger, src *packager.Source) (*flavor.Resolver, error) {
	if err := src.Ensure(ctx); err != nil {
		return nil, err
	}

	routine, err := src.Routine(packager.DefaultRoutine)
	if err != nil {
		l.Info("classifier routine unavailable, using builtin classifier", "error", err)
		return flavor.NewResolver(nil), nil
	}

	return flavor.NewResolver(&flavor.ScriptClassifier{Routine: routine}), nil
}

// Plan previews what a run would release without downloading or
// publishing anything.
type Plan struct {
	common

	Config *config.Config

	// Optional overrides for tests.
	Curse    *curse.Client
	Resolver *flavor.Resolver
}

type PlanEntry struct {
	File curse.File

	Name string
	Slug string

	Versions []string
}

type PlanResult struct {
	Mod     *curse.Mod
	Entries []PlanEntry
}

func (p *Plan) Resolve(ctx context.Context) (*PlanResult, error) {
	cc := p.Curse
	if cc == nil {
		cc = curse.NewClient(p.Config.CFToken, config.UserAgent())
	}

	mod, err := cc.Mod(ctx, p.Config.AddonID)
	if err != nil {
		return nil, err
	}

	files := mod.LatestReleases()
	if len(files) == 0 {
		return nil, errors.Wrapf(ErrNoBuilds, "mod %d", p.Config.AddonID)
	}

	resolver := p.Resolver
	if resolver == nil {
		resolver, err = buildResolver(ctx, p.L(), scriptSource(p.L(), p.Config))
		if err != nil {
			return nil, err
		}
	}

	res := &PlanResult{Mod: mod}

	for _, f := range files {
		slug, err := resolver.Resolve(ctx, f)
		if err != nil {
			return nil, err
		}

		var versions []string
		for _, gv := range f.SortableGameVersions {
			versions = append(versions, gv.Name)
		}

		res.Entries = append(res.Entries, PlanEntry{
			File:     f,
			Name:     flavor.ArchiveName(f.FileName, slug),
			Slug:     slug,
			Versions: versions,
		})
	}

	return res, nil
}

func (r *PlanResult) Explain(w io.Writer) error {
	tr := tabwriter.NewWriter(w, 4, 2, 1, ' ', 0)
	defer tr.Flush()

	fmt.Fprintln(tr, "NAME\tFLAVOR\tVERSIONS\tSIZE\tFILE")

	for _, e := range r.Entries {
		slug := e.Slug
		if slug == "" {
			slug = flavor.Retail
		}

		sz, unit := humanize.Size(e.File.FileLength)

		hs := fmt.Sprintf("%.2f%s", sz, unit)
		if len(hs) < 10 {
			hs = "          "[:10-len(hs)] + hs
		}

		fmt.Fprintf(tr, "%s\t%s\t%s\t%s\t%s\n",
			e.File.DisplayName, slug, strings.Join(e.Versions, ", "), hs, e.Name)
	}

	return nil
}
