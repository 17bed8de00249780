package flavor

import (
	"context"
	"strconv"

	"github.com/hashicorp/go-hclog"
	"github.com/pkg/errors"
	"github.com/wowpub/cfrelease/pkg/curse"
	"github.com/wowpub/cfrelease/pkg/packager"
)

// External classifies an interface value using something other than the
// builtin table, usually the packager's own shell routine.
type External interface {
	Classify(ctx context.Context, iface int) (string, error)
}

// ScriptClassifier adapts an extracted packager routine to the
// External interface.
type ScriptClassifier struct {
	Routine *packager.Routine
}

func (s *ScriptClassifier) Classify(ctx context.Context, iface int) (string, error) {
	out, err := s.Routine.Invoke(ctx, strconv.Itoa(iface))
	if err != nil {
		return "", err
	}

	if out == "" {
		return "", errors.Errorf("classifier produced no flavor for %d", iface)
	}

	return out, nil
}

// Resolver decides which flavor slug a build belongs to. It prefers the
// external classifier; the first time that fails the resolver falls
// back to the builtin table and stays there for the rest of the run, so
// one run never mixes verdicts from both sources.
type Resolver struct {
	L hclog.Logger

	external External
	fellBack bool
}

// NewResolver returns a resolver backed by external, which may be nil
// to classify with the builtin table only.
func NewResolver(external External) *Resolver {
	return &Resolver{external: external}
}

func (r *Resolver) logger() hclog.Logger {
	if r.L == nil {
		r.L = hclog.L()
	}

	return r.L
}

// FellBack reports whether the external classifier has been abandoned
// for this run.
func (r *Resolver) FellBack() bool {
	return r.fellBack
}

// Resolve returns the flavor slug for a build, or "" when the build
// spans retail and needs no tag. Errors only surface for malformed
// game version names; classifier trouble is handled by falling back.
func (r *Resolver) Resolve(ctx context.Context, file curse.File) (string, error) {
	var ivals []int

	for _, gv := range file.SortableGameVersions {
		iv, err := gv.Interface()
		if err != nil {
			return "", err
		}

		ivals = append(ivals, iv)
	}

	if len(ivals) == 0 {
		return "", nil
	}

	if r.external != nil && !r.fellBack {
		slug, err := resolveSlug(ivals, func(iv int) (string, error) {
			return r.external.Classify(ctx, iv)
		})
		if err == nil {
			return slug, nil
		}

		r.logger().Info("script classifier failed, using builtin table for the rest of the run", "error", err)
		r.fellBack = true
	}

	return resolveSlug(ivals, func(iv int) (string, error) {
		return Classify(iv), nil
	})
}

// resolveSlug runs the shared slug selection: a build touching retail
// is left untagged, a single-flavor build uses that flavor, and a
// multi-flavor build takes the flavor of its highest interface.
func resolveSlug(ivals []int, classify func(int) (string, error)) (string, error) {
	slugs := map[string]struct{}{}

	for _, iv := range ivals {
		s, err := classify(iv)
		if err != nil {
			return "", err
		}

		slugs[s] = struct{}{}
	}

	if _, ok := slugs[Retail]; ok {
		return "", nil
	}

	if len(slugs) == 1 {
		for s := range slugs {
			return s, nil
		}
	}

	top := ivals[0]
	for _, iv := range ivals[1:] {
		if iv > top {
			top = iv
		}
	}

	return classify(top)
}
