package ops

import (
	"context"
	"time"

	"github.com/wowpub/cfrelease/pkg/humanize"
	"github.com/wowpub/cfrelease/pkg/status"
)

type UI struct {
	P *status.Printer
}

func (u *UI) printer() *status.Printer {
	if u.P == nil {
		u.P = &status.Printer{}
	}

	return u.P
}

func (u *UI) Start(name string, builds int) {
	u.printer().Step("releasing %s (%d builds)", name, builds)
}

func (u *UI) DownloadBuild(name string, size int64) {
	sz, unit := humanize.Size(size)

	u.printer().Download("downloading %s (%.2f%s)", name, sz, unit)
}

func (u *UI) UploadAsset(name string, size int64) {
	sz, unit := humanize.Size(size)

	u.printer().Upload("uploading %s (%.2f%s)", name, sz, unit)
}

func (u *UI) Published(tag, url string) {
	u.printer().Done("released %s: %s", tag, url)
}

func (u *UI) DryRun(tag string, assets int) {
	u.printer().Done("dry run, staged %s (%d assets)", tag, assets)
}

func (u *UI) RetryWait(err error, wait time.Duration) {
	u.printer().Warn("attempt failed, retrying in %s: %s", wait, err)
}

type uiMarker struct{}

// WithUI hangs a UI on the context for the ops underneath to report
// through.
func WithUI(ctx context.Context, ui *UI) context.Context {
	return context.WithValue(ctx, uiMarker{}, ui)
}

func GetUI(ctx context.Context) *UI {
	v := ctx.Value(uiMarker{})
	if v == nil {
		return &UI{}
	}

	return v.(*UI)
}
