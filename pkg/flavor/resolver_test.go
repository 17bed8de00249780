package flavor

import (
	"context"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wowpub/cfrelease/pkg/curse"
)

type stubClassifier struct {
	calls int
	fail  bool
	table map[int]string
}

func (s *stubClassifier) Classify(ctx context.Context, iface int) (string, error) {
	s.calls++

	if s.fail {
		return "", errors.New("boom")
	}

	if v, ok := s.table[iface]; ok {
		return v, nil
	}

	return Classify(iface), nil
}

func gv(name string) curse.GameVersion {
	return curse.GameVersion{Name: name}
}

func TestResolver(t *testing.T) {
	ctx := context.Background()

	t.Run("leaves retail spanning builds untagged", func(t *testing.T) {
		r := NewResolver(nil)

		slug, err := r.Resolve(ctx, curse.File{
			SortableGameVersions: []curse.GameVersion{gv("11.0.2"), gv("1.15.6")},
		})
		require.NoError(t, err)

		assert.Equal(t, "", slug)
	})

	t.Run("uses the single flavor of a build", func(t *testing.T) {
		r := NewResolver(nil)

		slug, err := r.Resolve(ctx, curse.File{
			SortableGameVersions: []curse.GameVersion{gv("1.15.6"), gv("1.15.5")},
		})
		require.NoError(t, err)

		assert.Equal(t, Classic, slug)
	})

	t.Run("breaks multi flavor builds with the highest interface", func(t *testing.T) {
		r := NewResolver(nil)

		slug, err := r.Resolve(ctx, curse.File{
			SortableGameVersions: []curse.GameVersion{gv("2.5.4"), gv("4.4.0")},
		})
		require.NoError(t, err)

		assert.Equal(t, Cata, slug)
	})

	t.Run("keeps builds without versions untagged", func(t *testing.T) {
		r := NewResolver(nil)

		slug, err := r.Resolve(ctx, curse.File{})
		require.NoError(t, err)

		assert.Equal(t, "", slug)
	})

	t.Run("errors on malformed version names", func(t *testing.T) {
		r := NewResolver(nil)

		_, err := r.Resolve(ctx, curse.File{
			SortableGameVersions: []curse.GameVersion{gv("11")},
		})
		require.Error(t, err)
	})

	t.Run("prefers the external classifier verdict", func(t *testing.T) {
		ext := &stubClassifier{table: map[int]string{11506: "classic_era"}}

		r := NewResolver(ext)

		slug, err := r.Resolve(ctx, curse.File{
			SortableGameVersions: []curse.GameVersion{gv("1.15.6")},
		})
		require.NoError(t, err)

		assert.Equal(t, "classic_era", slug)
		assert.False(t, r.FellBack())
	})

	t.Run("abandons a failing classifier for the rest of the run", func(t *testing.T) {
		ext := &stubClassifier{fail: true}

		r := NewResolver(ext)
		r.L = hclog.NewNullLogger()

		slug, err := r.Resolve(ctx, curse.File{
			SortableGameVersions: []curse.GameVersion{gv("1.15.6")},
		})
		require.NoError(t, err)

		assert.Equal(t, Classic, slug)
		assert.True(t, r.FellBack())

		calls := ext.calls

		slug, err = r.Resolve(ctx, curse.File{
			SortableGameVersions: []curse.GameVersion{gv("4.4.0")},
		})
		require.NoError(t, err)

		assert.Equal(t, Cata, slug)
		assert.Equal(t, calls, ext.calls)
	})
}
