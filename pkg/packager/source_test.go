package packager

import (
	"context"
	"fmt"
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testScript = `#!/usr/bin/env bash
# trimmed down packager stand-in

toc_to_type() {
	local toc_version="$1"
	local game_type="retail"
	case $toc_version in
		11???) game_type="classic" ;;
		20???) game_type="bcc" ;;
	esac
	eval "$2=$game_type"
}

upload_file() {
	echo "not interesting here"
}
`

func TestSource(t *testing.T) {
	ctx := context.Background()

	topdir, err := ioutil.TempDir("", "packager")
	require.NoError(t, err)

	defer os.RemoveAll(topdir)

	t.Run("can extract a routine", func(t *testing.T) {
		path := filepath.Join(topdir, "extract.sh")
		require.NoError(t, ioutil.WriteFile(path, []byte(testScript), 0755))

		src := &Source{Path: path}

		body, err := src.extract("toc_to_type")
		require.NoError(t, err)

		assert.Contains(t, string(body), "toc_to_type() {")
		assert.Contains(t, string(body), `eval "$2=$game_type"`)
		assert.NotContains(t, string(body), "upload_file")
	})

	t.Run("reports a missing routine", func(t *testing.T) {
		path := filepath.Join(topdir, "missing.sh")
		require.NoError(t, ioutil.WriteFile(path, []byte("upload_file() {\n\ttrue\n}\n"), 0755))

		src := &Source{Path: path}

		_, err := src.extract("toc_to_type")
		require.Error(t, err)

		assert.Equal(t, ErrRoutineNotFound, errors.Cause(err))
	})

	t.Run("reports a truncated routine", func(t *testing.T) {
		path := filepath.Join(topdir, "truncated.sh")
		require.NoError(t, ioutil.WriteFile(path, []byte("toc_to_type() {\n\tlocal x=1\n"), 0755))

		src := &Source{Path: path}

		_, err := src.extract("toc_to_type")
		require.Error(t, err)

		assert.Equal(t, ErrRoutineNotFound, errors.Cause(err))
	})

	t.Run("reuses a fresh cached script", func(t *testing.T) {
		var hits int

		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hits++
			fmt.Fprint(w, testScript)
		}))
		defer ts.Close()

		path := filepath.Join(topdir, "fresh.sh")
		require.NoError(t, ioutil.WriteFile(path, []byte(testScript), 0755))

		src := &Source{URL: ts.URL + "/release.sh", Path: path}

		require.NoError(t, src.Ensure(ctx))

		assert.Equal(t, 0, hits)
	})

	t.Run("refetches a stale script", func(t *testing.T) {
		var hits int

		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hits++
			fmt.Fprint(w, testScript)
		}))
		defer ts.Close()

		path := filepath.Join(topdir, "stale.sh")
		require.NoError(t, ioutil.WriteFile(path, []byte("old contents"), 0755))

		old := time.Now().Add(-8 * 24 * time.Hour)
		require.NoError(t, os.Chtimes(path, old, old))

		src := &Source{URL: ts.URL + "/release.sh", Path: path}

		require.NoError(t, src.Ensure(ctx))

		assert.Equal(t, 1, hits)

		data, err := ioutil.ReadFile(path)
		require.NoError(t, err)

		assert.Contains(t, string(data), "toc_to_type")
	})

	t.Run("does not cache a failed fetch", func(t *testing.T) {
		var hits int

		good := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hits++
			fmt.Fprint(w, testScript)
		}))
		defer good.Close()

		bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer bad.Close()

		path := filepath.Join(topdir, "failed.sh")

		src := &Source{URL: bad.URL + "/release.sh", Path: path}
		require.Error(t, src.Ensure(ctx))

		_, err := os.Stat(path)
		assert.True(t, os.IsNotExist(err))

		src = &Source{URL: good.URL + "/release.sh", Path: path}
		require.NoError(t, src.Ensure(ctx))

		assert.Equal(t, 1, hits)

		data, err := ioutil.ReadFile(path)
		require.NoError(t, err)

		assert.Contains(t, string(data), "toc_to_type")
	})

	t.Run("refetches over an empty cached file", func(t *testing.T) {
		var hits int

		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hits++
			fmt.Fprint(w, testScript)
		}))
		defer ts.Close()

		path := filepath.Join(topdir, "empty.sh")
		require.NoError(t, ioutil.WriteFile(path, nil, 0755))

		src := &Source{URL: ts.URL + "/release.sh", Path: path}

		require.NoError(t, src.Ensure(ctx))

		assert.Equal(t, 1, hits)

		data, err := ioutil.ReadFile(path)
		require.NoError(t, err)

		assert.Contains(t, string(data), "toc_to_type")
	})

	t.Run("can invoke a routine", func(t *testing.T) {
		if _, err := exec.LookPath("bash"); err != nil {
			t.Skip("bash not available")
		}

		path := filepath.Join(topdir, "invoke.sh")
		require.NoError(t, ioutil.WriteFile(path, []byte(testScript), 0755))

		src := &Source{Path: path}

		routine, err := src.Routine("toc_to_type")
		require.NoError(t, err)

		out, err := routine.Invoke(ctx, "11506")
		require.NoError(t, err)
		assert.Equal(t, "classic", out)

		out, err = routine.Invoke(ctx, "110002")
		require.NoError(t, err)
		assert.Equal(t, "retail", out)
	})
}
