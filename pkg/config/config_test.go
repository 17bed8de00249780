package config

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setEnv(t *testing.T, key, val string) {
	prev, had := os.LookupEnv(key)

	if val == "" {
		require.NoError(t, os.Unsetenv(key))
	} else {
		require.NoError(t, os.Setenv(key, val))
	}

	t.Cleanup(func() {
		if had {
			os.Setenv(key, prev)
		} else {
			os.Unsetenv(key)
		}
	})
}

func TestLoad(t *testing.T) {
	t.Run("reads the environment", func(t *testing.T) {
		dir, err := ioutil.TempDir("", "config")
		require.NoError(t, err)

		defer os.RemoveAll(dir)

		cache := filepath.Join(dir, "cache")

		setEnv(t, EnvAddonID, "32")
		setEnv(t, EnvCFToken, "sekrit")
		setEnv(t, EnvGHToken, "ghtoken")
		setEnv(t, EnvRepository, "owner/addon")
		setEnv(t, EnvCacheDir, cache)

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, 32, cfg.AddonID)
		assert.Equal(t, "sekrit", cfg.CFToken)
		assert.Equal(t, "ghtoken", cfg.GHToken)
		assert.Equal(t, "owner/addon", cfg.Repository)
		assert.Equal(t, cache, cfg.CacheDir)
		assert.Equal(t, ".", cfg.WorkDir)

		fi, err := os.Stat(cache)
		require.NoError(t, err)
		assert.True(t, fi.IsDir())
	})

	t.Run("requires an addon id", func(t *testing.T) {
		setEnv(t, EnvAddonID, "")
		setEnv(t, EnvCFToken, "sekrit")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), EnvAddonID)
	})

	t.Run("rejects a malformed addon id", func(t *testing.T) {
		setEnv(t, EnvAddonID, "not-a-number")
		setEnv(t, EnvCFToken, "sekrit")

		_, err := Load()
		require.Error(t, err)
	})

	t.Run("requires a curseforge token", func(t *testing.T) {
		setEnv(t, EnvAddonID, "32")
		setEnv(t, EnvCFToken, "")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), EnvCFToken)
	})
}

func TestSplitRepository(t *testing.T) {
	t.Run("splits at the first slash", func(t *testing.T) {
		owner, name, err := SplitRepository("owner/addon")
		require.NoError(t, err)

		assert.Equal(t, "owner", owner)
		assert.Equal(t, "addon", name)
	})

	t.Run("rejects a bare name", func(t *testing.T) {
		_, _, err := SplitRepository("addon")
		require.Error(t, err)
	})
}

func TestScriptPath(t *testing.T) {
	cfg := &Config{CacheDir: "/tmp/cache"}

	assert.Equal(t, filepath.Join("/tmp/cache", "release.sh"), cfg.ScriptPath())
}
