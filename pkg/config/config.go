package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/mitchellh/go-homedir"
	"github.com/pkg/errors"
	"github.com/shirou/gopsutil/v3/host"
)

const Version = "0.1.0"

const (
	DefaultCacheDir = "~/.cache/cfrelease"

	EnvAddonID    = "ADDON_ID"
	EnvCFToken    = "CF_API_TOKEN"
	EnvGHToken    = "GH_TOKEN"
	EnvRepository = "GITHUB_REPOSITORY"
	EnvCacheDir   = "CFRELEASE_CACHE_DIR"
)

type Config struct {
	// AddonID is the CurseForge mod to mirror.
	AddonID int

	CFToken string
	GHToken string

	// Repository is the owner/name pair releases are published to. Left
	// empty it gets detected from the git origin of WorkDir at publish
	// time.
	Repository string

	// CacheDir holds long-lived downloads such as the packager script.
	CacheDir string

	// WorkDir is where archives and release.json are staged.
	WorkDir string
}

// Load reads configuration from the environment, honoring a .env file
// in the current directory when one exists.
func Load() (*Config, error) {
	_ = godotenv.Load()

	id := os.Getenv(EnvAddonID)
	if id == "" {
		return nil, errors.Errorf("env var %s is required", EnvAddonID)
	}

	addonID, err := strconv.Atoi(id)
	if err != nil {
		return nil, errors.Wrapf(err, "parsing %s", EnvAddonID)
	}

	token := os.Getenv(EnvCFToken)
	if token == "" {
		return nil, errors.Errorf("env var %s is required", EnvCFToken)
	}

	cacheDir := os.Getenv(EnvCacheDir)
	if cacheDir == "" {
		cacheDir = DefaultCacheDir
	}

	cacheDir, err = homedir.Expand(cacheDir)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		AddonID:    addonID,
		CFToken:    token,
		GHToken:    os.Getenv(EnvGHToken),
		Repository: os.Getenv(EnvRepository),
		CacheDir:   cacheDir,
		WorkDir:    ".",
	}

	return ensureDirs(cfg)
}

func ensureDirs(cfg *Config) (*Config, error) {
	fi, err := os.Stat(cfg.CacheDir)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, err
		}

		err = os.MkdirAll(cfg.CacheDir, 0755)
		if err != nil {
			return nil, err
		}
	} else if !fi.IsDir() {
		return nil, fmt.Errorf("path is not a directory: %s", cfg.CacheDir)
	}

	return cfg, nil
}

// ScriptPath is where the cached packager script lives.
func (c *Config) ScriptPath() string {
	return filepath.Join(c.CacheDir, "release.sh")
}

// SplitRepository breaks an owner/name pair apart.
func SplitRepository(repo string) (string, string, error) {
	idx := strings.IndexByte(repo, '/')
	if idx == -1 {
		return "", "", errors.Errorf("malformed repository, want owner/name: %q", repo)
	}

	return repo[:idx], repo[idx+1:], nil
}

func Platform() (string, string, string) {
	osName, _, osVersion, err := host.PlatformInformation()
	if err != nil {
		panic(err)
	}

	arch, err := host.KernelArch()
	if err != nil {
		panic(err)
	}

	return osName, osVersion, arch
}

// UserAgent identifies this tool to the CurseForge and GitHub APIs.
func UserAgent() string {
	osName, osVersion, arch := Platform()

	return fmt.Sprintf("cfrelease/%s (%s %s; %s)", Version, osName, osVersion, arch)
}
