package github

import (
	"net/url"
	"regexp"
	"strings"

	git "github.com/go-git/go-git/v5"
	"github.com/hashicorp/go-hclog"
	"github.com/pkg/errors"
)

// RepoDetect maps a working directory to the owner/name pair of its
// origin remote.
type RepoDetect struct {
	L hclog.Logger

	known map[string]string
}

func (r *RepoDetect) logger() hclog.Logger {
	if r.L == nil {
		r.L = hclog.L()
	}

	return r.L
}

func (r *RepoDetect) Detect(path string) (string, error) {
	if r.known == nil {
		r.known = map[string]string{}
	}

	if id, ok := r.known[path]; ok {
		return id, nil
	}

	repo, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{
		DetectDotGit: true,
	})
	if err != nil {
		return "", errors.Wrapf(err, "opening git repository at %s", path)
	}

	remote, err := repo.Remote("origin")
	if err != nil {
		return "", errors.Wrapf(err, "reading origin remote at %s", path)
	}

	urls := remote.Config().URLs
	if len(urls) == 0 {
		return "", errors.Errorf("origin remote has no url at %s", path)
	}

	id, err := remoteRepoID(urls[0])
	if err != nil {
		return "", err
	}

	r.logger().Debug("detected repository", "path", path, "repository", id)

	r.known[path] = id

	return id, nil
}

var scpSyntaxRe = regexp.MustCompile(`^([a-zA-Z0-9_]+)@([a-zA-Z0-9._-]+):(.*)$`)

// remoteRepoID reduces a remote url, ssh or https, to its owner/name
// pair.
func remoteRepoID(remote string) (string, error) {
	var id string

	if m := scpSyntaxRe.FindStringSubmatch(remote); m != nil {
		id = m[3]
	} else {
		u, err := url.Parse(remote)
		if err != nil {
			return "", errors.Wrapf(err, "parsing remote url %s", remote)
		}

		id = strings.TrimPrefix(u.Path, "/")
	}

	return strings.TrimSuffix(id, ".git"), nil
}
