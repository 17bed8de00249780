package packager

import (
	"bufio"
	"bytes"
	"context"
	"os"
	"os/exec"
	"regexp"
	"strings"
	"time"

	"github.com/hashicorp/go-getter"
	"github.com/hashicorp/go-hclog"
	"github.com/pkg/errors"
)

const (
	// The BigWigs packager builds most WoW addon releases, and its
	// release.sh carries the authoritative interface-to-flavor mapping.
	DefaultScriptURL = "https://raw.githubusercontent.com/BigWigsMods/packager/master/release.sh"

	// DefaultRoutine maps a toc interface number to a game flavor.
	DefaultRoutine = "toc_to_type"

	DefaultMaxAge = 7 * 24 * time.Hour
)

var ErrRoutineNotFound = errors.New("routine not found in script")

// Source manages the locally cached copy of the packager script and
// lifts individual shell routines out of it.
type Source struct {
	L hclog.Logger

	URL    string
	Path   string
	MaxAge time.Duration
}

func (s *Source) logger() hclog.Logger {
	if s.L == nil {
		s.L = hclog.L()
	}

	return s.L
}

func (s *Source) url() string {
	if s.URL == "" {
		return DefaultScriptURL
	}

	return s.URL
}

func (s *Source) maxAge() time.Duration {
	if s.MaxAge == 0 {
		return DefaultMaxAge
	}

	return s.MaxAge
}

// Ensure puts a current copy of the script at Path, reusing the cached
// copy while it is fresh and non-empty. A failed download leaves
// nothing at Path.
func (s *Source) Ensure(ctx context.Context) error {
	if fi, err := os.Stat(s.Path); err == nil && fi.Size() > 0 {
		if time.Since(fi.ModTime()) < s.maxAge() {
			s.logger().Debug("using cached packager script", "path", s.Path)
			return nil
		}
	}

	s.logger().Info("downloading packager script", "url", s.url())

	cli := &getter.Client{
		Ctx:  ctx,
		Src:  s.url(),
		Dst:  s.Path,
		Mode: getter.ClientModeFile,
	}

	if err := cli.Get(); err != nil {
		// go-getter can truncate Dst before the transfer fails.
		os.Remove(s.Path)

		return errors.Wrapf(err, "fetching %s", s.url())
	}

	return os.Chmod(s.Path, 0755)
}

// Routine extracts the named shell function and binds it to a bash
// from PATH. Both a missing interpreter and a failed extraction are
// reported without touching the cached script.
func (s *Source) Routine(name string) (*Routine, error) {
	bash, err := exec.LookPath("bash")
	if err != nil {
		return nil, errors.Wrapf(err, "locating interpreter for %q", name)
	}

	body, err := s.extract(name)
	if err != nil {
		return nil, err
	}

	return &Routine{Name: name, body: body, bash: bash}, nil
}

// extract scans for the opening line of the function and keeps lines
// until its braces balance out. Brace counting is crude but shell
// parsing would be overkill for what the packager script contains.
func (s *Source) extract(name string) ([]byte, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, err
	}

	defer f.Close()

	open := regexp.MustCompile(`^\s*` + regexp.QuoteMeta(name) + `\s*\(\)\s*\{`)

	var (
		body    bytes.Buffer
		capture bool
		braces  int
	)

	sc := bufio.NewScanner(f)

	for sc.Scan() {
		line := sc.Text()

		if !capture {
			if open.MatchString(line) {
				capture = true
				braces++
				body.WriteString(line)
				body.WriteByte('\n')
			}

			continue
		}

		braces += strings.Count(line, "{")
		braces -= strings.Count(line, "}")
		body.WriteString(line)
		body.WriteByte('\n')

		if braces == 0 {
			return body.Bytes(), nil
		}
	}

	if err := sc.Err(); err != nil {
		return nil, err
	}

	return nil, errors.Wrapf(ErrRoutineNotFound, "extracting %q from %s", name, s.Path)
}
