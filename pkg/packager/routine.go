package packager

import (
	"bytes"
	"context"
	"fmt"
	"io/ioutil"
	"os"
	"os/exec"
	"strings"

	"github.com/pkg/errors"
)

// Routine is a shell function lifted out of the packager script,
// runnable on its own. The packager's functions put their result into
// the variable named by the trailing argument.
type Routine struct {
	Name string

	body []byte
	bash string
}

// Invoke runs the routine with a single argument in a throwaway
// harness script and returns the trimmed result.
func (r *Routine) Invoke(ctx context.Context, arg string) (string, error) {
	f, err := ioutil.TempFile("", "cfrelease-*.sh")
	if err != nil {
		return "", err
	}

	path := f.Name()
	defer os.Remove(path)

	var buf bytes.Buffer
	buf.WriteString("#!/usr/bin/env bash\n")
	buf.Write(r.body)
	fmt.Fprintf(&buf, "%s \"%s\" result\n", r.Name, arg)
	buf.WriteString("echo \"$result\"\n")

	if _, err := f.Write(buf.Bytes()); err != nil {
		f.Close()
		return "", err
	}

	if err := f.Close(); err != nil {
		return "", err
	}

	if err := os.Chmod(path, 0755); err != nil {
		return "", err
	}

	cmd := exec.CommandContext(ctx, r.bash, path)

	out, err := cmd.Output()
	if err != nil {
		return "", errors.Wrapf(err, "running %s", r.Name)
	}

	return strings.TrimSpace(string(out)), nil
}
