package ops

import "github.com/pkg/errors"

// track pins a stack trace to errors coming out of os and io calls,
// which otherwise carry no location.
func track(err error) error {
	return errors.WithStack(err)
}
