// Package ops holds the operations of the release pipeline: fetching
// builds from CurseForge, staging them with their manifest, and
// publishing the set as one tagged GitHub release. Each op is a struct
// with exported configuration and a Run-style entry point.
package ops

import "github.com/hashicorp/go-hclog"

// common supplies the logger plumbing every op embeds.
type common struct {
	logger hclog.Logger
}

func (c *common) L() hclog.Logger {
	if c.logger != nil {
		return c.logger
	}

	c.logger = hclog.L()

	return c.logger
}

func (c *common) SetLogger(logger hclog.Logger) {
	c.logger = logger
}
