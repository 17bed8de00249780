package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/davecgh/go-spew/spew"
	"github.com/hashicorp/go-hclog"
	"github.com/mitchellh/cli"
	"github.com/pkg/errors"

	"github.com/wowpub/cfrelease/pkg/cmd"
	"github.com/wowpub/cfrelease/pkg/config"
	"github.com/wowpub/cfrelease/pkg/curse"
	"github.com/wowpub/cfrelease/pkg/flavor"
	"github.com/wowpub/cfrelease/pkg/github"
	"github.com/wowpub/cfrelease/pkg/ops"
	"github.com/wowpub/cfrelease/pkg/packager"
	"github.com/wowpub/cfrelease/pkg/status"
)

func main() {
	c := cli.NewCLI("cfrelease", config.Version)
	c.Args = os.Args[1:]
	c.Commands = map[string]cli.CommandFactory{
		"release": func() (cli.Command, error) {
			return cmd.New(
				"release",
				"mirror the latest curseforge builds into a github release",
				releaseF,
			), nil
		},
		"plan": func() (cli.Command, error) {
			return cmd.New(
				"plan",
				"show what a release run would publish",
				planF,
			), nil
		},
		"classify": func() (cli.Command, error) {
			return cmd.New(
				"classify",
				"debug flavor classification",
				classifyF,
			), nil
		},
		"env": func() (cli.Command, error) {
			return cmd.New(
				"env",
				"output resolved configuration",
				envF,
			), nil
		},
	}

	exitStatus, err := c.Run()
	if err != nil {
		log.Println(err)
	}

	os.Exit(exitStatus)
}

func logger(debug, trace bool) hclog.Logger {
	level := hclog.Info

	if debug {
		level = hclog.Debug
	}

	if trace {
		level = hclog.Trace
	}

	return hclog.New(&hclog.LoggerOptions{
		Name:  "cfrelease",
		Level: level,
	})
}

func releaseF(ctx context.Context, opts struct {
	Dir    string `short:"d" long:"dir" description:"stage archives in the given directory"`
	DryRun bool   `long:"dry-run" description:"stage everything but publish nothing"`
	Debug  bool   `long:"debug" description:"log in debug mode"`
	Trace  bool   `long:"trace" description:"log in trace mode"`
}) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	if opts.Dir != "" {
		err = os.MkdirAll(opts.Dir, 0755)
		if err != nil {
			return err
		}

		cfg.WorkDir = opts.Dir
	}

	op := &ops.Release{
		Config: cfg,
		DryRun: opts.DryRun,
	}
	op.SetLogger(logger(opts.Debug, opts.Trace))

	ctx = ops.WithUI(ctx, &ops.UI{P: &status.Printer{}})

	return op.Run(ctx)
}

func planF(ctx context.Context, opts struct {
	Debug bool `long:"debug" description:"log in debug mode"`
}) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	op := &ops.Plan{Config: cfg}
	op.SetLogger(logger(opts.Debug, false))

	res, err := op.Resolve(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("Releasing %s\n\n", res.Mod.Name)

	return res.Explain(os.Stdout)
}

func classifyF(ctx context.Context, opts struct {
	Mod   bool `short:"m" long:"mod" description:"dump the mod payload instead"`
	Trace bool `long:"trace" description:"log in trace mode"`

	Pos struct {
		Interface int `positional-arg-name:"interface"`
	} `positional-args:"yes"`
}) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	level := hclog.Debug

	if opts.Trace {
		level = hclog.Trace
	}

	L := hclog.New(&hclog.LoggerOptions{
		Name:  "cfrelease-debug",
		Level: level,
	})

	if opts.Mod {
		cc := curse.NewClient(cfg.CFToken, config.UserAgent())

		mod, err := cc.Mod(ctx, cfg.AddonID)
		if err != nil {
			return err
		}

		spew.Dump(mod)

		return nil
	}

	if opts.Pos.Interface == 0 {
		return errors.New("an interface number is required")
	}

	fmt.Printf("builtin: %s\n", flavor.Classify(opts.Pos.Interface))

	src := &packager.Source{L: L, Path: cfg.ScriptPath()}

	err = src.Ensure(ctx)
	if err != nil {
		return err
	}

	routine, err := src.Routine(packager.DefaultRoutine)
	if err != nil {
		return err
	}

	out, err := routine.Invoke(ctx, strconv.Itoa(opts.Pos.Interface))
	if err != nil {
		return err
	}

	fmt.Printf("script: %s\n", out)

	return nil
}

func envF(ctx context.Context, opts struct{}) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	repo := cfg.Repository
	if repo == "" {
		var rd github.RepoDetect

		if id, err := rd.Detect(cfg.WorkDir); err == nil {
			repo = id + " (detected)"
		}
	}

	fmt.Printf("Addon ID: %d\n", cfg.AddonID)
	fmt.Printf("Repository: %s\n", repo)
	fmt.Printf("Cache Dir: %s\n", cfg.CacheDir)
	fmt.Printf("Packager Script: %s\n", cfg.ScriptPath())
	fmt.Printf("User Agent: %s\n", config.UserAgent())

	return nil
}
