// Package cmd adapts option-struct functions to the cli.Command
// interface, so each subcommand is a plain function taking a context
// and its parsed flags.
package cmd

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/signal"
	"reflect"

	"github.com/jessevdk/go-flags"
	"github.com/wowpub/cfrelease/pkg/progress"
	"golang.org/x/sys/unix"
)

type Cmd struct {
	name, syn string

	f    reflect.Value
	opts reflect.Value

	parser *flags.Parser
}

// New wraps f, which must have the shape func(context.Context, O) error
// for an option struct type O carrying go-flags tags.
func New(name, syn string, f interface{}) *Cmd {
	rv := reflect.ValueOf(f)
	rt := rv.Type()

	if rt.Kind() != reflect.Func || rt.NumIn() != 2 || rt.NumOut() != 1 {
		panic("command function must be func(context.Context, opts) error")
	}

	in := rt.In(1)
	if in.Kind() != reflect.Struct {
		panic("command options must be a struct")
	}

	sv := reflect.New(in)

	parser := flags.NewNamedParser(name, flags.Default)
	parser.ShortDescription = syn
	parser.LongDescription = syn

	if _, err := parser.AddGroup("Application Options", "", sv.Interface()); err != nil {
		panic(err)
	}

	return &Cmd{
		name:   name,
		syn:    syn,
		f:      rv,
		opts:   sv,
		parser: parser,
	}
}

func (c *Cmd) Help() string {
	var buf bytes.Buffer
	c.parser.WriteHelp(&buf)
	return buf.String()
}

func (c *Cmd) Synopsis() string {
	return c.syn
}

// Run parses args, opens the run context with signal cancellation and
// progress reporting, and invokes the wrapped function. Asking for
// help is not a failure.
func (c *Cmd) Run(args []string) int {
	if _, err := c.parser.ParseArgs(args); err != nil {
		if fe, ok := err.(*flags.Error); ok && fe.Type == flags.ErrHelp {
			return 0
		}

		return 1
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cancelOnSignal(cancel, os.Interrupt, unix.SIGQUIT, unix.SIGTERM)

	ctx = progress.Open(ctx, os.Stderr)

	rets := c.f.Call([]reflect.Value{reflect.ValueOf(ctx), c.opts.Elem()})

	if err, ok := rets[0].Interface().(error); ok && err != nil {
		fmt.Fprintf(os.Stderr, "! Error: %+v\n", err)
		return 1
	}

	return 0
}

func cancelOnSignal(cancel func(), signals ...os.Signal) {
	ch := make(chan os.Signal, 2)
	signal.Notify(ch, signals...)

	go func() {
		for range ch {
			cancel()
		}
	}()
}
