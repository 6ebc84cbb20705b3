// Package main provides the CLI entry point for molt.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/ndisidore/molt/internal/render"
	"github.com/ndisidore/molt/pkg/document"
	"github.com/ndisidore/molt/pkg/slogctx"
	"github.com/ndisidore/molt/pkg/watch"
)

// errMissingFile indicates a command invoked without its file argument.
var errMissingFile = errors.New("missing <file> argument")

// app bundles dependencies so CLI action handlers become testable methods.
type app struct {
	parse  func(path string) (*document.Node, error)
	stdout io.Writer
	isTTY  bool
	color  bool
}

func main() {
	a := &app{
		parse:  document.ParseFile,
		stdout: os.Stdout,
		isTTY:  term.IsTerminal(int(os.Stdout.Fd())) && os.Getenv("CI") == "",
	}

	cmd := &cli.Command{
		Name:  "molt",
		Usage: "inspect and live-reload typed configuration files",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "format",
				Usage:   "output format (auto, pretty, json, text)",
				Value:   "auto",
				Sources: cli.EnvVars("MOLT_FORMAT"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "log level (debug, info, warn, error)",
				Value:   "info",
				Sources: cli.EnvVars("MOLT_LOG_LEVEL"),
			},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			format := cmd.String("format")
			if format == "auto" {
				if a.isTTY {
					format = "pretty"
				} else {
					format = "text"
				}
			}
			a.color = format == "pretty"

			var level slog.Level
			if err := level.UnmarshalText([]byte(cmd.String("log-level"))); err != nil {
				return ctx, fmt.Errorf("invalid log level %q: %w", cmd.String("log-level"), err)
			}
			logger, err := render.NewLogger(os.Stderr, format, level)
			if err != nil {
				return ctx, fmt.Errorf("initializing logger: %w", err)
			}
			slog.SetDefault(logger)
			return slogctx.ContextWithLogger(ctx, logger), nil
		},
		Commands: []*cli.Command{
			{
				Name:      "inspect",
				Usage:     "parse a config file and print its document tree",
				ArgsUsage: "<file>",
				Action:    a.inspectAction,
			},
			{
				Name:      "check",
				Usage:     "parse a config file and report structural errors",
				ArgsUsage: "<file>",
				Action:    a.checkAction,
			},
			{
				Name:      "watch",
				Usage:     "watch a config file and report every reload",
				ArgsUsage: "<file>",
				Action:    a.watchAction,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("fatal", slog.Any("error", err))
		os.Exit(1)
	}
}

func (a *app) inspectAction(_ context.Context, cmd *cli.Command) error {
	path := cmd.Args().First()
	if path == "" {
		return errMissingFile
	}

	node, err := a.parse(path)
	if err != nil {
		return err
	}

	if _, err := fmt.Fprintf(a.stdout, "%s %s\n",
		render.Header(path, a.color), render.Summary(node)); err != nil {
		return err
	}
	return render.Tree(a.stdout, node, a.color)
}

func (a *app) checkAction(_ context.Context, cmd *cli.Command) error {
	path := cmd.Args().First()
	if path == "" {
		return errMissingFile
	}

	node, err := a.parse(path)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintf(a.stdout, "%s: ok (%s)\n", path, render.Summary(node))
	return err
}

func (a *app) watchAction(ctx context.Context, cmd *cli.Command) error {
	path := cmd.Args().First()
	if path == "" {
		return errMissingFile
	}

	w, err := watch.New(watch.Config{
		Path: path,
		Reload: func(ctx context.Context) error {
			node, err := a.parse(path)
			if err != nil {
				return err
			}
			slogctx.FromContext(ctx).Info("parsed", "shape", render.Summary(node))
			return nil
		},
	})
	if err != nil {
		return err
	}
	return w.Run(ctx)
}
