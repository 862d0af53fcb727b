// Package main is the entry point for the tedit command.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"slices"
	"syscall"

	"github.com/dshills/tedit/internal/app"
	"github.com/dshills/tedit/internal/config"
	"github.com/dshills/tedit/internal/syntax/grammar"
	"github.com/dshills/tedit/internal/syntax/scan"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

type globalFlags struct {
	configPath string
	logLevel   string
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("tedit", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var g globalFlags
	var showVersion bool
	fs.StringVar(&g.configPath, "config", config.DefaultPath(), "Path to configuration file")
	fs.StringVar(&g.configPath, "c", config.DefaultPath(), "Path to configuration file (shorthand)")
	fs.StringVar(&g.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	fs.BoolVar(&showVersion, "version", false, "Show version information")
	fs.BoolVar(&showVersion, "v", false, "Show version information (shorthand)")

	fs.Usage = func() {
		fmt.Fprintf(stderr, "tedit - text editor core tools\n\n")
		fmt.Fprintf(stderr, "Usage: tedit [options] <command> [arguments]\n\n")
		fmt.Fprintf(stderr, "Commands:\n")
		fmt.Fprintf(stderr, "  tokenize [-mode name] [-all] file...   Print the tokens of each file\n")
		fmt.Fprintf(stderr, "  parse [-mode name] file...             Print the parse tree of each file\n")
		fmt.Fprintf(stderr, "  modes                                  List the known modes\n")
		fmt.Fprintf(stderr, "  watch file...                          Reload files as they change\n\n")
		fmt.Fprintf(stderr, "Options:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	if showVersion {
		fmt.Fprintf(stdout, "tedit %s\n", version)
		fmt.Fprintf(stdout, "Commit: %s\n", commit)
		fmt.Fprintf(stdout, "Built: %s\n", date)
		return 0
	}

	switch g.logLevel {
	case "", "debug", "info", "warn", "error":
	default:
		fmt.Fprintf(stderr, "Error: invalid log level %q (must be debug, info, warn, or error)\n", g.logLevel)
		return 2
	}

	rest := fs.Args()
	if len(rest) == 0 {
		fs.Usage()
		return 2
	}

	var err error
	switch cmd, cmdArgs := rest[0], rest[1:]; cmd {
	case "tokenize":
		err = tokenizeCmd(g, cmdArgs, stdout, stderr)
	case "parse":
		err = parseCmd(g, cmdArgs, stdout, stderr)
	case "modes":
		err = modesCmd(g, stdout, stderr)
	case "watch":
		err = watchCmd(g, cmdArgs, stderr)
	default:
		fmt.Fprintf(stderr, "Error: unknown command %q\n", cmd)
		fs.Usage()
		return 2
	}

	var usage usageError
	switch {
	case err == nil:
		return 0
	case errors.As(err, &usage):
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	default:
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
}

type usageError struct{ msg string }

func (e usageError) Error() string { return e.msg }

// newApp starts an application that logs to stderr. Files are not watched
// unless watch is set.
func newApp(g globalFlags, stderr io.Writer, watch bool, files ...string) (*app.Application, error) {
	return app.New(app.Options{
		ConfigPath: g.configPath,
		LogLevel:   g.logLevel,
		LogOutput:  stderr,
		Files:      files,
		ReadOnly:   !watch,
		NoWatch:    !watch,
	})
}

// openWithMode opens the files, switching them to modeName when set.
func openWithMode(a *app.Application, modeName string, files []string) ([]*app.Document, error) {
	docs := make([]*app.Document, 0, len(files))
	for _, f := range files {
		doc, err := a.Open(f)
		if err != nil {
			return nil, err
		}
		if modeName != "" {
			if err := a.SetMode(doc.ID(), modeName); err != nil {
				return nil, err
			}
		}
		if doc.EditMode() == nil {
			return nil, fmt.Errorf("%s: no mode", f)
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

func tokenizeCmd(g globalFlags, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("tokenize", flag.ContinueOnError)
	fs.SetOutput(stderr)
	modeName := fs.String("mode", "", "Mode to use instead of inferring one")
	all := fs.Bool("all", false, "Include tokens the mode skips")
	if err := fs.Parse(args); err != nil {
		return usageError{err.Error()}
	}
	if fs.NArg() == 0 {
		return usageError{"tokenize: no files"}
	}

	a, err := newApp(g, stderr, false)
	if err != nil {
		return err
	}
	defer a.Shutdown()

	docs, err := openWithMode(a, *modeName, fs.Args())
	if err != nil {
		return err
	}
	for _, doc := range docs {
		m := doc.EditMode()
		if len(docs) > 1 {
			fmt.Fprintf(stdout, "==> %s (%s) <==\n", doc.Name(), m.Name)
		}
		sc := scan.NewBuffer(doc.Snapshot())
		for _, hl := range doc.Highlights() {
			if !*all && slices.Contains(m.Skip, hl.Token.Kind) {
				continue
			}
			fmt.Fprintf(stdout, "%d:%d\t%s\t%q\n",
				hl.Span.Start.Line+1, hl.Span.Start.Column+1,
				m.KindName(hl.Token.Kind), sc.Text(hl.Token.Start, hl.Token.Stop()))
		}
	}
	return nil
}

func parseCmd(g globalFlags, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("parse", flag.ContinueOnError)
	fs.SetOutput(stderr)
	modeName := fs.String("mode", "", "Mode to use instead of inferring one")
	if err := fs.Parse(args); err != nil {
		return usageError{err.Error()}
	}
	if fs.NArg() == 0 {
		return usageError{"parse: no files"}
	}

	a, err := newApp(g, stderr, false)
	if err != nil {
		return err
	}
	defer a.Shutdown()

	docs, err := openWithMode(a, *modeName, fs.Args())
	if err != nil {
		return err
	}
	var errs []error
	for _, doc := range docs {
		m := doc.EditMode()
		snap := doc.Snapshot()
		tree, root, err := m.Parse(snap)
		var perr *grammar.ParseError
		if errors.As(err, &perr) {
			p := scan.NewBuffer(snap).PointAt(perr.Offset)
			errs = append(errs, fmt.Errorf("%s:%d:%d: %w", doc.Name(), p.Line+1, p.Column+1, err))
			continue
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", doc.Name(), err))
			continue
		}
		if len(docs) > 1 {
			fmt.Fprintf(stdout, "==> %s (%s) <==\n", doc.Name(), m.Name)
		}
		fmt.Fprint(stdout, tree.Format(root, m.KindName))
	}
	return errors.Join(errs...)
}

func modesCmd(g globalFlags, stdout, stderr io.Writer) error {
	a, err := newApp(g, stderr, false)
	if err != nil {
		return err
	}
	defer a.Shutdown()

	for _, name := range a.Modes().Names() {
		m, err := a.Modes().Lookup(name)
		if err != nil {
			return err
		}
		kind := "tokens"
		if m.Grammar != nil {
			kind = "grammar"
		}
		fmt.Fprintf(stdout, "%-8s %-8s %v\n", m.Name, kind, m.Files)
	}
	return nil
}

func watchCmd(g globalFlags, args []string, stderr io.Writer) error {
	if len(args) == 0 {
		return usageError{"watch: no files"}
	}
	a, err := newApp(g, stderr, true, args...)
	if err != nil {
		return err
	}
	defer a.Shutdown()
	if !a.Watching() {
		return errors.New("watching is disabled in the configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	a.Logger().Info("watching %d file(s); interrupt to stop", len(args))
	return a.Run(ctx)
}
