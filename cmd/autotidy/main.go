// Command autotidy walks the diagnostics of a clang-tidy run interactively,
// previewing each suggested fix as a diff and applying, suppressing or
// ignoring it one keypress at a time.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"runtime/debug"
	"strings"

	"github.com/sasq64/autotidy/cmdrun"
	"github.com/sasq64/autotidy/diffview"
	"github.com/sasq64/autotidy/fixes"
	"github.com/sasq64/autotidy/replacer"
	"github.com/sasq64/autotidy/termkey"
	"github.com/sasq64/autotidy/tidyconf"
	"github.com/sasq64/autotidy/tidylog"
	"github.com/sasq64/autotidy/tracelog"
	"github.com/sasq64/autotidy/triage"
)

func main() {
	err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v: %v\n", os.Args[0], err)
		os.Exit(1)
	}
}

func run() error {
	var (
		logPath      string
		sourcePath   string
		confPath     string
		diffCommand  string
		fixesPath    string
		headerFilter string
		headerStrip  int
		verbose      bool
		version      bool
	)
	flag.StringVar(&logPath, "l", "tidy.log", "diagnostics log file")
	flag.StringVar(&logPath, "log", "tidy.log", "diagnostics log file")
	flag.StringVar(&sourcePath, "s", "", "source file to lint before the walk")
	flag.StringVar(&sourcePath, "source", "", "source file to lint before the walk")
	flag.StringVar(&confPath, "c", ".clang-tidy", "clang-tidy config file")
	flag.StringVar(&confPath, "clang-tidy-config", ".clang-tidy", "clang-tidy config file")
	flag.StringVar(&diffCommand, "d", "", "external diff command template with two %s placeholders")
	flag.StringVar(&diffCommand, "diff-command", "", "external diff command template with two %s placeholders")
	flag.StringVar(&fixesPath, "f", "fixes.yaml", "fixes file from --export-fixes")
	flag.StringVar(&fixesPath, "fixes-file", "fixes.yaml", "fixes file from --export-fixes")
	flag.StringVar(&headerFilter, "F", "", "header filter regex passed to clang-tidy")
	flag.StringVar(&headerFilter, "header-filter", "", "header filter regex passed to clang-tidy")
	flag.IntVar(&headerStrip, "H", 0, "leading path components stripped from displayed names")
	flag.IntVar(&headerStrip, "header-strip", 0, "leading path components stripped from displayed names")
	flag.BoolVar(&verbose, "verbose", false, "log to stdout instead of a temp file")
	flag.BoolVar(&version, "version", false, "print the version and exit")
	flag.Parse()

	if version {
		if bi, ok := debug.ReadBuildInfo(); ok {
			fmt.Printf("%s@%v\n", bi.Path, bi.Main.Version)
		}
		return nil
	}

	var slogHandler slog.Handler
	if verbose {
		slogHandler = tracelog.AttrsWrap(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	} else {
		logFile, err := os.CreateTemp("", "autotidy-log-*")
		if err != nil {
			return fmt.Errorf("cannot create log file: %w", err)
		}
		defer logFile.Close()
		slogHandler = tracelog.AttrsWrap(slog.NewJSONHandler(logFile, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
	slog.SetDefault(slog.New(slogHandler))

	ctx := tracelog.ContextWithAttr(context.Background(), slog.String("log", logPath))

	if sourcePath != "" {
		err := cmdrun.RunClangTidy(ctx, sourcePath, headerFilter, fixesPath, logPath)
		if errors.Is(err, cmdrun.ErrLinterMissing) {
			return err
		}
		if err != nil {
			return fmt.Errorf("linting %s: %w", sourcePath, err)
		}
	}

	conf, err := tidyconf.Load(confPath)
	if err != nil {
		return fmt.Errorf("reading %s: %w", confPath, err)
	}

	diags, err := tidylog.ParseFile(logPath)
	if err != nil {
		return fmt.Errorf("reading %s: %w", logPath, err)
	}
	slog.InfoContext(ctx, "parsed log", slog.Int("diagnostics", len(diags)))

	if _, err := os.Stat(fixesPath); err == nil {
		if err := fixes.AttachFile(diags, fixesPath); err != nil {
			return err
		}
	}

	cwd, err := os.Getwd()
	if err != nil {
		return err
	}
	if !strings.HasSuffix(cwd, "/") {
		cwd += "/"
	}

	keys, err := termkey.New()
	if err != nil {
		return err
	}

	var diff triage.DiffRunner
	if diffCommand != "" {
		diff = &cmdrun.Diff{Template: diffCommand, Stdout: os.Stdout, Stderr: os.Stderr}
	} else {
		diff = &diffview.Viewer{Out: os.Stdout}
	}

	rep := replacer.New()
	defer rep.Close()

	sess := triage.NewSession(conf, confPath)
	sess.CurrentDir = cwd
	sess.HeaderStrip = headerStrip

	ctrl := &triage.Controller{
		Session:  sess,
		Replacer: rep,
		Keys:     keys,
		Diff:     diff,
		Pager:    &cmdrun.Pager{},
		Out:      os.Stdout,
	}
	ctrl.Walk(ctx, diags)
	ctrl.Summary(rep.SizeChange())
	return nil
}
