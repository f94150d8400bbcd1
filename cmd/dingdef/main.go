// Command dingdef is the CLI front-end for the install and search
// pipelines, grounded on the teacher's cmd/mysqldef/mysqldef.go
// (flags-tagged option structs parsed with go-flags, help/version
// handling, log.Fatal-on-parse-error).
package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/jessevdk/go-flags"
	"github.com/k0kubun/pp/v3"

	"github.com/k0kubun/dingdef/internal/config"
	"github.com/k0kubun/dingdef/internal/dictlog"
	"github.com/k0kubun/dingdef/internal/installer"
	"github.com/k0kubun/dingdef/internal/keyword"
	"github.com/k0kubun/dingdef/internal/lock"
	"github.com/k0kubun/dingdef/internal/query"
	"github.com/k0kubun/dingdef/internal/render"
	"github.com/k0kubun/dingdef/internal/text"
)

var version = "0.0.1"

type installOpts struct {
	Root    string `long:"root" description:"Dictionary data directory" value-name:"dir"`
	Config  string `long:"config" description:"YAML config file" value-name:"file"`
	Trace   bool   `long:"trace" description:"Enable verbose trace logging"`
	Help    bool   `long:"help" description:"Show this help"`
	Version bool   `long:"version" description:"Show this version"`
}

type searchOpts struct {
	Root    string `long:"root" description:"Dictionary data directory" value-name:"dir"`
	Config  string `long:"config" description:"YAML config file" value-name:"file"`
	Limit   int    `long:"limit" description:"Maximum number of results" value-name:"n"`
	Scan    bool   `long:"scan" description:"Treat arguments as free-form text and extract lookupable words (punctuation-aware), instead of a whitespace-split query"`
	Trace   bool   `long:"trace" description:"Enable verbose trace logging"`
	Help    bool   `long:"help" description:"Show this help"`
	Version bool   `long:"version" description:"Show this version"`
}

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: dingdef <install|search> [options] ...")
		os.Exit(1)
	}

	switch os.Args[1] {
	case "install":
		os.Exit(runInstall(os.Args[2:]))
	case "search":
		os.Exit(runSearch(os.Args[2:]))
	default:
		fmt.Fprintf(os.Stderr, "unknown subcommand %q (want install or search)\n", os.Args[1])
		os.Exit(1)
	}
}

func runInstall(args []string) int {
	var opts installOpts
	p := flags.NewParser(&opts, flags.None)
	p.Usage = "[options] corpus-file"
	rest, err := p.ParseArgs(args)
	if err != nil {
		log.Fatal(err)
	}
	if opts.Help {
		p.WriteHelp(os.Stdout)
		return 0
	}
	if opts.Version {
		fmt.Println(version)
		return 0
	}
	if len(rest) != 1 {
		fmt.Fprintln(os.Stderr, "exactly one corpus file is required")
		p.WriteHelp(os.Stderr)
		return 1
	}
	corpusPath := rest[0]

	cfg, err := config.Load(opts.Config, config.Flags{RootDir: opts.Root})
	if err != nil {
		log.Fatal(err)
	}
	if cfg.RootDir == "" {
		fmt.Fprintln(os.Stderr, "a data root directory is required (--root or config root_dir)")
		return 1
	}

	dictlog.Init(cfg.LogLevel)
	dictlog.SetTrace(opts.Trace)
	dictlog.Trace("common words excluded from indexing", text.CommonWordsSorted())

	l, err := lock.Acquire(cfg.RootDir)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer l.Release()

	in := &installer.Installer{Root: cfg.RootDir, BufSize: cfg.ScanBufferSize}
	err = in.InstallFromPath(context.Background(), corpusPath, progressReporter(), nil)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

// progressReporter picks between an in-place redrawing progress line,
// when stderr is an interactive terminal, and a plain structured log
// line otherwise (e.g. when output is piped to a file or CI log,
// where carriage-return redraws would just produce noise).
func progressReporter() installer.ProgressFunc {
	if render.IsTerminal(os.Stderr) {
		return func(state installer.State, frac float64) {
			fmt.Fprintf(os.Stderr, "\r%-10s %5.1f%%", state.String(), frac*100)
			if state == installer.StateCompleted || state == installer.StateError {
				fmt.Fprintln(os.Stderr)
			}
		}
	}
	return func(state installer.State, frac float64) {
		slog.Info("install progress", "state", state.String(), "fraction", frac)
	}
}

func runSearch(args []string) int {
	var opts searchOpts
	p := flags.NewParser(&opts, flags.None)
	p.Usage = "[options] query-word..."
	rest, err := p.ParseArgs(args)
	if err != nil {
		log.Fatal(err)
	}
	if opts.Help {
		p.WriteHelp(os.Stdout)
		return 0
	}
	if opts.Version {
		fmt.Println(version)
		return 0
	}
	if len(rest) == 0 {
		fmt.Fprintln(os.Stderr, "at least one query word is required")
		p.WriteHelp(os.Stderr)
		return 1
	}

	cfg, err := config.Load(opts.Config, config.Flags{RootDir: opts.Root, ResultLimit: opts.Limit})
	if err != nil {
		log.Fatal(err)
	}
	if cfg.RootDir == "" {
		fmt.Fprintln(os.Stderr, "a data root directory is required (--root or config root_dir)")
		return 1
	}

	dictlog.Init(cfg.LogLevel)
	dictlog.SetTrace(opts.Trace)

	l, err := lock.Acquire(cfg.RootDir)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer l.Release()

	queryText := rest[0]
	for _, w := range rest[1:] {
		queryText += " " + w
	}

	var keywords [][]byte
	if opts.Scan {
		keywords = keyword.ParseText([]byte(queryText))
	} else {
		keywords = keyword.Parse(queryText)
	}
	dictlog.Trace("keywords", keywords)

	e := &query.Engine{Root: cfg.RootDir, Limit: cfg.ResultLimit}
	res, err := e.Search(context.Background(), keywords, nil, nil)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	utf8Capable := render.TermIsUTF8()
	for _, m := range res.Matches {
		line := fmt.Sprintf("%s :: %s  (%d)\n", m.Entry.GermanText, m.Entry.EnglishText, m.Score)
		if err := render.WriteStr(os.Stdout, []byte(line), utf8Capable); err != nil {
			log.Fatal(err)
		}
	}

	if opts.Trace {
		pp.Println(res)
	}

	if len(res.Matches) == 0 {
		return 1
	}
	return 0
}
