// Command logreport turns a fixed-width transfer log into a pipe-delimited
// report followed by the sorted record ids and the ranked distinct user ids.
//
// With no arguments it reads sample-log.txt and writes output.txt in the
// working directory.
//
// Usage:
//
//	logreport [-config FILE] [-input FILE] [-output FILE] [-date-style NAME]
//	          [-date-pattern STRFTIME] [-strict] [-archive DB] [-v]
//	logreport runs -archive DB [-limit N]
//
// Inputs may be gzip or zstd compressed; the encoding is detected from the
// file contents.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"logreport/internal/config"
	"logreport/internal/processor"
	"logreport/internal/registry"
	"logreport/internal/storage"
)

func usage(w io.Writer) {
	fmt.Fprintln(w, "logreport - fixed-width log to report")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  logreport [-config FILE] [-input FILE] [-output FILE] [-date-style NAME]")
	fmt.Fprintln(w, "            [-date-pattern STRFTIME] [-strict] [-archive DB] [-v]")
	fmt.Fprintln(w, "  logreport runs -archive DB [-limit N]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Date styles:")
	for _, name := range registry.Default().Names() {
		s, _ := registry.Default().Lookup(name)
		fmt.Fprintf(w, "  %-10s %s\n", name, s.Pattern())
	}
	fmt.Fprintln(w, "")
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	if len(args) > 0 {
		switch strings.ToLower(args[0]) {
		case "runs":
			return runRuns(args[1:], stdout, stderr)
		case "-h", "--help", "help":
			usage(stdout)
			return 0
		}
	}
	return runProcess(args, stdout, stderr)
}

func runProcess(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("logreport", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() { usage(stderr) }
	cfgPath := fs.String("config", "", "YAML config file")
	inPath := fs.String("input", config.DefaultInput, "Input log file")
	outPath := fs.String("output", config.DefaultOutput, "Output report file")
	dateStyle := fs.String("date-style", "", "Date style name")
	datePattern := fs.String("date-pattern", "", "strftime pattern for dates (overrides -date-style)")
	strict := fs.Bool("strict", false, "Reject lines that end before a field begins")
	archive := fs.String("archive", "", "SQLite file to record the run in")
	verbose := fs.Bool("v", false, "Verbose logging to stderr")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() > 0 {
		fmt.Fprintf(stderr, "Unknown argument: %s\n\n", fs.Arg(0))
		usage(stderr)
		return 2
	}

	cfg := config.DefaultConfig()
	if *cfgPath != "" {
		var err error
		if cfg, err = config.Load(*cfgPath); err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return 1
		}
	}

	// Explicit flags win over the config file.
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "input":
			cfg.Input = *inPath
		case "output":
			cfg.Output = *outPath
		case "date-style":
			cfg.Date.Style = *dateStyle
			cfg.Date.Pattern = ""
		case "date-pattern":
			cfg.Date.Pattern = *datePattern
		case "strict":
			cfg.Strict = *strict
		case "archive":
			cfg.Archive = *archive
		}
	})
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	logger, err := newLogger(*verbose)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	defer func() { _ = logger.Sync() }()

	style, err := cfg.DateStyle()
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	p, err := processor.New(processor.Options{
		Schema: cfg.Schema,
		Style:  style,
		Strict: cfg.Strict,
		Logger: logger,
	})
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	res, err := p.Run(cfg.Input, cfg.Output)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	if cfg.Archive != "" {
		if err := archiveRun(context.Background(), cfg.Archive, res, logger); err != nil {
			fmt.Fprintf(stderr, "Error: archive: %v\n", err)
			return 1
		}
	}

	fmt.Fprintf(stdout, "Log processing completed successfully. Output saved to %s\n", cfg.Output)
	return 0
}

func archiveRun(ctx context.Context, path string, res *processor.Result, logger *zap.Logger) error {
	db, err := storage.Open(path)
	if err != nil {
		return err
	}
	defer db.Close()

	run, err := db.SaveRun(ctx, storage.SaveParams{
		Input:     res.Input,
		Output:    res.Output,
		DateStyle: res.Style,
		Records:   res.Records,
	})
	if err != nil {
		return err
	}
	logger.Info("run archived", zap.String("run_id", run.ID), zap.String("archive", path))
	return nil
}

func runRuns(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("runs", flag.ContinueOnError)
	fs.SetOutput(stderr)
	archive := fs.String("archive", "", "SQLite archive file")
	limit := fs.Int("limit", 20, "Maximum runs to list")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *archive == "" {
		fmt.Fprintln(stderr, "runs: -archive is required")
		return 2
	}
	if _, err := os.Stat(*archive); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	db, err := storage.Open(*archive)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	defer db.Close()

	runs, err := db.ListRuns(context.Background(), *limit)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	for _, r := range runs {
		fmt.Fprintf(stdout, "%s  %s  %-8s records=%d users=%d  %s -> %s\n",
			r.CreatedAt.Format("2006-01-02 15:04:05"), r.ID, r.DateStyle,
			r.Records, r.UniqueUsers, r.Input, r.Output)
	}
	return 0
}

// newLogger builds a production zap logger that stays quiet unless verbose.
func newLogger(verbose bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return logger, nil
}
