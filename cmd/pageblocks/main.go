// Command pageblocks extracts typed content blocks from the pages of a PDF
// and writes them as JSON, one result per page in page order.
//
// Usage:
//
//	pageblocks [flags] file.pdf
//
// Environment:
//
//	PAGEBLOCKS_CONFIG     YAML config file (overridden by -config)
//	PAGEBLOCKS_WORKERS    number of pages processed at once (overridden by -workers)
//	PAGEBLOCKS_LOG_LEVEL  debug, info, warn or error (overridden by -log-level)
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"strconv"
	"strings"
	"sync"

	"github.com/tsawler/pageblocks"
	"github.com/tsawler/pageblocks/model"
	"github.com/tsawler/pageblocks/pdfsource"
)

type options struct {
	configPath string
	workers    int
	logLevel   string
	logFormat  string
	pages      string
	pretty     bool
	dumpConfig bool
	input      string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run is main without the process exit, returning the exit code
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	opts, err := parseOptions(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}

	level, err := parseLevel(opts.logLevel)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}
	logger := newLogger(stderr, opts.logFormat, level)

	config := pageblocks.DefaultConfig()
	if opts.configPath != "" {
		config, err = pageblocks.LoadConfigFile(opts.configPath)
		if err != nil {
			logger.Error("load config", "path", opts.configPath, "error", err)
			return 1
		}
	}

	if opts.dumpConfig {
		data, err := config.Marshal()
		if err != nil {
			logger.Error("marshal config", "error", err)
			return 1
		}
		stdout.Write(data)
		return 0
	}

	if opts.input == "" {
		fmt.Fprintln(stderr, "Usage: pageblocks [flags] file.pdf")
		return 2
	}

	doc, err := pdfsource.OpenWithConfig(opts.input, config.Source)
	if err != nil {
		logger.Error("open document", "path", opts.input, "error", err)
		return 1
	}
	defer doc.Close()

	pages, err := parsePageRange(opts.pages, doc.NumPages())
	if err != nil {
		logger.Error("invalid page range", "pages", opts.pages, "error", err)
		return 2
	}

	extractor := pageblocks.NewExtractorWithConfig(config).WithLogger(logger)
	results, err := extractPages(ctx, doc, extractor, pages, opts.workers)
	if err != nil {
		logger.Error("extraction interrupted", "error", err)
		return 1
	}

	encoder := json.NewEncoder(stdout)
	if opts.pretty {
		encoder.SetIndent("", "  ")
	}
	if err := encoder.Encode(results); err != nil {
		logger.Error("write output", "error", err)
		return 1
	}

	warnings := 0
	for _, r := range results {
		warnings += len(r.Warnings)
	}
	logger.Info("document extracted",
		"path", opts.input,
		"pages", len(results),
		"warnings", warnings,
	)
	return 0
}

func parseOptions(args []string, stderr io.Writer) (options, error) {
	var opts options

	fs := flag.NewFlagSet("pageblocks", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.configPath, "config", envOr("PAGEBLOCKS_CONFIG", ""), "YAML config file")
	fs.IntVar(&opts.workers, "workers", envInt("PAGEBLOCKS_WORKERS", runtime.NumCPU()), "pages processed at once")
	fs.StringVar(&opts.logLevel, "log-level", envOr("PAGEBLOCKS_LOG_LEVEL", "info"), "log level (debug, info, warn, error)")
	fs.StringVar(&opts.logFormat, "log-format", "text", "log format (text or json)")
	fs.StringVar(&opts.pages, "pages", "", "pages to extract, e.g. 1-3,7 (default: all)")
	fs.BoolVar(&opts.pretty, "pretty", false, "indent JSON output")
	fs.BoolVar(&opts.dumpConfig, "dump-config", false, "print the effective config as YAML and exit")

	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	if fs.NArg() > 1 {
		return options{}, fmt.Errorf("expected one input file, got %d", fs.NArg())
	}
	opts.input = fs.Arg(0)
	if opts.workers < 1 {
		opts.workers = 1
	}
	return opts, nil
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("invalid log level %q", s)
	}
	return level, nil
}

func newLogger(w io.Writer, format string, level slog.Level) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}
	if format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// parsePageRange expands a list such as "1-3,7" into page numbers. An empty
// list selects every page.
func parsePageRange(list string, numPages int) ([]int, error) {
	if strings.TrimSpace(list) == "" {
		pages := make([]int, numPages)
		for i := range pages {
			pages[i] = i + 1
		}
		return pages, nil
	}

	var pages []int
	seen := make(map[int]bool)
	for _, part := range strings.Split(list, ",") {
		part = strings.TrimSpace(part)
		lo, hi, isRange := strings.Cut(part, "-")

		first, err := strconv.Atoi(strings.TrimSpace(lo))
		if err != nil {
			return nil, fmt.Errorf("bad page %q", part)
		}
		last := first
		if isRange {
			if last, err = strconv.Atoi(strings.TrimSpace(hi)); err != nil {
				return nil, fmt.Errorf("bad page %q", part)
			}
		}
		if first < 1 || last > numPages || first > last {
			return nil, fmt.Errorf("page range %q outside 1-%d", part, numPages)
		}

		for n := first; n <= last; n++ {
			if !seen[n] {
				seen[n] = true
				pages = append(pages, n)
			}
		}
	}
	return pages, nil
}

// extractPages runs the extractor over pages with at most workers pages in
// flight. Results keep the order of pages.
func extractPages(ctx context.Context, doc *pdfsource.Document, extractor *pageblocks.Extractor, pages []int, workers int) ([]*pageblocks.PageResult, error) {
	results := make([]*pageblocks.PageResult, len(pages))
	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup

	for i, n := range pages {
		if err := ctx.Err(); err != nil {
			wg.Wait()
			return nil, err
		}

		sem <- struct{}{}
		wg.Add(1)
		go func(i, n int) {
			defer wg.Done()
			defer func() { <-sem }()
			results[i] = extractPage(ctx, doc, extractor, n)
		}(i, n)
	}

	wg.Wait()
	return results, ctx.Err()
}

func extractPage(ctx context.Context, doc *pdfsource.Document, extractor *pageblocks.Extractor, n int) *pageblocks.PageResult {
	page, err := doc.Page(n)
	if err != nil {
		return &pageblocks.PageResult{
			PageNum:  n,
			Blocks:   []model.TextBlock{},
			Warnings: []pageblocks.Warning{{Page: n, Stage: pageblocks.StageText, Message: err.Error()}},
		}
	}
	return extractor.ExtractPage(ctx, page, n)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
