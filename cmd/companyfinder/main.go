// Command companyfinder resolves company names to LinkedIn company page URLs.
//
// Usage:
//
//	companyfinder --input data/inputs/companies_list.txt --formats json,csv,rss
//	companyfinder check https://linkedin.com/company/acme/?trk=x
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/codeGROOVE-dev/companyfinder/internal/config"
	"github.com/codeGROOVE-dev/companyfinder/pkg/companies"
	"github.com/codeGROOVE-dev/companyfinder/pkg/export"
	"github.com/codeGROOVE-dev/companyfinder/pkg/finder"
	"github.com/codeGROOVE-dev/companyfinder/pkg/httpcache"
	"github.com/codeGROOVE-dev/companyfinder/pkg/linkedin"
	"github.com/codeGROOVE-dev/companyfinder/pkg/metrics"
	"github.com/codeGROOVE-dev/companyfinder/pkg/search"
)

const defaultInput = "data/inputs/companies_list.txt"

type options struct {
	input       string
	outputDir   string
	formats     string
	logLevel    string
	configPath  string
	metricsFile string
	limit       int
	noCache     bool
	summary     bool
}

func main() {
	if err := newRootCmd(os.Stdout, os.Stderr).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:           "companyfinder",
		Short:         "Find LinkedIn company pages for a list of company names",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return run(ctx, opts, cmd.Flags().Changed("log-level"), stdout, stderr)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.input, "input", defaultInput, "path to input companies list (one company per line)")
	f.StringVar(&opts.outputDir, "output-dir", "", "directory where results are written (default from settings)")
	f.StringVar(&opts.formats, "formats", "", "comma-separated export formats: json,csv,excel,xml,rss (default from settings)")
	f.IntVar(&opts.limit, "limit", 0, "maximum number of companies to process (0 = all)")
	f.StringVar(&opts.logLevel, "log-level", "info", "logging level (debug, info, warn, error)")
	f.StringVar(&opts.configPath, "config", config.DefaultPath, "settings file (.yaml, .json or .toml)")
	f.BoolVar(&opts.noCache, "no-cache", false, "disable the HTTP cache")
	f.BoolVar(&opts.summary, "summary", false, "print a summary table to stdout")
	f.StringVar(&opts.metricsFile, "metrics-file", "", "write Prometheus metrics to this textfile when done")

	cmd.AddCommand(newCheckCmd(stdout))
	return cmd
}

func newLogger(w io.Writer, level string) (*slog.Logger, error) {
	l, err := config.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: l})), nil
}

func run(ctx context.Context, opts *options, levelFromFlag bool, stdout, stderr io.Writer) error {
	logger, err := newLogger(stderr, opts.logLevel)
	if err != nil {
		return err
	}

	cfg, err := config.LoadOrDefault(opts.configPath, logger)
	if err != nil {
		return err
	}
	if !levelFromFlag {
		if logger, err = newLogger(stderr, cfg.Logging.Level); err != nil {
			return err
		}
	}
	logger.Info("loaded settings", "engine", cfg.Search.Engine, "base_url", cfg.Search.BaseURL,
		"timeout", cfg.Timeout(), "max_workers", cfg.Search.MaxWorkers, "strategy", cfg.Selection.Strategy)

	names, err := companies.LoadNonEmpty(opts.input)
	switch {
	case errors.Is(err, companies.ErrNoCompanies):
		logger.Warn("no companies found in input file", "path", opts.input)
		return nil
	case errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("input file does not exist: %s", opts.input)
	case err != nil:
		return fmt.Errorf("failed to read companies from %s: %w", opts.input, err)
	}
	if opts.limit > 0 && len(names) > opts.limit {
		names = names[:opts.limit]
	}

	fetcherOpts := []httpcache.Option{httpcache.WithLogger(logger), httpcache.WithTimeout(cfg.Timeout())}
	if cfg.CacheEnabled() && !opts.noCache {
		cache, err := openCache(&cfg)
		if err != nil {
			logger.Warn("failed to initialize cache, continuing without cache", "error", err)
		} else {
			defer func() {
				if err := cache.Close(); err != nil {
					logger.Warn("failed to close cache", "error", err)
				}
			}()
			fetcherOpts = append(fetcherOpts, httpcache.WithCache(cache))
			logger.Debug("HTTP cache initialized", "ttl", cfg.CacheTTL().String())
		}
	}
	fetcher := httpcache.NewFetcher(fetcherOpts...)

	engine, err := search.ParseEngine(cfg.Search.Engine)
	if err != nil {
		return err
	}
	searcher, err := search.New(engine, fetcher,
		search.WithLogger(logger),
		search.WithBaseURL(cfg.Search.BaseURL),
		search.WithUserAgent(cfg.Search.UserAgent),
		search.WithAPIKey(cfg.Search.APIKey),
		search.WithLimit(cfg.Search.ResultsPerQuery),
	)
	if err != nil {
		return fmt.Errorf("create %s searcher: %w", engine, err)
	}

	var (
		reg      *prometheus.Registry
		recorder *metrics.Recorder
	)
	if opts.metricsFile != "" {
		reg = prometheus.NewRegistry()
		recorder = metrics.New(reg)
	}

	fd := finder.New(searcher,
		finder.WithLogger(logger),
		finder.WithMetrics(recorder),
		finder.WithEngineName(string(engine)),
		finder.WithQueryTemplate(cfg.Search.QueryTemplate),
		finder.WithStrategy(linkedin.Strategy(cfg.Selection.Strategy)),
		finder.WithNormalize(cfg.NormalizeURLs()),
		finder.WithWorkers(cfg.Search.MaxWorkers),
		finder.WithMinConfidence(cfg.Selection.MinConfidence),
	)

	records := fd.Run(ctx, names)
	fd.Validate(records)

	formatList := opts.formats
	if formatList == "" {
		formatList = strings.Join(cfg.Output.Formats, ",")
	}
	formats, unknown := export.ParseFormats(formatList)
	if len(unknown) > 0 {
		logger.Warn("requested unsupported formats (ignored)", "formats", strings.Join(unknown, ", "))
	}

	outDir := opts.outputDir
	if outDir == "" {
		outDir = cfg.Output.Dir
	}
	paths, err := export.New(outDir, export.WithLogger(logger)).Export(records, formats)
	if err != nil {
		logger.Error("some exports failed", "error", err)
	}
	if len(paths) == 0 {
		logger.Warn("no exports were generated, check requested formats")
	}

	stats := fetcher.Stats()
	logger.Info("run complete", "companies", len(records), "cache_hits", stats.Hits, "cache_misses", stats.Misses,
		"cache_hit_rate", fmt.Sprintf("%.1f%%", stats.HitRate()))

	if opts.summary {
		export.Summary(stdout, records)
	}

	if reg != nil {
		recorder.AddCacheStats(stats.Hits, stats.Misses)
		if err := prometheus.WriteToTextfile(opts.metricsFile, reg); err != nil {
			return fmt.Errorf("write metrics: %w", err)
		}
		logger.Info("metrics written", "path", opts.metricsFile)
	}
	return nil
}

func openCache(cfg *config.Config) (*httpcache.Cache, error) {
	if cfg.Cache.Dir != "" {
		return httpcache.NewWithPath(cfg.CacheTTL(), filepath.Clean(cfg.Cache.Dir))
	}
	return httpcache.New(cfg.CacheTTL())
}

func newCheckCmd(stdout io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "check <url>...",
		Short: "Validate and normalize LinkedIn company URLs",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			t := table.NewWriter()
			t.SetOutputMirror(stdout)
			t.AppendHeader(table.Row{"URL", "Valid", "Normalized", "Slug"})

			invalid := 0
			for _, u := range args {
				valid := linkedin.IsCompanyURL(u)
				if !valid {
					invalid++
				}
				slug, _ := linkedin.CompanySlug(u)
				t.AppendRow(table.Row{u, strconv.FormatBool(valid), linkedin.NormalizeCompanyURL(u), slug})
			}

			t.SetStyle(table.StyleRounded)
			t.Render()

			if invalid > 0 {
				return fmt.Errorf("%d of %d URLs are not LinkedIn company pages", invalid, len(args))
			}
			return nil
		},
	}
}
