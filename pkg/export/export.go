// Package export writes company records to JSON, CSV, Excel, XML, and RSS files.
package export

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/codeGROOVE-dev/companyfinder/pkg/record"
)

// Format is an output file format.
type Format string

const (
	JSON  Format = "json"
	CSV   Format = "csv"
	Excel Format = "excel"
	XML   Format = "xml"
	RSS   Format = "rss"
)

// DefaultFormats are written when none are requested.
var DefaultFormats = []Format{JSON, CSV}

var fileNames = map[Format]string{
	JSON:  "results.json",
	CSV:   "results.csv",
	Excel: "results.xlsx",
	XML:   "results.xml",
	RSS:   "results.rss",
}

type writerFunc func(path string, records []record.Record) error

var writers = map[Format]writerFunc{
	JSON:  writeJSON,
	CSV:   writeCSV,
	Excel: writeExcel,
	XML:   writeXML,
	RSS:   writeRSS,
}

// ParseFormats splits a comma separated list, lower-cases and dedupes it.
// Unknown names are returned separately rather than rejected. A blank list
// yields DefaultFormats.
func ParseFormats(list string) (known []Format, unknown []string) {
	if strings.TrimSpace(strings.ReplaceAll(list, ",", "")) == "" {
		return slices.Clone(DefaultFormats), nil
	}
	seen := map[string]bool{}
	for _, part := range strings.Split(list, ",") {
		name := strings.ToLower(strings.TrimSpace(part))
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		if _, ok := writers[Format(name)]; ok {
			known = append(known, Format(name))
		} else {
			unknown = append(unknown, name)
		}
	}
	return known, unknown
}

// Exporter writes records into a directory.
type Exporter struct {
	logger *slog.Logger
	dir    string
}

// Option configures an Exporter.
type Option func(*Exporter)

// WithLogger sets a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Exporter) { e.logger = logger }
}

// New creates an Exporter that writes into dir.
func New(dir string, opts ...Option) *Exporter {
	e := &Exporter{dir: dir, logger: slog.Default()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Export writes records in each requested format and returns the written paths.
// Unknown formats are logged and skipped. A format that fails to write does not
// stop the others; all failures are joined into the returned error.
func (e *Exporter) Export(records []record.Record, formats []Format) (map[Format]string, error) {
	if err := os.MkdirAll(e.dir, 0o750); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}

	paths := map[Format]string{}
	var errs []error
	for _, f := range formats {
		write, ok := writers[f]
		if !ok {
			e.logger.Warn("unsupported export format ignored", "format", f)
			continue
		}
		if _, done := paths[f]; done {
			continue
		}

		path := filepath.Join(e.dir, fileNames[f])
		if err := write(path, records); err != nil {
			e.logger.Error("export failed", "format", f, "path", path, "error", err)
			errs = append(errs, fmt.Errorf("export %s: %w", f, err))
			continue
		}
		e.logger.Info("exported records", "format", f, "path", path, "count", len(records))
		paths[f] = path
	}
	return paths, errors.Join(errs...)
}

func writeFile(path string, write func(f *os.File) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return write(f)
}
