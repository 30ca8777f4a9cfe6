// SPDX-License-Identifier: AGPL-3.0-only

// Package exports renders a record collection to files. Writes go through a
// temp file and rename so a crash never leaves a half-written export, and a
// rerun over unchanged records produces byte-identical CSV and JSON output.
package exports

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/softpaws/postharvest/internal/record"
)

// mediaSeparator joins multiple media urls into one tabular cell.
const mediaSeparator = " | "

// ExportError is a failure to write one output file. Other formats in the
// same request are unaffected.
type ExportError struct {
	Format string
	Path   string
	Err    error
}

func (e *ExportError) Error() string {
	return fmt.Sprintf("exporting %s to %s: %v", e.Format, e.Path, e.Err)
}

func (e *ExportError) Unwrap() error { return e.Err }

type writeFunc func(recs record.Collection, path string) error

var formats = map[string]writeFunc{
	"csv":  WriteCSV,
	"json": WriteJSON,
	"xlsx": WriteXLSX,
}

// Request names the output files to produce. Empty paths are skipped.
type Request struct {
	CSVPath  string
	JSONPath string
	XLSXPath string
}

func (r Request) pairs() [][2]string {
	return [][2]string{
		{"csv", r.CSVPath},
		{"json", r.JSONPath},
		{"xlsx", r.XLSXPath},
	}
}

// WriteAll writes every requested format. A failure in one format is
// collected and the rest are still attempted; the returned slice holds one
// *ExportError per failed format.
func WriteAll(recs record.Collection, req Request, logger *zap.SugaredLogger) []error {
	var failures []error

	for _, p := range req.pairs() {
		format, path := p[0], p[1]
		if path == "" {
			continue
		}
		if err := formats[format](recs, path); err != nil {
			logger.Errorw("export failed", "format", format, "path", path, "error", err)
			failures = append(failures, &ExportError{Format: format, Path: path, Err: err})
			continue
		}
		logger.Infow("export written", "format", format, "path", path, "records", len(recs))
	}

	return failures
}

// tabularRow renders one record in export column order.
func tabularRow(r record.Record) []string {
	return []string{
		r.ID,
		r.Source,
		r.Network,
		r.Date,
		r.Text,
		strconv.Itoa(r.Views),
		strconv.Itoa(r.Forwards),
		strconv.Itoa(r.Replies),
		r.URL,
		strconv.FormatBool(r.HasMedia),
		strings.Join(r.MediaURLs, mediaSeparator),
	}
}

// atomicWrite writes via a temp file in the destination directory and
// renames it into place.
func atomicWrite(path string, write func(f *os.File) error) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if err := write(tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	return os.Rename(tmp.Name(), path)
}
