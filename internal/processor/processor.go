// Package processor runs the log-to-report pipeline: read lines, extract
// fields, format them, and write the built report.
package processor

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"logreport/internal/extractor"
	"logreport/internal/format"
	"logreport/internal/record"
	"logreport/internal/registry"
	"logreport/internal/report"
	"logreport/internal/source"
)

// ErrOutputWrite is returned when the report cannot be written to its destination.
var ErrOutputWrite = errors.New("could not write output file")

// maxLineSize bounds a single input line (1MB).
const maxLineSize = 1024 * 1024

// LineError ties a failure to the 1-based input line that caused it.
type LineError struct {
	Line int
	Err  error
}

func (e *LineError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e *LineError) Unwrap() error { return e.Err }

// Options configures a Processor.
type Options struct {
	// Schema locates the fields in each line. The zero value selects
	// extractor.DefaultSchema.
	Schema extractor.Schema

	// Style renders timestamps. Nil selects format.DefaultStyle.
	Style registry.Style

	// Strict rejects lines that end before a field begins.
	Strict bool

	// Logger receives diagnostics. Nil disables logging.
	Logger *zap.Logger
}

// Processor turns fixed-width log input into a report. A Processor holds no
// per-run state and can be reused.
type Processor struct {
	schema    extractor.Schema
	formatter *format.Formatter
	strict    bool
	log       *zap.Logger
}

// New validates opts and creates a Processor.
func New(opts Options) (*Processor, error) {
	schema := opts.Schema
	if schema == (extractor.Schema{}) {
		schema = extractor.DefaultSchema()
	}
	if err := schema.Validate(); err != nil {
		return nil, err
	}

	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	return &Processor{
		schema:    schema,
		formatter: format.New(opts.Style),
		strict:    opts.Strict,
		log:       log,
	}, nil
}

// Style returns the date style the processor renders with.
func (p *Processor) Style() registry.Style {
	return p.formatter.Style()
}

// Process reads every line of r into a new report builder. The first bad line
// aborts processing with a *LineError.
func (p *Processor) Process(r io.Reader) (*report.Builder, error) {
	b := report.NewBuilder()

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	n := 0
	for scanner.Scan() {
		n++
		rec, err := p.processLine(scanner.Text())
		if err != nil {
			return nil, &LineError{Line: n, Err: err}
		}
		b.Append(rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: read after line %d: %v", source.ErrInputUnreadable, n, err)
	}

	p.log.Debug("input consumed", zap.Int("lines", n))
	return b, nil
}

func (p *Processor) processLine(line string) (record.Record, error) {
	if p.strict {
		if err := p.schema.CheckWidth(line); err != nil {
			return record.Record{}, err
		}
	}
	fields := p.schema.Extract(line)
	rec, err := p.formatter.Format(fields)
	if err != nil {
		return record.Record{}, err
	}
	return rec, nil
}

// Result describes a completed run.
type Result struct {
	Input   string
	Output  string
	Style   string
	Stats   report.Stats
	Records []record.Record
}

// Run processes the file at in and writes the report to out. Nothing is
// written unless every line formats; an existing file at out is replaced
// only on success.
func (p *Processor) Run(in, out string) (*Result, error) {
	b, err := p.processFile(in)
	if err != nil {
		return nil, err
	}

	text := b.Build()
	if err := writeAtomic(out, []byte(text)); err != nil {
		return nil, err
	}

	res := &Result{
		Input:   in,
		Output:  out,
		Style:   p.Style().Name(),
		Stats:   b.Stats(),
		Records: b.Records(),
	}
	p.log.Info("report written",
		zap.String("input", in),
		zap.String("output", out),
		zap.String("date_style", res.Style),
		zap.Int("records", res.Stats.Records),
		zap.Int("unique_users", res.Stats.UniqueUsers),
		zap.Int("bytes", len(text)),
	)
	return res, nil
}

func (p *Processor) processFile(path string) (*report.Builder, error) {
	f, err := source.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	p.log.Debug("input opened", zap.String("path", path), zap.String("compression", string(f.Compression)))
	return p.Process(f)
}

// writeAtomic writes data to a temporary file next to path and renames it
// into place, so readers never see a partial report.
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrOutputWrite, path, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("%w: %s: %v", ErrOutputWrite, path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrOutputWrite, path, err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrOutputWrite, path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrOutputWrite, path, err)
	}
	return nil
}
