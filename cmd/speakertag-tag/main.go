// Command speakertag-tag attributes speakers in transcript files without a database
//
//	speakertag-tag -mode segment -export-csv out.csv 2024-05-14_plenary.txt
//	speakertag-tag -workers 4 sessions/*.txt
package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"speakertag/internal/core/engine"
	"speakertag/internal/core/export"
	"speakertag/internal/core/normalize"
	"speakertag/internal/core/quality"
	"speakertag/internal/core/speakerpack"
	"speakertag/internal/platform/bootstrap"
	perr "speakertag/internal/platform/errors"
	"speakertag/internal/platform/logger"
)

const service = "speakertag-tag"

type options struct {
	Inputs              []string
	Workers             int
	Mode                string
	ContextWindow       *int // nil keeps the mode default; 0 disables carry-over
	MaxSegmentLength    int
	SentenceSplitLength int
	PatternsFile        string

	Output      string // default <input>_tagged.txt
	ExportJSON  string
	ExportJSONL string
	ExportCSV   string
	Report      string // optional copy of the printed report
}

func defaultOutput(input string) string {
	ext := filepath.Ext(input)
	return strings.TrimSuffix(input, ext) + "_tagged.txt"
}

// engineConfig starts from the mode defaults; set flags override them
func engineConfig(o options) (engine.Config, error) {
	mode, err := engine.ParseMode(o.Mode)
	if err != nil {
		return engine.Config{}, err
	}
	cfg := engine.DefaultConfig(mode)
	if o.ContextWindow != nil {
		cfg.ContextWindow = *o.ContextWindow
	}
	if o.MaxSegmentLength > 0 {
		cfg.MaxSegmentLength = o.MaxSegmentLength
	}
	if o.SentenceSplitLength > 0 {
		cfg.SentenceSplitLength = o.SentenceSplitLength
	}
	return cfg, nil
}

func loadPack(path string) (*speakerpack.Pack, error) {
	if path == "" {
		return speakerpack.Load()
	}
	return speakerpack.LoadFile(path)
}

func writeFile(path string, fn func(io.Writer) error) error {
	var buf bytes.Buffer
	if err := fn(&buf); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}

func readLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return normalize.Lines(f)
}

// tagFiles attributes every input in one batch, each transcript with its own detection pass.
// Output paths other than the per-input default need a single input
func tagFiles(ctx context.Context, o options, stdout io.Writer, log *logger.Logger) error {
	if len(o.Inputs) == 0 {
		return perr.InvalidArgf("no input files")
	}
	if len(o.Inputs) > 1 && (o.Output != "" || o.ExportJSON != "" || o.ExportJSONL != "" || o.ExportCSV != "" || o.Report != "") {
		return perr.InvalidArgf("-output, -export-* and -report take a single input, got %d", len(o.Inputs))
	}
	cfg, err := engineConfig(o)
	if err != nil {
		return err
	}
	pack, err := loadPack(o.PatternsFile)
	if err != nil {
		return err
	}
	eng, err := engine.New(pack, cfg)
	if err != nil {
		return err
	}

	docs := make([]engine.Document, len(o.Inputs))
	for i, in := range o.Inputs {
		lines, err := readLines(in)
		if err != nil {
			return err
		}
		log.Info().Str("file", in).Int("lines", len(lines)).Str("mode", string(cfg.Mode)).Msg("attributing")
		docs[i] = engine.Document{ID: in, Lines: lines}
	}

	results, err := eng.RunBatch(ctx, docs, o.Workers)
	if err != nil {
		return err
	}
	for _, br := range results {
		if err := writeResult(o, br, cfg.Mode == engine.ModeSegment, stdout, log); err != nil {
			return err
		}
	}
	return nil
}

func writeResult(o options, br engine.BatchResult, segmented bool, stdout io.Writer, log *logger.Logger) error {
	res := br.Result
	for i, ms := range res.Mentions {
		for _, m := range ms {
			log.Debug().Str("file", br.ID).Int64("unit", res.Units[i].ID).Str("pattern", m.Pattern).Str("speaker", m.FullName).Msg("mention")
		}
	}
	recs := export.Records(res)

	out := o.Output
	if out == "" {
		out = defaultOutput(br.ID)
	}
	outputs := []struct {
		path string
		f    export.Format
	}{
		{out, export.FormatTXT},
		{o.ExportJSON, export.FormatJSON},
		{o.ExportJSONL, export.FormatJSONL},
		{o.ExportCSV, export.FormatCSV},
	}
	for _, x := range outputs {
		if x.path == "" {
			continue
		}
		if err := writeFile(x.path, func(w io.Writer) error { return export.WriteRecords(w, x.f, recs, segmented) }); err != nil {
			return fmt.Errorf("write %s: %w", x.path, err)
		}
		log.Info().Str("file", x.path).Str("format", string(x.f)).Msg("wrote")
	}

	if o.Report != "" {
		if err := writeFile(o.Report, func(w io.Writer) error { return quality.WriteReport(w, res.Stats) }); err != nil {
			return fmt.Errorf("write %s: %w", o.Report, err)
		}
	}
	if len(o.Inputs) > 1 {
		fmt.Fprintf(stdout, "\n%s\n", br.ID)
	}
	return quality.WriteReport(stdout, res.Stats)
}

// verbosity lowers the level to debug when asked and otherwise keeps what LOG_LEVEL chose
func verbosity(l *logger.Logger, verbose bool) *logger.Logger {
	if !verbose {
		return l
	}
	ll := l.Level(zerolog.DebugLevel)
	return &ll
}

func main() {
	var o options
	flag.StringVar(&o.Mode, "mode", "segment", "line or segment")
	contextWindow := flag.Int("context-window", 0, "units a speaker carries forward; 0 disables carry-over (default per mode)")
	flag.IntVar(&o.MaxSegmentLength, "max-segment-length", 0, "segment mode: longest unit in runes")
	flag.IntVar(&o.SentenceSplitLength, "sentence-split-length", 0, "segment mode: split sentences of units longer than this")
	flag.IntVar(&o.Workers, "workers", 2, "transcripts attributed in parallel")
	flag.StringVar(&o.PatternsFile, "patterns", "", "speaker rule table (default: embedded)")
	flag.StringVar(&o.Output, "output", "", "tagged txt path (default <input>_tagged.txt)")
	flag.StringVar(&o.ExportJSON, "export-json", "", "also write records as JSON")
	flag.StringVar(&o.ExportJSONL, "export-jsonl", "", "also write records as JSON lines")
	flag.StringVar(&o.ExportCSV, "export-csv", "", "also write records as CSV")
	flag.StringVar(&o.Report, "report", "", "also save the quality report to this path")
	verbose := flag.Bool("verbose", false, "log every detected mention")
	flag.Parse()

	if flag.NArg() == 0 {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] input.txt [more.txt ...]\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(2)
	}
	o.Inputs = flag.Args()
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "context-window" {
			o.ContextWindow = contextWindow
		}
	})

	l := verbosity(bootstrap.Env(service), *verbose)

	ctx, stop := bootstrap.SignalContext()
	defer stop()

	if err := tagFiles(ctx, o, os.Stdout, l); err != nil {
		l.Error().Err(err).Msg("tagging failed")
		stop()
		os.Exit(1)
	}
}
