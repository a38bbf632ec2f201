// Command speakertag-load imports transcript .txt files into the database
//
//	speakertag-load 2024-05-14_plenary.txt:2024-05-14 notes.txt
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"speakertag/internal/core/normalize"
	"speakertag/internal/modkit"
	"speakertag/internal/platform/bootstrap"
	"speakertag/internal/platform/config"
	perr "speakertag/internal/platform/errors"
	"speakertag/internal/platform/logger"
	"speakertag/internal/services/transcripts/domain"
	tmod "speakertag/internal/services/transcripts/module"
)

const service = "speakertag-load"

type target struct {
	Path string
	Date *time.Time
}

// parseTarget splits "file[:YYYY-MM-DD]". A suffix that is not a date stays part of the path
func parseTarget(arg string) target {
	if i := strings.LastIndex(arg, ":"); i > 0 {
		if d, err := time.Parse(time.DateOnly, arg[i+1:]); err == nil {
			return target{Path: arg[:i], Date: &d}
		}
	}
	return target{Path: arg}
}

type summary struct {
	Loaded, Skipped, Failed, Lines int
}

func load(ctx context.Context, w domain.WriterPort, targets []target, log *logger.Logger) summary {
	var s summary
	for _, t := range targets {
		f, err := os.Open(t.Path)
		if err != nil {
			log.Error().Err(err).Str("file", t.Path).Msg("open failed")
			s.Failed++
			continue
		}
		lines, err := normalize.Lines(f)
		_ = f.Close()
		if err != nil {
			log.Error().Err(err).Str("file", t.Path).Msg("read failed")
			s.Failed++
			continue
		}

		tr, err := w.Import(ctx, domain.ImportInput{
			Filename: filepath.Base(t.Path),
			Date:     t.Date,
			Lines:    lines,
		})
		switch {
		case perr.IsCode(err, perr.ErrorCodeConflict):
			log.Warn().Str("file", t.Path).Msg("already loaded, skipping")
			s.Skipped++
		case err != nil:
			log.Error().Err(err).Str("file", t.Path).Msg("import failed")
			s.Failed++
		default:
			log.Info().Str("file", t.Path).Int64("transcript_id", tr.ID).Int("lines", tr.TotalLines).Msg("loaded")
			s.Loaded++
			s.Lines += tr.TotalLines
		}
	}
	return s
}

func main() {
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s file[:YYYY-MM-DD] ...\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	os.Exit(run(flag.Args()))
}

func run(args []string) int {
	l := bootstrap.Env(service)
	root := config.New()

	ctx, stop := bootstrap.SignalContext()
	defer stop()

	st, err := bootstrap.OpenStore(ctx, root, service)
	if err != nil {
		l.Fatal().Err(err).Msg("store.Open failed")
	}
	defer bootstrap.CloseStore(st)

	tm := tmod.New(modkit.DepsFrom(st, *l, root))
	writer := tm.Ports().(tmod.Ports).Writer

	targets := make([]target, 0, len(args))
	for _, a := range args {
		targets = append(targets, parseTarget(a))
	}
	s := load(ctx, writer, targets, l)

	fmt.Printf("loaded %d file(s), %d line(s); skipped %d existing; %d failed\n", s.Loaded, s.Lines, s.Skipped, s.Failed)
	if s.Failed > 0 {
		return 1
	}
	return 0
}
