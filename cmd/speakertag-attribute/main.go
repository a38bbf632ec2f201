// Command speakertag-attribute runs speaker attribution against stored transcripts
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"speakertag/internal/core/quality"
	"speakertag/internal/modkit"
	"speakertag/internal/modkit/module"
	"speakertag/internal/platform/bootstrap"
	"speakertag/internal/platform/config"
	"speakertag/internal/services/attribution/domain"
	amod "speakertag/internal/services/attribution/module"
	tmod "speakertag/internal/services/transcripts/module"
)

const service = "speakertag-attribute"

// idList collects -transcript values, each either one id or a comma list
type idList []int64

func (l *idList) String() string {
	parts := make([]string, len(*l))
	for i, id := range *l {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return strings.Join(parts, ",")
}

func (l *idList) Set(v string) error {
	for _, p := range strings.Split(v, ",") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		id, err := strconv.ParseInt(p, 10, 64)
		if err != nil || id <= 0 {
			return fmt.Errorf("invalid transcript id %q", p)
		}
		*l = append(*l, id)
	}
	return nil
}

func printResults(w io.Writer, rs []domain.RunResult, withReport bool) error {
	for _, r := range rs {
		state := "committed"
		if r.DryRun {
			state = "dry run"
		}
		if _, err := fmt.Fprintf(w, "transcript %d [%s, %s]: %d units, %.1f%% assigned, %d speakers, tier %s, %d %s in %dms\n",
			r.TranscriptID, r.Mode, r.RunID, r.Stats.TotalUnits, r.Stats.AssignedPct, r.Stats.UniqueSpeakers,
			r.Stats.Tier, r.Committed, state, r.DurationMS); err != nil {
			return err
		}
		if withReport {
			if err := quality.WriteReport(w, r.Stats); err != nil {
				return err
			}
		}
	}
	return nil
}

func main() {
	var ids idList
	flag.Var(&ids, "transcript", "transcript id, repeatable or comma separated")
	var (
		fAll     = flag.Bool("all", false, "attribute every stored transcript")
		fMode    = flag.String("mode", "", "line or segment (default CORE_ATTRIBUTION_MODE, then segment)")
		fDryRun  = flag.Bool("dry-run", false, "compute and report without writing tags")
		fWorkers = flag.Int("workers", 0, "transcripts attributed concurrently (default CORE_ATTRIBUTION_WORKERS)")
		fReport  = flag.Bool("report", false, "print the quality report of each transcript")
	)
	flag.Parse()

	if *fAll == (len(ids) > 0) {
		fmt.Fprintln(os.Stderr, "give either -transcript or -all")
		flag.Usage()
		os.Exit(2)
	}
	if *fAll {
		ids = nil
	}
	os.Exit(run(ids, *fMode, *fDryRun, *fWorkers, *fReport))
}

func run(ids []int64, mode string, dryRun bool, workers int, report bool) int {
	l := bootstrap.Env(service)
	root := config.New()

	ctx, stop := bootstrap.SignalContext()
	defer stop()

	st, err := bootstrap.OpenStore(ctx, root, service)
	if err != nil {
		l.Error().Err(err).Msg("store.Open failed")
		return 1
	}
	defer bootstrap.CloseStore(st)

	deps := modkit.DepsFrom(st, *l, root)
	tm := tmod.New(deps)
	tp := module.MustPortsOf[tmod.Ports](tm)

	am := amod.New(deps, amod.Options{Mode: mode, Workers: workers}, modkit.WithPorts(domain.Ports{
		Transcripts: tp.Reader,
	}))
	runner := module.MustPortsOf[amod.Ports](am).Runner

	results, err := runner.RunAll(ctx, ids, mode, dryRun)
	if err != nil {
		l.Error().Err(err).Msg("attribution failed")
		return 1
	}
	if err := printResults(os.Stdout, results, report); err != nil {
		l.Error().Err(err).Msg("write results")
		return 1
	}
	return 0
}
