// Command speakertag-sync moves transcripts and tags between the local database
// (SERVICE_PGSQL_URL) and the cloud database (SYNC_CLOUD_URL)
//
//	speakertag-sync export [-from local|cloud] [-o file]
//	speakertag-sync import [-to local|cloud] [-mode merge|replace|tags_only] file
//	speakertag-sync push | pull
//	speakertag-sync compare
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"speakertag/internal/platform/bootstrap"
	"speakertag/internal/platform/config"
	"speakertag/internal/platform/logger"
	"speakertag/internal/platform/store"
	"speakertag/internal/services/sync/domain"
	"speakertag/internal/services/sync/repo"
	"speakertag/internal/services/sync/service"
)

const appName = "speakertag-sync"

const (
	local = "local"
	cloud = "cloud"
)

func usage(w io.Writer) {
	fmt.Fprintln(w, "usage: speakertag-sync <export|import|push|pull|compare> [flags]")
}

// databases opens the local and cloud stores on demand and closes them together
type databases struct {
	root   config.Conf
	stores map[string]*store.Store
}

func (d *databases) service(ctx context.Context, which string) (*service.Service, error) {
	if st, ok := d.stores[which]; ok {
		return service.New(st.PG, repo.NewPG()), nil
	}
	cfg := store.FromEnv(d.root, appName)
	switch which {
	case local:
		cfg.CH = store.CHConfig{}
	case cloud:
		cfg = cfg.WithPGURL(d.root.MustString("SYNC_CLOUD_URL"))
	default:
		return nil, fmt.Errorf("unknown database %q (want local or cloud)", which)
	}
	st, err := store.Open(ctx, cfg, store.WithLogger(*logger.Named("store."+which)))
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", which, err)
	}
	d.stores[which] = st
	return service.New(st.PG, repo.NewPG()), nil
}

func (d *databases) close() {
	for _, st := range d.stores {
		bootstrap.CloseStore(st)
	}
}

func exportTo(ctx context.Context, exp domain.Exporter, source string, w io.Writer) (domain.Snapshot, error) {
	snap, err := exp.Export(ctx, source)
	if err != nil {
		return domain.Snapshot{}, err
	}
	return snap, service.WriteSnapshot(w, snap)
}

func importFrom(ctx context.Context, imp domain.Importer, r io.Reader, mode domain.Mode) (domain.ImportStats, error) {
	snap, err := service.ReadSnapshot(r)
	if err != nil {
		return domain.ImportStats{}, err
	}
	return imp.Import(ctx, snap, mode)
}

// transfer copies differing tags from one database onto the transcripts the other already has
func transfer(ctx context.Context, from domain.Exporter, to domain.Importer, source string) (domain.ImportStats, error) {
	snap, err := from.Export(ctx, source)
	if err != nil {
		return domain.ImportStats{}, err
	}
	return to.Import(ctx, snap, domain.ModeTagsOnly)
}

func printStats(w io.Writer, st domain.ImportStats) {
	fmt.Fprintf(w, "transcripts: %d, lines: %d, tags updated: %d\n", st.Transcripts, st.Lines, st.TagsUpdated)
}

func printComparison(w io.Writer, c domain.Comparison) {
	fmt.Fprintf(w, "in both: %d\n", c.Both)
	if len(c.OnlyA) > 0 {
		fmt.Fprintf(w, "only local (%d):\n  %s\n", len(c.OnlyA), strings.Join(c.OnlyA, "\n  "))
	}
	if len(c.OnlyB) > 0 {
		fmt.Fprintf(w, "only cloud (%d):\n  %s\n", len(c.OnlyB), strings.Join(c.OnlyB, "\n  "))
	}
	if len(c.TagDiffs) == 0 {
		fmt.Fprintln(w, "tagged line counts match")
		return
	}
	fmt.Fprintln(w, "tagged line counts differ:")
	for _, d := range c.TagDiffs {
		fmt.Fprintf(w, "  %s: local %d, cloud %d\n", d.Filename, d.A, d.B)
	}
}

func main() {
	if len(os.Args) < 2 {
		usage(os.Stderr)
		os.Exit(2)
	}
	os.Exit(run(os.Args[1], os.Args[2:]))
}

func run(cmd string, args []string) int {
	l := bootstrap.Env(appName)
	ctx, stop := bootstrap.SignalContext()
	defer stop()

	dbs := &databases{root: config.New(), stores: map[string]*store.Store{}}
	defer dbs.close()

	fs := flag.NewFlagSet(cmd, flag.ContinueOnError)
	var err error
	switch cmd {
	case "export":
		from := fs.String("from", local, "local or cloud")
		out := fs.String("o", "", "output file (default stdout)")
		if fs.Parse(args) != nil {
			return 2
		}
		err = func() error {
			svc, err := dbs.service(ctx, *from)
			if err != nil {
				return err
			}
			w := io.Writer(os.Stdout)
			if *out != "" {
				f, err := os.Create(*out)
				if err != nil {
					return err
				}
				defer f.Close()
				w = f
			}
			snap, err := exportTo(ctx, svc, *from, w)
			if err == nil {
				l.Info().Str("from", *from).Int("transcripts", len(snap.Transcripts)).Msg("exported")
			}
			return err
		}()

	case "import":
		to := fs.String("to", local, "local or cloud")
		modeFlag := fs.String("mode", string(domain.ModeMerge), "merge, replace or tags_only")
		if fs.Parse(args) != nil {
			return 2
		}
		if fs.NArg() != 1 {
			fmt.Fprintln(os.Stderr, "import needs one snapshot file, - for stdin")
			return 2
		}
		err = func() error {
			mode, err := domain.ParseMode(*modeFlag)
			if err != nil {
				return err
			}
			r := io.Reader(os.Stdin)
			if p := fs.Arg(0); p != "-" {
				f, err := os.Open(p)
				if err != nil {
					return err
				}
				defer f.Close()
				r = f
			}
			svc, err := dbs.service(ctx, *to)
			if err != nil {
				return err
			}
			st, err := importFrom(ctx, svc, r, mode)
			if err == nil {
				printStats(os.Stdout, st)
			}
			return err
		}()

	case "push", "pull":
		if fs.Parse(args) != nil {
			return 2
		}
		from, to := local, cloud
		if cmd == "pull" {
			from, to = cloud, local
		}
		err = func() error {
			src, err := dbs.service(ctx, from)
			if err != nil {
				return err
			}
			dst, err := dbs.service(ctx, to)
			if err != nil {
				return err
			}
			st, err := transfer(ctx, src, dst, from)
			if err == nil {
				printStats(os.Stdout, st)
			}
			return err
		}()

	case "compare":
		if fs.Parse(args) != nil {
			return 2
		}
		err = func() error {
			a, err := dbs.service(ctx, local)
			if err != nil {
				return err
			}
			b, err := dbs.service(ctx, cloud)
			if err != nil {
				return err
			}
			cmp, err := service.Compare(ctx, a, b)
			if err == nil {
				printComparison(os.Stdout, cmp)
			}
			return err
		}()

	default:
		usage(os.Stderr)
		return 2
	}

	if err != nil {
		l.Error().Err(err).Str("cmd", cmd).Msg("sync failed")
		return 1
	}
	return 0
}
