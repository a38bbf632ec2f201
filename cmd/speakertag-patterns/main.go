// Command speakertag-patterns checks and inspects speaker rule tables
//
//	speakertag-patterns validate [file]
//	speakertag-patterns dump [file]
//	speakertag-patterns try [-file f] "За. Бат сайд, асуулт байна."
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"speakertag/internal/core/mention"
	"speakertag/internal/core/speakerpack"
)

func must(err error) {
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func load(path string) (*speakerpack.Pack, error) {
	if path == "" {
		return speakerpack.Load()
	}
	return speakerpack.LoadFile(path)
}

func validate(w io.Writer, p *speakerpack.Pack) error {
	kinds := map[speakerpack.Kind]int{}
	for _, r := range p.Rules {
		kinds[r.Kind]++
	}
	_, err := fmt.Fprintf(w, "ok: version %d, %d rules (%d plain, %d register, %d resolve), %d indicators, %d titles\n",
		p.Version, len(p.Rules), kinds[speakerpack.KindPlain], kinds[speakerpack.KindRegister], kinds[speakerpack.KindResolve],
		len(p.Indicators), len(p.Titles))
	return err
}

type dumpRule struct {
	ID       string  `yaml:"id"`
	Kind     string  `yaml:"kind"`
	Weight   float64 `yaml:"weight"`
	Template string  `yaml:"template"`
	Expanded string  `yaml:"expanded"`
}

type dumpPack struct {
	Version    int        `yaml:"version"`
	IgnoreCase bool       `yaml:"ignore_case"`
	Titles     []string   `yaml:"titles"`
	Indicators []string   `yaml:"indicators"`
	Rules      []dumpRule `yaml:"rules"`
}

// dump writes the compiled table with every placeholder expanded
func dump(w io.Writer, p *speakerpack.Pack) error {
	out := dumpPack{Version: p.Version, IgnoreCase: p.IgnoreCase, Titles: p.Titles}
	for _, re := range p.Indicators {
		out.Indicators = append(out.Indicators, re.String())
	}
	for _, r := range p.Rules {
		out.Rules = append(out.Rules, dumpRule{
			ID:       r.ID,
			Kind:     string(r.Kind),
			Weight:   r.Weight,
			Template: r.Template,
			Expanded: r.Expanded,
		})
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(out); err != nil {
		return err
	}
	return enc.Close()
}

// try runs the detector over each line of text as one pass, so microphone registrations carry
func try(w io.Writer, p *speakerpack.Pack, text string) error {
	pass := mention.New(p).NewPass()
	found := 0
	for i, line := range strings.Split(text, "\n") {
		for _, m := range pass.Detect(line) {
			found++
			if _, err := fmt.Fprintf(w, "line %d @%d  %-24s %.2f  %s\n", i+1, m.Position, m.Pattern, m.Confidence, m.FullName); err != nil {
				return err
			}
		}
	}
	if found == 0 {
		_, err := fmt.Fprintln(w, "no mentions")
		return err
	}
	return nil
}

func main() {
	if len(os.Args) < 2 {
		_, _ = fmt.Fprintln(os.Stderr, "usage: speakertag-patterns <validate|dump|try> ...")
		os.Exit(2)
	}
	cmd, args := os.Args[1], os.Args[2:]

	switch cmd {
	case "validate", "dump":
		path := ""
		if len(args) > 0 {
			path = args[0]
		}
		p, err := load(path)
		must(err)
		if cmd == "validate" {
			must(validate(os.Stdout, p))
			return
		}
		must(dump(os.Stdout, p))

	case "try":
		fs := flag.NewFlagSet("try", flag.ExitOnError)
		file := fs.String("file", "", "rule table (default: embedded)")
		must(fs.Parse(args))
		if fs.NArg() == 0 {
			_, _ = fmt.Fprintln(os.Stderr, "try needs sample text")
			os.Exit(2)
		}
		p, err := load(*file)
		must(err)
		must(try(os.Stdout, p, strings.Join(fs.Args(), " ")))

	default:
		_, _ = fmt.Fprintf(os.Stderr, "unknown command %q\n", cmd)
		os.Exit(2)
	}
}
