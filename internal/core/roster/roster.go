// Package roster suggests known speaker spellings for a typed query.
//
// Names are compared case-folded with Jaro-Winkler similarity, on the whole string and
// on each word pair, so "батболд" finds "Батболд сайд". Names containing the query as a
// prefix are always kept and rank first among equal scores
package roster

import (
	"sort"
	"strings"

	"github.com/antzucaro/matchr"
)

const (
	defaultThreshold = 0.8
	defaultLimit     = 10
)

// Option configures a Roster
type Option func(*Roster)

// WithThreshold sets the minimum similarity a suggestion needs. Default 0.8
func WithThreshold(v float64) Option {
	return func(r *Roster) { r.threshold = v }
}

// Suggestion is one ranked name
type Suggestion struct {
	Name  string  `json:"name"`
	Score float64 `json:"score"`
}

type entry struct {
	name   string
	folded string
	words  []string
}

// Roster is a read-only set of known speaker names, safe for concurrent use
type Roster struct {
	entries   []entry
	threshold float64
}

// New builds a roster. Blank and case-folded duplicate names are dropped, first spelling wins
func New(names []string, opts ...Option) *Roster {
	r := &Roster{threshold: defaultThreshold}
	for _, o := range opts {
		o(r)
	}
	seen := make(map[string]struct{}, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		f := strings.ToLower(n)
		if _, ok := seen[f]; ok {
			continue
		}
		seen[f] = struct{}{}
		r.entries = append(r.entries, entry{name: n, folded: f, words: strings.Fields(f)})
	}
	return r
}

// Len is the number of distinct names
func (r *Roster) Len() int { return len(r.entries) }

// Suggest returns up to limit names similar to query, best first.
// limit <= 0 means 10
func (r *Roster) Suggest(query string, limit int) []Suggestion {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" || len(r.entries) == 0 {
		return nil
	}
	if limit <= 0 {
		limit = defaultLimit
	}
	qWords := strings.Fields(q)

	out := make([]Suggestion, 0, limit)
	for _, e := range r.entries {
		s := score(q, qWords, e)
		if strings.HasPrefix(e.folded, q) {
			s = 1
		}
		if s < r.threshold {
			continue
		}
		out = append(out, Suggestion{Name: e.name, Score: s})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Name < out[j].Name
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

func score(q string, qWords []string, e entry) float64 {
	best := matchr.JaroWinkler(q, e.folded, false)
	for _, qw := range qWords {
		for _, ew := range e.words {
			if s := matchr.JaroWinkler(qw, ew, false); s > best {
				best = s
			}
		}
	}
	return best
}
