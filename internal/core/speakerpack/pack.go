// Package speakerpack loads and compiles the speaker recognition rules from the embedded speakers.yaml.
// It prepares the ordered rule regexes and the strong change-point indicators for the detector and segmenter
package speakerpack

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed speakers.yaml
var embedded []byte

// Kind says what a rule does with its match
type Kind string

const (
	// KindPlain emits the captured name and title
	KindPlain Kind = "plain"
	// KindRegister emits the captured name and records number -> name in the microphone registry
	KindRegister Kind = "register"
	// KindResolve emits the registry occupant of the captured number, or nothing when unknown
	KindResolve Kind = "resolve"
)

// capture group names a rule template may use
const (
	GroupName   = "name"
	GroupTitle  = "title"
	GroupNumber = "number"
)

type rawBoost struct {
	Window int     `yaml:"window"`
	Amount float64 `yaml:"amount"`
	Cap    float64 `yaml:"cap"`
}

type rawRule struct {
	ID      string  `yaml:"id"`
	Kind    Kind    `yaml:"kind"`
	Weight  float64 `yaml:"weight"`
	Pattern string  `yaml:"pattern"`
}

type rawPack struct {
	Version    int                 `yaml:"version"`
	IgnoreCase *bool               `yaml:"ignore_case"`
	Boost      rawBoost            `yaml:"boost"`
	Fragments  map[string]string   `yaml:"fragments"`
	Slots      map[string][]string `yaml:"slots"`
	Indicators []string            `yaml:"indicators"`
	Rules      []rawRule           `yaml:"rules"`
}

// Boost is the positional bonus for mentions near the start of a unit
type Boost struct {
	Window int     // rune offset below which the bonus applies
	Amount float64 // added to the rule weight
	Cap    float64 // upper bound for any confidence
}

// Rule is one compiled recognition rule
type Rule struct {
	ID       string
	Kind     Kind
	Weight   float64
	Template string // as written in the pack
	Expanded string // after placeholder expansion
	Expr     *regexp.Regexp

	nameIdx, titleIdx, numberIdx int
}

// Pack represents a compiled speaker rule pack
type Pack struct {
	Version    int
	IgnoreCase bool
	Boost      Boost
	Titles     []string

	Rules      []Rule           // evaluation order
	Indicators []*regexp.Regexp // strong change points for the segmenter

	byID map[string]int
}

// Load returns the compiled pack from the embedded speakers.yaml
func Load() (*Pack, error) {
	return Parse(embedded)
}

// LoadFile compiles a pack from a YAML file on disk
func LoadFile(path string) (*Pack, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("speakerpack: read %s: %w", path, err)
	}
	return Parse(b)
}

// Embedded returns the raw embedded pack document
func Embedded() []byte {
	return bytes.Clone(embedded)
}

// Parse decodes and compiles a pack document
func Parse(b []byte) (*Pack, error) {
	var rp rawPack
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(&rp); err != nil && err != io.EOF {
		return nil, fmt.Errorf("speakerpack: decode: %w", err)
	}
	if rp.Version != 1 {
		return nil, fmt.Errorf("speakerpack: unsupported version %d (want 1)", rp.Version)
	}
	if len(rp.Rules) == 0 {
		return nil, fmt.Errorf("speakerpack: no rules")
	}

	p := &Pack{
		Version:    rp.Version,
		IgnoreCase: rp.IgnoreCase == nil || *rp.IgnoreCase,
		Boost:      Boost{Window: rp.Boost.Window, Amount: rp.Boost.Amount, Cap: rp.Boost.Cap},
		Titles:     rp.Slots["TITLES"],
		byID:       make(map[string]int, len(rp.Rules)),
	}
	if p.Boost.Cap <= 0 || p.Boost.Cap > 1 {
		return nil, fmt.Errorf("speakerpack: boost cap %v out of range (0,1]", p.Boost.Cap)
	}
	if p.Boost.Window < 0 || p.Boost.Amount < 0 {
		return nil, fmt.Errorf("speakerpack: negative boost window or amount")
	}

	slots := make(map[string]string, len(rp.Slots)+len(rp.Fragments))
	for name, frag := range rp.Fragments {
		if _, err := regexp.Compile(frag); err != nil {
			return nil, fmt.Errorf("speakerpack: fragment %s: %w", name, err)
		}
		slots[name] = frag
	}
	for name, values := range rp.Slots {
		if _, dup := slots[name]; dup {
			return nil, fmt.Errorf("speakerpack: %s is both a fragment and a slot", name)
		}
		slots[name] = alternation(values, p.IgnoreCase)
	}

	for i, src := range rp.Indicators {
		re, err := p.compile(src, slots)
		if err != nil {
			return nil, fmt.Errorf("speakerpack: indicator %d: %w", i, err)
		}
		p.Indicators = append(p.Indicators, re)
	}

	for _, r := range rp.Rules {
		rule, err := p.compileRule(r, slots)
		if err != nil {
			return nil, fmt.Errorf("speakerpack: rule %q: %w", r.ID, err)
		}
		if _, dup := p.byID[rule.ID]; dup {
			return nil, fmt.Errorf("speakerpack: duplicate rule id %q", rule.ID)
		}
		p.byID[rule.ID] = len(p.Rules)
		p.Rules = append(p.Rules, rule)
	}
	return p, nil
}

func (p *Pack) compileRule(r rawRule, slots map[string]string) (Rule, error) {
	id := strings.TrimSpace(r.ID)
	if id == "" {
		return Rule{}, fmt.Errorf("missing id")
	}
	if r.Weight <= 0 || r.Weight > p.Boost.Cap {
		return Rule{}, fmt.Errorf("weight %v out of range (0,%v]", r.Weight, p.Boost.Cap)
	}
	exp, err := expand(r.Pattern, slots)
	if err != nil {
		return Rule{}, err
	}
	re, err := p.compile(r.Pattern, slots)
	if err != nil {
		return Rule{}, err
	}
	rule := Rule{
		ID:        id,
		Kind:      r.Kind,
		Weight:    r.Weight,
		Template:  r.Pattern,
		Expanded:  exp,
		Expr:      re,
		nameIdx:   re.SubexpIndex(GroupName),
		titleIdx:  re.SubexpIndex(GroupTitle),
		numberIdx: re.SubexpIndex(GroupNumber),
	}

	switch rule.Kind {
	case KindPlain:
		if rule.nameIdx < 0 {
			return Rule{}, fmt.Errorf("plain rule needs a (?P<name>) group")
		}
	case KindRegister:
		if rule.nameIdx < 0 || rule.numberIdx < 0 {
			return Rule{}, fmt.Errorf("register rule needs (?P<name>) and (?P<number>) groups")
		}
	case KindResolve:
		if rule.numberIdx < 0 {
			return Rule{}, fmt.Errorf("resolve rule needs a (?P<number>) group")
		}
	default:
		return Rule{}, fmt.Errorf("unknown kind %q", r.Kind)
	}
	return rule, nil
}

func (p *Pack) compile(tmpl string, slots map[string]string) (*regexp.Regexp, error) {
	exp, err := expand(tmpl, slots)
	if err != nil {
		return nil, err
	}
	if p.IgnoreCase {
		exp = "(?i)" + exp
	}
	re, err := regexp.Compile(exp)
	if err != nil {
		return nil, fmt.Errorf("compile %q: %w", exp, err)
	}
	return re, nil
}

// Rule returns the rule with the given id
func (p *Pack) Rule(id string) (Rule, bool) {
	i, ok := p.byID[id]
	if !ok {
		return Rule{}, false
	}
	return p.Rules[i], true
}

// Score is the confidence of a match of r starting at rune offset pos
func (p *Pack) Score(r Rule, pos int) float64 {
	w := r.Weight
	if pos >= 0 && pos < p.Boost.Window {
		w += p.Boost.Amount
	}
	if w > p.Boost.Cap {
		w = p.Boost.Cap
	}
	return w
}

// Groups extracts the name, title and number captures from a submatch index slice of r
func (r Rule) Groups(s string, loc []int) (name, title, number string) {
	return group(s, loc, r.nameIdx), group(s, loc, r.titleIdx), group(s, loc, r.numberIdx)
}

func group(s string, loc []int, idx int) string {
	if idx < 0 || 2*idx+1 >= len(loc) || loc[2*idx] < 0 {
		return ""
	}
	return strings.TrimSpace(s[loc[2*idx]:loc[2*idx+1]])
}

var placeholder = regexp.MustCompile(`\{([A-Z][A-Z0-9_]*)\}`)

// expand replaces {NAME} placeholders with fragments or slot alternations.
// Unknown placeholders are an error; quantifiers like {0,2} are left alone
func expand(pattern string, slots map[string]string) (string, error) {
	var missing []string
	out := placeholder.ReplaceAllStringFunc(pattern, func(m string) string {
		name := m[1 : len(m)-1]
		v, ok := slots[name]
		if !ok {
			missing = append(missing, name)
			return m
		}
		return v
	})
	if len(missing) > 0 {
		return "", fmt.Errorf("unknown placeholder(s) %s in %q", strings.Join(missing, ","), pattern)
	}
	return out, nil
}

// alternation renders a slot list as a non-capturing group of quoted values.
// Source order is kept, so earlier entries win ties the way the rule author wrote them
func alternation(values []string, foldCase bool) string {
	seen := make(map[string]struct{}, len(values))
	parts := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		key := v
		if foldCase {
			key = strings.ToLower(v)
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		parts = append(parts, regexp.QuoteMeta(v))
	}
	return "(?:" + strings.Join(parts, "|") + ")"
}
