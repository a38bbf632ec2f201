// Package normalize cleans transcript text before segmentation and detection
// Pipeline order
// 1 Sanitize control bytes and invalid UTF-8
// 2 Unicode NFC composition
// 3 Remove format characters (zero-width, BOM, soft hyphen)
// 4 Width fold fullwidth digits and punctuation
// 5 Collapse whitespace runs to a single ASCII space and trim
//
// Case and combining letters are kept: Cyrillic ё and й are distinct letters and speaker names depend on them
package normalize

import (
	"strings"
	"sync"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"
)

var chainPool = sync.Pool{
	New: func() any {
		return transform.Chain(
			norm.NFC,
			runes.Remove(runes.In(unicode.Cf)),
			width.Fold,
		)
	},
}

// Line returns the normalized form of one transcript line
func Line(s string) string {
	if s == "" {
		return ""
	}
	s = Sanitize(s)

	tr := chainPool.Get().(transform.Transformer)
	ns, _, err := transform.String(tr, s)
	tr.Reset()
	chainPool.Put(tr)
	if err != nil {
		ns = s
	}
	return collapseSpaces(ns)
}

// collapseSpaces converts every whitespace run, newlines included, to one ASCII space and trims the edges
func collapseSpaces(s string) string {
	if s == "" {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	inWS := false
	for _, r := range s {
		if unicode.IsSpace(r) {
			inWS = true
			continue
		}
		if inWS && b.Len() > 0 {
			b.WriteByte(' ')
		}
		inWS = false
		b.WriteRune(r)
	}
	return b.String()
}
