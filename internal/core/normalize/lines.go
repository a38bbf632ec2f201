package normalize

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// maxLine bounds a single transcript line; parliamentary lines can run to tens of kilobytes
const maxLine = 4 << 20

// Lines reads r and returns its normalized non-blank lines in order
func Lines(r io.Reader) ([]string, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64<<10), maxLine)
	var out []string
	for sc.Scan() {
		if l := Line(sc.Text()); l != "" {
			out = append(out, l)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("normalize: read lines: %w", err)
	}
	return out, nil
}

// Split is Lines over an in-memory document
func Split(content string) []string {
	parts := strings.Split(content, "\n")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if l := Line(p); l != "" {
			out = append(out, l)
		}
	}
	return out
}
