package module

import (
	"fmt"
	"strings"
	"sync"
	"testing"

	phttp "speakertag/internal/platform/net/http"
)

type lister interface{ List() []string }

type names []string

func (n names) List() []string { return n }

type bundle struct {
	Reader  lister
	private lister
}

type fakeModule struct {
	name  string
	ports any
}

func (m fakeModule) MountRoutes(phttp.Router) {}
func (m fakeModule) Ports() any               { return m.ports }
func (m fakeModule) Name() string             { return m.name }

func TestPortsOf(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		ports  any
		wantOK bool
	}{
		{name: "nil", ports: nil},
		{name: "direct", ports: names{"a"}, wantOK: true},
		{name: "bundle field", ports: bundle{Reader: names{"a"}}, wantOK: true},
		{name: "unexported field ignored", ports: bundle{private: names{"a"}}},
		{name: "unrelated", ports: 42},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := PortsOf[lister](fakeModule{name: "transcripts", ports: tc.ports})
			if ok != tc.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tc.wantOK)
			}
			if ok && got.List()[0] != "a" {
				t.Fatalf("got = %v", got.List())
			}
		})
	}
}

func TestMustPortsOf(t *testing.T) {
	t.Parallel()

	m := fakeModule{name: "attribution", ports: bundle{Reader: names{"x"}}}
	if got := MustPortsOf[lister](m); got.List()[0] != "x" {
		t.Fatalf("got = %v", got.List())
	}

	defer func() {
		msg := fmt.Sprint(recover())
		if !strings.Contains(msg, "attribution") {
			t.Fatalf("panic = %q, want module name", msg)
		}
	}()
	MustPortsOf[lister](fakeModule{name: "attribution"})
}

func TestRegistry(t *testing.T) {
	t.Cleanup(Reset)

	Register("transcripts", names{"one"})
	if got, ok := PortsAs[names]("transcripts"); !ok || got[0] != "one" {
		t.Fatalf("PortsAs = %v %v", got, ok)
	}
	if _, ok := PortsAs[int]("transcripts"); ok {
		t.Fatalf("type mismatch must report false")
	}
	if _, ok := PortsAs[names]("missing"); ok {
		t.Fatalf("missing name must report false")
	}

	Register("transcripts", names{"two"})
	if got, _ := PortsAs[names]("transcripts"); got[0] != "two" {
		t.Fatalf("Register should overwrite, got %v", got)
	}

	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			Register(fmt.Sprintf("m%d", i), i)
			_, _ = PortsAs[int](fmt.Sprintf("m%d", i))
		}()
	}
	wg.Wait()

	Reset()
	if _, ok := PortsAs[names]("transcripts"); ok {
		t.Fatalf("Reset left entries behind")
	}
}
