package modkit

import (
	"net/http"
	"net/http/httptest"
	"testing"

	phttp "speakertag/internal/platform/net/http"

	"github.com/go-chi/chi/v5"
)

func TestBuild_Defaults(t *testing.T) {
	t.Parallel()

	b := Build()
	if b.Name != "" || b.Prefix != "" || b.Ports != nil || b.Register != nil || len(b.Mw) != 0 {
		t.Fatalf("defaults = %+v", b)
	}
}

func TestBuild_CopiesMiddlewares(t *testing.T) {
	t.Parallel()

	tag := func(v string) func(http.Handler) http.Handler {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Add("X-Mw", v)
				next.ServeHTTP(w, r)
			})
		}
	}
	mw := []func(http.Handler) http.Handler{tag("a"), tag("b")}

	b := Build(
		WithName("transcripts-api"),
		WithPrefix("/meta"),
		WithMiddlewares(mw...),
		WithPorts(struct{ ID int64 }{ID: 7}),
	)
	mw[0] = tag("z")

	if b.Name != "transcripts-api" || b.Prefix != "/meta" {
		t.Fatalf("built = %+v", b)
	}
	if p, ok := b.Ports.(struct{ ID int64 }); !ok || p.ID != 7 {
		t.Fatalf("ports = %#v", b.Ports)
	}

	rec := httptest.NewRecorder()
	b.Mw[0](http.HandlerFunc(func(http.ResponseWriter, *http.Request) {})).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if got := rec.Header().Get("X-Mw"); got != "a" {
		t.Fatalf("Built.Mw follows source slice mutation: %q", got)
	}
}

func TestBuilt_Mount(t *testing.T) {
	t.Parallel()

	ok := func(body string) phttp.Handler {
		return func(w http.ResponseWriter, _ *http.Request) { _, _ = w.Write([]byte(body)) }
	}
	stamp := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Module", "meta")
			next.ServeHTTP(w, r)
		})
	}

	cases := []struct {
		name     string
		opts     []Option
		path     string
		wantCode int
		wantMw   bool
	}{
		{name: "prefixed", opts: []Option{WithPrefix("/meta"), WithMiddlewares(stamp)}, path: "/meta/health", wantCode: 200, wantMw: true},
		{name: "prefixed misses root", opts: []Option{WithPrefix("/meta")}, path: "/health", wantCode: 404},
		{name: "group", opts: []Option{WithMiddlewares(stamp)}, path: "/health", wantCode: 200, wantMw: true},
		{name: "hook", opts: []Option{WithRegister(func(r phttp.Router) { r.Get("/extra", ok("extra")) })}, path: "/extra", wantCode: 200},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			mux := chi.NewRouter()
			Build(tc.opts...).Mount(phttp.AdaptChi(mux), func(r phttp.Router) {
				r.Get("/health", ok("ok"))
			})

			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tc.path, nil))
			if rec.Code != tc.wantCode {
				t.Fatalf("GET %s = %d, want %d", tc.path, rec.Code, tc.wantCode)
			}
			if got := rec.Header().Get("X-Module") == "meta"; got != tc.wantMw {
				t.Fatalf("middleware applied = %v, want %v", got, tc.wantMw)
			}
		})
	}
}
