package middleware_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	pnet "speakertag/internal/platform/net"
	"speakertag/internal/platform/net/middleware"

	chimw "github.com/go-chi/chi/v5/middleware"
)

func TestAccessLogZerolog_PassesResponseThrough(t *testing.T) {
	cases := []struct {
		name   string
		opt    middleware.AccessLogOptions
		status int
		chunks []string
		want   string
	}{
		{"created", middleware.AccessLogOptions{}, http.StatusCreated, []string{"ok"}, "ok"},
		{"slow mark", middleware.AccessLogOptions{Slow: time.Nanosecond}, 0, []string{"slow"}, "slow"},
		{"server error", middleware.AccessLogOptions{}, http.StatusInternalServerError, []string{"boom"}, "boom"},
		{"counted bytes", middleware.AccessLogOptions{}, 0, []string{"Бат", " сайд"}, "Бат сайд"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if c.status != 0 {
					w.WriteHeader(c.status)
				}
				for _, s := range c.chunks {
					_, _ = io.WriteString(w, s)
				}
			})
			rr := httptest.NewRecorder()
			middleware.AccessLogZerolog(c.opt)(next).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/transcripts", nil))

			want := c.status
			if want == 0 {
				want = http.StatusOK
			}
			if rr.Code != want || rr.Body.String() != c.want {
				t.Fatalf("got %d %q, want %d %q", rr.Code, rr.Body.String(), want, c.want)
			}
		})
	}
}

func TestAccessLogZerolog_KeepsRequestID(t *testing.T) {
	var seen string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = pnet.RequestID(r.Context())
	})
	chain := chimw.RequestID(middleware.AccessLogZerolog(middleware.AccessLogOptions{})(next))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-Id", "review-42")
	chain.ServeHTTP(httptest.NewRecorder(), req)
	if seen != "review-42" {
		t.Fatalf("request id = %q", seen)
	}
}
