// Package middleware assembles the chi and in-house middleware the API runs behind
package middleware

import (
	"compress/flate"
	"net/http"
	"time"

	pstrings "speakertag/internal/platform/strings"

	chimw "github.com/go-chi/chi/v5/middleware"
	chicors "github.com/go-chi/cors"
)

// compressible are the content types exports and envelopes are served as
var compressible = []string{"application/json", "text/plain", "text/csv", "application/x-ndjson"}

// StackOptions tune Stack. Zero durations take the defaults.
type StackOptions struct {
	AllowedOrigins []string
	Timeout        time.Duration // default 60s
	Slow           time.Duration // access log warn threshold, default 2s
	Heartbeat      string        // GET path answered before routing, empty disables
}

// Stack returns the chain in application order, outermost first. Request ids come
// first so panics and access lines carry them.
func Stack(opt StackOptions) []func(http.Handler) http.Handler {
	if opt.Timeout <= 0 {
		opt.Timeout = 60 * time.Second
	}
	if opt.Slow <= 0 {
		opt.Slow = 2 * time.Second
	}
	stack := []func(http.Handler) http.Handler{
		chimw.RequestID,
		chimw.RealIP,
		RecoverJSON,
		chimw.NoCache,
		AccessLogZerolog(AccessLogOptions{Slow: opt.Slow}),
		CORS(CORSOptions{AllowedOrigins: opt.AllowedOrigins}),
		chimw.NewCompressor(flate.BestSpeed, compressible...).Handler,
	}
	if opt.Heartbeat != "" {
		stack = append(stack, chimw.Heartbeat(opt.Heartbeat))
	}
	return append(stack, chimw.StripSlashes, chimw.Timeout(opt.Timeout))
}

// CORSOptions is the part of go-chi/cors the API configures
type CORSOptions struct {
	AllowedOrigins   []string
	AllowedMethods   []string
	AllowedHeaders   []string
	ExposedHeaders   []string
	AllowCredentials bool
	MaxAge           int
}

// CORS wraps go-chi/cors. Empty lists take what the tagging UI needs.
func CORS(o CORSOptions) func(http.Handler) http.Handler {
	return chicors.Handler(chicors.Options{
		AllowedOrigins:   o.AllowedOrigins,
		AllowedMethods:   pstrings.IfEmpty(o.AllowedMethods, []string{"GET", "POST", "PATCH", "OPTIONS"}),
		AllowedHeaders:   pstrings.IfEmpty(o.AllowedHeaders, []string{"Accept", "Content-Type", "X-Request-ID"}),
		ExposedHeaders:   pstrings.IfEmpty(o.ExposedHeaders, []string{"Content-Disposition", "X-Request-ID"}),
		AllowCredentials: o.AllowCredentials,
		MaxAge:           o.MaxAge,
	})
}
