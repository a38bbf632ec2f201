package httpkit

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	perr "speakertag/internal/platform/errors"
)

// PathID reads a positive integer path parameter
func PathID(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, perr.WithField(perr.InvalidArgf("%s must be a positive integer, got %q", name, raw), name)
	}
	return id, nil
}

// Query returns the trimmed query parameter name, or ""
func Query(r *http.Request, name string) string {
	return strings.TrimSpace(r.URL.Query().Get(name))
}

// QueryInt reads an integer query parameter. Absent means def
func QueryInt(r *http.Request, name string, def int) (int, error) {
	raw := Query(r, name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, perr.WithField(perr.InvalidArgf("%s must be an integer, got %q", name, raw), name)
	}
	return n, nil
}

// QueryBool reads a boolean query parameter. Absent means false
func QueryBool(r *http.Request, name string) (bool, error) {
	raw := Query(r, name)
	if raw == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return false, perr.WithField(perr.InvalidArgf("%s must be true or false, got %q", name, raw), name)
	}
	return b, nil
}
