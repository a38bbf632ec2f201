package swaggerkit

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	perr "speakertag/internal/platform/errors"

	docs "speakertag/internal/services/api/docs"
)

// SpecMutator adjusts the parsed spec before it is served
type SpecMutator func(map[string]any)

var mutators []SpecMutator

// docReader is a seam for tests
var docReader = func() string { return docs.SwaggerInfo.ReadDoc() }

// Register adds a spec mutator. Call it from a module's init.
func Register(m SpecMutator) {
	if m != nil {
		mutators = append(mutators, m)
	}
}

func serveDocJSON(opt Options) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var spec map[string]any
		if err := json.Unmarshal([]byte(docReader()), &spec); err != nil {
			http.Error(w, "spec parse error", http.StatusInternalServerError)
			return
		}

		toOAS3(spec, opt.BaseURL)
		if opt.TitleSuffix != "" {
			if info, ok := spec["info"].(map[string]any); ok {
				if title, ok := info["title"].(string); ok {
					info["title"] = title + " " + opt.TitleSuffix
				}
			}
		}
		addErrorEnvelope(spec)
		for _, d := range defaults {
			eachOperation(spec, func(path string, op map[string]any) {
				if d.when == nil || d.when(path) {
					addResponse(op, d.status, d.example)
				}
			})
		}
		for _, m := range mutators {
			m(spec)
		}

		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.Header().Set("Cache-Control", "no-store")
		_ = json.NewEncoder(w).Encode(spec)
	}
}

// toOAS3 lifts swagger 2 and pins 3.1 down to 3.0.3, which the bundled UI renders
func toOAS3(spec map[string]any, url string) {
	delete(spec, "swagger")
	if v, ok := spec["openapi"].(string); !ok || strings.HasPrefix(v, "3.1") {
		spec["openapi"] = "3.0.3"
	}
	if _, ok := spec["servers"]; !ok {
		spec["servers"] = []any{map[string]any{"url": url}}
	}
}

func child(m map[string]any, key string) map[string]any {
	c, ok := m[key].(map[string]any)
	if !ok {
		c = map[string]any{}
		m[key] = c
	}
	return c
}

// addErrorEnvelope describes the error half of the response envelope
func addErrorEnvelope(spec map[string]any) {
	schemas := child(child(spec, "components"), "schemas")
	if _, ok := schemas["ErrorResponse"]; ok {
		return
	}
	codes := make([]any, 0, len(errorCodes))
	for _, c := range errorCodes {
		codes = append(codes, c.String())
	}
	schemas["ErrorResponse"] = map[string]any{
		"type": "object",
		"properties": map[string]any{
			"status_code": map[string]any{"type": "integer", "format": "int32"},
			"status":      map[string]any{"type": "string"},
			"code":        map[string]any{"type": "string", "enum": codes},
			"error":       map[string]any{"type": "string"},
			"field":       map[string]any{"type": "string"},
			"request_id":  map[string]any{"type": "string"},
		},
		"required": []any{"status_code", "status"},
	}
}

var errorCodes = []perr.ErrorCode{
	perr.ErrorCodeUnknown,
	perr.ErrorCodePanic,
	perr.ErrorCodeUnavailable,
	perr.ErrorCodeConflict,
	perr.ErrorCodeInvalidArgument,
	perr.ErrorCodeValidation,
	perr.ErrorCodeJSON,
	perr.ErrorCodeNotFound,
	perr.ErrorCodeDuplicateKey,
	perr.ErrorCodeDB,
}

type defaultResponse struct {
	status  int
	example perr.Wire
	when    func(path string) bool
}

var defaults = []defaultResponse{
	{http.StatusBadRequest, perr.Wire{Code: perr.ErrorCodeValidation, Message: "mode must be one of [line segment]", Field: "mode"}, nil},
	{http.StatusNotFound, perr.Wire{Code: perr.ErrorCodeNotFound, Message: "transcript 42 not found"}, func(p string) bool { return strings.Contains(p, "{") }},
	{http.StatusInternalServerError, perr.Wire{Code: perr.ErrorCodePanic, Message: "panic recovered"}, nil},
}

func eachOperation(spec map[string]any, fn func(path string, op map[string]any)) {
	paths, ok := spec["paths"].(map[string]any)
	if !ok {
		return
	}
	for path, p := range paths {
		node, ok := p.(map[string]any)
		if !ok {
			continue
		}
		for _, o := range node {
			if op, ok := o.(map[string]any); ok {
				fn(path, op)
			}
		}
	}
}

func addResponse(op map[string]any, status int, ex perr.Wire) {
	resps := child(op, "responses")
	key := strconv.Itoa(status)
	if _, ok := resps[key]; ok {
		return
	}
	example := map[string]any{
		"status_code": status,
		"status":      http.StatusText(status),
		"code":        ex.Code.String(),
		"error":       ex.Message,
		"request_id":  "579f33bf50b1/abc-000001",
	}
	if ex.Field != "" {
		example["field"] = ex.Field
	}
	resps[key] = map[string]any{
		"description": http.StatusText(status),
		"content": map[string]any{
			"application/json": map[string]any{
				"schema":  map[string]any{"$ref": "#/components/schemas/ErrorResponse"},
				"example": example,
			},
		},
	}
}
