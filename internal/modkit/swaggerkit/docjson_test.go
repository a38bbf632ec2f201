package swaggerkit

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	phttp "speakertag/internal/platform/net/http"
	"speakertag/internal/platform/testkit"
)

func serve(t *testing.T, opt Options, path string) *httptest.ResponseRecorder {
	t.Helper()
	mux := chi.NewRouter()
	Mount(phttp.AdaptChi(mux), opt)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestMount_ServesSpecWithDefaults(t *testing.T) {
	rec := serve(t, Options{Enabled: true}, "/api/docs/doc.json")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", rec.Code, rec.Body.String())
	}
	var spec map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &spec); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if spec["openapi"] != "3.0.3" {
		t.Fatalf("openapi = %v", spec["openapi"])
	}
	paths := spec["paths"].(map[string]any)
	op := paths["/transcripts/{id}/lines/bulk"].(map[string]any)["patch"].(map[string]any)
	resps := op["responses"].(map[string]any)
	for _, code := range []string{"200", "400", "404", "500"} {
		if _, ok := resps[code]; !ok {
			t.Fatalf("bulk tag responses missing %s: %v", code, resps)
		}
	}
	testkit.MustContain(t, rec.Body.String(), `"url":"/api/v1"`)
}

func TestMount_Disabled(t *testing.T) {
	if rec := serve(t, Options{}, "/api/docs/doc.json"); rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestMutatorsRun(t *testing.T) {
	saved := mutators
	t.Cleanup(func() { mutators = saved })
	Register(func(spec map[string]any) { spec["x-marker"] = "speakers" })
	Register(nil)

	rec := serve(t, Options{Enabled: true}, "/api/docs/doc.json")
	testkit.MustContain(t, rec.Body.String(), `"x-marker":"speakers"`)
}

func TestBadDoc(t *testing.T) {
	saved := docReader
	t.Cleanup(func() { docReader = saved })
	docReader = func() string { return "{" }

	if rec := serve(t, Options{Enabled: true}, "/api/docs/doc.json"); rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
}

func TestErrorEnvelope(t *testing.T) {
	saved := docReader
	t.Cleanup(func() { docReader = saved })
	docReader = func() string {
		return `{"swagger":"2.0","info":{"title":"speakertag"},"paths":{"/health":{"get":{"responses":{"200":{}}}}}}`
	}

	rec := serve(t, Options{Enabled: true, BaseURL: "/v2", TitleSuffix: "(staging)"}, "/api/docs/doc.json")
	var spec map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &spec); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if _, ok := spec["swagger"]; ok {
		t.Fatalf("swagger key should be dropped")
	}
	if got := spec["info"].(map[string]any)["title"]; got != "speakertag (staging)" {
		t.Fatalf("title = %v", got)
	}
	resps := spec["paths"].(map[string]any)["/health"].(map[string]any)["get"].(map[string]any)["responses"].(map[string]any)
	if _, ok := resps["404"]; ok {
		t.Fatalf("404 added to a path without parameters")
	}
	body := rec.Body.String()
	testkit.MustContain(t, body, `"url":"/v2"`)
	testkit.MustContain(t, body, `"code":"validation"`)
	testkit.MustContain(t, body, `"field":"mode"`)
	testkit.MustContain(t, body, `"not_found"`)
}
