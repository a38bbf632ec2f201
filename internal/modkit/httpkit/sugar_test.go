package httpkit

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	perr "speakertag/internal/platform/errors"
	phttp "speakertag/internal/platform/net/http"
)

type speakerBody struct {
	Speaker string `json:"speaker" validate:"speaker"`
}

func newRouter() (*chi.Mux, Router) {
	mux := chi.NewRouter()
	return mux, phttp.AdaptChi(mux)
}

func do(mux http.Handler, method, path, body string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(method, path, strings.NewReader(body)))
	return rec
}

func TestSugar(t *testing.T) {
	mux, r := newRouter()
	Get(r, "/t/{id}", func(req *http.Request) (any, error) {
		id, err := PathID(req, "id")
		if err != nil {
			return nil, err
		}
		return map[string]int64{"id": id}, nil
	})
	PatchJSON(r, "/t/{id}", func(_ *http.Request, in speakerBody) (any, error) {
		return map[string]string{"speaker": in.Speaker}, nil
	})
	PostJSON(r, "/t/{id}/run", func(_ *http.Request, in speakerBody) (any, error) {
		return phttp.Created(in.Speaker), nil
	})

	cases := []struct {
		method, path, body string
		status             int
		want               string
	}{
		{http.MethodGet, "/t/7", "", 200, `"id":7`},
		{http.MethodGet, "/t/zero", "", 400, `"field":"id"`},
		{http.MethodGet, "/t/-3", "", 400, `positive integer`},
		{http.MethodPatch, "/t/7", `{"speaker":"Бат сайд"}`, 200, `"speaker":"Бат сайд"`},
		{http.MethodPatch, "/t/7", `{"speaker":1}`, 400, `invalid JSON`},
		{http.MethodPost, "/t/7/run", `{"speaker":"Дорж"}`, 201, `"data":"Дорж"`},
	}
	for _, c := range cases {
		rec := do(mux, c.method, c.path, c.body)
		if rec.Code != c.status || !strings.Contains(rec.Body.String(), c.want) {
			t.Fatalf("%s %s: %d %s", c.method, c.path, rec.Code, rec.Body.String())
		}
	}
}

func TestQueryHelpers(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?page=3&per_page=x&search=+%D1%81%D0%B0%D0%B9%D0%B4+&dry_run=1&bad=maybe", nil)

	if n, err := QueryInt(req, "page", 1); err != nil || n != 3 {
		t.Fatalf("page = %d, %v", n, err)
	}
	if n, err := QueryInt(req, "limit", 10); err != nil || n != 10 {
		t.Fatalf("limit default = %d, %v", n, err)
	}
	if _, err := QueryInt(req, "per_page", 100); !perr.IsCode(err, perr.ErrorCodeInvalidArgument) {
		t.Fatalf("per_page err = %v", err)
	}
	if got := Query(req, "search"); got != "сайд" {
		t.Fatalf("search = %q", got)
	}
	if b, err := QueryBool(req, "dry_run"); err != nil || !b {
		t.Fatalf("dry_run = %v, %v", b, err)
	}
	if b, err := QueryBool(req, "absent"); err != nil || b {
		t.Fatalf("absent = %v, %v", b, err)
	}
	if _, err := QueryBool(req, "bad"); err == nil {
		t.Fatal("expected error for bad bool")
	}
}

func TestAliases(t *testing.T) {
	if OK("x").Status != http.StatusOK {
		t.Fatal("OK status")
	}
	if Error(perr.NotFoundf("gone")).Body == nil {
		t.Fatal("Error body")
	}
}
