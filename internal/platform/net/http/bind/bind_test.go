package bind

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	perr "speakertag/internal/platform/errors"
)

type tagRequest struct {
	Speaker  string `json:"speaker" validate:"speaker"`
	TaggedBy string `json:"tagged_by,omitempty" validate:"omitempty,max=10"`
}

type runRequest struct {
	Mode   string `json:"mode" validate:"omitempty,attribution_mode"`
	Format string `json:"format,omitempty" validate:"omitempty,export_format"`
	DryRun bool   `json:"dry_run"`
}

func post(body string) *http.Request {
	if body == "" {
		return httptest.NewRequest(http.MethodPost, "/", http.NoBody)
	}
	return httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
}

func TestParseJSON_Success(t *testing.T) {
	got, err := ParseJSON[tagRequest](post(`{"speaker":"Бат сайд","tagged_by":"review"}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Speaker != "Бат сайд" || got.TaggedBy != "review" {
		t.Fatalf("got %+v", got)
	}
}

func TestParseJSON_Errors(t *testing.T) {
	cases := []struct {
		name string
		body string
		opts []JSONOptions
		want perr.ErrorCode
	}{
		{"empty body", "", nil, perr.ErrorCodeJSON},
		{"broken json", `{`, nil, perr.ErrorCodeJSON},
		{"unknown field", `{"speaker":"Бат","boom":1}`, nil, perr.ErrorCodeJSON},
		{"over size limit", `{"speaker":"Бат сайд"}`, []JSONOptions{{MaxBytes: 5, DisallowUnknown: true}}, perr.ErrorCodeJSON},
		{"tagged_by too long", `{"speaker":"Бат","tagged_by":"someone-long"}`, nil, perr.ErrorCodeValidation},
		{"multi-line speaker", `{"speaker":"Бат\nсайд"}`, nil, perr.ErrorCodeValidation},
		{"speaker too long", `{"speaker":"` + strings.Repeat("я", 256) + `"}`, nil, perr.ErrorCodeValidation},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := ParseJSON[tagRequest](post(c.body), c.opts...)
			if perr.CodeOf(err) != c.want {
				t.Fatalf("code = %v, want %v (%v)", perr.CodeOf(err), c.want, err)
			}
		})
	}
}

func TestParseJSON_EmptySpeakerClears(t *testing.T) {
	got, err := ParseJSON[tagRequest](post(`{"speaker":""}`))
	if err != nil || got.Speaker != "" {
		t.Fatalf("got %+v, %v", got, err)
	}
}

func TestParseJSON_Options(t *testing.T) {
	got, err := ParseJSON[runRequest](post(""), JSONOptions{AllowEmptyBody: true})
	if err != nil || got != (runRequest{}) {
		t.Fatalf("empty body allowed: got %+v, %v", got, err)
	}

	got, err = ParseJSON[runRequest](post(`{"mode":"line","extra":1}`), JSONOptions{DisallowUnknown: false})
	if err != nil || got.Mode != "line" {
		t.Fatalf("unknown fields allowed: got %+v, %v", got, err)
	}

	if _, err := ParseJSON[runRequest](post(`{"mode":"line"}`), JSONOptions{MaxBytes: 0}); err != nil {
		t.Fatalf("no limit: %v", err)
	}
}

func TestParseJSON_TrailingData_Seam(t *testing.T) {
	orig := jsonMore
	jsonMore = func(_ *json.Decoder) bool { return true }
	defer func() { jsonMore = orig }()

	_, err := ParseJSON[runRequest](post(`{"mode":"line"}`))
	if perr.CodeOf(err) != perr.ErrorCodeJSON {
		t.Fatalf("expected JSON error for trailing data, got %v (%v)", perr.CodeOf(err), err)
	}
}

func TestParseJSON_NonStructIsJSONError(t *testing.T) {
	_, err := ParseJSON[int](post(`5`))
	if perr.CodeOf(err) != perr.ErrorCodeJSON {
		t.Fatalf("expected JSON-coded error, got %v (%v)", perr.CodeOf(err), err)
	}
}

func TestDomainTags(t *testing.T) {
	Init()
	cases := []struct {
		in      runRequest
		wantMsg string
	}{
		{runRequest{Mode: "SEGMENT", Format: "CSV"}, ""},
		{runRequest{}, ""},
		{runRequest{Mode: "sentence"}, "mode must be one of [line segment]"},
		{runRequest{Mode: "line", Format: "docx"}, "format must be one of [txt json jsonl csv srt]"},
	}
	for _, c := range cases {
		err := Get().Validator.Struct(c.in)
		_, msg := ValidationFieldAndMessage(err)
		if msg != c.wantMsg {
			t.Fatalf("%+v: message = %q, want %q", c.in, msg, c.wantMsg)
		}
	}
}

func TestShortTranslations(t *testing.T) {
	Init()
	type s struct {
		Page    int `json:"page,omitempty" validate:"min=1"`
		PerPage int `json:"per_page" validate:"max=500"`
	}
	_, msg := ValidationFieldAndMessage(Get().Validator.Struct(s{Page: 0, PerPage: 1}))
	if msg != "page must be at least 1" {
		t.Fatalf("min message = %q", msg)
	}
	field, msg := ValidationFieldAndMessage(Get().Validator.Struct(s{Page: 1, PerPage: 501}))
	if field != "per_page" || msg != "per_page must be at most 500" {
		t.Fatalf("max = %q %q", field, msg)
	}
}

func TestTagNameFallsBackToFieldName(t *testing.T) {
	Init()
	type s struct {
		Secret int `json:"-" validate:"min=1"`
		Plain  int `validate:"min=1"`
	}
	field, _ := ValidationFieldAndMessage(Get().Validator.Struct(s{Plain: 1}))
	if field != "Secret" {
		t.Fatalf("field = %s", field)
	}
	field, _ = ValidationFieldAndMessage(Get().Validator.Struct(s{Secret: 1}))
	if field != "Plain" {
		t.Fatalf("field = %s", field)
	}
}

func TestValidationFieldAndMessage_GenericError(t *testing.T) {
	field, msg := ValidationFieldAndMessage(errors.New("boom"))
	if field != "" || msg != "boom" {
		t.Fatalf("expected passthrough, got field=%q msg=%q", field, msg)
	}
}

func TestParseJSON_ValidationNamesField(t *testing.T) {
	_, err := ParseJSON[tagRequest](post(`{"speaker":"Бат","tagged_by":"someone-long"}`))
	e, ok := perr.As(err)
	if !ok {
		t.Fatalf("expected project error, got %v", err)
	}
	if e.Field() != "tagged_by" || e.Code() != perr.ErrorCodeValidation {
		t.Fatalf("field=%q code=%v", e.Field(), e.Code())
	}
	if !strings.Contains(err.Error(), "tagged_by must be at most 10") {
		t.Fatalf("message = %q", err.Error())
	}
}

func TestParseJSON_EmptyBodyOnBodylessMethods(t *testing.T) {
	for _, m := range []string{http.MethodGet, http.MethodDelete, http.MethodHead, http.MethodOptions} {
		r := httptest.NewRequest(m, "/", http.NoBody)
		got, err := ParseJSON[runRequest](r)
		if err != nil || got != (runRequest{}) {
			t.Fatalf("%s: got %+v, %v", m, got, err)
		}
	}
	r := httptest.NewRequest(http.MethodPatch, "/", http.NoBody)
	if _, err := ParseJSON[runRequest](r); perr.CodeOf(err) != perr.ErrorCodeJSON {
		t.Fatalf("PATCH without body: %v", err)
	}
}

func TestGet_IsSingleton(t *testing.T) {
	if Get() != Init() || Get().Translator == nil {
		t.Fatalf("validator not shared")
	}
}
