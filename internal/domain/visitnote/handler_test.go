package visitnote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/carebridge/carebridge/internal/platform/auth"
)

func request(method, target, body string, actor auth.Actor) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	req = req.WithContext(auth.WithActor(req.Context(), actor))
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestHandler_Submit(t *testing.T) {
	fx := newFixture()
	h := NewHandler(fx.svc)
	body := fmt.Sprintf(`{"template_id":%q,"client_id":%q,"data":{"summary":"ok","meds_given":true}}`,
		fx.tpl.ID, uuid.New())
	c, rec := request(http.MethodPost, "/api/v1/visit-notes", body, fx.carer)

	if err := h.Submit(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	var got VisitNote
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("bad response body: %v", err)
	}
	if got.QAStatus != QAPending {
		t.Errorf("expected PENDING, got %q", got.QAStatus)
	}
}

func TestHandler_Submit_ValidationPayload(t *testing.T) {
	fx := newFixture()
	h := NewHandler(fx.svc)
	body := fmt.Sprintf(`{"template_id":%q,"client_id":%q,"data":{}}`, fx.tpl.ID, uuid.New())
	c, _ := request(http.MethodPost, "/api/v1/visit-notes", body, fx.carer)

	err := h.Submit(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %v", err)
	}
	msg, ok := he.Message.(map[string]any)
	if !ok {
		t.Fatalf("expected structured message, got %T", he.Message)
	}
	fieldErrs, ok := msg["errors"].(map[string]string)
	if !ok {
		t.Fatalf("expected per-field errors, got %T", msg["errors"])
	}
	if fieldErrs["summary"] != RequiredMessage {
		t.Errorf("expected required message for summary, got %q", fieldErrs["summary"])
	}
}

func TestHandler_Review_Conflict(t *testing.T) {
	fx := newFixture()
	h := NewHandler(fx.svc)
	n := submitNote(t, fx)
	fx.svc.Review(context.Background(), fx.reviewer, n.ID, true, nil)

	c, _ := request(http.MethodPost, "/", `{"approve":false}`, fx.reviewer)
	c.SetPath("/api/v1/visit-notes/:id/review")
	c.SetParamNames("id")
	c.SetParamValues(n.ID.String())

	err := h.Review(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusConflict {
		t.Fatalf("expected 409 for a repeat review, got %v", err)
	}
}

func TestHandler_Rendered(t *testing.T) {
	fx := newFixture()
	h := NewHandler(fx.svc)
	n := submitNote(t, fx)

	c, rec := request(http.MethodGet, "/", "", fx.carer)
	c.SetPath("/api/v1/visit-notes/:id/rendered")
	c.SetParamNames("id")
	c.SetParamValues(n.ID.String())

	if err := h.Rendered(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var got struct {
		TemplateName string `json:"template_name"`
		Version      int    `json:"version"`
		Sections     []struct {
			Fields []struct {
				FieldID string `json:"field_id"`
				Widget  string `json:"widget"`
				Display string `json:"display"`
			} `json:"fields"`
		} `json:"sections"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("bad response body: %v", err)
	}
	if got.TemplateName != "Daily Visit" || got.Version != 1 {
		t.Errorf("unexpected header: %+v", got)
	}
	if got.Sections[0].Fields[1].Display != "Yes" {
		t.Errorf("expected formatted toggle, got %q", got.Sections[0].Fields[1].Display)
	}
}

func TestNoteError_Mapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		code int
	}{
		{"not found", ErrNotFound, http.StatusNotFound},
		{"template disabled", ErrTemplateNotEnabled, http.StatusConflict},
		{"already reviewed", ErrAlreadyReviewed, http.StatusConflict},
		{"forbidden", ErrForbidden, http.StatusForbidden},
		{"storage failure", errors.New("connection reset by peer"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		he, ok := noteError(tc.err).(*echo.HTTPError)
		if !ok || he.Code != tc.code {
			t.Errorf("%s: expected %d, got %v", tc.name, tc.code, he)
		}
	}

	he := noteError(errors.New("pq: deadlock detected")).(*echo.HTTPError)
	if he.Message != "internal server error" {
		t.Errorf("expected generic message, got %v", he.Message)
	}
}
