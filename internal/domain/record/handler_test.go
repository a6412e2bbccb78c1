package record

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/primelabs/primelabs/internal/platform/auth"
)

func newTestHandler() (*Handler, *Service, *echo.Echo) {
	svc, _ := newTestService()
	return NewHandler(svc), svc, echo.New()
}

func withSession(req *http.Request, s *auth.Session) *http.Request {
	return req.WithContext(auth.WithSession(req.Context(), s))
}

const ashaBody = `{"patient":{"name":"Asha Verma"},"doctor_id":"doc-1","tests":[{"name":"USG WHOLE ABDOMEN","paid_price":600}]}`

func TestHandler_Submit(t *testing.T) {
	h, _, e := newTestHandler()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/records", strings.NewReader(ashaBody))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(withSession(req, staff()), rec)

	if err := h.Submit(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", rec.Code)
	}
	var got Record
	json.Unmarshal(rec.Body.Bytes(), &got)
	if got.ReferralInfo == nil || got.ReferralInfo.TotalCommission != 100 {
		t.Errorf("expected commission 100, got %+v", got.ReferralInfo)
	}
	if !strings.Contains(rec.Body.String(), `"commission_rate":"250"`) {
		t.Errorf("expected rate encoded as string, got %s", rec.Body.String())
	}
}

func TestHandler_Submit_ValidationIs400(t *testing.T) {
	h, _, e := newTestHandler()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"patient":{"name":"A"},"tests":[{"name":"CBC"}]}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	c := e.NewContext(withSession(req, staff()), httptest.NewRecorder())

	err := h.Submit(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %v", err)
	}
}

func TestHandler_Get_NotFound(t *testing.T) {
	h, _, e := newTestHandler()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	c.SetParamNames("id")
	c.SetParamValues("missing")

	err := h.Get(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %v", err)
	}
}

func TestHandler_Summary(t *testing.T) {
	h, svc, e := newTestHandler()
	stored, err := svc.Submit(context.Background(), staff(), asha(price(600)))
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	c.SetParamNames("id")
	c.SetParamValues(stored.ID)
	if err := h.Summary(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	body := rec.Body.String()
	for _, want := range []string{
		"Patient Name: Asha Verma",
		"Referred by Dr. Sharma from Civil Lines",
		"Paid 600 Rupees for USG WHOLE ABDOMEN (standard 750)",
		"Referral Commission: 100 Rupees",
		"Date: 10 May 2024 11:30 AM",
		"Entered by: staff@primelabs.in (Employee)",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("summary missing %q:\n%s", want, body)
		}
	}
}

func TestHandler_List_BadDate(t *testing.T) {
	h, _, e := newTestHandler()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/?date=10-05-2024", nil), httptest.NewRecorder())
	err := h.List(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %v", err)
	}
}

func TestHandler_RoutesRequireApproval(t *testing.T) {
	h, _, e := newTestHandler()
	api := e.Group("/api/v1")
	api.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			pending := &auth.Session{Status: auth.StatusPendingApproval, Email: "new@primelabs.in"}
			c.SetRequest(withSession(c.Request(), pending))
			return next(c)
		}
	})
	h.RegisterRoutes(api)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/records", strings.NewReader(ashaBody))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %d", rec.Code)
	}
}
