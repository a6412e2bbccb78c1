package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func catalogHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]int{"X-RAY CHEST PA": 350})
}

func TestETag_SetsHeaderAndBody(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/catalog", nil), rec)

	if err := ETag(300)(catalogHandler)(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	if rec.Header().Get("ETag") == "" {
		t.Error("expected ETag header")
	}
	if rec.Body.Len() == 0 {
		t.Error("expected body")
	}
}

func TestETag_NotModified(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	_ = ETag(300)(catalogHandler)(e.NewContext(httptest.NewRequest(http.MethodGet, "/catalog", nil), rec))
	etag := rec.Header().Get("ETag")

	req := httptest.NewRequest(http.MethodGet, "/catalog", nil)
	req.Header.Set("If-None-Match", etag)
	rec = httptest.NewRecorder()
	_ = ETag(300)(catalogHandler)(e.NewContext(req, rec))

	if rec.Code != http.StatusNotModified {
		t.Errorf("expected 304, got %d", rec.Code)
	}
	if rec.Body.Len() != 0 {
		t.Error("expected empty body on 304")
	}
}

func TestETag_SkipsWrites(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodPost, "/catalog", nil), rec)

	_ = ETag(300)(catalogHandler)(c)
	if rec.Header().Get("ETag") != "" {
		t.Error("expected no ETag on POST")
	}
}

func TestEtagMatch(t *testing.T) {
	tests := []struct {
		header string
		want   bool
	}{
		{"", false},
		{`W/"abc"`, true},
		{`"abc"`, true},
		{`"x", W/"abc"`, true},
		{"*", true},
		{`"other"`, false},
	}
	for _, tt := range tests {
		if got := etagMatch(tt.header, `W/"abc"`); got != tt.want {
			t.Errorf("etagMatch(%q) = %v, want %v", tt.header, got, tt.want)
		}
	}
}
