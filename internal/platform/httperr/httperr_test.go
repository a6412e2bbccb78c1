package httperr

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/primelabs/primelabs/internal/platform/auth"
	"github.com/primelabs/primelabs/internal/platform/docstore"
)

type codedErr struct{}

func (codedErr) Error() string   { return "patient name is required" }
func (codedErr) StatusCode() int { return http.StatusBadRequest }

func TestFrom(t *testing.T) {
	e := echo.New()
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"http error", echo.NewHTTPError(http.StatusConflict, "busy"), http.StatusConflict},
		{"forbidden", fmt.Errorf("approve: %w", auth.ErrForbidden), http.StatusForbidden},
		{"coder", codedErr{}, http.StatusBadRequest},
		{"not found", docstore.ErrNotFound, http.StatusNotFound},
		{"network", errors.New("connection refused"), http.StatusServiceUnavailable},
		{"other", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
			var he *echo.HTTPError
			if !errors.As(From(c, "test", tt.err), &he) {
				t.Fatal("expected *echo.HTTPError")
			}
			if he.Code != tt.want {
				t.Errorf("expected %d, got %d", tt.want, he.Code)
			}
		})
	}
}

func TestFrom_UserMessage(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	var he *echo.HTTPError
	errors.As(From(c, "create_record", errors.New("permission denied for table documents")), &he)
	if he.Message != docstore.UserMessage(docstore.KindPermission) {
		t.Errorf("unexpected message %v", he.Message)
	}
}

func TestBadRequest(t *testing.T) {
	target := errors.New("negative rate")
	if _, ok := BadRequest(fmt.Errorf("x: %w", target), target); !ok {
		t.Error("expected match")
	}
	if _, ok := BadRequest(errors.New("other"), target); ok {
		t.Error("expected no match")
	}
}
