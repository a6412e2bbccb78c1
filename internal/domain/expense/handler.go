package expense

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/primelabs/primelabs/internal/platform/auth"
	"github.com/primelabs/primelabs/internal/platform/httperr"
	"github.com/primelabs/primelabs/pkg/pagination"
	"github.com/primelabs/primelabs/pkg/period"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("/expenses", auth.RequireApproved())
	g.POST("", h.Submit)
	g.GET("", h.List)
	g.GET("/types", h.ListTypes)
}

func (h *Handler) Submit(c echo.Context) error {
	var sub Submission
	if err := c.Bind(&sub); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	e, err := h.svc.Submit(c.Request().Context(), auth.FromEcho(c), sub)
	if err != nil {
		if errors.Is(err, ErrSubmissionInFlight) {
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		}
		return httperr.From(c, "create_expense", err)
	}
	return c.JSON(http.StatusCreated, e)
}

func (h *Handler) List(c echo.Context) error {
	now, loc := h.svc.Now(), h.svc.Location()
	var (
		w   period.Window
		err error
	)
	if c.QueryParam("start") != "" || c.QueryParam("end") != "" {
		w, err = period.ParseRange(c.QueryParam("start"), c.QueryParam("end"), now, loc)
	} else {
		w, err = period.ParseDay(c.QueryParam("date"), now, loc)
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	p := pagination.FromContext(c)
	expenses, next, err := h.svc.ListExpenses(c.Request().Context(), w, p.Limit, p.Cursor)
	if err != nil {
		return httperr.From(c, "list_expenses", err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(expenses, p.Limit, next))
}

func (h *Handler) ListTypes(c echo.Context) error {
	return c.JSON(http.StatusOK, Types)
}
