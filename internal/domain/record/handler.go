package record

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
	g := api.Group("/records", auth.RequireApproved())
	g.POST("", h.Submit)
	g.POST("/quote", h.Quote)
	g.GET("", h.List)
	g.GET("/:id", h.Get)
	g.GET("/:id/summary", h.Summary)
}

func (h *Handler) fail(c echo.Context, op string, err error) error {
	switch {
	case errors.Is(err, ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, ErrSubmissionInFlight):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	}
	return httperr.From(c, op, err)
}

func (h *Handler) bind(c echo.Context) (Submission, error) {
	var sub Submission
	if err := c.Bind(&sub); err != nil {
		return sub, echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return sub, nil
}

func (h *Handler) Submit(c echo.Context) error {
	sub, err := h.bind(c)
	if err != nil {
		return err
	}
	rec, err := h.svc.Submit(c.Request().Context(), auth.FromEcho(c), sub)
	if err != nil {
		return h.fail(c, "create_record", err)
	}
	return c.JSON(http.StatusCreated, rec)
}

func (h *Handler) Quote(c echo.Context) error {
	sub, err := h.bind(c)
	if err != nil {
		return err
	}
	rec, err := h.svc.Quote(c.Request().Context(), sub)
	if err != nil {
		return h.fail(c, "quote_record", err)
	}
	return c.JSON(http.StatusOK, rec)
}

// List serves ?date=YYYY-MM-DD, or ?start=&end= for a range of days. With
// neither it lists today.
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
	records, next, err := h.svc.ListRecords(c.Request().Context(), w, p.Limit, p.Cursor)
	if err != nil {
		return h.fail(c, "list_records", err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(records, p.Limit, next))
}

func (h *Handler) Get(c echo.Context) error {
	rec, err := h.svc.GetRecord(c.Request().Context(), c.Param("id"))
	if err != nil {
		return h.fail(c, "get_record", err)
	}
	return c.JSON(http.StatusOK, rec)
}

func (h *Handler) Summary(c echo.Context) error {
	rec, err := h.svc.GetRecord(c.Request().Context(), c.Param("id"))
	if err != nil {
		return h.fail(c, "record_summary", err)
	}
	return c.String(http.StatusOK, SummaryText(rec, h.svc.Location()))
}
