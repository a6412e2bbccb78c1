package report

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/primelabs/primelabs/internal/platform/auth"
	"github.com/primelabs/primelabs/internal/platform/httperr"
	"github.com/primelabs/primelabs/pkg/period"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/reports/daily", h.Daily, auth.RequireApproved())

	adminGroup := api.Group("/reports", auth.RequireAdmin())
	adminGroup.GET("/monthly", h.Monthly)
	adminGroup.GET("/referrals", h.Referrals)
	adminGroup.POST("/cache/clear", h.ClearCache)
}

func (h *Handler) Daily(c echo.Context) error {
	day, err := period.ParseDay(c.QueryParam("date"), h.svc.Now(), h.svc.Location())
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	d, err := h.svc.Daily(c.Request().Context(), day)
	if err != nil {
		return httperr.From(c, "daily_report", err)
	}
	return c.JSON(http.StatusOK, d)
}

// Monthly serves ?year=&month=; either defaults to the current one.
func (h *Handler) Monthly(c echo.Context) error {
	now := h.svc.Now().In(h.svc.Location())
	year, month := now.Year(), now.Month()
	if q := c.QueryParam("year"); q != "" {
		y, err := strconv.Atoi(q)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid year")
		}
		year = y
	}
	if q := c.QueryParam("month"); q != "" {
		m, err := strconv.Atoi(q)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid month")
		}
		month = time.Month(m)
	}
	rep, err := h.svc.Monthly(c.Request().Context(), auth.FromEcho(c), year, month)
	if err != nil {
		if errors.Is(err, period.ErrFutureMonth) || month < time.January || month > time.December {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return httperr.From(c, "monthly_report", err)
	}
	return c.JSON(http.StatusOK, rep)
}

func (h *Handler) Referrals(c echo.Context) error {
	w, err := period.ParseRange(c.QueryParam("start"), c.QueryParam("end"), h.svc.Now(), h.svc.Location())
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	rep, err := h.svc.Referrals(c.Request().Context(), auth.FromEcho(c), w)
	if err != nil {
		return httperr.From(c, "referral_report", err)
	}
	return c.JSON(http.StatusOK, rep)
}

func (h *Handler) ClearCache(c echo.Context) error {
	if err := h.svc.ClearCache(c.Request().Context(), auth.FromEcho(c)); err != nil {
		return httperr.From(c, "clear_cache", err)
	}
	return c.NoContent(http.StatusNoContent)
}
