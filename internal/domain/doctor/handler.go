package doctor

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/primelabs/primelabs/internal/domain/commission"
	"github.com/primelabs/primelabs/internal/platform/auth"
	"github.com/primelabs/primelabs/internal/platform/httperr"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	readGroup := api.Group("", auth.RequireApproved())
	readGroup.GET("/doctors", h.ListDoctors)
	readGroup.GET("/doctors/:id", h.GetDoctor)

	writeGroup := api.Group("", auth.RequireAdmin())
	writeGroup.POST("/doctors", h.CreateDoctor)
	writeGroup.PUT("/doctors/:id", h.UpdateDoctor)
	writeGroup.PUT("/doctors/:id/rates", h.SetRates)
}

func (h *Handler) fail(c echo.Context, op string, err error) error {
	if errors.Is(err, ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}
	if he, ok := httperr.BadRequest(err,
		commission.ErrNegativeRate, commission.ErrDuplicateRate, commission.ErrInvalidRateType); ok {
		return he
	}
	return httperr.From(c, op, err)
}

type createRequest struct {
	Name     string           `json:"name"`
	Location string           `json:"location"`
	Phone    string           `json:"phone"`
	Rates    commission.Rates `json:"commission_rates"`
}

func (h *Handler) CreateDoctor(c echo.Context) error {
	var req createRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	d := &Doctor{Name: req.Name, Location: req.Location, Phone: req.Phone, Rates: req.Rates}
	if err := h.svc.CreateDoctor(c.Request().Context(), auth.FromEcho(c), d); err != nil {
		return h.fail(c, "create_doctor", err)
	}
	return c.JSON(http.StatusCreated, d)
}

func (h *Handler) GetDoctor(c echo.Context) error {
	d, err := h.svc.GetDoctor(c.Request().Context(), c.Param("id"))
	if err != nil {
		return h.fail(c, "get_doctor", err)
	}
	return c.JSON(http.StatusOK, d)
}

// ListDoctors serves the cached active list. Admins may pass ?all=true to
// include inactive doctors.
func (h *Handler) ListDoctors(c echo.Context) error {
	ctx := c.Request().Context()
	var (
		doctors []*Doctor
		err     error
	)
	if c.QueryParam("all") == "true" && auth.FromEcho(c).IsAdmin() {
		doctors, err = h.svc.ListAll(ctx)
	} else {
		doctors, err = h.svc.ListActive(ctx)
	}
	if err != nil {
		return h.fail(c, "list_doctors", err)
	}
	return c.JSON(http.StatusOK, doctors)
}

func (h *Handler) UpdateDoctor(c echo.Context) error {
	var u Update
	if err := c.Bind(&u); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	d, err := h.svc.UpdateDoctor(c.Request().Context(), auth.FromEcho(c), c.Param("id"), u)
	if err != nil {
		return h.fail(c, "update_doctor", err)
	}
	return c.JSON(http.StatusOK, d)
}

type ratesRequest struct {
	Rates commission.Rates `json:"commission_rates"`
}

func (h *Handler) SetRates(c echo.Context) error {
	var req ratesRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	d, err := h.svc.SetRates(c.Request().Context(), auth.FromEcho(c), c.Param("id"), req.Rates)
	if err != nil {
		return h.fail(c, "set_doctor_rates", err)
	}
	return c.JSON(http.StatusOK, d)
}
