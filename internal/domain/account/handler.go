package account

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/primelabs/primelabs/internal/platform/auth"
	"github.com/primelabs/primelabs/internal/platform/httperr"
	"github.com/primelabs/primelabs/pkg/pagination"
	"github.com/primelabs/primelabs/pkg/validate"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/auth/register", h.Register)
	api.POST("/auth/login", h.Login)
	api.POST("/auth/password-reset", h.SendPasswordReset)
	api.POST("/auth/password-reset/confirm", h.ConfirmPasswordReset)
	api.GET("/auth/session", h.GetSession, auth.RequireAuthenticated())

	adminGroup := api.Group("/accounts", auth.RequireAdmin())
	adminGroup.GET("", h.ListAccounts)
	adminGroup.POST("/:id/approve", h.Approve)
	adminGroup.POST("/:id/reject", h.Reject)
	api.PUT("/accounts/:id/role", h.ChangeRole, auth.RequireOwner())
}

func (h *Handler) fail(c echo.Context, op string, err error) error {
	switch {
	case errors.Is(err, ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, ErrInvalidTransition), errors.Is(err, ErrOwnerAccount), errors.Is(err, auth.ErrEmailExists):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, auth.ErrInvalidCredentials), errors.Is(err, auth.ErrInvalidToken):
		return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
	case errors.Is(err, ErrRegistrationFailed):
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if he, ok := httperr.BadRequest(err, auth.ErrWeakPassword, auth.ErrInvalidEmail); ok {
		return he
	}
	return httperr.From(c, op, err)
}

func (h *Handler) Register(c echo.Context) error {
	var req RegisterRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	a, err := h.svc.Register(c.Request().Context(), req)
	if err != nil {
		return h.fail(c, "register", err)
	}
	return c.JSON(http.StatusCreated, a)
}

type loginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func (h *Handler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	res, err := h.svc.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return h.fail(c, "login", err)
	}
	return c.JSON(http.StatusOK, res)
}

type resetRequest struct {
	Email string `json:"email" validate:"required,email"`
}

func (h *Handler) SendPasswordReset(c echo.Context) error {
	var req resetRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.SendPasswordReset(c.Request().Context(), req.Email); err != nil {
		return h.fail(c, "password_reset", err)
	}
	return c.JSON(http.StatusAccepted, map[string]string{"message": "if the account exists, a reset link has been sent"})
}

type confirmResetRequest struct {
	Token    string `json:"token" validate:"required"`
	Password string `json:"password" validate:"required,min=6"`
}

func (h *Handler) ConfirmPasswordReset(c echo.Context) error {
	var req confirmResetRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.ConfirmPasswordReset(c.Request().Context(), req.Token, req.Password); err != nil {
		return h.fail(c, "password_reset_confirm", err)
	}
	return c.NoContent(http.StatusNoContent)
}

// GetSession reports the caller's resolved status, including pending and
// rejected accounts.
func (h *Handler) GetSession(c echo.Context) error {
	sess := auth.FromEcho(c)
	return c.JSON(http.StatusOK, map[string]any{
		"session": sess,
		"message": sess.Status.Message(),
	})
}

func (h *Handler) ListAccounts(c echo.Context) error {
	var status AccountStatus
	if q := c.QueryParam("status"); q != "" {
		status = ParseAccountStatus(q)
	}
	p := pagination.FromContext(c)
	accounts, next, err := h.svc.ListAccounts(c.Request().Context(), status, p.Limit, p.Cursor)
	if err != nil {
		return h.fail(c, "list_accounts", err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(accounts, p.Limit, next))
}

func (h *Handler) Approve(c echo.Context) error {
	a, err := h.svc.Approve(c.Request().Context(), auth.FromEcho(c), c.Param("id"))
	if err != nil {
		return h.fail(c, "approve_account", err)
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) Reject(c echo.Context) error {
	a, err := h.svc.Reject(c.Request().Context(), auth.FromEcho(c), c.Param("id"))
	if err != nil {
		return h.fail(c, "reject_account", err)
	}
	return c.JSON(http.StatusOK, a)
}

type roleRequest struct {
	Role string `json:"role" validate:"required"`
}

func (h *Handler) ChangeRole(c echo.Context) error {
	var req roleRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	role, err := auth.ParseRole(req.Role)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	a, err := h.svc.ChangeRole(c.Request().Context(), auth.FromEcho(c), c.Param("id"), role)
	if err != nil {
		return h.fail(c, "change_role", err)
	}
	return c.JSON(http.StatusOK, a)
}
