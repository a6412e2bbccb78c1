package catalog

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/primelabs/primelabs/internal/domain/commission"
	"github.com/primelabs/primelabs/internal/platform/auth"
	"github.com/primelabs/primelabs/internal/platform/middleware"
)

// Entry is a catalog line as served to clients.
type Entry struct {
	Name     string              `json:"name"`
	Price    int64               `json:"price"`
	Category commission.Category `json:"category"`
}

type Handler struct {
	catalog *Catalog
}

func NewHandler(c *Catalog) *Handler {
	return &Handler{catalog: c}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("", auth.RequireApproved())
	g.GET("/catalog", h.List, middleware.ETag(300))
}

// List serves the catalog, optionally narrowed with ?q=.
func (h *Handler) List(c echo.Context) error {
	tests := h.catalog.Search(c.QueryParam("q"))
	out := make([]Entry, 0, len(tests))
	for _, t := range tests {
		out = append(out, Entry{Name: t.Name, Price: t.Price, Category: commission.Categorize(t.Name, t.Price)})
	}
	return c.JSON(http.StatusOK, out)
}
