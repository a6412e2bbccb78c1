package pagination

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// Params holds cursor pagination parameters extracted from a request.
type Params struct {
	Limit  int
	Cursor string
}

// FromContext extracts pagination parameters from the echo context.
func FromContext(c echo.Context) Params {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return Params{Limit: limit, Cursor: c.QueryParam("cursor")}
}

// Response wraps a paginated API response. Next is the cursor of the
// following page, empty on the last one.
type Response struct {
	Data    interface{} `json:"data"`
	Limit   int         `json:"limit"`
	Next    string      `json:"next,omitempty"`
	HasMore bool        `json:"has_more"`
}

func NewResponse(data interface{}, limit int, next string) *Response {
	return &Response{
		Data:    data,
		Limit:   limit,
		Next:    next,
		HasMore: next != "",
	}
}
