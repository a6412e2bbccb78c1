package middleware

import (
	"bytes"
	"crypto/sha256"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// bufferedWriter holds the handler output so the ETag can be computed
// before anything reaches the client.
type bufferedWriter struct {
	http.ResponseWriter
	buf    bytes.Buffer
	status int
}

func (w *bufferedWriter) Write(b []byte) (int, error) { return w.buf.Write(b) }
func (w *bufferedWriter) WriteHeader(code int)        { w.status = code }

// ETag adds a weak validator to successful GET responses and answers
// matching If-None-Match requests with 304. Meant for rarely changing
// payloads such as the pricing catalog.
func ETag(maxAge int) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			if req.Method != http.MethodGet && req.Method != http.MethodHead {
				return next(c)
			}

			res := c.Response()
			orig := res.Writer
			bw := &bufferedWriter{ResponseWriter: orig, status: http.StatusOK}
			res.Writer = bw
			err := next(c)
			res.Writer = orig
			if err != nil {
				return err
			}

			if bw.status >= 300 {
				orig.WriteHeader(bw.status)
				_, err := orig.Write(bw.buf.Bytes())
				return err
			}

			sum := sha256.Sum256(bw.buf.Bytes())
			etag := fmt.Sprintf(`W/"%x"`, sum[:16])
			h := res.Header()
			h.Set("ETag", etag)
			h.Set("Cache-Control", fmt.Sprintf("private, max-age=%d", maxAge))
			h.Set("Vary", "Authorization")

			if etagMatch(req.Header.Get("If-None-Match"), etag) {
				orig.WriteHeader(http.StatusNotModified)
				return nil
			}
			orig.WriteHeader(bw.status)
			_, err = orig.Write(bw.buf.Bytes())
			return err
		}
	}
}

func etagMatch(header, etag string) bool {
	if header == "" {
		return false
	}
	for _, candidate := range strings.Split(header, ",") {
		candidate = strings.TrimSpace(candidate)
		if candidate == "*" || strings.TrimPrefix(candidate, "W/") == strings.TrimPrefix(etag, "W/") {
			return true
		}
	}
	return false
}
