package rest

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/fatih/color"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/oshokin/flipclock/internal/logger"
)

// requestLogger logs one line per request with a colored status code.
func requestLogger(base context.Context) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		ctx := logger.WithName(base, "http")

		logger.Debug(ctx, "Request logger enabled")

		fn := func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			started := time.Now()

			defer func() {
				scheme := "http"
				if r.TLS != nil {
					scheme = "https"
				}

				logger.InfoKV(ctx,
					fmt.Sprintf("%s %s://%s%s - %s", r.Method, scheme, r.Host, r.RequestURI, statusText(ww.Status())),
					"request_id", middleware.GetReqID(r.Context()),
					"bytes", ww.BytesWritten(),
					"duration", time.Since(started).String(),
				)
			}()

			next.ServeHTTP(ww, r.WithContext(logger.ToContext(r.Context(), logger.FromContext(ctx))))
		}

		return http.HandlerFunc(fn)
	}
}

// statusText colors the status code by class.
func statusText(code int) string {
	var attr color.Attribute

	switch {
	case code < http.StatusOK:
		attr = color.FgBlue
	case code < http.StatusMultipleChoices:
		attr = color.FgGreen
	case code < http.StatusBadRequest:
		attr = color.FgCyan
	case code < http.StatusInternalServerError:
		attr = color.FgYellow
	default:
		attr = color.FgRed
	}

	return color.New(attr).Sprintf("%03d", code)
}
