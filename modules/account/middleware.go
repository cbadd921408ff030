package account

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/RPalaciosDev/Project2-CST438-01-2252-sub000/pkg/auth"
	"github.com/RPalaciosDev/Project2-CST438-01-2252-sub000/pkg/logger"
)

// RequestIDExtractor adds the chi request ID to every record logged with a
// request context. Pass it to logger.WithContextExtractors.
func RequestIDExtractor(ctx context.Context) (slog.Attr, bool) {
	id := middleware.GetReqID(ctx)
	if id == "" {
		return slog.Attr{}, false
	}
	return logger.RequestID(id), true
}

// requestLogger logs one line per request after the handler returns. It sits
// before auth.Middleware, so it reads the principal from a holder the inner
// handler fills in.
func requestLogger(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			holder := &principalHolder{}

			next.ServeHTTP(ww, r.WithContext(context.WithValue(r.Context(), principalHolderKey{}, holder)))

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			var route string
			if rctx := chi.RouteContext(r.Context()); rctx != nil {
				route = rctx.RoutePattern()
			}
			attrs := []slog.Attr{
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				logger.Route(route),
				logger.Status(status),
				logger.Duration(time.Since(start)),
				logger.Subject(holder.subject),
			}

			level := slog.LevelInfo
			if status >= http.StatusInternalServerError {
				level = slog.LevelError
			}
			log.LogAttrs(r.Context(), level, "http request", attrs...)
		})
	}
}

type principalHolderKey struct{}

type principalHolder struct {
	subject string
}

// capturePrincipal records the authenticated subject for requestLogger.
func capturePrincipal(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h, ok := r.Context().Value(principalHolderKey{}).(*principalHolder); ok {
			if p, ok := auth.PrincipalFromContext(r.Context()); ok {
				h.subject = p.Subject
			}
		}
		next.ServeHTTP(w, r)
	})
}
