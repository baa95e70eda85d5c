package httpx

import (
	"log/slog"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/contentops/admin-gateway/internal/service"
)

// Logging returns a middleware that logs HTTP requests and responses.
func Logging(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			const defaultHTTPStatus = 200
			ww := &respWriter{ResponseWriter: w, status: defaultHTTPStatus}
			next.ServeHTTP(ww, r)
			logger.Info("http",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", ww.status),
				slog.Duration("duration", time.Since(start)),
			)
		})
	}
}

type respWriter struct {
	http.ResponseWriter
	status int
}

func (w *respWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

// Recover returns a middleware that recovers from panics and logs them.
func Recover(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					logger.Error("panic",
						slog.Any("error", err),
						slog.String("path", r.URL.Path),
						slog.String("method", r.Method),
						slog.String("stack", string(debug.Stack())))
					http.Error(w, "Internal Server Error", http.StatusInternalServerError)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// Authenticate returns a middleware that resolves the request credential,
// verifies it and stores the resulting AuthInfo and project reference in the
// request context. It never rejects by itself; enforcement belongs to the
// role-resolution and permission middlewares behind it.
func Authenticate(authSvc *service.AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ref := ProjectRef{Org: r.PathValue("org"), Site: r.PathValue("site")}
			info := authSvc.Authenticate(r.Context(), service.AuthRequest{
				Credential: service.ResolveCredential(r),
				Org:        ref.Org,
				Site:       ref.Site,
			})
			ctx := SetAuthInfoInContext(r.Context(), info)
			ctx = SetProjectRefInContext(ctx, ref)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ResolveRoles returns a middleware that resolves the caller's project roles
// and enforces the project's authentication requirement. It must run behind
// Authenticate.
func ResolveRoles(authSvc *service.AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			info := GetAuthInfo(r)
			if info == nil {
				http.Error(w, "Internal Server Error", http.StatusInternalServerError)
				return
			}
			ref := GetProjectRef(r)
			if err := authSvc.ResolveRoles(r.Context(), service.ResolveInput{
				Info: info,
				Org:  ref.Org,
				Site: ref.Site,
			}); err != nil {
				WriteAuthError(w, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequirePermissions returns a middleware rejecting callers missing any of
// the given permissions.
func RequirePermissions(perms ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			info := GetAuthInfo(r)
			if info == nil {
				http.Error(w, "Internal Server Error", http.StatusInternalServerError)
				return
			}
			if err := info.AssertPermissions(perms...); err != nil {
				WriteAuthError(w, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Chain composes middlewares left to right: the first listed runs outermost.
func Chain(h http.Handler, mws ...func(http.Handler) http.Handler) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}
