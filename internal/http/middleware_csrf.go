package httpx

import (
	"net/http"

	"github.com/contentops/admin-gateway/internal/domain/auth"
	"github.com/contentops/admin-gateway/internal/domain/origin"
)

// OriginGuard returns a middleware enforcing cross-origin trust on
// state-changing requests issued by the editing extension. It must run
// behind Authenticate. Denials become 403s; downgraded denials (projects on
// the exception list) proceed and are logged by the guard.
func OriginGuard(guard *origin.Guard) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !requiresOriginCheck(r.Method) {
				next.ServeHTTP(w, r)
				return
			}

			info := GetAuthInfo(r)
			if info == nil {
				http.Error(w, "Internal Server Error", http.StatusInternalServerError)
				return
			}
			ref := GetProjectRef(r)

			decision := guard.Check(r.Context(), origin.Request{
				Method:        r.Method,
				Origin:        r.Header.Get("Origin"),
				Referer:       r.Header.Get("Referer"),
				SecFetchMode:  r.Header.Get("Sec-Fetch-Mode"),
				Org:           ref.Org,
				Site:          ref.Site,
				Authenticated: info.Authenticated,
				ExtensionID:   info.ExtensionID,
			})
			if !decision.Allowed() {
				WriteAuthError(w, &auth.ForbiddenError{Reason: decision.Reason})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// requiresOriginCheck reports whether the method changes state. Safe methods
// skip the guard entirely.
func requiresOriginCheck(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodTrace:
		return false
	default:
		return true
	}
}
