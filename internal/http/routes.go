package httpx

import (
	"log/slog"
	"net/http"

	"github.com/contentops/admin-gateway/internal/domain/origin"
	"github.com/contentops/admin-gateway/internal/service"
)

// RouterServices holds all the services needed by the HTTP router.
type RouterServices struct {
	Auth    *service.AuthService
	APIKeys *service.APIKeyService
	Guard   *origin.Guard

	CookieDomain string
	CookieSecure bool
	Logger       *slog.Logger
}

// NewRouter creates and configures the gateway HTTP router.
func NewRouter(services RouterServices) http.Handler {
	mux := http.NewServeMux()

	logger := services.Logger
	if logger == nil {
		logger = slog.Default()
	}

	authHandlers := &AuthHandlers{
		Svc:          services.Auth,
		CookieDomain: services.CookieDomain,
		CookieSecure: services.CookieSecure,
		Logger:       logger,
	}
	keyHandlers := &APIKeyHandlers{Svc: services.APIKeys}

	authenticate := Authenticate(services.Auth)
	resolveRoles := ResolveRoles(services.Auth)
	guard := OriginGuard(services.Guard)

	// Credential-aware route: authenticated per request but never rejected,
	// so unauthenticated callers see their anonymous profile.
	profile := func(h http.HandlerFunc) http.Handler {
		return Chain(h, authenticate, resolveRoles)
	}
	// Permission-guarded project routes.
	protected := func(h http.HandlerFunc, perms ...string) http.Handler {
		return Chain(h, authenticate, guard, resolveRoles, RequirePermissions(perms...))
	}

	mux.Handle("GET /healthz", http.HandlerFunc(healthHandler))
	mux.Handle("HEAD /healthz", http.HandlerFunc(healthHandler))

	mux.Handle("GET /login/{idp}", http.HandlerFunc(authHandlers.Login))
	mux.Handle("GET /login/{idp}/ack", http.HandlerFunc(authHandlers.LoginAck))
	mux.Handle("POST /logout", Chain(http.HandlerFunc(authHandlers.Logout), authenticate))

	mux.Handle("GET /profile", profile(authHandlers.Profile))
	mux.Handle("GET /api/{org}/{site}/profile", profile(authHandlers.Profile))

	mux.Handle("POST /api/{org}/{site}/apikeys",
		protected(keyHandlers.Mint, "config:write"))
	mux.Handle("GET /api/{org}/apikeys",
		protected(keyHandlers.List, "config:read"))
	mux.Handle("DELETE /api/{org}/apikeys/{id}",
		protected(keyHandlers.Revoke, "config:write"))

	return Chain(mux, Recover(logger), Logging(logger))
}

func healthHandler(w http.ResponseWriter, _ *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
