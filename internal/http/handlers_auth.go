package httpx

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/contentops/admin-gateway/internal/service"
)

// loginStateCookie holds the in-flight login state between redirect and ack.
const loginStateCookie = "login_state"

// AuthHandlers serves login, logout and profile routes.
type AuthHandlers struct {
	Svc *service.AuthService
	// CookieDomain scopes the auth cookie; empty for host-only.
	CookieDomain string
	// CookieSecure should be true everywhere except local development.
	CookieSecure bool
	Logger       *slog.Logger
}

// loginState is serialized into the state cookie during a login flow.
type loginState struct {
	State    string `json:"state"`
	Org      string `json:"org"`
	Site     string `json:"site"`
	Redirect string `json:"redirect,omitempty"`
}

// Login starts the login flow for the provider named in the route.
func (h *AuthHandlers) Login(w http.ResponseWriter, r *http.Request) {
	idp := r.PathValue("idp")
	org := r.URL.Query().Get("org")
	site := r.URL.Query().Get("site")
	if org == "" || site == "" {
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "bad_request",
			Err: errors.New("org and site query parameters are required")})
		return
	}

	nonce := make([]byte, 16)
	if _, err := rand.Read(nonce); err != nil {
		WriteError(w, ErrorParams{Code: http.StatusInternalServerError, ErrCode: "internal", Err: err})
		return
	}
	state := loginState{
		State:    base64.RawURLEncoding.EncodeToString(nonce),
		Org:      org,
		Site:     site,
		Redirect: r.URL.Query().Get("redirect"),
	}

	loginURL, err := h.Svc.LoginURL(service.LoginURLInput{
		Provider:    idp,
		RedirectURL: h.ackURL(r, idp),
		State:       state.State,
		LoginHint:   r.URL.Query().Get("loginHint"),
	})
	if err != nil {
		WriteError(w, ErrorParams{Code: http.StatusNotFound, ErrCode: "unknown_idp", Err: err})
		return
	}

	encoded, err := json.Marshal(state)
	if err != nil {
		WriteError(w, ErrorParams{Code: http.StatusInternalServerError, ErrCode: "internal", Err: err})
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     loginStateCookie,
		Value:    base64.RawURLEncoding.EncodeToString(encoded),
		Path:     "/",
		Domain:   h.CookieDomain,
		HttpOnly: true,
		Secure:   h.CookieSecure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int((10 * time.Minute).Seconds()),
	})
	http.Redirect(w, r, loginURL, http.StatusFound)
}

// LoginAck completes the login flow: it validates state, exchanges the code
// and sets the auth cookie.
func (h *AuthHandlers) LoginAck(w http.ResponseWriter, r *http.Request) {
	idp := r.PathValue("idp")
	state, ok := h.readLoginState(r)
	if !ok || r.URL.Query().Get("state") != state.State {
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "invalid_state",
			Err: errors.New("login state mismatch")})
		return
	}
	h.clearCookie(w, loginStateCookie)

	code := r.URL.Query().Get("code")
	if code == "" {
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "bad_request",
			Err: errors.New("missing authorization code")})
		return
	}

	result, err := h.Svc.ExchangeLogin(r.Context(), service.ExchangeInput{
		Provider:    idp,
		Code:        code,
		RedirectURL: h.ackURL(r, idp),
		Org:         state.Org,
		Site:        state.Site,
	})
	if err != nil {
		h.logger().WarnContext(r.Context(), "login exchange failed", "idp", idp, "error", err)
		WriteError(w, ErrorParams{Code: http.StatusUnauthorized, ErrCode: "login_failed", Err: err})
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     service.AuthCookieName,
		Value:    result.SessionToken,
		Path:     "/",
		Domain:   h.CookieDomain,
		HttpOnly: true,
		Secure:   h.CookieSecure,
		SameSite: http.SameSiteNoneMode,
		Expires:  result.Expiry,
	})

	if state.Redirect != "" && state.Redirect[0] == '/' {
		http.Redirect(w, r, state.Redirect, http.StatusSeeOther)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Logout clears the auth cookie.
func (h *AuthHandlers) Logout(w http.ResponseWriter, r *http.Request) {
	h.clearCookie(w, service.AuthCookieName)
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Profile returns the caller's AuthInfo. A stale cookie credential is
// cleared as a side effect.
func (h *AuthHandlers) Profile(w http.ResponseWriter, r *http.Request) {
	info := GetAuthInfo(r)
	if info == nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if info.CookieInvalid {
		h.clearCookie(w, service.AuthCookieName)
	}
	if !info.Authenticated {
		WriteJSON(w, http.StatusUnauthorized, info)
		return
	}
	WriteJSON(w, http.StatusOK, info)
}

func (h *AuthHandlers) readLoginState(r *http.Request) (loginState, bool) {
	cookie, err := r.Cookie(loginStateCookie)
	if err != nil || cookie.Value == "" {
		return loginState{}, false
	}
	decoded, err := base64.RawURLEncoding.DecodeString(cookie.Value)
	if err != nil {
		return loginState{}, false
	}
	var state loginState
	if err := json.Unmarshal(decoded, &state); err != nil || state.State == "" {
		return loginState{}, false
	}
	return state, true
}

func (h *AuthHandlers) clearCookie(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		Domain:   h.CookieDomain,
		HttpOnly: true,
		Secure:   h.CookieSecure,
		MaxAge:   -1,
	})
}

// ackURL rebuilds the absolute redirect URL registered for a provider.
func (h *AuthHandlers) ackURL(r *http.Request, idp string) string {
	scheme := "https"
	if r.TLS == nil && r.Header.Get("X-Forwarded-Proto") != "https" {
		scheme = "http"
	}
	return scheme + "://" + r.Host + "/login/" + idp + "/ack"
}

func (h *AuthHandlers) logger() *slog.Logger {
	if h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}
