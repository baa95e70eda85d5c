package httpx

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/contentops/admin-gateway/internal/domain/auth"
)

// DecodeJSON decodes JSON from the request body into the destination and handles errors.
// Returns true if successful, false if there was an error (error response already written).
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "invalid_json", Err: err})
		return false
	}

	return true
}

// WriteJSON writes a JSON response with the given status code and data.
func WriteJSON(w http.ResponseWriter, code int, v any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if _, err := buf.WriteTo(w); err != nil {
		// Response writer errors (e.g., client disconnect) can't be recovered from here.
		return
	}
}

// ErrorParams groups parameters for WriteError to adhere to the ≤3 params guideline.
type ErrorParams struct {
	Code    int
	ErrCode string
	Err     error
}

// WriteError writes a JSON error response using ErrorParams. The message is
// also surfaced in the x-error header for clients that discard error bodies.
func WriteError(w http.ResponseWriter, p ErrorParams) {
	w.Header().Set("x-error", p.Err.Error())
	WriteJSON(w, p.Code, map[string]string{"error": p.ErrCode, "message": p.Err.Error()})
}

// WriteAuthError maps domain auth errors to their HTTP responses. Unknown
// errors become a 500.
func WriteAuthError(w http.ResponseWriter, err error) {
	var authRequired *auth.AuthRequiredError
	var denied *auth.PermissionDeniedError
	var forbidden *auth.ForbiddenError
	switch {
	case errors.As(err, &authRequired):
		WriteError(w, ErrorParams{Code: http.StatusUnauthorized, ErrCode: "auth_required", Err: err})
	case errors.As(err, &denied):
		WriteError(w, ErrorParams{Code: http.StatusForbidden, ErrCode: "forbidden", Err: err})
	case errors.As(err, &forbidden):
		WriteError(w, ErrorParams{Code: http.StatusForbidden, ErrCode: "forbidden", Err: err})
	default:
		WriteError(w, ErrorParams{Code: http.StatusInternalServerError, ErrCode: "internal", Err: err})
	}
}
