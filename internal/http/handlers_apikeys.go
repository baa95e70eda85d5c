package httpx

import (
	"errors"
	"net/http"
	"time"

	"github.com/contentops/admin-gateway/internal/data"
	"github.com/contentops/admin-gateway/internal/service"
)

// APIKeyHandlers serves the API key lifecycle routes.
type APIKeyHandlers struct {
	Svc *service.APIKeyService
}

type mintKeyRequest struct {
	Email string `json:"email"`
	// TTLDays bounds the token lifetime; zero mints a non-expiring token.
	TTLDays int `json:"ttlDays"`
}

// Mint creates a new API token for the addressed project.
func (h *APIKeyHandlers) Mint(w http.ResponseWriter, r *http.Request) {
	ref := GetProjectRef(r)
	var req mintKeyRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	if req.TTLDays < 0 {
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "bad_request",
			Err: errors.New("ttlDays must not be negative")})
		return
	}

	minted, err := h.Svc.Mint(r.Context(), service.MintRequest{
		Org:   ref.Org,
		Site:  ref.Site,
		Email: req.Email,
		TTL:   time.Duration(req.TTLDays) * 24 * time.Hour,
	})
	if err != nil {
		if errors.Is(err, data.ErrAPIKeyExists) {
			WriteError(w, ErrorParams{Code: http.StatusConflict, ErrCode: "conflict", Err: err})
			return
		}
		WriteError(w, ErrorParams{Code: http.StatusInternalServerError, ErrCode: "internal", Err: err})
		return
	}
	WriteJSON(w, http.StatusCreated, map[string]any{
		"key":   minted.Key,
		"token": minted.Token,
	})
}

// List returns the key records of the addressed org.
func (h *APIKeyHandlers) List(w http.ResponseWriter, r *http.Request) {
	ref := GetProjectRef(r)
	keys, err := h.Svc.List(r.Context(), ref.Org)
	if err != nil {
		WriteError(w, ErrorParams{Code: http.StatusInternalServerError, ErrCode: "internal", Err: err})
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"keys": keys})
}

// Revoke marks a key revoked.
func (h *APIKeyHandlers) Revoke(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := h.Svc.Revoke(r.Context(), id); err != nil {
		if errors.Is(err, data.ErrAPIKeyNotFound) {
			WriteError(w, ErrorParams{Code: http.StatusNotFound, ErrCode: "not_found", Err: err})
			return
		}
		WriteError(w, ErrorParams{Code: http.StatusInternalServerError, ErrCode: "internal", Err: err})
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"status": "revoked"})
}
