package model

import (
	"errors"
	"strings"
	"time"
)

// APIKey is the directory record of an admin-issued API token. The token
// itself is only shown at mint time; the record tracks the revocable jti.
type APIKey struct {
	ID        string     `json:"id" db:"id"`
	Org       string     `json:"org" db:"org"`
	Site      string     `json:"site" db:"site"`
	Email     string     `json:"email" db:"email"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	ExpiresAt *time.Time `json:"expires_at,omitempty" db:"expires_at"`
	RevokedAt *time.Time `json:"revoked_at,omitempty" db:"revoked_at"`
}

// Subject returns the org/site subject the key is scoped to.
func (k *APIKey) Subject() string {
	return k.Org + "/" + k.Site
}

// Active reports whether the key is neither revoked nor expired at t.
func (k *APIKey) Active(t time.Time) bool {
	if k.RevokedAt != nil && !k.RevokedAt.After(t) {
		return false
	}
	if k.ExpiresAt != nil && !k.ExpiresAt.After(t) {
		return false
	}
	return true
}

// Validate checks the record before persistence.
func (k *APIKey) Validate() error {
	if strings.TrimSpace(k.ID) == "" {
		return errors.New("api key id is required")
	}
	if strings.TrimSpace(k.Org) == "" {
		return errors.New("org is required")
	}
	if strings.TrimSpace(k.Site) == "" {
		return errors.New("site is required")
	}
	return nil
}
