package auth

import (
	"fmt"
	"strings"
)

// AuthRequiredError is the denial raised when an operation needs an
// authenticated caller and the request carried no valid credential.
// The HTTP layer maps it to 401.
type AuthRequiredError struct {
	Reason string
}

func (e *AuthRequiredError) Error() string {
	if e.Reason == "" {
		return "not authenticated"
	}
	return "not authenticated: " + e.Reason
}

// PermissionDeniedError is the denial raised when an authenticated caller
// lacks one or more required permissions. Missing always names at least one
// permission so callers can tell this apart from AuthRequiredError.
// The HTTP layer maps it to 403.
type PermissionDeniedError struct {
	Missing []string
}

func (e *PermissionDeniedError) Error() string {
	return fmt.Sprintf("missing permission: %s", strings.Join(e.Missing, ", "))
}

// ForbiddenError is a hard authorization denial that is not tied to a
// permission, such as a cross-origin trust violation. The HTTP layer maps
// it to 403 with a redacted message.
type ForbiddenError struct {
	Reason string
}

func (e *ForbiddenError) Error() string { return e.Reason }
