package httpx

import (
	"context"
	"net/http"

	"github.com/contentops/admin-gateway/internal/domain/auth"
)

// authInfoKey is an unexported context key type for AuthInfo storage.
type authInfoKey struct{}

// SetAuthInfoInContext stores the request's AuthInfo in the context. The
// authentication middleware calls this exactly once per request.
func SetAuthInfoInContext(ctx context.Context, info *auth.AuthInfo) context.Context {
	return context.WithValue(ctx, authInfoKey{}, info)
}

// GetAuthInfo retrieves the request's AuthInfo, nil when the authentication
// middleware did not run.
func GetAuthInfo(r *http.Request) *auth.AuthInfo {
	if info, ok := r.Context().Value(authInfoKey{}).(*auth.AuthInfo); ok {
		return info
	}
	return nil
}

// ProjectRef is the org/site pair addressed by an admin API route.
type ProjectRef struct {
	Org  string
	Site string
}

// projectRefKey is an unexported context key type for ProjectRef storage.
type projectRefKey struct{}

// SetProjectRefInContext stores the addressed project in the context.
func SetProjectRefInContext(ctx context.Context, ref ProjectRef) context.Context {
	return context.WithValue(ctx, projectRefKey{}, ref)
}

// GetProjectRef retrieves the addressed project; zero when the route has no
// org/site parameters.
func GetProjectRef(r *http.Request) ProjectRef {
	if ref, ok := r.Context().Value(projectRefKey{}).(ProjectRef); ok {
		return ref
	}
	return ProjectRef{}
}
