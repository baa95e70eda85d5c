// Package mocks provides mock implementations for testing the auth subsystem.
//
// This package uses go.uber.org/mock (gomock) to generate type-safe mocks for the
// port interfaces. The mocks are generated using go:generate directives and provide
// a fluent API for setting up test expectations.
//
// To regenerate mocks after interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	defer ctrl.Finish()
//	configs := mocks.NewMockConfigSource(ctrl)
//	configs.EXPECT().SiteConfig(gomock.Any(), "acme", "www").Return(cfg, nil)
package mocks

// Generate mocks for the auth subsystem's port interfaces from internal/ports.
// This creates MockConfigSource, MockListResolver, MockAPIKeyDirectory and
// MockCacheRepository in a single file.
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=ports_mocks.go github.com/contentops/admin-gateway/internal/ports ConfigSource,ListResolver,APIKeyDirectory,CacheRepository
