package service

import (
	"context"
	"log/slog"
	"testing"
	"time"

	jose "github.com/go-jose/go-jose/v4"
	"github.com/go-jose/go-jose/v4/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/contentops/admin-gateway/internal/domain/model"
	"github.com/contentops/admin-gateway/internal/mocks"
	"github.com/contentops/admin-gateway/internal/testutil"
)

func newTestKeyService(t *testing.T, keys *mocks.MockAPIKeyDirectory) *APIKeyService {
	t.Helper()
	return NewAPIKeyService(APIKeyServiceOptions{
		Registry: testRegistry(t, testutil.NewRSAKey(t)),
		Keys:     keys,
		Logger:   slog.New(slog.DiscardHandler),
		Now:      func() time.Time { return testNow },
	})
}

func TestMint(t *testing.T) {
	ctrl := gomock.NewController(t)
	keys := mocks.NewMockAPIKeyDirectory(ctrl)

	var recorded *model.APIKey
	keys.EXPECT().Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, key *model.APIKey) error {
			recorded = key
			return nil
		})

	svc := newTestKeyService(t, keys)
	minted, err := svc.Mint(context.Background(), MintRequest{
		Org:   " ACME ",
		Site:  "WWW",
		Email: "alice@example.com",
		TTL:   30 * 24 * time.Hour,
	})
	require.NoError(t, err)
	require.NotNil(t, recorded)

	// Subject segments are normalized.
	assert.Equal(t, "acme", recorded.Org)
	assert.Equal(t, "www", recorded.Site)
	assert.Equal(t, testNow, recorded.CreatedAt)
	require.NotNil(t, recorded.ExpiresAt)
	assert.Equal(t, testNow.Add(30*24*time.Hour), *recorded.ExpiresAt)

	// The minted token verifies against the admin token secret and carries
	// the record id as jti.
	tok, err := jwt.ParseSigned(minted.Token, []jose.SignatureAlgorithm{jose.HS256})
	require.NoError(t, err)
	var std jwt.Claims
	var extra map[string]any
	require.NoError(t, tok.Claims([]byte(testSecret), &std, &extra))
	assert.Equal(t, "acme/www", std.Subject)
	assert.Equal(t, recorded.ID, std.ID)
	assert.Equal(t, "admin-gateway", std.Issuer)
	assert.Equal(t, "alice@example.com", extra["email"])
	require.NotNil(t, std.Expiry)
	assert.Equal(t, testNow.Add(30*24*time.Hour).Unix(), std.Expiry.Time().Unix())
}

func TestMintNonExpiring(t *testing.T) {
	ctrl := gomock.NewController(t)
	keys := mocks.NewMockAPIKeyDirectory(ctrl)
	keys.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)

	svc := newTestKeyService(t, keys)
	minted, err := svc.Mint(context.Background(), MintRequest{Org: "acme", Site: "www"})
	require.NoError(t, err)
	assert.Nil(t, minted.Key.ExpiresAt)

	tok, err := jwt.ParseSigned(minted.Token, []jose.SignatureAlgorithm{jose.HS256})
	require.NoError(t, err)
	var std jwt.Claims
	require.NoError(t, tok.Claims([]byte(testSecret), &std))
	assert.Nil(t, std.Expiry)
}

func TestMintValidation(t *testing.T) {
	svc := newTestKeyService(t, mocks.NewMockAPIKeyDirectory(gomock.NewController(t)))

	_, err := svc.Mint(context.Background(), MintRequest{Site: "www"})
	assert.Error(t, err)
	_, err = svc.Mint(context.Background(), MintRequest{Org: "acme"})
	assert.Error(t, err)
}

func TestMintDirectoryFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	keys := mocks.NewMockAPIKeyDirectory(ctrl)
	keys.EXPECT().Create(gomock.Any(), gomock.Any()).Return(assert.AnError)

	svc := newTestKeyService(t, keys)
	_, err := svc.Mint(context.Background(), MintRequest{Org: "acme", Site: "www"})
	assert.ErrorIs(t, err, assert.AnError)
}

func TestList(t *testing.T) {
	ctrl := gomock.NewController(t)
	keys := mocks.NewMockAPIKeyDirectory(ctrl)
	keys.EXPECT().ListByOrg(gomock.Any(), "acme").
		Return([]*model.APIKey{{ID: "k1", Org: "acme", Site: "www"}}, nil)

	svc := newTestKeyService(t, keys)
	out, err := svc.List(context.Background(), " ACME ")
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "k1", out[0].ID)

	_, err = svc.List(context.Background(), "  ")
	assert.Error(t, err)
}

func TestRevoke(t *testing.T) {
	ctrl := gomock.NewController(t)
	keys := mocks.NewMockAPIKeyDirectory(ctrl)
	keys.EXPECT().Revoke(gomock.Any(), "k1").Return(nil)

	svc := newTestKeyService(t, keys)
	assert.NoError(t, svc.Revoke(context.Background(), " k1 "))
	assert.Error(t, svc.Revoke(context.Background(), ""))
}
