package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/contentops/admin-gateway/internal/data/pgxutil"
	"github.com/contentops/admin-gateway/internal/domain/model"
)

var (
	// ErrAPIKeyNotFound is returned when no key record matches.
	ErrAPIKeyNotFound = errors.New("api key not found")
	// ErrAPIKeyExists is returned when minting a key with a duplicate id.
	ErrAPIKeyExists = errors.New("api key already exists")
)

const apiKeyColumns = `id, org, site, email, created_at, expires_at, revoked_at`

// APIKeyRepo persists the directory of admin-issued API tokens.
type APIKeyRepo struct {
	DB  *sql.DB
	now func() time.Time
}

// NewAPIKeyRepo creates an APIKeyRepo backed by the given database.
func NewAPIKeyRepo(db *sql.DB) *APIKeyRepo {
	return &APIKeyRepo{DB: db, now: time.Now}
}

// Create inserts a new key record.
func (r *APIKeyRepo) Create(ctx context.Context, key *model.APIKey) error {
	if key == nil {
		return errors.New("api key is required")
	}
	if err := key.Validate(); err != nil {
		return err
	}

	createdAt := key.CreatedAt
	if createdAt.IsZero() {
		createdAt = r.now().UTC()
		key.CreatedAt = createdAt
	}

	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		_, err := conn.Exec(ctx, `
			INSERT INTO api_keys (id, org, site, email, created_at, expires_at)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, key.ID, key.Org, key.Site, key.Email, createdAt, key.ExpiresAt)
		return err
	})
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return ErrAPIKeyExists
		}
		return fmt.Errorf("failed to create api key: %w", err)
	}
	return nil
}

// GetByID retrieves a key record by its id.
func (r *APIKeyRepo) GetByID(ctx context.Context, id string) (*model.APIKey, error) {
	var key model.APIKey
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `
			SELECT `+apiKeyColumns+`
			FROM api_keys
			WHERE id = $1
		`, id)
		if err != nil {
			return err
		}
		defer rows.Close()
		key, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.APIKey])
		return err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAPIKeyNotFound
		}
		return nil, fmt.Errorf("failed to get api key: %w", err)
	}
	return &key, nil
}

// ListByOrg retrieves the key records of an org, newest first.
func (r *APIKeyRepo) ListByOrg(ctx context.Context, org string) ([]*model.APIKey, error) {
	var rowsOut []model.APIKey
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `
			SELECT `+apiKeyColumns+`
			FROM api_keys
			WHERE org = $1
			ORDER BY created_at DESC
		`, org)
		if err != nil {
			return err
		}
		defer rows.Close()
		rowsOut, err = pgx.CollectRows(rows, pgx.RowToStructByName[model.APIKey])
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list api keys: %w", err)
	}

	res := make([]*model.APIKey, len(rowsOut))
	for i := range rowsOut {
		res[i] = &rowsOut[i]
	}
	return res, nil
}

// Revoke marks a key revoked. Revoking an already-revoked key keeps the
// original revocation time.
func (r *APIKeyRepo) Revoke(ctx context.Context, id string) error {
	revokedAt := r.now().UTC()
	var affected int64
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		ct, err := conn.Exec(ctx, `
			UPDATE api_keys
			SET revoked_at = $2
			WHERE id = $1 AND revoked_at IS NULL
		`, id, revokedAt)
		if err != nil {
			return err
		}
		affected = ct.RowsAffected()
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to revoke api key: %w", err)
	}
	if affected == 0 {
		// Distinguish missing from already revoked.
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
	}
	return nil
}
