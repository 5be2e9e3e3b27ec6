package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/MrSnakeDoc/edgegate/internal/domain"
)

// schema holds the single relation this router owns. One table keyed by
// host; no migration tooling needed until a second relation shows up.
const schema = `
CREATE TABLE IF NOT EXISTS host_mappings (
	host           TEXT PRIMARY KEY,
	shop_id        TEXT NOT NULL,
	canonical_host TEXT NOT NULL,
	default_locale TEXT NOT NULL,
	mode           TEXT NOT NULL,
	redirect_to    TEXT NOT NULL DEFAULT '',
	expires_at_ms  BIGINT,
	updated_at     TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// Store is the durable source of truth for host mappings.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore creates a Postgres-backed mapping store.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// EnsureSchema creates the host_mappings table if it does not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to ensure host_mappings schema: %w", err)
	}
	return nil
}

// GetByHost returns the mapping owning host, or
// domain.ErrMappingNotFound when no row exists.
func (s *Store) GetByHost(ctx context.Context, host string) (*domain.HostMapping, error) {
	const q = `
		SELECT host, shop_id, canonical_host, default_locale, mode,
		       redirect_to, COALESCE(expires_at_ms, 0), updated_at
		FROM host_mappings
		WHERE host = $1`

	var m domain.HostMapping
	err := s.pool.QueryRow(ctx, q, host).Scan(
		&m.Host, &m.ShopID, &m.CanonicalHost, &m.DefaultLocale, &m.Mode,
		&m.RedirectTo, &m.ExpiresAt, &m.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrMappingNotFound
		}
		return nil, fmt.Errorf("failed to query host mapping: %w", err)
	}
	return &m, nil
}

// Upsert inserts or replaces the mapping keyed by host, bumping
// updated_at. Re-upserting the same host is idempotent.
func (s *Store) Upsert(ctx context.Context, m *domain.HostMapping) error {
	const q = `
		INSERT INTO host_mappings
			(host, shop_id, canonical_host, default_locale, mode, redirect_to, expires_at_ms, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, 0), now())
		ON CONFLICT (host) DO UPDATE SET
			shop_id        = EXCLUDED.shop_id,
			canonical_host = EXCLUDED.canonical_host,
			default_locale = EXCLUDED.default_locale,
			mode           = EXCLUDED.mode,
			redirect_to    = EXCLUDED.redirect_to,
			expires_at_ms  = EXCLUDED.expires_at_ms,
			updated_at     = now()`

	if _, err := s.pool.Exec(ctx, q,
		m.Host, m.ShopID, m.CanonicalHost, m.DefaultLocale, string(m.Mode), m.RedirectTo, m.ExpiresAt,
	); err != nil {
		return fmt.Errorf("failed to upsert host mapping: %w", err)
	}
	return nil
}

// Delete removes the mapping for host. Deleting an absent host is not
// an error.
func (s *Store) Delete(ctx context.Context, host string) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM host_mappings WHERE host = $1`, host); err != nil {
		return fmt.Errorf("failed to delete host mapping: %w", err)
	}
	return nil
}

// Healthcheck pings the pool, for readiness probes.
func (s *Store) Healthcheck(ctx context.Context) error {
	if err := s.pool.Ping(ctx); err != nil {
		return fmt.Errorf("postgres healthcheck failed: %w", err)
	}
	return nil
}
