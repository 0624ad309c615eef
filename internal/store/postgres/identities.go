package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pgvector/pgvector-go"

	"github.com/celebware/starspot/internal/store"
)

// IdentityRepository provides PostgreSQL-backed storage for gallery
// identities and their embeddings.
type IdentityRepository struct {
	pool *Pool
}

// NewIdentityRepository creates a new PostgreSQL identity repository.
func NewIdentityRepository(pool *Pool) *IdentityRepository {
	return &IdentityRepository{pool: pool}
}

// LoadAll returns every identity in insertion order. The gallery scans
// identities sequentially, so the order decides match tie-breaks and must be
// stable across restarts.
func (r *IdentityRepository) LoadAll(ctx context.Context) ([]store.StoredIdentity, error) {
	query := `
		SELECT id, name, embedding, dim, created_at
		FROM identities
		ORDER BY created_at, id
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query identities: %w", err)
	}
	defer rows.Close()

	return scanIdentities(rows)
}

// Count returns the total number of identities stored.
func (r *IdentityRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM identities").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count identities: %w", err)
	}
	return count, nil
}

// FindSimilar returns the nearest identities by Euclidean distance, the same
// metric the in-memory matcher uses.
func (r *IdentityRepository) FindSimilar(ctx context.Context, embedding []float32, limit int) ([]store.StoredIdentity, []float64, error) {
	query := `
		SELECT id, name, embedding, dim, created_at,
		       embedding <-> $1::vector AS distance
		FROM identities
		ORDER BY distance
		LIMIT $2
	`

	vec := pgvector.NewVector(embedding)
	rows, err := r.pool.Query(ctx, query, vec, limit)
	if err != nil {
		return nil, nil, fmt.Errorf("query similar identities: %w", err)
	}
	defer rows.Close()

	var identities []store.StoredIdentity
	var distances []float64

	for rows.Next() {
		var identity store.StoredIdentity
		var vec pgvector.Vector
		var dist float64

		if err := rows.Scan(&identity.ID, &identity.Name, &vec, &identity.Dim, &identity.CreatedAt, &dist); err != nil {
			return nil, nil, fmt.Errorf("scan identity: %w", err)
		}

		identity.Embedding = vec.Slice()
		identities = append(identities, identity)
		distances = append(distances, dist)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("iterate identities: %w", err)
	}

	return identities, distances, nil
}

// Upsert inserts an identity or replaces its name and embedding.
func (r *IdentityRepository) Upsert(ctx context.Context, identity store.StoredIdentity) error {
	query := `
		INSERT INTO identities (id, name, embedding, dim)
		VALUES ($1, $2, $3::vector, $4)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			embedding = EXCLUDED.embedding,
			dim = EXCLUDED.dim
	`

	vec := pgvector.NewVector(identity.Embedding)
	if _, err := r.pool.Exec(ctx, query, identity.ID, identity.Name, vec, identity.Dim); err != nil {
		return fmt.Errorf("save identity: %w", err)
	}
	return nil
}

// Delete removes an identity.
func (r *IdentityRepository) Delete(ctx context.Context, id string) error {
	res, err := r.pool.Exec(ctx, "DELETE FROM identities WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete identity: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("identity %s: %w", id, store.ErrNotFound)
	}
	return nil
}

func scanIdentities(rows *sql.Rows) ([]store.StoredIdentity, error) {
	var identities []store.StoredIdentity

	for rows.Next() {
		var identity store.StoredIdentity
		var vec pgvector.Vector

		if err := rows.Scan(&identity.ID, &identity.Name, &vec, &identity.Dim, &identity.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan identity: %w", err)
		}

		identity.Embedding = vec.Slice()
		identities = append(identities, identity)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate identities: %w", err)
	}

	return identities, nil
}

// Verify interface compliance
var _ store.IdentityWriter = (*IdentityRepository)(nil)
