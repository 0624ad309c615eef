//go:build integration

package postgres

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/celebware/starspot/internal/config"
	"github.com/celebware/starspot/internal/store"
)

func setupTestContainer(t *testing.T) (*Pool, func()) {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "pgvector/pgvector:pg16",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "testdb",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Skipf("Docker not available or container failed to start, skipping integration test: %v", err)
		return nil, func() {}
	}
	if container == nil {
		t.Skip("Docker not available, skipping integration test")
		return nil, func() {}
	}

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("Failed to get container host: %v", err)
	}

	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		t.Fatalf("Failed to get container port: %v", err)
	}

	dbURL := fmt.Sprintf("postgres://test:test@%s:%s/testdb?sslmode=disable", host, port.Port())

	cfg := &config.DatabaseConfig{
		URL:          dbURL,
		MaxOpenConns: 5,
		MaxIdleConns: 2,
	}

	pool, err := NewPool(cfg)
	if err != nil {
		container.Terminate(ctx)
		t.Fatalf("Failed to create pool: %v", err)
	}

	if err := pool.Migrate(ctx); err != nil {
		pool.Close()
		container.Terminate(ctx)
		t.Fatalf("Failed to run migrations: %v", err)
	}

	cleanup := func() {
		pool.Close()
		container.Terminate(ctx)
	}

	return pool, cleanup
}

// embeddingAt builds a 128-dim vector whose distance to embeddingAt(0) is
// exactly |v|.
func embeddingAt(v float32) []float32 {
	emb := make([]float32, 128)
	emb[0] = v
	return emb
}

func TestIdentityRepository(t *testing.T) {
	pool, cleanup := setupTestContainer(t)
	if pool == nil {
		return
	}
	defer cleanup()

	ctx := context.Background()
	repo := NewIdentityRepository(pool)

	t.Run("UpsertAndLoadAll", func(t *testing.T) {
		identities := []store.StoredIdentity{
			{ID: "id-1", Name: "Ada Lovelace", Embedding: embeddingAt(0), Dim: 128},
			{ID: "id-2", Name: "Grace Hopper", Embedding: embeddingAt(1), Dim: 128},
			{ID: "id-3", Name: "Annie Easley", Embedding: embeddingAt(2), Dim: 128},
		}
		for _, identity := range identities {
			if err := repo.Upsert(ctx, identity); err != nil {
				t.Fatalf("Failed to upsert %s: %v", identity.ID, err)
			}
		}

		got, err := repo.LoadAll(ctx)
		if err != nil {
			t.Fatalf("Failed to load identities: %v", err)
		}
		if len(got) != 3 {
			t.Fatalf("Expected 3 identities, got %d", len(got))
		}
		for i, identity := range got {
			if identity.ID != identities[i].ID {
				t.Errorf("Position %d: expected %s, got %s", i, identities[i].ID, identity.ID)
			}
			if len(identity.Embedding) != 128 {
				t.Errorf("Expected 128 dimensions, got %d", len(identity.Embedding))
			}
		}
	})

	t.Run("UpsertReplaces", func(t *testing.T) {
		err := repo.Upsert(ctx, store.StoredIdentity{
			ID: "id-1", Name: "Ada King", Embedding: embeddingAt(0.5), Dim: 128,
		})
		if err != nil {
			t.Fatalf("Failed to upsert: %v", err)
		}

		got, err := repo.LoadAll(ctx)
		if err != nil {
			t.Fatalf("Failed to load identities: %v", err)
		}
		if len(got) != 3 {
			t.Fatalf("Upsert should not add rows, got %d", len(got))
		}
		if got[0].Name != "Ada King" {
			t.Errorf("Expected updated name, got %s", got[0].Name)
		}
	})

	t.Run("Count", func(t *testing.T) {
		count, err := repo.Count(ctx)
		if err != nil {
			t.Fatalf("Failed to count: %v", err)
		}
		if count != 3 {
			t.Errorf("Expected 3, got %d", count)
		}
	})

	t.Run("FindSimilar", func(t *testing.T) {
		got, distances, err := repo.FindSimilar(ctx, embeddingAt(1), 2)
		if err != nil {
			t.Fatalf("Failed to find similar: %v", err)
		}
		if len(got) != 2 || len(distances) != 2 {
			t.Fatalf("Expected 2 results, got %d/%d", len(got), len(distances))
		}
		if got[0].ID != "id-2" {
			t.Errorf("Expected nearest id-2, got %s", got[0].ID)
		}
		if math.Abs(distances[0]) > 1e-6 {
			t.Errorf("Expected zero distance to id-2, got %f", distances[0])
		}
		if distances[1] < distances[0] {
			t.Error("Distances not sorted")
		}
	})

	t.Run("Delete", func(t *testing.T) {
		if err := repo.Delete(ctx, "id-3"); err != nil {
			t.Fatalf("Failed to delete: %v", err)
		}

		err := repo.Delete(ctx, "id-3")
		if !errors.Is(err, store.ErrNotFound) {
			t.Errorf("Expected ErrNotFound for second delete, got %v", err)
		}
	})
}

func TestMigrations(t *testing.T) {
	pool, cleanup := setupTestContainer(t)
	if pool == nil {
		return
	}
	defer cleanup()

	applied, err := pool.MigrationsApplied(context.Background())
	if err != nil {
		t.Fatalf("Failed to get applied migrations: %v", err)
	}

	expected := []string{
		"001_create_identities.sql",
		"002_create_identity_indexes.sql",
	}
	if len(applied) != len(expected) {
		t.Fatalf("Expected %d migrations, got %d", len(expected), len(applied))
	}
	for i, want := range expected {
		if applied[i] != want {
			t.Errorf("Migration %d: expected '%s', got '%s'", i, want, applied[i])
		}
	}
}
