package session_test

import (
	"context"
	"os"
	"testing"
	"time"

	"agent-portal/internal/core"
	"agent-portal/internal/session"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) *pgxpool.Pool {
	_ = godotenv.Load("../../.env")

	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping integration test")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	schema, err := os.ReadFile("../../migrations/001_portal_sessions.sql")
	require.NoError(t, err)
	if _, err := pool.Exec(ctx, string(schema)); err != nil {
		t.Fatalf("Failed to apply schema: %v", err)
	}
	if _, err := pool.Exec(ctx, `TRUNCATE TABLE portal_sessions`); err != nil {
		t.Fatalf("Failed to clean test database: %v", err)
	}
	return pool
}

func TestPGRecords_Lifecycle(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()
	ctx := context.Background()
	store := session.NewPGRecords(pool)

	r := session.NewRecord("upstream-tok", core.Agent{ID: 7, Company: "Sun Trips", Email: "a@b.c"}, time.Hour)
	require.NoError(t, store.Put(ctx, r))

	got, err := store.Get(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, "upstream-tok", got.Token)
	assert.Equal(t, "Sun Trips", got.Agent.Company)

	require.NoError(t, store.Delete(ctx, r.ID))
	_, err = store.Get(ctx, r.ID)
	assert.ErrorIs(t, err, session.ErrRecordNotFound)
}

func TestPGRecords_Expiry(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()
	ctx := context.Background()
	store := session.NewPGRecords(pool)

	expired := session.Record{ID: "old", Token: "t", ExpiresAt: time.Now().Add(-time.Minute)}
	require.NoError(t, store.Put(ctx, expired))

	_, err := store.Get(ctx, "old")
	assert.ErrorIs(t, err, session.ErrRecordNotFound)

	n, err := store.Purge(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}
