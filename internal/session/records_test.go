package session

import (
	"context"
	"testing"
	"time"

	"agent-portal/internal/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMemoryRecords_GetExpired(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryRecords()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }

	r := Record{ID: "a", Token: "tok", Agent: core.Agent{ID: 1}, ExpiresAt: now.Add(time.Minute)}
	require.NoError(t, m.Put(ctx, r))

	got, err := m.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "tok", got.Token)

	now = now.Add(2 * time.Minute)
	_, err = m.Get(ctx, "a")
	assert.ErrorIs(t, err, ErrRecordNotFound)
	assert.Equal(t, 0, m.Len())
}

func TestMemoryRecords_Delete(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryRecords()
	r := NewRecord("tok", core.Agent{ID: 2}, time.Hour)
	require.NoError(t, m.Put(ctx, r))
	require.NoError(t, m.Delete(ctx, r.ID))
	_, err := m.Get(ctx, r.ID)
	assert.ErrorIs(t, err, ErrRecordNotFound)
}

func TestMemoryRecords_Purge(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryRecords()
	now := time.Now()
	m.now = func() time.Time { return now }
	require.NoError(t, m.Put(ctx, Record{ID: "old", ExpiresAt: now.Add(-time.Second)}))
	require.NoError(t, m.Put(ctx, Record{ID: "new", ExpiresAt: now.Add(time.Hour)}))

	m.Purge()
	assert.Equal(t, 1, m.Len())
}

func TestMemoryRecords_StartPurgeStops(t *testing.T) {
	defer goleak.VerifyNone(t)

	m := NewMemoryRecords()
	ctx, cancel := context.WithCancel(context.Background())
	done := m.StartPurge(ctx, time.Millisecond)
	require.NoError(t, m.Put(ctx, Record{ID: "x", ExpiresAt: time.Now().Add(-time.Second)}))

	assert.Eventually(t, func() bool { return m.Len() == 0 }, time.Second, 5*time.Millisecond)
	cancel()
	<-done
}

func TestNewRecord(t *testing.T) {
	r1 := NewRecord("t", core.Agent{}, time.Hour)
	r2 := NewRecord("t", core.Agent{}, time.Hour)
	assert.NotEqual(t, r1.ID, r2.ID)
	assert.False(t, r1.Expired(time.Now()))
	assert.True(t, r1.Expired(time.Now().Add(2*time.Hour)))
}
