package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"agent-portal/internal/core"

	"github.com/google/uuid"
)

// ErrRecordNotFound is returned for unknown or expired session records.
var ErrRecordNotFound = errors.New("session record not found")

// Record is a server-side web session: the upstream token stays here and the
// browser only ever sees ID.
type Record struct {
	ID        string
	Token     string
	Agent     core.Agent
	ExpiresAt time.Time
}

// NewRecord builds a record with a fresh random ID.
func NewRecord(token string, agent core.Agent, ttl time.Duration) Record {
	return Record{
		ID:        uuid.NewString(),
		Token:     token,
		Agent:     agent,
		ExpiresAt: time.Now().Add(ttl),
	}
}

// Expired reports whether the record is past its expiry at now.
func (r Record) Expired(now time.Time) bool {
	return !now.Before(r.ExpiresAt)
}

// RecordStore persists web session records.
type RecordStore interface {
	Put(ctx context.Context, r Record) error
	Get(ctx context.Context, id string) (*Record, error)
	Delete(ctx context.Context, id string) error
}

// MemoryRecords is a thread-safe in-memory RecordStore with TTL expiry.
type MemoryRecords struct {
	mu      sync.Mutex
	records map[string]Record
	now     func() time.Time
}

// NewMemoryRecords returns an empty store.
func NewMemoryRecords() *MemoryRecords {
	return &MemoryRecords{records: make(map[string]Record), now: time.Now}
}

func (m *MemoryRecords) Put(_ context.Context, r Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[r.ID] = r
	return nil
}

func (m *MemoryRecords) Get(_ context.Context, id string) (*Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.records[id]
	if !ok {
		return nil, ErrRecordNotFound
	}
	if r.Expired(m.now()) {
		delete(m.records, id)
		return nil, ErrRecordNotFound
	}
	return &r, nil
}

func (m *MemoryRecords) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.records, id)
	return nil
}

// Len returns the number of records held, expired ones included.
func (m *MemoryRecords) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.records)
}

// Purge evicts every expired record.
func (m *MemoryRecords) Purge() {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	for id, r := range m.records {
		if r.Expired(now) {
			delete(m.records, id)
		}
	}
}

// StartPurge evicts expired records every interval until ctx is done. The
// returned channel is closed once the goroutine has exited.
func (m *MemoryRecords) StartPurge(ctx context.Context, interval time.Duration) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.Purge()
			}
		}
	}()
	return done
}
