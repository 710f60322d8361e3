package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PGRecords stores session records in the portal_sessions table.
type PGRecords struct {
	pool *pgxpool.Pool
}

// NewPGRecords returns a RecordStore over pool.
func NewPGRecords(pool *pgxpool.Pool) *PGRecords {
	return &PGRecords{pool: pool}
}

func (p *PGRecords) Put(ctx context.Context, r Record) error {
	agent, err := json.Marshal(r.Agent)
	if err != nil {
		return fmt.Errorf("encode agent: %w", err)
	}
	_, err = p.pool.Exec(ctx, `
		INSERT INTO portal_sessions (id, upstream_token, agent, expires_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE
		SET upstream_token = EXCLUDED.upstream_token,
		    agent          = EXCLUDED.agent,
		    expires_at     = EXCLUDED.expires_at`,
		r.ID, r.Token, agent, r.ExpiresAt)
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

func (p *PGRecords) Get(ctx context.Context, id string) (*Record, error) {
	var (
		r     Record
		agent []byte
	)
	err := p.pool.QueryRow(ctx, `
		SELECT id, upstream_token, agent, expires_at
		FROM portal_sessions
		WHERE id = $1 AND expires_at > now()`, id).
		Scan(&r.ID, &r.Token, &agent, &r.ExpiresAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrRecordNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if err := json.Unmarshal(agent, &r.Agent); err != nil {
		return nil, fmt.Errorf("decode agent: %w", err)
	}
	return &r, nil
}

func (p *PGRecords) Delete(ctx context.Context, id string) error {
	if _, err := p.pool.Exec(ctx, `DELETE FROM portal_sessions WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// Purge deletes expired rows and returns how many went.
func (p *PGRecords) Purge(ctx context.Context) (int64, error) {
	tag, err := p.pool.Exec(ctx, `DELETE FROM portal_sessions WHERE expires_at <= now()`)
	if err != nil {
		return 0, fmt.Errorf("purge sessions: %w", err)
	}
	return tag.RowsAffected(), nil
}
