package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/skynolimit/topscores/internal/notify"
)

// EnvelopeStore is the Postgres-backed notify.EnvelopeStore. Keeping the
// dedup record in the database means a restart does not re-send
// notifications for changes it has already delivered.
type EnvelopeStore struct {
	pool *Pool
}

func NewEnvelopeStore(pool *Pool) *EnvelopeStore {
	return &EnvelopeStore{pool: pool}
}

func (s *EnvelopeStore) Get(ctx context.Context, key string) (*notify.Envelope, error) {
	var raw []byte
	err := s.pool.QueryRow(ctx, "envelope_get", key).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get envelope %s: %w", key, err)
	}
	var e notify.Envelope
	if err := json.Unmarshal(raw, &e); err != nil {
		return nil, fmt.Errorf("decode envelope %s: %w", key, err)
	}
	return &e, nil
}

func (s *EnvelopeStore) Set(ctx context.Context, e *notify.Envelope) error {
	raw, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encode envelope %s: %w", e.Key, err)
	}
	_, err = s.pool.Exec(ctx, "envelope_upsert",
		e.Key, e.DeviceID, e.ThreadID, raw, e.Sent, e.AttemptedAt)
	if err != nil {
		return fmt.Errorf("upsert envelope %s: %w", e.Key, err)
	}
	return nil
}

func (s *EnvelopeStore) List(ctx context.Context, limit int) ([]*notify.Envelope, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.pool.Query(ctx, "envelope_list", limit)
	if err != nil {
		return nil, fmt.Errorf("list envelopes: %w", err)
	}
	defer rows.Close()

	var out []*notify.Envelope
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan envelope row: %w", err)
		}
		var e notify.Envelope
		if err := json.Unmarshal(raw, &e); err != nil {
			return nil, fmt.Errorf("decode envelope row: %w", err)
		}
		out = append(out, &e)
	}
	return out, rows.Err()
}

// Prune removes envelopes older than the given age. Run from the
// maintenance loop so the dedup table does not grow without bound.
func (s *EnvelopeStore) Prune(ctx context.Context, maxAge time.Duration) (int64, error) {
	tag, err := s.pool.Exec(ctx, "envelope_prune", time.Now().UTC().Add(-maxAge))
	if err != nil {
		return 0, fmt.Errorf("prune envelopes: %w", err)
	}
	return tag.RowsAffected(), nil
}
