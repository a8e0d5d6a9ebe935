package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/skynolimit/topscores/internal/profile"
)

// PreferencesStore is the Postgres-backed profile.Store. Profiles are stored
// as one JSONB document per device.
type PreferencesStore struct {
	pool *Pool
}

func NewPreferencesStore(pool *Pool) *PreferencesStore {
	return &PreferencesStore{pool: pool}
}

func (s *PreferencesStore) Get(ctx context.Context, deviceID string) (*profile.Profile, error) {
	var raw []byte
	err := s.pool.QueryRow(ctx, "prefs_get", deviceID).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get preferences for %s: %w", deviceID, err)
	}
	var p profile.Profile
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("decode preferences for %s: %w", deviceID, err)
	}
	return &p, nil
}

func (s *PreferencesStore) Set(ctx context.Context, p *profile.Profile) error {
	raw, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode preferences for %s: %w", p.DeviceID, err)
	}
	if _, err := s.pool.Exec(ctx, "prefs_upsert", p.DeviceID, raw); err != nil {
		return fmt.Errorf("upsert preferences for %s: %w", p.DeviceID, err)
	}
	return nil
}

func (s *PreferencesStore) All(ctx context.Context) ([]*profile.Profile, error) {
	rows, err := s.pool.Query(ctx, "prefs_all")
	if err != nil {
		return nil, fmt.Errorf("list preferences: %w", err)
	}
	defer rows.Close()

	var out []*profile.Profile
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan preferences row: %w", err)
		}
		var p profile.Profile
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, fmt.Errorf("decode preferences row: %w", err)
		}
		out = append(out, &p)
	}
	return out, rows.Err()
}
