// Package settings persists the singleton runtime configuration row.
package settings

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/souqlane/stylesearch/internal/domain"
)

// The config lives in exactly one row; the fixed id keeps upserts trivial.
const configRowID = 1

// Repo implements the system-config repository over Postgres.
type Repo struct {
	db *sql.DB
}

// New creates a system-config repository.
func New(db *sql.DB) *Repo {
	return &Repo{db: db}
}

// Load returns the stored config, or the defaults when no row exists yet.
// The row is created lazily on the first Save.
func (r *Repo) Load(ctx context.Context) (domain.SystemConfig, error) {
	query := `SELECT config FROM system_config WHERE id = $1`

	var data []byte
	err := r.db.QueryRowContext(ctx, query, configRowID).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.DefaultSystemConfig(), nil
		}
		return domain.SystemConfig{}, fmt.Errorf("load system config: %w", err)
	}

	var sc domain.SystemConfig
	if err := json.Unmarshal(data, &sc); err != nil {
		return domain.SystemConfig{}, fmt.Errorf("parse system config: %w", err)
	}
	sc.Normalize()
	return sc, nil
}

// Save upserts the singleton config row.
func (r *Repo) Save(ctx context.Context, sc domain.SystemConfig) error {
	data, err := json.Marshal(sc)
	if err != nil {
		return fmt.Errorf("marshal system config: %w", err)
	}

	query := `INSERT INTO system_config (id, config, updated_at)
	          VALUES ($1, $2::jsonb, $3)
	          ON CONFLICT (id) DO UPDATE SET config = EXCLUDED.config, updated_at = EXCLUDED.updated_at`
	if _, err := r.db.ExecContext(ctx, query, configRowID, data, time.Now().UTC()); err != nil {
		return fmt.Errorf("save system config: %w", err)
	}
	return nil
}
