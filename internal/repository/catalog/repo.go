// Package catalog reads and writes marketplace products in Postgres.
package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/souqlane/stylesearch/internal/domain"
)

const productColumns = `
	p.id, p.merchant_id, COALESCE(p.brand_id::text, ''), COALESCE(b.name, ''),
	p.title, COALESCE(p.title_ar, ''), COALESCE(p.description, ''),
	p.price_minor, p.currency, p.colors, p.sizes,
	COALESCE(p.fit, ''), COALESCE(p.gender, ''), p.tags, p.images,
	p.vectors, p.published, p.views, p.clicks,
	p.last_indexed_at, p.created_at, p.updated_at`

// Repo implements the product repository over Postgres.
type Repo struct {
	db *sql.DB
}

// New creates a product repository.
func New(db *sql.DB) *Repo {
	return &Repo{db: db}
}

// ListPublished returns every published product, oldest first. Search scans
// the full published set, so ordering here fixes tie-breaks downstream.
func (r *Repo) ListPublished(ctx context.Context) ([]domain.Product, error) {
	query := `SELECT` + productColumns + `
	          FROM products p
	          LEFT JOIN brands b ON b.id = p.brand_id
	          WHERE p.published
	          ORDER BY p.created_at ASC, p.id ASC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list published products: %w", err)
	}
	defer rows.Close()

	return collectProducts(rows)
}

// ListStale returns published products whose text embedding is missing or
// older than the product's last update. limit <= 0 means no limit.
func (r *Repo) ListStale(ctx context.Context, limit int) ([]domain.Product, error) {
	query := `SELECT` + productColumns + `
	          FROM products p
	          LEFT JOIN brands b ON b.id = p.brand_id
	          WHERE p.published
	            AND (p.last_indexed_at IS NULL OR p.last_indexed_at < p.updated_at)
	          ORDER BY p.updated_at ASC, p.id ASC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT $1`
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list stale products: %w", err)
	}
	defer rows.Close()

	return collectProducts(rows)
}

// CountStale returns how many published products need re-indexing.
func (r *Repo) CountStale(ctx context.Context) (int, error) {
	query := `SELECT COUNT(*)
	          FROM products p
	          WHERE p.published
	            AND (p.last_indexed_at IS NULL OR p.last_indexed_at < p.updated_at)`

	var n int
	if err := r.db.QueryRowContext(ctx, query).Scan(&n); err != nil {
		return 0, fmt.Errorf("count stale products: %w", err)
	}
	return n, nil
}

// UpdateVectors persists a product's embeddings and stamps last_indexed_at.
func (r *Repo) UpdateVectors(ctx context.Context, id string, vectors *domain.Vectors, indexedAt time.Time) error {
	data, err := json.Marshal(vectors)
	if err != nil {
		return fmt.Errorf("marshal vectors: %w", err)
	}

	query := `UPDATE products SET vectors = $1::jsonb, last_indexed_at = $2 WHERE id = $3`
	res, err := r.db.ExecContext(ctx, query, data, indexedAt, id)
	if err != nil {
		return fmt.Errorf("update vectors %s: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func collectProducts(rows *sql.Rows) ([]domain.Product, error) {
	var products []domain.Product
	for rows.Next() {
		var row productRow
		if err := row.scanFrom(rows); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		p, err := row.toDomain()
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate products: %w", err)
	}
	return products, nil
}
