package catalog

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/souqlane/stylesearch/internal/domain"
)

// scanner abstracts row scanning so productRow does not depend on *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// productRow is the flat scan target for the product SELECT column list.
type productRow struct {
	ID            string
	MerchantID    string
	BrandID       string
	BrandName     string
	Title         string
	TitleAr       string
	Description   string
	PriceMinor    int64
	Currency      string
	Colors        pq.StringArray
	Sizes         pq.StringArray
	Fit           string
	Gender        string
	Tags          pq.StringArray
	Images        pq.StringArray
	Vectors       []byte
	Published     bool
	Views         int64
	Clicks        int64
	LastIndexedAt sql.NullTime
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (r *productRow) scanFrom(s scanner) error {
	return s.Scan(
		&r.ID, &r.MerchantID, &r.BrandID, &r.BrandName,
		&r.Title, &r.TitleAr, &r.Description,
		&r.PriceMinor, &r.Currency, &r.Colors, &r.Sizes,
		&r.Fit, &r.Gender, &r.Tags, &r.Images,
		&r.Vectors, &r.Published, &r.Views, &r.Clicks,
		&r.LastIndexedAt, &r.CreatedAt, &r.UpdatedAt,
	)
}

func (r *productRow) toDomain() (domain.Product, error) {
	p := domain.Product{
		ID:          r.ID,
		MerchantID:  r.MerchantID,
		BrandID:     r.BrandID,
		BrandName:   r.BrandName,
		Title:       r.Title,
		TitleAr:     r.TitleAr,
		Description: r.Description,
		PriceMinor:  r.PriceMinor,
		Currency:    r.Currency,
		Colors:      r.Colors,
		Sizes:       r.Sizes,
		Fit:         r.Fit,
		Gender:      r.Gender,
		Tags:        r.Tags,
		Images:      r.Images,
		Published:   r.Published,
		Views:       r.Views,
		Clicks:      r.Clicks,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
	if r.LastIndexedAt.Valid {
		t := r.LastIndexedAt.Time
		p.LastIndexedAt = &t
	}
	if len(r.Vectors) > 0 {
		var v domain.Vectors
		if err := json.Unmarshal(r.Vectors, &v); err != nil {
			return domain.Product{}, fmt.Errorf("parse vectors for product %s: %w", r.ID, err)
		}
		p.Vectors = &v
	}
	return p, nil
}
