package domain

import (
	"strings"
	"time"
)

// Product is the catalog item as stored by the marketplace.
// Prices are integer minor units (piasters for EGP) plus a currency code.
type Product struct {
	ID          string
	MerchantID  string
	BrandID     string
	BrandName   string
	Title       string
	TitleAr     string
	Description string
	PriceMinor  int64
	Currency    string
	Colors      []string
	Sizes       []string
	Fit         string
	Gender      string
	Tags        []string
	Images      []string
	Vectors     *Vectors
	Published   bool
	Views       int64
	Clicks      int64

	LastIndexedAt *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Vectors holds the embeddings persisted alongside a product.
type Vectors struct {
	TextEmbedding   []float32   `json:"textEmbedding,omitempty"`
	ImageEmbeddings [][]float32 `json:"imageEmbeddings,omitempty"`
}

// NeedsIndexing reports whether the stored text embedding is stale:
// never indexed, or the product changed after the last sweep touched it.
func (p *Product) NeedsIndexing() bool {
	if p.LastIndexedAt == nil {
		return true
	}
	return p.LastIndexedAt.Before(p.UpdatedAt)
}

// IndexText is the string handed to the embedder for this product:
// title, description, and tags concatenated.
func (p *Product) IndexText() string {
	parts := make([]string, 0, 3)
	if p.Title != "" {
		parts = append(parts, p.Title)
	}
	if p.Description != "" {
		parts = append(parts, p.Description)
	}
	if len(p.Tags) > 0 {
		parts = append(parts, strings.Join(p.Tags, " "))
	}
	return strings.Join(parts, " ")
}

// PriceMajor converts the stored minor-unit price to decimal major units.
func (p *Product) PriceMajor() float64 {
	return float64(p.PriceMinor) / 100
}

// ProductSummary is the display-ready projection returned by search endpoints.
type ProductSummary struct {
	ID          string    `json:"id"`
	MerchantID  string    `json:"merchantId"`
	BrandID     string    `json:"brandId,omitempty"`
	BrandName   string    `json:"brandName,omitempty"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	Currency    string    `json:"currency"`
	Colors      []string  `json:"colors"`
	Sizes       []string  `json:"sizes"`
	Fit         string    `json:"fit,omitempty"`
	Gender      string    `json:"gender,omitempty"`
	Tags        []string  `json:"tags"`
	Images      []string  `json:"images"`
	Published   bool      `json:"published"`
	Views       int64     `json:"views"`
	Clicks      int64     `json:"clicks"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Summary builds the ProductSummary projection for this product.
func (p *Product) Summary() ProductSummary {
	return ProductSummary{
		ID:          p.ID,
		MerchantID:  p.MerchantID,
		BrandID:     p.BrandID,
		BrandName:   p.BrandName,
		Title:       p.Title,
		Description: p.Description,
		Price:       p.PriceMajor(),
		Currency:    p.Currency,
		Colors:      p.Colors,
		Sizes:       p.Sizes,
		Fit:         p.Fit,
		Gender:      p.Gender,
		Tags:        p.Tags,
		Images:      p.Images,
		Published:   p.Published,
		Views:       p.Views,
		Clicks:      p.Clicks,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}
