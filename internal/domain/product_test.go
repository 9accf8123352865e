package domain

import (
	"testing"
	"time"
)

func TestNeedsIndexing_NeverIndexed(t *testing.T) {
	p := Product{UpdatedAt: time.Now()}
	if !p.NeedsIndexing() {
		t.Error("product without lastIndexedAt must need indexing")
	}
}

func TestNeedsIndexing_StaleAfterUpdate(t *testing.T) {
	indexed := time.Now().Add(-time.Hour)
	p := Product{
		LastIndexedAt: &indexed,
		UpdatedAt:     time.Now(),
	}
	if !p.NeedsIndexing() {
		t.Error("product updated after last index must need indexing")
	}
}

func TestNeedsIndexing_Fresh(t *testing.T) {
	indexed := time.Now()
	p := Product{
		LastIndexedAt: &indexed,
		UpdatedAt:     indexed.Add(-time.Hour),
	}
	if p.NeedsIndexing() {
		t.Error("freshly indexed product must not need indexing")
	}
}

func TestIndexText_ConcatenatesTitleDescriptionTags(t *testing.T) {
	p := Product{
		Title:       "Linen Shirt",
		Description: "Breathable summer shirt",
		Tags:        []string{"linen", "summer"},
	}
	got := p.IndexText()
	want := "Linen Shirt Breathable summer shirt linen summer"
	if got != want {
		t.Errorf("IndexText:\ngot:  %q\nwant: %q", got, want)
	}
}

func TestIndexText_SkipsEmptyParts(t *testing.T) {
	p := Product{Title: "Denim Jacket"}
	if got := p.IndexText(); got != "Denim Jacket" {
		t.Errorf("expected bare title, got %q", got)
	}
}

func TestSummary_NormalizesPrice(t *testing.T) {
	p := Product{
		ID:         "p1",
		PriceMinor: 149950,
		Currency:   "EGP",
		BrandName:  "Cairo Threads",
	}
	s := p.Summary()
	if s.Price != 1499.50 {
		t.Errorf("expected price 1499.50, got %v", s.Price)
	}
	if s.BrandName != "Cairo Threads" {
		t.Errorf("expected brand name carried over, got %q", s.BrandName)
	}
}
