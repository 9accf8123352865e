// Package spell suggests canonical catalog terms for misspelled or
// cross-script search queries.
package spell

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/souqlane/stylesearch/internal/domain"
)

const maxSuggestions = 3

// builtinSynonyms seeds the dictionary with common misspellings and
// Arabic-to-English terms. Administrators extend it through the synonyms
// map in the runtime configuration.
var builtinSynonyms = map[string]string{
	// misspellings
	"hodie":    "hoodie",
	"hoddie":   "hoodie",
	"jens":     "jeans",
	"jeens":    "jeans",
	"tshirt":   "t-shirt",
	"t shirt":  "t-shirt",
	"sneekers": "sneakers",
	"snickers": "sneakers",
	"trouser":  "trousers",
	"dres":     "dress",
	"jaket":    "jacket",
	"skert":    "skirt",

	// arabic
	"جينز":   "jeans",
	"بنطلون": "pants",
	"تيشيرت": "t-shirt",
	"قميص":   "shirt",
	"فستان":  "dress",
	"حذاء":   "shoes",
	"جاكيت":  "jacket",
	"هودي":   "hoodie",
	"تنورة":  "skirt",
}

// Settings reads the runtime configuration.
type Settings interface {
	Current() domain.SystemConfig
	SetSynonym(ctx context.Context, key, term string) (domain.SystemConfig, error)
}

// Service answers spell-correction queries against the merged dictionary.
type Service struct {
	settings Settings
}

// New creates a spell-correction service.
func New(settings Settings) *Service {
	return &Service{settings: settings}
}

// Suggest returns up to three canonical terms for a query. An exact
// dictionary match always comes first; the remainder are keys that contain
// the query or are contained by it, in sorted key order.
func (s *Service) Suggest(_ context.Context, query, language string) ([]string, error) {
	cfg := s.settings.Current()
	if !cfg.EnableSpellCorrection {
		return nil, fmt.Errorf("spell correction: %w", domain.ErrFeatureDisabled)
	}

	q := normalize(query)
	if q == "" {
		return nil, fmt.Errorf("%w: query is required", domain.ErrValidation)
	}
	_ = language // both scripts live in one dictionary

	dict, keys := s.dictionary(cfg.Synonyms)

	var out []string
	seen := make(map[string]bool, maxSuggestions)

	if term, ok := dict[q]; ok {
		out = append(out, term)
		seen[term] = true
	}

	for _, k := range keys {
		if len(out) >= maxSuggestions {
			break
		}
		if k == q {
			continue
		}
		if !strings.Contains(q, k) && !strings.Contains(k, q) {
			continue
		}
		term := dict[k]
		if seen[term] {
			continue
		}
		out = append(out, term)
		seen[term] = true
	}

	return out, nil
}

// AddSynonym upserts a dictionary entry, persisted through the runtime
// configuration so it survives restarts.
func (s *Service) AddSynonym(ctx context.Context, key, term string) error {
	k := normalize(key)
	v := normalize(term)
	if k == "" || v == "" {
		return fmt.Errorf("%w: synonym key and term are required", domain.ErrValidation)
	}
	if _, err := s.settings.SetSynonym(ctx, k, v); err != nil {
		return fmt.Errorf("add synonym %q: %w", k, err)
	}
	return nil
}

// dictionary merges the built-in entries with the configured overlay.
// Sorted keys give the substring pass a stable iteration order.
func (s *Service) dictionary(overlay map[string]string) (map[string]string, []string) {
	dict := make(map[string]string, len(builtinSynonyms)+len(overlay))
	for k, v := range builtinSynonyms {
		dict[k] = v
	}
	for k, v := range overlay {
		dict[normalize(k)] = normalize(v)
	}

	keys := make([]string, 0, len(dict))
	for k := range dict {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return dict, keys
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
