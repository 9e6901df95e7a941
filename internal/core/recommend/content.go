// Copyright (c) 2026 Libris. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package recommend

import (
	"cmp"
	"math"
	"slices"

	"github.com/taibuivan/libris/internal/core/book"
	"github.com/taibuivan/libris/pkg/pointer"
	"github.com/taibuivan/libris/pkg/query"
	"github.com/taibuivan/libris/pkg/slice"
)

// Profile is a user's normalised interest over the categories they reviewed.
type Profile struct {
	// Categories are the dimensions, in order of first appearance.
	Categories []string

	// Interest holds one L2-normalised weight per category.
	Interest []float64

	dimension map[string]int
}

/*
BuildProfile derives the interest vector of a review history.

Description: Each reviewed book contributes its multi-hot category vector
scaled by the review score (absent scores count as 0). The sum is
L2-normalised.

Returns:
  - *Profile: The interest profile
  - bool: false when there is no history, when the history covers at most
    one distinct category, or when every weight is zero
*/
func BuildProfile(reviews []*book.Review) (*Profile, bool) {
	if len(reviews) == 0 {
		return nil, false
	}

	// 1. Dimensions
	var tokens []string
	for _, review := range reviews {
		if review.Book != nil {
			tokens = append(tokens, review.Book.CategoryList()...)
		}
	}

	categories := query.Unique(tokens)
	if len(categories) <= 1 {
		return nil, false
	}

	profile := &Profile{
		Categories: categories,
		Interest:   make([]float64, len(categories)),
		dimension:  make(map[string]int, len(categories)),
	}
	for i, category := range categories {
		profile.dimension[category] = i
	}

	// 2. Score-weighted sum
	for _, review := range reviews {
		if review.Book == nil {
			continue
		}
		score := pointer.Val(review.Score)
		for i, hot := range profile.Encode(review.Book) {
			profile.Interest[i] += score * hot
		}
	}

	// 3. Normalise
	var norm float64
	for _, weight := range profile.Interest {
		norm += weight * weight
	}
	norm = math.Sqrt(norm)

	if norm == 0 || math.IsNaN(norm) || math.IsInf(norm, 0) {
		return nil, false
	}

	for i := range profile.Interest {
		profile.Interest[i] /= norm
	}

	return profile, true
}

// Encode returns the multi-hot vector of b over the profile's categories.
// Categories outside the profile are ignored.
func (profile *Profile) Encode(b *book.Book) []float64 {
	vector := make([]float64, len(profile.Categories))
	for _, category := range b.CategoryList() {
		if i, ok := profile.dimension[category]; ok {
			vector[i] = 1
		}
	}
	return vector
}

// Score is the dot product of the interest vector and b's encoding.
func (profile *Profile) Score(b *book.Book) float64 {
	var score float64
	for i, hot := range profile.Encode(b) {
		score += profile.Interest[i] * hot
	}
	return score
}

// DedupeByTitle keeps the first book of every distinct title.
func DedupeByTitle(books []*book.Book) []*book.Book {
	seen := make(map[string]struct{}, len(books))
	return slice.Filter(books, func(b *book.Book) bool {
		if _, ok := seen[b.Title]; ok {
			return false
		}
		seen[b.Title] = struct{}{}
		return true
	})
}

/*
RankCandidates scores candidates against profile and returns the ids of the
best n.

Description: Candidates are de-duplicated by title first. The sort is
stable, so equal scores keep candidate order.
*/
func RankCandidates(profile *Profile, candidates []*book.Book, n int) []string {
	type scored struct {
		id    string
		score float64
	}

	unique := DedupeByTitle(candidates)
	ranked := make([]scored, 0, len(unique))
	for _, b := range unique {
		ranked = append(ranked, scored{id: b.ID, score: profile.Score(b)})
	}

	slices.SortStableFunc(ranked, func(a, b scored) int {
		return cmp.Compare(b.score, a.score)
	})

	ids := make([]string, 0, min(n, len(ranked)))
	for _, entry := range ranked[:min(n, len(ranked))] {
		ids = append(ids, entry.id)
	}
	return ids
}
