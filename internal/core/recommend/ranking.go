// Copyright (c) 2026 Libris. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package recommend

import (
	"cmp"
	"container/heap"
	"math"
	"slices"

	"github.com/taibuivan/libris/internal/core/book"
	"github.com/taibuivan/libris/pkg/slice"
)

// Bounds of the recency signal.
const (
	minRecency     = 0.1
	maxRecency     = 1.0
	defaultRecency = 0.5
)

// Category bonus values.
const (
	categorizedBonus   = 1.0
	uncategorizedBonus = 0.5
)

// TopBook is one row of the top-K ranking.
type TopBook struct {
	ID      string  `json:"id"`
	Title   string  `json:"title"`
	Score   float64 `json:"score"`
	Image   string  `json:"image"`
	Authors string  `json:"authors"`
	Rating  float64 `json:"rating"`
}

// Weights of the composite score.
type Weights struct {
	Rating     float64
	Recency    float64
	Category   float64
	Popularity float64
}

// Scorer computes the composite ranking score of a book.
type Scorer struct {
	Weights Weights

	// Prior is the rating sparse books are pulled towards.
	Prior float64

	// PseudoCount is how many ratings the prior is worth.
	PseudoCount float64

	// MinYear and CurrentYear bound the recency scale.
	MinYear     int
	CurrentYear int
}

// Bayesian smooths the average rating towards the prior by ratings count.
func (scorer Scorer) Bayesian(b *book.Book) float64 {
	count := b.Ratings()
	denominator := count + scorer.PseudoCount
	if denominator <= 0 {
		return scorer.Prior
	}
	return (count*b.Rating() + scorer.PseudoCount*scorer.Prior) / denominator
}

// Recency maps the publication year linearly onto [0.1, 1.0] after clipping
// it to [MinYear, CurrentYear]. Books without a year get 0.5.
func (scorer Scorer) Recency(b *book.Book) float64 {
	year, ok := b.Year()
	if !ok {
		return defaultRecency
	}

	span := scorer.CurrentYear - scorer.MinYear
	if span <= 0 {
		return maxRecency
	}

	year = min(max(year, scorer.MinYear), scorer.CurrentYear)
	return minRecency + (maxRecency-minRecency)*float64(year-scorer.MinYear)/float64(span)
}

// CategoryBonus favours categorised books.
func (scorer Scorer) CategoryBonus(b *book.Book) float64 {
	if len(b.CategoryList()) > 0 {
		return categorizedBonus
	}
	return uncategorizedBonus
}

// Popularity is the log-scaled ratings count relative to the most rated book.
func (scorer Scorer) Popularity(b *book.Book, maxRatings float64) float64 {
	if !book.ValidRatingsCount(maxRatings) || maxRatings == 0 {
		return 0
	}
	return math.Log1p(b.Ratings()) / math.Log1p(maxRatings)
}

// Score is the weighted sum of all signals. A non-finite sum scores 0 so a
// single bad row cannot break the heap order or the JSON encoding.
func (scorer Scorer) Score(b *book.Book, maxRatings float64) float64 {
	weights := scorer.Weights
	score := weights.Rating*scorer.Bayesian(b) +
		weights.Recency*scorer.Recency(b) +
		weights.Category*scorer.CategoryBonus(b) +
		weights.Popularity*scorer.Popularity(b, maxRatings)
	if math.IsNaN(score) || math.IsInf(score, 0) {
		return 0
	}
	return score
}

// rankEntry is a scored book with its arrival number.
type rankEntry struct {
	book  *book.Book
	score float64
	seq   int
}

// minHeap keeps the weakest entry on top: the lowest score, and among equal
// scores the latest arrival.
type minHeap []rankEntry

func (h minHeap) Len() int { return len(h) }
func (h minHeap) Less(i, j int) bool {
	if h[i].score != h[j].score {
		return h[i].score < h[j].score
	}
	return h[i].seq > h[j].seq
}
func (h minHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }
func (h *minHeap) Push(x any)   { *h = append(*h, x.(rankEntry)) }
func (h *minHeap) Pop() any {
	old := *h
	last := old[len(old)-1]
	*h = old[:len(old)-1]
	return last
}

/*
TopK selects the k best books by composite score.

Description: Books are pushed through a min-heap bounded to k entries, the
weakest entry being evicted on overflow. Exact ties are broken by arrival:
the earlier book ranks higher and survives eviction. With fewer than k books
all of them are returned.

Returns:
  - []TopBook: At most k rows, score descending
*/
func TopK(books []*book.Book, k int, scorer Scorer) []TopBook {
	if k <= 0 || len(books) == 0 {
		return []TopBook{}
	}

	maxRatings := slice.Reduce(books, 0.0, func(most float64, b *book.Book) float64 {
		return max(most, b.Ratings())
	})

	// 1. Bounded selection
	selection := make(minHeap, 0, min(k, len(books))+1)
	for seq, b := range books {
		heap.Push(&selection, rankEntry{book: b, score: scorer.Score(b, maxRatings), seq: seq})
		if selection.Len() > k {
			heap.Pop(&selection)
		}
	}

	// 2. Final order
	entries := []rankEntry(selection)
	slices.SortFunc(entries, func(a, b rankEntry) int {
		if c := cmp.Compare(b.score, a.score); c != 0 {
			return c
		}
		return cmp.Compare(a.seq, b.seq)
	})

	rows := make([]TopBook, 0, len(entries))
	for _, entry := range entries {
		rows = append(rows, TopBook{
			ID:      entry.book.ID,
			Title:   entry.book.Title,
			Score:   entry.score,
			Image:   entry.book.Image,
			Authors: entry.book.Authors,
			Rating:  entry.book.Rating(),
		})
	}
	return rows
}
