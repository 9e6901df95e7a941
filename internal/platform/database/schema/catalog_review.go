// Copyright (c) 2026 Libris. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package schema

// CatalogReviewTable represents the 'catalog.review' table
type CatalogReviewTable struct {
	Table     string
	ID        string
	BookID    string
	UserID    string
	Score     string
	CreatedAt string
}

// CatalogReview is the schema definition for catalog.review
var CatalogReview = CatalogReviewTable{
	Table:     "catalog.review",
	ID:        "id",
	BookID:    "bookid",
	UserID:    "userid",
	Score:     "score",
	CreatedAt: "createdat",
}

// Columns lists the columns written by bulk imports, in COPY order.
func (t CatalogReviewTable) Columns() []string {
	return []string{t.BookID, t.UserID, t.Score}
}
