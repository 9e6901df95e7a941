// Copyright (c) 2026 Libris. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package schema holds the table and column names of the catalog database.

Repositories build their SQL from these definitions so that a renamed column
is a one-line change here instead of a search through query strings.
*/
package schema

// CatalogBookTable represents the 'catalog.book' table
type CatalogBookTable struct {
	Table         string
	ID            string
	Title         string
	Authors       string
	Description   string
	Categories    string
	Publisher     string
	PublishedDate string
	Image         string
	RatingsCount  string
	CreatedAt     string
}

// CatalogBook is the schema definition for catalog.book
var CatalogBook = CatalogBookTable{
	Table:         "catalog.book",
	ID:            "id",
	Title:         "title",
	Authors:       "authors",
	Description:   "description",
	Categories:    "categories",
	Publisher:     "publisher",
	PublishedDate: "publisheddate",
	Image:         "image",
	RatingsCount:  "ratingscount",
	CreatedAt:     "createdat",
}

// Columns lists the columns written by bulk imports, in COPY order.
func (t CatalogBookTable) Columns() []string {
	return []string{t.ID, t.Title, t.Authors, t.Description, t.Categories, t.Publisher, t.PublishedDate, t.Image, t.RatingsCount}
}
