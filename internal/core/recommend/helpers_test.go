// Copyright (c) 2026 Libris. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package recommend_test

import (
	"github.com/taibuivan/libris/internal/core/book"
	"github.com/taibuivan/libris/pkg/slice"
)

// bookIDs lists the ids of books in order.
func bookIDs(books []*book.Book) []string {
	return slice.Map(books, func(b *book.Book) string { return b.ID })
}
