// Copyright (c) 2026 Libris. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package book

import (
	"strings"

	"golang.org/x/text/cases"
)

// # Substring Search Index

// KeyFunc derives the searchable key of a book.
type KeyFunc func(*Book) string

// DefaultKey concatenates the title and the authors.
func DefaultKey(b *Book) string {
	return b.Title + b.Authors
}

// Index is a binary search tree of books ordered by their case-folded key.
//
// Equal keys descend right, so colliding books all stay reachable. Substring
// queries cannot use the ordering to prune, and [Index.Search] visits every
// node. An Index is not safe for concurrent Insert.
type Index struct {
	root *indexNode
	size int
	key  KeyFunc
}

type indexNode struct {
	key         string
	book        *Book
	left, right *indexNode
}

// NewIndex creates an empty index; a nil key selects [DefaultKey].
func NewIndex(key KeyFunc) *Index {
	if key == nil {
		key = DefaultKey
	}
	return &Index{key: key}
}

// BuildIndex inserts books in order into a new index.
func BuildIndex(books []*Book, key KeyFunc) *Index {
	index := NewIndex(key)
	folder := cases.Fold()
	for _, b := range books {
		index.insert(b, folder)
	}
	return index
}

// Insert adds b to the index.
func (index *Index) Insert(b *Book) {
	index.insert(b, cases.Fold())
}

func (index *Index) insert(b *Book, folder cases.Caser) {
	node := &indexNode{key: folder.String(index.key(b)), book: b}
	index.size++

	if index.root == nil {
		index.root = node
		return
	}

	current := index.root
	for {
		if node.key < current.key {
			if current.left == nil {
				current.left = node
				return
			}
			current = current.left
			continue
		}

		if current.right == nil {
			current.right = node
			return
		}
		current = current.right
	}
}

// Len returns the number of indexed books.
func (index *Index) Len() int {
	return index.size
}

// Search returns the books whose key contains query, ignoring case, in
// pre-order. The empty query matches every book.
func (index *Index) Search(query string) []*Book {
	needle := cases.Fold().String(query)

	results := make([]*Book, 0)
	index.walk(func(node *indexNode) {
		if strings.Contains(node.key, needle) {
			results = append(results, node.book)
		}
	})
	return results
}

// walk visits the nodes in pre-order: node, left subtree, right subtree.
func (index *Index) walk(visit func(*indexNode)) {
	if index.root == nil {
		return
	}

	stack := []*indexNode{index.root}
	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		visit(node)

		if node.right != nil {
			stack = append(stack, node.right)
		}
		if node.left != nil {
			stack = append(stack, node.left)
		}
	}
}

// SearchBooks builds a default-keyed index over books and searches it.
func SearchBooks(books []*Book, query string) []*Book {
	return BuildIndex(books, nil).Search(query)
}
