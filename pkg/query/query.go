// Copyright (c) 2026 Libris. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package query parses the delimited text values that travel through query
strings and catalog columns ("Fiction, Fantasy", "J.K. Rowling, ...").

Splitting happens once at the boundary; callers work with the resulting
slices and never re-split.
*/
package query

import "strings"

// StringSlice splits a comma-separated value into trimmed, non-empty parts.
// The empty string yields nil.
func StringSlice(val string) []string {
	if val == "" {
		return nil
	}
	var res []string
	for _, v := range strings.Split(val, ",") {
		clean := strings.TrimSpace(v)
		if clean != "" {
			res = append(res, clean)
		}
	}
	return res
}

// Unique returns the distinct values of vals in first-appearance order.
func Unique(vals []string) []string {
	if vals == nil {
		return nil
	}
	seen := make(map[string]struct{}, len(vals))
	res := make([]string, 0, len(vals))
	for _, v := range vals {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		res = append(res, v)
	}
	return res
}

// ListLiteral strips the list-literal decoration of exported datasets
// ("['Fiction', 'Fantasy']") and returns the comma-separated text inside.
func ListLiteral(val string) string {
	cleaned := strings.NewReplacer("[", "", "]", "", "'", "", "\"", "").Replace(val)
	return strings.Join(StringSlice(cleaned), ", ")
}
