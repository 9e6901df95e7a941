// Copyright (c) 2026 Libris. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Command seed loads the merged books and ratings CSV export into the
// catalogue.
//
//	seed --db postgres://... --migrate data/merged_dataframe.csv
//	seed --dry-run data/merged_dataframe.csv
//
// A dry run parses and imports into memory only and prints the counts.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
