// Copyright (c) 2026 Libris. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package migration_test

import (
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/libris/internal/platform/migration"
)

/*
TestToPgx5DSN rewrites only the postgres URL schemes.
*/
func TestToPgx5DSN(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"postgres://u:p@db:5432/libris", "pgx5://u:p@db:5432/libris"},
		{"postgresql://db/libris?sslmode=disable", "pgx5://db/libris?sslmode=disable"},
		{"pgx5://db/libris", "pgx5://db/libris"},
		{"host=db dbname=libris", "host=db dbname=libris"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, migration.ToPgx5DSN(tt.in))
		})
	}
}

/*
TestSource_Embedded ships both directions of the catalog migration.
*/
func TestSource_Embedded(t *testing.T) {
	files, err := fs.Glob(migration.Source(""), "*.sql")
	require.NoError(t, err)
	assert.Contains(t, files, "000001_catalog.up.sql")
	assert.Contains(t, files, "000001_catalog.down.sql")
}
