// Copyright (c) 2026 Libris. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package pagination_test

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/libris/pkg/pagination"
)

func TestParse(t *testing.T) {
	tests := []struct {
		query string
		want  pagination.Params
	}{
		{query: "", want: pagination.Params{Page: 1, Limit: 20}},
		{query: "page=3&limit=5", want: pagination.Params{Page: 3, Limit: 5}},
		{query: "page=-2&limit=0", want: pagination.Params{Page: 1, Limit: 20}},
		{query: "page=two&limit=ten", want: pagination.Params{Page: 1, Limit: 20}},
		{query: "limit=5000", want: pagination.Params{Page: 1, Limit: 100}},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			values, err := url.ParseQuery(tt.query)
			assert.NoError(t, err)
			assert.Equal(t, tt.want, pagination.Parse(values))
		})
	}
}

func TestMeta(t *testing.T) {
	params := pagination.Params{Page: 2, Limit: 10}
	assert.Equal(t, 10, params.Offset())

	meta := pagination.NewMeta(params, 25)
	assert.Equal(t, 3, meta.TotalPages)
	assert.True(t, meta.HasNext)

	meta = pagination.NewMeta(pagination.Params{Page: 3, Limit: 10}, 25)
	assert.False(t, meta.HasNext)

	assert.Zero(t, pagination.NewMeta(pagination.Params{Page: 1, Limit: 10}, 0).TotalPages)
}
