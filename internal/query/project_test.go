package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type projected struct {
	ID        string  `json:"id"`
	Title     string  `json:"title"`
	Price     float64 `json:"price"`
	UpdatedAt string  `json:"updatedAt"`
}

func TestProject_Include(t *testing.T) {
	items := []projected{{ID: "1", Title: "Desk", Price: 20, UpdatedAt: "x"}}

	out, err := Project(items, Projection{Include: []string{"title", "missing"}})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, map[string]any{"id": "1", "title": "Desk"}, out[0])
}

func TestProject_DefaultExclude(t *testing.T) {
	items := []projected{{ID: "1", Title: "Desk", Price: 20, UpdatedAt: "x"}}

	out, err := Project(items, Build(nil).Projection)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"id": "1", "title": "Desk", "price": float64(20)}, out[0])
}
