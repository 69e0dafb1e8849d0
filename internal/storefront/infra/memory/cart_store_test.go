package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dwikikusuma/storefront-cart/internal/storefront/domain"
)

func TestCartStore(t *testing.T) {
	ctx := context.Background()
	s := NewCartStore()

	lines := []domain.Line{{ID: "a", ProductID: "P1", Quantity: 2}, {ID: "b", ProductID: "P2", Quantity: 1}}
	require.NoError(t, s.Replace(ctx, "u1", lines))

	got, err := s.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, lines, got)

	got[0].Quantity = 99
	again, _ := s.Get(ctx, "u1")
	assert.Equal(t, 2, again[0].Quantity, "callers get a copy")

	other, _ := s.Get(ctx, "u2")
	assert.Empty(t, other)

	require.NoError(t, s.Replace(ctx, "u1", nil))
	got, _ = s.Get(ctx, "u1")
	assert.Empty(t, got)

	require.NoError(t, s.Replace(ctx, "u1", lines))
	require.NoError(t, s.Clear(ctx, "u1"))
	got, _ = s.Get(ctx, "u1")
	assert.Empty(t, got)
}
