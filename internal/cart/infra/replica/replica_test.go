package replica

import (
	"context"
	"errors"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dwikikusuma/storefront-cart/internal/cart/domain"
	"github.com/dwikikusuma/storefront-cart/internal/cart/infra/kv"
)

func sampleItems() []domain.CartItem {
	mug := domain.CartItem{
		ID:        "temp_1",
		ProductID: "P1",
		Quantity:  2,
		Product: domain.ProductSnapshot{
			Name:           "Ceramic Mug",
			ImageURL:       "https://cdn.example.com/mug.png",
			Brand:          "Acme",
			Price:          decimal.NewFromInt(10),
			AvailableStock: 5,
		},
	}
	mug.Reprice()

	tea := domain.CartItem{
		ID:        "srv_9",
		ProductID: "P2",
		Quantity:  3,
		Product: domain.ProductSnapshot{
			Name:           "Tea Sampler",
			Price:          decimal.RequireFromString("2.5"),
			AvailableStock: 8,
		},
	}
	tea.Reprice()
	return []domain.CartItem{mug, tea}
}

func TestEncodeMatchesOnDiskSchema(t *testing.T) {
	b, err := Encode(sampleItems())
	require.NoError(t, err)

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "cart_items", b)
}

func TestRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := New(kv.NewMemory(), "")

	want := sampleItems()
	require.NoError(t, store.Save(ctx, want))

	got, err := store.Load(ctx)
	require.NoError(t, err)
	require.Len(t, got, len(want))
	for i := range want {
		assert.Equal(t, want[i].ID, got[i].ID)
		assert.Equal(t, want[i].ProductID, got[i].ProductID)
		assert.Equal(t, want[i].Quantity, got[i].Quantity)
		assert.True(t, want[i].UnitPrice.Equal(got[i].UnitPrice), "unit price of %s", want[i].ID)
		assert.True(t, want[i].Subtotal.Equal(got[i].Subtotal), "subtotal of %s", want[i].ID)
		assert.Equal(t, want[i].Product.Name, got[i].Product.Name)
		assert.Equal(t, want[i].Product.AvailableStock, got[i].Product.AvailableStock)
		assert.True(t, want[i].Product.Price.Equal(got[i].Product.Price))
	}
}

func TestLoadMissingKeyIsEmpty(t *testing.T) {
	items, err := New(kv.NewMemory(), "").Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestLoadCorruptBlob(t *testing.T) {
	ctx := context.Background()
	mem := kv.NewMemory()
	require.NoError(t, mem.Set(ctx, DefaultKey, "{not json"))

	_, err := New(mem, "").Load(ctx)
	require.Error(t, err)
}

func TestRemoveDeletesKey(t *testing.T) {
	ctx := context.Background()
	mem := kv.NewMemory()
	store := New(mem, "custom:key")
	require.NoError(t, store.Save(ctx, sampleItems()))
	require.NoError(t, store.Remove(ctx))

	_, found, err := mem.Get(ctx, "custom:key")
	require.NoError(t, err)
	assert.False(t, found)
}

type brokenKV struct{}

func (brokenKV) Get(context.Context, string) (string, bool, error) { return "", false, errDisk }
func (brokenKV) Set(context.Context, string, string) error         { return errDisk }
func (brokenKV) Delete(context.Context, string) error              { return errDisk }

var errDisk = errors.New("disk full")

func TestStorageErrorsAreWrapped(t *testing.T) {
	ctx := context.Background()
	store := New(brokenKV{}, "")

	_, err := store.Load(ctx)
	assert.ErrorIs(t, err, errDisk)
	assert.ErrorIs(t, store.Save(ctx, sampleItems()), errDisk)
	assert.ErrorIs(t, store.Remove(ctx), errDisk)
}
