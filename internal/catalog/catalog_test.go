package catalog

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testProducts() []Product {
	return []Product{
		{Slug: "gmail", Label: "Fresh Gmail", Price: 9},
		{Slug: "talkatone", Label: "Talkatone", Price: 28},
	}
}

func TestLookup(t *testing.T) {
	c := New(testProducts())

	p, err := c.Lookup("gmail")
	require.NoError(t, err)
	assert.Equal(t, "Fresh Gmail", p.Label)
	assert.Equal(t, int64(9), p.Price)

	_, err = c.Lookup("missing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownProduct))
}

func TestProductsPreserveOrder(t *testing.T) {
	c := New(testProducts())
	got := c.Products()
	require.Len(t, got, 2)
	assert.Equal(t, "gmail", got[0].Slug)
	assert.Equal(t, "talkatone", got[1].Slug)
}

func TestButtonLabel(t *testing.T) {
	p := Product{Slug: "gvoice", Label: "Google Voice", Price: 200}
	assert.Equal(t, "Google Voice – 200৳", p.ButtonLabel())
}
