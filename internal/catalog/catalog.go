// Package catalog holds the sellable product list and price lookups.
package catalog

import (
	"errors"
	"fmt"
)

// ErrUnknownProduct is returned when a slug does not match any catalog entry.
var ErrUnknownProduct = errors.New("catalog: unknown product")

// Product is one sellable account type.
type Product struct {
	Slug  string
	Label string
	Price int64
}

// ButtonLabel renders the inline keyboard caption for the product.
func (p Product) ButtonLabel() string {
	return fmt.Sprintf("%s – %d৳", p.Label, p.Price)
}

// Catalog is an ordered, immutable product list with slug lookup.
type Catalog struct {
	products []Product
	bySlug   map[string]Product
}

// New builds a catalog preserving the given order.
func New(products []Product) *Catalog {
	c := &Catalog{
		products: append([]Product(nil), products...),
		bySlug:   make(map[string]Product, len(products)),
	}
	for _, p := range c.products {
		c.bySlug[p.Slug] = p
	}
	return c
}

// Products returns the catalog entries in listing order.
func (c *Catalog) Products() []Product {
	return append([]Product(nil), c.products...)
}

// Lookup resolves a product by slug.
func (c *Catalog) Lookup(slug string) (Product, error) {
	p, ok := c.bySlug[slug]
	if !ok {
		return Product{}, fmt.Errorf("%w: %q", ErrUnknownProduct, slug)
	}
	return p, nil
}

// Len reports the number of catalog entries.
func (c *Catalog) Len() int {
	return len(c.products)
}
