// Copyright (c) 2026 Petbox. All rights reserved.

package catalog

import "context"

// Repository is the read-side persistence contract for the catalog.
//
// Lookup methods return apperr.NotFound when nothing matches.
type Repository interface {
	// GetProductBySlug fetches one product and its variants.
	GetProductBySlug(ctx context.Context, slug string) (*Product, error)

	// ListProducts returns products, optionally filtered by category,
	// newest first, capped at limit.
	ListProducts(ctx context.Context, category string, limit int) ([]Product, error)

	// ListStores returns every store location.
	ListStores(ctx context.Context) ([]Store, error)

	// GetStoreByCode fetches one store by its short code.
	GetStoreByCode(ctx context.Context, code string) (*Store, error)
}
