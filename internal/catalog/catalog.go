// Copyright (c) 2026 Petbox. All rights reserved.

// Package catalog serves the read side of the shop: product and store
// lookup. Everything here is simple key-based retrieval — no state machine,
// no writes through the API.
package catalog

import "time"

// Product is one sellable item with its purchasable variants.
type Product struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description,omitempty"`
	Category    string    `json:"category"`
	ImageURL    string    `json:"imageUrl,omitempty"`
	Variants    []Variant `json:"variants"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Variant is one purchasable configuration of a product (size, flavor).
// Price is in Vietnamese dong, no decimals.
type Variant struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Price int64  `json:"price"`
	Stock int    `json:"stock"`
}

// Store is one physical Petbox location.
type Store struct {
	ID           string `json:"id"`
	Code         string `json:"code"`
	Name         string `json:"name"`
	Address      string `json:"address"`
	Phone        string `json:"phone,omitempty"`
	OpeningHours string `json:"openingHours,omitempty"`
}
