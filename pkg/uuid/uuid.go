// Copyright (c) 2026 Petbox. All rights reserved.

// Package uuid provides identifier generation helpers.
//
// New identifiers are UUID version 7: time-ordered, so primary-key indexes
// stay append-mostly under insert load.
package uuid

import guuid "github.com/google/uuid"

// NewString returns a new UUIDv7 string. If v7 generation fails (entropy
// exhaustion), it falls back to a random v4.
func NewString() string {
	id, err := guuid.NewV7()
	if err != nil {
		return guuid.New().String()
	}
	return id.String()
}

// IsValid reports whether value parses as a UUID of any version.
func IsValid(value string) bool {
	_, err := guuid.Parse(value)
	return err == nil
}
