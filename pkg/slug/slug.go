// Copyright (c) 2026 Petbox. All rights reserved.

// Package slug normalizes display names into URL-safe identifiers.
//
// Product names are largely Vietnamese, so diacritics are stripped via
// Unicode decomposition before lowercasing (e.g. "Hạt Mèo Lớn" → "hat-meo-lon").
package slug

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Make converts a display name into a lowercase, hyphen-separated slug.
func Make(name string) string {

	// 1. Decompose accented characters and drop the combining marks
	stripper := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(stripper, name)
	if err != nil {
		stripped = name
	}

	// Vietnamese đ/Đ does not decompose; map it explicitly
	stripped = strings.NewReplacer("đ", "d", "Đ", "d").Replace(stripped)

	// 2. Lowercase and collapse every non-alphanumeric run into one hyphen
	var builder strings.Builder
	builder.Grow(len(stripped))
	lastHyphen := true

	for _, r := range strings.ToLower(stripped) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			builder.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				builder.WriteByte('-')
				lastHyphen = true
			}
		}
	}

	return strings.TrimSuffix(builder.String(), "-")
}
