// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package archive implements the comparison-artifact cache and
// library-index synchronization subsystem.
//
// The archive is a read-through, write-behind cache over an object store:
// requests are keyed deterministically, looked up before paying for
// generation, and written back in the background without blocking the
// caller. A single shared index document lists all archived artifacts so
// the UI can enumerate them without a store-wide listing.
package archive

import (
	"strings"
	"unicode"
)

const (
	// keyFolder namespaces every object this subsystem owns.
	keyFolder = "sino-pulse/v1"

	// IndexKey is the well-known location of the shared library index.
	IndexKey = keyFolder + "/library_index.json"

	// defaultLocale is used when a request carries no locale tag.
	defaultLocale = "en"
)

// NormalizeRequest reduces free-text request input to the canonical slug
// used for key derivation and title matching: lower-cased, whitespace
// collapsed to single underscores, and every rune outside [a-z0-9_] and the
// CJK ranges stripped.
//
// Pure and total: empty or whitespace-only input yields an empty slug, not
// an error. Rejecting empty requests is the caller's job.
func NormalizeRequest(text string) string {
	var words []string
	for _, word := range strings.Fields(strings.ToLower(text)) {
		var b strings.Builder
		b.Grow(len(word))
		for _, r := range word {
			switch {
			case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_':
				b.WriteRune(r)
			case unicode.Is(unicode.Han, r):
				b.WriteRune(r)
			}
		}
		// Words stripped to nothing contribute no separator, so
		// "GDP 🚀" and "GDP" derive the same key.
		if b.Len() > 0 {
			words = append(words, b.String())
		}
	}
	return strings.Join(words, "_")
}

// NormalizeLocale reduces a locale tag to one of the supported folder
// segments. Anything that is not Chinese maps to the default locale.
func NormalizeLocale(locale string) string {
	locale = strings.ToLower(strings.TrimSpace(locale))
	if locale == "zh" || strings.HasPrefix(locale, "zh-") {
		return "zh"
	}
	if locale == "" {
		return defaultLocale
	}
	return locale
}

// DeriveKey turns a free-text request plus a locale tag into the artifact's
// storage key. Deterministic: the same request text and locale always yield
// the same key. No randomness, no timestamp — this is what makes the cache
// a cache rather than an append log.
//
// Example: DeriveKey("GDP per capita", "zh") == "sino-pulse/v1/zh/gdp_per_capita.json".
func DeriveKey(requestText, locale string) string {
	return keyFolder + "/" + NormalizeLocale(locale) + "/" + NormalizeRequest(requestText) + ".json"
}

// LocaleFolder returns the object-key prefix holding one locale's artifacts.
func LocaleFolder(locale string) string {
	return keyFolder + "/" + NormalizeLocale(locale) + "/"
}

// SlugFromKey extracts the normalized request slug from an artifact key.
// Returns "" for keys outside the artifact namespace, including the index
// document itself.
func SlugFromKey(key string) string {
	if key == IndexKey {
		return ""
	}
	rest, ok := strings.CutPrefix(key, keyFolder+"/")
	if !ok {
		return ""
	}
	_, name, ok := strings.Cut(rest, "/")
	if !ok {
		return ""
	}
	return strings.TrimSuffix(name, ".json")
}
