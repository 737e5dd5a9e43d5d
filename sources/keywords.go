// Copyright 2026 The Vanpaikka Authors
// SPDX-License-Identifier: Apache-2.0

package sources

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// foldText removes diacritics and lowercases the string, so Finnish parking
// vocabulary matches regardless of how a page spells it (pysäköinti,
// PYSAKOINTI, Pysäkointi).
func foldText(s string) string {
	s, _, _ = transform.String(
		transform.Chain(
			norm.NFD,
			runes.Remove(runes.In(unicode.Mn)),
			norm.NFC,
		),
		s,
	)

	return strings.ToLower(s)
}

// containsAny reports whether the folded text contains any of the folded
// keywords.
func containsAny(text string, keywords ...string) bool {
	folded := foldText(text)

	for _, keyword := range keywords {
		if strings.Contains(folded, foldText(keyword)) {
			return true
		}
	}

	return false
}

// parkingKeywords are the tokens that mark a text fragment as being about
// parking, across the languages the scraped pages use.
var parkingKeywords = []string{"pysäköinti", "parking", "parkkipaikka"}
