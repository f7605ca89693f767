// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package slug turns category names into fragment identifiers the
// dashboard can link to, e.g. /#dev-tools.
package slug

import (
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// stripMarks removes combining accents after canonical decomposition,
// so "Café" becomes "Cafe".
var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Generate creates a slug from the given string. Letters and digits of
// any script are kept and lower-cased, accents are dropped and every run
// of other characters becomes a single hyphen.
// Example: "Dev Tools & APIs" → "dev-tools-apis"
func Generate(s string) string {
	folded, _, err := transform.String(stripMarks, s)
	if err != nil {
		folded = s
	}

	var b strings.Builder
	pendingHyphen := false
	for _, r := range strings.ToLower(folded) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingHyphen = false
			b.WriteRune(r)
		case r == '\'' || r == '’':
			// "Bob's" reads better as "bobs" than "bob-s".
		default:
			pendingHyphen = true
		}
	}
	return b.String()
}

// Set hands out slugs that are unique within one page.
type Set struct {
	seen map[string]int
}

// NewSet returns an empty Set.
func NewSet() *Set {
	return &Set{seen: make(map[string]int)}
}

// Add returns the slug of s, or fallback when s has none, suffixed with
// -2, -3 and so on when it was handed out before.
func (set *Set) Add(s, fallback string) string {
	base := Generate(s)
	if base == "" {
		base = fallback
	}
	set.seen[base]++
	if n := set.seen[base]; n > 1 {
		candidate := base + "-" + strconv.Itoa(n)
		for set.seen[candidate] > 0 {
			n++
			candidate = base + "-" + strconv.Itoa(n)
		}
		set.seen[base] = n
		set.seen[candidate]++
		return candidate
	}
	return base
}
