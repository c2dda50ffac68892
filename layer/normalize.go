// Copyright 2025 The GeoCluster Authors
// SPDX-License-Identifier: Apache-2.0

package layer

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// FoldIdentifier normalizes a group identifier by removing accents,
// lowercasing, and trimming spaces, so cosmetically different attribute
// values ("Zóna A", "zona a ") act as the same group.
func FoldIdentifier(s string) string {
	s, _, _ = transform.String(
		transform.Chain(
			norm.NFD,
			runes.Remove(runes.In(unicode.Mn)),
			norm.NFC,
		),
		strings.TrimSpace(strings.ToLower(s)),
	)

	return s
}

// FoldIdentifiers folds every record's identifier in place and returns the
// slice for chaining.
func FoldIdentifiers(records []Record) []Record {
	for i := range records {
		records[i].Identifier = FoldIdentifier(records[i].Identifier)
	}

	return records
}
