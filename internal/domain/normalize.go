package domain

import "strings"

// NormalizeQuery prepares a free-text food query for lookup: surrounding
// whitespace is trimmed, letters are lower-cased and inner whitespace runs
// collapse to a single space.
func NormalizeQuery(q string) string {
	return strings.ToLower(strings.Join(strings.Fields(q), " "))
}

// FallbackID turns a food name into the slug used as the identifier of
// records that never reached the cache ("chicken breast" -> "chicken-breast").
func FallbackID(name string) string {
	return strings.Join(strings.Fields(NormalizeQuery(name)), "-")
}
