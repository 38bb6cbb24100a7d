// Package strings provides small slice helpers shared across packages.
package strings

import (
	"strings"
)

// DedupeAndTrim removes duplicates and empty strings from a slice,
// trimming whitespace from each element. Order is preserved.
//
// Example:
//
//	DedupeAndTrim([]string{"  foo ", "bar", "foo", "", "  "})
//	// Returns: []string{"foo", "bar"}
func DedupeAndTrim(values []string) []string {
	return DedupeFunc(values, strings.TrimSpace)
}

// DedupeFunc maps each element through key, drops empty keys, and keeps the
// first occurrence of every key. The returned slice holds the mapped keys in
// input order.
//
// Example:
//
//	DedupeFunc([]string{"17-04-217-033-1013", "17042170331013"}, domain.NormalizeParcelID)
//	// Returns: []string{"17042170331013"}
func DedupeFunc(values []string, key func(string) string) []string {
	if len(values) == 0 {
		return values
	}

	seen := make(map[string]struct{}, len(values))
	result := make([]string, 0, len(values))

	for _, v := range values {
		k := key(v)
		if k == "" {
			continue
		}
		if _, ok := seen[k]; !ok {
			seen[k] = struct{}{}
			result = append(result, k)
		}
	}

	return result
}

// DedupeBy keeps the first element for every distinct key, preserving order.
// Elements whose key is empty are dropped.
func DedupeBy[T any](items []T, key func(T) string) []T {
	if len(items) == 0 {
		return items
	}

	seen := make(map[string]struct{}, len(items))
	result := make([]T, 0, len(items))

	for _, item := range items {
		k := key(item)
		if k == "" {
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		result = append(result, item)
	}

	return result
}
