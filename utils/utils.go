// Package utils implements various helper functions.
package utils

import (
	"golang.org/x/exp/constraints"
)

// AllDistinct returns true if all elements of s are distinct.
func AllDistinct[V comparable](s []V) bool {
	seen := make(map[V]struct{}, len(s))
	for _, x := range s {
		if _, ok := seen[x]; ok {
			return false
		}
		seen[x] = struct{}{}
	}
	return true
}

// MaxSlice returns the maximum value of the slice.
func MaxSlice[T constraints.Ordered](s []T) (max T) {
	for i, c := range s {
		if i == 0 || c > max {
			max = c
		}
	}
	return
}

// EqualSlice returns true if both slices are equal element-wise.
func EqualSlice[T comparable](a, b []T) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
