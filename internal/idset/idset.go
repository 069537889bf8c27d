// Package idset implements normalized integer id-sets.
//
// A Set is a sorted, deduplicated slice of positive int64 ids. Every
// set read from or written to storage passes through Normalize, so the
// rest of the application can rely on the canonical form.
package idset

import "sort"

// Set is a normalized collection of positive ids.
type Set []int64

// Normalize returns a canonical set: positive ids only, deduplicated,
// ascending. The input slice is not modified.
func Normalize(ids []int64) Set {
	seen := make(map[int64]struct{}, len(ids))
	out := make(Set, 0, len(ids))
	for _, id := range ids {
		if id <= 0 {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Contains reports whether id is in the set.
func (s Set) Contains(id int64) bool {
	i := sort.Search(len(s), func(i int) bool { return s[i] >= id })
	return i < len(s) && s[i] == id
}

// Union returns the normalized union of s and other.
func (s Set) Union(other []int64) Set {
	merged := make([]int64, 0, len(s)+len(other))
	merged = append(merged, s...)
	merged = append(merged, other...)
	return Normalize(merged)
}

// Intersect returns the elements of s that are also in other.
func (s Set) Intersect(other Set) Set {
	out := make(Set, 0, len(s))
	for _, id := range s {
		if other.Contains(id) {
			out = append(out, id)
		}
	}
	return out
}

// Diff returns the elements of s that are not in other.
func (s Set) Diff(other Set) Set {
	out := make(Set, 0, len(s))
	for _, id := range s {
		if !other.Contains(id) {
			out = append(out, id)
		}
	}
	return out
}

// Remove returns s without the given ids.
func (s Set) Remove(ids []int64) Set {
	return s.Diff(Normalize(ids))
}
