// Package perm provides permutation-space combinatorics for the exact
// line-ordering strategy: generating permutations, counting them, and a
// PQ-tree for representing which orderings keep certain lines consecutive.
package perm

import "slices"

// Seq returns the sequence [0, 1, ..., n-1]. For n <= 0 it returns an empty
// slice.
func Seq(n int) []int {
	result := make([]int, n)
	for i := range result {
		result[i] = i
	}
	return result
}

// Factorial returns n!. For n <= 1 it returns 1. Note that factorials grow
// fast enough to overflow a 32-bit int well before n=13.
func Factorial(n int) int {
	result := 1
	for i := 2; i <= n; i++ {
		result *= i
	}
	return result
}

// Generate returns permutations of [0, ..., n-1] via Heap's algorithm, at
// most limit of them (all n! if limit <= 0). Always pass a limit once n is
// large enough that n! stops being a realistic bound. The exact strategy
// does not call Generate; it enumerates PQTree orderings instead.
func Generate(n, limit int) [][]int {
	if n == 0 {
		return [][]int{{}}
	}
	if n == 1 {
		return [][]int{{0}}
	}

	p := Seq(n)
	state := make([]int, n)

	capacity := limit
	if capacity <= 0 || n <= 12 {
		capacity = Factorial(min(n, 12))
	}
	result := make([][]int, 0, capacity)
	result = append(result, slices.Clone(p))

	for i := 0; i < n && (limit <= 0 || len(result) < limit); {
		if state[i] < i {
			if i&1 == 0 {
				p[0], p[i] = p[i], p[0]
			} else {
				p[state[i]], p[i] = p[i], p[state[i]]
			}
			result = append(result, slices.Clone(p))
			state[i]++
			i = 0
		} else {
			state[i] = 0
			i++
		}
	}
	return result
}
