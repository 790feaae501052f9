package ui

import (
	"sort"
	"strings"
)

// MaxDistance is the largest edit distance Suggest accepts
const MaxDistance = 3

// Suggest returns up to three candidates close to target, nearest first.
// Comparison ignores case.
func Suggest(target string, candidates []string) []string {
	type scored struct {
		value    string
		distance int
	}

	want := []rune(strings.ToLower(target))
	var found []scored
	for _, c := range candidates {
		if d := distance(want, []rune(strings.ToLower(c))); d <= MaxDistance {
			found = append(found, scored{c, d})
		}
	}

	sort.SliceStable(found, func(i, j int) bool {
		return found[i].distance < found[j].distance
	})

	out := make([]string, 0, 3)
	for i := 0; i < len(found) && i < 3; i++ {
		out = append(out, found[i].value)
	}
	return out
}

// distance is the Levenshtein distance between a and b, kept to two rows
func distance(a, b []rune) int {
	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		cur[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			cur[j] = minOf(prev[j]+1, cur[j-1]+1, prev[j-1]+cost)
		}
		prev, cur = cur, prev
	}
	return prev[len(b)]
}

func minOf(a, b, c int) int {
	m := a
	if b < m {
		m = b
	}
	if c < m {
		m = c
	}
	return m
}
