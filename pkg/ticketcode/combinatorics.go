package ticketcode

import "sort"

// Bitmap reads an 18-position presence map; position i set means horse i+1.
// A code too short to hold the whole map yields an empty set.
func Bitmap(code string, start int) []int {
	horses := []int{}
	if len(code) < start+bitmapWidth {
		return horses
	}
	for i := 0; i < bitmapWidth; i++ {
		if code[start+i] == '1' {
			horses = append(horses, i+1)
		}
	}
	return horses
}

// union concatenates the sets keeping first-seen order and dropping repeats
func union(sets ...[]int) []int {
	seen := make(map[int]bool)
	out := []int{}
	for _, set := range sets {
		for _, h := range set {
			if !seen[h] {
				seen[h] = true
				out = append(out, h)
			}
		}
	}
	return out
}

// without returns the members of set found in none of the excluded sets
func without(set []int, excluded ...[]int) []int {
	drop := make(map[int]bool)
	for _, ex := range excluded {
		for _, h := range ex {
			drop[h] = true
		}
	}
	out := []int{}
	for _, h := range set {
		if !drop[h] {
			out = append(out, h)
		}
	}
	return out
}

func choose2(n int) int {
	if n < 2 {
		return 0
	}
	return n * (n - 1) / 2
}

// OrderedTriples counts (h1,h2,h3) drawn one per set with all three distinct
func OrderedTriples(first, second, third []int) int {
	count := 0
	for _, h1 := range first {
		for _, h2 := range second {
			if h1 == h2 {
				continue
			}
			for _, h3 := range third {
				if h3 != h1 && h3 != h2 {
					count++
				}
			}
		}
	}
	return count
}

// DistinctTriples counts the unordered sets behind OrderedTriples
func DistinctTriples(first, second, third []int) int {
	combos := make(map[[3]int]struct{})
	for _, h1 := range first {
		for _, h2 := range second {
			if h1 == h2 {
				continue
			}
			for _, h3 := range third {
				if h3 == h1 || h3 == h2 {
					continue
				}
				key := []int{h1, h2, h3}
				sort.Ints(key)
				combos[[3]int{key[0], key[1], key[2]}] = struct{}{}
			}
		}
	}
	return len(combos)
}

// OrderedPairs counts (h1,h2) drawn one per set with h1 != h2
func OrderedPairs(first, second []int) int {
	count := 0
	for _, h1 := range first {
		for _, h2 := range second {
			if h1 != h2 {
				count++
			}
		}
	}
	return count
}

// DistinctPairs counts the unordered pairs behind OrderedPairs
func DistinctPairs(first, second []int) int {
	combos := make(map[[2]int]struct{})
	for _, h1 := range first {
		for _, h2 := range second {
			if h1 == h2 {
				continue
			}
			if h1 > h2 {
				combos[[2]int{h2, h1}] = struct{}{}
			} else {
				combos[[2]int{h1, h2}] = struct{}{}
			}
		}
	}
	return len(combos)
}
