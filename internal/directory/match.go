package directory

import "strings"

// match returns the indexes of entries whose fields equal query, or, when none
// do, the indexes whose fields contain it. Comparison ignores case.
func match(query string, n int, fields func(i int) []string) []int {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil
	}

	var exact, partial []int
	for i := 0; i < n; i++ {
		isExact, isPartial := false, false
		for _, field := range fields(i) {
			f := strings.ToLower(strings.TrimSpace(field))
			if f == "" {
				continue
			}
			if f == q {
				isExact = true
			}
			if strings.Contains(f, q) {
				isPartial = true
			}
		}
		if isExact {
			exact = append(exact, i)
		}
		if isPartial {
			partial = append(partial, i)
		}
	}
	if len(exact) > 0 {
		return exact
	}
	return partial
}
