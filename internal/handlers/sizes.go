package handlers

import (
	"sort"
	"strings"
)

// The six recognized size codes. FS is free size.
var validSizes = []string{"XS", "S", "M", "FS", "L", "XL"}

func isValidSize(code string) bool {
	for _, s := range validSizes {
		if s == code {
			return true
		}
	}
	return false
}

// normalizeSizes trims, deduplicates and validates size codes. Every
// unrecognized entry is reported, not just the first one.
func normalizeSizes(values []string) ([]string, error) {
	seen := map[string]struct{}{}
	out := make([]string, 0, len(values))
	invalid := make([]string, 0)

	for _, v := range values {
		code := strings.ToUpper(strings.TrimSpace(v))
		if code == "" {
			continue
		}
		if _, ok := seen[code]; ok {
			continue
		}
		seen[code] = struct{}{}

		if !isValidSize(code) {
			invalid = append(invalid, code)
			continue
		}
		out = append(out, code)
	}

	if len(invalid) > 0 {
		sort.Strings(invalid)
		return nil, invalidSizesError{Invalid: invalid}
	}
	return out, nil
}
