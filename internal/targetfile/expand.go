package targetfile

import (
	"fmt"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Expand resolves glob entries among locations. Literal entries are kept as
// they are, since a missing target file is created on load. Glob matches
// with an unsupported extension are dropped. Duplicates are removed while
// preserving the first occurrence.
func Expand(locations []string) ([]string, error) {
	seen := make(map[string]bool, len(locations))
	out := make([]string, 0, len(locations))
	add := func(p string) {
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}

	for _, loc := range locations {
		if !strings.ContainsAny(loc, "*?[{") {
			add(loc)
			continue
		}
		if !doublestar.ValidatePathPattern(loc) {
			return nil, fmt.Errorf("targetfile: invalid glob %q", loc)
		}
		matches, err := doublestar.FilepathGlob(loc)
		if err != nil {
			return nil, fmt.Errorf("targetfile: glob %q: %w", loc, err)
		}
		sort.Strings(matches)
		for _, m := range matches {
			if Supported(m) {
				add(m)
			}
		}
	}
	return out, nil
}
