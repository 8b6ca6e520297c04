package version

import (
	"fmt"
	"strings"

	"github.com/samber/lo"
)

type semver [3]int

func parse(s string) (v semver, err error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "v")
	if _, err = fmt.Sscanf(s, "%d.%d.%d", &v[0], &v[1], &v[2]); err != nil {
		return v, fmt.Errorf("parse version %q: %w", s, err)
	}
	return v, nil
}

// Compare returns 1 when a is newer than b, -1 when older and 0 when equal.
// Pre-release and build suffixes are ignored.
func Compare(a, b string) (int, error) {
	av, err := parse(a)
	if err != nil {
		return 0, err
	}

	bv, err := parse(b)
	if err != nil {
		return 0, err
	}

	for _, part := range lo.Zip2(av[:], bv[:]) {
		switch {
		case part.A > part.B:
			return 1, nil
		case part.A < part.B:
			return -1, nil
		}
	}

	return 0, nil
}
