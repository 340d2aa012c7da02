package state

import (
	"sort"
	"strings"
)

// NaturalLess compares two workspace identifiers with digit runs treated as
// numbers, so "2" sorts before "10" and "ws2" before "ws10". Ties on the
// case-insensitive comparison fall back to a case-sensitive one to keep the
// ordering total.
func NaturalLess(a, b string) bool {
	if c := naturalCompare(strings.ToLower(a), strings.ToLower(b)); c != 0 {
		return c < 0
	}
	return a < b
}

func naturalCompare(a, b string) int {
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		ca, cb := a[i], b[j]
		if isDigit(ca) && isDigit(cb) {
			ia, na := digitRun(a, i)
			ib, nb := digitRun(b, j)
			if c := compareDigitRuns(a[ia:i+na], b[ib:j+nb]); c != 0 {
				return c
			}
			i += na
			j += nb
			continue
		}
		if ca != cb {
			if ca < cb {
				return -1
			}
			return 1
		}
		i++
		j++
	}
	switch {
	case i < len(a):
		return 1
	case j < len(b):
		return -1
	default:
		return 0
	}
}

// digitRun returns the start index and length of the digit run at i.
func digitRun(s string, i int) (start, n int) {
	start = i
	for i+n < len(s) && isDigit(s[i+n]) {
		n++
	}
	return start, n
}

// compareDigitRuns compares two digit strings numerically without parsing
// them into ints, so arbitrarily long identifiers cannot overflow.
func compareDigitRuns(a, b string) int {
	a = strings.TrimLeft(a, "0")
	b = strings.TrimLeft(b, "0")
	if len(a) != len(b) {
		if len(a) < len(b) {
			return -1
		}
		return 1
	}
	return strings.Compare(a, b)
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

// SortWorkspaces orders workspace identifiers in natural order, in place.
func SortWorkspaces(ids []string) {
	sort.Slice(ids, func(i, j int) bool { return NaturalLess(ids[i], ids[j]) })
}
