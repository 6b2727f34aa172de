package survey

import (
	"sort"
	"strings"
)

// Tokenize splits id into alternating literal and digit-run tokens. The first
// token is always a literal (possibly empty), so digit runs sit at odd indexes.
//
//	"1_10" -> ["", "1", "_", "10", ""]
//	"q"    -> ["q"]
func Tokenize(id QuestionID) []string {
	tokens := []string{}
	start := 0
	inDigits := false
	for i := 0; i < len(id); i++ {
		d := isDigit(id[i])
		if d != inDigits {
			tokens = append(tokens, id[start:i])
			start = i
			inDigits = d
		}
	}
	tokens = append(tokens, id[start:])
	// A trailing digit run is followed by an empty literal.
	if inDigits {
		tokens = append(tokens, "")
	}
	return tokens
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

// CompareIDs orders identifiers naturally: digit runs compare by numeric value,
// so "2_9" < "2_10" and "2" < "10". Identifiers that are equal under that rule
// ("01" and "1") fall back to plain string order, keeping the order total.
func CompareIDs(a, b QuestionID) int {
	ta, tb := Tokenize(a), Tokenize(b)
	n := min(len(ta), len(tb))
	for i := 0; i < n; i++ {
		var c int
		if i%2 == 1 {
			c = compareDigits(ta[i], tb[i])
		} else {
			c = strings.Compare(ta[i], tb[i])
		}
		if c != 0 {
			return c
		}
	}
	switch {
	case len(ta) < len(tb):
		return -1
	case len(ta) > len(tb):
		return 1
	}
	return strings.Compare(a, b)
}

// compareDigits compares two digit runs by value without parsing them, so
// runs of any length work.
func compareDigits(a, b string) int {
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

// SortIDs sorts ids in place by CompareIDs.
func SortIDs(ids []QuestionID) {
	sort.SliceStable(ids, func(i, j int) bool {
		return CompareIDs(ids[i], ids[j]) < 0
	})
}
