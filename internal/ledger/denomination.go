package ledger

import (
	"fmt"
	"strconv"
)

// DenominationTotal turns a denomination count (label -> note count) into a
// monetary total. Labels are note values ("1000", "500", ... ) except the
// special "coins" bucket which is counted at face value 1. An empty map is a
// valid empty till.
func DenominationTotal(counts map[string]int) (float64, error) {
	var total float64
	for label, count := range counts {
		if count < 0 {
			return 0, fmt.Errorf("denomination %q: negative count %d", label, count)
		}
		value := 1
		if label != "coins" {
			v, err := strconv.Atoi(label)
			if err != nil || v <= 0 {
				return 0, fmt.Errorf("denomination %q is not a note value", label)
			}
			value = v
		}
		total += float64(value * count)
	}
	return total, nil
}

// HasNonZero reports whether at least one denomination was counted. Starting
// a day requires a non-empty count; this is enforced at the workflow level,
// an all-zero count is still a valid total of 0 elsewhere.
func HasNonZero(counts map[string]int) bool {
	for _, count := range counts {
		if count > 0 {
			return true
		}
	}
	return false
}
