package ledger

import "testing"

func TestDenominationTotal(t *testing.T) {
	total, err := DenominationTotal(map[string]int{
		"1000":  3,
		"500":   2,
		"100":   5,
		"coins": 37,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 4537 {
		t.Errorf("total got=%v want=4537", total)
	}
}

func TestDenominationTotal_EmptyIsZero(t *testing.T) {
	total, err := DenominationTotal(map[string]int{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 0 {
		t.Errorf("empty count got=%v want=0", total)
	}
}

func TestDenominationTotal_AllZeroIsValid(t *testing.T) {
	counts := map[string]int{"1000": 0, "coins": 0}
	total, err := DenominationTotal(counts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 0 {
		t.Errorf("all-zero count got=%v want=0", total)
	}
	if HasNonZero(counts) {
		t.Error("HasNonZero reported true for an all-zero count")
	}
}

func TestDenominationTotal_Linear(t *testing.T) {
	a := map[string]int{"1000": 1, "50": 4}
	b := map[string]int{"1000": 2, "50": 8}

	ta, err := DenominationTotal(a)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	tb, err := DenominationTotal(b)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tb != 2*ta {
		t.Errorf("doubling every count must double the total: %v vs %v", ta, tb)
	}
}

func TestDenominationTotal_RejectsNegativeCount(t *testing.T) {
	if _, err := DenominationTotal(map[string]int{"500": -1}); err == nil {
		t.Fatal("expected error for negative count, got nil")
	}
}

func TestDenominationTotal_RejectsBadLabel(t *testing.T) {
	for _, label := range []string{"abc", "", "-100", "0"} {
		if _, err := DenominationTotal(map[string]int{label: 1}); err == nil {
			t.Errorf("label %q: expected error, got nil", label)
		}
	}
}

func TestHasNonZero(t *testing.T) {
	if !HasNonZero(map[string]int{"1000": 0, "coins": 2}) {
		t.Error("expected true with a non-zero bucket")
	}
	if HasNonZero(map[string]int{}) {
		t.Error("expected false for empty count")
	}
}
