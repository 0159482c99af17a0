package cashtrack

import (
	"testing"
	"time"

	"exchange-backend/internal/models"
)

func closedDay(t *testing.T) models.CashCountRecord {
	t.Helper()
	closeNpr := 18500.0
	closeInr := 3200.0
	closeNprDenoms := `{"1000":18,"500":1}`
	closeInrDenoms := `{"100":32}`
	closedAt := time.Date(2025, 12, 9, 21, 30, 0, 0, time.UTC)
	return models.CashCountRecord{
		ID:               7,
		StaffID:          2,
		Date:             time.Date(2025, 12, 9, 0, 0, 0, 0, time.UTC),
		OpeningNpr:       10000,
		OpeningInr:       5000,
		OpeningNprDenoms: `{"1000":10}`,
		OpeningInrDenoms: `{"500":10}`,
		ClosingNpr:       &closeNpr,
		ClosingInr:       &closeInr,
		ClosingNprDenoms: &closeNprDenoms,
		ClosingInrDenoms: &closeInrDenoms,
		IsClosed:         true,
		ClosedAt:         &closedAt,
	}
}

func TestSeedNextDay_CopiesClosingToOpening(t *testing.T) {
	prev := closedDay(t)

	next, err := SeedNextDay(prev)
	if err != nil {
		t.Fatalf("SeedNextDay: %v", err)
	}

	if next.StaffID != prev.StaffID {
		t.Errorf("StaffID = %d, want %d", next.StaffID, prev.StaffID)
	}
	wantDate := time.Date(2025, 12, 10, 0, 0, 0, 0, time.UTC)
	if !next.Date.Equal(wantDate) {
		t.Errorf("Date = %v, want %v", next.Date, wantDate)
	}
	if next.OpeningNpr != *prev.ClosingNpr {
		t.Errorf("OpeningNpr = %v, want %v", next.OpeningNpr, *prev.ClosingNpr)
	}
	if next.OpeningInr != *prev.ClosingInr {
		t.Errorf("OpeningInr = %v, want %v", next.OpeningInr, *prev.ClosingInr)
	}
	if next.OpeningNprDenoms != *prev.ClosingNprDenoms {
		t.Errorf("OpeningNprDenoms = %q, want %q", next.OpeningNprDenoms, *prev.ClosingNprDenoms)
	}
	if next.OpeningInrDenoms != *prev.ClosingInrDenoms {
		t.Errorf("OpeningInrDenoms = %q, want %q", next.OpeningInrDenoms, *prev.ClosingInrDenoms)
	}
}

func TestSeedNextDay_FreshRecord(t *testing.T) {
	next, err := SeedNextDay(closedDay(t))
	if err != nil {
		t.Fatalf("SeedNextDay: %v", err)
	}

	if next.ID != 0 {
		t.Errorf("ID = %d, want 0 (new record)", next.ID)
	}
	if next.IsClosed {
		t.Error("seeded day must start open")
	}
	if next.ClosingNpr != nil || next.ClosingInr != nil {
		t.Error("seeded day must have no closing amounts")
	}
	if next.ClosedAt != nil {
		t.Error("seeded day must have no ClosedAt")
	}
}

func TestSeedNextDay_RejectsOpenDay(t *testing.T) {
	prev := closedDay(t)
	prev.IsClosed = false
	prev.ClosingNpr = nil
	prev.ClosingInr = nil

	if _, err := SeedNextDay(prev); err == nil {
		t.Fatal("expected error for un-closed day")
	}
}

func TestSeedNextDay_MissingClosingDenomsFallBackToEmpty(t *testing.T) {
	prev := closedDay(t)
	prev.ClosingNprDenoms = nil
	prev.ClosingInrDenoms = nil

	next, err := SeedNextDay(prev)
	if err != nil {
		t.Fatalf("SeedNextDay: %v", err)
	}
	if next.OpeningNprDenoms != "{}" || next.OpeningInrDenoms != "{}" {
		t.Errorf("denoms = %q / %q, want empty objects", next.OpeningNprDenoms, next.OpeningInrDenoms)
	}
}

func TestDenomsRoundTrip(t *testing.T) {
	counts := map[string]int{"1000": 3, "500": 2, "coins": 45}

	raw, err := EncodeDenoms(counts)
	if err != nil {
		t.Fatalf("EncodeDenoms: %v", err)
	}
	got, err := DecodeDenoms(raw)
	if err != nil {
		t.Fatalf("DecodeDenoms: %v", err)
	}

	if len(got) != len(counts) {
		t.Fatalf("len = %d, want %d", len(got), len(counts))
	}
	for label, want := range counts {
		if got[label] != want {
			t.Errorf("%q = %d, want %d", label, got[label], want)
		}
	}
}

func TestDecodeDenoms_EmptyString(t *testing.T) {
	got, err := DecodeDenoms("")
	if err != nil {
		t.Fatalf("DecodeDenoms: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("got %v, want empty map", got)
	}
}

func TestDecodeDenoms_BadJSON(t *testing.T) {
	if _, err := DecodeDenoms("{not json"); err == nil {
		t.Fatal("expected error for malformed JSON")
	}
}
