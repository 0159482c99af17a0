package cashtrack

import (
	"encoding/json"
	"fmt"

	"exchange-backend/internal/models"
)

// DecodeDenoms parses the stored JSONB denomination snapshot back into a
// label -> count map. An empty string counts as an empty till.
func DecodeDenoms(raw string) (map[string]int, error) {
	if raw == "" {
		return map[string]int{}, nil
	}
	var counts map[string]int
	if err := json.Unmarshal([]byte(raw), &counts); err != nil {
		return nil, fmt.Errorf("decode denominations: %w", err)
	}
	return counts, nil
}

// EncodeDenoms serializes a denomination map for JSONB storage. A nil map is
// stored as an empty object so the column stays NOT NULL friendly.
func EncodeDenoms(counts map[string]int) (string, error) {
	if counts == nil {
		counts = map[string]int{}
	}
	raw, err := json.Marshal(counts)
	if err != nil {
		return "", fmt.Errorf("encode denominations: %w", err)
	}
	return string(raw), nil
}

// SeedNextDay builds the record for the business day after prev, carrying
// prev's closing count over as the new opening. prev must be closed; the
// closing amounts and denomination snapshots are copied verbatim, nothing is
// recomputed.
func SeedNextDay(prev models.CashCountRecord) (models.CashCountRecord, error) {
	if !prev.IsClosed || prev.ClosingNpr == nil || prev.ClosingInr == nil {
		return models.CashCountRecord{}, fmt.Errorf("day %s is not closed yet", prev.Date.Format("2006-01-02"))
	}

	next := models.CashCountRecord{
		StaffID:    prev.StaffID,
		Date:       prev.Date.AddDate(0, 0, 1),
		OpeningNpr: *prev.ClosingNpr,
		OpeningInr: *prev.ClosingInr,
	}

	next.OpeningNprDenoms = "{}"
	if prev.ClosingNprDenoms != nil {
		next.OpeningNprDenoms = *prev.ClosingNprDenoms
	}
	next.OpeningInrDenoms = "{}"
	if prev.ClosingInrDenoms != nil {
		next.OpeningInrDenoms = *prev.ClosingInrDenoms
	}

	return next, nil
}
