package ledger

import "exchange-backend/internal/models"

// UnconfirmedTotals sums receivings that have not been confirmed yet, per
// currency. This is the "staff owes" figure: money a staff member collected
// into a personal channel and has not physically handed over. It is not part
// of the cash variance and is not scoped to a single day.
func UnconfirmedTotals(recs []models.MoneyReceiving) (npr, inr float64) {
	for _, r := range recs {
		if r.IsConfirmed {
			continue
		}
		switch r.Currency {
		case models.CurrencyNPR:
			npr += r.Amount
		case models.CurrencyINR:
			inr += r.Amount
		}
	}
	return npr, inr
}
