// Package ledger is the single place where a day's raw rows are turned into
// the reconciliation figures the report screens show. Every page goes through
// Compute; nothing re-derives these sums inline.
package ledger

import (
	"fmt"

	"exchange-backend/internal/models"
)

// SummaryInput holds one staff member's rows for one business day, already
// bucketed by the caller. Receivings may span more than one day: "staff owes"
// is open-ended, so callers pass every unconfirmed receiving they want
// counted.
type SummaryInput struct {
	OpeningNpr float64
	OpeningInr float64

	Transactions []models.ExchangeTransaction
	Credits      []models.CreditTransaction
	Expenses     []models.Expense
	Receivings   []models.MoneyReceiving

	// Set only when the day has been closed with a counted total.
	ClosingNpr *float64
	ClosingInr *float64
}

// CurrencySummary is one side of the till (NC = NPR counter, IC = INR
// counter in the shop's own shorthand).
type CurrencySummary struct {
	Opening        float64 `json:"opening"`
	CashReceived   float64 `json:"cash_received"`
	OnlineReceived float64 `json:"online_received"`
	ReceivedTotal  float64 `json:"received_total"`
	PaidOut        float64 `json:"paid_out"`
	Expenses       float64 `json:"expenses"`
	CreditGiven    float64 `json:"credit_given"`
	CreditReceived float64 `json:"credit_received"`

	// ExpectedBalance is the "hunu parne" figure:
	// opening + receivedTotal - paidOut - expenses - creditGiven.
	ExpectedBalance float64 `json:"expected_balance"`

	// Variance ("farak") compares totalIn against totalOut where credit
	// received counts as inflow and credit given as outflow. Positive is a
	// shortfall, negative a surplus. Note the deliberate asymmetry with
	// ExpectedBalance: the source app shows an "actual total" that does not
	// subtract creditGiven while ExpectedBalance does. Both figures are kept
	// as-is pending product review; do not merge them.
	TotalIn  float64 `json:"total_in"`
	TotalOut float64 `json:"total_out"`
	Variance float64 `json:"variance"`

	// ClosingVariance = ExpectedBalance - counted closing total. Only set
	// when a closing count exists; shown on the close-day form, while
	// Variance is what the daily report shows.
	Closing         *float64 `json:"closing,omitempty"`
	ClosingVariance *float64 `json:"closing_variance,omitempty"`
}

// Summary is the full two-currency ledger summary for one staff/day. It is
// derived data and must never be persisted.
type Summary struct {
	Npr CurrencySummary `json:"npr"`
	Inr CurrencySummary `json:"inr"`

	// Unconfirmed receivings held by the staff member, outside counted cash.
	StaffOwesNpr float64 `json:"staff_owes_npr"`
	StaffOwesInr float64 `json:"staff_owes_inr"`
}

// Compute validates the input rows and produces the ledger summary. Any
// malformed row rejects the whole computation; partial totals would silently
// corrupt the day.
func Compute(in SummaryInput) (Summary, error) {
	if err := validate(in); err != nil {
		return Summary{}, err
	}

	sum := Summary{
		Npr: currencySide(in, models.CurrencyNPR, in.OpeningNpr, in.ClosingNpr),
		Inr: currencySide(in, models.CurrencyINR, in.OpeningInr, in.ClosingInr),
	}
	sum.StaffOwesNpr, sum.StaffOwesInr = UnconfirmedTotals(in.Receivings)

	return sum, nil
}

// currencySide applies the per-currency rules. The roles of buy and sell
// swap between the two sides: a sell brings NPR in and pays INR out, a buy
// brings INR in and pays NPR out.
func currencySide(in SummaryInput, cur models.Currency, opening float64, closing *float64) CurrencySummary {
	receiveType := models.TransactionSell
	payType := models.TransactionBuy
	if cur == models.CurrencyINR {
		receiveType = models.TransactionBuy
		payType = models.TransactionSell
	}

	s := CurrencySummary{Opening: opening}

	for _, tx := range in.Transactions {
		if tx.Type == receiveType && tx.FromCurrency == cur {
			switch tx.Method {
			case models.PaymentOnline:
				s.OnlineReceived += tx.FromAmount
			default:
				s.CashReceived += tx.FromAmount
			}
		}
		if tx.Type == payType && tx.ToCurrency == cur {
			s.PaidOut += tx.ToAmount
		}
	}
	s.ReceivedTotal = s.CashReceived + s.OnlineReceived

	for _, e := range in.Expenses {
		if e.Currency == cur {
			s.Expenses += e.Amount
		}
	}

	for _, cr := range in.Credits {
		if cr.Currency != cur {
			continue
		}
		switch cr.Type {
		case models.CreditGiven:
			s.CreditGiven += cr.Amount
		case models.PaymentReceived:
			s.CreditReceived += cr.Amount
		}
	}

	s.ExpectedBalance = s.Opening + s.ReceivedTotal - s.PaidOut - s.Expenses - s.CreditGiven

	s.TotalIn = s.Opening + s.ReceivedTotal + s.CreditReceived
	s.TotalOut = s.PaidOut + s.Expenses + s.CreditGiven
	s.Variance = s.TotalIn - s.TotalOut

	if closing != nil {
		c := *closing
		cv := s.ExpectedBalance - c
		s.Closing = &c
		s.ClosingVariance = &cv
	}

	return s
}

func validate(in SummaryInput) error {
	for _, tx := range in.Transactions {
		if tx.FromCurrency == tx.ToCurrency {
			return fmt.Errorf("transaction %d: from and to currency are both %s", tx.ID, tx.FromCurrency)
		}
		if tx.FromAmount < 0 || tx.ToAmount < 0 {
			return fmt.Errorf("transaction %d: negative amount", tx.ID)
		}
	}
	for _, cr := range in.Credits {
		if cr.Amount < 0 {
			return fmt.Errorf("credit transaction %d: negative amount", cr.ID)
		}
	}
	for _, e := range in.Expenses {
		if e.Amount < 0 {
			return fmt.Errorf("expense %d: negative amount", e.ID)
		}
	}
	for _, r := range in.Receivings {
		if r.Amount < 0 {
			return fmt.Errorf("money receiving %d: negative amount", r.ID)
		}
	}
	if in.ClosingNpr != nil && *in.ClosingNpr < 0 {
		return fmt.Errorf("closing NPR count is negative")
	}
	if in.ClosingInr != nil && *in.ClosingInr < 0 {
		return fmt.Errorf("closing INR count is negative")
	}
	return nil
}

// VarianceState maps a variance to the styling the UI uses. The shop treats
// a positive variance as money that still has to be reconciled, so positive
// renders as a shortfall (danger) and negative as a surplus (success). This
// mapping is a product decision; keep it here so screens cannot disagree.
func VarianceState(v float64) string {
	switch {
	case v > 0:
		return "shortfall"
	case v < 0:
		return "surplus"
	default:
		return "balanced"
	}
}
