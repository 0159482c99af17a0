package ledger

import (
	"testing"

	"exchange-backend/internal/models"
)

func sellNpr(amount float64, method models.PaymentMethod) models.ExchangeTransaction {
	return models.ExchangeTransaction{
		Type:         models.TransactionSell,
		FromCurrency: models.CurrencyNPR,
		FromAmount:   amount,
		ToCurrency:   models.CurrencyINR,
		ToAmount:     amount / 1.6,
		Method:       method,
	}
}

func buyInr(fromAmount, toNpr float64, method models.PaymentMethod) models.ExchangeTransaction {
	return models.ExchangeTransaction{
		Type:         models.TransactionBuy,
		FromCurrency: models.CurrencyINR,
		FromAmount:   fromAmount,
		ToCurrency:   models.CurrencyNPR,
		ToAmount:     toNpr,
		Method:       method,
	}
}

func TestCompute_DailyReportScenario(t *testing.T) {
	// Opening NPR 10000, one sell bringing in NPR 5000 cash, one buy paying
	// out NPR 2000, one NPR 500 expense, no credit activity.
	closing := 12300.0
	in := SummaryInput{
		OpeningNpr: 10000,
		Transactions: []models.ExchangeTransaction{
			sellNpr(5000, models.PaymentCash),
			buyInr(1250, 2000, models.PaymentCash),
		},
		Expenses: []models.Expense{
			{Currency: models.CurrencyNPR, Amount: 500},
		},
		ClosingNpr: &closing,
	}

	sum, err := Compute(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	npr := sum.Npr
	if npr.ReceivedTotal != 5000 {
		t.Errorf("ReceivedTotal got=%v want=5000", npr.ReceivedTotal)
	}
	if npr.CashReceived != 5000 || npr.OnlineReceived != 0 {
		t.Errorf("cash/online split got=%v/%v want=5000/0", npr.CashReceived, npr.OnlineReceived)
	}
	if npr.PaidOut != 2000 {
		t.Errorf("PaidOut got=%v want=2000", npr.PaidOut)
	}
	if npr.Expenses != 500 {
		t.Errorf("Expenses got=%v want=500", npr.Expenses)
	}
	if npr.ExpectedBalance != 12500 {
		t.Errorf("ExpectedBalance got=%v want=12500", npr.ExpectedBalance)
	}
	if npr.ClosingVariance == nil {
		t.Fatal("ClosingVariance is nil with a closing count supplied")
	}
	if *npr.ClosingVariance != 200 {
		t.Errorf("ClosingVariance got=%v want=200 (shortfall)", *npr.ClosingVariance)
	}
	if VarianceState(*npr.ClosingVariance) != "shortfall" {
		t.Errorf("a positive closing variance must render as shortfall")
	}
}

func TestCompute_InrMirror(t *testing.T) {
	// The INR side swaps the buy/sell roles: a buy brings INR in, a sell
	// pays INR out.
	in := SummaryInput{
		OpeningInr: 1000,
		Transactions: []models.ExchangeTransaction{
			buyInr(800, 1280, models.PaymentCash),
			buyInr(200, 320, models.PaymentOnline),
			sellNpr(1600, models.PaymentCash), // pays out INR 1000
		},
	}

	sum, err := Compute(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	inr := sum.Inr
	if inr.CashReceived != 800 {
		t.Errorf("INR CashReceived got=%v want=800", inr.CashReceived)
	}
	if inr.OnlineReceived != 200 {
		t.Errorf("INR OnlineReceived got=%v want=200", inr.OnlineReceived)
	}
	if inr.ReceivedTotal != 1000 {
		t.Errorf("INR ReceivedTotal got=%v want=1000", inr.ReceivedTotal)
	}
	if inr.PaidOut != 1000 {
		t.Errorf("INR PaidOut got=%v want=1000", inr.PaidOut)
	}
	if inr.ExpectedBalance != 1000 {
		t.Errorf("INR ExpectedBalance got=%v want=1000", inr.ExpectedBalance)
	}
}

func TestCompute_CreditMovementsCancelInVarianceNotInExpected(t *testing.T) {
	// Credit given and received of the same amount on an otherwise empty day:
	// expectedBalance goes negative while the variance is zero. The two
	// figures must stay distinct.
	in := SummaryInput{
		Credits: []models.CreditTransaction{
			{Type: models.CreditGiven, Amount: 1000, Currency: models.CurrencyNPR},
			{Type: models.PaymentReceived, Amount: 1000, Currency: models.CurrencyNPR},
		},
	}

	sum, err := Compute(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	npr := sum.Npr
	if npr.ExpectedBalance != -1000 {
		t.Errorf("ExpectedBalance got=%v want=-1000", npr.ExpectedBalance)
	}
	if npr.TotalIn != 1000 || npr.TotalOut != 1000 {
		t.Errorf("totals got in=%v out=%v want 1000/1000", npr.TotalIn, npr.TotalOut)
	}
	if npr.Variance != 0 {
		t.Errorf("Variance got=%v want=0", npr.Variance)
	}
	if VarianceState(npr.Variance) != "balanced" {
		t.Errorf("zero variance must render neutrally")
	}
}

func TestCompute_VarianceSignConvention(t *testing.T) {
	// More in than out -> positive -> shortfall styling. More out than in ->
	// negative -> surplus styling. This is the source UI's convention, not
	// plain arithmetic intuition.
	in := SummaryInput{
		Credits: []models.CreditTransaction{
			{Type: models.PaymentReceived, Amount: 500, Currency: models.CurrencyNPR},
		},
	}
	sum, err := Compute(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sum.Npr.Variance != 500 {
		t.Fatalf("Variance got=%v want=500", sum.Npr.Variance)
	}
	if VarianceState(sum.Npr.Variance) != "shortfall" {
		t.Errorf("positive variance must map to shortfall")
	}

	in = SummaryInput{
		Expenses: []models.Expense{{Currency: models.CurrencyNPR, Amount: 300}},
	}
	sum, err = Compute(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sum.Npr.Variance != -300 {
		t.Fatalf("Variance got=%v want=-300", sum.Npr.Variance)
	}
	if VarianceState(sum.Npr.Variance) != "surplus" {
		t.Errorf("negative variance must map to surplus")
	}
}

func TestCompute_Idempotent(t *testing.T) {
	in := SummaryInput{
		OpeningNpr: 7000,
		OpeningInr: 300,
		Transactions: []models.ExchangeTransaction{
			sellNpr(1600, models.PaymentOnline),
			buyInr(400, 640, models.PaymentCash),
		},
		Credits: []models.CreditTransaction{
			{Type: models.CreditGiven, Amount: 250, Currency: models.CurrencyNPR},
		},
		Expenses: []models.Expense{
			{Currency: models.CurrencyINR, Amount: 50},
		},
		Receivings: []models.MoneyReceiving{
			{Currency: models.CurrencyNPR, Amount: 900, IsConfirmed: false},
		},
	}

	first, err := Compute(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := Compute(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first != second {
		t.Errorf("Compute is not idempotent: %+v vs %+v", first, second)
	}
}

func TestCompute_OnlineReceivedCountsTowardTotal(t *testing.T) {
	// Online sells still count as NPR inflow; the cash/online split is
	// informational only.
	in := SummaryInput{
		Transactions: []models.ExchangeTransaction{
			sellNpr(3000, models.PaymentCash),
			sellNpr(2000, models.PaymentOnline),
		},
	}
	sum, err := Compute(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sum.Npr.CashReceived != 3000 || sum.Npr.OnlineReceived != 2000 {
		t.Errorf("split got=%v/%v want=3000/2000", sum.Npr.CashReceived, sum.Npr.OnlineReceived)
	}
	if sum.Npr.ReceivedTotal != 5000 {
		t.Errorf("ReceivedTotal got=%v want=5000", sum.Npr.ReceivedTotal)
	}
}

func TestCompute_RejectsSameCurrencyTransaction(t *testing.T) {
	in := SummaryInput{
		Transactions: []models.ExchangeTransaction{
			{
				ID:           7,
				Type:         models.TransactionSell,
				FromCurrency: models.CurrencyNPR,
				FromAmount:   100,
				ToCurrency:   models.CurrencyNPR,
				ToAmount:     100,
				Method:       models.PaymentCash,
			},
		},
	}
	if _, err := Compute(in); err == nil {
		t.Fatal("expected error for same-currency transaction, got nil")
	}
}

func TestCompute_RejectsNegativeAmounts(t *testing.T) {
	cases := []SummaryInput{
		{Transactions: []models.ExchangeTransaction{
			{Type: models.TransactionSell, FromCurrency: models.CurrencyNPR, FromAmount: -1, ToCurrency: models.CurrencyINR, ToAmount: 1},
		}},
		{Credits: []models.CreditTransaction{{Type: models.CreditGiven, Amount: -5, Currency: models.CurrencyNPR}}},
		{Expenses: []models.Expense{{Currency: models.CurrencyNPR, Amount: -10}}},
		{Receivings: []models.MoneyReceiving{{Currency: models.CurrencyNPR, Amount: -2}}},
	}
	for i, in := range cases {
		if _, err := Compute(in); err == nil {
			t.Errorf("case %d: expected error for negative amount, got nil", i)
		}
	}
}

func TestCompute_NoPartialResultOnError(t *testing.T) {
	in := SummaryInput{
		OpeningNpr: 5000,
		Transactions: []models.ExchangeTransaction{
			sellNpr(1000, models.PaymentCash),
			{Type: models.TransactionSell, FromCurrency: models.CurrencyINR, FromAmount: 10, ToCurrency: models.CurrencyINR, ToAmount: 10},
		},
	}
	sum, err := Compute(in)
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if sum != (Summary{}) {
		t.Errorf("expected zero summary on error, got %+v", sum)
	}
}

func TestUnconfirmedTotals(t *testing.T) {
	recs := []models.MoneyReceiving{
		{Currency: models.CurrencyNPR, Amount: 1500, IsConfirmed: false},
		{Currency: models.CurrencyNPR, Amount: 700, IsConfirmed: true}, // already remitted
		{Currency: models.CurrencyINR, Amount: 200, IsConfirmed: false},
		{Currency: models.CurrencyNPR, Amount: 300, IsConfirmed: false},
	}

	npr, inr := UnconfirmedTotals(recs)
	if npr != 1800 {
		t.Errorf("staff owes NPR got=%v want=1800", npr)
	}
	if inr != 200 {
		t.Errorf("staff owes INR got=%v want=200", inr)
	}
}

func TestCompute_StaffOwesIndependentOfVariance(t *testing.T) {
	in := SummaryInput{
		Receivings: []models.MoneyReceiving{
			{Currency: models.CurrencyNPR, Amount: 2500, IsConfirmed: false},
		},
	}
	sum, err := Compute(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sum.StaffOwesNpr != 2500 {
		t.Errorf("StaffOwesNpr got=%v want=2500", sum.StaffOwesNpr)
	}
	// Receivings sit outside the counted till and must not move the variance.
	if sum.Npr.Variance != 0 {
		t.Errorf("receivings leaked into the cash variance: %v", sum.Npr.Variance)
	}
}
