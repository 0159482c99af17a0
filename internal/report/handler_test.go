package report

import (
	"testing"
	"time"

	"exchange-backend/internal/ledger"
	"exchange-backend/internal/models"
)

func TestExpenseDate_KeyedByDayNotByWindow(t *testing.T) {
	day := time.Date(2025, 12, 9, 0, 0, 0, 0, time.UTC)
	from, to := ledger.DayWindow(day, 2, 0)

	own := expenseDate(day)
	if !own.Equal(day) {
		t.Fatalf("expenseDate(%v) = %v, want the day at 00:00", day, own)
	}

	// With a 02:00 cutoff the stored key sits before the window start, so a
	// timestamp-window predicate would miss the day's own expenses...
	if !own.Before(from) {
		t.Errorf("expense key %v should fall before window start %v", own, from)
	}

	// ...and would pull in the next day's instead.
	next := expenseDate(day.AddDate(0, 0, 1))
	if next.Before(from) || !next.Before(to) {
		t.Errorf("next day's expense key %v should fall inside [%v, %v)", next, from, to)
	}
}

func TestBuildDailyReport_ExpensesAffectExpectedBalance(t *testing.T) {
	day := time.Date(2025, 12, 9, 0, 0, 0, 0, time.UTC)
	rec := &models.CashCountRecord{
		StaffID:    2,
		Date:       day,
		OpeningNpr: 10000,
	}
	expenses := []models.Expense{
		{ID: 1, Currency: models.CurrencyNPR, Amount: 500, Date: day, StaffID: 2},
	}

	resp, err := buildDailyReport(day, 2, rec, nil, nil, expenses, nil, nil)
	if err != nil {
		t.Fatalf("buildDailyReport: %v", err)
	}

	if resp.Summary.Npr.ExpectedBalance != 9500 {
		t.Errorf("ExpectedBalance = %v, want 9500", resp.Summary.Npr.ExpectedBalance)
	}
	if resp.ExpenseCount != 1 || len(resp.Expenses) != 1 {
		t.Errorf("expense detail = count %d, rows %d, want 1 and 1", resp.ExpenseCount, len(resp.Expenses))
	}
	if !resp.DayOpened || resp.DayClosed {
		t.Errorf("day flags = opened %v closed %v, want opened and not closed", resp.DayOpened, resp.DayClosed)
	}
}

func TestBuildDailyReport_StaffOwesOpenEndedButDetailIsDayScoped(t *testing.T) {
	day := time.Date(2025, 12, 9, 0, 0, 0, 0, time.UTC)

	todays := models.MoneyReceiving{
		ID: 1, Amount: 700, Currency: models.CurrencyNPR, StaffID: 2,
		Timestamp: time.Date(2025, 12, 9, 14, 0, 0, 0, time.UTC),
	}
	lastWeeks := models.MoneyReceiving{
		ID: 2, Amount: 1200, Currency: models.CurrencyNPR, StaffID: 2,
		Timestamp: time.Date(2025, 12, 2, 11, 0, 0, 0, time.UTC),
	}

	dayReceivings := []models.MoneyReceiving{todays}
	unconfirmed := []models.MoneyReceiving{todays, lastWeeks}

	resp, err := buildDailyReport(day, 2, nil, nil, nil, nil, dayReceivings, unconfirmed)
	if err != nil {
		t.Fatalf("buildDailyReport: %v", err)
	}

	// Staff owes counts every unconfirmed receiving, the old one included.
	if resp.Summary.StaffOwesNpr != 1900 {
		t.Errorf("StaffOwesNpr = %v, want 1900", resp.Summary.StaffOwesNpr)
	}

	// The detail list only shows what was recorded this day.
	if resp.ReceivingCount != 1 || len(resp.Receivings) != 1 {
		t.Fatalf("receiving detail = count %d, rows %d, want 1 and 1", resp.ReceivingCount, len(resp.Receivings))
	}
	if resp.Receivings[0].ID != todays.ID {
		t.Errorf("detail row ID = %d, want %d", resp.Receivings[0].ID, todays.ID)
	}
}

func TestBuildDailyReport_ClosingStates(t *testing.T) {
	day := time.Date(2025, 12, 9, 0, 0, 0, 0, time.UTC)
	closing := 9800.0
	rec := &models.CashCountRecord{
		StaffID:    2,
		Date:       day,
		OpeningNpr: 10000,
		ClosingNpr: &closing,
		IsClosed:   true,
	}

	resp, err := buildDailyReport(day, 2, rec, nil, nil, nil, nil, nil)
	if err != nil {
		t.Fatalf("buildDailyReport: %v", err)
	}

	if !resp.DayClosed {
		t.Error("DayClosed = false, want true")
	}
	// expected 10000 against counted 9800: 200 short.
	if resp.NprClosingState == nil || *resp.NprClosingState != "shortfall" {
		t.Errorf("NprClosingState = %v, want shortfall", resp.NprClosingState)
	}
	if resp.InrClosingState != nil {
		t.Errorf("InrClosingState = %v, want nil without an INR closing count", *resp.InrClosingState)
	}
}

func TestResolveStaffScope(t *testing.T) {
	if got, err := resolveStaffScope(models.RoleStaff, 7, ""); err != nil || got != 7 {
		t.Errorf("staff scope = %d, %v, want own id 7", got, err)
	}
	if got, err := resolveStaffScope(models.RoleStaff, 7, "3"); err != nil || got != 7 {
		t.Errorf("staff scope with param = %d, %v, want own id 7", got, err)
	}
	if _, err := resolveStaffScope(models.RoleOwner, 1, ""); err == nil {
		t.Error("owner without staff_id should be rejected")
	}
	if got, err := resolveStaffScope(models.RoleManager, 1, "4"); err != nil || got != 4 {
		t.Errorf("manager scope = %d, %v, want 4", got, err)
	}
	if _, err := resolveStaffScope(models.RoleOwner, 1, "abc"); err == nil {
		t.Error("non-numeric staff_id should be rejected")
	}
	if _, err := resolveStaffScope(models.RoleOwner, 1, "0"); err == nil {
		t.Error("zero staff_id should be rejected")
	}
}
