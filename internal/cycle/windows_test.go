package cycle

import (
	"testing"

	"github.com/apexfin/cardcycle/internal/domain"
)

// checkSeries asserts the structural invariants every window series must
// hold: single open window at the head, ends after starts, contiguity.
func checkSeries(t *testing.T, ws []Window) {
	t.Helper()
	if err := validateWindows(ws); err != nil {
		t.Fatalf("window series invalid: %v", err)
	}
}

func TestWindowsFullSeries(t *testing.T) {
	p := DefaultParams()
	asOf := date(2024, 7, 1)
	card := &domain.Card{
		LastStatementDate: datePtr(2024, 6, 15),
		NextDueDate:       datePtr(2024, 7, 10), // 25-day grace: 30-day cycles
		OpenedAt:          datePtr(2023, 1, 1),
	}

	ws := p.Windows(card, asOf)
	checkSeries(t, ws)

	open := ws[0]
	if !open.Open {
		t.Fatal("head window must be the open cycle")
	}
	if !open.Start.Equal(date(2024, 6, 16)) || !open.End.Equal(asOf) {
		t.Errorf("open window = %s..%s, want 2024-06-16..2024-07-01",
			open.Start.Format("2006-01-02"), open.End.Format("2006-01-02"))
	}

	closed := ws[1]
	if !closed.End.Equal(date(2024, 6, 15)) {
		t.Errorf("closed end = %s, want 2024-06-15", closed.End.Format("2006-01-02"))
	}
	if !closed.Start.Equal(date(2024, 5, 17)) {
		t.Errorf("closed start = %s, want 2024-05-17 (30-day window)", closed.Start.Format("2006-01-02"))
	}

	// Historical windows reach back toward the 12-month horizon but never
	// past the open date.
	cutoff := asOf.AddDate(0, -p.HistoryMonths, 0)
	for i, w := range ws {
		if w.Start.Before(date(2023, 1, 1)) {
			t.Errorf("window %d starts %s, before the account opened", i, w.Start.Format("2006-01-02"))
		}
	}
	oldest := ws[len(ws)-1]
	if oldest.End.Before(cutoff) {
		t.Errorf("oldest window ends %s, before the horizon %s",
			oldest.End.Format("2006-01-02"), cutoff.Format("2006-01-02"))
	}
	if len(ws) < 10 {
		t.Errorf("expected roughly a year of 30-day windows, got %d", len(ws))
	}
}

func TestWindowsStatementClosedToday(t *testing.T) {
	p := DefaultParams()
	asOf := date(2024, 6, 15)
	card := &domain.Card{
		LastStatementDate: datePtr(2024, 6, 15),
		NextDueDate:       datePtr(2024, 7, 10),
		OpenedAt:          datePtr(2023, 1, 1),
	}

	ws := p.Windows(card, asOf)
	checkSeries(t, ws)

	// The new cycle nominally starts tomorrow; it is emitted as a one-day
	// window rather than an inverted range.
	open := ws[0]
	if !open.Start.Equal(date(2024, 6, 16)) || !open.End.Equal(date(2024, 6, 16)) {
		t.Errorf("open window = %s..%s, want one-day 2024-06-16",
			open.Start.Format("2006-01-02"), open.End.Format("2006-01-02"))
	}
}

func TestWindowsOpenDateClampsRecentCycle(t *testing.T) {
	p := DefaultParams()
	asOf := date(2024, 7, 1)
	card := &domain.Card{
		LastStatementDate: datePtr(2024, 6, 15),
		NextDueDate:       datePtr(2024, 7, 10),
		OpenedAt:          datePtr(2024, 6, 1), // opened mid-way through the closed cycle
	}

	ws := p.Windows(card, asOf)
	checkSeries(t, ws)

	if len(ws) != 2 {
		t.Fatalf("expected open + one clamped closed window, got %d", len(ws))
	}
	if !ws[1].Start.Equal(date(2024, 6, 1)) {
		t.Errorf("closed start = %s, want clamped to 2024-06-01", ws[1].Start.Format("2006-01-02"))
	}
}

func TestWindowsStraddlingHistoricalClamped(t *testing.T) {
	p := DefaultParams()
	asOf := date(2024, 7, 1)
	card := &domain.Card{
		LastStatementDate: datePtr(2024, 6, 15),
		NextDueDate:       datePtr(2024, 7, 10),
		OpenedAt:          datePtr(2024, 4, 1),
	}

	ws := p.Windows(card, asOf)
	checkSeries(t, ws)

	oldest := ws[len(ws)-1]
	if !oldest.Start.Equal(date(2024, 4, 1)) {
		t.Errorf("oldest start = %s, want clamped to the open date", oldest.Start.Format("2006-01-02"))
	}
	for i, w := range ws {
		if w.Start.Before(date(2024, 4, 1)) {
			t.Errorf("window %d predates the account", i)
		}
	}
}

func TestWindowsFallback(t *testing.T) {
	p := DefaultParams()
	asOf := date(2024, 7, 1)

	t.Run("no statement date", func(t *testing.T) {
		ws := p.Windows(&domain.Card{}, asOf)
		checkSeries(t, ws)
		if len(ws) != 1 || !ws[0].Open {
			t.Fatalf("expected single open fallback window, got %d", len(ws))
		}
		if got := ws[0].Days(); got != p.DefaultCycleDays {
			t.Errorf("fallback window spans %d days, want %d", got, p.DefaultCycleDays)
		}
		if !ws[0].End.Equal(asOf) {
			t.Errorf("fallback ends %s, want asOf", ws[0].End.Format("2006-01-02"))
		}
	})

	t.Run("future statement date", func(t *testing.T) {
		card := &domain.Card{LastStatementDate: datePtr(2024, 8, 1)}
		ws := p.Windows(card, asOf)
		if len(ws) != 1 || !ws[0].Open {
			t.Fatalf("expected single open fallback window, got %d", len(ws))
		}
	})

	t.Run("open date after last close", func(t *testing.T) {
		card := &domain.Card{
			LastStatementDate: datePtr(2024, 5, 1),
			OpenedAt:          datePtr(2024, 6, 10),
		}
		ws := p.Windows(card, asOf)
		if len(ws) != 1 || !ws[0].Open {
			t.Fatalf("expected single open fallback window, got %d", len(ws))
		}
		if ws[0].Start.Before(date(2024, 6, 10)) {
			t.Errorf("fallback start %s predates the account", ws[0].Start.Format("2006-01-02"))
		}
	})

	t.Run("card opened today", func(t *testing.T) {
		card := &domain.Card{OpenedAt: &asOf}
		ws := p.Windows(card, asOf)
		checkSeries(t, ws)
		if !ws[0].Start.Equal(asOf) || !ws[0].End.Equal(asOf) {
			t.Errorf("expected one-day window at asOf, got %s..%s",
				ws[0].Start.Format("2006-01-02"), ws[0].End.Format("2006-01-02"))
		}
	})
}

func TestWindowsNoOverlap(t *testing.T) {
	p := DefaultParams()
	asOf := date(2024, 7, 1)
	card := &domain.Card{
		LastStatementDate: datePtr(2024, 6, 20),
		NextDueDate:       datePtr(2024, 7, 18), // 28-day grace: 31-day cycles
		OpenedAt:          datePtr(2022, 3, 15),
	}

	ws := p.Windows(card, asOf)
	checkSeries(t, ws)

	// Pairwise: every day belongs to at most one window.
	for i := 1; i < len(ws); i++ {
		if !ws[i].End.Before(ws[i-1].Start) {
			t.Errorf("windows %d and %d overlap", i, i-1)
		}
	}
}

func TestWindowDays(t *testing.T) {
	w := Window{Start: date(2024, 6, 1), End: date(2024, 6, 30)}
	if got := w.Days(); got != 30 {
		t.Errorf("Days() = %d, want 30", got)
	}
	one := Window{Start: date(2024, 6, 1), End: date(2024, 6, 1)}
	if got := one.Days(); got != 1 {
		t.Errorf("Days() = %d, want 1", got)
	}
}

func TestValidateWindowsRejectsBadSeries(t *testing.T) {
	open := Window{Start: date(2024, 6, 16), End: date(2024, 7, 1), Open: true}

	tests := []struct {
		name string
		ws   []Window
	}{
		{"empty", nil},
		{"no open window", []Window{{Start: date(2024, 6, 1), End: date(2024, 6, 15)}}},
		{"inverted range", []Window{{Start: date(2024, 7, 1), End: date(2024, 6, 1), Open: true}}},
		{
			"gap between windows",
			[]Window{open, {Start: date(2024, 5, 1), End: date(2024, 6, 10)}},
		},
		{
			"two open windows",
			[]Window{open, {Start: date(2024, 5, 17), End: date(2024, 6, 15), Open: true}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := validateWindows(tt.ws); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}
