package cycle

import (
	"fmt"
	"time"

	"github.com/apexfin/cardcycle/internal/domain"
)

// Window is one billing-cycle date range, inclusive on both ends.
type Window struct {
	Start time.Time
	End   time.Time
	Open  bool // the currently open cycle; exactly one per card
}

// Days returns the window length in days.
func (w Window) Days() int {
	return daysBetween(w.Start, w.End) + 1
}

// Windows produces the card's cycle windows ordered newest to oldest: the
// current open cycle, the most recently closed cycle, and historical closed
// cycles stepping back one estimated length at a time until the later of the
// card's open date and the history horizon.
//
// When the card has no last-statement date, or the reported one lies in the
// future, the issuer data cannot anchor a real cycle series and only a
// single estimated current window is produced.
func (p Params) Windows(card *domain.Card, asOf time.Time) []Window {
	asOf = day(asOf)

	var opened *time.Time
	if card.OpenedAt != nil {
		d := day(*card.OpenedAt)
		opened = &d
	}

	if card.LastStatementDate == nil || day(*card.LastStatementDate).After(asOf) {
		return []Window{p.fallbackWindow(opened, asOf)}
	}

	length := p.EstimateLength(card.LastStatementDate, card.NextDueDate)

	closedEnd := day(*card.LastStatementDate)
	closedStart := closedEnd.AddDate(0, 0, -(length - 1))

	// History cutoff: the later of the open date and the 12-month horizon.
	cutoff := asOf.AddDate(0, -p.HistoryMonths, 0)
	if opened != nil && opened.After(cutoff) {
		cutoff = *opened
	}

	// The card "opened" after its last statement closed: the issuer data is
	// self-contradictory, so degrade to the single estimated window rather
	// than emit windows predating the account.
	if opened != nil && opened.After(closedEnd) {
		return []Window{p.fallbackWindow(opened, asOf)}
	}

	// Current open cycle: starts the day after the last close and runs
	// through today. If the statement closed today, it is a one-day window.
	openStart := closedEnd.AddDate(0, 0, 1)
	openEnd := asOf
	if openStart.After(openEnd) {
		openEnd = openStart
	}

	windows := []Window{{Start: openStart, End: openEnd, Open: true}}

	// Most recently closed cycle, start clamped to the open date.
	trimmed := false
	if opened != nil && opened.After(closedStart) {
		closedStart = *opened
		trimmed = true
	}
	windows = append(windows, Window{Start: closedStart, End: closedEnd})
	if trimmed {
		return windows
	}

	// Walk backward one estimated length at a time.
	end := closedStart.AddDate(0, 0, -1)
	for !end.Before(cutoff) {
		start := end.AddDate(0, 0, -(length - 1))

		stop := false
		if opened != nil && start.Before(*opened) {
			// Straddling window: keep it but never extend before the
			// account existed.
			start = *opened
			stop = true
		}
		windows = append(windows, Window{Start: start, End: end})
		if stop {
			break
		}
		end = start.AddDate(0, 0, -1)
	}

	return windows
}

// fallbackWindow is the degraded single-current-cycle scheme used when no
// trustworthy statement anchor exists.
func (p Params) fallbackWindow(opened *time.Time, asOf time.Time) Window {
	start := asOf.AddDate(0, 0, -(p.DefaultCycleDays - 1))
	if opened != nil && opened.After(start) {
		start = *opened
	}
	if start.After(asOf) {
		start = asOf
	}
	return Window{Start: start, End: asOf, Open: true}
}

// validateWindows enforces the structural invariants of a newest-to-oldest
// window sequence: every end >= start, no overlaps, no gaps (each window
// starts exactly one day after the next-older window ends), and exactly one
// open window sitting at the head.
func validateWindows(ws []Window) error {
	if len(ws) == 0 {
		return fmt.Errorf("empty window set")
	}

	openCount := 0
	for i, w := range ws {
		if w.End.Before(w.Start) {
			return fmt.Errorf("window %d ends %s before it starts %s",
				i, w.End.Format("2006-01-02"), w.Start.Format("2006-01-02"))
		}
		if w.Open {
			openCount++
			if i != 0 {
				return fmt.Errorf("open window at position %d, expected head", i)
			}
		}
		if i > 0 {
			older := ws[i]
			newer := ws[i-1]
			if got := older.End.AddDate(0, 0, 1); !got.Equal(newer.Start) {
				return fmt.Errorf("windows %d and %d not contiguous: %s then %s",
					i, i-1, older.End.Format("2006-01-02"), newer.Start.Format("2006-01-02"))
			}
		}
	}
	if openCount != 1 {
		return fmt.Errorf("expected exactly one open window, got %d", openCount)
	}
	return nil
}
