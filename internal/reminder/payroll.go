package reminder

import (
	"context"
	"fmt"
	"time"

	slogctx "github.com/veqryn/slog-context"

	"github.com/chatassist/dialog-manager/pkg/record"
)

// Payroll reports go out on the 5th and the 25th of each month. The 25th
// covers the first half of the current month, the 5th the second half of
// the previous one.
const (
	payrollAdvanceDay = 25
	payrollSalaryDay  = 5

	// payrollPageSize bounds the tips listing per owner. Half a month of
	// shifts fits with a wide margin.
	payrollPageSize = 500

	dateLayout = "2006-01-02"
)

// PayrollPeriod returns the half-month covered by the report fired at now.
// Day arithmetic relies on time.Date normalisation: day zero of a month is
// the last day of the previous one, which handles 28/29/30/31-day months
// uniformly.
func PayrollPeriod(now time.Time) (from, to time.Time) {
	y, m, _ := now.Date()
	loc := now.Location()
	if now.Day() >= payrollAdvanceDay {
		from = time.Date(y, m, 1, 0, 0, 0, 0, loc)
		to = time.Date(y, m, 15, 0, 0, 0, 0, loc)
		return from, to
	}
	from = time.Date(y, m-1, 16, 0, 0, 0, 0, loc)
	to = time.Date(y, m, 0, 0, 0, 0, 0, loc)
	return from, to
}

func (s *Scheduler) sendPayrollReports(ctx context.Context, minute time.Time) error {
	if minute.Day() != payrollSalaryDay && minute.Day() != payrollAdvanceDay {
		return nil
	}
	if minute.Hour() != s.reportHour || minute.Minute() != 0 {
		return nil
	}
	if s.lastReport.Equal(minute) {
		return nil
	}

	owners, err := s.gateway.AllReminderOwners(ctx)
	if err != nil {
		return fmt.Errorf("listing report recipients: %w", err)
	}

	from, to := PayrollPeriod(minute)
	for _, owner := range owners {
		msg, err := s.payrollMessage(ctx, owner, from, to)
		if err != nil {
			slogctx.Warn(ctx, "Could not build payroll report", "owner_id", owner, "error", err)
			continue
		}
		if err := s.notifier.Notify(ctx, owner, msg); err != nil {
			slogctx.Warn(ctx, "Could not deliver payroll report", "owner_id", owner, "error", err)
		}
	}

	s.lastReport = minute
	return nil
}

// payrollMessage sums the owner's tips shifts inside the period.
func (s *Scheduler) payrollMessage(ctx context.Context, ownerID int64, from, to time.Time) (string, error) {
	records, err := s.gateway.ListRecords(ctx, record.KindTips, ownerID, nil, payrollPageSize, 0)
	if err != nil {
		return "", fmt.Errorf("listing tips records: %w", err)
	}

	var total, hours float64
	shifts := 0
	for _, rec := range records {
		raw, _ := rec.Fields["date"].(string)
		day, err := time.ParseInLocation(dateLayout, raw, s.loc)
		if err != nil {
			continue
		}
		if day.Before(from) || day.After(to) {
			continue
		}
		shifts++
		total += asFloat(rec.Fields["amount"])
		hours += asFloat(rec.Fields["hours"])
	}

	msg := fmt.Sprintf("Payroll period %s to %s: %d shifts, %.0f in tips",
		from.Format("02.01.2006"), to.Format("02.01.2006"), shifts, total)
	if hours > 0 {
		msg += fmt.Sprintf(" over %.1f hours", hours)
	}
	return msg, nil
}

// asFloat reads a numeric field that may come back as float64 after a JSON
// round trip or as the int it was stored with.
func asFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	case int64:
		return float64(n)
	}
	return 0
}
