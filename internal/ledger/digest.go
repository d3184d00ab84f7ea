package ledger

import (
	"errors"
	"sort"

	"github.com/sirupsen/logrus"

	"daily-report-go/internal/aggregator"
)

// StatusDigest is what an employee sees when asking for their status.
type StatusDigest struct {
	Employee string            `json:"employee_name"`
	Today    *Entry            `json:"today,omitempty"`
	Totals   aggregator.Totals `json:"totals"`
	Recent   []Entry           `json:"recent"`
}

// DailyDigest is the admin roll-up for one day.
type DailyDigest struct {
	Date     string            `json:"date"`
	Reported []Entry           `json:"reported"`
	Missing  []string          `json:"missing"`
	Totals   aggregator.Totals `json:"totals"`
}

// Status builds the digest for employee: today's report if any, totals over
// the last StatusWindow reports and the RecentLimit newest of them.
func (l *Ledger) Status(employee, today string) (StatusDigest, error) {
	d := StatusDigest{Employee: employee, Recent: []Entry{}}

	e, err := l.Get(employee, today)
	switch {
	case err == nil:
		d.Today = &e
	case !errors.Is(err, ErrNotFound):
		return d, err
	}

	window, err := l.ForEmployee(employee, StatusWindow)
	if err != nil {
		return d, err
	}
	d.Totals = aggregator.Aggregate(reports(window))
	if len(window) > RecentLimit {
		window = window[:RecentLimit]
	}
	d.Recent = append(d.Recent, window...)

	l.log.WithFields(logrus.Fields{
		"employee_name": employee,
		"reports":       d.Totals.Reports,
		"has_today":     d.Today != nil,
	}).Debug("status digest built")
	return d, nil
}

// Daily lists who from roster reported on date and who did not. An empty
// roster means everyone who has ever reported.
func (l *Ledger) Daily(date string, roster []string) (DailyDigest, error) {
	d := DailyDigest{Date: date, Reported: []Entry{}, Missing: []string{}}

	entries, err := l.ForDate(date)
	if err != nil {
		return d, err
	}
	if len(roster) == 0 {
		if roster, err = l.Employees(); err != nil {
			return d, err
		}
	}

	reported := make(map[string]bool, len(entries))
	for _, e := range entries {
		reported[e.EmployeeName] = true
	}
	for _, name := range roster {
		if !reported[name] {
			d.Missing = append(d.Missing, name)
		}
	}
	sort.Strings(d.Missing)
	d.Reported = append(d.Reported, entries...)
	d.Totals = aggregator.Aggregate(reports(entries))
	return d, nil
}
