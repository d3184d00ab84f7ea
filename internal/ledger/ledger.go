package ledger

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"

	"daily-report-go/internal/aggregator"
	"daily-report-go/internal/logger"
	"daily-report-go/internal/types"
)

const SheetName = "Reports"

// StatusWindow is how many recent reports the status digest rolls up;
// RecentLimit is how many of them it lists.
const (
	StatusWindow = 7
	RecentLimit  = 5
)

var ErrNotFound = errors.New("report not found")

var header = []interface{}{
	"employee_name", "report_date", "calls_count", "kp_plus", "kp",
	"rejections", "inadequate", "conversion", "submitted_at",
}

// Entry is one stored report row.
type Entry struct {
	types.Report
	Conversion  float64   `json:"conversion"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// Ledger keeps one row per employee and day in an xlsx workbook.
type Ledger struct {
	mu   sync.Mutex
	path string
	f    *excelize.File
	log  *logrus.Entry
}

// Open loads the workbook at path, creating it (and its directory) when missing.
func Open(path string, log *logrus.Entry) (*Ledger, error) {
	if log == nil {
		log = logger.New().Component("ledger").Entry
	}
	log = log.WithField("path", path)

	var f *excelize.File
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create ledger dir: %w", err)
			}
		}
		f = excelize.NewFile()
		if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
			return nil, fmt.Errorf("name sheet: %w", err)
		}
		log.Info("creating report ledger")
	} else {
		f, err = excelize.OpenFile(path)
		if err != nil {
			log.WithError(err).Error("open failed")
			return nil, fmt.Errorf("open ledger: %w", err)
		}
	}

	l := &Ledger{path: path, f: f, log: log}
	if err := l.ensureSheet(); err != nil {
		f.Close()
		return nil, err
	}
	return l, nil
}

func (l *Ledger) ensureSheet() error {
	idx, err := l.f.GetSheetIndex(SheetName)
	if err != nil {
		return fmt.Errorf("find sheet: %w", err)
	}
	if idx == -1 {
		if _, err := l.f.NewSheet(SheetName); err != nil {
			return fmt.Errorf("add sheet: %w", err)
		}
	}
	rows, err := l.f.GetRows(SheetName)
	if err != nil {
		return fmt.Errorf("read rows: %w", err)
	}
	if len(rows) > 0 {
		return nil
	}
	if err := l.f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	return l.f.SaveAs(l.path)
}

func (l *Ledger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.f.Close()
}

// Upsert stores e, overwriting an earlier report by the same employee for
// the same day. created is false when a row was overwritten.
func (l *Ledger) Upsert(e Entry) (created bool, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	rows, err := l.f.GetRows(SheetName)
	if err != nil {
		return false, fmt.Errorf("read rows: %w", err)
	}
	rowNum := len(rows) + 1
	created = true
	var prev []string
	for i, r := range rows {
		if i == 0 {
			continue
		}
		if cell(r, 0) == e.EmployeeName && cell(r, 1) == e.ReportDate {
			rowNum = i + 1
			created = false
			prev = r
			break
		}
	}
	if rowNum == 1 {
		rowNum = 2
	}

	addr, err := excelize.CoordinatesToCellName(1, rowNum)
	if err != nil {
		return false, err
	}
	values := rowValues(e)
	if err := l.f.SetSheetRow(SheetName, addr, &values); err != nil {
		return false, fmt.Errorf("write row: %w", err)
	}
	if err := l.f.SaveAs(l.path); err != nil {
		if rerr := l.revert(addr, rowNum, prev); rerr != nil {
			l.log.WithError(rerr).WithField("row", rowNum).Error("could not revert unsaved row")
		}
		return false, fmt.Errorf("save ledger: %w", err)
	}
	l.log.WithFields(logrus.Fields{
		"employee_name": e.EmployeeName,
		"report_date":   e.ReportDate,
		"row":           rowNum,
		"created":       created,
	}).Debug("report stored")
	return created, nil
}

// revert undoes an unsaved row write so the workbook matches the file again.
// A nil prev means the row was appended.
func (l *Ledger) revert(addr string, rowNum int, prev []string) error {
	if prev == nil {
		return l.f.RemoveRow(SheetName, rowNum)
	}
	var values []interface{}
	if e, err := parseRow(prev); err == nil {
		values = rowValues(e)
	} else {
		for _, v := range prev {
			values = append(values, v)
		}
	}
	return l.f.SetSheetRow(SheetName, addr, &values)
}

func rowValues(e Entry) []interface{} {
	return []interface{}{
		e.EmployeeName, e.ReportDate, e.CallsCount, e.KPPlus, e.KP,
		e.Rejections, e.Inadequate, e.Conversion, e.SubmittedAt.UTC().Format(time.RFC3339),
	}
}

// Get returns the report of employee for date, or ErrNotFound.
func (l *Ledger) Get(employee, date string) (Entry, error) {
	entries, err := l.entries(func(e Entry) bool {
		return e.EmployeeName == employee && e.ReportDate == date
	})
	if err != nil {
		return Entry{}, err
	}
	if len(entries) == 0 {
		return Entry{}, ErrNotFound
	}
	return entries[0], nil
}

// ForEmployee lists the employee's reports newest first. limit <= 0 means all.
func (l *Ledger) ForEmployee(employee string, limit int) ([]Entry, error) {
	entries, err := l.entries(func(e Entry) bool { return e.EmployeeName == employee })
	if err != nil {
		return nil, err
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].ReportDate > entries[j].ReportDate })
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

// ForDate lists every report for date ordered by employee name.
func (l *Ledger) ForDate(date string) ([]Entry, error) {
	entries, err := l.entries(func(e Entry) bool { return e.ReportDate == date })
	if err != nil {
		return nil, err
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].EmployeeName < entries[j].EmployeeName })
	return entries, nil
}

// Employees returns every employee name that has at least one report.
func (l *Ledger) Employees() ([]string, error) {
	entries, err := l.entries(func(Entry) bool { return true })
	if err != nil {
		return nil, err
	}
	seen := map[string]bool{}
	var names []string
	for _, e := range entries {
		if !seen[e.EmployeeName] {
			seen[e.EmployeeName] = true
			names = append(names, e.EmployeeName)
		}
	}
	sort.Strings(names)
	return names, nil
}

func (l *Ledger) entries(keep func(Entry) bool) ([]Entry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	rows, err := l.f.GetRows(SheetName)
	if err != nil {
		return nil, fmt.Errorf("read rows: %w", err)
	}
	var out []Entry
	for i, r := range rows {
		if i == 0 {
			continue
		}
		e, err := parseRow(r)
		if err != nil {
			l.log.WithError(err).WithField("row", i+1).Warn("skipping malformed row")
			continue
		}
		if keep(e) {
			out = append(out, e)
		}
	}
	return out, nil
}

func parseRow(r []string) (Entry, error) {
	var e Entry
	e.EmployeeName = cell(r, 0)
	e.ReportDate = cell(r, 1)
	if e.EmployeeName == "" || e.ReportDate == "" {
		return e, fmt.Errorf("missing employee or date")
	}
	ints := []*int{&e.CallsCount, &e.KPPlus, &e.KP, &e.Rejections, &e.Inadequate}
	for i, dst := range ints {
		n, err := strconv.Atoi(strings.TrimSpace(cell(r, i+2)))
		if err != nil {
			return e, fmt.Errorf("column %v: %w", header[i+2], err)
		}
		*dst = n
	}
	e.Conversion, _ = strconv.ParseFloat(cell(r, 7), 64)
	e.SubmittedAt, _ = time.Parse(time.RFC3339, cell(r, 8))
	return e, nil
}

func cell(r []string, i int) string {
	if i < len(r) {
		return r[i]
	}
	return ""
}

func reports(entries []Entry) []types.Report {
	out := make([]types.Report, len(entries))
	for i, e := range entries {
		out[i] = e.Report
	}
	return out
}

// NewEntry wraps a report for storage with its one-decimal conversion.
func NewEntry(r types.Report, submittedAt time.Time) Entry {
	return Entry{
		Report:      r,
		Conversion:  aggregator.ConversionRate(r.Resultative(), r.CallsCount),
		SubmittedAt: submittedAt,
	}
}
