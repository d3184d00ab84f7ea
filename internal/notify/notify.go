package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"daily-report-go/internal/ledger"
	"daily-report-go/internal/types"
)

// Notifier is told about every accepted report.
type Notifier interface {
	NotifyReport(ctx context.Context, r types.Receipt) error
}

// Named pairs a notifier with the name used in logs.
type Named struct {
	Name string
	Notifier
}

// Multi fans a receipt out to several notifiers. A failing notifier is
// logged and never stops the others.
type Multi struct {
	notifiers []Named
	log       *logrus.Entry
}

func NewMulti(log *logrus.Entry, notifiers ...Named) *Multi {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Multi{notifiers: notifiers, log: log.WithField("component", "notify")}
}

func (m *Multi) Len() int { return len(m.notifiers) }

// NotifyReport returns the number of notifiers that failed.
func (m *Multi) NotifyReport(ctx context.Context, r types.Receipt) int {
	failed := 0
	for _, n := range m.notifiers {
		if err := n.NotifyReport(ctx, r); err != nil {
			failed++
			m.log.WithError(err).WithFields(logrus.Fields{
				"notifier":      n.Name,
				"employee_name": r.Report.EmployeeName,
			}).Warn("failed to notify about new report")
		}
	}
	return failed
}

// displayDate turns 2006-01-02 into 02.01.2006; other input is returned as is.
func displayDate(iso string) string {
	parts := strings.Split(iso, "-")
	if len(parts) != 3 {
		return iso
	}
	return parts[2] + "." + parts[1] + "." + parts[0]
}

// ReportMessage is the admin text for a new report.
func ReportMessage(r types.Receipt) string {
	rep := r.Report
	title := "📊 **Новый отчёт получен**"
	if r.Updated {
		title = "📊 **Отчёт обновлён**"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n\n", title)
	fmt.Fprintf(&b, "👤 **Сотрудник:** %s\n", rep.EmployeeName)
	fmt.Fprintf(&b, "📅 **Дата:** %s\n", displayDate(rep.ReportDate))
	if !r.SubmittedAt.IsZero() {
		fmt.Fprintf(&b, "🕐 **Время:** %s\n", r.SubmittedAt.Format("15:04"))
	}
	fmt.Fprintf(&b, "\n📞 **Звонков:** %d\n", rep.CallsCount)
	fmt.Fprintf(&b, "🎯 **Результативных:** %d (%.1f%%)\n", r.Resultative, r.Conversion)
	fmt.Fprintf(&b, "✅ **КП+:** %d | 🔄 **КП:** %d\n", rep.KPPlus, rep.KP)
	fmt.Fprintf(&b, "❌ **Отказы:** %d | ⚠️ **Неадекв:** %d", rep.Rejections, rep.Inadequate)
	return b.String()
}

// DailyMessage is the admin end-of-day roll-up.
func DailyMessage(d ledger.DailyDigest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📊 **Ежедневная сводка за %s**\n\n", displayDate(d.Date))
	fmt.Fprintf(&b, "👥 **Всего сотрудников:** %d\n", len(d.Reported)+len(d.Missing))
	fmt.Fprintf(&b, "✅ **Отчёты отправлены:** %d\n", len(d.Reported))
	fmt.Fprintf(&b, "❌ **Отчёты не отправлены:** %d\n", len(d.Missing))
	if len(d.Reported) > 0 {
		b.WriteString("\n📋 **Отправили отчёт:**\n")
		for _, e := range d.Reported {
			if e.SubmittedAt.IsZero() {
				fmt.Fprintf(&b, "• %s\n", e.EmployeeName)
				continue
			}
			fmt.Fprintf(&b, "• %s - %s\n", e.EmployeeName, e.SubmittedAt.Format("15:04"))
		}
	}
	if len(d.Missing) > 0 {
		b.WriteString("\n⚠️ **Не отправили отчёт:**\n")
		for _, name := range d.Missing {
			fmt.Fprintf(&b, "• %s\n", name)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}
