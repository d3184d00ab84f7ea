package intake

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"daily-report-go/internal/ledger"
	"daily-report-go/internal/logger"
	"daily-report-go/internal/types"
	"daily-report-go/internal/validator"
)

const (
	msgBadJSON = "Некорректный формат данных."
	msgBadDate = "Некорректная дата отчёта."
)

// Store persists accepted reports, one per employee and day.
type Store interface {
	Upsert(e ledger.Entry) (created bool, err error)
}

// Forwarder mirrors reports to an external spreadsheet.
type Forwarder interface {
	Enabled() bool
	Forward(ctx context.Context, r types.Report) error
}

// Broadcaster tells interested parties about accepted reports and returns
// how many of them could not be reached.
type Broadcaster interface {
	NotifyReport(ctx context.Context, r types.Receipt) int
}

type Options struct {
	Sheets   Forwarder
	Notifier Broadcaster
	Now      func() time.Time
	Location *time.Location
	Log      *logrus.Entry
}

// Service validates incoming reports and fans them out to the ledger,
// the spreadsheet mirror and the notifiers.
type Service struct {
	store Store
	opts  Options
	log   *logrus.Entry
}

func New(store Store, opts Options) *Service {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	log := opts.Log
	if log == nil {
		log = logger.New().Component("intake").Entry
	}
	return &Service{store: store, opts: opts, log: log}
}

// Accept decodes a raw report payload, validates it and records it.
// Validation failures come back as *ValidationError.
func (s *Service) Accept(ctx context.Context, raw []byte) (types.Receipt, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return types.Receipt{}, ErrEmptyBody
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var payload map[string]interface{}
	if err := dec.Decode(&payload); err != nil {
		return types.Receipt{}, &ValidationError{Message: msgBadJSON}
	}

	var fs types.FieldSet
	for _, f := range types.Fields {
		v, ok := payload[f.Key()]
		if !ok || v == nil {
			return types.Receipt{}, missingField(f.Key())
		}
		fs = fs.With(f, types.FieldValue(v))
	}
	if err := check(fs); err != nil {
		return types.Receipt{}, err
	}

	report := reportFrom(fs)
	report.EmployeeName = stringValue(payload["employee_name"])
	report.ReportDate = stringValue(payload["report_date"])
	return s.record(ctx, report)
}

// Submit records an already decoded report, applying the same rules as Accept.
func (s *Service) Submit(ctx context.Context, r types.Report) (types.Receipt, error) {
	fs := types.FieldSet{
		CallsCount: strconv.Itoa(r.CallsCount),
		KPPlus:     strconv.Itoa(r.KPPlus),
		KP:         strconv.Itoa(r.KP),
		Rejections: strconv.Itoa(r.Rejections),
		Inadequate: strconv.Itoa(r.Inadequate),
	}
	if err := check(fs); err != nil {
		return types.Receipt{}, err
	}
	return s.record(ctx, r)
}

func (s *Service) record(ctx context.Context, r types.Report) (types.Receipt, error) {
	now := s.opts.Now()
	r.EmployeeName = strings.TrimSpace(r.EmployeeName)
	if r.EmployeeName == "" {
		r.EmployeeName = types.DefaultEmployeeName
	}
	r.ReportDate = strings.TrimSpace(r.ReportDate)
	if r.ReportDate == "" {
		r.ReportDate = now.In(s.opts.Location).Format(types.DateLayout)
	} else if _, err := time.Parse(types.DateLayout, r.ReportDate); err != nil {
		return types.Receipt{}, &ValidationError{Field: "report_date", Message: msgBadDate}
	}

	entry := ledger.NewEntry(r, now)
	created, err := s.store.Upsert(entry)
	if err != nil {
		s.log.WithError(err).WithField("employee_name", r.EmployeeName).Error("failed to store report")
		return types.Receipt{}, fmt.Errorf("store report: %w", err)
	}

	receipt := types.Receipt{
		Report:      r,
		Resultative: r.Resultative(),
		Conversion:  entry.Conversion,
		Updated:     !created,
		SubmittedAt: now,
	}
	log := s.log.WithFields(logrus.Fields{
		"employee_name": r.EmployeeName,
		"report_date":   r.ReportDate,
		"calls_count":   r.CallsCount,
		"resultative":   receipt.Resultative,
		"updated":       receipt.Updated,
	})
	log.Info("report saved")

	if s.opts.Sheets != nil && s.opts.Sheets.Enabled() {
		if err := s.opts.Sheets.Forward(ctx, r); err != nil {
			log.WithError(err).Warn("failed to mirror report to sheets")
		}
	}
	if s.opts.Notifier != nil {
		s.opts.Notifier.NotifyReport(ctx, receipt)
	}
	return receipt, nil
}

// check applies the form rules and reports the first broken one.
func check(fs types.FieldSet) error {
	v := validator.ComputeVerdict(fs)
	if v.FormValid {
		return nil
	}
	field := ""
	for _, st := range []types.FieldStatus{types.StatusInvalid, types.StatusWarning} {
		for _, f := range types.Fields {
			if v.Status(f) == st {
				field = f.Key()
				break
			}
		}
		if field != "" {
			break
		}
	}
	return &ValidationError{Field: field, Message: validator.Message(fs, v)}
}

// reportFrom expects fs to have passed check.
func reportFrom(fs types.FieldSet) types.Report {
	n := func(f types.Field) int {
		v, _ := types.ParseCount(fs.Get(f))
		return v
	}
	return types.Report{
		CallsCount: n(types.FieldCalls),
		KPPlus:     n(types.FieldKPPlus),
		KP:         n(types.FieldKP),
		Rejections: n(types.FieldRejections),
		Inadequate: n(types.FieldInadequate),
	}
}

func stringValue(v interface{}) string {
	s, _ := v.(string)
	return s
}
