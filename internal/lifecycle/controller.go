package lifecycle

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"daily-report-go/internal/aggregator"
	"daily-report-go/internal/logger"
	"daily-report-go/internal/types"
	"daily-report-go/internal/validator"
)

const (
	DefaultSuccessDelay = 1000 * time.Millisecond
	DefaultCloseDelay   = 2000 * time.Millisecond

	MsgInvalidForm = "Пожалуйста, заполните все поля корректно"
	MsgSendFailed  = "Ошибка отправки отчёта. Попробуйте ещё раз."
)

type Options struct {
	Scheduler    Scheduler
	Now          func() time.Time
	Location     *time.Location // report date zone, UTC when nil
	SuccessDelay time.Duration
	CloseDelay   time.Duration
	Log          *logrus.Entry
}

// View is what the form shows after every edit.
type View struct {
	Summary types.Summary `json:"summary"`
	Verdict types.Verdict `json:"verdict"`
}

// Outcome reports the state after an action and whether the action moved it.
type Outcome struct {
	State   types.SubmissionState `json:"state"`
	Message string                `json:"message,omitempty"`
	Changed bool                  `json:"changed"`
}

type Snapshot struct {
	State        types.SubmissionState `json:"state"`
	Message      string                `json:"message,omitempty"`
	EmployeeName string                `json:"employee_name"`
	Fields       types.FieldSet        `json:"fields"`
	View         View                  `json:"view"`
	Report       *types.Report         `json:"report,omitempty"`
	Closed       bool                  `json:"closed"`
}

// Controller owns one form session: its fields and its submission state.
// All methods are safe to call from timer goroutines and handlers alike;
// they are applied one at a time.
type Controller struct {
	mu   sync.Mutex
	host Host
	opts Options
	log  *logrus.Entry

	state    types.SubmissionState
	message  string
	fields   types.FieldSet
	view     View
	employee string
	report   *types.Report
	closed   bool

	// attempt increments on every Editing -> Submitting transition so that
	// timers from an earlier attempt recognise they are stale.
	attempt uint64
	tasks   []Task
}

func New(host Host, opts Options) *Controller {
	if opts.Scheduler == nil {
		opts.Scheduler = TimerScheduler{}
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.SuccessDelay == 0 {
		opts.SuccessDelay = DefaultSuccessDelay
	}
	if opts.CloseDelay == 0 {
		opts.CloseDelay = DefaultCloseDelay
	}
	log := opts.Log
	if log == nil {
		log = logger.New().Component("lifecycle").Entry
	}

	c := &Controller{
		host:     host,
		opts:     opts,
		log:      log,
		state:    types.StateEditing,
		employee: host.GetUser().FullName(),
	}
	c.view = evaluate(c.fields)
	return c
}

// Evaluate runs the aggregator and validator over fs.
func Evaluate(fs types.FieldSet) View {
	return evaluate(fs)
}

func evaluate(fs types.FieldSet) View {
	return View{
		Summary: aggregator.ComputeSummary(fs),
		Verdict: validator.ComputeVerdict(fs),
	}
}

// FieldsChanged stores the edited fields and returns the recomputed view.
func (c *Controller) FieldsChanged(fs types.FieldSet) View {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fields = fs
	c.view = evaluate(fs)
	if c.state == types.StateEditing {
		c.message = ""
	}
	return c.view
}

// Submit dispatches the report built from fs when the form is valid.
// Submitting from any state other than Editing is ignored.
func (c *Controller) Submit(ctx context.Context, fs types.FieldSet) Outcome {
	c.mu.Lock()
	if c.state != types.StateEditing {
		out := c.outcome(false)
		c.mu.Unlock()
		c.log.WithField("state", out.State).Debug("submit ignored")
		return out
	}

	c.fields = fs
	c.view = evaluate(fs)
	if !c.view.Verdict.FormValid {
		c.message = MsgInvalidForm
		out := c.outcome(false)
		c.mu.Unlock()
		c.log.WithField("reason", validator.Message(fs, c.view.Verdict)).Info("submit rejected: form invalid")
		return out
	}

	report := c.buildReport()
	c.attempt++
	attempt := c.attempt
	c.tasks = nil
	c.state = types.StateSubmitting
	c.message = ""
	c.report = &report
	c.mu.Unlock()

	c.log.WithFields(logrus.Fields{
		"attempt":       attempt,
		"employee_name": report.EmployeeName,
		"report_date":   report.ReportDate,
	}).Info("dispatching report")
	err := c.dispatch(ctx, report)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.state = types.StateError
		c.message = MsgSendFailed
		c.log.WithError(err).WithField("attempt", attempt).Error("report dispatch failed")
		return c.outcome(true)
	}
	c.schedule(c.opts.SuccessDelay, func() { c.succeed(attempt) })
	return c.outcome(true)
}

// Retry returns from the error or success screen to the form, keeping
// whatever the user had typed.
func (c *Controller) Retry() Outcome {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch c.state {
	case types.StateError, types.StateSuccess:
		c.state = types.StateEditing
		c.message = ""
		return c.outcome(true)
	}
	return c.outcome(false)
}

// Stop cancels timers that have not fired yet.
func (c *Controller) Stop() {
	c.mu.Lock()
	tasks := c.tasks
	c.tasks = nil
	c.mu.Unlock()
	for _, t := range tasks {
		t.Cancel()
	}
}

func (c *Controller) State() types.SubmissionState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := Snapshot{
		State:        c.state,
		Message:      c.message,
		EmployeeName: c.employee,
		Fields:       c.fields,
		View:         c.view,
		Closed:       c.closed,
	}
	if c.report != nil {
		r := *c.report
		s.Report = &r
	}
	return s
}

func (c *Controller) succeed(attempt uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.attempt != attempt || c.state != types.StateSubmitting {
		c.log.WithField("attempt", attempt).Debug("stale success timer")
		return
	}
	c.state = types.StateSuccess
	c.log.WithField("attempt", attempt).Info("report sent")
	c.schedule(c.opts.CloseDelay, func() { c.closeHost(attempt) })
}

func (c *Controller) closeHost(attempt uint64) {
	c.mu.Lock()
	if c.attempt != attempt || c.state != types.StateSuccess || c.closed {
		c.mu.Unlock()
		c.log.WithField("attempt", attempt).Debug("stale close timer")
		return
	}
	c.closed = true
	c.mu.Unlock()
	c.host.Close()
}

// schedule must be called with mu held.
func (c *Controller) schedule(d time.Duration, fn func()) {
	c.tasks = append(c.tasks, c.opts.Scheduler.Schedule(d, fn))
}

// dispatch hands the report to the host, turning a panic into an error.
func (c *Controller) dispatch(ctx context.Context, r types.Report) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("send report panicked: %v", p)
		}
	}()
	return c.host.SendReport(ctx, r)
}

// buildReport must be called with mu held and a valid verdict.
func (c *Controller) buildReport() types.Report {
	value := func(f types.Field) int {
		n, _ := types.ParseCount(c.fields.Get(f))
		return n
	}
	return types.Report{
		CallsCount:   value(types.FieldCalls),
		KPPlus:       value(types.FieldKPPlus),
		KP:           value(types.FieldKP),
		Rejections:   value(types.FieldRejections),
		Inadequate:   value(types.FieldInadequate),
		ReportDate:   c.opts.Now().In(c.opts.Location).Format(types.DateLayout),
		EmployeeName: c.employee,
	}
}

func (c *Controller) outcome(changed bool) Outcome {
	return Outcome{State: c.state, Message: c.message, Changed: changed}
}
