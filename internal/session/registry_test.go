package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"

	"daily-report-go/internal/lifecycle"
	"daily-report-go/internal/types"
)

type queueScheduler struct{ pending []func() }

type noopTask struct{}

func (noopTask) Cancel() bool { return false }

func (q *queueScheduler) Schedule(_ time.Duration, fn func()) lifecycle.Task {
	q.pending = append(q.pending, fn)
	return noopTask{}
}

// drain runs callbacks until none are left, including ones they schedule.
func (q *queueScheduler) drain() {
	for len(q.pending) > 0 {
		fn := q.pending[0]
		q.pending = q.pending[1:]
		fn()
	}
}

type recordingSubmitter struct {
	got []types.Report
	err error
}

func (s *recordingSubmitter) Submit(_ context.Context, r types.Report) (types.Receipt, error) {
	s.got = append(s.got, r)
	return types.Receipt{Report: r}, s.err
}

func newRegistry(sub Submitter) (*Registry, *queueScheduler) {
	log, _ := test.NewNullLogger()
	q := &queueScheduler{}
	return NewRegistry(sub, lifecycle.Options{
		Scheduler: q,
		Now:       func() time.Time { return time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC) },
		Log:       logrus.NewEntry(log),
	}), q
}

var valid = types.FieldSet{CallsCount: "8", KPPlus: "2", KP: "1", Rejections: "1", Inadequate: "0"}

func TestSessionSubmitAndClose(t *testing.T) {
	sub := &recordingSubmitter{}
	reg, q := newRegistry(sub)

	s := reg.Create(&types.Identity{FirstName: "Анна"})
	if _, err := reg.Get(s.ID); err != nil {
		t.Fatal(err)
	}
	if out := s.Submit(context.Background(), valid); out.State != types.StateSubmitting {
		t.Fatalf("state = %s", out.State)
	}
	if len(sub.got) != 1 || sub.got[0].EmployeeName != "Анна" || sub.got[0].ReportDate != "2025-03-14" {
		t.Fatalf("submitted = %+v", sub.got)
	}

	q.drain()
	if s.State() != types.StateSuccess {
		t.Fatalf("state = %s, want success", s.State())
	}
	if _, err := reg.Get(s.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("closed session still registered: %v", err)
	}
	if !s.View().Closed {
		t.Error("view should report closed")
	}
}

func TestSessionSubmitFailure(t *testing.T) {
	sub := &recordingSubmitter{err: errors.New("store report: disk full")}
	reg, q := newRegistry(sub)
	s := reg.Create(nil)

	out := s.Submit(context.Background(), valid)
	if out.State != types.StateError || out.Message != lifecycle.MsgSendFailed {
		t.Fatalf("outcome = %+v", out)
	}
	q.drain()
	if reg.Len() != 1 {
		t.Error("failed session must stay open for retry")
	}
	if s.View().EmployeeName != types.DefaultEmployeeName {
		t.Errorf("employee = %q", s.View().EmployeeName)
	}
}

func TestRemoveAndShutdown(t *testing.T) {
	reg, _ := newRegistry(&recordingSubmitter{})
	a := reg.Create(nil)
	reg.Create(nil)

	reg.Remove(a.ID)
	if _, err := reg.Get(a.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v", err)
	}
	reg.Shutdown()
	if reg.Len() != 0 {
		t.Errorf("Len = %d after shutdown", reg.Len())
	}
}

func TestSweepEvictsIdleSessions(t *testing.T) {
	log, hook := test.NewNullLogger()
	now := time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC)
	q := &queueScheduler{}
	reg := NewRegistry(&recordingSubmitter{}, lifecycle.Options{
		Scheduler: q,
		Now:       func() time.Time { return now },
		Log:       logrus.NewEntry(log),
	})

	abandoned := make([]*Session, 0, 100)
	for i := 0; i < 100; i++ {
		abandoned = append(abandoned, reg.Create(nil))
	}
	edited := reg.Create(nil)
	edited.FieldsChanged(valid)

	now = now.Add(20 * time.Minute)
	active := reg.Create(nil)
	if n := reg.Sweep(30 * time.Minute); n != 0 {
		t.Fatalf("evicted %d sessions before ttl", n)
	}

	now = now.Add(15 * time.Minute)
	if _, err := reg.Get(active.ID); err != nil {
		t.Fatal(err)
	}
	if n := reg.Sweep(30 * time.Minute); n != 101 {
		t.Fatalf("evicted %d, want 101", n)
	}
	if reg.Len() != 1 {
		t.Fatalf("len = %d, want 1", reg.Len())
	}
	if _, err := reg.Get(abandoned[0].ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("abandoned session still registered: %v", err)
	}

	var evicted int
	for _, e := range hook.AllEntries() {
		if e.Message == "idle form session evicted" {
			evicted++
		}
	}
	if evicted != 101 {
		t.Errorf("logged %d evictions, want 101", evicted)
	}
}

func TestSweepStopsEvictedTimers(t *testing.T) {
	log, _ := test.NewNullLogger()
	now := time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC)
	sched := &cancelScheduler{}
	sub := &recordingSubmitter{}
	reg := NewRegistry(sub, lifecycle.Options{
		Scheduler: sched,
		Now:       func() time.Time { return now },
		Log:       logrus.NewEntry(log),
	})

	s := reg.Create(nil)
	s.Submit(context.Background(), valid)
	now = now.Add(time.Hour)
	reg.Sweep(30 * time.Minute)

	if sched.cancelled != 1 {
		t.Errorf("cancelled = %d, want 1", sched.cancelled)
	}
}

type cancelScheduler struct{ cancelled int }

type countingTask struct{ s *cancelScheduler }

func (t countingTask) Cancel() bool {
	t.s.cancelled++
	return true
}

func (s *cancelScheduler) Schedule(time.Duration, func()) lifecycle.Task {
	return countingTask{s: s}
}

func TestJanitorReturnsOnCancel(t *testing.T) {
	reg, _ := newRegistry(&recordingSubmitter{})
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		reg.Janitor(ctx, time.Minute, time.Millisecond)
		close(done)
	}()
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("janitor did not stop")
	}
}
