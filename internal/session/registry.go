package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"daily-report-go/internal/lifecycle"
	"daily-report-go/internal/types"
)

var ErrNotFound = errors.New("session not found")

// Submitter records a finished report.
type Submitter interface {
	Submit(ctx context.Context, r types.Report) (types.Receipt, error)
}

// Registry hosts form sessions for browser clients. Each session owns a
// lifecycle controller whose host delivers reports to the Submitter.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*Session
	submit   Submitter
	opts     lifecycle.Options
	now      func() time.Time
	log      *logrus.Entry
}

// Session is one open form.
type Session struct {
	ID        string
	CreatedAt time.Time
	*lifecycle.Controller

	lastSeen time.Time // guarded by Registry.mu
}

// View is a session as returned to clients.
type View struct {
	ID string `json:"id"`
	lifecycle.Snapshot
}

// NewRegistry uses opts for every controller it creates; opts.Log also
// serves as the registry's own logger.
func NewRegistry(submit Submitter, opts lifecycle.Options) *Registry {
	log := opts.Log
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Registry{
		sessions: map[string]*Session{},
		submit:   submit,
		opts:     opts,
		now:      now,
		log:      log.WithField("component", "session"),
	}
}

// Create opens a session for user, which may be nil.
func (r *Registry) Create(user *types.Identity) *Session {
	id := uuid.NewString()
	h := &host{id: id, user: user, registry: r}
	opts := r.opts
	opts.Log = r.log.WithField("session_id", id)

	created := r.now()
	s := &Session{ID: id, CreatedAt: created, Controller: lifecycle.New(h, opts), lastSeen: created}
	r.mu.Lock()
	r.sessions[id] = s
	r.mu.Unlock()

	r.log.WithFields(logrus.Fields{
		"session_id":    id,
		"employee_name": s.Snapshot().EmployeeName,
	}).Info("form session opened")
	return s
}

func (r *Registry) Get(id string) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	s.lastSeen = r.now()
	return s, nil
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Remove stops a session's timers and forgets it.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	s, ok := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()
	if ok {
		s.Stop()
	}
}

// Sweep stops and forgets every session not looked up within ttl and
// returns how many were evicted.
func (r *Registry) Sweep(ttl time.Duration) int {
	cutoff := r.now().Add(-ttl)
	var idle []*Session
	r.mu.Lock()
	for id, s := range r.sessions {
		if s.lastSeen.Before(cutoff) {
			idle = append(idle, s)
			delete(r.sessions, id)
		}
	}
	r.mu.Unlock()

	for _, s := range idle {
		s.Stop()
		r.log.WithFields(logrus.Fields{
			"session_id": s.ID,
			"state":      s.State(),
		}).Info("idle form session evicted")
	}
	return len(idle)
}

// Janitor sweeps idle sessions every interval until ctx is done.
func (r *Registry) Janitor(ctx context.Context, ttl, interval time.Duration) {
	if ttl <= 0 || interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Sweep(ttl)
		}
	}
}

// Shutdown stops every session.
func (r *Registry) Shutdown() {
	r.mu.Lock()
	sessions := r.sessions
	r.sessions = map[string]*Session{}
	r.mu.Unlock()
	for _, s := range sessions {
		s.Stop()
	}
}

func (s *Session) View() View {
	return View{ID: s.ID, Snapshot: s.Snapshot()}
}

// host adapts a registry session to lifecycle.Host.
type host struct {
	id       string
	user     *types.Identity
	registry *Registry
}

func (h *host) GetUser() *types.Identity { return h.user }

func (h *host) SendReport(ctx context.Context, rep types.Report) error {
	_, err := h.registry.submit.Submit(ctx, rep)
	return err
}

// Close is called once the success screen has been shown; the session is
// finished and can be dropped.
func (h *host) Close() {
	h.registry.mu.Lock()
	delete(h.registry.sessions, h.id)
	h.registry.mu.Unlock()
	h.registry.log.WithField("session_id", h.id).Info("form session closed")
}
