package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"

	"daily-report-go/internal/feedback"
	"daily-report-go/internal/intake"
	"daily-report-go/internal/ledger"
	"daily-report-go/internal/lifecycle"
	"daily-report-go/internal/logger"
	"daily-report-go/internal/session"
	"daily-report-go/internal/types"
)

// Intake records raw report payloads.
type Intake interface {
	Accept(ctx context.Context, raw []byte) (types.Receipt, error)
}

// Digests answers status questions from stored reports.
type Digests interface {
	Status(employee, today string) (ledger.StatusDigest, error)
	Daily(date string, roster []string) (ledger.DailyDigest, error)
}

type Options struct {
	AllowedOrigins []string
	Roster         []string
	Now            func() time.Time
	Location       *time.Location
}

type Server struct {
	intake   Intake
	digests  Digests
	sessions *session.Registry
	opts     Options
	log      *logger.Logger
}

func New(in Intake, digests Digests, sessions *session.Registry, opts Options, log *logger.Logger) *Server {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if log == nil {
		log = logger.New()
	}
	return &Server{intake: in, digests: digests, sessions: sessions, opts: opts, log: log.Component("http")}
}

// formResponse is what the form redraws from after an edit.
type formResponse struct {
	lifecycle.View
	Feedback feedback.Card `json:"feedback"`
}

type actionResponse struct {
	Outcome lifecycle.Outcome `json:"outcome"`
	Session *session.View     `json:"session,omitempty"`
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(middleware.Recoverer)
	r.Use(accessLog(s.log))
	r.Use(cors.New(cors.Options{
		AllowedOrigins: s.opts.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowedHeaders: []string{"Content-Type", requestIDHeader},
		ExposedHeaders: []string{requestIDHeader},
	}).Handler)
	r.Use(bodyLimit)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/form/evaluate", s.handleEvaluate)

		r.Post("/sessions", s.handleCreateSession)
		r.Route("/sessions/{id}", func(r chi.Router) {
			r.Get("/", s.handleGetSession)
			r.Delete("/", s.handleDeleteSession)
			r.Put("/fields", s.handleFields)
			r.Post("/submit", s.handleSubmit)
			r.Post("/retry", s.handleRetry)
		})

		r.Post("/submit_report", s.handleSubmitReport)
		r.Get("/status", s.handleStatus)
		r.Get("/reports/daily", s.handleDaily)
	})
	return r
}

func (s *Server) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	log := s.log.WithRequest(r).WithField("handler", "evaluate")
	var fs types.FieldSet
	if err := decodeBody(r, &fs, false); err != nil {
		fail(w, r, log, http.StatusBadRequest, apiError{Code: "bad_request", Message: err.Error()})
		return
	}
	success(w, r, log, http.StatusOK, render(lifecycle.Evaluate(fs)))
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	log := s.log.WithRequest(r).WithField("handler", "create_session")
	var id *types.Identity
	var body types.Identity
	if err := decodeBody(r, &body, true); err != nil {
		fail(w, r, log, http.StatusBadRequest, apiError{Code: "bad_request", Message: err.Error()})
		return
	}
	if body != (types.Identity{}) {
		id = &body
	}
	sess := s.sessions.Create(id)
	view := sess.View()
	success(w, r, log, http.StatusCreated, view)
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	log := s.log.WithRequest(r).WithField("handler", "get_session")
	sess, ok := s.session(w, r, log)
	if !ok {
		return
	}
	view := sess.View()
	success(w, r, log, http.StatusOK, view)
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	s.sessions.Remove(chi.URLParam(r, "id"))
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleFields(w http.ResponseWriter, r *http.Request) {
	log := s.log.WithRequest(r).WithField("handler", "fields")
	sess, ok := s.session(w, r, log)
	if !ok {
		return
	}
	var fs types.FieldSet
	if err := decodeBody(r, &fs, false); err != nil {
		fail(w, r, log, http.StatusBadRequest, apiError{Code: "bad_request", Message: err.Error()})
		return
	}
	success(w, r, log, http.StatusOK, render(sess.FieldsChanged(fs)))
}

// handleSubmit submits the posted fields, or the last stored ones when the
// body is empty.
func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	log := s.log.WithRequest(r).WithField("handler", "submit")
	sess, ok := s.session(w, r, log)
	if !ok {
		return
	}
	fs := sess.Snapshot().Fields
	if err := decodeBody(r, &fs, true); err != nil {
		fail(w, r, log, http.StatusBadRequest, apiError{Code: "bad_request", Message: err.Error()})
		return
	}
	out := sess.Submit(r.Context(), fs)
	view := sess.View()
	success(w, r, log, http.StatusOK, actionResponse{Outcome: out, Session: &view})
}

func (s *Server) handleRetry(w http.ResponseWriter, r *http.Request) {
	log := s.log.WithRequest(r).WithField("handler", "retry")
	sess, ok := s.session(w, r, log)
	if !ok {
		return
	}
	out := sess.Retry()
	view := sess.View()
	success(w, r, log, http.StatusOK, actionResponse{Outcome: out, Session: &view})
}

func (s *Server) handleSubmitReport(w http.ResponseWriter, r *http.Request) {
	log := s.log.WithRequest(r).WithField("handler", "submit_report")
	raw, err := io.ReadAll(r.Body)
	if err != nil {
		fail(w, r, log, http.StatusBadRequest, apiError{Code: "bad_request", Message: "could not read body"})
		return
	}
	receipt, err := s.intake.Accept(r.Context(), raw)
	var ve *intake.ValidationError
	switch {
	case errors.As(err, &ve):
		log.WithField("field", ve.Field).Info("report rejected")
		fail(w, r, log, http.StatusBadRequest, apiError{Code: "validation_failed", Message: ve.Message, Field: ve.Field})
	case errors.Is(err, intake.ErrEmptyBody):
		fail(w, r, log, http.StatusBadRequest, apiError{Code: "bad_request", Message: err.Error()})
	case err != nil:
		log.WithError(err).Error("report intake failed")
		fail(w, r, log, http.StatusInternalServerError, apiError{Code: "internal", Message: "Ошибка сохранения отчёта"})
	default:
		success(w, r, log, http.StatusOK, receipt)
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	log := s.log.WithRequest(r).WithField("handler", "status")
	employee := strings.TrimSpace(r.URL.Query().Get("employee"))
	if employee == "" {
		fail(w, r, log, http.StatusBadRequest, apiError{Code: "bad_request", Message: "missing employee"})
		return
	}
	d, err := s.digests.Status(employee, s.today())
	if err != nil {
		log.WithError(err).Error("status digest failed")
		fail(w, r, log, http.StatusInternalServerError, apiError{Code: "internal", Message: "status unavailable"})
		return
	}
	success(w, r, log, http.StatusOK, d)
}

func (s *Server) handleDaily(w http.ResponseWriter, r *http.Request) {
	log := s.log.WithRequest(r).WithField("handler", "daily")
	date := r.URL.Query().Get("date")
	if date == "" {
		date = s.today()
	} else if _, err := time.Parse(types.DateLayout, date); err != nil {
		fail(w, r, log, http.StatusBadRequest, apiError{Code: "bad_request", Message: "date must be YYYY-MM-DD"})
		return
	}
	d, err := s.digests.Daily(date, s.opts.Roster)
	if err != nil {
		log.WithError(err).Error("daily digest failed")
		fail(w, r, log, http.StatusInternalServerError, apiError{Code: "internal", Message: "daily summary unavailable"})
		return
	}
	success(w, r, log, http.StatusOK, d)
}

func (s *Server) session(w http.ResponseWriter, r *http.Request, log *logrus.Entry) (*session.Session, bool) {
	sess, err := s.sessions.Get(chi.URLParam(r, "id"))
	if err != nil {
		fail(w, r, log, http.StatusNotFound, apiError{Code: "not_found", Message: err.Error()})
		return nil, false
	}
	return sess, true
}

func (s *Server) today() string {
	return s.opts.Now().In(s.opts.Location).Format(types.DateLayout)
}

func render(v lifecycle.View) formResponse {
	return formResponse{View: v, Feedback: feedback.Generate(v.Summary, v.Verdict)}
}

// decodeBody reads JSON into dst; an empty body is accepted only when optional.
func decodeBody(r *http.Request, dst any, optional bool) error {
	err := json.NewDecoder(r.Body).Decode(dst)
	if errors.Is(err, io.EOF) {
		if optional {
			return nil
		}
		return errors.New("empty request body")
	}
	if err != nil {
		return errors.New("invalid JSON body")
	}
	return nil
}
