package api

import (
	"context"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gorilla/mux"
	"golang.org/x/time/rate"

	"github.com/utakatalp/season-predictor/internal/config"
	"github.com/utakatalp/season-predictor/internal/league"
	"github.com/utakatalp/season-predictor/internal/predict"
	"github.com/utakatalp/season-predictor/internal/telemetry"
)

const maxTrials = 100000

// Source supplies the ranked teams and the results feed.
type Source interface {
	Teams(ctx context.Context, ageGroup string) ([]*league.Team, error)
	Games(ctx context.Context, ageGroup string) ([]league.Match, error)
}

// Options configure a Server.
type Options struct {
	Workers       int
	SimRatePerMin int
	Clock         func() time.Time
}

type model struct {
	tuning    config.Tuning
	predictor *predict.Predictor
}

// Server exposes predictions and simulations over HTTP.
type Server struct {
	router  *mux.Router
	source  Source
	model   atomic.Pointer[model]
	limiter *rate.Limiter
	workers int
	clock   func() time.Time
}

func NewServer(source Source, tuning config.Tuning, opts Options) (*Server, error) {
	if opts.SimRatePerMin <= 0 {
		opts.SimRatePerMin = 30
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	s := &Server{
		router:  mux.NewRouter(),
		source:  source,
		limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(opts.SimRatePerMin)), opts.SimRatePerMin),
		workers: opts.Workers,
		clock:   opts.Clock,
	}
	if err := s.SetTuning(tuning); err != nil {
		return nil, err
	}
	s.setupRoutes()
	return s, nil
}

// SetTuning swaps the model used by subsequent requests.
func (s *Server) SetTuning(t config.Tuning) error {
	p, err := t.Predictor(predict.WithClock(s.clock))
	if err != nil {
		return fmt.Errorf("build predictor: %w", err)
	}
	s.model.Store(&model{tuning: t, predictor: p})
	return nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	s.router.Use(logRequests)
	s.router.HandleFunc("/health", s.healthCheck).Methods(http.MethodGet)

	v1 := s.router.PathPrefix("/api/v1").Subrouter()
	v1.HandleFunc("/predict", s.predict).Methods(http.MethodPost)
	v1.HandleFunc("/age-groups/{ageGroup}/teams", s.teams).Methods(http.MethodGet)
	v1.HandleFunc("/age-groups/{ageGroup}/standings", s.standings).Methods(http.MethodGet)
	v1.HandleFunc("/age-groups/{ageGroup}/simulate", s.simulate).Methods(http.MethodPost)
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		telemetry.L().Debug("http request", "method", r.Method, "path", r.URL.Path, "took", time.Since(start))
	})
}
