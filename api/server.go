// Package api provides the HTTP REST API server for mortgage-cli.
//
// It exposes endpoints for property analysis, sensitivity matrices,
// amortization schedules, profile management and WebSocket event streaming.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/sirupsen/logrus"

	"github.com/seenimoa/mortgagecli/internal/analysis/mortgage"
	"github.com/seenimoa/mortgagecli/internal/config"
	"github.com/seenimoa/mortgagecli/internal/infra"
	"github.com/seenimoa/mortgagecli/internal/logging"
	"github.com/seenimoa/mortgagecli/internal/output"
	"github.com/seenimoa/mortgagecli/internal/profile"
	"github.com/seenimoa/mortgagecli/pkg/models"
)

// Version is reported by the health endpoint.
var Version = "dev"

// Server is the HTTP API server.
type Server struct {
	router chi.Router
	cfg    *config.Config
	store  *profile.Store
	log    *logrus.Logger
	wsHub  *WSHub

	limiter *infra.RateLimiter // nil when api.rate_limit is 0
	cfgMu   sync.RWMutex       // guards cfg against PUT /api/v1/config
}

// NewServer creates a configured API server with all routes and middleware.
func NewServer(cfg *config.Config, store *profile.Store, log *logrus.Logger) *Server {
	srv := &Server{
		cfg:   cfg,
		store: store,
		log:   log,
		wsHub: NewWSHub(log),
	}
	if cfg.API.RateLimit > 0 {
		srv.limiter = infra.PerSecond(cfg.API.RateLimit)
	}
	srv.router = srv.buildRouter()
	return srv
}

// Router returns the chi router for testing.
func (s *Server) Router() chi.Router {
	return s.router
}

// Hub returns the WebSocket hub.
func (s *Server) Hub() *WSHub {
	return s.wsHub
}

// ListenAndServe starts the HTTP server and blocks until SIGINT or SIGTERM,
// then shuts down gracefully.
func (s *Server) ListenAndServe(addr string) error {
	httpSrv := &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go s.wsHub.Run()
	defer s.wsHub.Stop()

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(done)

	errCh := make(chan error, 1)
	go func() {
		s.log.WithField("addr", addr).Info("HTTP server listening")
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-done:
	}
	s.log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return httpSrv.Shutdown(ctx)
}

// buildRouter configures all routes and middleware.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logging.Middleware(s.log))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	origins := []string{"*"}
	if len(s.cfg.API.CORSOrigins) > 0 {
		origins = s.cfg.API.CORSOrigins
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	r.Get("/health", s.handleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		if s.limiter != nil {
			r.Use(s.rateLimit)
		}
		r.Get("/health", s.handleHealth)

		r.Post("/analyze", s.handleAnalyze)
		r.Post("/matrix", s.handleMatrix)
		r.Post("/amortize", s.handleAmortize)

		r.Get("/profiles", s.handleListProfiles)
		r.Post("/profiles", s.handleCreateProfile)
		r.Post("/profiles/compare", s.handleCompareProfiles)
		r.Get("/profiles/{name}", s.handleGetProfile)
		r.Delete("/profiles/{name}", s.handleDeleteProfile)

		r.Get("/config", s.handleGetConfig)
		r.Put("/config", s.handleUpdateConfig)

		r.Get("/ws", s.handleWebSocket)
	})

	return r
}

// ============================================================
// Request / Response types
// ============================================================

// APIResponse is the standard JSON envelope.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// AnalyzeRequest is the body for POST /api/v1/analyze.
type AnalyzeRequest struct {
	Profile string `json:"profile,omitempty"`
	models.PropertyInput
}

// MatrixRequest is the body for POST /api/v1/matrix. Omitted steps, down
// payment bounds and rent fall back to the configuration and the profile.
type MatrixRequest struct {
	Profile   string   `json:"profile,omitempty"`
	PriceMin  float64  `json:"price_min"            validate:"gt=0"`
	PriceMax  float64  `json:"price_max"            validate:"gtefield=PriceMin"`
	PriceStep float64  `json:"price_step,omitempty" validate:"gte=0"`
	DownMin   *float64 `json:"down_min,omitempty"   validate:"omitempty,gte=0,lte=1"`
	DownMax   *float64 `json:"down_max,omitempty"   validate:"omitempty,gte=0,lte=1"`
	DownStep  *float64 `json:"down_step,omitempty"  validate:"omitempty,gt=0,lte=1"`
	Rent      float64  `json:"rent,omitempty"       validate:"gte=0"`
}

// AmortizeRequest is the body for POST /api/v1/amortize.
type AmortizeRequest struct {
	Profile            string   `json:"profile,omitempty"`
	Price              float64  `json:"price"                          validate:"gt=0"`
	DownPaymentPercent *float64 `json:"down_payment_percent,omitempty" validate:"omitempty,gte=0,lte=1"`
	Years              int      `json:"years,omitempty"                validate:"gte=0"`
}

// CreateProfileRequest is the body for POST /api/v1/profiles.
type CreateProfileRequest struct {
	Name        string `json:"name"                  validate:"required,profilename"`
	Description string `json:"description,omitempty"`
	Base        string `json:"base,omitempty"`
}

// CompareRequest is the body for POST /api/v1/profiles/compare.
type CompareRequest struct {
	Profiles []string `json:"profiles" validate:"min=1,dive,required"`
	Price    float64  `json:"price"    validate:"gt=0"`
	Rent     float64  `json:"rent"     validate:"gt=0"`
}

// ============================================================
// Handlers
// ============================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data: map[string]interface{}{
			"status":     "ok",
			"version":    Version,
			"ws_clients": s.wsHub.ClientCount(),
			"time":       time.Now().UTC().Format(time.RFC3339),
		},
	})
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := profile.ValidateProperty(req.PropertyInput); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	p, err := s.loadProfile(req.Profile)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}

	res := mortgage.Analyze(req.PropertyInput, p)
	doc := output.NewAnalysisDoc(res, p)

	s.wsHub.Broadcast(WSMessage{
		Type: EventAnalysisComplete,
		Data: map[string]interface{}{
			"profile":         p.Name,
			"price":           req.Price,
			"expected_rent":   req.ExpectedRent,
			"break_even_rent": doc.Analysis.BreakEvenRent,
			"verdict":         res.Verdict,
		},
	})

	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    doc,
	})
}

func (s *Server) handleMatrix(w http.ResponseWriter, r *http.Request) {
	var req MatrixRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := profile.ValidateStruct("matrix request", req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	p, err := s.loadProfile(req.Profile)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}

	cfg := s.settings()
	grid := gridFor(req, cfg.Matrix)
	prices, downs, err := grid.Axes()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	rent := req.Rent
	if rent == 0 {
		rent = p.Budget.TargetRent
	}

	m, err := mortgage.BuildMatrix(r.Context(), p, prices, downs, rent, cfg.Matrix.Workers)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	doc := output.NewMatrixDoc(m, p)

	s.wsHub.Broadcast(WSMessage{
		Type: EventMatrixComplete,
		Data: map[string]interface{}{
			"profile": p.Name,
			"cells":   m.Size(),
			"counts":  doc.Counts,
		},
	})

	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    doc,
	})
}

// gridFor fills the omitted matrix bounds from the configuration.
func gridFor(req MatrixRequest, mc config.MatrixConfig) mortgage.Grid {
	g := mortgage.Grid{
		PriceMin:  req.PriceMin,
		PriceMax:  req.PriceMax,
		PriceStep: mc.PriceStep,
		DownMin:   mc.DownMin,
		DownMax:   mc.DownMax,
		DownStep:  mc.DownStep,
	}
	if req.PriceStep > 0 {
		g.PriceStep = req.PriceStep
	}
	if req.DownMin != nil {
		g.DownMin = *req.DownMin
	}
	if req.DownMax != nil {
		g.DownMax = *req.DownMax
	}
	if req.DownStep != nil {
		g.DownStep = *req.DownStep
	}
	return g
}

func (s *Server) handleAmortize(w http.ResponseWriter, r *http.Request) {
	var req AmortizeRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := profile.ValidateStruct("amortization request", req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	p, err := s.loadProfile(req.Profile)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}

	down := p.Mortgage.DefaultDownPayment
	if req.DownPaymentPercent != nil {
		down = *req.DownPaymentPercent
	}
	rep := mortgage.BuildReport(req.Price, down, p, req.Years)

	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    output.NewAmortizationDoc(rep),
	})
}

func (s *Server) handleListProfiles(w http.ResponseWriter, r *http.Request) {
	list, err := s.store.List()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    output.ProfileListDoc{Profiles: list},
	})
}

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	p, err := s.store.Load(chi.URLParam(r, "name"))
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    p,
	})
}

func (s *Server) handleCreateProfile(w http.ResponseWriter, r *http.Request) {
	var req CreateProfileRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := profile.ValidateStruct("profile request", req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	p, err := s.store.Create(req.Name, req.Description, req.Base)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	s.log.WithFields(logrus.Fields{"profile": p.Name, "base": req.Base}).Info("profile created")

	s.wsHub.Broadcast(WSMessage{
		Type: EventProfileCreated,
		Data: map[string]interface{}{"name": p.Name},
	})

	writeJSON(w, http.StatusCreated, APIResponse{
		Success: true,
		Data:    p,
	})
}

func (s *Server) handleDeleteProfile(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if err := s.store.Delete(name); err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	s.log.WithField("profile", name).Info("profile deleted")

	s.wsHub.Broadcast(WSMessage{
		Type: EventProfileDeleted,
		Data: map[string]interface{}{"name": name},
	})

	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    map[string]string{"deleted": name},
	})
}

func (s *Server) handleCompareProfiles(w http.ResponseWriter, r *http.Request) {
	var req CompareRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := profile.ValidateStruct("comparison request", req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	profiles, err := s.store.LoadMany(req.Profiles)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}

	results, err := mortgage.Compare(r.Context(), profiles, req.Price, req.Rent)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    output.NewComparisonDoc(results, req.Price, req.Rent),
	})
}

// ============================================================
// Helpers
// ============================================================

// loadProfile resolves an empty name to the configured default profile.
func (s *Server) loadProfile(name string) (*models.Profile, error) {
	if name == "" {
		name = s.settings().Profiles.Default
	}
	if name == "" {
		name = profile.DefaultName
	}
	return s.store.Load(name)
}

// statusFor maps profile store errors to HTTP status codes.
func statusFor(err error) int {
	var verr *profile.ValidationError
	switch {
	case errors.Is(err, profile.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, profile.ErrExists):
		return http.StatusConflict
	case errors.Is(err, profile.ErrProtected):
		return http.StatusForbidden
	case errors.Is(err, profile.ErrInvalid), errors.As(err, &verr):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func decodeBody(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logrus.WithError(err).Error("failed to write JSON response")
	}
}

// rateLimit rejects requests once the shared token bucket is empty.
func (s *Server) rateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.limiter.Allow() {
			s.log.WithField("path", r.URL.Path).Warn("rate limit exceeded")
			w.Header().Set("Retry-After", "1")
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, APIResponse{
		Success: false,
		Error:   msg,
	})
}
