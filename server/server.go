// Package server exposes a broker.Broker over the order and trade REST
// routes the desks call.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/rustyeddy/mocktrade/broker"
)

// DefaultOrigins are the dev front-ends allowed when none are configured.
var DefaultOrigins = []string{"http://localhost:3000", "http://localhost:5173"}

// Server routes REST calls to a backend.
type Server struct {
	backend broker.Broker
	router  *mux.Router
	log     *zap.Logger
	origins []string
}

func New(backend broker.Broker, log *zap.Logger, allowedOrigins []string) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	if len(allowedOrigins) == 0 {
		allowedOrigins = DefaultOrigins
	}
	s := &Server{
		backend: backend,
		router:  mux.NewRouter(),
		log:     log,
		origins: allowedOrigins,
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.HandleFunc("/order/", s.handleListOrders).Methods(http.MethodGet)
	s.router.HandleFunc("/order/", s.handleSubmitOrder).Methods(http.MethodPost)
	s.router.HandleFunc("/order/{id}/simulate_fill", s.handleSimulateFill).Methods(http.MethodPost)
	s.router.HandleFunc("/order/{id}/cancel", s.handleCancelOrder).Methods(http.MethodPost)

	s.router.HandleFunc("/trade/", s.handleListTrades).Methods(http.MethodGet)
	s.router.HandleFunc("/trade/", s.handleBookTrade).Methods(http.MethodPost)
	s.router.HandleFunc("/trade/{id}/amend", s.handleAmendTrade).Methods(http.MethodPost)
	s.router.HandleFunc("/trade/{id}/cancel", s.handleCancelTrade).Methods(http.MethodPost)

	s.router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)
}

// Handler is the router wrapped with CORS and request logging.
func (s *Server) Handler() http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins: s.origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Accept"},
	})
	return s.logRequests(c.Handler(s.router))
}

// ListenAndServe serves on addr until ctx is done, then shuts down.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.log.Info("server starting", zap.String("addr", addr))
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	s.log.Info("server stopped")
	return nil
}

func (s *Server) handleListOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := s.backend.ListOrders(r.Context())
	if err != nil {
		s.respondErr(w, err)
		return
	}
	respondJSON(w, http.StatusOK, orders)
}

func (s *Server) handleSubmitOrder(w http.ResponseWriter, r *http.Request) {
	var req broker.OrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	o, err := s.backend.SubmitOrder(r.Context(), req)
	if err != nil {
		s.respondErr(w, err)
		return
	}
	respondJSON(w, http.StatusOK, o)
}

func (s *Server) handleSimulateFill(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := s.backend.SimulateFill(r.Context(), id); err != nil {
		s.respondErr(w, err)
		return
	}
	respondJSON(w, http.StatusOK, statusResponse{ID: id, Status: broker.StatusFilled})
}

func (s *Server) handleCancelOrder(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := s.backend.CancelOrder(r.Context(), id); err != nil {
		s.respondErr(w, err)
		return
	}
	respondJSON(w, http.StatusOK, statusResponse{ID: id, Status: broker.StatusCancelled})
}

func (s *Server) handleListTrades(w http.ResponseWriter, r *http.Request) {
	trades, err := s.backend.ListTrades(r.Context())
	if err != nil {
		s.respondErr(w, err)
		return
	}
	respondJSON(w, http.StatusOK, trades)
}

func (s *Server) handleBookTrade(w http.ResponseWriter, r *http.Request) {
	var req broker.BookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	t, err := s.backend.BookTrade(r.Context(), req)
	if err != nil {
		s.respondErr(w, err)
		return
	}
	respondJSON(w, http.StatusOK, t)
}

func (s *Server) handleAmendTrade(w http.ResponseWriter, r *http.Request) {
	var req broker.BookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	t, err := s.backend.AmendTrade(r.Context(), mux.Vars(r)["id"], req)
	if err != nil {
		s.respondErr(w, err)
		return
	}
	respondJSON(w, http.StatusOK, t)
}

func (s *Server) handleCancelTrade(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := s.backend.CancelTrade(r.Context(), id); err != nil {
		s.respondErr(w, err)
		return
	}
	respondJSON(w, http.StatusOK, statusResponse{ID: id, Status: broker.StatusCancelled})
}

type statusResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// ErrorResponse is the body of every failed call.
type ErrorResponse struct {
	Error string `json:"error"`
}

func (s *Server) respondErr(w http.ResponseWriter, err error) {
	code := http.StatusInternalServerError
	switch {
	case errors.Is(err, broker.ErrOrderNotFound), errors.Is(err, broker.ErrTradeNotFound):
		code = http.StatusNotFound
	case errors.Is(err, broker.ErrInvalidRequest):
		code = http.StatusBadRequest
	default:
		s.log.Error("backend failure", zap.Error(err))
	}
	respondError(w, code, err.Error())
}

func respondJSON(w http.ResponseWriter, code int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, code int, msg string) {
	respondJSON(w, code, ErrorResponse{Error: msg})
}
