// Package httpapi serves the HTTP side of CrowdBid: websocket live updates,
// read-only JSON and CSV views of an auction, a health check and the
// maintenance trigger.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/dmitrijs2005/crowdbid/internal/api"
	"github.com/dmitrijs2005/crowdbid/internal/common"
	"github.com/dmitrijs2005/crowdbid/internal/logging"
	"github.com/dmitrijs2005/crowdbid/internal/server/notify"
	"github.com/dmitrijs2005/crowdbid/internal/server/services"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
)

type Server struct {
	address     string
	bidders     *services.BidderService
	bulk        *services.BulkService
	maintenance *services.MaintenanceService
	hub         *notify.Hub
	logger      logging.Logger
	upgrader    websocket.Upgrader
}

func NewServer(addr string, l logging.Logger, bs *services.BidderService, bulk *services.BulkService,
	ms *services.MaintenanceService, hub *notify.Hub) *Server {
	return &Server{
		address:     addr,
		bidders:     bs,
		bulk:        bulk,
		maintenance: ms,
		hub:         hub,
		logger:      l.With("module", "http_server"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Tokens are the only access control; any origin may watch.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

// Routes builds the router.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)

	r.Get("/healthz", s.handleHealth)
	r.Get("/auctions/{token}/state", s.handleState)
	r.Get("/auctions/{token}/bids.csv", s.handleCSV)
	r.Get("/ws/{token}", s.handleWebsocket)
	r.Post("/maintenance", s.handleMaintenance)
	return r
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug(r.Context(), "http request",
			"method", r.Method, "path", r.URL.Path, "status", ww.Status(),
			"duration", time.Since(start), "request_id", middleware.GetReqID(r.Context()))
	})
}

// Run serves until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", listen.Addr().String())
	if err := srv.Serve(listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func httpStatus(err error) int {
	switch {
	case errors.Is(err, common.ErrorValidation):
		return http.StatusBadRequest
	case errors.Is(err, common.ErrorNotFound):
		return http.StatusNotFound
	case errors.Is(err, common.ErrDuplicateBidder), errors.Is(err, common.ErrNameConflict),
		errors.Is(err, common.ErrPreconditionFailed):
		return http.StatusConflict
	case errors.Is(err, common.ErrorStorage):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	code := httpStatus(err)
	msg := err.Error()
	if code >= http.StatusInternalServerError {
		s.logger.Error(r.Context(), "request failed", "path", r.URL.Path, "error", err)
		msg = http.StatusText(code)
	}
	writeJSON(w, code, map[string]string{"error": msg})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "OK"})
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	v, err := s.bidders.State(r.Context(), chi.URLParam(r, "token"), r.URL.Query().Get("viewer"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, api.NewState(v.Auction, v.State))
}

func (s *Server) handleCSV(w http.ResponseWriter, r *http.Request) {
	csv, err := s.bulk.Export(r.Context(), chi.URLParam(r, "token"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="bids.csv"`)
	_, _ = w.Write([]byte(csv))
}

func (s *Server) handleMaintenance(w http.ResponseWriter, r *http.Request) {
	n, err := s.maintenance.Cleanup(r.Context())
	if err != nil {
		s.logger.Error(r.Context(), "maintenance failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]any{"status": "ERROR", "cleaned_auctions": n})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "OK", "cleaned_auctions": n})
}
