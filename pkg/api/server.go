package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/uhyunpark/venueorder/pkg/app/intake"
	"github.com/uhyunpark/venueorder/pkg/order"
)

const maxBodyBytes = 1 << 20

// Server handles REST API and WebSocket connections
type Server struct {
	app     *intake.App
	router  *mux.Router
	hub     *Hub
	log     *zap.SugaredLogger
	origins []string
	httpSrv *http.Server

	stopHub context.CancelFunc
}

// NewServer creates a new API server, starts its WebSocket hub and hooks
// accepted orders into the stream. The hub runs until Shutdown.
func NewServer(app *intake.App, logger *zap.SugaredLogger, corsOrigins []string) *Server {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	s := &Server{
		app:     app,
		router:  mux.NewRouter(),
		hub:     NewHub(logger),
		log:     logger,
		origins: corsOrigins,
	}
	s.setupRoutes()
	s.httpSrv = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	hubCtx, cancel := context.WithCancel(context.Background())
	s.stopHub = cancel
	go s.hub.Run(hubCtx)

	app.OnAccepted = s.broadcastAccepted
	return s
}

func (s *Server) setupRoutes() {
	api := s.router.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/orders/normalize", s.handleNormalizeOrder).Methods("POST")
	api.HandleFunc("/symbols/parse", s.handleParseSymbol).Methods("POST")

	s.router.HandleFunc("/ws", s.handleWebSocket)
	s.router.Handle("/metrics", promhttp.HandlerFor(s.app.Metrics().Registry, promhttp.HandlerOpts{})).Methods("GET")
	s.router.HandleFunc("/health", s.handleHealth).Methods("GET")
}

// Handler returns the router wrapped with CORS handling.
func (s *Server) Handler() http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins:   s.origins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	})
	return c.Handler(s.router)
}

// Start serves HTTP on addr until Shutdown.
func (s *Server) Start(addr string) error {
	s.httpSrv.Addr = addr
	s.log.Infow("api_server_starting", "addr", addr)
	if err := s.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops the HTTP server and the WebSocket hub.
func (s *Server) Shutdown(ctx context.Context) error {
	defer s.stopHub()
	return s.httpSrv.Shutdown(ctx)
}

// ==============================
// REST Handlers
// ==============================

func (s *Server) handleNormalizeOrder(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		respondError(w, http.StatusBadRequest, "failed to read body", err.Error(), "")
		return
	}

	raw, err := order.DecodeRawOrder(body)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON order", err.Error(), "")
		return
	}

	p, err := s.app.Prepare(raw, nil)
	if err != nil {
		kind, _ := order.KindOf(err)
		respondError(w, http.StatusUnprocessableEntity, "order rejected", err.Error(), string(kind))
		return
	}

	respondJSON(w, NormalizeResponse{
		Parsed:  toParsedInfo(p.Order.Parsed()),
		Message: p.Message,
		Payload: p.Payload,
		Digest:  p.Digest,
	})
}

func (s *Server) handleParseSymbol(w http.ResponseWriter, r *http.Request) {
	var req ParseSymbolRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body", err.Error(), "")
		return
	}
	if req.Symbol == nil {
		respondError(w, http.StatusBadRequest, "symbol is required", "body must carry a symbol field", string(order.KindMissingSymbol))
		return
	}

	sym := order.ParseSymbol(*req.Symbol)
	respondJSON(w, SymbolInfo{
		Input:    *req.Symbol,
		Notation: sym.Notation.String(),
		Base:     sym.Base,
		Quote:    sym.Quote,
		Wire:     sym.Wire,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, map[string]string{"status": "ok"})
}

// ==============================
// Broadcast Methods
// ==============================

func (s *Server) broadcastAccepted(p *intake.Prepared) {
	for _, channel := range []string{"orders", "orders:" + p.Message.Symbol} {
		s.hub.BroadcastToChannel(channel, OrderUpdate{
			Type:    "order",
			Channel: channel,
			Order:   p.Message,
			Digest:  p.Digest,
		})
	}
}

// ==============================
// Helper Functions
// ==============================

func respondJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, error string, message string, kind string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(ErrorResponse{
		Error:   error,
		Message: message,
		Kind:    kind,
	})
}
