package gateway

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/rahul/rendezvous/internal/observability"
	"github.com/rahul/rendezvous/internal/schema"
)

// HTTPGateway serves the REST entry surface for the planning pipeline.
type HTTPGateway struct {
	Addr    string
	Planner PlanService
	Logger  *observability.Logger

	srv *http.Server
}

func NewHTTPGateway(addr string, planner PlanService, logger *observability.Logger) *HTTPGateway {
	return &HTTPGateway{
		Addr:    addr,
		Planner: planner,
		Logger:  logger,
	}
}

func (g *HTTPGateway) router() http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(120 * time.Second))

	r.Get("/", g.handleInfo)
	r.Get("/health", g.handleHealth)
	r.Post("/plan", g.handlePlan)

	return r
}

func (g *HTTPGateway) handleInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"service": "rendezvous",
		"status":  "running",
		"endpoints": map[string]string{
			"POST /plan":  "Create an outing plan",
			"GET /health": "Health check",
		},
	})
}

func (g *HTTPGateway) handleHealth(w http.ResponseWriter, r *http.Request) {
	role, task, heartbeat := observability.GetStatus()
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "healthy",
		"agents": map[string]any{
			"active_role":    string(role),
			"active_task":    task,
			"last_heartbeat": heartbeat.Format(time.RFC3339),
		},
	})
}

func (g *HTTPGateway) handlePlan(w http.ResponseWriter, r *http.Request) {
	var req schema.PlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
		return
	}
	if req.City == "" || req.DateTime == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "city and date_time are required"})
		return
	}

	requestID := uuid.NewString()
	start := time.Now()
	resp := g.Planner.CreatePlan(r.Context(), req)
	if g.Logger != nil {
		g.Logger.LogRequest(requestID, req.City, time.Since(start).Seconds(), resp.Success)
	}
	writeJSON(w, http.StatusOK, resp)
}

// Start runs the HTTP server until Stop is called.
func (g *HTTPGateway) Start() error {
	g.srv = &http.Server{
		Addr:              g.Addr,
		Handler:           g.router(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      150 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("HTTP gateway listening on %s", g.Addr)
	if err := g.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (g *HTTPGateway) Send(chatID string, text string) error {
	// HTTP is request/response only; there is no push channel.
	return nil
}

func (g *HTTPGateway) Stop() error {
	if g.srv == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return g.srv.Shutdown(ctx)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}
