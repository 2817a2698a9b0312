// Package http wires the cost manager API onto net/http.
package http

import (
	"context"
	"net/http"

	"costmanager/internal/core"
	applog "costmanager/internal/log"
	"costmanager/internal/middleware/trace"
)

// CostAPI is the service surface the handlers call into.
type CostAPI interface {
	CreateUser(ctx context.Context, u core.User) (core.User, error)
	GetUserWithTotal(ctx context.Context, id int64) (core.User, float64, error)
	CreateCost(ctx context.Context, c core.Cost) (core.Cost, error)
	MonthlyReport(ctx context.Context, userID string, year, month int) (core.Report, error)
}

// TeamMember is one entry of the static /api/about listing.
type TeamMember struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

var team = []TeamMember{
	{FirstName: "Vlad", LastName: "Yatchenko"},
	{FirstName: "Benny", LastName: "Eyov"},
}

// Server holds the handler dependencies.
type Server struct {
	costs CostAPI
}

// NewServer builds the route table and returns a configured *http.Server.
// Timeouts are the caller's concern.
func NewServer(addr string, costs CostAPI, logger *applog.Logger) *http.Server {
	s := &Server{costs: costs}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/about", s.handleAbout)
	mux.HandleFunc("POST /api/add", s.handleAddCost)
	mux.HandleFunc("GET /api/report", s.handleReport)
	mux.HandleFunc("POST /api/users", s.handleCreateUser)
	mux.HandleFunc("GET /api/users/{id}", s.handleGetUser)
	mux.HandleFunc("GET /healthz", s.handleHealthz)
	mux.HandleFunc("GET /readyz", s.handleHealthz)

	var handler http.Handler = mux
	if logger != nil {
		handler = applog.Middleware(logger.WithComponent(applog.ComponentHTTP))(handler)
	}
	handler = trace.Middleware(handler)

	return &http.Server{
		Addr:    addr,
		Handler: handler,
	}
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
