// Package server is the HTTP surface over the engine: session play, round
// verification, certification reports and Monte Carlo validation.
package server

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	rmg "github.com/playfair-labs/rmg-engine"
	"github.com/playfair-labs/rmg-engine/config"
	"github.com/playfair-labs/rmg-engine/games"
	"github.com/playfair-labs/rmg-engine/session"
)

type Server struct {
	cfg    *config.Config
	table  *games.Table
	ledger *session.Ledger
}

func New(cfg *config.Config) *Server {
	table := games.NewTable()
	ledger := session.NewLedger(table)
	ledger.AddSink(session.NewResultsStore(cfg.DataDir))
	if db, err := rmg.GetDB(); err != nil {
		log.Printf("RMG postgres unavailable, file audit only: %v", err)
	} else if db != nil {
		pg := session.NewPGLog(db)
		if err := pg.EnsureSchema(context.Background()); err != nil {
			log.Printf("RMG postgres schema: %v", err)
		} else {
			ledger.AddSink(pg)
		}
	}
	return &Server{
		cfg:    cfg,
		table:  table,
		ledger: ledger,
	}
}

func (s *Server) Run() error {
	mux := s.routes()

	port := s.cfg.Port
	if port <= 0 {
		port = 8081
	}
	addr := ":" + strconv.Itoa(port)
	log.Printf("RMG listening on %s (%d game models)", addr, len(s.table.Types()))
	return http.ListenAndServe(addr, cors(requestLogger(mux)))
}

func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.health)
	mux.HandleFunc("GET /rmg/games/list", s.handleGamesList)
	mux.HandleFunc("POST /rmg/session/open", s.handleSessionOpen)
	mux.HandleFunc("POST /rmg/session/round", s.handleSessionRound)
	mux.HandleFunc("POST /rmg/session/close", s.handleSessionClose)
	mux.HandleFunc("GET /rmg/session/verify", s.handleSessionVerify)
	mux.HandleFunc("GET /rmg/math/{game}", s.handleMathReport)
	mux.HandleFunc("GET /rmg/validate/{game}", s.handleValidate)
	mux.HandleFunc("GET /rmg/validate-all", s.handleValidateAll)
	return mux
}

func cors(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		h.ServeHTTP(w, r)
	})
}

// requestLogger logs method and path for each request (no body or secrets).
func requestLogger(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log.Printf("RMG %s %s", r.Method, r.URL.Path)
		h.ServeHTTP(w, r)
	})
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "service": "rmg"})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
