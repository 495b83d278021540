// Package watchserver implements the `--server` mode: a local HTTP server
// that re-runs the simulation whenever the plan file's mtime changes and
// pushes each completed result to connected clients over a websocket (no
// per-run progress events are sent), optionally
// persisting each completed run's summary via watchstore. Grounded on the
// teacher's simpleCLILogger-driven cmd/rpgo/main.go logging idiom and the
// config.LoadFromFile reread pattern; the live-push transport itself has no
// teacher analogue and is built on gorilla/websocket, the pack's only
// real-time transport library.
package watchserver

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/finplan/simcore/internal/config"
	"github.com/finplan/simcore/internal/domain"
	"github.com/finplan/simcore/internal/orchestrator"
	"github.com/finplan/simcore/internal/watchstore"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

// Server watches a plan file and streams simulation results to clients.
type Server struct {
	PlanPath      string
	WatchInterval time.Duration
	Store         *watchstore.Store
	Log           *logrus.Logger

	mu          sync.RWMutex
	lastResult  *domain.SimulationResult
	lastErr     error
	clients     map[*websocket.Conn]bool
	clientsMu   sync.Mutex
	lastModTime time.Time
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// New builds a Server for planPath, polling for file changes every interval.
func New(planPath string, interval time.Duration, store *watchstore.Store) *Server {
	return &Server{
		PlanPath:      planPath,
		WatchInterval: interval,
		Store:         store,
		Log:           logrus.New(),
		clients:       map[*websocket.Conn]bool{},
	}
}

// Run starts the watch loop and HTTP server, blocking until ctx is canceled.
func (s *Server) Run(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebsocket)
	mux.HandleFunc("/result", s.handleResult)

	httpServer := &http.Server{Addr: addr, Handler: mux}

	go s.watchLoop(ctx)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		httpServer.Shutdown(shutdownCtx)
	}()

	s.Log.Infof("watch server listening on %s, watching %s", addr, s.PlanPath)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) watchLoop(ctx context.Context) {
	ticker := time.NewTicker(s.WatchInterval)
	defer ticker.Stop()

	s.reload(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			info, err := os.Stat(s.PlanPath)
			if err != nil {
				continue
			}
			if info.ModTime().After(s.lastModTime) {
				s.lastModTime = info.ModTime()
				s.reload(ctx)
			}
		}
	}
}

func (s *Server) reload(ctx context.Context) {
	s.Log.Infof("reloading plan from %s", s.PlanPath)
	loader := config.NewLoader()
	plan, err := loader.LoadFromFile(s.PlanPath)
	if err != nil {
		s.setError(err)
		return
	}

	result, err := orchestrator.Run(ctx, plan)
	if err != nil {
		s.setError(err)
		return
	}

	s.mu.Lock()
	s.lastResult = &result
	s.lastErr = nil
	s.mu.Unlock()
	s.broadcast(result)

	if s.Store != nil {
		rec := watchstore.RunRecord{
			ID:          uuid.NewString(),
			PlanPath:    s.PlanPath,
			Mode:        string(result.Mode),
			Seed:        result.Seed,
			SuccessRate: result.SuccessRate,
			RanAt:       time.Now().UTC().Format(time.RFC3339),
		}
		if err := s.Store.Insert(ctx, rec); err != nil {
			s.Log.Warnf("failed to persist run history: %v", err)
		}
	}
}

func (s *Server) setError(err error) {
	s.mu.Lock()
	s.lastErr = err
	s.mu.Unlock()
	s.Log.Errorf("reload failed: %v", err)
}

func (s *Server) handleResult(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.lastErr != nil {
		http.Error(w, s.lastErr.Error(), http.StatusInternalServerError)
		return
	}
	if s.lastResult == nil {
		http.Error(w, "no result yet", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(s.lastResult)
}

func (s *Server) handleWebsocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.Log.Warnf("websocket upgrade failed: %v", err)
		return
	}
	s.clientsMu.Lock()
	s.clients[conn] = true
	s.clientsMu.Unlock()

	s.mu.RLock()
	if s.lastResult != nil {
		conn.WriteJSON(s.lastResult)
	}
	s.mu.RUnlock()

	defer func() {
		s.clientsMu.Lock()
		delete(s.clients, conn)
		s.clientsMu.Unlock()
		conn.Close()
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (s *Server) broadcast(result domain.SimulationResult) {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()
	for conn := range s.clients {
		if err := conn.WriteJSON(result); err != nil {
			conn.Close()
			delete(s.clients, conn)
		}
	}
}
