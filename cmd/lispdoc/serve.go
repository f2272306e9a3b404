package main

import (
	"crypto/rand"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"lispdoc/evaluator"
	"lispdoc/render"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start HTTP server for Lisp evaluation",
	Long: `Start an HTTP server that provides REST endpoints for evaluation.

Endpoints:
  POST   /evaluate                   Evaluate source (stateless)
  POST   /sessions                   Create session, returns {"session_id":"..."}
  POST   /sessions/{id}/fragments    Evaluate in session (state persists)
  GET    /sessions/{id}/transcript   Rendered transcript of the session so far
  DELETE /sessions/{id}              Close session
  GET    /health                     Health check`,
	Run: runServe,
}

func init() {
	serveCmd.Flags().IntP("port", "p", 8080, "Port to listen on")
	serveCmd.Flags().Duration("session-ttl", 15*time.Minute, "Idle session expiry")
	rootCmd.AddCommand(serveCmd)
}

type sessionManager struct {
	sessions map[string]*serverSession
	mu       sync.RWMutex
	ttl      time.Duration
	done     chan struct{}
}

type serverSession struct {
	session  *evaluator.Session
	lastUsed time.Time
}

func newSessionManager(ttl time.Duration) *sessionManager {
	sm := &sessionManager{
		sessions: make(map[string]*serverSession),
		ttl:      ttl,
		done:     make(chan struct{}),
	}
	go sm.cleanup()
	return sm
}

func (sm *sessionManager) create(eval *evaluator.Evaluator) (string, error) {
	id := generateSessionID()
	session, err := eval.NewSession(evaluator.WithSessionName(id))
	if err != nil {
		return "", err
	}

	sm.mu.Lock()
	sm.sessions[id] = &serverSession{
		session:  session,
		lastUsed: time.Now(),
	}
	sm.mu.Unlock()
	return id, nil
}

func (sm *sessionManager) get(id string) (*evaluator.Session, bool) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	ss, ok := sm.sessions[id]
	if !ok {
		return nil, false
	}
	ss.lastUsed = time.Now()
	return ss.session, true
}

func (sm *sessionManager) close(id string) bool {
	sm.mu.Lock()
	ss, ok := sm.sessions[id]
	if ok {
		ss.session.Close()
		delete(sm.sessions, id)
	}
	sm.mu.Unlock()
	return ok
}

func (sm *sessionManager) cleanup() {
	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-sm.done:
			return
		case <-ticker.C:
		}
		sm.mu.Lock()
		now := time.Now()
		for id, ss := range sm.sessions {
			if now.Sub(ss.lastUsed) > sm.ttl {
				ss.session.Close()
				delete(sm.sessions, id)
			}
		}
		sm.mu.Unlock()
	}
}

func (sm *sessionManager) closeAll() {
	close(sm.done)
	sm.mu.Lock()
	for id, ss := range sm.sessions {
		ss.session.Close()
		delete(sm.sessions, id)
	}
	sm.mu.Unlock()
}

func generateSessionID() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return fmt.Sprintf("%x", b)
}

type evaluateRequest struct {
	Source string `json:"source"`
}

type fragmentResult struct {
	Index     int    `json:"index"`
	Source    string `json:"source"`
	Kind      string `json:"kind"`
	Value     string `json:"value,omitempty"`
	Output    string `json:"output,omitempty"`
	ErrorKind string `json:"error_kind,omitempty"`
	Error     string `json:"error,omitempty"`
}

type evaluateResponse struct {
	Results    []fragmentResult `json:"results"`
	DurationMs int64            `json:"duration_ms"`
}

type createSessionResponse struct {
	SessionID string `json:"session_id"`
}

type transcriptResponse struct {
	Transcript string `json:"transcript"`
	Fragments  int    `json:"fragments"`
}

func toFragmentResults(results []evaluator.Result) ([]fragmentResult, error) {
	out := make([]fragmentResult, 0, len(results))
	for _, res := range results {
		fr := fragmentResult{
			Index:  res.Fragment.Index,
			Source: res.Fragment.Source,
			Kind:   res.Outcome.Kind.String(),
			Output: res.Outcome.Output,
		}
		switch res.Outcome.Kind {
		case evaluator.OutcomeValue:
			repr, err := render.FormatValue(res.Outcome.Value)
			if err != nil {
				return nil, err
			}
			fr.Value = repr
		case evaluator.OutcomeError:
			fr.ErrorKind = res.Outcome.Err.Kind
			fr.Error = res.Outcome.Err.Message
		}
		out = append(out, fr)
	}
	return out, nil
}

// newServeMux wires the evaluation endpoints. Split out so tests can serve
// it with httptest.
func newServeMux(eval *evaluator.Evaluator, sessions *sessionManager, renderer *render.Renderer, log *zap.Logger) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/evaluate", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		var req evaluateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		if req.Source == "" {
			http.Error(w, "source required", http.StatusBadRequest)
			return
		}

		start := time.Now()
		results, err := eval.Eval(r.Context(), req.Source)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		frs, err := toFragmentResults(results)
		if err != nil {
			http.Error(w, err.Error(), http.StatusUnprocessableEntity)
			return
		}

		log.Debug("evaluated", zap.Int("fragments", len(frs)))
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(evaluateResponse{
			Results:    frs,
			DurationMs: time.Since(start).Milliseconds(),
		})
	})

	mux.HandleFunc("/sessions", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		sessionID, err := sessions.create(eval)
		if err != nil {
			http.Error(w, fmt.Sprintf("failed to create session: %v", err), http.StatusInternalServerError)
			return
		}

		log.Debug("session created", zap.String("id", sessionID))
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(createSessionResponse{SessionID: sessionID})
	})

	mux.HandleFunc("/sessions/", func(w http.ResponseWriter, r *http.Request) {
		path := strings.TrimPrefix(r.URL.Path, "/sessions/")
		parts := strings.SplitN(path, "/", 2)
		sessionID := parts[0]

		if sessionID == "" {
			http.Error(w, "session_id required", http.StatusBadRequest)
			return
		}

		if r.Method == http.MethodDelete && len(parts) == 1 {
			if sessions.close(sessionID) {
				log.Debug("session closed", zap.String("id", sessionID))
				w.WriteHeader(http.StatusNoContent)
			} else {
				http.Error(w, "session not found", http.StatusNotFound)
			}
			return
		}

		if r.Method == http.MethodPost && len(parts) == 2 && parts[1] == "fragments" {
			session, ok := sessions.get(sessionID)
			if !ok {
				http.Error(w, "session not found", http.StatusNotFound)
				return
			}

			var req evaluateRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				http.Error(w, "invalid json", http.StatusBadRequest)
				return
			}
			if req.Source == "" {
				http.Error(w, "source required", http.StatusBadRequest)
				return
			}

			start := time.Now()
			results, err := session.RunAll(r.Context(), req.Source)
			if err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}
			frs, err := toFragmentResults(results)
			if err != nil {
				http.Error(w, err.Error(), http.StatusUnprocessableEntity)
				return
			}

			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(evaluateResponse{
				Results:    frs,
				DurationMs: time.Since(start).Milliseconds(),
			})
			return
		}

		if r.Method == http.MethodGet && len(parts) == 2 && parts[1] == "transcript" {
			session, ok := sessions.get(sessionID)
			if !ok {
				http.Error(w, "session not found", http.StatusNotFound)
				return
			}

			history := session.History()
			text, err := renderer.Render(history)
			if err != nil {
				http.Error(w, err.Error(), http.StatusUnprocessableEntity)
				return
			}

			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(transcriptResponse{
				Transcript: text,
				Fragments:  len(history),
			})
			return
		}

		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	})

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	return mux
}

func runServe(cmd *cobra.Command, args []string) {
	cfg := loadConfig(cmd)
	log := cfg.Logger()
	defer log.Sync()

	port, _ := cmd.Flags().GetInt("port")
	ttl, _ := cmd.Flags().GetDuration("session-ttl")

	eval := newEvaluator(cfg)
	renderer := render.New(render.WithStyle(cfg.RenderStyle()))

	sessions := newSessionManager(ttl)
	defer sessions.closeAll()

	mux := newServeMux(eval, sessions, renderer, log)

	addr := fmt.Sprintf(":%d", port)
	fmt.Fprintf(os.Stderr, "lispdoc server listening on %s\n", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
