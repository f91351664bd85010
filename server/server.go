// Package server is the thin HTTP front door of the host: chat endpoints for
// direct callers, the well-known capability card and a JSON-RPC task endpoint
// for protocol clients. All dispatch logic stays in the host package.
package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/cksruf91/a2a-server-client/a2a"
	"github.com/cksruf91/a2a-server-client/host"
	"github.com/cksruf91/a2a-server-client/logging"
)

// Options configure a Server.
type Options struct {
	// Tasks persists protocol tasks across message/send calls. Defaults to
	// an in-memory store.
	Tasks a2a.TaskStore
	// Executor drives protocol tasks. Defaults to the bridge around the
	// host's stream adapter.
	Executor a2a.AgentExecutor
	// Card advertises the host's capabilities at the well-known path. When
	// zero, a card is synthesized from the discovered catalog per request.
	Card a2a.AgentCard
	// Logger receives request diagnostics.
	Logger logging.Logger
}

// Server serves the host over HTTP.
type Server struct {
	host     *host.HostAgent
	tasks    a2a.TaskStore
	executor a2a.AgentExecutor
	card     a2a.AgentCard
	logger   logging.Logger
}

// New constructs the front door around a host agent.
func New(h *host.HostAgent, optFns ...func(o *Options)) *Server {
	opts := Options{
		Tasks:  a2a.NewInMemoryTaskStore(),
		Logger: logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Executor == nil {
		opts.Executor = a2a.NewTaskExecutor(host.NewStreamAdapter(h))
	}
	return &Server{
		host:     h,
		tasks:    opts.Tasks,
		executor: opts.Executor,
		card:     opts.Card,
		logger:   opts.Logger,
	}
}

// Handler returns the routed HTTP handler with CORS applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /chat/complete", s.handleComplete)
	mux.HandleFunc("POST /chat/stream", s.handleStream)
	mux.HandleFunc("GET "+a2a.WellKnownCardPath, s.handleCard)
	mux.HandleFunc("POST /", s.handleRPC)
	return withCORS(mux)
}

// ListenAndServe blocks serving the handler on addr.
func (s *Server) ListenAndServe(addr string) error {
	s.logger.Info("http server listening", "addr", addr)
	return http.ListenAndServe(addr, s.Handler())
}

func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleComplete(w http.ResponseWriter, r *http.Request) {
	var req host.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	resp, err := s.host.Complete(r.Context(), req)
	if err != nil {
		s.logger.Error("chat completion failed", "room_id", req.RoomID, "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleStream forwards text fragments to the caller as they arrive. The
// response is chunked plain text; an error before the first fragment maps to
// an HTTP error, later errors truncate the stream.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	var req host.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	fragments, errs := s.host.Stream(r.Context(), req)

	flusher, _ := w.(http.Flusher)
	started := false
	for fragment := range fragments {
		if !started {
			w.Header().Set("Content-Type", "text/plain; charset=utf-8")
			w.WriteHeader(http.StatusOK)
			started = true
		}
		if _, err := w.Write([]byte(fragment)); err != nil {
			return
		}
		if flusher != nil {
			flusher.Flush()
		}
	}
	if err := <-errs; err != nil {
		s.logger.Error("chat stream failed", "room_id", req.RoomID, "error", err)
		if !started {
			status := http.StatusInternalServerError
			if errors.Is(err, host.ErrEmptyQuery) {
				status = http.StatusBadRequest
			}
			writeError(w, status, err.Error())
		}
	}
}

// handleCard serves the host's public capability card, synthesizing the
// skill union from the discovered catalog when no card was configured.
func (s *Server) handleCard(w http.ResponseWriter, r *http.Request) {
	card := s.card
	if card.Name == "" {
		cards, err := s.host.Cards(r.Context())
		if err != nil {
			s.logger.Error("card synthesis failed", "error", err)
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		card = host.PublicCard(s.host.Name(), "Delegates requests to specialist agents.", "", "1.0.0", cards)
	}
	writeJSON(w, http.StatusOK, card)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
