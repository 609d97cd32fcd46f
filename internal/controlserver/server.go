// Package controlserver bridges the core's in-process request Bus
// (agent.Bus, §4.7) onto a local HTTP+WebSocket surface for an external
// UI, using gorilla/mux for routing and gorilla/websocket as the push
// channel, grounded on niceyeti-tabular's server-loop shape and
// Mikko-Finell-mine-and-die's websocket hub pattern. SPEC_FULL §4.7.
package controlserver

import (
	"encoding/json"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/invopop/jsonschema"

	"maple-bot"
)

// Server translates wire messages 1:1 onto the existing channel-based
// request bus; the tick loop itself only ever sees agent.Bus.
type Server struct {
	Bus    *agent.Bus
	Router *mux.Router

	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*websocket.Conn]bool

	configSchema []byte
}

// NewServer wires routes for toggling halt, redetecting the minimap,
// updating the configuration, serving the configuration's JSON Schema,
// reading game state, and a WebSocket that pushes platform-bound reads.
func NewServer(bus *agent.Bus) *Server {
	s := &Server{
		Bus:      bus,
		Router:   mux.NewRouter(),
		upgrader: websocket.Upgrader{ReadBufferSize: 4096, WriteBufferSize: 4096},
		clients:  make(map[*websocket.Conn]bool),
	}
	s.configSchema, _ = json.Marshal(jsonschema.Reflect(&agent.Configuration{}))

	s.Router.HandleFunc("/halt", s.handleToggleHalt).Methods(http.MethodPost)
	s.Router.HandleFunc("/minimap/redetect", s.handleRedetectMinimap).Methods(http.MethodPost)
	s.Router.HandleFunc("/configuration", s.handleUpdateConfiguration).Methods(http.MethodPost)
	s.Router.HandleFunc("/configuration/schema", s.handleConfigSchema).Methods(http.MethodGet)
	s.Router.HandleFunc("/state", s.handleReadState).Methods(http.MethodGet)
	s.Router.HandleFunc("/ws", s.handleWebSocket)
	return s
}

func (s *Server) reply(req agent.Request) (agent.Response, bool) {
	req.Reply = make(chan agent.Response, 1)
	if err := s.Bus.Send(req); err != nil {
		return agent.Response{}, false
	}
	select {
	case resp := <-req.Reply:
		return resp, true
	case <-time.After(2 * time.Second):
		return agent.Response{}, false
	}
}

func (s *Server) handleToggleHalt(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Halt bool `json:"halt"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.reply(agent.Request{Kind: agent.RequestToggleHalt, Halt: body.Halt})
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRedetectMinimap(w http.ResponseWriter, r *http.Request) {
	s.reply(agent.Request{Kind: agent.RequestRedetectMinimap})
	w.WriteHeader(http.StatusNoContent)
}

// handleUpdateConfiguration decodes the payload into agent.Configuration
// with json.Unmarshal and forwards it to the bus; a payload that does not
// decode is rejected with 400. The payload is not checked against the
// generated JSON Schema, which is only served by handleConfigSchema.
func (s *Server) handleUpdateConfiguration(w http.ResponseWriter, r *http.Request) {
	var cfg agent.Configuration
	raw, err := decodeBody(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := json.Unmarshal(raw, &cfg); err != nil {
		http.Error(w, "invalid configuration: "+err.Error(), http.StatusBadRequest)
		return
	}

	correlationID := uuid.New()
	resp, ok := s.reply(agent.Request{Kind: agent.RequestUpdateConfiguration, Configuration: cfg})
	if !ok {
		http.Error(w, "request queue full", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("X-Correlation-Id", correlationID.String())
	json.NewEncoder(w).Encode(resp)
}

func (s *Server) handleConfigSchema(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write(s.configSchema)
}

func (s *Server) handleReadState(w http.ResponseWriter, r *http.Request) {
	resp, ok := s.reply(agent.Request{Kind: agent.RequestReadGameState})
	if !ok {
		http.Error(w, "timeout", http.StatusGatewayTimeout)
		return
	}
	json.NewEncoder(w).Encode(resp.GameState)
}

func decodeBody(r *http.Request) ([]byte, error) {
	defer r.Body.Close()
	return io.ReadAll(r.Body)
}

// handleWebSocket upgrades the connection and, every 200ms, pushes the
// response to a RequestReadPlatformsBound (platforms bound plus minimap
// fingerprint). It reads nothing from the client.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	s.mu.Lock()
	s.clients[conn] = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.clients, conn)
		s.mu.Unlock()
		conn.Close()
	}()

	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()
	for range ticker.C {
		resp, ok := s.reply(agent.Request{Kind: agent.RequestReadPlatformsBound})
		if !ok {
			continue
		}
		if err := conn.WriteJSON(resp); err != nil {
			return
		}
	}
}
