package websocket

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"unicode/utf8"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/duelboard/gomoku/game/service"
)

// MaxNicknameLength bounds client-chosen display identities.
const MaxNicknameLength = 16

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Allow all origins in development
		// TODO: Configure this for production
		return true
	},
}

// Hub maintains the set of live connections and routes service events
// back to them. It implements service.EventSink.
type Hub struct {
	mu        sync.RWMutex
	clients   map[string]*Client
	service   service.SessionService
	jwtSecret string
	log       *logrus.Entry
}

// NewHub creates a hub. SetService must be called before ServeWS.
func NewHub(jwtSecret string, log *logrus.Logger) *Hub {
	return &Hub{
		clients:   make(map[string]*Client),
		jwtSecret: jwtSecret,
		log:       log.WithField("component", "gateway"),
	}
}

// SetService wires the command handler. Separate from NewHub because
// the service needs the hub as its event sink.
func (h *Hub) SetService(svc service.SessionService) {
	h.service = svc
}

// ServeWS upgrades an HTTP request to a websocket connection and starts
// the client's pumps.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	identity, err := h.identify(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.WithError(err).Warn("websocket upgrade failed")
		return
	}

	client := &Client{
		hub:      h,
		conn:     conn,
		send:     make(chan []byte, sendBufferSize),
		id:       uuid.NewString(),
		identity: identity,
	}

	h.mu.Lock()
	h.clients[client.id] = client
	h.mu.Unlock()

	h.log.WithFields(logrus.Fields{
		"conn":     client.id,
		"identity": identity,
	}).Info("connection established")

	go client.writePump()
	go client.readPump()
}

// Send delivers an event to one connection. Unknown connections are
// dropped silently; a connection whose send buffer is full is treated
// as gone and closed.
func (h *Hub) Send(connID string, ev service.Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		h.log.WithError(err).Error("failed to marshal event")
		return
	}

	// drop closes the send channel under the write lock, so the channel
	// send itself must stay inside the read lock.
	h.mu.RLock()
	client, ok := h.clients[connID]
	delivered := false
	if ok {
		select {
		case client.send <- data:
			delivered = true
		default:
		}
	}
	h.mu.RUnlock()

	if ok && !delivered {
		h.log.WithField("conn", connID).Warn("send buffer full, dropping connection")
		h.drop(client)
	}
}

// ConnectionCount returns the number of live connections.
func (h *Hub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// drop removes a client from the hub and signals connection loss to the
// service. Idempotent: the pumps and Send may race to call it.
func (h *Hub) drop(client *Client) {
	h.mu.Lock()
	_, present := h.clients[client.id]
	if present {
		delete(h.clients, client.id)
		close(client.send)
	}
	h.mu.Unlock()

	if !present {
		return
	}
	if h.service != nil {
		h.service.ConnectionLost(client.id)
	}
	h.log.WithField("conn", client.id).Info("connection closed")
}

// identify resolves the participant identity for an incoming upgrade.
// With a JWT secret configured, a presented token must verify and its
// subject wins. Otherwise the nickname query value is used, bounded in
// length, with a generated guest name as fallback.
func (h *Hub) identify(r *http.Request) (string, error) {
	token := r.URL.Query().Get("token")
	if token != "" && h.jwtSecret != "" {
		parsed, err := jwt.Parse(token, func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
			}
			return []byte(h.jwtSecret), nil
		})
		if err != nil || !parsed.Valid {
			return "", fmt.Errorf("invalid identity token")
		}
		if sub, err := parsed.Claims.GetSubject(); err == nil && sub != "" {
			return sub, nil
		}
		return "", fmt.Errorf("identity token has no subject")
	}

	nickname := r.URL.Query().Get("nickname")
	if utf8.RuneCountInString(nickname) > MaxNicknameLength {
		return "", fmt.Errorf("nickname exceeds %d characters", MaxNicknameLength)
	}
	if nickname == "" {
		nickname = "guest-" + uuid.NewString()[:8]
	}
	return nickname, nil
}
