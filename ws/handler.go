package ws

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/acelemming/bubchat/models"
	"github.com/acelemming/bubchat/pkg"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The room is open to any origin, matching the permissive CORS
	// policy of the HTTP surface.
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Handler upgrades HTTP requests to websocket connections and hands
// them to the hub.
type Handler struct {
	hub *Hub
	log zerolog.Logger
}

// NewHandler returns the websocket connect handler.
func NewHandler(hub *Hub, log zerolog.Logger) *Handler {
	return &Handler{hub: hub, log: log}
}

// HandleConnection accepts a connection carrying an identity.
//
// The identity travels as query parameters because browsers cannot set
// headers on websocket dials:
//
//	ws://server/ws?nickname=Owen&fingerprint=abc
//
// A missing or empty field closes the connection without a reply. Ban
// rejection happens in the hub after the upgrade, so a banned peer
// still receives its one force-close notice.
func (h *Handler) HandleConnection(w http.ResponseWriter, r *http.Request) {
	identity := models.Identity{
		Nickname:    r.URL.Query().Get("nickname"),
		Fingerprint: r.URL.Query().Get("fingerprint"),
	}
	if !identity.Valid() {
		h.log.Debug().Err(pkg.ErrMissingIdentity).Str("remote", r.RemoteAddr).Msg("rejected connect")
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Debug().Err(err).Msg("websocket upgrade failed")
		return
	}

	client := &Client{
		hub:      h.hub,
		conn:     conn,
		id:       uuid.NewString(),
		identity: identity,
		send:     make(chan []byte, sendBufferSize),
	}

	h.log.Debug().
		Str("connection", client.id).
		Str("nickname", identity.Nickname).
		Msg("connection accepted, registering")

	h.hub.register <- client

	go client.WritePump()
	client.ReadPump() // blocks until the connection closes
}
