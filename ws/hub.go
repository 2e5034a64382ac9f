package ws

import (
	"encoding/json"
	"sync/atomic"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/acelemming/bubchat/config"
	"github.com/acelemming/bubchat/pkg/ratelimit"
	"github.com/acelemming/bubchat/services"
)

// inbound is one unit of work for the hub loop: raw text received from
// a connection, queued in arrival order.
type inbound struct {
	client *Client
	text   string
}

// Hub owns the connection registry, the history buffer and command
// dispatch. Run is the single serialization point: registry, history
// and moderation mutations all happen on that goroutine, so concurrent
// inbound events cannot interleave and every connection observes
// broadcasts in the order the hub committed them.
type Hub struct {
	// clients is the registry of live connections. Touched only by the
	// Run goroutine, as is each client's isAdmin flag.
	clients map[*Client]struct{}

	register   chan *Client
	unregister chan *Client
	inbound    chan inbound
	shutdown   chan chan struct{}
	closed     bool

	history    *HistoryBuffer
	moderation *services.ModerationService
	limiter    *ratelimit.MessageRateLimiter

	admin     config.AdminConfig
	adminHash []byte // bcrypt hash of the /login secret

	// seq stamps every outbound event with an increasing number.
	seq atomic.Int64

	log zerolog.Logger
}

// NewHub wires the hub. The admin secret is hashed once here so the
// plaintext is never kept on the struct.
func NewHub(admin config.AdminConfig, history *HistoryBuffer, moderation *services.ModerationService, limiter *ratelimit.MessageRateLimiter, log zerolog.Logger) (*Hub, error) {
	adminHash, err := bcrypt.GenerateFromPassword([]byte(admin.Secret), 12)
	if err != nil {
		return nil, err
	}
	admin.Secret = ""

	return &Hub{
		clients:    make(map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		inbound:    make(chan inbound, 64),
		shutdown:   make(chan chan struct{}),
		history:    history,
		moderation: moderation,
		limiter:    limiter,
		admin:      admin,
		adminHash:  adminHash,
		log:        log,
	}, nil
}

// Run is the hub's event loop. Start it once with `go hub.Run()`; it
// serves until the process exits.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.addClient(client)

		case client := <-h.unregister:
			h.removeClient(client)

		case in := <-h.inbound:
			h.dispatch(in.client, in.text)

		case done := <-h.shutdown:
			h.closeAll()
			close(done)
		}
	}
}

// Shutdown closes every connection and blocks until the hub has
// processed the request. Clients registering afterwards are closed
// immediately.
func (h *Hub) Shutdown() {
	done := make(chan struct{})
	h.shutdown <- done
	<-done
}

// addClient admits a new connection: reject banned fingerprints with a
// single force-close notice, otherwise register and replay history to
// that connection only.
func (h *Hub) addClient(client *Client) {
	if h.closed {
		close(client.send)
		return
	}

	if h.moderation.IsBanned(client.identity.Fingerprint) {
		// Not registered yet, so write the one rejection notice onto
		// the empty buffer directly; the write pump drains it before
		// the closed channel shuts the connection.
		if data, ok := h.encode(Event{Op: OpForceClose, Data: ForceCloseData{Reason: "You are banned from this chat."}}); ok {
			client.send <- data
		}
		close(client.send)
		h.log.Info().
			Str("nickname", client.identity.Nickname).
			Str("fingerprint", client.identity.Fingerprint).
			Msg("rejected banned fingerprint")
		return
	}

	h.clients[client] = struct{}{}
	h.deliver(client, Event{Op: OpMessageHistory, Data: h.history.Snapshot()})

	h.log.Info().
		Str("nickname", client.identity.Nickname).
		Int("online", len(h.clients)).
		Msg("client connected")
}

// removeClient releases a connection. Idempotent: a client already
// gone (or never admitted) is a no-op, so a disconnect racing a forced
// one is harmless.
func (h *Hub) removeClient(client *Client) {
	if _, ok := h.clients[client]; !ok {
		return
	}
	delete(h.clients, client)
	close(client.send)

	h.log.Info().
		Str("nickname", client.identity.Nickname).
		Int("online", len(h.clients)).
		Msg("client disconnected")
}

// forceDisconnect emits a private terminal notice and releases the
// connection.
func (h *Hub) forceDisconnect(client *Client, reason string) {
	h.deliver(client, Event{Op: OpForceClose, Data: ForceCloseData{Reason: reason}})
	h.removeClient(client)
}

// findByNickname returns every live connection using the nickname.
// Nicknames are not unique; moderation verbs act on all matches.
func (h *Hub) findByNickname(nickname string) []*Client {
	var matches []*Client
	for client := range h.clients {
		if client.identity.Nickname == nickname {
			matches = append(matches, client)
		}
	}
	return matches
}

// deliver sends one event to one connection. A connection no longer
// in the registry is a silent no-op, never an error. A full send
// buffer means the client stopped draining; it is dropped rather than
// allowed to stall the hub.
func (h *Hub) deliver(client *Client, event Event) {
	if _, ok := h.clients[client]; !ok {
		return
	}
	data, ok := h.encode(event)
	if !ok {
		return
	}
	select {
	case client.send <- data:
	default:
		h.log.Warn().Str("nickname", client.identity.Nickname).Msg("send buffer full, dropping client")
		h.removeClient(client)
	}
}

// broadcast sends one event to every connection in the registry.
func (h *Hub) broadcast(event Event) {
	data, ok := h.encode(event)
	if !ok {
		return
	}
	for client := range h.clients {
		select {
		case client.send <- data:
		default:
			h.log.Warn().Str("nickname", client.identity.Nickname).Msg("send buffer full, dropping client")
			h.removeClient(client)
		}
	}
}

func (h *Hub) encode(event Event) ([]byte, bool) {
	event.Seq = h.seq.Add(1)
	data, err := json.Marshal(event)
	if err != nil {
		h.log.Error().Err(err).Str("op", event.Op).Msg("failed to marshal event")
		return nil, false
	}
	return data, true
}

func (h *Hub) closeAll() {
	for client := range h.clients {
		close(client.send)
	}
	h.clients = make(map[*Client]struct{})
	h.closed = true
	h.log.Info().Msg("hub shut down, all connections closed")
}
