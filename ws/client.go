package ws

import (
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"

	"github.com/acelemming/bubchat/models"
)

const (
	// writeWait bounds a single write to the peer.
	writeWait = 10 * time.Second

	// pongWait is how long the peer may stay silent. Pings go out at
	// pingPeriod so a healthy peer always answers in time.
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10

	// maxMessageSize caps one inbound frame.
	maxMessageSize = 4096

	// sendBufferSize is the per-connection outbound queue. A full
	// buffer means the peer stopped draining; the hub drops it.
	sendBufferSize = 256
)

// Client is one websocket connection and its identity. The isAdmin
// flag lives here so it dies with the connection; only the hub
// goroutine reads or writes it.
type Client struct {
	hub      *Hub
	conn     *websocket.Conn
	id       string // connection handle, unique per accept
	identity models.Identity

	// send buffers outbound frames for the write pump. Closed by the
	// hub when the connection is released.
	send chan []byte

	isAdmin bool
}

// ReadPump reads frames from the connection and queues their text for
// the hub, blocking until the connection dies.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		return
	}
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.hub.log.Debug().
					Str("nickname", c.identity.Nickname).
					Err(err).
					Msg("unexpected close")
			}
			return
		}

		var event Event
		if err := json.Unmarshal(raw, &event); err != nil {
			c.hub.log.Debug().Str("nickname", c.identity.Nickname).Msg("dropping malformed frame")
			continue
		}
		if event.Op != OpMessage {
			continue
		}

		var data MessageData
		payload, err := json.Marshal(event.Data)
		if err != nil {
			continue
		}
		if err := json.Unmarshal(payload, &data); err != nil {
			continue
		}

		c.hub.inbound <- inbound{client: c, text: data.Text}
	}
}

// WritePump drains the send channel onto the connection and keeps the
// peer alive with pings. Exits when the hub closes the channel or a
// write fails.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case data, ok := <-c.send:
			if !ok {
				// Hub released this connection.
				_ = c.write(websocket.CloseMessage, nil)
				return
			}
			if err := c.write(websocket.TextMessage, data); err != nil {
				return
			}

		case <-ticker.C:
			if err := c.write(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) write(messageType int, data []byte) error {
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return c.conn.WriteMessage(messageType, data)
}
