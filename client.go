/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

// Client is one websocket connection. roomID is the room the connection
// is bound to and is only read or written by the hub.
type Client struct {
	conn   *websocket.Conn
	send   chan any
	id     string
	roomID string
}

func newClient(conn *websocket.Conn, queueSize int) *Client {
	return &Client{
		conn: conn,
		send: make(chan any, queueSize),
		id:   uuid.New().String(),
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

func serveWS(cfg *Config, h *Hub) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			h.log.Debug().Err(err).Str("remote", realIP(r)).Msg("upgrade failed")
			return
		}

		c := newClient(conn, cfg.queueSize)

		if !h.connect(c) {
			_ = conn.Close()
			return
		}

		h.log.Debug().Str("conn", c.id).Str("remote", realIP(r)).Msg("upgraded")

		go c.writePump()
		c.readPump(h, cfg.maxMessageSize)
	}
}

func (c *Client) readPump(h *Hub, maxMessageSize int64) {
	defer func() {
		h.submit(inbound{client: c, event: Disconnect{}})
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, payload, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.log.Debug().Str("conn", c.id).Err(err).Msg("read failed")
			}
			return
		}

		in := inbound{client: c}

		var msg ClientMessage
		if err := json.Unmarshal(payload, &msg); err != nil {
			in.err = fmt.Errorf("%w: malformed message", ErrInputInvalid)
		} else {
			in.name = msg.Type
			in.ack = msg.Ack
			in.event, in.err = msg.decode()
		}

		if !h.submit(in) {
			return
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteJSON(msg); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
