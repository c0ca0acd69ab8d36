/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"context"
	"sync/atomic"

	"github.com/rs/zerolog"
)

type inbound struct {
	client *Client
	name   string // wire type, kept for replying to undecodable requests
	ack    uint64
	event  Event
	err    error
}

// Hub is the single dispatch loop in front of the registry. Every room
// mutation and every write to a client's send queue happens on the
// goroutine running Hub.run.
type Hub struct {
	registry *Registry
	clients  map[string]*Client

	register chan *Client
	events   chan inbound
	done     chan struct{}

	log zerolog.Logger

	roomCount   atomic.Int64
	clientCount atomic.Int64
}

func newHub(registry *Registry, logger zerolog.Logger) *Hub {
	return &Hub{
		registry: registry,
		clients:  make(map[string]*Client),
		register: make(chan *Client),
		events:   make(chan inbound, 64),
		done:     make(chan struct{}),
		log:      logger,
	}
}

func (h *Hub) run(ctx context.Context) {
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return

		case c := <-h.register:
			h.clients[c.id] = c
			h.deliver(c, ConnectedMessage{
				Type:         "connected",
				ConnectionID: c.id,
			})
			h.log.Debug().Str("conn", c.id).Msg("client connected")

		case in := <-h.events:
			h.dispatch(in)
		}

		h.roomCount.Store(int64(h.registry.Len()))
		h.clientCount.Store(int64(len(h.clients)))
	}
}

// submit hands an event to the loop, giving up once the loop has stopped.
func (h *Hub) submit(in inbound) bool {
	select {
	case h.events <- in:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) connect(c *Client) bool {
	select {
	case h.register <- c:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) dispatch(in inbound) {
	c := in.client

	if in.err != nil {
		h.log.Debug().Str("conn", c.id).Str("type", in.name).Err(in.err).Msg("rejected message")
		h.reject(c, in.name, in.ack, in.err)
		return
	}

	switch ev := in.event.(type) {
	case CreateRoom:
		h.createRoom(c, in.ack, ev)
	case JoinRoom:
		h.joinRoom(c, in.ack, ev)
	case ChooseCharacter:
		h.chooseCharacter(c, ev)
	case Guess:
		h.guess(c, ev)
	case PassTurn:
		h.passTurn(c, ev)
	case PlayAgain:
		h.playAgain(c, ev)
	case Disconnect:
		h.disconnect(c)
	default:
		h.log.Error().Str("conn", c.id).Msgf("unhandled event %T", ev)
	}
}

// reject reports a failure to the requesting connection only.
func (h *Hub) reject(c *Client, name string, ack uint64, err error) {
	switch name {
	case "createRoom", "joinRoom":
		h.deliver(c, AckMessage{
			Type:   "ack",
			Ack:    ack,
			Event:  name,
			Status: Status{Success: false, Message: userMessage(err)},
		})
	default:
		h.deliver(c, ErrorMessage{
			Type:    "errorMessage",
			Message: userMessage(err),
		})
	}
}

func (h *Hub) createRoom(c *Client, ack uint64, ev CreateRoom) {
	id, err := h.registry.CreateRoom(ev.PresetID, ev.CharacterCount)
	if err != nil {
		h.reject(c, ev.eventName(), ack, err)
		return
	}

	h.log.Info().Str("room", id).Str("preset", ev.PresetID).Int("characters", ev.CharacterCount).Msg("room created")

	h.deliver(c, AckMessage{
		Type:   "ack",
		Ack:    ack,
		Event:  ev.eventName(),
		RoomID: id,
		Status: Status{Success: true, Message: "Room created"},
	})
}

func (h *Hub) joinRoom(c *Client, ack uint64, ev JoinRoom) {
	before, existed := h.registry.Room(ev.RoomID)
	rejoin := existed && before.isMember(c.id)

	room, err := h.registry.JoinRoom(ev.RoomID, c.id)
	if err != nil {
		h.reject(c, ev.eventName(), ack, err)
		return
	}

	previous := c.roomID
	c.roomID = room.ID
	if previous != "" && previous != room.ID {
		h.leave(c, previous)
	}

	msg := "Joined room"
	if rejoin {
		msg = "Already in room"
	} else {
		h.log.Info().Str("room", room.ID).Str("conn", c.id).Int("players", len(room.Players)).Msg("player joined")
		h.toRoom(room, c.id, RoomStateMessage{Type: "room_state", Reason: reasonOpponentJoined, Room: room})
	}

	h.deliver(c, AckMessage{
		Type:   "ack",
		Ack:    ack,
		Event:  ev.eventName(),
		RoomID: room.ID,
		Room:   &room,
		Status: Status{Success: true, Message: msg},
	})
}

func (h *Hub) chooseCharacter(c *Client, ev ChooseCharacter) {
	room, err := h.registry.ChooseCharacter(ev.RoomID, c.id, ev.Index)
	if err != nil {
		h.reject(c, ev.eventName(), 0, err)
		return
	}

	h.toRoom(room, "", RoomStateMessage{Type: "room_state", Reason: reasonCharacterChosen, Room: room})
}

func (h *Hub) guess(c *Client, ev Guess) {
	room, err := h.registry.Guess(ev.RoomID, c.id, ev.Correct)
	if err != nil {
		h.reject(c, ev.eventName(), 0, err)
		return
	}

	h.log.Debug().Str("room", room.ID).Str("conn", c.id).Bool("correct", ev.Correct).Msg("guess recorded")

	h.toRoom(room, c.id, RoomStateMessage{Type: "room_state", Reason: reasonGuess, Room: room})
}

func (h *Hub) passTurn(c *Client, ev PassTurn) {
	curTurn, changed, err := h.registry.PassTurn(ev.RoomID, c.id)
	if err != nil {
		h.reject(c, ev.eventName(), 0, err)
		return
	}
	if !changed {
		return
	}

	room, ok := h.registry.Room(ev.RoomID)
	if !ok {
		return
	}

	h.toRoom(room, c.id, TurnMessage{Type: "turn", RoomID: room.ID, CurTurn: curTurn})
}

func (h *Hub) playAgain(c *Client, ev PlayAgain) {
	room, reset, err := h.registry.PlayAgain(ev.RoomID, c.id)
	if err != nil {
		h.reject(c, ev.eventName(), 0, err)
		return
	}
	if !reset {
		return
	}

	h.log.Debug().Str("room", room.ID).Msg("rematch started")

	h.toRoom(room, "", RoomStateMessage{Type: "room_state", Reason: reasonPlayAgain, Room: room})
}

func (h *Hub) disconnect(c *Client) {
	if _, ok := h.clients[c.id]; ok {
		delete(h.clients, c.id)
		close(c.send)
	}
	c.roomID = ""

	for _, d := range h.registry.Disconnect(c.id) {
		h.announceDeparture(d)
	}

	h.log.Debug().Str("conn", c.id).Msg("client disconnected")
}

// leave takes c out of one room without closing its connection.
func (h *Hub) leave(c *Client, roomID string) {
	if d, ok := h.registry.Leave(roomID, c.id); ok {
		h.announceDeparture(d)
	}
}

func (h *Hub) announceDeparture(d departure) {
	if d.deleted {
		h.log.Info().Str("room", d.roomID).Msg("room deleted")
		return
	}

	h.toRoom(d.room, "", RoomStateMessage{Type: "room_state", Reason: reasonOpponentLeft, Room: d.room})
}

// toRoom delivers msg to every member of room except the one given.
func (h *Hub) toRoom(room RoomState, except string, msg any) {
	for _, p := range room.Players {
		if p == except {
			continue
		}
		if c, ok := h.clients[p]; ok {
			h.deliver(c, msg)
		}
	}
}

// deliver queues msg without blocking the loop. A client that cannot keep
// up is dropped; its reader then reports the disconnect.
func (h *Hub) deliver(c *Client, msg any) {
	if _, ok := h.clients[c.id]; !ok {
		return
	}

	select {
	case c.send <- msg:
	default:
		h.log.Warn().Str("conn", c.id).Msg("send queue full, dropping client")
		delete(h.clients, c.id)
		close(c.send)
	}
}

func (h *Hub) closeAll() {
	for id, c := range h.clients {
		close(c.send)
		delete(h.clients, id)
	}
}
