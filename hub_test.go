/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"io"
	"testing"

	"github.com/rs/zerolog"
)

// testHub is driven by calling dispatch directly, standing in for the loop.
func testHub(t *testing.T, pick int, ids ...string) *Hub {
	t.Helper()
	return newHub(newTestRegistry(pick, ids...), zerolog.New(io.Discard))
}

func attach(h *Hub, id string) *Client {
	c := &Client{id: id, send: make(chan any, 16)}
	h.clients[id] = c
	return c
}

func drain(c *Client) []any {
	var out []any
	for {
		select {
		case msg, ok := <-c.send:
			if !ok {
				return out
			}
			out = append(out, msg)
		default:
			return out
		}
	}
}

func only[T any](t *testing.T, c *Client) T {
	t.Helper()
	msgs := drain(c)
	if len(msgs) != 1 {
		t.Fatalf("%s: got %d messages %#v, want 1", c.id, len(msgs), msgs)
	}
	msg, ok := msgs[0].(T)
	if !ok {
		t.Fatalf("%s: got %T, want %T", c.id, msgs[0], *new(T))
	}
	return msg
}

func none(t *testing.T, c *Client) {
	t.Helper()
	if msgs := drain(c); len(msgs) != 0 {
		t.Fatalf("%s: unexpected messages %#v", c.id, msgs)
	}
}

func send(h *Hub, c *Client, name string, ack uint64, ev Event) {
	h.dispatch(inbound{client: c, name: name, ack: ack, event: ev})
}

// setupPair creates abc123 and seats a and b in it, discarding the acks.
func setupPair(t *testing.T, h *Hub) (*Client, *Client) {
	t.Helper()
	a, b := attach(h, "connA"), attach(h, "connB")
	send(h, a, "createRoom", 1, CreateRoom{PresetID: "P1", CharacterCount: 8})
	send(h, a, "joinRoom", 2, JoinRoom{RoomID: "abc123"})
	send(h, b, "joinRoom", 1, JoinRoom{RoomID: "abc123"})
	drain(a)
	drain(b)
	return a, b
}

func TestHubCreateAndJoinAcks(t *testing.T) {
	h := testHub(t, 0, "abc123")
	a, b := attach(h, "connA"), attach(h, "connB")

	send(h, a, "createRoom", 7, CreateRoom{PresetID: "P1", CharacterCount: 8})
	created := only[AckMessage](t, a)
	if !created.Status.Success || created.RoomID != "abc123" || created.Ack != 7 {
		t.Fatalf("got %+v", created)
	}

	send(h, a, "joinRoom", 8, JoinRoom{RoomID: "abc123"})
	joined := only[AckMessage](t, a)
	if !joined.Status.Success || joined.Room == nil || len(joined.Room.Players) != 1 || joined.Ack != 8 {
		t.Fatalf("got %+v", joined)
	}
	if a.roomID != "abc123" {
		t.Errorf("connection not bound to room")
	}

	send(h, b, "joinRoom", 1, JoinRoom{RoomID: "abc123"})
	joined = only[AckMessage](t, b)
	if joined.Room.CurTurn == "" {
		t.Fatalf("turn not assigned on second join")
	}

	pushed := only[RoomStateMessage](t, a)
	if pushed.Reason != reasonOpponentJoined || len(pushed.Room.Players) != 2 {
		t.Fatalf("got %+v", pushed)
	}

	send(h, b, "joinRoom", 2, JoinRoom{RoomID: "abc123"})
	again := only[AckMessage](t, b)
	if !again.Status.Success || again.Room.CurTurn != joined.Room.CurTurn {
		t.Fatalf("rejoin: got %+v", again)
	}
	none(t, a)
}

func TestHubJoinFailuresStayPrivate(t *testing.T) {
	h := testHub(t, 0, "abc123")
	a, b := setupPair(t, h)
	c := attach(h, "connC")

	send(h, c, "joinRoom", 3, JoinRoom{RoomID: "abc123"})
	full := only[AckMessage](t, c)
	if full.Status.Success || full.Status.Message != userMessage(ErrRoomFull) {
		t.Fatalf("got %+v", full)
	}

	send(h, c, "joinRoom", 4, JoinRoom{RoomID: "zzz999"})
	missing := only[AckMessage](t, c)
	if missing.Status.Success || missing.Status.Message != userMessage(ErrRoomNotFound) {
		t.Fatalf("got %+v", missing)
	}

	none(t, a)
	none(t, b)
}

func TestHubRejectsDecodeErrors(t *testing.T) {
	h := testHub(t, 0, "abc123")
	a, b := setupPair(t, h)

	_, err := ClientMessage{Type: "joinRoom", RoomID: "NOPE"}.decode()
	h.dispatch(inbound{client: a, name: "joinRoom", ack: 9, err: err})
	ack := only[AckMessage](t, a)
	if ack.Status.Success || ack.Ack != 9 {
		t.Fatalf("got %+v", ack)
	}

	_, err = ClientMessage{Type: "guess", RoomID: "abc123"}.decode()
	h.dispatch(inbound{client: a, name: "guess", err: err})
	only[ErrorMessage](t, a)

	none(t, b)
}

func TestHubChooseCharacterPushesToBoth(t *testing.T) {
	h := testHub(t, 0, "abc123")
	a, b := setupPair(t, h)

	send(h, a, "chooseCharacter", 0, ChooseCharacter{RoomID: "abc123", Index: 3})

	for _, c := range []*Client{a, b} {
		msg := only[RoomStateMessage](t, c)
		if msg.Reason != reasonCharacterChosen || msg.Room.CardIDsToGuess["connA"] != 3 {
			t.Fatalf("%s: got %+v", c.id, msg)
		}
	}

	outsider := attach(h, "connC")
	send(h, outsider, "chooseCharacter", 0, ChooseCharacter{RoomID: "abc123", Index: 1})
	errMsg := only[ErrorMessage](t, outsider)
	if errMsg.Message != userMessage(ErrNotAMember) {
		t.Fatalf("got %+v", errMsg)
	}
	none(t, a)
	none(t, b)
}

func TestHubPassTurnPartialUpdate(t *testing.T) {
	h := testHub(t, 0, "abc123")
	a, b := setupPair(t, h)

	send(h, a, "passTurn", 0, PassTurn{RoomID: "abc123"})
	turn := only[TurnMessage](t, b)
	if turn.CurTurn != "connB" || turn.RoomID != "abc123" {
		t.Fatalf("got %+v", turn)
	}
	none(t, a)
}

func TestHubGuessAndUnanimousPlayAgain(t *testing.T) {
	h := testHub(t, 0, "abc123")
	a, b := setupPair(t, h)

	send(h, a, "guess", 0, Guess{RoomID: "abc123", Correct: true})
	msg := only[RoomStateMessage](t, b)
	if msg.Room.EndState["connA"] != OutcomeCorrect {
		t.Fatalf("got %+v", msg)
	}
	none(t, a)

	send(h, a, "playAgain", 0, PlayAgain{RoomID: "abc123"})
	send(h, a, "playAgain", 0, PlayAgain{RoomID: "abc123"})
	none(t, a)
	none(t, b)

	send(h, b, "playAgain", 0, PlayAgain{RoomID: "abc123"})
	for _, c := range []*Client{a, b} {
		msg := only[RoomStateMessage](t, c)
		if msg.Reason != reasonPlayAgain || msg.Room.EndState["connA"] != OutcomeUnset {
			t.Fatalf("%s: got %+v", c.id, msg)
		}
	}
}

func TestHubDisconnect(t *testing.T) {
	h := testHub(t, 0, "abc123")
	a, b := setupPair(t, h)

	send(h, a, "", 0, Disconnect{})

	if _, ok := h.clients["connA"]; ok {
		t.Fatalf("client still registered")
	}
	if _, ok := <-a.send; ok {
		t.Fatalf("send queue not closed")
	}

	left := only[RoomStateMessage](t, b)
	if left.Reason != reasonOpponentLeft || len(left.Room.Players) != 1 || left.Room.CurTurn != "" {
		t.Fatalf("got %+v", left)
	}

	c := attach(h, "connC")
	send(h, c, "joinRoom", 1, JoinRoom{RoomID: "abc123"})
	joined := only[AckMessage](t, c)
	if joined.Room.CurTurn != "connB" {
		t.Fatalf("got curTurn %q, want fresh assignment", joined.Room.CurTurn)
	}
	only[RoomStateMessage](t, b)

	send(h, b, "", 0, Disconnect{})
	send(h, c, "", 0, Disconnect{})
	if h.registry.Len() != 0 {
		t.Fatalf("room survived its last player")
	}
}

func TestHubSwitchingRoomsLeavesTheOldOne(t *testing.T) {
	h := testHub(t, 0, "abc123", "def456")
	a, b := setupPair(t, h)

	send(h, a, "createRoom", 3, CreateRoom{PresetID: "P2", CharacterCount: 10})
	drain(a)
	send(h, a, "joinRoom", 4, JoinRoom{RoomID: "def456"})

	joined := only[AckMessage](t, a)
	if joined.RoomID != "def456" || a.roomID != "def456" {
		t.Fatalf("got %+v bound to %q", joined, a.roomID)
	}

	left := only[RoomStateMessage](t, b)
	if left.Reason != reasonOpponentLeft || len(left.Room.Players) != 1 {
		t.Fatalf("got %+v", left)
	}
}

func TestHubDropsSlowClient(t *testing.T) {
	h := testHub(t, 0, "abc123")
	a, b := setupPair(t, h)
	b.send = make(chan any, 1)
	b.send <- "backlog"

	send(h, a, "guess", 0, Guess{RoomID: "abc123", Correct: false})

	if _, ok := h.clients["connB"]; ok {
		t.Fatalf("slow client still registered")
	}
	if s, _ := h.registry.Room("abc123"); len(s.Players) != 2 {
		t.Fatalf("slot forfeited before the reader reported the disconnect")
	}

	send(h, b, "", 0, Disconnect{})
	left := only[RoomStateMessage](t, a)
	if left.Reason != reasonOpponentLeft {
		t.Fatalf("got %+v", left)
	}
}
