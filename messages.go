/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

// Status is carried by every acknowledgement.
type Status struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// ConnectedMessage is sent once, right after the upgrade, so the client
// knows which entry in players / curTurn is its own.
type ConnectedMessage struct {
	Type         string `json:"type"` // "connected"
	ConnectionID string `json:"connectionId"`
}

// AckMessage answers createRoom and joinRoom, echoing the client's ack number.
type AckMessage struct {
	Type   string     `json:"type"`  // "ack"
	Ack    uint64     `json:"ack"`   // correlation number chosen by the client
	Event  string     `json:"event"` // "createRoom" or "joinRoom"
	RoomID string     `json:"roomId,omitempty"`
	Room   *RoomState `json:"room,omitempty"`
	Status Status     `json:"status"`
}

// RoomStateMessage pushes a full snapshot to room members.
type RoomStateMessage struct {
	Type   string    `json:"type"`   // "room_state"
	Reason string    `json:"reason"` // what changed
	Room   RoomState `json:"room"`
}

// TurnMessage is the partial update sent after passTurn.
type TurnMessage struct {
	Type    string `json:"type"` // "turn"
	RoomID  string `json:"roomId"`
	CurTurn string `json:"curTurn"`
}

// ErrorMessage goes only to the connection whose request failed.
type ErrorMessage struct {
	Type    string `json:"type"` // "errorMessage"
	Message string `json:"message"`
}

const (
	reasonCharacterChosen = "character_chosen"
	reasonGuess           = "guess"
	reasonPlayAgain       = "play_again"
	reasonOpponentJoined  = "opponent_joined"
	reasonOpponentLeft    = "opponent_left"
)
