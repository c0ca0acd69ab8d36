/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"fmt"
)

// Event is one decoded client request. The set of implementations is
// closed; the hub switches over them.
type Event interface {
	eventName() string
}

type CreateRoom struct {
	PresetID       string
	CharacterCount int
}

type JoinRoom struct {
	RoomID string
}

type ChooseCharacter struct {
	RoomID string
	Index  int
}

type Guess struct {
	RoomID  string
	Correct bool
}

type PassTurn struct {
	RoomID string
}

type PlayAgain struct {
	RoomID string
}

// Disconnect is never sent by clients; the transport raises it when a
// connection goes away.
type Disconnect struct{}

func (CreateRoom) eventName() string      { return "createRoom" }
func (JoinRoom) eventName() string        { return "joinRoom" }
func (ChooseCharacter) eventName() string { return "chooseCharacter" }
func (Guess) eventName() string           { return "guess" }
func (PassTurn) eventName() string        { return "passTurn" }
func (PlayAgain) eventName() string       { return "playAgain" }
func (Disconnect) eventName() string      { return "disconnect" }

// ClientMessage is the JSON envelope read off the websocket.
type ClientMessage struct {
	Type           string `json:"type"`
	Ack            uint64 `json:"ack,omitempty"`            // createRoom / joinRoom
	PresetID       string `json:"presetId,omitempty"`       // createRoom
	CharacterCount *int   `json:"characterCount,omitempty"` // createRoom
	RoomID         string `json:"roomId,omitempty"`         // everything else
	CharacterIndex *int   `json:"characterIndex,omitempty"` // chooseCharacter
	WasCorrect     *bool  `json:"wasCorrect,omitempty"`     // guess
}

// decode turns the envelope into an Event, checking field shapes but not
// whether the room exists.
func (m ClientMessage) decode() (Event, error) {
	switch m.Type {
	case "createRoom":
		if m.CharacterCount == nil {
			return nil, fmt.Errorf("%w: missing characterCount", ErrInputInvalid)
		}
		if err := validPresetID(m.PresetID); err != nil {
			return nil, err
		}
		if err := validCharacterCount(*m.CharacterCount); err != nil {
			return nil, err
		}
		return CreateRoom{PresetID: m.PresetID, CharacterCount: *m.CharacterCount}, nil

	case "joinRoom":
		if err := validRoomID(m.RoomID); err != nil {
			return nil, err
		}
		return JoinRoom{RoomID: m.RoomID}, nil

	case "chooseCharacter":
		if err := validRoomID(m.RoomID); err != nil {
			return nil, err
		}
		index := unsetCard
		if m.CharacterIndex != nil {
			index = *m.CharacterIndex
		}
		return ChooseCharacter{RoomID: m.RoomID, Index: index}, nil

	case "guess":
		if err := validRoomID(m.RoomID); err != nil {
			return nil, err
		}
		if m.WasCorrect == nil {
			return nil, fmt.Errorf("%w: missing wasCorrect", ErrInputInvalid)
		}
		return Guess{RoomID: m.RoomID, Correct: *m.WasCorrect}, nil

	case "passTurn":
		if err := validRoomID(m.RoomID); err != nil {
			return nil, err
		}
		return PassTurn{RoomID: m.RoomID}, nil

	case "playAgain":
		if err := validRoomID(m.RoomID); err != nil {
			return nil, err
		}
		return PlayAgain{RoomID: m.RoomID}, nil

	default:
		return nil, fmt.Errorf("%w: unknown message type %q", ErrInputInvalid, m.Type)
	}
}
