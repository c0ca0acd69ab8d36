/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"crypto/rand"
	"fmt"
	mrand "math/rand/v2"
	"slices"
)

// Registry owns every active room. It does no locking of its own; the hub
// is its only caller and runs one event at a time.
type Registry struct {
	rooms map[string]*RoomState

	newID func() string
	intn  func(n int) int
}

// departure describes what a disconnect left behind in one room.
type departure struct {
	roomID  string
	room    RoomState
	deleted bool
}

func NewRegistry() *Registry {
	return &Registry{
		rooms: make(map[string]*RoomState),
		newID: randomRoomID,
		intn:  mrand.IntN,
	}
}

// randomRoomID generates a crypto-random room code. Collision checks are
// the caller's job.
func randomRoomID() string {
	buf := make([]byte, roomIDLength)
	if _, err := rand.Read(buf); err != nil {
		panic("crypto/rand failure: " + err.Error())
	}
	out := make([]byte, roomIDLength)
	for i := range out {
		out[i] = roomIDLetters[int(buf[i])%len(roomIDLetters)]
	}
	return string(out)
}

func (r *Registry) Len() int {
	return len(r.rooms)
}

func (r *Registry) Room(roomID string) (RoomState, bool) {
	s, ok := r.rooms[roomID]
	if !ok {
		return RoomState{}, false
	}
	return s.snapshot(), true
}

func (r *Registry) member(roomID, connID string) (*RoomState, error) {
	s, ok := r.rooms[roomID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrRoomNotFound, roomID)
	}
	if !s.isMember(connID) {
		return nil, fmt.Errorf("%w: %s", ErrNotAMember, roomID)
	}
	return s, nil
}

func (r *Registry) CreateRoom(presetID string, numOfChars int) (string, error) {
	if err := validPresetID(presetID); err != nil {
		return "", err
	}
	if err := validCharacterCount(numOfChars); err != nil {
		return "", err
	}

	var id string
	for {
		id = r.newID()
		if _, exists := r.rooms[id]; !exists {
			break
		}
	}

	r.rooms[id] = newRoomState(id, presetID, numOfChars)

	return id, nil
}

// JoinRoom adds connID to the room. Rejoining is a no-op. Turn order is
// drawn only when the second player arrives.
func (r *Registry) JoinRoom(roomID, connID string) (RoomState, error) {
	s, ok := r.rooms[roomID]
	if !ok {
		return RoomState{}, fmt.Errorf("%w: %s", ErrRoomNotFound, roomID)
	}

	if s.isMember(connID) {
		return s.snapshot(), nil
	}

	if len(s.Players) >= 2 {
		return RoomState{}, fmt.Errorf("%w: %s", ErrRoomFull, roomID)
	}

	s.Players = append(s.Players, connID)
	s.seed(connID)

	if len(s.Players) == 2 {
		s.CurTurn = s.Players[r.intn(2)]
	}

	return s.snapshot(), nil
}

// ChooseCharacter stores the card connID's opponent has to guess. Anything
// outside [0, NumOfChars) is replaced with a random card.
func (r *Registry) ChooseCharacter(roomID, connID string, index int) (RoomState, error) {
	s, err := r.member(roomID, connID)
	if err != nil {
		return RoomState{}, err
	}

	if index < 0 || index >= s.NumOfChars {
		index = r.intn(s.NumOfChars)
	}
	s.CardIDsToGuess[connID] = index

	return s.snapshot(), nil
}

func (r *Registry) Guess(roomID, connID string, correct bool) (RoomState, error) {
	s, err := r.member(roomID, connID)
	if err != nil {
		return RoomState{}, err
	}

	s.EndState[connID] = outcomeOf(correct)

	return s.snapshot(), nil
}

// PassTurn hands the turn to the other player. changed is false when there
// is nobody to hand it to.
func (r *Registry) PassTurn(roomID, connID string) (curTurn string, changed bool, err error) {
	s, err := r.member(roomID, connID)
	if err != nil {
		return "", false, err
	}

	other, ok := s.opponent(connID)
	if !ok {
		return s.CurTurn, false, nil
	}
	s.CurTurn = other

	return s.CurTurn, true, nil
}

// PlayAgain records a rematch vote. reset is true when the vote completed a
// unanimous pair and the round state was cleared.
func (r *Registry) PlayAgain(roomID, connID string) (room RoomState, reset bool, err error) {
	s, err := r.member(roomID, connID)
	if err != nil {
		return RoomState{}, false, err
	}

	s.PlayAgainReqs[connID] = true

	if len(s.Players) < 2 {
		return s.snapshot(), false, nil
	}
	for _, p := range s.Players {
		if !s.PlayAgainReqs[p] {
			return s.snapshot(), false, nil
		}
	}

	for _, p := range s.Players {
		s.seed(p)
	}

	return s.snapshot(), true, nil
}

// Leave removes connID from a single room.
func (r *Registry) Leave(roomID, connID string) (departure, bool) {
	s, ok := r.rooms[roomID]
	if !ok || !s.isMember(connID) {
		return departure{}, false
	}

	s.Players = slices.DeleteFunc(s.Players, func(p string) bool { return p == connID })
	delete(s.CardIDsToGuess, connID)
	delete(s.PlayAgainReqs, connID)
	delete(s.EndState, connID)
	s.CurTurn = ""

	if len(s.Players) == 0 {
		delete(r.rooms, roomID)
		return departure{roomID: roomID, deleted: true}, true
	}

	return departure{roomID: roomID, room: s.snapshot()}, true
}

// Disconnect removes connID from every room it is in.
func (r *Registry) Disconnect(connID string) []departure {
	var out []departure
	for id, s := range r.rooms {
		if !s.isMember(connID) {
			continue
		}
		if d, ok := r.Leave(id, connID); ok {
			out = append(out, d)
		}
	}
	return out
}
