/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"encoding/json"
	"maps"
	"slices"
)

const (
	roomIDLength  = 6
	roomIDLetters = "abcdefghijklmnopqrstuvwxyz0123456789"

	minCharacters = 6
	maxCharacters = 50

	// unsetCard marks a player who has not chosen a character yet. It doubles
	// as the "pick one for me" value on the wire.
	unsetCard = -1
)

// Outcome is the result of a player's final guess.
type Outcome int8

const (
	OutcomeUnset Outcome = iota
	OutcomeCorrect
	OutcomeIncorrect
)

func outcomeOf(correct bool) Outcome {
	if correct {
		return OutcomeCorrect
	}
	return OutcomeIncorrect
}

// MarshalJSON encodes an outcome as null, true or false.
func (o Outcome) MarshalJSON() ([]byte, error) {
	switch o {
	case OutcomeCorrect:
		return []byte("true"), nil
	case OutcomeIncorrect:
		return []byte("false"), nil
	default:
		return []byte("null"), nil
	}
}

func (o *Outcome) UnmarshalJSON(data []byte) error {
	var v *bool
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	switch {
	case v == nil:
		*o = OutcomeUnset
	case *v:
		*o = OutcomeCorrect
	default:
		*o = OutcomeIncorrect
	}
	return nil
}

// RoomState is the authoritative progress of one room. Players hold
// connection IDs; the three maps are keyed by the same IDs.
type RoomState struct {
	ID             string             `json:"id"`
	GameID         string             `json:"gameId"`
	NumOfChars     int                `json:"numOfChars"`
	Players        []string           `json:"players"`
	CurTurn        string             `json:"curTurn"`
	CardIDsToGuess map[string]int     `json:"cardIdsToGuess"`
	PlayAgainReqs  map[string]bool    `json:"playAgainReqs"`
	EndState       map[string]Outcome `json:"endState"`
}

func newRoomState(id, gameID string, numOfChars int) *RoomState {
	return &RoomState{
		ID:             id,
		GameID:         gameID,
		NumOfChars:     numOfChars,
		Players:        []string{},
		CardIDsToGuess: make(map[string]int),
		PlayAgainReqs:  make(map[string]bool),
		EndState:       make(map[string]Outcome),
	}
}

func (s *RoomState) isMember(connID string) bool {
	return slices.Contains(s.Players, connID)
}

// opponent returns the other member, if there is one.
func (s *RoomState) opponent(connID string) (string, bool) {
	if len(s.Players) != 2 {
		return "", false
	}
	for _, p := range s.Players {
		if p != connID {
			return p, true
		}
	}
	return "", false
}

func (s *RoomState) seed(connID string) {
	s.CardIDsToGuess[connID] = unsetCard
	s.PlayAgainReqs[connID] = false
	s.EndState[connID] = OutcomeUnset
}

// Ended reports whether either player has submitted a final guess.
func (s *RoomState) Ended() bool {
	for _, o := range s.EndState {
		if o != OutcomeUnset {
			return true
		}
	}
	return false
}

// snapshot returns a deep copy safe to hand outside the dispatch loop.
func (s *RoomState) snapshot() RoomState {
	c := *s
	c.Players = slices.Clone(s.Players)
	c.CardIDsToGuess = maps.Clone(s.CardIDsToGuess)
	c.PlayAgainReqs = maps.Clone(s.PlayAgainReqs)
	c.EndState = maps.Clone(s.EndState)
	return c
}
