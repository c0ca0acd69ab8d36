/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"fmt"
	"strings"
)

const maxPresetIDLength = 64

func validRoomID(id string) error {
	if len(id) != roomIDLength {
		return fmt.Errorf("%w: room code must be %d characters", ErrInputInvalid, roomIDLength)
	}
	for i := 0; i < len(id); i++ {
		if strings.IndexByte(roomIDLetters, id[i]) < 0 {
			return fmt.Errorf("%w: room code contains %q", ErrInputInvalid, id[i])
		}
	}
	return nil
}

func validPresetID(id string) error {
	if id == "" || len(id) > maxPresetIDLength {
		return fmt.Errorf("%w: preset id must be 1-%d characters", ErrInputInvalid, maxPresetIDLength)
	}
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
		default:
			return fmt.Errorf("%w: preset id contains %q", ErrInputInvalid, r)
		}
	}
	return nil
}

func validCharacterCount(n int) error {
	if n < minCharacters || n > maxCharacters {
		return fmt.Errorf("%w: character count must be between %d-%d inclusive: %d",
			ErrInputInvalid, minCharacters, maxCharacters, n)
	}
	return nil
}
