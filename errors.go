/*
Copyright © 2025 Seednode <seednode@seedno.de>
*/

package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"
)

var (
	ErrInputInvalid = errors.New("invalid input")
	ErrRoomNotFound = errors.New("room not found")
	ErrRoomFull     = errors.New("room is full")
	ErrNotAMember   = errors.New("not a member of this room")
)

// userMessage turns a coordinator error into the text shown to a player.
func userMessage(err error) string {
	switch {
	case errors.Is(err, ErrRoomNotFound):
		return "That room does not exist (anymore)."
	case errors.Is(err, ErrRoomFull):
		return "That room already has two players."
	case errors.Is(err, ErrNotAMember):
		return "You are not in that room."
	case errors.Is(err, ErrInputInvalid):
		return err.Error()
	default:
		return "Something went wrong."
	}
}

func newLogger(cfg *Config, w io.Writer) zerolog.Logger {
	level := zerolog.WarnLevel
	if cfg.verbose {
		level = zerolog.DebugLevel
	}

	if !cfg.jsonLogs {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: logDate, NoColor: true}
	}

	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}

func newPage(title, body string) string {
	var htmlBody strings.Builder

	htmlBody.WriteString(`<!DOCTYPE html><html lang="en"><head>`)
	htmlBody.WriteString(getFavicon())
	htmlBody.WriteString(`<style>`)
	htmlBody.WriteString(`html,body,a{display:block;height:100%;width:100%;text-decoration:none;color:inherit;cursor:auto;}</style>`)
	htmlBody.WriteString(fmt.Sprintf("<title>%s</title></head>", title))
	htmlBody.WriteString(fmt.Sprintf("<body><a href=\"/\">%s</a></body></html>", body))

	return htmlBody.String()
}
