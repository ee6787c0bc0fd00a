package model

import "errors"

// Common errors used across the application
var (
	// Player errors
	ErrPlayerNotFound = errors.New("player not found")

	// Room admission errors
	ErrRoomExists       = errors.New("room already exists")
	ErrRoomNotFound     = errors.New("room does not exist")
	ErrRoomFull         = errors.New("room is full")
	ErrRoomNotAccepting = errors.New("room is not accepting more players")
	ErrInvalidRoomName  = errors.New("room name must not be empty")

	// Scoring errors
	ErrInvalidBuffer = errors.New("invalid pixel buffer")

	// Result errors
	ErrResultNotFound = errors.New("result not found")
)
