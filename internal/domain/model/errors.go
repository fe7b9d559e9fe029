package model

import "errors"

// Sentinel kinds for payload and identifier errors.
var (
	ErrInvalidID      = errors.New("invalid game id")
	ErrMissingPlayer1 = errors.New("missing player1")
	ErrMissingPlayer2 = errors.New("missing player2")
)
