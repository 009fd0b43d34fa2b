package game

import "errors"

// Validation errors, detected against the latest known snapshot before any
// store write. Store failures surface as domain.UnexpectedDatabaseError
// wraps so callers can tell an invalid move from a failing service.
var (
	ErrInvalidConfig      = errors.New("invalid-config")
	ErrRoomNotJoinable    = errors.New("room-not-joinable")
	ErrRoomFull           = errors.New("room-full")
	ErrNotAuthorized      = errors.New("not-authorized")
	ErrCannotKickHost     = errors.New("cannot-kick-host")
	ErrPlayerNotInRoom    = errors.New("player-not-in-room")
	ErrPlayersNotReady    = errors.New("players-not-ready")
	ErrNotEnoughPlayers   = errors.New("not-enough-players")
	ErrGameAlreadyStarted = errors.New("game-already-started")
	ErrGameNotStarted     = errors.New("game-not-started")
	ErrVotingClosed       = errors.New("voting-closed")
	ErrAlreadyVoted       = errors.New("already-voted")
	ErrInvalidCandidate   = errors.New("invalid-candidate")
)

// ErrRoomEnded is the terminal signal a session reports when the room it was
// subscribed to is deleted remotely. Distinct from domain.ErrRoomNotFound,
// which means the room never existed for this subscriber.
var ErrRoomEnded = errors.New("room-ended")
