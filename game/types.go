package game

import (
	"time"

	"github.com/bas390/Spyfall/catalog"
	"github.com/bas390/Spyfall/domain"
)

const (
	MinPlayers = 3
	MaxPlayers = 12

	RoomCodeLength = 6

	// Room codes avoid characters that read ambiguously on a shared screen.
	RoomCodeChars = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

	HeartbeatInterval  = 10 * time.Second
	StaleScanInterval  = 10 * time.Second
	StaleAfter         = 30 * time.Second
	ReaperInterval     = 60 * time.Second
	RoomIdleAfter      = time.Hour
	createCodeAttempts = 5
)

// RoomConfig is fixed at room creation.
type RoomConfig struct {
	MaxPlayers      int                `json:"maxPlayers"`
	SpyCount        int                `json:"spyCount"`
	GameTimeSeconds int                `json:"gameTimeSeconds"`
	Categories      []catalog.Category `json:"categories,omitempty"`
}

func (c RoomConfig) validate() error {
	if c.MaxPlayers < MinPlayers || c.MaxPlayers > MaxPlayers {
		return ErrInvalidConfig
	}
	if c.SpyCount < 1 || c.SpyCount > c.MaxPlayers/2 {
		return ErrInvalidConfig
	}
	if c.GameTimeSeconds <= 0 {
		return ErrInvalidConfig
	}
	return nil
}

// Identity is the opaque authenticated user the coordinator acts for.
type Identity struct {
	Id   string `json:"id"`
	Name string `json:"name"`
}

// VoteOutcome is the result of resolving a voting round. A tie is a signaled
// outcome, not an error: the caller must start a fresh round.
type VoteOutcome struct {
	Tie          bool          `json:"tie"`
	LeadingIndex int           `json:"leadingIndex"`
	Winner       domain.Winner `json:"winner,omitempty"`
}
