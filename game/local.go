package game

import (
	"math/rand"
	"time"

	"github.com/bas390/Spyfall/catalog"
	"github.com/bas390/Spyfall/domain"
)

// LocalEngine runs a whole game on one device: the same room shape and the
// same rules as the networked coordinator, executed synchronously against
// in-memory state. No store, no heartbeats, no reaper: a single process is
// its own authority.
type LocalEngine struct {
	room      domain.Room
	locations []catalog.Location
	rng       *rand.Rand
	now       func() time.Time
}

func NewLocalEngine(cfg RoomConfig, players []Identity, locations []catalog.Location, rng *rand.Rand) (*LocalEngine, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if len(players) < MinPlayers || len(players) > cfg.MaxPlayers {
		return nil, ErrInvalidConfig
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	e := &LocalEngine{
		locations: locations,
		rng:       rng,
		now:       time.Now,
	}
	now := e.now().UnixMilli()
	list := make([]domain.Player, len(players))
	for i, p := range players {
		list[i] = domain.Player{
			Id:      p.Id,
			Name:    p.Name,
			IsHost:  i == 0,
			IsReady: true, // everyone is at the same table
		}
	}
	e.room = domain.Room{
		Code:            "local",
		Status:          domain.StatusWaiting,
		MaxPlayers:      cfg.MaxPlayers,
		SpyCount:        cfg.SpyCount,
		GameTimeSeconds: cfg.GameTimeSeconds,
		Categories:      categoryNames(cfg.Categories),
		Players:         list,
		Spies:           []int{},
		Votes:           []int{},
		VotedPlayers:    []string{},
		CreatedAt:       now,
		LastActivity:    now,
	}
	return e, nil
}

// Room returns a copy of the current state.
func (e *LocalEngine) Room() domain.Room {
	return e.room.Clone()
}

// StartGame commits the spy and location assignment, exactly once.
func (e *LocalEngine) StartGame() error {
	if e.room.Status != domain.StatusWaiting {
		return ErrGameAlreadyStarted
	}
	if e.room.SpyCount > len(e.room.Players)/2 {
		return ErrNotEnoughPlayers
	}

	pool := e.locationPool()
	e.room.Spies = assignSpies(e.rng, len(e.room.Players), e.room.SpyCount)
	loc := pickLocation(e.rng, pool)
	e.room.Location = &domain.Location{Name: loc.Name, Roles: loc.Roles}
	e.room.Status = domain.StatusPlaying
	e.room.StartedAt = e.now().UnixMilli()
	return nil
}

func (e *LocalEngine) StartVotingRound() error {
	if e.room.Status != domain.StatusPlaying {
		return ErrGameNotStarted
	}
	e.room.IsVoting = true
	e.room.ShowVoteResult = false
	e.room.Votes = make([]int, len(e.room.Players))
	e.room.VotedPlayers = []string{}
	return nil
}

func (e *LocalEngine) CastVote(voterId string, candidateIndex int) error {
	if !e.room.IsVoting {
		return ErrVotingClosed
	}
	voterIndex := e.room.PlayerIndex(voterId)
	if voterIndex < 0 {
		return ErrPlayerNotInRoom
	}
	if candidateIndex < 0 || candidateIndex >= len(e.room.Players) || candidateIndex == voterIndex {
		return ErrInvalidCandidate
	}
	if e.room.HasVoted(voterId) {
		return ErrAlreadyVoted
	}

	e.room.Votes[candidateIndex]++
	e.room.VotedPlayers = append(e.room.VotedPlayers, voterId)
	if len(e.room.VotedPlayers) >= len(e.room.Players) {
		e.room.IsVoting = false
		e.room.ShowVoteResult = true
	}
	return nil
}

func (e *LocalEngine) ResolveVote() (VoteOutcome, error) {
	if e.room.Status != domain.StatusPlaying {
		return VoteOutcome{}, ErrGameNotStarted
	}
	if len(e.room.Votes) == 0 {
		return VoteOutcome{}, ErrVotingClosed
	}

	leading, tie := tallyVotes(e.room.Votes)
	if tie {
		return VoteOutcome{Tie: true}, nil
	}

	winner := domain.WinnerSpy
	if e.room.IsSpy(leading) {
		winner = domain.WinnerPlayers
	}
	e.room.IsVoting = false
	e.room.ShowVoteResult = true
	e.room.VotedSpy = &leading
	e.room.Winner = winner
	return VoteOutcome{LeadingIndex: leading, Winner: winner}, nil
}

// FinishGame closes the session. The winner argument covers the timer
// running out; a winner already decided by ResolveVote wins.
func (e *LocalEngine) FinishGame(winner domain.Winner) error {
	if e.room.Status != domain.StatusPlaying {
		return ErrGameNotStarted
	}
	if e.room.Winner != domain.WinnerNone {
		winner = e.room.Winner
	}
	e.room.Winner = winner
	e.room.Status = domain.StatusFinished
	return nil
}

func (e *LocalEngine) locationPool() []catalog.Location {
	if len(e.room.Categories) == 0 {
		return e.locations
	}
	wanted := make([]catalog.Category, len(e.room.Categories))
	for i, s := range e.room.Categories {
		wanted[i] = catalog.Category(s)
	}
	pool := filterLocations(e.locations, wanted)
	if len(pool) == 0 {
		return e.locations
	}
	return pool
}
