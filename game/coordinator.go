package game

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/bas390/Spyfall/catalog"
	"github.com/bas390/Spyfall/domain"
)

// Coordinator is the single point through which a client expresses intent
// against a networked room. Every mutation re-validates against the latest
// snapshot read from the store, never against a cached local mirror, and
// every write goes through a domain.RoomPatch so field-level invariants stay
// in one place.
type Coordinator struct {
	store     RoomStore
	recorder  GameRecorder
	locations []catalog.Location
	tickerGen PeriodicTickerChannelCreator

	rngMu sync.Mutex
	rng   *rand.Rand

	// roomLocks serializes this process's own in-flight intents per room,
	// so a duplicate submission of the same intent is validated against the
	// outcome of the first rather than racing it. Cross-process writes stay
	// last-write-wins at the field level.
	lockMu    sync.Mutex
	roomLocks map[string]*sync.Mutex

	now     func() time.Time
	genCode func() string
}

func NewCoordinator(store RoomStore, recorder GameRecorder, locations []catalog.Location, tickerGen PeriodicTickerChannelCreator, rng *rand.Rand) *Coordinator {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Coordinator{
		store:     store,
		recorder:  recorder,
		locations: locations,
		tickerGen: tickerGen,
		rng:       rng,
		roomLocks: map[string]*sync.Mutex{},
		now:       time.Now,
		genCode:   generateRoomCode,
	}
}

func (c *Coordinator) nowMillis() int64 {
	return c.now().UnixMilli()
}

func (c *Coordinator) lockRoom(code string) func() {
	c.lockMu.Lock()
	mu, ok := c.roomLocks[code]
	if !ok {
		mu = &sync.Mutex{}
		c.roomLocks[code] = mu
	}
	c.lockMu.Unlock()
	mu.Lock()
	return mu.Unlock
}

func (c *Coordinator) releaseRoom(code string) {
	c.lockMu.Lock()
	delete(c.roomLocks, code)
	c.lockMu.Unlock()
}

// CreateRoom allocates a code, seeds the room with the host player and
// persists it. Code generation is not collision-free; the store's
// create-if-absent is the arbiter and a handful of collisions are retried
// here before giving up.
func (c *Coordinator) CreateRoom(ctx context.Context, cfg RoomConfig, host Identity) (string, error) {
	if err := cfg.validate(); err != nil {
		return "", err
	}

	now := c.nowMillis()
	for attempt := 0; attempt < createCodeAttempts; attempt++ {
		code := c.genCode()
		room := domain.Room{
			Code:            code,
			Status:          domain.StatusWaiting,
			MaxPlayers:      cfg.MaxPlayers,
			SpyCount:        cfg.SpyCount,
			GameTimeSeconds: cfg.GameTimeSeconds,
			Categories:      categoryNames(cfg.Categories),
			Players: []domain.Player{{
				Id:       host.Id,
				Name:     host.Name,
				IsHost:   true,
				IsReady:  false,
				LastSeen: now,
			}},
			Votes:        []int{},
			VotedPlayers: []string{},
			Spies:        []int{},
			CreatedAt:    now,
			LastActivity: now,
		}

		err := c.store.Create(ctx, room)
		switch {
		case err == nil:
			return code, nil
		case isRoomExists(err):
			continue
		default:
			return "", err
		}
	}
	return "", fmt.Errorf("%w: exhausted room code attempts", domain.ErrRoomExists)
}

// GetRoom returns the current snapshot of the shared document.
func (c *Coordinator) GetRoom(ctx context.Context, code string) (domain.Room, error) {
	room, err := c.store.Get(ctx, code)
	if err != nil {
		return domain.Room{}, err
	}
	room.Normalize()
	return room, nil
}

// JoinRoom admits a player to a waiting, non-full room. Failures are
// terminal for the attempt; the core never retries silently.
func (c *Coordinator) JoinRoom(ctx context.Context, code string, player Identity) error {
	unlock := c.lockRoom(code)
	defer unlock()

	room, err := c.store.Get(ctx, code)
	if err != nil {
		return err
	}
	room.Normalize()

	if room.Status != domain.StatusWaiting {
		return ErrRoomNotJoinable
	}
	if room.HasPlayer(player.Id) {
		return nil // already in, nothing to do
	}
	if room.IsFull() {
		return ErrRoomFull
	}

	now := c.nowMillis()
	players := append(room.Players, domain.Player{
		Id:       player.Id,
		Name:     player.Name,
		LastSeen: now,
	})
	return c.store.Update(ctx, code, domain.RoomPatch{
		Players:      &players,
		LastActivity: &now,
	})
}

// ToggleReady flips the caller's readiness. A player no longer in the room
// is a no-op, not an error: the kick may simply have won the race.
func (c *Coordinator) ToggleReady(ctx context.Context, code, playerId string) error {
	unlock := c.lockRoom(code)
	defer unlock()

	room, err := c.store.Get(ctx, code)
	if err != nil {
		return err
	}
	room.Normalize()

	i := room.PlayerIndex(playerId)
	if i < 0 {
		return nil
	}
	players := room.Players
	players[i].IsReady = !players[i].IsReady

	now := c.nowMillis()
	return c.store.Update(ctx, code, domain.RoomPatch{
		Players:      &players,
		LastActivity: &now,
	})
}

func (c *Coordinator) KickPlayer(ctx context.Context, code, playerId, requestedBy string) error {
	unlock := c.lockRoom(code)
	defer unlock()

	room, err := c.store.Get(ctx, code)
	if err != nil {
		return err
	}
	room.Normalize()

	if !c.isHost(room, requestedBy) {
		return ErrNotAuthorized
	}
	i := room.PlayerIndex(playerId)
	if i < 0 {
		return ErrPlayerNotInRoom
	}
	if room.Players[i].IsHost {
		return ErrCannotKickHost
	}

	removals := []domain.Removal{{PlayerId: playerId, Reason: domain.RemovalKicked}}
	return c.applyRemoval(ctx, code, room, removals)
}

// StartGame is the single irreversible randomness commit point: it assigns
// the spies and the location exactly once, stamps the start time and flips
// the room to playing. Reconnects observe the stored assignment, they never
// recompute it.
func (c *Coordinator) StartGame(ctx context.Context, code, requestedBy string) error {
	unlock := c.lockRoom(code)
	defer unlock()

	room, err := c.store.Get(ctx, code)
	if err != nil {
		return err
	}
	room.Normalize()

	if !c.isHost(room, requestedBy) {
		return ErrNotAuthorized
	}
	if room.Status != domain.StatusWaiting {
		return ErrGameAlreadyStarted
	}
	if len(room.Players) < MinPlayers || room.SpyCount > len(room.Players)/2 {
		return ErrNotEnoughPlayers
	}
	if !room.AllReady() {
		return ErrPlayersNotReady
	}

	pool := c.locationPool(room.Categories)
	c.rngMu.Lock()
	spies := assignSpies(c.rng, len(room.Players), room.SpyCount)
	loc := pickLocation(c.rng, pool)
	c.rngMu.Unlock()

	status := domain.StatusPlaying
	location := domain.Location{Name: loc.Name, Roles: loc.Roles}
	now := c.nowMillis()
	return c.store.Update(ctx, code, domain.RoomPatch{
		Status:       &status,
		Spies:        &spies,
		Location:     &location,
		StartedAt:    &now,
		LastActivity: &now,
	})
}

// LeaveRoom removes the caller. A leaving host ends the session for
// everyone: the room flips to deleted and the document is removed, there is
// no host migration.
func (c *Coordinator) LeaveRoom(ctx context.Context, code, playerId string) error {
	unlock := c.lockRoom(code)
	defer unlock()

	room, err := c.store.Get(ctx, code)
	if err != nil {
		return err
	}
	room.Normalize()

	i := room.PlayerIndex(playerId)
	if i < 0 {
		return nil
	}

	if room.Players[i].IsHost {
		if err := c.deleteRoom(ctx, code); err != nil {
			return err
		}
		c.releaseRoom(code)
		return nil
	}

	removals := []domain.Removal{{PlayerId: playerId, Reason: domain.RemovalLeft}}
	return c.applyRemoval(ctx, code, room, removals)
}

// applyRemoval removes the named players in one patch, remapping the
// positional spies and votes so the surviving indices keep pointing at the
// same people. Removing the last spy mid-game ends it in the players'
// favor: a spy who disappears counts as caught. A removal that leaves every
// remaining voter accounted for closes the open round.
func (c *Coordinator) applyRemoval(ctx context.Context, code string, room domain.Room, removals []domain.Removal) error {
	gone := make(map[string]bool, len(removals))
	for _, r := range removals {
		gone[r.PlayerId] = true
	}

	players := make([]domain.Player, 0, len(room.Players))
	spies := make([]int, 0, len(room.Spies))
	votes := make([]int, 0, len(room.Votes))
	for i, p := range room.Players {
		if gone[p.Id] {
			continue
		}
		if room.IsSpy(i) {
			spies = append(spies, len(players))
		}
		if i < len(room.Votes) {
			votes = append(votes, room.Votes[i])
		}
		players = append(players, p)
	}

	voted := make([]string, 0, len(room.VotedPlayers))
	for _, id := range room.VotedPlayers {
		if !gone[id] {
			voted = append(voted, id)
		}
	}

	now := c.nowMillis()
	patch := domain.RoomPatch{
		Players:         &players,
		Spies:           &spies,
		Votes:           &votes,
		ClearVoted:      true,
		VotedPlayersAdd: voted,
		LastRemovals:    &removals,
		LastActivity:    &now,
	}

	if room.IsVoting && len(players) > 0 && len(voted) >= len(players) {
		isVoting := false
		showResult := true
		patch.IsVoting = &isVoting
		patch.ShowVoteResult = &showResult
	}

	spyDrained := room.Status == domain.StatusPlaying && len(room.Spies) > 0 && len(spies) == 0
	if spyDrained {
		status := domain.StatusFinished
		winner := domain.WinnerPlayers
		isVoting := false
		patch.Status = &status
		patch.Winner = &winner
		patch.IsVoting = &isVoting
	}

	if err := c.store.Update(ctx, code, patch); err != nil {
		return err
	}
	if spyDrained {
		after := room.Clone()
		patch.Apply(&after)
		c.recordGame(ctx, after, domain.WinnerPlayers, now)
	}
	return nil
}

// deleteRoom marks the document deleted before removing it, so subscribers
// observe a terminal status instead of a bare not-found.
func (c *Coordinator) deleteRoom(ctx context.Context, code string) error {
	status := domain.StatusDeleted
	now := c.nowMillis()
	if err := c.store.Update(ctx, code, domain.RoomPatch{Status: &status, LastActivity: &now}); err != nil {
		return err
	}
	return c.store.Delete(ctx, code)
}

// StartVotingRound opens a fresh round: zeroed tally, cleared voter set.
func (c *Coordinator) StartVotingRound(ctx context.Context, code, requestedBy string) error {
	unlock := c.lockRoom(code)
	defer unlock()

	room, err := c.store.Get(ctx, code)
	if err != nil {
		return err
	}
	room.Normalize()

	if !c.isHost(room, requestedBy) {
		return ErrNotAuthorized
	}
	if room.Status != domain.StatusPlaying {
		return ErrGameNotStarted
	}

	votes := make([]int, len(room.Players))
	isVoting := true
	showResult := false
	now := c.nowMillis()
	return c.store.Update(ctx, code, domain.RoomPatch{
		IsVoting:       &isVoting,
		ShowVoteResult: &showResult,
		Votes:          &votes,
		ClearVoted:     true,
		LastActivity:   &now,
	})
}

// CastVote records one vote. Self-votes are forbidden. The vote completing
// the round closes it in the same patch, so the all-voted auto-advance can
// never be half-applied.
func (c *Coordinator) CastVote(ctx context.Context, code, voterId string, candidateIndex int) error {
	unlock := c.lockRoom(code)
	defer unlock()

	room, err := c.store.Get(ctx, code)
	if err != nil {
		return err
	}
	room.Normalize()

	if !room.IsVoting {
		return ErrVotingClosed
	}
	voterIndex := room.PlayerIndex(voterId)
	if voterIndex < 0 {
		return ErrPlayerNotInRoom
	}
	if candidateIndex < 0 || candidateIndex >= len(room.Players) || candidateIndex == voterIndex {
		return ErrInvalidCandidate
	}
	if room.HasVoted(voterId) {
		return ErrAlreadyVoted
	}

	patch := domain.RoomPatch{
		VoteIncrement:   &candidateIndex,
		VotedPlayersAdd: []string{voterId},
	}
	if len(room.VotedPlayers)+1 >= len(room.Players) {
		isVoting := false
		showResult := true
		patch.IsVoting = &isVoting
		patch.ShowVoteResult = &showResult
	}
	now := c.nowMillis()
	patch.LastActivity = &now
	return c.store.Update(ctx, code, patch)
}

// ResolveVote computes the round outcome. A tie is reported to the caller
// and leaves the room untouched; the caller starts a fresh round. A unique
// leader commits the reveal.
func (c *Coordinator) ResolveVote(ctx context.Context, code string) (VoteOutcome, error) {
	unlock := c.lockRoom(code)
	defer unlock()

	room, err := c.store.Get(ctx, code)
	if err != nil {
		return VoteOutcome{}, err
	}
	room.Normalize()

	if room.Status != domain.StatusPlaying {
		return VoteOutcome{}, ErrGameNotStarted
	}
	if len(room.Votes) == 0 {
		return VoteOutcome{}, ErrVotingClosed
	}

	leading, tie := tallyVotes(room.Votes)
	if tie {
		return VoteOutcome{Tie: true}, nil
	}

	winner := domain.WinnerSpy
	if room.IsSpy(leading) {
		winner = domain.WinnerPlayers
	}
	isVoting := false
	showResult := true
	now := c.nowMillis()
	err = c.store.Update(ctx, code, domain.RoomPatch{
		IsVoting:       &isVoting,
		ShowVoteResult: &showResult,
		VotedSpy:       &leading,
		Winner:         &winner,
		LastActivity:   &now,
	})
	if err != nil {
		return VoteOutcome{}, err
	}
	return VoteOutcome{LeadingIndex: leading, Winner: winner}, nil
}

// FinishGame closes a played room and records the result for history and
// stats. The winner argument covers endings decided outside a vote, such as
// the timer running out in the spy's favor; a winner already committed by
// ResolveVote takes precedence.
func (c *Coordinator) FinishGame(ctx context.Context, code, requestedBy string, winner domain.Winner) error {
	unlock := c.lockRoom(code)
	defer unlock()

	room, err := c.store.Get(ctx, code)
	if err != nil {
		return err
	}
	room.Normalize()

	if !c.isHost(room, requestedBy) {
		return ErrNotAuthorized
	}
	if room.Status != domain.StatusPlaying {
		return ErrGameNotStarted
	}
	if room.Winner != domain.WinnerNone {
		winner = room.Winner
	}

	status := domain.StatusFinished
	now := c.nowMillis()
	if err := c.store.Update(ctx, code, domain.RoomPatch{
		Status:       &status,
		Winner:       &winner,
		LastActivity: &now,
	}); err != nil {
		return err
	}

	c.recordGame(ctx, room, winner, now)
	return nil
}

func (c *Coordinator) recordGame(ctx context.Context, room domain.Room, winner domain.Winner, finishedAt int64) {
	if c.recorder == nil {
		return
	}
	names := make([]string, len(room.Players))
	for i, p := range room.Players {
		names[i] = p.Name
	}
	locName := ""
	if room.Location != nil {
		locName = room.Location.Name
	}
	record := domain.GameRecord{
		RoomCode:        room.Code,
		Players:         names,
		Location:        locName,
		Spies:           room.Spies,
		Winner:          winner,
		DurationSeconds: int((finishedAt - room.StartedAt) / 1000),
		FinishedAt:      finishedAt,
	}
	if err := c.recorder.SaveGameHistory(ctx, record); err != nil {
		logStoreFailure("save game history", room.Code, err)
	}
	for i, p := range room.Players {
		wasSpy := room.IsSpy(i)
		won := (winner == domain.WinnerSpy) == wasSpy
		if err := c.recorder.UpdatePlayerStats(ctx, p.Id, won, wasSpy); err != nil {
			logStoreFailure("update player stats", room.Code, err)
		}
	}
}

func (c *Coordinator) isHost(room domain.Room, playerId string) bool {
	host, ok := room.Host()
	return ok && host.Id == playerId
}

func (c *Coordinator) locationPool(categories []string) []catalog.Location {
	if len(categories) == 0 {
		return c.locations
	}
	wanted := make([]catalog.Category, len(categories))
	for i, s := range categories {
		wanted[i] = catalog.Category(s)
	}
	pool := filterLocations(c.locations, wanted)
	if len(pool) == 0 {
		return c.locations
	}
	return pool
}

func filterLocations(locs []catalog.Location, categories []catalog.Category) []catalog.Location {
	out := make([]catalog.Location, 0, len(locs))
	for _, loc := range locs {
		for _, cat := range categories {
			if loc.Category == cat {
				out = append(out, loc)
				break
			}
		}
	}
	return out
}

func categoryNames(categories []catalog.Category) []string {
	if len(categories) == 0 {
		return nil
	}
	out := make([]string, len(categories))
	for i, c := range categories {
		out[i] = string(c)
	}
	return out
}

func isRoomExists(err error) bool {
	return errors.Is(err, domain.ErrRoomExists)
}

func logStoreFailure(op, code string, err error) {
	slog.Error("store write failed", "op", op, "room", code, "error", err.Error())
}
