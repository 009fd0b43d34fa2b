package game

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/bas390/Spyfall/catalog"
	"github.com/bas390/Spyfall/domain"
	"github.com/bas390/Spyfall/storage"
)

func newTestCoordinator() (*Coordinator, *storage.MemoryStore) {
	store := storage.NewMemoryStore()
	tickerGen := NewTickerGen()
	c := NewCoordinator(store, nil, catalog.All(), &tickerGen, rand.New(rand.NewSource(1)))
	return c, store
}

func testConfig() RoomConfig {
	return RoomConfig{MaxPlayers: 6, SpyCount: 1, GameTimeSeconds: 480}
}

func player(n int) Identity {
	return Identity{Id: fmt.Sprintf("p%d", n), Name: fmt.Sprintf("player%d", n)}
}

// createWaitingRoom creates a room with n players, host first, all ready.
func createWaitingRoom(t *testing.T, c *Coordinator, n int) string {
	t.Helper()
	ctx := context.Background()

	code, err := c.CreateRoom(ctx, testConfig(), player(0))
	require.NoError(t, err)

	for i := 1; i < n; i++ {
		require.NoError(t, c.JoinRoom(ctx, code, player(i)))
	}
	for i := 0; i < n; i++ {
		require.NoError(t, c.ToggleReady(ctx, code, player(i).Id))
	}
	return code
}

func TestCoordinator_CreateRoom(t *testing.T) {
	c, store := newTestCoordinator()

	code, err := c.CreateRoom(context.Background(), testConfig(), player(0))
	require.NoError(t, err)

	assert.Len(t, code, RoomCodeLength)
	for _, ch := range code {
		assert.Contains(t, RoomCodeChars, string(ch))
	}

	room, err := store.Get(context.Background(), code)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusWaiting, room.Status)
	require.Len(t, room.Players, 1)
	assert.True(t, room.Players[0].IsHost)
	assert.Equal(t, "p0", room.Players[0].Id)
	assert.Equal(t, room.CreatedAt, room.LastActivity)
}

func TestCoordinator_CreateRoom_InvalidConfig(t *testing.T) {
	c, _ := newTestCoordinator()
	ctx := context.Background()

	tests := []struct {
		name string
		cfg  RoomConfig
	}{
		{"too few players", RoomConfig{MaxPlayers: 2, SpyCount: 1, GameTimeSeconds: 480}},
		{"too many players", RoomConfig{MaxPlayers: 13, SpyCount: 1, GameTimeSeconds: 480}},
		{"zero spies", RoomConfig{MaxPlayers: 6, SpyCount: 0, GameTimeSeconds: 480}},
		{"too many spies", RoomConfig{MaxPlayers: 6, SpyCount: 4, GameTimeSeconds: 480}},
		{"zero game time", RoomConfig{MaxPlayers: 6, SpyCount: 1, GameTimeSeconds: 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.CreateRoom(ctx, tt.cfg, player(0))
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestCoordinator_CreateRoom_RetriesOnCodeCollision(t *testing.T) {
	c, _ := newTestCoordinator()
	ctx := context.Background()

	codes := []string{"AAAAAA", "AAAAAA", "BBBBBB"}
	c.genCode = func() string {
		code := codes[0]
		if len(codes) > 1 {
			codes = codes[1:]
		}
		return code
	}

	first, err := c.CreateRoom(ctx, testConfig(), player(0))
	require.NoError(t, err)
	assert.Equal(t, "AAAAAA", first)

	second, err := c.CreateRoom(ctx, testConfig(), player(1))
	require.NoError(t, err)
	assert.Equal(t, "BBBBBB", second)
}

func TestCoordinator_CreateRoom_GivesUpAfterExhaustedAttempts(t *testing.T) {
	c, _ := newTestCoordinator()
	ctx := context.Background()

	c.genCode = func() string { return "AAAAAA" }

	_, err := c.CreateRoom(ctx, testConfig(), player(0))
	require.NoError(t, err)

	_, err = c.CreateRoom(ctx, testConfig(), player(1))
	assert.ErrorIs(t, err, domain.ErrRoomExists)
}

func TestCoordinator_JoinRoom(t *testing.T) {
	c, store := newTestCoordinator()
	ctx := context.Background()

	code, err := c.CreateRoom(ctx, testConfig(), player(0))
	require.NoError(t, err)

	require.NoError(t, c.JoinRoom(ctx, code, player(1)))

	room, err := store.Get(ctx, code)
	require.NoError(t, err)
	require.Len(t, room.Players, 2)
	assert.Equal(t, "p1", room.Players[1].Id)
	assert.False(t, room.Players[1].IsHost)
	assert.False(t, room.Players[1].IsReady)
}

func TestCoordinator_JoinRoom_DuplicateIsNoOp(t *testing.T) {
	c, store := newTestCoordinator()
	ctx := context.Background()

	code, _ := c.CreateRoom(ctx, testConfig(), player(0))
	require.NoError(t, c.JoinRoom(ctx, code, player(1)))
	require.NoError(t, c.JoinRoom(ctx, code, player(1)))

	room, _ := store.Get(ctx, code)
	assert.Len(t, room.Players, 2)
}

func TestCoordinator_JoinRoom_Full(t *testing.T) {
	c, _ := newTestCoordinator()
	ctx := context.Background()

	cfg := RoomConfig{MaxPlayers: 3, SpyCount: 1, GameTimeSeconds: 480}
	code, _ := c.CreateRoom(ctx, cfg, player(0))
	require.NoError(t, c.JoinRoom(ctx, code, player(1)))
	require.NoError(t, c.JoinRoom(ctx, code, player(2)))

	assert.ErrorIs(t, c.JoinRoom(ctx, code, player(3)), ErrRoomFull)
}

func TestCoordinator_JoinRoom_NotJoinableAfterStart(t *testing.T) {
	c, _ := newTestCoordinator()
	ctx := context.Background()

	code := createWaitingRoom(t, c, 4)
	require.NoError(t, c.StartGame(ctx, code, "p0"))

	assert.ErrorIs(t, c.JoinRoom(ctx, code, player(9)), ErrRoomNotJoinable)
}

func TestCoordinator_JoinRoom_NotFound(t *testing.T) {
	c, _ := newTestCoordinator()
	assert.ErrorIs(t, c.JoinRoom(context.Background(), "ZZZZZZ", player(1)), domain.ErrRoomNotFound)
}

func TestCoordinator_ToggleReady(t *testing.T) {
	c, store := newTestCoordinator()
	ctx := context.Background()

	code, _ := c.CreateRoom(ctx, testConfig(), player(0))

	require.NoError(t, c.ToggleReady(ctx, code, "p0"))
	room, _ := store.Get(ctx, code)
	assert.True(t, room.Players[0].IsReady)

	require.NoError(t, c.ToggleReady(ctx, code, "p0"))
	room, _ = store.Get(ctx, code)
	assert.False(t, room.Players[0].IsReady)

	// a player no longer in the room is a no-op
	require.NoError(t, c.ToggleReady(ctx, code, "ghost"))
}

func TestCoordinator_KickPlayer(t *testing.T) {
	c, store := newTestCoordinator()
	ctx := context.Background()

	code, _ := c.CreateRoom(ctx, testConfig(), player(0))
	require.NoError(t, c.JoinRoom(ctx, code, player(1)))

	t.Run("non host cannot kick", func(t *testing.T) {
		assert.ErrorIs(t, c.KickPlayer(ctx, code, "p0", "p1"), ErrNotAuthorized)
	})

	t.Run("host cannot be kicked", func(t *testing.T) {
		assert.ErrorIs(t, c.KickPlayer(ctx, code, "p0", "p0"), ErrCannotKickHost)
	})

	t.Run("absent target", func(t *testing.T) {
		assert.ErrorIs(t, c.KickPlayer(ctx, code, "ghost", "p0"), ErrPlayerNotInRoom)
	})

	t.Run("host kicks member", func(t *testing.T) {
		require.NoError(t, c.KickPlayer(ctx, code, "p1", "p0"))

		room, _ := store.Get(ctx, code)
		assert.False(t, room.HasPlayer("p1"))
		require.Len(t, room.LastRemovals, 1)
		assert.Equal(t, "p1", room.LastRemovals[0].PlayerId)
		assert.Equal(t, domain.RemovalKicked, room.LastRemovals[0].Reason)
	})
}

func TestCoordinator_StartGame(t *testing.T) {
	c, store := newTestCoordinator()
	ctx := context.Background()

	code := createWaitingRoom(t, c, 4)
	require.NoError(t, c.StartGame(ctx, code, "p0"))

	room, err := store.Get(ctx, code)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPlaying, room.Status)
	assert.Len(t, room.Spies, 1)
	assert.GreaterOrEqual(t, room.Spies[0], 0)
	assert.Less(t, room.Spies[0], 4)
	require.NotNil(t, room.Location)
	assert.NotEmpty(t, room.Location.Name)
	assert.NotEmpty(t, room.Location.Roles)
	assert.NotZero(t, room.StartedAt)
}

func TestCoordinator_StartGame_Preconditions(t *testing.T) {
	ctx := context.Background()

	t.Run("only host starts", func(t *testing.T) {
		c, _ := newTestCoordinator()
		code := createWaitingRoom(t, c, 4)
		assert.ErrorIs(t, c.StartGame(ctx, code, "p1"), ErrNotAuthorized)
	})

	t.Run("players must be ready", func(t *testing.T) {
		c, _ := newTestCoordinator()
		code, _ := c.CreateRoom(ctx, testConfig(), player(0))
		require.NoError(t, c.JoinRoom(ctx, code, player(1)))
		require.NoError(t, c.JoinRoom(ctx, code, player(2)))
		assert.ErrorIs(t, c.StartGame(ctx, code, "p0"), ErrPlayersNotReady)
	})

	t.Run("too few players", func(t *testing.T) {
		c, _ := newTestCoordinator()
		code, _ := c.CreateRoom(ctx, testConfig(), player(0))
		require.NoError(t, c.ToggleReady(ctx, code, "p0"))
		assert.ErrorIs(t, c.StartGame(ctx, code, "p0"), ErrNotEnoughPlayers)
	})

	t.Run("spy count above half the seated players", func(t *testing.T) {
		c, _ := newTestCoordinator()
		cfg := RoomConfig{MaxPlayers: 8, SpyCount: 2, GameTimeSeconds: 480}
		code, err := c.CreateRoom(ctx, cfg, player(0))
		require.NoError(t, err)
		for i := 1; i < 3; i++ {
			require.NoError(t, c.JoinRoom(ctx, code, player(i)))
		}
		for i := 0; i < 3; i++ {
			require.NoError(t, c.ToggleReady(ctx, code, player(i).Id))
		}
		assert.ErrorIs(t, c.StartGame(ctx, code, "p0"), ErrNotEnoughPlayers)
	})

	t.Run("cannot start twice", func(t *testing.T) {
		c, _ := newTestCoordinator()
		code := createWaitingRoom(t, c, 4)
		require.NoError(t, c.StartGame(ctx, code, "p0"))
		assert.ErrorIs(t, c.StartGame(ctx, code, "p0"), ErrGameAlreadyStarted)
	})
}

func TestCoordinator_LeaveRoom_Member(t *testing.T) {
	c, store := newTestCoordinator()
	ctx := context.Background()

	code, _ := c.CreateRoom(ctx, testConfig(), player(0))
	require.NoError(t, c.JoinRoom(ctx, code, player(1)))

	require.NoError(t, c.LeaveRoom(ctx, code, "p1"))

	room, _ := store.Get(ctx, code)
	assert.False(t, room.HasPlayer("p1"))
	require.Len(t, room.LastRemovals, 1)
	assert.Equal(t, domain.RemovalLeft, room.LastRemovals[0].Reason)
}

func TestCoordinator_LeaveRoom_HostDeletesRoom(t *testing.T) {
	c, store := newTestCoordinator()
	ctx := context.Background()

	code, _ := c.CreateRoom(ctx, testConfig(), player(0))
	require.NoError(t, c.JoinRoom(ctx, code, player(1)))

	require.NoError(t, c.LeaveRoom(ctx, code, "p0"))

	_, err := store.Get(ctx, code)
	assert.ErrorIs(t, err, domain.ErrRoomNotFound)
}

func TestCoordinator_VotingRound(t *testing.T) {
	c, store := newTestCoordinator()
	ctx := context.Background()

	code := createWaitingRoom(t, c, 4)
	require.NoError(t, c.StartGame(ctx, code, "p0"))

	t.Run("only host opens voting", func(t *testing.T) {
		assert.ErrorIs(t, c.StartVotingRound(ctx, code, "p1"), ErrNotAuthorized)
	})

	require.NoError(t, c.StartVotingRound(ctx, code, "p0"))

	room, _ := store.Get(ctx, code)
	assert.True(t, room.IsVoting)
	assert.False(t, room.ShowVoteResult)
	assert.Equal(t, []int{0, 0, 0, 0}, room.Votes)
	assert.Empty(t, room.VotedPlayers)

	t.Run("self vote is forbidden", func(t *testing.T) {
		assert.ErrorIs(t, c.CastVote(ctx, code, "p1", 1), ErrInvalidCandidate)
	})

	t.Run("candidate out of range", func(t *testing.T) {
		assert.ErrorIs(t, c.CastVote(ctx, code, "p1", 4), ErrInvalidCandidate)
		assert.ErrorIs(t, c.CastVote(ctx, code, "p1", -1), ErrInvalidCandidate)
	})

	t.Run("non member cannot vote", func(t *testing.T) {
		assert.ErrorIs(t, c.CastVote(ctx, code, "ghost", 0), ErrPlayerNotInRoom)
	})

	require.NoError(t, c.CastVote(ctx, code, "p1", 2))

	t.Run("double vote rejected", func(t *testing.T) {
		assert.ErrorIs(t, c.CastVote(ctx, code, "p1", 2), ErrAlreadyVoted)
	})

	room, _ = store.Get(ctx, code)
	assert.Equal(t, []int{0, 0, 1, 0}, room.Votes)
	assert.True(t, room.IsVoting, "round stays open until everyone voted")
}

func TestCoordinator_CastVote_LastVoteClosesRound(t *testing.T) {
	c, store := newTestCoordinator()
	ctx := context.Background()

	code := createWaitingRoom(t, c, 4)
	require.NoError(t, c.StartGame(ctx, code, "p0"))
	require.NoError(t, c.StartVotingRound(ctx, code, "p0"))

	room, _ := store.Get(ctx, code)
	spy := room.Spies[0]

	// everyone votes for the spy; the spy votes for whoever is next
	for i := 0; i < 4; i++ {
		voter := fmt.Sprintf("p%d", i)
		candidate := spy
		if i == spy {
			candidate = (spy + 1) % 4
		}
		require.NoError(t, c.CastVote(ctx, code, voter, candidate))
	}

	room, _ = store.Get(ctx, code)
	assert.False(t, room.IsVoting)
	assert.True(t, room.ShowVoteResult)
	assert.Len(t, room.VotedPlayers, 4)

	outcome, err := c.ResolveVote(ctx, code)
	require.NoError(t, err)
	assert.False(t, outcome.Tie)
	assert.Equal(t, spy, outcome.LeadingIndex)
	assert.Equal(t, domain.WinnerPlayers, outcome.Winner)

	room, _ = store.Get(ctx, code)
	require.NotNil(t, room.VotedSpy)
	assert.Equal(t, spy, *room.VotedSpy)
	assert.Equal(t, domain.WinnerPlayers, room.Winner)
}

func TestCoordinator_ResolveVote_MissedSpyMeansSpyWins(t *testing.T) {
	c, store := newTestCoordinator()
	ctx := context.Background()

	code := createWaitingRoom(t, c, 4)
	require.NoError(t, c.StartGame(ctx, code, "p0"))
	require.NoError(t, c.StartVotingRound(ctx, code, "p0"))

	room, _ := store.Get(ctx, code)
	spy := room.Spies[0]
	innocent := (spy + 1) % 4

	for i := 0; i < 4; i++ {
		voter := fmt.Sprintf("p%d", i)
		candidate := innocent
		if i == innocent {
			candidate = (innocent + 1) % 4
		}
		require.NoError(t, c.CastVote(ctx, code, voter, candidate))
	}

	outcome, err := c.ResolveVote(ctx, code)
	require.NoError(t, err)
	assert.False(t, outcome.Tie)
	assert.Equal(t, innocent, outcome.LeadingIndex)
	assert.Equal(t, domain.WinnerSpy, outcome.Winner)
}

func TestCoordinator_ResolveVote_TieLeavesRoomUntouchedAndRoundRestarts(t *testing.T) {
	c, store := newTestCoordinator()
	ctx := context.Background()

	code := createWaitingRoom(t, c, 4)
	require.NoError(t, c.StartGame(ctx, code, "p0"))
	require.NoError(t, c.StartVotingRound(ctx, code, "p0"))

	// pairwise votes: every index ends at exactly one vote
	require.NoError(t, c.CastVote(ctx, code, "p0", 1))
	require.NoError(t, c.CastVote(ctx, code, "p1", 0))
	require.NoError(t, c.CastVote(ctx, code, "p2", 3))
	require.NoError(t, c.CastVote(ctx, code, "p3", 2))

	outcome, err := c.ResolveVote(ctx, code)
	require.NoError(t, err)
	assert.True(t, outcome.Tie)

	room, _ := store.Get(ctx, code)
	assert.Nil(t, room.VotedSpy)
	assert.Equal(t, domain.WinnerNone, room.Winner)

	// the host replays the round from scratch
	require.NoError(t, c.StartVotingRound(ctx, code, "p0"))
	room, _ = store.Get(ctx, code)
	assert.True(t, room.IsVoting)
	assert.Equal(t, []int{0, 0, 0, 0}, room.Votes)
	assert.Empty(t, room.VotedPlayers)
}

func TestCoordinator_CastVote_ClosedRound(t *testing.T) {
	c, _ := newTestCoordinator()
	ctx := context.Background()

	code := createWaitingRoom(t, c, 4)
	require.NoError(t, c.StartGame(ctx, code, "p0"))

	assert.ErrorIs(t, c.CastVote(ctx, code, "p1", 0), ErrVotingClosed)
}

func TestCoordinator_FinishGame_RecordsHistoryAndStats(t *testing.T) {
	store := storage.NewMemoryStore()
	recorder := &MockGameRecorder{}
	tickerGen := NewTickerGen()
	c := NewCoordinator(store, recorder, catalog.All(), &tickerGen, rand.New(rand.NewSource(1)))
	ctx := context.Background()

	code := createWaitingRoom(t, c, 4)
	require.NoError(t, c.StartGame(ctx, code, "p0"))

	room, _ := store.Get(ctx, code)
	spy := room.Spies[0]

	recorder.On("SaveGameHistory", mock.Anything, mock.MatchedBy(func(r domain.GameRecord) bool {
		return r.RoomCode == code && len(r.Players) == 4 && r.Winner == domain.WinnerSpy
	})).Return(nil)
	for i := 0; i < 4; i++ {
		id := fmt.Sprintf("p%d", i)
		wasSpy := i == spy
		recorder.On("UpdatePlayerStats", mock.Anything, id, wasSpy, wasSpy).Return(nil)
	}

	require.NoError(t, c.FinishGame(ctx, code, "p0", domain.WinnerSpy))

	room, _ = store.Get(ctx, code)
	assert.Equal(t, domain.StatusFinished, room.Status)
	assert.Equal(t, domain.WinnerSpy, room.Winner)
	recorder.AssertExpectations(t)
}

func TestCoordinator_FinishGame_CommittedWinnerTakesPrecedence(t *testing.T) {
	c, store := newTestCoordinator()
	ctx := context.Background()

	code := createWaitingRoom(t, c, 4)
	require.NoError(t, c.StartGame(ctx, code, "p0"))
	require.NoError(t, c.StartVotingRound(ctx, code, "p0"))

	room, _ := store.Get(ctx, code)
	spy := room.Spies[0]
	for i := 0; i < 4; i++ {
		voter := fmt.Sprintf("p%d", i)
		candidate := spy
		if i == spy {
			candidate = (spy + 1) % 4
		}
		require.NoError(t, c.CastVote(ctx, code, voter, candidate))
	}
	_, err := c.ResolveVote(ctx, code)
	require.NoError(t, err)

	// the host reports the wrong winner; the vote result stands
	require.NoError(t, c.FinishGame(ctx, code, "p0", domain.WinnerSpy))

	room, _ = store.Get(ctx, code)
	assert.Equal(t, domain.WinnerPlayers, room.Winner)
}

func TestCoordinator_LocationRespectsCategories(t *testing.T) {
	c, store := newTestCoordinator()
	ctx := context.Background()

	cfg := RoomConfig{
		MaxPlayers:      6,
		SpyCount:        1,
		GameTimeSeconds: 480,
		Categories:      []catalog.Category{catalog.Business},
	}
	code, err := c.CreateRoom(ctx, cfg, player(0))
	require.NoError(t, err)
	for i := 1; i < 4; i++ {
		require.NoError(t, c.JoinRoom(ctx, code, player(i)))
	}
	for i := 0; i < 4; i++ {
		require.NoError(t, c.ToggleReady(ctx, code, player(i).Id))
	}
	require.NoError(t, c.StartGame(ctx, code, "p0"))

	room, _ := store.Get(ctx, code)
	require.NotNil(t, room.Location)

	allowed := map[string]bool{}
	for _, loc := range catalog.Filter(catalog.Business) {
		allowed[loc.Name] = true
	}
	assert.True(t, allowed[room.Location.Name],
		"location %s is not in the business pool", room.Location.Name)
}

func TestGenerateRoomCode(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		code := generateRoomCode()
		assert.Len(t, code, RoomCodeLength)
		for _, ch := range code {
			assert.True(t, strings.ContainsRune(RoomCodeChars, ch))
		}
		seen[code] = true
	}
	// 100 draws from a 32^6 space colliding would point at a broken source
	assert.Greater(t, len(seen), 90)
}

// playingRoom builds a mid-game document directly, so tests control the spy
// assignment instead of depending on the seeded shuffle.
func playingRoom(code string, n int, spies []int, now int64) domain.Room {
	players := make([]domain.Player, n)
	for i := range players {
		p := player(i)
		players[i] = domain.Player{Id: p.Id, Name: p.Name, IsHost: i == 0, IsReady: true, LastSeen: now}
	}
	return domain.Room{
		Code:            code,
		Status:          domain.StatusPlaying,
		MaxPlayers:      6,
		SpyCount:        len(spies),
		GameTimeSeconds: 480,
		Players:         players,
		Spies:           spies,
		Votes:           []int{},
		VotedPlayers:    []string{},
		Location:        &domain.Location{Name: "University", Roles: []string{"Student", "Professor"}},
		CreatedAt:       now,
		StartedAt:       now,
		LastActivity:    now,
	}
}

func TestCoordinator_LeaveDuringGame_RemapsSpyIndices(t *testing.T) {
	c, store := newTestCoordinator()
	ctx := context.Background()

	room := playingRoom("GAME01", 4, []int{3}, c.nowMillis())
	require.NoError(t, store.Create(ctx, room))

	require.NoError(t, c.LeaveRoom(ctx, "GAME01", "p1"))

	got, _ := store.Get(ctx, "GAME01")
	assert.Equal(t, domain.StatusPlaying, got.Status)
	require.Equal(t, []int{2}, got.Spies)
	assert.Equal(t, "p3", got.Players[got.Spies[0]].Id)
}

func TestCoordinator_SpyLeavingMidGame_EndsGameForPlayers(t *testing.T) {
	store := storage.NewMemoryStore()
	recorder := &MockGameRecorder{}
	tickerGen := NewTickerGen()
	c := NewCoordinator(store, recorder, catalog.All(), &tickerGen, rand.New(rand.NewSource(1)))
	ctx := context.Background()

	recorder.On("SaveGameHistory", mock.Anything, mock.MatchedBy(func(r domain.GameRecord) bool {
		return r.Winner == domain.WinnerPlayers && len(r.Players) == 3
	})).Return(nil)
	for _, id := range []string{"p0", "p1", "p2"} {
		recorder.On("UpdatePlayerStats", mock.Anything, id, true, false).Return(nil)
	}

	room := playingRoom("GAME02", 4, []int{3}, c.nowMillis())
	require.NoError(t, store.Create(ctx, room))

	require.NoError(t, c.LeaveRoom(ctx, "GAME02", "p3"))

	got, _ := store.Get(ctx, "GAME02")
	assert.Equal(t, domain.StatusFinished, got.Status)
	assert.Equal(t, domain.WinnerPlayers, got.Winner)
	assert.Empty(t, got.Spies)
	assert.False(t, got.IsVoting)
	recorder.AssertExpectations(t)
}

func TestCoordinator_KickDuringOpenRound_RemapsVotes(t *testing.T) {
	c, store := newTestCoordinator()
	ctx := context.Background()

	room := playingRoom("GAME03", 4, []int{2}, c.nowMillis())
	room.IsVoting = true
	room.Votes = []int{2, 1, 0, 0}
	room.VotedPlayers = []string{"p0", "p1", "p2"}
	require.NoError(t, store.Create(ctx, room))

	require.NoError(t, c.KickPlayer(ctx, "GAME03", "p1", "p0"))

	got, _ := store.Get(ctx, "GAME03")
	require.Equal(t, []int{2, 0, 0}, got.Votes)
	assert.Equal(t, []string{"p0", "p2"}, got.VotedPlayers)
	require.Equal(t, []int{1}, got.Spies)
	assert.Equal(t, "p2", got.Players[got.Spies[0]].Id)
	assert.True(t, got.IsVoting, "p3 has not voted yet, the round stays open")
}

func TestCoordinator_LeaveClosesRoundWhenAllRemainingVoted(t *testing.T) {
	c, store := newTestCoordinator()
	ctx := context.Background()

	room := playingRoom("GAME04", 4, []int{1}, c.nowMillis())
	room.IsVoting = true
	room.Votes = []int{2, 1, 0, 0}
	room.VotedPlayers = []string{"p0", "p1", "p2"}
	require.NoError(t, store.Create(ctx, room))

	require.NoError(t, c.LeaveRoom(ctx, "GAME04", "p3"))

	got, _ := store.Get(ctx, "GAME04")
	assert.False(t, got.IsVoting)
	assert.True(t, got.ShowVoteResult)
	require.Equal(t, []int{2, 1, 0}, got.Votes)

	outcome, err := c.ResolveVote(ctx, "GAME04")
	require.NoError(t, err)
	assert.Equal(t, 0, outcome.LeadingIndex)
	assert.Equal(t, domain.WinnerSpy, outcome.Winner)
}

func TestCoordinator_PropagatesStoreFailures(t *testing.T) {
	dbErr := fmt.Errorf("%w: connection reset", domain.UnexpectedDatabaseError)

	t.Run("create stops on unexpected errors", func(t *testing.T) {
		store := &MockRoomStore{}
		tickerGen := NewTickerGen()
		c := NewCoordinator(store, nil, catalog.All(), &tickerGen, rand.New(rand.NewSource(1)))
		store.On("Create", mock.Anything, mock.AnythingOfType("domain.Room")).Return(dbErr).Once()

		_, err := c.CreateRoom(context.Background(), testConfig(), player(0))
		assert.ErrorIs(t, err, domain.UnexpectedDatabaseError)
		store.AssertNumberOfCalls(t, "Create", 1)
	})

	t.Run("join surfaces the read failure", func(t *testing.T) {
		store := &MockRoomStore{}
		tickerGen := NewTickerGen()
		c := NewCoordinator(store, nil, catalog.All(), &tickerGen, rand.New(rand.NewSource(1)))
		store.On("Get", mock.Anything, "ABCDEF").Return(domain.Room{}, dbErr)

		err := c.JoinRoom(context.Background(), "ABCDEF", player(1))
		assert.ErrorIs(t, err, domain.UnexpectedDatabaseError)
	})

	t.Run("toggle surfaces the write failure", func(t *testing.T) {
		store := &MockRoomStore{}
		tickerGen := NewTickerGen()
		c := NewCoordinator(store, nil, catalog.All(), &tickerGen, rand.New(rand.NewSource(1)))

		room := playingRoom("ABCDEF", 3, []int{1}, 0)
		room.Status = domain.StatusWaiting
		store.On("Get", mock.Anything, "ABCDEF").Return(room, nil)
		store.On("Update", mock.Anything, "ABCDEF", mock.AnythingOfType("domain.RoomPatch")).Return(dbErr)

		err := c.ToggleReady(context.Background(), "ABCDEF", "p1")
		assert.ErrorIs(t, err, domain.UnexpectedDatabaseError)
	})
}
