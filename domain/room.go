package domain

import "slices"

type RoomStatus string

const (
	StatusWaiting  RoomStatus = "waiting"
	StatusPlaying  RoomStatus = "playing"
	StatusFinished RoomStatus = "finished"
	StatusDeleted  RoomStatus = "deleted"
)

type Winner string

const (
	WinnerNone    Winner = ""
	WinnerSpy     Winner = "spy"
	WinnerPlayers Winner = "players"
)

type RemovalReason string

const (
	RemovalLeft    RemovalReason = "left"
	RemovalKicked  RemovalReason = "kicked"
	RemovalEvicted RemovalReason = "evicted"
)

// Removal records why a player disappeared from the player list, so that
// observers can tell a kick or an eviction apart from a voluntary leave
// without guessing from a list diff.
type Removal struct {
	PlayerId string        `json:"playerId"`
	Reason   RemovalReason `json:"reason"`
}

type Player struct {
	Id       string `json:"id"`
	Name     string `json:"name"`
	IsHost   bool   `json:"isHost"`
	IsReady  bool   `json:"isReady"`
	LastSeen int64  `json:"lastSeen"` // unix milliseconds
}

// Location is the slice of the catalog entry a room actually needs.
type Location struct {
	Name  string   `json:"name"`
	Roles []string `json:"roles"`
}

// Room is the shared document, one per game session, keyed by Code.
// All timestamps are unix milliseconds.
type Room struct {
	Code            string     `json:"code"`
	Status          RoomStatus `json:"status"`
	MaxPlayers      int        `json:"maxPlayers"`
	SpyCount        int        `json:"spyCount"`
	GameTimeSeconds int        `json:"gameTimeSeconds"`
	Categories      []string   `json:"categories,omitempty"`
	Location        *Location  `json:"location,omitempty"`
	Players         []Player   `json:"players"`
	Spies           []int      `json:"spies"`
	Votes           []int      `json:"votes"`
	VotedPlayers    []string   `json:"votedPlayers"`
	IsVoting        bool       `json:"isVoting"`
	ShowVoteResult  bool       `json:"showVoteResult"`
	VotedSpy        *int       `json:"votedSpy,omitempty"`
	Winner          Winner     `json:"winner,omitempty"`
	LastRemovals    []Removal  `json:"lastRemovals,omitempty"`
	CreatedAt       int64      `json:"createdAt"`
	StartedAt       int64      `json:"startedAt,omitempty"`
	LastActivity    int64      `json:"lastActivity"`
}

// Normalize fills deterministic defaults for fields a decoded document may
// be missing. Unknown statuses are not invented: an empty status means the
// document predates the field and is treated as waiting.
func (r *Room) Normalize() {
	if r.Status == "" {
		r.Status = StatusWaiting
	}
	if r.Players == nil {
		r.Players = []Player{}
	}
	if r.Spies == nil {
		r.Spies = []int{}
	}
	if r.Votes == nil {
		r.Votes = []int{}
	}
	if r.VotedPlayers == nil {
		r.VotedPlayers = []string{}
	}
	if r.LastActivity == 0 {
		r.LastActivity = r.CreatedAt
	}
}

func (r *Room) PlayerIndex(id string) int {
	return slices.IndexFunc(r.Players, func(p Player) bool { return p.Id == id })
}

func (r *Room) HasPlayer(id string) bool {
	return r.PlayerIndex(id) >= 0
}

func (r *Room) Host() (Player, bool) {
	for _, p := range r.Players {
		if p.IsHost {
			return p, true
		}
	}
	return Player{}, false
}

func (r *Room) IsFull() bool {
	return len(r.Players) >= r.MaxPlayers
}

func (r *Room) AllReady() bool {
	for _, p := range r.Players {
		if !p.IsReady {
			return false
		}
	}
	return true
}

func (r *Room) HasVoted(playerId string) bool {
	return slices.Contains(r.VotedPlayers, playerId)
}

func (r *Room) IsSpy(index int) bool {
	return slices.Contains(r.Spies, index)
}

// Clone returns a deep copy. Stores hand out clones so no caller can mutate
// shared state behind the store's back.
func (r Room) Clone() Room {
	c := r
	c.Categories = slices.Clone(r.Categories)
	c.Players = slices.Clone(r.Players)
	c.Spies = slices.Clone(r.Spies)
	c.Votes = slices.Clone(r.Votes)
	c.VotedPlayers = slices.Clone(r.VotedPlayers)
	c.LastRemovals = slices.Clone(r.LastRemovals)
	if r.Location != nil {
		loc := *r.Location
		loc.Roles = slices.Clone(r.Location.Roles)
		c.Location = &loc
	}
	if r.VotedSpy != nil {
		v := *r.VotedSpy
		c.VotedSpy = &v
	}
	return c
}

// RoomUpdate is one delivery on a subscription feed. After an update with
// Deleted set the feed is terminal and the channel is closed.
type RoomUpdate struct {
	Room    Room
	Deleted bool
}
