package domain

import "slices"

// RoomPatch is a partial update to a room document. Nil pointer fields are
// left untouched. VoteIncrement and VotedPlayersAdd are atomic primitives:
// stores must apply a whole patch under the document's write serialization,
// never by read-modify-write from a caller-side snapshot.
type RoomPatch struct {
	Status          *RoomStatus
	Players         *[]Player
	Spies           *[]int
	Location        *Location
	StartedAt       *int64
	IsVoting        *bool
	ShowVoteResult  *bool
	Votes           *[]int    // full replace, used when a round starts
	VoteIncrement   *int      // index into Votes to increment by one
	VotedPlayersAdd []string  // set-union append
	ClearVoted      bool      // empties VotedPlayers before VotedPlayersAdd
	VotedSpy        *int
	Winner          *Winner
	LastRemovals    *[]Removal
	LastActivity    *int64
}

// IsZero reports whether the patch would change nothing.
func (p RoomPatch) IsZero() bool {
	return p.Status == nil && p.Players == nil && p.Spies == nil &&
		p.Location == nil && p.StartedAt == nil && p.IsVoting == nil &&
		p.ShowVoteResult == nil && p.Votes == nil && p.VoteIncrement == nil &&
		len(p.VotedPlayersAdd) == 0 && !p.ClearVoted && p.VotedSpy == nil &&
		p.Winner == nil && p.LastRemovals == nil && p.LastActivity == nil
}

// Apply mutates r in place. Replacements run before the atomic operations so
// a single patch can reset a round and still be applied in one step.
func (p RoomPatch) Apply(r *Room) {
	if p.Status != nil {
		r.Status = *p.Status
	}
	if p.Players != nil {
		r.Players = slices.Clone(*p.Players)
	}
	if p.Spies != nil {
		r.Spies = slices.Clone(*p.Spies)
	}
	if p.Location != nil {
		loc := *p.Location
		loc.Roles = slices.Clone(p.Location.Roles)
		r.Location = &loc
	}
	if p.StartedAt != nil {
		r.StartedAt = *p.StartedAt
	}
	if p.IsVoting != nil {
		r.IsVoting = *p.IsVoting
	}
	if p.ShowVoteResult != nil {
		r.ShowVoteResult = *p.ShowVoteResult
	}
	if p.Votes != nil {
		r.Votes = slices.Clone(*p.Votes)
	}
	if p.VoteIncrement != nil {
		i := *p.VoteIncrement
		if i >= 0 && i < len(r.Votes) {
			r.Votes[i]++
		}
	}
	if p.ClearVoted {
		r.VotedPlayers = []string{}
	}
	for _, id := range p.VotedPlayersAdd {
		if !slices.Contains(r.VotedPlayers, id) {
			r.VotedPlayers = append(r.VotedPlayers, id)
		}
	}
	if p.VotedSpy != nil {
		v := *p.VotedSpy
		r.VotedSpy = &v
	}
	if p.Winner != nil {
		r.Winner = *p.Winner
	}
	if p.LastRemovals != nil {
		r.LastRemovals = slices.Clone(*p.LastRemovals)
	}
	if p.LastActivity != nil {
		r.LastActivity = *p.LastActivity
	}
}
