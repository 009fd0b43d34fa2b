package game

import (
	"slices"

	"github.com/bas390/Spyfall/domain"
)

type EventType string

const (
	EventPlayerJoined     EventType = "player-joined"
	EventPlayerLeft       EventType = "player-left"
	EventPlayerKicked     EventType = "player-kicked"
	EventPlayerEvicted    EventType = "player-evicted"
	EventReadinessChanged EventType = "readiness-changed"
	EventStatusChanged    EventType = "status-changed"
	EventVotingStarted    EventType = "voting-started"
	EventVoteTallyChanged EventType = "vote-tally-changed"
	EventRevealReady      EventType = "reveal-ready"
)

// Event is a discrete domain event derived once, by diffing two successive
// snapshots, so observers never re-derive it from raw field comparisons.
type Event struct {
	Type   EventType         `json:"type"`
	Player domain.Player     `json:"player,omitempty"`
	Status domain.RoomStatus `json:"status,omitempty"`
	Votes  []int             `json:"votes,omitempty"`
}

// DiffRooms derives the events that separate prev from next. It is total: a
// nil prev means every current player just joined (and nothing left), and
// identical snapshots yield no events at all, so redelivered state is
// harmless. Removal provenance comes from the document's lastRemovals field;
// a removed player with no recorded removal is reported as a plain leave.
func DiffRooms(prev *domain.Room, next domain.Room) []Event {
	var events []Event

	if prev == nil {
		for _, p := range next.Players {
			events = append(events, Event{Type: EventPlayerJoined, Player: p})
		}
		return events
	}

	for _, p := range next.Players {
		if prev.PlayerIndex(p.Id) < 0 {
			events = append(events, Event{Type: EventPlayerJoined, Player: p})
		}
	}

	for _, p := range prev.Players {
		if next.PlayerIndex(p.Id) >= 0 {
			continue
		}
		events = append(events, Event{Type: removalEventType(next.LastRemovals, p.Id), Player: p})
	}

	for _, p := range next.Players {
		i := prev.PlayerIndex(p.Id)
		if i >= 0 && prev.Players[i].IsReady != p.IsReady {
			events = append(events, Event{Type: EventReadinessChanged, Player: p})
		}
	}

	if prev.Status != next.Status {
		events = append(events, Event{Type: EventStatusChanged, Status: next.Status})
	}

	if !prev.IsVoting && next.IsVoting {
		events = append(events, Event{Type: EventVotingStarted})
	}

	if next.IsVoting && !slices.Equal(prev.Votes, next.Votes) {
		events = append(events, Event{Type: EventVoteTallyChanged, Votes: slices.Clone(next.Votes)})
	}

	if !prev.ShowVoteResult && next.ShowVoteResult {
		events = append(events, Event{Type: EventRevealReady})
	}

	return events
}

func removalEventType(removals []domain.Removal, playerId string) EventType {
	for _, r := range removals {
		if r.PlayerId != playerId {
			continue
		}
		switch r.Reason {
		case domain.RemovalKicked:
			return EventPlayerKicked
		case domain.RemovalEvicted:
			return EventPlayerEvicted
		}
		return EventPlayerLeft
	}
	return EventPlayerLeft
}
