package game

import (
	"context"
	"errors"
	"time"

	"github.com/bas390/Spyfall/domain"
)

// Heartbeat stamps the caller's presence on the shared document. Every
// subscribed client heartbeats for itself; nobody writes another player's
// lastSeen.
func (c *Coordinator) Heartbeat(ctx context.Context, code, playerId string) error {
	unlock := c.lockRoom(code)
	defer unlock()

	room, err := c.store.Get(ctx, code)
	if err != nil {
		return err
	}
	room.Normalize()

	i := room.PlayerIndex(playerId)
	if i < 0 {
		return ErrPlayerNotInRoom
	}

	now := c.nowMillis()
	players := room.Players
	players[i].LastSeen = now
	return c.store.Update(ctx, code, domain.RoomPatch{
		Players:      &players,
		LastActivity: &now,
	})
}

// EvictStalePlayers prunes non-host players whose heartbeat is older than
// StaleAfter. Only the host's client runs this, so two clients never race to
// prune the same player with conflicting list writes.
func (c *Coordinator) EvictStalePlayers(ctx context.Context, code, requestedBy string) ([]domain.Player, error) {
	unlock := c.lockRoom(code)
	defer unlock()

	room, err := c.store.Get(ctx, code)
	if err != nil {
		return nil, err
	}
	room.Normalize()

	if !c.isHost(room, requestedBy) {
		return nil, ErrNotAuthorized
	}
	if room.Status != domain.StatusWaiting && room.Status != domain.StatusPlaying {
		return nil, nil
	}

	cutoff := c.nowMillis() - StaleAfter.Milliseconds()
	var evicted []domain.Player
	for _, p := range room.Players {
		if !p.IsHost && p.LastSeen < cutoff {
			evicted = append(evicted, p)
		}
	}
	if len(evicted) == 0 {
		return nil, nil
	}

	removals := make([]domain.Removal, len(evicted))
	for i, p := range evicted {
		removals[i] = domain.Removal{PlayerId: p.Id, Reason: domain.RemovalEvicted}
	}
	if err := c.applyRemoval(ctx, code, room, removals); err != nil {
		return nil, err
	}
	return evicted, nil
}

// heartbeatLoop stamps presence on every tick until the context is
// canceled or the room is gone.
func (c *Coordinator) heartbeatLoop(ctx context.Context, code, playerId string, ticks <-chan time.Time) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticks:
			err := c.Heartbeat(ctx, code, playerId)
			switch {
			case err == nil, errors.Is(err, context.Canceled):
			case errors.Is(err, domain.ErrRoomNotFound), errors.Is(err, ErrPlayerNotInRoom):
				return
			default:
				logStoreFailure("heartbeat", code, err)
			}
		}
	}
}

// stalenessLoop is the host-only eviction scan.
func (c *Coordinator) stalenessLoop(ctx context.Context, code, hostId string, ticks <-chan time.Time) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticks:
			_, err := c.EvictStalePlayers(ctx, code, hostId)
			switch {
			case err == nil, errors.Is(err, context.Canceled):
			case errors.Is(err, domain.ErrRoomNotFound), errors.Is(err, ErrNotAuthorized):
				return
			default:
				logStoreFailure("evict stale players", code, err)
			}
		}
	}
}
