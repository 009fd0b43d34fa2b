package game

import (
	"context"
	"errors"
	"time"

	"github.com/bas390/Spyfall/domain"
)

// ReapIfIdle deletes the room if nothing has touched it for RoomIdleAfter.
// Host-only, like eviction. The room is flipped to deleted first so every
// subscriber gets a terminal status instead of a bare disappearance.
func (c *Coordinator) ReapIfIdle(ctx context.Context, code, requestedBy string) (bool, error) {
	unlock := c.lockRoom(code)
	defer unlock()

	room, err := c.store.Get(ctx, code)
	if err != nil {
		return false, err
	}
	room.Normalize()

	if !c.isHost(room, requestedBy) {
		return false, ErrNotAuthorized
	}
	if c.nowMillis()-room.LastActivity <= RoomIdleAfter.Milliseconds() {
		return false, nil
	}

	if err := c.deleteRoom(ctx, code); err != nil {
		return false, err
	}
	c.releaseRoom(code)
	return true, nil
}

func (c *Coordinator) reaperLoop(ctx context.Context, code, hostId string, ticks <-chan time.Time) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticks:
			reaped, err := c.ReapIfIdle(ctx, code, hostId)
			switch {
			case reaped:
				return
			case err == nil, errors.Is(err, context.Canceled):
			case errors.Is(err, domain.ErrRoomNotFound), errors.Is(err, ErrNotAuthorized):
				return
			default:
				logStoreFailure("reap idle room", code, err)
			}
		}
	}
}
