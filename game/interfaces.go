package game

import (
	"context"
	"time"

	"github.com/bas390/Spyfall/domain"
)

// RoomStore is the shared document store a coordinator writes intents to and
// reads snapshots from. Create is create-if-absent (domain.ErrRoomExists on
// collision). Update applies a whole patch atomically and serialized against
// other updates to the same document. Subscribe delivers the current snapshot
// followed by every subsequent one; an update with Deleted set is terminal
// and the channel closes after it. Cancel the context to unsubscribe.
type RoomStore interface {
	Create(ctx context.Context, room domain.Room) error
	Get(ctx context.Context, code string) (domain.Room, error)
	Update(ctx context.Context, code string, patch domain.RoomPatch) error
	Delete(ctx context.Context, code string) error
	Subscribe(ctx context.Context, code string) (<-chan domain.RoomUpdate, error)
}

// GameRecorder persists the summary of a finished game. A nil recorder on
// the coordinator disables history and stats.
type GameRecorder interface {
	SaveGameHistory(ctx context.Context, record domain.GameRecord) error
	UpdatePlayerStats(ctx context.Context, userId string, won bool, wasSpy bool) error
}

type PeriodicTickerChannelCreator interface {
	Create(duration time.Duration) <-chan time.Time
}
