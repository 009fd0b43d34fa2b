package game

import (
	"context"
	"sync"

	"github.com/bas390/Spyfall/domain"
)

// Session is one client's live view of a room: a subscription to the shared
// document, the derived event feed, and the background tasks that keep the
// room healthy. The heartbeat runs for every participant; the staleness scan
// and the reaper only run when the session belongs to the host. Closing the
// session (or canceling the parent context) stops every timer.
type Session struct {
	coordinator *Coordinator
	code        string
	playerId    string

	cancel    context.CancelFunc
	snapshots chan domain.Room
	events    chan Event
	done      chan struct{}

	mu  sync.Mutex
	err error
}

// OpenSession subscribes playerId to the room and starts its liveness tasks.
// The caller must be in the room already (join first, then open).
func (c *Coordinator) OpenSession(ctx context.Context, code, playerId string) (*Session, error) {
	room, err := c.store.Get(ctx, code)
	if err != nil {
		return nil, err
	}
	room.Normalize()
	if !room.HasPlayer(playerId) {
		return nil, ErrPlayerNotInRoom
	}

	sessCtx, cancel := context.WithCancel(ctx)
	updates, err := c.store.Subscribe(sessCtx, code)
	if err != nil {
		cancel()
		return nil, err
	}

	s := &Session{
		coordinator: c,
		code:        code,
		playerId:    playerId,
		cancel:      cancel,
		snapshots:   make(chan domain.Room, 16),
		events:      make(chan Event, 64),
		done:        make(chan struct{}),
	}

	go c.heartbeatLoop(sessCtx, code, playerId, c.tickerGen.Create(HeartbeatInterval))
	host, ok := room.Host()
	if ok && host.Id == playerId {
		go c.stalenessLoop(sessCtx, code, playerId, c.tickerGen.Create(StaleScanInterval))
		go c.reaperLoop(sessCtx, code, playerId, c.tickerGen.Create(ReaperInterval))
	}

	go s.run(sessCtx, updates)
	return s, nil
}

// Snapshots delivers every reconciled room state. Closed when the session
// ends.
func (s *Session) Snapshots() <-chan domain.Room { return s.snapshots }

// Events delivers the domain events derived from successive snapshots.
// Closed when the session ends.
func (s *Session) Events() <-chan Event { return s.events }

// Done closes when the session has ended for any reason; Err then reports
// why. ErrRoomEnded means the room was deleted remotely.
func (s *Session) Done() <-chan struct{} { return s.done }

func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Close cancels the subscription and stops every timer the session owns.
func (s *Session) Close() {
	s.cancel()
}

func (s *Session) run(ctx context.Context, updates <-chan domain.RoomUpdate) {
	defer func() {
		s.cancel()
		close(s.events)
		close(s.snapshots)
		close(s.done)
	}()

	var prev *domain.Room
	for {
		select {
		case <-ctx.Done():
			s.fail(ctx.Err())
			return
		case update, ok := <-updates:
			if !ok {
				// Feed closed without a terminal update: the store
				// dropped us.
				s.fail(ErrRoomEnded)
				return
			}
			if update.Deleted || update.Room.Status == domain.StatusDeleted {
				s.fail(ErrRoomEnded)
				return
			}

			room := update.Room
			room.Normalize()
			if !room.HasPlayer(s.playerId) {
				// Kicked or evicted; the last events explain which.
				s.emitEvents(DiffRooms(prev, room))
				s.fail(ErrPlayerNotInRoom)
				return
			}

			s.emitEvents(DiffRooms(prev, room))
			select {
			case s.snapshots <- room.Clone():
			default:
				// Slow consumer: drop the oldest buffered snapshot so
				// the latest state is always deliverable.
				select {
				case <-s.snapshots:
				default:
				}
				select {
				case s.snapshots <- room.Clone():
				case <-ctx.Done():
					s.fail(ctx.Err())
					return
				}
			}
			snap := room
			prev = &snap
		}
	}
}

func (s *Session) emitEvents(events []Event) {
	for _, e := range events {
		select {
		case s.events <- e:
		default:
			// Event feed is best-effort notification, snapshots carry
			// the truth.
		}
	}
}

func (s *Session) fail(err error) {
	s.mu.Lock()
	if s.err == nil {
		s.err = err
	}
	s.mu.Unlock()
}
