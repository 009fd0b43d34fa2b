package storage

import (
	"context"
	"sync"

	"github.com/bas390/Spyfall/domain"
)

const subscriberBuffer = 64

// MemoryStore is the in-process room document store: the backing for tests
// and for single-node deployments that do not need Postgres. Updates to one
// document are serialized by the store lock, and subscribers receive every
// published snapshot in order.
type MemoryStore struct {
	mu      sync.Mutex
	rooms   map[string]domain.Room
	subs    map[string]map[int]chan domain.RoomUpdate
	nextSub int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		rooms: map[string]domain.Room{},
		subs:  map[string]map[int]chan domain.RoomUpdate{},
	}
}

func (s *MemoryStore) Create(ctx context.Context, room domain.Room) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.rooms[room.Code]; exists {
		return domain.ErrRoomExists
	}
	s.rooms[room.Code] = room.Clone()
	s.publishLocked(room.Code, domain.RoomUpdate{Room: room.Clone()})
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, code string) (domain.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	room, exists := s.rooms[code]
	if !exists {
		return domain.Room{}, domain.ErrRoomNotFound
	}
	return room.Clone(), nil
}

func (s *MemoryStore) Update(ctx context.Context, code string, patch domain.RoomPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	room, exists := s.rooms[code]
	if !exists {
		return domain.ErrRoomNotFound
	}
	patch.Apply(&room)
	s.rooms[code] = room
	s.publishLocked(code, domain.RoomUpdate{Room: room.Clone()})
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	room, exists := s.rooms[code]
	if !exists {
		return domain.ErrRoomNotFound
	}
	delete(s.rooms, code)
	s.publishLocked(code, domain.RoomUpdate{Room: room.Clone(), Deleted: true})
	for id, ch := range s.subs[code] {
		close(ch)
		delete(s.subs[code], id)
	}
	delete(s.subs, code)
	return nil
}

// Subscribe registers a feed for the room, delivering the current snapshot
// first. Canceling ctx unsubscribes and closes the channel.
func (s *MemoryStore) Subscribe(ctx context.Context, code string) (<-chan domain.RoomUpdate, error) {
	s.mu.Lock()
	room, exists := s.rooms[code]
	if !exists {
		s.mu.Unlock()
		return nil, domain.ErrRoomNotFound
	}

	ch := make(chan domain.RoomUpdate, subscriberBuffer)
	id := s.nextSub
	s.nextSub++
	if s.subs[code] == nil {
		s.subs[code] = map[int]chan domain.RoomUpdate{}
	}
	s.subs[code][id] = ch
	ch <- domain.RoomUpdate{Room: room.Clone()}
	s.mu.Unlock()

	go func() {
		<-ctx.Done()
		s.mu.Lock()
		defer s.mu.Unlock()
		if sub, ok := s.subs[code][id]; ok {
			delete(s.subs[code], id)
			close(sub)
		}
	}()

	return ch, nil
}

// publishLocked fans an update out to every subscriber. A subscriber that
// has fallen subscriberBuffer snapshots behind is dropped rather than
// allowed to block every writer.
func (s *MemoryStore) publishLocked(code string, update domain.RoomUpdate) {
	for id, ch := range s.subs[code] {
		select {
		case ch <- update:
		default:
			delete(s.subs[code], id)
			close(ch)
		}
	}
}
