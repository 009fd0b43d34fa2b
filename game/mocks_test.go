package game

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/bas390/Spyfall/domain"
)

// --- PeriodicTickerChannelCreator ---

type MockPeriodicTickerChannelCreator struct {
	mock.Mock
}

func (m *MockPeriodicTickerChannelCreator) Create(duration time.Duration) <-chan time.Time {
	args := m.Called(duration)
	return args.Get(0).(chan time.Time)
}

// --- GameRecorder ---

type MockGameRecorder struct {
	mock.Mock
}

func (m *MockGameRecorder) SaveGameHistory(ctx context.Context, record domain.GameRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockGameRecorder) UpdatePlayerStats(ctx context.Context, userId string, won bool, wasSpy bool) error {
	args := m.Called(ctx, userId, won, wasSpy)
	return args.Error(0)
}

// --- UserDirectory ---

type MockUserDirectory struct {
	mock.Mock
}

func (m *MockUserDirectory) GetUserById(ctx context.Context, id string) (domain.User, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.User), args.Error(1)
}

// --- StatsRepo ---

type MockStatsRepo struct {
	mock.Mock
}

func (m *MockStatsRepo) GetPlayerStats(ctx context.Context, userId string) (domain.PlayerStats, error) {
	args := m.Called(ctx, userId)
	return args.Get(0).(domain.PlayerStats), args.Error(1)
}

func (m *MockStatsRepo) GetLeaderboard(ctx context.Context, limit int) ([]domain.PlayerStats, error) {
	args := m.Called(ctx, limit)
	return args.Get(0).([]domain.PlayerStats), args.Error(1)
}

// --- RoomStore ---

type MockRoomStore struct {
	mock.Mock
}

func (m *MockRoomStore) Create(ctx context.Context, room domain.Room) error {
	args := m.Called(ctx, room)
	return args.Error(0)
}

func (m *MockRoomStore) Get(ctx context.Context, code string) (domain.Room, error) {
	args := m.Called(ctx, code)
	return args.Get(0).(domain.Room), args.Error(1)
}

func (m *MockRoomStore) Update(ctx context.Context, code string, patch domain.RoomPatch) error {
	args := m.Called(ctx, code, patch)
	return args.Error(0)
}

func (m *MockRoomStore) Delete(ctx context.Context, code string) error {
	args := m.Called(ctx, code)
	return args.Error(0)
}

func (m *MockRoomStore) Subscribe(ctx context.Context, code string) (<-chan domain.RoomUpdate, error) {
	args := m.Called(ctx, code)
	return args.Get(0).(chan domain.RoomUpdate), args.Error(1)
}
