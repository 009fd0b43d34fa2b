package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bas390/Spyfall/domain"
)

// roomChannel is the Postgres NOTIFY channel the rooms trigger writes to.
// Payload format: "<code>:u" for upserts, "<code>:d" for deletes.
const roomChannel = "room_updates"

type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, connString string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, err
	}
	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) Close() {
	s.pool.Close()
}

// --- rooms ---

func (s *PostgresStore) Create(ctx context.Context, room domain.Room) error {
	doc, err := json.Marshal(room)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.UnexpectedDatabaseError, err)
	}

	tag, err := s.pool.Exec(ctx,
		"INSERT INTO rooms(code, document) VALUES($1, $2) ON CONFLICT (code) DO NOTHING",
		room.Code, doc)
	if err != nil {
		return wrapDBErr(err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrRoomExists
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, code string) (domain.Room, error) {
	var doc []byte
	err := s.pool.QueryRow(ctx, "SELECT document FROM rooms WHERE code = $1", code).Scan(&doc)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Room{}, domain.ErrRoomNotFound
		}
		return domain.Room{}, wrapDBErr(err)
	}
	return decodeRoom(doc)
}

// Update applies the patch inside a transaction holding the document's row
// lock, so patches to the same room are serialized even across processes.
func (s *PostgresStore) Update(ctx context.Context, code string, patch domain.RoomPatch) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return wrapDBErr(err)
	}
	defer tx.Rollback(ctx)

	var doc []byte
	err = tx.QueryRow(ctx, "SELECT document FROM rooms WHERE code = $1 FOR UPDATE", code).Scan(&doc)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrRoomNotFound
		}
		return wrapDBErr(err)
	}

	room, err := decodeRoom(doc)
	if err != nil {
		return err
	}
	patch.Apply(&room)

	newDoc, err := json.Marshal(room)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.UnexpectedDatabaseError, err)
	}
	if _, err := tx.Exec(ctx, "UPDATE rooms SET document = $2, updated_at = now() WHERE code = $1", code, newDoc); err != nil {
		return wrapDBErr(err)
	}
	if err := tx.Commit(ctx); err != nil {
		return wrapDBErr(err)
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, code string) error {
	tag, err := s.pool.Exec(ctx, "DELETE FROM rooms WHERE code = $1", code)
	if err != nil {
		return wrapDBErr(err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrRoomNotFound
	}
	return nil
}

// Subscribe LISTENs on the rooms notify channel with a dedicated connection
// and re-reads the document on every notification for our code. The current
// snapshot is delivered first. LISTEN starts before the initial read so a
// write landing between the two is notified rather than missed.
func (s *PostgresStore) Subscribe(ctx context.Context, code string) (<-chan domain.RoomUpdate, error) {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return nil, wrapDBErr(err)
	}
	if _, err := conn.Exec(ctx, "LISTEN "+roomChannel); err != nil {
		conn.Release()
		return nil, wrapDBErr(err)
	}

	initial, err := s.Get(ctx, code)
	if err != nil {
		conn.Release()
		return nil, err
	}

	ch := make(chan domain.RoomUpdate, subscriberBuffer)
	ch <- domain.RoomUpdate{Room: initial}

	go func() {
		defer close(ch)
		defer conn.Release()

		for {
			notification, err := conn.Conn().WaitForNotification(ctx)
			if err != nil {
				// ctx canceled or connection lost; both end the feed.
				return
			}
			notifiedCode, op, found := strings.Cut(notification.Payload, ":")
			if !found || notifiedCode != code {
				continue
			}

			if op == "d" {
				select {
				case ch <- domain.RoomUpdate{Deleted: true}:
				case <-ctx.Done():
				}
				return
			}

			room, err := s.Get(ctx, code)
			if err != nil {
				if errors.Is(err, domain.ErrRoomNotFound) {
					// Deleted between notify and read; still terminal.
					select {
					case ch <- domain.RoomUpdate{Deleted: true}:
					case <-ctx.Done():
					}
					return
				}
				slog.Error("room subscription read failed", "room", code, "error", err.Error())
				continue
			}
			select {
			case ch <- domain.RoomUpdate{Room: room}:
			case <-ctx.Done():
				return
			}
		}
	}()

	return ch, nil
}

// --- users ---

func (s *PostgresStore) CreateUser(ctx context.Context, username, passwordHash string) (string, error) {
	id := uuid.NewString()
	_, err := s.pool.Exec(ctx,
		"INSERT INTO users(id, username, password_hash) VALUES($1, $2, $3)",
		id, username, passwordHash)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			// unique_violation
			return "", domain.ErrDuplicateUsername
		}
		return "", wrapDBErr(err)
	}
	return id, nil
}

func (s *PostgresStore) GetUserByUsername(ctx context.Context, username string) (domain.User, error) {
	user := domain.User{Username: username}
	err := s.pool.QueryRow(ctx,
		"SELECT id, password_hash FROM users WHERE username = $1", username).
		Scan(&user.Id, &user.PasswordHash)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, domain.ErrUserNotFound
		}
		return domain.User{}, wrapDBErr(err)
	}
	return user, nil
}

func (s *PostgresStore) GetUserById(ctx context.Context, id string) (domain.User, error) {
	user := domain.User{Id: id}
	err := s.pool.QueryRow(ctx,
		"SELECT username, password_hash FROM users WHERE id = $1", id).
		Scan(&user.Username, &user.PasswordHash)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, domain.ErrUserNotFound
		}
		return domain.User{}, wrapDBErr(err)
	}
	return user, nil
}

// --- history and stats ---

func (s *PostgresStore) SaveGameHistory(ctx context.Context, record domain.GameRecord) error {
	spies, err := json.Marshal(record.Spies)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.UnexpectedDatabaseError, err)
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO game_history(room_code, players, location, spies, winner, duration_seconds, finished_at)
		VALUES($1, $2, $3, $4, $5, $6, to_timestamp($7 / 1000.0))`,
		record.RoomCode, record.Players, record.Location, spies,
		string(record.Winner), record.DurationSeconds, record.FinishedAt)
	if err != nil {
		return wrapDBErr(err)
	}
	return nil
}

func (s *PostgresStore) UpdatePlayerStats(ctx context.Context, userId string, won bool, wasSpy bool) error {
	wins, spyGames, spyWins := 0, 0, 0
	if won {
		wins = 1
	}
	if wasSpy {
		spyGames = 1
		if won {
			spyWins = 1
		}
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO player_stats(user_id, total_games, wins, spy_games, spy_wins)
		VALUES($1, 1, $2, $3, $4)
		ON CONFLICT (user_id) DO UPDATE SET
			total_games = player_stats.total_games + 1,
			wins        = player_stats.wins + EXCLUDED.wins,
			spy_games   = player_stats.spy_games + EXCLUDED.spy_games,
			spy_wins    = player_stats.spy_wins + EXCLUDED.spy_wins,
			updated_at  = now()`,
		userId, wins, spyGames, spyWins)
	if err != nil {
		return wrapDBErr(err)
	}
	return nil
}

func (s *PostgresStore) GetPlayerStats(ctx context.Context, userId string) (domain.PlayerStats, error) {
	stats := domain.PlayerStats{UserId: userId}
	err := s.pool.QueryRow(ctx,
		"SELECT total_games, wins, spy_games, spy_wins FROM player_stats WHERE user_id = $1", userId).
		Scan(&stats.TotalGames, &stats.Wins, &stats.SpyGames, &stats.SpyWins)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return stats, nil // no games yet is an empty record, not an error
		}
		return domain.PlayerStats{}, wrapDBErr(err)
	}
	return stats, nil
}

func (s *PostgresStore) GetLeaderboard(ctx context.Context, limit int) ([]domain.PlayerStats, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT user_id, total_games, wins, spy_games, spy_wins
		FROM player_stats ORDER BY wins DESC, total_games ASC LIMIT $1`, limit)
	if err != nil {
		return nil, wrapDBErr(err)
	}
	defer rows.Close()

	leaderboard := make([]domain.PlayerStats, 0, limit)
	for rows.Next() {
		var stats domain.PlayerStats
		if err := rows.Scan(&stats.UserId, &stats.TotalGames, &stats.Wins, &stats.SpyGames, &stats.SpyWins); err != nil {
			return nil, wrapDBErr(err)
		}
		leaderboard = append(leaderboard, stats)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapDBErr(err)
	}
	return leaderboard, nil
}

func decodeRoom(doc []byte) (domain.Room, error) {
	var room domain.Room
	if err := json.Unmarshal(doc, &room); err != nil {
		return domain.Room{}, fmt.Errorf("%w: %w", domain.UnexpectedDatabaseError, err)
	}
	room.Normalize()
	return room, nil
}

func wrapDBErr(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return fmt.Errorf("%w: %w", domain.UnexpectedDatabaseError, err)
}
