package game

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"github.com/bas390/Spyfall/domain"
)

const (
	wsWriteTimeout = 20 * time.Second
	wsPongTimeout  = time.Minute
	wsPingInterval = 30 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// wsCommand is one client intent sent over the room feed.
type wsCommand struct {
	Action    string `json:"action"`
	Target    string `json:"target,omitempty"`
	Candidate *int   `json:"candidate,omitempty"`
	Winner    string `json:"winner,omitempty"`
}

// wsMessage is one server-to-client frame on the room feed.
type wsMessage struct {
	Type    string       `json:"type"`
	Room    *domain.Room `json:"room,omitempty"`
	Event   *Event       `json:"event,omitempty"`
	Outcome *VoteOutcome `json:"outcome,omitempty"`
	Error   string       `json:"error,omitempty"`
}

// RoomFeedHandler upgrades to a websocket and streams the caller's live view
// of the room: every reconciled snapshot plus the derived events. Client
// intents arrive as commands on the same socket, throttled per connection.
// The caller must already be in the room.
func (h *GameHandler) RoomFeedHandler(ctx *gin.Context) {
	who, ok := h.identity(ctx)
	if !ok {
		return
	}
	code := ctx.Param("code")

	conn, err := upgrader.Upgrade(ctx.Writer, ctx.Request, nil)
	if err != nil {
		slog.Error("websocket upgrade failed", "error", err.Error(), "room", code)
		return
	}

	session, err := h.coordinator.OpenSession(ctx.Request.Context(), code, who.Id)
	if err != nil {
		closeWith(conn, wsCloseReason(err))
		return
	}

	conn.SetReadDeadline(time.Now().Add(wsPongTimeout))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(wsPongTimeout))
		return nil
	})

	replies := make(chan wsMessage, 8)
	go h.commandPump(ctx.Request.Context(), conn, session, who.Id, code, replies)
	h.writePump(conn, session, replies)
}

// writePump owns all writes on the socket. It drains the session feeds and
// the command replies until the session ends, then reports why and closes.
func (h *GameHandler) writePump(conn *websocket.Conn, session *Session, replies <-chan wsMessage) {
	defer session.Close()

	pings := time.NewTicker(wsPingInterval)
	defer pings.Stop()

	for {
		select {
		case room, ok := <-session.Snapshots():
			if !ok {
				closeWith(conn, wsCloseReason(session.Err()))
				return
			}
			if writeJSON(conn, wsMessage{Type: "snapshot", Room: &room}) != nil {
				return
			}
		case event, ok := <-session.Events():
			if !ok {
				closeWith(conn, wsCloseReason(session.Err()))
				return
			}
			if writeJSON(conn, wsMessage{Type: "event", Event: &event}) != nil {
				return
			}
		case reply := <-replies:
			if writeJSON(conn, reply) != nil {
				return
			}
		case <-pings.C:
			conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if conn.WriteMessage(websocket.PingMessage, nil) != nil {
				return
			}
		}
	}
}

// commandPump reads client intents and applies them through the coordinator.
// A connection that floods past the limiter gets its commands rejected, not
// queued.
func (h *GameHandler) commandPump(ctx context.Context, conn *websocket.Conn, session *Session, playerId, code string, replies chan<- wsMessage) {
	defer session.Close()

	limiter := rate.NewLimiter(5, 10)

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return
		}

		var cmd wsCommand
		if err := json.Unmarshal(raw, &cmd); err != nil {
			h.reply(ctx, replies, wsMessage{Type: "error", Error: "bad-command-format"})
			continue
		}

		if !limiter.Allow() {
			h.reply(ctx, replies, wsMessage{Type: "error", Error: "too-many-commands"})
			continue
		}

		msg := h.applyCommand(ctx, cmd, code, playerId)
		if msg != nil {
			h.reply(ctx, replies, *msg)
		}
	}
}

func (h *GameHandler) applyCommand(ctx context.Context, cmd wsCommand, code, playerId string) *wsMessage {
	var err error

	switch cmd.Action {
	case "ready":
		err = h.coordinator.ToggleReady(ctx, code, playerId)
	case "start":
		err = h.coordinator.StartGame(ctx, code, playerId)
	case "kick":
		err = h.coordinator.KickPlayer(ctx, code, cmd.Target, playerId)
	case "start-voting":
		err = h.coordinator.StartVotingRound(ctx, code, playerId)
	case "vote":
		if cmd.Candidate == nil {
			return &wsMessage{Type: "error", Error: "missing-candidate"}
		}
		err = h.coordinator.CastVote(ctx, code, playerId, *cmd.Candidate)
	case "resolve":
		var outcome VoteOutcome
		outcome, err = h.coordinator.ResolveVote(ctx, code)
		if err == nil {
			return &wsMessage{Type: "vote-result", Outcome: &outcome}
		}
	case "finish":
		err = h.coordinator.FinishGame(ctx, code, playerId, domain.Winner(cmd.Winner))
	case "leave":
		err = h.coordinator.LeaveRoom(ctx, code, playerId)
	default:
		return &wsMessage{Type: "error", Error: "unknown-action"}
	}

	if err != nil {
		return &wsMessage{Type: "error", Error: gameErrorString(err)}
	}
	return nil
}

func (h *GameHandler) reply(ctx context.Context, replies chan<- wsMessage, msg wsMessage) {
	select {
	case replies <- msg:
	case <-ctx.Done():
	}
}

func writeJSON(conn *websocket.Conn, msg wsMessage) error {
	conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
	return conn.WriteJSON(msg)
}

func closeWith(conn *websocket.Conn, reason string) {
	conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
	conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, reason))
	conn.Close()
}

// wsCloseReason maps a session-terminating error to the close frame text
// clients branch on.
func wsCloseReason(err error) string {
	switch {
	case err == nil:
		return "session-closed"
	case errors.Is(err, ErrRoomEnded):
		return "room-ended"
	case errors.Is(err, ErrPlayerNotInRoom):
		return "removed-from-room"
	case errors.Is(err, domain.ErrRoomNotFound):
		return "room-not-found"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "session-closed"
	default:
		return "unknown-error"
	}
}

// gameErrorString reuses the sentinel messages, which are already the wire
// strings clients expect.
func gameErrorString(err error) string {
	switch {
	case errors.Is(err, domain.ErrRoomNotFound),
		errors.Is(err, ErrNotAuthorized),
		errors.Is(err, ErrCannotKickHost),
		errors.Is(err, ErrPlayerNotInRoom),
		errors.Is(err, ErrPlayersNotReady),
		errors.Is(err, ErrNotEnoughPlayers),
		errors.Is(err, ErrGameAlreadyStarted),
		errors.Is(err, ErrGameNotStarted),
		errors.Is(err, ErrVotingClosed),
		errors.Is(err, ErrAlreadyVoted),
		errors.Is(err, ErrInvalidCandidate),
		errors.Is(err, ErrInvalidConfig):
		return err.Error()
	default:
		slog.Error("room feed command failed", "error", err.Error())
		return "unknown-error"
	}
}
