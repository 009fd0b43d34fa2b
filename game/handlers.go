package game

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bas390/Spyfall/catalog"
	"github.com/bas390/Spyfall/domain"
)

// UserDirectory resolves authenticated user ids to display data.
type UserDirectory interface {
	GetUserById(ctx context.Context, id string) (domain.User, error)
}

// StatsRepo serves the read side of the recorded game data.
type StatsRepo interface {
	GetPlayerStats(ctx context.Context, userId string) (domain.PlayerStats, error)
	GetLeaderboard(ctx context.Context, limit int) ([]domain.PlayerStats, error)
}

type GameHandler struct {
	coordinator *Coordinator
	users       UserDirectory
	stats       StatsRepo
}

func NewGameHandler(coordinator *Coordinator, users UserDirectory, stats StatsRepo) *GameHandler {
	return &GameHandler{coordinator: coordinator, users: users, stats: stats}
}

func (h *GameHandler) identity(ctx *gin.Context) (Identity, bool) {
	id := ctx.GetString("id")
	if id == "" {
		slog.Error("Unexpected error, id not found. What is the middleware doing?",
			"ip", ctx.ClientIP(),
			"user_agent", ctx.Request.UserAgent(),
		)
		ctx.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "unknown-error"})
		return Identity{}, false
	}

	user, err := h.users.GetUserById(ctx.Request.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unknown-user"})
			return Identity{}, false
		}
		slog.Error("identity lookup failed", "error", err.Error(), "user_id", id)
		ctx.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "unknown-error"})
		return Identity{}, false
	}

	return Identity{Id: user.Id, Name: user.Username}, true
}

func (h *GameHandler) CreateRoomHandler(ctx *gin.Context) {
	who, ok := h.identity(ctx)
	if !ok {
		return
	}

	var cfg RoomConfig
	if err := ctx.ShouldBindJSON(&cfg); err != nil {
		ctx.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "bad-request-format"})
		return
	}

	code, err := h.coordinator.CreateRoom(ctx.Request.Context(), cfg, who)
	if err != nil {
		respondGameError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{"code": code})
}

func (h *GameHandler) JoinRoomHandler(ctx *gin.Context) {
	who, ok := h.identity(ctx)
	if !ok {
		return
	}

	err := h.coordinator.JoinRoom(ctx.Request.Context(), ctx.Param("code"), who)
	if err != nil {
		respondGameError(ctx, err)
		return
	}
	ctx.Status(http.StatusOK)
}

func (h *GameHandler) LeaveRoomHandler(ctx *gin.Context) {
	who, ok := h.identity(ctx)
	if !ok {
		return
	}

	err := h.coordinator.LeaveRoom(ctx.Request.Context(), ctx.Param("code"), who.Id)
	if err != nil {
		respondGameError(ctx, err)
		return
	}
	ctx.Status(http.StatusOK)
}

func (h *GameHandler) GetRoomHandler(ctx *gin.Context) {
	room, err := h.coordinator.GetRoom(ctx.Request.Context(), ctx.Param("code"))
	if err != nil {
		respondGameError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, room)
}

func (h *GameHandler) LocationsHandler(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{
		"categories": catalog.Categories(),
		"locations":  catalog.All(),
	})
}

func (h *GameHandler) MyStatsHandler(ctx *gin.Context) {
	who, ok := h.identity(ctx)
	if !ok {
		return
	}

	stats, err := h.stats.GetPlayerStats(ctx.Request.Context(), who.Id)
	if err != nil {
		slog.Error("stats lookup failed", "error", err.Error(), "user_id", who.Id)
		ctx.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "unknown-error"})
		return
	}
	ctx.JSON(http.StatusOK, stats)
}

func (h *GameHandler) LeaderboardHandler(ctx *gin.Context) {
	leaderboard, err := h.stats.GetLeaderboard(ctx.Request.Context(), 20)
	if err != nil {
		slog.Error("leaderboard lookup failed", "error", err.Error())
		ctx.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "unknown-error"})
		return
	}
	ctx.JSON(http.StatusOK, leaderboard)
}

func respondGameError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrRoomNotFound):
		ctx.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "room-not-found"})
	case errors.Is(err, ErrInvalidConfig):
		ctx.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, ErrRoomFull):
		ctx.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": "room-full"})
	case errors.Is(err, ErrRoomNotJoinable):
		ctx.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": "room-not-joinable"})
	case errors.Is(err, ErrNotAuthorized):
		ctx.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "not-authorized"})
	case errors.Is(err, ErrCannotKickHost):
		ctx.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "cannot-kick-host"})
	case errors.Is(err, ErrPlayerNotInRoom):
		ctx.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "player-not-in-room"})
	case errors.Is(err, ErrPlayersNotReady),
		errors.Is(err, ErrNotEnoughPlayers),
		errors.Is(err, ErrGameAlreadyStarted),
		errors.Is(err, ErrGameNotStarted),
		errors.Is(err, ErrVotingClosed),
		errors.Is(err, ErrAlreadyVoted),
		errors.Is(err, ErrInvalidCandidate):
		ctx.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, context.DeadlineExceeded):
		ctx.AbortWithStatusJSON(http.StatusGatewayTimeout, gin.H{"error": "server-timeout"})
	case errors.Is(err, context.Canceled):
		ctx.AbortWithStatus(499)
	default:
		slog.Error("game operation failed", "error", err.Error(), "path", ctx.FullPath())
		ctx.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "unknown-error"})
	}
}
