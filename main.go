package main

import (
	"context"
	"log"
	"log/slog"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"slices"
	"strings"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/bas390/Spyfall/auth"
	"github.com/bas390/Spyfall/catalog"
	"github.com/bas390/Spyfall/crypto"
	"github.com/bas390/Spyfall/game"
	"github.com/bas390/Spyfall/migrations"
	"github.com/bas390/Spyfall/storage"
)

func CreateServer(allowedOrigins []string) *gin.Engine {
	r := gin.New()
	r.SetTrustedProxies([]string{"127.0.0.1", "10.0.0.0/8", "172.16.0.0/12", "192.168.0.0/16"})
	r.GET("/health", func(ctx *gin.Context) { ctx.String(200, "healthy") })

	r.Use(func(ctx *gin.Context) {
		origin := ctx.Request.Header.Get("Origin")

		if slices.Contains(allowedOrigins, origin) {
			ctx.Next()
			return
		}
		ctx.String(http.StatusForbidden, "forbidden origin")
		ctx.Abort()
	})

	r.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowCredentials: true,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders: []string{
			"Content-Type",
			"Authorization",
			"Upgrade",
			"Connection",
			"Sec-WebSocket-Key",
			"Sec-WebSocket-Version",
			"Sec-WebSocket-Extensions",
			"Sec-WebSocket-Protocol",
		},
	}))

	return r
}

func main() {

	// logger setup
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// ENVs
	godotenv.Load()

	ALLOWED_ORIGINS, exists := os.LookupEnv("ALLOWED_ORIGINS")
	if !exists {
		log.Fatal("Missing allowed origins")
	}
	allowedOrigins := strings.Split(ALLOWED_ORIGINS, ",")

	POSTGRES_URL, exists := os.LookupEnv("POSTGRES_URL")
	if !exists {
		log.Fatal("Missing postgres url")
	}

	JWT_KEY, exists := os.LookupEnv("JWT_KEY")
	if !exists {
		log.Fatal("Missing jwt signing key")
	}

	// run migrations
	migrations.Migrate(POSTGRES_URL)

	// Dependencies
	store, err := storage.NewPostgresStore(context.Background(), POSTGRES_URL)
	if err != nil {
		log.Fatal(err)
	}
	tokenAge := time.Hour * 24 * 7 // 7 days
	passwordHasher := crypto.NewArgon2idHasher(3, 1024*64, 32, 16, 1)
	tokenManager := crypto.NewJWTManager(JWT_KEY, tokenAge)

	authService := auth.NewService(store, passwordHasher, tokenManager)
	authHandler := auth.NewAuthHandler(authService, tokenAge)

	r := CreateServer(allowedOrigins)

	{
		auth := r.Group("/auth")
		auth.POST("/signup", authHandler.SignupHandler)
		auth.POST("/login", authHandler.LoginHandler)
		auth.POST("/logout", authHandler.LogoutHandler)
		auth.GET("/refresh", authHandler.RefreshSessionHandler)
	}

	tickerGen := game.NewTickerGen()
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	coordinator := game.NewCoordinator(store, store, catalog.All(), &tickerGen, rng)

	gameHandler := game.NewGameHandler(coordinator, store, store)
	{
		gameGroup := r.Group("/game")
		gameGroup.Use(authHandler.RequireAuthMiddleware(time.Second * 2))

		gameGroup.POST("/rooms", gameHandler.CreateRoomHandler)
		gameGroup.POST("/rooms/:code/join", gameHandler.JoinRoomHandler)
		gameGroup.POST("/rooms/:code/leave", gameHandler.LeaveRoomHandler)
		gameGroup.GET("/rooms/:code", gameHandler.GetRoomHandler)
		gameGroup.GET("/rooms/:code/ws", gameHandler.RoomFeedHandler)
		gameGroup.GET("/locations", gameHandler.LocationsHandler)
		gameGroup.GET("/stats/me", gameHandler.MyStatsHandler)
		gameGroup.GET("/stats/leaderboard", gameHandler.LeaderboardHandler)
	}

	go r.Run(":5000")
	sigCh := make(chan os.Signal, 1)

	signal.Notify(sigCh, syscall.SIGTERM, os.Interrupt)
	slog.Info("server started")
	<-sigCh
	slog.Info("SIGTERM or SIGINT received, shutting down")
	store.Close()
}
