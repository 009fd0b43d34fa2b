package domain

type User struct {
	Id           string
	Username     string
	PasswordHash string
}

// GameRecord is the durable summary of a finished game, kept for the
// history and leaderboard queries.
type GameRecord struct {
	RoomCode        string   `json:"roomCode"`
	Players         []string `json:"players"`
	Location        string   `json:"location"`
	Spies           []int    `json:"spies"`
	Winner          Winner   `json:"winner"`
	DurationSeconds int      `json:"durationSeconds"`
	FinishedAt      int64    `json:"finishedAt"`
}

type PlayerStats struct {
	UserId     string `json:"userId"`
	TotalGames int    `json:"totalGames"`
	Wins       int    `json:"wins"`
	SpyGames   int    `json:"spyGames"`
	SpyWins    int    `json:"spyWins"`
}
