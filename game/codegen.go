package game

import (
	crand "crypto/rand"
	"math/big"
	"math/rand"
)

// generateRoomCode returns a random short code. It is not guaranteed unique:
// CreateRoom relies on the store's create-if-absent and retries on collision.
func generateRoomCode() string {
	code := make([]byte, RoomCodeLength)
	for i := range code {
		n, err := crand.Int(crand.Reader, big.NewInt(int64(len(RoomCodeChars))))
		if err != nil {
			// crypto/rand failing is effectively fatal elsewhere; a
			// math/rand code is still a usable room code.
			code[i] = RoomCodeChars[rand.Intn(len(RoomCodeChars))]
			continue
		}
		code[i] = RoomCodeChars[n.Int64()]
	}
	return string(code)
}
