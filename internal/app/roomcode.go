package app

import (
	"crypto/rand"

	"github.com/Atharva587/MultiplayerQuizNew/internal/domain"
)

const maxRoomCodeAttempts = 10

// GenerateRoomCode draws RoomCodeLength symbols from RoomCodeAlphabet.
func GenerateRoomCode() (string, error) {
	b := make([]byte, domain.RoomCodeLength)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	for i := range b {
		b[i] = domain.RoomCodeAlphabet[int(b[i])%len(domain.RoomCodeAlphabet)]
	}
	return string(b), nil
}
