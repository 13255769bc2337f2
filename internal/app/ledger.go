package app

import (
	"sync"

	"github.com/Atharva587/MultiplayerQuizNew/internal/domain"
)

// AnswerLedger keeps per-room, per-player answer records for the running game.
type AnswerLedger struct {
	mu    sync.Mutex
	rooms map[string]map[string][]domain.AnswerRecord
}

func NewAnswerLedger() *AnswerLedger {
	return &AnswerLedger{rooms: make(map[string]map[string][]domain.AnswerRecord)}
}

// Open starts an empty ledger for a room, replacing any previous one.
func (l *AnswerLedger) Open(roomCode string, playerIDs []string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	entries := make(map[string][]domain.AnswerRecord, len(playerIDs))
	for _, id := range playerIDs {
		entries[id] = []domain.AnswerRecord{}
	}
	l.rooms[roomCode] = entries
}

// Append records an answer. It reports false when the room has no open ledger.
func (l *AnswerLedger) Append(roomCode, playerID string, record domain.AnswerRecord) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	entries, ok := l.rooms[roomCode]
	if !ok {
		return false
	}
	entries[playerID] = append(entries[playerID], record)
	return true
}

// Histories builds the end-of-game review for the given players in their order.
func (l *AnswerLedger) Histories(roomCode string, players []domain.Player) []domain.PlayerAnswerHistory {
	l.mu.Lock()
	defer l.mu.Unlock()
	entries := l.rooms[roomCode]
	out := make([]domain.PlayerAnswerHistory, 0, len(players))
	for _, p := range players {
		answers := append([]domain.AnswerRecord{}, entries[p.ID]...)
		out = append(out, domain.PlayerAnswerHistory{
			PlayerID:   p.ID,
			PlayerName: p.Name,
			Answers:    answers,
			TotalScore: p.Score,
		})
	}
	return out
}

func (l *AnswerLedger) Discard(roomCode string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.rooms, roomCode)
}

// Active reports whether roomCode has an open ledger.
func (l *AnswerLedger) Active(roomCode string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.rooms[roomCode]
	return ok
}
