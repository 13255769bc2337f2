package app

import (
	"context"
	"sync"

	"github.com/Atharva587/MultiplayerQuizNew/internal/domain"
	"github.com/Atharva587/MultiplayerQuizNew/internal/protocol"
)

// RoomRepository abstracts where live rooms are kept (in-memory, Redis-marked, etc).
type RoomRepository interface {
	// Insert stores room unless its code is taken and reports whether it did.
	Insert(room *Room) bool
	Get(code string) (*Room, bool)
	Delete(code string)
	Len() int
}

// QuestionSupply provides the default question list used when a room has no custom set.
type QuestionSupply interface {
	DefaultQuestions(ctx context.Context) ([]domain.Question, error)
}

// QuestionLibrary is the saved question store behind the builder UI. The coordinator never reads it.
type QuestionLibrary interface {
	Save(ctx context.Context, questions []domain.Question, folderID *int64) ([]domain.SavedQuestion, error)
	List(ctx context.Context) ([]domain.SavedQuestion, error)
	Delete(ctx context.Context, id int64) error
}

// Conn is the coordinator's view of a client connection. Send must not block.
type Conn interface {
	Send(msg protocol.Outbound) error
}

// Room guards one GameRoom. Every state transition for a room runs under mu.
type Room struct {
	code string

	mu        sync.Mutex
	state     domain.GameRoom
	questions []domain.Question
	closed    bool
}

// NewRoom creates a waiting room whose only player is the host.
func NewRoom(code string, host domain.Player) *Room {
	host.IsHost = true
	return &Room{
		code: code,
		state: domain.GameRoom{
			Code:            code,
			Players:         []domain.Player{host},
			Status:          domain.StatusWaiting,
			CustomQuestions: []domain.Question{},
		},
	}
}

func (r *Room) Code() string {
	return r.code
}

// Snapshot returns a copy of the room state.
func (r *Room) Snapshot() domain.GameRoom {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state.Clone()
}

func (r *Room) currentQuestion() (domain.Question, bool) {
	idx := r.state.CurrentQuestionIndex
	if idx < 0 || idx >= len(r.questions) {
		return domain.Question{}, false
	}
	return r.questions[idx], true
}
