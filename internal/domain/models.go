package domain

import "time"

// Status is the lifecycle stage of a room.
type Status string

const (
	StatusWaiting         Status = "waiting"
	StatusConfiguring     Status = "configuring"
	StatusPlaying         Status = "playing"
	StatusQuestionResults Status = "question_results"
	StatusFinished        Status = "finished"
)

// Joinable reports whether new players may still enter a room in this status.
func (s Status) Joinable() bool {
	return s == StatusWaiting || s == StatusConfiguring
}

const (
	// MaxPlayers is the room capacity.
	MaxPlayers = 8
	// RoomCodeLength and RoomCodeAlphabet define room codes; I, O, 0 and 1 are left out.
	RoomCodeLength   = 6
	RoomCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	// TimeoutAnswer is the selectedAnswer recorded for a player who did not answer in time.
	TimeoutAnswer = -1
)

// Question is a single-correct multiple choice question.
type Question struct {
	ID           int      `json:"id"`
	Question     string   `json:"question" validate:"required"`
	Options      []string `json:"options" validate:"len=4,dive,required"`
	CorrectIndex int      `json:"correctIndex" validate:"min=0,max=3"`
	Category     string   `json:"category"`
}

type Player struct {
	ID                string `json:"id"`
	Name              string `json:"name"`
	Score             int    `json:"score"`
	IsHost            bool   `json:"isHost"`
	HasAnswered       bool   `json:"hasAnswered"`
	LastAnswerCorrect *bool  `json:"lastAnswerCorrect,omitempty"`
	LastAnswerTime    *int   `json:"lastAnswerTime,omitempty"`
}

// RecordAnswer marks the player as answered for the current question.
func (p *Player) RecordAnswer(correct bool, timeRemaining, points int) {
	p.HasAnswered = true
	p.LastAnswerCorrect = &correct
	p.LastAnswerTime = &timeRemaining
	p.Score += points
}

// ResetRound clears per-question answer state.
func (p *Player) ResetRound() {
	p.HasAnswered = false
	p.LastAnswerCorrect = nil
	p.LastAnswerTime = nil
}

// GameRoom is the externally visible state of a room.
type GameRoom struct {
	Code                 string     `json:"code"`
	Players              []Player   `json:"players"`
	Status               Status     `json:"status"`
	CurrentQuestionIndex int        `json:"currentQuestionIndex"`
	QuestionStartTime    *int64     `json:"questionStartTime,omitempty"`
	CustomQuestions      []Question `json:"customQuestions"`
	UseCustomQuestions   bool       `json:"useCustomQuestions"`
}

// Clone returns a copy that shares no mutable slices with r.
func (r GameRoom) Clone() GameRoom {
	out := r
	out.Players = append([]Player(nil), r.Players...)
	out.CustomQuestions = append([]Question(nil), r.CustomQuestions...)
	if out.CustomQuestions == nil {
		out.CustomQuestions = []Question{}
	}
	if r.QuestionStartTime != nil {
		ts := *r.QuestionStartTime
		out.QuestionStartTime = &ts
	}
	return out
}

// PlayerIndex returns the position of the player in join order, or -1.
func (r *GameRoom) PlayerIndex(playerID string) int {
	for i := range r.Players {
		if r.Players[i].ID == playerID {
			return i
		}
	}
	return -1
}

// AllAnswered reports whether every current player has answered.
func (r *GameRoom) AllAnswered() bool {
	for i := range r.Players {
		if !r.Players[i].HasAnswered {
			return false
		}
	}
	return true
}

// AnswerRecord is one player's outcome for one question.
type AnswerRecord struct {
	QuestionIndex  int    `json:"questionIndex"`
	QuestionText   string `json:"questionText"`
	SelectedAnswer int    `json:"selectedAnswer"`
	CorrectAnswer  int    `json:"correctAnswer"`
	IsCorrect      bool   `json:"isCorrect"`
	Points         int    `json:"points"`
	TimeRemaining  int    `json:"timeRemaining"`
}

type PlayerAnswerHistory struct {
	PlayerID   string         `json:"playerId"`
	PlayerName string         `json:"playerName"`
	Answers    []AnswerRecord `json:"answers"`
	TotalScore int            `json:"totalScore"`
}

// SavedQuestion is a question persisted in the question library.
type SavedQuestion struct {
	ID           int64     `json:"id"`
	Question     string    `json:"question"`
	Options      []string  `json:"options"`
	CorrectIndex int       `json:"correctIndex"`
	Category     string    `json:"category"`
	QuestionType string    `json:"questionType"`
	FolderID     *int64    `json:"folderId,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

// AsQuestion converts a library entry into a playable question.
func (s SavedQuestion) AsQuestion() Question {
	return Question{
		ID:           int(s.ID),
		Question:     s.Question,
		Options:      append([]string(nil), s.Options...),
		CorrectIndex: s.CorrectIndex,
		Category:     s.Category,
	}
}

const (
	DefaultCategory     = "General"
	DefaultQuestionType = "multiple_choice"
)
