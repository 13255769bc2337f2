package protocol

import "github.com/Atharva587/MultiplayerQuizNew/internal/domain"

// Envelope is a typed server message.
type Envelope[T any] struct {
	Type    MessageType `json:"type"`
	Payload T           `json:"payload"`
}

// Outbound is the form connections accept; payloads are immutable snapshots.
type Outbound = Envelope[any]

type RoomPayload struct {
	Room domain.GameRoom `json:"room"`
}

type RoomWithPlayerPayload struct {
	Room     domain.GameRoom `json:"room"`
	PlayerID string          `json:"playerId"`
}

type QuestionsUpdatedPayload struct {
	QuestionCount int  `json:"questionCount"`
	UseCustom     bool `json:"useCustom"`
}

type QuestionPayload struct {
	Question       domain.Question `json:"question"`
	QuestionIndex  int             `json:"questionIndex"`
	TotalQuestions int             `json:"totalQuestions"`
}

type AnswerResultPayload struct {
	Correct      bool `json:"correct"`
	Points       int  `json:"points"`
	CorrectIndex int  `json:"correctIndex"`
}

type LeaderboardPayload struct {
	Leaderboard []domain.Player `json:"leaderboard"`
}

type GameOverPayload struct {
	Leaderboard     []domain.Player              `json:"leaderboard"`
	AnswerHistories []domain.PlayerAnswerHistory `json:"answerHistories"`
	Questions       []domain.Question            `json:"questions"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}

func RoomCreated(room domain.GameRoom, playerID string) Outbound {
	return Outbound{Type: TypeRoomCreated, Payload: RoomWithPlayerPayload{Room: room, PlayerID: playerID}}
}

func PlayerJoined(room domain.GameRoom, playerID string) Outbound {
	return Outbound{Type: TypePlayerJoined, Payload: RoomWithPlayerPayload{Room: room, PlayerID: playerID}}
}

func RoomUpdate(room domain.GameRoom) Outbound {
	return Outbound{Type: TypeRoomUpdate, Payload: RoomPayload{Room: room}}
}

func PlayerLeft(room domain.GameRoom) Outbound {
	return Outbound{Type: TypePlayerLeft, Payload: RoomPayload{Room: room}}
}

func QuestionsUpdated(count int, useCustom bool) Outbound {
	return Outbound{Type: TypeQuestionsUpdated, Payload: QuestionsUpdatedPayload{QuestionCount: count, UseCustom: useCustom}}
}

func Question(q domain.Question, index, total int) Outbound {
	return Outbound{Type: TypeQuestion, Payload: QuestionPayload{Question: q, QuestionIndex: index, TotalQuestions: total}}
}

func AnswerResult(correct bool, points, correctIndex int) Outbound {
	return Outbound{Type: TypeAnswerResult, Payload: AnswerResultPayload{Correct: correct, Points: points, CorrectIndex: correctIndex}}
}

func QuestionResults(leaderboard []domain.Player) Outbound {
	return Outbound{Type: TypeQuestionResults, Payload: LeaderboardPayload{Leaderboard: leaderboard}}
}

func GameOver(leaderboard []domain.Player, histories []domain.PlayerAnswerHistory, questions []domain.Question) Outbound {
	return Outbound{Type: TypeGameOver, Payload: GameOverPayload{
		Leaderboard:     leaderboard,
		AnswerHistories: histories,
		Questions:       questions,
	}}
}

func Error(message string) Outbound {
	return Outbound{Type: TypeError, Payload: ErrorPayload{Message: message}}
}
