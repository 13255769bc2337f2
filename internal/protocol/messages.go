package protocol

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Atharva587/MultiplayerQuizNew/internal/domain"
)

// MessageType names an envelope on the wire.
type MessageType string

// Client to server.
const (
	TypeCreateRoom         MessageType = "create_room"
	TypeJoinRoom           MessageType = "join_room"
	TypeSetCustomQuestions MessageType = "set_custom_questions"
	TypeStartGame          MessageType = "start_game"
	TypeAnswer             MessageType = "answer"
	TypeNextQuestion       MessageType = "next_question"
)

// Server to client.
const (
	TypeRoomCreated      MessageType = "room_created"
	TypePlayerJoined     MessageType = "player_joined"
	TypeRoomUpdate       MessageType = "room_update"
	TypePlayerLeft       MessageType = "player_left"
	TypeQuestionsUpdated MessageType = "questions_updated"
	TypeQuestion         MessageType = "question"
	TypeAnswerResult     MessageType = "answer_result"
	TypeQuestionResults  MessageType = "question_results"
	TypeGameOver         MessageType = "game_over"
	TypeError            MessageType = "error"
)

var (
	// ErrMalformed covers undecodable envelopes and payloads failing validation.
	ErrMalformed = errors.New("malformed message")
	// ErrUnknownType is returned for envelope types outside the inbound set.
	ErrUnknownType = errors.New("unknown message type")
)

// Inbound is one of the client message payloads below.
type Inbound interface {
	Type() MessageType
	inbound()
}

type CreateRoom struct {
	PlayerName string `json:"playerName" validate:"required"`
}

type JoinRoom struct {
	RoomCode   string `json:"roomCode"`
	PlayerName string `json:"playerName" validate:"required"`
}

type SetCustomQuestions struct {
	RoomCode  string            `json:"roomCode"`
	Questions []domain.Question `json:"questions" validate:"dive"`
	UseCustom bool              `json:"useCustom"`
}

type StartGame struct {
	RoomCode string `json:"roomCode"`
}

type Answer struct {
	RoomCode      string `json:"roomCode"`
	QuestionID    int    `json:"questionId"`
	AnswerIndex   int    `json:"answerIndex" validate:"min=-1,max=3"`
	TimeRemaining int    `json:"timeRemaining"`
}

type NextQuestion struct {
	RoomCode string `json:"roomCode"`
}

func (CreateRoom) Type() MessageType         { return TypeCreateRoom }
func (JoinRoom) Type() MessageType           { return TypeJoinRoom }
func (SetCustomQuestions) Type() MessageType { return TypeSetCustomQuestions }
func (StartGame) Type() MessageType          { return TypeStartGame }
func (Answer) Type() MessageType             { return TypeAnswer }
func (NextQuestion) Type() MessageType       { return TypeNextQuestion }

func (CreateRoom) inbound()         {}
func (JoinRoom) inbound()           {}
func (SetCustomQuestions) inbound() {}
func (StartGame) inbound()          {}
func (Answer) inbound()             {}
func (NextQuestion) inbound()       {}

type envelope struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Decode parses and validates one client envelope.
func Decode(data []byte) (Inbound, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	switch env.Type {
	case TypeCreateRoom:
		return decodePayload[CreateRoom](env.Payload)
	case TypeJoinRoom:
		return decodePayload[JoinRoom](env.Payload)
	case TypeSetCustomQuestions:
		return decodePayload[SetCustomQuestions](env.Payload)
	case TypeStartGame:
		return decodePayload[StartGame](env.Payload)
	case TypeAnswer:
		return decodePayload[Answer](env.Payload)
	case TypeNextQuestion:
		return decodePayload[NextQuestion](env.Payload)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownType, env.Type)
}

func decodePayload[T Inbound](raw json.RawMessage) (Inbound, error) {
	var payload T
	if len(raw) == 0 || string(raw) == "null" {
		return nil, fmt.Errorf("%w: missing payload", ErrMalformed)
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if err := domain.Validator().Struct(payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return payload, nil
}
