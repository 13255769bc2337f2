package domain

import "errors"

var (
	// ErrRoomNotFound is returned when a room code does not match a live room.
	ErrRoomNotFound = errors.New("Room not found. Please check the code and try again.")
	// ErrGameAlreadyStarted is returned when joining a room past its lobby phase.
	ErrGameAlreadyStarted = errors.New("Game has already started.")
	// ErrRoomFull is returned when a room already holds MaxPlayers players.
	ErrRoomFull = errors.New("Room is full. Maximum 8 players allowed.")
	// ErrNoQuestionsAvailable is returned to the host when the effective question list is empty.
	ErrNoQuestionsAvailable = errors.New("No questions available. Add custom questions or use default.")

	// ErrNotHost indicates a host-only action from another player.
	ErrNotHost = errors.New("player is not the room host")
	// ErrUnknownConnection indicates a message from a connection bound to no room.
	ErrUnknownConnection = errors.New("connection is not bound to a room")
	// ErrAlreadyAnswered indicates a second answer for the same question.
	ErrAlreadyAnswered = errors.New("player already answered")
	// ErrNoActiveQuestion indicates an answer outside of a running question.
	ErrNoActiveQuestion = errors.New("no active question")
	// ErrStaleQuestion indicates an answer for a question other than the active one.
	ErrStaleQuestion = errors.New("answer targets a different question")
	// ErrRoomCodeExhausted is returned when no free room code was found.
	ErrRoomCodeExhausted = errors.New("could not allocate a unique room code")

	// ErrInvalidQuestion indicates a question failing validation.
	ErrInvalidQuestion = errors.New("invalid question")
	// ErrSavedQuestionNotFound indicates an unknown library entry.
	ErrSavedQuestionNotFound = errors.New("saved question not found")
)

var userFacing = []error{
	ErrRoomNotFound,
	ErrGameAlreadyStarted,
	ErrRoomFull,
	ErrNoQuestionsAvailable,
}

// UserMessage returns the text shown to a player for err, if err is meant to be shown at all.
func UserMessage(err error) (string, bool) {
	for _, target := range userFacing {
		if errors.Is(err, target) {
			return target.Error(), true
		}
	}
	return "", false
}
