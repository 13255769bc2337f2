package app

import "github.com/Atharva587/MultiplayerQuizNew/internal/domain"

// Observer receives room lifecycle events after the state change happened.
// Implementations are called with the room lock held and must return quickly.
type Observer interface {
	RoomOpened(code string)
	RoomClosed(code string)
	PlayerJoined(code string)
	PlayerLeft(code string)
	GameStarted(code string, questionCount int)
	AnswerRecorded(code string, correct, timedOut bool, points int)
	QuestionClosed(code string, leaderboard []domain.Player)
	GameFinished(code string, leaderboard []domain.Player)
}

// NopObserver ignores every event. Embed it to implement a subset.
type NopObserver struct{}

func (NopObserver) RoomOpened(string)                      {}
func (NopObserver) RoomClosed(string)                      {}
func (NopObserver) PlayerJoined(string)                    {}
func (NopObserver) PlayerLeft(string)                      {}
func (NopObserver) GameStarted(string, int)                {}
func (NopObserver) AnswerRecorded(string, bool, bool, int) {}
func (NopObserver) QuestionClosed(string, []domain.Player) {}
func (NopObserver) GameFinished(string, []domain.Player)   {}

// Observers fans events out in order.
type Observers []Observer

func (o Observers) RoomOpened(code string) {
	for _, obs := range o {
		obs.RoomOpened(code)
	}
}

func (o Observers) RoomClosed(code string) {
	for _, obs := range o {
		obs.RoomClosed(code)
	}
}

func (o Observers) PlayerJoined(code string) {
	for _, obs := range o {
		obs.PlayerJoined(code)
	}
}

func (o Observers) PlayerLeft(code string) {
	for _, obs := range o {
		obs.PlayerLeft(code)
	}
}

func (o Observers) GameStarted(code string, questionCount int) {
	for _, obs := range o {
		obs.GameStarted(code, questionCount)
	}
}

func (o Observers) AnswerRecorded(code string, correct, timedOut bool, points int) {
	for _, obs := range o {
		obs.AnswerRecorded(code, correct, timedOut, points)
	}
}

func (o Observers) QuestionClosed(code string, leaderboard []domain.Player) {
	for _, obs := range o {
		obs.QuestionClosed(code, leaderboard)
	}
}

func (o Observers) GameFinished(code string, leaderboard []domain.Player) {
	for _, obs := range o {
		obs.GameFinished(code, leaderboard)
	}
}
