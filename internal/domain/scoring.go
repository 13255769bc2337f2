package domain

import "math"

const (
	QuestionTimeLimit   = 30 // seconds
	ServerTimeoutBuffer = 3  // seconds
	MinPoints           = 100
	MaxPoints           = 1000
)

// Score maps the seconds left on the clock to points for a correct answer.
// Callers keep timeRemaining within [0, QuestionTimeLimit]. Halves round away from zero.
func Score(timeRemaining int, correct bool) int {
	if !correct {
		return 0
	}
	bonus := float64(timeRemaining) / QuestionTimeLimit * (MaxPoints - MinPoints)
	return int(math.Round(MinPoints + bonus))
}

// ClampTimeRemaining forces a client supplied value into [0, QuestionTimeLimit].
func ClampTimeRemaining(t int) int {
	if t < 0 {
		return 0
	}
	if t > QuestionTimeLimit {
		return QuestionTimeLimit
	}
	return t
}
