package domain

import (
	"fmt"
	"sync"

	"github.com/go-playground/validator/v10"
)

// BuiltinQuestions returns the default upper limb anatomy set.
func BuiltinQuestions() []Question {
	return []Question{
		{
			ID:           1,
			Question:     "Which bone forms the anatomical basis of the elbow joint on the lateral side?",
			Options:      []string{"Humerus", "Radius", "Ulna", "Scapula"},
			CorrectIndex: 1,
			Category:     "Bones",
		},
		{
			ID:           2,
			Question:     "Which muscle is the primary flexor of the forearm at the elbow joint?",
			Options:      []string{"Triceps brachii", "Brachialis", "Deltoid", "Pronator teres"},
			CorrectIndex: 1,
			Category:     "Muscles",
		},
		{
			ID:           3,
			Question:     "Which nerve passes through the carpal tunnel?",
			Options:      []string{"Ulnar nerve", "Radial nerve", "Median nerve", "Musculocutaneous nerve"},
			CorrectIndex: 2,
			Category:     "Nerves",
		},
	}
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

// Validator returns the shared struct validator.
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
	})
	return validate
}

// ValidateQuestion checks text, option count and the correct index.
func ValidateQuestion(q Question) error {
	if err := Validator().Struct(q); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidQuestion, err)
	}
	return nil
}
