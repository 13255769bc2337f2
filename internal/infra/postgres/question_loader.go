package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Atharva587/MultiplayerQuizNew/internal/domain"
	"github.com/jackc/pgx/v4/pgxpool"
)

const folderQuestionsQuery = `SELECT id, question, options, correct_index, category
FROM saved_questions
WHERE folder_id = $1
ORDER BY id`

// QuestionLoader loads the default question set from one saved-question folder.
// Rows that do not form a playable question are skipped.
type QuestionLoader struct {
	pool     *pgxpool.Pool
	folderID int64
}

func NewQuestionLoader(pool *pgxpool.Pool, folderID int64) *QuestionLoader {
	return &QuestionLoader{pool: pool, folderID: folderID}
}

func (l *QuestionLoader) LoadQuestions(ctx context.Context) ([]domain.Question, error) {
	rows, err := l.pool.Query(ctx, folderQuestionsQuery, l.folderID)
	if err != nil {
		return nil, fmt.Errorf("load folder %d: %w", l.folderID, err)
	}
	defer rows.Close()

	questions := []domain.Question{}
	for rows.Next() {
		var (
			id      int64
			q       domain.Question
			options []byte
		)
		if err := rows.Scan(&id, &q.Question, &options, &q.CorrectIndex, &q.Category); err != nil {
			return nil, fmt.Errorf("scan saved question: %w", err)
		}
		if err := json.Unmarshal(options, &q.Options); err != nil {
			return nil, fmt.Errorf("unmarshal options of question %d: %w", id, err)
		}
		q.ID = int(id)
		if domain.ValidateQuestion(q) != nil {
			continue
		}
		questions = append(questions, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load folder %d: %w", l.folderID, err)
	}
	return questions, nil
}
