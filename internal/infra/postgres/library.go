package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/Atharva587/MultiplayerQuizNew/internal/domain"
	"github.com/uptrace/bun"
)

type savedQuestionModel struct {
	bun.BaseModel `bun:"table:saved_questions,alias:sq"`

	ID           int64     `bun:"id,pk,autoincrement"`
	Question     string    `bun:"question,notnull"`
	Options      []string  `bun:"options,type:jsonb,notnull"`
	CorrectIndex int       `bun:"correct_index,notnull"`
	Category     string    `bun:"category,notnull"`
	QuestionType string    `bun:"question_type,notnull"`
	FolderID     *int64    `bun:"folder_id"`
	CreatedAt    time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}

func (m savedQuestionModel) toDomain() domain.SavedQuestion {
	return domain.SavedQuestion{
		ID:           m.ID,
		Question:     m.Question,
		Options:      m.Options,
		CorrectIndex: m.CorrectIndex,
		Category:     m.Category,
		QuestionType: m.QuestionType,
		FolderID:     m.FolderID,
		CreatedAt:    m.CreatedAt,
	}
}

// Library stores the saved question bank in Postgres through bun.
type Library struct {
	db *bun.DB
}

func NewLibrary(db *bun.DB) *Library {
	return &Library{db: db}
}

func (l *Library) Save(ctx context.Context, questions []domain.Question, folderID *int64) ([]domain.SavedQuestion, error) {
	if len(questions) == 0 {
		return []domain.SavedQuestion{}, nil
	}
	models := make([]savedQuestionModel, 0, len(questions))
	for _, q := range questions {
		category := q.Category
		if category == "" {
			category = domain.DefaultCategory
		}
		models = append(models, savedQuestionModel{
			Question:     q.Question,
			Options:      q.Options,
			CorrectIndex: q.CorrectIndex,
			Category:     category,
			QuestionType: domain.DefaultQuestionType,
			FolderID:     folderID,
		})
	}

	if _, err := l.db.NewInsert().Model(&models).Returning("*").Exec(ctx); err != nil {
		return nil, fmt.Errorf("insert saved questions: %w", err)
	}
	return toDomain(models), nil
}

// List returns every saved question, newest first.
func (l *Library) List(ctx context.Context) ([]domain.SavedQuestion, error) {
	var models []savedQuestionModel
	err := l.db.NewSelect().
		Model(&models).
		OrderExpr("sq.created_at DESC, sq.id DESC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list saved questions: %w", err)
	}
	return toDomain(models), nil
}

func (l *Library) Delete(ctx context.Context, id int64) error {
	res, err := l.db.NewDelete().
		Model((*savedQuestionModel)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("delete saved question %d: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrSavedQuestionNotFound
	}
	return nil
}

func toDomain(models []savedQuestionModel) []domain.SavedQuestion {
	out := make([]domain.SavedQuestion, 0, len(models))
	for _, m := range models {
		out = append(out, m.toDomain())
	}
	return out
}
