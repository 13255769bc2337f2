package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Atharva587/MultiplayerQuizNew/internal/domain"
)

// Library keeps saved questions in process memory. Used when no database is configured.
type Library struct {
	mu     sync.RWMutex
	nextID int64
	items  map[int64]domain.SavedQuestion
	clock  func() time.Time
}

func NewLibrary() *Library {
	return &Library{
		items: make(map[int64]domain.SavedQuestion),
		clock: time.Now,
	}
}

func (l *Library) Save(_ context.Context, questions []domain.Question, folderID *int64) ([]domain.SavedQuestion, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.clock()
	saved := make([]domain.SavedQuestion, 0, len(questions))
	for _, q := range questions {
		l.nextID++
		category := q.Category
		if category == "" {
			category = domain.DefaultCategory
		}
		item := domain.SavedQuestion{
			ID:           l.nextID,
			Question:     q.Question,
			Options:      append([]string(nil), q.Options...),
			CorrectIndex: q.CorrectIndex,
			Category:     category,
			QuestionType: domain.DefaultQuestionType,
			FolderID:     folderID,
			CreatedAt:    now,
		}
		l.items[item.ID] = item
		saved = append(saved, item)
	}
	return saved, nil
}

// List returns the library newest first.
func (l *Library) List(_ context.Context) ([]domain.SavedQuestion, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]domain.SavedQuestion, 0, len(l.items))
	for _, item := range l.items {
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (l *Library) Delete(_ context.Context, id int64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.items[id]; !ok {
		return domain.ErrSavedQuestionNotFound
	}
	delete(l.items, id)
	return nil
}
