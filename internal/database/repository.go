package database

import (
	"context"
	"time"

	"gorm.io/gorm"
)

// Journal records what a run did. Repository writes to PostgreSQL, Noop drops everything.
type Journal interface {
	StartRun(ctx context.Context, id string) error
	FinishRun(ctx context.Context, id, status string, applied int, errText string) error
	RecordApplication(ctx context.Context, a *Application) error
	ListApplications(ctx context.Context, limit int) ([]Application, error)
	LogLLMRequest(ctx context.Context, provider, model, promptText, responseText string, tokensUsed int) error
}

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) StartRun(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Create(&Run{ID: id, Status: "running"}).Error
}

func (r *Repository) FinishRun(ctx context.Context, id, status string, applied int, errText string) error {
	now := time.Now()
	return r.db.WithContext(ctx).Model(&Run{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":      status,
			"applied":     applied,
			"error":       errText,
			"finished_at": &now,
		}).Error
}

func (r *Repository) RecordApplication(ctx context.Context, a *Application) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *Repository) ListApplications(ctx context.Context, limit int) ([]Application, error) {
	var apps []Application
	if err := r.db.WithContext(ctx).Order("id DESC").Limit(limit).Find(&apps).Error; err != nil {
		return nil, err
	}
	return apps, nil
}

func (r *Repository) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	var runs []Run
	if err := r.db.WithContext(ctx).Order("started_at DESC").Limit(limit).Find(&runs).Error; err != nil {
		return nil, err
	}
	return runs, nil
}

// LogLLMRequest сохраняет запрос к LLM; промпт уже очищен от персональных данных.
func (r *Repository) LogLLMRequest(ctx context.Context, provider, model, promptText, responseText string, tokensUsed int) error {
	return r.db.WithContext(ctx).Create(&LlmLog{
		Provider:     provider,
		Model:        model,
		PromptText:   promptText,
		ResponseText: responseText,
		TokensUsed:   tokensUsed,
	}).Error
}

type Noop struct{}

func (Noop) StartRun(context.Context, string) error { return nil }

func (Noop) FinishRun(context.Context, string, string, int, string) error { return nil }

func (Noop) RecordApplication(context.Context, *Application) error { return nil }

func (Noop) ListApplications(context.Context, int) ([]Application, error) { return nil, nil }

func (Noop) LogLLMRequest(context.Context, string, string, string, string, int) error { return nil }

var (
	_ Journal = (*Repository)(nil)
	_ Journal = Noop{}
)
