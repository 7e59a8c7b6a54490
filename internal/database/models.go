// Package database хранит журнал прогонов в PostgreSQL через GORM: прогоны,
// попытки подачи и запросы к LLM. Без DB_HOST журнал не ведётся.
package database

import "time"

// Run - один запуск цикла подачи. Статусы: running, stopped, daily_limit, failed.
type Run struct {
	ID         string     `gorm:"type:varchar(36);primaryKey" json:"id"`
	Status     string     `gorm:"type:varchar(16);not null;default:'running'" json:"status"`
	Applied    int        `gorm:"not null;default:0" json:"applied"`
	Error      string     `gorm:"type:text" json:"error,omitempty"`
	StartedAt  time.Time  `gorm:"autoCreateTime" json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

// Application - попытка подать заявку на одну вакансию.
// Outcome: submitted, incomplete, abandoned, skipped.
type Application struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	RunID     string    `gorm:"type:varchar(36);index;not null" json:"run_id"`
	JobID     string    `gorm:"type:varchar(32);index" json:"job_id,omitempty"`
	Title     string    `gorm:"type:text" json:"title"`
	Company   string    `gorm:"type:text" json:"company"`
	Location  string    `gorm:"type:text" json:"location,omitempty"`
	Outcome   string    `gorm:"type:varchar(16);not null" json:"outcome"`
	Reason    string    `gorm:"type:text" json:"reason,omitempty"`
	Steps     int       `json:"steps"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// LlmLog - запрос к провайдеру генерации и его ответ.
type LlmLog struct {
	ID           uint      `gorm:"primaryKey"`
	Provider     string    `gorm:"type:varchar(16);not null"`
	PromptText   string    `gorm:"type:text;not null"`
	ResponseText string    `gorm:"type:text"`
	Model        string    `gorm:"type:varchar(64)"`
	TokensUsed   int
	CreatedAt    time.Time `gorm:"autoCreateTime"`
}
