package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// StoryboardRecord persists a successful pipeline result: the request
// snapshot, the final document and its headline metrics.
type StoryboardRecord struct {
	ID               uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	ModuleTitle      string         `gorm:"column:module_title;not null;index" json:"module_title"`
	Request          datatypes.JSON `gorm:"type:jsonb;column:request" json:"request"`
	Document         datatypes.JSON `gorm:"type:jsonb;column:document;not null" json:"document"`
	TotalPages       int            `gorm:"column:total_pages;not null" json:"total_pages"`
	InteractivePages int            `gorm:"column:interactive_pages;not null" json:"interactive_pages"`
	KnowledgeChecks  int            `gorm:"column:knowledge_checks;not null" json:"knowledge_checks"`
	TotalDurationSec int            `gorm:"column:total_duration_sec;not null" json:"total_duration_sec"`
	Scenarios        int            `gorm:"column:scenarios;not null" json:"scenarios"`
	CreatedAt        time.Time      `gorm:"not null;index" json:"created_at"`
	UpdatedAt        time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (StoryboardRecord) TableName() string { return "storyboard" }

// StoryboardGenerationRun records one LLM attempt (draft, expand, sequence)
// for observability. Rows are best-effort; losing one never fails a run.
type StoryboardGenerationRun struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	RunID     string         `gorm:"column:run_id;not null;index" json:"run_id"`
	Stage     string         `gorm:"column:stage;not null;index" json:"stage"`
	Attempt   int            `gorm:"column:attempt;not null" json:"attempt"`
	Status    string         `gorm:"column:status;not null;index" json:"status"`
	LatencyMs int64          `gorm:"column:latency_ms;not null" json:"latency_ms"`
	Errors    datatypes.JSON `gorm:"type:jsonb;column:errors" json:"errors"`
	Metrics   datatypes.JSON `gorm:"type:jsonb;column:metrics" json:"metrics"`
	CreatedAt time.Time      `gorm:"not null;index" json:"created_at"`
}

func (StoryboardGenerationRun) TableName() string { return "storyboard_generation_run" }
