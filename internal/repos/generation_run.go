package repos

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/storyboard-backend/internal/modules/storyboard/content"
	"github.com/yungbote/storyboard-backend/internal/platform/logger"
	"github.com/yungbote/storyboard-backend/internal/types"
)

type GenerationRunRepo interface {
	Create(ctx context.Context, tx *gorm.DB, runs []*types.StoryboardGenerationRun) ([]*types.StoryboardGenerationRun, error)
	ListByRunID(ctx context.Context, tx *gorm.DB, runID string) ([]*types.StoryboardGenerationRun, error)
}

type generationRunRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewGenerationRunRepo(db *gorm.DB, baseLog *logger.Logger) GenerationRunRepo {
	return &generationRunRepo{db: db, log: baseLog.With("repo", "GenerationRunRepo")}
}

func (r *generationRunRepo) Create(ctx context.Context, tx *gorm.DB, runs []*types.StoryboardGenerationRun) ([]*types.StoryboardGenerationRun, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(runs) == 0 {
		return []*types.StoryboardGenerationRun{}, nil
	}
	for _, run := range runs {
		if run.ID == uuid.Nil {
			run.ID = uuid.New()
		}
	}
	if err := transaction.WithContext(ctx).Create(&runs).Error; err != nil {
		return nil, err
	}
	return runs, nil
}

func (r *generationRunRepo) ListByRunID(ctx context.Context, tx *gorm.DB, runID string) ([]*types.StoryboardGenerationRun, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var runs []*types.StoryboardGenerationRun
	if err := transaction.WithContext(ctx).Where("run_id = ?", runID).Order("created_at ASC").Find(&runs).Error; err != nil {
		return nil, err
	}
	return runs, nil
}

// RunRecorder adapts GenerationRunRepo to the per-attempt recording hook the
// drafters call. Inserts are best-effort: failures are logged, never
// propagated.
type RunRecorder struct {
	repo GenerationRunRepo
	log  *logger.Logger
}

func NewRunRecorder(repo GenerationRunRepo, baseLog *logger.Logger) *RunRecorder {
	return &RunRecorder{repo: repo, log: baseLog.With("service", "RunRecorder")}
}

func (r *RunRecorder) Record(ctx context.Context, stage string, attempt int, latencyMs int64, status string, errs []string, metrics map[string]any) {
	if r == nil || r.repo == nil {
		return
	}
	row := &types.StoryboardGenerationRun{
		RunID:     content.RunIDFromContext(ctx),
		Stage:     stage,
		Attempt:   attempt,
		Status:    status,
		LatencyMs: latencyMs,
		Errors:    toJSON(errs),
		Metrics:   toJSON(metrics),
	}
	if _, err := r.repo.Create(ctx, nil, []*types.StoryboardGenerationRun{row}); err != nil {
		r.log.Warn("Generation run insert failed", "stage", stage, "error", err.Error())
	}
}

func toJSON(v any) datatypes.JSON {
	if v == nil {
		return nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return datatypes.JSON(raw)
}
