package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/storyboard-backend/internal/platform/logger"
	"github.com/yungbote/storyboard-backend/internal/types"
)

type StoryboardRepo interface {
	Create(ctx context.Context, tx *gorm.DB, record *types.StoryboardRecord) (*types.StoryboardRecord, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.StoryboardRecord, error)
	List(ctx context.Context, tx *gorm.DB, limit int) ([]*types.StoryboardRecord, error)
}

type storyboardRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewStoryboardRepo(db *gorm.DB, baseLog *logger.Logger) StoryboardRepo {
	return &storyboardRepo{db: db, log: baseLog.With("repo", "StoryboardRepo")}
}

func (r *storyboardRepo) Create(ctx context.Context, tx *gorm.DB, record *types.StoryboardRecord) (*types.StoryboardRecord, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	if err := transaction.WithContext(ctx).Create(record).Error; err != nil {
		return nil, err
	}
	return record, nil
}

func (r *storyboardRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.StoryboardRecord, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var record types.StoryboardRecord
	if err := transaction.WithContext(ctx).First(&record, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *storyboardRepo) List(ctx context.Context, tx *gorm.DB, limit int) ([]*types.StoryboardRecord, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if limit <= 0 {
		limit = 50
	}
	var records []*types.StoryboardRecord
	if err := transaction.WithContext(ctx).Order("created_at DESC").Limit(limit).Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}
