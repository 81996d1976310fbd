package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/dichenko/myshadow/internal/apperror"
	"github.com/dichenko/myshadow/internal/db"
)

// CatalogRepository manages the question catalog: blocks, practices and
// questions. Deletes are guarded by dependent counts instead of relying
// on database-level cascade errors.
type CatalogRepository struct {
	db *gorm.DB
}

func NewCatalogRepository(database *gorm.DB) *CatalogRepository {
	return &CatalogRepository{db: database}
}

// --- blocks ---

func (r *CatalogRepository) CreateBlock(ctx context.Context, block *db.Block) error {
	return r.db.WithContext(ctx).Create(block).Error
}

// ListBlocks returns all blocks in display order.
func (r *CatalogRepository) ListBlocks(ctx context.Context) ([]db.Block, error) {
	var blocks []db.Block
	err := r.db.WithContext(ctx).Order("sort_order, id").Find(&blocks).Error
	return blocks, err
}

func (r *CatalogRepository) GetBlock(ctx context.Context, id uint64) (*db.Block, error) {
	var b db.Block
	if err := r.db.WithContext(ctx).First(&b, id).Error; err != nil {
		return nil, err
	}
	return &b, nil
}

// DeleteBlock refuses with ErrHasDependents while questions reference
// the block. Count and delete run in one transaction.
func (r *CatalogRepository) DeleteBlock(ctx context.Context, id uint64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&db.Question{}).Where("block_id = ?", id).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return apperror.HasDependents("block", id)
		}
		res := tx.Delete(&db.Block{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperror.NotFound("block", id)
		}
		return nil
	})
}

// --- practices ---

func (r *CatalogRepository) CreatePractice(ctx context.Context, practice *db.Practice) error {
	return r.db.WithContext(ctx).Create(practice).Error
}

func (r *CatalogRepository) ListPractices(ctx context.Context) ([]db.Practice, error) {
	var practices []db.Practice
	err := r.db.WithContext(ctx).Order("id").Find(&practices).Error
	return practices, err
}

func (r *CatalogRepository) DeletePractice(ctx context.Context, id uint64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&db.Question{}).Where("practice_id = ?", id).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return apperror.HasDependents("practice", id)
		}
		res := tx.Delete(&db.Practice{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperror.NotFound("practice", id)
		}
		return nil
	})
}

// --- questions ---

func (r *CatalogRepository) CreateQuestion(ctx context.Context, question *db.Question) error {
	return r.db.WithContext(ctx).Create(question).Error
}

func (r *CatalogRepository) GetQuestion(ctx context.Context, id uint64) (*db.Question, error) {
	var q db.Question
	if err := r.db.WithContext(ctx).First(&q, id).Error; err != nil {
		return nil, err
	}
	return &q, nil
}

// ListQuestions returns questions ordered within their blocks; blockID
// of zero means all blocks.
func (r *CatalogRepository) ListQuestions(ctx context.Context, blockID uint64) ([]db.Question, error) {
	query := r.db.WithContext(ctx).Order("block_id, sort_order, id")
	if blockID != 0 {
		query = query.Where("block_id = ?", blockID)
	}
	var questions []db.Question
	err := query.Find(&questions).Error
	return questions, err
}

// DeleteQuestion refuses with ErrHasDependents while answers reference
// the question.
func (r *CatalogRepository) DeleteQuestion(ctx context.Context, id uint64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&db.Answer{}).Where("question_id = ?", id).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return apperror.HasDependents("question", id)
		}
		res := tx.Delete(&db.Question{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperror.NotFound("question", id)
		}
		return nil
	})
}
