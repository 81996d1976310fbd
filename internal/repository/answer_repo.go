package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/dichenko/myshadow/internal/db"
	"github.com/dichenko/myshadow/internal/matching"
)

// AnswerRepository provides data access for answers.
type AnswerRepository struct {
	db *gorm.DB
}

// NewAnswerRepository creates a new repository bound to the given DB connection.
func NewAnswerRepository(database *gorm.DB) *AnswerRepository {
	return &AnswerRepository{db: database}
}

// Upsert records a user's answer to a question.
//
// Behavior:
//   - If the (user_id, question_id) pair exists → the row is updated
//     with the new value.
//   - If it doesn't exist → a new row is inserted.
//   - Composite PK ensures the overwrite guarantee: at most one row per
//     (user, question).
func (r *AnswerRepository) Upsert(ctx context.Context, userID, questionID uint64, value db.AnswerValue) error {
	answer := db.Answer{
		UserID:     userID,
		QuestionID: questionID,
		Value:      value,
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "question_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).
		Create(&answer).Error
}

// ListForUser returns the user's raw answer rows. No ordering guarantee.
func (r *AnswerRepository) ListForUser(ctx context.Context, userID uint64) ([]db.Answer, error) {
	var answers []db.Answer
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Find(&answers).Error
	return answers, err
}

// answeredRow mirrors the join columns; mapped into the engine's input
// type so the matching package stays free of storage tags.
type answeredRow struct {
	QuestionID uint64
	Value      db.AnswerValue
	BlockID    uint64
	PracticeID uint64
	Text       string
	SortOrder  int
	Role       db.QuestionRole
}

// ListAnswered returns the user's answers joined with question
// metadata, in the shape the match engine consumes.
func (r *AnswerRepository) ListAnswered(ctx context.Context, userID uint64) ([]matching.AnsweredQuestion, error) {
	var rows []answeredRow
	err := r.db.WithContext(ctx).
		Table("answers a").
		Select("a.question_id, a.value, q.block_id, q.practice_id, q.text, q.sort_order, q.role").
		Joins("JOIN questions q ON q.id = a.question_id").
		Where("a.user_id = ?", userID).
		Order("q.block_id, q.sort_order").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make([]matching.AnsweredQuestion, 0, len(rows))
	for _, row := range rows {
		out = append(out, matching.AnsweredQuestion{
			QuestionID: row.QuestionID,
			BlockID:    row.BlockID,
			PracticeID: row.PracticeID,
			Text:       row.Text,
			Order:      row.SortOrder,
			Role:       row.Role,
			Value:      row.Value,
		})
	}
	return out, nil
}

// CountForQuestion is the dependent guard consulted before a question
// delete.
func (r *AnswerRepository) CountForQuestion(ctx context.Context, questionID uint64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&db.Answer{}).
		Where("question_id = ?", questionID).
		Count(&count).Error
	return count, err
}

// DeleteForUser removes every answer the user has given.
func (r *AnswerRepository) DeleteForUser(ctx context.Context, userID uint64) error {
	return r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&db.Answer{}).Error
}

// DeleteForUserBlock removes the user's answers to one block's questions.
func (r *AnswerRepository) DeleteForUserBlock(ctx context.Context, userID, blockID uint64) error {
	sub := r.db.Model(&db.Question{}).Select("id").Where("block_id = ?", blockID)
	return r.db.WithContext(ctx).
		Where("user_id = ? AND question_id IN (?)", userID, sub).
		Delete(&db.Answer{}).Error
}
