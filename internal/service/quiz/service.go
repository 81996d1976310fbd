// Package quiz covers the answering flow: recording answers, listing
// the catalog with the user's progress, and resetting answers.
package quiz

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/dichenko/myshadow/internal/app"
	"github.com/dichenko/myshadow/internal/apperror"
	"github.com/dichenko/myshadow/internal/db"
	"github.com/dichenko/myshadow/internal/matching"
	"github.com/dichenko/myshadow/internal/repository"
)

type Service struct {
	appCtx  *app.AppContext
	answers *repository.AnswerRepository
	catalog *repository.CatalogRepository
	users   *repository.UserRepository
}

func NewService(appCtx *app.AppContext) *Service {
	return &Service{
		appCtx:  appCtx,
		answers: repository.NewAnswerRepository(appCtx.DB),
		catalog: repository.NewCatalogRepository(appCtx.DB),
		users:   repository.NewUserRepository(appCtx.DB),
	}
}

// SubmitAnswer upserts the user's answer to a question. A repeat
// submission overwrites the stored value; the (user, question) row
// count never grows past one.
func (s *Service) SubmitAnswer(ctx context.Context, userID, questionID uint64, value db.AnswerValue) error {
	if !value.Valid() {
		return apperror.Validation("value", "value must be yes, no or maybe")
	}
	if questionID == 0 {
		return apperror.Validation("question_id", "question_id is required")
	}

	if _, err := s.catalog.GetQuestion(ctx, questionID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.NotFound("question", questionID)
		}
		return fmt.Errorf("loading question %d: %w", questionID, err)
	}

	if err := s.answers.Upsert(ctx, userID, questionID, value); err != nil {
		return fmt.Errorf("storing answer: %w", err)
	}

	s.invalidateForCouple(ctx, userID)
	return nil
}

// ListAnswers returns the user's answers with question metadata. No
// ordering guarantee is part of the contract.
func (s *Service) ListAnswers(ctx context.Context, userID uint64) ([]matching.AnsweredQuestion, error) {
	return s.answers.ListAnswered(ctx, userID)
}

// ResetAnswers bulk-deletes the user's answers, either everything or
// one block's worth.
func (s *Service) ResetAnswers(ctx context.Context, userID uint64, blockID *uint64) error {
	if blockID == nil {
		if err := s.answers.DeleteForUser(ctx, userID); err != nil {
			return fmt.Errorf("resetting answers: %w", err)
		}
	} else {
		if _, err := s.catalog.GetBlock(ctx, *blockID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.NotFound("block", *blockID)
			}
			return fmt.Errorf("loading block %d: %w", *blockID, err)
		}
		if err := s.answers.DeleteForUserBlock(ctx, userID, *blockID); err != nil {
			return fmt.Errorf("resetting block answers: %w", err)
		}
	}

	s.invalidateForCouple(ctx, userID)
	return nil
}

// QuestionView is a catalog question plus the user's current answer.
type QuestionView struct {
	ID         uint64          `json:"id"`
	PracticeID uint64          `json:"practice_id"`
	Text       string          `json:"text"`
	Order      int             `json:"order"`
	Role       db.QuestionRole `json:"role"`
	Answer     *db.AnswerValue `json:"answer,omitempty"`
}

// BlockView is one block with its questions and the user's progress.
type BlockView struct {
	ID        uint64         `json:"id"`
	Title     string         `json:"title"`
	Order     int            `json:"order"`
	Questions []QuestionView `json:"questions"`
	Answered  int            `json:"answered"`
	Total     int            `json:"total"`
}

// ListBlocks returns the whole catalog in display order, decorated with
// the user's answers and per-block progress counters.
func (s *Service) ListBlocks(ctx context.Context, userID uint64) ([]BlockView, error) {
	blocks, err := s.catalog.ListBlocks(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing blocks: %w", err)
	}
	questions, err := s.catalog.ListQuestions(ctx, 0)
	if err != nil {
		return nil, fmt.Errorf("listing questions: %w", err)
	}
	answers, err := s.answers.ListForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("listing answers: %w", err)
	}

	byQuestion := make(map[uint64]db.AnswerValue, len(answers))
	for _, a := range answers {
		byQuestion[a.QuestionID] = a.Value
	}

	views := make([]BlockView, 0, len(blocks))
	index := make(map[uint64]int, len(blocks))
	for _, b := range blocks {
		index[b.ID] = len(views)
		views = append(views, BlockView{ID: b.ID, Title: b.Title, Order: b.Order})
	}
	for _, q := range questions {
		i, ok := index[q.BlockID]
		if !ok {
			continue
		}
		view := QuestionView{
			ID:         q.ID,
			PracticeID: q.PracticeID,
			Text:       q.Text,
			Order:      q.Order,
			Role:       q.Role,
		}
		if v, answered := byQuestion[q.ID]; answered {
			value := v
			view.Answer = &value
			views[i].Answered++
		}
		views[i].Total++
		views[i].Questions = append(views[i].Questions, view)
	}
	return views, nil
}

// invalidateForCouple drops the cached match counts of the user and, if
// paired, the partner: either side's match list may have moved.
func (s *Service) invalidateForCouple(ctx context.Context, userID uint64) {
	ids := []uint64{userID}
	if user, err := s.users.GetByID(ctx, userID); err == nil && user.PartnerID != nil {
		ids = append(ids, *user.PartnerID)
	}
	if err := s.appCtx.RedisCache.InvalidateMatchCount(ctx, ids...); err != nil {
		s.appCtx.Logger.Warn("failed to invalidate match counts", "users", ids, "err", err)
	}
}
