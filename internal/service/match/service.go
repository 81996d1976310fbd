// Package match exposes the shared view of a couple: it resolves the
// partner, pulls both answer sets and runs the engine.
package match

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"gorm.io/gorm"

	"github.com/dichenko/myshadow/internal/app"
	"github.com/dichenko/myshadow/internal/apperror"
	"github.com/dichenko/myshadow/internal/matching"
	"github.com/dichenko/myshadow/internal/repository"
)

type Service struct {
	appCtx  *app.AppContext
	users   *repository.UserRepository
	answers *repository.AnswerRepository
	catalog *repository.CatalogRepository
}

func NewService(appCtx *app.AppContext) *Service {
	return &Service{
		appCtx:  appCtx,
		users:   repository.NewUserRepository(appCtx.DB),
		answers: repository.NewAnswerRepository(appCtx.DB),
		catalog: repository.NewCatalogRepository(appCtx.DB),
	}
}

// BlockMatches is one block's share of the match list, decorated with
// the block title for presentation.
type BlockMatches struct {
	BlockID uint64           `json:"block_id"`
	Title   string           `json:"title"`
	Order   int              `json:"order"`
	Matches []matching.Match `json:"matches"`
}

// Result is the block-grouped match structure the Mini App renders.
type Result struct {
	Total  int            `json:"total"`
	Blocks []BlockMatches `json:"blocks"`
}

// Compute returns every match between the user and their partner,
// grouped by block in display order. Fails with ErrNoPartner when the
// user is unpaired, since there is no shared view to compute.
func (s *Service) Compute(ctx context.Context, userID uint64) (*Result, error) {
	user, err := s.users.GetByID(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.NotFound("user", userID)
	}
	if err != nil {
		return nil, fmt.Errorf("loading user %d: %w", userID, err)
	}
	if user.PartnerID == nil {
		return nil, apperror.NoPartner()
	}

	mine, err := s.answers.ListAnswered(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("loading answers: %w", err)
	}
	theirs, err := s.answers.ListAnswered(ctx, *user.PartnerID)
	if err != nil {
		return nil, fmt.Errorf("loading partner answers: %w", err)
	}

	matches := matching.Compute(mine, theirs)
	result := s.decorate(ctx, matches)

	// refresh the counter cache as a side effect; failures are logged
	// by the cache layer's caller, never surfaced
	if err := s.appCtx.RedisCache.SetMatchCount(ctx, userID, int64(result.Total)); err != nil {
		s.appCtx.Logger.Warn("failed to cache match count", "user", userID, "err", err)
	}

	return result, nil
}

// Count returns how many matches the user currently has.
// Cache-first strategy:
//  1. Attempts to read matches:count:<id> from Redis.
//  2. On a miss, computes the real list and caches the total.
//
// An unpaired user counts zero; the counter is presentational and a
// conflict error would serve nobody here.
func (s *Service) Count(ctx context.Context, userID uint64) (int64, error) {
	if n, ok, err := s.appCtx.RedisCache.GetMatchCount(ctx, userID); err == nil && ok {
		return n, nil
	} else if err != nil {
		s.appCtx.Logger.Warn("match count cache read failed", "user", userID, "err", err)
	}

	result, err := s.Compute(ctx, userID)
	if errors.Is(err, apperror.ErrNoPartner) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return int64(result.Total), nil
}

// decorate groups matches by block and sorts the groups in catalog
// display order.
func (s *Service) decorate(ctx context.Context, matches []matching.Match) *Result {
	groups := matching.GroupByBlock(matches)
	result := &Result{Total: len(matches), Blocks: make([]BlockMatches, 0, len(groups))}

	blocks, err := s.catalog.ListBlocks(ctx)
	if err != nil {
		// metadata is cosmetic: fall back to bare IDs
		s.appCtx.Logger.Warn("failed to load block titles", "err", err)
	}
	titles := make(map[uint64]struct {
		title string
		order int
	}, len(blocks))
	for _, b := range blocks {
		titles[b.ID] = struct {
			title string
			order int
		}{b.Title, b.Order}
	}

	for _, g := range groups {
		bm := BlockMatches{BlockID: g.BlockID, Matches: g.Matches}
		if meta, ok := titles[g.BlockID]; ok {
			bm.Title = meta.title
			bm.Order = meta.order
		}
		result.Blocks = append(result.Blocks, bm)
	}
	sort.SliceStable(result.Blocks, func(i, j int) bool {
		return result.Blocks[i].Order < result.Blocks[j].Order
	})
	return result
}
