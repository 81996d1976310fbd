// Package pairing owns the partner relationship: issuing pair codes,
// linking two accounts, dissolving the link and deleting accounts.
// Every multi-row mutation runs inside one transaction; partner
// notifications happen outside it and are allowed to fail silently.
package pairing

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/dichenko/myshadow/internal/app"
	"github.com/dichenko/myshadow/internal/apperror"
	"github.com/dichenko/myshadow/internal/db"
	"github.com/dichenko/myshadow/internal/paircode"
	"github.com/dichenko/myshadow/internal/repository"
)

// notifyTimeout bounds the fire-and-forget notification goroutine.
const notifyTimeout = 10 * time.Second

type Service struct {
	appCtx *app.AppContext
	users  *repository.UserRepository
	codes  *paircode.Generator
}

// NewService wires the pairing service from AppContext. The user
// repository doubles as the code generator's uniqueness index.
func NewService(appCtx *app.AppContext) *Service {
	users := repository.NewUserRepository(appCtx.DB)
	return &Service{
		appCtx: appCtx,
		users:  users,
		codes:  paircode.New(users),
	}
}

// GetOrCreateCode returns the user's pair code, generating and storing
// one on first request. Idempotent while unpaired: repeat calls return
// the same code.
func (s *Service) GetOrCreateCode(ctx context.Context, userID uint64) (string, error) {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return "", err
	}
	if user.PartnerID != nil {
		return "", apperror.AlreadyPaired()
	}
	if user.PairCode != nil {
		return *user.PairCode, nil
	}

	code, err := s.codes.Generate(ctx)
	if err != nil {
		return "", err
	}
	if err := s.users.SetPairCode(ctx, userID, code); err != nil {
		return "", fmt.Errorf("storing pair code: %w", err)
	}
	return code, nil
}

// CreatePair links the requesting user with the owner of the presented
// code.
//
// Expected outcomes:
//   - ErrCodeNotFound: no user holds this code
//   - ErrSelfPairing: the code belongs to the requester
//   - ErrAlreadyPaired: either side already has a partner
//
// The already-paired checks here only produce friendly errors early;
// the repository re-checks them inside the transaction, so a
// concurrent pairing that slips past this read still fails atomically.
// On success both rows are updated in one transaction and the new
// partner gets a best-effort Telegram notification.
func (s *Service) CreatePair(ctx context.Context, userID uint64, code string) (*db.User, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if len(code) != paircode.Length {
		return nil, apperror.Validation("code", "pair code must be 16 characters")
	}

	owner, err := s.users.GetByPairCode(ctx, code)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.CodeNotFound()
	}
	if err != nil {
		return nil, fmt.Errorf("looking up pair code: %w", err)
	}
	if owner.ID == userID {
		return nil, apperror.SelfPairing()
	}

	user, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.PartnerID != nil || owner.PartnerID != nil {
		return nil, apperror.AlreadyPaired()
	}

	if err := s.users.Pair(ctx, userID, owner.ID, code); err != nil {
		return nil, fmt.Errorf("creating pair: %w", err)
	}

	s.invalidateMatchCounts(ctx, userID, owner.ID)
	s.notifyAsync(owner.TgID, fmt.Sprintf("%s joined you. Your answers are now compared 💜", displayName(user)))

	return owner, nil
}

// DeletePair dissolves the partnership. Both links are cleared and both
// ex-partners receive fresh, distinct pair codes in one transaction.
func (s *Service) DeletePair(ctx context.Context, userID uint64) error {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return err
	}
	if user.PartnerID == nil {
		return apperror.NoPartner()
	}

	partner, err := s.getUser(ctx, *user.PartnerID)
	if err != nil {
		return err
	}

	userCode, partnerCode, err := s.generateCodePair(ctx)
	if err != nil {
		return err
	}

	if err := s.users.Unpair(ctx, user.ID, partner.ID, userCode, partnerCode); err != nil {
		return fmt.Errorf("deleting pair: %w", err)
	}

	s.invalidateMatchCounts(ctx, user.ID, partner.ID)
	s.notifyAsync(partner.TgID, "Your partner has unlinked your accounts.")

	return nil
}

// DeleteAccount removes the user entirely: the pairing is severed first
// so the survivor never holds a dangling pointer, then the user's
// answers and row go in the same transaction.
func (s *Service) DeleteAccount(ctx context.Context, userID uint64) error {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return err
	}

	var partner *db.User
	var partnerCode *string
	if user.PartnerID != nil {
		partner, err = s.getUser(ctx, *user.PartnerID)
		if err != nil {
			return err
		}
		code, err := s.codes.Generate(ctx)
		if err != nil {
			return err
		}
		partnerCode = &code
	}

	if err := s.users.DeleteAccount(ctx, user.ID, user.PartnerID, partnerCode); err != nil {
		return fmt.Errorf("deleting account: %w", err)
	}

	if partner != nil {
		s.invalidateMatchCounts(ctx, user.ID, partner.ID)
		s.notifyAsync(partner.TgID, "Your partner has deleted their account.")
	} else {
		s.invalidateMatchCounts(ctx, user.ID)
	}

	return nil
}

func (s *Service) getUser(ctx context.Context, id uint64) (*db.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.NotFound("user", id)
	}
	if err != nil {
		return nil, fmt.Errorf("loading user %d: %w", id, err)
	}
	return user, nil
}

// generateCodePair issues two codes that also differ from each other;
// the store only checks each against existing rows.
func (s *Service) generateCodePair(ctx context.Context) (string, string, error) {
	first, err := s.codes.Generate(ctx)
	if err != nil {
		return "", "", err
	}
	second := first
	for second == first {
		second, err = s.codes.Generate(ctx)
		if err != nil {
			return "", "", err
		}
	}
	return first, second, nil
}

// invalidateMatchCounts drops cached counters; the cache is advisory,
// so failures are only logged.
func (s *Service) invalidateMatchCounts(ctx context.Context, userIDs ...uint64) {
	if err := s.appCtx.RedisCache.InvalidateMatchCount(ctx, userIDs...); err != nil {
		s.appCtx.Logger.Warn("failed to invalidate match counts", "users", userIDs, "err", err)
	}
}

// notifyAsync delivers a message without blocking the caller and
// without ever surfacing the outcome: pairing state must not depend on
// Telegram being reachable.
func (s *Service) notifyAsync(tgID int64, text string) {
	notifier := s.appCtx.Notifier
	log := s.appCtx.Logger
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		defer cancel()
		if err := notifier.Send(ctx, tgID, text); err != nil {
			log.Warn("partner notification failed", "tg_id", tgID, "err", err)
		}
	}()
}

func displayName(u *db.User) string {
	if u.FirstName != "" {
		return u.FirstName
	}
	return "Your partner"
}
