package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/dichenko/myshadow/internal/apperror"
	"github.com/dichenko/myshadow/internal/db"
)

// visitWindow is the rolling window within which repeat contacts do not
// increment the visit counter.
const visitWindow = time.Hour

// UserRepository provides data access for users, including the
// transactional two-row updates behind pairing and unpairing.
type UserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new repository bound to the given DB connection.
func NewUserRepository(database *gorm.DB) *UserRepository {
	return &UserRepository{db: database}
}

// GetByID fetches a user or gorm.ErrRecordNotFound.
func (r *UserRepository) GetByID(ctx context.Context, id uint64) (*db.User, error) {
	var u db.User
	if err := r.db.WithContext(ctx).First(&u, id).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) GetByTgID(ctx context.Context, tgID int64) (*db.User, error) {
	var u db.User
	if err := r.db.WithContext(ctx).Where("tg_id = ?", tgID).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByPairCode finds the user currently holding the given code.
func (r *UserRepository) GetByPairCode(ctx context.Context, code string) (*db.User, error) {
	var u db.User
	if err := r.db.WithContext(ctx).Where("pair_code = ?", code).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

// CodeTaken reports whether any user holds the given pair code.
// Satisfies the pair code generator's uniqueness probe.
func (r *UserRepository) CodeTaken(ctx context.Context, code string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&db.User{}).
		Where("pair_code = ?", code).
		Count(&count).Error
	return count > 0, err
}

// UpsertFromTelegram creates the user on first contact and refreshes
// profile fields on every later one.
//
// Behavior:
//   - New tg_id → row created with Visits = 1 and both seen timestamps.
//   - Existing row → names and last_seen_at refreshed; Visits
//     incremented only when the previous contact is older than an hour.
func (r *UserRepository) UpsertFromTelegram(ctx context.Context, tgID int64, firstName, lastName string) (*db.User, error) {
	now := time.Now().UTC()

	var u db.User
	err := r.db.WithContext(ctx).Where("tg_id = ?", tgID).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		u = db.User{
			TgID:        tgID,
			FirstName:   firstName,
			LastName:    lastName,
			FirstSeenAt: now,
			LastSeenAt:  now,
			Visits:      1,
		}
		if err := r.db.WithContext(ctx).Create(&u).Error; err != nil {
			return nil, err
		}
		return &u, nil
	}
	if err != nil {
		return nil, err
	}

	updates := map[string]any{
		"first_name":   firstName,
		"last_name":    lastName,
		"last_seen_at": now,
	}
	if now.Sub(u.LastSeenAt) >= visitWindow {
		updates["visits"] = gorm.Expr("visits + 1")
		u.Visits++
	}
	if err := r.db.WithContext(ctx).Model(&db.User{}).Where("id = ?", u.ID).Updates(updates).Error; err != nil {
		return nil, err
	}
	u.FirstName, u.LastName, u.LastSeenAt = firstName, lastName, now
	return &u, nil
}

// SetPairCode stores a freshly issued code on an unpaired user. The
// write guards itself: a concurrent pairing makes it a no-op and an
// ErrAlreadyPaired.
func (r *UserRepository) SetPairCode(ctx context.Context, userID uint64, code string) error {
	res := r.db.WithContext(ctx).
		Model(&db.User{}).
		Where("id = ? AND partner_id IS NULL", userID).
		Update("pair_code", code)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperror.AlreadyPaired()
	}
	return nil
}

// Pair links the requester with the owner of ownerCode in a single
// transaction: both partner pointers set, both codes cleared.
//
// The preconditions are re-checked inside the writes themselves, not
// just by the caller: each update only matches a row that is still
// unpaired (and, for the owner, still holding the redeemed code). A
// concurrent pairing that got there first leaves one of the updates
// matching zero rows, which fails with ErrAlreadyPaired and rolls the
// whole transaction back. The symmetry invariant is never observable
// half-applied.
func (r *UserRepository) Pair(ctx context.Context, userID, ownerID uint64, ownerCode string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&db.User{}).
			Where("id = ? AND partner_id IS NULL AND pair_code = ?", ownerID, ownerCode).
			Updates(map[string]any{"partner_id": userID, "pair_code": nil})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperror.AlreadyPaired()
		}

		res = tx.Model(&db.User{}).
			Where("id = ? AND partner_id IS NULL", userID).
			Updates(map[string]any{"partner_id": ownerID, "pair_code": nil})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperror.AlreadyPaired()
		}
		return nil
	})
}

// Unpair dissolves the link in a single transaction and hands each
// former partner their fresh code. The updates only match rows still
// pointing at each other; if the link is already gone the transaction
// rolls back with ErrNoPartner.
func (r *UserRepository) Unpair(ctx context.Context, userID, partnerID uint64, userCode, partnerCode string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&db.User{}).
			Where("id = ? AND partner_id = ?", userID, partnerID).
			Updates(map[string]any{"partner_id": nil, "pair_code": userCode})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperror.NoPartner()
		}

		res = tx.Model(&db.User{}).
			Where("id = ? AND partner_id = ?", partnerID, userID).
			Updates(map[string]any{"partner_id": nil, "pair_code": partnerCode})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperror.NoPartner()
		}
		return nil
	})
}

// DeleteAccount removes a user and everything they own.
//
// Behavior, all in one transaction:
//  1. If partnered, the surviving partner's pointer is cleared first
//     (never leave a dangling partner_id) and they receive a fresh code.
//  2. The user's answers are deleted.
//  3. The user row is deleted.
func (r *UserRepository) DeleteAccount(ctx context.Context, userID uint64, partnerID *uint64, partnerCode *string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if partnerID != nil {
			updates := map[string]any{"partner_id": nil}
			if partnerCode != nil {
				updates["pair_code"] = *partnerCode
			}
			// matching on the back-pointer makes a concurrent unpair a
			// harmless no-op here
			if err := tx.Model(&db.User{}).
				Where("id = ? AND partner_id = ?", *partnerID, userID).
				Updates(updates).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("user_id = ?", userID).Delete(&db.Answer{}).Error; err != nil {
			return err
		}
		return tx.Delete(&db.User{}, userID).Error
	})
}
