package repository_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dichenko/myshadow/internal/apperror"
	"github.com/dichenko/myshadow/internal/db"
	"github.com/dichenko/myshadow/internal/repository"
)

func TestUpsertFromTelegramCreatesThenRefreshes(t *testing.T) {
	ctx := context.Background()
	dbase := setupTestDB(t)
	repo := repository.NewUserRepository(dbase)

	u, err := repo.UpsertFromTelegram(ctx, 555, "Ann", "")
	require.NoError(t, err)
	assert.Equal(t, 1, u.Visits)

	// a second contact within the hour refreshes names but not visits
	u2, err := repo.UpsertFromTelegram(ctx, 555, "Anna", "Smith")
	require.NoError(t, err)
	assert.Equal(t, u.ID, u2.ID)
	assert.Equal(t, "Anna", u2.FirstName)
	assert.Equal(t, 1, u2.Visits)
}

func TestUpsertFromTelegramCountsVisitPerHour(t *testing.T) {
	ctx := context.Background()
	dbase := setupTestDB(t)
	repo := repository.NewUserRepository(dbase)

	u, err := repo.UpsertFromTelegram(ctx, 556, "Ann", "")
	require.NoError(t, err)

	// age the last contact past the window
	stale := time.Now().UTC().Add(-2 * time.Hour)
	require.NoError(t, dbase.Model(&db.User{}).Where("id = ?", u.ID).Update("last_seen_at", stale).Error)

	u2, err := repo.UpsertFromTelegram(ctx, 556, "Ann", "")
	require.NoError(t, err)
	assert.Equal(t, 2, u2.Visits)
}

func TestCodeTaken(t *testing.T) {
	ctx := context.Background()
	dbase := setupTestDB(t)
	repo := repository.NewUserRepository(dbase)

	code := "AAAABBBBCCCCDDDD"
	createUser(t, dbase, 1, &code)

	taken, err := repo.CodeTaken(ctx, code)
	require.NoError(t, err)
	assert.True(t, taken)

	free, err := repo.CodeTaken(ctx, "ZZZZZZZZZZZZZZZZ")
	require.NoError(t, err)
	assert.False(t, free)
}

func TestPairLinksBothSidesAndClearsCodes(t *testing.T) {
	ctx := context.Background()
	dbase := setupTestDB(t)
	repo := repository.NewUserRepository(dbase)

	codeA, codeB := "AAAAAAAAAAAAAAAA", "BBBBBBBBBBBBBBBB"
	a := createUser(t, dbase, 1, &codeA)
	b := createUser(t, dbase, 2, &codeB)

	require.NoError(t, repo.Pair(ctx, a.ID, b.ID, codeB))

	gotA, err := repo.GetByID(ctx, a.ID)
	require.NoError(t, err)
	gotB, err := repo.GetByID(ctx, b.ID)
	require.NoError(t, err)

	// symmetric link, both codes gone
	require.NotNil(t, gotA.PartnerID)
	require.NotNil(t, gotB.PartnerID)
	assert.Equal(t, b.ID, *gotA.PartnerID)
	assert.Equal(t, a.ID, *gotB.PartnerID)
	assert.Nil(t, gotA.PairCode)
	assert.Nil(t, gotB.PairCode)
}

func TestPairRefusesSecondRedemptionOfSameOwner(t *testing.T) {
	ctx := context.Background()
	dbase := setupTestDB(t)
	repo := repository.NewUserRepository(dbase)

	// a and c both read b as unpaired before either writes; the write
	// guard must let only one redemption through
	codeB := "BBBBBBBBBBBBBBBB"
	a := createUser(t, dbase, 1, nil)
	b := createUser(t, dbase, 2, &codeB)
	c := createUser(t, dbase, 3, nil)

	require.NoError(t, repo.Pair(ctx, a.ID, b.ID, codeB))

	err := repo.Pair(ctx, c.ID, b.ID, codeB)
	assert.True(t, errors.Is(err, apperror.ErrAlreadyPaired))

	gotA, err := repo.GetByID(ctx, a.ID)
	require.NoError(t, err)
	gotB, err := repo.GetByID(ctx, b.ID)
	require.NoError(t, err)
	gotC, err := repo.GetByID(ctx, c.ID)
	require.NoError(t, err)

	require.NotNil(t, gotA.PartnerID)
	require.NotNil(t, gotB.PartnerID)
	assert.Equal(t, b.ID, *gotA.PartnerID)
	assert.Equal(t, a.ID, *gotB.PartnerID)
	assert.Nil(t, gotC.PartnerID)
}

func TestPairRollsBackWhenRequesterAlreadyPaired(t *testing.T) {
	ctx := context.Background()
	dbase := setupTestDB(t)
	repo := repository.NewUserRepository(dbase)

	codeB, codeD := "BBBBBBBBBBBBBBBB", "DDDDDDDDDDDDDDDD"
	a := createUser(t, dbase, 1, nil)
	b := createUser(t, dbase, 2, &codeB)
	d := createUser(t, dbase, 4, &codeD)
	require.NoError(t, repo.Pair(ctx, a.ID, b.ID, codeB))

	// a is paired; redeeming d's code must not touch d either
	err := repo.Pair(ctx, a.ID, d.ID, codeD)
	assert.True(t, errors.Is(err, apperror.ErrAlreadyPaired))

	gotD, err := repo.GetByID(ctx, d.ID)
	require.NoError(t, err)
	assert.Nil(t, gotD.PartnerID)
	require.NotNil(t, gotD.PairCode)
	assert.Equal(t, codeD, *gotD.PairCode)
}

func TestSetPairCodeRefusedOncePaired(t *testing.T) {
	ctx := context.Background()
	dbase := setupTestDB(t)
	repo := repository.NewUserRepository(dbase)

	codeB := "BBBBBBBBBBBBBBBB"
	a := createUser(t, dbase, 1, nil)
	b := createUser(t, dbase, 2, &codeB)
	require.NoError(t, repo.Pair(ctx, a.ID, b.ID, codeB))

	err := repo.SetPairCode(ctx, a.ID, "FFFFFFFFFFFFFFFF")
	assert.True(t, errors.Is(err, apperror.ErrAlreadyPaired))

	gotA, err := repo.GetByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Nil(t, gotA.PairCode)
}

func TestUnpairRefusedWhenLinkAlreadyGone(t *testing.T) {
	ctx := context.Background()
	dbase := setupTestDB(t)
	repo := repository.NewUserRepository(dbase)

	a := createUser(t, dbase, 1, nil)
	b := createUser(t, dbase, 2, nil)

	err := repo.Unpair(ctx, a.ID, b.ID, "CCCCCCCCCCCCCCCC", "DDDDDDDDDDDDDDDD")
	assert.True(t, errors.Is(err, apperror.ErrNoPartner))

	// neither side picked up a code from the rolled-back transaction
	gotA, err := repo.GetByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Nil(t, gotA.PairCode)
}

func TestUnpairClearsLinksAndIssuesCodes(t *testing.T) {
	ctx := context.Background()
	dbase := setupTestDB(t)
	repo := repository.NewUserRepository(dbase)

	codeB := "BBBBBBBBBBBBBBBB"
	a := createUser(t, dbase, 1, nil)
	b := createUser(t, dbase, 2, &codeB)
	require.NoError(t, repo.Pair(ctx, a.ID, b.ID, codeB))

	require.NoError(t, repo.Unpair(ctx, a.ID, b.ID, "CCCCCCCCCCCCCCCC", "DDDDDDDDDDDDDDDD"))

	gotA, err := repo.GetByID(ctx, a.ID)
	require.NoError(t, err)
	gotB, err := repo.GetByID(ctx, b.ID)
	require.NoError(t, err)

	assert.Nil(t, gotA.PartnerID)
	assert.Nil(t, gotB.PartnerID)
	require.NotNil(t, gotA.PairCode)
	require.NotNil(t, gotB.PairCode)
	assert.Equal(t, "CCCCCCCCCCCCCCCC", *gotA.PairCode)
	assert.Equal(t, "DDDDDDDDDDDDDDDD", *gotB.PairCode)
}

func TestDeleteAccountSeversPartnerAndDropsAnswers(t *testing.T) {
	ctx := context.Background()
	dbase := setupTestDB(t)
	repo := repository.NewUserRepository(dbase)

	codeB := "BBBBBBBBBBBBBBBB"
	a := createUser(t, dbase, 1, nil)
	b := createUser(t, dbase, 2, &codeB)
	require.NoError(t, repo.Pair(ctx, a.ID, b.ID, codeB))

	_, _, question := createCatalog(t, dbase)
	require.NoError(t, dbase.Create(&db.Answer{UserID: a.ID, QuestionID: question.ID, Value: db.AnswerYes}).Error)

	code := "EEEEEEEEEEEEEEEE"
	require.NoError(t, repo.DeleteAccount(ctx, a.ID, &b.ID, &code))

	// user row gone
	_, err := repo.GetByID(ctx, a.ID)
	assert.Error(t, err)

	// survivor unlinked, holding a fresh code
	gotB, err := repo.GetByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Nil(t, gotB.PartnerID)
	require.NotNil(t, gotB.PairCode)
	assert.Equal(t, code, *gotB.PairCode)

	// answers gone
	var count int64
	require.NoError(t, dbase.Model(&db.Answer{}).Where("user_id = ?", a.ID).Count(&count).Error)
	assert.Zero(t, count)
}
