package repository_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dichenko/myshadow/internal/db"
	"github.com/dichenko/myshadow/internal/repository"
)

func TestUpsertAnswerOverwrites(t *testing.T) {
	ctx := context.Background()
	dbase := setupTestDB(t)
	repo := repository.NewAnswerRepository(dbase)

	user := createUser(t, dbase, 1, nil)
	_, _, question := createCatalog(t, dbase)

	require.NoError(t, repo.Upsert(ctx, user.ID, question.ID, db.AnswerYes))
	require.NoError(t, repo.Upsert(ctx, user.ID, question.ID, db.AnswerMaybe))

	var answers []db.Answer
	require.NoError(t, dbase.Where("user_id = ?", user.ID).Find(&answers).Error)

	// exactly one row, holding the latest value
	require.Len(t, answers, 1)
	assert.Equal(t, db.AnswerMaybe, answers[0].Value)
}

func TestListAnsweredCarriesQuestionMeta(t *testing.T) {
	ctx := context.Background()
	dbase := setupTestDB(t)
	repo := repository.NewAnswerRepository(dbase)

	user := createUser(t, dbase, 1, nil)
	block, practice, question := createCatalog(t, dbase)

	require.NoError(t, repo.Upsert(ctx, user.ID, question.ID, db.AnswerYes))

	answered, err := repo.ListAnswered(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, answered, 1)

	a := answered[0]
	assert.Equal(t, question.ID, a.QuestionID)
	assert.Equal(t, block.ID, a.BlockID)
	assert.Equal(t, practice.ID, a.PracticeID)
	assert.Equal(t, db.RoleGiver, a.Role)
	assert.Equal(t, db.AnswerYes, a.Value)
	assert.Equal(t, "Give a massage?", a.Text)
}

func TestDeleteForUserBlockScopesToBlock(t *testing.T) {
	ctx := context.Background()
	dbase := setupTestDB(t)
	repo := repository.NewAnswerRepository(dbase)

	user := createUser(t, dbase, 1, nil)
	_, practice, question := createCatalog(t, dbase)

	otherBlock := db.Block{Title: "Roleplay", Order: 2}
	require.NoError(t, dbase.Create(&otherBlock).Error)
	otherQuestion := db.Question{BlockID: otherBlock.ID, PracticeID: practice.ID, Text: "Dress up?", Order: 1, Role: db.RoleNone}
	require.NoError(t, dbase.Create(&otherQuestion).Error)

	require.NoError(t, repo.Upsert(ctx, user.ID, question.ID, db.AnswerYes))
	require.NoError(t, repo.Upsert(ctx, user.ID, otherQuestion.ID, db.AnswerNo))

	require.NoError(t, repo.DeleteForUserBlock(ctx, user.ID, otherBlock.ID))

	answers, err := repo.ListForUser(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, answers, 1)
	assert.Equal(t, question.ID, answers[0].QuestionID)
}

func TestDeleteForUserRemovesEverything(t *testing.T) {
	ctx := context.Background()
	dbase := setupTestDB(t)
	repo := repository.NewAnswerRepository(dbase)

	user := createUser(t, dbase, 1, nil)
	_, _, question := createCatalog(t, dbase)
	require.NoError(t, repo.Upsert(ctx, user.ID, question.ID, db.AnswerYes))

	require.NoError(t, repo.DeleteForUser(ctx, user.ID))

	answers, err := repo.ListForUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, answers)
}
