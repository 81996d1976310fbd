package repository_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dichenko/myshadow/internal/apperror"
	"github.com/dichenko/myshadow/internal/db"
	"github.com/dichenko/myshadow/internal/repository"
)

func TestDeleteBlockGuardedByQuestions(t *testing.T) {
	ctx := context.Background()
	dbase := setupTestDB(t)
	repo := repository.NewCatalogRepository(dbase)

	block, _, question := createCatalog(t, dbase)

	err := repo.DeleteBlock(ctx, block.ID)
	assert.True(t, errors.Is(err, apperror.ErrHasDependents))

	// removing the dependent question unblocks the delete
	require.NoError(t, repo.DeleteQuestion(ctx, question.ID))
	require.NoError(t, repo.DeleteBlock(ctx, block.ID))
}

func TestDeletePracticeGuardedByQuestions(t *testing.T) {
	ctx := context.Background()
	dbase := setupTestDB(t)
	repo := repository.NewCatalogRepository(dbase)

	_, practice, _ := createCatalog(t, dbase)

	err := repo.DeletePractice(ctx, practice.ID)
	assert.True(t, errors.Is(err, apperror.ErrHasDependents))
}

func TestDeleteQuestionGuardedByAnswers(t *testing.T) {
	ctx := context.Background()
	dbase := setupTestDB(t)
	repo := repository.NewCatalogRepository(dbase)

	user := createUser(t, dbase, 1, nil)
	_, _, question := createCatalog(t, dbase)
	require.NoError(t, dbase.Create(&db.Answer{UserID: user.ID, QuestionID: question.ID, Value: db.AnswerNo}).Error)

	err := repo.DeleteQuestion(ctx, question.ID)
	assert.True(t, errors.Is(err, apperror.ErrHasDependents))
}

func TestDeleteMissingBlockIsNotFound(t *testing.T) {
	ctx := context.Background()
	dbase := setupTestDB(t)
	repo := repository.NewCatalogRepository(dbase)

	err := repo.DeleteBlock(ctx, 12345)
	assert.True(t, errors.Is(err, apperror.ErrNotFound))
}

func TestListBlocksOrdered(t *testing.T) {
	ctx := context.Background()
	dbase := setupTestDB(t)
	repo := repository.NewCatalogRepository(dbase)

	require.NoError(t, repo.CreateBlock(ctx, &db.Block{Title: "Second", Order: 2}))
	require.NoError(t, repo.CreateBlock(ctx, &db.Block{Title: "First", Order: 1}))

	blocks, err := repo.ListBlocks(ctx)
	require.NoError(t, err)
	require.Len(t, blocks, 2)
	assert.Equal(t, "First", blocks[0].Title)
	assert.Equal(t, "Second", blocks[1].Title)
}
