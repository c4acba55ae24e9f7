package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/cryptoforce/platform/internal/model"
	"github.com/cryptoforce/platform/internal/testutil"
)

func TestFeedbackRepository_CreateAndGet(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewFeedbackRepository(db)
	user := testutil.TestUser(t, db)

	fb := &model.Feedback{
		UserID:   user.ID,
		Email:    user.Email,
		Subject:  "Error de acceso",
		Message:  "No veo mi dashboard",
		Category: model.FeedbackCategoryBug,
		Status:   model.FeedbackStatusPending,
	}
	require.NoError(t, repo.Create(fb))

	found, err := repo.GetByID(fb.ID)
	require.NoError(t, err)
	assert.Equal(t, "Error de acceso", found.Subject)
	assert.Nil(t, found.Response)

	mine, err := repo.ListByUserID(user.ID)
	require.NoError(t, err)
	assert.Len(t, mine, 1)
}

func TestFeedbackRepository_List(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewFeedbackRepository(db)
	user := testutil.TestUser(t, db)
	for i := 0; i < 3; i++ {
		testutil.TestFeedback(t, db, user)
	}
	testutil.TestFeedback(t, db, user, testutil.WithFeedbackStatus(model.FeedbackStatusResolved))

	items, total, err := repo.List("", 1, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(4), total)
	assert.Len(t, items, 2)
	require.NotNil(t, items[0].User)

	items, total, err = repo.List(model.FeedbackStatusResolved, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Len(t, items, 1)
}

func TestFeedbackRepository_AddResponse(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewFeedbackRepository(db)
	user := testutil.TestUser(t, db)
	maestro := testutil.TestUser(t, db, testutil.WithLevel(6))

	t.Run("open ticket", func(t *testing.T) {
		fb := testutil.TestFeedback(t, db, user)
		now := time.Now()

		err := repo.AddResponse(&model.FeedbackResponse{
			FeedbackID:     fb.ID,
			ResponderID:    maestro.ID,
			ResponderEmail: maestro.Email,
			Message:        "Revisa tu nivel",
		}, map[string]interface{}{
			"response":    "Revisa tu nivel",
			"response_by": maestro.ID,
			"response_at": now,
			"status":      model.FeedbackStatusInProgress,
		})
		require.NoError(t, err)

		found, _ := repo.GetByID(fb.ID)
		assert.Equal(t, model.FeedbackStatusInProgress, found.Status)
		require.NotNil(t, found.Response)
		assert.Equal(t, "Revisa tu nivel", *found.Response)

		responses, err := repo.ListResponses(fb.ID)
		require.NoError(t, err)
		assert.Len(t, responses, 1)
	})

	t.Run("resolved ticket is left untouched", func(t *testing.T) {
		fb := testutil.TestFeedback(t, db, user, testutil.WithFeedbackStatus(model.FeedbackStatusResolved))

		err := repo.AddResponse(&model.FeedbackResponse{
			FeedbackID:  fb.ID,
			ResponderID: maestro.ID,
			Message:     "Tarde",
		}, map[string]interface{}{"response": "Tarde"})
		assert.ErrorIs(t, err, ErrStaleState)

		responses, err := repo.ListResponses(fb.ID)
		require.NoError(t, err)
		assert.Empty(t, responses)
	})
}

func TestFeedbackRepository_Transition(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewFeedbackRepository(db)
	user := testutil.TestUser(t, db)
	fb := testutil.TestFeedback(t, db, user)

	err := repo.Transition(fb.ID, model.FeedbackStatusPending, map[string]interface{}{
		"status": model.FeedbackStatusResolved,
	})
	require.NoError(t, err)

	err = repo.Transition(fb.ID, model.FeedbackStatusPending, map[string]interface{}{
		"status": model.FeedbackStatusInProgress,
	})
	assert.ErrorIs(t, err, ErrStaleState)
}

func TestFeedbackRepository_Delete(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewFeedbackRepository(db)
	user := testutil.TestUser(t, db)
	fb := testutil.TestFeedback(t, db, user)
	require.NoError(t, db.Create(&model.FeedbackResponse{FeedbackID: fb.ID, ResponderID: user.ID, Message: "x"}).Error)

	require.NoError(t, repo.Delete(fb.ID))

	_, err := repo.GetByID(fb.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	responses, err := repo.ListResponses(fb.ID)
	require.NoError(t, err)
	assert.Empty(t, responses)

	assert.ErrorIs(t, repo.Delete(fb.ID), gorm.ErrRecordNotFound)
}
