package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/cryptoforce/platform/internal/model"
	"github.com/cryptoforce/platform/internal/model/dto"
	"github.com/cryptoforce/platform/internal/pkg/pubsub"
	"github.com/cryptoforce/platform/internal/pkg/queue"
	"github.com/cryptoforce/platform/internal/repository"
	"github.com/cryptoforce/platform/internal/testutil"
)

type feedbackFixture struct {
	service   *FeedbackService
	db        *gorm.DB
	notifier  *fakeNotifier
	publisher *fakePublisher
	owner     *model.User
	maestro   *model.User
	outsider  *model.User
}

func setupFeedbackService(t *testing.T) (*feedbackFixture, func()) {
	t.Helper()

	db := testutil.SetupTestDB(t)
	f := &feedbackFixture{
		db:        db,
		notifier:  &fakeNotifier{},
		publisher: &fakePublisher{},
	}
	f.service = NewFeedbackService(
		repository.NewFeedbackRepository(db),
		repository.NewUserRepository(db),
		testGate(),
		f.notifier,
		f.publisher,
	)
	f.owner = testutil.TestUser(t, db, testutil.WithNickname("Luke"))
	f.maestro = testutil.TestUser(t, db, testutil.WithEmail(testMaestroEmail), testutil.WithLevel(6))
	f.outsider = testutil.TestUser(t, db)

	cleanup := func() {
		testutil.CleanupTestDB(t, db)
	}

	return f, cleanup
}

func TestFeedbackService_Create(t *testing.T) {
	f, cleanup := setupFeedbackService(t)
	defer cleanup()

	fb, err := f.service.Create(context.Background(), f.owner, &dto.CreateFeedbackRequest{
		Subject: "  No carga el curso ",
		Message: "El módulo 3 se queda en blanco",
	})
	require.NoError(t, err)
	assert.Equal(t, model.FeedbackStatusPending, fb.Status)
	assert.Equal(t, model.FeedbackCategoryGeneral, fb.Category)
	assert.Equal(t, "No carga el curso", fb.Subject)
	assert.Equal(t, f.owner.Email, fb.Email)

	require.Len(t, f.publisher.events, 1)
	assert.Equal(t, pubsub.EventFeedbackCreated, f.publisher.events[0].Type)
	assert.Equal(t, pubsub.AudienceModerators, f.publisher.events[0].Audience)

	_, err = f.service.Create(context.Background(), f.owner, &dto.CreateFeedbackRequest{
		Subject: "x", Message: "y", Category: "spam",
	})
	assert.Equal(t, ErrInvalidCategory, err)
}

func TestFeedbackService_Access(t *testing.T) {
	f, cleanup := setupFeedbackService(t)
	defer cleanup()

	fb := testutil.TestFeedback(t, f.db, f.owner)

	_, err := f.service.Get(f.owner, fb.ID)
	assert.NoError(t, err)

	_, err = f.service.Get(f.maestro, fb.ID)
	assert.NoError(t, err)

	_, err = f.service.Get(f.outsider, fb.ID)
	assert.Equal(t, ErrPermissionDenied, err)

	_, err = f.service.Get(f.owner, 99999)
	assert.Equal(t, ErrFeedbackNotFound, err)

	_, _, err = f.service.List(f.owner, "", 1, 20)
	assert.Equal(t, ErrPermissionDenied, err)

	items, total, err := f.service.List(f.maestro, model.FeedbackStatusPending, 1, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Len(t, items, 1)

	mine, err := f.service.ListMine(f.outsider)
	require.NoError(t, err)
	assert.Empty(t, mine)
}

func TestFeedbackService_Respond(t *testing.T) {
	ctx := context.Background()

	t.Run("pending moves to in_progress and notifies", func(t *testing.T) {
		f, cleanup := setupFeedbackService(t)
		defer cleanup()

		fb := testutil.TestFeedback(t, f.db, f.owner)

		updated, err := f.service.Respond(ctx, f.maestro, fb.ID, " Ya está corregido ")
		require.NoError(t, err)
		assert.Equal(t, model.FeedbackStatusInProgress, updated.Status)
		require.NotNil(t, updated.Response)
		assert.Equal(t, "Ya está corregido", *updated.Response)
		require.NotNil(t, updated.ResponseBy)
		assert.Equal(t, f.maestro.ID, *updated.ResponseBy)

		responses, err := f.service.ListResponses(f.owner, fb.ID)
		require.NoError(t, err)
		require.Len(t, responses, 1)
		assert.Equal(t, f.maestro.Email, responses[0].ResponderEmail)

		require.Len(t, f.notifier.messages, 1)
		msg := f.notifier.messages[0]
		assert.Equal(t, queue.KindFeedbackResponded, msg.Kind)
		assert.Equal(t, f.owner.Email, msg.To)
		assert.Equal(t, "Luke", msg.Nickname)
		assert.Equal(t, "Ya está corregido", msg.Data["response"])
		assert.Contains(t, f.publisher.types(), pubsub.EventFeedbackResponded)
	})

	t.Run("second response keeps in_progress", func(t *testing.T) {
		f, cleanup := setupFeedbackService(t)
		defer cleanup()

		fb := testutil.TestFeedback(t, f.db, f.owner, testutil.WithFeedbackStatus(model.FeedbackStatusInProgress))

		updated, err := f.service.Respond(ctx, f.maestro, fb.ID, "Otra respuesta")
		require.NoError(t, err)
		assert.Equal(t, model.FeedbackStatusInProgress, updated.Status)
	})

	t.Run("resolved ticket rejects replies", func(t *testing.T) {
		f, cleanup := setupFeedbackService(t)
		defer cleanup()

		fb := testutil.TestFeedback(t, f.db, f.owner, testutil.WithFeedbackStatus(model.FeedbackStatusResolved))

		_, err := f.service.Respond(ctx, f.maestro, fb.ID, "Tarde")
		assert.Equal(t, ErrTicketResolved, err)
		assert.Empty(t, f.notifier.messages)
	})

	t.Run("non moderator denied", func(t *testing.T) {
		f, cleanup := setupFeedbackService(t)
		defer cleanup()

		fb := testutil.TestFeedback(t, f.db, f.owner)

		_, err := f.service.Respond(ctx, f.owner, fb.ID, "Me respondo solo")
		assert.Equal(t, ErrPermissionDenied, err)
	})

	t.Run("level six without allow-list is not a moderator", func(t *testing.T) {
		f, cleanup := setupFeedbackService(t)
		defer cleanup()

		fb := testutil.TestFeedback(t, f.db, f.owner)
		maestroRank := testutil.TestUser(t, f.db, testutil.WithLevel(6))

		_, err := f.service.Respond(ctx, maestroRank, fb.ID, "Hola")
		assert.Equal(t, ErrPermissionDenied, err)
	})
}

func TestFeedbackService_Resolve(t *testing.T) {
	ctx := context.Background()
	f, cleanup := setupFeedbackService(t)
	defer cleanup()

	fb := testutil.TestFeedback(t, f.db, f.owner)

	resolved, err := f.service.Resolve(ctx, f.maestro, fb.ID)
	require.NoError(t, err)
	assert.Equal(t, model.FeedbackStatusResolved, resolved.Status)
	assert.NotNil(t, resolved.ResolvedAt)
	assert.Equal(t, []string{queue.KindFeedbackResolved}, f.notifier.kinds())

	_, err = f.service.Resolve(ctx, f.maestro, fb.ID)
	assert.Equal(t, ErrTicketResolved, err)
}

func TestFeedbackService_UpdateStatus(t *testing.T) {
	ctx := context.Background()
	f, cleanup := setupFeedbackService(t)
	defer cleanup()

	fb := testutil.TestFeedback(t, f.db, f.owner)

	updated, err := f.service.UpdateStatus(ctx, f.maestro, fb.ID, model.FeedbackStatusInProgress)
	require.NoError(t, err)
	assert.Equal(t, model.FeedbackStatusInProgress, updated.Status)
	assert.Empty(t, f.notifier.messages)

	_, err = f.service.UpdateStatus(ctx, f.maestro, fb.ID, model.FeedbackStatusPending)
	assert.Equal(t, ErrInvalidTransition, err)

	_, err = f.service.UpdateStatus(ctx, f.maestro, fb.ID, "closed")
	assert.Equal(t, ErrInvalidTransition, err)

	updated, err = f.service.UpdateStatus(ctx, f.maestro, fb.ID, model.FeedbackStatusResolved)
	require.NoError(t, err)
	assert.Equal(t, model.FeedbackStatusResolved, updated.Status)
	assert.Equal(t, []string{queue.KindFeedbackResolved}, f.notifier.kinds())

	_, err = f.service.UpdateStatus(ctx, f.maestro, fb.ID, model.FeedbackStatusInProgress)
	assert.Equal(t, ErrInvalidTransition, err)

	_, err = f.service.UpdateStatus(ctx, f.owner, fb.ID, model.FeedbackStatusResolved)
	assert.Equal(t, ErrPermissionDenied, err)
}

func TestFeedbackService_Delete(t *testing.T) {
	ctx := context.Background()
	f, cleanup := setupFeedbackService(t)
	defer cleanup()

	fb := testutil.TestFeedback(t, f.db, f.owner)
	_, err := f.service.Respond(ctx, f.maestro, fb.ID, "Respuesta")
	require.NoError(t, err)

	assert.Equal(t, ErrPermissionDenied, f.service.Delete(f.owner, fb.ID))
	require.NoError(t, f.service.Delete(f.maestro, fb.ID))
	assert.Equal(t, ErrFeedbackNotFound, f.service.Delete(f.maestro, fb.ID))

	_, err = f.service.Get(f.maestro, fb.ID)
	assert.Equal(t, ErrFeedbackNotFound, err)
}

func TestFeedbackService_NotifierFailureIsNotFatal(t *testing.T) {
	f, cleanup := setupFeedbackService(t)
	defer cleanup()

	f.notifier.err = assert.AnError
	fb := testutil.TestFeedback(t, f.db, f.owner)

	_, err := f.service.Resolve(context.Background(), f.maestro, fb.ID)
	assert.NoError(t, err)
}
