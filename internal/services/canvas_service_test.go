package services_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"queens/internal/apperrors"
	"queens/internal/config"
	"queens/internal/logger"
	"queens/internal/metrics"
	"queens/internal/models"
	"queens/internal/repositories"
	"queens/internal/services"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestCanvasService_SyncAssignments(t *testing.T) {
	ctx := context.Background()
	users := new(MockUserRepository)
	source := new(MockAssignmentSource)
	service := services.NewCanvasService(users, source, metrics.Nop{}, logger.Discard())

	user := &models.User{Email: "a@x.com", CanvasToken: "tok"}
	assignments := []models.Assignment{{Name: "Essay", DateDue: "2024-05-07", TimeDue: "23:59"}}
	users.On("GetByEmail", ctx, "a@x.com").Return(user, nil).Once()
	source.On("UpcomingAssignments", ctx, "tok").Return(assignments, nil).Once()
	users.On("UpdateAssignments", ctx, "a@x.com", assignments).Return(nil).Once()

	got, err := service.SyncAssignments(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, assignments, got)
	users.AssertExpectations(t)
}

func TestCanvasService_RequiresToken(t *testing.T) {
	ctx := context.Background()
	users := new(MockUserRepository)
	source := new(MockAssignmentSource)
	service := services.NewCanvasService(users, source, metrics.Nop{}, logger.Discard())

	users.On("GetByEmail", ctx, "a@x.com").Return(&models.User{Email: "a@x.com"}, nil).Once()
	_, err := service.SyncAssignments(ctx, "a@x.com")
	assert.True(t, apperrors.Is(err, apperrors.KindValidation))
	source.AssertNotCalled(t, "UpcomingAssignments", mock.Anything, mock.Anything)
}

func TestCanvasService_UpstreamFailure(t *testing.T) {
	ctx := context.Background()
	users := new(MockUserRepository)
	source := new(MockAssignmentSource)
	service := services.NewCanvasService(users, source, metrics.Nop{}, logger.Discard())

	users.On("GetByEmail", ctx, "a@x.com").Return(&models.User{Email: "a@x.com", CanvasToken: "tok"}, nil).Once()
	source.On("UpcomingAssignments", ctx, "tok").Return(nil, apperrors.Unavailable("canvas", errors.New("timeout"))).Once()

	_, err := service.SyncAssignments(ctx, "a@x.com")
	assert.True(t, apperrors.Is(err, apperrors.KindCollaboratorUnavailable))
	users.AssertNotCalled(t, "UpdateAssignments", mock.Anything, mock.Anything, mock.Anything)
}

func TestCanvasService_SyncKeepsConcurrentProfileEdit(t *testing.T) {
	ctx := context.Background()
	db, err := repositories.Open(config.DatabaseConfig{
		Driver: "sqlite",
		DSN:    fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.New().String()),
	})
	require.NoError(t, err)
	require.NoError(t, repositories.Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	users := repositories.NewGORMUserRepository(db)
	require.NoError(t, users.Create(ctx, &models.User{Email: "a@x.com", CanvasToken: "tok", Bio: "math"}))

	userService := services.NewUserService(users, logger.Discard())
	source := new(MockAssignmentSource)
	canvasService := services.NewCanvasService(users, source, metrics.Nop{}, logger.Discard())

	assignments := []models.Assignment{{Name: "Essay", DateDue: "2024-05-07", TimeDue: "23:59"}}
	source.On("UpcomingAssignments", ctx, "tok").
		Run(func(mock.Arguments) {
			// The profile is edited while Canvas is still answering.
			_, err := userService.UpdateUser(ctx, "a@x.com", "a@x.com", &models.UserUpdateRequest{Bio: strPtr("edited")})
			require.NoError(t, err)
		}).
		Return(assignments, nil).Once()

	_, err = canvasService.SyncAssignments(ctx, "a@x.com")
	require.NoError(t, err)

	got, err := users.GetByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, "edited", got.Bio)
	assert.Equal(t, assignments, got.Assignments)
	assert.Equal(t, "tok", got.CanvasToken)
}
