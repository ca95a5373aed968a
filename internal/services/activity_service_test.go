package services_test

import (
	"context"
	"fmt"
	"testing"

	"tracker/internal/common"
	"tracker/internal/models"
	"tracker/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockActivityRepository is a mock implementation of repositories.ActivityRepository
type MockActivityRepository struct {
	mock.Mock
}

func (m *MockActivityRepository) Create(ctx context.Context, activity *models.Activity) error {
	args := m.Called(ctx, activity)
	if activity.ID == "" {
		activity.ID = "act-1"
	}
	return args.Error(0)
}

func (m *MockActivityRepository) GetByID(ctx context.Context, id string) (*models.Activity, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Activity), args.Error(1)
}

func (m *MockActivityRepository) ListByUser(ctx context.Context, userID string, filter models.ActivityFilter) ([]models.Activity, error) {
	args := m.Called(ctx, userID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Activity), args.Error(1)
}

func (m *MockActivityRepository) Update(ctx context.Context, activity *models.Activity) error {
	args := m.Called(ctx, activity)
	return args.Error(0)
}

func (m *MockActivityRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockActivityRepository) StatsByUser(ctx context.Context, userID string) (*models.ActivityStats, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ActivityStats), args.Error(1)
}

func validCreate() services.CreateActivityRequest {
	return services.CreateActivityRequest{
		Title:       "Run",
		Category:    "Self-care",
		SubCategory: "Walk",
		Duration:    30,
		Date:        "2024-01-15",
		Feeling:     7,
	}
}

func ownedActivity() *models.Activity {
	return &models.Activity{
		ID: "act-1", UserID: "ana", Title: "Run", Category: "Self-care", SubCategory: "Walk",
		Duration: 30, Date: "2024-01-15", Feeling: 7, Status: models.StatusCompleted,
	}
}

func strPtr(s string) *string { return &s }
func flexPtr(i int) *services.FlexInt {
	n := services.FlexInt(i)
	return &n
}

func TestActivityService_CreateStampsOwner(t *testing.T) {
	mockRepo := new(MockActivityRepository)
	mockPub := new(MockPublisher)
	service := services.NewActivityService(mockRepo, mockPub)

	mockRepo.On("Create", mock.Anything, mock.MatchedBy(func(a *models.Activity) bool {
		return a.UserID == "ana" && a.Title == "Run" && a.Status == models.StatusCompleted
	})).Return(nil).Once()
	mockPub.On("Publish", services.EventActivityCreated, mock.Anything).Return(nil).Once()

	activity, err := service.CreateActivity(context.Background(), "ana", validCreate())
	require.NoError(t, err)
	assert.Equal(t, "ana", activity.UserID)
	assert.Equal(t, "act-1", activity.ID)
	mockRepo.AssertExpectations(t)
	mockPub.AssertExpectations(t)
}

func TestActivityService_CreateValidation(t *testing.T) {
	mockRepo := new(MockActivityRepository)
	service := services.NewActivityService(mockRepo, nil)

	req := validCreate()
	req.Title = "   "
	req.Duration = 0
	req.Date = "15/01/2024"
	req.Feeling = 11
	req.Category = "Chores"
	req.Status = "done"

	_, err := service.CreateActivity(context.Background(), "ana", req)
	var verr *common.ValidationError
	require.ErrorAs(t, err, &verr)
	for _, field := range []string{"title", "duration", "date", "feeling", "category", "status"} {
		assert.Contains(t, verr.Fields, field)
	}
	assert.Equal(t, []string{"The feeling may not be greater than 10."}, verr.Fields["feeling"])

	req = validCreate()
	req.SubCategory = "Shopping"
	_, err = service.CreateActivity(context.Background(), "ana", req)
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "sub_category")

	mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestActivityService_GetOwnership(t *testing.T) {
	mockRepo := new(MockActivityRepository)
	service := services.NewActivityService(mockRepo, nil)

	mockRepo.On("GetByID", mock.Anything, "act-1").Return(ownedActivity(), nil)
	mockRepo.On("GetByID", mock.Anything, "missing").Return(nil, common.ErrNotFound)

	activity, err := service.GetActivity(context.Background(), "ana", "act-1")
	require.NoError(t, err)
	assert.Equal(t, "act-1", activity.ID)

	_, err = service.GetActivity(context.Background(), "ben", "act-1")
	assert.ErrorIs(t, err, common.ErrForbidden)

	_, err = service.GetActivity(context.Background(), "ana", "missing")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestActivityService_UpdateNonOwnerNeverMutates(t *testing.T) {
	mockRepo := new(MockActivityRepository)
	service := services.NewActivityService(mockRepo, nil)
	mockRepo.On("GetByID", mock.Anything, "act-1").Return(ownedActivity(), nil)

	// Even an invalid body reports 403 first for a non-owner.
	_, err := service.UpdateActivity(context.Background(), "ben", "act-1", services.UpdateActivityRequest{Feeling: flexPtr(99)})
	assert.ErrorIs(t, err, common.ErrForbidden)

	err = service.DeleteActivity(context.Background(), "ben", "act-1")
	assert.ErrorIs(t, err, common.ErrForbidden)

	mockRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	mockRepo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestActivityService_UpdatePartial(t *testing.T) {
	mockRepo := new(MockActivityRepository)
	mockPub := new(MockPublisher)
	service := services.NewActivityService(mockRepo, mockPub)

	mockRepo.On("GetByID", mock.Anything, "act-1").Return(ownedActivity(), nil)
	mockRepo.On("Update", mock.Anything, mock.AnythingOfType("*models.Activity")).Return(nil).Once()
	mockPub.On("Publish", services.EventActivityUpdated, mock.Anything).Return(nil).Once()

	updated, err := service.UpdateActivity(context.Background(), "ana", "act-1", services.UpdateActivityRequest{
		Title:   strPtr("Evening run"),
		Feeling: flexPtr(9),
	})
	require.NoError(t, err)
	assert.Equal(t, "Evening run", updated.Title)
	assert.Equal(t, 9, updated.Feeling)
	assert.Equal(t, 30, updated.Duration)
	assert.Equal(t, "ana", updated.UserID)
	mockRepo.AssertExpectations(t)
	mockPub.AssertExpectations(t)
}

func TestActivityService_UpdateValidation(t *testing.T) {
	mockRepo := new(MockActivityRepository)
	service := services.NewActivityService(mockRepo, nil)
	mockRepo.On("GetByID", mock.Anything, "act-1").Return(ownedActivity(), nil)

	var verr *common.ValidationError
	_, err := service.UpdateActivity(context.Background(), "ana", "act-1", services.UpdateActivityRequest{
		Title:    strPtr(""),
		Duration: flexPtr(0),
	})
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "title")
	assert.Contains(t, verr.Fields, "duration")

	// Switching category leaves "Walk" orphaned.
	_, err = service.UpdateActivity(context.Background(), "ana", "act-1", services.UpdateActivityRequest{
		Category: strPtr("Reward"),
	})
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "sub_category")
	mockRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestActivityService_Delete(t *testing.T) {
	mockRepo := new(MockActivityRepository)
	service := services.NewActivityService(mockRepo, nil)

	mockRepo.On("GetByID", mock.Anything, "act-1").Return(ownedActivity(), nil).Once()
	mockRepo.On("Delete", mock.Anything, "act-1").Return(nil).Once()
	assert.NoError(t, service.DeleteActivity(context.Background(), "ana", "act-1"))

	mockRepo.On("GetByID", mock.Anything, "act-1").Return(nil, common.ErrNotFound).Once()
	assert.ErrorIs(t, service.DeleteActivity(context.Background(), "ana", "act-1"), common.ErrNotFound)
	mockRepo.AssertExpectations(t)
}

func TestActivityService_ListNormalisesFilter(t *testing.T) {
	mockRepo := new(MockActivityRepository)
	service := services.NewActivityService(mockRepo, nil)

	expected := models.ActivityFilter{Search: "run", SortBy: models.SortByDate, SortOrder: "desc"}
	mockRepo.On("ListByUser", mock.Anything, "ana", expected).Return([]models.Activity{*ownedActivity()}, nil).Once()

	list, err := service.ListActivities(context.Background(), "ana", models.ActivityFilter{
		Search: " run ", Category: "all", SubCategory: "all",
	})
	require.NoError(t, err)
	assert.Len(t, list, 1)
	mockRepo.AssertExpectations(t)
}

func TestActivityService_ListRejectsBadFilter(t *testing.T) {
	mockRepo := new(MockActivityRepository)
	service := services.NewActivityService(mockRepo, nil)

	var verr *common.ValidationError
	_, err := service.ListActivities(context.Background(), "ana", models.ActivityFilter{SortBy: "password", SortOrder: "sideways"})
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "sort_by")
	assert.Contains(t, verr.Fields, "sort_order")

	_, err = service.ListActivities(context.Background(), "ana", models.ActivityFilter{StartDate: "2024-02-01", EndDate: "2024-01-01"})
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "end_date")
	mockRepo.AssertNotCalled(t, "ListByUser", mock.Anything, mock.Anything, mock.Anything)
}

func TestActivityService_Stats(t *testing.T) {
	mockRepo := new(MockActivityRepository)
	service := services.NewActivityService(mockRepo, nil)

	mockRepo.On("StatsByUser", mock.Anything, "ana").Return(&models.ActivityStats{
		TotalActivities: 3,
		TotalDuration:   100,
		AverageFeeling:  6.666666,
		ByCategory:      []models.CategoryStats{{Category: "Reward", Count: 3, TotalDuration: 100, AverageFeeling: 6.666666}},
	}, nil).Once()
	mockRepo.On("StatsByUser", mock.Anything, "ben").Return(nil, fmt.Errorf("db down")).Once()

	stats, err := service.Stats(context.Background(), "ana")
	require.NoError(t, err)
	assert.Equal(t, 6.67, stats.AverageFeeling)
	assert.Equal(t, 6.67, stats.ByCategory[0].AverageFeeling)

	_, err = service.Stats(context.Background(), "ben")
	assert.Error(t, err)
}
