package experience

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Veronika2030/supperspot/internal/domain"
)

type MockExperienceRepository struct {
	mock.Mock
}

func (m *MockExperienceRepository) Create(ctx context.Context, experience *domain.Experience) error {
	args := m.Called(ctx, experience)
	return args.Error(0)
}

func (m *MockExperienceRepository) List(ctx context.Context) ([]domain.Experience, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Experience), args.Error(1)
}

func (m *MockExperienceRepository) GetByID(ctx context.Context, id string) (*domain.Experience, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Experience), args.Error(1)
}

func (m *MockExperienceRepository) UpdateStatus(ctx context.Context, id string, status domain.ExperienceStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *MockExperienceRepository) CloseFinished(ctx context.Context, deadline time.Time) (int64, error) {
	args := m.Called(ctx, deadline)
	return args.Get(0).(int64), args.Error(1)
}

type MockCache struct {
	mock.Mock
}

func (m *MockCache) GetExperiences(ctx context.Context) ([]domain.Experience, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Experience), args.Error(1)
}

func (m *MockCache) SetExperiences(ctx context.Context, experiences []domain.Experience) error {
	args := m.Called(ctx, experiences)
	return args.Error(0)
}

func (m *MockCache) InvalidateExperiences(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func validCreateInput() CreateInput {
	return CreateInput{
		Title:             "Dumpling workshop",
		Description:       "Hands-on evening",
		Capacity:          8,
		EventDate:         time.Now().Add(72 * time.Hour),
		PricePerSeatCents: 4500,
	}
}

func TestExperienceService_List_CacheHit(t *testing.T) {
	mockRepo := &MockExperienceRepository{}
	mockCache := &MockCache{}
	service := NewExperienceService(mockRepo, mockCache)

	ctx := context.Background()
	cached := []domain.Experience{{ID: "exp-1", Title: "Pasta night"}}
	mockCache.On("GetExperiences", ctx).Return(cached, nil).Once()

	experiences, err := service.List(ctx)

	require.NoError(t, err)
	assert.Equal(t, cached, experiences)
	mockRepo.AssertNotCalled(t, "List")
}

func TestExperienceService_List_CacheMiss(t *testing.T) {
	mockRepo := &MockExperienceRepository{}
	mockCache := &MockCache{}
	service := NewExperienceService(mockRepo, mockCache)

	ctx := context.Background()
	stored := []domain.Experience{{ID: "exp-1"}, {ID: "exp-2"}}
	mockCache.On("GetExperiences", ctx).Return(nil, nil).Once()
	mockRepo.On("List", ctx).Return(stored, nil).Once()
	mockCache.On("SetExperiences", ctx, stored).Return(nil).Once()

	experiences, err := service.List(ctx)

	require.NoError(t, err)
	assert.Len(t, experiences, 2)
	mockCache.AssertExpectations(t)
}

func TestExperienceService_List_CacheUnavailable(t *testing.T) {
	mockRepo := &MockExperienceRepository{}
	mockCache := &MockCache{}
	service := NewExperienceService(mockRepo, mockCache)

	ctx := context.Background()
	stored := []domain.Experience{{ID: "exp-1"}}
	mockCache.On("GetExperiences", ctx).Return(nil, errors.New("redis down")).Once()
	mockRepo.On("List", ctx).Return(stored, nil).Once()
	mockCache.On("SetExperiences", ctx, stored).Return(errors.New("redis down")).Once()

	experiences, err := service.List(ctx)

	require.NoError(t, err)
	assert.Equal(t, stored, experiences)
}

func TestExperienceService_Create_Success(t *testing.T) {
	mockRepo := &MockExperienceRepository{}
	mockCache := &MockCache{}
	service := NewExperienceService(mockRepo, mockCache)

	ctx := context.Background()
	mockRepo.On("Create", ctx, mock.AnythingOfType("*domain.Experience")).Return(nil).Once()
	mockCache.On("InvalidateExperiences", ctx).Return(nil).Once()

	experience, err := service.Create(ctx, "host-1", validCreateInput())

	require.NoError(t, err)
	assert.Equal(t, "host-1", experience.HostID)
	assert.Equal(t, domain.ExperienceStatusActive, experience.Status)
	assert.Equal(t, 8, experience.Capacity)
	assert.Equal(t, 8, experience.RemainingCapacity)
	assert.NotEmpty(t, experience.ID)

	mockCache.AssertExpectations(t)
}

func TestExperienceService_Create_ValidationErrors(t *testing.T) {
	service := NewExperienceService(&MockExperienceRepository{}, nil)

	testCases := []struct {
		name   string
		mutate func(*CreateInput)
		field  string
	}{
		{
			name:   "blank title",
			mutate: func(in *CreateInput) { in.Title = "   " },
			field:  "title",
		},
		{
			name:   "zero capacity",
			mutate: func(in *CreateInput) { in.Capacity = 0 },
			field:  "capacity",
		},
		{
			name:   "past event date",
			mutate: func(in *CreateInput) { in.EventDate = time.Now().Add(-time.Hour) },
			field:  "event_date",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			input := validCreateInput()
			tc.mutate(&input)

			_, err := service.Create(context.Background(), "host-1", input)

			var vErr *domain.ValidationError
			require.True(t, errors.As(err, &vErr))
			assert.Equal(t, tc.field, vErr.Field)
		})
	}
}

func TestExperienceService_Close_Success(t *testing.T) {
	mockRepo := &MockExperienceRepository{}
	mockCache := &MockCache{}
	service := NewExperienceService(mockRepo, mockCache)

	ctx := context.Background()
	mockRepo.On("GetByID", ctx, "exp-1").Return(&domain.Experience{
		ID:     "exp-1",
		HostID: "host-1",
		Status: domain.ExperienceStatusActive,
	}, nil).Once()
	mockRepo.On("UpdateStatus", ctx, "exp-1", domain.ExperienceStatusClosed).Return(nil).Once()
	mockCache.On("InvalidateExperiences", ctx).Return(nil).Once()

	err := service.Close(ctx, "exp-1", "host-1")

	assert.NoError(t, err)
	mockRepo.AssertExpectations(t)
}

func TestExperienceService_Close_WrongHost(t *testing.T) {
	mockRepo := &MockExperienceRepository{}
	service := NewExperienceService(mockRepo, nil)

	ctx := context.Background()
	mockRepo.On("GetByID", ctx, "exp-1").Return(&domain.Experience{
		ID:     "exp-1",
		HostID: "host-1",
		Status: domain.ExperienceStatusActive,
	}, nil).Once()

	err := service.Close(ctx, "exp-1", "host-2")

	assert.ErrorIs(t, err, domain.ErrForbidden)
	mockRepo.AssertNotCalled(t, "UpdateStatus")
}

func TestExperienceService_Close_AlreadyClosed(t *testing.T) {
	mockRepo := &MockExperienceRepository{}
	service := NewExperienceService(mockRepo, nil)

	ctx := context.Background()
	mockRepo.On("GetByID", ctx, "exp-1").Return(&domain.Experience{
		ID:     "exp-1",
		HostID: "host-1",
		Status: domain.ExperienceStatusClosed,
	}, nil).Once()

	err := service.Close(ctx, "exp-1", "host-1")

	assert.ErrorIs(t, err, domain.ErrInvalidState)
}
