package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/Veronika2030/supperspot/internal/domain"
	"github.com/Veronika2030/supperspot/internal/service/rating"
)

// MockRatingUseCase is a mock implementation of rating.RatingUseCase
type MockRatingUseCase struct {
	mock.Mock
}

func (m *MockRatingUseCase) Submit(ctx context.Context, input rating.SubmitInput) (*domain.AggregateRating, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AggregateRating), args.Error(1)
}

func (m *MockRatingUseCase) AverageFor(ctx context.Context, experienceID string) (*domain.AggregateRating, error) {
	args := m.Called(ctx, experienceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AggregateRating), args.Error(1)
}

func TestRatingHandler_submit(t *testing.T) {
	mockService := &MockRatingUseCase{}
	handler := NewRatingHandler(mockService)

	w := httptest.NewRecorder()
	c := guestContext(t, w)
	c.Params = gin.Params{{Key: "id", Value: "booking-1"}}

	body, _ := json.Marshal(submitRatingRequest{Score: 4, Comment: "great dinner"})
	c.Request = httptest.NewRequest("POST", "/bookings/booking-1/rating", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	mockService.On("Submit", c.Request.Context(), rating.SubmitInput{
		BookingID: "booking-1",
		SubjectID: "guest-1",
		Score:     4,
		Comment:   "great dinner",
	}).Return(&domain.AggregateRating{ExperienceID: "exp-1", Count: 1, Sum: 4}, nil)

	handler.submit(c)

	assert.Equal(t, http.StatusCreated, w.Code)

	var resp aggregateResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, int64(1), resp.Count)
	assert.Equal(t, 4.0, resp.Average)
	mockService.AssertExpectations(t)
}

func TestRatingHandler_submit_Duplicate(t *testing.T) {
	mockService := &MockRatingUseCase{}
	handler := NewRatingHandler(mockService)

	w := httptest.NewRecorder()
	c := guestContext(t, w)
	c.Params = gin.Params{{Key: "id", Value: "booking-1"}}

	body, _ := json.Marshal(submitRatingRequest{Score: 4})
	c.Request = httptest.NewRequest("POST", "/bookings/booking-1/rating", bytes.NewReader(body))

	mockService.On("Submit", c.Request.Context(), mock.Anything).Return(nil, domain.ErrAlreadyRated)

	handler.submit(c)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestRatingHandler_submit_NotEligible(t *testing.T) {
	mockService := &MockRatingUseCase{}
	handler := NewRatingHandler(mockService)

	w := httptest.NewRecorder()
	c := guestContext(t, w)
	c.Params = gin.Params{{Key: "id", Value: "booking-1"}}

	body, _ := json.Marshal(submitRatingRequest{Score: 5})
	c.Request = httptest.NewRequest("POST", "/bookings/booking-1/rating", bytes.NewReader(body))

	mockService.On("Submit", c.Request.Context(), mock.Anything).Return(nil, domain.ErrNotEligible)

	handler.submit(c)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestRatingHandler_average(t *testing.T) {
	mockService := &MockRatingUseCase{}
	handler := NewRatingHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Params = gin.Params{{Key: "id", Value: "exp-1"}}
	c.Request = httptest.NewRequest("GET", "/experiences/exp-1/rating", nil)

	mockService.On("AverageFor", c.Request.Context(), "exp-1").
		Return(&domain.AggregateRating{ExperienceID: "exp-1", Count: 4, Sum: 14}, nil)

	handler.average(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp aggregateResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 3.5, resp.Average)
}

func TestRatingHandler_average_Unrated(t *testing.T) {
	mockService := &MockRatingUseCase{}
	handler := NewRatingHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Params = gin.Params{{Key: "id", Value: "exp-9"}}
	c.Request = httptest.NewRequest("GET", "/experiences/exp-9/rating", nil)

	mockService.On("AverageFor", c.Request.Context(), "exp-9").
		Return(&domain.AggregateRating{ExperienceID: "exp-9"}, nil)

	handler.average(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp aggregateResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, int64(0), resp.Count)
	assert.Equal(t, 0.0, resp.Average)
}
