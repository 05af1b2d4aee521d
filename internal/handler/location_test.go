package handler

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

	"placemap/internal/models"
	"placemap/internal/service"
)

// MockLocationService is a mock implementation of the LocationService
// interface
type MockLocationService struct {
	mock.Mock
}

func (m *MockLocationService) SaveVisited(ctx context.Context, req models.LocationRequest) (*models.Location, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Location), args.Error(1)
}

func (m *MockLocationService) SaveFaved(ctx context.Context, req models.LocationRequest) (*models.Location, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Location), args.Error(1)
}

func (m *MockLocationService) GetVisited(ctx context.Context, clientID string, page, size int) (models.Page[models.Location], error) {
	args := m.Called(ctx, clientID, page, size)
	return args.Get(0).(models.Page[models.Location]), args.Error(1)
}

func (m *MockLocationService) GetFaved(ctx context.Context, clientID string, page, size int) (models.Page[models.Location], error) {
	args := m.Called(ctx, clientID, page, size)
	return args.Get(0).(models.Page[models.Location]), args.Error(1)
}

func (m *MockLocationService) GetFavedByCategory(ctx context.Context, categoryID, clientID string, page, size int) (models.Page[models.Location], error) {
	args := m.Called(ctx, categoryID, clientID, page, size)
	return args.Get(0).(models.Page[models.Location]), args.Error(1)
}

func (m *MockLocationService) AssignCategory(ctx context.Context, locationID string, categoryID *string, clientID string) (*models.Location, error) {
	args := m.Called(ctx, locationID, categoryID, clientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Location), args.Error(1)
}

// MockWeatherService is a mock implementation of the WeatherService interface
type MockWeatherService struct {
	mock.Mock
}

func (m *MockWeatherService) Current(ctx context.Context, latitude, longitude float64) (*models.WeatherData, error) {
	args := m.Called(ctx, latitude, longitude)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.WeatherData), args.Error(1)
}

const testClientID = "11111111-1111-1111-1111-111111111111"

func newLocationRouter(svc LocationService, weather WeatherService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewLocationHandler(svc, weather)
	r := gin.New()
	r.POST("/locations/faved", h.SaveFaved)
	r.GET("/locations/faved", h.GetFaved)
	r.POST("/locations/visited", h.SaveVisited)
	r.GET("/locations/visited", h.GetVisited)
	r.PUT("/locations/faved/:id/category", h.AssignCategory)
	r.GET("/locations/faved/category/:categoryId", h.GetFavedByCategory)
	r.GET("/locations/weather", h.Weather)
	return r
}

func TestLocationHandler_SaveFaved(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		mockLocation   *models.Location
		mockError      error
		expectedStatus int
	}{
		{
			name:           "invalid body",
			body:           `{"placeDesc":`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "missing required fields",
			body:           `{"placeDesc":"KLCC Park"}`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "successful save",
			body: `{"clientId":"` + testClientID + `","placeDesc":"KLCC Park","latitude":"3.1558","longitude":"101.7147"}`,
			mockLocation: &models.Location{
				ID:        "a",
				PlaceDesc: "KLCC Park",
				Latitude:  "3.1558",
				Longitude: "101.7147",
				ClientID:  testClientID,
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "unknown client",
			body:           `{"clientId":"` + testClientID + `","placeDesc":"KLCC Park","latitude":"3.1558","longitude":"101.7147"}`,
			mockError:      service.ErrNotFound,
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "service error",
			body:           `{"clientId":"` + testClientID + `","placeDesc":"KLCC Park","latitude":"3.1558","longitude":"101.7147"}`,
			mockError:      assert.AnError,
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockSvc := new(MockLocationService)
			router := newLocationRouter(mockSvc, new(MockWeatherService))

			if tt.mockLocation != nil || tt.mockError != nil {
				mockSvc.On("SaveFaved", mock.Anything, mock.AnythingOfType("models.LocationRequest")).
					Return(tt.mockLocation, tt.mockError)
			}

			req := httptest.NewRequest(http.MethodPost, "/locations/faved", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedStatus == http.StatusOK {
				var got models.Location
				assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
				assert.Equal(t, *tt.mockLocation, got)
			}
		})
	}
}

func TestLocationHandler_GetFaved(t *testing.T) {
	tests := []struct {
		name           string
		url            string
		mockPage       *models.Page[models.Location]
		mockError      error
		expectedStatus int
	}{
		{
			name:           "missing clientId",
			url:            "/locations/faved",
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "invalid page",
			url:            "/locations/faved?clientId=" + testClientID + "&page=-1",
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "invalid size",
			url:            "/locations/faved?clientId=" + testClientID + "&size=abc",
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "successful listing",
			url:  "/locations/faved?clientId=" + testClientID + "&page=0&size=20",
			mockPage: &models.Page[models.Location]{
				Content:       []models.Location{{ID: "a", PlaceDesc: "KLCC Park"}},
				PageNumber:    0,
				PageSize:      20,
				TotalElements: 1,
				TotalPages:    1,
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "service error",
			url:            "/locations/faved?clientId=" + testClientID,
			mockError:      assert.AnError,
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockSvc := new(MockLocationService)
			router := newLocationRouter(mockSvc, new(MockWeatherService))

			if tt.mockPage != nil {
				mockSvc.On("GetFaved", mock.Anything, testClientID, mock.Anything, mock.Anything).
					Return(*tt.mockPage, nil)
			} else if tt.mockError != nil {
				mockSvc.On("GetFaved", mock.Anything, testClientID, mock.Anything, mock.Anything).
					Return(models.Page[models.Location]{}, tt.mockError)
			}

			req := httptest.NewRequest(http.MethodGet, tt.url, nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedStatus == http.StatusOK {
				var got models.Page[models.Location]
				assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
				assert.Equal(t, *tt.mockPage, got)
			}
		})
	}
}

func TestLocationHandler_AssignCategory(t *testing.T) {
	categoryID := "33333333-3333-3333-3333-333333333333"

	tests := []struct {
		name           string
		body           string
		mockLocation   *models.Location
		mockError      error
		expectedStatus int
	}{
		{
			name:           "invalid body",
			body:           `{`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "successful reassignment",
			body: `{"clientId":"` + testClientID + `","categoryId":"` + categoryID + `"}`,
			mockLocation: &models.Location{
				ID:         "a",
				PlaceDesc:  "KLCC Park",
				ClientID:   testClientID,
				CategoryID: &categoryID,
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "foreign location reported as not found",
			body:           `{"clientId":"` + testClientID + `"}`,
			mockError:      service.ErrNotOwner,
			expectedStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockSvc := new(MockLocationService)
			router := newLocationRouter(mockSvc, new(MockWeatherService))

			if tt.mockLocation != nil || tt.mockError != nil {
				mockSvc.On("AssignCategory", mock.Anything, "a", mock.Anything, testClientID).
					Return(tt.mockLocation, tt.mockError)
			}

			req := httptest.NewRequest(http.MethodPut, "/locations/faved/a/category", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}
}

func TestLocationHandler_Weather(t *testing.T) {
	tests := []struct {
		name           string
		url            string
		mockData       *models.WeatherData
		mockError      error
		expectedStatus int
		expectWeather  bool
	}{
		{
			name:           "missing coordinates",
			url:            "/locations/weather?latitude=3.1558",
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "unparseable latitude",
			url:            "/locations/weather?latitude=abc&longitude=101.7147",
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "successful lookup",
			url:  "/locations/weather?latitude=3.1558&longitude=101.7147",
			mockData: &models.WeatherData{
				TemperatureC: 31.5,
				WindspeedKmh: 8.2,
				WeatherCode:  2,
				Description:  "Partly cloudy",
			},
			expectedStatus: http.StatusOK,
			expectWeather:  true,
		},
		{
			name:           "upstream failure still succeeds without weather block",
			url:            "/locations/weather?latitude=3.1558&longitude=101.7147",
			mockError:      assert.AnError,
			expectedStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockWeather := new(MockWeatherService)
			router := newLocationRouter(new(MockLocationService), mockWeather)

			if tt.mockData != nil || tt.mockError != nil {
				mockWeather.On("Current", mock.Anything, 3.1558, 101.7147).
					Return(tt.mockData, tt.mockError)
			}

			req := httptest.NewRequest(http.MethodGet, tt.url, nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedStatus == http.StatusOK {
				var got models.WeatherResponse
				assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
				assert.Equal(t, "3.1558", got.Latitude)
				assert.Equal(t, "101.7147", got.Longitude)
				if tt.expectWeather {
					assert.Equal(t, tt.mockData, got.Weather)
				} else {
					assert.Nil(t, got.Weather)
				}
			}
		})
	}
}
