package handler_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bkoyuncu/campus-tickets/internal/handler"
	"github.com/bkoyuncu/campus-tickets/internal/middleware"
	"github.com/bkoyuncu/campus-tickets/internal/models"
	"github.com/bkoyuncu/campus-tickets/internal/repository"
	"github.com/bkoyuncu/campus-tickets/internal/service"
	"github.com/bkoyuncu/campus-tickets/internal/testutil"
	"github.com/bkoyuncu/campus-tickets/internal/utils"
	"github.com/bkoyuncu/campus-tickets/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

// EventHandlerIntegrationTestSuite covers public listing and the
// organizer-scoped mutations.
type EventHandlerIntegrationTestSuite struct {
	suite.Suite
	testDB *testutil.TestDatabase
	router *gin.Engine
}

func (s *EventHandlerIntegrationTestSuite) SetupSuite() {
	gin.SetMode(gin.TestMode)
	logger.Init(false)

	s.testDB = testutil.SetupTestDatabase(s.T())

	userRepo := repository.NewUserRepository(s.testDB.DB)
	eventRepo := repository.NewEventRepository(s.testDB.DB)

	eventService := service.NewEventService(eventRepo)
	eventHandler := handler.NewEventHandler(eventService)

	s.router = gin.New()
	s.router.GET("/api/events", eventHandler.ListEvents)
	s.router.GET("/api/events/:id", eventHandler.GetEvent)

	protected := s.router.Group("/api")
	protected.Use(middleware.AuthMiddleware(testJWTSecret))

	organizer := protected.Group("/events/organizer")
	organizer.Use(middleware.RequireOrganizer(userRepo))
	{
		organizer.GET("", eventHandler.ListOwnEvents)
		organizer.POST("/create", eventHandler.CreateEvent)
		organizer.PUT("/:id", eventHandler.UpdateEvent)
		organizer.DELETE("/:id", eventHandler.DeleteEvent)
	}
}

func (s *EventHandlerIntegrationTestSuite) TearDownSuite() {
	s.testDB.Teardown(s.T())
}

func (s *EventHandlerIntegrationTestSuite) SetupTest() {
	testutil.CleanDatabase(s.T(), s.testDB.DB)
}

func (s *EventHandlerIntegrationTestSuite) createUser(username, email string, role models.Role) (*models.User, string) {
	user, err := testutil.CreateTestUser(username, email, "Test123456", role)
	s.Require().NoError(err)
	s.Require().NoError(s.testDB.DB.Create(user).Error)

	token, err := utils.GenerateToken(user, utils.NewSessionID(), testJWTSecret, time.Hour)
	s.Require().NoError(err)
	return user, token
}

func (s *EventHandlerIntegrationTestSuite) request(method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	var buf *bytes.Buffer
	if body != nil {
		bodyBytes, _ := json.Marshal(body)
		buf = bytes.NewBuffer(bodyBytes)
	} else {
		buf = bytes.NewBuffer(nil)
	}
	req, _ := http.NewRequest(method, path, buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

type eventListResponse struct {
	Events []models.EventWithAvailability `json:"events"`
	Count  int                            `json:"count"`
}

// TestListEventsWithAvailability checks the derived seat count per row.
func (s *EventHandlerIntegrationTestSuite) TestListEventsWithAvailability() {
	organizer, _ := s.createUser("organizer", "org@example.com", models.RoleOrganizer)
	student, _ := s.createUser("alice", "alice@example.com", models.RoleStudent)

	event := testutil.CreateTestEvent(organizer.ID, "Jazz Night", 10, 15)
	s.Require().NoError(s.testDB.DB.Create(event).Error)
	s.Require().NoError(s.testDB.DB.Create(testutil.CreateTestReservation(student.ID, event.ID, 4)).Error)

	w := s.request(http.MethodGet, "/api/events", nil, "")
	assert.Equal(s.T(), http.StatusOK, w.Code)

	var response eventListResponse
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))
	s.Require().Equal(1, response.Count)
	assert.Equal(s.T(), int64(6), response.Events[0].AvailableSeats)
}

// TestListingClampsOversoldEvent keeps a negative derived count out of
// both listing views when reservations exceed capacity out-of-band.
func (s *EventHandlerIntegrationTestSuite) TestListingClampsOversoldEvent() {
	organizer, orgToken := s.createUser("organizer", "org@example.com", models.RoleOrganizer)
	student, _ := s.createUser("alice", "alice@example.com", models.RoleStudent)

	event := testutil.CreateTestEvent(organizer.ID, "Oversold Night", 2, 15)
	s.Require().NoError(s.testDB.DB.Create(event).Error)
	// Written past the admission path, e.g. an import or manual edit
	s.Require().NoError(s.testDB.DB.Create(testutil.CreateTestReservation(student.ID, event.ID, 5)).Error)

	w := s.request(http.MethodGet, "/api/events", nil, "")
	s.Require().Equal(http.StatusOK, w.Code)

	var response eventListResponse
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))
	s.Require().Equal(1, response.Count)
	assert.Equal(s.T(), int64(0), response.Events[0].AvailableSeats)

	w = s.request(http.MethodGet, "/api/events/organizer", nil, orgToken)
	s.Require().Equal(http.StatusOK, w.Code)
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))
	s.Require().Equal(1, response.Count)
	assert.Equal(s.T(), int64(0), response.Events[0].AvailableSeats)
}

// TestListEventsSorted checks price ordering.
func (s *EventHandlerIntegrationTestSuite) TestListEventsSorted() {
	organizer, _ := s.createUser("organizer", "org@example.com", models.RoleOrganizer)

	cheap := testutil.CreateTestEvent(organizer.ID, "Cheap", 10, 5)
	pricey := testutil.CreateTestEvent(organizer.ID, "Pricey", 10, 50)
	s.Require().NoError(s.testDB.DB.Create(pricey).Error)
	s.Require().NoError(s.testDB.DB.Create(cheap).Error)

	w := s.request(http.MethodGet, "/api/events?sort=price_asc", nil, "")
	s.Require().Equal(http.StatusOK, w.Code)

	var response eventListResponse
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))
	s.Require().Equal(2, response.Count)
	assert.Equal(s.T(), "Cheap", response.Events[0].Title)
	assert.Equal(s.T(), "Pricey", response.Events[1].Title)

	w = s.request(http.MethodGet, "/api/events?sort=price_desc", nil, "")
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(s.T(), "Pricey", response.Events[0].Title)
}

// TestListEventsDateFilter restricts the window with from/to.
func (s *EventHandlerIntegrationTestSuite) TestListEventsDateFilter() {
	organizer, _ := s.createUser("organizer", "org@example.com", models.RoleOrganizer)

	soon := testutil.CreateTestEvent(organizer.ID, "Soon", 10, 5)
	soon.StartsAt = time.Now().Add(24 * time.Hour)
	later := testutil.CreateTestEvent(organizer.ID, "Later", 10, 5)
	later.StartsAt = time.Now().Add(30 * 24 * time.Hour)
	s.Require().NoError(s.testDB.DB.Create(soon).Error)
	s.Require().NoError(s.testDB.DB.Create(later).Error)

	from := time.Now().Add(15 * 24 * time.Hour).Format("2006-01-02")
	w := s.request(http.MethodGet, "/api/events?from="+from, nil, "")
	s.Require().Equal(http.StatusOK, w.Code)

	var response eventListResponse
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))
	s.Require().Equal(1, response.Count)
	assert.Equal(s.T(), "Later", response.Events[0].Title)
}

// TestCreateEvent posts a valid event as an organizer.
func (s *EventHandlerIntegrationTestSuite) TestCreateEvent() {
	_, token := s.createUser("organizer", "org@example.com", models.RoleOrganizer)

	w := s.request(http.MethodPost, "/api/events/organizer/create", map[string]interface{}{
		"title":     "Open Mic",
		"starts_at": time.Now().Add(48 * time.Hour).Format(time.RFC3339),
		"seats":     30,
		"price":     7.5,
	}, token)

	assert.Equal(s.T(), http.StatusCreated, w.Code)

	var count int64
	s.testDB.DB.Model(&models.Event{}).Count(&count)
	assert.Equal(s.T(), int64(1), count)
}

// TestStudentCannotCreateEvent verifies the role gate reads storage,
// not just the token.
func (s *EventHandlerIntegrationTestSuite) TestStudentCannotCreateEvent() {
	_, token := s.createUser("alice", "alice@example.com", models.RoleStudent)

	w := s.request(http.MethodPost, "/api/events/organizer/create", map[string]interface{}{
		"title":     "Sneaky Event",
		"starts_at": time.Now().Add(48 * time.Hour).Format(time.RFC3339),
		"seats":     30,
	}, token)

	assert.Equal(s.T(), http.StatusForbidden, w.Code)
}

// TestStaleOrganizerTokenRejected demotes an organizer after the token
// was issued; the stale claim must not grant access.
func (s *EventHandlerIntegrationTestSuite) TestStaleOrganizerTokenRejected() {
	user, token := s.createUser("organizer", "org@example.com", models.RoleOrganizer)

	s.Require().NoError(s.testDB.DB.Model(&models.User{}).
		Where("id = ?", user.ID).
		Updates(map[string]interface{}{"role": models.RoleStudent, "is_organizer": false}).Error)

	w := s.request(http.MethodPost, "/api/events/organizer/create", map[string]interface{}{
		"title":     "Ghost Event",
		"starts_at": time.Now().Add(48 * time.Hour).Format(time.RFC3339),
		"seats":     10,
	}, token)

	assert.Equal(s.T(), http.StatusForbidden, w.Code)
}

// TestUpdateForeignEventForbidden keeps one organizer out of another's
// event.
func (s *EventHandlerIntegrationTestSuite) TestUpdateForeignEventForbidden() {
	owner, _ := s.createUser("owner", "owner@example.com", models.RoleOrganizer)
	_, otherToken := s.createUser("other", "other@example.com", models.RoleOrganizer)

	event := testutil.CreateTestEvent(owner.ID, "Owned Event", 20, 10)
	s.Require().NoError(s.testDB.DB.Create(event).Error)

	w := s.request(http.MethodPut, fmt.Sprintf("/api/events/organizer/%d", event.ID), map[string]interface{}{
		"title":     "Taken Over",
		"starts_at": time.Now().Add(48 * time.Hour).Format(time.RFC3339),
		"seats":     20,
	}, otherToken)

	assert.Equal(s.T(), http.StatusForbidden, w.Code)
}

// TestUpdateOwnEvent edits and reads the change back.
func (s *EventHandlerIntegrationTestSuite) TestUpdateOwnEvent() {
	owner, token := s.createUser("owner", "owner@example.com", models.RoleOrganizer)

	event := testutil.CreateTestEvent(owner.ID, "Original Title", 20, 10)
	s.Require().NoError(s.testDB.DB.Create(event).Error)

	w := s.request(http.MethodPut, fmt.Sprintf("/api/events/organizer/%d", event.ID), map[string]interface{}{
		"title":     "Updated Title",
		"starts_at": time.Now().Add(72 * time.Hour).Format(time.RFC3339),
		"seats":     25,
		"price":     12.0,
	}, token)

	assert.Equal(s.T(), http.StatusOK, w.Code)

	var stored models.Event
	s.Require().NoError(s.testDB.DB.First(&stored, event.ID).Error)
	assert.Equal(s.T(), "Updated Title", stored.Title)
	assert.Equal(s.T(), uint(25), stored.Seats)
}

// TestDeleteOwnEvent removes the row.
func (s *EventHandlerIntegrationTestSuite) TestDeleteOwnEvent() {
	owner, token := s.createUser("owner", "owner@example.com", models.RoleOrganizer)

	event := testutil.CreateTestEvent(owner.ID, "Doomed Event", 20, 10)
	s.Require().NoError(s.testDB.DB.Create(event).Error)

	w := s.request(http.MethodDelete, fmt.Sprintf("/api/events/organizer/%d", event.ID), nil, token)
	assert.Equal(s.T(), http.StatusOK, w.Code)

	var count int64
	s.testDB.DB.Model(&models.Event{}).Where("id = ?", event.ID).Count(&count)
	assert.Equal(s.T(), int64(0), count)
}

// TestCreateEventValidation rejects zero seats.
func (s *EventHandlerIntegrationTestSuite) TestCreateEventValidation() {
	_, token := s.createUser("organizer", "org@example.com", models.RoleOrganizer)

	w := s.request(http.MethodPost, "/api/events/organizer/create", map[string]interface{}{
		"title":     "No Seats",
		"starts_at": time.Now().Add(48 * time.Hour).Format(time.RFC3339),
		"seats":     0,
	}, token)

	assert.Equal(s.T(), http.StatusBadRequest, w.Code)
}

func TestEventHandlerIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(EventHandlerIntegrationTestSuite))
}
