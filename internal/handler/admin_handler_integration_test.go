package handler_test

import (
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

// AdminHandlerIntegrationTestSuite covers moderation and the role
// request workflow behind the admin gate.
type AdminHandlerIntegrationTestSuite struct {
	suite.Suite
	testDB *testutil.TestDatabase
	router *gin.Engine
}

func (s *AdminHandlerIntegrationTestSuite) SetupSuite() {
	gin.SetMode(gin.TestMode)
	logger.Init(false)

	s.testDB = testutil.SetupTestDatabase(s.T())

	userRepo := repository.NewUserRepository(s.testDB.DB)
	sessionRepo := repository.NewSessionRepository(s.testDB.DB)
	eventRepo := repository.NewEventRepository(s.testDB.DB)
	reservationRepo := repository.NewReservationRepository(s.testDB.DB)
	roleRequestRepo := repository.NewRoleRequestRepository(s.testDB.DB)

	adminService := service.NewAdminService(userRepo, eventRepo, reservationRepo, roleRequestRepo, sessionRepo)
	reservationService := service.NewReservationService(reservationRepo, eventRepo, nil, nil)
	roleRequestService := service.NewRoleRequestService(roleRequestRepo, userRepo, nil)
	eventService := service.NewEventService(eventRepo)

	adminHandler := handler.NewAdminHandler(adminService, reservationService)
	roleRequestHandler := handler.NewRoleRequestHandler(roleRequestService)
	eventHandler := handler.NewEventHandler(eventService)

	s.router = gin.New()

	protected := s.router.Group("/api")
	protected.Use(middleware.AuthMiddleware(testJWTSecret))
	{
		protected.POST("/role-requests", roleRequestHandler.CreateRequest)
		protected.GET("/role-requests/mine", roleRequestHandler.ListOwnRequests)

		admin := protected.Group("/admin")
		admin.Use(middleware.RequireAdmin(userRepo))
		{
			admin.GET("/dashboard", adminHandler.GetDashboard)
			admin.GET("/users", adminHandler.GetAllUsers)
			admin.GET("/users/deleted", adminHandler.GetDeletedUsers)
			admin.DELETE("/users/:id", adminHandler.DeleteUser)
			admin.POST("/users/:id/restore", adminHandler.RestoreUser)
			admin.DELETE("/events/:id", eventHandler.AdminDeleteEvent)
			admin.GET("/role-requests", roleRequestHandler.ListPending)
			admin.PUT("/role-requests/:id/approve", roleRequestHandler.Approve)
			admin.PUT("/role-requests/:id/reject", roleRequestHandler.Reject)
		}
	}
}

func (s *AdminHandlerIntegrationTestSuite) TearDownSuite() {
	s.testDB.Teardown(s.T())
}

func (s *AdminHandlerIntegrationTestSuite) SetupTest() {
	testutil.CleanDatabase(s.T(), s.testDB.DB)
}

func (s *AdminHandlerIntegrationTestSuite) createUser(username, email string, role models.Role) (*models.User, string) {
	user, err := testutil.CreateTestUser(username, email, "Test123456", role)
	s.Require().NoError(err)
	s.Require().NoError(s.testDB.DB.Create(user).Error)

	token, err := utils.GenerateToken(user, utils.NewSessionID(), testJWTSecret, time.Hour)
	s.Require().NoError(err)
	return user, token
}

func (s *AdminHandlerIntegrationTestSuite) doRequest(method, path, token string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

// TestAdminGate keeps non-admins out of the admin surface.
func (s *AdminHandlerIntegrationTestSuite) TestAdminGate() {
	_, studentToken := s.createUser("alice", "alice@example.com", models.RoleStudent)

	w := s.doRequest(http.MethodGet, "/api/admin/dashboard", studentToken)
	assert.Equal(s.T(), http.StatusForbidden, w.Code)

	w = s.doRequest(http.MethodGet, "/api/admin/dashboard", "")
	assert.Equal(s.T(), http.StatusUnauthorized, w.Code)
}

// TestDashboardCounts aggregates platform counts.
func (s *AdminHandlerIntegrationTestSuite) TestDashboardCounts() {
	_, adminToken := s.createUser("admin", "admin@example.com", models.RoleAdmin)
	organizer, _ := s.createUser("organizer", "org@example.com", models.RoleOrganizer)
	student, _ := s.createUser("alice", "alice@example.com", models.RoleStudent)

	event := testutil.CreateTestEvent(organizer.ID, "Jazz Night", 20, 10)
	s.Require().NoError(s.testDB.DB.Create(event).Error)
	s.Require().NoError(s.testDB.DB.Create(testutil.CreateTestReservation(student.ID, event.ID, 2)).Error)
	s.Require().NoError(s.testDB.DB.Create(&models.RoleRequest{UserID: student.ID, Status: models.RoleRequestPending}).Error)

	w := s.doRequest(http.MethodGet, "/api/admin/dashboard", adminToken)
	assert.Equal(s.T(), http.StatusOK, w.Code)

	var response struct {
		Dashboard service.Dashboard `json:"dashboard"`
	}
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(s.T(), int64(3), response.Dashboard.Users)
	assert.Equal(s.T(), int64(1), response.Dashboard.Events)
	assert.Equal(s.T(), int64(1), response.Dashboard.Reservations)
	assert.Equal(s.T(), int64(1), response.Dashboard.PendingRoleRequests)
}

// TestSoftDeleteAndRestore removes a user from the active listing,
// finds them in the deleted listing, and brings them back under the
// same id.
func (s *AdminHandlerIntegrationTestSuite) TestSoftDeleteAndRestore() {
	_, adminToken := s.createUser("admin", "admin@example.com", models.RoleAdmin)
	target, _ := s.createUser("alice", "alice@example.com", models.RoleStudent)

	w := s.doRequest(http.MethodDelete, fmt.Sprintf("/api/admin/users/%d", target.ID), adminToken)
	assert.Equal(s.T(), http.StatusOK, w.Code)

	// Gone from default-scoped queries
	var found models.User
	err := s.testDB.DB.First(&found, target.ID).Error
	assert.Error(s.T(), err)

	// Gone from the active listing too
	var listResponse struct {
		Users []models.User `json:"users"`
	}
	wList := s.doRequest(http.MethodGet, "/api/admin/users", adminToken)
	assert.Equal(s.T(), http.StatusOK, wList.Code)
	s.Require().NoError(json.Unmarshal(wList.Body.Bytes(), &listResponse))
	s.Require().Len(listResponse.Users, 1)
	assert.Equal(s.T(), "admin", listResponse.Users[0].Username)

	// Waiting in the deleted listing
	wList = s.doRequest(http.MethodGet, "/api/admin/users/deleted", adminToken)
	assert.Equal(s.T(), http.StatusOK, wList.Code)
	s.Require().NoError(json.Unmarshal(wList.Body.Bytes(), &listResponse))
	s.Require().Len(listResponse.Users, 1)
	assert.Equal(s.T(), "alice", listResponse.Users[0].Username)

	// Restore brings back the same id
	w = s.doRequest(http.MethodPost, fmt.Sprintf("/api/admin/users/%d/restore", target.ID), adminToken)
	assert.Equal(s.T(), http.StatusOK, w.Code)

	s.Require().NoError(s.testDB.DB.First(&found, target.ID).Error)
	assert.Equal(s.T(), "alice", found.Username)

	// Back in the active listing with the original id
	wList = s.doRequest(http.MethodGet, "/api/admin/users", adminToken)
	s.Require().NoError(json.Unmarshal(wList.Body.Bytes(), &listResponse))
	s.Require().Len(listResponse.Users, 2)

	restored := false
	for _, u := range listResponse.Users {
		if u.ID == target.ID {
			restored = true
			assert.Equal(s.T(), "alice", u.Username)
		}
	}
	assert.True(s.T(), restored, "restored user should reappear under the original id")
}

// TestSoftDeletedUserLockedOut denies API access to a deactivated user
// even with a still-valid token.
func (s *AdminHandlerIntegrationTestSuite) TestSoftDeletedUserLockedOut() {
	_, adminToken := s.createUser("admin", "admin@example.com", models.RoleAdmin)
	target, targetToken := s.createUser("alice", "alice@example.com", models.RoleStudent)

	w := s.doRequest(http.MethodDelete, fmt.Sprintf("/api/admin/users/%d", target.ID), adminToken)
	s.Require().Equal(http.StatusOK, w.Code)

	w = s.doRequest(http.MethodPost, "/api/role-requests", targetToken)
	assert.Equal(s.T(), http.StatusNotFound, w.Code)
}

// TestAdminDeleteForeignEvent lets an admin remove any event.
func (s *AdminHandlerIntegrationTestSuite) TestAdminDeleteForeignEvent() {
	_, adminToken := s.createUser("admin", "admin@example.com", models.RoleAdmin)
	organizer, _ := s.createUser("organizer", "org@example.com", models.RoleOrganizer)

	event := testutil.CreateTestEvent(organizer.ID, "Rowdy Event", 20, 10)
	s.Require().NoError(s.testDB.DB.Create(event).Error)

	w := s.doRequest(http.MethodDelete, fmt.Sprintf("/api/admin/events/%d", event.ID), adminToken)
	assert.Equal(s.T(), http.StatusOK, w.Code)

	var count int64
	s.testDB.DB.Model(&models.Event{}).Where("id = ?", event.ID).Count(&count)
	assert.Equal(s.T(), int64(0), count)
}

// TestRoleRequestLifecycle walks file -> approve -> promoted user, and
// the duplicate/already-decided conflicts along the way.
func (s *AdminHandlerIntegrationTestSuite) TestRoleRequestLifecycle() {
	admin, adminToken := s.createUser("admin", "admin@example.com", models.RoleAdmin)
	student, studentToken := s.createUser("alice", "alice@example.com", models.RoleStudent)

	// File a request
	w := s.doRequest(http.MethodPost, "/api/role-requests", studentToken)
	s.Require().Equal(http.StatusCreated, w.Code)

	// A second pending request is rejected
	w = s.doRequest(http.MethodPost, "/api/role-requests", studentToken)
	assert.Equal(s.T(), http.StatusConflict, w.Code)

	// The admin sees it pending
	w = s.doRequest(http.MethodGet, "/api/admin/role-requests", adminToken)
	s.Require().Equal(http.StatusOK, w.Code)

	var pending struct {
		Requests []models.RoleRequest `json:"requests"`
		Count    int                  `json:"count"`
	}
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &pending))
	s.Require().Equal(1, pending.Count)
	requestID := pending.Requests[0].ID

	// Approve promotes the student
	w = s.doRequest(http.MethodPut, fmt.Sprintf("/api/admin/role-requests/%d/approve", requestID), adminToken)
	assert.Equal(s.T(), http.StatusOK, w.Code)

	var promoted models.User
	s.Require().NoError(s.testDB.DB.First(&promoted, student.ID).Error)
	assert.Equal(s.T(), models.RoleOrganizer, promoted.Role)
	assert.True(s.T(), promoted.IsOrganizer)

	var decided models.RoleRequest
	s.Require().NoError(s.testDB.DB.First(&decided, requestID).Error)
	assert.Equal(s.T(), models.RoleRequestApproved, decided.Status)
	s.Require().NotNil(decided.ReviewedBy)
	assert.Equal(s.T(), admin.ID, *decided.ReviewedBy)
	assert.NotNil(s.T(), decided.ReviewedAt)

	// Deciding twice conflicts
	w = s.doRequest(http.MethodPut, fmt.Sprintf("/api/admin/role-requests/%d/reject", requestID), adminToken)
	assert.Equal(s.T(), http.StatusConflict, w.Code)
}

// TestRejectLeavesRoleUntouched rejects a request without promoting.
func (s *AdminHandlerIntegrationTestSuite) TestRejectLeavesRoleUntouched() {
	_, adminToken := s.createUser("admin", "admin@example.com", models.RoleAdmin)
	student, studentToken := s.createUser("alice", "alice@example.com", models.RoleStudent)

	w := s.doRequest(http.MethodPost, "/api/role-requests", studentToken)
	s.Require().Equal(http.StatusCreated, w.Code)

	var request models.RoleRequest
	s.Require().NoError(s.testDB.DB.Where("user_id = ?", student.ID).First(&request).Error)

	w = s.doRequest(http.MethodPut, fmt.Sprintf("/api/admin/role-requests/%d/reject", request.ID), adminToken)
	assert.Equal(s.T(), http.StatusOK, w.Code)

	var unchanged models.User
	s.Require().NoError(s.testDB.DB.First(&unchanged, student.ID).Error)
	assert.Equal(s.T(), models.RoleStudent, unchanged.Role)
	assert.False(s.T(), unchanged.IsOrganizer)

	// Rejected request no longer blocks a new petition
	w = s.doRequest(http.MethodPost, "/api/role-requests", studentToken)
	assert.Equal(s.T(), http.StatusCreated, w.Code)
}

// TestOrganizerCannotFileRequest rejects petitions from non-students.
func (s *AdminHandlerIntegrationTestSuite) TestOrganizerCannotFileRequest() {
	_, orgToken := s.createUser("organizer", "org@example.com", models.RoleOrganizer)

	w := s.doRequest(http.MethodPost, "/api/role-requests", orgToken)
	assert.Equal(s.T(), http.StatusForbidden, w.Code)
}

func TestAdminHandlerIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(AdminHandlerIntegrationTestSuite))
}
