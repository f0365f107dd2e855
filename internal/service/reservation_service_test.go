package service_test

import (
	"sync"
	"testing"

	"github.com/bkoyuncu/campus-tickets/internal/broker"
	"github.com/bkoyuncu/campus-tickets/internal/models"
	"github.com/bkoyuncu/campus-tickets/internal/repository"
	"github.com/bkoyuncu/campus-tickets/internal/service"
	"github.com/bkoyuncu/campus-tickets/internal/testutil"
	"github.com/bkoyuncu/campus-tickets/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

// recordingBroker captures published messages so tests can assert on
// the outbound side effects without Redis.
type recordingBroker struct {
	mu            sync.Mutex
	availability  []broker.AvailabilityUpdate
	notifications []broker.Notification
}

func (b *recordingBroker) PublishAvailability(u broker.AvailabilityUpdate) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.availability = append(b.availability, u)
	return nil
}

func (b *recordingBroker) SubscribeAvailability() (<-chan broker.AvailabilityUpdate, error) {
	return make(chan broker.AvailabilityUpdate), nil
}

func (b *recordingBroker) PublishNotification(n broker.Notification) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.notifications = append(b.notifications, n)
	return nil
}

func (b *recordingBroker) SubscribeNotifications() (<-chan broker.Notification, error) {
	return make(chan broker.Notification), nil
}

func (b *recordingBroker) Close() error { return nil }

func (b *recordingBroker) notificationsOfKind(kind broker.NotificationKind) []broker.Notification {
	b.mu.Lock()
	defer b.mu.Unlock()

	var matched []broker.Notification
	for _, n := range b.notifications {
		if n.Kind == kind {
			matched = append(matched, n)
		}
	}
	return matched
}

// ReservationServiceIntegrationTestSuite covers the broker side effects
// of admission and cancellation.
type ReservationServiceIntegrationTestSuite struct {
	suite.Suite
	testDB      *testutil.TestDatabase
	eventBroker *recordingBroker
	service     *service.ReservationService
}

func (s *ReservationServiceIntegrationTestSuite) SetupSuite() {
	logger.Init(false)
	s.testDB = testutil.SetupTestDatabase(s.T())
}

func (s *ReservationServiceIntegrationTestSuite) TearDownSuite() {
	s.testDB.Teardown(s.T())
}

func (s *ReservationServiceIntegrationTestSuite) SetupTest() {
	testutil.CleanDatabase(s.T(), s.testDB.DB)

	s.eventBroker = &recordingBroker{}
	eventRepo := repository.NewEventRepository(s.testDB.DB)
	reservationRepo := repository.NewReservationRepository(s.testDB.DB)
	s.service = service.NewReservationService(reservationRepo, eventRepo, s.eventBroker, nil)
}

func (s *ReservationServiceIntegrationTestSuite) createFixtures(seats uint) (*models.User, *models.Event) {
	organizer, err := testutil.CreateTestUser("organizer", "org@example.com", "Test123456", models.RoleOrganizer)
	s.Require().NoError(err)
	s.Require().NoError(s.testDB.DB.Create(organizer).Error)

	student, err := testutil.CreateTestUser("alice", "alice@example.com", "Test123456", models.RoleStudent)
	s.Require().NoError(err)
	s.Require().NoError(s.testDB.DB.Create(student).Error)

	event := testutil.CreateTestEvent(organizer.ID, "Spring Concert", seats, 12.50)
	s.Require().NoError(s.testDB.DB.Create(event).Error)

	return student, event
}

// TestAdmissionPublishesConfirmation checks that a successful admission
// pushes the new availability and enqueues a confirmation email.
func (s *ReservationServiceIntegrationTestSuite) TestAdmissionPublishesConfirmation() {
	student, event := s.createFixtures(10)

	summary, err := s.service.CreateReservation(student.ID, student.Email, student.Name, event.ID, 2)
	s.Require().NoError(err)

	s.Require().Len(s.eventBroker.availability, 1)
	assert.Equal(s.T(), event.ID, s.eventBroker.availability[0].EventID)
	assert.Equal(s.T(), int64(8), s.eventBroker.availability[0].AvailableSeats)

	confirmed := s.eventBroker.notificationsOfKind(broker.NotifyReservationConfirmed)
	s.Require().Len(confirmed, 1)
	assert.Equal(s.T(), student.Email, confirmed[0].Recipient)
	assert.Equal(s.T(), "Spring Concert", confirmed[0].EventTitle)
	assert.Equal(s.T(), summary.ReservationCode, confirmed[0].ReservationCode)
	assert.Equal(s.T(), uint(2), confirmed[0].Tickets)
	assert.Equal(s.T(), 25.0, confirmed[0].TotalPrice)
}

// TestCancellationPublishesNotification checks that cancelling pushes
// the restored availability and enqueues a cancellation email.
func (s *ReservationServiceIntegrationTestSuite) TestCancellationPublishesNotification() {
	student, event := s.createFixtures(10)

	summary, err := s.service.CreateReservation(student.ID, student.Email, student.Name, event.ID, 3)
	s.Require().NoError(err)

	s.Require().NoError(s.service.DeleteReservation(student.ID, student.Email, student.Name, summary.ReservationID))

	s.Require().Len(s.eventBroker.availability, 2)
	assert.Equal(s.T(), int64(10), s.eventBroker.availability[1].AvailableSeats)

	cancelled := s.eventBroker.notificationsOfKind(broker.NotifyReservationCancelled)
	s.Require().Len(cancelled, 1)
	assert.Equal(s.T(), student.Email, cancelled[0].Recipient)
	assert.Equal(s.T(), student.Name, cancelled[0].RecipientName)
	assert.Equal(s.T(), "Spring Concert", cancelled[0].EventTitle)
	assert.Equal(s.T(), summary.ReservationCode, cancelled[0].ReservationCode)
	assert.Equal(s.T(), uint(3), cancelled[0].Tickets)
}

// TestRejectedAdmissionPublishesNothing keeps the broker quiet when the
// event is already full.
func (s *ReservationServiceIntegrationTestSuite) TestRejectedAdmissionPublishesNothing() {
	student, event := s.createFixtures(1)

	_, err := s.service.CreateReservation(student.ID, student.Email, student.Name, event.ID, 2)
	s.Require().Error(err)

	assert.Empty(s.T(), s.eventBroker.availability)
	assert.Empty(s.T(), s.eventBroker.notifications)
}

func TestReservationServiceIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(ReservationServiceIntegrationTestSuite))
}
