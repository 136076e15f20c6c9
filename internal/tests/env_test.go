package tests

import (
	"time"

	"campusride/internal/domain"
	"campusride/internal/repository"
	"campusride/internal/service"
)

// testEnv wires the full service layer over mock storage.
type testEnv struct {
	sessionRepo *MockSessionRepository
	roomRepo    *MockChatRoomRepository
	messageRepo *MockMessageRepository
	paymentRepo *MockPaymentRepository
	driverRepo  *MockDriverRepository
	txRunner    *MockTxRunner
	lockStore   *MockLockStore
	presence    *MockPresenceStore

	coordinator    *service.Coordinator
	chatService    *service.ChatService
	paymentService *service.PaymentService
}

func newTestEnv() *testEnv {
	env := &testEnv{
		sessionRepo: NewMockSessionRepository(),
		roomRepo:    NewMockChatRoomRepository(),
		messageRepo: NewMockMessageRepository(),
		paymentRepo: NewMockPaymentRepository(),
		driverRepo:  NewMockDriverRepository(),
		lockStore:   NewMockLockStore(),
		presence:    NewMockPresenceStore(),
	}

	env.txRunner = NewMockTxRunner(repository.Repos{
		Sessions: env.sessionRepo,
		Rooms:    env.roomRepo,
		Messages: env.messageRepo,
		Payments: env.paymentRepo,
	})

	locks := service.NewBookingLocks()
	notifications := service.NewNotificationService(env.presence)
	receipts := service.NewReceiptService(notifications)

	env.coordinator = service.NewCoordinator(
		env.txRunner, env.sessionRepo, env.roomRepo, env.paymentRepo, env.driverRepo,
		locks, env.lockStore, nil, notifications,
	)
	env.chatService = service.NewChatService(
		env.txRunner, env.roomRepo, env.messageRepo, locks, env.presence, notifications,
	)
	env.paymentService = service.NewPaymentService(
		env.paymentRepo, env.sessionRepo, locks, notifications, receipts,
	)

	return env
}

// seedDriver registers a driver profile and returns its ID.
func (e *testEnv) seedDriver(id string, method domain.PaymentMethod) string {
	e.driverRepo.AddDriver(&domain.DriverProfile{
		ID:            id,
		Name:          "Test Driver",
		Phone:         "9999999999",
		PaymentMethod: method,
		CreatedAt:     time.Now(),
	})
	return id
}

// seedSession stores a session in the given phase and returns it.
func (e *testEnv) seedSession(bookingID, studentID, driverID string, phase domain.Phase) *domain.RideSession {
	session := &domain.RideSession{
		BookingID:   bookingID,
		StudentID:   studentID,
		DriverID:    driverID,
		Phase:       phase,
		Fare:        75.50,
		RequestedAt: time.Now(),
	}
	e.sessionRepo.AddSession(session)
	return session
}

// seedRoom stores a chat room and returns it.
func (e *testEnv) seedRoom(bookingID, studentID, driverID string, active bool) *domain.ChatRoom {
	room := &domain.ChatRoom{
		BookingID: bookingID,
		StudentID: studentID,
		DriverID:  driverID,
		IsActive:  active,
		CreatedAt: time.Now(),
	}
	e.roomRepo.AddRoom(room)
	return room
}

// seedEntry stores a ledger entry and returns it.
func (e *testEnv) seedEntry(bookingID string, method domain.PaymentMethod, status domain.PaymentStatus) *domain.PaymentLedgerEntry {
	entry := &domain.PaymentLedgerEntry{
		BookingID: bookingID,
		Method:    method,
		Status:    status,
		Fare:      75.50,
		CreatedAt: time.Now(),
	}
	e.paymentRepo.AddEntry(entry)
	return entry
}

func student(id string) domain.Caller {
	return domain.Caller{ID: id, Role: domain.RoleStudent}
}

func driver(id string) domain.Caller {
	return domain.Caller{ID: id, Role: domain.RoleDriver}
}

func admin(id string) domain.Caller {
	return domain.Caller{ID: id, Role: domain.RoleAdmin}
}
