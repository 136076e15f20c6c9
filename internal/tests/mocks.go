package tests

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"campusride/internal/domain"
	"campusride/internal/repository"
)

// ──────────────────────────────────────────────
// MOCK SESSION REPOSITORY
// ──────────────────────────────────────────────

// MockSessionRepository is a mock implementation of SessionRepository.
type MockSessionRepository struct {
	mu       sync.RWMutex
	sessions map[string]*domain.RideSession

	// Counters for verification
	CreateCallCount int32
	UpdateCallCount int32

	// Error injection
	CreateError error
	UpdateError error
}

// NewMockSessionRepository creates a new mock session repository.
func NewMockSessionRepository() *MockSessionRepository {
	return &MockSessionRepository{
		sessions: make(map[string]*domain.RideSession),
	}
}

// AddSession adds a session to the mock repository.
func (m *MockSessionRepository) AddSession(session *domain.RideSession) {
	m.mu.Lock()
	defer m.mu.Unlock()
	copy := *session
	m.sessions[session.BookingID] = &copy
}

func (m *MockSessionRepository) Create(ctx context.Context, session *domain.RideSession) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	copy := *session
	m.sessions[session.BookingID] = &copy
	return nil
}

func (m *MockSessionRepository) GetByBookingID(ctx context.Context, bookingID string) (*domain.RideSession, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	session, ok := m.sessions[bookingID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	// Return a copy to avoid mutation issues.
	copy := *session
	return &copy, nil
}

func (m *MockSessionRepository) GetAll(ctx context.Context) ([]*domain.RideSession, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.RideSession, 0, len(m.sessions))
	for _, s := range m.sessions {
		copy := *s
		result = append(result, &copy)
	}
	return result, nil
}

func (m *MockSessionRepository) ListByParticipant(ctx context.Context, participantID string) ([]*domain.RideSession, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.RideSession
	for _, s := range m.sessions {
		if s.StudentID == participantID || s.DriverID == participantID {
			copy := *s
			result = append(result, &copy)
		}
	}
	return result, nil
}

func (m *MockSessionRepository) Update(ctx context.Context, session *domain.RideSession) error {
	atomic.AddInt32(&m.UpdateCallCount, 1)
	if m.UpdateError != nil {
		return m.UpdateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[session.BookingID]; !ok {
		return repository.ErrNotFound
	}
	copy := *session
	m.sessions[session.BookingID] = &copy
	return nil
}

// GetSession returns a session for test assertions.
func (m *MockSessionRepository) GetSession(bookingID string) *domain.RideSession {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sessions[bookingID]
}

// ──────────────────────────────────────────────
// MOCK CHAT ROOM REPOSITORY
// ──────────────────────────────────────────────

// MockChatRoomRepository is a mock implementation of ChatRoomRepository.
type MockChatRoomRepository struct {
	mu    sync.RWMutex
	rooms map[string]*domain.ChatRoom

	// Counters for verification
	CreateCallCount int32
	UpdateCallCount int32

	// Error injection
	CreateError error
	UpdateError error
}

// NewMockChatRoomRepository creates a new mock chat room repository.
func NewMockChatRoomRepository() *MockChatRoomRepository {
	return &MockChatRoomRepository{
		rooms: make(map[string]*domain.ChatRoom),
	}
}

// AddRoom adds a room to the mock repository.
func (m *MockChatRoomRepository) AddRoom(room *domain.ChatRoom) {
	m.mu.Lock()
	defer m.mu.Unlock()
	copy := *room
	m.rooms[room.BookingID] = &copy
}

func (m *MockChatRoomRepository) Create(ctx context.Context, room *domain.ChatRoom) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	copy := *room
	m.rooms[room.BookingID] = &copy
	return nil
}

func (m *MockChatRoomRepository) GetByBookingID(ctx context.Context, bookingID string) (*domain.ChatRoom, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	room, ok := m.rooms[bookingID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *room
	return &copy, nil
}

func (m *MockChatRoomRepository) ListByParticipant(ctx context.Context, participantID string) ([]*domain.ChatRoom, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.ChatRoom
	for _, r := range m.rooms {
		if r.StudentID == participantID || r.DriverID == participantID {
			copy := *r
			result = append(result, &copy)
		}
	}
	return result, nil
}

func (m *MockChatRoomRepository) Update(ctx context.Context, room *domain.ChatRoom) error {
	atomic.AddInt32(&m.UpdateCallCount, 1)
	if m.UpdateError != nil {
		return m.UpdateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rooms[room.BookingID]; !ok {
		return repository.ErrNotFound
	}
	copy := *room
	m.rooms[room.BookingID] = &copy
	return nil
}

// GetRoom returns a room for test assertions.
func (m *MockChatRoomRepository) GetRoom(bookingID string) *domain.ChatRoom {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.rooms[bookingID]
}

// ──────────────────────────────────────────────
// MOCK MESSAGE REPOSITORY
// ──────────────────────────────────────────────

// MockMessageRepository is a mock implementation of MessageRepository.
type MockMessageRepository struct {
	mu       sync.RWMutex
	messages map[string]*domain.ChatMessage

	// Counters for verification
	CreateCallCount int32

	// Error injection
	CreateError error
}

// NewMockMessageRepository creates a new mock message repository.
func NewMockMessageRepository() *MockMessageRepository {
	return &MockMessageRepository{
		messages: make(map[string]*domain.ChatMessage),
	}
}

// AddMessage adds a message to the mock repository.
func (m *MockMessageRepository) AddMessage(msg *domain.ChatMessage) {
	m.mu.Lock()
	defer m.mu.Unlock()
	copy := *msg
	m.messages[msg.ID] = &copy
}

func (m *MockMessageRepository) Create(ctx context.Context, msg *domain.ChatMessage) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	copy := *msg
	m.messages[msg.ID] = &copy
	return nil
}

func (m *MockMessageRepository) GetByID(ctx context.Context, id string) (*domain.ChatMessage, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	msg, ok := m.messages[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *msg
	return &copy, nil
}

func (m *MockMessageRepository) ListByBookingID(ctx context.Context, bookingID string) ([]*domain.ChatMessage, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.ChatMessage
	for _, msg := range m.messages {
		if msg.BookingID == bookingID {
			copy := *msg
			result = append(result, &copy)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].SentAt.Before(result[j].SentAt)
	})
	return result, nil
}

func (m *MockMessageRepository) UpdateStatus(ctx context.Context, id string, status domain.MessageStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	msg, ok := m.messages[id]
	if !ok {
		return repository.ErrNotFound
	}
	msg.Status = status
	return nil
}

// CountMessages returns the number of stored messages.
func (m *MockMessageRepository) CountMessages() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.messages)
}

// ──────────────────────────────────────────────
// MOCK PAYMENT REPOSITORY
// ──────────────────────────────────────────────

// MockPaymentRepository is a mock implementation of PaymentRepository.
type MockPaymentRepository struct {
	mu      sync.RWMutex
	entries map[string]*domain.PaymentLedgerEntry

	// Counters for verification
	CreateCallCount int32
	UpdateCallCount int32

	// Error injection
	CreateError error
	UpdateError error
}

// NewMockPaymentRepository creates a new mock payment repository.
func NewMockPaymentRepository() *MockPaymentRepository {
	return &MockPaymentRepository{
		entries: make(map[string]*domain.PaymentLedgerEntry),
	}
}

// AddEntry adds a ledger entry to the mock repository.
func (m *MockPaymentRepository) AddEntry(entry *domain.PaymentLedgerEntry) {
	m.mu.Lock()
	defer m.mu.Unlock()
	copy := *entry
	m.entries[entry.BookingID] = &copy
}

func (m *MockPaymentRepository) Create(ctx context.Context, entry *domain.PaymentLedgerEntry) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	copy := *entry
	m.entries[entry.BookingID] = &copy
	return nil
}

func (m *MockPaymentRepository) GetByBookingID(ctx context.Context, bookingID string) (*domain.PaymentLedgerEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	entry, ok := m.entries[bookingID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *entry
	return &copy, nil
}

func (m *MockPaymentRepository) Update(ctx context.Context, entry *domain.PaymentLedgerEntry) error {
	atomic.AddInt32(&m.UpdateCallCount, 1)
	if m.UpdateError != nil {
		return m.UpdateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.entries[entry.BookingID]; !ok {
		return repository.ErrNotFound
	}
	copy := *entry
	m.entries[entry.BookingID] = &copy
	return nil
}

// GetEntry returns a ledger entry for test assertions.
func (m *MockPaymentRepository) GetEntry(bookingID string) *domain.PaymentLedgerEntry {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.entries[bookingID]
}

// ──────────────────────────────────────────────
// MOCK DRIVER REPOSITORY
// ──────────────────────────────────────────────

// MockDriverRepository is a mock implementation of DriverRepository.
type MockDriverRepository struct {
	mu      sync.RWMutex
	drivers map[string]*domain.DriverProfile
}

// NewMockDriverRepository creates a new mock driver repository.
func NewMockDriverRepository() *MockDriverRepository {
	return &MockDriverRepository{
		drivers: make(map[string]*domain.DriverProfile),
	}
}

// AddDriver adds a driver profile to the mock repository.
func (m *MockDriverRepository) AddDriver(driver *domain.DriverProfile) {
	m.mu.Lock()
	defer m.mu.Unlock()
	copy := *driver
	m.drivers[driver.ID] = &copy
}

func (m *MockDriverRepository) Create(ctx context.Context, driver *domain.DriverProfile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copy := *driver
	m.drivers[driver.ID] = &copy
	return nil
}

func (m *MockDriverRepository) GetByID(ctx context.Context, id string) (*domain.DriverProfile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	driver, ok := m.drivers[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *driver
	return &copy, nil
}

func (m *MockDriverRepository) GetAll(ctx context.Context) ([]*domain.DriverProfile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.DriverProfile, 0, len(m.drivers))
	for _, d := range m.drivers {
		copy := *d
		result = append(result, &copy)
	}
	return result, nil
}

// ──────────────────────────────────────────────
// MOCK TX RUNNER
// ──────────────────────────────────────────────

// MockTxRunner runs the transactional function against the shared mock
// repositories. It cannot roll back, so error-path tests assert on the
// returned error rather than on state.
type MockTxRunner struct {
	Repos repository.Repos

	// Counters for verification
	InTxCallCount int32

	// Error injection
	BeginError error
}

// NewMockTxRunner creates a mock tx runner over the given repositories.
func NewMockTxRunner(repos repository.Repos) *MockTxRunner {
	return &MockTxRunner{Repos: repos}
}

func (m *MockTxRunner) InTx(ctx context.Context, fn func(repository.Repos) error) error {
	atomic.AddInt32(&m.InTxCallCount, 1)
	if m.BeginError != nil {
		return m.BeginError
	}
	return fn(m.Repos)
}

// ──────────────────────────────────────────────
// MOCK LOCK STORE
// ──────────────────────────────────────────────

// MockLockStore is an in-memory implementation of the distributed
// booking lock.
type MockLockStore struct {
	mu   sync.Mutex
	held map[string]bool

	// Counters for verification
	AcquireCallCount int32
	ReleaseCallCount int32

	// Error injection
	AcquireError error
}

// NewMockLockStore creates a new mock lock store.
func NewMockLockStore() *MockLockStore {
	return &MockLockStore{held: make(map[string]bool)}
}

func (m *MockLockStore) AcquireBookingLock(ctx context.Context, bookingID string, ttl time.Duration) (bool, error) {
	atomic.AddInt32(&m.AcquireCallCount, 1)
	if m.AcquireError != nil {
		return false, m.AcquireError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.held[bookingID] {
		return false, nil
	}
	m.held[bookingID] = true
	return true, nil
}

func (m *MockLockStore) ReleaseBookingLock(ctx context.Context, bookingID string) error {
	atomic.AddInt32(&m.ReleaseCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.held, bookingID)
	return nil
}

// HoldLock marks a booking's lock held, simulating another instance.
func (m *MockLockStore) HoldLock(bookingID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.held[bookingID] = true
}

// ──────────────────────────────────────────────
// MOCK PRESENCE STORE
// ──────────────────────────────────────────────

// MockPresenceStore is an in-memory implementation of room presence.
type MockPresenceStore struct {
	mu      sync.RWMutex
	present map[string]bool
}

// NewMockPresenceStore creates a new mock presence store.
func NewMockPresenceStore() *MockPresenceStore {
	return &MockPresenceStore{present: make(map[string]bool)}
}

func presenceKey(bookingID, userID string) string {
	return bookingID + ":" + userID
}

func (m *MockPresenceStore) SetPresent(ctx context.Context, bookingID, userID string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.present[presenceKey(bookingID, userID)] = true
	return nil
}

func (m *MockPresenceStore) IsPresent(ctx context.Context, bookingID, userID string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.present[presenceKey(bookingID, userID)], nil
}

func (m *MockPresenceStore) ClearPresence(ctx context.Context, bookingID, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.present, presenceKey(bookingID, userID))
	return nil
}
