package http

import (
	"sync"
	"time"

	"github.com/ochronus/gotransloadit/internal/services/transloadit"
)

const defaultStoreCapacity = 500

// Notification is a callback received from the service.
type Notification struct {
	AssemblyID string
	Payload    transloadit.Response
	Signature  string
	ReceivedAt time.Time
}

// NotificationStore keeps the latest notification per assembly, evicting the
// oldest assembly once capacity is reached.
type NotificationStore struct {
	mu       sync.RWMutex
	capacity int
	byID     map[string]Notification
	order    []string
}

// NewNotificationStore creates a store holding at most capacity assemblies.
func NewNotificationStore(capacity int) *NotificationStore {
	if capacity < 1 {
		capacity = defaultStoreCapacity
	}
	return &NotificationStore{
		capacity: capacity,
		byID:     make(map[string]Notification),
	}
}

// Put stores n, replacing any earlier notification for the same assembly.
func (s *NotificationStore) Put(n Notification) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byID[n.AssemblyID]; !exists {
		if len(s.order) >= s.capacity {
			oldest := s.order[0]
			s.order = s.order[1:]
			delete(s.byID, oldest)
		}
		s.order = append(s.order, n.AssemblyID)
	}
	s.byID[n.AssemblyID] = n
}

// Get returns the latest notification for an assembly.
func (s *NotificationStore) Get(assemblyID string) (Notification, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n, ok := s.byID[assemblyID]
	return n, ok
}

// Len returns the number of assemblies held.
func (s *NotificationStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID)
}
