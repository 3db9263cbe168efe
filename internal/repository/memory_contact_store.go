package repository

import (
	"context"
	"sync"
	"time"

	"github.com/portfolio-site/portfolio-api/internal/models"
)

// DefaultMemoryStoreCapacity bounds the offline contact message store
const DefaultMemoryStoreCapacity = 500

// MemoryContactMessageStore keeps the most recent contact messages in
// memory. Used when the database is offline; contents are lost on restart
// and the oldest message is dropped once capacity is reached.
type MemoryContactMessageStore struct {
	mu       sync.RWMutex
	messages []*models.ContactMessage
	capacity int
	now      func() time.Time
}

// NewMemoryContactMessageStore creates a store holding at most capacity messages
func NewMemoryContactMessageStore(capacity int) *MemoryContactMessageStore {
	if capacity <= 0 {
		capacity = DefaultMemoryStoreCapacity
	}
	return &MemoryContactMessageStore{
		messages: make([]*models.ContactMessage, 0, capacity),
		capacity: capacity,
		now:      time.Now,
	}
}

func (s *MemoryContactMessageStore) Create(ctx context.Context, msg *models.ContactMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	msg.CreatedAt = s.now().UTC()
	stored := *msg

	if len(s.messages) == s.capacity {
		copy(s.messages, s.messages[1:])
		s.messages = s.messages[:len(s.messages)-1]
	}
	s.messages = append(s.messages, &stored)
	return nil
}

func (s *MemoryContactMessageStore) List(ctx context.Context, limit int) ([]*models.ContactMessage, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	total := len(s.messages)
	if limit <= 0 || limit > total {
		limit = total
	}

	out := make([]*models.ContactMessage, 0, limit)
	for i := total - 1; i >= total-limit; i-- {
		m := *s.messages[i]
		out = append(out, &m)
	}
	return out, total, nil
}

var _ ContactMessageStore = (*MemoryContactMessageStore)(nil)
