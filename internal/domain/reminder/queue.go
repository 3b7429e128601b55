package reminder

import "sync"

// DeliveryQueue buffers medication names for due reminders until the patient's
// chat client polls them. Safe for concurrent use.
type DeliveryQueue struct {
	mu    sync.Mutex
	items []string
}

func NewDeliveryQueue() *DeliveryQueue {
	return &DeliveryQueue{}
}

func (q *DeliveryQueue) Push(item string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = append(q.items, item)
}

// DrainAll removes and returns every queued item in FIFO order.
func (q *DeliveryQueue) DrainAll() []string {
	q.mu.Lock()
	defer q.mu.Unlock()
	items := q.items
	q.items = nil
	return items
}

func (q *DeliveryQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
